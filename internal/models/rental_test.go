package models

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestRentalCanTransitionTo(t *testing.T) {
	cases := []struct {
		from RentalStatus
		to   RentalStatus
		want bool
	}{
		{RentalPending, RentalApproved, true},
		{RentalPending, RentalCancelled, true},
		{RentalPending, RentalActive, false},
		{RentalPending, RentalCompleted, false},
		{RentalApproved, RentalActive, true},
		{RentalApproved, RentalCancelled, true},
		{RentalApproved, RentalCompleted, false},
		{RentalApproved, RentalPending, false},
		{RentalActive, RentalCompleted, true},
		{RentalActive, RentalCancelled, false},
		{RentalActive, RentalApproved, false},
		{RentalCompleted, RentalActive, false},
		{RentalCompleted, RentalApproved, false},
		{RentalCancelled, RentalPending, false},
		{RentalCancelled, RentalApproved, false},
	}
	for _, tc := range cases {
		r := Rental{Status: tc.from}
		if got := r.CanTransitionTo(tc.to); got != tc.want {
			t.Errorf("transition %s -> %s: got %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestRentalIsTerminal(t *testing.T) {
	for _, status := range []RentalStatus{RentalCompleted, RentalCancelled} {
		r := Rental{Status: status}
		if !r.IsTerminal() {
			t.Errorf("status %s should be terminal", status)
		}
	}
	for _, status := range []RentalStatus{RentalPending, RentalApproved, RentalActive} {
		r := Rental{Status: status}
		if r.IsTerminal() {
			t.Errorf("status %s should not be terminal", status)
		}
	}
}

func TestMaskedIDCard(t *testing.T) {
	tenant := TenantInformation{IDCardNumber: "1234567890123"}
	if got := tenant.MaskedIDCard(); got != "XXXXX-XXXXX-23" {
		t.Fatalf("masked id card = %q, want XXXXX-XXXXX-23", got)
	}
	empty := TenantInformation{}
	if got := empty.MaskedIDCard(); got != "" {
		t.Fatalf("masked empty id card = %q, want empty", got)
	}
}

func TestTenantJSONNeverLeaksIDCard(t *testing.T) {
	tenant := TenantInformation{
		FirstName:    "Somchai",
		LastName:     "Jaidee",
		IDCardNumber: "1234567890123",
		Phone:        "0812345678",
	}
	raw, err := json.Marshal(tenant)
	if err != nil {
		t.Fatalf("marshal tenant: %v", err)
	}
	body := string(raw)
	if strings.Contains(body, "1234567890123") {
		t.Fatalf("raw id card leaked into JSON: %s", body)
	}
	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded["id_card_number"] != "XXXXX-XXXXX-23" {
		t.Fatalf("id_card_number = %v, want masked form", decoded["id_card_number"])
	}
}

func TestTenantFullName(t *testing.T) {
	tenant := TenantInformation{FirstName: "Somchai", LastName: "Jaidee"}
	if got := tenant.FullName(); got != "Somchai Jaidee" {
		t.Fatalf("full name = %q", got)
	}
}
