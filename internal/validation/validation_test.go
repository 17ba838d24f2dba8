package validation

import "testing"

type paperworkForm struct {
	FirstName  string `json:"first_name" validate:"required"`
	IDCard     string `json:"id_card_number" validate:"required,idcard"`
	Phone      string `json:"phone" validate:"required,thphone"`
	PostalCode string `json:"postal_code" validate:"required,postcode"`
	Email      string `json:"email" validate:"omitempty,email"`
}

func validForm() paperworkForm {
	return paperworkForm{
		FirstName:  "Somchai",
		IDCard:     "1234567890123",
		Phone:      "0812345678",
		PostalCode: "10110",
		Email:      "somchai@example.com",
	}
}

func TestStructValidForm(t *testing.T) {
	v := Violations{}
	Struct(validForm(), v)
	if !v.Empty() {
		t.Fatalf("unexpected violations: %v", v)
	}
}

func TestStructViolations(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*paperworkForm)
		field  string
		reason string
	}{
		{"missing first name", func(f *paperworkForm) { f.FirstName = "" }, "first_name", "required"},
		{"id card too short", func(f *paperworkForm) { f.IDCard = "123456789012" }, "id_card_number", "must_be_13_digits"},
		{"id card with letters", func(f *paperworkForm) { f.IDCard = "12345678901ab" }, "id_card_number", "must_be_13_digits"},
		{"phone not starting with 0", func(f *paperworkForm) { f.Phone = "8123456789" }, "phone", "must_be_10_digits_starting_with_0"},
		{"phone too short", func(f *paperworkForm) { f.Phone = "081234567" }, "phone", "must_be_10_digits_starting_with_0"},
		{"postal code wrong length", func(f *paperworkForm) { f.PostalCode = "1011" }, "postal_code", "must_be_5_digits"},
		{"postal code non-digit", func(f *paperworkForm) { f.PostalCode = "10a10" }, "postal_code", "must_be_5_digits"},
		{"bad email", func(f *paperworkForm) { f.Email = "not-an-email" }, "email", "must_be_email"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			form := validForm()
			tc.mutate(&form)
			v := Violations{}
			Struct(form, v)
			if got := v[tc.field]; got != tc.reason {
				t.Fatalf("violation for %s = %q, want %q (all: %v)", tc.field, got, tc.reason, v)
			}
		})
	}
}

func TestStructOmitemptySkipsBlank(t *testing.T) {
	form := validForm()
	form.Email = ""
	v := Violations{}
	Struct(form, v)
	if !v.Empty() {
		t.Fatalf("blank optional email should pass, got %v", v)
	}
}

func TestRequiredHelper(t *testing.T) {
	v := Violations{}
	Required("name", "  ", v)
	if v["name"] != "required" {
		t.Fatalf("whitespace-only value should violate required, got %v", v)
	}
}

func TestPositiveFloatHelper(t *testing.T) {
	v := Violations{}
	PositiveFloat("amount", 0, v)
	if v["amount"] != "must_be_positive" {
		t.Fatalf("zero should violate positive, got %v", v)
	}
	v2 := Violations{}
	PositiveFloat("amount", 12.5, v2)
	if !v2.Empty() {
		t.Fatalf("positive value should pass, got %v", v2)
	}
}
