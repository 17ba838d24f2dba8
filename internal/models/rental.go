package models

import (
	"encoding/json"
	"strings"
	"time"
)

type RentalStatus string

const (
	RentalPending   RentalStatus = "pending"
	RentalApproved  RentalStatus = "approved"
	RentalActive    RentalStatus = "active"
	RentalCompleted RentalStatus = "completed"
	RentalCancelled RentalStatus = "cancelled"
)

// Rental is the booking contract between a user and a room.
// Transitions: pending -> approved -> active -> completed, with cancelled
// reachable from pending or approved. completed and cancelled are terminal.
type Rental struct {
	ID                uint         `gorm:"primaryKey" json:"id"`
	UserID            uint         `gorm:"not null;index" json:"user_id"`
	RoomID            uint         `gorm:"not null;index" json:"room_id"`
	Room              Room         `gorm:"foreignKey:RoomID" json:"room,omitempty"`
	StartDate         time.Time    `gorm:"not null" json:"start_date"`
	EndDate           time.Time    `gorm:"not null" json:"end_date"`
	Status            RentalStatus `gorm:"size:20;not null;default:'pending'" json:"status"`
	TotalPrice        float64      `gorm:"not null" json:"total_price"`
	ContractNumber    *string      `gorm:"size:50;unique" json:"contract_number"`
	ContractDate      *time.Time   `json:"contract_date"`
	DepositAmount     float64      `json:"deposit_amount"`
	AdvancePayment    float64      `json:"advance_payment"`
	MonthlyRent       float64      `gorm:"not null" json:"monthly_rent"`
	SpecialConditions string       `json:"special_conditions"`
	Notes             string       `json:"notes"`

	Tenant   *TenantInformation `gorm:"constraint:OnDelete:CASCADE" json:"tenant,omitempty"`
	Payments []Payment          `gorm:"constraint:OnDelete:CASCADE" json:"payments,omitempty"`
	Invoices []Invoice          `gorm:"constraint:OnDelete:CASCADE" json:"invoices,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CanTransitionTo encodes the contract state machine.
func (r *Rental) CanTransitionTo(next RentalStatus) bool {
	switch r.Status {
	case RentalPending:
		return next == RentalApproved || next == RentalCancelled
	case RentalApproved:
		return next == RentalActive || next == RentalCancelled
	case RentalActive:
		return next == RentalCompleted
	default:
		// completed and cancelled are terminal
		return false
	}
}

func (r *Rental) IsActive() bool   { return r.Status == RentalActive }
func (r *Rental) IsTerminal() bool { return r.Status == RentalCompleted || r.Status == RentalCancelled }

// TenantInformation is created atomically with its Rental and never exists
// without one. The id card number is only ever serialized masked.
type TenantInformation struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	RentalID         uint      `gorm:"not null;uniqueIndex" json:"rental_id"`
	FirstName        string    `gorm:"size:100;not null" json:"first_name"`
	LastName         string    `gorm:"size:100;not null" json:"last_name"`
	IDCardNumber     string    `gorm:"size:13;not null" json:"-"`
	Phone            string    `gorm:"size:10;not null" json:"phone"`
	Email            string    `gorm:"size:255" json:"email"`
	Address          string    `json:"address"`
	PostalCode       string    `gorm:"size:5" json:"postal_code"`
	EmergencyContact string    `gorm:"size:255" json:"emergency_contact"`
	EmergencyPhone   string    `gorm:"size:10" json:"emergency_phone"`
	Occupation       string    `gorm:"size:255" json:"occupation"`
	Workplace        string    `gorm:"size:255" json:"workplace"`
	MonthlyIncome    float64   `json:"monthly_income"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// MaskedIDCard exposes only the last two digits of the id card number.
func (t *TenantInformation) MaskedIDCard() string {
	if t.IDCardNumber == "" {
		return ""
	}
	tail := t.IDCardNumber
	if len(tail) > 2 {
		tail = tail[len(tail)-2:]
	}
	return "XXXXX-XXXXX-" + tail
}

// MarshalJSON always emits the masked id card form on read paths.
func (t TenantInformation) MarshalJSON() ([]byte, error) {
	type alias TenantInformation
	return json.Marshal(struct {
		alias
		IDCardNumber string `json:"id_card_number"`
	}{alias(t), t.MaskedIDCard()})
}

// FullName joins the tenant's name parts for display.
func (t *TenantInformation) FullName() string {
	return strings.TrimSpace(t.FirstName + " " + t.LastName)
}
