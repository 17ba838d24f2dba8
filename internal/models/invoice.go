package models

import "time"

type InvoiceStatus string

const (
	InvoiceUnpaid  InvoiceStatus = "unpaid"
	InvoicePaid    InvoiceStatus = "paid"
	InvoiceOverdue InvoiceStatus = "overdue"
)

// InvoiceNumberPrefix is the user-visible numbering scheme: INV-YYYYMM-NNNN
// with a 4-digit sequence that resets each calendar month.
const InvoiceNumberPrefix = "INV-"

// Invoice is a periodic bill derived from a rental's rent plus utility
// charges. TotalAmount is derived and recomputed before every persist.
type Invoice struct {
	ID                uint          `gorm:"primaryKey" json:"id"`
	RentalID          uint          `gorm:"not null;index" json:"rental_id"`
	InvoiceNumber     string        `gorm:"size:20;unique;not null" json:"invoice_number"`
	IssueDate         time.Time     `gorm:"not null" json:"issue_date"`
	DueDate           time.Time     `gorm:"not null" json:"due_date"`
	RoomRent          float64       `gorm:"not null" json:"room_rent"`
	ElectricityCharge float64       `gorm:"not null" json:"electricity_charge"`
	WaterCharge       float64       `gorm:"not null" json:"water_charge"`
	TotalAmount       float64       `gorm:"not null" json:"total_amount"`
	Status            InvoiceStatus `gorm:"size:20;not null;default:'unpaid'" json:"status"`
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`
}

// ComputeTotalAmount sums the three charge fields. The stored TotalAmount
// is never independently settable; write paths call this before saving.
func (i *Invoice) ComputeTotalAmount() float64 {
	return i.RoomRent + i.ElectricityCharge + i.WaterCharge
}

func (i *Invoice) IsPaid() bool { return i.Status == InvoicePaid }

// IsOverdueAt is the pure overdue predicate, distinct from the stateful
// overdue transition: unpaid and past due at the given instant.
func (i *Invoice) IsOverdueAt(now time.Time) bool {
	return i.Status == InvoiceUnpaid && i.DueDate.Before(now)
}

// DaysUntilDueAt returns the signed whole-day count until the due date,
// negative once overdue.
func (i *Invoice) DaysUntilDueAt(now time.Time) int {
	return int(i.DueDate.Sub(now).Hours() / 24)
}
