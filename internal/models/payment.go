package models

import "time"

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentFailed  PaymentStatus = "failed"
)

// Payment against a rental. Only payments with status paid count toward
// the rental's total_paid aggregate.
type Payment struct {
	ID            uint          `gorm:"primaryKey" json:"id"`
	RentalID      uint          `gorm:"not null;index" json:"rental_id"`
	Amount        float64       `gorm:"not null" json:"amount"`
	PaymentDate   time.Time     `gorm:"not null" json:"payment_date"`
	Status        PaymentStatus `gorm:"size:20;not null;default:'pending'" json:"status"`
	PaymentMethod string        `gorm:"size:50" json:"payment_method"`
	SlipImagePath string        `json:"slip_image_path"`
	Reference     string        `gorm:"size:64;index" json:"reference"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

func (p *Payment) Counts() bool { return p.Status == PaymentPaid }
