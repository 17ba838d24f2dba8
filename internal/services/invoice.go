package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/motelworks/motel-manager/internal/apperr"
	"github.com/motelworks/motel-manager/internal/models"
)

// InvoiceService derives invoices from a rental's rent, its unbilled
// electricity usage, and the current utility rates. Rates come in as an
// explicit dependency.
type InvoiceService struct {
	db    *gorm.DB
	rates *RateService
}

func NewInvoiceService(db *gorm.DB, rates *RateService) *InvoiceService {
	return &InvoiceService{db: db, rates: rates}
}

// GenerateInvoiceNumber returns the next number for the calendar month of
// at: INV-YYYYMM-NNNN, sequence scoped to the month, 0001 when the month
// has no invoices yet. Read-then-write: two concurrent callers can race to
// the same number; the unique constraint turns the loser into a retryable
// conflict at create time.
func (s *InvoiceService) GenerateInvoiceNumber(ctx context.Context, at time.Time) (string, error) {
	return nextInvoiceNumber(s.db.WithContext(ctx), at)
}

func nextInvoiceNumber(tx *gorm.DB, at time.Time) (string, error) {
	return nextSequenced(tx, &models.Invoice{}, "invoice_number", fmt.Sprintf("INV-%s-", at.Format("200601")))
}

func nextContractNumber(tx *gorm.DB, at time.Time) (string, error) {
	return nextSequenced(tx, &models.Rental{}, "contract_number", fmt.Sprintf("CT-%s-", at.Format("200601")))
}

// nextSequenced finds the string-sorted latest number with the prefix,
// parses its 4-digit suffix, and increments; 0001 if none exists.
func nextSequenced(tx *gorm.DB, model any, column, prefix string) (string, error) {
	var latest string
	err := tx.Model(model).
		Select(column).
		Where(column+" LIKE ?", prefix+"%").
		Order(column + " DESC").
		Limit(1).
		Scan(&latest).Error
	if err != nil {
		return "", err
	}
	seq := 1
	if latest != "" && len(latest) >= 4 {
		if n, err := strconv.Atoi(latest[len(latest)-4:]); err == nil {
			seq = n + 1
		}
	}
	return fmt.Sprintf("%s%04d", prefix, seq), nil
}

type CreateInvoiceInput struct {
	IssueDate time.Time `json:"issue_date"`
	DueDate   time.Time `json:"due_date"`
}

// CreateInvoice assembles the three charges, recomputes the total, and
// marks the consumed readings billed, all in one transaction. A lost
// numbering race surfaces as a conflict the caller may retry.
func (s *InvoiceService) CreateInvoice(ctx context.Context, rentalID uint, in CreateInvoiceInput) (*models.Invoice, error) {
	if in.IssueDate.IsZero() {
		in.IssueDate = time.Now()
	}
	if in.DueDate.IsZero() {
		in.DueDate = in.IssueDate.AddDate(0, 0, 7)
	}
	if !in.DueDate.After(in.IssueDate) {
		return nil, apperr.Invalid("due_date", "must_be_after_issue_date")
	}

	var invoice models.Invoice
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rental models.Rental
		if err := tx.First(&rental, rentalID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperr.NotFound("rental")
			}
			return err
		}

		var unbilled []models.ElectricityUsage
		err := tx.Where("room_id = ? AND is_billed = ?", rental.RoomID, false).
			Order("reading_date ASC").
			Find(&unbilled).Error
		if err != nil {
			return err
		}
		var units float64
		for i := range unbilled {
			units += unbilled[i].UnitsUsed
		}

		rate := models.UtilityRate{ID: models.UtilityRateID}
		if err := tx.Where("id = ?", models.UtilityRateID).FirstOrCreate(&rate).Error; err != nil {
			return err
		}

		number, err := nextInvoiceNumber(tx, in.IssueDate)
		if err != nil {
			return err
		}

		invoice = models.Invoice{
			RentalID:          rental.ID,
			InvoiceNumber:     number,
			IssueDate:         in.IssueDate,
			DueDate:           in.DueDate,
			RoomRent:          rental.MonthlyRent,
			ElectricityCharge: units * rate.ElectricityRatePerUnit,
			WaterCharge:       rate.WaterFlatRate,
			Status:            models.InvoiceUnpaid,
		}
		invoice.TotalAmount = invoice.ComputeTotalAmount()
		if err := tx.Create(&invoice).Error; err != nil {
			if isDuplicate(err) {
				return apperr.Conflict("invoice number " + number + " already taken")
			}
			return err
		}

		for i := range unbilled {
			res := tx.Model(&models.ElectricityUsage{}).
				Where("id = ?", unbilled[i].ID).
				Update("is_billed", true)
			if res.Error != nil {
				return res.Error
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

// MarkPaid settles an invoice. Valid from unpaid or overdue.
func (s *InvoiceService) MarkPaid(ctx context.Context, id uint) (*models.Invoice, error) {
	return s.setStatus(ctx, id, models.InvoicePaid, func(inv *models.Invoice) bool {
		return inv.Status == models.InvoiceUnpaid || inv.Status == models.InvoiceOverdue
	})
}

// MarkOverdue is the stateful transition, distinct from the IsOverdueAt
// predicate. Only unpaid invoices can become overdue.
func (s *InvoiceService) MarkOverdue(ctx context.Context, id uint) (*models.Invoice, error) {
	return s.setStatus(ctx, id, models.InvoiceOverdue, func(inv *models.Invoice) bool {
		return inv.Status == models.InvoiceUnpaid
	})
}

func (s *InvoiceService) setStatus(ctx context.Context, id uint, next models.InvoiceStatus, allowed func(*models.Invoice) bool) (*models.Invoice, error) {
	var invoice models.Invoice
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&invoice, id).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperr.NotFound("invoice")
			}
			return err
		}
		if !allowed(&invoice) {
			return apperr.Invalid("status", fmt.Sprintf("cannot_transition_%s_to_%s", invoice.Status, next))
		}
		invoice.Status = next
		// the derived total is re-applied on every persist
		invoice.TotalAmount = invoice.ComputeTotalAmount()
		return tx.Save(&invoice).Error
	})
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

// OverdueInvoices is the sweep query: unpaid and past due. Scheduling the
// sweep is the caller's concern.
func (s *InvoiceService) OverdueInvoices(ctx context.Context) ([]models.Invoice, error) {
	var invoices []models.Invoice
	err := s.db.WithContext(ctx).
		Where("status = ? AND due_date < ?", models.InvoiceUnpaid, time.Now()).
		Order("due_date ASC").
		Find(&invoices).Error
	return invoices, err
}

// SweepOverdue transitions every unpaid, past-due invoice to overdue and
// returns how many changed.
func (s *InvoiceService) SweepOverdue(ctx context.Context) (int, error) {
	res := s.db.WithContext(ctx).Model(&models.Invoice{}).
		Where("status = ? AND due_date < ?", models.InvoiceUnpaid, time.Now()).
		Update("status", models.InvoiceOverdue)
	return int(res.RowsAffected), res.Error
}

// IsOverdue is the pure predicate at the current instant.
func (s *InvoiceService) IsOverdue(inv *models.Invoice) bool {
	return inv.IsOverdueAt(time.Now())
}

// DaysUntilDue is negative once the invoice is overdue.
func (s *InvoiceService) DaysUntilDue(inv *models.Invoice) int {
	return inv.DaysUntilDueAt(time.Now())
}

// ForRental lists a rental's invoices, newest first.
func (s *InvoiceService) ForRental(ctx context.Context, rentalID uint) ([]models.Invoice, error) {
	var invoices []models.Invoice
	err := s.db.WithContext(ctx).
		Where("rental_id = ?", rentalID).
		Order("id DESC").
		Find(&invoices).Error
	return invoices, err
}

func isDuplicate(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint") || strings.Contains(msg, "duplicate key")
}
