package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/motelworks/motel-manager/internal/apperr"
	"github.com/motelworks/motel-manager/internal/models"
	"github.com/motelworks/motel-manager/internal/validation"
)

// RentalService owns the booking contract lifecycle. Authorization for the
// transitions lives in the gate middleware, not here.
type RentalService struct {
	db *gorm.DB
}

func NewRentalService(db *gorm.DB) *RentalService { return &RentalService{db: db} }

// TenantInput carries the paperwork created atomically with the rental.
// The format rules are hard invariants, re-validated server-side.
type TenantInput struct {
	FirstName        string  `json:"first_name" validate:"required"`
	LastName         string  `json:"last_name" validate:"required"`
	IDCardNumber     string  `json:"id_card_number" validate:"required,idcard"`
	Phone            string  `json:"phone" validate:"required,thphone"`
	Email            string  `json:"email" validate:"omitempty,email"`
	Address          string  `json:"address"`
	PostalCode       string  `json:"postal_code" validate:"required,postcode"`
	EmergencyContact string  `json:"emergency_contact"`
	EmergencyPhone   string  `json:"emergency_phone" validate:"omitempty,thphone"`
	Occupation       string  `json:"occupation"`
	Workplace        string  `json:"workplace"`
	MonthlyIncome    float64 `json:"monthly_income" validate:"omitempty,gte=0"`
}

type BookingInput struct {
	RoomID            uint        `json:"room_id" validate:"required"`
	StartDate         time.Time   `json:"start_date"`
	EndDate           time.Time   `json:"end_date"`
	DepositAmount     float64     `json:"deposit_amount" validate:"omitempty,gte=0"`
	AdvancePayment    float64     `json:"advance_payment" validate:"omitempty,gte=0"`
	SpecialConditions string      `json:"special_conditions"`
	Notes             string      `json:"notes"`
	Tenant            TenantInput `json:"tenant"`
}

// CreateBooking validates the request and creates the Rental (pending) and
// its TenantInformation in one transaction; both persist or neither does.
func (s *RentalService) CreateBooking(ctx context.Context, userID uint, in BookingInput) (*models.Rental, error) {
	v := validation.Violations{}
	validation.Struct(in, v)
	validation.Struct(in.Tenant, v)
	today := truncateToDay(time.Now())
	if in.StartDate.IsZero() {
		v["start_date"] = "required"
	} else if in.StartDate.Before(today) {
		v["start_date"] = "must_not_be_in_the_past"
	}
	if in.EndDate.IsZero() {
		v["end_date"] = "required"
	} else if !in.EndDate.After(in.StartDate) {
		v["end_date"] = "must_be_after_start_date"
	}
	if !v.Empty() {
		return nil, apperr.Validation(v)
	}

	db := s.db.WithContext(ctx)
	var room models.Room
	if err := db.First(&room, in.RoomID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.NotFound("room")
		}
		return nil, err
	}

	months := monthsBetween(in.StartDate, in.EndDate)
	rental := models.Rental{
		UserID:            userID,
		RoomID:            room.ID,
		StartDate:         in.StartDate,
		EndDate:           in.EndDate,
		Status:            models.RentalPending,
		MonthlyRent:       room.PricePerMonth,
		TotalPrice:        float64(months) * room.PricePerMonth,
		DepositAmount:     in.DepositAmount,
		AdvancePayment:    in.AdvancePayment,
		SpecialConditions: in.SpecialConditions,
		Notes:             in.Notes,
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&rental).Error; err != nil {
			return err
		}
		tenant := models.TenantInformation{
			RentalID:         rental.ID,
			FirstName:        in.Tenant.FirstName,
			LastName:         in.Tenant.LastName,
			IDCardNumber:     in.Tenant.IDCardNumber,
			Phone:            in.Tenant.Phone,
			Email:            in.Tenant.Email,
			Address:          in.Tenant.Address,
			PostalCode:       in.Tenant.PostalCode,
			EmergencyContact: in.Tenant.EmergencyContact,
			EmergencyPhone:   in.Tenant.EmergencyPhone,
			Occupation:       in.Tenant.Occupation,
			Workplace:        in.Tenant.Workplace,
			MonthlyIncome:    in.Tenant.MonthlyIncome,
		}
		if err := tx.Create(&tenant).Error; err != nil {
			return err
		}
		rental.Tenant = &tenant
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &rental, nil
}

// Get loads a rental with its tenant and room.
func (s *RentalService) Get(ctx context.Context, id uint) (*models.Rental, error) {
	var rental models.Rental
	err := s.db.WithContext(ctx).
		Preload("Tenant").Preload("Room").
		First(&rental, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.NotFound("rental")
		}
		return nil, err
	}
	return &rental, nil
}

// Approve moves a pending booking to approved.
func (s *RentalService) Approve(ctx context.Context, id uint) (*models.Rental, error) {
	return s.transition(ctx, id, models.RentalApproved, nil)
}

// Activate moves an approved contract to active: assigns the contract
// number, verifies the one-active-rental-per-room invariant inside the
// transaction, and marks the room occupied.
func (s *RentalService) Activate(ctx context.Context, id uint) (*models.Rental, error) {
	return s.transition(ctx, id, models.RentalActive, func(tx *gorm.DB, rental *models.Rental) error {
		var active int64
		err := tx.Model(&models.Rental{}).
			Where("room_id = ? AND status = ? AND id <> ?", rental.RoomID, models.RentalActive, rental.ID).
			Count(&active).Error
		if err != nil {
			return err
		}
		if active > 0 {
			return apperr.Conflict("room already has an active rental")
		}
		if rental.ContractNumber == nil {
			number, err := nextContractNumber(tx, time.Now())
			if err != nil {
				return err
			}
			now := time.Now()
			rental.ContractNumber = &number
			rental.ContractDate = &now
		}
		return tx.Model(&models.Room{}).Where("id = ?", rental.RoomID).
			Update("status", models.RoomOccupied).Error
	})
}

// Complete closes an active contract and frees the room.
func (s *RentalService) Complete(ctx context.Context, id uint) (*models.Rental, error) {
	return s.transition(ctx, id, models.RentalCompleted, func(tx *gorm.DB, rental *models.Rental) error {
		return tx.Model(&models.Room{}).Where("id = ?", rental.RoomID).
			Update("status", models.RoomAvailable).Error
	})
}

// Cancel is only reachable from pending or approved.
func (s *RentalService) Cancel(ctx context.Context, id uint) (*models.Rental, error) {
	return s.transition(ctx, id, models.RentalCancelled, nil)
}

func (s *RentalService) transition(ctx context.Context, id uint, next models.RentalStatus, extra func(*gorm.DB, *models.Rental) error) (*models.Rental, error) {
	var rental models.Rental
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&rental, id).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperr.NotFound("rental")
			}
			return err
		}
		if !rental.CanTransitionTo(next) {
			return apperr.Invalid("status", fmt.Sprintf("cannot_transition_%s_to_%s", rental.Status, next))
		}
		rental.Status = next
		if extra != nil {
			if err := extra(tx, &rental); err != nil {
				return err
			}
		}
		return tx.Save(&rental).Error
	})
	if err != nil {
		return nil, err
	}
	return &rental, nil
}

// TotalPaid sums payments with status paid.
func (s *RentalService) TotalPaid(ctx context.Context, rentalID uint) (float64, error) {
	var total float64
	err := s.db.WithContext(ctx).Model(&models.Payment{}).
		Where("rental_id = ? AND status = ?", rentalID, models.PaymentPaid).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	return total, err
}

// RemainingBalance is total_price minus total paid.
func (s *RentalService) RemainingBalance(ctx context.Context, rentalID uint) (float64, error) {
	rental, err := s.Get(ctx, rentalID)
	if err != nil {
		return 0, err
	}
	paid, err := s.TotalPaid(ctx, rentalID)
	if err != nil {
		return 0, err
	}
	return rental.TotalPrice - paid, nil
}

// IsFullyPaid holds exactly when the remaining balance is <= 0.
func (s *RentalService) IsFullyPaid(ctx context.Context, rentalID uint) (bool, error) {
	balance, err := s.RemainingBalance(ctx, rentalID)
	if err != nil {
		return false, err
	}
	return balance <= 0, nil
}

// Active and Pending are read-side conveniences over the status column.
func (s *RentalService) Active(ctx context.Context) ([]models.Rental, error) {
	return s.byStatus(ctx, models.RentalActive)
}

func (s *RentalService) Pending(ctx context.Context) ([]models.Rental, error) {
	return s.byStatus(ctx, models.RentalPending)
}

func (s *RentalService) byStatus(ctx context.Context, status models.RentalStatus) ([]models.Rental, error) {
	var rentals []models.Rental
	err := s.db.WithContext(ctx).
		Where("status = ?", status).
		Order("id DESC").
		Find(&rentals).Error
	return rentals, err
}

// ForUser lists a user's own bookings, newest first.
func (s *RentalService) ForUser(ctx context.Context, userID uint) ([]models.Rental, error) {
	var rentals []models.Rental
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Preload("Tenant").
		Order("id DESC").
		Find(&rentals).Error
	return rentals, err
}

type PaymentInput struct {
	Amount        float64              `json:"amount" validate:"required,gt=0"`
	PaymentDate   time.Time            `json:"payment_date"`
	Status        models.PaymentStatus `json:"status"`
	PaymentMethod string               `json:"payment_method"`
	SlipImagePath string               `json:"slip_image_path"`
}

// RecordPayment appends a payment to a rental. The reference is generated
// server-side and returned to the payer for reconciliation.
func (s *RentalService) RecordPayment(ctx context.Context, rentalID uint, in PaymentInput) (*models.Payment, error) {
	v := validation.Violations{}
	validation.Struct(in, v)
	switch in.Status {
	case "", models.PaymentPending, models.PaymentPaid, models.PaymentFailed:
	default:
		v["status"] = "invalid"
	}
	if !v.Empty() {
		return nil, apperr.Validation(v)
	}
	db := s.db.WithContext(ctx)
	var rental models.Rental
	if err := db.First(&rental, rentalID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.NotFound("rental")
		}
		return nil, err
	}
	payment := models.Payment{
		RentalID:      rentalID,
		Amount:        in.Amount,
		PaymentDate:   in.PaymentDate,
		Status:        in.Status,
		PaymentMethod: in.PaymentMethod,
		SlipImagePath: in.SlipImagePath,
		Reference:     uuid.NewString(),
	}
	if payment.Status == "" {
		payment.Status = models.PaymentPending
	}
	if payment.PaymentDate.IsZero() {
		payment.PaymentDate = time.Now()
	}
	if err := db.Create(&payment).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// monthsBetween counts started months of the term, minimum 1.
func monthsBetween(start, end time.Time) int {
	if !end.After(start) {
		return 0
	}
	months := 0
	for cursor := start; cursor.Before(end); cursor = cursor.AddDate(0, 1, 0) {
		months++
	}
	return months
}
