package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/motelworks/motel-manager/internal/apperr"
	"github.com/motelworks/motel-manager/internal/models"
)

// ElectricityService is the per-room meter reading ledger.
type ElectricityService struct {
	db *gorm.DB
}

func NewElectricityService(db *gorm.DB) *ElectricityService {
	return &ElectricityService{db: db}
}

// ReadingInput is one meter-reading event. PreviousUnits may be supplied
// explicitly; when nil it defaults to the prior reading's CurrentUnits
// (0 if the room has no readings yet).
type ReadingInput struct {
	RoomID        uint
	ReadingDate   time.Time
	CurrentUnits  float64
	PreviousUnits *float64
}

// RecordReading persists a reading. UnitsUsed is always recomputed here
// regardless of anything the client sent; a current reading below the
// previous one is recorded as-is (negative delta, e.g. meter rollover).
func (s *ElectricityService) RecordReading(ctx context.Context, in ReadingInput) (*models.ElectricityUsage, error) {
	db := s.db.WithContext(ctx)
	var room models.Room
	if err := db.First(&room, in.RoomID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.NotFound("room")
		}
		return nil, err
	}

	previous := 0.0
	if in.PreviousUnits != nil {
		previous = *in.PreviousUnits
	} else if latest, err := s.LatestForRoom(ctx, in.RoomID); err != nil {
		return nil, err
	} else if latest != nil {
		previous = latest.CurrentUnits
	}

	usage := models.ElectricityUsage{
		RoomID:        in.RoomID,
		ReadingDate:   in.ReadingDate,
		PreviousUnits: previous,
		CurrentUnits:  in.CurrentUnits,
	}
	usage.UnitsUsed = usage.ComputeUnitsUsed()
	if err := db.Create(&usage).Error; err != nil {
		return nil, err
	}
	return &usage, nil
}

// LatestForRoom returns the most recent reading by ReadingDate, or nil if
// the room has none.
func (s *ElectricityService) LatestForRoom(ctx context.Context, roomID uint) (*models.ElectricityUsage, error) {
	var usage models.ElectricityUsage
	err := s.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Order("reading_date DESC").
		First(&usage).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &usage, nil
}

// ForRoom lists a room's readings, newest first.
func (s *ElectricityService) ForRoom(ctx context.Context, roomID uint) ([]models.ElectricityUsage, error) {
	var usages []models.ElectricityUsage
	err := s.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Order("reading_date DESC").
		Find(&usages).Error
	return usages, err
}

// Unbilled lists readings not yet folded into an invoice, oldest first.
func (s *ElectricityService) Unbilled(ctx context.Context, roomID uint) ([]models.ElectricityUsage, error) {
	var usages []models.ElectricityUsage
	err := s.db.WithContext(ctx).
		Where("room_id = ? AND is_billed = ?", roomID, false).
		Order("reading_date ASC").
		Find(&usages).Error
	return usages, err
}

// InDateRange lists a room's readings within [from, to], oldest first.
func (s *ElectricityService) InDateRange(ctx context.Context, roomID uint, from, to time.Time) ([]models.ElectricityUsage, error) {
	var usages []models.ElectricityUsage
	err := s.db.WithContext(ctx).
		Where("room_id = ? AND reading_date BETWEEN ? AND ?", roomID, from, to).
		Order("reading_date ASC").
		Find(&usages).Error
	return usages, err
}

// MarkBilled flips IsBilled. Called exactly once per reading, by invoice
// creation, when the consumption is folded into an invoice.
func (s *ElectricityService) MarkBilled(ctx context.Context, usageID uint) error {
	res := s.db.WithContext(ctx).
		Model(&models.ElectricityUsage{}).
		Where("id = ?", usageID).
		Update("is_billed", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("electricity usage")
	}
	return nil
}
