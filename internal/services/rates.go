package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/motelworks/motel-manager/internal/models"
)

// RateService owns the utility rate singleton. Invoice computation takes
// this as an explicit dependency rather than reaching for global state.
type RateService struct {
	db *gorm.DB
}

func NewRateService(db *gorm.DB) *RateService { return &RateService{db: db} }

// Current returns the singleton rate row, creating it with zero rates if
// missing. Callers must treat rate 0 as legitimate, not as an error.
func (s *RateService) Current(ctx context.Context) (*models.UtilityRate, error) {
	rate := models.UtilityRate{ID: models.UtilityRateID}
	err := s.db.WithContext(ctx).
		Where("id = ?", models.UtilityRateID).
		FirstOrCreate(&rate).Error
	if err != nil {
		return nil, err
	}
	return &rate, nil
}

// RatePatch applies partial updates; nil fields are left untouched.
type RatePatch struct {
	ElectricityRatePerUnit *float64 `json:"electricity_rate_per_unit"`
	WaterFlatRate          *float64 `json:"water_flat_rate"`
}

// UpdateRates patches the singleton.
func (s *RateService) UpdateRates(ctx context.Context, patch RatePatch) (*models.UtilityRate, error) {
	rate, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}
	updates := map[string]any{}
	if patch.ElectricityRatePerUnit != nil {
		updates["electricity_rate_per_unit"] = *patch.ElectricityRatePerUnit
	}
	if patch.WaterFlatRate != nil {
		updates["water_flat_rate"] = *patch.WaterFlatRate
	}
	if len(updates) == 0 {
		return rate, nil
	}
	if err := s.db.WithContext(ctx).Model(rate).Updates(updates).Error; err != nil {
		return nil, err
	}
	return rate, nil
}

// ElectricityRate is a convenience read of the per-unit electricity rate.
func (s *RateService) ElectricityRate(ctx context.Context) (float64, error) {
	rate, err := s.Current(ctx)
	if err != nil {
		return 0, err
	}
	return rate.ElectricityRatePerUnit, nil
}

// WaterRate is a convenience read of the flat water rate.
func (s *RateService) WaterRate(ctx context.Context) (float64, error) {
	rate, err := s.Current(ctx)
	if err != nil {
		return 0, err
	}
	return rate.WaterFlatRate, nil
}
