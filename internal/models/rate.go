package models

import "time"

// UtilityRateID pins the singleton row.
const UtilityRateID uint = 1

// UtilityRate holds current utility pricing. It is a singleton record,
// lazily created with zero rates when first read; rate 0 is a legitimate
// value (unconfigured system bills utilities at zero), not an error.
type UtilityRate struct {
	ID                     uint      `gorm:"primaryKey" json:"id"`
	ElectricityRatePerUnit float64   `gorm:"not null;default:0" json:"electricity_rate_per_unit"`
	WaterFlatRate          float64   `gorm:"not null;default:0" json:"water_flat_rate"`
	CreatedAt              time.Time `json:"created_at"`
	UpdatedAt              time.Time `json:"updated_at"`
}
