package models

import "time"

// ElectricityUsage is one meter reading for a room. UnitsUsed is derived
// and recomputed by every write path before persistence; client-supplied
// values are never trusted. Readings are ordered by ReadingDate per room.
type ElectricityUsage struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	RoomID        uint      `gorm:"not null;index" json:"room_id"`
	ReadingDate   time.Time `gorm:"not null;index" json:"reading_date"`
	PreviousUnits float64   `gorm:"not null" json:"previous_units"`
	CurrentUnits  float64   `gorm:"not null" json:"current_units"`
	UnitsUsed     float64   `gorm:"not null" json:"units_used"`
	IsBilled      bool      `gorm:"not null;default:false" json:"is_billed"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ComputeUnitsUsed returns the consumption delta. Negative deltas are
// possible (meter rollover or corrected readings) and are kept as-is.
func (u *ElectricityUsage) ComputeUnitsUsed() float64 {
	return u.CurrentUnits - u.PreviousUnits
}
