package models

import "time"

type RoomStatus string

const (
	RoomAvailable   RoomStatus = "available"
	RoomOccupied    RoomStatus = "occupied"
	RoomMaintenance RoomStatus = "maintenance"
)

// Room is a rentable unit. Status is the single source of truth for
// availability; at most one rental may be active per room, enforced by a
// transactional check on activation rather than a DB constraint.
type Room struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	Name          string     `gorm:"size:100;not null" json:"name"`
	Type          string     `gorm:"size:100" json:"type"`
	PricePerMonth float64    `gorm:"not null" json:"price_per_month"`
	Status        RoomStatus `gorm:"size:20;not null;default:'available'" json:"status"`
	Amenities     []string   `gorm:"serializer:json" json:"amenities"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (r *Room) IsAvailable() bool { return r.Status == RoomAvailable }
