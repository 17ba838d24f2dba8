package models

import "time"

// User & RBAC models. A user's effective permission set is the union of
// the permissions of all assigned roles, recomputed on every check.
type User struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Name         string `gorm:"size:255;not null" json:"name"`
	Email        string `gorm:"size:255;unique;not null;index" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`
	Roles        []Role `gorm:"many2many:user_roles" json:"roles,omitempty"`
	// deleting a user removes their rentals
	Rentals   []Rental  `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Role struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	Name        string       `gorm:"size:100;unique;not null" json:"name"`
	DisplayName string       `gorm:"size:255" json:"display_name"`
	Description string       `json:"description"`
	Permissions []Permission `gorm:"many2many:role_permissions" json:"permissions,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

type Permission struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:100;unique;not null" json:"name"`
	DisplayName string    `gorm:"size:255" json:"display_name"`
	Description string    `json:"description"`
	Group       string    `gorm:"size:100;column:group_name" json:"group"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// HasPermission reports whether this role grants the named permission.
func (r *Role) HasPermission(name string) bool {
	for _, p := range r.Permissions {
		if p.Name == name {
			return true
		}
	}
	return false
}
