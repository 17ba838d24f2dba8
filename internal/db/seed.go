package db

import (
	"gorm.io/gorm"

	"github.com/motelworks/motel-manager/internal/models"
)

// Seed creates the core permissions and the default roles idempotently.
func Seed(db *gorm.DB) error {
	if err := seedPermissions(db); err != nil {
		return err
	}
	return seedRoles(db)
}

func seedPermissions(db *gorm.DB) error {
	permissions := []models.Permission{
		{Name: "manage-rooms", DisplayName: "Manage rooms", Group: "rooms"},
		{Name: "approve-bookings", DisplayName: "Approve bookings", Group: "bookings"},
		{Name: "reject-bookings", DisplayName: "Reject bookings", Group: "bookings"},
		{Name: "record-readings", DisplayName: "Record meter readings", Group: "metering"},
		{Name: "manage-rates", DisplayName: "Manage utility rates", Group: "billing"},
		{Name: "generate-invoices", DisplayName: "Generate invoices", Group: "billing"},
		{Name: "record-payments", DisplayName: "Record payments", Group: "billing"},
		{Name: "manage-roles", DisplayName: "Manage user roles", Group: "admin"},
	}
	for _, p := range permissions {
		perm := p
		// FirstOrCreate keeps reseeding idempotent
		if err := db.Where("name = ?", p.Name).FirstOrCreate(&perm).Error; err != nil {
			return err
		}
	}
	return nil
}

func seedRoles(db *gorm.DB) error {
	roles := []struct {
		Name        string
		DisplayName string
		Description string
		Permissions []string
	}{
		{
			Name:        "admin",
			DisplayName: "Administrator",
			Description: "Full access to every operation",
			Permissions: []string{
				"manage-rooms", "approve-bookings", "reject-bookings",
				"record-readings", "manage-rates", "generate-invoices",
				"record-payments", "manage-roles",
			},
		},
		{
			Name:        "manager",
			DisplayName: "Manager",
			Description: "Day-to-day motel operations",
			Permissions: []string{
				"manage-rooms", "approve-bookings", "reject-bookings",
				"record-readings", "generate-invoices", "record-payments",
			},
		},
		{
			Name:        "tenant",
			DisplayName: "Tenant",
			Description: "Default role for registered users",
			Permissions: nil,
		},
	}

	for _, r := range roles {
		var role models.Role
		err := db.Where("name = ?", r.Name).First(&role).Error
		if err != nil && err != gorm.ErrRecordNotFound {
			return err
		}
		if err == gorm.ErrRecordNotFound {
			role = models.Role{Name: r.Name, DisplayName: r.DisplayName, Description: r.Description}
			if err := db.Create(&role).Error; err != nil {
				return err
			}
		}
		var perms []models.Permission
		if len(r.Permissions) > 0 {
			if err := db.Where("name IN ?", r.Permissions).Find(&perms).Error; err != nil {
				return err
			}
		}
		if err := db.Model(&role).Association("Permissions").Replace(perms); err != nil {
			return err
		}
	}
	return nil
}
