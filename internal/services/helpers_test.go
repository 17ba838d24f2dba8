package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/motelworks/motel-manager/internal/db"
	"github.com/motelworks/motel-manager/internal/models"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err, "open sqlite")
	for _, m := range db.Models() {
		require.NoError(t, conn.AutoMigrate(m), "automigrate %T", m)
	}
	return conn
}

func createUser(t *testing.T, conn *gorm.DB) models.User {
	t.Helper()
	user := models.User{Name: "Somchai", Email: fmt.Sprintf("%s@example.com", t.Name()), PasswordHash: "x"}
	require.NoError(t, conn.Create(&user).Error)
	return user
}

func createRoom(t *testing.T, conn *gorm.DB, price float64) models.Room {
	t.Helper()
	room := models.Room{Name: "A-101", Type: "studio", PricePerMonth: price, Status: models.RoomAvailable}
	require.NoError(t, conn.Create(&room).Error)
	return room
}

func createRental(t *testing.T, conn *gorm.DB, userID, roomID uint, status models.RentalStatus, monthlyRent float64) models.Rental {
	t.Helper()
	start := time.Now().AddDate(0, 0, 1)
	rental := models.Rental{
		UserID:      userID,
		RoomID:      roomID,
		StartDate:   start,
		EndDate:     start.AddDate(0, 6, 0),
		Status:      status,
		MonthlyRent: monthlyRent,
		TotalPrice:  6 * monthlyRent,
	}
	require.NoError(t, conn.Create(&rental).Error)
	return rental
}

func validTenant() TenantInput {
	return TenantInput{
		FirstName:    "Somchai",
		LastName:     "Jaidee",
		IDCardNumber: "1234567890123",
		Phone:        "0812345678",
		Email:        "somchai@example.com",
		Address:      "99 Sukhumvit Rd",
		PostalCode:   "10110",
	}
}

func floatPtr(v float64) *float64 { return &v }
