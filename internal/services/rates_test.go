package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/motelworks/motel-manager/internal/models"
)

func TestRateCurrentCreatesSingleton(t *testing.T) {
	conn := testDB(t)
	svc := NewRateService(conn)
	ctx := context.Background()

	rate, err := svc.Current(ctx)
	require.NoError(t, err)
	require.Equal(t, models.UtilityRateID, rate.ID)
	require.Zero(t, rate.ElectricityRatePerUnit)
	require.Zero(t, rate.WaterFlatRate)

	// repeated reads return the same row, never a second one
	again, err := svc.Current(ctx)
	require.NoError(t, err)
	require.Equal(t, rate.ID, again.ID)

	var count int64
	require.NoError(t, conn.Model(&models.UtilityRate{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestUpdateRatesPartialPatch(t *testing.T) {
	conn := testDB(t)
	svc := NewRateService(conn)
	ctx := context.Background()

	rate, err := svc.UpdateRates(ctx, RatePatch{ElectricityRatePerUnit: floatPtr(8)})
	require.NoError(t, err)
	require.EqualValues(t, 8, rate.ElectricityRatePerUnit)
	require.Zero(t, rate.WaterFlatRate)

	// patching water leaves electricity untouched
	rate, err = svc.UpdateRates(ctx, RatePatch{WaterFlatRate: floatPtr(100)})
	require.NoError(t, err)
	require.EqualValues(t, 8, rate.ElectricityRatePerUnit)
	require.EqualValues(t, 100, rate.WaterFlatRate)

	// an empty patch is a no-op
	rate, err = svc.UpdateRates(ctx, RatePatch{})
	require.NoError(t, err)
	require.EqualValues(t, 8, rate.ElectricityRatePerUnit)
	require.EqualValues(t, 100, rate.WaterFlatRate)
}

func TestRateConvenienceReads(t *testing.T) {
	conn := testDB(t)
	svc := NewRateService(conn)
	ctx := context.Background()

	_, err := svc.UpdateRates(ctx, RatePatch{ElectricityRatePerUnit: floatPtr(7.5), WaterFlatRate: floatPtr(120)})
	require.NoError(t, err)

	elec, err := svc.ElectricityRate(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 7.5, elec)

	water, err := svc.WaterRate(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 120, water)
}
