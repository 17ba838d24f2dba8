package models

import "testing"

func TestComputeUnitsUsed(t *testing.T) {
	usage := ElectricityUsage{PreviousUnits: 1000, CurrentUnits: 1200}
	if got := usage.ComputeUnitsUsed(); got != 200 {
		t.Fatalf("units used = %v, want 200", got)
	}
}

func TestComputeUnitsUsedNegativeDelta(t *testing.T) {
	// meter rollover or replacement: the negative delta is kept as-is
	usage := ElectricityUsage{PreviousUnits: 9990, CurrentUnits: 10}
	if got := usage.ComputeUnitsUsed(); got != -9980 {
		t.Fatalf("units used = %v, want -9980", got)
	}
}
