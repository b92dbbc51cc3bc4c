package lot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanFit(t *testing.T) {
	cases := []struct {
		spot    SpotType
		vehicle VehicleType
		fits    bool
	}{
		{SpotStandard, VehicleCar, true},
		{SpotStandard, VehicleBike, true},
		{SpotStandard, VehicleTruck, false},
		{SpotStandard, VehicleBus, false},
		{SpotCompact, VehicleBike, true},
		{SpotCompact, VehicleCar, false},
		{SpotCompact, VehicleTruck, false},
		{SpotCompact, VehicleBus, false},
		{SpotOversized, VehicleCar, true},
		{SpotOversized, VehicleBike, true},
		{SpotOversized, VehicleTruck, true},
		{SpotOversized, VehicleBus, true},
		{SpotCharging, VehicleCar, true},
		{SpotCharging, VehicleBike, false},
		{SpotCharging, VehicleTruck, false},
		{SpotCharging, VehicleBus, false},
		{SpotAccessible, VehicleCar, true},
		{SpotAccessible, VehicleBike, true},
		{SpotAccessible, VehicleTruck, false},
		{SpotAccessible, VehicleBus, false},
	}
	for _, tc := range cases {
		spot := &Spot{ID: "S1", Type: tc.spot, State: SpotFree}
		fits, err := spot.CanFit(tc.vehicle)
		require.NoError(t, err)
		assert.Equalf(t, tc.fits, fits, "%s spot, %s vehicle", tc.spot, tc.vehicle)
	}
}

func TestCanFitUnknownVehicleType(t *testing.T) {
	spot := &Spot{ID: "S1", Type: SpotStandard, State: SpotFree}
	_, err := spot.CanFit(VehicleType("HOVERCRAFT"))
	assert.ErrorIs(t, err, ErrInvalidCategory)
}

func TestIsAvailable(t *testing.T) {
	spot := &Spot{ID: "S1", Type: SpotStandard, State: SpotFree}
	assert.True(t, spot.IsAvailable())

	spot.State = SpotOccupied
	assert.False(t, spot.IsAvailable())

	spot.State = SpotFree
	spot.ReservationID = 7
	assert.False(t, spot.IsAvailable(), "free spot with an attached reservation is not available")
}

func TestParseVehicleType(t *testing.T) {
	vt, err := ParseVehicleType("car")
	require.NoError(t, err)
	assert.Equal(t, VehicleCar, vt)

	_, err = ParseVehicleType("rocket")
	assert.ErrorIs(t, err, ErrInvalidCategory)
}

func TestNewVehicleNormalizesPlate(t *testing.T) {
	v, err := NewVehicle(" ab12cd ", VehicleCar)
	require.NoError(t, err)
	assert.Equal(t, "AB12CD", v.Plate)

	_, err = NewVehicle("XY99", VehicleType("SLED"))
	assert.ErrorIs(t, err, ErrInvalidCategory)
}
