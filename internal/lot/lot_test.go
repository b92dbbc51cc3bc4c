package lot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func singleSpotLot(t *testing.T, spotType SpotType) *Lot {
	t.Helper()
	l := New("test lot", 0)
	require.NoError(t, l.AddSpot("S1", spotType))
	return l
}

func TestCheckInAndCheckoutFreesSpot(t *testing.T) {
	l := singleSpotLot(t, SpotStandard)
	car := mustVehicle(t, "AB12", VehicleCar)

	spot, err := l.CheckIn(car)
	require.NoError(t, err)
	assert.Equal(t, "S1", spot.ID)
	assert.Equal(t, SpotOccupied, spot.State)
	assert.True(t, l.IsParked("ab12"))

	// Duplicate check-in for the same plate is rejected.
	_, err = l.CheckIn(car)
	assert.ErrorIs(t, err, ErrAlreadyParked)

	sess, err := l.PrepareCheckout("AB12")
	require.NoError(t, err)
	assert.False(t, sess.Exit.IsZero())

	l.Finalize("AB12", true)
	assert.False(t, l.IsParked("AB12"))
	assert.Equal(t, SpotFree, spot.State)

	// A new car can park now.
	other := mustVehicle(t, "CD34", VehicleCar)
	_, err = l.CheckIn(other)
	assert.NoError(t, err)
}

func TestFinalizeFailureKeepsVehicleParked(t *testing.T) {
	l := singleSpotLot(t, SpotStandard)
	car := mustVehicle(t, "AB12", VehicleCar)

	spot, err := l.CheckIn(car)
	require.NoError(t, err)
	_, err = l.PrepareCheckout("AB12")
	require.NoError(t, err)

	l.Finalize("AB12", false)
	assert.True(t, l.IsParked("AB12"))
	assert.Equal(t, SpotOccupied, spot.State)
}

func TestCheckInNoCompatibleSpot(t *testing.T) {
	l := singleSpotLot(t, SpotCompact)
	car := mustVehicle(t, "AB12", VehicleCar)

	_, err := l.CheckIn(car)
	assert.ErrorIs(t, err, ErrNoAvailableSpot)
	assert.False(t, l.IsParked("AB12"))
}

func TestPrepareCheckoutUnknownPlate(t *testing.T) {
	l := singleSpotLot(t, SpotStandard)
	_, err := l.PrepareCheckout("ZZ99")
	assert.ErrorIs(t, err, ErrVehicleNotFound)
}

func TestReservationBlocksOnlyCompatibleSpot(t *testing.T) {
	l := singleSpotLot(t, SpotStandard)
	reserved := mustVehicle(t, "CD34", VehicleCar)
	walkIn := mustVehicle(t, "AB12", VehicleCar)
	now := time.Now()

	_, err := l.MakeReservation(reserved, now, now.Add(2*time.Hour))
	require.NoError(t, err)

	_, err = l.CheckIn(walkIn)
	assert.ErrorIs(t, err, ErrNoAvailableSpot)

	// Cancelling the reservation frees the spot again.
	require.True(t, l.CancelReservation("CD34"))
	_, err = l.CheckIn(walkIn)
	assert.NoError(t, err)
}

func TestMakeReservationValidation(t *testing.T) {
	l := singleSpotLot(t, SpotStandard)
	car := mustVehicle(t, "AB12", VehicleCar)
	now := time.Now()

	_, err := l.MakeReservation(car, now.Add(time.Hour), now.Add(time.Hour))
	assert.ErrorIs(t, err, ErrInvalidWindow)

	_, err = l.MakeReservation(car, now.Add(2*time.Hour), now.Add(time.Hour))
	assert.ErrorIs(t, err, ErrInvalidWindow)
	assert.Empty(t, l.ActiveReservations())
}

func TestMakeReservationConflicts(t *testing.T) {
	l := New("test lot", 0)
	require.NoError(t, l.AddSpot("S1", SpotStandard))
	require.NoError(t, l.AddSpot("S2", SpotStandard))
	car := mustVehicle(t, "AB12", VehicleCar)
	now := time.Now()

	_, err := l.MakeReservation(car, now.Add(-time.Minute), now.Add(2*time.Hour))
	require.NoError(t, err)

	// Overlapping second reservation for the same plate.
	_, err = l.MakeReservation(car, now.Add(time.Hour), now.Add(3*time.Hour))
	assert.ErrorIs(t, err, ErrInvalidReservation)

	// Back-to-back windows do not conflict.
	_, err = l.MakeReservation(car, now.Add(2*time.Hour), now.Add(3*time.Hour))
	assert.NoError(t, err)
}

func TestMakeReservationWindowPacking(t *testing.T) {
	l := singleSpotLot(t, SpotStandard)
	first := mustVehicle(t, "AB12", VehicleCar)
	second := mustVehicle(t, "CD34", VehicleCar)
	now := time.Now()

	_, err := l.MakeReservation(first, now.Add(time.Hour), now.Add(2*time.Hour))
	require.NoError(t, err)

	// Overlapping window for another vehicle on the only spot.
	_, err = l.MakeReservation(second, now.Add(90*time.Minute), now.Add(3*time.Hour))
	assert.ErrorIs(t, err, ErrNoAvailableSpot)

	// A window that does not overlap the attached reservation can
	// still be booked onto the same spot.
	_, err = l.MakeReservation(second, now.Add(2*time.Hour), now.Add(3*time.Hour))
	assert.NoError(t, err)
}

func TestCheckInWithReservation(t *testing.T) {
	l := singleSpotLot(t, SpotStandard)
	car := mustVehicle(t, "CD34", VehicleCar)
	now := time.Now()

	res, err := l.MakeReservation(car, now.Add(-time.Minute), now.Add(2*time.Hour))
	require.NoError(t, err)

	// Wrong plate is rejected.
	imposter := mustVehicle(t, "ZZ99", VehicleCar)
	_, err = l.CheckInWithReservation(imposter, res.ID)
	assert.ErrorIs(t, err, ErrInvalidReservation)

	spot, err := l.CheckInWithReservation(car, res.ID)
	require.NoError(t, err)
	assert.Equal(t, res.SpotID, spot.ID)
	assert.Equal(t, ReservationCheckedIn, res.Status)
	assert.True(t, l.IsParked("CD34"))
}

func TestCheckInWithInactiveReservation(t *testing.T) {
	l := singleSpotLot(t, SpotStandard)
	car := mustVehicle(t, "CD34", VehicleCar)
	now := time.Now()

	res, err := l.MakeReservation(car, now.Add(time.Hour), now.Add(2*time.Hour))
	require.NoError(t, err)

	_, err = l.CheckInWithReservation(car, res.ID)
	assert.ErrorIs(t, err, ErrInvalidReservation)
	assert.Equal(t, ReservationPending, res.Status)
}

func TestUseReservationGraceWindow(t *testing.T) {
	l := singleSpotLot(t, SpotStandard)
	car := mustVehicle(t, "CD34", VehicleCar)
	now := time.Now()

	res, err := l.MakeReservation(car, now.Add(5*time.Minute), now.Add(2*time.Hour))
	require.NoError(t, err)

	// Five minutes early is within the ten-minute tolerance.
	spot, err := l.UseReservation("cd34", 10*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, res.SpotID, spot.ID)
	assert.Equal(t, ReservationCheckedIn, res.Status)
}

func TestUseReservationOutsideGrace(t *testing.T) {
	l := singleSpotLot(t, SpotStandard)
	car := mustVehicle(t, "CD34", VehicleCar)
	now := time.Now()

	_, err := l.MakeReservation(car, now.Add(time.Hour), now.Add(2*time.Hour))
	require.NoError(t, err)

	_, err = l.UseReservation("CD34", 10*time.Minute)
	assert.ErrorIs(t, err, ErrInvalidReservation)
}

func TestReservedSpotStillOccupiedByOverstay(t *testing.T) {
	l := singleSpotLot(t, SpotStandard)
	first := mustVehicle(t, "AB12", VehicleCar)
	second := mustVehicle(t, "CD34", VehicleCar)
	base := time.Now()

	l.now = func() time.Time { return base.Add(time.Minute) }
	res1, err := l.MakeReservation(first, base, base.Add(2*time.Hour))
	require.NoError(t, err)
	_, err = l.CheckInWithReservation(first, res1.ID)
	require.NoError(t, err)

	// Back-to-back window on the same spot for another vehicle.
	res2, err := l.MakeReservation(second, base.Add(2*time.Hour), base.Add(3*time.Hour))
	require.NoError(t, err)

	// The first vehicle overstays into the second window; the second
	// holder must not be parked on top of it.
	l.now = func() time.Time { return base.Add(2*time.Hour + time.Minute) }
	_, err = l.CheckInWithReservation(second, res2.ID)
	assert.ErrorIs(t, err, ErrNoAvailableSpot)
	_, err = l.UseReservation("CD34", 10*time.Minute)
	assert.ErrorIs(t, err, ErrNoAvailableSpot)

	spot := l.Spot("S1")
	assert.Equal(t, "AB12", spot.OccupantPlate)
	assert.True(t, l.IsParked("AB12"))
	assert.False(t, l.IsParked("CD34"))
}

func TestCheckedInReservationRetainedOnRelease(t *testing.T) {
	l := singleSpotLot(t, SpotStandard)
	car := mustVehicle(t, "CD34", VehicleCar)
	now := time.Now()

	res, err := l.MakeReservation(car, now.Add(-time.Minute), now.Add(2*time.Hour))
	require.NoError(t, err)
	spot, err := l.CheckInWithReservation(car, res.ID)
	require.NoError(t, err)

	_, err = l.PrepareCheckout("CD34")
	require.NoError(t, err)
	l.Finalize("CD34", true)

	// The checked-in reservation stays attached until the sweep
	// completes it, so the spot is not yet available for walk-ins.
	assert.Equal(t, SpotFree, spot.State)
	assert.Equal(t, res.ID, spot.ReservationID)
	assert.False(t, spot.IsAvailable())
}

func TestCompleteExpiredReservations(t *testing.T) {
	l := singleSpotLot(t, SpotStandard)
	car := mustVehicle(t, "CD34", VehicleCar)
	base := time.Now()

	res, err := l.MakeReservation(car, base.Add(time.Minute), base.Add(time.Hour))
	require.NoError(t, err)

	// Nothing has expired yet.
	assert.Zero(t, l.CompleteExpiredReservations())

	l.now = func() time.Time { return base.Add(2 * time.Hour) }
	assert.Equal(t, 1, l.CompleteExpiredReservations())
	assert.Equal(t, ReservationCompleted, res.Status)

	spot := l.Spot("S1")
	assert.True(t, spot.IsAvailable())
}

func TestLayoutSplit(t *testing.T) {
	l := New("City Center Parking", 100)
	assert.Equal(t, 50, l.AvailableByType(SpotStandard))
	assert.Equal(t, 25, l.AvailableByType(SpotCompact))
	assert.Equal(t, 12, l.AvailableByType(SpotOversized))
	assert.Equal(t, 12, l.AvailableByType(SpotCharging))
	assert.Equal(t, 1, l.AvailableByType(SpotAccessible))
}
