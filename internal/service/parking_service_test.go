package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parkinglot/internal/lot"
	"parkinglot/internal/payment"
	"parkinglot/internal/pricing"
	"parkinglot/internal/subscription"
)

func newTestService(t *testing.T, spots map[string]lot.SpotType) *ParkingService {
	t.Helper()
	l := lot.New("test lot", 0)
	for id, st := range spots {
		require.NoError(t, l.AddSpot(id, st))
	}
	pm := pricing.NewManager()
	return NewParkingService(l, pm, subscription.NewManager(pm), NewNotifier(), nil)
}

func validCard() payment.CreditCard {
	return payment.CreditCard{Number: "4111111111111111", Expiry: "12/27", CVV: "123", Holder: "Ana Diaz"}
}

func TestCheckoutWithFailedPaymentKeepsVehicleParked(t *testing.T) {
	svc := newTestService(t, map[string]lot.SpotType{"C1": lot.SpotStandard})
	v, err := lot.NewVehicle("AAA111", lot.VehicleCar)
	require.NoError(t, err)

	spot, err := svc.CheckIn(v)
	require.NoError(t, err)

	pay, err := svc.PrepareCheckout("AAA111")
	require.NoError(t, err)
	assert.Equal(t, payment.StatusPending, pay.Status)

	badCard := payment.CreditCard{Number: "1234", CVV: "12"}
	ok, err := svc.FinalizeCheckout("AAA111", badCard)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.True(t, svc.Lot().IsParked("AAA111"))
	assert.Equal(t, lot.SpotOccupied, svc.Lot().Spot(spot.ID).State)

	// Retry with a valid card settles the same pending payment.
	ok, err = svc.FinalizeCheckout("AAA111", validCard())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.False(t, svc.Lot().IsParked("AAA111"))
	assert.Equal(t, lot.SpotFree, svc.Lot().Spot(spot.ID).State)
}

func TestFinalizeCheckoutWithoutPrepare(t *testing.T) {
	svc := newTestService(t, map[string]lot.SpotType{"C1": lot.SpotStandard})

	_, err := svc.FinalizeCheckout("GHOST", validCard())
	assert.ErrorIs(t, err, lot.ErrVehicleNotFound)
}

func TestSubscriberChecksOutForFree(t *testing.T) {
	svc := newTestService(t, map[string]lot.SpotType{"C1": lot.SpotStandard})
	v, err := lot.NewVehicle("SUB001", lot.VehicleCar)
	require.NoError(t, err)

	sub, err := svc.Subscribe(v, subscription.PlanMonthly, lot.SpotStandard, validCard())
	require.NoError(t, err)
	assert.True(t, sub.Active)

	_, err = svc.CheckIn(v)
	require.NoError(t, err)

	pay, err := svc.PrepareCheckout("SUB001")
	require.NoError(t, err)
	assert.Zero(t, pay.Amount)

	// Zero-fee checkouts settle without a payment method.
	ok, err := svc.FinalizeCheckout("SUB001", nil)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.False(t, svc.Lot().IsParked("SUB001"))
	assert.Equal(t, payment.StatusCompleted, pay.Status)
}

func TestFinalizeCheckoutRequiresMethodForNonZeroFee(t *testing.T) {
	svc := newTestService(t, map[string]lot.SpotType{"C1": lot.SpotStandard})
	v, err := lot.NewVehicle("AAA222", lot.VehicleCar)
	require.NoError(t, err)

	_, err = svc.CheckIn(v)
	require.NoError(t, err)
	_, err = svc.PrepareCheckout("AAA222")
	require.NoError(t, err)

	_, err = svc.FinalizeCheckout("AAA222", nil)
	assert.Error(t, err)
	assert.True(t, svc.Lot().IsParked("AAA222"))
}

func TestSubscribeWithFailedPaymentIsRecorded(t *testing.T) {
	svc := newTestService(t, map[string]lot.SpotType{"C1": lot.SpotStandard})
	v, err := lot.NewVehicle("SUB002", lot.VehicleCar)
	require.NoError(t, err)

	_, err = svc.Subscribe(v, subscription.PlanMonthly, lot.SpotStandard, payment.UPI{ID: "no-at-sign"})
	assert.Error(t, err)
	assert.False(t, svc.Subscriptions().HasActiveSubscription("SUB002"))

	txs := svc.Transactions()
	require.Len(t, txs, 1)
	assert.Equal(t, payment.StatusFailed, txs[0].Status)
}

func TestUseReservationWithinGrace(t *testing.T) {
	svc := newTestService(t, map[string]lot.SpotType{"C1": lot.SpotStandard})
	v, err := lot.NewVehicle("RES001", lot.VehicleCar)
	require.NoError(t, err)

	start := time.Now().Add(5 * time.Minute)
	res, err := svc.MakeReservation(v, start, start.Add(2*time.Hour), Contact{})
	require.NoError(t, err)

	// Five minutes early is inside the ten minute grace.
	spot, err := svc.UseReservation("RES001")
	require.NoError(t, err)
	assert.Equal(t, res.SpotID, spot.ID)
	assert.True(t, svc.Lot().IsParked("RES001"))
}

func TestCancelReservation(t *testing.T) {
	svc := newTestService(t, map[string]lot.SpotType{"C1": lot.SpotStandard})
	v, err := lot.NewVehicle("RES002", lot.VehicleCar)
	require.NoError(t, err)

	start := time.Now().Add(time.Hour)
	_, err = svc.MakeReservation(v, start, start.Add(time.Hour), Contact{})
	require.NoError(t, err)

	assert.True(t, svc.CancelReservation("RES002"))
	assert.False(t, svc.CancelReservation("RES002"))
	assert.Equal(t, 1, svc.Lot().AvailableByType(lot.SpotStandard))
}
