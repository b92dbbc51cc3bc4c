package lot

import "errors"

// Sentinel failures returned by lot operations. All of them are
// recoverable by the caller; a failed operation never leaves the lot
// partially mutated.
var (
	ErrNoAvailableSpot    = errors.New("no available spot")
	ErrInvalidReservation = errors.New("invalid reservation")
	ErrInvalidWindow      = errors.New("invalid reservation window")
	ErrVehicleNotFound    = errors.New("vehicle not found")
	ErrInvalidCategory    = errors.New("invalid category")
	ErrAlreadyParked      = errors.New("vehicle already parked")
)
