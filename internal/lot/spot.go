package lot

import (
	"fmt"
	"strings"
)

// SpotType is the closed set of spot categories.
type SpotType string

const (
	SpotStandard   SpotType = "STANDARD"
	SpotCompact    SpotType = "COMPACT"
	SpotOversized  SpotType = "OVERSIZED"
	SpotCharging   SpotType = "CHARGING"
	SpotAccessible SpotType = "ACCESSIBLE"
)

// Valid reports whether t is one of the known spot categories.
func (t SpotType) Valid() bool {
	switch t {
	case SpotStandard, SpotCompact, SpotOversized, SpotCharging, SpotAccessible:
		return true
	}
	return false
}

// ParseSpotType maps a request string onto a SpotType.
func ParseSpotType(s string) (SpotType, error) {
	t := SpotType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("%w: spot type %q", ErrInvalidCategory, s)
	}
	return t, nil
}

// SpotState is the occupancy state of a spot.
type SpotState string

const (
	SpotFree     SpotState = "FREE"
	SpotOccupied SpotState = "OCCUPIED"
	SpotReserved SpotState = "RESERVED"
)

// Spot is one parking spot. It references its reservation by ledger ID
// and its occupant by plate, never by pointer, so the registries stay
// the single owners of their entities.
type Spot struct {
	ID            string    `json:"id"`
	Type          SpotType  `json:"type"`
	State         SpotState `json:"state"`
	OccupantPlate string    `json:"occupant_plate,omitempty"`
	ReservationID int64     `json:"reservation_id,omitempty"`
}

// IsAvailable reports whether the spot can take a walk-in right now:
// free and with no reservation attached.
func (s *Spot) IsAvailable() bool {
	return s.State == SpotFree && s.ReservationID == 0
}

// CanFit reports whether a vehicle of the given category may park here.
func (s *Spot) CanFit(vt VehicleType) (bool, error) {
	if !vt.Valid() {
		return false, fmt.Errorf("%w: vehicle type %q", ErrInvalidCategory, vt)
	}
	switch s.Type {
	case SpotStandard, SpotAccessible:
		return vt == VehicleCar || vt == VehicleBike, nil
	case SpotCompact:
		return vt == VehicleBike, nil
	case SpotOversized:
		return true, nil
	case SpotCharging:
		return vt == VehicleCar, nil
	}
	return false, fmt.Errorf("%w: spot type %q", ErrInvalidCategory, s.Type)
}
