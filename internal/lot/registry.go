package lot

import (
	"fmt"
	"time"
)

// SpotRegistry owns the fixed set of spots. Spots are scanned in
// insertion order, which keeps allocation deterministic.
type SpotRegistry struct {
	spots []*Spot
	byID  map[string]*Spot
}

func NewSpotRegistry() *SpotRegistry {
	return &SpotRegistry{byID: make(map[string]*Spot)}
}

// Add registers a new spot. The ID must be unique within the lot.
func (r *SpotRegistry) Add(id string, t SpotType) (*Spot, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: spot type %q", ErrInvalidCategory, t)
	}
	if _, exists := r.byID[id]; exists {
		return nil, fmt.Errorf("duplicate spot id %q", id)
	}
	s := &Spot{ID: id, Type: t, State: SpotFree}
	r.spots = append(r.spots, s)
	r.byID[id] = s
	return s, nil
}

// Get returns the spot with the given ID, or nil.
func (r *SpotRegistry) Get(id string) *Spot {
	return r.byID[id]
}

// Spots returns all spots in insertion order.
func (r *SpotRegistry) Spots() []*Spot {
	return r.spots
}

// FindFreeSpot returns the first free spot that accepts the vehicle
// category, or nil when none qualifies. No side effect.
func (r *SpotRegistry) FindFreeSpot(vt VehicleType) (*Spot, error) {
	if !vt.Valid() {
		return nil, fmt.Errorf("%w: vehicle type %q", ErrInvalidCategory, vt)
	}
	for _, s := range r.spots {
		fits, err := s.CanFit(vt)
		if err != nil {
			return nil, err
		}
		if fits && s.IsAvailable() {
			return s, nil
		}
	}
	return nil, nil
}

// FindFreeSpotForWindow returns the first compatible spot that is free
// for the whole window [start, end): either it has no reservation and
// is available, or its current reservation does not overlap the window.
func (r *SpotRegistry) FindFreeSpotForWindow(vt VehicleType, start, end time.Time, reservations *ReservationLedger) (*Spot, error) {
	if !vt.Valid() {
		return nil, fmt.Errorf("%w: vehicle type %q", ErrInvalidCategory, vt)
	}
	for _, s := range r.spots {
		fits, err := s.CanFit(vt)
		if err != nil {
			return nil, err
		}
		if !fits {
			continue
		}
		if s.ReservationID == 0 {
			if s.IsAvailable() {
				return s, nil
			}
			continue
		}
		res, ok := reservations.Get(s.ReservationID)
		if !ok {
			continue
		}
		if !res.Overlaps(start, end) {
			return s, nil
		}
	}
	return nil, nil
}

// Occupy marks the spot occupied by the vehicle. The caller must have
// verified the spot was eligible; Occupy does not re-check.
func (r *SpotRegistry) Occupy(s *Spot, v Vehicle) {
	s.State = SpotOccupied
	s.OccupantPlate = v.Plate
}

// Release frees the spot after a vehicle leaves. A reservation that is
// not checked in is stale at this point and gets dropped with it.
func (r *SpotRegistry) Release(s *Spot, reservations *ReservationLedger) {
	s.State = SpotFree
	s.OccupantPlate = ""
	if s.ReservationID != 0 {
		res, ok := reservations.Get(s.ReservationID)
		if !ok || res.Status != ReservationCheckedIn {
			s.ReservationID = 0
		}
	}
}

// Reserve attaches a reservation to the spot. The spot stays occupied
// if a walk-in is currently parked on it, otherwise it is held.
func (r *SpotRegistry) Reserve(s *Spot, res *Reservation) {
	s.ReservationID = res.ID
	if s.State != SpotOccupied {
		s.State = SpotReserved
	}
}

// CancelReservation detaches the spot's reservation. The spot becomes
// free only if no vehicle is parked on it.
func (r *SpotRegistry) CancelReservation(s *Spot) {
	s.ReservationID = 0
	if s.State != SpotOccupied {
		s.State = SpotFree
	}
}

// AvailableByType counts the spots of the given category that can take
// a walk-in right now.
func (r *SpotRegistry) AvailableByType(t SpotType) int {
	n := 0
	for _, s := range r.spots {
		if s.Type == t && s.IsAvailable() {
			n++
		}
	}
	return n
}
