package lot

import (
	"fmt"
	"strings"
	"time"
)

// ReservationLedger owns every reservation ever made in the lot.
// Reservations transition status but are never deleted.
type ReservationLedger struct {
	nextID int64
	all    []*Reservation
	byID   map[int64]*Reservation
}

func NewReservationLedger() *ReservationLedger {
	return &ReservationLedger{nextID: 1, byID: make(map[int64]*Reservation)}
}

// Create records a new pending reservation. The window must satisfy
// start < end strictly.
func (l *ReservationLedger) Create(spotID string, v Vehicle, start, end time.Time) (*Reservation, error) {
	if !start.Before(end) {
		return nil, fmt.Errorf("%w: start %s is not before end %s", ErrInvalidWindow, start.Format(time.RFC3339), end.Format(time.RFC3339))
	}
	res := &Reservation{
		ID:      l.nextID,
		SpotID:  spotID,
		Vehicle: v,
		Start:   start,
		End:     end,
		Status:  ReservationPending,
	}
	l.nextID++
	l.all = append(l.all, res)
	l.byID[res.ID] = res
	return res, nil
}

// Get returns the reservation with the given ID.
func (l *ReservationLedger) Get(id int64) (*Reservation, bool) {
	res, ok := l.byID[id]
	return res, ok
}

// All returns every reservation in creation order.
func (l *ReservationLedger) All() []*Reservation {
	return l.all
}

// ConflictsWith reports whether the plate already holds an active
// reservation overlapping [start, end), or is currently parked.
// Windows that only touch at a boundary do not conflict.
func (l *ReservationLedger) ConflictsWith(plate string, start, end time.Time, now time.Time, sessions *SessionTracker) bool {
	for _, res := range l.all {
		if strings.EqualFold(res.Vehicle.Plate, plate) && res.ActiveAt(now) && res.Overlaps(start, end) {
			return true
		}
	}
	return sessions.IsParked(plate)
}

// FindActivePendingByPlate returns the first pending reservation for
// the plate that has not ended yet, or nil. This deliberately matches
// on now < end rather than strict window containment: a reservation
// whose window has not opened yet is still findable, so drivers can
// cancel ahead of time and arrive within the early grace.
func (l *ReservationLedger) FindActivePendingByPlate(plate string, now time.Time) *Reservation {
	for _, res := range l.all {
		if strings.EqualFold(res.Vehicle.Plate, plate) && res.Status == ReservationPending && now.Before(res.End) {
			return res
		}
	}
	return nil
}

// CancelByPlate cancels the plate's pending reservation and detaches
// it from its spot. Returns false when there is none.
func (l *ReservationLedger) CancelByPlate(plate string, now time.Time, spots *SpotRegistry) bool {
	res := l.FindActivePendingByPlate(plate, now)
	if res == nil {
		return false
	}
	res.Status = ReservationCancelled
	if spot := spots.Get(res.SpotID); spot != nil && spot.ReservationID == res.ID {
		spots.CancelReservation(spot)
	}
	return true
}

// ListActive returns every reservation active at now.
func (l *ReservationLedger) ListActive(now time.Time) []*Reservation {
	var active []*Reservation
	for _, res := range l.all {
		if res.ActiveAt(now) {
			active = append(active, res)
		}
	}
	return active
}
