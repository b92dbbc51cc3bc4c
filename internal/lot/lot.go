package lot

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Lot is a single parking facility. It coordinates the spot registry,
// the reservation ledger and the session tracker; each of those owns
// its own entity collection exclusively. Every operation runs under
// one mutex, because find-then-mutate sequences are not atomic on
// their own and handlers call in concurrently.
type Lot struct {
	mu           sync.Mutex
	name         string
	spots        *SpotRegistry
	reservations *ReservationLedger
	sessions     *SessionTracker
	now          func() time.Time
}

// New creates a lot and lays out totalSpots spots across the
// categories: half standard, a quarter compact, an eighth oversized,
// an eighth charging, the remainder accessible.
func New(name string, totalSpots int) *Lot {
	l := &Lot{
		name:         name,
		spots:        NewSpotRegistry(),
		reservations: NewReservationLedger(),
		sessions:     NewSessionTracker(),
		now:          time.Now,
	}
	standard := totalSpots / 2
	compact := totalSpots / 4
	oversized := totalSpots / 8
	charging := totalSpots / 8
	accessible := totalSpots - standard - compact - oversized - charging

	for i := 0; i < standard; i++ {
		l.spots.Add(fmt.Sprintf("C%d", i+1), SpotStandard)
	}
	for i := 0; i < compact; i++ {
		l.spots.Add(fmt.Sprintf("B%d", i+1), SpotCompact)
	}
	for i := 0; i < oversized; i++ {
		l.spots.Add(fmt.Sprintf("T%d", i+1), SpotOversized)
	}
	for i := 0; i < charging; i++ {
		l.spots.Add(fmt.Sprintf("E%d", i+1), SpotCharging)
	}
	for i := 0; i < accessible; i++ {
		l.spots.Add(fmt.Sprintf("H%d", i+1), SpotAccessible)
	}
	return l
}

// AddSpot registers an extra spot, mainly for custom layouts.
func (l *Lot) AddSpot(id string, t SpotType) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, err := l.spots.Add(id, t)
	return err
}

// Name returns the lot name.
func (l *Lot) Name() string {
	return l.name
}

// CheckIn parks a walk-in vehicle on the first eligible free spot and
// opens its session.
func (l *Lot) CheckIn(v Vehicle) (*Spot, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.sessions.IsParked(v.Plate) {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyParked, v.Plate)
	}
	spot, err := l.spots.FindFreeSpot(v.Type)
	if err != nil {
		return nil, err
	}
	if spot == nil {
		return nil, fmt.Errorf("%w for vehicle type %s", ErrNoAvailableSpot, v.Type)
	}
	l.spots.Occupy(spot, v)
	l.sessions.Open(v, spot.ID, l.now())
	return spot, nil
}

// CheckInWithReservation parks a vehicle on its reserved spot. The
// reservation must be active right now and belong to the vehicle's
// plate; the strict window check applies here, any grace tolerance is
// the caller's policy.
func (l *Lot) CheckInWithReservation(v Vehicle, reservationID int64) (*Spot, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	res, ok := l.reservations.Get(reservationID)
	if !ok {
		return nil, fmt.Errorf("%w: reservation %d not found", ErrInvalidReservation, reservationID)
	}
	if !res.ActiveAt(l.now()) || !strings.EqualFold(res.Vehicle.Plate, v.Plate) {
		return nil, fmt.Errorf("%w: reservation %d is inactive or held by another vehicle", ErrInvalidReservation, reservationID)
	}
	return l.checkInReserved(v, res)
}

// UseReservation parks a vehicle on its pending reserved spot,
// tolerating arrival up to grace before the window opens or after it
// closes. This is the caller-facing path layered over the strict
// check; the reserved vehicle identity is taken from the reservation.
func (l *Lot) UseReservation(plate string, grace time.Duration) (*Spot, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	var res *Reservation
	for _, cand := range l.reservations.All() {
		if cand.Status != ReservationPending || !strings.EqualFold(cand.Vehicle.Plate, plate) {
			continue
		}
		if now.After(cand.Start.Add(-grace)) && now.Before(cand.End.Add(grace)) {
			res = cand
			break
		}
	}
	if res == nil {
		return nil, fmt.Errorf("%w: no usable reservation for plate %s", ErrInvalidReservation, strings.ToUpper(plate))
	}
	return l.checkInReserved(res.Vehicle, res)
}

func (l *Lot) checkInReserved(v Vehicle, res *Reservation) (*Spot, error) {
	if l.sessions.IsParked(v.Plate) {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyParked, v.Plate)
	}
	spot := l.spots.Get(res.SpotID)
	if spot == nil {
		return nil, fmt.Errorf("%w: reserved spot %s no longer exists", ErrInvalidReservation, res.SpotID)
	}
	// An earlier vehicle may overstay past its window; never park two
	// vehicles on one spot.
	if spot.State == SpotOccupied {
		return nil, fmt.Errorf("%w: reserved spot %s is still occupied", ErrNoAvailableSpot, spot.ID)
	}
	l.spots.Occupy(spot, v)
	res.Status = ReservationCheckedIn
	l.sessions.Open(v, spot.ID, l.now())
	return spot, nil
}

// MakeReservation holds a compatible spot for the whole window.
func (l *Lot) MakeReservation(v Vehicle, start, end time.Time) (*Reservation, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !start.Before(end) {
		return nil, fmt.Errorf("%w: start %s is not before end %s", ErrInvalidWindow, start.Format(time.RFC3339), end.Format(time.RFC3339))
	}
	if l.reservations.ConflictsWith(v.Plate, start, end, l.now(), l.sessions) {
		return nil, fmt.Errorf("%w: %s already has an overlapping reservation or is parked", ErrInvalidReservation, v.Plate)
	}
	spot, err := l.spots.FindFreeSpotForWindow(v.Type, start, end, l.reservations)
	if err != nil {
		return nil, err
	}
	if spot == nil {
		return nil, fmt.Errorf("%w for reservation window", ErrNoAvailableSpot)
	}
	res, err := l.reservations.Create(spot.ID, v, start, end)
	if err != nil {
		return nil, err
	}
	l.spots.Reserve(spot, res)
	return res, nil
}

// FindActiveReservation returns the plate's pending reservation that
// has not ended yet, upcoming ones included.
func (l *Lot) FindActiveReservation(plate string) (*Reservation, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	res := l.reservations.FindActivePendingByPlate(plate, l.now())
	return res, res != nil
}

// CancelReservation cancels the plate's pending reservation.
func (l *Lot) CancelReservation(plate string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.reservations.CancelByPlate(plate, l.now(), l.spots)
}

// ActiveReservations lists every reservation active right now.
func (l *Lot) ActiveReservations() []*Reservation {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.reservations.ListActive(l.now())
}

// PrepareCheckout closes the plate's open session by stamping the exit
// time. The vehicle stays parked until Finalize succeeds.
func (l *Lot) PrepareCheckout(plate string) (*Session, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.sessions.PrepareCheckout(plate, l.now())
}

// Finalize completes a checkout. On payment success the session leaves
// the active index and the spot is released; on failure nothing
// changes and the vehicle stays parked.
func (l *Lot) Finalize(plate string, paymentOK bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !paymentOK {
		return
	}
	sess, ok := l.sessions.Get(plate)
	if !ok {
		return
	}
	if spot := l.spots.Get(sess.SpotID); spot != nil {
		l.spots.Release(spot, l.reservations)
	}
	l.sessions.Remove(plate)
}

// IsParked reports whether the plate currently has an open session.
func (l *Lot) IsParked(plate string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.sessions.IsParked(plate)
}

// Spot returns the spot with the given ID, or nil.
func (l *Lot) Spot(id string) *Spot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.spots.Get(id)
}

// AvailableByType counts the currently available spots per category.
func (l *Lot) AvailableByType(t SpotType) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.spots.AvailableByType(t)
}

// SessionHistory returns every recorded stay for the plate.
func (l *Lot) SessionHistory(plate string) []*Session {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.sessions.HistoryByPlate(plate)
}

// SessionsOn returns every stay that started on the given day.
func (l *Lot) SessionsOn(day time.Time) []*Session {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.sessions.HistoryByDate(day)
}

// CompleteExpiredReservations marks pending and checked-in
// reservations whose window has passed as completed and detaches them
// from their spots. Returns how many were completed.
func (l *Lot) CompleteExpiredReservations() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	n := 0
	for _, res := range l.reservations.All() {
		if res.Status != ReservationPending && res.Status != ReservationCheckedIn {
			continue
		}
		if res.End.After(now) {
			continue
		}
		res.Status = ReservationCompleted
		if spot := l.spots.Get(res.SpotID); spot != nil && spot.ReservationID == res.ID {
			l.spots.CancelReservation(spot)
		}
		n++
	}
	return n
}
