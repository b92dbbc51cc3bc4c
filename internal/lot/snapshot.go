package lot

import "fmt"

// Snapshot is the full serializable state of a lot. It exists for the
// opaque save/restore round-trip; there are no partial-save
// primitives.
type Snapshot struct {
	Name              string        `json:"name"`
	NextReservationID int64         `json:"next_reservation_id"`
	Spots             []Spot        `json:"spots"`
	Reservations      []Reservation `json:"reservations"`
	ActiveSessions    []Session     `json:"active_sessions"`
	SessionHistory    []Session     `json:"session_history"`
}

// Snapshot captures the current lot state.
func (l *Lot) Snapshot() *Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	snap := &Snapshot{
		Name:              l.name,
		NextReservationID: l.reservations.nextID,
	}
	for _, s := range l.spots.Spots() {
		snap.Spots = append(snap.Spots, *s)
	}
	for _, r := range l.reservations.All() {
		snap.Reservations = append(snap.Reservations, *r)
	}
	for _, s := range l.sessions.Active() {
		snap.ActiveSessions = append(snap.ActiveSessions, *s)
	}
	for _, sessions := range l.sessions.history {
		for _, s := range sessions {
			snap.SessionHistory = append(snap.SessionHistory, *s)
		}
	}
	return snap
}

// Restore rebuilds a lot from a snapshot. An active session and its
// history entry refer to the same record again after the round-trip.
func Restore(snap *Snapshot) (*Lot, error) {
	l := New(snap.Name, 0)
	for _, s := range snap.Spots {
		spot, err := l.spots.Add(s.ID, s.Type)
		if err != nil {
			return nil, fmt.Errorf("restore spot %s: %w", s.ID, err)
		}
		spot.State = s.State
		spot.OccupantPlate = s.OccupantPlate
		spot.ReservationID = s.ReservationID
	}
	for _, r := range snap.Reservations {
		res := r
		l.reservations.all = append(l.reservations.all, &res)
		l.reservations.byID[res.ID] = &res
	}
	if snap.NextReservationID > 0 {
		l.reservations.nextID = snap.NextReservationID
	}
	for _, h := range snap.SessionHistory {
		s := h
		key := sessionKey(s.Vehicle.Plate)
		l.sessions.history[key] = append(l.sessions.history[key], &s)
	}
	for _, a := range snap.ActiveSessions {
		key := sessionKey(a.Vehicle.Plate)
		var linked *Session
		for _, h := range l.sessions.history[key] {
			if h.Entry.Equal(a.Entry) && h.SpotID == a.SpotID {
				linked = h
				break
			}
		}
		if linked == nil {
			s := a
			linked = &s
			l.sessions.history[key] = append(l.sessions.history[key], linked)
		}
		l.sessions.active[key] = linked
	}
	return l, nil
}
