package lot

import (
	"fmt"
	"strings"
	"time"
)

// SessionTracker owns the active check-ins, keyed by plate, plus the
// full per-plate entry/exit history kept for the security report.
type SessionTracker struct {
	active  map[string]*Session
	history map[string][]*Session
}

func NewSessionTracker() *SessionTracker {
	return &SessionTracker{
		active:  make(map[string]*Session),
		history: make(map[string][]*Session),
	}
}

func sessionKey(plate string) string {
	return strings.ToUpper(plate)
}

// IsParked reports whether the plate currently has an open session.
func (t *SessionTracker) IsParked(plate string) bool {
	_, ok := t.active[sessionKey(plate)]
	return ok
}

// Get returns the plate's open session.
func (t *SessionTracker) Get(plate string) (*Session, bool) {
	s, ok := t.active[sessionKey(plate)]
	return s, ok
}

// Open starts a session for a freshly parked vehicle. The caller must
// have rejected duplicate check-ins already.
func (t *SessionTracker) Open(v Vehicle, spotID string, entry time.Time) *Session {
	s := &Session{Vehicle: v, SpotID: spotID, Entry: entry}
	key := sessionKey(v.Plate)
	t.active[key] = s
	t.history[key] = append(t.history[key], s)
	return s
}

// PrepareCheckout stamps the exit time on the plate's open session.
// The session stays indexed until Remove; a later retry re-stamps it.
func (t *SessionTracker) PrepareCheckout(plate string, exit time.Time) (*Session, error) {
	s, ok := t.active[sessionKey(plate)]
	if !ok {
		return nil, fmt.Errorf("%w: no open session for plate %s", ErrVehicleNotFound, strings.ToUpper(plate))
	}
	s.Exit = exit
	return s, nil
}

// Remove drops the plate's session from the active index. The history
// entry stays.
func (t *SessionTracker) Remove(plate string) {
	delete(t.active, sessionKey(plate))
}

// HistoryByPlate returns every recorded stay for the plate.
func (t *SessionTracker) HistoryByPlate(plate string) []*Session {
	return t.history[sessionKey(plate)]
}

// HistoryByDate returns every stay whose entry falls on the given day.
func (t *SessionTracker) HistoryByDate(day time.Time) []*Session {
	y, m, d := day.Date()
	var out []*Session
	for _, sessions := range t.history {
		for _, s := range sessions {
			ey, em, ed := s.Entry.Date()
			if ey == y && em == m && ed == d {
				out = append(out, s)
			}
		}
	}
	return out
}

// Active returns the open sessions in no particular order.
func (t *SessionTracker) Active() []*Session {
	out := make([]*Session, 0, len(t.active))
	for _, s := range t.active {
		out = append(out, s)
	}
	return out
}
