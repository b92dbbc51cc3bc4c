package lot

import "time"

// Session is one continuous parking stay: vehicle, spot, entry time
// and, once checkout has been prepared, the exit time.
type Session struct {
	Vehicle Vehicle   `json:"vehicle"`
	SpotID  string    `json:"spot_id"`
	Entry   time.Time `json:"entry"`
	Exit    time.Time `json:"exit,omitempty"`
}

// Duration returns the stay length in fractional hours, or 0 while the
// exit time is unset.
func (s *Session) Duration() float64 {
	if s.Exit.IsZero() {
		return 0
	}
	return s.Exit.Sub(s.Entry).Hours()
}
