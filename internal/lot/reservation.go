package lot

import "time"

// ReservationStatus is the lifecycle state of a reservation.
type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "PENDING"
	ReservationCheckedIn ReservationStatus = "CHECKED_IN"
	ReservationCompleted ReservationStatus = "COMPLETED"
	ReservationCancelled ReservationStatus = "CANCELLED"
)

// Reservation holds one spot for one vehicle over a half-open time
// window [Start, End). Reservations are never removed from the ledger;
// they only transition status, so the full history stays auditable.
type Reservation struct {
	ID      int64             `json:"id"`
	SpotID  string            `json:"spot_id"`
	Vehicle Vehicle           `json:"vehicle"`
	Start   time.Time         `json:"start"`
	End     time.Time         `json:"end"`
	Status  ReservationStatus `json:"status"`
}

// ActiveAt reports whether the reservation is live at t: pending or
// checked in, with t strictly inside the window. Exact boundary
// instants do not count as inside.
func (r *Reservation) ActiveAt(t time.Time) bool {
	if r.Status != ReservationPending && r.Status != ReservationCheckedIn {
		return false
	}
	return t.After(r.Start) && t.Before(r.End)
}

// Overlaps reports whether [start, end) intersects the reservation
// window. Windows that only touch at a boundary do not overlap.
func (r *Reservation) Overlaps(start, end time.Time) bool {
	return end.After(r.Start) && start.Before(r.End)
}
