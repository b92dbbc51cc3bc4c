package service

import "log"

// JobService holds the scheduled maintenance work for the lot.
type JobService struct {
	Svc *ParkingService
}

func NewJobService(svc *ParkingService) *JobService {
	return &JobService{Svc: svc}
}

// CompleteExpiredReservations marks reservations whose window has
// passed as completed and frees their spots. Run on a cron schedule.
func (s *JobService) CompleteExpiredReservations() {
	n := s.Svc.Lot().CompleteExpiredReservations()
	if n == 0 {
		return
	}
	log.Printf("Cron Job: completed %d expired reservations", n)
}
