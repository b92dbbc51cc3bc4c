package service

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"parkinglot/internal/lot"
	"parkinglot/internal/payment"
	"parkinglot/internal/pricing"
	"parkinglot/internal/repository"
	"parkinglot/internal/subscription"
)

// UseReservationGrace is how early or late a driver may still use a
// reservation, relative to its window.
const UseReservationGrace = 10 * time.Minute

// Contact is where reservation notifications go. Both fields are
// optional.
type Contact struct {
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// ParkingService orchestrates the lot core with pricing,
// subscriptions, payments, notifications and state persistence.
type ParkingService struct {
	mu            sync.Mutex
	lot           *lot.Lot
	pricing       *pricing.Manager
	subscriptions *subscription.Manager
	notifier      *Notifier
	store         *repository.SnapshotRepository

	contacts     map[string]Contact
	pending      map[string]*payment.Payment
	transactions []*payment.Payment
}

// NewParkingService wires the service. store may be nil, in which case
// state persistence is disabled.
func NewParkingService(l *lot.Lot, pm *pricing.Manager, sm *subscription.Manager, notifier *Notifier, store *repository.SnapshotRepository) *ParkingService {
	return &ParkingService{
		lot:           l,
		pricing:       pm,
		subscriptions: sm,
		notifier:      notifier,
		store:         store,
		contacts:      make(map[string]Contact),
		pending:       make(map[string]*payment.Payment),
	}
}

// Lot returns the lot the service currently operates on.
func (s *ParkingService) Lot() *lot.Lot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lot
}

// CheckIn parks a walk-in vehicle.
func (s *ParkingService) CheckIn(v lot.Vehicle) (*lot.Spot, error) {
	spot, err := s.Lot().CheckIn(v)
	if err != nil {
		return nil, err
	}
	log.Printf("Check-in for vehicle %s at spot %s", v.Plate, spot.ID)
	return spot, nil
}

// MakeReservation books a spot for the window and notifies the driver
// when contact details were given.
func (s *ParkingService) MakeReservation(v lot.Vehicle, start, end time.Time, contact Contact) (*lot.Reservation, error) {
	res, err := s.Lot().MakeReservation(v, start, end)
	if err != nil {
		return nil, err
	}
	if contact.Email != "" || contact.Phone != "" {
		s.mu.Lock()
		s.contacts[strings.ToUpper(v.Plate)] = contact
		s.mu.Unlock()
	}
	log.Printf("Reservation %d made for vehicle %s on spot %s", res.ID, v.Plate, res.SpotID)
	s.notifier.ReservationStatusChanged(res, contact, "confirmed")
	return res, nil
}

// UseReservation checks a driver in on their reserved spot, within the
// grace tolerance around the window.
func (s *ParkingService) UseReservation(plate string) (*lot.Spot, error) {
	spot, err := s.Lot().UseReservation(plate, UseReservationGrace)
	if err != nil {
		return nil, err
	}
	log.Printf("Check-in with reservation for vehicle %s at spot %s", strings.ToUpper(plate), spot.ID)
	return spot, nil
}

// CancelReservation cancels the plate's pending reservation.
func (s *ParkingService) CancelReservation(plate string) bool {
	l := s.Lot()
	res, ok := l.FindActiveReservation(plate)
	if !ok {
		return false
	}
	if !l.CancelReservation(plate) {
		return false
	}
	s.mu.Lock()
	contact := s.contacts[strings.ToUpper(plate)]
	s.mu.Unlock()
	log.Printf("Reservation %d cancelled for vehicle %s", res.ID, strings.ToUpper(plate))
	s.notifier.ReservationStatusChanged(res, contact, "cancelled")
	return true
}

// ActiveReservations lists the reservations active right now.
func (s *ParkingService) ActiveReservations() []*lot.Reservation {
	return s.Lot().ActiveReservations()
}

// PrepareCheckout closes the plate's session and prices the stay. A
// plate with an active subscription owes nothing. The returned payment
// stays pending until FinalizeCheckout resolves it.
func (s *ParkingService) PrepareCheckout(plate string) (*payment.Payment, error) {
	l := s.Lot()
	sess, err := l.PrepareCheckout(plate)
	if err != nil {
		return nil, err
	}
	var fee float64
	if s.subscriptions.HasActiveSubscription(plate) {
		log.Printf("No checkout fee for vehicle %s due to active subscription", sess.Vehicle.Plate)
	} else {
		spot := l.Spot(sess.SpotID)
		if spot == nil {
			return nil, fmt.Errorf("spot %s not found for session", sess.SpotID)
		}
		fee, err = s.pricing.CalculateFee(sess.Vehicle.Type, sess.Duration(), spot.Type)
		if err != nil {
			return nil, err
		}
	}
	pay := payment.New(fee, sess.Vehicle.Plate)
	s.mu.Lock()
	s.pending[sess.Vehicle.Plate] = pay
	s.transactions = append(s.transactions, pay)
	s.mu.Unlock()
	return pay, nil
}

// FinalizeCheckout settles the pending payment and, on success, frees
// the spot. Zero-fee checkouts auto-succeed without touching the
// payment method. On failure the vehicle stays parked and the payment
// stays pending for a retry.
func (s *ParkingService) FinalizeCheckout(plate string, method payment.Method) (bool, error) {
	key := strings.ToUpper(plate)
	s.mu.Lock()
	pay, ok := s.pending[key]
	s.mu.Unlock()
	if !ok {
		return false, fmt.Errorf("%w: no pending checkout for plate %s", lot.ErrVehicleNotFound, key)
	}

	var success bool
	if pay.Amount == 0 {
		pay.Complete()
		success = true
	} else {
		if method == nil {
			return false, fmt.Errorf("payment method is required for a fee of %.2f", pay.Amount)
		}
		success = pay.Process(method)
	}

	s.Lot().Finalize(plate, success)
	if success {
		s.mu.Lock()
		delete(s.pending, key)
		s.mu.Unlock()
		log.Printf("Check-out for vehicle %s completed", key)
	} else {
		log.Printf("Check-out failed for vehicle %s due to payment failure", key)
	}
	return success, nil
}

// Subscribe registers a paid subscription for the vehicle. The payment
// record lands in the transaction log whether or not the charge went
// through.
func (s *ParkingService) Subscribe(v lot.Vehicle, plan subscription.PlanType, st lot.SpotType, method payment.Method) (*subscription.Subscription, error) {
	sub, pay, err := s.subscriptions.Register(v, plan, st, method)
	if pay != nil {
		s.mu.Lock()
		s.transactions = append(s.transactions, pay)
		s.mu.Unlock()
	}
	if err != nil {
		return nil, err
	}
	log.Printf("Subscription %s registered for vehicle %s (%s)", sub.ID, v.Plate, sub.Plan)
	return sub, nil
}

// RenewSubscription extends the plate's subscription.
func (s *ParkingService) RenewSubscription(plate string, months int) bool {
	return s.subscriptions.Renew(plate, months)
}

// CancelSubscription deactivates the plate's subscription.
func (s *ParkingService) CancelSubscription(plate string) bool {
	return s.subscriptions.Cancel(plate)
}

// Subscriptions exposes the subscription registry.
func (s *ParkingService) Subscriptions() *subscription.Manager {
	return s.subscriptions
}

// Pricing exposes the fee calculator.
func (s *ParkingService) Pricing() *pricing.Manager {
	return s.pricing
}

// Transactions returns the recorded payments, oldest first.
func (s *ParkingService) Transactions() []*payment.Payment {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*payment.Payment, len(s.transactions))
	copy(out, s.transactions)
	return out
}

// state is the full persisted document: lot, subscriptions and the
// transaction log in one opaque blob.
type state struct {
	Lot           *lot.Snapshot               `json:"lot"`
	Subscriptions []subscription.Subscription `json:"subscriptions"`
	Transactions  []*payment.Payment          `json:"transactions"`
}

// SaveState persists the whole system state.
func (s *ParkingService) SaveState() error {
	if s.store == nil {
		return fmt.Errorf("state persistence is not configured")
	}
	snap := s.Lot().Snapshot()
	s.mu.Lock()
	doc := state{
		Lot:           snap,
		Subscriptions: s.subscriptions.Snapshot(),
		Transactions:  s.transactions,
	}
	data, err := json.Marshal(doc)
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("error encoding lot state: %w", err)
	}
	return s.store.Save(data)
}

// LoadState replaces the in-memory state with the last saved one.
func (s *ParkingService) LoadState() error {
	if s.store == nil {
		return fmt.Errorf("state persistence is not configured")
	}
	data, err := s.store.Load()
	if err != nil {
		return err
	}
	var doc state
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("error decoding lot state: %w", err)
	}
	restored, err := lot.Restore(doc.Lot)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.lot = restored
	s.transactions = doc.Transactions
	s.pending = make(map[string]*payment.Payment)
	s.mu.Unlock()
	s.subscriptions.Restore(doc.Subscriptions)
	return nil
}
