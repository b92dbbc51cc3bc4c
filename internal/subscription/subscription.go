package subscription

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"parkinglot/internal/lot"
	"parkinglot/internal/payment"
	"parkinglot/internal/pricing"
)

// PlanType is the closed set of subscription periods.
type PlanType string

const (
	PlanMonthly    PlanType = "MONTHLY"
	PlanQuarterly  PlanType = "QUARTERLY"
	PlanSemiAnnual PlanType = "SEMI_ANNUAL"
	PlanAnnual     PlanType = "ANNUAL"
)

// Valid reports whether t is a known plan.
func (t PlanType) Valid() bool {
	switch t {
	case PlanMonthly, PlanQuarterly, PlanSemiAnnual, PlanAnnual:
		return true
	}
	return false
}

// ParsePlanType maps a request string onto a PlanType.
func ParsePlanType(s string) (PlanType, error) {
	t := PlanType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("invalid subscription plan %q", s)
	}
	return t, nil
}

// months covered by one plan period.
func (t PlanType) months() int {
	switch t {
	case PlanQuarterly:
		return 3
	case PlanSemiAnnual:
		return 6
	case PlanAnnual:
		return 12
	default:
		return 1
	}
}

// discount applied to the summed monthly fees.
func (t PlanType) discount() float64 {
	switch t {
	case PlanQuarterly:
		return 0.9
	case PlanSemiAnnual:
		return 0.85
	case PlanAnnual:
		return 0.8
	default:
		return 1.0
	}
}

// Subscription is a paid parking plan for one plate.
type Subscription struct {
	ID       string       `json:"id"`
	Vehicle  lot.Vehicle  `json:"vehicle"`
	SpotType lot.SpotType `json:"spot_type"`
	Plan     PlanType     `json:"plan"`
	Start    time.Time    `json:"start"`
	End      time.Time    `json:"end"`
	Active   bool         `json:"active"`
}

// ActiveAt reports whether the subscription covers instant t.
func (s *Subscription) ActiveAt(t time.Time) bool {
	return s.Active && t.After(s.Start) && t.Before(s.End)
}

// Renew extends an uncancelled subscription by the given months.
func (s *Subscription) Renew(months int) {
	if s.Active {
		s.End = s.End.AddDate(0, months, 0)
	}
}

// Manager owns the subscriptions, keyed by plate. Handlers call in
// concurrently, so every access to the registry runs under the mutex.
type Manager struct {
	mu      sync.Mutex
	subs    map[string]*Subscription
	pricing *pricing.Manager
	now     func() time.Time
}

// NewManager returns an empty subscription registry backed by the
// given pricing manager.
func NewManager(pm *pricing.Manager) *Manager {
	return &Manager{
		subs:    make(map[string]*Subscription),
		pricing: pm,
		now:     time.Now,
	}
}

// Fee prices a plan for the vehicle and spot type.
func (m *Manager) Fee(vt lot.VehicleType, plan PlanType, st lot.SpotType) (float64, error) {
	if !plan.Valid() {
		return 0, fmt.Errorf("invalid subscription plan %q", plan)
	}
	monthly, err := m.pricing.MonthlySubscriptionFee(vt, st)
	if err != nil {
		return 0, err
	}
	return monthly * float64(plan.months()) * plan.discount(), nil
}

// Register charges the plan fee through the given method and, on
// success, stores the subscription starting now. The payment record is
// returned either way so the caller can log the transaction.
func (m *Manager) Register(v lot.Vehicle, plan PlanType, st lot.SpotType, method payment.Method) (*Subscription, *payment.Payment, error) {
	fee, err := m.Fee(v.Type, plan, st)
	if err != nil {
		return nil, nil, err
	}
	if method == nil {
		return nil, nil, fmt.Errorf("a payment method is required to subscribe")
	}
	pay := payment.New(fee, v.Plate)
	if !pay.Process(method) {
		return nil, pay, fmt.Errorf("subscription payment failed for plate %s", v.Plate)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	start := m.now()
	sub := &Subscription{
		ID:       uuid.NewString(),
		Vehicle:  v,
		SpotType: st,
		Plan:     plan,
		Start:    start,
		End:      start.AddDate(0, plan.months(), 0),
		Active:   true,
	}
	m.subs[strings.ToUpper(v.Plate)] = sub
	return sub, pay, nil
}

// Renew extends the plate's active subscription by months. Returns
// false when there is nothing to renew.
func (m *Manager) Renew(plate string, months int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	sub, ok := m.subs[strings.ToUpper(plate)]
	if !ok || !sub.ActiveAt(m.now()) {
		return false
	}
	sub.Renew(months)
	return true
}

// Cancel deactivates the plate's subscription.
func (m *Manager) Cancel(plate string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	sub, ok := m.subs[strings.ToUpper(plate)]
	if !ok {
		return false
	}
	sub.Active = false
	return true
}

// HasActiveSubscription reports whether the plate is covered right now.
func (m *Manager) HasActiveSubscription(plate string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	sub, ok := m.subs[strings.ToUpper(plate)]
	return ok && sub.ActiveAt(m.now())
}

// Get returns the plate's subscription, active or not.
func (m *Manager) Get(plate string) (*Subscription, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sub, ok := m.subs[strings.ToUpper(plate)]
	return sub, ok
}

// ListActive returns the currently active subscriptions.
func (m *Manager) ListActive() []*Subscription {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	var out []*Subscription
	for _, sub := range m.subs {
		if sub.ActiveAt(now) {
			out = append(out, sub)
		}
	}
	return out
}

// Snapshot returns every subscription for state persistence.
func (m *Manager) Snapshot() []Subscription {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Subscription, 0, len(m.subs))
	for _, sub := range m.subs {
		out = append(out, *sub)
	}
	return out
}

// Restore replaces the registry contents from a snapshot.
func (m *Manager) Restore(subs []Subscription) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs = make(map[string]*Subscription, len(subs))
	for _, s := range subs {
		sub := s
		m.subs[strings.ToUpper(sub.Vehicle.Plate)] = &sub
	}
}
