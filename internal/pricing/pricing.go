package pricing

import (
	"fmt"
	"time"

	"parkinglot/internal/lot"
)

// Manager calculates parking fees from base hourly rates per vehicle
// type, a multiplier per spot type and time-of-day surcharges.
type Manager struct {
	baseRates        map[lot.VehicleType]float64
	spotMultipliers  map[lot.SpotType]float64
	peakSurcharge    float64
	weekendSurcharge float64

	// Now is the clock used for the surcharge decision. Overridable
	// in tests.
	Now func() time.Time
}

// NewManager returns a Manager with the default rate table.
func NewManager() *Manager {
	return &Manager{
		baseRates: map[lot.VehicleType]float64{
			lot.VehicleCar:   40.0,
			lot.VehicleBike:  20.0,
			lot.VehicleTruck: 80.0,
			lot.VehicleBus:   100.0,
		},
		spotMultipliers: map[lot.SpotType]float64{
			lot.SpotStandard:   1.0,
			lot.SpotCompact:    0.5,
			lot.SpotOversized:  1.5,
			lot.SpotCharging:   1.2,
			lot.SpotAccessible: 0.8,
		},
		peakSurcharge:    1.5,
		weekendSurcharge: 1.2,
		Now:              time.Now,
	}
}

// CalculateFee prices a stay of the given duration. Weekday peak hours
// (08-10 and 17-19) apply the peak surcharge; weekends apply the
// weekend surcharge.
func (m *Manager) CalculateFee(vt lot.VehicleType, hours float64, st lot.SpotType) (float64, error) {
	if !vt.Valid() {
		return 0, fmt.Errorf("%w: vehicle type %q", lot.ErrInvalidCategory, vt)
	}
	if !st.Valid() {
		return 0, fmt.Errorf("%w: spot type %q", lot.ErrInvalidCategory, st)
	}
	if hours < 0 {
		return 0, fmt.Errorf("parking duration cannot be negative: %.2f hours", hours)
	}
	fee := m.baseRates[vt] * hours * m.spotMultipliers[st]

	now := m.Now()
	hour := now.Hour()
	peak := (hour >= 8 && hour <= 10) || (hour >= 17 && hour <= 19)
	weekend := now.Weekday() == time.Saturday || now.Weekday() == time.Sunday

	if peak && !weekend {
		fee *= m.peakSurcharge
	} else if weekend {
		fee *= m.weekendSurcharge
	}
	return fee, nil
}

// MonthlySubscriptionFee derives the monthly rate from a discounted
// 8-hour working day, 22 days a month.
func (m *Manager) MonthlySubscriptionFee(vt lot.VehicleType, st lot.SpotType) (float64, error) {
	daily, err := m.CalculateFee(vt, 8.0, st)
	if err != nil {
		return 0, err
	}
	return daily * 22 * 0.7, nil
}

// SetBaseRate overrides the hourly rate for a vehicle type.
func (m *Manager) SetBaseRate(vt lot.VehicleType, rate float64) error {
	if !vt.Valid() {
		return fmt.Errorf("%w: vehicle type %q", lot.ErrInvalidCategory, vt)
	}
	m.baseRates[vt] = rate
	return nil
}

// SetSpotMultiplier overrides the multiplier for a spot type.
func (m *Manager) SetSpotMultiplier(st lot.SpotType, mult float64) error {
	if !st.Valid() {
		return fmt.Errorf("%w: spot type %q", lot.ErrInvalidCategory, st)
	}
	m.spotMultipliers[st] = mult
	return nil
}

// SetPeakSurcharge overrides the weekday peak-hour surcharge.
func (m *Manager) SetPeakSurcharge(s float64) { m.peakSurcharge = s }

// SetWeekendSurcharge overrides the weekend surcharge.
func (m *Manager) SetWeekendSurcharge(s float64) { m.weekendSurcharge = s }

// BaseRate returns the hourly rate for a vehicle type.
func (m *Manager) BaseRate(vt lot.VehicleType) float64 { return m.baseRates[vt] }

// SpotMultiplier returns the multiplier for a spot type.
func (m *Manager) SpotMultiplier(st lot.SpotType) float64 { return m.spotMultipliers[st] }
