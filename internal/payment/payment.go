package payment

import (
	"log"
	"strings"
	"time"
)

// Status is the lifecycle state of a payment record.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"
	StatusRefunded  Status = "REFUNDED"
)

// Method processes a charge. Implementations here are simulation
// stubs; there is no gateway behind them.
type Method interface {
	Process(amount float64) bool
	Details() string
}

// Payment records one charge attempt for a parking stay or a
// subscription.
type Payment struct {
	Amount    float64   `json:"amount"`
	Plate     string    `json:"plate"`
	CreatedAt time.Time `json:"created_at"`
	Status    Status    `json:"status"`
	Method    string    `json:"method,omitempty"`
}

// New returns a pending payment for the given amount.
func New(amount float64, plate string) *Payment {
	return &Payment{
		Amount:    amount,
		Plate:     plate,
		CreatedAt: time.Now().UTC(),
		Status:    StatusPending,
	}
}

// Process runs the charge through the given method and records the
// outcome.
func (p *Payment) Process(m Method) bool {
	p.Method = m.Details()
	ok := m.Process(p.Amount)
	if ok {
		p.Status = StatusCompleted
	} else {
		p.Status = StatusFailed
	}
	return ok
}

// Complete marks the payment settled without running a method. Used
// for zero-fee checkouts, which auto-succeed.
func (p *Payment) Complete() {
	p.Status = StatusCompleted
}

// CreditCard is a simulated card payment. A charge succeeds when the
// card number has 16 digits and the CVV has 3.
type CreditCard struct {
	Number string
	Expiry string
	CVV    string
	Holder string
}

func (c CreditCard) Process(amount float64) bool {
	log.Printf("Processing credit card payment of %.2f (%s)", amount, c.Details())
	return len(c.Number) == 16 && len(c.CVV) == 3
}

func (c CreditCard) Details() string {
	if len(c.Number) < 4 {
		return "Credit Card: ****"
	}
	return "Credit Card: **** **** **** " + c.Number[len(c.Number)-4:]
}

// UPI is a simulated UPI payment. A charge succeeds when the ID looks
// like user@bank.
type UPI struct {
	ID string
}

func (u UPI) Process(amount float64) bool {
	log.Printf("Processing UPI payment of %.2f (%s)", amount, u.Details())
	return strings.Contains(u.ID, "@")
}

func (u UPI) Details() string {
	return "UPI ID: " + u.ID
}
