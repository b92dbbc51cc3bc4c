package api

import (
	"fmt"

	"parkinglot/internal/payment"
)

// Check-in
type CheckInRequest struct {
	LicensePlate     string `json:"license_plate"`
	VehicleType      string `json:"vehicle_type"`
	AccessiblePermit bool   `json:"accessible_permit"`
}
type SpotResponse struct {
	SpotID   string `json:"spot_id"`
	SpotType string `json:"spot_type"`
	Message  string `json:"message,omitempty"`
}

// Reservation
type CreateReservationRequest struct {
	LicensePlate string `json:"license_plate"`
	VehicleType  string `json:"vehicle_type"`
	StartTime    string `json:"start_time"`
	EndTime      string `json:"end_time"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
}
type ReservationResponse struct {
	ReservationID int64  `json:"reservation_id"`
	SpotID        string `json:"spot_id"`
	LicensePlate  string `json:"license_plate"`
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time"`
	Status        string `json:"status"`
}

// Checkout
type CheckoutResponse struct {
	LicensePlate string  `json:"license_plate"`
	Amount       float64 `json:"amount"`
	Status       string  `json:"status"`
}
type PaymentMethodRequest struct {
	Method     string `json:"method"` // "card" or "upi"
	CardNumber string `json:"card_number,omitempty"`
	Expiry     string `json:"expiry,omitempty"`
	CVV        string `json:"cvv,omitempty"`
	Holder     string `json:"holder,omitempty"`
	UPIID      string `json:"upi_id,omitempty"`
}

// Subscription
type SubscribeRequest struct {
	LicensePlate string               `json:"license_plate"`
	VehicleType  string               `json:"vehicle_type"`
	Plan         string               `json:"plan"`
	SpotType     string               `json:"spot_type"`
	Payment      PaymentMethodRequest `json:"payment"`
}

// paymentMethod builds the stub method described by the request.
func (r PaymentMethodRequest) paymentMethod() (payment.Method, error) {
	switch r.Method {
	case "card":
		return payment.CreditCard{
			Number: r.CardNumber,
			Expiry: r.Expiry,
			CVV:    r.CVV,
			Holder: r.Holder,
		}, nil
	case "upi":
		return payment.UPI{ID: r.UPIID}, nil
	case "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported payment method %q", r.Method)
	}
}
