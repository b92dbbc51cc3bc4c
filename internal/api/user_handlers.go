package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	apierrors "parkinglot/internal/errors"
	"parkinglot/internal/lot"
	"parkinglot/internal/service"
	"parkinglot/internal/subscription"
)

// UserHandler serves the driver-facing endpoints.
type UserHandler struct {
	Svc *service.ParkingService
}

func NewUserHandler(svc *service.ParkingService) *UserHandler {
	return &UserHandler{Svc: svc}
}

// CheckIn handles POST /parking/checkin.
func (h *UserHandler) CheckIn(w http.ResponseWriter, r *http.Request) {
	var req CheckInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	vt, err := lot.ParseVehicleType(req.VehicleType)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	v, err := lot.NewVehicleWithPermit(req.LicensePlate, vt, req.AccessiblePermit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	spot, err := h.Svc.CheckIn(v)
	if err != nil {
		http.Error(w, err.Error(), apierrors.StatusFor(err))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(SpotResponse{SpotID: spot.ID, SpotType: string(spot.Type)})
}

// CreateReservation handles POST /parking/reservations.
func (h *UserHandler) CreateReservation(w http.ResponseWriter, r *http.Request) {
	var req CreateReservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	vt, err := lot.ParseVehicleType(req.VehicleType)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	v, err := lot.NewVehicle(req.LicensePlate, vt)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	start, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		http.Error(w, "start_time must be RFC 3339", http.StatusBadRequest)
		return
	}
	end, err := time.Parse(time.RFC3339, req.EndTime)
	if err != nil {
		http.Error(w, "end_time must be RFC 3339", http.StatusBadRequest)
		return
	}
	res, err := h.Svc.MakeReservation(v, start, end, service.Contact{Email: req.Email, Phone: req.Phone})
	if err != nil {
		http.Error(w, err.Error(), apierrors.StatusFor(err))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(reservationResponse(res))
}

// UseReservation handles POST /parking/reservations/use.
func (h *UserHandler) UseReservation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		LicensePlate string `json:"license_plate"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	spot, err := h.Svc.UseReservation(req.LicensePlate)
	if err != nil {
		http.Error(w, err.Error(), apierrors.StatusFor(err))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(SpotResponse{SpotID: spot.ID, SpotType: string(spot.Type)})
}

// CancelReservation handles DELETE /parking/reservations/{plate}.
func (h *UserHandler) CancelReservation(w http.ResponseWriter, r *http.Request) {
	plate := mux.Vars(r)["plate"]
	if !h.Svc.CancelReservation(plate) {
		http.Error(w, "No active reservation for plate", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PrepareCheckout handles POST /parking/checkout/{plate}. It closes the
// session and quotes the fee; the spot is not freed yet.
func (h *UserHandler) PrepareCheckout(w http.ResponseWriter, r *http.Request) {
	plate := mux.Vars(r)["plate"]
	pay, err := h.Svc.PrepareCheckout(plate)
	if err != nil {
		http.Error(w, err.Error(), apierrors.StatusFor(err))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(CheckoutResponse{LicensePlate: pay.Plate, Amount: pay.Amount, Status: string(pay.Status)})
}

// FinalizeCheckout handles POST /parking/checkout/{plate}/pay.
func (h *UserHandler) FinalizeCheckout(w http.ResponseWriter, r *http.Request) {
	plate := mux.Vars(r)["plate"]
	var req PaymentMethodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	method, err := req.paymentMethod()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	ok, err := h.Svc.FinalizeCheckout(plate, method)
	if err != nil {
		http.Error(w, err.Error(), apierrors.StatusFor(err))
		return
	}
	if !ok {
		http.Error(w, "Payment failed; vehicle remains parked", http.StatusPaymentRequired)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "completed"})
}

// Availability handles GET /parking/availability/{spot_type}.
func (h *UserHandler) Availability(w http.ResponseWriter, r *http.Request) {
	st, err := lot.ParseSpotType(mux.Vars(r)["spot_type"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	n := h.Svc.Lot().AvailableByType(st)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"spot_type": string(st), "available": n})
}

// Prices handles GET /parking/prices.
func (h *UserHandler) Prices(w http.ResponseWriter, r *http.Request) {
	pm := h.Svc.Pricing()
	rates := make(map[string]float64)
	for _, vt := range []lot.VehicleType{lot.VehicleCar, lot.VehicleBike, lot.VehicleTruck, lot.VehicleBus} {
		rates[string(vt)] = pm.BaseRate(vt)
	}
	multipliers := make(map[string]float64)
	for _, st := range []lot.SpotType{lot.SpotStandard, lot.SpotCompact, lot.SpotOversized, lot.SpotCharging, lot.SpotAccessible} {
		multipliers[string(st)] = pm.SpotMultiplier(st)
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"hourly_rates":     rates,
		"spot_multipliers": multipliers,
	})
}

// Subscribe handles POST /parking/subscriptions.
func (h *UserHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req SubscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	vt, err := lot.ParseVehicleType(req.VehicleType)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	v, err := lot.NewVehicle(req.LicensePlate, vt)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	plan, err := subscription.ParsePlanType(req.Plan)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	st, err := lot.ParseSpotType(req.SpotType)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	method, err := req.Payment.paymentMethod()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if method == nil {
		http.Error(w, "A payment method is required", http.StatusBadRequest)
		return
	}
	sub, err := h.Svc.Subscribe(v, plan, st, method)
	if err != nil {
		http.Error(w, err.Error(), apierrors.StatusFor(err))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(sub)
}

// CancelSubscription handles DELETE /parking/subscriptions/{plate}.
func (h *UserHandler) CancelSubscription(w http.ResponseWriter, r *http.Request) {
	plate := mux.Vars(r)["plate"]
	if !h.Svc.CancelSubscription(plate) {
		http.Error(w, "No active subscription for plate", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RenewSubscription handles POST /parking/subscriptions/{plate}/renew.
func (h *UserHandler) RenewSubscription(w http.ResponseWriter, r *http.Request) {
	plate := mux.Vars(r)["plate"]
	var req struct {
		Months int `json:"months"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Months <= 0 {
		http.Error(w, "months must be positive", http.StatusBadRequest)
		return
	}
	if !h.Svc.RenewSubscription(plate, req.Months) {
		http.Error(w, "No subscription for plate", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func reservationResponse(res *lot.Reservation) ReservationResponse {
	return ReservationResponse{
		ReservationID: res.ID,
		SpotID:        res.SpotID,
		LicensePlate:  res.Vehicle.Plate,
		StartTime:     res.Start.Format(time.RFC3339),
		EndTime:       res.End.Format(time.RFC3339),
		Status:        string(res.Status),
	}
}
