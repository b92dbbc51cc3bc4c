package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"parkinglot/internal/lot"
	"parkinglot/internal/repository"
	"parkinglot/internal/service"
)

// AdminHandler serves the operator endpoints behind JWT auth.
type AdminHandler struct {
	Svc *service.ParkingService
}

func NewAdminHandler(svc *service.ParkingService) *AdminHandler {
	return &AdminHandler{Svc: svc}
}

// ActiveReservations handles GET /admin/reservations.
func (h *AdminHandler) ActiveReservations(w http.ResponseWriter, r *http.Request) {
	reservations := h.Svc.ActiveReservations()
	out := make([]ReservationResponse, 0, len(reservations))
	for _, res := range reservations {
		out = append(out, reservationResponse(res))
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(out)
}

// Transactions handles GET /admin/transactions.
func (h *AdminHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.Svc.Transactions())
}

// Subscriptions handles GET /admin/subscriptions.
func (h *AdminHandler) Subscriptions(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.Svc.Subscriptions().ListActive())
}

// Sessions handles GET /admin/sessions?plate=...&date=YYYY-MM-DD. Either
// filter works alone; plate wins when both are given.
func (h *AdminHandler) Sessions(w http.ResponseWriter, r *http.Request) {
	plate := r.URL.Query().Get("plate")
	date := r.URL.Query().Get("date")

	var sessions []*lot.Session
	switch {
	case plate != "":
		sessions = h.Svc.Lot().SessionHistory(plate)
	case date != "":
		day, err := time.Parse("2006-01-02", date)
		if err != nil {
			http.Error(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		sessions = h.Svc.Lot().SessionsOn(day)
	default:
		http.Error(w, "plate or date query parameter is required", http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(sessions)
}

// Spot handles GET /admin/spots/{id}.
func (h *AdminHandler) Spot(w http.ResponseWriter, r *http.Request) {
	spot := h.Svc.Lot().Spot(mux.Vars(r)["id"])
	if spot == nil {
		http.Error(w, "Spot not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(spot)
}

// SaveState handles POST /admin/state/save.
func (h *AdminHandler) SaveState(w http.ResponseWriter, r *http.Request) {
	if err := h.Svc.SaveState(); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "saved"})
}

// LoadState handles POST /admin/state/load.
func (h *AdminHandler) LoadState(w http.ResponseWriter, r *http.Request) {
	if err := h.Svc.LoadState(); err != nil {
		if errors.Is(err, repository.ErrNoSnapshot) {
			http.Error(w, "No saved state found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "loaded"})
}
