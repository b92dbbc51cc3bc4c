package api

import (
	"encoding/json"
	"net/http"

	"parkinglot/internal/service"
)

// AdminAuthHandler issues the JWT for the operator endpoints.
type AdminAuthHandler struct {
	Auth service.AuthService
}

func NewAdminAuthHandler(auth service.AuthService) *AdminAuthHandler {
	return &AdminAuthHandler{Auth: auth}
}

// Login handles POST /admin/login.
func (h *AdminAuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	token, err := h.Auth.Login(req.Email, req.Password)
	if err != nil {
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"token": token})
}
