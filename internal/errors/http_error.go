package errors

import (
	"errors"
	"net/http"

	"parkinglot/internal/lot"
)

// StatusFor maps a lot failure onto the HTTP status the API reports.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, lot.ErrNoAvailableSpot), errors.Is(err, lot.ErrAlreadyParked):
		return http.StatusConflict
	case errors.Is(err, lot.ErrInvalidReservation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, lot.ErrVehicleNotFound):
		return http.StatusNotFound
	case errors.Is(err, lot.ErrInvalidWindow), errors.Is(err, lot.ErrInvalidCategory):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
