package lot

import (
	"fmt"
	"strings"
)

// VehicleType is the closed set of vehicle categories the lot accepts.
type VehicleType string

const (
	VehicleCar   VehicleType = "CAR"
	VehicleBike  VehicleType = "BIKE"
	VehicleTruck VehicleType = "TRUCK"
	VehicleBus   VehicleType = "BUS"
)

// Valid reports whether t is one of the known vehicle categories.
func (t VehicleType) Valid() bool {
	switch t {
	case VehicleCar, VehicleBike, VehicleTruck, VehicleBus:
		return true
	}
	return false
}

// ParseVehicleType maps a request string onto a VehicleType.
func ParseVehicleType(s string) (VehicleType, error) {
	t := VehicleType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("%w: vehicle type %q", ErrInvalidCategory, s)
	}
	return t, nil
}

// Vehicle identifies one vehicle by its license plate. Plates are
// normalized to uppercase; a vehicle is never stored on its own, its
// plate is the identity everywhere in the lot.
type Vehicle struct {
	Plate            string      `json:"plate"`
	Type             VehicleType `json:"type"`
	AccessiblePermit bool        `json:"accessible_permit,omitempty"`
}

// NewVehicle builds a vehicle with a normalized plate.
func NewVehicle(plate string, t VehicleType) (Vehicle, error) {
	if !t.Valid() {
		return Vehicle{}, fmt.Errorf("%w: vehicle type %q", ErrInvalidCategory, t)
	}
	plate = strings.ToUpper(strings.TrimSpace(plate))
	if plate == "" {
		return Vehicle{}, fmt.Errorf("license plate is required")
	}
	return Vehicle{Plate: plate, Type: t}, nil
}

// NewVehicleWithPermit builds a vehicle carrying an accessibility permit.
func NewVehicleWithPermit(plate string, t VehicleType, permit bool) (Vehicle, error) {
	v, err := NewVehicle(plate, t)
	if err != nil {
		return Vehicle{}, err
	}
	v.AccessiblePermit = permit
	return v, nil
}
