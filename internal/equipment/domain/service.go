package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/polarops/pkg/db/pagination"
)

type CreateEquipmentRequest struct {
	Details
	CurrentTemperature *float64
	LocationName       string
	LocationAddress    string
	LocationLatitude   *float64
	LocationLongitude  *float64
}

type UpdateEquipmentRequest struct {
	ID string
	Details
}

type UpdateTemperatureRequest struct {
	ID          string
	Temperature float64
}

type UpdatePowerStateRequest struct {
	ID          string
	IsPoweredOn bool
}

type UpdateLocationRequest struct {
	ID        string
	Name      string
	Address   string
	Latitude  *float64
	Longitude *float64
}

type ListEquipmentRequest struct {
	PageToken string
	PageSize  int32
	OwnerID   string
	Type      string
}

type ListEquipmentFilter struct {
	OwnerID snowflake.ID
	Type    EquipmentType
}

type ListEquipmentResponse struct {
	pagination.PageInfo
	Equipment []Equipment `json:"equipment"`
}

// Service is the equipment command and query surface. Commands return a nil
// equipment without error when the target does not exist.
type Service interface {
	Create(context.Context, CreateEquipmentRequest) (Equipment, error)
	GetByID(ctx context.Context, id string) (Equipment, error)
	List(context.Context, ListEquipmentRequest) (ListEquipmentResponse, error)
	Update(context.Context, UpdateEquipmentRequest) (*Equipment, error)
	UpdateTemperature(context.Context, UpdateTemperatureRequest) (*Equipment, error)
	UpdatePowerState(context.Context, UpdatePowerStateRequest) (*Equipment, error)
	UpdateLocation(context.Context, UpdateLocationRequest) (*Equipment, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// DataGenerator seeds telemetry history for newly created equipment.
type DataGenerator interface {
	GenerateInitialDataForEquipment(ctx context.Context, equipmentID snowflake.ID) error
}

var (
	ErrInvalidOrganization      = errors.New("invalid_organization")
	ErrInvalidID                = errors.New("invalid_id")
	ErrInvalidName              = errors.New("invalid_name")
	ErrInvalidSerialNumber      = errors.New("invalid_serial_number")
	ErrInvalidCode              = errors.New("invalid_code")
	ErrInvalidType              = errors.New("invalid_type")
	ErrInvalidTemperature       = errors.New("invalid_temperature")
	ErrInvalidTemperatureRange  = errors.New("invalid_optimal_temperature_range")
	ErrInvalidLatitude          = errors.New("invalid_latitude")
	ErrInvalidLongitude         = errors.New("invalid_longitude")
	ErrInvalidCost              = errors.New("invalid_cost")
	ErrInvalidEnergyConsumption = errors.New("invalid_energy_consumption_average")
	ErrInvalidOwnershipType     = errors.New("invalid_ownership_type")
	ErrInvalidOwnerID           = errors.New("invalid_owner_id")
	ErrInvalidRentalPeriod      = errors.New("invalid_rental_period")
	ErrSerialNumberExists       = errors.New("serial_number_exists")
	ErrCodeExists               = errors.New("code_exists")
	ErrNotFound                 = errors.New("not_found")
)
