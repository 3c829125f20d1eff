package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	equipmentdomain "github.com/smallbiznis/polarops/internal/equipment/domain"
	"github.com/smallbiznis/polarops/pkg/db/pagination"
	"gorm.io/datatypes"
)

const (
	operationTemperature = "temperature"
	operationPower       = "power"
	operationLocation    = "location"
)

type equipmentDetailsRequest struct {
	Name             string            `json:"name"`
	Type             string            `json:"type"`
	Model            string            `json:"model"`
	Manufacturer     string            `json:"manufacturer"`
	SerialNumber     string            `json:"serial_number"`
	Code             string            `json:"code"`
	Cost             decimal.Decimal   `json:"cost"`
	TechnicalDetails datatypes.JSONMap `json:"technical_details"`
	InstallationDate optionalTime      `json:"installation_date"`

	SetTemperature        *float64 `json:"set_temperature"`
	OptimalTemperatureMin float64  `json:"optimal_temperature_min"`
	OptimalTemperatureMax float64  `json:"optimal_temperature_max"`

	EnergyConsumptionUnit    string  `json:"energy_consumption_unit"`
	EnergyConsumptionAverage float64 `json:"energy_consumption_average"`

	OwnerID       idValue `json:"owner_id"`
	OwnerType     string  `json:"owner_type"`
	OwnershipType string  `json:"ownership_type"`

	RentalStartDate  optionalTime        `json:"rental_start_date"`
	RentalEndDate    optionalTime        `json:"rental_end_date"`
	RentalMonthlyFee decimal.NullDecimal `json:"rental_monthly_fee"`
	RentalProviderID idValue             `json:"rental_provider_id"`

	Notes string `json:"notes"`
}

func (r equipmentDetailsRequest) toDetails() (equipmentdomain.Details, error) {
	ownerID, err := parseOptionalSnowflakeID(r.OwnerID.String())
	if err != nil {
		return equipmentdomain.Details{}, equipmentdomain.ErrInvalidOwnerID
	}
	providerID, err := parseOptionalSnowflakeID(r.RentalProviderID.String())
	if err != nil {
		return equipmentdomain.Details{}, newValidationError("rental_provider_id", "invalid_rental_provider_id", "invalid rental_provider_id")
	}

	return equipmentdomain.Details{
		Name:                     r.Name,
		Type:                     equipmentdomain.EquipmentType(r.Type),
		Model:                    r.Model,
		Manufacturer:             r.Manufacturer,
		SerialNumber:             r.SerialNumber,
		Code:                     r.Code,
		Cost:                     r.Cost,
		TechnicalDetails:         r.TechnicalDetails,
		InstallationDate:         r.InstallationDate.Value,
		SetTemperature:           r.SetTemperature,
		OptimalTemperatureMin:    r.OptimalTemperatureMin,
		OptimalTemperatureMax:    r.OptimalTemperatureMax,
		EnergyConsumptionUnit:    r.EnergyConsumptionUnit,
		EnergyConsumptionAverage: r.EnergyConsumptionAverage,
		OwnerID:                  ownerID,
		OwnerType:                r.OwnerType,
		OwnershipType:            equipmentdomain.OwnershipType(r.OwnershipType),
		RentalStartDate:          r.RentalStartDate.Value,
		RentalEndDate:            r.RentalEndDate.Value,
		RentalMonthlyFee:         r.RentalMonthlyFee,
		RentalProviderID:         providerID,
		Notes:                    r.Notes,
	}, nil
}

type createEquipmentRequest struct {
	equipmentDetailsRequest
	CurrentTemperature *float64 `json:"current_temperature"`
	LocationName       string   `json:"location_name"`
	LocationAddress    string   `json:"location_address"`
	LocationLatitude   *float64 `json:"location_latitude"`
	LocationLongitude  *float64 `json:"location_longitude"`
}

type equipmentOperationRequest struct {
	Operation   string   `json:"operation"`
	Temperature *float64 `json:"temperature"`
	Power       string   `json:"power"`
	Name        string   `json:"name"`
	Address     string   `json:"address"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
}

func (s *Server) CreateEquipment(c *gin.Context) {
	var req createEquipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	details, err := req.toDetails()
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.equipmentSvc.Create(c.Request.Context(), equipmentdomain.CreateEquipmentRequest{
		Details:            details,
		CurrentTemperature: req.CurrentTemperature,
		LocationName:       strings.TrimSpace(req.LocationName),
		LocationAddress:    strings.TrimSpace(req.LocationAddress),
		LocationLatitude:   req.LocationLatitude,
		LocationLongitude:  req.LocationLongitude,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListEquipment(c *gin.Context) {
	var query struct {
		pagination.Pagination
		OwnerID string `form:"owner_id"`
		Type    string `form:"type"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.equipmentSvc.List(c.Request.Context(), equipmentdomain.ListEquipmentRequest{
		PageToken: query.PageToken,
		PageSize:  int32(query.PageSize),
		OwnerID:   strings.TrimSpace(query.OwnerID),
		Type:      strings.TrimSpace(query.Type),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetEquipmentByID(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	tagEquipment(c, id)

	resp, err := s.equipmentSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateEquipment(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	tagEquipment(c, id)

	var req equipmentDetailsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	details, err := req.toDetails()
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.equipmentSvc.Update(c.Request.Context(), equipmentdomain.UpdateEquipmentRequest{
		ID:      id,
		Details: details,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if resp == nil {
		AbortWithError(c, ErrNotFound)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// UpdateEquipmentOperation applies a single runtime command: a new current
// temperature, a power switch or a relocation.
func (s *Server) UpdateEquipmentOperation(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	tagEquipment(c, id)

	var req equipmentOperationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	ctx := c.Request.Context()
	var (
		resp *equipmentdomain.Equipment
		err  error
	)
	switch strings.ToLower(strings.TrimSpace(req.Operation)) {
	case operationTemperature:
		if req.Temperature == nil {
			AbortWithError(c, equipmentdomain.ErrInvalidTemperature)
			return
		}
		resp, err = s.equipmentSvc.UpdateTemperature(ctx, equipmentdomain.UpdateTemperatureRequest{
			ID:          id,
			Temperature: *req.Temperature,
		})
	case operationPower:
		on, ok := parsePowerState(req.Power)
		if !ok {
			AbortWithError(c, newValidationError("power", "invalid_power", "power must be ON or OFF"))
			return
		}
		resp, err = s.equipmentSvc.UpdatePowerState(ctx, equipmentdomain.UpdatePowerStateRequest{
			ID:          id,
			IsPoweredOn: on,
		})
	case operationLocation:
		resp, err = s.equipmentSvc.UpdateLocation(ctx, equipmentdomain.UpdateLocationRequest{
			ID:        id,
			Name:      strings.TrimSpace(req.Name),
			Address:   strings.TrimSpace(req.Address),
			Latitude:  req.Latitude,
			Longitude: req.Longitude,
		})
	default:
		AbortWithError(c, newValidationError("operation", "invalid_operation", "operation must be temperature, power or location"))
		return
	}
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if resp == nil {
		AbortWithError(c, ErrNotFound)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteEquipment(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	tagEquipment(c, id)

	deleted, err := s.equipmentSvc.Delete(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if !deleted {
		AbortWithError(c, ErrNotFound)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"id": id, "deleted": true}})
}

func parsePowerState(value string) (bool, bool) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "ON":
		return true, true
	case "OFF":
		return false, true
	default:
		return false, false
	}
}

func isEquipmentValidationError(err error) bool {
	switch err {
	case equipmentdomain.ErrInvalidOrganization,
		equipmentdomain.ErrInvalidID,
		equipmentdomain.ErrInvalidName,
		equipmentdomain.ErrInvalidSerialNumber,
		equipmentdomain.ErrInvalidCode,
		equipmentdomain.ErrInvalidType,
		equipmentdomain.ErrInvalidTemperature,
		equipmentdomain.ErrInvalidTemperatureRange,
		equipmentdomain.ErrInvalidLatitude,
		equipmentdomain.ErrInvalidLongitude,
		equipmentdomain.ErrInvalidCost,
		equipmentdomain.ErrInvalidEnergyConsumption,
		equipmentdomain.ErrInvalidOwnershipType,
		equipmentdomain.ErrInvalidOwnerID,
		equipmentdomain.ErrInvalidRentalPeriod:
		return true
	default:
		return false
	}
}
