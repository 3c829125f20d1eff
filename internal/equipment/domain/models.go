package domain

import (
	"math"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type EquipmentType string

const (
	TypeFreezer        EquipmentType = "FREEZER"
	TypeColdRoom       EquipmentType = "COLD_ROOM"
	TypeRefrigerator   EquipmentType = "REFRIGERATOR"
	TypeAirConditioner EquipmentType = "AIR_CONDITIONER"
	TypeCooler         EquipmentType = "COOLER"
	TypeOther          EquipmentType = "OTHER"
)

type Status string

const (
	StatusNormal  Status = "NORMAL"
	StatusWarning Status = "WARNING"
	StatusOffline Status = "OFFLINE"
)

type OwnershipType string

const (
	OwnershipOwned  OwnershipType = "OWNED"
	OwnershipRented OwnershipType = "RENTED"
	OwnershipLeased OwnershipType = "LEASED"
)

const DefaultEnergyUnit = "watts"

// Equipment is the aggregate root for a monitored refrigeration or climate
// unit. Fields are exported for persistence and serialization; state changes
// go through the mutators below.
type Equipment struct {
	ID         snowflake.ID  `gorm:"primaryKey" json:"id"`
	OrgID      snowflake.ID  `gorm:"not null;index;uniqueIndex:ux_equipment_org_serial,priority:1;uniqueIndex:ux_equipment_org_code,priority:1" json:"organization_id"`
	Identifier string        `gorm:"size:36;not null;uniqueIndex" json:"identifier"`
	Name       string        `gorm:"not null" json:"name"`
	Type       EquipmentType `gorm:"size:32;not null" json:"type"`

	Model            string            `json:"model,omitempty"`
	Manufacturer     string            `json:"manufacturer,omitempty"`
	SerialNumber     string            `gorm:"size:128;not null;uniqueIndex:ux_equipment_org_serial,priority:2" json:"serial_number"`
	Code             string            `gorm:"size:128;not null;uniqueIndex:ux_equipment_org_code,priority:2" json:"code"`
	Cost             decimal.Decimal   `gorm:"type:numeric(14,2);not null;default:0" json:"cost"`
	TechnicalDetails datatypes.JSONMap `json:"technical_details,omitempty"`

	Status           Status     `gorm:"size:16;not null" json:"status"`
	IsPoweredOn      bool       `gorm:"not null" json:"is_powered_on"`
	InstallationDate *time.Time `json:"installation_date,omitempty"`

	CurrentTemperature    float64  `gorm:"not null" json:"current_temperature"`
	SetTemperature        *float64 `json:"set_temperature,omitempty"`
	OptimalTemperatureMin float64  `gorm:"not null" json:"optimal_temperature_min"`
	OptimalTemperatureMax float64  `gorm:"not null" json:"optimal_temperature_max"`

	LocationName      string   `json:"location_name,omitempty"`
	LocationAddress   string   `json:"location_address,omitempty"`
	LocationLatitude  *float64 `json:"location_latitude,omitempty"`
	LocationLongitude *float64 `json:"location_longitude,omitempty"`

	EnergyConsumptionCurrent float64 `gorm:"not null;default:0" json:"energy_consumption_current"`
	EnergyConsumptionUnit    string  `gorm:"size:16;not null" json:"energy_consumption_unit"`
	EnergyConsumptionAverage float64 `gorm:"not null;default:0" json:"energy_consumption_average"`

	OwnerID       snowflake.ID  `gorm:"index" json:"owner_id,omitempty"`
	OwnerType     string        `gorm:"size:32" json:"owner_type,omitempty"`
	OwnershipType OwnershipType `gorm:"size:16;not null" json:"ownership_type"`

	RentalStartDate  *time.Time          `json:"rental_start_date,omitempty"`
	RentalEndDate    *time.Time          `json:"rental_end_date,omitempty"`
	RentalMonthlyFee decimal.NullDecimal `gorm:"type:numeric(14,2)" json:"rental_monthly_fee"`
	RentalProviderID snowflake.ID        `json:"rental_provider_id,omitempty"`

	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Equipment) TableName() string {
	return "equipment"
}

// Details holds the descriptive and configuration attributes shared by the
// create and full-update commands.
type Details struct {
	Name             string
	Type             EquipmentType
	Model            string
	Manufacturer     string
	SerialNumber     string
	Code             string
	Cost             decimal.Decimal
	TechnicalDetails datatypes.JSONMap
	InstallationDate *time.Time

	SetTemperature        *float64
	OptimalTemperatureMin float64
	OptimalTemperatureMax float64

	EnergyConsumptionUnit    string
	EnergyConsumptionAverage float64

	OwnerID       snowflake.ID
	OwnerType     string
	OwnershipType OwnershipType

	RentalStartDate  *time.Time
	RentalEndDate    *time.Time
	RentalMonthlyFee decimal.NullDecimal
	RentalProviderID snowflake.ID

	Notes string
}

// NewEquipment validates the details and returns a powered-on unit whose
// current temperature starts at the set point, or the middle of the optimal
// range when no set point is given.
func NewEquipment(id, orgID snowflake.ID, identifier string, details Details, now time.Time) (*Equipment, error) {
	details, err := normalizeDetails(details)
	if err != nil {
		return nil, err
	}

	e := &Equipment{
		ID:          id,
		OrgID:       orgID,
		Identifier:  identifier,
		IsPoweredOn: true,
		CreatedAt:   now,
	}
	e.applyDetails(details, now)

	if details.SetTemperature != nil {
		e.CurrentTemperature = *details.SetTemperature
	} else {
		e.CurrentTemperature = (details.OptimalTemperatureMin + details.OptimalTemperatureMax) / 2
	}
	e.refreshStatus()

	return e, nil
}

func (e *Equipment) UpdateTemperature(value float64, now time.Time) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return ErrInvalidTemperature
	}
	e.CurrentTemperature = value
	e.refreshStatus()
	e.UpdatedAt = now
	return nil
}

func (e *Equipment) UpdatePowerState(on bool, now time.Time) {
	e.IsPoweredOn = on
	e.refreshStatus()
	e.UpdatedAt = now
}

func (e *Equipment) UpdateLocation(name, address string, latitude, longitude *float64, now time.Time) error {
	if latitude != nil && (math.IsNaN(*latitude) || *latitude < -90 || *latitude > 90) {
		return ErrInvalidLatitude
	}
	if longitude != nil && (math.IsNaN(*longitude) || *longitude < -180 || *longitude > 180) {
		return ErrInvalidLongitude
	}

	e.LocationName = strings.TrimSpace(name)
	e.LocationAddress = strings.TrimSpace(address)
	e.LocationLatitude = latitude
	e.LocationLongitude = longitude
	e.UpdatedAt = now
	return nil
}

// UpdateDetails replaces every descriptive attribute. The current
// temperature and power state are kept.
func (e *Equipment) UpdateDetails(details Details, now time.Time) error {
	details, err := normalizeDetails(details)
	if err != nil {
		return err
	}
	e.applyDetails(details, now)
	e.refreshStatus()
	return nil
}

// InOptimalRange reports whether the temperature lies inside the optimal band.
func (e *Equipment) InOptimalRange(value float64) bool {
	return value >= e.OptimalTemperatureMin && value <= e.OptimalTemperatureMax
}

func (e *Equipment) refreshStatus() {
	switch {
	case !e.IsPoweredOn:
		e.Status = StatusOffline
	case e.InOptimalRange(e.CurrentTemperature):
		e.Status = StatusNormal
	default:
		e.Status = StatusWarning
	}
}

func (e *Equipment) applyDetails(d Details, now time.Time) {
	e.Name = d.Name
	e.Type = d.Type
	e.Model = d.Model
	e.Manufacturer = d.Manufacturer
	e.SerialNumber = d.SerialNumber
	e.Code = d.Code
	e.Cost = d.Cost
	e.TechnicalDetails = d.TechnicalDetails
	e.InstallationDate = d.InstallationDate
	e.SetTemperature = d.SetTemperature
	e.OptimalTemperatureMin = d.OptimalTemperatureMin
	e.OptimalTemperatureMax = d.OptimalTemperatureMax
	e.EnergyConsumptionUnit = d.EnergyConsumptionUnit
	e.EnergyConsumptionAverage = d.EnergyConsumptionAverage
	e.OwnerID = d.OwnerID
	e.OwnerType = d.OwnerType
	e.OwnershipType = d.OwnershipType
	e.RentalStartDate = d.RentalStartDate
	e.RentalEndDate = d.RentalEndDate
	e.RentalMonthlyFee = d.RentalMonthlyFee
	e.RentalProviderID = d.RentalProviderID
	e.Notes = d.Notes
	e.UpdatedAt = now
}

func normalizeDetails(d Details) (Details, error) {
	d.Name = strings.TrimSpace(d.Name)
	d.SerialNumber = strings.TrimSpace(d.SerialNumber)
	d.Code = strings.TrimSpace(d.Code)
	d.Model = strings.TrimSpace(d.Model)
	d.Manufacturer = strings.TrimSpace(d.Manufacturer)
	d.OwnerType = strings.TrimSpace(d.OwnerType)
	d.Notes = strings.TrimSpace(d.Notes)

	if d.Name == "" {
		return d, ErrInvalidName
	}
	if d.SerialNumber == "" {
		return d, ErrInvalidSerialNumber
	}
	if d.Code == "" {
		return d, ErrInvalidCode
	}

	equipmentType, err := ParseType(string(d.Type))
	if err != nil {
		return d, err
	}
	d.Type = equipmentType

	if !finite(d.OptimalTemperatureMin) || !finite(d.OptimalTemperatureMax) {
		return d, ErrInvalidTemperatureRange
	}
	if d.OptimalTemperatureMin > d.OptimalTemperatureMax {
		return d, ErrInvalidTemperatureRange
	}
	if d.SetTemperature != nil && !finite(*d.SetTemperature) {
		return d, ErrInvalidTemperature
	}
	if d.Cost.IsNegative() {
		return d, ErrInvalidCost
	}
	if d.EnergyConsumptionAverage < 0 || !finite(d.EnergyConsumptionAverage) {
		return d, ErrInvalidEnergyConsumption
	}

	d.EnergyConsumptionUnit = strings.TrimSpace(d.EnergyConsumptionUnit)
	if d.EnergyConsumptionUnit == "" {
		d.EnergyConsumptionUnit = DefaultEnergyUnit
	}

	switch OwnershipType(strings.ToUpper(strings.TrimSpace(string(d.OwnershipType)))) {
	case "", OwnershipOwned:
		d.OwnershipType = OwnershipOwned
	case OwnershipRented:
		d.OwnershipType = OwnershipRented
	case OwnershipLeased:
		d.OwnershipType = OwnershipLeased
	default:
		return d, ErrInvalidOwnershipType
	}

	if d.RentalStartDate != nil && d.RentalEndDate != nil && d.RentalEndDate.Before(*d.RentalStartDate) {
		return d, ErrInvalidRentalPeriod
	}
	if d.RentalMonthlyFee.Valid && d.RentalMonthlyFee.Decimal.IsNegative() {
		return d, ErrInvalidRentalPeriod
	}

	return d, nil
}

// ParseType maps free-form input onto a known type. Empty input is OTHER.
func ParseType(value string) (EquipmentType, error) {
	normalized := strings.ToUpper(strings.TrimSpace(value))
	normalized = strings.NewReplacer(" ", "_", "-", "_").Replace(normalized)
	switch EquipmentType(normalized) {
	case "":
		return TypeOther, nil
	case TypeFreezer, TypeColdRoom, TypeRefrigerator, TypeAirConditioner, TypeCooler, TypeOther:
		return EquipmentType(normalized), nil
	case "COLDROOM":
		return TypeColdRoom, nil
	case "AIRCONDITIONER":
		return TypeAirConditioner, nil
	default:
		return "", ErrInvalidType
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
