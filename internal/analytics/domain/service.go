package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	equipmentdomain "github.com/smallbiznis/polarops/internal/equipment/domain"
)

const (
	MinTemperature = -100.0
	MaxTemperature = 100.0

	// MaxFutureSkew bounds how far ahead of the server clock a reading may be.
	MaxFutureSkew = 5 * time.Minute

	DefaultReadingHours = 24
	MaxReadingHours     = 720
	DefaultAverageDays  = 7
	MaxAverageDays      = 90
)

type RecordTemperatureRequest struct {
	EquipmentID string
	Temperature *float64
	Timestamp   *time.Time
}

type RecordEnergyRequest struct {
	EquipmentID string
	Consumption *float64
	Unit        string
	Timestamp   *time.Time
}

type ListReadingsRequest struct {
	EquipmentID string
	Hours       int
}

type ListDailyAveragesRequest struct {
	EquipmentID string
	Days        int
}

// Recorder is the validated write path for readings. Sensor input and the
// synthetic generator share RecordTemperature.
type Recorder interface {
	RecordTemperatureReading(context.Context, RecordTemperatureRequest) (TemperatureReading, error)
	RecordEnergyReading(context.Context, RecordEnergyRequest) (EnergyReading, error)
	RecordTemperature(ctx context.Context, equipment *equipmentdomain.Equipment, temperature float64, at time.Time, source ReadingSource) (*TemperatureReading, error)
}

type Service interface {
	RecordTemperatureReading(context.Context, RecordTemperatureRequest) (TemperatureReading, error)
	RecordEnergyReading(context.Context, RecordEnergyRequest) (EnergyReading, error)
	ListTemperatureReadings(context.Context, ListReadingsRequest) ([]TemperatureReading, error)
	ListEnergyReadings(context.Context, ListReadingsRequest) ([]EnergyReading, error)
	ListDailyAverages(context.Context, ListDailyAveragesRequest) ([]DailyTemperatureAverage, error)
}

// Generator fabricates telemetry history for equipment that has none.
type Generator interface {
	GenerateInitialDataForEquipment(ctx context.Context, equipmentID snowflake.ID) error
	GenerateDailyAverages(ctx context.Context, equipmentID snowflake.ID, from time.Time, days int) (int, error)
}

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidEquipmentID  = errors.New("invalid_equipment_id")
	ErrEquipmentNotFound   = errors.New("equipment_not_found")
	ErrInvalidTemperature  = errors.New("invalid_temperature")
	ErrInvalidTimestamp    = errors.New("invalid_timestamp")
	ErrInvalidConsumption  = errors.New("invalid_consumption")
	ErrInvalidUnit         = errors.New("invalid_unit")
	ErrInvalidHours        = errors.New("invalid_hours")
	ErrInvalidDays         = errors.New("invalid_days")
)
