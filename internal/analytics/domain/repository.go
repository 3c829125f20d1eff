package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Repository stores readings and daily averages. Time windows are half open:
// from is inclusive and to is exclusive.
type Repository interface {
	InsertTemperatureReading(ctx context.Context, db *gorm.DB, reading *TemperatureReading) error
	InsertEnergyReading(ctx context.Context, db *gorm.DB, reading *EnergyReading) error
	InsertDailyAverage(ctx context.Context, db *gorm.DB, average *DailyTemperatureAverage) error

	HasTemperatureReadings(ctx context.Context, db *gorm.DB, equipmentID snowflake.ID) (bool, error)
	ListTemperatureReadings(ctx context.Context, db *gorm.DB, equipmentID snowflake.ID, from, to time.Time) ([]*TemperatureReading, error)
	ListEnergyReadings(ctx context.Context, db *gorm.DB, equipmentID snowflake.ID, from, to time.Time) ([]*EnergyReading, error)
	FindDailyAverage(ctx context.Context, db *gorm.DB, equipmentID snowflake.ID, date time.Time) (*DailyTemperatureAverage, error)
	ListDailyAverages(ctx context.Context, db *gorm.DB, equipmentID snowflake.ID, from, to time.Time) ([]*DailyTemperatureAverage, error)
}
