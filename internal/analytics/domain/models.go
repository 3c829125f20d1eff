package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type ReadingSource string

const (
	SourceAPI       ReadingSource = "api"
	SourceGenerator ReadingSource = "generator"
)

type ReadingStatus string

const (
	ReadingNormal     ReadingStatus = "NORMAL"
	ReadingOutOfRange ReadingStatus = "OUT_OF_RANGE"
)

type TemperatureReading struct {
	ID          snowflake.ID  `gorm:"primaryKey" json:"id"`
	OrgID       snowflake.ID  `gorm:"not null;index" json:"organization_id"`
	EquipmentID snowflake.ID  `gorm:"not null;index:ix_temperature_readings_equipment_time,priority:1" json:"equipment_id"`
	Temperature float64       `gorm:"not null" json:"temperature"`
	Status      ReadingStatus `gorm:"size:16;not null" json:"status"`
	Source      ReadingSource `gorm:"size:16;not null" json:"source"`
	RecordedAt  time.Time     `gorm:"not null;index:ix_temperature_readings_equipment_time,priority:2" json:"timestamp"`
	CreatedAt   time.Time     `gorm:"not null" json:"created_at"`
}

type EnergyReading struct {
	ID          snowflake.ID  `gorm:"primaryKey" json:"id"`
	OrgID       snowflake.ID  `gorm:"not null;index" json:"organization_id"`
	EquipmentID snowflake.ID  `gorm:"not null;index:ix_energy_readings_equipment_time,priority:1" json:"equipment_id"`
	Consumption float64       `gorm:"not null" json:"consumption"`
	Unit        string        `gorm:"size:16;not null" json:"unit"`
	Status      ReadingStatus `gorm:"size:16;not null" json:"status"`
	Source      ReadingSource `gorm:"size:16;not null" json:"source"`
	RecordedAt  time.Time     `gorm:"not null;index:ix_energy_readings_equipment_time,priority:2" json:"timestamp"`
	CreatedAt   time.Time     `gorm:"not null" json:"created_at"`
}

// DailyTemperatureAverage is derived from the temperature readings of one
// UTC calendar day. There is at most one row per equipment and date.
type DailyTemperatureAverage struct {
	ID                 snowflake.ID `gorm:"primaryKey" json:"id"`
	OrgID              snowflake.ID `gorm:"not null;index" json:"organization_id"`
	EquipmentID        snowflake.ID `gorm:"not null;uniqueIndex:ux_daily_temperature_averages_equipment_date,priority:1" json:"equipment_id"`
	Date               time.Time    `gorm:"not null;uniqueIndex:ux_daily_temperature_averages_equipment_date,priority:2" json:"date"`
	AverageTemperature float64      `gorm:"not null" json:"average_temperature"`
	MinTemperature     float64      `gorm:"not null" json:"min_temperature"`
	MaxTemperature     float64      `gorm:"not null" json:"max_temperature"`
	ReadingCount       int          `gorm:"not null" json:"reading_count"`
	CreatedAt          time.Time    `gorm:"not null" json:"created_at"`
}

// Summarize computes the average, minimum and maximum of the readings. It
// returns false when there is nothing to summarize.
func Summarize(readings []*TemperatureReading) (avg, lowest, highest float64, ok bool) {
	if len(readings) == 0 {
		return 0, 0, 0, false
	}
	lowest = readings[0].Temperature
	highest = readings[0].Temperature
	var sum float64
	for _, r := range readings {
		sum += r.Temperature
		if r.Temperature < lowest {
			lowest = r.Temperature
		}
		if r.Temperature > highest {
			highest = r.Temperature
		}
	}
	return sum / float64(len(readings)), lowest, highest, true
}
