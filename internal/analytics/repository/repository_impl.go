package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/polarops/internal/analytics/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) InsertTemperatureReading(ctx context.Context, db *gorm.DB, reading *domain.TemperatureReading) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO temperature_readings (id, org_id, equipment_id, temperature, status, source, recorded_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		reading.ID,
		reading.OrgID,
		reading.EquipmentID,
		reading.Temperature,
		reading.Status,
		reading.Source,
		reading.RecordedAt,
		reading.CreatedAt,
	).Error
}

func (r *repo) InsertEnergyReading(ctx context.Context, db *gorm.DB, reading *domain.EnergyReading) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO energy_readings (id, org_id, equipment_id, consumption, unit, status, source, recorded_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		reading.ID,
		reading.OrgID,
		reading.EquipmentID,
		reading.Consumption,
		reading.Unit,
		reading.Status,
		reading.Source,
		reading.RecordedAt,
		reading.CreatedAt,
	).Error
}

func (r *repo) InsertDailyAverage(ctx context.Context, db *gorm.DB, average *domain.DailyTemperatureAverage) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO daily_temperature_averages (
			id, org_id, equipment_id, date, average_temperature, min_temperature, max_temperature, reading_count, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		average.ID,
		average.OrgID,
		average.EquipmentID,
		average.Date,
		average.AverageTemperature,
		average.MinTemperature,
		average.MaxTemperature,
		average.ReadingCount,
		average.CreatedAt,
	).Error
}

func (r *repo) HasTemperatureReadings(ctx context.Context, db *gorm.DB, equipmentID snowflake.ID) (bool, error) {
	var ids []int64
	err := db.WithContext(ctx).Raw(
		`SELECT id FROM temperature_readings WHERE equipment_id = ? LIMIT 1`,
		equipmentID,
	).Scan(&ids).Error
	if err != nil {
		return false, err
	}
	return len(ids) > 0, nil
}

func (r *repo) ListTemperatureReadings(ctx context.Context, db *gorm.DB, equipmentID snowflake.ID, from, to time.Time) ([]*domain.TemperatureReading, error) {
	var readings []*domain.TemperatureReading
	err := db.WithContext(ctx).Raw(
		`SELECT id, org_id, equipment_id, temperature, status, source, recorded_at, created_at
		 FROM temperature_readings
		 WHERE equipment_id = ? AND recorded_at >= ? AND recorded_at < ?
		 ORDER BY recorded_at ASC, id ASC`,
		equipmentID,
		from,
		to,
	).Scan(&readings).Error
	if err != nil {
		return nil, err
	}
	return readings, nil
}

func (r *repo) ListEnergyReadings(ctx context.Context, db *gorm.DB, equipmentID snowflake.ID, from, to time.Time) ([]*domain.EnergyReading, error) {
	var readings []*domain.EnergyReading
	err := db.WithContext(ctx).Raw(
		`SELECT id, org_id, equipment_id, consumption, unit, status, source, recorded_at, created_at
		 FROM energy_readings
		 WHERE equipment_id = ? AND recorded_at >= ? AND recorded_at < ?
		 ORDER BY recorded_at ASC, id ASC`,
		equipmentID,
		from,
		to,
	).Scan(&readings).Error
	if err != nil {
		return nil, err
	}
	return readings, nil
}

func (r *repo) FindDailyAverage(ctx context.Context, db *gorm.DB, equipmentID snowflake.ID, date time.Time) (*domain.DailyTemperatureAverage, error) {
	var average domain.DailyTemperatureAverage
	err := db.WithContext(ctx).Raw(
		`SELECT id, org_id, equipment_id, date, average_temperature, min_temperature, max_temperature, reading_count, created_at
		 FROM daily_temperature_averages WHERE equipment_id = ? AND date = ?`,
		equipmentID,
		date,
	).Scan(&average).Error
	if err != nil {
		return nil, err
	}
	if average.ID == 0 {
		return nil, nil
	}
	return &average, nil
}

func (r *repo) ListDailyAverages(ctx context.Context, db *gorm.DB, equipmentID snowflake.ID, from, to time.Time) ([]*domain.DailyTemperatureAverage, error) {
	var averages []*domain.DailyTemperatureAverage
	err := db.WithContext(ctx).Raw(
		`SELECT id, org_id, equipment_id, date, average_temperature, min_temperature, max_temperature, reading_count, created_at
		 FROM daily_temperature_averages
		 WHERE equipment_id = ? AND date >= ? AND date < ?
		 ORDER BY date ASC`,
		equipmentID,
		from,
		to,
	).Scan(&averages).Error
	if err != nil {
		return nil, err
	}
	return averages, nil
}
