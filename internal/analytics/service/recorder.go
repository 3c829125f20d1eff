package service

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/polarops/internal/analytics/domain"
	"github.com/smallbiznis/polarops/internal/analytics/livefeed"
	"github.com/smallbiznis/polarops/internal/clock"
	equipmentdomain "github.com/smallbiznis/polarops/internal/equipment/domain"
	"github.com/smallbiznis/polarops/internal/observability/metrics"
	"github.com/smallbiznis/polarops/internal/orgcontext"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type RecorderParams struct {
	fx.In

	DB            *gorm.DB
	Log           *zap.Logger
	GenID         *snowflake.Node
	Repo          domain.Repository
	EquipmentRepo equipmentdomain.Repository
	Clock         clock.Clock
	Hub           *livefeed.Hub    `optional:"true"`
	Metrics       *metrics.Metrics `optional:"true"`
}

type Recorder struct {
	db            *gorm.DB
	log           *zap.Logger
	genID         *snowflake.Node
	repo          domain.Repository
	equipmentRepo equipmentdomain.Repository
	clock         clock.Clock
	hub           *livefeed.Hub
	metrics       *metrics.Metrics
}

func NewRecorder(p RecorderParams) *Recorder {
	return &Recorder{
		db:            p.DB,
		log:           p.Log.Named("analytics.recorder"),
		genID:         p.GenID,
		repo:          p.Repo,
		equipmentRepo: p.EquipmentRepo,
		clock:         p.Clock,
		hub:           p.Hub,
		metrics:       p.Metrics,
	}
}

// RecordTemperatureReading stores a sensor reading. Readings not older than
// the equipment's last update also become its current temperature.
func (r *Recorder) RecordTemperatureReading(ctx context.Context, req domain.RecordTemperatureRequest) (domain.TemperatureReading, error) {
	if req.Temperature == nil {
		return domain.TemperatureReading{}, domain.ErrInvalidTemperature
	}

	var reading *domain.TemperatureReading
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		equipment, err := r.loadEquipment(ctx, tx, req.EquipmentID)
		if err != nil {
			return err
		}

		at := r.clock.Now()
		if req.Timestamp != nil {
			at = req.Timestamp.UTC()
		}

		reading, err = r.recordTemperature(ctx, tx, equipment, *req.Temperature, at, domain.SourceAPI)
		if err != nil {
			return err
		}

		if !at.Before(equipment.UpdatedAt) {
			if err := equipment.UpdateTemperature(reading.Temperature, r.clock.Now()); err != nil {
				return err
			}
			if err := r.equipmentRepo.Update(ctx, tx, equipment); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return domain.TemperatureReading{}, err
	}

	r.publish(reading.EquipmentID, livefeed.Event{
		Kind:       livefeed.KindTemperature,
		Value:      reading.Temperature,
		Unit:       "celsius",
		Status:     string(reading.Status),
		Source:     string(reading.Source),
		RecordedAt: reading.RecordedAt.Format(time.RFC3339),
	})

	return *reading, nil
}

// RecordTemperature validates and stores one reading for an already loaded
// equipment. The synthetic generator writes history through it.
func (r *Recorder) RecordTemperature(ctx context.Context, equipment *equipmentdomain.Equipment, temperature float64, at time.Time, source domain.ReadingSource) (*domain.TemperatureReading, error) {
	return r.recordTemperature(ctx, r.db, equipment, temperature, at, source)
}

func (r *Recorder) recordTemperature(ctx context.Context, db *gorm.DB, equipment *equipmentdomain.Equipment, temperature float64, at time.Time, source domain.ReadingSource) (*domain.TemperatureReading, error) {
	if equipment == nil {
		return nil, domain.ErrEquipmentNotFound
	}
	if math.IsNaN(temperature) || math.IsInf(temperature, 0) {
		return nil, domain.ErrInvalidTemperature
	}
	if temperature < domain.MinTemperature || temperature > domain.MaxTemperature {
		return nil, domain.ErrInvalidTemperature
	}

	now := r.clock.Now()
	if at.IsZero() {
		at = now
	}
	if at.After(now.Add(domain.MaxFutureSkew)) {
		return nil, domain.ErrInvalidTimestamp
	}

	status := domain.ReadingNormal
	if !equipment.InOptimalRange(temperature) {
		status = domain.ReadingOutOfRange
	}

	reading := &domain.TemperatureReading{
		ID:          r.genID.Generate(),
		OrgID:       equipment.OrgID,
		EquipmentID: equipment.ID,
		Temperature: temperature,
		Status:      status,
		Source:      source,
		RecordedAt:  at.UTC(),
		CreatedAt:   now,
	}
	if err := r.repo.InsertTemperatureReading(ctx, db, reading); err != nil {
		return nil, err
	}

	r.metrics.RecordReadingIngest(ctx, livefeed.KindTemperature, string(source))
	return reading, nil
}

func (r *Recorder) RecordEnergyReading(ctx context.Context, req domain.RecordEnergyRequest) (domain.EnergyReading, error) {
	if req.Consumption == nil {
		return domain.EnergyReading{}, domain.ErrInvalidConsumption
	}
	consumption := *req.Consumption
	if math.IsNaN(consumption) || math.IsInf(consumption, 0) || consumption < 0 {
		return domain.EnergyReading{}, domain.ErrInvalidConsumption
	}

	equipment, err := r.loadEquipment(ctx, r.db, req.EquipmentID)
	if err != nil {
		return domain.EnergyReading{}, err
	}

	now := r.clock.Now()
	at := now
	if req.Timestamp != nil {
		at = req.Timestamp.UTC()
	}
	if at.After(now.Add(domain.MaxFutureSkew)) {
		return domain.EnergyReading{}, domain.ErrInvalidTimestamp
	}

	unit := strings.TrimSpace(req.Unit)
	if unit == "" {
		unit = equipment.EnergyConsumptionUnit
	}
	if unit == "" {
		unit = equipmentdomain.DefaultEnergyUnit
	}
	if len(unit) > 16 {
		return domain.EnergyReading{}, domain.ErrInvalidUnit
	}

	reading := domain.EnergyReading{
		ID:          r.genID.Generate(),
		OrgID:       equipment.OrgID,
		EquipmentID: equipment.ID,
		Consumption: consumption,
		Unit:        unit,
		Status:      domain.ReadingNormal,
		Source:      domain.SourceAPI,
		RecordedAt:  at,
		CreatedAt:   now,
	}
	if err := r.repo.InsertEnergyReading(ctx, r.db, &reading); err != nil {
		return domain.EnergyReading{}, err
	}

	r.metrics.RecordReadingIngest(ctx, livefeed.KindEnergy, string(reading.Source))
	r.publish(reading.EquipmentID, livefeed.Event{
		Kind:       livefeed.KindEnergy,
		Value:      reading.Consumption,
		Unit:       reading.Unit,
		Status:     string(reading.Status),
		Source:     string(reading.Source),
		RecordedAt: reading.RecordedAt.Format(time.RFC3339),
	})

	return reading, nil
}

func (r *Recorder) loadEquipment(ctx context.Context, db *gorm.DB, rawID string) (*equipmentdomain.Equipment, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}

	equipmentID, err := parseEquipmentID(rawID)
	if err != nil {
		return nil, err
	}

	equipment, err := r.equipmentRepo.FindByID(ctx, db, orgID, equipmentID)
	if err != nil {
		return nil, err
	}
	if equipment == nil {
		return nil, domain.ErrEquipmentNotFound
	}
	return equipment, nil
}

func (r *Recorder) publish(equipmentID snowflake.ID, event livefeed.Event) {
	if r.hub == nil {
		return
	}
	event.EquipmentID = equipmentID.String()
	r.hub.Publish(event.EquipmentID, event)
}

func parseEquipmentID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id <= 0 {
		return 0, domain.ErrInvalidEquipmentID
	}
	return id, nil
}
