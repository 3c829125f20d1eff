// Package generator fabricates plausible telemetry history for equipment that
// has never reported, so dashboards of newly onboarded equipment are not empty.
//
// A run writes hourly temperature readings, four energy readings per day and
// one daily temperature average per calendar day. The steps are independent;
// a failed run leaves the history written so far in place.
package generator

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	analyticsdomain "github.com/smallbiznis/polarops/internal/analytics/domain"
	"github.com/smallbiznis/polarops/internal/clock"
	"github.com/smallbiznis/polarops/internal/config"
	equipmentdomain "github.com/smallbiznis/polarops/internal/equipment/domain"
	"github.com/smallbiznis/polarops/internal/observability/metrics"
	"github.com/smallbiznis/polarops/internal/orgcontext"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const DefaultDays = 7

const (
	outcomeGenerated = "generated"
	outcomeSkipped   = "skipped"
	outcomeFailed    = "failed"
)

// TemperatureRecorder is the validated temperature write path.
type TemperatureRecorder interface {
	RecordTemperature(ctx context.Context, equipment *equipmentdomain.Equipment, temperature float64, at time.Time, source analyticsdomain.ReadingSource) (*analyticsdomain.TemperatureReading, error)
}

type Params struct {
	fx.In

	DB            *gorm.DB
	Log           *zap.Logger
	GenID         *snowflake.Node
	Config        config.Config
	Repo          analyticsdomain.Repository
	EquipmentRepo equipmentdomain.Repository
	Recorder      TemperatureRecorder
	Clock         clock.Clock
	Metrics       *metrics.Metrics `optional:"true"`
	Random        Random           `optional:"true"`
}

type Generator struct {
	db            *gorm.DB
	log           *zap.Logger
	genID         *snowflake.Node
	repo          analyticsdomain.Repository
	equipmentRepo equipmentdomain.Repository
	recorder      TemperatureRecorder
	clock         clock.Clock
	metrics       *metrics.Metrics
	random        Random
	days          int
}

func New(p Params) *Generator {
	days := p.Config.Generator.Days
	if days <= 0 {
		days = DefaultDays
	}
	random := p.Random
	if random == nil {
		random = NewRandom(uint64(p.Clock.Now().UnixNano()))
	}
	return &Generator{
		db:            p.DB,
		log:           p.Log.Named("analytics.generator"),
		genID:         p.GenID,
		repo:          p.Repo,
		equipmentRepo: p.EquipmentRepo,
		recorder:      p.Recorder,
		clock:         p.Clock,
		metrics:       p.Metrics,
		random:        random,
		days:          days,
	}
}

// GenerateInitialDataForEquipment is a no-op when the equipment already has
// a temperature reading or does not exist in the caller's organization.
func (g *Generator) GenerateInitialDataForEquipment(ctx context.Context, equipmentID snowflake.ID) error {
	log := g.log.With(zap.String("equipment_id", equipmentID.String()))

	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return equipmentdomain.ErrInvalidOrganization
	}

	exists, err := g.repo.HasTemperatureReadings(ctx, g.db, equipmentID)
	if err != nil {
		g.metrics.RecordGeneratorRun(ctx, outcomeFailed)
		log.Error("check existing temperature readings", zap.Error(err))
		return err
	}
	if exists {
		g.metrics.RecordGeneratorRun(ctx, outcomeSkipped)
		log.Debug("temperature history already present")
		return nil
	}

	equipment, err := g.equipmentRepo.FindByID(ctx, g.db, orgID, equipmentID)
	if err != nil {
		g.metrics.RecordGeneratorRun(ctx, outcomeFailed)
		log.Error("load equipment", zap.Error(err))
		return err
	}
	if equipment == nil {
		g.metrics.RecordGeneratorRun(ctx, outcomeSkipped)
		log.Info("equipment not found, skipping data generation")
		return nil
	}

	start := g.clock.Now().Add(-time.Duration(g.days) * 24 * time.Hour)

	temperatures, err := g.generateTemperatureHistory(ctx, equipment, start)
	if err != nil {
		g.metrics.RecordGeneratorRun(ctx, outcomeFailed)
		log.Error("generate temperature history", zap.Int("written", temperatures), zap.Error(err))
		return err
	}

	energy, err := g.generateEnergyHistory(ctx, equipment, start)
	if err != nil {
		g.metrics.RecordGeneratorRun(ctx, outcomeFailed)
		log.Error("generate energy history", zap.Int("written", energy), zap.Error(err))
		return err
	}

	averages, err := g.generateDailyAverages(ctx, equipment, start, g.days)
	if err != nil {
		g.metrics.RecordGeneratorRun(ctx, outcomeFailed)
		log.Error("generate daily averages", zap.Int("written", averages), zap.Error(err))
		return err
	}

	g.metrics.RecordGeneratorRun(ctx, outcomeGenerated)
	log.Info("generated initial telemetry",
		zap.Int("temperature_readings", temperatures),
		zap.Int("energy_readings", energy),
		zap.Int("daily_averages", averages),
		zap.Int("days", g.days),
	)
	return nil
}

// GenerateDailyAverages derives averages for days calendar days starting at
// the UTC date of from. It returns the number of rows created.
func (g *Generator) GenerateDailyAverages(ctx context.Context, equipmentID snowflake.ID, from time.Time, days int) (int, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return 0, equipmentdomain.ErrInvalidOrganization
	}

	equipment, err := g.equipmentRepo.FindByID(ctx, g.db, orgID, equipmentID)
	if err != nil {
		return 0, err
	}
	if equipment == nil {
		return 0, nil
	}

	return g.generateDailyAverages(ctx, equipment, from, days)
}
