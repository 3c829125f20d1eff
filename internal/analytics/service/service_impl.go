package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/polarops/internal/analytics/domain"
	"github.com/smallbiznis/polarops/internal/clock"
	equipmentdomain "github.com/smallbiznis/polarops/internal/equipment/domain"
	"github.com/smallbiznis/polarops/internal/orgcontext"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB            *gorm.DB
	Log           *zap.Logger
	Repo          domain.Repository
	EquipmentRepo equipmentdomain.Repository
	Clock         clock.Clock
	Recorder      domain.Recorder
	Generator     domain.Generator `optional:"true"`
}

type Service struct {
	db            *gorm.DB
	log           *zap.Logger
	repo          domain.Repository
	equipmentRepo equipmentdomain.Repository
	clock         clock.Clock
	recorder      domain.Recorder
	generator     domain.Generator
}

func New(p Params) domain.Service {
	return &Service{
		db:            p.DB,
		log:           p.Log.Named("analytics.service"),
		repo:          p.Repo,
		equipmentRepo: p.EquipmentRepo,
		clock:         p.Clock,
		recorder:      p.Recorder,
		generator:     p.Generator,
	}
}

func (s *Service) RecordTemperatureReading(ctx context.Context, req domain.RecordTemperatureRequest) (domain.TemperatureReading, error) {
	return s.recorder.RecordTemperatureReading(ctx, req)
}

func (s *Service) RecordEnergyReading(ctx context.Context, req domain.RecordEnergyRequest) (domain.EnergyReading, error) {
	return s.recorder.RecordEnergyReading(ctx, req)
}

func (s *Service) ListTemperatureReadings(ctx context.Context, req domain.ListReadingsRequest) ([]domain.TemperatureReading, error) {
	hours, err := normalizeWindow(req.Hours, domain.DefaultReadingHours, domain.MaxReadingHours, domain.ErrInvalidHours)
	if err != nil {
		return nil, err
	}

	equipment, err := s.prepare(ctx, req.EquipmentID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	items, err := s.repo.ListTemperatureReadings(ctx, s.db, equipment.ID, now.Add(-time.Duration(hours)*time.Hour), now.Add(domain.MaxFutureSkew))
	if err != nil {
		return nil, err
	}
	return deref(items), nil
}

func (s *Service) ListEnergyReadings(ctx context.Context, req domain.ListReadingsRequest) ([]domain.EnergyReading, error) {
	hours, err := normalizeWindow(req.Hours, domain.DefaultReadingHours, domain.MaxReadingHours, domain.ErrInvalidHours)
	if err != nil {
		return nil, err
	}

	equipment, err := s.prepare(ctx, req.EquipmentID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	items, err := s.repo.ListEnergyReadings(ctx, s.db, equipment.ID, now.Add(-time.Duration(hours)*time.Hour), now.Add(domain.MaxFutureSkew))
	if err != nil {
		return nil, err
	}
	return deref(items), nil
}

// ListDailyAverages returns the averages dated from days calendar days ago
// through today.
func (s *Service) ListDailyAverages(ctx context.Context, req domain.ListDailyAveragesRequest) ([]domain.DailyTemperatureAverage, error) {
	days, err := normalizeWindow(req.Days, domain.DefaultAverageDays, domain.MaxAverageDays, domain.ErrInvalidDays)
	if err != nil {
		return nil, err
	}

	equipment, err := s.prepare(ctx, req.EquipmentID)
	if err != nil {
		return nil, err
	}

	tomorrow := s.clock.Now().Truncate(24 * time.Hour).Add(24 * time.Hour)
	items, err := s.repo.ListDailyAverages(ctx, s.db, equipment.ID, tomorrow.AddDate(0, 0, -(days+1)), tomorrow)
	if err != nil {
		return nil, err
	}
	return deref(items), nil
}

// prepare resolves the equipment and seeds history on first access when the
// equipment has never reported a temperature.
func (s *Service) prepare(ctx context.Context, rawID string) (*equipmentdomain.Equipment, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}

	equipmentID, err := parseEquipmentID(rawID)
	if err != nil {
		return nil, err
	}

	equipment, err := s.equipmentRepo.FindByID(ctx, s.db, orgID, equipmentID)
	if err != nil {
		return nil, err
	}
	if equipment == nil {
		return nil, domain.ErrEquipmentNotFound
	}

	s.ensureHistory(ctx, equipment.ID)
	return equipment, nil
}

func (s *Service) ensureHistory(ctx context.Context, equipmentID snowflake.ID) {
	if s.generator == nil {
		return
	}
	exists, err := s.repo.HasTemperatureReadings(ctx, s.db, equipmentID)
	if err != nil {
		s.log.Debug("temperature presence check failed", zap.String("equipment_id", equipmentID.String()), zap.Error(err))
		return
	}
	if exists {
		return
	}
	if err := s.generator.GenerateInitialDataForEquipment(ctx, equipmentID); err != nil {
		s.log.Warn("first access data generation failed",
			zap.String("equipment_id", equipmentID.String()),
			zap.Error(err),
		)
	}
}

func normalizeWindow(value, fallback, limit int, invalid error) (int, error) {
	switch {
	case value < 0:
		return 0, invalid
	case value == 0:
		return fallback, nil
	case value > limit:
		return limit, nil
	default:
		return value, nil
	}
}

func deref[T any](items []*T) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		out = append(out, *item)
	}
	return out
}
