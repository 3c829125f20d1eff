package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/robfig/cron/v3"
	analyticsdomain "github.com/smallbiznis/polarops/internal/analytics/domain"
	"github.com/smallbiznis/polarops/internal/clock"
	equipmentdomain "github.com/smallbiznis/polarops/internal/equipment/domain"
	obsmetrics "github.com/smallbiznis/polarops/internal/observability/metrics"
	"github.com/smallbiznis/polarops/internal/orgcontext"
	"github.com/smallbiznis/polarops/internal/ratelimit"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const lockKeyPrefix = "scheduler:lock:"

var (
	ErrInvalidConfig    = errors.New("invalid_scheduler_config")
	ErrRollupIncomplete = errors.New("rollup_incomplete")
)

// Locker is a distributed mutex held for the duration of a job run.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error)
	Release(ctx context.Context, key, token string) error
}

type Params struct {
	fx.In

	DB            *gorm.DB
	Log           *zap.Logger
	GenID         *snowflake.Node
	Clock         clock.Clock
	EquipmentRepo equipmentdomain.Repository
	Generator     analyticsdomain.Generator
	Locker        *ratelimit.Locker `optional:"true"`
	Config        Config            `optional:"true"`
}

type Scheduler struct {
	db            *gorm.DB
	log           *zap.Logger
	cfg           Config
	genID         *snowflake.Node
	clock         clock.Clock
	equipmentRepo equipmentdomain.Repository
	generator     analyticsdomain.Generator
	locker        Locker
	cron          *cron.Cron
}

func New(p Params) (*Scheduler, error) {
	if p.DB == nil || p.Log == nil || p.GenID == nil || p.Clock == nil || p.EquipmentRepo == nil || p.Generator == nil {
		return nil, ErrInvalidConfig
	}
	s := &Scheduler{
		db:            p.DB,
		log:           p.Log.Named("scheduler").With(zap.String("component", "scheduler")),
		cfg:           p.Config.withDefaults(),
		genID:         p.GenID,
		clock:         p.Clock,
		equipmentRepo: p.EquipmentRepo,
		generator:     p.Generator,
	}
	if p.Locker != nil {
		s.locker = p.Locker
	}

	logger := cronLogger{log: s.log.Sugar()}
	s.cron = cron.New(
		cron.WithSeconds(),
		cron.WithLocation(time.UTC),
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)
	if _, err := s.cron.AddFunc(s.cfg.DailyRollupSpec, func() {
		if err := s.RunJob(context.Background(), JobDailyTemperatureRollup); err != nil {
			s.log.Warn("scheduler job failed", zap.String("job", JobDailyTemperatureRollup), zap.Error(err))
		}
	}); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, JobDailyTemperatureRollup, err)
	}
	return s, nil
}

// WithLocker replaces the distributed lock used to serialize job runs.
func (s *Scheduler) WithLocker(locker Locker) *Scheduler {
	s.locker = locker
	return s
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the cron loop and waits for running jobs until ctx expires.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunJob executes one named job immediately.
func (s *Scheduler) RunJob(ctx context.Context, name string) error {
	switch name {
	case JobDailyTemperatureRollup:
		return s.runJob(ctx, name, s.cfg.BatchSize, s.cfg.JobTimeout, s.DailyTemperatureRollupJob)
	default:
		return fmt.Errorf("unknown job %q", name)
	}
}

func (s *Scheduler) runJob(
	parent context.Context,
	name string,
	batchSize int,
	timeout time.Duration,
	fn func(ctx context.Context) error,
) error {
	schedMetrics := obsmetrics.Scheduler()

	token, acquired, err := s.acquireLock(parent, name)
	if err != nil {
		schedMetrics.IncJobError(name, err)
		return fmt.Errorf("%s: lock: %w", name, err)
	}
	if !acquired {
		schedMetrics.IncJobSkipped(name)
		s.log.Info("scheduler job skipped, lock held elsewhere", zap.String("job", name))
		return nil
	}
	defer s.releaseLock(parent, name, token)

	start := s.clock.Now()
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	ctx, run, owner := s.ensureJobRun(ctx, name, batchSize)
	if owner {
		s.logJobStart(ctx, run)
	}
	schedMetrics.IncJobRun(name)

	err = fn(ctx)
	schedMetrics.ObserveJobDuration(name, s.clock.Now().Sub(start))
	schedMetrics.AddItemsProcessed(name, run.processedCount)
	if owner {
		if err != nil && run.errorCount == 0 {
			run.IncError()
		}
		s.logJobFinish(ctx, run)
	}
	if err == nil {
		return nil
	}

	schedMetrics.IncJobError(name, err)
	if errors.Is(err, context.DeadlineExceeded) {
		s.logger(ctx).Warn("job timed out",
			zap.String("job", name),
			zap.Duration("timeout", timeout),
			zap.Error(err),
		)
		return nil
	}
	return fmt.Errorf("%s: %w", name, err)
}

func (s *Scheduler) acquireLock(ctx context.Context, job string) (string, bool, error) {
	if s.locker == nil {
		return "", true, nil
	}
	return s.locker.TryLock(ctx, lockKeyPrefix+job, s.cfg.LockTTL)
}

func (s *Scheduler) releaseLock(ctx context.Context, job, token string) {
	if s.locker == nil || token == "" {
		return
	}
	if err := s.locker.Release(context.WithoutCancel(ctx), lockKeyPrefix+job, token); err != nil {
		s.log.Warn("release scheduler lock", zap.String("job", job), zap.Error(err))
	}
}

// DailyTemperatureRollupJob derives the previous UTC day's average for every
// equipment of every organization. Existing averages are left untouched.
func (s *Scheduler) DailyTemperatureRollupJob(ctx context.Context) error {
	ctx, run, owner := s.ensureJobRun(ctx, JobDailyTemperatureRollup, s.cfg.BatchSize)
	if owner {
		s.logJobStart(ctx, run)
		defer s.logJobFinish(ctx, run)
	}

	now := s.clock.Now().UTC()
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)

	var (
		afterID snowflake.ID
		total   int
		failed  int
	)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		items, err := s.equipmentRepo.ListAll(ctx, s.db, afterID, s.cfg.BatchSize)
		if err != nil {
			return err
		}

		for _, item := range items {
			total++
			created, err := s.generator.GenerateDailyAverages(orgcontext.WithOrgID(ctx, item.OrgID), item.ID, day, 1)
			if err != nil {
				if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
					return err
				}
				failed++
				s.logJobError(ctx, run, "scheduler.rollup.failed", item.OrgID, item.ID, err)
				continue
			}
			run.AddProcessed(created)
		}

		if len(items) < s.cfg.BatchSize {
			break
		}
		afterID = items[len(items)-1].ID
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d equipment", ErrRollupIncomplete, failed, total)
	}
	return nil
}
