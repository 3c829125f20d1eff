package scheduler

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/polarops/internal/clock"
	"github.com/smallbiznis/polarops/internal/config"
	equipmentdomain "github.com/smallbiznis/polarops/internal/equipment/domain"
	equipmentrepository "github.com/smallbiznis/polarops/internal/equipment/repository"
	"github.com/smallbiznis/polarops/internal/migration"
	"github.com/smallbiznis/polarops/internal/orgcontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type generatorMock struct {
	mock.Mock
}

func (m *generatorMock) GenerateInitialDataForEquipment(ctx context.Context, equipmentID snowflake.ID) error {
	return m.Called(ctx, equipmentID).Error(0)
}

func (m *generatorMock) GenerateDailyAverages(ctx context.Context, equipmentID snowflake.ID, from time.Time, days int) (int, error) {
	args := m.Called(ctx, equipmentID, from, days)
	return args.Int(0), args.Error(1)
}

type lockerMock struct {
	mock.Mock
}

func (m *lockerMock) TryLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *lockerMock) Release(ctx context.Context, key, token string) error {
	return m.Called(ctx, key, token).Error(0)
}

var testNow = time.Date(2026, 10, 14, 0, 15, 0, 0, time.UTC)

type fixture struct {
	db        *gorm.DB
	node      *snowflake.Node
	generator *generatorMock
	scheduler *Scheduler
	equipment []*equipmentdomain.Equipment
}

func setup(t *testing.T, name string, orgs []snowflake.ID, cfg Config) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, migration.AutoMigrate(db))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	repo := equipmentrepository.Provide()

	f := &fixture{db: db, node: node, generator: &generatorMock{}}
	for i, orgID := range orgs {
		code := fmt.Sprintf("FR-%d", i)
		item, err := equipmentdomain.NewEquipment(node.Generate(), orgID, fmt.Sprintf("identifier-%d", i), equipmentdomain.Details{
			Name:                  "Freezer " + code,
			Type:                  equipmentdomain.TypeFreezer,
			SerialNumber:          code,
			Code:                  code,
			OptimalTemperatureMin: -22,
			OptimalTemperatureMax: -16,
		}, testNow.Add(-48*time.Hour))
		require.NoError(t, err)
		require.NoError(t, repo.Insert(context.Background(), db, item))
		f.equipment = append(f.equipment, item)
	}

	f.scheduler, err = New(Params{
		DB:            db,
		Log:           zap.NewNop(),
		GenID:         node,
		Clock:         clock.NewFakeClock(testNow),
		EquipmentRepo: repo,
		Generator:     f.generator,
		Config:        cfg,
	})
	require.NoError(t, err)
	return f
}

func orgMatcher(orgID snowflake.ID) interface{} {
	return mock.MatchedBy(func(ctx context.Context) bool {
		got, ok := orgcontext.OrgIDFromContext(ctx)
		return ok && got == orgID
	})
}

var previousDay = time.Date(2026, 10, 13, 0, 0, 0, 0, time.UTC)

func TestDailyRollupCoversEveryOrganization(t *testing.T) {
	// batch size 2 forces a second page
	f := setup(t, "sched_rollup", []snowflake.ID{11, 12, 11}, Config{BatchSize: 2})
	for _, item := range f.equipment {
		f.generator.On("GenerateDailyAverages", orgMatcher(item.OrgID), item.ID, previousDay, 1).Return(1, nil).Once()
	}

	require.NoError(t, f.scheduler.RunJob(context.Background(), JobDailyTemperatureRollup))
	f.generator.AssertExpectations(t)
}

func TestDailyRollupContinuesAfterFailure(t *testing.T) {
	f := setup(t, "sched_rollup_fail", []snowflake.ID{21, 22}, Config{})
	f.generator.On("GenerateDailyAverages", mock.Anything, f.equipment[0].ID, previousDay, 1).Return(0, errors.New("boom")).Once()
	f.generator.On("GenerateDailyAverages", mock.Anything, f.equipment[1].ID, previousDay, 1).Return(1, nil).Once()

	err := f.scheduler.DailyTemperatureRollupJob(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRollupIncomplete)
	f.generator.AssertExpectations(t)

	err = f.scheduler.RunJob(context.Background(), "unknown")
	assert.Error(t, err)
}

func TestDailyRollupWithoutEquipment(t *testing.T) {
	f := setup(t, "sched_rollup_empty", nil, Config{})
	require.NoError(t, f.scheduler.RunJob(context.Background(), JobDailyTemperatureRollup))
	f.generator.AssertNotCalled(t, "GenerateDailyAverages", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRunJobSkipsWhenLockHeld(t *testing.T) {
	f := setup(t, "sched_lock_held", []snowflake.ID{31}, Config{LockTTL: time.Minute})
	locker := &lockerMock{}
	locker.On("TryLock", mock.Anything, "scheduler:lock:daily_temperature_rollup", time.Minute).Return("", false, nil).Once()
	f.scheduler.WithLocker(locker)

	require.NoError(t, f.scheduler.RunJob(context.Background(), JobDailyTemperatureRollup))
	locker.AssertExpectations(t)
	locker.AssertNotCalled(t, "Release", mock.Anything, mock.Anything, mock.Anything)
	f.generator.AssertNotCalled(t, "GenerateDailyAverages", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRunJobReleasesLock(t *testing.T) {
	f := setup(t, "sched_lock_release", []snowflake.ID{41}, Config{LockTTL: time.Minute})
	locker := &lockerMock{}
	locker.On("TryLock", mock.Anything, "scheduler:lock:daily_temperature_rollup", time.Minute).Return("token-1", true, nil).Once()
	locker.On("Release", mock.Anything, "scheduler:lock:daily_temperature_rollup", "token-1").Return(nil).Once()
	f.scheduler.WithLocker(locker)
	f.generator.On("GenerateDailyAverages", mock.Anything, f.equipment[0].ID, previousDay, 1).Return(0, nil).Once()

	require.NoError(t, f.scheduler.RunJob(context.Background(), JobDailyTemperatureRollup))
	locker.AssertExpectations(t)
	f.generator.AssertExpectations(t)
}

func TestRunJobLockError(t *testing.T) {
	f := setup(t, "sched_lock_error", nil, Config{})
	locker := &lockerMock{}
	locker.On("TryLock", mock.Anything, mock.Anything, mock.Anything).Return("", false, errors.New("redis down")).Once()
	f.scheduler.WithLocker(locker)

	assert.Error(t, f.scheduler.RunJob(context.Background(), JobDailyTemperatureRollup))
}

func TestNewRejectsInvalidSpec(t *testing.T) {
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	_, err = New(Params{
		DB:            &gorm.DB{},
		Log:           zap.NewNop(),
		GenID:         node,
		Clock:         clock.NewFakeClock(testNow),
		EquipmentRepo: equipmentrepository.Provide(),
		Generator:     &generatorMock{},
		Config:        Config{DailyRollupSpec: "not a cron spec"},
	})
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = New(Params{})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestProvideConfig(t *testing.T) {
	cfg := ProvideConfig(config.Config{Scheduler: config.SchedulerConfig{Enabled: true, LockTTLSeconds: 30}})
	assert.True(t, cfg.Enabled)
	assert.Equal(t, "0 15 0 * * *", cfg.DailyRollupSpec)
	assert.Equal(t, 30*time.Second, cfg.LockTTL)
	assert.Equal(t, 100, cfg.BatchSize)
	assert.Equal(t, 30*time.Minute, cfg.JobTimeout)
}
