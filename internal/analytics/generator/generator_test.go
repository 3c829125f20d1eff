package generator

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	analyticsdomain "github.com/smallbiznis/polarops/internal/analytics/domain"
	analyticsrepository "github.com/smallbiznis/polarops/internal/analytics/repository"
	analyticsservice "github.com/smallbiznis/polarops/internal/analytics/service"
	"github.com/smallbiznis/polarops/internal/clock"
	"github.com/smallbiznis/polarops/internal/config"
	equipmentdomain "github.com/smallbiznis/polarops/internal/equipment/domain"
	equipmentrepository "github.com/smallbiznis/polarops/internal/equipment/repository"
	"github.com/smallbiznis/polarops/internal/migration"
	"github.com/smallbiznis/polarops/internal/orgcontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const testOrgID = snowflake.ID(777)

var testNow = time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)

// fixedRandom never spikes and yields zero noise.
type fixedRandom struct{}

func (fixedRandom) Float64() float64 { return 0.5 }
func (fixedRandom) IntN(n int) int   { return n - 1 }

type fixture struct {
	db        *gorm.DB
	generator *Generator
	repo      analyticsdomain.Repository
	equipment *equipmentdomain.Equipment
}

func setup(t *testing.T, name string, random Random) fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, migration.AutoMigrate(db))

	node, err := snowflake.NewNode(2)
	require.NoError(t, err)
	clk := clock.NewFakeClock(testNow)

	repo := analyticsrepository.Provide()
	equipmentRepo := equipmentrepository.Provide()
	recorder := analyticsservice.NewRecorder(analyticsservice.RecorderParams{
		DB:            db,
		Log:           zap.NewNop(),
		GenID:         node,
		Repo:          repo,
		EquipmentRepo: equipmentRepo,
		Clock:         clk,
	})

	gen := New(Params{
		DB:            db,
		Log:           zap.NewNop(),
		GenID:         node,
		Config:        config.Config{Generator: config.GeneratorConfig{Days: 7}},
		Repo:          repo,
		EquipmentRepo: equipmentRepo,
		Recorder:      recorder,
		Clock:         clk,
		Random:        random,
	})

	equipment, err := equipmentdomain.NewEquipment(node.Generate(), testOrgID, "7b0e3c4e-1d7a-4b8e-9a51-2f1f1f1f1f1f", equipmentdomain.Details{
		Name:                  "Display freezer",
		Type:                  equipmentdomain.TypeFreezer,
		SerialNumber:          "FZ-1",
		Code:                  "FZ-1",
		OptimalTemperatureMin: -22,
		OptimalTemperatureMax: -16,
	}, testNow.Add(-30*24*time.Hour))
	require.NoError(t, err)
	require.NoError(t, equipmentRepo.Insert(context.Background(), db, equipment))

	return fixture{db: db, generator: gen, repo: repo, equipment: equipment}
}

func orgCtx() context.Context {
	return orgcontext.WithOrgID(context.Background(), testOrgID)
}

func count(t *testing.T, db *gorm.DB, table string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Table(table).Count(&n).Error)
	return n
}

func TestGenerateInitialDataProducesFullHistory(t *testing.T) {
	f := setup(t, "generator_full_history", NewRandom(42))

	require.NoError(t, f.generator.GenerateInitialDataForEquipment(orgCtx(), f.equipment.ID))

	assert.Equal(t, int64(7*24), count(t, f.db, "temperature_readings"))
	assert.Equal(t, int64(7*4), count(t, f.db, "energy_readings"))
	assert.Equal(t, int64(7), count(t, f.db, "daily_temperature_averages"))

	readings, err := f.repo.ListTemperatureReadings(context.Background(), f.db, f.equipment.ID, testNow.Add(-8*24*time.Hour), testNow)
	require.NoError(t, err)
	require.Len(t, readings, 168)
	assert.Equal(t, testNow.Add(-7*24*time.Hour), readings[0].RecordedAt.UTC())
	assert.Equal(t, testNow.Add(-time.Hour), readings[len(readings)-1].RecordedAt.UTC())
	for _, r := range readings {
		assert.Equal(t, analyticsdomain.SourceGenerator, r.Source)
		assert.GreaterOrEqual(t, r.Temperature, -25.0)
		assert.LessOrEqual(t, r.Temperature, -13.0)
	}

	averages, err := f.repo.ListDailyAverages(context.Background(), f.db, f.equipment.ID, testNow.AddDate(0, 0, -10), testNow)
	require.NoError(t, err)
	require.Len(t, averages, 7)
	assert.Equal(t, time.Date(2026, 10, 7, 0, 0, 0, 0, time.UTC), averages[0].Date.UTC())
	assert.Equal(t, 12, averages[0].ReadingCount)
	assert.Equal(t, 24, averages[1].ReadingCount)
	for _, avg := range averages {
		assert.LessOrEqual(t, avg.MinTemperature, avg.AverageTemperature)
		assert.GreaterOrEqual(t, avg.MaxTemperature, avg.AverageTemperature)
	}
}

func TestGenerateInitialDataIsIdempotent(t *testing.T) {
	f := setup(t, "generator_idempotent", NewRandom(7))

	require.NoError(t, f.generator.GenerateInitialDataForEquipment(orgCtx(), f.equipment.ID))
	require.NoError(t, f.generator.GenerateInitialDataForEquipment(orgCtx(), f.equipment.ID))

	assert.Equal(t, int64(168), count(t, f.db, "temperature_readings"))
	assert.Equal(t, int64(28), count(t, f.db, "energy_readings"))
	assert.Equal(t, int64(7), count(t, f.db, "daily_temperature_averages"))
}

func TestGenerateInitialDataSkipsUnknownEquipment(t *testing.T) {
	f := setup(t, "generator_unknown", NewRandom(1))

	require.NoError(t, f.generator.GenerateInitialDataForEquipment(orgCtx(), f.equipment.ID+1))
	assert.Zero(t, count(t, f.db, "temperature_readings"))

	// Equipment of another organization is treated as unknown.
	other := orgcontext.WithOrgID(context.Background(), testOrgID+1)
	require.NoError(t, f.generator.GenerateInitialDataForEquipment(other, f.equipment.ID))
	assert.Zero(t, count(t, f.db, "temperature_readings"))
}

func TestGenerateInitialDataRequiresOrganization(t *testing.T) {
	f := setup(t, "generator_no_org", NewRandom(1))

	err := f.generator.GenerateInitialDataForEquipment(context.Background(), f.equipment.ID)
	assert.ErrorIs(t, err, equipmentdomain.ErrInvalidOrganization)
}

func TestConcurrentDailyAveragesDoNotDuplicate(t *testing.T) {
	f := setup(t, "generator_concurrent_averages", NewRandom(3))
	require.NoError(t, f.generator.GenerateInitialDataForEquipment(orgCtx(), f.equipment.ID))
	require.NoError(t, f.db.Exec(`DELETE FROM daily_temperature_averages`).Error)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.generator.GenerateDailyAverages(orgCtx(), f.equipment.ID, testNow.AddDate(0, 0, -7), 7)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(7), count(t, f.db, "daily_temperature_averages"))
}

func TestGenerateDailyAveragesSkipsEmptyDays(t *testing.T) {
	f := setup(t, "generator_empty_days", NewRandom(3))

	created, err := f.generator.GenerateDailyAverages(orgCtx(), f.equipment.ID, testNow.AddDate(0, 0, -3), 3)
	require.NoError(t, err)
	assert.Zero(t, created)
	assert.Zero(t, count(t, f.db, "daily_temperature_averages"))
}

func TestTemperatureAtStaysWithinClampBand(t *testing.T) {
	random := NewRandom(99)
	for i := 0; i < 5000; i++ {
		v := temperatureAt(random, 0, 10, i%24)
		assert.GreaterOrEqual(t, v, -5.0)
		assert.LessOrEqual(t, v, 15.0)
	}
}

func TestTemperatureAtFollowsDiurnalCurve(t *testing.T) {
	// Zero noise: 06:00 sits on the midpoint and 12:00 on the daily peak.
	assert.InDelta(t, 5.0, temperatureAt(fixedRandom{}, 0, 10, 6), 1e-9)
	assert.InDelta(t, 6.0, temperatureAt(fixedRandom{}, 0, 10, 12), 1e-9)
	assert.InDelta(t, 4.0, temperatureAt(fixedRandom{}, 0, 10, 0), 1e-9)
}

func TestTemperatureAtClampsToRecorderBounds(t *testing.T) {
	v := temperatureAt(fixedRandom{}, 95, 140, 12)
	assert.LessOrEqual(t, v, analyticsdomain.MaxTemperature)
}

func TestConsumptionAtMultipliers(t *testing.T) {
	assert.InDelta(t, 216.0, consumptionAt(fixedRandom{}, 180, 12, time.Wednesday), 1e-9)
	assert.InDelta(t, 180.0, consumptionAt(fixedRandom{}, 180, 0, time.Wednesday), 1e-9)
	assert.InDelta(t, 153.0, consumptionAt(fixedRandom{}, 180, 0, time.Saturday), 1e-9)
	assert.InDelta(t, 183.6, consumptionAt(fixedRandom{}, 180, 18, time.Sunday), 1e-9)
}

func TestEnergyWeekendFactorFollowsDayStart(t *testing.T) {
	f := setup(t, "generator_energy_day_start", fixedRandom{})
	friday := time.Date(2026, 10, 9, 12, 0, 0, 0, time.UTC)
	f.generator.days = 2

	written, err := f.generator.generateEnergyHistory(context.Background(), f.equipment, friday)
	require.NoError(t, err)
	require.Equal(t, 8, written)

	readings, err := f.repo.ListEnergyReadings(context.Background(), f.db, f.equipment.ID, friday.Add(-time.Hour), friday.Add(48*time.Hour))
	require.NoError(t, err)
	require.Len(t, readings, 8)

	byTime := map[int64]float64{}
	for _, r := range readings {
		byTime[r.RecordedAt.Unix()] = r.Consumption
	}
	// Friday 12:00 + 18h lands on Saturday but still belongs to Friday.
	assert.InDelta(t, 216.0, byTime[friday.Add(18*time.Hour).Unix()], 1e-9)
	// Saturday 12:00 + 18h lands on Sunday and carries the weekend factor.
	assert.InDelta(t, 183.6, byTime[friday.Add(42*time.Hour).Unix()], 1e-9)
	assert.InDelta(t, 153.0, byTime[friday.Add(24*time.Hour).Unix()], 1e-9)
}

func TestBaseConsumption(t *testing.T) {
	assert.Equal(t, 180.0, BaseConsumption(&equipmentdomain.Equipment{Type: equipmentdomain.TypeFreezer}))
	assert.Equal(t, 800.0, BaseConsumption(&equipmentdomain.Equipment{Type: equipmentdomain.TypeAirConditioner}))
	assert.Equal(t, 200.0, BaseConsumption(&equipmentdomain.Equipment{Type: equipmentdomain.TypeOther}))
	assert.Equal(t, 75.0, BaseConsumption(&equipmentdomain.Equipment{Type: equipmentdomain.TypeFreezer, EnergyConsumptionAverage: 75}))
}

func TestGeneratedEnergyForFreezer(t *testing.T) {
	f := setup(t, "generator_energy_values", fixedRandom{})
	require.NoError(t, f.generator.GenerateInitialDataForEquipment(orgCtx(), f.equipment.ID))

	readings, err := f.repo.ListEnergyReadings(context.Background(), f.db, f.equipment.ID, testNow.AddDate(0, 0, -8), testNow)
	require.NoError(t, err)
	require.Len(t, readings, 28)
	for _, r := range readings {
		assert.Equal(t, equipmentdomain.DefaultEnergyUnit, r.Unit)
		assert.Contains(t, []float64{180, 216, 153, 183.6}, roundTo(r.Consumption, 1))
	}
}

func roundTo(v float64, places int) float64 {
	scale := 1.0
	for i := 0; i < places; i++ {
		scale *= 10
	}
	return float64(int64(v*scale+0.5)) / scale
}
