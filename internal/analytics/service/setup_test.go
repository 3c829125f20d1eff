package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/polarops/internal/analytics/domain"
	"github.com/smallbiznis/polarops/internal/analytics/livefeed"
	"github.com/smallbiznis/polarops/internal/analytics/repository"
	"github.com/smallbiznis/polarops/internal/clock"
	equipmentdomain "github.com/smallbiznis/polarops/internal/equipment/domain"
	equipmentrepository "github.com/smallbiznis/polarops/internal/equipment/repository"
	"github.com/smallbiznis/polarops/internal/migration"
	"github.com/smallbiznis/polarops/internal/orgcontext"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const testOrgID = snowflake.ID(9001)

var testNow = time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)

type fixture struct {
	db            *gorm.DB
	node          *snowflake.Node
	clock         *clock.FakeClock
	hub           *livefeed.Hub
	repo          domain.Repository
	equipmentRepo equipmentdomain.Repository
	recorder      *Recorder
	equipment     *equipmentdomain.Equipment
}

func setup(t *testing.T, name string) fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, migration.AutoMigrate(db))

	node, err := snowflake.NewNode(3)
	require.NoError(t, err)

	f := fixture{
		db:            db,
		node:          node,
		clock:         clock.NewFakeClock(testNow),
		hub:           livefeed.NewHub(),
		repo:          repository.Provide(),
		equipmentRepo: equipmentrepository.Provide(),
	}
	f.recorder = NewRecorder(RecorderParams{
		DB:            db,
		Log:           zap.NewNop(),
		GenID:         node,
		Repo:          f.repo,
		EquipmentRepo: f.equipmentRepo,
		Clock:         f.clock,
		Hub:           f.hub,
	})

	equipment, err := equipmentdomain.NewEquipment(node.Generate(), testOrgID, "1d5c1a44-8d0c-4b8f-8f38-4b2a9b1b2c3d", equipmentdomain.Details{
		Name:                  "Produce cooler",
		Type:                  equipmentdomain.TypeCooler,
		SerialNumber:          "CL-1",
		Code:                  "CL-1",
		OptimalTemperatureMin: 2,
		OptimalTemperatureMax: 8,
		EnergyConsumptionUnit: "kWh",
	}, testNow.Add(-time.Hour))
	require.NoError(t, err)
	require.NoError(t, f.equipmentRepo.Insert(context.Background(), db, equipment))
	f.equipment = equipment

	return f
}

func orgCtx() context.Context {
	return orgcontext.WithOrgID(context.Background(), testOrgID)
}

func float(v float64) *float64 { return &v }

func at(t time.Time) *time.Time { return &t }
