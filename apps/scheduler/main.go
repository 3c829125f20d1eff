package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/polarops/internal/analytics"
	"github.com/smallbiznis/polarops/internal/clock"
	"github.com/smallbiznis/polarops/internal/config"
	"github.com/smallbiznis/polarops/internal/equipment"
	"github.com/smallbiznis/polarops/internal/observability"
	"github.com/smallbiznis/polarops/internal/ratelimit"
	"github.com/smallbiznis/polarops/internal/scheduler"
	"github.com/smallbiznis/polarops/pkg/db"
	"go.uber.org/fx"
)

// schedulerNode keeps generated reading ids disjoint from the API process.
const schedulerNode = 2

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,

		// Domain services required by scheduler
		equipment.Module,
		analytics.Module,
		ratelimit.Module,

		// No server module!
		scheduler.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(schedulerNode)
	if err != nil {
		panic(err)
	}
	return node
}
