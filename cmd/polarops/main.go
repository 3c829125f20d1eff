package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/polarops/internal/clock"
	"github.com/smallbiznis/polarops/internal/config"
	"github.com/smallbiznis/polarops/internal/migration"
	"github.com/smallbiznis/polarops/internal/observability"
	"github.com/smallbiznis/polarops/internal/scheduler"
	"github.com/smallbiznis/polarops/internal/server"
	"github.com/smallbiznis/polarops/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core Infrastructure
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,

		// Functional Domains
		server.Module,
		scheduler.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
