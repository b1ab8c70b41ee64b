package main

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"

	"github.com/hydrocore/waterworks/internal/clock"
	"github.com/hydrocore/waterworks/internal/config"
	"github.com/hydrocore/waterworks/internal/migration"
	"github.com/hydrocore/waterworks/internal/observability"
	"github.com/hydrocore/waterworks/internal/server"
	"github.com/hydrocore/waterworks/pkg/db"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(newSnowflakeNode),
		db.Module,
		clock.Module,
		migration.Module,
		server.Module,
	)
	app.Run()
}

func newSnowflakeNode() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
