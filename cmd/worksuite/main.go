package main

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/worksuite/internal/clock"
	"github.com/smallbiznis/worksuite/internal/config"
	"github.com/smallbiznis/worksuite/internal/logger"
	"github.com/smallbiznis/worksuite/internal/migration"
	"github.com/smallbiznis/worksuite/internal/scheduler"
	"github.com/smallbiznis/worksuite/internal/server"
	"github.com/smallbiznis/worksuite/pkg/db"
	"go.uber.org/fx"
)

// Single binary running the HTTP API and the in-process sweep scheduler.
func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		migration.Module,
		clock.Module,

		server.Module,

		fx.Invoke(StartScheduler),
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

func StartScheduler(lc fx.Lifecycle, s *scheduler.Scheduler) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go s.RunForever(context.Background())
			return nil
		},
	})
}
