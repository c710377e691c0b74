package scheduler

import (
	"github.com/smallbiznis/worksuite/internal/config"
	"go.uber.org/fx"
)

// NewConfig derives the scheduler config from application config.
func NewConfig(appCfg config.Config) Config {
	return Config{
		RunInterval: appCfg.SweepInterval,
		BatchSize:   appCfg.SweepBatch,
	}.withDefaults()
}

var Module = fx.Module("scheduler",
	fx.Provide(NewConfig),
	fx.Provide(New),
)
