package metrics

import "go.uber.org/fx"

// Module provides the singleton metrics registry.
var Module = fx.Module("observability.metrics",
	fx.Provide(Default),
)
