package commands

import (
	"github.com/hashicorp/go-hclog"

	"github.com/ccollicutt/logaroo/pkg/config"
	"github.com/ccollicutt/logaroo/pkg/telemetry"
)

// StartupEvent is emitted once when run starts watching.
const StartupEvent = "OnStart: logaroo has been activated."

// newSink builds the configured telemetry sinks. Records go to the
// collector when a key is set and to the log when stdout is enabled.
func newSink(cfg *config.Config, logger hclog.Logger) telemetry.Sink {
	var sinks telemetry.Multi

	if cfg.Telemetry.InstrumentationKey != "" {
		sinks = append(sinks, telemetry.NewHTTPSink(cfg.HTTPOptions(logger.Named("telemetry"))))
	}
	if cfg.Telemetry.Stdout || len(sinks) == 0 {
		sinks = append(sinks, telemetry.NewLogSink(logger.Named("records")))
	}

	if len(sinks) == 1 {
		return sinks[0]
	}
	return sinks
}
