package config

import (
	"os"

	"github.com/ccollicutt/logaroo/pkg/record"
	"github.com/ccollicutt/logaroo/pkg/tailer"
	"github.com/ccollicutt/logaroo/pkg/telemetry"
)

// Default values for configuration.
const (
	DefaultLogLevel = "info"
	DefaultFilter   = "*.log"
)

// Environment variable names.
const (
	EnvInstrumentationKey = "LOGAROO_INSTRUMENTATION_KEY"
	EnvWatchFolder        = "LOGAROO_WATCH_FOLDER"
	EnvWatchFilter        = "LOGAROO_WATCH_FILTER"
	EnvLogLevel           = "LOGAROO_LOG_LEVEL"
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		LogLevel: DefaultLogLevel,
		Telemetry: TelemetryConfig{
			Endpoint:      telemetry.DefaultEndpoint,
			Timeout:       telemetry.DefaultTimeout,
			BatchSize:     telemetry.DefaultBatchSize,
			FlushInterval: telemetry.DefaultFlushInterval,
			Compress:      true,
		},
		Watch: WatchConfig{
			Filter:  DefaultFilter,
			Mode:    tailer.ModeTail,
			Workers: tailer.DefaultWorkers,
		},
		Parse: ParseConfig{
			ThreadPattern: record.DefaultThreadPattern,
			ThreadIndex:   record.DefaultThreadIndex,
			SeverityIndex: record.DefaultSeverityIndex,
			Flush:         tailer.FlushEndOfRead,
		},
	}
}

// applyEnvironmentOverrides applies environment variable overrides to the config.
func (c *Config) applyEnvironmentOverrides() {
	if key := os.Getenv(EnvInstrumentationKey); key != "" {
		c.Telemetry.InstrumentationKey = key
	}
	if folder := os.Getenv(EnvWatchFolder); folder != "" {
		c.Watch.Folder = folder
	}
	if filter := os.Getenv(EnvWatchFilter); filter != "" {
		c.Watch.Filter = filter
	}
	if level := os.Getenv(EnvLogLevel); level != "" {
		c.LogLevel = level
	}
}
