package config

import (
	"github.com/hashicorp/go-hclog"

	"github.com/ccollicutt/logaroo/pkg/record"
	"github.com/ccollicutt/logaroo/pkg/tailer"
	"github.com/ccollicutt/logaroo/pkg/telemetry"
	"github.com/ccollicutt/logaroo/pkg/watcher"
)

// Level returns the configured hclog level, Info when unset or unknown.
func (c *Config) Level() hclog.Level {
	if l := hclog.LevelFromString(c.LogLevel); l != hclog.NoLevel {
		return l
	}
	return hclog.Info
}

// AssemblerOptions returns the record options matching the parse section.
// The config must have been validated.
func (c *Config) AssemblerOptions() []record.AssemblerOption {
	var opts []record.DetectorOption
	if re := c.Parse.CompiledThreadPattern(); re != nil {
		opts = append(opts, record.WithThreadPattern(re))
	}
	opts = append(opts, record.WithTokenIndexes(c.Parse.ThreadIndex, c.Parse.SeverityIndex))
	return []record.AssemblerOption{record.WithDetector(record.NewDetector(opts...))}
}

// ReaderOptions returns the tailer options for this configuration.
func (c *Config) ReaderOptions(logger hclog.Logger) tailer.Options {
	return tailer.Options{
		Mode:             c.Watch.Mode,
		Flush:            c.Parse.Flush,
		AssemblerOptions: c.AssemblerOptions(),
		Logger:           logger,
	}
}

// WatcherOptions returns the directory watcher options.
func (c *Config) WatcherOptions(logger hclog.Logger) watcher.Options {
	return watcher.Options{
		Folder:      c.Watch.Folder,
		Filter:      c.Watch.Filter,
		InitialScan: c.Watch.InitialScan,
		Logger:      logger,
	}
}

// HTTPOptions returns the collector sink options.
func (c *Config) HTTPOptions(logger hclog.Logger) telemetry.HTTPOptions {
	return telemetry.HTTPOptions{
		Endpoint:           c.Telemetry.Endpoint,
		InstrumentationKey: c.Telemetry.InstrumentationKey,
		Timeout:            c.Telemetry.Timeout,
		BatchSize:          c.Telemetry.BatchSize,
		FlushInterval:      c.Telemetry.FlushInterval,
		Compress:           c.Telemetry.Compress,
		Logger:             logger,
	}
}
