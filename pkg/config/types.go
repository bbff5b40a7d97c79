// Package config provides configuration loading and validation for logaroo.
package config

import (
	"regexp"
	"time"

	"github.com/ccollicutt/logaroo/pkg/tailer"
)

// Config is the root configuration structure loaded from YAML.
type Config struct {
	LogLevel  string          `yaml:"log_level"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Watch     WatchConfig     `yaml:"watch"`
	Parse     ParseConfig     `yaml:"parse"`
}

// TelemetryConfig describes where records are shipped.
type TelemetryConfig struct {
	// InstrumentationKey identifies the collector resource. ${VAR} and $VAR
	// are expanded from the environment.
	InstrumentationKey string `yaml:"instrumentation_key"`

	// Endpoint is the collector track URL.
	Endpoint string `yaml:"endpoint,omitempty"`

	Timeout       time.Duration `yaml:"timeout,omitempty"`
	BatchSize     int           `yaml:"batch_size,omitempty"`
	FlushInterval time.Duration `yaml:"flush_interval,omitempty"`
	Compress      bool          `yaml:"compress"`

	// Stdout also writes every record to the process log. With no
	// instrumentation key it is the only sink.
	Stdout bool `yaml:"stdout"`
}

// WatchConfig selects the files to follow.
type WatchConfig struct {
	Folder      string      `yaml:"folder"`
	Filter      string      `yaml:"filter"`
	Mode        tailer.Mode `yaml:"mode"`
	Workers     int         `yaml:"workers,omitempty"`
	InitialScan bool        `yaml:"initial_scan"`
}

// ParseConfig tunes record boundary detection.
type ParseConfig struct {
	// ThreadPattern must match the token at ThreadIndex for a line to start
	// a record.
	ThreadPattern string `yaml:"thread_pattern"`
	ThreadIndex   int    `yaml:"thread_index"`
	SeverityIndex int    `yaml:"severity_index"`

	Flush tailer.FlushPolicy `yaml:"flush"`

	// compiledThreadPattern is populated during validation.
	compiledThreadPattern *regexp.Regexp
}

// CompiledThreadPattern returns the pre-compiled thread pattern.
func (p *ParseConfig) CompiledThreadPattern() *regexp.Regexp {
	return p.compiledThreadPattern
}
