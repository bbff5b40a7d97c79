package config

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"

	"github.com/ccollicutt/logaroo/pkg/tailer"
)

// Load reads and validates a configuration file.
func Load(ctx context.Context, path string) (*Config, error) {
	cfg, err := Read(ctx, path)
	if err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Read parses a configuration file over the defaults and applies
// environment overrides without validating it.
func Read(_ context.Context, path string) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user-provided config path is expected
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyEnvironmentOverrides()
	return cfg, nil
}

// Validate checks a configuration for errors, fills remaining defaults and
// compiles the thread pattern. Every problem found is reported.
func Validate(cfg *Config) error {
	var result *multierror.Error

	if hclog.LevelFromString(cfg.LogLevel) == hclog.NoLevel {
		result = multierror.Append(result, fmt.Errorf("log_level: unknown level %q", cfg.LogLevel))
	}

	if err := validateTelemetry(&cfg.Telemetry); err != nil {
		result = multierror.Append(result, prefixed("telemetry", err)...)
	}
	if err := validateWatch(&cfg.Watch); err != nil {
		result = multierror.Append(result, prefixed("watch", err)...)
	}
	if err := validateParse(&cfg.Parse); err != nil {
		result = multierror.Append(result, prefixed("parse", err)...)
	}

	return result.ErrorOrNil()
}

// ValidateSources checks only what is needed to parse files locally. The
// inspect command uses it; no telemetry or watch settings are required.
func ValidateSources(cfg *Config) error {
	if err := validateParse(&cfg.Parse); err != nil {
		return multierror.Append(nil, prefixed("parse", err)...).ErrorOrNil()
	}
	return nil
}

func prefixed(section string, err error) []error {
	var merr *multierror.Error
	if !errors.As(err, &merr) {
		return []error{fmt.Errorf("%s: %w", section, err)}
	}
	out := make([]error, 0, len(merr.Errors))
	for _, e := range merr.Errors {
		out = append(out, fmt.Errorf("%s.%w", section, e))
	}
	return out
}

func validateTelemetry(tc *TelemetryConfig) error {
	var result *multierror.Error

	tc.InstrumentationKey = expandEnvVar(tc.InstrumentationKey)
	if tc.InstrumentationKey == "" && !tc.Stdout {
		result = multierror.Append(result, errors.New("instrumentation_key: required unless stdout is enabled"))
	}

	if tc.InstrumentationKey != "" {
		if err := validateEndpoint(tc.Endpoint); err != nil {
			result = multierror.Append(result, fmt.Errorf("endpoint: %w", err))
		}
	}

	if tc.Timeout < 0 {
		result = multierror.Append(result, errors.New("timeout: must not be negative"))
	}
	if tc.BatchSize < 0 {
		result = multierror.Append(result, errors.New("batch_size: must not be negative"))
	}
	if tc.FlushInterval < 0 {
		result = multierror.Append(result, errors.New("flush_interval: must not be negative"))
	}

	return result.ErrorOrNil()
}

func validateEndpoint(endpoint string) error {
	if endpoint == "" {
		return errors.New("required")
	}

	u, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("url scheme must be http or https, got %q", u.Scheme)
	}

	if u.Host == "" {
		return errors.New("url must have a host")
	}

	return nil
}

func validateWatch(wc *WatchConfig) error {
	var result *multierror.Error

	if wc.Folder == "" {
		result = multierror.Append(result, errors.New("folder: required"))
	}

	if _, err := filepath.Match(wc.Filter, "probe"); err != nil {
		result = multierror.Append(result, fmt.Errorf("filter: invalid pattern %q: %w", wc.Filter, err))
	}

	switch wc.Mode {
	case tailer.ModeTail, tailer.ModeBulk:
	case "":
		wc.Mode = tailer.ModeTail
	default:
		result = multierror.Append(result, fmt.Errorf("mode: invalid mode %q (must be tail or bulk)", wc.Mode))
	}

	if wc.Workers < 0 {
		result = multierror.Append(result, errors.New("workers: must not be negative"))
	} else if wc.Workers == 0 {
		wc.Workers = tailer.DefaultWorkers
	}

	return result.ErrorOrNil()
}

func validateParse(pc *ParseConfig) error {
	var result *multierror.Error

	if pc.ThreadPattern == "" {
		result = multierror.Append(result, errors.New("thread_pattern: required"))
	} else {
		re, err := regexp.Compile(pc.ThreadPattern)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("thread_pattern: %w", err))
		}
		pc.compiledThreadPattern = re
	}

	if pc.ThreadIndex < 0 {
		result = multierror.Append(result, errors.New("thread_index: must not be negative"))
	}
	if pc.SeverityIndex < 0 {
		result = multierror.Append(result, errors.New("severity_index: must not be negative"))
	}

	if err := ValidateFlush(pc.Flush); err != nil {
		result = multierror.Append(result, fmt.Errorf("flush: %w", err))
	}

	return result.ErrorOrNil()
}

// ValidateFlush checks a flush policy name. Empty selects the default.
func ValidateFlush(policy tailer.FlushPolicy) error {
	switch policy {
	case "", tailer.FlushEndOfRead, tailer.FlushHold, tailer.FlushNever:
		return nil
	default:
		return fmt.Errorf("invalid policy %q (must be end_of_read, hold, or never)", policy)
	}
}

// expandEnvVar expands environment variables in the format ${VAR} or $VAR.
func expandEnvVar(s string) string {
	if s == "" {
		return s
	}

	if strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}") {
		return os.Getenv(s[2 : len(s)-1])
	}

	if strings.HasPrefix(s, "$") && !strings.HasPrefix(s, "${") {
		return os.Getenv(s[1:])
	}

	return s
}
