package commands

import (
	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
)

// Persistent flag names defined on the root command.
const (
	FlagLogLevel = "log-level"
	FlagLogJSON  = "log-json"
)

// newLogger builds the process logger. The --log-level flag wins over the
// configured level. Logs go to stderr so command output stays parseable.
func newLogger(cmd *cobra.Command, configLevel string) hclog.Logger {
	level := configLevel
	if v, err := cmd.Flags().GetString(FlagLogLevel); err == nil && v != "" {
		level = v
	}
	if level == "" {
		level = "info"
	}

	jsonFormat, _ := cmd.Flags().GetBool(FlagLogJSON)

	logger := hclog.New(&hclog.LoggerOptions{
		Name:       "logaroo",
		Level:      hclog.LevelFromString(level),
		Output:     cmd.ErrOrStderr(),
		Color:      hclog.AutoColor,
		JSONFormat: jsonFormat,
	})
	hclog.SetDefault(logger)
	return logger
}
