package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/signalnine/solverbench/internal/config"
	"github.com/signalnine/solverbench/internal/logging"
)

const envPrefix = "SOLVERBENCH"

// app carries the settings shared by every subcommand. Flags, environment
// variables (SOLVERBENCH_LOG_LEVEL, ...) and defaults are merged by viper.
type app struct {
	settings *viper.Viper
}

func (a *app) configPath() string { return a.settings.GetString("config") }
func (a *app) logLevel() string   { return a.settings.GetString("log-level") }

func (a *app) loadConfig() (*config.Config, error) {
	return config.Load(a.configPath())
}

// optionalConfig loads the config if the file exists. Commands that work on
// stored results run without one.
func (a *app) optionalConfig() (*config.Config, error) {
	cfg, err := a.loadConfig()
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return cfg, err
}

func NewRootCmd() *cobra.Command {
	a := &app{settings: viper.New()}
	root := &cobra.Command{
		Use:           "solverbench",
		Short:         "Benchmark harness for optimization solvers",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := logging.ParseLevel(a.logLevel())
			if err != nil {
				return err
			}
			if err := logging.Init(level, a.settings.GetString("log-format"), cmd.ErrOrStderr()); err != nil {
				return err
			}
			slog.Debug("settings", "config", a.configPath(), "log_level", level)
			return nil
		},
	}
	flags := root.PersistentFlags()
	flags.String("config", "solverbench.yaml", "config file path")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("log-format", "text", "log format (text, json)")
	if err := a.settings.BindPFlags(flags); err != nil {
		panic(fmt.Sprintf("binding flags: %v", err))
	}
	a.settings.SetEnvPrefix(envPrefix)
	a.settings.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.settings.AutomaticEnv()

	root.AddCommand(newRunCmd(a))
	root.AddCommand(newListCmd(a))
	root.AddCommand(newReportCmd(a))
	root.AddCommand(newAggregateCmd(a))
	root.AddCommand(newRerankCmd(a))
	return root
}
