package main

import (
	"context"
	"fmt"
	"os"

	"github.com/maloquacious/semver"
	"github.com/spf13/cobra"

	"github.com/Kzeezee/Pomodoko/internal/api"
	"github.com/Kzeezee/Pomodoko/internal/config"
	"github.com/Kzeezee/Pomodoko/internal/logger"
	"github.com/Kzeezee/Pomodoko/internal/startup"
)

var (
	version   = semver.Version{Minor: 1, PreRelease: "alpha", Build: semver.Commit()}
	buildDate = ""
)

var (
	configPath string
	dataDir    string
	logLevel   string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "pomodoko: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "pomodoko",
		Short:         "Pomodoko timer data store and command server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "optional YAML config file")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "directory holding pomodoko.db and preferences.json")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(
		newServeCmd(),
		newDBCmd(),
		newPrefsCmd(),
		newTasksCmd(),
		&cobra.Command{
			Use:   "greet NAME",
			Short: "Print a greeting",
			Args:  cobra.ExactArgs(1),
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintln(cmd.OutOrStdout(), api.Greet(args[0]))
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the build version",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "pomodoko %s %s\n", version.String(), buildDate)
			},
		},
	)
	return rootCmd
}

// loadConfig merges the config file, environment and global flags.
func loadConfig() (*config.Config, logger.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	log := logger.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	logger.Default = log
	return cfg, log, nil
}

// initApp runs the full startup sequence.
func initApp(ctx context.Context) (*config.Config, logger.Logger, *startup.App, error) {
	cfg, log, err := loadConfig()
	if err != nil {
		return nil, nil, nil, err
	}
	app, err := startup.NewInitializer(cfg, log).Init(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, log, app, nil
}
