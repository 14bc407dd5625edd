package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/systemstart/imgflow/pkg/api"
	"github.com/systemstart/imgflow/pkg/config"
	"github.com/systemstart/imgflow/pkg/logging"
	"github.com/systemstart/imgflow/pkg/processing"
)

var version = "dev"

const (
	_ = iota
	exitDotenvError
	exitSettingsError
	exitLoggingError
	exitUsage
	exitConfigurationError
	exitNoInputFound
	exitWorkflowFailed
)

var errLogging = errors.New("logging setup failed")

func main() {
	dotenvLoaded, err := includeEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load .env:", err)
		os.Exit(exitDotenvError)
	}

	settings, err := config.Load(context.Background())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitSettingsError)
	}

	root := newRootCommand(settings, dotenvLoaded)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err = root.ExecuteContext(ctx)
	stop()
	if err != nil {
		slog.Error("imgflow failed", "error", err)
		os.Exit(exitCode(err))
	}
}

func includeEnv() (bool, error) {
	err := godotenv.Load()
	if err != nil {
		if !os.IsNotExist(err) {
			return false, err
		}
		return false, nil
	}
	return true, nil
}

func newRootCommand(settings *config.Settings, dotenvLoaded bool) *cobra.Command {
	opts := &options{settings: *settings}

	root := &cobra.Command{
		Use:           "imgflow",
		Short:         "Run configurable image workflows",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := logging.Initialize(opts.settings.LogType, opts.settings.LogLevel); err != nil {
				return fmt.Errorf("%w: %v", errLogging, err)
			}
			if dotenvLoaded {
				slog.Info("using .env file")
			} else {
				slog.Debug("no .env file found")
			}
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.settings.Config, "config", "c", settings.Config, "workflow document (.yaml, .yml or .json)")
	flags.StringVar(&opts.settings.LogType, "logging-type", settings.LogType, "logging type: json, text, tint or charm")
	flags.StringVar(&opts.settings.LogLevel, "log-level", settings.LogLevel, "logging level: debug, info, warn, error")

	root.AddCommand(
		newRunCommand(opts),
		newWorkflowsCommand(opts),
		newActionsCommand(),
		newVersionCommand(),
	)
	return root
}

func exitCode(err error) int {
	var stepErr *processing.StepError
	switch {
	case errors.Is(err, errLogging):
		return exitLoggingError
	case errors.Is(err, api.ErrConfiguration):
		return exitConfigurationError
	case errors.Is(err, api.ErrNoInputFound):
		return exitNoInputFound
	case errors.As(err, &stepErr):
		return exitWorkflowFailed
	default:
		return exitUsage
	}
}
