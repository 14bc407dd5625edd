package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	charm "github.com/charmbracelet/log"
	"github.com/lmittmann/tint"
)

const (
	JSON  = "json"
	Text  = "text"
	Tint  = "tint"
	Charm = "charm"
)

// Types lists the supported logging types.
var Types = []string{JSON, Text, Tint, Charm}

// Initialize installs the default slog logger. Logs go to stderr so that
// progress reports on stdout stay readable.
func Initialize(loggingType string, logLevelName string) error {
	return InitializeWriter(os.Stderr, loggingType, logLevelName)
}

// InitializeWriter is Initialize with an explicit destination.
func InitializeWriter(w io.Writer, loggingType string, logLevelName string) error {
	var logLevel slog.Level
	err := logLevel.UnmarshalText([]byte(logLevelName))
	if err != nil {
		return fmt.Errorf("could not parse log level: %v", err)
	}

	var (
		logHandlerOptions = slog.HandlerOptions{
			AddSource: logLevel <= slog.LevelDebug,
			Level:     logLevel,
		}
		logHandler slog.Handler
	)

	switch loggingType {
	case JSON:
		logHandler = slog.NewJSONHandler(w, &logHandlerOptions)
	case Text:
		logHandler = slog.NewTextHandler(w, &logHandlerOptions)
	case Tint:
		logHandler = tint.NewHandler(w, &tint.Options{
			AddSource: logHandlerOptions.AddSource,
			Level:     logHandlerOptions.Level,
		})
	case Charm:
		logHandler = charm.NewWithOptions(w, charm.Options{
			ReportTimestamp: true,
			ReportCaller:    logHandlerOptions.AddSource,
			Prefix:          "imgflow",
			Level:           charm.Level(logLevel),
		})
	default:
		return fmt.Errorf("unknown logging type: %s", loggingType)
	}

	slog.SetDefault(slog.New(logHandler))
	slog.Debug("logging initialized", "logLevel", logLevel, "type", loggingType)
	return nil
}
