package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Settings are the process-level defaults read from the environment.
type Settings struct {
	Config      string        `env:"CONFIG, default=imgflow.yaml"`
	Workflow    string        `env:"WORKFLOW, default=default"`
	LogType     string        `env:"LOG_TYPE, default=tint"`
	LogLevel    string        `env:"LOG_LEVEL, default=info"`
	Concurrency int           `env:"CONCURRENCY, default=1"`
	StepTimeout time.Duration `env:"STEP_TIMEOUT, default=0s"`
	Plain       bool          `env:"PLAIN, default=false"`
}

type env struct {
	Settings Settings `env:",prefix=IMGFLOW_"`
}

// Load reads settings from the process environment.
func Load(ctx context.Context) (*Settings, error) {
	return LoadFrom(ctx, envconfig.OsLookuper())
}

// LoadFrom reads settings through l.
func LoadFrom(ctx context.Context, l envconfig.Lookuper) (*Settings, error) {
	var e env
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &e, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("reading settings: %w", err)
	}
	if e.Settings.Concurrency < 1 {
		e.Settings.Concurrency = 1
	}
	return &e.Settings, nil
}
