package processing

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/systemstart/imgflow/pkg/actions"
	"github.com/systemstart/imgflow/pkg/api"
	"github.com/systemstart/imgflow/pkg/artifact"
	"github.com/systemstart/imgflow/pkg/progress"
)

// Resolver looks up actions by name.
type Resolver interface {
	Resolve(name string) (actions.Action, error)
}

// Step describes the step a StepWrapper is applied to.
type Step struct {
	Index  int
	Config api.StepConfig
	Log    *progress.Logger
}

// Label returns the stage name of the step.
func (s Step) Label() string {
	return s.Config.Label()
}

// StepWrapper decorates the run function of a resolved action.
type StepWrapper func(step Step, run actions.RunFunc) actions.RunFunc

// StepError reports the step a run failed at.
type StepError struct {
	Index int
	Step  string
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %q failed: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Executor runs one workflow over a single input at a time.
type Executor struct {
	steps    []api.StepConfig
	services api.Services
	registry Resolver
	logger   *progress.Logger
	wrappers []StepWrapper
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithStepWrapper adds w around every step. The first wrapper added is the
// outermost.
func WithStepWrapper(w StepWrapper) ExecutorOption {
	return func(e *Executor) {
		if w != nil {
			e.wrappers = append(e.wrappers, w)
		}
	}
}

// NewExecutor binds steps, services and registry to logger. A nil logger is
// replaced by one without a sink.
func NewExecutor(steps []api.StepConfig, services api.Services, registry Resolver, logger *progress.Logger, opts ...ExecutorOption) *Executor {
	if logger == nil {
		logger = progress.New(Labels(steps), nil)
	}
	e := &Executor{
		steps:    steps,
		services: services,
		registry: registry,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Logger returns the progress logger of the executor.
func (e *Executor) Logger() *progress.Logger {
	return e.logger
}

// Run feeds in through every step and returns the artifact produced by the
// last one. The first failing step ends the run.
func (e *Executor) Run(ctx context.Context, in artifact.Artifact) (artifact.Artifact, error) {
	origin := artifact.NewOrigin(in)
	current := in

	for i, cfg := range e.steps {
		step := Step{Index: i, Config: cfg, Log: e.logger}

		if err := ctx.Err(); err != nil {
			return artifact.Artifact{}, e.fail(step, err)
		}

		action, err := e.registry.Resolve(cfg.Action)
		if err != nil {
			return artifact.Artifact{}, e.fail(step, err)
		}

		run := e.wrap(step, action.Run)
		stepCtx := actions.WithNotifier(ctx, func(msg string) {
			e.logger.Log(step.Label(), msg, progress.Info)
		})

		slog.Debug("running step", "step", step.Label(), "action", cfg.Action, "input", current)
		out, err := run(stepCtx, current, cfg.Params, e.services, origin)
		if err != nil {
			return artifact.Artifact{}, e.fail(step, err)
		}

		e.logger.Finish(step.Label(), "→ "+out.String())
		current = out
	}

	return current, nil
}

func (e *Executor) wrap(step Step, run actions.RunFunc) actions.RunFunc {
	for i := len(e.wrappers) - 1; i >= 0; i-- {
		run = e.wrappers[i](step, run)
	}
	return run
}

func (e *Executor) fail(step Step, err error) error {
	e.logger.Log(step.Label(), err.Error(), progress.Fail)
	return &StepError{Index: step.Index, Step: step.Label(), Err: err}
}

// Labels returns the stage names of steps in order.
func Labels(steps []api.StepConfig) []string {
	labels := make([]string, len(steps))
	for i, s := range steps {
		labels[i] = s.Label()
	}
	return labels
}
