package processing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/systemstart/imgflow/pkg/api"
	"github.com/systemstart/imgflow/pkg/artifact"
	"github.com/systemstart/imgflow/pkg/progress"
	"golang.org/x/sync/errgroup"
)

// RunOptions configures RunAll.
type RunOptions struct {
	Steps    []api.StepConfig
	Services api.Services
	Registry Resolver
	// Sink receives the progress report of every run. May be nil.
	Sink progress.Sink
	// Concurrency bounds the number of inputs processed at once. Values
	// below 2 process inputs one after another.
	Concurrency int
	Wrappers    []StepWrapper
}

// Result is the outcome of running the workflow over one input.
type Result struct {
	Input  artifact.Artifact
	Output artifact.Artifact
	Stages []progress.Stage
	Err    error
}

// RunWorkflow runs the workflow over a single input with its own logger.
func RunWorkflow(ctx context.Context, in artifact.Artifact, opts RunOptions) Result {
	logger := progress.New(Labels(opts.Steps), opts.Sink, progress.WithTitle(title(in)))

	execOpts := make([]ExecutorOption, 0, len(opts.Wrappers))
	for _, w := range opts.Wrappers {
		execOpts = append(execOpts, WithStepWrapper(w))
	}
	exec := NewExecutor(opts.Steps, opts.Services, opts.Registry, logger, execOpts...)

	slog.Info("executing workflow", "input", in, "steps", len(opts.Steps))
	out, err := exec.Run(ctx, in)
	if err != nil {
		slog.Error("workflow failed", "input", in, "error", err)
	} else {
		slog.Info("workflow succeeded", "input", in, "output", out)
	}
	return Result{Input: in, Output: out, Stages: logger.Stages(), Err: err}
}

// RunAll runs the workflow over every input and returns one result per input
// in input order. Each run owns its origin and progress logger.
func RunAll(ctx context.Context, inputs []artifact.Artifact, opts RunOptions) ([]Result, error) {
	results := make([]Result, len(inputs))

	if opts.Concurrency < 2 {
		for i, in := range inputs {
			results[i] = RunWorkflow(ctx, in, opts)
		}
	} else {
		g := errgroup.Group{}
		g.SetLimit(opts.Concurrency)
		for i, in := range inputs {
			g.Go(func() error {
				results[i] = RunWorkflow(ctx, in, opts)
				return nil
			})
		}
		_ = g.Wait()
	}

	var (
		failed []string
		errs   []error
	)
	for _, r := range results {
		if r.Err != nil {
			failed = append(failed, r.Input.Value)
			errs = append(errs, r.Err)
		}
	}
	if len(failed) > 0 {
		return results, fmt.Errorf("%d run(s) failed: %v: %w", len(failed), failed, errors.Join(errs...))
	}
	return results, nil
}

func title(in artifact.Artifact) string {
	if in.IsFile() {
		return filepath.Base(in.Value)
	}
	return in.Value
}
