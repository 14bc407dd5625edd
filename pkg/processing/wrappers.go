package processing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/systemstart/imgflow/pkg/actions"
	"github.com/systemstart/imgflow/pkg/api"
	"github.com/systemstart/imgflow/pkg/artifact"
	"github.com/systemstart/imgflow/pkg/progress"
)

const defaultRetryDelay = 500 * time.Millisecond

// TimeoutWrapper bounds every step by d. A non-positive d disables it.
func TimeoutWrapper(d time.Duration) StepWrapper {
	return func(_ Step, run actions.RunFunc) actions.RunFunc {
		if d <= 0 {
			return run
		}
		return func(ctx context.Context, in artifact.Artifact, params api.Params, svc api.Services, origin *artifact.Origin) (artifact.Artifact, error) {
			ctx, cancel := context.WithTimeout(ctx, d)
			defer cancel()
			return run(ctx, in, params, svc, origin)
		}
	}
}

// RetryWrapper retries steps failing with api.ErrServiceError according to
// policy. Each retry is logged as a warning on the stage.
func RetryWrapper(policy *api.RetryConfig) StepWrapper {
	return func(step Step, run actions.RunFunc) actions.RunFunc {
		if !policy.Enabled() {
			return run
		}

		delay := policy.Delay
		if delay <= 0 {
			delay = defaultRetryDelay
		}

		return func(ctx context.Context, in artifact.Artifact, params api.Params, svc api.Services, origin *artifact.Origin) (artifact.Artifact, error) {
			var out artifact.Artifact
			err := retry.Do(
				func() error {
					var err error
					out, err = run(ctx, in, params, svc, origin)
					return err
				},
				retry.Attempts(policy.Attempts),
				retry.DelayType(retry.BackOffDelay),
				retry.Delay(delay),
				retry.MaxDelay(policy.MaxDelay),
				retry.LastErrorOnly(true),
				retry.RetryIf(func(err error) bool {
					return errors.Is(err, api.ErrServiceError)
				}),
				retry.OnRetry(func(n uint, err error) {
					if step.Log != nil {
						step.Log.Log(step.Label(), fmt.Sprintf("attempt %d failed, retrying: %v", n+1, err), progress.Warn)
					}
				}),
				retry.Context(ctx),
			)
			if err != nil {
				return artifact.Artifact{}, err
			}
			return out, nil
		}
	}
}
