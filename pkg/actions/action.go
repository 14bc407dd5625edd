package actions

import (
	"context"

	"github.com/systemstart/imgflow/pkg/api"
	"github.com/systemstart/imgflow/pkg/artifact"
)

// Action is the interface all workflow actions implement. Every action is
// called with the full argument set and ignores what it does not need.
type Action interface {
	Name() string
	Run(ctx context.Context, in artifact.Artifact, params api.Params, services api.Services, origin *artifact.Origin) (artifact.Artifact, error)
}

// RunFunc is the signature of Action.Run.
type RunFunc func(ctx context.Context, in artifact.Artifact, params api.Params, services api.Services, origin *artifact.Origin) (artifact.Artifact, error)

type funcAction struct {
	name string
	fn   RunFunc
}

// NewFunc wraps fn as a named Action.
func NewFunc(name string, fn RunFunc) Action {
	return &funcAction{name: name, fn: fn}
}

func (a *funcAction) Name() string { return a.name }

func (a *funcAction) Run(ctx context.Context, in artifact.Artifact, params api.Params, services api.Services, origin *artifact.Origin) (artifact.Artifact, error) {
	return a.fn(ctx, in, params, services, origin)
}

// Notifier receives progress messages emitted by an action while it runs.
type Notifier func(message string)

type notifierKey struct{}

// WithNotifier attaches n to ctx so actions can report intermediate progress.
func WithNotifier(ctx context.Context, n Notifier) context.Context {
	return context.WithValue(ctx, notifierKey{}, n)
}

// Notify reports message to the notifier in ctx, if any.
func Notify(ctx context.Context, message string) {
	if n, ok := ctx.Value(notifierKey{}).(Notifier); ok && n != nil {
		n(message)
	}
}
