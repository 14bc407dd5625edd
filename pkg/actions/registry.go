package actions

import (
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/systemstart/imgflow/pkg/api"
	"github.com/systemstart/imgflow/pkg/services"
)

// Dependencies are the collaborators the built-in actions use.
type Dependencies struct {
	Compressor func(cfg api.Params) (services.Compressor, error)
	Storage    func(cfg api.Params) (services.Storage, error)
	Clipboard  services.Clipboard
	Now        func() time.Time
	NewID      func() string
	// TempDir is the parent of directories holding processed files.
	TempDir string
}

// DefaultDependencies returns the production collaborators.
func DefaultDependencies() Dependencies {
	return Dependencies{
		Compressor: func(cfg api.Params) (services.Compressor, error) { return services.NewTinify(cfg) },
		Storage:    func(cfg api.Params) (services.Storage, error) { return services.NewS3(cfg) },
		Clipboard:  services.SystemClipboard{},
		Now:        time.Now,
		NewID:      func() string { return uuid.NewString() },
		TempDir:    os.TempDir(),
	}
}

// Registry maps action names to actions.
type Registry struct {
	actions map[string]Action
}

// NewRegistry creates a registry holding every built-in action.
func NewRegistry(deps Dependencies) *Registry {
	r := &Registry{actions: make(map[string]Action)}
	r.Register(NewCompressAction(deps))
	r.Register(NewResizeAction(deps))
	r.Register(NewConvertAction(deps))
	r.Register(NewUploadAction(deps))
	r.Register(NewOverwriteAction())
	r.Register(NewRenameAction(deps))
	r.Register(NewClipboardAction(deps))
	r.Register(NewMarkdownAction())
	return r
}

// Register adds a, replacing any action of the same name.
func (r *Registry) Register(a Action) {
	r.actions[a.Name()] = a
}

// Resolve returns the action registered under name.
func (r *Registry) Resolve(name string) (Action, error) {
	a, ok := r.actions[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", api.ErrActionNotFound, name)
	}
	return a, nil
}

// Names returns all registered action names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.actions))
	for name := range r.actions {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
