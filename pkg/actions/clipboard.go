package actions

import (
	"context"
	"fmt"

	"github.com/systemstart/imgflow/pkg/api"
	"github.com/systemstart/imgflow/pkg/artifact"
)

type clipboardAction struct {
	deps Dependencies
}

// NewClipboardAction creates the clipboard action. Files are copied as file
// references, everything else as text. The input is passed through.
func NewClipboardAction(deps Dependencies) Action {
	return &clipboardAction{deps: deps}
}

func (a *clipboardAction) Name() string { return api.ActionClipboard }

func (a *clipboardAction) Run(ctx context.Context, in artifact.Artifact, _ api.Params, _ api.Services, _ *artifact.Origin) (artifact.Artifact, error) {
	if a.deps.Clipboard == nil {
		return artifact.Artifact{}, fmt.Errorf("%w: no clipboard available", api.ErrServiceError)
	}

	var err error
	if in.IsFile() {
		err = a.deps.Clipboard.WriteFile(in.Value)
	} else {
		err = a.deps.Clipboard.WriteText(in.Value)
	}
	if err != nil {
		return artifact.Artifact{}, err
	}

	Notify(ctx, fmt.Sprintf("copied %s to clipboard", in.Kind))
	return in, nil
}
