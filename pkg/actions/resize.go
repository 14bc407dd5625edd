package actions

import (
	"context"
	"fmt"

	"github.com/systemstart/imgflow/pkg/api"
	"github.com/systemstart/imgflow/pkg/artifact"
	"github.com/systemstart/imgflow/pkg/services"
)

const defaultResizeMethod = "fit"

var resizeMethods = map[string]bool{
	"scale": true,
	"fit":   true,
	"cover": true,
	"thumb": true,
}

type resizeAction struct {
	imageProcessor
}

// NewResizeAction creates the resize action.
func NewResizeAction(deps Dependencies) Action {
	return &resizeAction{imageProcessor{deps: deps}}
}

func (a *resizeAction) Name() string { return api.ActionResize }

func (a *resizeAction) Run(ctx context.Context, in artifact.Artifact, params api.Params, svc api.Services, _ *artifact.Origin) (artifact.Artifact, error) {
	if err := requireImage(a.Name(), in); err != nil {
		return artifact.Artifact{}, err
	}

	op, err := resizeOperation(params)
	if err != nil {
		return artifact.Artifact{}, err
	}

	c, err := a.compressor(svc, params)
	if err != nil {
		return artifact.Artifact{}, err
	}

	return a.process(ctx, c, in, params, op, outputName(in, ""))
}

func resizeOperation(params api.Params) (services.Operation, error) {
	method := params.String("method")
	if method == "" {
		method = defaultResizeMethod
	}
	if !resizeMethods[method] {
		return nil, fmt.Errorf("%w: unknown resize method %q", api.ErrInvalidInput, method)
	}

	width, err := params.Int("width")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", api.ErrInvalidInput, err)
	}
	height, err := params.Int("height")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", api.ErrInvalidInput, err)
	}
	if width < 0 || height < 0 {
		return nil, fmt.Errorf("%w: resize dimensions must be positive", api.ErrInvalidInput)
	}

	resize := map[string]any{"method": method}
	switch {
	case method == "scale" && (width > 0) == (height > 0):
		return nil, fmt.Errorf("%w: resize method scale needs exactly one of width or height", api.ErrInvalidInput)
	case method != "scale" && (width == 0 || height == 0):
		return nil, fmt.Errorf("%w: resize method %s needs width and height", api.ErrInvalidInput, method)
	}
	if width > 0 {
		resize["width"] = width
	}
	if height > 0 {
		resize["height"] = height
	}

	return services.Operation{"resize": resize}, nil
}
