package actions

import (
	"context"

	"github.com/systemstart/imgflow/pkg/api"
	"github.com/systemstart/imgflow/pkg/artifact"
)

type compressAction struct {
	imageProcessor
}

// NewCompressAction creates the compress action. With output_type "url" the
// compressed image is left on the service and its location returned.
func NewCompressAction(deps Dependencies) Action {
	return &compressAction{imageProcessor{deps: deps}}
}

func (a *compressAction) Name() string { return api.ActionCompress }

func (a *compressAction) Run(ctx context.Context, in artifact.Artifact, params api.Params, services api.Services, _ *artifact.Origin) (artifact.Artifact, error) {
	if err := requireImage(a.Name(), in); err != nil {
		return artifact.Artifact{}, err
	}

	c, err := a.compressor(services, params)
	if err != nil {
		return artifact.Artifact{}, err
	}

	outName := outputName(in, "")
	if params.String("output_type") == "url" {
		outName = ""
	}
	return a.process(ctx, c, in, params, nil, outName)
}
