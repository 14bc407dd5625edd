package actions

import (
	"context"
	"fmt"
	"strings"

	"github.com/systemstart/imgflow/pkg/api"
	"github.com/systemstart/imgflow/pkg/artifact"
	"github.com/systemstart/imgflow/pkg/services"
)

type imageFormat struct {
	mime string
	ext  string
}

var convertFormats = map[string]imageFormat{
	"png":  {mime: "image/png", ext: ".png"},
	"jpeg": {mime: "image/jpeg", ext: ".jpg"},
	"jpg":  {mime: "image/jpeg", ext: ".jpg"},
	"webp": {mime: "image/webp", ext: ".webp"},
	"avif": {mime: "image/avif", ext: ".avif"},
}

type convertAction struct {
	imageProcessor
}

// NewConvertAction creates the convert action.
func NewConvertAction(deps Dependencies) Action {
	return &convertAction{imageProcessor{deps: deps}}
}

func (a *convertAction) Name() string { return api.ActionConvert }

func (a *convertAction) Run(ctx context.Context, in artifact.Artifact, params api.Params, svc api.Services, _ *artifact.Origin) (artifact.Artifact, error) {
	if err := requireImage(a.Name(), in); err != nil {
		return artifact.Artifact{}, err
	}

	target := strings.ToLower(strings.TrimPrefix(params.String("type"), "image/"))
	format, ok := convertFormats[target]
	if !ok {
		return artifact.Artifact{}, fmt.Errorf("%w: %q", api.ErrUnsupportedFormat, params.String("type"))
	}

	op := services.Operation{"convert": map[string]any{"type": format.mime}}
	if bg := params.String("background"); bg != "" {
		op["transform"] = map[string]any{"background": bg}
	}

	c, err := a.compressor(svc, params)
	if err != nil {
		return artifact.Artifact{}, err
	}

	return a.process(ctx, c, in, params, op, outputName(in, format.ext))
}
