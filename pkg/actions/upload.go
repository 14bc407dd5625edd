package actions

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/systemstart/imgflow/pkg/api"
	"github.com/systemstart/imgflow/pkg/artifact"
)

type uploadAction struct {
	deps Dependencies
}

// NewUploadAction creates the upload action. Files are stored under
// {root}/{basename} and the public URL is returned.
func NewUploadAction(deps Dependencies) Action {
	return &uploadAction{deps: deps}
}

func (a *uploadAction) Name() string { return api.ActionUpload }

func (a *uploadAction) Run(ctx context.Context, in artifact.Artifact, params api.Params, svc api.Services, _ *artifact.Origin) (artifact.Artifact, error) {
	if !in.IsFile() {
		return artifact.Artifact{}, fmt.Errorf("%w: upload requires a file, got %s", api.ErrInvalidInput, in)
	}

	name := params.String("service")
	if name == "" {
		name = api.DefaultStorageService
	}
	cfg, err := svc.Resolve(name, params)
	if err != nil {
		return artifact.Artifact{}, err
	}

	storage, err := a.deps.Storage(cfg)
	if err != nil {
		return artifact.Artifact{}, err
	}

	f, err := os.Open(in.Value)
	if err != nil {
		return artifact.Artifact{}, fmt.Errorf("%w: opening %s: %v", api.ErrFilesystem, in.Value, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return artifact.Artifact{}, fmt.Errorf("%w: stat %s: %v", api.ErrFilesystem, in.Value, err)
	}

	key := objectKey(cfg.String("root"), in.Base())
	contentType := mime.TypeByExtension(in.Ext())
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	if err := storage.Put(ctx, key, f, info.Size(), contentType); err != nil {
		return artifact.Artifact{}, err
	}

	url := storage.URL(key)
	Notify(ctx, fmt.Sprintf("uploaded %s to %s", humanize.Bytes(uint64(info.Size())), url))
	return artifact.NewURL(url), nil
}

func objectKey(root, base string) string {
	root = strings.Trim(root, "/")
	if root == "" {
		return base
	}
	return path.Join(root, base)
}
