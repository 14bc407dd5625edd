package actions

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/systemstart/imgflow/pkg/api"
	"github.com/systemstart/imgflow/pkg/artifact"
)

type overwriteAction struct{}

// NewOverwriteAction creates the overwrite action, which replaces the
// workflow's original file with the processed one.
func NewOverwriteAction() Action {
	return &overwriteAction{}
}

func (a *overwriteAction) Name() string { return api.ActionOverwrite }

func (a *overwriteAction) Run(ctx context.Context, in artifact.Artifact, _ api.Params, _ api.Services, origin *artifact.Origin) (artifact.Artifact, error) {
	if !in.IsFile() {
		return artifact.Artifact{}, fmt.Errorf("%w: overwrite requires a file, got %s", api.ErrInvalidInput, in)
	}
	if origin == nil || !origin.Get().IsFile() {
		return artifact.Artifact{}, fmt.Errorf("%w: overwrite requires a file origin", api.ErrInvalidInput)
	}

	orig := origin.Get().Value
	if samePath(in.Value, orig) {
		Notify(ctx, "already at the original location")
		return in, nil
	}

	info, err := os.Stat(orig)
	if err != nil {
		return artifact.Artifact{}, fmt.Errorf("%w: stat original %s: %v", api.ErrFilesystem, orig, err)
	}
	if _, err := os.Stat(in.Value); err != nil {
		return artifact.Artifact{}, fmt.Errorf("%w: stat %s: %v", api.ErrFilesystem, in.Value, err)
	}

	target := filepath.Join(filepath.Dir(orig),
		strings.TrimSuffix(filepath.Base(orig), filepath.Ext(orig))+filepath.Ext(in.Value))

	if !samePath(in.Value, target) {
		if err := replaceFile(in.Value, target, info.Mode().Perm()); err != nil {
			return artifact.Artifact{}, err
		}
	}
	if !samePath(target, orig) {
		if err := os.Remove(orig); err != nil {
			return artifact.Artifact{}, fmt.Errorf("%w: removing original %s: %v", api.ErrFilesystem, orig, err)
		}
	}

	out := artifact.NewFile(target)
	origin.Set(out)
	Notify(ctx, "replaced "+orig)
	return out, nil
}

// replaceFile copies src next to dst and renames it into place, so dst is
// either left untouched or fully written.
func replaceFile(src, dst string, mode os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".*")
	if err != nil {
		return fmt.Errorf("%w: creating temporary file for %s: %v", api.ErrFilesystem, dst, err)
	}
	tmpPath := tmp.Name()
	_ = tmp.Close()

	if err := copyFile(src, tmpPath, mode); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Chmod(tmpPath, mode); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("%w: chmod %s: %v", api.ErrFilesystem, tmpPath, err)
	}
	if err := os.Rename(tmpPath, dst); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("%w: moving %s to %s: %v", api.ErrFilesystem, tmpPath, dst, err)
	}
	return nil
}
