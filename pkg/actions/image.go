package actions

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/systemstart/imgflow/pkg/api"
	"github.com/systemstart/imgflow/pkg/artifact"
	"github.com/systemstart/imgflow/pkg/services"
)

// imageProcessor holds what compress, resize and convert share: a round trip
// through the compression service that ends in a new local file.
type imageProcessor struct {
	deps Dependencies
}

func (p imageProcessor) compressor(svc api.Services, params api.Params) (services.Compressor, error) {
	name := params.String("service")
	if name == "" {
		name = api.DefaultCompressionService
	}

	cfg, err := svc.Resolve(name, params)
	if err != nil {
		return nil, err
	}
	return p.deps.Compressor(cfg)
}

func requireImage(action string, in artifact.Artifact) error {
	if !in.IsImage() {
		return fmt.Errorf("%w: %s requires a png, jpeg, webp or avif image, got %s", api.ErrInvalidInput, action, in)
	}
	return nil
}

// process shrinks in, applies op and writes the result as outName. When
// outName is empty the service location is returned as a URL artifact.
func (p imageProcessor) process(ctx context.Context, c services.Compressor, in artifact.Artifact, params api.Params, op services.Operation, outName string) (artifact.Artifact, error) {
	location, err := c.Shrink(ctx, in)
	if err != nil {
		return artifact.Artifact{}, err
	}

	if outName == "" {
		Notify(ctx, "compressed image available at "+location)
		return artifact.NewURL(location), nil
	}

	rc, err := c.Fetch(ctx, location, op)
	if err != nil {
		return artifact.Artifact{}, err
	}
	defer rc.Close()

	dir, err := p.outputDir(params)
	if err != nil {
		return artifact.Artifact{}, err
	}
	outPath := filepath.Join(dir, outName)

	written, err := writeStream(outPath, rc)
	if err != nil {
		return artifact.Artifact{}, err
	}

	msg := "wrote " + humanize.Bytes(uint64(written))
	if in.IsFile() {
		if info, statErr := os.Stat(in.Value); statErr == nil {
			msg = fmt.Sprintf("%s → %s", humanize.Bytes(uint64(info.Size())), humanize.Bytes(uint64(written)))
		}
	}
	Notify(ctx, msg)
	slog.Debug("processed image written", "source", in.Value, "output", outPath, "size", written)

	return artifact.NewFile(outPath), nil
}

func (p imageProcessor) outputDir(params api.Params) (string, error) {
	if dir := params.String("output_dir"); dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return "", fmt.Errorf("%w: creating output directory: %v", api.ErrFilesystem, err)
		}
		return dir, nil
	}

	dir, err := os.MkdirTemp(p.deps.TempDir, "imgflow-*")
	if err != nil {
		return "", fmt.Errorf("%w: creating temp directory: %v", api.ErrFilesystem, err)
	}
	return dir, nil
}

func writeStream(path string, r io.Reader) (int64, error) {
	out, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("%w: creating %s: %v", api.ErrFilesystem, path, err)
	}

	n, copyErr := io.Copy(out, r)

	if closeErr := out.Close(); closeErr != nil && copyErr == nil {
		return 0, fmt.Errorf("%w: closing %s: %v", api.ErrFilesystem, path, closeErr)
	}
	if copyErr != nil {
		return 0, fmt.Errorf("%w: receiving processed image: %v", api.ErrServiceError, copyErr)
	}
	return n, nil
}

// outputName returns the basename for a processed copy of in, with ext
// replacing the original extension when non-empty.
func outputName(in artifact.Artifact, ext string) string {
	base := in.Base()
	if base == "" || base == "/" || base == "." {
		base = "image" + in.Ext()
	}
	if ext == "" {
		return base
	}
	return strings.TrimSuffix(base, filepath.Ext(base)) + ext
}
