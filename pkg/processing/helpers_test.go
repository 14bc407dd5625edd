package processing

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/systemstart/imgflow/pkg/actions"
	"github.com/systemstart/imgflow/pkg/api"
	"github.com/systemstart/imgflow/pkg/artifact"
	"github.com/systemstart/imgflow/pkg/services"
)

const bucketURL = "https://media.s3.eu-central-1.amazonaws.com"

type stubCompressor struct{}

func (stubCompressor) Shrink(context.Context, artifact.Artifact) (string, error) {
	return "https://api.test/output/1", nil
}

func (stubCompressor) Fetch(context.Context, string, services.Operation) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader("compressed")), nil
}

type memStorage struct {
	mu      sync.Mutex
	objects map[string]int64
}

func (s *memStorage) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	n, err := io.Copy(io.Discard, r)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = n
	return nil
}

func (s *memStorage) URL(key string) string {
	return bucketURL + "/" + key
}

// newTestRegistry returns the built-in actions backed by in-memory services.
func newTestRegistry(t *testing.T) *actions.Registry {
	t.Helper()
	storage := &memStorage{objects: make(map[string]int64)}
	return actions.NewRegistry(actions.Dependencies{
		Compressor: func(api.Params) (services.Compressor, error) { return stubCompressor{}, nil },
		Storage:    func(api.Params) (services.Storage, error) { return storage, nil },
		Now:        func() time.Time { return time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC) },
		NewID:      func() string { return "fixed-id" },
		TempDir:    t.TempDir(),
	})
}

func testServices() api.Services {
	return api.Services{
		api.DefaultCompressionService: api.Params{"api_key": "key"},
		api.DefaultStorageService:     api.Params{"bucket": "media", "region": "eu-central-1"},
	}
}

// appendAction returns an action that records its input and appends suffix.
func appendAction(name, suffix string, seen *[]string) actions.Action {
	return actions.NewFunc(name, func(_ context.Context, in artifact.Artifact, _ api.Params, _ api.Services, _ *artifact.Origin) (artifact.Artifact, error) {
		*seen = append(*seen, in.Value)
		return artifact.NewURL(in.Value + suffix), nil
	})
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(p), 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return p
}
