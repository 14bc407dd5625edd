package actions

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/systemstart/imgflow/pkg/api"
	"github.com/systemstart/imgflow/pkg/artifact"
	"github.com/systemstart/imgflow/pkg/services"
)

const testUUID = "0b7c6f5e-1111-4222-8333-944455556666"

var testNow = time.Date(2024, time.March, 5, 10, 30, 0, 0, time.UTC)

// writeTestFile writes content to a file in dir, failing the test on error.
func writeTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return p
}

func readTestFile(t *testing.T, p string) string {
	t.Helper()
	data, err := os.ReadFile(p)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

type fakeCompressor struct {
	mu        sync.Mutex
	shrunk    []artifact.Artifact
	ops       []services.Operation
	shrinkErr error
}

func (c *fakeCompressor) Shrink(_ context.Context, a artifact.Artifact) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.shrinkErr != nil {
		return "", c.shrinkErr
	}
	c.shrunk = append(c.shrunk, a)
	return "https://api.test/output/1", nil
}

func (c *fakeCompressor) Fetch(_ context.Context, _ string, op services.Operation) (io.ReadCloser, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ops = append(c.ops, op)
	body := "processed"
	if len(op) > 0 {
		b, _ := json.Marshal(op)
		body = string(b)
	}
	return io.NopCloser(strings.NewReader(body)), nil
}

type fakeStorage struct {
	mu      sync.Mutex
	base    string
	objects map[string]string
	putErr  error
}

func (s *fakeStorage) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	if s.putErr != nil {
		return s.putErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.objects == nil {
		s.objects = make(map[string]string)
	}
	s.objects[key] = string(data)
	return nil
}

func (s *fakeStorage) URL(key string) string {
	return s.base + "/" + key
}

type fakeClipboard struct {
	text string
	file string
}

func (c *fakeClipboard) WriteText(text string) error { c.text = text; return nil }
func (c *fakeClipboard) WriteFile(path string) error { c.file = path; return nil }
func (c *fakeClipboard) ReadText() (string, error)   { return c.text, nil }

type testEnv struct {
	deps       Dependencies
	compressor *fakeCompressor
	storage    *fakeStorage
	clipboard  *fakeClipboard
	// cfgs records the service configuration each factory call received.
	cfgs []api.Params
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		compressor: &fakeCompressor{},
		storage:    &fakeStorage{base: "https://media.example.com"},
		clipboard:  &fakeClipboard{},
	}
	env.deps = Dependencies{
		Compressor: func(cfg api.Params) (services.Compressor, error) {
			env.cfgs = append(env.cfgs, cfg)
			if cfg.String("api_key") == "" {
				return nil, fmt.Errorf("%w: api_key", api.ErrMissingCredential)
			}
			return env.compressor, nil
		},
		Storage: func(cfg api.Params) (services.Storage, error) {
			env.cfgs = append(env.cfgs, cfg)
			if cfg.String("bucket") == "" {
				return nil, fmt.Errorf("%w: bucket", api.ErrMissingCredential)
			}
			return env.storage, nil
		},
		Clipboard: env.clipboard,
		Now:       func() time.Time { return testNow },
		NewID:     func() string { return testUUID },
		TempDir:   t.TempDir(),
	}
	return env
}

func testServices() api.Services {
	return api.Services{
		api.DefaultCompressionService: api.Params{"api_key": "key"},
		api.DefaultStorageService:     api.Params{"bucket": "media"},
	}
}
