package actions

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/systemstart/imgflow/pkg/api"
	"github.com/systemstart/imgflow/pkg/artifact"
)

func TestUpload(t *testing.T) {
	env := newTestEnv(t)
	src := writeTestFile(t, t.TempDir(), "a.png", "bytes")

	out, err := NewUploadAction(env.deps).Run(context.Background(), artifact.NewFile(src), nil, testServices(), nil)
	require.NoError(t, err)

	assert.Equal(t, artifact.NewURL("https://media.example.com/a.png"), out)
	assert.Equal(t, "bytes", env.storage.objects["a.png"])
}

func TestUpload_Root(t *testing.T) {
	tests := []struct {
		name    string
		svcRoot string
		params  api.Params
		wantKey string
	}{
		{"service root", "images/", nil, "images/a.png"},
		{"step overrides service", "images", api.Params{"root": "/blog/2024/"}, "blog/2024/a.png"},
		{"no root", "", nil, "a.png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			src := writeTestFile(t, t.TempDir(), "a.png", "bytes")
			svc := api.Services{api.DefaultStorageService: api.Params{"bucket": "media", "root": tt.svcRoot}}

			out, err := NewUploadAction(env.deps).Run(context.Background(), artifact.NewFile(src), tt.params, svc, nil)
			require.NoError(t, err)
			assert.Equal(t, "https://media.example.com/"+tt.wantKey, out.Value)
			assert.Contains(t, env.storage.objects, tt.wantKey)
		})
	}
}

func TestUpload_Errors(t *testing.T) {
	env := newTestEnv(t)
	action := NewUploadAction(env.deps)
	ctx := context.Background()
	src := writeTestFile(t, t.TempDir(), "a.png", "bytes")

	_, err := action.Run(ctx, artifact.NewURL("https://x/a.png"), nil, testServices(), nil)
	assert.ErrorIs(t, err, api.ErrInvalidInput)

	_, err = action.Run(ctx, artifact.NewFile(src), nil, api.Services{}, nil)
	assert.ErrorIs(t, err, api.ErrMissingCredential)

	_, err = action.Run(ctx, artifact.NewFile(src+".missing"), nil, testServices(), nil)
	assert.ErrorIs(t, err, api.ErrFilesystem)

	env.storage.putErr = errors.Join(api.ErrServiceError, errors.New("connection reset"))
	_, err = action.Run(ctx, artifact.NewFile(src), nil, testServices(), nil)
	assert.ErrorIs(t, err, api.ErrServiceError)
}
