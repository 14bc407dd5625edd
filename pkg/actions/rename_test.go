package actions

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/systemstart/imgflow/pkg/api"
	"github.com/systemstart/imgflow/pkg/artifact"
)

func TestRename_YearAndUUID(t *testing.T) {
	env := newTestEnv(t)
	dir := t.TempDir()
	src := writeTestFile(t, dir, "photo.png", "img")
	origin := artifact.NewOrigin(artifact.NewFile(src))

	out, err := NewRenameAction(env.deps).Run(context.Background(), artifact.NewFile(src),
		api.Params{"template": "{yyyy}-{uuid}"}, nil, origin)
	require.NoError(t, err)

	want := filepath.Join(dir, "2024-"+testUUID+".png")
	assert.Equal(t, artifact.NewFile(want), out)
	assert.Equal(t, "img", readTestFile(t, want))
	assert.Equal(t, artifact.NewFile(want), origin.Get(), "renaming the original updates the origin")

	_, err = os.Stat(src)
	assert.True(t, os.IsNotExist(err), "old file must be removed")
}

func TestRename_Templates(t *testing.T) {
	tests := []struct {
		template string
		want     string
	}{
		{"{name}-{yyyy-mm-dd}", "photo-2024-03-05.png"},
		{"{yyyy-mm}/x", ""},
		{"{timestamp}", "1709634600000.png"},
		{`{{ .Name | upper }}-{{ .Now | date "0102" }}`, "PHOTO-0305.png"},
		{"{{ .UUID | trunc 8 }}", "0b7c6f5e.png"},
	}

	for _, tt := range tests {
		t.Run(tt.template, func(t *testing.T) {
			env := newTestEnv(t)
			dir := t.TempDir()
			src := writeTestFile(t, dir, "photo.png", "img")

			out, err := NewRenameAction(env.deps).Run(context.Background(), artifact.NewFile(src),
				api.Params{"template": tt.template}, nil, nil)
			if tt.want == "" {
				assert.ErrorIs(t, err, api.ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, filepath.Join(dir, tt.want), out.Value)
		})
	}
}

func TestRename_NoTemplateKeepsFile(t *testing.T) {
	env := newTestEnv(t)
	src := writeTestFile(t, t.TempDir(), "photo.png", "img")
	in := artifact.NewFile(src)

	out, err := NewRenameAction(env.deps).Run(context.Background(), in, nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, in, out)
	assert.Equal(t, "img", readTestFile(t, src))
}

func TestRename_TargetOrigin(t *testing.T) {
	env := newTestEnv(t)
	dir := t.TempDir()
	orig := writeTestFile(t, dir, "photo.png", "img")
	origin := artifact.NewOrigin(artifact.NewFile(orig))
	in := artifact.NewURL("https://media.example.com/photo.png")

	out, err := NewRenameAction(env.deps).Run(context.Background(), in,
		api.Params{"template": "{name}-done", "target": "origin"}, nil, origin)
	require.NoError(t, err)

	assert.Equal(t, in, out, "input that is not the renamed file passes through")
	assert.Equal(t, artifact.NewFile(filepath.Join(dir, "photo-done.png")), origin.Get())
}

func TestRename_Errors(t *testing.T) {
	env := newTestEnv(t)
	dir := t.TempDir()
	src := writeTestFile(t, dir, "photo.png", "img")
	writeTestFile(t, dir, "taken.png", "other")
	ctx := context.Background()
	action := NewRenameAction(env.deps)

	_, err := action.Run(ctx, artifact.NewURL("https://x/a.png"), api.Params{"template": "x"}, nil, nil)
	assert.ErrorIs(t, err, api.ErrInvalidInput)

	_, err = action.Run(ctx, artifact.NewFile(src), api.Params{"template": "taken"}, nil, nil)
	assert.ErrorIs(t, err, api.ErrFilesystem)
	assert.Equal(t, "img", readTestFile(t, src))

	_, err = action.Run(ctx, artifact.NewFile(src), api.Params{"template": "{{ .Missing"}, nil, nil)
	assert.ErrorIs(t, err, api.ErrInvalidInput)

	_, err = action.Run(ctx, artifact.NewFile(filepath.Join(dir, "gone.png")), api.Params{"template": "x"}, nil, nil)
	assert.ErrorIs(t, err, api.ErrFilesystem)
}
