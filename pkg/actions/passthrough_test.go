package actions

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/systemstart/imgflow/pkg/api"
	"github.com/systemstart/imgflow/pkg/artifact"
)

func TestClipboard(t *testing.T) {
	env := newTestEnv(t)
	action := NewClipboardAction(env.deps)
	ctx := context.Background()

	file := artifact.NewFile("/tmp/a.png")
	out, err := action.Run(ctx, file, nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, file, out)
	assert.Equal(t, "/tmp/a.png", env.clipboard.file)

	link := artifact.NewURL("https://media.example.com/a.png")
	out, err = action.Run(ctx, link, nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, link, out)
	assert.Equal(t, link.Value, env.clipboard.text)
}

func TestClipboard_Unavailable(t *testing.T) {
	deps := newTestEnv(t).deps
	deps.Clipboard = nil

	_, err := NewClipboardAction(deps).Run(context.Background(), artifact.NewURL("https://x"), nil, nil, nil)
	assert.ErrorIs(t, err, api.ErrServiceError)
}

func TestToMarkdown(t *testing.T) {
	tests := []struct {
		name   string
		in     artifact.Artifact
		params api.Params
		want   string
	}{
		{"url", artifact.NewURL("https://cdn.example.com/a.png"), nil, "![a](https://cdn.example.com/a.png)"},
		{"file with spaces", artifact.NewFile("/tmp/my photo.png"), nil, "![my photo](</tmp/my photo.png>)"},
		{"alt", artifact.NewURL("https://cdn.example.com/a.png"), api.Params{"alt": "Cat"}, "![Cat](https://cdn.example.com/a.png)"},
		{"template", artifact.NewURL("https://cdn.example.com/a.png"), api.Params{"template": `<img src="{{ .URL }}" alt="{{ .Alt | title }}">`}, `<img src="https://cdn.example.com/a.png" alt="A">`},
		{"markdown passthrough", artifact.NewMarkdown("![x](y)"), nil, "![x](y)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := NewMarkdownAction().Run(context.Background(), tt.in, tt.params, nil, nil)
			require.NoError(t, err)
			assert.Equal(t, artifact.Markdown, out.Kind)
			assert.Equal(t, tt.want, out.Value)
		})
	}
}
