package actions

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/systemstart/imgflow/pkg/api"
	"github.com/systemstart/imgflow/pkg/artifact"
)

type markdownAction struct{}

// NewMarkdownAction creates the tomarkdown action, which renders the input
// as a markdown image link.
func NewMarkdownAction() Action {
	return &markdownAction{}
}

func (a *markdownAction) Name() string { return api.ActionToMarkdown }

type markdownData struct {
	URL  string
	Alt  string
	Name string
}

func (a *markdownAction) Run(_ context.Context, in artifact.Artifact, params api.Params, _ api.Services, _ *artifact.Origin) (artifact.Artifact, error) {
	if in.Kind == artifact.Markdown {
		return in, nil
	}

	name := in.Base()
	data := markdownData{
		URL:  in.Value,
		Name: name,
		Alt:  params.String("alt"),
	}
	if data.Alt == "" {
		data.Alt = strings.TrimSuffix(name, path.Ext(name))
	}

	tmpl := params.String("template")
	if tmpl == "" {
		return artifact.NewMarkdown(fmt.Sprintf("![%s](%s)", data.Alt, markdownURL(data.URL))), nil
	}

	t, err := template.New(a.Name()).Funcs(sprig.FuncMap()).Parse(tmpl)
	if err != nil {
		return artifact.Artifact{}, fmt.Errorf("%w: parsing markdown template: %v", api.ErrInvalidInput, err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return artifact.Artifact{}, fmt.Errorf("%w: executing markdown template: %v", api.ErrInvalidInput, err)
	}
	return artifact.NewMarkdown(buf.String()), nil
}

// markdownURL wraps destinations containing spaces in angle brackets.
func markdownURL(u string) string {
	if strings.ContainsAny(u, " ()") {
		return "<" + u + ">"
	}
	return u
}
