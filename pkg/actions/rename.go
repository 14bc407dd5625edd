package actions

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/template"
	"time"

	"github.com/Masterminds/sprig/v3"
	"github.com/systemstart/imgflow/pkg/api"
	"github.com/systemstart/imgflow/pkg/artifact"
)

const renameTargetOrigin = "origin"

type renameAction struct {
	deps Dependencies
}

// NewRenameAction creates the rename action. The template accepts {name},
// {uuid}, {timestamp}, {yyyy}, {yyyy-mm} and {yyyy-mm-dd} placeholders as
// well as text/template syntax with sprig functions. The extension is kept.
func NewRenameAction(deps Dependencies) Action {
	return &renameAction{deps: deps}
}

func (a *renameAction) Name() string { return api.ActionRename }

func (a *renameAction) Run(ctx context.Context, in artifact.Artifact, params api.Params, _ api.Services, origin *artifact.Origin) (artifact.Artifact, error) {
	src := in
	if params.String("target") == renameTargetOrigin {
		if origin == nil {
			return artifact.Artifact{}, fmt.Errorf("%w: rename target origin without an origin", api.ErrInvalidInput)
		}
		src = origin.Get()
	}
	if !src.IsFile() {
		return artifact.Artifact{}, fmt.Errorf("%w: rename requires a file, got %s", api.ErrInvalidInput, src)
	}

	tmpl := params.String("template")
	if tmpl == "" {
		Notify(ctx, "no template configured, keeping "+filepath.Base(src.Value))
		return in, nil
	}

	if _, err := os.Stat(src.Value); err != nil {
		return artifact.Artifact{}, fmt.Errorf("%w: stat %s: %v", api.ErrFilesystem, src.Value, err)
	}

	name, err := renderFileName(tmpl, src.Value, a.deps.Now(), a.deps.NewID())
	if err != nil {
		return artifact.Artifact{}, err
	}
	dst := filepath.Join(filepath.Dir(src.Value), name+filepath.Ext(src.Value))

	if samePath(src.Value, dst) {
		return in, nil
	}
	if _, err := os.Stat(dst); err == nil {
		return artifact.Artifact{}, fmt.Errorf("%w: %s already exists", api.ErrFilesystem, dst)
	}

	if err := moveFile(src.Value, dst); err != nil {
		return artifact.Artifact{}, err
	}
	Notify(ctx, fmt.Sprintf("renamed %s to %s", filepath.Base(src.Value), filepath.Base(dst)))

	renamed := artifact.NewFile(dst)
	if origin != nil && samePath(origin.Get().Value, src.Value) {
		origin.Set(renamed)
	}
	if in.IsFile() && samePath(in.Value, src.Value) {
		return renamed, nil
	}
	return in, nil
}

type fileNameData struct {
	Name      string
	UUID      string
	Timestamp int64
	Now       time.Time
}

func renderFileName(tmpl, path string, now time.Time, id string) (string, error) {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	data := fileNameData{Name: stem, UUID: id, Timestamp: now.UnixMilli(), Now: now}

	name := tmpl
	if strings.Contains(tmpl, "{{") {
		t, err := template.New("rename").Funcs(sprig.FuncMap()).Parse(tmpl)
		if err != nil {
			return "", fmt.Errorf("%w: parsing rename template: %v", api.ErrInvalidInput, err)
		}
		var buf bytes.Buffer
		if err := t.Execute(&buf, data); err != nil {
			return "", fmt.Errorf("%w: executing rename template: %v", api.ErrInvalidInput, err)
		}
		name = buf.String()
	}

	name = strings.NewReplacer(
		"{name}", stem,
		"{uuid}", id,
		"{timestamp}", strconv.FormatInt(data.Timestamp, 10),
		"{yyyy-mm-dd}", now.Format("2006-01-02"),
		"{yyyy-mm}", now.Format("2006-01"),
		"{yyyy}", now.Format("2006"),
	).Replace(name)

	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == ".." || strings.ContainsRune(name, filepath.Separator) || strings.ContainsRune(name, '/') {
		return "", fmt.Errorf("%w: rename template produced invalid file name %q", api.ErrInvalidInput, name)
	}
	return name, nil
}
