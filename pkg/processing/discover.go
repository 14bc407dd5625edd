package processing

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/systemstart/imgflow/pkg/api"
	"github.com/systemstart/imgflow/pkg/artifact"
)

// TextSource supplies text, typically the system clipboard.
type TextSource interface {
	ReadText() (string, error)
}

// DiscoverInputs expands patterns as doublestar globs and returns one file
// artifact per matching regular file. Without patterns, file paths are read
// literally from clip, one per line. Duplicates are dropped, order is preserved.
func DiscoverInputs(patterns []string, clip TextSource) ([]artifact.Artifact, error) {
	var (
		candidates []string
		err        error
	)
	switch {
	case len(patterns) > 0:
		candidates, err = expandPatterns(patterns)
	case clip != nil:
		candidates, err = clipboardPaths(clip)
	}
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var inputs []artifact.Artifact
	for _, c := range candidates {
		abs, err := filepath.Abs(c)
		if err != nil {
			return nil, fmt.Errorf("resolving path %s: %w", c, err)
		}
		if seen[abs] || !isRegularFile(abs) {
			continue
		}
		seen[abs] = true
		inputs = append(inputs, artifact.NewFile(abs))
	}

	if len(inputs) == 0 {
		if len(patterns) == 0 && clip != nil {
			return nil, fmt.Errorf("%w: clipboard contains no existing file paths", api.ErrNoInputFound)
		}
		return nil, fmt.Errorf("%w: no files match %v", api.ErrNoInputFound, patterns)
	}
	return inputs, nil
}

func expandPatterns(patterns []string) ([]string, error) {
	var matches []string
	for _, pattern := range patterns {
		m, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("%w: invalid pattern %q: %v", api.ErrInvalidInput, pattern, err)
		}
		matches = append(matches, m...)
	}
	return matches, nil
}

func clipboardPaths(clip TextSource) ([]string, error) {
	text, err := clip.ReadText()
	if err != nil {
		return nil, fmt.Errorf("reading clipboard: %w", err)
	}

	var paths []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "file://") {
			if u, err := url.Parse(line); err == nil {
				line = u.Path
			}
		}
		paths = append(paths, line)
	}
	return paths, nil
}

func isRegularFile(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.Mode().IsRegular()
}
