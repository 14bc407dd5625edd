package artifact

import (
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"
)

// Kind tags the type of data an Artifact carries.
type Kind string

const (
	FilePath Kind = "filepath"
	URL      Kind = "url"
	Markdown Kind = "markdown"
)

var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".webp": true,
	".avif": true,
}

// Artifact is the unit of data passed between workflow steps.
type Artifact struct {
	Kind  Kind
	Value string
}

func NewFile(p string) Artifact     { return Artifact{Kind: FilePath, Value: p} }
func NewURL(u string) Artifact      { return Artifact{Kind: URL, Value: u} }
func NewMarkdown(m string) Artifact { return Artifact{Kind: Markdown, Value: m} }

func (a Artifact) String() string {
	return fmt.Sprintf("%s:%s", a.Kind, a.Value)
}

// IsFile reports whether the artifact references a local path.
func (a Artifact) IsFile() bool { return a.Kind == FilePath }

// Ext returns the lower-cased extension of the referenced file or URL path.
func (a Artifact) Ext() string {
	switch a.Kind {
	case FilePath:
		return strings.ToLower(filepath.Ext(a.Value))
	case URL:
		u, err := url.Parse(a.Value)
		if err != nil {
			return ""
		}
		return strings.ToLower(path.Ext(u.Path))
	default:
		return ""
	}
}

// Base returns the last element of the referenced file or URL path.
func (a Artifact) Base() string {
	switch a.Kind {
	case FilePath:
		return filepath.Base(a.Value)
	case URL:
		u, err := url.Parse(a.Value)
		if err != nil || u.Path == "" {
			return ""
		}
		return path.Base(u.Path)
	default:
		return ""
	}
}

// IsImage reports whether the artifact is a file or URL with an image extension.
func (a Artifact) IsImage() bool {
	return (a.Kind == FilePath || a.Kind == URL) && imageExtensions[a.Ext()]
}

// IsImageExt reports whether ext, including its leading dot, is a supported image extension.
func IsImageExt(ext string) bool {
	return imageExtensions[strings.ToLower(ext)]
}
