package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

var documentExtensions = map[string]bool{
	".yaml": true,
	".yml":  true,
	".json": true,
}

// LoadDocument reads a workflow document, expands environment references in
// service values and validates it. All failures wrap ErrConfiguration.
func LoadDocument(filename string) (*Document, error) {
	if _, err := os.Stat(filename); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, configErrorf("workflow document %s does not exist", filename)
		}
		return nil, configErrorf("checking workflow document: %v", err)
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if !documentExtensions[ext] {
		return nil, configErrorf("workflow document %s: unsupported extension %q", filename, ext)
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, configErrorf("reading workflow document: %v", err)
	}

	d, err := ParseDocument(data)
	if err != nil {
		return nil, err
	}

	absPath, err := filepath.Abs(filename)
	if err != nil {
		return nil, configErrorf("resolving absolute path: %v", err)
	}
	d.FilePath = absPath

	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("validating workflow document %s: %w", filename, err)
	}

	return d, nil
}

// ParseDocument decodes a YAML or JSON workflow document without validating it.
func ParseDocument(data []byte) (*Document, error) {
	var d Document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&d); err != nil && !errors.Is(err, io.EOF) {
		return nil, configErrorf("parsing workflow document: %v", err)
	}

	for _, svc := range d.Services {
		expandEnv(svc)
	}

	return &d, nil
}
