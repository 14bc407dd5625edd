package api

import "time"

const (
	ActionCompress   = "compress"
	ActionResize     = "resize"
	ActionConvert    = "convert"
	ActionUpload     = "upload"
	ActionOverwrite  = "overwrite"
	ActionRename     = "rename"
	ActionClipboard  = "clipboard"
	ActionToMarkdown = "tomarkdown"

	DefaultCompressionService = "tinypng"
	DefaultStorageService     = "s3"
	DefaultWorkflow           = "default"
)

// Document is the workflow configuration file format.
type Document struct {
	Workflows map[string][]StepConfig `yaml:"workflows"`
	Services  Services                `yaml:"services"`
	Retry     *RetryConfig            `yaml:"retry,omitempty"`

	// Set by the loader, not from YAML.
	FilePath string `yaml:"-"`
}

// StepConfig defines a single step within a workflow.
type StepConfig struct {
	Action string `yaml:"action"`
	Name   string `yaml:"name"`
	Params Params `yaml:"params"`
}

// Label returns the display name of the step, falling back to the action.
func (s StepConfig) Label() string {
	if s.Name != "" {
		return s.Name
	}
	return s.Action
}

// RetryConfig controls retries of steps that failed with ErrServiceError.
type RetryConfig struct {
	Attempts uint          `yaml:"attempts"`
	Delay    time.Duration `yaml:"delay"`
	MaxDelay time.Duration `yaml:"max_delay"`
}

// Enabled reports whether more than one attempt is configured.
func (r *RetryConfig) Enabled() bool {
	return r != nil && r.Attempts > 1
}

// Workflow returns the steps registered under alias.
func (d *Document) Workflow(alias string) ([]StepConfig, error) {
	steps, ok := d.Workflows[alias]
	if !ok {
		return nil, configErrorf("workflow %q not found in %s", alias, d.FilePath)
	}
	return steps, nil
}
