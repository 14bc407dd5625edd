package services

import (
	"bytes"
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/systemstart/imgflow/pkg/api"
)

// Clipboard is the system clipboard.
type Clipboard interface {
	WriteText(text string) error
	// WriteFile places a file reference on the clipboard.
	WriteFile(path string) error
	ReadText() (string, error)
}

// SystemClipboard uses the platform clipboard. File references are only
// supported on macOS; elsewhere the path is copied as text.
type SystemClipboard struct{}

func (SystemClipboard) WriteText(text string) error {
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("%w: writing clipboard: %v", api.ErrServiceError, err)
	}
	return nil
}

func (c SystemClipboard) WriteFile(path string) error {
	if runtime.GOOS != "darwin" {
		return c.WriteText(path)
	}

	script := fmt.Sprintf(`set the clipboard to (POSIX file %q)`, path)
	cmd := exec.Command("osascript", "-e", script)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%w: copying file to clipboard: %v\nstderr: %s", api.ErrServiceError, err, stderr.String())
	}
	return nil
}

func (SystemClipboard) ReadText() (string, error) {
	text, err := clipboard.ReadAll()
	if err != nil {
		return "", fmt.Errorf("%w: reading clipboard: %v", api.ErrServiceError, err)
	}
	return strings.TrimSpace(text), nil
}
