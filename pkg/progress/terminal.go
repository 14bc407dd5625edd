package progress

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/mattn/go-isatty"
)

// Terminal writes reports to an output stream. Writes are serialized so that
// concurrent runs can share one terminal.
type Terminal struct {
	mu       sync.Mutex
	w        io.Writer
	renderer *glamour.TermRenderer
}

// NewTerminal creates a terminal sink writing to w. Reports are rendered with
// glamour when w is a TTY and plain is false; otherwise raw markdown is written.
func NewTerminal(w io.Writer, plain bool) *Terminal {
	t := &Terminal{w: w}
	if plain || !isTerminal(w) {
		return t
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		slog.Warn("markdown rendering unavailable", "error", err)
		return t
	}
	t.renderer = renderer
	return t
}

// Write renders report and writes it. It satisfies Sink via method value.
func (t *Terminal) Write(report string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := report
	if t.renderer != nil {
		rendered, err := t.renderer.Render(report)
		if err != nil {
			slog.Debug("rendering progress report", "error", err)
		} else {
			out = rendered
		}
	}
	if _, err := fmt.Fprintln(t.w, out); err != nil {
		slog.Debug("writing progress report", "error", err)
	}
}

// Sink returns t as a Sink.
func (t *Terminal) Sink() Sink {
	return t.Write
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
