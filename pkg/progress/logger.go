package progress

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

// Status is the state of a stage or of a single log entry.
type Status string

const (
	Todo    Status = "todo"
	Success Status = "success"
	Fail    Status = "fail"
	Info    Status = "info"
	Warn    Status = "warn"
)

// Entry is a single message logged against a stage.
type Entry struct {
	Message string
	Status  Status
}

// Stage tracks the progress of one workflow step.
type Stage struct {
	Name   string
	Status Status
	Logs   []Entry
}

func (s Stage) finished() bool {
	return s.Status == Success || s.Status == Fail
}

// Sink receives the complete progress report after every change.
type Sink func(report string)

// Logger records per-stage progress of a single workflow run and pushes a
// freshly rendered markdown report to its sink on every mutation.
type Logger struct {
	mu     sync.Mutex
	title  string
	stages []Stage
	sink   Sink
	log    *slog.Logger
}

// Option configures a Logger.
type Option func(*Logger)

// WithTitle sets the heading shown above the stage list.
func WithTitle(title string) Option {
	return func(l *Logger) { l.title = title }
}

// WithSlog mirrors entries to the given structured logger instead of the default one.
func WithSlog(log *slog.Logger) Option {
	return func(l *Logger) { l.log = log }
}

// New creates a logger with one todo stage per name.
func New(names []string, sink Sink, opts ...Option) *Logger {
	l := &Logger{
		stages: make([]Stage, len(names)),
		sink:   sink,
		log:    slog.Default(),
	}
	for i, name := range names {
		l.stages[i] = Stage{Name: name, Status: Todo}
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Log appends message to the named stage and sets its status.
func (l *Logger) Log(name, message string, status Status) {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.stageIndex(name)
	if i < 0 {
		l.log.Warn("progress for unknown stage", "stage", name, "message", message)
		return
	}
	l.stages[i].Status = status
	l.stages[i].Logs = append(l.stages[i].Logs, Entry{Message: message, Status: status})
	l.mirror(name, message, status)
	l.publish()
}

// Finish marks the named stage successful with a final message.
func (l *Logger) Finish(name, message string) {
	l.Log(name, message, Success)
}

// Stages returns a copy of the current stage state.
func (l *Logger) Stages() []Stage {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Stage, len(l.stages))
	for i, s := range l.stages {
		s.Logs = append([]Entry(nil), s.Logs...)
		out[i] = s
	}
	return out
}

// Report renders the current state as markdown.
func (l *Logger) Report() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.render()
}

// stageIndex returns the first unfinished stage called name, falling back to
// the last stage of that name.
func (l *Logger) stageIndex(name string) int {
	last := -1
	for i, s := range l.stages {
		if s.Name != name {
			continue
		}
		if !s.finished() {
			return i
		}
		last = i
	}
	return last
}

func (l *Logger) mirror(name, message string, status Status) {
	switch status {
	case Fail:
		l.log.Error(message, "stage", name)
	case Warn:
		l.log.Warn(message, "stage", name)
	case Success:
		l.log.Info(message, "stage", name)
	default:
		l.log.Debug(message, "stage", name)
	}
}

func (l *Logger) publish() {
	if l.sink == nil {
		return
	}
	l.sink(l.render())
}

func (l *Logger) head() string {
	done := true
	for _, s := range l.stages {
		if s.Status == Fail {
			return "some failed"
		}
		if s.Status != Success {
			done = false
		}
	}
	if done {
		return "all completed"
	}
	return "in progress"
}

func (l *Logger) render() string {
	var b strings.Builder
	if l.title != "" {
		fmt.Fprintf(&b, "## %s\n\n", l.title)
	}
	fmt.Fprintf(&b, "**%s**\n\n", l.head())
	for _, s := range l.stages {
		fmt.Fprintf(&b, "- %s **%s**\n", symbol(s.Status), s.Name)
		for _, e := range s.Logs {
			fmt.Fprintf(&b, "  - %s %s\n", symbol(e.Status), e.Message)
		}
	}
	return b.String()
}

func symbol(s Status) string {
	switch s {
	case Success:
		return "✅"
	case Fail:
		return "❌"
	case Warn:
		return "⚠️"
	case Info:
		return "ℹ️"
	default:
		return "⏳"
	}
}
