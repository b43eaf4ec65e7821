package core

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/SamuelRCrider/scrub-go/utils"
)

// Reporter receives non-fatal diagnostics raised while scrubbing
type Reporter interface {
	Report(d utils.Diagnostic)
}

// LogReporter writes diagnostics as structured warnings
type LogReporter struct {
	logger zerolog.Logger
}

// NewLogReporter creates a reporter on top of a zerolog logger
func NewLogReporter(logger zerolog.Logger) *LogReporter {
	return &LogReporter{logger: logger}
}

// Report logs the diagnostic at warn level
func (l *LogReporter) Report(d utils.Diagnostic) {
	event := l.logger.Warn().Str("kind", string(d.Kind))
	if d.File != "" {
		event = event.Str("file", d.File)
	}
	if d.Line > 0 {
		event = event.Int("line", d.Line)
	}
	if d.CustomerID != "" {
		event = event.Str("customer_id", d.CustomerID)
	}
	if d.Raw != "" {
		event = event.Str("raw", d.Raw)
	}
	event.Msg(d.Message)
}

// Recorder keeps diagnostics in memory
type Recorder struct {
	mu          sync.Mutex
	diagnostics []utils.Diagnostic
}

// NewRecorder creates an empty recorder
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Report appends the diagnostic
func (r *Recorder) Report(d utils.Diagnostic) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.diagnostics = append(r.diagnostics, d)
}

// Diagnostics returns a copy of everything recorded so far
func (r *Recorder) Diagnostics() []utils.Diagnostic {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]utils.Diagnostic, len(r.diagnostics))
	copy(out, r.diagnostics)
	return out
}

// OfKind returns the recorded diagnostics of one kind
func (r *Recorder) OfKind(kind utils.DiagnosticKind) []utils.Diagnostic {
	var out []utils.Diagnostic
	for _, d := range r.Diagnostics() {
		if d.Kind == kind {
			out = append(out, d)
		}
	}
	return out
}

// MultiReporter fans a diagnostic out to several reporters
type MultiReporter []Reporter

// Report forwards to every non-nil reporter
func (m MultiReporter) Report(d utils.Diagnostic) {
	for _, r := range m {
		if r != nil {
			r.Report(d)
		}
	}
}

type nopReporter struct{}

func (nopReporter) Report(utils.Diagnostic) {}
