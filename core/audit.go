package core

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/SamuelRCrider/scrub-go/utils"
)

// AuditSeverity defines the severity of audit events
type AuditSeverity string

const (
	// SeverityInfo for normal operations
	SeverityInfo AuditSeverity = "info"

	// SeverityWarning for skipped or incomplete data
	SeverityWarning AuditSeverity = "warning"
)

// Audit event types
const (
	EventRunStarted    = "run_started"
	EventDiagnostic    = "diagnostic"
	EventFileCompleted = "file_completed"
	EventRunCompleted  = "run_completed"
)

const auditContentLimit = 100

// AuditEvent is one line of the JSONL audit trail
type AuditEvent struct {
	RunID     string        `json:"run_id"`
	Timestamp string        `json:"timestamp"`
	EventType string        `json:"event_type"`
	Severity  AuditSeverity `json:"severity"`

	File       string            `json:"file,omitempty"`
	Diagnostic *utils.Diagnostic `json:"diagnostic,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// AuditLogger appends audit events for a single run to a JSONL file
type AuditLogger struct {
	mu     sync.Mutex
	runID  string
	level  AuditLevel
	writer io.Writer
	closer io.Closer
	err    error
}

// NewAuditLogger opens (or creates) the audit file at path for appending
func NewAuditLogger(path string, level AuditLevel, runID string) (*AuditLogger, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create audit log directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit log: %w", err)
	}

	return &AuditLogger{
		runID:  runID,
		level:  level,
		writer: f,
		closer: f,
	}, nil
}

// NewAuditWriter builds an audit logger on an arbitrary writer
func NewAuditWriter(w io.Writer, level AuditLevel, runID string) *AuditLogger {
	return &AuditLogger{runID: runID, level: level, writer: w}
}

// LogEvent writes one event, applying the level filter
func (l *AuditLogger) LogEvent(event AuditEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.level == AuditLevelMinimal && event.Severity == SeverityInfo &&
		event.EventType != EventRunStarted && event.EventType != EventRunCompleted {
		return nil
	}

	if event.RunID == "" {
		event.RunID = l.runID
	}
	if event.Timestamp == "" {
		event.Timestamp = time.Now().UTC().Format(time.RFC3339Nano)
	}

	if event.Diagnostic != nil {
		d := *event.Diagnostic
		switch l.level {
		case AuditLevelMinimal:
			d.Raw = ""
		case AuditLevelStandard:
			if len(d.Raw) > auditContentLimit {
				d.Raw = d.Raw[:auditContentLimit] + "... [truncated]"
			}
		}
		event.Diagnostic = &d
	}

	entry, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal audit event: %w", err)
	}

	if _, err := fmt.Fprintln(l.writer, string(entry)); err != nil {
		return fmt.Errorf("failed to write audit event: %w", err)
	}

	return nil
}

// Report records a diagnostic as a warning event. Write failures are kept
// and returned by Err.
func (l *AuditLogger) Report(d utils.Diagnostic) {
	err := l.LogEvent(AuditEvent{
		EventType:  EventDiagnostic,
		Severity:   SeverityWarning,
		File:       d.File,
		Diagnostic: &d,
	})
	if err != nil {
		l.mu.Lock()
		if l.err == nil {
			l.err = err
		}
		l.mu.Unlock()
	}
}

// Err returns the first write failure seen by Report
func (l *AuditLogger) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}

// Close closes the underlying file, if the logger owns one
func (l *AuditLogger) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}
