package core

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SamuelRCrider/scrub-go/utils"
)

func decodeEvents(t *testing.T, data string) []AuditEvent {
	t.Helper()
	var events []AuditEvent
	for _, line := range strings.Split(strings.TrimSpace(data), "\n") {
		if line == "" {
			continue
		}
		var event AuditEvent
		require.NoError(t, json.Unmarshal([]byte(line), &event))
		events = append(events, event)
	}
	return events
}

func TestAuditLevels(t *testing.T) {
	longRaw := strings.Repeat("x", 150)
	diag := utils.Diagnostic{Kind: utils.KindInvalidJSON, File: "f.txt", Line: 3, Raw: longRaw}

	tests := []struct {
		level   AuditLevel
		events  int
		wantRaw string
	}{
		{level: AuditLevelMinimal, events: 2, wantRaw: ""},
		{level: AuditLevelStandard, events: 3, wantRaw: longRaw[:100] + "... [truncated]"},
		{level: AuditLevelVerbose, events: 3, wantRaw: longRaw},
	}

	for _, tt := range tests {
		t.Run(string(tt.level), func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewAuditWriter(&buf, tt.level, "run-1")

			require.NoError(t, logger.LogEvent(AuditEvent{EventType: EventRunStarted, Severity: SeverityInfo}))
			require.NoError(t, logger.LogEvent(AuditEvent{EventType: EventFileCompleted, Severity: SeverityInfo}))
			logger.Report(diag)
			require.NoError(t, logger.Err())

			events := decodeEvents(t, buf.String())
			require.Len(t, events, tt.events)

			last := events[len(events)-1]
			assert.Equal(t, "run-1", last.RunID)
			assert.NotEmpty(t, last.Timestamp)
			assert.Equal(t, EventDiagnostic, last.EventType)
			assert.Equal(t, SeverityWarning, last.Severity)
			require.NotNil(t, last.Diagnostic)
			assert.Equal(t, tt.wantRaw, last.Diagnostic.Raw)
		})
	}
}

func TestAuditReportDoesNotMutateDiagnostic(t *testing.T) {
	var buf bytes.Buffer
	logger := NewAuditWriter(&buf, AuditLevelMinimal, "run-2")
	diag := utils.Diagnostic{Kind: utils.KindNotObject, Raw: "[1]"}

	logger.Report(diag)

	assert.Equal(t, "[1]", diag.Raw)
}

func TestNewAuditLoggerAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "audit.jsonl")

	for i := 0; i < 2; i++ {
		logger, err := NewAuditLogger(path, AuditLevelVerbose, "run")
		require.NoError(t, err)
		require.NoError(t, logger.LogEvent(AuditEvent{EventType: EventRunCompleted, Severity: SeverityInfo}))
		require.NoError(t, logger.Close())
	}

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Len(t, decodeEvents(t, string(data)), 2)
}
