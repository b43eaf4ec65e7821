package core

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/SamuelRCrider/scrub-go/utils"
)

// ErrMalformedFilename is returned when a filename has no date segment at the
// configured position
var ErrMalformedFilename = errors.New("malformed filename")

// OutputPrefix is prepended to the input filename to name its output file
const OutputPrefix = "transformed_"

// Summary describes the outcome of a batch run
type Summary struct {
	RunID          string        `json:"run_id"`
	FilesProcessed int           `json:"files_processed"`
	FilesSkipped   int           `json:"files_skipped"`
	RecordsWritten int           `json:"records_written"`
	LinesSkipped   int           `json:"lines_skipped"`
	Warnings       int           `json:"warnings"`
	OutputFiles    []string      `json:"output_files"`
	Duration       time.Duration `json:"duration_ns"`
}

// Driver runs the scrubbing pipeline over every matching file of a directory
type Driver struct {
	config   Config
	reporter Reporter
	logger   zerolog.Logger
}

// NewDriver validates cfg and builds a driver. A nil reporter logs
// diagnostics through logger.
func NewDriver(cfg Config, reporter Reporter, logger zerolog.Logger) (*Driver, error) {
	cfg = cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if reporter == nil {
		reporter = NewLogReporter(logger)
	}

	return &Driver{
		config:   cfg,
		reporter: reporter,
		logger:   logger,
	}, nil
}

// Config returns the validated configuration of the driver
func (d *Driver) Config() Config {
	return d.config
}

// Run processes all matching input files one at a time. Record and line
// problems are reported and skipped; filesystem failures abort the run.
func (d *Driver) Run() (*Summary, error) {
	start := time.Now()
	summary := &Summary{RunID: uuid.NewString(), OutputFiles: []string{}}

	var audit *AuditLogger
	if d.config.AuditLogPath != "" {
		var err error
		audit, err = NewAuditLogger(d.config.AuditLogPath, d.config.AuditLevel, summary.RunID)
		if err != nil {
			return summary, err
		}
		defer audit.Close()
	}

	counter := &countingReporter{next: MultiReporter{d.reporter, auditReporter(audit)}}

	d.auditEvent(audit, AuditEvent{
		EventType: EventRunStarted,
		Severity:  SeverityInfo,
		Metadata: map[string]string{
			"input_dir":           d.config.InputDir,
			"output_dir":          d.config.OutputDir,
			"file_extension":      d.config.FileExtension,
			"date_field_position": strconv.Itoa(d.config.DateFieldPosition),
		},
	})

	if err := os.MkdirAll(d.config.OutputDir, 0755); err != nil {
		return summary, fmt.Errorf("failed to create output directory: %w", err)
	}

	files, err := d.discoverFiles()
	if err != nil {
		return summary, err
	}

	for _, name := range files {
		path := filepath.Join(d.config.InputDir, name)

		recordDate, err := DateTag(name, d.config.DateFieldPosition)
		if err != nil {
			counter.Report(utils.Diagnostic{
				Kind:    utils.KindMalformedFilename,
				File:    path,
				Message: fmt.Sprintf("Skipping file %s: %v", path, err),
			})
			summary.FilesSkipped++
			continue
		}

		outputPath := filepath.Join(d.config.OutputDir, OutputPrefix+name)
		stats, err := d.processFile(path, outputPath, recordDate, counter)
		if err != nil {
			return summary, err
		}

		summary.FilesProcessed++
		summary.RecordsWritten += stats.written
		summary.LinesSkipped += stats.skipped
		summary.OutputFiles = append(summary.OutputFiles, outputPath)

		d.logger.Debug().
			Str("file", path).
			Str("output", outputPath).
			Str("record_date", recordDate).
			Int("records", stats.written).
			Int("skipped", stats.skipped).
			Msg("File transformed")

		d.auditEvent(audit, AuditEvent{
			EventType: EventFileCompleted,
			Severity:  SeverityInfo,
			File:      path,
			Metadata: map[string]string{
				"output":      outputPath,
				"record_date": recordDate,
				"records":     strconv.Itoa(stats.written),
				"skipped":     strconv.Itoa(stats.skipped),
			},
		})
	}

	summary.Warnings = counter.count
	summary.Duration = time.Since(start)

	d.logger.Info().
		Str("run_id", summary.RunID).
		Int("files_processed", summary.FilesProcessed).
		Int("files_skipped", summary.FilesSkipped).
		Int("records_written", summary.RecordsWritten).
		Int("lines_skipped", summary.LinesSkipped).
		Int("warnings", summary.Warnings).
		Dur("duration", summary.Duration).
		Msg("Transformation completed for all files")

	d.auditEvent(audit, AuditEvent{
		EventType: EventRunCompleted,
		Severity:  SeverityInfo,
		Metadata: map[string]string{
			"files_processed": strconv.Itoa(summary.FilesProcessed),
			"files_skipped":   strconv.Itoa(summary.FilesSkipped),
			"records_written": strconv.Itoa(summary.RecordsWritten),
			"lines_skipped":   strconv.Itoa(summary.LinesSkipped),
			"warnings":        strconv.Itoa(summary.Warnings),
		},
	})

	if audit != nil {
		if err := audit.Err(); err != nil {
			d.logger.Error().Err(err).Msg("Audit trail is incomplete")
		}
	}

	return summary, nil
}

// DateTag returns the dot-separated segment of filename at position
func DateTag(filename string, position int) (string, error) {
	segments := strings.Split(filename, ".")
	if position < 0 || position >= len(segments) {
		return "", fmt.Errorf("%w: %q has %d segments, date expected at index %d",
			ErrMalformedFilename, filename, len(segments), position)
	}

	if segments[position] == "" {
		return "", fmt.Errorf("%w: %q has an empty segment at index %d",
			ErrMalformedFilename, filename, position)
	}

	return segments[position], nil
}

// discoverFiles lists the regular, non-hidden files of the input directory
// ending in .<extension>. A missing directory has no files.
func (d *Driver) discoverFiles() ([]string, error) {
	entries, err := os.ReadDir(d.config.InputDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list input directory: %w", err)
	}

	suffix := "." + d.config.FileExtension

	var files []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, suffix) {
			continue
		}
		files = append(files, name)
	}

	return files, nil
}

type fileStats struct {
	written int
	skipped int
}

// processFile streams inputPath line by line into outputPath. Both files are
// closed on every path out.
func (d *Driver) processFile(inputPath, outputPath, recordDate string, reporter Reporter) (stats fileStats, err error) {
	in, err := os.Open(inputPath)
	if err != nil {
		return stats, fmt.Errorf("failed to open input file: %w", err)
	}
	defer in.Close()

	out, err := os.Create(outputPath)
	if err != nil {
		return stats, fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close output file: %w", closeErr)
		}
	}()

	reader := bufio.NewReader(in)
	writer := bufio.NewWriter(out)

	lineNo := 0
	for {
		line, readErr := reader.ReadBytes('\n')
		if readErr != nil && readErr != io.EOF {
			return stats, fmt.Errorf("failed to read %s: %w", inputPath, readErr)
		}

		if len(line) > 0 {
			lineNo++

			encoded, ok := d.scrubLine(line, lineNo, inputPath, recordDate, reporter)
			if ok {
				if _, err := writer.Write(encoded); err != nil {
					return stats, fmt.Errorf("failed to write %s: %w", outputPath, err)
				}
				if err := writer.WriteByte('\n'); err != nil {
					return stats, fmt.Errorf("failed to write %s: %w", outputPath, err)
				}
				stats.written++
			} else {
				stats.skipped++
			}
		}

		if readErr == io.EOF {
			break
		}
	}

	if err := writer.Flush(); err != nil {
		return stats, fmt.Errorf("failed to write %s: %w", outputPath, err)
	}

	return stats, nil
}

// scrubLine parses and transforms one line. It reports and returns false when
// the line must be skipped.
func (d *Driver) scrubLine(line []byte, lineNo int, path, recordDate string, reporter Reporter) ([]byte, bool) {
	raw := strings.TrimRight(string(line), "\r\n")

	rec, err := ParseRecord(line)
	if err != nil {
		diag := utils.Diagnostic{
			File: path,
			Line: lineNo,
			Raw:  raw,
		}
		if errors.Is(err, ErrNotObject) {
			diag.Kind = utils.KindNotObject
			diag.Message = fmt.Sprintf("Skipping incorrect record in %s: %s", path, raw)
		} else {
			diag.Kind = utils.KindInvalidJSON
			diag.Message = fmt.Sprintf("Error decoding JSON in file %s: %v", path, err)
		}
		reporter.Report(diag)
		return nil, false
	}

	lineReporter := &locatingReporter{next: reporter, file: path, line: lineNo}
	TransformRecord(rec, recordDate, lineReporter)

	encoded, err := rec.Encode()
	if err != nil {
		reporter.Report(utils.Diagnostic{
			Kind:    utils.KindInvalidJSON,
			File:    path,
			Line:    lineNo,
			Message: fmt.Sprintf("Error encoding record in file %s: %v", path, err),
		})
		return nil, false
	}

	return encoded, true
}

func (d *Driver) auditEvent(audit *AuditLogger, event AuditEvent) {
	if audit == nil {
		return
	}
	if err := audit.LogEvent(event); err != nil {
		d.logger.Error().Err(err).Str("event_type", event.EventType).Msg("Failed to write audit event")
	}
}

// auditReporter avoids wrapping a nil *AuditLogger in a non-nil interface
func auditReporter(audit *AuditLogger) Reporter {
	if audit == nil {
		return nil
	}
	return audit
}

// countingReporter counts diagnostics on their way through
type countingReporter struct {
	next  Reporter
	count int
}

func (c *countingReporter) Report(d utils.Diagnostic) {
	c.count++
	c.next.Report(d)
}

// locatingReporter stamps file and line onto record-level diagnostics
type locatingReporter struct {
	next Reporter
	file string
	line int
}

func (l *locatingReporter) Report(d utils.Diagnostic) {
	if d.File == "" {
		d.File = l.file
	}
	if d.Line == 0 {
		d.Line = l.line
	}
	l.next.Report(d)
}
