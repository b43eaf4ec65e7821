package core

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is returned when a Config fails validation
var ErrInvalidConfig = errors.New("invalid config")

// AuditLevel defines the verbosity of the audit trail
type AuditLevel string

const (
	// AuditLevelMinimal drops raw content and informational events
	AuditLevelMinimal AuditLevel = "minimal"

	// AuditLevelStandard truncates raw content
	AuditLevelStandard AuditLevel = "standard"

	// AuditLevelVerbose keeps everything
	AuditLevelVerbose AuditLevel = "verbose"
)

const (
	DefaultInputDir      = "./input_data/"
	DefaultOutputDir     = "./output_data/"
	DefaultFileExtension = "txt"
)

// Config describes one batch job
type Config struct {
	// Directory holding the newline-delimited JSON input files
	InputDir string `yaml:"input_dir"`

	// Directory receiving transformed_<name> files, created if missing
	OutputDir string `yaml:"output_dir"`

	// Extension of the files to process, without the dot
	FileExtension string `yaml:"file_extension"`

	// Zero-based index of the date in the dot-separated filename
	DateFieldPosition int `yaml:"date_field_position"`

	// Optional JSONL audit trail, disabled when empty
	AuditLogPath string `yaml:"audit_log_path,omitempty"`

	// Verbosity of the audit trail
	AuditLevel AuditLevel `yaml:"audit_level,omitempty"`
}

// DefaultConfig returns the configuration used when nothing is specified
func DefaultConfig() Config {
	return Config{
		InputDir:          DefaultInputDir,
		OutputDir:         DefaultOutputDir,
		FileExtension:     DefaultFileExtension,
		DateFieldPosition: 0,
		AuditLevel:        AuditLevelStandard,
	}
}

// LoadConfig reads a YAML config file on top of the defaults
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg = cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// Normalize strips a leading dot from the extension and fills in an empty
// audit level
func (c Config) Normalize() Config {
	c.FileExtension = strings.TrimPrefix(strings.TrimSpace(c.FileExtension), ".")
	if c.AuditLevel == "" {
		c.AuditLevel = AuditLevelStandard
	}
	return c
}

// Validate checks that the configuration can drive a batch run
func (c Config) Validate() error {
	if c.InputDir == "" {
		return fmt.Errorf("%w: input_dir is required", ErrInvalidConfig)
	}

	if c.OutputDir == "" {
		return fmt.Errorf("%w: output_dir is required", ErrInvalidConfig)
	}

	if c.FileExtension == "" {
		return fmt.Errorf("%w: file_extension is required", ErrInvalidConfig)
	}

	if strings.ContainsAny(c.FileExtension, `/\*?[]`) {
		return fmt.Errorf("%w: file_extension %q must be a plain extension", ErrInvalidConfig, c.FileExtension)
	}

	if c.DateFieldPosition < 0 {
		return fmt.Errorf("%w: date_field_position must not be negative, got %d", ErrInvalidConfig, c.DateFieldPosition)
	}

	switch c.AuditLevel {
	case AuditLevelMinimal, AuditLevelStandard, AuditLevelVerbose:
	default:
		return fmt.Errorf("%w: unknown audit_level %q", ErrInvalidConfig, c.AuditLevel)
	}

	return nil
}
