package scrub

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/SamuelRCrider/scrub-go/core"
	"github.com/SamuelRCrider/scrub-go/utils"
)

// Run scrubs every matching file described by cfg, logging diagnostics to stderr
func Run(cfg core.Config) (*core.Summary, error) {
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()
	return RunWithReporter(cfg, nil, logger)
}

// RunWithReporter runs the batch with a caller-supplied diagnostic sink
func RunWithReporter(cfg core.Config, reporter core.Reporter, logger zerolog.Logger) (*core.Summary, error) {
	driver, err := core.NewDriver(cfg, reporter, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to configure batch: %w", err)
	}

	summary, err := driver.Run()
	if err != nil {
		return summary, fmt.Errorf("batch run failed: %w", err)
	}

	return summary, nil
}

// RunWithConfigFile loads a YAML config and runs the batch it describes
func RunWithConfigFile(path string) (*core.Summary, error) {
	cfg, err := core.LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return Run(cfg)
}

// ScrubLine transforms a single JSON line as the batch would, returning the
// encoded record and any warnings raised for it
func ScrubLine(line string, recordDate string) (string, []utils.Diagnostic, error) {
	rec, err := core.ParseRecord([]byte(line))
	if err != nil {
		return "", nil, err
	}

	recorder := core.NewRecorder()
	core.TransformRecord(rec, recordDate, recorder)

	encoded, err := rec.Encode()
	if err != nil {
		return "", nil, err
	}

	return string(encoded), recorder.Diagnostics(), nil
}
