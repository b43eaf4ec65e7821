package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/SamuelRCrider/scrub-go/core"
	"github.com/SamuelRCrider/scrub-go/mcpserver"
)

type options struct {
	configPath   string
	inputDir     string
	outputDir    string
	extension    string
	datePosition int
	auditLog     string
	auditLevel   string
	logLevel     string
}

func main() {
	if err := newRootCmd(os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(logOut io.Writer) *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "scrub",
		Short: "Strip PII from newline-delimited JSON customer files",
		Long: `scrub reads every <input-dir>/*.<ext> file, removes first name, last name and
email address from each record, adds the email domain and the date taken from
the filename, and writes transformed_<name> files to the output directory.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := setupLogging(logOut, opts.logLevel)

			cfg, err := resolveConfig(cmd, opts)
			if err != nil {
				return err
			}

			driver, err := core.NewDriver(cfg, nil, logger)
			if err != nil {
				return err
			}

			if _, err := driver.Run(); err != nil {
				logger.Error().Err(err).Msg("Transformation aborted")
				return err
			}
			return nil
		},
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve scrub_record and scrub_batch as MCP tools on stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := setupLogging(logOut, opts.logLevel)

			cfg, err := resolveConfig(cmd, opts)
			if err != nil {
				return err
			}

			srv := mcpserver.New(mcpserver.Deps{BaseConfig: cfg, Logger: logger})
			if err := srv.ServeStdio(); err != nil {
				return fmt.Errorf("MCP server stopped: %w", err)
			}
			return nil
		},
	}

	defaults := core.DefaultConfig()
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "YAML config file")
	flags.StringVar(&opts.inputDir, "input-dir", defaults.InputDir, "directory holding the input files")
	flags.StringVar(&opts.outputDir, "output-dir", defaults.OutputDir, "directory receiving transformed files")
	flags.StringVar(&opts.extension, "ext", defaults.FileExtension, "extension of the files to process")
	flags.IntVar(&opts.datePosition, "date-position", defaults.DateFieldPosition, "zero-based index of the date in the dot-separated filename")
	flags.StringVar(&opts.auditLog, "audit-log", "", "append a JSONL audit trail to this file")
	flags.StringVar(&opts.auditLevel, "audit-level", string(defaults.AuditLevel), "audit verbosity: minimal, standard or verbose")
	flags.StringVar(&opts.logLevel, "log-level", "info", "log level")

	rootCmd.AddCommand(serveCmd)
	return rootCmd
}

// resolveConfig starts from the config file (or defaults) and applies the
// flags the user actually set
func resolveConfig(cmd *cobra.Command, opts *options) (core.Config, error) {
	cfg := core.DefaultConfig()
	if opts.configPath != "" {
		loaded, err := core.LoadConfig(opts.configPath)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("input-dir") {
		cfg.InputDir = opts.inputDir
	}
	if flags.Changed("output-dir") {
		cfg.OutputDir = opts.outputDir
	}
	if flags.Changed("ext") {
		cfg.FileExtension = opts.extension
	}
	if flags.Changed("date-position") {
		cfg.DateFieldPosition = opts.datePosition
	}
	if flags.Changed("audit-log") {
		cfg.AuditLogPath = opts.auditLog
	}
	if flags.Changed("audit-level") {
		cfg.AuditLevel = core.AuditLevel(opts.auditLevel)
	}

	cfg = cfg.Normalize()
	return cfg, cfg.Validate()
}

// setupLogging configures a console logger on out
func setupLogging(out io.Writer, level string) zerolog.Logger {
	logLevel, err := zerolog.ParseLevel(level)
	if err != nil || logLevel == zerolog.NoLevel {
		logLevel = zerolog.InfoLevel
	}

	return zerolog.New(zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.RFC3339,
	}).Level(logLevel).With().Timestamp().Logger()
}
