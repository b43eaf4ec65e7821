package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommandRunsBatch(t *testing.T) {
	root := t.TempDir()
	inputDir := filepath.Join(root, "in")
	outputDir := filepath.Join(root, "out")
	require.NoError(t, os.MkdirAll(inputDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(inputDir, "2021-01-10.txt"),
		[]byte(`{"C_CUSTOMER_ID": "2"}`+"\n"), 0644))

	var logs bytes.Buffer
	cmd := newRootCmd(&logs)
	cmd.SetArgs([]string{"--input-dir", inputDir, "--output-dir", outputDir})
	require.NoError(t, cmd.Execute())

	data, err := os.ReadFile(filepath.Join(outputDir, "transformed_2021-01-10.txt"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"C_CUSTOMER_ID": "2", "record_date": "2021-01-10"}`, string(data))

	assert.Contains(t, logs.String(), "missing email address for record with C_CUSTOMER_ID: 2")
	assert.Contains(t, logs.String(), "Transformation completed for all files")
}

func TestFlagsOverrideConfigFile(t *testing.T) {
	root := t.TempDir()
	configPath := filepath.Join(root, "scrub.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("input_dir: /from/file\nfile_extension: csv\ndate_field_position: 3\n"), 0644))

	cmd := newRootCmd(&bytes.Buffer{})
	require.NoError(t, cmd.ParseFlags([]string{"--config", configPath, "--ext", "json"}))

	opts := &options{}
	opts.configPath, _ = cmd.Flags().GetString("config")
	opts.extension, _ = cmd.Flags().GetString("ext")

	cfg, err := resolveConfig(cmd, opts)
	require.NoError(t, err)
	assert.Equal(t, "/from/file", cfg.InputDir)
	assert.Equal(t, "json", cfg.FileExtension)
	assert.Equal(t, 3, cfg.DateFieldPosition)
}

func TestRootCommandRejectsInvalidFlags(t *testing.T) {
	cmd := newRootCmd(&bytes.Buffer{})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--date-position=-1", "--input-dir", t.TempDir(), "--output-dir", t.TempDir()})

	assert.Error(t, cmd.Execute())
}
