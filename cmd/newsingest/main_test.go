package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `[{"id":"a1","title":"T","description":"D","url":"http://x","publication_date":"2024-01-01T00:00:00Z","source_name":"S","category":["tech"],"relevance_score":0.5,"latitude":10.0,"longitude":20.0}]`

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := rootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), errOut.String(), err
}

func sqliteArgs(t *testing.T) (dsn, dataDir string) {
	t.Helper()
	root := t.TempDir()
	dataDir = filepath.Join(root, "data")
	require.NoError(t, os.Mkdir(dataDir, 0o755))
	return filepath.Join(root, "news.db"), dataDir
}

func TestIngestThenCount(t *testing.T) {
	dsn, dir := sqliteArgs(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.json"), []byte(sample), 0o644))

	out, _, err := execute(t, "ingest", "--storage", "sqlite", "--dsn", dsn, "--data-dir", dir, "--log-level", "error")
	require.NoError(t, err)
	assert.Equal(t, "attempted=1 inserted=1 total_rows=1 files_ok=1 files_failed=0\n", out)

	out, _, err = execute(t, "ingest", "--storage", "sqlite", "--dsn", dsn, "--data-dir", dir, "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "inserted=0 total_rows=1")

	out, _, err = execute(t, "count", "--storage", "sqlite", "--dsn", dsn, "--log-level", "error")
	require.NoError(t, err)
	assert.Equal(t, "1\n", out)
}

func TestIngest_MissingDataDirFails(t *testing.T) {
	dsn, dir := sqliteArgs(t)
	_, _, err := execute(t, "ingest", "--storage", "sqlite", "--dsn", dsn,
		"--data-dir", filepath.Join(dir, "missing"), "--log-level", "error")
	require.Error(t, err)
}

func TestIngest_JSONLogs(t *testing.T) {
	dsn, dir := sqliteArgs(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.json"), []byte(sample), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.json"), []byte("{broken"), 0o644))

	_, logs, err := execute(t, "ingest", "--storage", "sqlite", "--dsn", dsn, "--data-dir", dir, "--log-format", "json")
	require.NoError(t, err)
	assert.Contains(t, logs, `"msg":"ingestion complete"`)
	assert.Contains(t, logs, `"msg":"error processing file"`)
	assert.Contains(t, logs, `"file":"b.json"`)
}

func TestValidate(t *testing.T) {
	dsn, dir := sqliteArgs(t)

	out, _, err := execute(t, "validate", "--storage", "sqlite", "--dsn", dsn)
	require.NoError(t, err)
	assert.Contains(t, out, "configuration is valid")

	cfgPath := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("retry:\n  max_attempts: 0\nmetrics:\n  backend: carrier-pigeon\n"), 0o644))
	_, errOut, err := execute(t, "validate", "--config", cfgPath, "--storage", "sqlite", "--dsn", dsn)
	require.ErrorIs(t, err, errInvalidConfig)
	assert.Contains(t, errOut, "error: retry.max_attempts")
	assert.Contains(t, errOut, "error: metrics.backend")
}

func TestBadLogFlags(t *testing.T) {
	_, _, err := execute(t, "validate", "--log-level", "loud")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "invalid log level"))

	_, _, err = execute(t, "validate", "--log-format", "xml")
	require.Error(t, err)
}
