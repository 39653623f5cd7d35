package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hibare/dbkeeper/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedHandler(out, errs *bytes.Buffer, level slog.Level) *Handler {
	h := NewHandler(Options{Level: level, Output: out, Errors: errs})
	h.now = func() time.Time { return time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC) }
	return h
}

func TestHandler_LineFormat(t *testing.T) {
	var out, errs bytes.Buffer
	logger := slog.New(fixedHandler(&out, &errs, slog.LevelInfo))

	logger.Info("Snapshot created")
	logger.Info("Upload finished", "target", "yandex-disk", "status", 201)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasSuffix(lines[0], " [INFO] Snapshot created"), lines[0])
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2} \[INFO\] Upload finished \{.*\}$`, lines[1])
	assert.Contains(t, lines[1], `"target":"yandex-disk"`)
	assert.Contains(t, lines[1], `"status":201`)
	assert.Empty(t, errs.String())
}

func TestHandler_ErrorsGoToBothSinks(t *testing.T) {
	var out, errs bytes.Buffer
	logger := slog.New(fixedHandler(&out, &errs, slog.LevelInfo))

	logger.Error("Upload failed", "error", errors.New("boom"))

	assert.Contains(t, errs.String(), `[ERROR] Upload failed {"error":"boom"}`)
	assert.Contains(t, out.String(), `[ERROR] Upload failed {"error":"boom"}`)
}

func TestHandler_LevelFilter(t *testing.T) {
	var out, errs bytes.Buffer
	logger := slog.New(fixedHandler(&out, &errs, slog.LevelWarn))

	logger.Debug("hidden")
	logger.Info("hidden")
	logger.Warn("shown")

	assert.NotContains(t, out.String(), "hidden")
	assert.Contains(t, out.String(), "[WARN] shown")
}

func TestHandler_WithAttrsAndGroup(t *testing.T) {
	var out, errs bytes.Buffer
	logger := slog.New(fixedHandler(&out, &errs, slog.LevelInfo)).
		With("run", "r1").
		WithGroup("upload")

	logger.Info("done", "target", "s3", "took", 2*time.Second)

	line := out.String()
	assert.Contains(t, line, `"run":"r1"`)
	assert.Contains(t, line, `"upload.target":"s3"`)
	assert.Contains(t, line, `"upload.took":"2s"`)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelError, ParseLevel("ERROR"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("nonsense"))
}

func TestSetup_CreatesLogFiles(t *testing.T) {
	previous := slog.Default()
	t.Cleanup(func() { slog.SetDefault(previous) })

	dir := filepath.Join(t.TempDir(), "logs")
	closeLogs, err := Setup(config.LoggerConfig{Dir: dir, Level: "info", MaxSizeMB: 1}, nil)
	require.NoError(t, err)

	slog.Info("hello")
	slog.Error("broken", "file", "backup-1.db")
	require.NoError(t, closeLogs())

	output, err := os.ReadFile(filepath.Join(dir, "output.log"))
	require.NoError(t, err)
	assert.Contains(t, string(output), "[INFO] hello")
	assert.Contains(t, string(output), "[ERROR] broken")

	errorsLog, err := os.ReadFile(filepath.Join(dir, "errors.log"))
	require.NoError(t, err)
	assert.NotContains(t, string(errorsLog), "hello")
	assert.Contains(t, string(errorsLog), `[ERROR] broken {"file":"backup-1.db"}`)
}
