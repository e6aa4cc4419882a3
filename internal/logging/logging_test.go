package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/HansKimDWR/MetSim/internal/config"
	mserr "github.com/HansKimDWR/MetSim/internal/errors"
	"github.com/HansKimDWR/MetSim/internal/testutil"
)

func settings(level config.LogLevel, format config.LogFormat, file string) *config.Config {
	cfg := config.Default()
	cfg.Logging.Level = level
	cfg.Logging.Format = format
	cfg.Logging.File = file
	return cfg
}

func TestNewFromConfig_Levels(t *testing.T) {
	tests := []struct {
		level   config.LogLevel
		enabled []slog.Level
		muted   []slog.Level
	}{
		{config.LogLevelDebug, []slog.Level{slog.LevelDebug, slog.LevelInfo}, nil},
		{config.LogLevelInfo, []slog.Level{slog.LevelInfo, slog.LevelWarn}, []slog.Level{slog.LevelDebug}},
		{config.LogLevelWarn, []slog.Level{slog.LevelWarn, slog.LevelError}, []slog.Level{slog.LevelInfo}},
		{config.LogLevelError, []slog.Level{slog.LevelError}, []slog.Level{slog.LevelWarn}},
		{"", []slog.Level{slog.LevelWarn}, []slog.Level{slog.LevelInfo}},
	}

	for _, tt := range tests {
		t.Run(string(tt.level), func(t *testing.T) {
			logger, closer, err := NewFromConfig(settings(tt.level, config.LogFormatText, ""), t.TempDir(), &bytes.Buffer{})
			if err != nil {
				t.Fatalf("NewFromConfig failed: %v", err)
			}
			if closer != nil {
				t.Error("no closer expected without a log file")
			}
			for _, l := range tt.enabled {
				if !logger.Enabled(t.Context(), l) {
					t.Errorf("level %s should be enabled", l)
				}
			}
			for _, l := range tt.muted {
				if logger.Enabled(t.Context(), l) {
					t.Errorf("level %s should be muted", l)
				}
			}
		})
	}
}

func TestNewFromConfig_Formats(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		logger, _, err := NewFromConfig(settings(config.LogLevelDebug, config.LogFormatJSON, ""), "", &buf)
		testutil.RequireNoError(t, err)

		logger.Debug("loaded run config", "time_step", 30, "format", "yaml")

		var rec map[string]any
		if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
			t.Fatalf("record is not JSON: %v (%s)", err, buf.String())
		}
		if rec["msg"] != "loaded run config" || rec["format"] != "yaml" || rec["time_step"] != float64(30) {
			t.Errorf("unexpected record: %v", rec)
		}
	})

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		logger, _, err := NewFromConfig(settings(config.LogLevelDebug, config.LogFormatText, ""), "", &buf)
		testutil.RequireNoError(t, err)

		logger.Debug("preflight check passed", "field", "domain")

		out := buf.String()
		if !strings.Contains(out, `msg="preflight check passed"`) || !strings.Contains(out, "field=domain") {
			t.Errorf("unexpected text record: %s", out)
		}
	})
}

func TestNewFromConfig_TeesToFile(t *testing.T) {
	dir := t.TempDir()
	cfg := settings(config.LogLevelInfo, config.LogFormatJSON, filepath.Join("logs", "run", "metsim.log"))

	var buf bytes.Buffer
	logger, closer, err := NewFromConfig(cfg, dir, &buf)
	testutil.RequireNoError(t, err)
	if closer == nil {
		t.Fatal("expected a closer for the log file")
	}
	defer closer.Close()

	logger.Info("created output directory", "path", "/runs/out")

	path := filepath.Join(dir, "logs", "run", "metsim.log")
	testutil.AssertFileContains(t, path, "created output directory")
	if !strings.Contains(buf.String(), "created output directory") {
		t.Errorf("writer missed the record: %s", buf.String())
	}
}

func TestNewFromConfig_AppendsToExistingFile(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteFile(t, dir, "metsim.log", "earlier run\n")
	cfg := settings(config.LogLevelInfo, config.LogFormatText, path)

	logger, closer, err := NewFromConfig(cfg, "/unused/base", &bytes.Buffer{})
	testutil.RequireNoError(t, err)
	logger.Info("later run")
	closer.Close()

	data, err := os.ReadFile(path)
	testutil.RequireNoError(t, err)
	if !strings.HasPrefix(string(data), "earlier run\n") || !strings.Contains(string(data), "later run") {
		t.Errorf("log file was not appended to:\n%s", data)
	}
}

func TestNewFromConfig_TestSettings(t *testing.T) {
	cfg := testutil.NewTestConfig(t)

	logger, closer, err := NewFromConfig(cfg, "/unused/base", &bytes.Buffer{})
	testutil.RequireNoError(t, err)
	defer closer.Close()

	logger.Debug("probe", "field", "forcing")
	testutil.AssertFileContains(t, cfg.Logging.File, "field=forcing")
}

func TestNewFromConfig_UnwritableFile(t *testing.T) {
	dir := t.TempDir()
	blocker := testutil.WriteFile(t, dir, "blocker", "")
	cfg := settings(config.LogLevelInfo, config.LogFormatText, filepath.Join(blocker, "metsim.log"))

	_, _, err := NewFromConfig(cfg, dir, &bytes.Buffer{})
	testutil.AssertErrorCode(t, err, mserr.CodeIOWriteError)
}

func TestNewDiscard(t *testing.T) {
	logger := NewDiscard()
	for _, l := range []slog.Level{slog.LevelDebug, slog.LevelError} {
		if logger.Enabled(t.Context(), l) {
			t.Errorf("discard logger enables %s", l)
		}
	}
}

func TestContextHelpers(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, nil))

	logger := WithCommand(WithDocument(base, "/runs/example.yaml"), "check")
	logger = WithFields(logger, "chunks", 2)
	logger.Info("record")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("record is not JSON: %v", err)
	}
	want := map[string]any{"document": "/runs/example.yaml", "command": "check", "chunks": float64(2)}
	for k, v := range want {
		if rec[k] != v {
			t.Errorf("%s = %v, want %v", k, rec[k], v)
		}
	}
}
