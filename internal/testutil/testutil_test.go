package testutil

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/HansKimDWR/MetSim/internal/config"
	mserr "github.com/HansKimDWR/MetSim/internal/errors"
)

func TestNewTestConfig(t *testing.T) {
	cfg := NewTestConfig(t)

	if cfg.Logging.Level != config.LogLevelDebug {
		t.Errorf("Logging.Level = %s, want debug", cfg.Logging.Level)
	}
	if cfg.Logging.File == "" {
		t.Error("Logging.File should be set")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestTempDirWithFiles(t *testing.T) {
	dir := TempDirWithFiles(t, map[string]string{
		"a.txt":        "alpha",
		"nested/b.txt": "beta",
	})

	AssertFileContains(t, filepath.Join(dir, "a.txt"), "alpha")
	AssertFileContains(t, filepath.Join(dir, "nested", "b.txt"), "beta")
	AssertDirExists(t, filepath.Join(dir, "nested"))
}

func TestNewExampleRun(t *testing.T) {
	path := NewExampleRun(t)

	AssertFileContains(t, path, "time_step: 30")
	dir := filepath.Dir(path)
	for _, f := range ExampleDataFiles {
		if _, err := os.Stat(filepath.Join(dir, f)); err != nil {
			t.Errorf("data file %s missing: %v", f, err)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "results")); !os.IsNotExist(err) {
		t.Errorf("results directory should not exist, stat err = %v", err)
	}
}

func TestAssertErrorCode(t *testing.T) {
	err := mserr.MissingField("MetSim", "time_step")
	AssertErrorCode(t, err, mserr.CodeConfigMissingField)
	AssertErrorCode(t, errors.Join(errors.New("other"), err), mserr.CodeConfigMissingField)
	AssertErrorContains(t, err, "MetSim.time_step")
	AssertNoError(t, nil)
}

func TestTestLogger_Capture(t *testing.T) {
	logger := NewTestLogger(t)
	logger.AssertEmpty(t)

	logger.Logger.Debug("debug message")
	logger.Logger.Info("loaded run config", "time_step", 30)
	logger.Logger.Error("error message")

	if n := len(logger.GetEntries()); n != 3 {
		t.Errorf("entries = %d, want 3", n)
	}
	if n := logger.CountLevel(slog.LevelDebug); n != 1 {
		t.Errorf("debug count = %d, want 1", n)
	}
	logger.AssertContains(t, "loaded run config")
	logger.AssertAttrValue(t, "time_step", int64(30))
	if logger.GetOutput() == "" {
		t.Error("GetOutput() should contain the JSON records")
	}
}

func TestTestLogger_WithAttrsAndGroup(t *testing.T) {
	logger := NewTestLogger(t)

	logger.Logger.With("document", "run.yaml").WithGroup("check").Info("checked", "field", "forcing")

	logger.AssertAttrValue(t, "document", "run.yaml")
	logger.AssertAttrValue(t, "check.field", "forcing")
}
