package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	"github.com/HansKimDWR/MetSim/internal/config"
	mserr "github.com/HansKimDWR/MetSim/internal/errors"
	"github.com/HansKimDWR/MetSim/internal/testutil"
)

// setupRun lays out the example run, points the global flags at it and
// isolates the test from the user's settings. It returns the run directory.
func setupRun(t *testing.T) string {
	t.Helper()

	t.Setenv("HOME", t.TempDir())
	for _, k := range []string{config.EnvLogLevel, config.EnvLogFormat, config.EnvLogFile, config.EnvDebug, config.EnvOutputFormat} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}

	dir := filepath.Dir(testutil.NewExampleRun(t))
	workDir = dir
	t.Cleanup(resetFlags)
	return dir
}

func resetFlags() {
	verbose = false
	workDir = ""
	errorFormat = "text"
	showFormat = ""
	convertFormat = ""
	convertForce = false
	checkCreateOutDir = false
	checkConcurrency = 0
	varsRole = ""
}

// capture redirects a command's output and error streams.
func capture(t *testing.T, c *cobra.Command) (*bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	var out, errOut bytes.Buffer
	c.SetOut(&out)
	c.SetErr(&errOut)
	t.Cleanup(func() {
		c.SetOut(nil)
		c.SetErr(nil)
	})
	return &out, &errOut
}

func TestRootCmdFlags(t *testing.T) {
	verboseFlag := rootCmd.PersistentFlags().Lookup("verbose")
	if verboseFlag == nil {
		t.Fatal("--verbose flag not found")
	}
	if verboseFlag.Shorthand != "v" {
		t.Errorf("--verbose shorthand = %q, want v", verboseFlag.Shorthand)
	}

	workdirFlag := rootCmd.PersistentFlags().Lookup("workdir")
	if workdirFlag == nil {
		t.Fatal("--workdir flag not found")
	}
	if workdirFlag.Shorthand != "C" {
		t.Errorf("--workdir shorthand = %q, want C", workdirFlag.Shorthand)
	}
}

func TestRootCmdSubcommands(t *testing.T) {
	want := map[string]bool{"validate": false, "show": false, "convert": false, "check": false, "vars": false}
	for _, c := range rootCmd.Commands() {
		if _, ok := want[c.Name()]; ok {
			want[c.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestRootCmdVersion(t *testing.T) {
	if rootCmd.Version != Version {
		t.Errorf("rootCmd.Version = %q, want %q", rootCmd.Version, Version)
	}
}

func TestGetWorkDir(t *testing.T) {
	t.Cleanup(resetFlags)

	workDir = "/runs/basin"
	got, err := getWorkDir()
	if err != nil {
		t.Fatalf("getWorkDir failed: %v", err)
	}
	if got != "/runs/basin" {
		t.Errorf("getWorkDir() = %q, want /runs/basin", got)
	}

	workDir = ""
	cwd, _ := os.Getwd()
	if got, _ := getWorkDir(); got != cwd {
		t.Errorf("getWorkDir() = %q, want %q", got, cwd)
	}
}

func TestSessionResolve(t *testing.T) {
	s := &session{dir: "/runs/basin"}
	if got := s.resolve("example.yaml"); got != filepath.Join("/runs/basin", "example.yaml") {
		t.Errorf("resolve(relative) = %q", got)
	}
	if got := s.resolve("/elsewhere/run.toml"); got != "/elsewhere/run.toml" {
		t.Errorf("resolve(absolute) = %q", got)
	}
}

func TestSessionInvalidProjectConfig(t *testing.T) {
	dir := setupRun(t)
	testutil.WriteFile(t, dir, filepath.Join(config.DirName, "config.toml"), "[logging]\nlevel = \"loud\"\n")
	capture(t, validateCmd)

	err := runValidate(validateCmd, []string{"example.yaml"})
	testutil.AssertErrorContains(t, err, "invalid config")
	testutil.AssertErrorContains(t, err, "logging.level")
}

func TestReportErrorText(t *testing.T) {
	t.Cleanup(resetFlags)
	errorFormat = "text"

	var buf bytes.Buffer
	ReportError(&buf, mserr.Range("MetSim", "time_step", 7, "must evenly divide 1440 minutes per day"))
	if got := buf.String(); got != "Error: [CONFIG_003] invalid value for MetSim.time_step: 7 (must evenly divide 1440 minutes per day)\n" {
		t.Errorf("unexpected text error: %q", got)
	}
}

func TestReportErrorJSON(t *testing.T) {
	t.Cleanup(resetFlags)
	errorFormat = "json"

	err := errors.Join(
		mserr.PathResolution("domain", "/runs/domain.nc", fs.ErrNotExist),
		mserr.PathResolution("out_dir", "/runs/a/results", fs.ErrNotExist),
		errors.New("plain failure"),
	)
	var buf bytes.Buffer
	ReportError(&buf, err)

	dec := json.NewDecoder(&buf)
	var recs []map[string]any
	for dec.More() {
		var rec map[string]any
		if err := dec.Decode(&rec); err != nil {
			t.Fatalf("output is not JSON lines: %v", err)
		}
		recs = append(recs, rec)
	}
	if len(recs) != 3 {
		t.Fatalf("got %d records, want 3", len(recs))
	}
	for i, field := range []string{"domain", "out_dir"} {
		if recs[i]["code"] != mserr.CodePathResolution {
			t.Errorf("record %d code = %v, want %s", i, recs[i]["code"], mserr.CodePathResolution)
		}
		details, _ := recs[i]["details"].(map[string]any)
		if details["field"] != field {
			t.Errorf("record %d details.field = %v, want %s", i, details["field"], field)
		}
		if recs[i]["cause"] != fs.ErrNotExist.Error() {
			t.Errorf("record %d cause = %v", i, recs[i]["cause"])
		}
	}
	if recs[2]["message"] != "plain failure" {
		t.Errorf("plain error record = %v", recs[2])
	}
}

func TestErrorFormatFlag(t *testing.T) {
	t.Cleanup(resetFlags)
	if rootCmd.PersistentFlags().Lookup("error-format") == nil {
		t.Fatal("--error-format flag not found")
	}

	errorFormat = "xml"
	err := rootCmd.PersistentPreRunE(validateCmd, nil)
	testutil.AssertErrorContains(t, err, "invalid --error-format")

	errorFormat = "json"
	if err := rootCmd.PersistentPreRunE(validateCmd, nil); err != nil {
		t.Errorf("json rejected: %v", err)
	}
}
