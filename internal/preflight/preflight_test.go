package preflight

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	mserr "github.com/HansKimDWR/MetSim/internal/errors"
	"github.com/HansKimDWR/MetSim/internal/runcfg"
	"github.com/HansKimDWR/MetSim/internal/testutil"
)

// exampleRun lays out the example run and loads it after applying the
// replacements (old, new pairs) to the document.
func exampleRun(t *testing.T, replacements ...string) (*runcfg.RunConfig, string) {
	t.Helper()
	path := testutil.NewExampleRun(t)
	dir := filepath.Dir(path)

	if len(replacements) > 0 {
		doc := strings.NewReplacer(replacements...).Replace(testutil.ExampleDocument)
		testutil.WriteFile(t, dir, "example.yaml", doc)
	}

	cfg, err := runcfg.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return cfg, dir
}

func TestCheck_Example(t *testing.T) {
	cfg, dir := exampleRun(t)
	logger := testutil.NewTestLogger(t)

	res, err := Check(context.Background(), cfg, Options{Logger: logger.Logger})
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	want := []string{filepath.Join(dir, "metsim", "data", "test.nc")}
	if len(res.ForcingFiles) != 1 || res.ForcingFiles[0] != want[0] {
		t.Errorf("ForcingFiles = %v, want %v", res.ForcingFiles, want)
	}
	if res.CreatedOutDir {
		t.Error("CreatedOutDir = true without CreateOutDir")
	}
	if _, err := os.Stat(filepath.Join(dir, "results")); !os.IsNotExist(err) {
		t.Errorf("results should not be created, stat err = %v", err)
	}
	logger.AssertAttrValue(t, "field", "out_dir")
	if got := len(logger.GetEntriesContaining("preflight check passed")); got != 4 {
		t.Errorf("got %d passed checks, want 4", got)
	}
}

func TestCheck_CreateOutDir(t *testing.T) {
	cfg, dir := exampleRun(t, "out_dir: './results'", "out_dir: './results/nested/run1'")

	res, err := Check(context.Background(), cfg, Options{CreateOutDir: true})
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	if !res.CreatedOutDir {
		t.Error("CreatedOutDir = false, want true")
	}
	testutil.AssertDirExists(t, filepath.Join(dir, "results", "nested", "run1"))
}

func TestCheck_ForcingGlob(t *testing.T) {
	cfg, dir := exampleRun(t, "forcing: './metsim/data/test.nc'", "forcing: './metsim/data/*.nc'")

	res, err := Check(context.Background(), cfg, Options{Concurrency: 2})
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	want := []string{
		filepath.Join(dir, "metsim", "data", "domain.nc"),
		filepath.Join(dir, "metsim", "data", "state_nc.nc"),
		filepath.Join(dir, "metsim", "data", "test.nc"),
	}
	if strings.Join(res.ForcingFiles, ",") != strings.Join(want, ",") {
		t.Errorf("ForcingFiles = %v, want %v", res.ForcingFiles, want)
	}
}

func TestCheck_Violations(t *testing.T) {
	tests := []struct {
		name      string
		replace   []string
		setup     func(t *testing.T, dir string)
		wantField string
		wantCause error
	}{
		{
			name:      "forcing matches nothing",
			replace:   []string{"forcing: './metsim/data/test.nc'", "forcing: './metsim/data/*.grib'"},
			wantField: "forcing",
			wantCause: ErrNoMatch,
		},
		{
			name:      "forcing bad pattern",
			replace:   []string{"forcing: './metsim/data/test.nc'", "forcing: './metsim/data/[.nc'"},
			wantField: "forcing",
			wantCause: filepath.ErrBadPattern,
		},
		{
			name:      "forcing is a directory",
			replace:   []string{"forcing: './metsim/data/test.nc'", "forcing: './metsim/data'"},
			wantField: "forcing",
			wantCause: ErrIsDirectory,
		},
		{
			name:      "missing domain",
			replace:   []string{"domain: './metsim/data/domain.nc'", "domain: './metsim/data/nope.nc'"},
			wantField: "domain",
			wantCause: fs.ErrNotExist,
		},
		{
			name:      "missing state",
			replace:   []string{"state: './metsim/data/state_nc.nc'", "state: './state/missing.nc'"},
			wantField: "state",
			wantCause: fs.ErrNotExist,
		},
		{
			name:    "out_dir is a file",
			replace: []string{"out_dir: './results'", "out_dir: './results.txt'"},
			setup: func(t *testing.T, dir string) {
				testutil.WriteFile(t, dir, "results.txt", "")
			},
			wantField: "out_dir",
			wantCause: ErrNotDirectory,
		},
		{
			name:      "out_dir parent missing",
			replace:   []string{"out_dir: './results'", "out_dir: './a/b/results'"},
			wantField: "out_dir",
			wantCause: fs.ErrNotExist,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, dir := exampleRun(t, tt.replace...)
			if tt.setup != nil {
				tt.setup(t, dir)
			}

			res, err := Check(context.Background(), cfg, Options{})
			if res != nil {
				t.Error("Check returned a result alongside an error")
			}
			testutil.AssertErrorCode(t, err, mserr.CodePathResolution)
			testutil.AssertErrorContains(t, err, tt.wantField+" path")
			if !errors.Is(err, tt.wantCause) {
				t.Errorf("errors.Is(err, %v) = false; err = %v", tt.wantCause, err)
			}
		})
	}
}

func TestCheck_ReportsEveryViolation(t *testing.T) {
	cfg, _ := exampleRun(t,
		"domain: './metsim/data/domain.nc'", "domain: './gone/domain.nc'",
		"state: './metsim/data/state_nc.nc'", "state: './gone/state.nc'",
		"out_dir: './results'", "out_dir: './gone/results'",
	)

	_, err := Check(context.Background(), cfg, Options{})
	if err == nil {
		t.Fatal("expected error")
	}
	for _, field := range []string{"domain path", "state path", "out_dir path"} {
		testutil.AssertErrorContains(t, err, field)
	}
	if strings.Contains(err.Error(), "forcing path") {
		t.Errorf("forcing reported although it resolves: %v", err)
	}
}

func TestCheck_NoState(t *testing.T) {
	cfg, _ := exampleRun(t, "    state: './metsim/data/state_nc.nc'\n", "")
	if _, err := Check(context.Background(), cfg, Options{}); err != nil {
		t.Fatalf("Check failed: %v", err)
	}
}

func TestCheck_Cancelled(t *testing.T) {
	cfg, dir := exampleRun(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Check(ctx, cfg, Options{CreateOutDir: true})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "results")); !os.IsNotExist(err) {
		t.Error("cancelled check should not create the output directory")
	}
}
