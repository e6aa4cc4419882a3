// Package testutil provides test infrastructure, fixtures, and helpers for metsim.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/HansKimDWR/MetSim/internal/config"
)

// ExampleDocument is the reference MetSim run document: a thirty minute run
// over January 1950 with triangle precipitation disaggregation.
const ExampleDocument = `MetSim:
    # Time step in minutes
    time_step: 30
    # Forcings begin here (year-month-day)
    start: 1950-1-1
    # Forcings end at this date (year-month-day)
    stop: 1950-1-31
    # Input and output directories
    forcing: './metsim/data/test.nc'
    domain: './metsim/data/domain.nc'
    state: './metsim/data/state_nc.nc'
    forcing_fmt: 'netcdf'
    in_format: 'netcdf'
    out_dir: './results'
    out_prefix: 'forcing'
    prec_type: 'triangle'
    utc_offset: True

out_vars:
    temp:
        out_name: 'airtemp'
        units: 'K'

    prec:
        out_name: 'pptrate'
        units: 'mm s-1'

    shortwave:
        out_name: 'SWradAtm'

    spec_humid:
        out_name: 'spechum'

    air_pressure:
        out_name: 'airpres'
        units: 'kPa'

    wind:
        out_name: 'windspd'

chunks:
    lat: 3
    lon: 3

forcing_vars:
    # Format is metsim_name: input_name
    prec  : 'Prec'
    t_max : 'Tmax'
    t_min : 'Tmin'

state_vars:
    # Format is metsim_name: input_name
    prec  : 'prec'
    t_max : 't_max'
    t_min : 't_min'

domain_vars:
    # Format is metsim_name: input_name
    lat: 'lat'
    lon: 'lon'
    mask: 'mask'
    elev: 'elev'
    t_pk: 't_pk'
    dur: 'dur'

constant_vars:
    wind: 2.0
`

// MinimalDocument holds only the required MetSim fields.
const MinimalDocument = `MetSim:
    time_step: 1440
    start: 1950-1-1
    stop: 1950-1-10
    forcing: forcing.nc
    domain: domain.nc
    out_dir: results
`

// Example data files referenced by ExampleDocument, relative to its directory.
var ExampleDataFiles = []string{
	"metsim/data/test.nc",
	"metsim/data/domain.nc",
	"metsim/data/state_nc.nc",
}

// WriteFile writes content to dir/rel, creating parent directories, and
// returns the full path.
func WriteFile(t *testing.T, dir, rel, content string) string {
	t.Helper()

	path := filepath.Join(dir, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create parent dir for %s: %v", rel, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write file %s: %v", rel, err)
	}
	return path
}

// TempDirWithFiles creates a temporary directory with the given files.
// files maps relative paths to content.
func TempDirWithFiles(t *testing.T, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	for rel, content := range files {
		WriteFile(t, dir, rel, content)
	}
	return dir
}

// NewExampleRun lays out ExampleDocument and its data files in a temporary
// directory, and returns the document path. The output directory is not
// created.
func NewExampleRun(t *testing.T) string {
	t.Helper()

	files := map[string]string{"example.yaml": ExampleDocument}
	for _, f := range ExampleDataFiles {
		files[f] = "CDF\x01"
	}
	dir := TempDirWithFiles(t, files)
	return filepath.Join(dir, "example.yaml")
}

// NewTestConfig creates tool settings that log at debug level to a file in a
// temporary directory.
func NewTestConfig(t *testing.T) *config.Config {
	t.Helper()

	cfg := config.Default()
	cfg.Logging.Level = config.LogLevelDebug
	cfg.Logging.File = filepath.Join(t.TempDir(), "metsim.log")
	return cfg
}
