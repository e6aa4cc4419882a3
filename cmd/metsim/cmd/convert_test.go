package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/HansKimDWR/MetSim/internal/document"
	mserr "github.com/HansKimDWR/MetSim/internal/errors"
	"github.com/HansKimDWR/MetSim/internal/runcfg"
	"github.com/HansKimDWR/MetSim/internal/testutil"
)

func TestConvertByExtension(t *testing.T) {
	tests := []struct {
		out    string
		format document.Format
	}{
		{"converted/run.toml", document.FormatTOML},
		{"converted/run.conf", document.FormatINI},
		{"converted/run.hcl", document.FormatHCL},
		{"converted/run.yml", document.FormatYAML},
	}

	for _, tt := range tests {
		t.Run(tt.out, func(t *testing.T) {
			dir := setupRun(t)
			out, _ := capture(t, convertCmd)

			if err := runConvert(convertCmd, []string{"example.yaml", tt.out}); err != nil {
				t.Fatalf("runConvert failed: %v", err)
			}

			orig, err := runcfg.Load(filepath.Join(dir, "example.yaml"))
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			converted, err := runcfg.Load(filepath.Join(dir, filepath.FromSlash(tt.out)))
			if err != nil {
				t.Fatalf("converted document does not load: %v", err)
			}
			if converted.Format() != tt.format {
				t.Errorf("Format() = %s, want %s", converted.Format(), tt.format)
			}
			if !orig.Equal(converted) {
				t.Error("converted document describes a different run")
			}
			if !strings.Contains(out.String(), "Converted example.yaml (yaml)") {
				t.Errorf("unexpected output: %s", out.String())
			}
		})
	}
}

func TestConvertForcedFormat(t *testing.T) {
	dir := setupRun(t)
	convertFormat = "toml"
	capture(t, convertCmd)

	if err := runConvert(convertCmd, []string{"example.yaml", "run.txt"}); err != nil {
		t.Fatalf("runConvert failed: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "run.txt"))
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if _, err := document.Decode(data, document.FormatTOML, "run.txt"); err != nil {
		t.Errorf("output is not TOML: %v\n%s", err, data)
	}
}

func TestConvertUnknownExtension(t *testing.T) {
	dir := setupRun(t)
	capture(t, convertCmd)

	err := runConvert(convertCmd, []string{"example.yaml", "run.json"})
	testutil.AssertErrorCode(t, err, mserr.CodeDocumentUnsupported)
	if _, err := os.Stat(filepath.Join(dir, "run.json")); !os.IsNotExist(err) {
		t.Error("no output should be written for an unsupported format")
	}
}

func TestConvertRefusesOverwrite(t *testing.T) {
	dir := setupRun(t)
	existing := testutil.WriteFile(t, dir, "run.toml", "keep me\n")
	capture(t, convertCmd)

	err := runConvert(convertCmd, []string{"example.yaml", "run.toml"})
	testutil.AssertErrorContains(t, err, "already exists")
	testutil.AssertFileContains(t, existing, "keep me")

	convertForce = true
	if err := runConvert(convertCmd, []string{"example.yaml", "run.toml"}); err != nil {
		t.Fatalf("runConvert --force failed: %v", err)
	}
	if _, err := runcfg.Load(existing); err != nil {
		t.Errorf("overwritten document does not load: %v", err)
	}
}

func TestConvertInvalidInput(t *testing.T) {
	dir := setupRun(t)
	testutil.WriteFile(t, dir, "broken.yaml", strings.Replace(testutil.ExampleDocument, "time_step: 30", "time_step: 7", 1))
	capture(t, convertCmd)

	err := runConvert(convertCmd, []string{"broken.yaml", "run.toml"})
	testutil.AssertErrorCode(t, err, mserr.CodeConfigRange)
	if _, err := os.Stat(filepath.Join(dir, "run.toml")); !os.IsNotExist(err) {
		t.Error("no output should be written for an invalid document")
	}
}

func TestConvertWriteError(t *testing.T) {
	dir := setupRun(t)
	testutil.WriteFile(t, dir, "blocker", "")
	capture(t, convertCmd)

	err := runConvert(convertCmd, []string{"example.yaml", "blocker/run.toml"})
	testutil.AssertErrorCode(t, err, mserr.CodeIOWriteError)
}
