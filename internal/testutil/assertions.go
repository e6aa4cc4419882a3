package testutil

import (
	"os"
	"strings"
	"testing"

	mserr "github.com/HansKimDWR/MetSim/internal/errors"
)

// AssertErrorCode asserts that err carries the given MetSimError code.
func AssertErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Errorf("Expected error with code %s, got nil", code)
		return
	}
	if !mserr.HasCode(err, code) {
		t.Errorf("Expected error code %s, got %q (%v)", code, mserr.Code(err), err)
	}
}

// AssertErrorContains asserts that err is non-nil and its message contains substring.
func AssertErrorContains(t *testing.T, err error, substring string) {
	t.Helper()
	if err == nil {
		t.Errorf("Expected error containing %q, got nil", substring)
		return
	}
	if !strings.Contains(err.Error(), substring) {
		t.Errorf("Expected error containing %q, got %q", substring, err.Error())
	}
}

// AssertNoError asserts that an error is nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
}

// RequireNoError fails the test immediately if err is non-nil.
func RequireNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
}

// AssertFileContains asserts that a file contains a substring.
func AssertFileContains(t *testing.T, path, substring string) {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Errorf("Failed to read file %s: %v", path, err)
		return
	}
	if !strings.Contains(string(content), substring) {
		t.Errorf("Expected file %s to contain %q", path, substring)
	}
}

// AssertDirExists asserts that a directory exists.
func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("Expected directory %s to exist", path)
		return
	}
	if err != nil {
		t.Errorf("Failed to stat %s: %v", path, err)
		return
	}
	if !info.IsDir() {
		t.Errorf("Expected %s to be a directory", path)
	}
}
