// Package errors provides structured error types for MetSim configuration handling.
package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Error codes for MetSim operations.
const (
	// Config errors
	CodeConfigMissingField    = "CONFIG_001" // Missing required section or field
	CodeConfigTypeCoercion    = "CONFIG_002" // Value could not be coerced to the field type
	CodeConfigRange           = "CONFIG_003" // Value outside the permitted range or choice set
	CodeConfigUnknownVariable = "CONFIG_004" // Variable key not in the role's vocabulary
	CodeConfigAmbiguousSource = "CONFIG_005" // Same quantity defined by two sources
	CodeConfigUnknownField    = "CONFIG_006" // Unknown section or field

	// Path errors
	CodePathResolution = "PATH_001" // Path does not resolve to a usable location

	// Document errors
	CodeDocumentParse       = "DOC_001" // Syntax error in the document
	CodeDocumentUnsupported = "DOC_002" // Unknown document format

	// IO errors
	CodeIOFileNotFound = "IO_001" // File not found
	CodeIOPermission   = "IO_002" // Permission denied
	CodeIOReadError    = "IO_004" // Read error
	CodeIOWriteError   = "IO_005" // Write error
)

// MetSimError is the structured error type for MetSim operations.
type MetSimError struct {
	Code    string         `json:"code"`              // Error code (e.g., "CONFIG_001")
	Message string         `json:"message"`           // Human-readable message
	Details map[string]any `json:"details,omitempty"` // Context (section, field, value...)
	Cause   error          `json:"-"`                 // Wrapped error (not serialized)
}

// Error implements the error interface.
func (e *MetSimError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *MetSimError) Unwrap() error {
	return e.Cause
}

// WithDetail adds a detail to the error.
func (e *MetSimError) WithDetail(key string, value any) *MetSimError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithCause wraps an underlying error.
func (e *MetSimError) WithCause(err error) *MetSimError {
	e.Cause = err
	return e
}

// MarshalJSON implements json.Marshaler with cause error message.
func (e *MetSimError) MarshalJSON() ([]byte, error) {
	type alias MetSimError
	aux := struct {
		*alias
		CauseMsg string `json:"cause,omitempty"`
	}{
		alias: (*alias)(e),
	}
	if e.Cause != nil {
		aux.CauseMsg = e.Cause.Error()
	}
	return json.Marshal(aux)
}

// Newf creates a new MetSimError with formatted message.
func Newf(code, format string, args ...any) *MetSimError {
	return &MetSimError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap wraps an error with a MetSimError.
func Wrap(code, message string, err error) *MetSimError {
	return &MetSimError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with a formatted MetSimError.
func Wrapf(code string, err error, format string, args ...any) *MetSimError {
	return &MetSimError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   err,
	}
}

// qualify joins a section and field into the dotted name used in messages.
func qualify(section, field string) string {
	switch {
	case section == "":
		return field
	case field == "":
		return section
	default:
		return section + "." + field
	}
}

// --- Config Errors ---

// MissingField creates an error for a missing section or field.
// An empty field means the whole section is missing.
func MissingField(section, field string) *MetSimError {
	if field == "" {
		return Newf(CodeConfigMissingField, "missing required section: %s", section).
			WithDetail("section", section)
	}
	return Newf(CodeConfigMissingField, "missing required field: %s", qualify(section, field)).
		WithDetail("section", section).
		WithDetail("field", field)
}

// TypeCoercion creates an error for a value that cannot be read as the field's type.
func TypeCoercion(section, field, want string, got any) *MetSimError {
	return Newf(CodeConfigTypeCoercion, "cannot read %s as %s: got %s", qualify(section, field), want, describe(got)).
		WithDetail("section", section).
		WithDetail("field", field).
		WithDetail("expected", want).
		WithDetail("value", got)
}

// Range creates an error for a value that violates a constraint.
func Range(section, field string, value any, constraint string) *MetSimError {
	return Newf(CodeConfigRange, "invalid value for %s: %v (%s)", qualify(section, field), value, constraint).
		WithDetail("section", section).
		WithDetail("field", field).
		WithDetail("value", value).
		WithDetail("constraint", constraint)
}

// UnknownVariable creates an error for a variable key outside the section's vocabulary.
func UnknownVariable(section, key string) *MetSimError {
	return Newf(CodeConfigUnknownVariable, "unknown variable %q in %s", key, section).
		WithDetail("section", section).
		WithDetail("variable", key)
}

// AmbiguousSource creates an error for a quantity with conflicting definitions.
func AmbiguousSource(field string, sources ...string) *MetSimError {
	return Newf(CodeConfigAmbiguousSource, "%s has conflicting definitions in %s", field, strings.Join(sources, " and ")).
		WithDetail("field", field).
		WithDetail("sources", sources)
}

// UnknownField creates an error for an unrecognized section or field.
func UnknownField(section, field string) *MetSimError {
	if section == "" {
		return Newf(CodeConfigUnknownField, "unknown section: %s", field).
			WithDetail("section", field)
	}
	return Newf(CodeConfigUnknownField, "unknown field: %s", qualify(section, field)).
		WithDetail("section", section).
		WithDetail("field", field)
}

// --- Path Errors ---

// PathResolution creates an error for a path that does not resolve to a usable location.
func PathResolution(field, path string, err error) *MetSimError {
	return Wrapf(CodePathResolution, err, "%s path %s is not usable", field, path).
		WithDetail("field", field).
		WithDetail("path", path)
}

// --- Document Errors ---

// DocumentParse creates an error for a syntactically invalid document.
func DocumentParse(path, format string, err error) *MetSimError {
	return Wrapf(CodeDocumentParse, err, "failed to parse %s document %s", format, path).
		WithDetail("path", path).
		WithDetail("format", format)
}

// UnsupportedFormat creates an error for a document format that cannot be handled.
func UnsupportedFormat(path, format string) *MetSimError {
	if path == "" {
		return Newf(CodeDocumentUnsupported, "unsupported document format %q", format).
			WithDetail("format", format)
	}
	return Newf(CodeDocumentUnsupported, "unsupported document format %q for %s", format, path).
		WithDetail("path", path).
		WithDetail("format", format)
}

// --- IO Errors ---

// IOFileNotFound creates an error for missing file.
func IOFileNotFound(path string) *MetSimError {
	return Newf(CodeIOFileNotFound, "file not found: %s", path).
		WithDetail("path", path)
}

// IOPermissionDenied creates an error for permission issues.
func IOPermissionDenied(path string, err error) *MetSimError {
	return Wrap(CodeIOPermission, "permission denied", err).
		WithDetail("path", path)
}

// IOReadError creates an error for read failures.
func IOReadError(path string, err error) *MetSimError {
	return Wrap(CodeIOReadError, "failed to read file", err).
		WithDetail("path", path)
}

// IOWriteError creates an error for write failures.
func IOWriteError(path string, err error) *MetSimError {
	return Wrap(CodeIOWriteError, "failed to write file", err).
		WithDetail("path", path)
}

// describe renders a raw value with its type for coercion messages.
func describe(v any) string {
	if v == nil {
		return "null"
	}
	return fmt.Sprintf("%v (%T)", v, v)
}

// HasCode checks if an error is a MetSimError with the given code.
// It handles wrapped errors by unwrapping to find a MetSimError.
func HasCode(err error, code string) bool {
	var merr *MetSimError
	if errors.As(err, &merr) {
		return merr.Code == code
	}
	return false
}

// Code returns the error code if err is a MetSimError, empty string otherwise.
// It handles wrapped errors by unwrapping to find a MetSimError.
func Code(err error) string {
	var merr *MetSimError
	if errors.As(err, &merr) {
		return merr.Code
	}
	return ""
}
