// Package errors provides error types and handling for the HAR-to-MCP pipeline.
package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"
)

// ErrorType categorizes errors for handling decisions.
type ErrorType int

const (
	// Unknown is an uncategorized error.
	Unknown ErrorType = iota
	// Input represents a missing or unreadable trace file.
	Input
	// Parse represents a trace file that is not valid structured JSON.
	Parse
	// Generation represents a failure while rendering or writing artifacts.
	Generation
	// Config represents invalid configuration.
	Config
	// State represents snapshot store failures.
	State
)

// String returns the string representation of ErrorType.
func (t ErrorType) String() string {
	switch t {
	case Input:
		return "input"
	case Parse:
		return "parse"
	case Generation:
		return "generation"
	case Config:
		return "config"
	case State:
		return "state"
	default:
		return "unknown"
	}
}

// IsInput reports whether errors of this type mean the trace could not be used.
// Input errors stop the pipeline before anything is written.
func (t ErrorType) IsInput() bool {
	return t == Input || t == Parse
}

// PipelineError represents a categorized pipeline error.
type PipelineError struct {
	Type      ErrorType
	Path      string
	Operation string
	Message   string
	Cause     error
}

// Error implements the error interface.
func (e *PipelineError) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	if e.Path != "" {
		fmt.Fprintf(&b, ": %s", e.Path)
	}
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *PipelineError) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches a target.
func (e *PipelineError) Is(target error) bool {
	t, ok := target.(*PipelineError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// NewPipelineError creates a new PipelineError.
func NewPipelineError(errType ErrorType, path, operation, message string, cause error) *PipelineError {
	return &PipelineError{
		Type:      errType,
		Path:      path,
		Operation: operation,
		Message:   message,
		Cause:     cause,
	}
}

// NewInputError creates an error for a trace file that cannot be read.
func NewInputError(path string, cause error) *PipelineError {
	msg := "cannot read trace file"
	if errors.Is(cause, fs.ErrNotExist) {
		msg = "trace file not found"
	}
	return NewPipelineError(Input, path, "load", msg, cause)
}

// NewParseError creates an error for a trace file with invalid JSON.
func NewParseError(path string, cause error) *PipelineError {
	return NewPipelineError(Parse, path, "parse", "invalid JSON in trace file", cause)
}

// NewGenerationError creates an error for a rendering or write failure.
func NewGenerationError(path, operation string, cause error) *PipelineError {
	return NewPipelineError(Generation, path, operation, "generation failed", cause)
}

// NewConfigError creates a configuration error.
func NewConfigError(field, message string) *PipelineError {
	return NewPipelineError(Config, "", "validate", fmt.Sprintf("invalid config %s: %s", field, message), nil)
}

// NewStateError creates a snapshot store error.
func NewStateError(path, operation string, cause error) *PipelineError {
	return NewPipelineError(State, path, operation, "state store failure", cause)
}

// Categorize determines the error type from a generic error.
func Categorize(err error, path string) *PipelineError {
	if err == nil {
		return nil
	}

	var pipeErr *PipelineError
	if errors.As(err, &pipeErr) {
		return pipeErr
	}

	if isParseError(err) {
		return NewParseError(path, err)
	}

	if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
		return NewInputError(path, err)
	}

	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return NewInputError(path, err)
	}

	return NewPipelineError(Unknown, path, "", err.Error(), nil)
}

// isParseError checks if an error came from JSON decoding.
func isParseError(err error) bool {
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return true
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return true
	}

	return errors.Is(err, io.ErrUnexpectedEOF)
}

// IsInputError checks if an error means the trace could not be loaded.
func IsInputError(err error) bool {
	var pipeErr *PipelineError
	if errors.As(err, &pipeErr) {
		return pipeErr.Type.IsInput()
	}
	return false
}

// IsGenerationError checks if an error happened while producing artifacts.
func IsGenerationError(err error) bool {
	var pipeErr *PipelineError
	if errors.As(err, &pipeErr) {
		return pipeErr.Type == Generation
	}
	return false
}

// GetErrorType extracts the error type from an error.
func GetErrorType(err error) ErrorType {
	var pipeErr *PipelineError
	if errors.As(err, &pipeErr) {
		return pipeErr.Type
	}
	return Unknown
}
