// Package errors defines the classified parse errors raised by the legacy
// file parsers. Every error is fatal for the file it names and nothing else;
// the assembler catches them at the file boundary and keeps going.
package errors

import (
	"errors"
	"fmt"
)

// Code classifies a parse failure.
type Code string

const (
	// CodeMissingFieldsDeclaration means a spike file header never declared
	// its column list.
	CodeMissingFieldsDeclaration Code = "MISSING_FIELDS_DECLARATION"
	// CodeMissingEndHeader means the end-of-header sentinel was not found
	// within the header scan window.
	CodeMissingEndHeader Code = "MISSING_END_HEADER"
	// CodeUnexpectedBinarySize means a binary map file is not exactly the
	// fixed size the format requires.
	CodeUnexpectedBinarySize Code = "UNEXPECTED_BINARY_SIZE"
)

// ParseError is a classified, per-file parse failure.
type ParseError struct {
	Code    Code
	File    string
	Message string
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.File == "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.File, e.Code, e.Message)
}

// Is matches any ParseError carrying the same code, so callers can test
// against the predeclared sentinels with errors.Is regardless of which file
// the error names.
func (e *ParseError) Is(target error) bool {
	var pe *ParseError
	if !errors.As(target, &pe) {
		return false
	}
	return e.Code == pe.Code
}

// New creates a ParseError with the given code, file and message.
func New(code Code, file, message string) *ParseError {
	return &ParseError{Code: code, File: file, Message: message}
}

// Sentinels for errors.Is checks.
var (
	ErrMissingFieldsDeclaration = &ParseError{Code: CodeMissingFieldsDeclaration, Message: "no fields declaration in header"}
	ErrMissingEndHeader         = &ParseError{Code: CodeMissingEndHeader, Message: "end-of-header sentinel not found"}
	ErrUnexpectedBinarySize     = &ParseError{Code: CodeUnexpectedBinarySize, Message: "unexpected binary file size"}
)

// MissingFieldsDeclaration creates the error raised when a spike file header
// has no fields line.
func MissingFieldsDeclaration(file string) *ParseError {
	return New(CodeMissingFieldsDeclaration, file, "no fields declaration in header")
}

// MissingEndHeader creates the error raised when the header sentinel is
// missing from the scan window.
func MissingEndHeader(file string) *ParseError {
	return New(CodeMissingEndHeader, file, "end-of-header sentinel not found")
}

// UnexpectedBinarySize creates the error raised for a wrong-sized map file.
func UnexpectedBinarySize(file string, want, got int) *ParseError {
	return New(CodeUnexpectedBinarySize, file, fmt.Sprintf("expected %d bytes, got %d", want, got))
}
