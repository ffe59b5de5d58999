package service

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidLanguage      = errors.New("invalid language")
	ErrTranscriptionFailure = errors.New("transcription returned no text")
	ErrDuplicateRequest     = errors.New("duplicate request")
	ErrInvalidQuantity      = errors.New("quantity must be positive")
	ErrInvalidAction        = errors.New("unknown action")
	ErrMalformedChange      = errors.New("malformed change")
	ErrInvalidPart          = errors.New("invalid part")
)

// ResponseParseError means the completion output was not valid JSON.
type ResponseParseError struct {
	Raw string
	Err error
}

func (e *ResponseParseError) Error() string {
	return fmt.Sprintf("parse completion response: %v", e.Err)
}

func (e *ResponseParseError) Unwrap() error {
	return e.Err
}

// SchemaViolationError means the completion output was JSON but lacked the expected shape.
type SchemaViolationError struct {
	Raw    string
	Reason string
}

func (e *SchemaViolationError) Error() string {
	return "completion response schema violation: " + e.Reason
}
