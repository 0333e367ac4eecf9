package errors

import "fmt"

// Kind groups error codes into the failure classes callers branch on.
type Kind string

const (
	// KindInput covers malformed caller input such as a bad chunk type string
	KindInput Kind = "input"
	// KindFormat covers malformed PNG bytes
	KindFormat Kind = "format"
	// KindLookup covers queries for chunks that are not present
	KindLookup Kind = "lookup"
	// KindIO covers file read and write failures
	KindIO Kind = "io"
)

// Error types for pngpong operations
var (
	// ErrInvalidLength is returned when a chunk type string is not exactly 4 ASCII bytes
	ErrInvalidLength = &PngError{Code: "INVALID_LENGTH", Kind: KindInput, Message: "chunk type must be 4 ASCII bytes"}

	// ErrInvalidByte is returned when a chunk type byte is not an ASCII letter
	ErrInvalidByte = &PngError{Code: "INVALID_BYTE", Kind: KindInput, Message: "chunk type byte is not an ASCII letter"}

	// ErrBadSignature is returned when the stream does not start with the PNG signature
	ErrBadSignature = &PngError{Code: "BAD_SIGNATURE", Kind: KindFormat, Message: "invalid PNG signature"}

	// ErrTruncatedInput is returned when the buffer ends in the middle of a chunk
	ErrTruncatedInput = &PngError{Code: "TRUNCATED_INPUT", Kind: KindFormat, Message: "input truncated"}

	// ErrInvalidChunkType is returned when a decoded chunk carries invalid type bytes
	ErrInvalidChunkType = &PngError{Code: "INVALID_CHUNK_TYPE", Kind: KindFormat, Message: "invalid chunk type"}

	// ErrInvalidChecksum is returned when a decoded chunk's CRC does not match its contents
	ErrInvalidChecksum = &PngError{Code: "INVALID_CHECKSUM", Kind: KindFormat, Message: "chunk checksum mismatch"}

	// ErrBadChunk wraps any chunk failure hit while decoding a whole PNG
	ErrBadChunk = &PngError{Code: "BAD_CHUNK", Kind: KindFormat, Message: "failed to decode chunk"}

	// ErrInvalidText is returned when bytes rendered as text are not valid UTF-8
	ErrInvalidText = &PngError{Code: "INVALID_TEXT", Kind: KindFormat, Message: "bytes are not valid text"}

	// ErrChunkNotFound is returned when no chunk of the requested type exists
	ErrChunkNotFound = &PngError{Code: "CHUNK_NOT_FOUND", Kind: KindLookup, Message: "chunk not found"}

	// ErrIO is returned when reading or writing a file fails
	ErrIO = &PngError{Code: "IO_FAILED", Kind: KindIO, Message: "file operation failed"}
)

// PngError represents a structured error in pngpong operations
type PngError struct {
	Code    string                 // Error code for programmatic handling
	Kind    Kind                   // Failure class
	Message string                 // Human-readable error message
	Cause   error                  // Underlying error, if any
	Details map[string]interface{} // Additional context
}

// Error implements the error interface
func (e *PngError) Error() string {
	if e.Cause != nil {
		if len(e.Details) > 0 {
			return fmt.Sprintf("[%s] %s (details: %v): %v", e.Code, e.Message, e.Details, e.Cause)
		}
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	if len(e.Details) > 0 {
		return fmt.Sprintf("[%s] %s (details: %v)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *PngError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a PngError with the same code, so that
// errors.Is matches derived errors against the package sentinels.
func (e *PngError) Is(target error) bool {
	t, ok := target.(*PngError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithCause adds a cause to the error
func (e *PngError) WithCause(cause error) *PngError {
	return &PngError{
		Code:    e.Code,
		Kind:    e.Kind,
		Message: e.Message,
		Cause:   cause,
		Details: e.Details,
	}
}

// WithDetail adds a detail key-value pair to the error
func (e *PngError) WithDetail(key string, value interface{}) *PngError {
	details := make(map[string]interface{})
	for k, v := range e.Details {
		details[k] = v
	}
	details[key] = value
	return &PngError{
		Code:    e.Code,
		Kind:    e.Kind,
		Message: e.Message,
		Cause:   e.Cause,
		Details: details,
	}
}

// WithMessage overrides the error message
func (e *PngError) WithMessage(message string) *PngError {
	return &PngError{
		Code:    e.Code,
		Kind:    e.Kind,
		Message: message,
		Cause:   e.Cause,
		Details: e.Details,
	}
}

// NewChunkNotFoundError creates a chunk not found error
func NewChunkNotFoundError(chunkType string) error {
	return ErrChunkNotFound.WithDetail("chunkType", chunkType)
}

// NewChecksumError creates a checksum mismatch error
func NewChecksumError(expected, actual uint32) error {
	return ErrInvalidChecksum.
		WithDetail("expected", fmt.Sprintf("0x%08x", expected)).
		WithDetail("actual", fmt.Sprintf("0x%08x", actual))
}

// NewTruncatedError creates a truncated input error
func NewTruncatedError(need, have int) error {
	return ErrTruncatedInput.
		WithDetail("need", need).
		WithDetail("have", have)
}

// NewBadChunkError wraps a chunk decode failure with its position in the stream
func NewBadChunkError(index int, offset int, cause error) error {
	return ErrBadChunk.
		WithDetail("index", index).
		WithDetail("offset", offset).
		WithCause(cause)
}

// NewIOError creates a file operation error
func NewIOError(op, path string, cause error) error {
	return ErrIO.
		WithDetail("op", op).
		WithDetail("path", path).
		WithCause(cause)
}

// IsPngError checks if an error is a PngError
func IsPngError(err error) bool {
	_, ok := err.(*PngError)
	return ok
}

// GetErrorCode extracts the error code from a PngError
func GetErrorCode(err error) string {
	if pngErr, ok := err.(*PngError); ok {
		return pngErr.Code
	}
	return ""
}

// KindOf returns the failure class of a PngError, or "" for other errors
func KindOf(err error) Kind {
	if pngErr, ok := err.(*PngError); ok {
		return pngErr.Kind
	}
	return ""
}
