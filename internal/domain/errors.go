package domain

import "errors"

var (
	ErrInvalidFileType      = errors.New("invalid file type (must be PDF after conversion)")
	ErrInvalidOptions       = errors.New("invalid options")
	ErrMissingFile          = errors.New("file field is required")
	ErrFileTooLarge         = errors.New("file exceeds maximum allowed size")
	ErrParseFailed          = errors.New("parse failed")
	ErrPackagingFailed      = errors.New("packaging failed")
	ErrInitializationFailed = errors.New("model initialization failed")
	ErrNotReady             = errors.New("models are not initialized")
	ErrNotFound             = errors.New("resource not found")
	ErrUnauthorized         = errors.New("unauthorized")
)

// ErrorCode returns the stable code for an error kind, used in API responses
// and in the request journal.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrInvalidFileType):
		return "INVALID_FILE_TYPE"
	case errors.Is(err, ErrInvalidOptions):
		return "INVALID_OPTIONS"
	case errors.Is(err, ErrMissingFile):
		return "MISSING_FILE"
	case errors.Is(err, ErrFileTooLarge):
		return "FILE_TOO_LARGE"
	case errors.Is(err, ErrParseFailed):
		return "PARSE_FAILED"
	case errors.Is(err, ErrPackagingFailed):
		return "PACKAGING_FAILED"
	case errors.Is(err, ErrInitializationFailed):
		return "INITIALIZATION_FAILED"
	case errors.Is(err, ErrNotReady):
		return "NOT_READY"
	case errors.Is(err, ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, ErrUnauthorized):
		return "UNAUTHORIZED"
	default:
		return "INTERNAL_ERROR"
	}
}
