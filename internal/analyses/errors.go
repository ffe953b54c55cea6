package analyses

import "net/http"

// Kind classifies every failure the analyze pipeline can surface to a
// client. Each kind has exactly one HTTP status and error code; new kinds
// must be added to both tables below.
type Kind int

const (
	KindUnauthorized Kind = iota
	KindQuotaExceeded
	KindUnsupportedFormat
	KindEmptyFile
	KindParseFailure
	KindInternal
)

// Error pairs a failure kind with the client-facing message.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

func newError(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// Status returns the HTTP status for a failure kind.
func (k Kind) Status() int {
	switch k {
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindQuotaExceeded:
		return http.StatusForbidden
	case KindUnsupportedFormat, KindEmptyFile, KindParseFailure:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Code returns the machine-readable error code for a failure kind.
func (k Kind) Code() string {
	switch k {
	case KindUnauthorized:
		return "unauthorized"
	case KindQuotaExceeded:
		return "quota_exceeded"
	case KindUnsupportedFormat:
		return "unsupported_format"
	case KindEmptyFile:
		return "empty_file"
	case KindParseFailure:
		return "parse_failure"
	default:
		return "internal_error"
	}
}

// Client-facing messages. These are part of the API contract; frontends
// match on them, so the wording never changes.
const (
	msgInvalidFormat = "Invalid file format. Please upload PDF or DOCX."
	msgEmptyFile     = "File is empty."
	msgLimitReached  = "Usage limit exceeded. You have reached the maximum of %d resume analyses."
)
