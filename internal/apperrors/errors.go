package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for HTTP mapping.
type Kind int

const (
	// KindInvalidParameter means the caller sent missing or malformed input.
	KindInvalidParameter Kind = iota
	// KindUpstream means a third-party service answered non-2xx or garbage.
	KindUpstream
	// KindNoResults means the lookup succeeded but matched nothing. Routes
	// treat this as a valid empty outcome, not a failure.
	KindNoResults
	// KindInternal covers everything else.
	KindInternal
)

// Error is the typed error carried across package boundaries. Status is only
// meaningful for KindUpstream, where it holds the upstream HTTP status to
// forward.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// HTTPStatus maps the error onto a response code.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindInvalidParameter:
		return http.StatusBadRequest
	case KindUpstream:
		if e.Status >= 400 {
			return e.Status
		}
		return http.StatusInternalServerError
	case KindNoResults:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func InvalidParameter(format string, args ...interface{}) *Error {
	return &Error{Kind: KindInvalidParameter, Message: fmt.Sprintf(format, args...)}
}

func Upstream(status int, format string, args ...interface{}) *Error {
	return &Error{Kind: KindUpstream, Status: status, Message: fmt.Sprintf(format, args...)}
}

func UpstreamWrap(status int, err error, message string) *Error {
	return &Error{Kind: KindUpstream, Status: status, Message: message, cause: err}
}

func NoResults(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNoResults, Message: fmt.Sprintf(format, args...)}
}

func Internal(err error, message string) *Error {
	return &Error{Kind: KindInternal, Message: message, cause: err}
}

// As unwraps err down to a typed *Error, or nil if there is none in the chain.
func As(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// IsKind reports whether err carries the given kind anywhere in its chain.
func IsKind(err error, kind Kind) bool {
	appErr := As(err)
	return appErr != nil && appErr.Kind == kind
}
