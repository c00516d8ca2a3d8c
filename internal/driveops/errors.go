package driveops

import (
	"errors"
	"fmt"
)

// Query error kinds. Use errors.Is(err, driveops.ErrNotFound) to check.
var (
	ErrBadRequest     = errors.New("driveops: bad request")
	ErrNotFound       = errors.New("driveops: not found")
	ErrInvalidContent = errors.New("driveops: invalid content")
)

// QueryError carries a message that is safe to show to API clients next to
// the kind sentinel and the underlying cause.
type QueryError struct {
	Kind   error  // ErrBadRequest, ErrNotFound, or ErrInvalidContent
	Detail string // client-facing message
	Err    error  // underlying cause, may be nil
}

func (e *QueryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Detail, e.Err)
	}

	return e.Detail
}

func (e *QueryError) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}

	return []error{e.Kind}
}

func badRequest(format string, args ...any) error {
	return &QueryError{Kind: ErrBadRequest, Detail: fmt.Sprintf(format, args...)}
}

func notFound(cause error, format string, args ...any) error {
	return &QueryError{Kind: ErrNotFound, Detail: fmt.Sprintf(format, args...), Err: cause}
}

func invalidContent(cause error, format string, args ...any) error {
	return &QueryError{Kind: ErrInvalidContent, Detail: fmt.Sprintf(format, args...), Err: cause}
}
