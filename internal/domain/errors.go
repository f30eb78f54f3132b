package domain

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/cbsr/biobank/internal/common"
)

// ErrBuildNotOverridden is returned by a Factory that has no Build step.
var ErrBuildNotOverridden = errors.New("build step must be overridden")

// Kind classifies failures surfaced to callers.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindVersionConflict
	KindTransport
	KindDomain
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindVersionConflict:
		return "version conflict"
	case KindTransport:
		return "transport"
	case KindDomain:
		return "domain"
	}
	return "unknown"
}

// ValidationError reports a payload that does not match an entity schema.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// DomainError reports a violated domain rule, such as disabling a study
// that is already disabled.
type DomainError struct {
	Message string
}

func (e *DomainError) Error() string { return e.Message }

// NewDomainError formats a DomainError.
func NewDomainError(format string, args ...any) *DomainError {
	return &DomainError{Message: fmt.Sprintf(format, args...)}
}

// TransportError is a failed request: Status is the HTTP status, or 0 when
// no response arrived. Err carries the classification (a common sentinel)
// or the underlying network error.
type TransportError struct {
	Status  int
	Message string
	Err     error
}

func (e *TransportError) Error() string {
	if e.Status == 0 {
		return "transport: " + e.Message
	}
	return fmt.Sprintf("server responded %d: %s", e.Status, e.Message)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ClassifyServerError turns a rejected response into a TransportError. This
// is the only place the conflict message text is inspected.
func ClassifyServerError(status int, message string) *TransportError {
	te := &TransportError{Status: status, Message: message}
	switch {
	case strings.Contains(message, common.VersionConflictMessage):
		te.Err = common.ErrVersionConflict
	case status == http.StatusUnauthorized:
		te.Err = common.ErrUnauthorized
	case status == http.StatusForbidden:
		te.Err = common.ErrForbidden
	case status == http.StatusNotFound:
		te.Err = common.ErrNotFound
	}
	return te
}

// IsVersionConflict reports whether err is a stale-version rejection.
func IsVersionConflict(err error) bool {
	return errors.Is(err, common.ErrVersionConflict)
}

// KindOf classifies err. Anything unrecognised that is not nil is treated
// as a transport failure.
func KindOf(err error) Kind {
	var (
		ve *ValidationError
		de *DomainError
	)
	switch {
	case err == nil:
		return KindUnknown
	case IsVersionConflict(err):
		return KindVersionConflict
	case errors.As(err, &ve):
		return KindValidation
	case errors.As(err, &de):
		return KindDomain
	}
	return KindTransport
}
