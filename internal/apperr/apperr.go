// Package apperr normalises every failure the client can see into one error
// type carrying a Kind tag.
package apperr

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind classifies an error for the caller.
type Kind int

const (
	// KindBackend is any failed request that is not one of the others.
	KindBackend Kind = iota
	// KindAuth is a 401/403 response or a request that got no response at all.
	KindAuth
	// KindValidation is a local check that blocked a request before sending it.
	KindValidation
	// KindSyncConflict is a write the backend answered with success=false.
	KindSyncConflict
	// KindTimeout is a request that hit its deadline.
	KindTimeout
)

func (k Kind) String() string {
	switch k {
	case KindAuth:
		return "auth"
	case KindValidation:
		return "validation"
	case KindSyncConflict:
		return "sync-conflict"
	case KindTimeout:
		return "timeout"
	default:
		return "backend"
	}
}

// Sentinels for errors.Is checks against a kind.
var (
	ErrBackend      = &Error{Kind: KindBackend}
	ErrAuth         = &Error{Kind: KindAuth}
	ErrValidation   = &Error{Kind: KindValidation}
	ErrSyncConflict = &Error{Kind: KindSyncConflict}
	ErrTimeout      = &Error{Kind: KindTimeout}
)

// ProblemDetail is the RFC 7807 body the backend sends with error responses.
type ProblemDetail struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
}

// Error is the single error type surfaced by the client.
type Error struct {
	Kind    Kind
	Status  int    // HTTP status, 0 if no response was received
	Title   string // problem title
	Detail  string // problem detail
	Message string // local description
	Err     error  // underlying cause
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	if e.Status > 0 {
		fmt.Fprintf(&b, " (%d)", e.Status)
	}
	if text := e.text(); text != "" {
		b.WriteString(": ")
		b.WriteString(text)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) text() string {
	switch {
	case e.Detail != "":
		return e.Detail
	case e.Title != "":
		return e.Title
	default:
		return e.Message
	}
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error with the same Kind, so errors.Is(err, ErrAuth) works
// for every auth failure.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the kind of err, KindBackend for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindBackend
}

// IsAuth reports whether err requires re-authentication.
func IsAuth(err error) bool {
	return err != nil && KindOf(err) == KindAuth
}

// FromResponse builds an error from a non-2xx response. The body is parsed as
// problem details when possible.
func FromResponse(status int, body []byte) *Error {
	e := &Error{Kind: KindBackend, Status: status}
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		e.Kind = KindAuth
	}

	var pd ProblemDetail
	if len(body) > 0 && json.Unmarshal(body, &pd) == nil {
		e.Title = pd.Title
		e.Detail = pd.Detail
	}
	if e.Title == "" && e.Detail == "" {
		e.Message = http.StatusText(status)
	}
	return e
}

// FromTransport classifies an error that prevented any response. A request
// that timed out is a timeout, a cancelled one is passed through unchanged,
// anything else has no status and therefore counts as an auth failure.
func FromTransport(err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
		return &Error{Kind: KindTimeout, Message: "request timed out", Err: err}
	}
	return &Error{Kind: KindAuth, Message: "no response from backend", Err: err}
}

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}

// Validation reports a local form check that failed.
func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// SyncConflict reports a write the backend rejected with success=false.
func SyncConflict(message string) *Error {
	if message == "" {
		message = "the backend rejected the update"
	}
	return &Error{Kind: KindSyncConflict, Message: message}
}

// Backend reports an unsuccessful result envelope.
func Backend(message string) *Error {
	return &Error{Kind: KindBackend, Message: message}
}

// UserMessage returns the text shown to the user for err: the backend's
// description when present, otherwise the error string.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		if text := e.text(); text != "" {
			return text
		}
	}
	return err.Error()
}
