// Package fatal turns primary-data failures into values that a single dispatcher renders as a
// recovery view. Non-critical loads use Degrade instead and never reach this surface.
package fatal

import (
	"errors"
	"fmt"
	"strings"

	"projectforge-cli/internal/api"

	"github.com/rs/zerolog"
)

const (
	Title          = "Something went wrong"
	DefaultMessage = "An unexpected error occurred. Please try again."
)

// Failure is a terminal failure of one primary-data operation.
type Failure struct {
	Op      api.Op
	Message string
	Err     error
}

func New(op api.Op, err error) *Failure {
	msg := api.Message(op, err)
	if strings.TrimSpace(msg) == "" {
		msg = DefaultMessage
	}
	return &Failure{Op: op, Message: msg, Err: err}
}

func (f *Failure) Error() string { return f.Message }
func (f *Failure) Unwrap() error { return f.Err }

// Detail lists the op, backend status and the wrapped error chain, outermost first.
func (f *Failure) Detail() string {
	var b strings.Builder
	fmt.Fprintf(&b, "op: %s\n", f.Op)
	var apiErr *api.Error
	if errors.As(f.Err, &apiErr) {
		fmt.Fprintf(&b, "status: %d\n", apiErr.Status)
	}
	for err, depth := f.Err, 0; err != nil; err, depth = errors.Unwrap(err), depth+1 {
		fmt.Fprintf(&b, "%s%s\n", strings.Repeat("  ", depth), err.Error())
	}
	return strings.TrimRight(b.String(), "\n")
}

// Result is either a value or a Failure.
type Result[T any] struct {
	value   T
	failure *Failure
}

func OK[T any](v T) Result[T] { return Result[T]{value: v} }

func Fail[T any](op api.Op, err error) Result[T] {
	return Result[T]{failure: New(op, err)}
}

// From builds a Result from a (value, error) pair.
func From[T any](op api.Op, v T, err error) Result[T] {
	if err != nil {
		return Fail[T](op, err)
	}
	return OK(v)
}

func (r Result[T]) Value() (T, bool)   { return r.value, r.failure == nil }
func (r Result[T]) Failure() *Failure { return r.failure }
func (r Result[T]) Failed() bool      { return r.failure != nil }

// Action is a user-initiated way out of the recovery view.
type Action int

const (
	ActionGoBack Action = iota
	ActionGoHome
)

func (a Action) Label() string {
	switch a {
	case ActionGoBack:
		return "Go Back"
	case ActionGoHome:
		return "Go Home"
	default:
		return ""
	}
}

// Recovery is what the dispatcher renders for a Failure.
type Recovery struct {
	Title       string
	Message     string
	Actions     []Action
	Diagnostics string
}

// NewRecovery builds the recovery view. Diagnostics are only filled outside production.
func NewRecovery(f *Failure, production bool) Recovery {
	r := Recovery{
		Title:   Title,
		Message: DefaultMessage,
		Actions: []Action{ActionGoBack, ActionGoHome},
	}
	if f == nil {
		return r
	}
	if strings.TrimSpace(f.Message) != "" {
		r.Message = f.Message
	}
	if !production {
		r.Diagnostics = f.Detail()
	}
	return r
}

// Degrade handles a non-critical load: on error it logs a warning and yields an empty,
// non-nil collection.
func Degrade[T any](log zerolog.Logger, op api.Op, v []T, err error) []T {
	if err != nil {
		log.Warn().Str("op", string(op)).Err(err).Msg("non-critical fetch failed")
		return []T{}
	}
	if v == nil {
		return []T{}
	}
	return v
}
