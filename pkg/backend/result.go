package backend

import (
	"context"
	"errors"
	"fmt"
	"net/url"
)

// Kind classifies why a backend call failed.
type Kind string

const (
	KindUnreachable Kind = "unreachable"
	KindNotFound    Kind = "not_found"
	KindStatus      Kind = "status"
	KindDecode      Kind = "decode"
)

// FetchError reports a failed backend call. Status is zero when no response
// was received.
type FetchError struct {
	Kind   Kind
	Status int
	Path   string
	Err    error
}

func (e *FetchError) Error() string {
	if e == nil {
		return ""
	}
	if e.Status > 0 {
		return fmt.Sprintf("backend %s %s (%d): %v", e.Path, e.Kind, e.Status, e.Err)
	}
	return fmt.Sprintf("backend %s %s: %v", e.Path, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// AsFetchError extracts the FetchError in err's chain, or nil.
func AsFetchError(err error) *FetchError {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe
	}
	return nil
}

// IsKind reports whether err carries a FetchError of the given kind.
func IsKind(err error, kind Kind) bool {
	fe := AsFetchError(err)
	return fe != nil && fe.Kind == kind
}

// Result is the outcome of a backend read: a value, an error, or a
// caller-supplied default standing in for the value.
type Result[T any] struct {
	value    T
	err      error
	fallback bool
}

// Fetch performs a GET and decodes the response into a T.
func Fetch[T any](ctx context.Context, c *Client, path string, query url.Values) Result[T] {
	var out T
	if err := c.Get(ctx, path, query, &out); err != nil {
		return Result[T]{err: err}
	}
	return Result[T]{value: out}
}

// Ok reports whether the backend returned a value.
func (r Result[T]) Ok() bool {
	return r.err == nil && !r.fallback
}

// Err returns the backend failure, or nil when a value (real or default) is held.
func (r Result[T]) Err() error {
	return r.err
}

// Fallback reports whether the held value is the caller's default.
func (r Result[T]) Fallback() bool {
	return r.fallback
}

// Unwrap returns the held value and the failure, if any.
func (r Result[T]) Unwrap() (T, error) {
	return r.value, r.err
}

// OrElse substitutes def for any failure.
func (r Result[T]) OrElse(def T) Result[T] {
	if r.err == nil {
		return r
	}
	return Result[T]{value: def, fallback: true}
}

// OrElseUnreachable substitutes def only when the backend could not be
// reached. A backend that answered with not-found or a bad status keeps its
// error.
func (r Result[T]) OrElseUnreachable(def T) Result[T] {
	if !IsKind(r.err, KindUnreachable) {
		return r
	}
	return Result[T]{value: def, fallback: true}
}
