package api

import "encoding/json"

// Origin tells where the value of a Result came from
type Origin int

const (
	OriginNone Origin = iota
	// Fresh cached document, no request was made
	OriginCache
	OriginNetwork
	// Cached document of any age, served because the request failed
	OriginStale
)

func (o Origin) String() string {
	switch o {
	case OriginCache:
		return "cache"
	case OriginNetwork:
		return "network"
	case OriginStale:
		return "stale"
	default:
		return "none"
	}
}

// Result holds either a value or the error that prevented producing one.
// Callers must check OK before using Value.
type Result[T any] struct {
	Value  T
	Err    *Error
	Origin Origin
	// Failure that caused a stale document to be served, only set for OriginStale
	Fallback *Error
}

// OK reports whether the result carries a value
func (r Result[T]) OK() bool {
	return r.Err == nil
}

func failed[T any](err *Error) Result[T] {
	return Result[T]{Err: err}
}

// decode turns a raw document result into a typed one
func decode[T any](r Result[json.RawMessage]) Result[T] {
	if r.Err != nil {
		return failed[T](r.Err)
	}

	var v T
	if err := json.Unmarshal(r.Value, &v); err != nil {
		return failed[T](invalidResponseError(err))
	}
	return Result[T]{Value: v, Origin: r.Origin, Fallback: r.Fallback}
}

// mapValue transforms the value of a successful result, keeping its origin
func mapValue[T, U any](r Result[T], f func(T) U) Result[U] {
	if r.Err != nil {
		return failed[U](r.Err)
	}
	return Result[U]{Value: f(r.Value), Origin: r.Origin, Fallback: r.Fallback}
}
