package http

// Result is the outcome of one API call: a value or an error, never both.
type Result[T any] struct {
	Value T
	Err   error
}

func Ok[T any](v T) Result[T] { return Result[T]{Value: v} }

func Err[T any](err error) Result[T] { return Result[T]{Err: err} }

func (r Result[T]) IsOk() bool { return r.Err == nil }

func (r Result[T]) Unwrap() (T, error) { return r.Value, r.Err }

// ValueOr returns the value, or fallback when the call failed.
func (r Result[T]) ValueOr(fallback T) T {
	if r.Err != nil {
		return fallback
	}
	return r.Value
}
