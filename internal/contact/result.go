package contact

// Result is the outcome of a read against the store: either a value or the
// reason it could not be produced.
type Result[T any] struct {
	Value T
	Err   error
}

// Success wraps a value.
func Success[T any](v T) Result[T] {
	return Result[T]{Value: v}
}

// Failure wraps a failure reason.
func Failure[T any](err error) Result[T] {
	return Result[T]{Err: err}
}

// OK reports whether the result carries a value.
func (r Result[T]) OK() bool {
	return r.Err == nil
}
