package result

// Result carries either the data of a successful backend call or the reason
// it was rejected. Exactly one branch is populated.
type Result[T any, E any] struct {
	ok   bool
	data T
	err  E
}

func Ok[T any, E any](data T) Result[T, E] {
	return Result[T, E]{ok: true, data: data}
}

func Err[T any, E any](err E) Result[T, E] {
	return Result[T, E]{ok: false, err: err}
}

func (r Result[T, E]) IsOk() bool {
	return r.ok
}

// Data returns the success payload, or the zero value of T on the failure branch.
func (r Result[T, E]) Data() T {
	if !r.ok {
		var zero T
		return zero
	}
	return r.data
}

// Err returns the failure reason, or the zero value of E on the success branch.
func (r Result[T, E]) Err() E {
	if r.ok {
		var zero E
		return zero
	}
	return r.err
}
