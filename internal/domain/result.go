package domain

// ResultState discriminates a Result.
type ResultState int

const (
	StateLoading ResultState = iota
	StateSuccess
	StateFailure
)

func (s ResultState) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateSuccess:
		return "success"
	case StateFailure:
		return "failure"
	default:
		return "unknown"
	}
}

// Result is a tagged union of Loading, Success(T) and Failure(error).
// The zero value is Loading.
type Result[T any] struct {
	state ResultState
	value T
	err   error
}

// Loading returns a Result in the loading state
func Loading[T any]() Result[T] {
	return Result[T]{state: StateLoading}
}

// Success wraps a value
func Success[T any](v T) Result[T] {
	return Result[T]{state: StateSuccess, value: v}
}

// Failure wraps an error. A nil error is not allowed.
func Failure[T any](err error) Result[T] {
	if err == nil {
		panic("domain: Failure called with nil error")
	}
	return Result[T]{state: StateFailure, err: err}
}

func (r Result[T]) State() ResultState { return r.state }

// Match calls exactly one of the handlers. All three are required.
func (r Result[T]) Match(onLoading func(), onSuccess func(T), onFailure func(error)) {
	switch r.state {
	case StateSuccess:
		onSuccess(r.value)
	case StateFailure:
		onFailure(r.err)
	default:
		onLoading()
	}
}

// Get returns the value and whether the result is a success.
func (r Result[T]) Get() (T, bool) {
	return r.value, r.state == StateSuccess
}

// Err returns the failure, nil otherwise.
func (r Result[T]) Err() error {
	if r.state != StateFailure {
		return nil
	}
	return r.err
}
