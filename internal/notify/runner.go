package notify

// Runner executes functions either synchronously or asynchronously, so the
// dispatcher's goroutine decision can be swapped out in tests.
type Runner interface {
	// Do executes the given function.
	Do(fn func())
}

// Async is a Runner that executes each function in a new goroutine.
type Async struct{}

// Do executes the function in a new goroutine.
func (Async) Do(fn func()) {
	go fn()
}

// Sync is a Runner that executes functions in the calling goroutine.
type Sync struct{}

// Do executes the function immediately in the current goroutine.
func (Sync) Do(fn func()) {
	fn()
}
