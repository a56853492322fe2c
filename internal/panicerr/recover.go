// Package panicerr isolates a function in its own goroutine, turning halts,
// panics, and runtime.Goexit calls into plain error returns.
package panicerr

// Recover runs f in a new goroutine, recovering any abnormal exit or panic as
// a non-nil error return. A panic raised through Halt returns its error
// unchanged, nil included.
func Recover(name string, f func() error) error {
	errch := make(chan error, 1)
	go func() {
		defer close(errch)
		defer recoverExit(name, errch)
		defer recoverPanic(name, errch)
		errch <- f()
	}()
	return <-errch
}

// Halt stops the function running under Recover, which returns err.
func Halt(err error) {
	panic(halt{err})
}

type halt struct{ err error }

func (h halt) Error() string {
	if h.err != nil {
		return "halted: " + h.err.Error()
	}
	return "halted"
}
