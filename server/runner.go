package server

import (
	"fmt"

	"github.com/chazu/glkrun/glk"
)

// Interpreter is the hosted program: it drives a session until it returns
// or calls Exit. The layer is single-threaded, so the interpreter owns the
// session for its whole lifetime.
type Interpreter func(*glk.Session) error

// Runner executes one interpreter on a dedicated goroutine. The session's
// blocking reads suspend that goroutine, never the caller's.
type Runner struct {
	session *glk.Session
	done    chan error
}

// NewRunner starts fn against session on its own goroutine. Panics in the
// interpreter are flattened to errors so a broken program cannot take the
// server down with it.
func NewRunner(session *glk.Session, fn Interpreter) *Runner {
	r := &Runner{
		session: session,
		done:    make(chan error, 1),
	}
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				r.done <- fmt.Errorf("interpreter panic: %v", rec)
			}
		}()
		r.done <- fn(session)
	}()
	return r
}

// Wait blocks until the interpreter returns and yields its error.
func (r *Runner) Wait() error {
	return <-r.done
}

// Done exposes the completion channel for select-based callers.
func (r *Runner) Done() <-chan error {
	return r.done
}

// Session returns the runner's session.
func (r *Runner) Session() *glk.Session {
	return r.session
}
