package ingest

import (
	"github.com/scriptorium-project/scriptorium/internal/logging"
)

// Result is the outcome of an asynchronous population run.
type Result struct {
	Stats Stats
	Err   error
}

// Startup launches population on its own goroutine and returns a channel
// that delivers the single Result when the run finishes. The channel is
// buffered, so a caller that never reads it does not leak the goroutine.
// A failed run is logged here; callers decide whether it is fatal, and for
// server startup it never is.
func Startup(r *Runner, root string, opts Options) <-chan Result {
	ch := make(chan Result, 1)
	go func() {
		stats, err := r.Run(root, opts)
		if err != nil {
			logging.Error("startup population failed", "error", err)
		}
		ch <- Result{Stats: stats, Err: err}
		close(ch)
	}()
	return ch
}
