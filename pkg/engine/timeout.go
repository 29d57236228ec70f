package engine

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chazu/sla/pkg/kernel"
)

// EvalTimeout is the default limit for a single evaluation.
const EvalTimeout = 5 * time.Second

// ErrSuperseded is returned when a newer evaluation started before this
// one finished.
var ErrSuperseded = errors.New("evaluation superseded by newer request")

type evalResult struct {
	solid  kernel.Solid
	errors []EvalError
	err    error
}

// waitWithTimeout waits for the evaluation goroutine's result. A result
// whose generation is no longer current is discarded. On timeout the
// goroutine keeps running; its late result is dropped by the buffered
// channel.
func waitWithTimeout(
	ch <-chan evalResult,
	gen uint64,
	timeout time.Duration,
	mu *sync.Mutex,
	currentGen *uint64,
) (kernel.Solid, []EvalError, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		mu.Lock()
		current := *currentGen
		mu.Unlock()
		if gen != current {
			return nil, nil, ErrSuperseded
		}
		return res.solid, res.errors, res.err

	case <-timer.C:
		return nil, nil, fmt.Errorf("evaluation timed out after %s", timeout)
	}
}
