// Package engine evaluates Lisp model descriptions into kernel solids.
// Scripts run in a fresh zygomys sandbox per call, so evaluation is
// deterministic and user code cannot touch the filesystem.
package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	zygo "github.com/glycerine/zygomys/zygo"
	"go.uber.org/zap"

	"github.com/chazu/sla/internal/logger"
	"github.com/chazu/sla/pkg/kernel"
)

// EvalError is a non-fatal error in user code, such as a parse error or a
// bad builtin argument.
type EvalError struct {
	Line    int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// Engine evaluates model scripts against a solid modelling kernel. It is
// safe for concurrent use; only the most recent evaluation's result is
// delivered.
type Engine struct {
	kernel  kernel.Kernel
	timeout time.Duration

	mu         sync.Mutex
	generation uint64
}

// NewEngine returns an engine building solids with k.
func NewEngine(k kernel.Kernel) *Engine {
	return &Engine{kernel: k, timeout: EvalTimeout}
}

// SetTimeout overrides EvalTimeout for this engine.
func (e *Engine) SetTimeout(d time.Duration) {
	e.mu.Lock()
	e.timeout = d
	e.mu.Unlock()
}

// Evaluate runs source and returns the modelled solid: the argument of the
// last (model ...) call or, failing that, the value of the final
// expression if it is a solid. A script that models nothing yields a nil
// solid.
//
// Errors in user code are returned as EvalErrors with a nil error. The
// error result is reserved for timeouts, panics and superseded calls.
func (e *Engine) Evaluate(source string) (kernel.Solid, []EvalError, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	timeout := e.timeout
	e.mu.Unlock()

	ch := make(chan evalResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()
		s, evalErrs := e.evaluate(source)
		ch <- evalResult{solid: s, errors: evalErrs}
	}()

	start := time.Now()
	s, evalErrs, err := waitWithTimeout(ch, gen, timeout, &e.mu, &e.generation)
	logger.Debug("script evaluated",
		zap.Uint64("generation", gen),
		zap.Bool("solid", s != nil),
		zap.Int("errors", len(evalErrs)),
		zap.Duration("elapsed", time.Since(start)),
		zap.Error(err),
	)
	return s, evalErrs, err
}

func (e *Engine) evaluate(source string) (kernel.Solid, []EvalError) {
	if strings.TrimSpace(source) == "" {
		return nil, nil
	}

	env := zygo.NewZlispSandbox()
	defer env.Stop()

	st := &scriptState{kernel: e.kernel}
	registerBuiltins(env, st)

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return nil, parseZygomysError(err)
	}
	last, err := env.Run()
	if err != nil {
		return nil, parseZygomysError(err)
	}

	if st.model != nil {
		return st.model, nil
	}
	if s, ok := last.(*sexpSolid); ok {
		return s.solid, nil
	}
	return nil, nil
}

// linePattern matches zygomys messages of the form "Error on line N: ...".
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches "line N: ..." at the start of a message.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError turns a zygomys error into EvalErrors, recovering the
// line number when the message carries one.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()
	for _, re := range []*regexp.Regexp{linePattern, linePatternShort} {
		if m := re.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
		}
	}
	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
