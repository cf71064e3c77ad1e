package logging2

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime/debug"
	"time"
)

// uncaughtLogger is the fixed logger name panic reports are emitted on.
const uncaughtLogger = "uncaught_exceptions"

const (
	tracebackHeader = "---------------------Traceback lines-----------------------"
	tracebackFooter = "---------------------End of Traceback-----------------------"
)

// osExit is swapped in tests.
var osExit = os.Exit

// hookFlushTimeout caps how long the panic hook waits for the queue to
// drain before the process exits.
const hookFlushTimeout = 5 * time.Second

// HandlePanics recovers a panic, logs it at critical severity on the
// "uncaught_exceptions" logger between explicit delimiter lines, flushes the
// queue so the report reaches the sinks, mirrors the panic to the fallback
// writer and exits with status 1. Defer it at the top of main and of
// goroutines whose failures should be captured:
//
//	defer coord.HandlePanics()
//
// A panic carrying context.Canceled (directly or wrapped) is re-raised
// unlogged: cancellation is user-initiated, not a failure.
func (c *Coordinator) HandlePanics() {
	v := recover()
	if v == nil {
		return
	}
	if isCancellation(v) {
		panic(v)
	}

	stack := debug.Stack()
	if logger, err := c.GetLogger(uncaughtLogger); err == nil {
		logger.Critical(tracebackHeader)
		logger.Critical(fmt.Sprintf("panic: %v\n%s", v, stack))
		logger.Critical(tracebackFooter)

		ctx, cancel := context.WithTimeout(context.Background(), hookFlushTimeout)
		_ = c.Flush(ctx)
		cancel()
	}

	// Mirror the default runtime behavior so the failure is visible even
	// when no sink writes to a terminal.
	fmt.Fprintf(c.opts.Fallback, "panic: %v\n\n%s", v, stack)
	osExit(1)
}

func isCancellation(v any) bool {
	err, ok := v.(error)
	return ok && errors.Is(err, context.Canceled)
}
