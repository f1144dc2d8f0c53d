package logger

import (
	"fmt"
	"runtime/debug"

	"github.com/rs/zerolog"
)

// LogPanic logs a recovered panic with its stack trace and exits. It must be
// deferred directly so that recover sees the panic.
func LogPanic(hmmLogger zerolog.Logger) {
	r := recover()
	if r == nil {
		return
	}
	hmmLogger.Fatal().
		Caller().
		Str("error", fmt.Sprint(r)).
		Str("stack_trace", string(debug.Stack())).
		Msg("Program panicked and exited")
}
