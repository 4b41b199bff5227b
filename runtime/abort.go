package runtime

import (
	"fmt"
	"os"
)

// The runtime reports all recoverable failures as *Error. Running out of
// memory is the one condition where it gives up: Abort prints a diagnostic
// and terminates the process.

// exit terminates the process; tests replace it.
var exit = os.Exit

// abortExitCode mirrors the exit status of a process killed by SIGABRT.
const abortExitCode = 134

// Abort writes a one-line diagnostic to the tracer and to stderr, then
// terminates the process.
func Abort(err error) {
	tracer().Errorf("fatal: %v", err)
	fmt.Fprintf(os.Stderr, "%v\n", err)
	exit(abortExitCode)
}

// Must is used by generated code which prefers fail-fast semantics: it
// returns obj if err is nil and aborts otherwise.
func Must(obj Object, err error) Object {
	if err != nil {
		Abort(err)
	}
	return obj
}

// AbortAllocation aborts with an AllocationFailure. Allocations on the Go heap
// never need this; it guards C-heap allocations of the native-call bridge.
func AbortAllocation(op string, size uintptr) {
	Abort(Errorf(AllocationFailure, op, "memory", "%d bytes not available", size))
}
