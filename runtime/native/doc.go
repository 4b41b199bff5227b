/*
Package native bridges CLisp to natively compiled functions.

A native function is described by its symbol name, an optional library alias
and a signature of type tags:

    abs, err := native.Native("abs", "", native.Integer, native.Integer)
    cos, err := native.Native("cos", "m", native.Double, native.Double)

Symbols are searched in the running process first, then in the shared
libraries the alias stands for (see Aliases). Resolved functions are
wrapped into native lambdas, callable with runtime.Call like any other
lambda.

Calls are made through libffi. Arguments are checked against the declared
signature before anything is marshaled, so a type mismatch never reaches
the foreign function. A signature which does not match the real function can
still crash it; on Linux and macOS such a call is guarded, and a
segmentation fault during the call is reported as a NativeCallFault instead
of terminating the process. The guard is a last resort and may be switched
off with the configuration key "native.no-fault-trap".

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package native

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'clisp.native'.
func tracer() tracing.Trace {
	return tracing.Select("clisp.native")
}
