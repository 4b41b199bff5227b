/*
Package clsandbox/main provides an interactive command line tool for
experiments with the CLisp runtime. It reads s-expressions, evaluates them
against a runtime.Runtime and prints the results. Native functions may be
bound with the "native" builtin:

    clisp> (define abs (native "abs" "c" "integer" "integer"))
    clisp> (abs -7)
      >>  7

Lines starting with a colon are sandbox commands (":env", ":trace <level>",
":libs", ":quit").

The evaluator is intentionally small: it knows define, set!, lambda, delay,
if, begin and quote, and is meant for poking at reference counts and scopes,
not as a language implementation.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/

package main

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'clisp.sandbox'
func tracer() tracing.Trace {
	return tracing.Select("clisp.sandbox")
}
