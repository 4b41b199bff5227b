/*
Package clisp is the runtime support library for CLisp, a small Lisp
dialect whose programs are compiled ahead of time. Compiled programs link
against this module for their data model and calling conventions.

Package structure is as follows:

■ runtime: Package runtime implements reference counted objects (numbers,
strings, pairs, lists, vectors), lexical environments, memoizing thunks and
lambdas, together with a registration table of core builtins.

■ runtime/native: Package native lets CLisp programs call functions of
shared C libraries through libffi, with argument checking and an optional
guard against faults in the foreign code.

■ cmd/clsandbox: An interactive sandbox for experiments with the runtime.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package clisp
