/*
Package runtime implements the execution runtime of CLisp, consisting of
reference counted objects, environments (lexical scopes), thunks and
lambdas.

Objects

Every runtime value implements Object and carries a type tag and a reference
count. Constructors hand out objects with a count of 1. Retain and Release
add and drop owners; when the last owner drops an object, it releases
everything it owns in turn. The data model is acyclic by convention, there is
no cycle detection.

Environments

Environments are scopes of name/value bindings, linked to a parent scope.
A Runtime holds the global environment, pre-populated with library
functions from registration tables, a stack of active scopes and a registry
of every environment still reachable, which is drained when the runtime is
closed.

Lambdas and thunks

A Lambda is either a user closure, a stateless library function or a native
function (see package native). Evaluables are memoizing thunks over an
environment.

Errors

Failures are reported as *Error with an ErrorKind. Fail-fast
behaviour is available through Must and Abort.

----------------------------------------------------------------------

BSD License

Copyright (c) 2017-21, Norbert Pillmayer

All rights reserved.

Redistribution and use in source and binary forms, with or without
modification, are permitted provided that the following conditions
are met:

1. Redistributions of source code must retain the above copyright
notice, this list of conditions and the following disclaimer.

2. Redistributions in binary form must reproduce the above copyright
notice, this list of conditions and the following disclaimer in the
documentation and/or other materials provided with the distribution.

3. Neither the name of this software or the names of its contributors
may be used to endorse or promote products derived from this software
without specific prior written permission.

THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS
"AS IS" AND ANY EXPRESS OR IMPLIED WARRANTIES, INCLUDING, BUT NOT
LIMITED TO, THE IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS FOR
A PARTICULAR PURPOSE ARE DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT
HOLDER OR CONTRIBUTORS BE LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL,
SPECIAL, EXEMPLARY, OR CONSEQUENTIAL DAMAGES (INCLUDING, BUT NOT
LIMITED TO, PROCUREMENT OF SUBSTITUTE GOODS OR SERVICES; LOSS OF USE,
DATA, OR PROFITS; OR BUSINESS INTERRUPTION) HOWEVER CAUSED AND ON ANY
THEORY OF LIABILITY, WHETHER IN CONTRACT, STRICT LIABILITY, OR TORT
(INCLUDING NEGLIGENCE OR OTHERWISE) ARISING IN ANY WAY OUT OF THE USE
OF THIS SOFTWARE, EVEN IF ADVISED OF THE POSSIBILITY OF SUCH DAMAGE. */
package runtime

import (
	"github.com/emirpasic/gods/maps/treemap"
	"github.com/npillmayer/schuko/gconf"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'clisp.runtime'.
func tracer() tracing.Trace {
	return tracing.Select("clisp.runtime")
}

// Runtime is a type implementing a runtime environment for compiled CLisp
// programs.
type Runtime struct {
	Globals *Environment // global scope, holding the builtins
	scopes  *Stack       // active scopes, global scope at the bottom
	reg     *registry    // every environment still alive
	UData   interface{}  // extension point
}

// NewRuntime constructs a new runtime environment, initialized. The global
// environment is populated with CoreBuiltins, followed by the entries of
// tables, in order. Later entries shadow earlier ones of the same name.
func NewRuntime(tables ...[]NamedFunc) *Runtime {
	traceRefs = gconf.GetBool("runtime.trace-refs")
	rt := &Runtime{
		scopes: NewStack(),
		reg:    newRegistry(),
	}
	all := append([][]NamedFunc{CoreBuiltins}, tables...)
	n := 0
	for _, t := range all {
		n += len(t)
	}
	g := &Environment{Name: "globals", bindings: NewDynamicArray[binding](n), refs: 1, reg: rt.reg}
	envSerial++
	g.serial = envSerial
	rt.reg.add(g)
	for _, table := range all {
		for _, entry := range table {
			l := MakeLibrary(entry.Func)
			_ = g.Bind(entry.Name, l)
			Release(l)
		}
	}
	rt.Globals = g
	rt.scopes.Push(g)
	tracer().P("env", g.Name).Debugf("global environment with %d builtins", g.Size())
	return rt
}

// Current gets the innermost active scope.
func (rt *Runtime) Current() *Environment {
	tos, err := rt.scopes.Peek()
	if err != nil {
		panic("attempt to access scope from empty stack")
	}
	return tos.(*Environment)
}

// PushScope creates a new scope as a child of the current one and makes it
// the current scope. The scope stack owns the new scope.
func (rt *Runtime) PushScope(capacity int) *Environment {
	env := NewEnvironmentWithCapacity(rt.Current(), capacity)
	rt.scopes.Push(env)
	tracer().P("env", env.Name).Debugf("pushing new scope")
	return env
}

// PopScope ends the current scope and releases the stack's reference to it.
// The global scope cannot be popped.
func (rt *Runtime) PopScope() error {
	if rt.scopes.Size() <= 1 {
		return NewError(IndexOutOfRange, "pop-scope", "local scope", "stack underflow")
	}
	tos, err := rt.scopes.Pop()
	if err != nil {
		return err
	}
	env := tos.(*Environment)
	tracer().Debugf("popping scope [%s]", env.Name)
	env.Release()
	return nil
}

// Depth returns the number of active scopes, the global scope included.
func (rt *Runtime) Depth() int {
	return rt.scopes.Size()
}

// Reachable returns the number of environments of this runtime still alive.
func (rt *Runtime) Reachable() int {
	return rt.reg.size()
}

// Close destroys the global environment and every environment still
// reachable. Environments kept alive by reference cycles (e.g. a closure
// bound in the scope it captures) are destroyed, too. Returns the number of
// environments which had to be destroyed forcibly.
func (rt *Runtime) Close() int {
	for rt.scopes.Size() > 1 {
		_ = rt.PopScope()
	}
	_, _ = rt.scopes.Pop()
	rt.Globals.Release()
	forced := rt.reg.drain()
	if forced > 0 {
		tracer().Infof("runtime closed, %d environments destroyed forcibly", forced)
	}
	return forced
}

// --- Registry of reachable environments --------------------------------------

type registry struct {
	envs *treemap.Map // serial → *Environment
}

func newRegistry() *registry {
	return &registry{envs: treemap.NewWithIntComparator()}
}

func (r *registry) add(env *Environment) {
	if r == nil {
		return
	}
	r.envs.Put(env.serial, env)
}

func (r *registry) remove(env *Environment) {
	if r == nil {
		return
	}
	r.envs.Remove(env.serial)
}

func (r *registry) size() int {
	if r == nil {
		return 0
	}
	return r.envs.Size()
}

// drain destroys environments in creation order until none is left.
// Destroying one environment may release others.
func (r *registry) drain() int {
	n := 0
	for r.envs.Size() > 0 {
		env := r.envs.Values()[0].(*Environment)
		tracer().P("env", env.Name).Debugf("destroying unreleased environment")
		env.destroy()
		n++
	}
	return n
}
