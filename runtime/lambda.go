package runtime

import (
	"github.com/emirpasic/gods/lists/arraylist"
)

// UserFunc is the body of a closure. It receives a fresh call environment,
// chained to the closure's defining environment, and the arguments.
type UserFunc func(env *Environment, args []Object) (Object, error)

// LibraryFunc is a stateless function of the runtime library.
type LibraryFunc func(args []Object) (Object, error)

// NativeInvoker calls a resolved native function. It is implemented by
// package native.
type NativeInvoker interface {
	Invoke(args []Object) (Object, error)
	Free()
	String() string
}

// LambdaKind discriminates the call strategies of lambdas.
type LambdaKind int8

// Call strategies.
const (
	UserLambda LambdaKind = iota
	LibraryLambda
	NativeLambda
)

func (k LambdaKind) String() string {
	switch k {
	case UserLambda:
		return "user"
	case LibraryLambda:
		return "library"
	case NativeLambda:
		return "native"
	}
	return "unknown"
}

// callee is implemented by the call strategies.
type callee interface {
	call(args []Object) (Object, error)
	destroy()
	kind() LambdaKind
}

// Lambda is a callable object. Calling conventions are the same for every
// kind of lambda: arguments are borrowed from the caller, the result is
// owned by the caller.
type Lambda struct {
	header
	callee callee
}

// Kind returns the call strategy of a lambda.
func (l *Lambda) Kind() LambdaKind {
	return l.callee.kind()
}

// --- User lambdas (closures) -------------------------------------------------

type userCallee struct {
	fn       UserFunc
	env      *Environment
	callEnvs *arraylist.List // every call environment spawned by this closure
}

// MakeUser creates a closure over env, retaining env.
func MakeUser(fn UserFunc, env *Environment) *Lambda {
	return &Lambda{
		header: newHeader(LambdaType),
		callee: &userCallee{fn: fn, env: env.Retain(), callEnvs: arraylist.New()},
	}
}

func (u *userCallee) kind() LambdaKind {
	return UserLambda
}

// call creates a call environment and hands it to the closure body. The
// call environment stays alive as long as the closure does, as thunks
// created during the call may still refer to it.
func (u *userCallee) call(args []Object) (Object, error) {
	callEnv := NewEnvironmentWithCapacity(u.env, len(args))
	u.callEnvs.Add(callEnv)
	if traceRefs {
		tracer().P("env", callEnv.Name).Debugf("closure call #%d", u.callEnvs.Size())
	}
	return u.fn(callEnv, args)
}

func (u *userCallee) destroy() {
	envs := u.callEnvs
	u.callEnvs = arraylist.New()
	envs.Each(func(_ int, e interface{}) {
		e.(*Environment).Release()
	})
	envs.Clear()
	env := u.env
	u.env = nil
	env.Release()
}

// CallEnvironments returns the number of call environments a closure has
// spawned and still keeps alive. It is 0 for other kinds of lambdas.
func (l *Lambda) CallEnvironments() int {
	if u, ok := l.callee.(*userCallee); ok {
		return u.callEnvs.Size()
	}
	return 0
}

// --- Library lambdas ---------------------------------------------------------

type libraryCallee struct {
	fn LibraryFunc
}

// MakeLibrary creates a lambda for a stateless library function.
func MakeLibrary(fn LibraryFunc) *Lambda {
	return &Lambda{header: newHeader(LambdaType), callee: libraryCallee{fn: fn}}
}

func (lib libraryCallee) kind() LambdaKind {
	return LibraryLambda
}

func (lib libraryCallee) call(args []Object) (Object, error) {
	return lib.fn(args)
}

func (lib libraryCallee) destroy() {}

// --- Native lambdas ----------------------------------------------------------

type nativeCallee struct {
	inv NativeInvoker
}

// MakeNative creates a lambda for a resolved native function.
func MakeNative(inv NativeInvoker) *Lambda {
	return &Lambda{header: newHeader(LambdaType), callee: &nativeCallee{inv: inv}}
}

func (n *nativeCallee) kind() LambdaKind {
	return NativeLambda
}

func (n *nativeCallee) call(args []Object) (Object, error) {
	return n.inv.Invoke(args)
}

func (n *nativeCallee) destroy() {
	if n.inv != nil {
		n.inv.Free()
		n.inv = nil
	}
}

// --- Dispatch ----------------------------------------------------------------

// Call calls a lambda with args. The dispatcher only checks that fn is a
// lambda; checking the number and types of arguments is up to the called
// function.
func Call(fn Object, args []Object) (Object, error) {
	l, ok := fn.(*Lambda)
	if !ok || l.dead {
		return nil, NewError(TypeMismatch, "call", LambdaType.String(), describe(fn))
	}
	return l.callee.call(args)
}

// CallSpread calls a lambda for variadic application: the last element of
// args has to be a list, and its elements are appended to the leading
// arguments.
//
//    (apply f 1 2 '(3 4))  ⇒  (f 1 2 3 4)
//
func CallSpread(fn Object, args []Object) (Object, error) {
	if _, ok := fn.(*Lambda); !ok {
		return nil, NewError(TypeMismatch, "apply", LambdaType.String(), describe(fn))
	}
	if len(args) == 0 {
		return nil, NewError(ArityMismatch, "apply", "trailing list argument", "no arguments")
	}
	last := args[len(args)-1]
	if !IsList(last) {
		return nil, NewError(TypeMismatch, "apply", "list as last argument", describe(last))
	}
	tail, _ := ListToSlice(last)
	combined := make([]Object, 0, len(args)-1+len(tail))
	combined = append(combined, args[:len(args)-1]...)
	combined = append(combined, tail...)
	return Call(fn, combined)
}
