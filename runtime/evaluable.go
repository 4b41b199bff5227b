package runtime

// EvalFunc is the body of a deferred computation. It receives the captured
// environment and returns a new (owned) object.
type EvalFunc func(env *Environment) (Object, error)

// Evaluable is a thunk: a deferred computation bound to the environment it
// was created in. It is evaluated at most once; the result is memoized.
type Evaluable struct {
	header
	function EvalFunc
	env      *Environment
	cached   Object
	done     bool
}

// MakeEvaluable creates a thunk for fn over env, retaining env.
func MakeEvaluable(fn EvalFunc, env *Environment) *Evaluable {
	return &Evaluable{
		header:   newHeader(EvaluableType),
		function: fn,
		env:      env.Retain(),
	}
}

// IsEvaluated is a predicate: has the thunk already been forced?
func (ev *Evaluable) IsEvaluated() bool {
	return ev.done
}

// Force evaluates o if it is an Evaluable and returns the result with an
// additional reference for the caller. The function of a thunk runs only on
// the first call; after that the memoized result is returned and the captured
// environment is released, as it is no longer needed. If the function fails,
// nothing is memoized and the thunk may be forced again.
//
// Objects which are not Evaluables are returned unchanged, without touching
// their reference count.
//
// A thunk forcing itself from within its own function is not supported.
func Force(o Object) (Object, error) {
	ev, ok := o.(*Evaluable)
	if !ok {
		return o, nil
	}
	if ev.dead {
		return nil, NewError(TypeMismatch, "force", "live EVALUABLE", "released EVALUABLE")
	}
	if !ev.done {
		result, err := ev.function(ev.env)
		if err != nil {
			return nil, err
		}
		ev.cached = result
		ev.done = true
		env := ev.env
		ev.env = nil
		env.Release()
	}
	return Retain(ev.cached), nil
}

func (ev *Evaluable) destroy() {
	if ev.done {
		cached := ev.cached
		ev.cached = nil
		Release(cached)
		return
	}
	env := ev.env
	ev.env = nil
	env.Release()
}
