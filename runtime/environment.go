package runtime

import (
	"fmt"
)

// Environments hold variable bindings. Environments link back to a
// parent environment, forming a tree of lexical scopes.
//
// Environments are reference counted, just like objects. A child owns a
// reference to its parent, therefore a parent cannot be destroyed while one
// of its children is still alive.

// binding is a name bound to a value. The environment owns one reference
// to the value.
type binding struct {
	name  string
	value Object
}

// Environment is a lexical scope: an ordered list of bindings plus a link to
// the enclosing scope. Name resolution scans the bindings of a scope
// linearly, innermost scope first; scopes are expected to hold tens of
// bindings, not thousands.
type Environment struct {
	Name     string
	serial   int
	parent   *Environment
	bindings *DynamicArray[binding]
	refs     uint32
	dead     bool
	reg      *registry
}

// envSerial numbers environments in creation order.
var envSerial int

// NewEnvironment creates a new scope with a small initial capacity.
func NewEnvironment(parent *Environment) *Environment {
	return NewEnvironmentWithCapacity(parent, basicCapacity)
}

// NewEnvironmentWithCapacity creates a new scope with room for n bindings.
// The new scope retains its parent (if any) and is tracked by the runtime the
// parent belongs to.
func NewEnvironmentWithCapacity(parent *Environment, n int) *Environment {
	env := &Environment{
		parent:   parent,
		bindings: NewDynamicArray[binding](n),
		refs:     1,
	}
	envSerial++
	env.serial = envSerial
	env.Name = fmt.Sprintf("env%d", env.serial)
	if parent != nil {
		parent.Retain()
		env.reg = parent.reg
	}
	env.reg.add(env)
	if traceRefs {
		tracer().P("env", env.Name).Debugf("new environment")
	}
	return env
}

// Prettyfied Stringer.
func (env *Environment) String() string {
	return fmt.Sprintf("<env %s>", env.Name)
}

// Parent returns the enclosing scope, or nil for a root scope.
func (env *Environment) Parent() *Environment {
	return env.parent
}

// IsRoot is a predicate: is this a scope without parent?
func (env *Environment) IsRoot() bool {
	return env.parent == nil
}

// Refs returns the reference count of the environment.
func (env *Environment) Refs() uint32 {
	return env.refs
}

// IsAlive is a predicate: has the environment not yet been destroyed?
func (env *Environment) IsAlive() bool {
	return env != nil && !env.dead
}

// Size counts the bindings of this scope (ancestors not included).
func (env *Environment) Size() int {
	return env.bindings.Len()
}

// Each iterates over the bindings of this scope in definition order.
// Values are borrowed.
func (env *Environment) Each(mapper func(string, Object)) {
	env.bindings.Each(func(_ int, b binding) {
		mapper(b.name, b.value)
	})
}

// Retain adds an owner to the environment.
func (env *Environment) Retain() *Environment {
	if env == nil {
		return nil
	}
	if env.dead {
		panic(fmt.Errorf("attempt to retain destroyed environment %s", env.Name))
	}
	env.refs++
	return env
}

// Release drops an owner of the environment. The last release destroys it.
func (env *Environment) Release() {
	if env == nil || env.refs == 0 {
		return
	}
	env.refs--
	if env.refs == 0 {
		env.destroy()
	}
}

// destroy releases every bound value, then the parent.
func (env *Environment) destroy() {
	if env.dead {
		return
	}
	env.dead = true
	env.refs = 0
	if traceRefs {
		tracer().P("env", env.Name).Debugf("destroying environment with %d bindings", env.bindings.Len())
	}
	bindings := env.bindings
	env.bindings = NewDynamicArray[binding](0)
	bindings.Each(func(_ int, b binding) {
		Release(b.value)
	})
	bindings.Clear()
	env.reg.remove(env)
	parent := env.parent
	env.parent = nil
	parent.Release()
}

func (env *Environment) find(name string) int {
	for i := 0; i < env.bindings.Len(); i++ {
		if env.bindings.data[i].name == name {
			return i
		}
	}
	return -1
}

func (env *Environment) checkLive(op string) error {
	if env == nil {
		return NewError(TypeMismatch, op, "environment", "nil")
	}
	if env.dead {
		return NewError(TypeMismatch, op, "live environment", "destroyed "+env.Name)
	}
	return nil
}

// Bind binds name to value in this scope, retaining value. If name is already
// bound in this scope (ancestors are not considered), the old value is
// released and replaced.
func (env *Environment) Bind(name string, value Object) error {
	if err := env.checkLive("bind"); err != nil {
		return err
	}
	Retain(value)
	if i := env.find(name); i >= 0 {
		old := env.bindings.data[i].value
		env.bindings.data[i].value = value
		Release(old)
		return nil
	}
	env.bindings.Append(binding{name: name, value: value})
	return nil
}

// Assign searches this scope and its ancestors for name and replaces the
// first binding found. No new binding is ever created. Returns an
// Unspecified marker, owned by the caller.
func (env *Environment) Assign(name string, value Object) (Object, error) {
	if err := env.checkLive("assign"); err != nil {
		return nil, err
	}
	for e := env; e != nil; e = e.parent {
		if i := e.find(name); i >= 0 {
			Retain(value)
			old := e.bindings.data[i].value
			e.bindings.data[i].value = value
			Release(old)
			return MakeUnspecified(), nil
		}
	}
	return nil, NewError(UnboundVariable, "assign", "bound variable", name)
}

// Lookup searches this scope and its ancestors for name. The value returned
// is borrowed: no reference count changes. Callers keeping the value have to
// Retain it.
func (env *Environment) Lookup(name string) (Object, error) {
	v, scope := env.Resolve(name)
	if scope == nil {
		if err := env.checkLive("lookup"); err != nil {
			return nil, err
		}
		return nil, NewError(UnboundVariable, "lookup", "bound variable", name)
	}
	return v, nil
}

// Resolve finds a binding. Returns the value (or nil) and the scope of the
// scope chain the binding was found in (or nil).
func (env *Environment) Resolve(name string) (Object, *Environment) {
	for e := env; e != nil && !e.dead; e = e.parent {
		if i := e.find(name); i >= 0 {
			return e.bindings.data[i].value, e
		}
	}
	return nil, nil
}

// Adopt moves the bindings of env into a freshly allocated scope with the
// same parent. Every adopted value is retained exactly once by the new scope;
// the caller's reference to env is released. Use it when a scope has to be
// detached from its original storage, e.g. when a loop body scope escapes
// into a closure.
func Adopt(env *Environment) (*Environment, error) {
	if err := env.checkLive("adopt"); err != nil {
		return nil, err
	}
	capacity := env.bindings.Len()
	if capacity == 0 {
		capacity = basicCapacity
	}
	moved := NewEnvironmentWithCapacity(env.parent, capacity)
	env.bindings.Each(func(_ int, b binding) {
		moved.bindings.Append(binding{name: b.name, value: Retain(b.value)})
	})
	env.Release()
	return moved, nil
}
