package runtime

import (
	"github.com/emirpasic/gods/stacks/arraystack"
)

// Stack is a LIFO container. It is used for the stack of active scopes of a
// runtime and by the native-call bridge to unwind temporary allocations.
// Popping from an empty stack is an IndexOutOfRange error ("stack underflow").
type Stack struct {
	items *arraystack.Stack
}

// NewStack creates an empty stack.
func NewStack() *Stack {
	return &Stack{items: arraystack.New()}
}

// Push puts an item on top of the stack.
func (st *Stack) Push(item interface{}) {
	st.items.Push(item)
}

// Pop removes the top-most item and returns it.
func (st *Stack) Pop() (interface{}, error) {
	item, ok := st.items.Pop()
	if !ok {
		return nil, NewError(IndexOutOfRange, "stack-pop", "non-empty stack", "stack underflow")
	}
	return item, nil
}

// Peek returns the top-most item without removing it.
func (st *Stack) Peek() (interface{}, error) {
	item, ok := st.items.Peek()
	if !ok {
		return nil, NewError(IndexOutOfRange, "stack-peek", "non-empty stack", "stack underflow")
	}
	return item, nil
}

// Size returns the number of items on the stack.
func (st *Stack) Size() int {
	return st.items.Size()
}

// Empty is a predicate: is the stack empty?
func (st *Stack) Empty() bool {
	return st.items.Empty()
}
