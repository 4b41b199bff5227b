package main

import (
	"fmt"
	"strconv"

	"github.com/npillmayer/clisp/runtime"
)

// node is an s-expression as read from the input: either a single token
// or a parenthesized list.
type node struct {
	tok    token
	list   []*node
	isList bool
}

func (n *node) String() string {
	if !n.isList {
		return n.tok.lexeme
	}
	s := "("
	for i, ch := range n.list {
		if i > 0 {
			s += " "
		}
		s += ch.String()
	}
	return s + ")"
}

// read builds nodes from a token sequence. A line may hold more than one
// expression.
func read(tokens []token) ([]*node, error) {
	var exprs []*node
	for len(tokens) > 0 {
		n, rest, err := readNode(tokens)
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, n)
		tokens = rest
	}
	return exprs, nil
}

func readNode(tokens []token) (*node, []token, error) {
	if len(tokens) == 0 {
		return nil, nil, fmt.Errorf("unexpected end of input")
	}
	tok := tokens[0]
	switch tok.typ {
	case tokRParen:
		return nil, nil, fmt.Errorf("unbalanced ')' at %v", tok.span)
	case tokQuote:
		quoted, rest, err := readNode(tokens[1:])
		if err != nil {
			return nil, nil, err
		}
		q := &node{tok: token{typ: tokIdent, lexeme: "quote", span: tok.span}}
		return &node{isList: true, list: []*node{q, quoted}}, rest, nil
	case tokLParen:
		l := &node{isList: true, tok: tok}
		rest := tokens[1:]
		for {
			if len(rest) == 0 {
				return nil, nil, fmt.Errorf("missing ')' for '(' at %v", tok.span)
			}
			if rest[0].typ == tokRParen {
				return l, rest[1:], nil
			}
			var ch *node
			var err error
			if ch, rest, err = readNode(rest); err != nil {
				return nil, nil, err
			}
			l.list = append(l.list, ch)
		}
	}
	return &node{tok: tok}, tokens[1:], nil
}

// literal creates the object for a self-evaluating token.
func literal(tok token) (runtime.Object, error) {
	switch tok.typ {
	case tokInt:
		v, err := strconv.ParseInt(tok.lexeme, 10, 64)
		if err != nil {
			return nil, err
		}
		return runtime.MakeInt(v), nil
	case tokDouble:
		v, err := strconv.ParseFloat(tok.lexeme, 64)
		if err != nil {
			return nil, err
		}
		return runtime.MakeDouble(v), nil
	case tokString:
		return runtime.MakeString(tok.lexeme[1 : len(tok.lexeme)-1]), nil
	case tokChar:
		return runtime.MakeChar(tok.lexeme[2]), nil
	case tokBool:
		return runtime.MakeBoolean(tok.lexeme == "#t"), nil
	}
	return nil, fmt.Errorf("not a literal: %v", tok)
}

// quote converts a node to data without evaluating it. Identifiers become
// strings, as the object model has no symbols.
func quote(n *node) (runtime.Object, error) {
	if !n.isList {
		if n.tok.typ == tokIdent {
			return runtime.MakeString(n.tok.lexeme), nil
		}
		return literal(n.tok)
	}
	items := make([]runtime.Object, 0, len(n.list))
	defer func() {
		for _, item := range items {
			runtime.Release(item)
		}
	}()
	for _, ch := range n.list {
		item, err := quote(ch)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return runtime.MakeList(items), nil
}

// eval evaluates n in env. The result is owned by the caller.
func eval(n *node, env *runtime.Environment) (runtime.Object, error) {
	if !n.isList {
		if n.tok.typ != tokIdent {
			return literal(n.tok)
		}
		v, err := env.Lookup(n.tok.lexeme)
		if err != nil {
			return nil, err
		}
		return runtime.Retain(v), nil
	}
	if len(n.list) == 0 {
		return runtime.EmptyList(), nil
	}
	if head := n.list[0]; !head.isList && head.tok.typ == tokIdent {
		if form, ok := specialForms[head.tok.lexeme]; ok {
			return form(n.list[1:], env)
		}
	}
	return apply(n.list, env)
}

func apply(exprs []*node, env *runtime.Environment) (runtime.Object, error) {
	fn, err := eval(exprs[0], env)
	if err != nil {
		return nil, err
	}
	defer runtime.Release(fn)
	args := make([]runtime.Object, 0, len(exprs)-1)
	defer func() {
		for _, arg := range args {
			runtime.Release(arg)
		}
	}()
	for _, x := range exprs[1:] {
		arg, err := eval(x, env)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}
	return runtime.Call(fn, args)
}

type specialForm func(args []*node, env *runtime.Environment) (runtime.Object, error)

var specialForms map[string]specialForm

func init() {
	specialForms = map[string]specialForm{
		"quote":  formQuote,
		"define": formDefine,
		"set!":   formSet,
		"lambda": formLambda,
		"delay":  formDelay,
		"if":     formIf,
		"begin":  formBegin,
	}
}

func arity(form string, args []*node, n int) error {
	if len(args) != n {
		return runtime.Errorf(runtime.ArityMismatch, form, fmt.Sprintf("%d operands", n), "%d operands", len(args))
	}
	return nil
}

func identifier(form string, n *node) (string, error) {
	if n.isList || n.tok.typ != tokIdent {
		return "", runtime.NewError(runtime.TypeMismatch, form, "identifier", n.String())
	}
	return n.tok.lexeme, nil
}

func formQuote(args []*node, env *runtime.Environment) (runtime.Object, error) {
	if err := arity("quote", args, 1); err != nil {
		return nil, err
	}
	return quote(args[0])
}

func formDefine(args []*node, env *runtime.Environment) (runtime.Object, error) {
	if err := arity("define", args, 2); err != nil {
		return nil, err
	}
	name, err := identifier("define", args[0])
	if err != nil {
		return nil, err
	}
	v, err := eval(args[1], env)
	if err != nil {
		return nil, err
	}
	defer runtime.Release(v)
	if err = env.Bind(name, v); err != nil {
		return nil, err
	}
	return runtime.MakeUnspecified(), nil
}

func formSet(args []*node, env *runtime.Environment) (runtime.Object, error) {
	if err := arity("set!", args, 2); err != nil {
		return nil, err
	}
	name, err := identifier("set!", args[0])
	if err != nil {
		return nil, err
	}
	v, err := eval(args[1], env)
	if err != nil {
		return nil, err
	}
	defer runtime.Release(v)
	return env.Assign(name, v)
}

// (lambda (p1 p2 …) body …)
func formLambda(args []*node, env *runtime.Environment) (runtime.Object, error) {
	if len(args) < 2 || !args[0].isList {
		return nil, runtime.NewError(runtime.ArityMismatch, "lambda", "parameter list and body", fmt.Sprintf("%d operands", len(args)))
	}
	params := make([]string, len(args[0].list))
	for i, p := range args[0].list {
		name, err := identifier("lambda", p)
		if err != nil {
			return nil, err
		}
		params[i] = name
	}
	body := args[1:]
	fn := func(callEnv *runtime.Environment, actuals []runtime.Object) (runtime.Object, error) {
		if len(actuals) != len(params) {
			return nil, runtime.Errorf(runtime.ArityMismatch, "lambda",
				fmt.Sprintf("%d arguments", len(params)), "%d arguments", len(actuals))
		}
		for i, p := range params {
			if err := callEnv.Bind(p, actuals[i]); err != nil {
				return nil, err
			}
		}
		return formBegin(body, callEnv)
	}
	return runtime.MakeUser(fn, env), nil
}

func formDelay(args []*node, env *runtime.Environment) (runtime.Object, error) {
	if err := arity("delay", args, 1); err != nil {
		return nil, err
	}
	expr := args[0]
	return runtime.MakeEvaluable(func(e *runtime.Environment) (runtime.Object, error) {
		return eval(expr, e)
	}, env), nil
}

func formIf(args []*node, env *runtime.Environment) (runtime.Object, error) {
	if len(args) != 2 && len(args) != 3 {
		return nil, runtime.Errorf(runtime.ArityMismatch, "if", "2 or 3 operands", "%d operands", len(args))
	}
	c, err := eval(args[0], env)
	if err != nil {
		return nil, err
	}
	forced, err := runtime.Force(c)
	if err != nil {
		runtime.Release(c)
		return nil, err
	}
	if forced != c {
		defer runtime.Release(forced)
	}
	defer runtime.Release(c)
	truth, err := runtime.Truthy(forced)
	if err != nil {
		return nil, err
	}
	if truth {
		return eval(args[1], env)
	}
	if len(args) == 3 {
		return eval(args[2], env)
	}
	return runtime.MakeUnspecified(), nil
}

func formBegin(body []*node, env *runtime.Environment) (runtime.Object, error) {
	var result runtime.Object = runtime.MakeUnspecified()
	for _, expr := range body {
		v, err := eval(expr, env)
		if err != nil {
			runtime.Release(result)
			return nil, err
		}
		runtime.Release(result)
		result = v
	}
	return result, nil
}
