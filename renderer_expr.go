package jinja2

import "math"

// evalExpr evaluates any expression node to a *Value.
func evalExpr(rc *RenderContext, n Node) (*Value, error) {
	switch node := n.(type) {
	case *Name:
		v := rc.resolve(node.Ident)
		if err := rc.requireDefined(v); err != nil {
			return nil, err
		}
		return v, nil
	case *Const:
		return AsValue(node.Value), nil
	case *TemplateData:
		return AsValue(node.Data), nil
	case *Tuple:
		return evalSequence(rc, node.Items)
	case *ListLiteral:
		return evalSequence(rc, node.Items)
	case *DictLiteral:
		return evalDict(rc, node)
	case *Unary:
		return evalUnary(rc, node)
	case *Binary:
		return evalBinary(rc, node)
	case *Concat:
		return evalConcat(rc, node)
	case *Compare:
		return evalCompare(rc, node)
	case *Getattr:
		return evalGetattr(rc, node)
	case *Getitem:
		return evalGetitem(rc, node)
	case *Slice:
		return evalSlice(rc, node)
	case *Call:
		return evalCall(rc, node)
	case *Filter:
		v, err := evalExpr(rc, node.Node)
		if err != nil {
			return nil, err
		}
		args, kwargs, err := evalArgs(rc, node.Args, node.Kwargs)
		if err != nil {
			return nil, err
		}
		return evalFilter(rc, node.Name, v, args, kwargs)
	case *Test:
		return evalTest(rc, node)
	case *Condition:
		return evalCondition(rc, node)
	}
	return nil, &TemplateRuntimeError{Msg: "internal error: unhandled expression node"}
}

func evalSequence(rc *RenderContext, items []Node) (*Value, error) {
	out := make([]any, len(items))
	for i, it := range items {
		v, err := evalExpr(rc, it)
		if err != nil {
			return nil, err
		}
		out[i] = v.Interface()
	}
	return AsValue(out), nil
}

func evalDict(rc *RenderContext, n *DictLiteral) (*Value, error) {
	out := make(map[string]any, len(n.Pairs))
	for _, p := range n.Pairs {
		k, err := evalExpr(rc, p.Key)
		if err != nil {
			return nil, err
		}
		v, err := evalExpr(rc, p.Value)
		if err != nil {
			return nil, err
		}
		out[k.String()] = v.Interface()
	}
	return AsValue(out), nil
}

func evalUnary(rc *RenderContext, n *Unary) (*Value, error) {
	v, err := evalExpr(rc, n.Node)
	if err != nil {
		return nil, err
	}
	switch n.Op {
	case notOp:
		return AsValue(!v.IsTrue()), nil
	case TokenSub:
		if v.IsFloat() {
			return AsValue(-v.Float()), nil
		}
		return AsValue(-v.Integer()), nil
	case TokenAdd:
		return v, nil
	}
	return nil, &TemplateRuntimeError{Msg: "internal error: unhandled unary operator"}
}

func evalConcat(rc *RenderContext, n *Concat) (*Value, error) {
	var sb []byte
	for _, part := range n.Parts {
		v, err := evalExpr(rc, part)
		if err != nil {
			return nil, err
		}
		sb = append(sb, v.String()...)
	}
	return AsValue(string(sb)), nil
}

func evalBinary(rc *RenderContext, n *Binary) (*Value, error) {
	switch n.Op {
	case orOp:
		left, err := evalExpr(rc, n.Left)
		if err != nil {
			return nil, err
		}
		if left.IsTrue() {
			return left, nil
		}
		return evalExpr(rc, n.Right)
	case andOp:
		left, err := evalExpr(rc, n.Left)
		if err != nil {
			return nil, err
		}
		if !left.IsTrue() {
			return left, nil
		}
		return evalExpr(rc, n.Right)
	}

	left, err := evalExpr(rc, n.Left)
	if err != nil {
		return nil, err
	}
	right, err := evalExpr(rc, n.Right)
	if err != nil {
		return nil, err
	}

	if n.Op == TokenAdd && (left.IsString() || right.IsString()) && !left.IsNumber() {
		return AsValue(left.String() + right.String()), nil
	}

	useFloat := left.IsFloat() || right.IsFloat()
	switch n.Op {
	case TokenAdd:
		if useFloat {
			return AsValue(left.Float() + right.Float()), nil
		}
		return AsValue(left.Integer() + right.Integer()), nil
	case TokenSub:
		if useFloat {
			return AsValue(left.Float() - right.Float()), nil
		}
		return AsValue(left.Integer() - right.Integer()), nil
	case TokenMul:
		if useFloat {
			return AsValue(left.Float() * right.Float()), nil
		}
		return AsValue(left.Integer() * right.Integer()), nil
	case TokenDiv:
		if right.Float() == 0 {
			return nil, &TemplateRuntimeError{Msg: "division by zero"}
		}
		return AsValue(left.Float() / right.Float()), nil
	case TokenFloorDiv:
		if right.Float() == 0 {
			return nil, &TemplateRuntimeError{Msg: "division by zero"}
		}
		if useFloat {
			return AsValue(math.Floor(left.Float() / right.Float())), nil
		}
		return AsValue(int64(math.Floor(float64(left.Integer()) / float64(right.Integer())))), nil
	case TokenMod:
		if right.Integer() == 0 && !useFloat {
			return nil, &TemplateRuntimeError{Msg: "modulo by zero"}
		}
		if useFloat {
			return AsValue(math.Mod(left.Float(), right.Float())), nil
		}
		return AsValue(left.Integer() % right.Integer()), nil
	case TokenPow:
		return AsValue(math.Pow(left.Float(), right.Float())), nil
	}
	return nil, &TemplateRuntimeError{Msg: "internal error: unhandled binary operator"}
}

func evalCompare(rc *RenderContext, n *Compare) (*Value, error) {
	left, err := evalExpr(rc, n.Left)
	if err != nil {
		return nil, err
	}
	for _, step := range n.Ops {
		right, err := evalExpr(rc, step.Right)
		if err != nil {
			return nil, err
		}
		ok, err := compareStep(left, right, step.Op)
		if err != nil {
			return nil, err
		}
		if !ok {
			return AsValue(false), nil
		}
		left = right
	}
	return AsValue(true), nil
}

func compareStep(left, right *Value, op TokenKind) (bool, error) {
	switch op {
	case TokenEq:
		return left.Equal(right), nil
	case TokenNe:
		return !left.Equal(right), nil
	case inOp:
		return right.Contains(left), nil
	case TokenLt, TokenLtEq, TokenGt, TokenGtEq:
		cmp, ok := left.Compare(right)
		if !ok {
			return false, &TemplateRuntimeError{Msg: "unorderable types in comparison"}
		}
		switch op {
		case TokenLt:
			return cmp < 0, nil
		case TokenLtEq:
			return cmp <= 0, nil
		case TokenGt:
			return cmp > 0, nil
		case TokenGtEq:
			return cmp >= 0, nil
		}
	}
	return false, &TemplateRuntimeError{Msg: "internal error: unhandled comparison operator"}
}

func evalGetattr(rc *RenderContext, n *Getattr) (*Value, error) {
	v, err := evalExpr(rc, n.Node)
	if err != nil {
		return nil, err
	}
	out := v.GetAttr(n.Attr)
	if err := rc.requireDefined(out); err != nil {
		return nil, err
	}
	return out, nil
}

func evalGetitem(rc *RenderContext, n *Getitem) (*Value, error) {
	v, err := evalExpr(rc, n.Node)
	if err != nil {
		return nil, err
	}
	key, err := evalExpr(rc, n.Arg)
	if err != nil {
		return nil, err
	}
	out := v.GetItem(key)
	if err := rc.requireDefined(out); err != nil {
		return nil, err
	}
	return out, nil
}

func evalSlice(rc *RenderContext, n *Slice) (*Value, error) {
	v, err := evalExpr(rc, n.Node)
	if err != nil {
		return nil, err
	}
	items := v.Items()
	length := len(items)
	start, err := sliceIndex(rc, n.Start, 0, length)
	if err != nil {
		return nil, err
	}
	stop, err := sliceIndex(rc, n.Stop, length, length)
	if err != nil {
		return nil, err
	}
	step := 1
	if n.Step != nil {
		sv, err := evalExpr(rc, n.Step)
		if err != nil {
			return nil, err
		}
		step = int(sv.Integer())
		if step == 0 {
			return nil, &TemplateRuntimeError{Msg: "slice step cannot be zero"}
		}
	}
	var out []any
	if step > 0 {
		for i := start; i < stop && i < length; i += step {
			if i >= 0 {
				out = append(out, items[i].Interface())
			}
		}
	} else {
		for i := start; i > stop && i >= 0; i += step {
			if i < length {
				out = append(out, items[i].Interface())
			}
		}
	}
	return AsValue(out), nil
}

func sliceIndex(rc *RenderContext, n Node, def, length int) (int, error) {
	if n == nil {
		return def, nil
	}
	v, err := evalExpr(rc, n)
	if err != nil {
		return 0, err
	}
	idx := int(v.Integer())
	if idx < 0 {
		idx += length
	}
	return idx, nil
}

func evalArgs(rc *RenderContext, args []Node, kwargs []Kwarg) ([]*Value, map[string]*Value, error) {
	evArgs := make([]*Value, len(args))
	for i, a := range args {
		v, err := evalExpr(rc, a)
		if err != nil {
			return nil, nil, err
		}
		evArgs[i] = v
	}
	evKwargs := make(map[string]*Value, len(kwargs))
	for _, k := range kwargs {
		v, err := evalExpr(rc, k.Value)
		if err != nil {
			return nil, nil, err
		}
		evKwargs[k.Name] = v
	}
	return evArgs, evKwargs, nil
}

func evalCall(rc *RenderContext, n *Call) (*Value, error) {
	args, kwargs, err := evalArgs(rc, n.Args, n.Kwargs)
	if err != nil {
		return nil, err
	}
	fn, err := evalExpr(rc, n.Func)
	if err != nil {
		return nil, err
	}
	if m, ok := fn.Interface().(*macroValue); ok {
		return m.call(rc, args, kwargs)
	}
	if b, ok := fn.Interface().(*blockSuperValue); ok {
		return b.call()
	}
	if r, ok := fn.Interface().(*recursiveLoopValue); ok {
		if len(args) != 1 {
			return nil, &TemplateRuntimeError{Msg: "loop() expects exactly one argument"}
		}
		return r.recurse(args[0])
	}
	if !fn.IsCallable() {
		return nil, &TemplateRuntimeError{Msg: "'" + fn.String() + "' is not callable"}
	}
	return callReflectFunc(fn, args)
}

func evalFilter(rc *RenderContext, name string, v *Value, args []*Value, kwargs map[string]*Value) (*Value, error) {
	if fn, ok := rc.env.ctxFilters[name]; ok {
		return fn(rc, v, args, kwargs)
	}
	fn, ok := rc.env.filters[name]
	if !ok {
		return nil, &TemplateRuntimeError{Msg: "no filter named '" + name + "'"}
	}
	return fn(v, args, kwargs)
}

func evalTest(rc *RenderContext, n *Test) (*Value, error) {
	v, err := evalExpr(rc, n.Node)
	if err != nil {
		return nil, err
	}
	args, kwargs, err := evalArgs(rc, n.Args, n.Kwargs)
	if err != nil {
		return nil, err
	}
	fn, ok := rc.env.tests[n.Name]
	if !ok {
		return nil, &TemplateRuntimeError{Msg: "no test named '" + n.Name + "'"}
	}
	result, err := fn(v, args, kwargs)
	if err != nil {
		return nil, err
	}
	if n.Negated {
		result = !result
	}
	return AsValue(result), nil
}

func evalCondition(rc *RenderContext, n *Condition) (*Value, error) {
	cond, err := evalExpr(rc, n.Cond)
	if err != nil {
		return nil, err
	}
	if cond.IsTrue() {
		return evalExpr(rc, n.Then)
	}
	if n.Else == nil {
		return AsValue(&Undefined{Hint: "conditional expression had no else and condition was false"}), nil
	}
	return evalExpr(rc, n.Else)
}

// evalTemplateNameArg evaluates an extends/include/import "template name"
// argument down to a single string (the common case: a Const string).
func evalTemplateNameArg(rc *RenderContext, n Node) (string, error) {
	v, err := evalExpr(rc, n)
	if err != nil {
		return "", err
	}
	return v.String(), nil
}

// evalTemplateNameList evaluates an include/extends argument that may be
// a single string or a list of candidate names.
func evalTemplateNameList(rc *RenderContext, n Node) ([]string, error) {
	v, err := evalExpr(rc, n)
	if err != nil {
		return nil, err
	}
	if v.IsString() {
		return []string{v.String()}, nil
	}
	var names []string
	for _, item := range v.Items() {
		names = append(names, item.String())
	}
	return names, nil
}
