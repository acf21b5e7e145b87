package jinja2

import "reflect"

// macroValue is what a {% macro %} statement binds in scope: calling it
// from an expression ({{ my_macro(1, 2) }}) renders the macro body with
// its arguments bound and returns the output as a Markup value (macro
// output is never re-escaped, matching Jinja's own macro semantics).
type macroValue struct {
	defRC *RenderContext // the scope the macro was defined in (closure)
	node  *Macro
	depth int
}

func newMacroValue(rc *RenderContext, node *Macro) *macroValue {
	return &macroValue{defRC: rc, node: node}
}

// call binds positional/keyword arguments against the macro's formal
// parameter list (falling back to each parameter's default expression,
// evaluated in the macro's defining scope), then renders the body in a
// fresh child scope and returns the captured output.
func (m *macroValue) call(callerRC *RenderContext, args []*Value, kwargs map[string]*Value) (*Value, error) {
	if m.depth >= m.defRC.env.maxMacroDepth {
		return nil, &TemplateRuntimeError{Msg: "maximum macro recursion depth exceeded"}
	}
	bodyRC := m.defRC.derived()
	bodyRC.sink = callerRC.sink

	used := make(map[string]bool, len(kwargs))
	for i, arg := range m.node.Args {
		var v *Value
		switch {
		case i < len(args):
			v = args[i]
		case kwargs[arg.Name] != nil:
			v = kwargs[arg.Name]
			used[arg.Name] = true
		case arg.Default != nil:
			dv, err := evalExpr(m.defRC, arg.Default)
			if err != nil {
				return nil, err
			}
			v = dv
		default:
			v = AsValue(&Undefined{Name: arg.Name})
		}
		bodyRC.set(arg.Name, v)
	}

	next := &macroValue{defRC: m.defRC, node: m.node, depth: m.depth + 1}
	bodyRC.set(m.node.Name, AsValue(next))

	out, err := capture(bodyRC, func() error { return renderList(bodyRC, m.node.Body) })
	if err != nil {
		return nil, err
	}
	return AsValue(Markup(out)), nil
}

// renderCallBlock handles `{% call [(args)] macro(...) %}body{% endcall %}`:
// the body becomes available inside the macro invocation as caller().
func renderCallBlock(rc *RenderContext, n *CallBlock) error {
	args, kwargs, err := evalArgs(rc, n.Call.Args, n.Call.Kwargs)
	if err != nil {
		return err
	}
	fnVal, err := evalExpr(rc, n.Call.Func)
	if err != nil {
		return err
	}
	m, ok := fnVal.Interface().(*macroValue)
	if !ok {
		return &TemplateRuntimeError{Msg: "'call' target is not a macro"}
	}

	callerNode := &Macro{Name: "caller", Args: n.CallerArgs, Body: n.Body}
	caller := newMacroValue(rc, callerNode)

	bodyRC := m.defRC.derived()
	bodyRC.sink = rc.sink
	bodyRC.set("caller", AsValue(caller))
	for i, arg := range m.node.Args {
		var v *Value
		switch {
		case i < len(args):
			v = args[i]
		case kwargs[arg.Name] != nil:
			v = kwargs[arg.Name]
		case arg.Default != nil:
			dv, err := evalExpr(m.defRC, arg.Default)
			if err != nil {
				return err
			}
			v = dv
		default:
			v = AsValue(&Undefined{Name: arg.Name})
		}
		bodyRC.set(arg.Name, v)
	}

	out, err := capture(bodyRC, func() error { return renderList(bodyRC, m.node.Body) })
	if err != nil {
		return err
	}
	rc.sink.WriteString(out)
	return nil
}

// renderFilterBlock handles `{% filter name %}body{% endfilter %}`,
// applying the filter chain to the captured body output.
func renderFilterBlock(rc *RenderContext, n *FilterBlock) error {
	out, err := capture(rc, func() error { return renderList(rc, n.Body) })
	if err != nil {
		return err
	}
	v := AsValue(out)
	for _, f := range n.Filters {
		args, kwargs, err := evalArgs(rc, f.Args, f.Kwargs)
		if err != nil {
			return err
		}
		v, err = evalFilter(rc, f.Name, v, args, kwargs)
		if err != nil {
			return err
		}
	}
	rc.sink.WriteString(stringifyForOutput(rc, v))
	return nil
}

// renderWith handles `{% with a = 1, b = 2 %}body{% endwith %}`.
func renderWith(rc *RenderContext, n *With) error {
	bindings := make(map[string]*Value, len(n.Targets))
	for i, target := range n.Targets {
		name, err := targetSingleName(target)
		if err != nil {
			return err
		}
		v, err := evalExpr(rc, n.Values[i])
		if err != nil {
			return err
		}
		bindings[name] = v
	}
	return rc.apply(bindings, func() error { return renderList(rc, n.Body) })
}

// renderAutoEscape handles `{% autoescape on|off %}body{% endautoescape %}`.
func renderAutoEscape(rc *RenderContext, n *AutoEscape) error {
	v, err := evalExpr(rc, n.Enabled)
	if err != nil {
		return err
	}
	saved := rc.autoEscape
	rc.autoEscape = v.IsTrue()
	defer func() { rc.autoEscape = saved }()
	return renderList(rc, n.Body)
}

// callReflectFunc invokes a host Go function value (exposed via
// Environment.Globals or a struct method reached through Getattr) with
// Jinja call arguments converted to the function's declared parameter
// types.
func callReflectFunc(fn *Value, args []*Value) (*Value, error) {
	rv := reflect.ValueOf(fn.Interface())
	t := rv.Type()
	in := make([]reflect.Value, 0, len(args))
	for i, a := range args {
		var pt reflect.Type
		switch {
		case t.IsVariadic() && i >= t.NumIn()-1:
			pt = t.In(t.NumIn() - 1).Elem()
		case i < t.NumIn():
			pt = t.In(i)
		default:
			return nil, &TemplateRuntimeError{Msg: "too many arguments in call"}
		}
		in = append(in, convertArg(a, pt))
	}
	out := rv.Call(in)
	switch len(out) {
	case 0:
		return AsValue(nil), nil
	case 1:
		return AsValue(out[0].Interface()), nil
	default:
		// (value, error) convention
		if errVal, ok := out[len(out)-1].Interface().(error); ok && errVal != nil {
			return nil, errVal
		}
		return AsValue(out[0].Interface()), nil
	}
}

func convertArg(v *Value, target reflect.Type) reflect.Value {
	raw := v.Interface()
	if raw == nil {
		return reflect.Zero(target)
	}
	rv := reflect.ValueOf(raw)
	if rv.Type().ConvertibleTo(target) {
		return rv.Convert(target)
	}
	return rv
}
