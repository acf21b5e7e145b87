package jinja2

import "fmt"

// loopValue backs the `loop` name available inside a {% for %} body,
// exposing Jinja's documented loop-metadata attributes plus the
// cycle()/changed() helper methods. Grounded on tags_for.go's
// tagForLoopInformation, generalized from Django-named fields
// (Counter/Counter0/...) to Jinja's (index/index0/...) and extended with
// previtem/nextitem/cycle/changed/depth, which the original "forloop"
// object doesn't have.
type loopValue struct {
	index   int // 0-based
	length  int
	items   []*Value
	parent  *loopValue
	depth   int
	cycleAt map[string]int // unused: loop.cycle() picks args[index % len(args)] and keeps no per-call-site state
	changed any
	hasPrev bool
}

func (l *loopValue) GetAttr(name string) *Value {
	switch name {
	case "index":
		return AsValue(int64(l.index + 1))
	case "index0":
		return AsValue(int64(l.index))
	case "revindex":
		return AsValue(int64(l.length - l.index))
	case "revindex0":
		return AsValue(int64(l.length - l.index - 1))
	case "first":
		return AsValue(l.index == 0)
	case "last":
		return AsValue(l.index == l.length-1)
	case "length":
		return AsValue(int64(l.length))
	case "depth":
		return AsValue(int64(l.depth + 1))
	case "depth0":
		return AsValue(int64(l.depth))
	case "previtem":
		if l.index > 0 {
			return l.items[l.index-1]
		}
		return AsValue(&Undefined{Hint: "there is no previous item"})
	case "nextitem":
		if l.index+1 < l.length {
			return l.items[l.index+1]
		}
		return AsValue(&Undefined{Hint: "there is no next item"})
	case "cycle":
		return AsValue(loopCycleFunc(l))
	case "changed":
		return AsValue(loopChangedFunc(l))
	}
	return AsValue(&Undefined{Name: "loop." + name})
}

// loopCycleFunc returns a Go func usable via callReflectFunc for
// `loop.cycle(a, b, c)`: picks the element at the loop's current index
// modulo len(args).
func loopCycleFunc(l *loopValue) func(args ...any) any {
	return func(args ...any) any {
		if len(args) == 0 {
			return nil
		}
		return args[l.index%len(args)]
	}
}

// loopChangedFunc returns a Go func for `loop.changed(value)`: true the
// first time it's called and whenever value differs from the previous
// call's value.
func loopChangedFunc(l *loopValue) func(v any) bool {
	return func(v any) bool {
		if !l.hasPrev || l.changed != v {
			l.hasPrev = true
			l.changed = v
			return true
		}
		return false
	}
}

// renderFor handles `{% for target(s) in iter [if cond] [recursive] %}
// body {% else %} elseBody {% endfor %}`.
func renderFor(rc *RenderContext, n *For) error {
	iterVal, err := evalExpr(rc, n.Iter)
	if err != nil {
		return err
	}

	var parentLoop *loopValue
	if existing, ok := rc.resolveLocal("loop"); ok {
		parentLoop, _ = existing.Interface().(*loopValue)
	}
	depth := 0
	if parentLoop != nil {
		depth = parentLoop.depth + 1
	}

	items, err := filteredLoopItems(rc, n, iterVal)
	if err != nil {
		return err
	}

	if len(items) == 0 {
		if n.ElseBody != nil {
			return rc.apply(nil, func() error { return renderList(rc, n.ElseBody) })
		}
		return nil
	}

	loop := &loopValue{length: len(items), parent: parentLoop, depth: depth, items: make([]*Value, len(items))}
	for i, it := range items {
		loop.items[i] = it.value
	}

	var recurse func([]loopItem, *loopValue) error
	recurse = func(its []loopItem, lv *loopValue) error {
		for i, it := range its {
			lv.index = i
			bindings, err := targetBindings(n.Target, it)
			if err != nil {
				return err
			}
			bindings["loop"] = AsValue(lv)
			if err := rc.apply(bindings, func() error { return renderList(rc, n.Body) }); err != nil {
				return err
			}
		}
		return nil
	}

	if n.Recursive {
		cur := loop // the loop level whose body is calling loop(seq)
		var recurseFn func(seq *Value) (*Value, error)
		recurseFn = func(seq *Value) (*Value, error) {
			if cur.depth+1 > rc.env.maxRecursiveLoopDepth {
				return nil, &TemplateRuntimeError{Msg: "maximum recursive loop depth exceeded"}
			}
			childItems := make([]loopItem, 0, seq.Len())
			seq.Iterate(func(key, val *Value) {
				childItems = append(childItems, loopItem{key: key, value: val})
			})
			childLoop := &loopValue{length: len(childItems), parent: cur, depth: cur.depth + 1}
			for _, it := range childItems {
				childLoop.items = append(childLoop.items, it.value)
			}
			saved := cur
			cur = childLoop
			out, err := capture(rc, func() error { return recurseWithCaller(rc, n, childItems, childLoop, recurseFn) })
			cur = saved
			if err != nil {
				return nil, err
			}
			return AsValue(Markup(out)), nil
		}
		return recurseWithCaller(rc, n, items, loop, recurseFn)
	}

	return recurse(items, loop)
}

// recurseWithCaller renders items with "loop" bound to lv, and (for
// recursive for-loops) also binds "loop" itself as a callable so the body
// can call `loop(child_seq)` to recurse.
func recurseWithCaller(rc *RenderContext, n *For, items []loopItem, lv *loopValue, recurseFn func(*Value) (*Value, error)) error {
	for i, it := range items {
		lv.index = i
		bindings, err := targetBindings(n.Target, it)
		if err != nil {
			return err
		}
		bindings["loop"] = AsValue(&recursiveLoopValue{loopValue: lv, recurse: recurseFn})
		if err := rc.apply(bindings, func() error { return renderList(rc, n.Body) }); err != nil {
			return err
		}
	}
	return nil
}

// recursiveLoopValue extends loopValue with call support for
// `{% for ... recursive %}`'s `loop(seq)` re-entry.
type recursiveLoopValue struct {
	*loopValue
	recurse func(*Value) (*Value, error)
}

type loopItem struct {
	key   *Value // non-nil for map iteration with `for k, v in map`
	value *Value
}

// filteredLoopItems materializes iterVal's elements, applying the
// optional `if cond` clause (evaluated with the candidate target already
// bound, per Jinja semantics) before loop metadata (length, first/last)
// is computed -- so a filtered-out item never counts toward length.
func filteredLoopItems(rc *RenderContext, n *For, iterVal *Value) ([]loopItem, error) {
	var all []loopItem
	iterVal.Iterate(func(key, val *Value) {
		all = append(all, loopItem{key: key, value: val})
	})
	if n.Filter == nil {
		return all, nil
	}
	var out []loopItem
	for _, it := range all {
		bindings, err := targetBindings(n.Target, it)
		if err != nil {
			return nil, err
		}
		keep := false
		err = rc.apply(bindings, func() error {
			v, err := evalExpr(rc, n.Filter)
			if err != nil {
				return err
			}
			keep = v.IsTrue()
			return nil
		})
		if err != nil {
			return nil, err
		}
		if keep {
			out = append(out, it)
		}
	}
	return out, nil
}

// targetBindings maps a for-loop target (Name, or Tuple for "for k, v in
// ..." or general "for a, b, c in ...") to the scope bindings for one
// iteration item.
func targetBindings(target Node, it loopItem) (map[string]*Value, error) {
	if tuple, ok := target.(*Tuple); ok {
		if len(tuple.Items) == 2 && it.key != nil {
			names := make(map[string]*Value, 2)
			if name, ok := tuple.Items[0].(*Name); ok {
				names[name.Ident] = it.key
			}
			if name, ok := tuple.Items[1].(*Name); ok {
				names[name.Ident] = it.value
			}
			return names, nil
		}
		return unpackTuple(tuple, it.value)
	}
	if name, ok := target.(*Name); ok {
		if it.key != nil {
			return map[string]*Value{name.Ident: it.key}, nil
		}
		return map[string]*Value{name.Ident: it.value}, nil
	}
	return map[string]*Value{}, nil
}

// unpackTuple destructures value's items onto tuple's N target names,
// matching Python/Jinja's exact arity-mismatch wording.
func unpackTuple(tuple *Tuple, value *Value) (map[string]*Value, error) {
	items := value.Items()
	want := len(tuple.Items)
	got := len(items)
	if got < want {
		return nil, &TemplateRuntimeError{Msg: fmt.Sprintf("not enough values to unpack (expected %d, got %d)", want, got)}
	}
	if got > want {
		return nil, &TemplateRuntimeError{Msg: fmt.Sprintf("too many values to unpack (expected %d)", want)}
	}
	names := make(map[string]*Value, want)
	for i, item := range tuple.Items {
		if name, ok := item.(*Name); ok {
			names[name.Ident] = items[i]
		}
	}
	return names, nil
}
