package jinja2

import "strings"

// outputSink is the rendering write target, grounded on the
// TemplateWriter/bytes.Buffer sink pattern. A capture (filter block,
// assign-block, macro-call body) swaps rc.sink for a fresh one and reads
// its contents back with String().
type outputSink struct {
	b strings.Builder
}

func newOutputSink() *outputSink { return &outputSink{} }

func (s *outputSink) WriteString(str string) { s.b.WriteString(str) }

func (s *outputSink) String() string { return s.b.String() }

// capture runs fn against a fresh sink swapped onto rc, restores rc's
// original sink afterward, and returns what fn wrote.
func capture(rc *RenderContext, fn func() error) (string, error) {
	saved := rc.sink
	rc.sink = newOutputSink()
	defer func() { rc.sink = saved }()
	if err := fn(); err != nil {
		return "", err
	}
	return rc.sink.String(), nil
}

// renderTemplate is Template.Execute's entry point: it resolves the
// extends chain (if any), wires up rc.blocks for {% block %}/super(),
// and renders the chain's base template body.
func renderTemplate(rc *RenderContext, tpl *Template) error {
	chain, err := resolveChain(rc, tpl)
	if err != nil {
		return err
	}
	rc.blocks = buildBlockFrames(chain)
	base := chain[len(chain)-1]
	rc.currentTemplate = base
	return renderList(rc, base.body)
}

// resolveChain walks tpl -> tpl.extends -> ... and returns the chain from
// most-derived (tpl) to base (the first ancestor without its own
// extends), detecting cycles with its own set of already-seen names.
func resolveChain(rc *RenderContext, tpl *Template) ([]*Template, error) {
	chain := []*Template{tpl}
	cur := tpl
	seen := map[string]bool{tpl.name: true}
	for cur.extends != nil {
		name, err := evalTemplateNameArg(rc, cur.extends.Parent)
		if err != nil {
			return nil, err
		}
		if seen[name] {
			return nil, &TemplateRuntimeError{Msg: "cyclic template inheritance detected at " + name}
		}
		parent, err := rc.env.GetTemplate(name)
		if err != nil {
			return nil, err
		}
		seen[name] = true
		chain = append(chain, parent)
		cur = parent
	}
	return chain, nil
}

// buildBlockFrames collects, per block name, the chain of definitions
// from every template in the (derived -> base) chain that declares it,
// most-derived first, so Block rendering executes chain[0] and super()
// steps to chain[1], etc.
func buildBlockFrames(chain []*Template) map[string]*blockFrame {
	frames := make(map[string]*blockFrame)
	for _, t := range chain {
		for name, b := range t.blocks {
			f, ok := frames[name]
			if !ok {
				f = &blockFrame{name: name, scoped: b.Scoped}
				frames[name] = f
			}
			f.chain = append(f.chain, b)
		}
	}
	return frames
}

// renderList renders a StatementList's nodes in order.
func renderList(rc *RenderContext, list *StatementList) error {
	if list == nil {
		return nil
	}
	for _, n := range list.Nodes {
		if err := renderNode(rc, n); err != nil {
			return err
		}
	}
	return nil
}

// renderNode dispatches one statement/output node to its evaluator.
func renderNode(rc *RenderContext, n Node) error {
	switch node := n.(type) {
	case *Output:
		return renderOutput(rc, node)
	case *If:
		return renderIf(rc, node)
	case *For:
		return renderFor(rc, node)
	case *Set:
		return renderSet(rc, node)
	case *Block:
		return renderBlock(rc, node)
	case *Extends:
		return nil // consumed at Template construction / resolveChain
	case *Include:
		return renderInclude(rc, node)
	case *Import:
		return renderImport(rc, node)
	case *FromImport:
		return renderFromImport(rc, node)
	case *Macro:
		rc.set(node.Name, AsValue(newMacroValue(rc, node)))
		return nil
	case *CallBlock:
		return renderCallBlock(rc, node)
	case *FilterBlock:
		return renderFilterBlock(rc, node)
	case *With:
		return renderWith(rc, node)
	case *AutoEscape:
		return renderAutoEscape(rc, node)
	case *Do:
		_, err := evalExpr(rc, node.Expr)
		return err
	case *StatementList:
		return renderList(rc, node)
	default:
		return &TemplateRuntimeError{Msg: "internal error: unhandled node type in renderer"}
	}
}

// renderOutput writes one TemplateData run or one escaped/finalized
// expression result.
func renderOutput(rc *RenderContext, n *Output) error {
	if data, ok := n.Body.(*TemplateData); ok {
		rc.sink.WriteString(data.Data)
		return nil
	}
	v, err := evalExpr(rc, n.Body)
	if err != nil {
		return err
	}
	rc.sink.WriteString(stringifyForOutput(rc, v))
	return nil
}

// stringifyForOutput applies the environment's finalize callback (if
// set) and autoescape policy before a value becomes output text.
func stringifyForOutput(rc *RenderContext, v *Value) string {
	if rc.env.finalize != nil {
		v = rc.env.finalize(v)
	}
	s := v.String()
	if rc.autoEscape && !v.IsMarkup() {
		return escapeHTML(s)
	}
	return s
}

func escapeHTML(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case '&':
			b.WriteString("&amp;")
		case '<':
			b.WriteString("&lt;")
		case '>':
			b.WriteString("&gt;")
		case '"':
			b.WriteString("&#34;")
		case '\'':
			b.WriteString("&#39;")
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func renderIf(rc *RenderContext, n *If) error {
	for _, branch := range n.Branches {
		if branch.Cond == nil {
			return renderList(rc, branch.Body)
		}
		v, err := evalExpr(rc, branch.Cond)
		if err != nil {
			return err
		}
		if v.IsTrue() {
			return renderList(rc, branch.Body)
		}
	}
	return nil
}

func renderSet(rc *RenderContext, n *Set) error {
	targetName, err := targetSingleName(n.Target)
	if err != nil {
		return err
	}
	if n.Value != nil {
		v, err := evalExpr(rc, n.Value)
		if err != nil {
			return err
		}
		rc.set(targetName, v)
		return nil
	}
	captured, err := capture(rc, func() error { return renderList(rc, n.Body) })
	if err != nil {
		return err
	}
	v := AsValue(captured)
	if n.Filter != nil {
		args, kwargs, err := evalArgs(rc, n.Filter.Args, n.Filter.Kwargs)
		if err != nil {
			return err
		}
		v, err = evalFilter(rc, n.Filter.Name, v, args, kwargs)
		if err != nil {
			return err
		}
	}
	rc.set(targetName, v)
	return nil
}

func targetSingleName(n Node) (string, error) {
	if name, ok := n.(*Name); ok {
		return name.Ident, nil
	}
	return "", &TemplateRuntimeError{Msg: "expected a simple name as assignment target"}
}

func renderBlock(rc *RenderContext, n *Block) error {
	frame, ok := rc.blocks[n.Name]
	if !ok || len(frame.chain) == 0 {
		return renderList(rc, n.Body)
	}
	blockRC := rc
	if frame.scoped {
		blockRC = rc.derived()
	}
	return renderBlockFrame(blockRC, frame, 0)
}

// renderBlockFrame renders frame.chain[idx], with "block" bound in scope
// so {{ block.super() }} (renderer_inherit.go) can step to idx+1.
func renderBlockFrame(rc *RenderContext, frame *blockFrame, idx int) error {
	sv := AsValue(newBlockSuperValue(rc, frame, idx))
	return rc.apply(map[string]*Value{
		"block": sv,
		"super": sv,
	}, func() error {
		return renderList(rc, frame.chain[idx].Body)
	})
}
