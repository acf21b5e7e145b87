package jinja2

// blockSuperValue is what `block` resolves to inside a running {% block %}:
// `{{ block.super() }}` (spelled `{{ super() }}` via the bare "super"
// name bound in the block's scope alongside it) renders the next-less-derived
// definition of the same block in the extends chain.
type blockSuperValue struct {
	rc    *RenderContext
	frame *blockFrame
	idx   int
}

func newBlockSuperValue(rc *RenderContext, frame *blockFrame, idx int) *blockSuperValue {
	return &blockSuperValue{rc: rc, frame: frame, idx: idx}
}

// GetAttr lets `{{ block.super() }}` resolve the same way as the bare
// `{{ super() }}` spelling: block already *is* the callable that renders
// the next-less-derived definition, so block.super is itself.
func (b *blockSuperValue) GetAttr(name string) *Value {
	if name == "super" {
		return AsValue(b)
	}
	return AsValue(&Undefined{Name: name})
}

func (b *blockSuperValue) call() (*Value, error) {
	if b.idx+1 >= len(b.frame.chain) {
		return AsValue(Markup("")), nil
	}
	superRC := b.rc.derived()
	out, err := capture(superRC, func() error {
		return renderBlockFrame(superRC, b.frame, b.idx+1)
	})
	if err != nil {
		return nil, err
	}
	return AsValue(Markup(out)), nil
}

// renderInclude handles `{% include name(s) [ignore missing] [with[out] context] %}`.
func renderInclude(rc *RenderContext, n *Include) error {
	names, err := evalTemplateNameList(rc, n.Template)
	if err != nil {
		return err
	}
	tpl, err := rc.env.GetOrSelectTemplate(names)
	if err != nil {
		if n.IgnoreMissing {
			return nil
		}
		return err
	}
	if err := checkCycle(rc, tpl.name); err != nil {
		return err
	}

	var childRC *RenderContext
	if n.WithContext {
		childRC = rc.derived()
	} else {
		childRC = newRootContext(rc.env, Context{}, rc.currentTemplate)
		childRC.sink = rc.sink
		childRC.includeStack = rc.includeStack
	}
	return renderIncludedTemplate(childRC, tpl)
}

// renderIncludedTemplate renders tpl's own extends chain into childRC's
// sink, without touching the caller's rc.blocks.
func renderIncludedTemplate(rc *RenderContext, tpl *Template) error {
	*rc.includeStack = append(*rc.includeStack, tpl.name)
	defer func() { *rc.includeStack = (*rc.includeStack)[:len(*rc.includeStack)-1] }()

	chain, err := resolveChain(rc, tpl)
	if err != nil {
		return err
	}
	rc.blocks = buildBlockFrames(chain)
	rc.currentTemplate = chain[len(chain)-1]
	return renderList(rc, rc.currentTemplate.body)
}

func checkCycle(rc *RenderContext, name string) error {
	for _, seen := range *rc.includeStack {
		if seen == name {
			return &TemplateRuntimeError{Msg: "cyclic include/import detected at " + name}
		}
	}
	return nil
}

// renderImport handles `{% import tpl as name [with[out] context] %}`:
// it exposes the imported template's top-level macros and set() names as
// attributes of a namespace object bound to n.Target.
func renderImport(rc *RenderContext, n *Import) error {
	name, err := evalTemplateNameArg(rc, n.Template)
	if err != nil {
		return err
	}
	tpl, err := rc.env.GetTemplate(name)
	if err != nil {
		return err
	}
	ns, err := buildModuleNamespace(rc, tpl, n.WithContext)
	if err != nil {
		return err
	}
	rc.set(n.Target, AsValue(ns))
	return nil
}

// renderFromImport handles `{% from tpl import a, b as c [with[out] context] %}`.
func renderFromImport(rc *RenderContext, n *FromImport) error {
	name, err := evalTemplateNameArg(rc, n.Template)
	if err != nil {
		return err
	}
	tpl, err := rc.env.GetTemplate(name)
	if err != nil {
		return err
	}
	ns, err := buildModuleNamespace(rc, tpl, n.WithContext)
	if err != nil {
		return err
	}
	for _, imp := range n.Names {
		v, ok := ns.attrs[imp.Name]
		if !ok {
			return &TemplateRuntimeError{Msg: "cannot import '" + imp.Name + "' from '" + name + "'"}
		}
		rc.set(imp.Alias, v)
	}
	return nil
}

// moduleNamespace is the object a {% import %} binds: a read-only map of
// the imported template's top-level macros/set-bindings.
type moduleNamespace struct {
	attrs map[string]*Value
}

func (m *moduleNamespace) GetAttr(name string) *Value {
	if v, ok := m.attrs[name]; ok {
		return v
	}
	return AsValue(&Undefined{Name: name})
}

// buildModuleNamespace renders tpl's top-level Macro/Set statements into
// a fresh scope (without producing output) and snapshots the resulting
// bindings as the module's exported attributes.
func buildModuleNamespace(rc *RenderContext, tpl *Template, withContext bool) (*moduleNamespace, error) {
	var modRC *RenderContext
	if withContext {
		modRC = rc.derived()
	} else {
		modRC = newRootContext(rc.env, Context{}, tpl)
		modRC.includeStack = rc.includeStack
	}
	modRC.sink = newOutputSink() // discard any stray top-level output

	for _, node := range tpl.body.Nodes {
		switch stmt := node.(type) {
		case *Macro:
			modRC.set(stmt.Name, AsValue(newMacroValue(modRC, stmt)))
		case *Set:
			if err := renderSet(modRC, stmt); err != nil {
				return nil, err
			}
		case *Extends, *Output:
			// not part of a module's exported surface
		default:
			if err := renderNode(modRC, stmt); err != nil {
				return nil, err
			}
		}
	}

	return &moduleNamespace{attrs: modRC.locals}, nil
}
