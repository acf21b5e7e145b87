package jinja2

// Template is a parsed, ready-to-render document: its body AST, the
// {% block %} definitions it declares (by name), and (if it extends
// another template) the {% extends %} statement naming its parent. Grounded on the
// teacher's Template+TemplateSet block-map population during parse,
// collapsed into one type since this engine has no multi-set/sandboxing
// concept to separate out.
type Template struct {
	env  *Environment
	name string
	body *StatementList

	// extends is set when the template's first top-level statement is
	// {% extends %}; Parent is evaluated at each render so that
	// a dynamic extends expression (spec's "may be any expression") can
	// depend on render-time context.
	extends *Extends

	// blocks maps block name -> its definition in *this* template only.
	// The renderer composes the full inheritance chain at render time by
	// walking from the rendered template up through each ancestor's own
	// blocks map (buildBlockFrames in renderer.go).
	blocks map[string]*Block
}

// newTemplate validates and wraps body: it enforces the invariant that
// {% extends %} only appears as a template's first statement (and, per
// the open question resolved in DESIGN.md, is never silently promoted
// if it appears elsewhere -- that's a hard TemplateSyntaxError), and it
// walks the body once to collect block definitions.
func newTemplate(env *Environment, name string, body *StatementList) (*Template, error) {
	tpl := &Template{env: env, name: name, body: body, blocks: make(map[string]*Block)}

	for i, n := range body.Nodes {
		if ext, ok := n.(*Extends); ok {
			if i != 0 {
				return nil, &TemplateSyntaxError{
					Path: name,
					Line: ext.Pos(),
					Msg:  "extends tag must be the first statement in a template",
				}
			}
			tpl.extends = ext
		}
	}
	for _, b := range FindAll[*Block](body) {
		tpl.blocks[b.Name] = b
	}
	return tpl, nil
}

// Execute renders the template against data and returns the output
// string.
func (t *Template) Execute(data Context) (string, error) {
	rc := newRootContext(t.env, data, t)
	sink := newOutputSink()
	rc.sink = sink
	if err := renderTemplate(rc, t); err != nil {
		return "", err
	}
	return sink.String(), nil
}

// Name returns the template's path/name, or "<string>" for templates
// constructed via FromString.
func (t *Template) Name() string { return t.name }
