package jinja2

// Node is implemented by every AST node, expression or statement. Dispatch
// is by type switch in the parser, optimizer and renderer rather than an
// open Accept(visitor) method: the node set is closed, so a
// switch gives exhaustiveness checking for free and keeps evaluation logic
// colocated per concern (one renderer, one optimizer) instead of smeared
// across many small per-node methods.
type Node interface {
	// Children returns this node's direct child nodes, in evaluation
	// order, for the generic pre-order walker (FindAll).
	Children() []Node
	// Pos returns the 1-based source line the node started on, for
	// error reporting.
	Pos() int
}

type pos struct{ Line int }

func (p pos) Pos() int { return p.Line }

// ---- expressions ----

// Name references a variable: `foo`.
type Name struct {
	pos
	Ident string
}

func (n *Name) Children() []Node { return nil }

// Const is a literal scalar: integer, float, string, bool or none.
type Const struct {
	pos
	Value any
}

func (n *Const) Children() []Node { return nil }

// TemplateData is a verbatim run of literal template text between markup,
// emitted by the lexer's TokenData.
type TemplateData struct {
	pos
	Data string
}

func (n *TemplateData) Children() []Node { return nil }

// Tuple is a parenthesized or bare comma-separated expression list:
// `(a, b)`, used as a literal and as a for-loop target.
type Tuple struct {
	pos
	Items []Node
}

func (n *Tuple) Children() []Node { return n.Items }

// ListLiteral is `[a, b, c]`.
type ListLiteral struct {
	pos
	Items []Node
}

func (n *ListLiteral) Children() []Node { return n.Items }

// DictLiteral is `{a: b, c: d}`.
type DictPair struct {
	Key, Value Node
}

type DictLiteral struct {
	pos
	Pairs []DictPair
}

func (n *DictLiteral) Children() []Node {
	out := make([]Node, 0, len(n.Pairs)*2)
	for _, p := range n.Pairs {
		out = append(out, p.Key, p.Value)
	}
	return out
}

// Unary is a prefix operator: `-x`, `+x`, `not x`.
type Unary struct {
	pos
	Op   TokenKind
	Node Node
}

func (n *Unary) Children() []Node { return []Node{n.Node} }

// Binary is an infix arithmetic/logical/concat operator.
type Binary struct {
	pos
	Op          TokenKind
	Left, Right Node
}

func (n *Binary) Children() []Node { return []Node{n.Left, n.Right} }

// Concat is Jinja's `~` string-join chain, kept distinct from Binary so
// the renderer can stringify operands without going through arithmetic
// coercion.
type Concat struct {
	pos
	Parts []Node
}

func (n *Concat) Children() []Node { return n.Parts }

// CompareOp is one step of a chained comparison: `a < b < c` becomes a
// single Compare node with two Ops, matching Python/Jinja chaining
// semantics (all pairs must hold, each operand evaluated once).
type CompareOp struct {
	Op    TokenKind
	Right Node
}

type Compare struct {
	pos
	Left Node
	Ops  []CompareOp
}

func (n *Compare) Children() []Node {
	out := make([]Node, 0, len(n.Ops)+1)
	out = append(out, n.Left)
	for _, op := range n.Ops {
		out = append(out, op.Right)
	}
	return out
}

// Getattr is `obj.attr`.
type Getattr struct {
	pos
	Node Node
	Attr string
}

func (n *Getattr) Children() []Node { return []Node{n.Node} }

// Getitem is `obj[expr]`.
type Getitem struct {
	pos
	Node Node
	Arg  Node
}

func (n *Getitem) Children() []Node { return []Node{n.Node, n.Arg} }

// Slice is `obj[start:stop:step]`; any of Start/Stop/Step may be nil.
type Slice struct {
	pos
	Node              Node
	Start, Stop, Step Node
}

func (n *Slice) Children() []Node {
	out := []Node{n.Node}
	for _, c := range []Node{n.Start, n.Stop, n.Step} {
		if c != nil {
			out = append(out, c)
		}
	}
	return out
}

// Kwarg is a keyword argument in a Call/Filter/Test/Macro invocation.
type Kwarg struct {
	Name  string
	Value Node
}

// Call is a function/macro invocation: `fn(a, b, k=v)`.
type Call struct {
	pos
	Func   Node
	Args   []Node
	Kwargs []Kwarg
}

func (n *Call) Children() []Node {
	out := append([]Node{n.Func}, n.Args...)
	for _, k := range n.Kwargs {
		out = append(out, k.Value)
	}
	return out
}

// Filter applies a named filter to Node: `expr|name(args)`.
type Filter struct {
	pos
	Node   Node
	Name   string
	Args   []Node
	Kwargs []Kwarg
}

func (n *Filter) Children() []Node {
	out := append([]Node{n.Node}, n.Args...)
	for _, k := range n.Kwargs {
		out = append(out, k.Value)
	}
	return out
}

// Test evaluates a named test against Node: `expr is name(args)`;
// Negated handles `is not`.
type Test struct {
	pos
	Node    Node
	Name    string
	Args    []Node
	Kwargs  []Kwarg
	Negated bool
}

func (n *Test) Children() []Node {
	out := append([]Node{n.Node}, n.Args...)
	for _, k := range n.Kwargs {
		out = append(out, k.Value)
	}
	return out
}

// Condition is the ternary `a if cond else b` (Else may be nil, meaning
// "undefined" per Jinja semantics when the condition is false).
type Condition struct {
	pos
	Cond, Then, Else Node
}

func (n *Condition) Children() []Node {
	out := []Node{n.Cond, n.Then}
	if n.Else != nil {
		out = append(out, n.Else)
	}
	return out
}

// ---- statements ----

// Output wraps a TemplateData run or a `{{ expr }}` print as one sequence
// element; Body holds either a single TemplateData or a single expression.
type Output struct {
	pos
	Body Node
}

func (n *Output) Children() []Node { return []Node{n.Body} }

// StatementList is a flat sequence of statements/output nodes: a
// template's top-level body, or the body of a block/for/if branch.
type StatementList struct {
	pos
	Nodes []Node
}

func (n *StatementList) Children() []Node { return n.Nodes }

// If is `{% if cond %}...{% elif cond %}...{% else %}...{% endif %}`,
// represented as a cond/body list with a trailing else-less cond,nil
// encoding the terminal else (nil Cond means "always").
type IfBranch struct {
	Cond Node // nil for the trailing else
	Body *StatementList
}

type If struct {
	pos
	Branches []IfBranch
}

func (n *If) Children() []Node {
	out := make([]Node, 0, len(n.Branches)*2)
	for _, b := range n.Branches {
		if b.Cond != nil {
			out = append(out, b.Cond)
		}
		out = append(out, b.Body)
	}
	return out
}

// For is `{% for target(s) in iter [if cond] [recursive] %}body{% else %}elseBody{% endfor %}`.
type For struct {
	pos
	Target    Node // Name or Tuple
	Iter      Node
	Filter    Node // optional "if cond" clause, may be nil
	Recursive bool
	Body      *StatementList
	ElseBody  *StatementList // nil if no {% else %}
}

func (n *For) Children() []Node {
	out := []Node{n.Target, n.Iter}
	if n.Filter != nil {
		out = append(out, n.Filter)
	}
	out = append(out, n.Body)
	if n.ElseBody != nil {
		out = append(out, n.ElseBody)
	}
	return out
}

// Set is `{% set target = expr %}` (Body nil) or the assign-block form
// `{% set target %}body{% endset %}` (Body set, Value nil).
type Set struct {
	pos
	Target Node // Name or Tuple
	Value  Node
	Body   *StatementList
	Filter *Filter // optional single filter applied to assign-block output; Node stays nil, the renderer passes the captured body to it directly
}

func (n *Set) Children() []Node {
	if n.Value != nil {
		return []Node{n.Target, n.Value}
	}
	return []Node{n.Target, n.Body}
}

// Block is `{% block name [scoped] [required] %}body{% endblock %}`.
type Block struct {
	pos
	Name     string
	Body     *StatementList
	Scoped   bool
	Required bool
}

func (n *Block) Children() []Node { return []Node{n.Body} }

// Extends is `{% extends parent %}`; Parent is an expression (usually a
// Const string, but may be any expression per spec's dynamic-extends
// allowance).
type Extends struct {
	pos
	Parent Node
}

func (n *Extends) Children() []Node { return []Node{n.Parent} }

// Include is `{% include name(s) [ignore missing] [with[out] context] %}`.
type Include struct {
	pos
	Template      Node // string Const, list literal, or expression evaluating to either
	IgnoreMissing bool
	WithContext   bool // Jinja default is true; WithoutContext flips it
}

func (n *Include) Children() []Node { return []Node{n.Template} }

// ImportName binds one name from a `{% from tpl import a, b as c %}`.
type ImportName struct {
	Name  string
	Alias string // equals Name if no "as"
}

// Import is `{% import tpl as name [with[out] context] %}`.
type Import struct {
	pos
	Template    Node
	Target      string
	WithContext bool
}

func (n *Import) Children() []Node { return []Node{n.Template} }

// FromImport is `{% from tpl import a, b as c [with[out] context] %}`.
type FromImport struct {
	pos
	Template    Node
	Names       []ImportName
	WithContext bool
}

func (n *FromImport) Children() []Node { return []Node{n.Template} }

// MacroArg is one formal parameter of a macro, with an optional default.
type MacroArg struct {
	Name    string
	Default Node // nil if required
}

// Macro is `{% macro name(args) %}body{% endmacro %}`.
type Macro struct {
	pos
	Name string
	Args []MacroArg
	Body *StatementList
}

func (n *Macro) Children() []Node { return []Node{n.Body} }

// CallBlock is `{% call [(args)] macroCall %}body{% endcall %}`: the body
// becomes available to the called macro as `caller()`.
type CallBlock struct {
	pos
	CallerArgs []MacroArg // params the body block itself accepts from the macro's caller() invocation
	Call       *Call
	Body       *StatementList
}

func (n *CallBlock) Children() []Node { return []Node{n.Call, n.Body} }

// FilterBlock is `{% filter name %}body{% endfilter %}`.
type FilterBlock struct {
	pos
	Filters []Filter // chain: `{% filter a|b %}` applies a then b
	Body    *StatementList
}

func (n *FilterBlock) Children() []Node { return []Node{n.Body} }

// With is `{% with a = 1, b = 2 %}body{% endwith %}`.
type With struct {
	pos
	Targets []Node // Name
	Values  []Node
	Body    *StatementList
}

func (n *With) Children() []Node {
	out := append([]Node{}, n.Values...)
	out = append(out, n.Body)
	return out
}

// AutoEscape is `{% autoescape on|off %}body{% endautoescape %}`.
type AutoEscape struct {
	pos
	Enabled Node // expression evaluating to a bool, usually a Const
	Body    *StatementList
}

func (n *AutoEscape) Children() []Node { return []Node{n.Enabled, n.Body} }

// Do evaluates an expression for its side effects and discards the
// result: `{% do seq.append(x) %}`.
type Do struct {
	pos
	Expr Node
}

func (n *Do) Children() []Node { return []Node{n.Expr} }

// FindAll walks node in pre-order (node itself, then each child
// recursively) and returns every node assignable to T. Used by
// newTemplate to collect block definitions, and available to any caller
// that needs to locate nodes of a given kind without a bespoke visitor.
func FindAll[T Node](node Node) []T {
	var out []T
	var walk func(Node)
	walk = func(n Node) {
		if n == nil {
			return
		}
		if t, ok := n.(T); ok {
			out = append(out, t)
		}
		for _, c := range n.Children() {
			walk(c)
		}
	}
	walk(node)
	return out
}
