package jinja2

// optimize runs the constant-folding pass over a parsed template body: any
// expression whose operator is one of the arithmetic/comparison/boolean/
// concat/indexing kinds and whose operands are all already *Const gets
// replaced by the *Const holding its evaluated result. Filters and tests
// are never folded since either may be impure (a filter that reads the
// clock, a test registered by the host that has side effects). A folding
// error (division by zero, a type mismatch) is swallowed and the node is
// left as-is -- optimize never turns a folding failure into a parse-time
// error, since the same expression may still fail, identically, at render
// time and produce the error message a user actually expects.
//
// No direct precedent in the code this engine grew from: that renderer
// walks and renders a template tree directly with no separate compile
// step. Grounded on nodes.go's own
// Children()/FindAll pre-order shape, generalized into a rewriting walk
// (Children() returns a fresh slice so can't double as an assignable
// cursor; optimizeNode below switches on the concrete type and reassigns
// each struct field it descends into).
func optimize(n Node) Node {
	if n == nil {
		return nil
	}
	switch node := n.(type) {
	case *StatementList:
		for i, c := range node.Nodes {
			node.Nodes[i] = optimize(c)
		}
		return node
	case *Output:
		node.Body = optimize(node.Body)
		return node
	case *If:
		for i := range node.Branches {
			if node.Branches[i].Cond != nil {
				node.Branches[i].Cond = optimize(node.Branches[i].Cond)
			}
			node.Branches[i].Body = optimize(node.Branches[i].Body).(*StatementList)
		}
		return node
	case *For:
		node.Target = optimize(node.Target)
		node.Iter = optimize(node.Iter)
		if node.Filter != nil {
			node.Filter = optimize(node.Filter)
		}
		node.Body = optimize(node.Body).(*StatementList)
		if node.ElseBody != nil {
			node.ElseBody = optimize(node.ElseBody).(*StatementList)
		}
		return node
	case *Set:
		node.Target = optimize(node.Target)
		if node.Value != nil {
			node.Value = optimize(node.Value)
		}
		if node.Body != nil {
			node.Body = optimize(node.Body).(*StatementList)
		}
		return node
	case *Block:
		node.Body = optimize(node.Body).(*StatementList)
		return node
	case *Extends:
		node.Parent = optimize(node.Parent)
		return node
	case *Include:
		node.Template = optimize(node.Template)
		return node
	case *Import:
		node.Template = optimize(node.Template)
		return node
	case *FromImport:
		node.Template = optimize(node.Template)
		return node
	case *Macro:
		for i := range node.Args {
			if node.Args[i].Default != nil {
				node.Args[i].Default = optimize(node.Args[i].Default)
			}
		}
		node.Body = optimize(node.Body).(*StatementList)
		return node
	case *CallBlock:
		node.Call = optimize(node.Call).(*Call)
		node.Body = optimize(node.Body).(*StatementList)
		return node
	case *FilterBlock:
		for i := range node.Filters {
			optimizeFilterArgs(&node.Filters[i])
		}
		node.Body = optimize(node.Body).(*StatementList)
		return node
	case *With:
		for i, v := range node.Values {
			node.Values[i] = optimize(v)
		}
		node.Body = optimize(node.Body).(*StatementList)
		return node
	case *AutoEscape:
		node.Enabled = optimize(node.Enabled)
		node.Body = optimize(node.Body).(*StatementList)
		return node
	case *Do:
		node.Expr = optimize(node.Expr)
		return node

	case *Tuple:
		for i, c := range node.Items {
			node.Items[i] = optimize(c)
		}
		return node
	case *ListLiteral:
		for i, c := range node.Items {
			node.Items[i] = optimize(c)
		}
		return node
	case *DictLiteral:
		for i := range node.Pairs {
			node.Pairs[i].Key = optimize(node.Pairs[i].Key)
			node.Pairs[i].Value = optimize(node.Pairs[i].Value)
		}
		return node
	case *Unary:
		node.Node = optimize(node.Node)
		return tryFold(node, isConst(node.Node))
	case *Binary:
		node.Left = optimize(node.Left)
		node.Right = optimize(node.Right)
		return tryFold(node, isConst(node.Left) && isConst(node.Right))
	case *Concat:
		allConst := true
		for i, p := range node.Parts {
			node.Parts[i] = optimize(p)
			allConst = allConst && isConst(node.Parts[i])
		}
		return tryFold(node, allConst)
	case *Compare:
		node.Left = optimize(node.Left)
		allConst := isConst(node.Left)
		for i := range node.Ops {
			node.Ops[i].Right = optimize(node.Ops[i].Right)
			allConst = allConst && isConst(node.Ops[i].Right)
		}
		return tryFold(node, allConst)
	case *Getitem:
		node.Node = optimize(node.Node)
		node.Arg = optimize(node.Arg)
		return tryFold(node, isConst(node.Node) && isConst(node.Arg))
	case *Getattr:
		node.Node = optimize(node.Node)
		return node
	case *Slice:
		node.Node = optimize(node.Node)
		if node.Start != nil {
			node.Start = optimize(node.Start)
		}
		if node.Stop != nil {
			node.Stop = optimize(node.Stop)
		}
		if node.Step != nil {
			node.Step = optimize(node.Step)
		}
		return node
	case *Call:
		node.Func = optimize(node.Func)
		for i, a := range node.Args {
			node.Args[i] = optimize(a)
		}
		for i := range node.Kwargs {
			node.Kwargs[i].Value = optimize(node.Kwargs[i].Value)
		}
		return node
	case *Filter:
		node.Node = optimize(node.Node)
		optimizeFilterArgs(node)
		return node
	case *Test:
		node.Node = optimize(node.Node)
		for i, a := range node.Args {
			node.Args[i] = optimize(a)
		}
		for i := range node.Kwargs {
			node.Kwargs[i].Value = optimize(node.Kwargs[i].Value)
		}
		return node
	case *Condition:
		node.Cond = optimize(node.Cond)
		node.Then = optimize(node.Then)
		if node.Else != nil {
			node.Else = optimize(node.Else)
		}
		return node
	}
	return n
}

func optimizeFilterArgs(f *Filter) {
	for i, a := range f.Args {
		f.Args[i] = optimize(a)
	}
	for i := range f.Kwargs {
		f.Kwargs[i].Value = optimize(f.Kwargs[i].Value)
	}
}

func isConst(n Node) bool {
	_, ok := n.(*Const)
	return ok
}

// tryFold evaluates node against an empty RenderContext when allConst
// holds, replacing it with the resulting *Const; any evaluation error, or
// allConst being false, returns node unchanged.
func tryFold(node Node, allConst bool) Node {
	if !allConst {
		return node
	}
	rc := &RenderContext{env: foldEnv, locals: map[string]*Value{}}
	v, err := evalExpr(rc, node)
	if err != nil {
		return node
	}
	return &Const{pos: pos{Line: node.Pos()}, Value: v.Interface()}
}

// foldEnv is a bare Environment used only to satisfy evalExpr's nil
// checks during folding; constant-foldable operators never consult
// filters/tests/globals.
var foldEnv = &Environment{}
