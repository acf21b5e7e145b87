// Package jinja2 implements the core of a Jinja2-compatible template engine:
// lexing, parsing, an AST, and a tree-walking renderer.
//
// A tiny example with template strings:
//
//	env := jinja2.NewEnvironment(nil)
//	tpl, err := env.FromString("Hello {{ name|upper }}!")
//	if err != nil {
//	    panic(err)
//	}
//	out, err := tpl.Execute(jinja2.Context{"name": "florian"})
//	if err != nil {
//	    panic(err)
//	}
//	fmt.Println(out) // Output: Hello FLORIAN!
//
// Loaders, the full built-in filter/test library, sandboxing and bytecode
// compilation are out of scope for this package; see the loader interface
// in loader.go for how a host application plugs in template storage.
package jinja2
