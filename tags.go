package jinja2

// registerBuiltinTags installs every statement tag's TagParser on a fresh
// Environment. Grounded on the package-level mustRegisterTag/init()
// convention (each tags_*.go file self-registered into a process-global
// table); this engine has no such global, since two Environments may
// legitimately want different tag sets (a sandboxed one with fewer tags,
// say), so registration happens once per Environment inside NewEnvironment
// instead of at package load.
func registerBuiltinTags(env *Environment) {
	env.AddTag("if", parseIf)
	env.AddTag("for", parseFor)
	env.AddTag("set", parseSet)
	env.AddTag("block", parseBlock)
	env.AddTag("extends", parseExtends)
	env.AddTag("include", parseInclude)
	env.AddTag("import", parseImport)
	env.AddTag("from", parseFrom)
	env.AddTag("macro", parseMacro)
	env.AddTag("call", parseCall)
	env.AddTag("filter", parseFilterBlock)
	env.AddTag("with", parseWith)
	env.AddTag("autoescape", parseAutoEscape)
	env.AddTag("do", parseDo)
}
