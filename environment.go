package jinja2

import (
	"log"
	"os"
	"sync"
)

// FilterFunc implements a named filter: `expr|name(args...)`. value is
// the piped-in value; args/kwargs are the call's positional/keyword
// arguments, already evaluated.
type FilterFunc func(value *Value, args []*Value, kwargs map[string]*Value) (*Value, error)

// ContextFilterFunc is a filter that additionally needs the active
// RenderContext (e.g. to check the current autoescape mode, or resolve a
// name against template-local scope) -- Jinja's @pass_context decorator.
// Registered with Environment.AddContextFilter instead of AddFilter.
type ContextFilterFunc func(rc *RenderContext, value *Value, args []*Value, kwargs map[string]*Value) (*Value, error)

// TestFunc implements a named test: `expr is name(args...)`.
type TestFunc func(value *Value, args []*Value, kwargs map[string]*Value) (bool, error)

// Environment holds configuration (delimiters, whitespace control,
// autoescape policy), the global/filter/test registries, and a template
// cache. It is the pipeline's single entry point: Lex, Parse, FromString
// and GetTemplate all hang off one Environment so that two templates
// parsed from the same Environment are guaranteed to tokenize and
// resolve names identically.
type Environment struct {
	LexerConfig

	AutoEscape      bool
	StrictUndefined bool

	// Loader resolves template names for extends/include/import. nil
	// means only FromString-constructed templates are usable.
	Loader Loader

	Globals    map[string]any
	filters    map[string]FilterFunc
	ctxFilters map[string]ContextFilterFunc
	tests      map[string]TestFunc
	tags       map[string]TagParser

	// finalize post-processes every {{ }} output value before it's
	// stringified (e.g. to turn nil into ""); see SetFinalize.
	finalize func(*Value) *Value

	maxRecursiveLoopDepth int
	maxMacroDepth         int
	optimize              bool

	debug bool
	log   *log.Logger

	mu    sync.Mutex
	cache map[string]*Template
}

// EnvironmentOptions configures NewEnvironment; the zero value of each
// field selects the documented default.
type EnvironmentOptions struct {
	LexerConfig     *LexerConfig // nil -> DefaultLexerConfig()
	AutoEscape      bool
	StrictUndefined bool
	Loader          Loader
	Debug           bool

	// DisableOptimizer turns off the constant-folding pass that otherwise
	// runs once per template compile (see optimizer.go). The zero value
	// keeps folding on, matching Jinja's own optimized-by-default behavior.
	DisableOptimizer bool
}

// NewEnvironment constructs an Environment with the built-in filters and
// tests registered. Passing nil selects every documented default
// (canonical delimiters, autoescape off, non-strict undefined, no
// loader).
func NewEnvironment(opts *EnvironmentOptions) *Environment {
	if opts == nil {
		opts = &EnvironmentOptions{}
	}
	cfg := DefaultLexerConfig()
	if opts.LexerConfig != nil {
		cfg = *opts.LexerConfig
	}
	env := &Environment{
		LexerConfig:           cfg,
		AutoEscape:            opts.AutoEscape,
		StrictUndefined:       opts.StrictUndefined,
		Loader:                opts.Loader,
		Globals:               make(map[string]any),
		filters:               make(map[string]FilterFunc),
		ctxFilters:            make(map[string]ContextFilterFunc),
		tests:                 make(map[string]TestFunc),
		tags:                  make(map[string]TagParser),
		maxRecursiveLoopDepth: 1000,
		maxMacroDepth:         500,
		optimize:              !opts.DisableOptimizer,
		debug:                 opts.Debug,
		log:                   log.New(os.Stderr, "jinja2: ", log.LstdFlags),
		cache:                 make(map[string]*Template),
	}
	registerBuiltinTags(env)
	registerBuiltinFilters(env)
	registerBuiltinTests(env)
	return env
}

func (env *Environment) logf(format string, args ...any) {
	if env.debug {
		env.log.Printf(format, args...)
	}
}

// AddFilter registers name for use as `|name` in templates parsed from
// this Environment. It's an error (at the call site, via panic) to
// register a name that already exists -- registry collisions are a
// programmer error, not a template error.
func (env *Environment) AddFilter(name string, fn FilterFunc) {
	if _, exists := env.filters[name]; exists {
		panic("jinja2: filter already registered: " + name)
	}
	env.filters[name] = fn
}

// AddContextFilter registers a context-aware filter (see ContextFilterFunc).
func (env *Environment) AddContextFilter(name string, fn ContextFilterFunc) {
	if _, exists := env.ctxFilters[name]; exists {
		panic("jinja2: filter already registered: " + name)
	}
	env.ctxFilters[name] = fn
}

// AddTest registers name for use as `is name` in templates parsed from
// this Environment.
func (env *Environment) AddTest(name string, fn TestFunc) {
	if _, exists := env.tests[name]; exists {
		panic("jinja2: test already registered: " + name)
	}
	env.tests[name] = fn
}

// AddTag registers a new statement tag's parser. Built-in tags
// (if/for/block/extends/...) are registered by registerBuiltinTags and
// may be overridden by calling AddTag again with the same name before
// any template is parsed.
func (env *Environment) AddTag(name string, parse TagParser) {
	env.tags[name] = parse
}

// SetFinalize installs a callback applied to every expression result
// before it is converted to output text. Jinja historically accepts
// three finalize call shapes (value-only, value+context, value+eval-ctx);
// this port accepts exactly one shape, func(*Value) *Value, fixed by the
// parameter type: any other shape fails to compile, and no
// TemplateAssertionError or other runtime check is involved. There is no
// context- or environment-receiving finalize variant.
func (env *Environment) SetFinalize(fn func(*Value) *Value) {
	env.finalize = fn
}

// Lex tokenizes src under this Environment's delimiter/whitespace
// configuration.
func (env *Environment) Lex(name, src string) ([]Token, error) {
	return Lex(name, src, env.LexerConfig)
}

// Parse lexes and parses src into a template body, without constructing a
// Template wrapper (no block-map/extends validation). Exposed for
// callers that only need the AST (tests, tooling); FromString/GetTemplate
// are the normal entry points for rendering.
func (env *Environment) Parse(name, src string) (*StatementList, error) {
	tokens, err := env.Lex(name, src)
	if err != nil {
		return nil, err
	}
	return ParseDocument(name, tokens, env)
}

// FromString compiles src into a ready-to-render Template. The template
// is not cached (it has no stable name a Loader could re-resolve), unlike
// GetTemplate.
func (env *Environment) FromString(src string) (*Template, error) {
	return env.fromNamedString("<string>", src)
}

func (env *Environment) fromNamedString(name, src string) (*Template, error) {
	body, err := env.Parse(name, src)
	if err != nil {
		return nil, err
	}
	if env.optimize {
		body = optimize(body).(*StatementList)
	}
	return newTemplate(env, name, body)
}

// GetTemplate loads name via env.Loader (returning a TemplateNotFound if
// no Loader is configured), parses it, and caches the result so a
// repeated extends/include/import of the same name doesn't re-lex/parse.
func (env *Environment) GetTemplate(name string) (*Template, error) {
	env.mu.Lock()
	if tpl, ok := env.cache[name]; ok {
		env.mu.Unlock()
		return tpl, nil
	}
	env.mu.Unlock()

	if env.Loader == nil {
		return nil, &TemplateNotFound{Name: name, Err: errNoLoader}
	}
	src, err := env.Loader.Load(name)
	if err != nil {
		return nil, &TemplateNotFound{Name: name, Err: err}
	}
	tpl, err := env.fromNamedString(name, src)
	if err != nil {
		return nil, err
	}

	env.mu.Lock()
	env.cache[name] = tpl
	env.mu.Unlock()
	return tpl, nil
}

// GetOrSelectTemplate resolves an include "template name or list of
// names" argument ({% extends %} takes a single name and does not go
// through here): a single string loads that template; a list tries
// each in turn and succeeds on the first that resolves, returning
// TemplatesNotFound only if every candidate fails.
func (env *Environment) GetOrSelectTemplate(candidates []string) (*Template, error) {
	if len(candidates) == 1 {
		return env.GetTemplate(candidates[0])
	}
	var causes []error
	for _, name := range candidates {
		tpl, err := env.GetTemplate(name)
		if err == nil {
			return tpl, nil
		}
		causes = append(causes, err)
	}
	return nil, &TemplatesNotFound{Names: candidates, Causes: causes}
}

// ListTemplates returns every template name the configured Loader can
// enumerate, or an empty slice if the Loader doesn't support listing.
func (env *Environment) ListTemplates() []string {
	if lister, ok := env.Loader.(ListLoader); ok {
		names, err := lister.List()
		if err == nil {
			return names
		}
	}
	return nil
}
