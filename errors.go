package jinja2

import "fmt"

// TemplateSyntaxError reports a lexing or parsing failure: malformed
// delimiters, an unknown tag, a dangling expression, or any other defect
// found before a template can be rendered.
type TemplateSyntaxError struct {
	Path string // template name/path, empty for ad-hoc strings
	Line int
	Msg  string
}

func (e *TemplateSyntaxError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: line %d", e.Msg, e.Line)
	}
	return fmt.Sprintf("%s: line %d in %s", e.Msg, e.Line, e.Path)
}

// TemplateAssertionError reports a structurally valid template that
// violates a semantic rule checked at parse time. The parser raises it
// for "loop" used as a for-loop target; no other check produces it (a
// misplaced extends is a TemplateSyntaxError).
type TemplateAssertionError struct {
	Path string
	Line int
	Msg  string
}

func (e *TemplateAssertionError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: line %d", e.Msg, e.Line)
	}
	return fmt.Sprintf("%s: line %d in %s", e.Msg, e.Line, e.Path)
}

// TemplateNotFound reports that a Loader could not resolve a single
// template name.
type TemplateNotFound struct {
	Name string
	Err  error // underlying loader error, if any
}

func (e *TemplateNotFound) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("template not found: %s: %v", e.Name, e.Err)
	}
	return fmt.Sprintf("template not found: %s", e.Name)
}

func (e *TemplateNotFound) Unwrap() error { return e.Err }

// TemplatesNotFound reports that none of a list of candidate names (as
// tried by {% include %} with a list argument) could be
// resolved. It carries the per-name failures so callers can inspect why
// each candidate was rejected.
type TemplatesNotFound struct {
	Names  []string
	Causes []error
}

func (e *TemplatesNotFound) Error() string {
	return fmt.Sprintf("none of the templates %v could be found", e.Names)
}

// TemplateRuntimeError reports a failure discovered only while rendering:
// calling a non-callable value, a loop() recursive call without the
// "recursive" modifier, a cyclic extends/include chain. (super() in a
// block with no parent definition renders empty rather than failing.)
type TemplateRuntimeError struct {
	Msg string
}

func (e *TemplateRuntimeError) Error() string { return e.Msg }

// UndefinedError is the error kind for using an Undefined where a
// concrete value is required. No code path in this package returns it:
// arithmetic and iteration treat Undefined as zero/empty, and strict
// lookups fail with TemplateContextVariableNotFoundError instead.
type UndefinedError struct {
	Msg string
}

func (e *UndefinedError) Error() string { return e.Msg }

// TemplateContextVariableNotFoundError reports that a name referenced in
// a template has no binding anywhere in the context chain (locals,
// parent scopes, environment globals). Whether this becomes a hard error
// or silently yields Undefined is controlled by the Environment's
// undefined-behavior policy; this type is what StrictUndefined raises.
type TemplateContextVariableNotFoundError struct {
	Name string
}

func (e *TemplateContextVariableNotFoundError) Error() string {
	return fmt.Sprintf("%q is undefined", e.Name)
}
