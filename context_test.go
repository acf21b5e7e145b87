package jinja2

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextResolveChain(t *testing.T) {
	env := NewEnvironment(nil)
	env.Globals["site"] = "global-site"
	rc := newRootContext(env, Context{"name": "local-name"}, nil)

	assert.Equal(t, "local-name", rc.resolve("name").String())
	assert.Equal(t, "global-site", rc.resolve("site").String())
	assert.True(t, rc.resolve("missing").IsUndefined())
}

func TestContextApplyRestoresOnExit(t *testing.T) {
	env := NewEnvironment(nil)
	rc := newRootContext(env, Context{"x": "outer"}, nil)

	err := rc.apply(map[string]*Value{"x": AsValue("inner")}, func() error {
		assert.Equal(t, "inner", rc.resolve("x").String())
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "outer", rc.resolve("x").String())
}

func TestContextApplyRestoresEvenOnError(t *testing.T) {
	env := NewEnvironment(nil)
	rc := newRootContext(env, Context{"x": "outer"}, nil)

	err := rc.apply(map[string]*Value{"x": AsValue("inner")}, func() error {
		return &TemplateRuntimeError{Msg: "boom"}
	})
	require.Error(t, err)
	assert.Equal(t, "outer", rc.resolve("x").String())
}

func TestContextResolveLocalDoesNotFallBackToGlobals(t *testing.T) {
	env := NewEnvironment(nil)
	env.Globals["site"] = "global-site"
	rc := newRootContext(env, Context{}, nil)

	_, ok := rc.resolveLocal("site")
	assert.False(t, ok)
}

func TestContextRequireDefinedStrictMode(t *testing.T) {
	env := NewEnvironment(&EnvironmentOptions{StrictUndefined: true})
	rc := newRootContext(env, Context{}, nil)

	err := rc.requireDefined(rc.resolve("missing"))
	require.Error(t, err)

	var undefErr *TemplateContextVariableNotFoundError
	assert.ErrorAs(t, err, &undefErr)
}
