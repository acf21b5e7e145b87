package jinja2

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func renderString(t *testing.T, env *Environment, src string, data Context) string {
	t.Helper()
	tpl, err := env.FromString(src)
	require.NoError(t, err)
	out, err := tpl.Execute(data)
	require.NoError(t, err)
	return out
}

func TestRenderOutputAndLiteral(t *testing.T) {
	env := NewEnvironment(nil)
	out := renderString(t, env, "hi {{ name }}!", Context{"name": "florian"})
	assert.Equal(t, "hi florian!", out)
}

func TestRenderIfTruthiness(t *testing.T) {
	env := NewEnvironment(nil)
	out := renderString(t, env, "{% if items %}has{% else %}empty{% endif %}", Context{"items": []int{}})
	assert.Equal(t, "empty", out)
	out = renderString(t, env, "{% if items %}has{% else %}empty{% endif %}", Context{"items": []int{1}})
	assert.Equal(t, "has", out)
}

func TestRenderForLoopMetadata(t *testing.T) {
	env := NewEnvironment(nil)
	out := renderString(t, env,
		"{% for x in items %}{{ loop.index }}:{{ x }}{% if not loop.last %},{% endif %}{% endfor %}",
		Context{"items": []string{"a", "b", "c"}})
	assert.Equal(t, "1:a,2:b,3:c", out)
}

func TestRenderForElseOnEmpty(t *testing.T) {
	env := NewEnvironment(nil)
	out := renderString(t, env, "{% for x in items %}{{ x }}{% else %}nothing{% endfor %}", Context{"items": []int{}})
	assert.Equal(t, "nothing", out)
}

func TestRenderForScopeDoesNotLeak(t *testing.T) {
	env := NewEnvironment(nil)
	out := renderString(t, env, "{% for x in items %}{{ x }}{% endfor %}|{{ x }}",
		Context{"items": []int{1, 2}, "x": "outer"})
	assert.Equal(t, "12|outer", out)
}

func TestRenderExtendsBlockSuper(t *testing.T) {
	env := NewEnvironment(&EnvironmentOptions{Loader: MapLoader{
		"base.html": "[{% block content %}base{% endblock %}]",
		"child.html": "{% extends 'base.html' %}{% block content %}child-{{ super() }}{% endblock %}",
	}})
	tpl, err := env.GetTemplate("child.html")
	require.NoError(t, err)
	out, err := tpl.Execute(nil)
	require.NoError(t, err)
	assert.Equal(t, "[child-base]", out)
}

func TestRenderIncludeWithContext(t *testing.T) {
	env := NewEnvironment(&EnvironmentOptions{Loader: MapLoader{
		"greeting.html": "hi {{ name }}",
		"main.html":     "{% include 'greeting.html' %}",
	}})
	tpl, err := env.GetTemplate("main.html")
	require.NoError(t, err)
	out, err := tpl.Execute(Context{"name": "ada"})
	require.NoError(t, err)
	assert.Equal(t, "hi ada", out)
}

func TestRenderMacroAndCaller(t *testing.T) {
	env := NewEnvironment(nil)
	out := renderString(t, env,
		`{% macro wrap() %}<{{ caller() }}>{% endmacro %}`+
			`{% call wrap() %}inner{% endcall %}`, nil)
	assert.Equal(t, "<inner>", out)
}

func TestRenderFilterAndTest(t *testing.T) {
	env := NewEnvironment(nil)
	out := renderString(t, env, "{{ name|upper }} is {{ 4 is even }}", Context{"name": "ada"})
	assert.Equal(t, "ADA is True", out)
}

func TestRenderAutoEscape(t *testing.T) {
	env := NewEnvironment(&EnvironmentOptions{AutoEscape: true})
	out := renderString(t, env, "{{ value }}", Context{"value": "<b>"})
	assert.Equal(t, "&lt;b&gt;", out)
}

func TestRenderSetAssignBlockWithFilter(t *testing.T) {
	env := NewEnvironment(nil)
	out := renderString(t, env, "{% set x | upper %}hi{% endset %}{{ x }}", nil)
	assert.Equal(t, "HI", out)
}

func TestRenderForTupleUnpacking(t *testing.T) {
	env := NewEnvironment(nil)
	out := renderString(t, env,
		"{% for a, b, c in rows %}{{ a }}-{{ b }}-{{ c }};{% endfor %}",
		Context{"rows": [][]int{{1, 2, 3}, {4, 5, 6}}})
	assert.Equal(t, "1-2-3;4-5-6;", out)
}

func TestRenderForTupleUnpackingTooFewValues(t *testing.T) {
	env := NewEnvironment(nil)
	tpl, err := env.FromString("{% for a, b, c in rows %}{{ a }}{% endfor %}")
	require.NoError(t, err)
	_, err = tpl.Execute(Context{"rows": [][]int{{1, 2}}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not enough values to unpack (expected 3, got 2)")
}

func TestRenderForTupleUnpackingTooManyValues(t *testing.T) {
	env := NewEnvironment(nil)
	tpl, err := env.FromString("{% for a, b in rows %}{{ a }}{% endfor %}")
	require.NoError(t, err)
	_, err = tpl.Execute(Context{"rows": [][]int{{1, 2, 3}}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too many values to unpack (expected 2)")
}
