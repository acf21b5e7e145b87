package jinja2

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func applyFilter(t *testing.T, env *Environment, name string, v *Value, args []*Value, kwargs map[string]*Value) *Value {
	t.Helper()
	fn, ok := env.filters[name]
	require.True(t, ok, "filter %q not registered", name)
	out, err := fn(v, args, kwargs)
	require.NoError(t, err)
	return out
}

func TestFilterUpperLower(t *testing.T) {
	env := NewEnvironment(nil)
	assert.Equal(t, "ADA", applyFilter(t, env, "upper", AsValue("ada"), nil, nil).String())
	assert.Equal(t, "ada", applyFilter(t, env, "lower", AsValue("ADA"), nil, nil).String())
}

func TestFilterDefault(t *testing.T) {
	env := NewEnvironment(nil)
	out := applyFilter(t, env, "default", AsValue(&Undefined{Name: "x"}), []*Value{AsValue("fallback")}, nil)
	assert.Equal(t, "fallback", out.String())

	out = applyFilter(t, env, "default", AsValue("set"), []*Value{AsValue("fallback")}, nil)
	assert.Equal(t, "set", out.String())

	out = applyFilter(t, env, "default", AsValue(""), []*Value{AsValue("fallback")}, map[string]*Value{"boolean": AsValue(true)})
	assert.Equal(t, "fallback", out.String())
}

func TestFilterJoinFirstLast(t *testing.T) {
	env := NewEnvironment(nil)
	items := AsValue([]string{"a", "b", "c"})
	assert.Equal(t, "a-b-c", applyFilter(t, env, "join", items, []*Value{AsValue("-")}, nil).String())
	assert.Equal(t, "a", applyFilter(t, env, "first", items, nil, nil).String())
	assert.Equal(t, "c", applyFilter(t, env, "last", items, nil, nil).String())
}

func TestFilterRound(t *testing.T) {
	env := NewEnvironment(nil)
	assert.Equal(t, 3.0, applyFilter(t, env, "round", AsValue(2.5), nil, nil).Float())
	assert.Equal(t, 2.0, applyFilter(t, env, "round", AsValue(2.1), []*Value{AsValue(0), AsValue("floor")}, nil).Float())
	assert.Equal(t, 3.0, applyFilter(t, env, "round", AsValue(2.1), []*Value{AsValue(0), AsValue("ceil")}, nil).Float())
}

func TestFilterSortByAttribute(t *testing.T) {
	type item struct{ Name string }
	env := NewEnvironment(nil)
	items := AsValue([]item{{Name: "banana"}, {Name: "apple"}, {Name: "cherry"}})
	sorted := applyFilter(t, env, "sort", items, nil, map[string]*Value{"attribute": AsValue("Name")})
	got := sorted.Items()
	assert.Equal(t, "apple", got[0].GetAttr("Name").String())
	assert.Equal(t, "banana", got[1].GetAttr("Name").String())
	assert.Equal(t, "cherry", got[2].GetAttr("Name").String())
}

func TestFilterSumWithAttribute(t *testing.T) {
	type item struct{ Price int }
	env := NewEnvironment(nil)
	items := AsValue([]item{{Price: 1}, {Price: 2}, {Price: 3}})
	out := applyFilter(t, env, "sum", items, nil, map[string]*Value{"attribute": AsValue("Price")})
	assert.Equal(t, int64(6), out.Integer())
}

func TestFilterEscapeAndSafe(t *testing.T) {
	env := NewEnvironment(nil)
	escaped := applyFilter(t, env, "escape", AsValue("<b>"), nil, nil)
	assert.Equal(t, "&lt;b&gt;", escaped.String())
	assert.True(t, escaped.IsMarkup())

	safe := applyFilter(t, env, "safe", AsValue("<b>"), nil, nil)
	assert.Equal(t, "<b>", safe.String())
	assert.True(t, safe.IsMarkup())
}
