package jinja2

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func applyTest(t *testing.T, env *Environment, name string, v *Value, args []*Value) bool {
	t.Helper()
	fn, ok := env.tests[name]
	require.True(t, ok, "test %q not registered", name)
	out, err := fn(v, args, nil)
	require.NoError(t, err)
	return out
}

func TestTestEvenOdd(t *testing.T) {
	env := NewEnvironment(nil)
	assert.True(t, applyTest(t, env, "even", AsValue(4), nil))
	assert.False(t, applyTest(t, env, "even", AsValue(3), nil))
	assert.True(t, applyTest(t, env, "odd", AsValue(3), nil))
}

func TestTestDefinedUndefined(t *testing.T) {
	env := NewEnvironment(nil)
	assert.False(t, applyTest(t, env, "defined", AsValue(&Undefined{Name: "x"}), nil))
	assert.True(t, applyTest(t, env, "defined", AsValue("x"), nil))
	assert.True(t, applyTest(t, env, "undefined", AsValue(&Undefined{Name: "x"}), nil))
}

func TestTestNone(t *testing.T) {
	env := NewEnvironment(nil)
	assert.True(t, applyTest(t, env, "none", AsValue(nil), nil))
	assert.False(t, applyTest(t, env, "none", AsValue(0), nil))
}

func TestTestDivisibleBy(t *testing.T) {
	env := NewEnvironment(nil)
	assert.True(t, applyTest(t, env, "divisibleby", AsValue(9), []*Value{AsValue(3)}))
	assert.False(t, applyTest(t, env, "divisibleby", AsValue(10), []*Value{AsValue(3)}))
}

func TestTestIterableAndMapping(t *testing.T) {
	env := NewEnvironment(nil)
	assert.True(t, applyTest(t, env, "iterable", AsValue([]int{1}), nil))
	assert.False(t, applyTest(t, env, "iterable", AsValue(1), nil))
	assert.True(t, applyTest(t, env, "mapping", AsValue(map[string]int{"a": 1}), nil))
	assert.False(t, applyTest(t, env, "mapping", AsValue([]int{1}), nil))
}

func TestTestInOperator(t *testing.T) {
	env := NewEnvironment(nil)
	assert.True(t, applyTest(t, env, "in", AsValue("b"), []*Value{AsValue([]string{"a", "b", "c"})}))
	assert.False(t, applyTest(t, env, "in", AsValue("z"), []*Value{AsValue([]string{"a", "b", "c"})}))
}
