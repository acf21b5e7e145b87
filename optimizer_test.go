package jinja2

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptimizeFoldsArithmetic(t *testing.T) {
	env := NewEnvironment(nil)
	body, err := env.Parse("<test>", "{{ 1 + 2 * 3 }}")
	require.NoError(t, err)
	folded := optimize(body).(*StatementList)
	out := folded.Nodes[0].(*Output)
	c, ok := out.Body.(*Const)
	require.True(t, ok)
	assert.Equal(t, int64(7), c.Value)
}

func TestOptimizeFoldsComparisonAndConcat(t *testing.T) {
	env := NewEnvironment(nil)
	body, err := env.Parse("<test>", `{{ (1 < 2) ~ "-" ~ "ok" }}`)
	require.NoError(t, err)
	folded := optimize(body).(*StatementList)
	c, ok := folded.Nodes[0].(*Output).Body.(*Const)
	require.True(t, ok)
	assert.Equal(t, "True-ok", c.Value)
}

func TestOptimizeDoesNotFoldFilters(t *testing.T) {
	env := NewEnvironment(nil)
	body, err := env.Parse("<test>", `{{ "hi"|upper }}`)
	require.NoError(t, err)
	folded := optimize(body).(*StatementList)
	_, ok := folded.Nodes[0].(*Output).Body.(*Filter)
	assert.True(t, ok, "filter node must survive folding even though its operand is Const")
}

func TestOptimizeLeavesDivisionByZeroUnfolded(t *testing.T) {
	env := NewEnvironment(nil)
	body, err := env.Parse("<test>", "{{ 1 / 0 }}")
	require.NoError(t, err)
	folded := optimize(body).(*StatementList)
	_, ok := folded.Nodes[0].(*Output).Body.(*Binary)
	assert.True(t, ok, "a folding error must leave the original node in place")
}

func TestOptimizeIsIdempotent(t *testing.T) {
	env := NewEnvironment(nil)
	body, err := env.Parse("<test>", "{{ 2 ** 10 }}")
	require.NoError(t, err)
	once := optimize(body).(*StatementList)
	twice := optimize(once).(*StatementList)
	c1 := once.Nodes[0].(*Output).Body.(*Const)
	c2 := twice.Nodes[0].(*Output).Body.(*Const)
	assert.Equal(t, c1.Value, c2.Value)
}

func TestOptimizeFoldsNestedVariableFreeSubexpression(t *testing.T) {
	env := NewEnvironment(nil)
	body, err := env.Parse("<test>", "{% if (1 + 1) == 2 %}yes{% endif %}")
	require.NoError(t, err)
	folded := optimize(body).(*StatementList)
	ifNode := folded.Nodes[0].(*If)
	c, ok := ifNode.Branches[0].Cond.(*Const)
	require.True(t, ok)
	assert.Equal(t, true, c.Value)
}
