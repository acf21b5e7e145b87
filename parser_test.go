package jinja2

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseBody(t *testing.T, src string) *StatementList {
	t.Helper()
	env := NewEnvironment(nil)
	body, err := env.Parse("<test>", src)
	require.NoError(t, err)
	return body
}

func TestParseIfElifElse(t *testing.T) {
	body := parseBody(t, "{% if a %}A{% elif b %}B{% else %}C{% endif %}")
	require.Len(t, body.Nodes, 1)
	ifNode, ok := body.Nodes[0].(*If)
	require.True(t, ok)
	require.Len(t, ifNode.Branches, 3)
	assert.NotNil(t, ifNode.Branches[0].Cond)
	assert.NotNil(t, ifNode.Branches[1].Cond)
	assert.Nil(t, ifNode.Branches[2].Cond)
}

func TestParseForWithFilterAndElse(t *testing.T) {
	body := parseBody(t, "{% for x in items if x.active %}{{ x }}{% else %}none{% endfor %}")
	require.Len(t, body.Nodes, 1)
	forNode, ok := body.Nodes[0].(*For)
	require.True(t, ok)
	assert.NotNil(t, forNode.Filter)
	assert.NotNil(t, forNode.ElseBody)
}

func TestParseExpressionPrecedence(t *testing.T) {
	// `a or b and not c` should group as `a or (b and (not c))`: a top-level
	// Binary with Op orOp whose Right is a Binary with Op andOp.
	body := parseBody(t, "{{ a or b and not c }}")
	out, ok := body.Nodes[0].(*Output)
	require.True(t, ok)
	top, ok := out.Body.(*Binary)
	require.True(t, ok)
	assert.Equal(t, orOp, top.Op)
	right, ok := top.Right.(*Binary)
	require.True(t, ok)
	assert.Equal(t, andOp, right.Op)
	_, ok = right.Right.(*Unary)
	assert.True(t, ok)
}

func TestParseUnknownTagError(t *testing.T) {
	env := NewEnvironment(nil)
	_, err := env.Parse("<test>", "{% bogus %}{% endbogus %}")
	require.Error(t, err)
}

func TestParseUnclosedTagError(t *testing.T) {
	env := NewEnvironment(nil)
	_, err := env.Parse("<test>", "{% if a %}no end here")
	require.Error(t, err)
}

func TestParseMacroWithDefaultArgs(t *testing.T) {
	body := parseBody(t, `{% macro greet(name, greeting="hi") %}{{ greeting }}, {{ name }}{% endmacro %}`)
	m, ok := body.Nodes[0].(*Macro)
	require.True(t, ok)
	require.Len(t, m.Args, 2)
	assert.Nil(t, m.Args[0].Default)
	assert.NotNil(t, m.Args[1].Default)
}

func TestParseBlockModifiersEitherOrder(t *testing.T) {
	b1 := parseBody(t, "{% block content scoped required %}x{% endblock %}").Nodes[0].(*Block)
	b2 := parseBody(t, "{% block content required scoped %}x{% endblock %}").Nodes[0].(*Block)
	assert.True(t, b1.Scoped)
	assert.True(t, b1.Required)
	assert.True(t, b2.Scoped)
	assert.True(t, b2.Required)
}

func TestParseBlockNameMismatchOnClose(t *testing.T) {
	env := NewEnvironment(nil)
	_, err := env.Parse("<test>", "{% block a %}x{% endblock b %}")
	require.Error(t, err)
}

func TestParseMismatchedEndTagNamesTheExpectedTagsAndBlock(t *testing.T) {
	env := NewEnvironment(nil)
	_, err := env.Parse("<test>", "{% for x in y %}{% endif %}{% endfor %}")
	require.Error(t, err)
	assert.Contains(t, err.Error(),
		"Encountered unknown tag 'endif'. Jinja was looking for the following "+
			"tags: 'endfor' or 'else'. The innermost block that needs to be closed is 'for'.")
}

func TestParseBlockNameWithHyphenSuggestsUnderscore(t *testing.T) {
	env := NewEnvironment(nil)
	_, err := env.Parse("<test>", "{% block foo-bar %}x{% endblock %}")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "use an underscore instead")
}

func TestParseForLoopTargetNamedLoopIsRejected(t *testing.T) {
	env := NewEnvironment(nil)
	_, err := env.Parse("<test>", "{% for loop in items %}{{ loop }}{% endfor %}")
	require.Error(t, err)
	var assertionErr *TemplateAssertionError
	require.ErrorAs(t, err, &assertionErr)
}
