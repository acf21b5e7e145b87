package jinja2

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplateExtendsMustBeFirstStatement(t *testing.T) {
	env := NewEnvironment(nil)
	_, err := env.FromString("hello {% extends 'base.html' %}")
	require.Error(t, err)

	var syntaxErr *TemplateSyntaxError
	assert.ErrorAs(t, err, &syntaxErr)
}

func TestTemplateExtendsAsFirstStatementIsFine(t *testing.T) {
	env := NewEnvironment(&EnvironmentOptions{Loader: MapLoader{
		"base.html": "base",
	}})
	_, err := env.FromString("{% extends 'base.html' %}")
	require.NoError(t, err)
}

func TestTemplateCollectsBlockNames(t *testing.T) {
	env := NewEnvironment(nil)
	tpl, err := env.FromString("{% block a %}{% endblock %}x{% block b %}{% endblock %}")
	require.NoError(t, err)
	assert.Contains(t, tpl.blocks, "a")
	assert.Contains(t, tpl.blocks, "b")
}

func TestTemplateNameDefaultsToStringLiteral(t *testing.T) {
	env := NewEnvironment(nil)
	tpl, err := env.FromString("hi")
	require.NoError(t, err)
	assert.Equal(t, "<string>", tpl.Name())
}
