package jinja2

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lexKinds(t *testing.T, src string) []TokenKind {
	t.Helper()
	tokens, err := Lex("<test>", src, DefaultLexerConfig())
	require.NoError(t, err)
	kinds := make([]TokenKind, len(tokens))
	for i, tok := range tokens {
		kinds[i] = tok.Kind
	}
	return kinds
}

func TestLexPlainData(t *testing.T) {
	kinds := lexKinds(t, "hello world")
	assert.Equal(t, []TokenKind{TokenData, TokenEOF}, kinds)
}

func TestLexVariable(t *testing.T) {
	tokens, err := Lex("<test>", "{{ name }}", DefaultLexerConfig())
	require.NoError(t, err)
	require.Len(t, tokens, 4)
	assert.Equal(t, TokenVariableStart, tokens[0].Kind)
	assert.Equal(t, TokenName, tokens[1].Kind)
	assert.Equal(t, "name", tokens[1].Value)
	assert.Equal(t, TokenVariableEnd, tokens[2].Kind)
	assert.Equal(t, TokenEOF, tokens[3].Kind)
}

func TestLexBlock(t *testing.T) {
	kinds := lexKinds(t, "{% if x %}yes{% endif %}")
	assert.Equal(t, []TokenKind{
		TokenBlockStart, TokenName, TokenName, TokenBlockEnd,
		TokenData,
		TokenBlockStart, TokenName, TokenBlockEnd,
		TokenEOF,
	}, kinds)
}

func TestLexStringLiteralEscapes(t *testing.T) {
	tokens, err := Lex("<test>", `{{ "a\nb" }}`, DefaultLexerConfig())
	require.NoError(t, err)
	require.Len(t, tokens, 4)
	assert.Equal(t, TokenString, tokens[1].Kind)
	assert.Equal(t, "a\nb", tokens[1].Value)
}

func TestLexNumberLiterals(t *testing.T) {
	tokens, err := Lex("<test>", "{{ 42 }}{{ 3.14 }}", DefaultLexerConfig())
	require.NoError(t, err)
	var kinds []TokenKind
	var values []string
	for _, tok := range tokens {
		if tok.Kind == TokenInteger || tok.Kind == TokenFloat {
			kinds = append(kinds, tok.Kind)
			values = append(values, tok.Value)
		}
	}
	assert.Equal(t, []TokenKind{TokenInteger, TokenFloat}, kinds)
	assert.Equal(t, []string{"42", "3.14"}, values)
}

func TestLexComment(t *testing.T) {
	kinds := lexKinds(t, "before{# a comment #}after")
	assert.Equal(t, []TokenKind{TokenData, TokenData, TokenEOF}, kinds)
}

func TestLexRawBlockPassesThroughVerbatim(t *testing.T) {
	tokens, err := Lex("<test>", "{% raw %}{{ not_a_var }}{% endraw %}", DefaultLexerConfig())
	require.NoError(t, err)
	require.Len(t, tokens, 2)
	assert.Equal(t, TokenData, tokens[0].Kind)
	assert.Equal(t, "{{ not_a_var }}", tokens[0].Value)
}

func TestLexOperators(t *testing.T) {
	kinds := lexKinds(t, "{{ 1 + 2 - 3 * 4 / 5 // 6 % 7 ** 8 }}")
	var ops []TokenKind
	for _, k := range kinds {
		switch k {
		case TokenAdd, TokenSub, TokenMul, TokenDiv, TokenFloorDiv, TokenMod, TokenPow:
			ops = append(ops, k)
		}
	}
	assert.Equal(t, []TokenKind{
		TokenAdd, TokenSub, TokenMul, TokenDiv, TokenFloorDiv, TokenMod, TokenPow,
	}, ops)
}
