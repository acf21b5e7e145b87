package jinja2

import "fmt"

// TokenKind classifies a Token. The set is closed: structural markers,
// markup boundaries, identifiers/literals, and operators.
type TokenKind int

const (
	TokenInitial TokenKind = iota
	TokenEOF
	TokenData

	TokenBlockStart
	TokenBlockEnd
	TokenVariableStart
	TokenVariableEnd
	TokenCommentStart
	TokenCommentEnd
	TokenLineStatementStart
	TokenLineStatementEnd
	TokenLineComment

	TokenName
	TokenInteger
	TokenFloat
	TokenString

	TokenAdd
	TokenSub
	TokenMul
	TokenDiv
	TokenFloorDiv
	TokenMod
	TokenPow
	TokenTilde
	TokenEq
	TokenNe
	TokenLt
	TokenLtEq
	TokenGt
	TokenGtEq
	TokenAssign
	TokenLParen
	TokenRParen
	TokenLBracket
	TokenRBracket
	TokenLBrace
	TokenRBrace
	TokenDot
	TokenColon
	TokenPipe
	TokenComma
	TokenSemicolon
)

func (k TokenKind) String() string {
	switch k {
	case TokenInitial:
		return "initial"
	case TokenEOF:
		return "eof"
	case TokenData:
		return "data"
	case TokenBlockStart:
		return "block_start"
	case TokenBlockEnd:
		return "block_end"
	case TokenVariableStart:
		return "variable_start"
	case TokenVariableEnd:
		return "variable_end"
	case TokenCommentStart:
		return "comment_start"
	case TokenCommentEnd:
		return "comment_end"
	case TokenLineStatementStart:
		return "linestatement_start"
	case TokenLineStatementEnd:
		return "linestatement_end"
	case TokenLineComment:
		return "linecomment"
	case TokenName:
		return "name"
	case TokenInteger:
		return "integer"
	case TokenFloat:
		return "float"
	case TokenString:
		return "string"
	case TokenAdd:
		return "add"
	case TokenSub:
		return "sub"
	case TokenMul:
		return "mul"
	case TokenDiv:
		return "div"
	case TokenFloorDiv:
		return "floordiv"
	case TokenMod:
		return "mod"
	case TokenPow:
		return "pow"
	case TokenTilde:
		return "tilde"
	case TokenEq:
		return "eq"
	case TokenNe:
		return "ne"
	case TokenLt:
		return "lt"
	case TokenLtEq:
		return "lteq"
	case TokenGt:
		return "gt"
	case TokenGtEq:
		return "gteq"
	case TokenAssign:
		return "assign"
	case TokenLParen:
		return "lparen"
	case TokenRParen:
		return "rparen"
	case TokenLBracket:
		return "lbracket"
	case TokenRBracket:
		return "rbracket"
	case TokenLBrace:
		return "lbrace"
	case TokenRBrace:
		return "rbrace"
	case TokenDot:
		return "dot"
	case TokenColon:
		return "colon"
	case TokenPipe:
		return "pipe"
	case TokenComma:
		return "comma"
	case TokenSemicolon:
		return "semicolon"
	default:
		return "unknown"
	}
}

// Token is an immutable lexical element. Start/End are byte offsets into
// the source; Line is 1-based. For operator/structural kinds Value mirrors
// the canonical lexeme; for name/number/string kinds it carries the parsed
// text.
type Token struct {
	Line  int
	Start int
	End   int
	Kind  TokenKind
	Value string
}

func (t Token) String() string {
	return fmt.Sprintf("<Token %s %q line=%d>", t.Kind, t.Value, t.Line)
}

// keywords lists reserved words recognized by the parser inside markup.
// They lex as TokenName (the parser distinguishes them by Value) so that
// e.g. "in" can still be used as the second half of "not in".
var keywords = map[string]struct{}{
	"and": {}, "or": {}, "not": {}, "in": {}, "is": {},
	"if": {}, "else": {}, "elif": {}, "endif": {},
	"for": {}, "endfor": {}, "recursive": {},
	"block": {}, "endblock": {}, "extends": {},
	"include": {}, "import": {}, "from": {}, "as": {}, "with": {}, "without": {}, "context": {},
	"ignore": {}, "missing": {},
	"macro": {}, "endmacro": {}, "call": {}, "endcall": {},
	"set": {}, "endset": {},
	"filter": {}, "endfilter": {},
	"autoescape": {}, "endautoescape": {},
	"raw": {}, "endraw": {},
	"do": {},
	"true": {}, "True": {}, "false": {}, "False": {}, "none": {}, "None": {},
	"scoped": {}, "required": {},
}

func isKeyword(s string) bool {
	_, ok := keywords[s]
	return ok
}
