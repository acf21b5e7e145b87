package jinja2

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const eof rune = -1

// LexerConfig carries the subset of Environment configuration the lexer
// consumes. It is pulled out of Environment so the lexer doesn't need the
// whole Environment type. Lex builds a fresh lexer on every call; no
// lexer instance is memoized.
type LexerConfig struct {
	VariableStart string
	VariableEnd   string
	BlockStart    string
	BlockEnd      string
	CommentStart  string
	CommentEnd    string

	LineStatementPrefix string
	LineCommentPrefix   string

	TrimBlocks           bool
	LeftStripBlocks      bool
	KeepTrailingNewLine  bool
	Newline              string
}

// DefaultLexerConfig returns the canonical Jinja2 delimiter configuration.
func DefaultLexerConfig() LexerConfig {
	return LexerConfig{
		VariableStart: "{{",
		VariableEnd:   "}}",
		BlockStart:    "{%",
		BlockEnd:      "%}",
		CommentStart:  "{#",
		CommentEnd:    "#}",
		Newline:       "\n",
	}
}

// Equal reports whether two lexer configurations would tokenize
// identically: two Environments are equivalent exactly when their
// delimiter and trim configuration match.
func (c LexerConfig) Equal(o LexerConfig) bool {
	return c == o
}

type lexerMode int

const (
	modeData lexerMode = iota
	modeBlock
	modeVariable
	modeLineStatement
)

type stateFn func() stateFn

// lexer is a state-machine tokenizer, in the style of Rob Pike's
// "Lexical Scanning in Go": each stateFn consumes input and returns the
// next state, or nil to stop.
type lexer struct {
	name   string
	input  string
	cfg    LexerConfig
	tokens []Token

	start int
	pos   int
	width int

	line      int
	startLine int

	stripNextLeading bool // previous markup end was "-%}"/"-}}"
	suppressTrim     bool // previous markup start was "{%+" (disables trimBlocks once)

	err error
}

// Lex tokenizes src under the given configuration.
func Lex(name, src string, cfg LexerConfig) ([]Token, error) {
	l := &lexer{
		name:      name,
		input:     normalizeNewlines(src, cfg.Newline),
		cfg:       cfg,
		line:      1,
		startLine: 1,
		tokens:    make([]Token, 0, 64),
	}
	l.run()
	if l.err != nil {
		return nil, l.err
	}
	return l.tokens, nil
}

func normalizeNewlines(s, newline string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	if newline == "" || newline == "\n" {
		return s
	}
	return strings.ReplaceAll(s, "\n", newline)
}

func (l *lexer) errorf(format string, args ...any) stateFn {
	l.err = &TemplateSyntaxError{
		Path: l.name,
		Line: l.startLine,
		Msg:  fmt.Sprintf(format, args...),
	}
	return nil
}

func (l *lexer) value() string { return l.input[l.start:l.pos] }

func (l *lexer) next() rune {
	if l.pos >= len(l.input) {
		l.width = 0
		return eof
	}
	r, w := utf8.DecodeRuneInString(l.input[l.pos:])
	l.width = w
	l.pos += w
	if r == '\n' {
		l.line++
	}
	return r
}

func (l *lexer) backup() {
	l.pos -= l.width
	if l.width > 0 && l.input[l.pos] == '\n' {
		l.line--
	}
}

func (l *lexer) peek() rune {
	r := l.next()
	l.backup()
	return r
}

func (l *lexer) accept(valid string) bool {
	if strings.ContainsRune(valid, l.next()) {
		return true
	}
	l.backup()
	return false
}

func (l *lexer) acceptRun(valid string) {
	for strings.ContainsRune(valid, l.next()) {
	}
	l.backup()
}

func (l *lexer) emit(kind TokenKind) {
	l.tokens = append(l.tokens, Token{
		Line:  l.startLine,
		Start: l.start,
		End:   l.pos,
		Kind:  kind,
		Value: l.value(),
	})
	l.start = l.pos
	l.startLine = l.line
}

func (l *lexer) ignore() {
	l.start = l.pos
	l.startLine = l.line
}

func (l *lexer) hasPrefix(s string) bool {
	return strings.HasPrefix(l.input[l.pos:], s)
}

// atLineStart reports whether, walking back from pos, only tabs/spaces
// separate us from the start of input or the previous newline. Used for
// line-statement/line-comment column-0 detection.
func (l *lexer) atLineStart() bool {
	for i := l.pos - 1; i >= 0; i-- {
		switch l.input[i] {
		case ' ', '\t':
			continue
		case '\n':
			return true
		default:
			return false
		}
	}
	return true
}

func (l *lexer) run() {
	for state := l.stateData; state != nil; {
		state = state()
	}
}

// stateData scans literal template text until the next markup boundary.
func (l *lexer) stateData() stateFn {
	for {
		if l.cfg.LineStatementPrefix != "" && l.atLineStart() && l.hasPrefix(l.cfg.LineStatementPrefix) {
			return l.emitDataAndEnter(modeLineStatement, l.cfg.LineStatementPrefix, false)
		}
		if l.cfg.LineCommentPrefix != "" && l.atLineStart() && l.hasPrefix(l.cfg.LineCommentPrefix) {
			return l.stateLineComment
		}
		if l.hasPrefix(l.cfg.CommentStart) {
			return l.stateComment
		}
		if l.hasPrefix(l.cfg.BlockStart) {
			if l.peekTagName() == "raw" {
				return l.stateRaw
			}
			return l.emitDataAndEnter(modeBlock, l.cfg.BlockStart, true)
		}
		if l.hasPrefix(l.cfg.VariableStart) {
			return l.emitDataAndEnter(modeVariable, l.cfg.VariableStart, true)
		}

		if l.next() == eof {
			break
		}
	}
	l.emitFinalData()
	l.emit(TokenEOF)
	return nil
}

// peekTagName looks ahead past an (optional whitespace-trim) block-start
// sigil to see whether the following identifier is "raw", without
// consuming anything.
func (l *lexer) peekTagName() string {
	rest := l.input[l.pos+len(l.cfg.BlockStart):]
	rest = strings.TrimLeft(rest, "-+ \t\n")
	for i, r := range rest {
		if !(r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (i > 0 && r >= '0' && r <= '9')) {
			return rest[:i]
		}
	}
	return rest
}

// emitDataAndEnter flushes pending literal data (applying whitespace
// control and trimBlocks/leftStripBlocks) and switches into the named
// markup mode, emitting its start token.
func (l *lexer) emitDataAndEnter(mode lexerMode, startSigil string, allowLineStmt bool) stateFn {
	l.flushData()
	l.ignore()

	l.pos += len(startSigil)
	if !l.accept("-") {
		if l.accept("+") {
			l.suppressTrim = true
		}
	}
	l.emit(startKindFor(mode))

	switch mode {
	case modeBlock:
		return l.stateCode(TokenBlockEnd, l.cfg.BlockEnd)
	case modeVariable:
		return l.stateCode(TokenVariableEnd, l.cfg.VariableEnd)
	case modeLineStatement:
		return l.stateLineStatement
	}
	return l.stateData
}

func startKindFor(mode lexerMode) TokenKind {
	switch mode {
	case modeBlock:
		return TokenBlockStart
	case modeVariable:
		return TokenVariableStart
	case modeLineStatement:
		return TokenLineStatementStart
	}
	return TokenData
}

// flushData emits the accumulated literal text as a data token, applying:
//   - right-trim if the upcoming markup start is immediately followed by "-"
//   - leftStripBlocks (drop leading tabs/spaces on the tag's line)
//   - the pending stripNextLeading flag left by a previous "-%}"/"-}}"
//   - trimBlocks (drop one leading newline), unless suppressed by "{%+"
func (l *lexer) flushData() {
	if l.pos <= l.start {
		l.applyLeadingStrip()
		return
	}
	text := l.value()

	// Look ahead: does the upcoming sigil request a right-trim?
	rest := l.input[l.pos:]
	sigilLen := 0
	for _, s := range []string{l.cfg.BlockStart, l.cfg.VariableStart, l.cfg.CommentStart} {
		if s != "" && strings.HasPrefix(rest, s) {
			sigilLen = len(s)
			break
		}
	}
	if sigilLen > 0 && strings.HasPrefix(rest[sigilLen:], "-") {
		text = strings.TrimRight(text, " \t\n")
	} else if l.cfg.LeftStripBlocks && sigilLen > 0 && strings.HasPrefix(rest, l.cfg.BlockStart) {
		text = stripTrailingLineIndent(text)
	}

	text = l.applyLeadingStripToText(text)

	if text != "" {
		l.tokens = append(l.tokens, Token{Line: l.startLine, Start: l.start, End: l.pos, Kind: TokenData, Value: text})
	}
}

// applyLeadingStrip handles the zero-length-data case (two tags back to
// back) where a pending leading-strip flag still needs clearing.
func (l *lexer) applyLeadingStrip() {
	l.stripNextLeading = false
}

func (l *lexer) applyLeadingStripToText(text string) string {
	if l.stripNextLeading {
		text = strings.TrimLeft(text, " \t\n")
		l.stripNextLeading = false
	} else if l.cfg.TrimBlocks && !l.suppressTrim {
		text = stripOneLeadingNewline(text)
	}
	l.suppressTrim = false
	return text
}

func stripOneLeadingNewline(s string) string {
	if strings.HasPrefix(s, "\n") {
		return s[1:]
	}
	return s
}

func stripTrailingLineIndent(s string) string {
	idx := strings.LastIndex(s, "\n")
	line := s[idx+1:]
	trimmed := strings.TrimLeft(line, " \t")
	return s[:idx+1] + trimmed
}

// emitFinalData flushes any remaining literal text at EOF, applying the
// keepTrailingNewLine policy.
func (l *lexer) emitFinalData() {
	if l.pos <= l.start {
		return
	}
	text := l.value()
	text = l.applyLeadingStripToText(text)
	if !l.cfg.KeepTrailingNewLine {
		text = strings.TrimSuffix(text, "\n")
	}
	if text != "" {
		l.tokens = append(l.tokens, Token{Line: l.startLine, Start: l.start, End: l.pos, Kind: TokenData, Value: text})
	}
	l.start = l.pos
}

// stateComment swallows a {# ... #} comment without emitting tokens.
func (l *lexer) stateComment() stateFn {
	l.flushData()
	l.ignore()
	l.pos += len(l.cfg.CommentStart)
	l.accept("-")
	for {
		if strings.HasPrefix(l.input[l.pos:], "-"+l.cfg.CommentEnd) {
			l.pos++ // consume trailing '-'
			l.stripNextLeading = true
			break
		}
		if l.hasPrefix(l.cfg.CommentEnd) {
			break
		}
		if l.next() == eof {
			return l.errorf("Missing end of comment tag")
		}
	}
	l.pos += len(l.cfg.CommentEnd)
	l.ignore()
	return l.stateData
}

// stateLineComment swallows a line-comment-prefixed line up to (not
// including) the newline.
func (l *lexer) stateLineComment() stateFn {
	l.flushData()
	l.ignore()
	l.pos += len(l.cfg.LineCommentPrefix)
	for {
		r := l.peek()
		if r == '\n' || r == eof {
			break
		}
		l.next()
	}
	l.ignore()
	return l.stateData
}

// stateLineStatement lexes expression tokens until end of line.
func (l *lexer) stateLineStatement() stateFn {
	for {
		if l.accept(" \t") {
			l.ignore()
			continue
		}
		if r := l.peek(); r == '\n' || r == eof {
			l.emit(TokenLineStatementEnd)
			return l.stateData
		}
		if s := l.lexOneExprToken(); s != nil {
			return s
		}
	}
}

// stateRaw handles {% raw %} ... {% endraw %}: everything in between is a
// single literal data token, never tokenized as markup.
func (l *lexer) stateRaw() stateFn {
	l.flushData()
	// consume the opening "{% raw %}" (with optional trim sigils) as a tag,
	// but do not emit tokens for it -- raw is purely a lexical directive.
	if !l.consumeRawTag("raw") {
		return l.errorf("malformed 'raw' tag")
	}
	l.ignore()
	for {
		if l.hasPrefix(l.cfg.BlockStart) && l.peekTagName() == "endraw" {
			break
		}
		if l.next() == eof {
			return l.errorf("'raw' block not closed, got EOF")
		}
	}
	if l.pos > l.start {
		l.tokens = append(l.tokens, Token{Line: l.startLine, Start: l.start, End: l.pos, Kind: TokenData, Value: l.value()})
	}
	l.ignore()
	if !l.consumeRawTag("endraw") {
		return l.errorf("malformed 'endraw' tag")
	}
	l.ignore()
	return l.stateData
}

// consumeRawTag consumes a bare "{% <name> %}" tag (optionally with "-"
// trim sigils), returning false if it doesn't match.
func (l *lexer) consumeRawTag(name string) bool {
	if !l.hasPrefix(l.cfg.BlockStart) {
		return false
	}
	l.pos += len(l.cfg.BlockStart)
	l.accept("-")
	l.accept("+")
	for l.accept(" \t\n") {
	}
	if !l.hasPrefix(name) {
		return false
	}
	l.pos += len(name)
	for l.accept(" \t\n") {
	}
	trimEnd := false
	if strings.HasPrefix(l.input[l.pos:], "-"+l.cfg.BlockEnd) {
		l.pos++
		trimEnd = true
	}
	if !l.hasPrefix(l.cfg.BlockEnd) {
		return false
	}
	l.pos += len(l.cfg.BlockEnd)
	if trimEnd {
		l.stripNextLeading = true
	} else if l.cfg.TrimBlocks {
		l.suppressTrim = false
	}
	return true
}

// stateCode lexes expression tokens inside {{ }} / {% %} until the
// matching end sigil (optionally preceded by "-") is found.
func (l *lexer) stateCode(endKind TokenKind, endSigil string) stateFn {
	return func() stateFn {
		for {
			if l.accept(" \t\n") {
				l.ignore()
				continue
			}
			if strings.HasPrefix(l.input[l.pos:], "-"+endSigil) {
				l.pos++ // consume '-'
				l.ignore()
				l.pos += len(endSigil)
				l.emit(endKind)
				l.stripNextLeading = true
				return l.stateData
			}
			if strings.HasPrefix(l.input[l.pos:], "+"+endSigil) {
				l.pos++
				l.ignore()
				l.pos += len(endSigil)
				l.emit(endKind)
				return l.stateData
			}
			if strings.HasPrefix(l.input[l.pos:], endSigil) {
				l.pos += len(endSigil)
				l.emit(endKind)
				return l.stateData
			}
			if l.peek() == eof {
				return l.errorf("unexpected end of template, expected %q", endSigil)
			}
			if s := l.lexOneExprToken(); s != nil {
				return s
			}
		}
	}
}

// lexOneExprToken lexes exactly one identifier/number/string/operator
// token from the current position. Returns a non-nil stateFn only on
// error (to unwind the caller's loop); nil means "keep going".
func (l *lexer) lexOneExprToken() stateFn {
	switch {
	case l.accept(identStartChars):
		l.acceptRun(identChars)
		l.emit(TokenName)
		return nil
	case l.accept(digits):
		return l.lexNumber()
	case l.accept(`"'`):
		return l.lexString()
	}
	for _, sym := range symbolTable {
		if strings.HasPrefix(l.input[l.pos:], sym.text) {
			l.pos += len(sym.text)
			l.emit(sym.kind)
			return nil
		}
	}
	r := l.next()
	return l.errorf("unexpected character %q", r)
}

const identStartChars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ_"
const identChars = identStartChars + "0123456789"
const digits = "0123456789"

func (l *lexer) lexNumber() stateFn {
	l.acceptRun(digits)
	isFloat := false
	if l.peek() == '.' {
		save := l.pos
		l.next()
		if strings.ContainsRune(digits, l.peek()) {
			isFloat = true
			l.acceptRun(digits)
		} else {
			l.pos = save
		}
	}
	if isFloat {
		if l.accept("eE") {
			l.accept("+-")
			l.acceptRun(digits)
		}
		l.emit(TokenFloat)
	} else {
		l.emit(TokenInteger)
	}
	return nil
}

var stringEscapes = map[rune]rune{
	'\\': '\\', '"': '"', '\'': '\'', 'n': '\n', 't': '\t', 'r': '\r',
}

func (l *lexer) lexString() stateFn {
	quote := l.value()
	l.ignore()
	var sb strings.Builder
	for {
		r := l.next()
		switch r {
		case eof:
			return l.errorf("unterminated string literal")
		case '\n':
			return l.errorf("newline in string literal")
		case '\\':
			esc := l.next()
			replacement, ok := stringEscapes[esc]
			if !ok {
				return l.errorf("unknown escape sequence: \\%c", esc)
			}
			sb.WriteRune(replacement)
		default:
			if string(r) == quote {
				l.tokens = append(l.tokens, Token{Line: l.startLine, Start: l.start, End: l.pos - len(quote), Kind: TokenString, Value: sb.String()})
				l.start = l.pos
				return nil
			}
			sb.WriteRune(r)
		}
	}
}

type symbolEntry struct {
	text string
	kind TokenKind
}

// symbolTable is ordered longest-match-first so "==" is matched before "=".
var symbolTable = []symbolEntry{
	{"**", TokenPow},
	{"//", TokenFloorDiv},
	{"==", TokenEq},
	{"!=", TokenNe},
	{"<=", TokenLtEq},
	{">=", TokenGtEq},
	{"+", TokenAdd},
	{"-", TokenSub},
	{"*", TokenMul},
	{"/", TokenDiv},
	{"%", TokenMod},
	{"~", TokenTilde},
	{"<", TokenLt},
	{">", TokenGt},
	{"=", TokenAssign},
	{"(", TokenLParen},
	{")", TokenRParen},
	{"[", TokenLBracket},
	{"]", TokenRBracket},
	{"{", TokenLBrace},
	{"}", TokenRBrace},
	{".", TokenDot},
	{":", TokenColon},
	{"|", TokenPipe},
	{",", TokenComma},
	{";", TokenSemicolon},
}
