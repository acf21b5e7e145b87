package jinja2

import "strconv"

// parseExpression is the entry point for any "{{ expr }}" / tag-argument
// expression. Precedence, loosest to tightest:
//
//	conditional   a if cond else b
//	or
//	and
//	not
//	compare       chained ==, !=, <, <=, >, >=, in, not in, is, is not
//	concat        ~
//	additive      + -
//	multiplicative * / // %
//	unary         - + (prefix)
//	power         ** (right-assoc)
//	postfix       . [] ()
//	primary       literals, names, ( ), [ ], { }
func (p *Parser) parseExpression() (Node, error) {
	return p.parseCondition()
}

func (p *Parser) parseCondition() (Node, error) {
	line := p.current().Line
	then, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if !p.isKeyword("if") {
		return then, nil
	}
	p.advance()
	cond, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	var elseNode Node
	if p.isKeyword("else") {
		p.advance()
		elseNode, err = p.parseCondition()
		if err != nil {
			return nil, err
		}
	}
	return &Condition{pos: pos{line}, Cond: cond, Then: then, Else: elseNode}, nil
}

func (p *Parser) parseOr() (Node, error) {
	line := p.current().Line
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.isKeyword("or") {
		p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &Binary{pos: pos{line}, Op: orOp, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseAnd() (Node, error) {
	line := p.current().Line
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.isKeyword("and") {
		p.advance()
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = &Binary{pos: pos{line}, Op: andOp, Left: left, Right: right}
	}
	return left, nil
}

// orOp/andOp are pseudo-TokenKinds used only inside Binary nodes for
// logical operators, distinct from the lexer's operator kinds since "and"
// /"or" lex as TokenName (they're keywords, not symbols).
const (
	orOp TokenKind = -(iota + 1)
	andOp
	notOp
)

func (p *Parser) parseNot() (Node, error) {
	if p.isKeyword("not") {
		line := p.advance().Line
		operand, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return &Unary{pos: pos{line}, Op: notOp, Node: operand}, nil
	}
	return p.parseCompare()
}

func (p *Parser) parseCompare() (Node, error) {
	line := p.current().Line
	left, err := p.parseConcat()
	if err != nil {
		return nil, err
	}
	var ops []CompareOp
	for {
		op, negated, matched := p.matchCompareOp()
		if !matched {
			break
		}
		if op == isTestOp {
			// "is" takes a test name (plus optional call args), not an expression
			name, args, kwargs, err := p.parseTestSpec()
			if err != nil {
				return nil, err
			}
			left = &Test{pos: pos{line}, Node: left, Name: name, Args: args, Kwargs: kwargs, Negated: negated}
			continue
		}
		right, err := p.parseConcat()
		if err != nil {
			return nil, err
		}
		ops = append(ops, CompareOp{Op: op, Right: right})
	}
	if len(ops) == 0 {
		return left, nil
	}
	return &Compare{pos: pos{line}, Left: left, Ops: ops}, nil
}

const isTestOp TokenKind = -100

// matchCompareOp consumes one comparison operator (==, !=, <, <=, >, >=,
// in, not in, is, is not) if present. For "is"/"is not" it returns
// isTestOp and leaves the test-name parsing to the caller, since "is"
// binds a name/call, not a general expression.
func (p *Parser) matchCompareOp() (op TokenKind, negated bool, ok bool) {
	switch {
	case p.is(TokenEq), p.is(TokenNe), p.is(TokenLt), p.is(TokenLtEq), p.is(TokenGt), p.is(TokenGtEq):
		t := p.advance()
		return t.Kind, false, true
	case p.isKeyword("in"):
		p.advance()
		return inOp, false, true
	case p.isKeyword("not") && p.peekN(1).Value == "in" && p.peekN(1).Kind == TokenName:
		p.advance()
		p.advance()
		return inOp, true, true
	case p.isKeyword("is"):
		p.advance()
		neg := false
		if p.isKeyword("not") {
			p.advance()
			neg = true
		}
		return isTestOp, neg, true
	}
	return 0, false, false
}

const inOp TokenKind = -101

// parseTestSpec parses the test name and optional call-style arguments
// following "is"/"is not": `is even`, `is divisibleby(3)`. Only
// parenthesised arguments are parsed; a bare argument such as
// `is sameas none` is left unconsumed and fails as a syntax error.
func (p *Parser) parseTestSpec() (string, []Node, []Kwarg, error) {
	nameTok, err := p.expect(TokenName)
	if err != nil {
		return "", nil, nil, err
	}
	if !p.is(TokenLParen) {
		return nameTok.Value, nil, nil, nil
	}
	args, kwargs, err := p.parseCallArgs()
	if err != nil {
		return "", nil, nil, err
	}
	return nameTok.Value, args, kwargs, nil
}

func (p *Parser) parseConcat() (Node, error) {
	line := p.current().Line
	first, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	if !p.is(TokenTilde) {
		return first, nil
	}
	parts := []Node{first}
	for p.is(TokenTilde) {
		p.advance()
		next, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		parts = append(parts, next)
	}
	return &Concat{pos: pos{line}, Parts: parts}, nil
}

func (p *Parser) parseAdditive() (Node, error) {
	line := p.current().Line
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.is(TokenAdd) || p.is(TokenSub) {
		op := p.advance().Kind
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &Binary{pos: pos{line}, Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseMultiplicative() (Node, error) {
	line := p.current().Line
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.is(TokenMul) || p.is(TokenDiv) || p.is(TokenFloorDiv) || p.is(TokenMod) {
		op := p.advance().Kind
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &Binary{pos: pos{line}, Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseUnary() (Node, error) {
	if p.is(TokenSub) || p.is(TokenAdd) {
		line := p.current().Line
		op := p.advance().Kind
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &Unary{pos: pos{line}, Op: op, Node: operand}, nil
	}
	return p.parsePower()
}

func (p *Parser) parsePower() (Node, error) {
	line := p.current().Line
	left, err := p.parseFilter()
	if err != nil {
		return nil, err
	}
	if p.is(TokenPow) {
		p.advance()
		right, err := p.parseUnary() // right-assoc, also allows -x in exponent
		if err != nil {
			return nil, err
		}
		return &Binary{pos: pos{line}, Op: TokenPow, Left: left, Right: right}, nil
	}
	return left, nil
}

// parseFilter handles the `expr|name(args)|name2` pipe chain, which in
// Jinja binds tighter than comparisons but looser than postfix access.
func (p *Parser) parseFilter() (Node, error) {
	line := p.current().Line
	node, err := p.parsePostfix()
	if err != nil {
		return nil, err
	}
	for p.is(TokenPipe) {
		p.advance()
		nameTok, err := p.expect(TokenName)
		if err != nil {
			return nil, err
		}
		var args []Node
		var kwargs []Kwarg
		if p.is(TokenLParen) {
			args, kwargs, err = p.parseCallArgs()
			if err != nil {
				return nil, err
			}
		}
		node = &Filter{pos: pos{line}, Node: node, Name: nameTok.Value, Args: args, Kwargs: kwargs}
	}
	return node, nil
}

// parsePostfix handles `.attr`, `[expr]`/`[a:b:c]` and `(args)` chained
// onto a primary expression.
func (p *Parser) parsePostfix() (Node, error) {
	line := p.current().Line
	node, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.is(TokenDot):
			p.advance()
			attrTok, err := p.expect(TokenName)
			if err != nil {
				return nil, err
			}
			node = &Getattr{pos: pos{line}, Node: node, Attr: attrTok.Value}
		case p.is(TokenLBracket):
			p.advance()
			node, err = p.parseSubscript(node, line)
			if err != nil {
				return nil, err
			}
		case p.is(TokenLParen):
			args, kwargs, err := p.parseCallArgs()
			if err != nil {
				return nil, err
			}
			node = &Call{pos: pos{line}, Func: node, Args: args, Kwargs: kwargs}
		default:
			return node, nil
		}
	}
}

// parseSubscript parses the inside of "[...]" after the opening bracket
// has been consumed: either a single index/key expression or a
// start:stop:step slice.
func (p *Parser) parseSubscript(target Node, line int) (Node, error) {
	var start, stop, step Node
	var err error
	isSlice := false

	if !p.is(TokenColon) {
		start, err = p.parseExpression()
		if err != nil {
			return nil, err
		}
	}
	if p.is(TokenColon) {
		isSlice = true
		p.advance()
		if !p.is(TokenColon) && !p.is(TokenRBracket) {
			stop, err = p.parseExpression()
			if err != nil {
				return nil, err
			}
		}
		if p.is(TokenColon) {
			p.advance()
			if !p.is(TokenRBracket) {
				step, err = p.parseExpression()
				if err != nil {
					return nil, err
				}
			}
		}
	}
	if _, err := p.expect(TokenRBracket); err != nil {
		return nil, err
	}
	if isSlice {
		return &Slice{pos: pos{line}, Node: target, Start: start, Stop: stop, Step: step}, nil
	}
	return &Getitem{pos: pos{line}, Node: target, Arg: start}, nil
}

// parseCallArgs parses "(" arg, arg, name=arg, ... ")" with the opening
// paren already current (not yet consumed).
func (p *Parser) parseCallArgs() ([]Node, []Kwarg, error) {
	if _, err := p.expect(TokenLParen); err != nil {
		return nil, nil, err
	}
	var args []Node
	var kwargs []Kwarg
	for !p.is(TokenRParen) {
		if p.is(TokenName) && p.peekN(1).Kind == TokenAssign {
			name := p.advance().Value
			p.advance() // '='
			val, err := p.parseExpression()
			if err != nil {
				return nil, nil, err
			}
			kwargs = append(kwargs, Kwarg{Name: name, Value: val})
		} else {
			val, err := p.parseExpression()
			if err != nil {
				return nil, nil, err
			}
			args = append(args, val)
		}
		if p.is(TokenComma) {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(TokenRParen); err != nil {
		return nil, nil, err
	}
	return args, kwargs, nil
}

// parsePrimary parses literals, names, parenthesized/tuple expressions,
// list literals and dict literals.
func (p *Parser) parsePrimary() (Node, error) {
	line := p.current().Line
	switch {
	case p.is(TokenInteger):
		t := p.advance()
		n, err := strconv.ParseInt(t.Value, 10, 64)
		if err != nil {
			return nil, p.errorf("invalid integer literal %q", t.Value)
		}
		return &Const{pos: pos{line}, Value: n}, nil

	case p.is(TokenFloat):
		t := p.advance()
		f, err := strconv.ParseFloat(t.Value, 64)
		if err != nil {
			return nil, p.errorf("invalid float literal %q", t.Value)
		}
		return &Const{pos: pos{line}, Value: f}, nil

	case p.is(TokenString):
		t := p.advance()
		return &Const{pos: pos{line}, Value: t.Value}, nil

	case p.isKeyword("true") || p.isKeyword("True"):
		p.advance()
		return &Const{pos: pos{line}, Value: true}, nil

	case p.isKeyword("false") || p.isKeyword("False"):
		p.advance()
		return &Const{pos: pos{line}, Value: false}, nil

	case p.isKeyword("none") || p.isKeyword("None"):
		p.advance()
		return &Const{pos: pos{line}, Value: nil}, nil

	case p.is(TokenName):
		t := p.advance()
		return &Name{pos: pos{line}, Ident: t.Value}, nil

	case p.is(TokenLParen):
		p.advance()
		return p.parseTupleOrParen(line)

	case p.is(TokenLBracket):
		p.advance()
		return p.parseListLiteral(line)

	case p.is(TokenLBrace):
		p.advance()
		return p.parseDictLiteral(line)
	}
	return nil, p.errorf("unexpected token %s %q in expression", p.current().Kind, p.current().Value)
}

// parseTupleOrParen handles "(" already consumed: a single parenthesized
// expression, or a tuple if a comma follows.
func (p *Parser) parseTupleOrParen(line int) (Node, error) {
	if p.is(TokenRParen) {
		p.advance()
		return &Tuple{pos: pos{line}}, nil
	}
	first, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if !p.is(TokenComma) {
		_, err := p.expect(TokenRParen)
		return first, err
	}
	items := []Node{first}
	for p.is(TokenComma) {
		p.advance()
		if p.is(TokenRParen) {
			break
		}
		next, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		items = append(items, next)
	}
	if _, err := p.expect(TokenRParen); err != nil {
		return nil, err
	}
	return &Tuple{pos: pos{line}, Items: items}, nil
}

func (p *Parser) parseListLiteral(line int) (Node, error) {
	var items []Node
	for !p.is(TokenRBracket) {
		item, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
		if p.is(TokenComma) {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(TokenRBracket); err != nil {
		return nil, err
	}
	return &ListLiteral{pos: pos{line}, Items: items}, nil
}

func (p *Parser) parseDictLiteral(line int) (Node, error) {
	var pairs []DictPair
	for !p.is(TokenRBrace) {
		key, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokenColon); err != nil {
			return nil, err
		}
		val, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, DictPair{Key: key, Value: val})
		if p.is(TokenComma) {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(TokenRBrace); err != nil {
		return nil, err
	}
	return &DictLiteral{pos: pos{line}, Pairs: pairs}, nil
}
