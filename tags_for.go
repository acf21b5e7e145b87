package jinja2

// parseForTarget parses a for-loop's target(s): a bare name, or a
// comma-separated list for tuple/map-pair unpacking (`for key, value in
// map`). Unlike a general expression tuple this never requires parens, so
// it can't reuse parseExpression directly. "loop" is rejected as a target
// name since it would shadow the loop object the body sees.
func parseForTarget(p *Parser) (Node, error) {
	first, err := p.expect(TokenName)
	if err != nil {
		return nil, err
	}
	if err := requireNotLoop(p, first); err != nil {
		return nil, err
	}
	if !p.is(TokenComma) {
		return &Name{pos: pos{first.Line}, Ident: first.Value}, nil
	}
	items := []Node{&Name{pos: pos{first.Line}, Ident: first.Value}}
	for p.is(TokenComma) {
		p.advance()
		t, err := p.expect(TokenName)
		if err != nil {
			return nil, err
		}
		if err := requireNotLoop(p, t); err != nil {
			return nil, err
		}
		items = append(items, &Name{pos: pos{t.Line}, Ident: t.Value})
	}
	return &Tuple{pos: pos{first.Line}, Items: items}, nil
}

// requireNotLoop rejects "loop" as a for-target name: binding it would
// shadow the loop object the body relies on for index/first/last/... .
func requireNotLoop(p *Parser, tok Token) error {
	if tok.Value != "loop" {
		return nil
	}
	return &TemplateAssertionError{
		Path: p.name,
		Line: tok.Line,
		Msg:  "Can't assign to special loop variable 'loop'.",
	}
}

// parseFor parses `{% for target(s) in iter [if cond] [recursive] %}
// body {% else %} elseBody {% endfor %}`. Grounded on tagForParser's
// key/value/reversed/sorted argument scan, adapted to Jinja's "if"/
// "recursive" modifiers and "else" (rather than Django's "empty") clause.
func parseFor(p *Parser, line int) (Node, error) {
	target, err := parseForTarget(p)
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword("in"); err != nil {
		return nil, err
	}
	// parseOr, not parseExpression: a conditional expression would swallow
	// the loop's own "if" filter clause.
	iter, err := p.parseOr()
	if err != nil {
		return nil, err
	}

	var filter Node
	if p.acceptKeyword("if") {
		filter, err = p.parseExpression()
		if err != nil {
			return nil, err
		}
	}
	recursive := p.acceptKeyword("recursive")

	if err := p.expectTagEnd(); err != nil {
		return nil, err
	}

	body, err := p.parseUntil("endfor", "else")
	if err != nil {
		return nil, err
	}

	var elseBody *StatementList
	p.advance() // '{%' of the upcoming else/endfor
	if p.acceptKeyword("else") {
		if err := p.expectTagEnd(); err != nil {
			return nil, err
		}
		elseBody, err = p.parseUntil("endfor")
		if err != nil {
			return nil, err
		}
		p.advance() // '{%' before endfor
	}
	if err := p.expectKeyword("endfor"); err != nil {
		return nil, err
	}
	if err := p.expectTagEnd(); err != nil {
		return nil, err
	}

	return &For{pos: pos{line}, Target: target, Iter: iter, Filter: filter, Recursive: recursive, Body: body, ElseBody: elseBody}, nil
}
