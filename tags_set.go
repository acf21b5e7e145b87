package jinja2

// parseSet parses `{% set target = expr %}` or the assign-block form
// `{% set target [| filter] %}body{% endset %}`. Grounded on
// tagSetParser's name/"="/expression shape, extended with the
// block-assignment and single-filter forms nodes.go's Set node allows.
func parseSet(p *Parser, line int) (Node, error) {
	nameTok, err := p.expect(TokenName)
	if err != nil {
		return nil, err
	}
	target := &Name{pos: pos{nameTok.Line}, Ident: nameTok.Value}

	if _, ok := p.accept(TokenAssign); ok {
		val, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if err := p.expectTagEnd(); err != nil {
			return nil, err
		}
		return &Set{pos: pos{line}, Target: target, Value: val}, nil
	}

	var filter *Filter
	if _, ok := p.accept(TokenPipe); ok {
		fNameTok, err := p.expect(TokenName)
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
		filter = &Filter{pos: pos{fNameTok.Line}, Name: fNameTok.Value, Args: args, Kwargs: kwargs}
	}
	if err := p.expectTagEnd(); err != nil {
		return nil, err
	}

	body, err := p.parseUntil("endset")
	if err != nil {
		return nil, err
	}
	p.advance() // '{%'
	if err := p.expectKeyword("endset"); err != nil {
		return nil, err
	}
	if err := p.expectTagEnd(); err != nil {
		return nil, err
	}

	return &Set{pos: pos{line}, Target: target, Body: body, Filter: filter}, nil
}
