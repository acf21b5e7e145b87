package jinja2

// parseImport parses `{% import tpl as name [with[out] context] %}`.
// Grounded on tagImportParser's filename/macro-name scan, adapted from the
// "import specific exported macros by name" form to Jinja's "bind the
// whole module as a namespace" form (see renderer_inherit.go's
// moduleNamespace); parseFrom below covers the per-name style.
func parseImport(p *Parser, line int) (Node, error) {
	tmpl, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword("as"); err != nil {
		return nil, err
	}
	targetTok, err := p.expect(TokenName)
	if err != nil {
		return nil, err
	}

	withContext := false
	switch {
	case p.acceptKeyword("with"):
		if err := p.expectKeyword("context"); err != nil {
			return nil, err
		}
		withContext = true
	case p.acceptKeyword("without"):
		if err := p.expectKeyword("context"); err != nil {
			return nil, err
		}
		withContext = false
	}

	if err := p.expectTagEnd(); err != nil {
		return nil, err
	}
	return &Import{pos: pos{line}, Template: tmpl, Target: targetTok.Value, WithContext: withContext}, nil
}

// parseFrom parses `{% from tpl import a, b as c [with[out] context] %}`,
// closer to tagImportParser's name-list shape than parseImport is, but
// binding each name directly rather than through a macro registry.
func parseFrom(p *Parser, line int) (Node, error) {
	tmpl, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword("import"); err != nil {
		return nil, err
	}

	var names []ImportName
	for {
		nameTok, err := p.expect(TokenName)
		if err != nil {
			return nil, err
		}
		alias := nameTok.Value
		if p.acceptKeyword("as") {
			aliasTok, err := p.expect(TokenName)
			if err != nil {
				return nil, err
			}
			alias = aliasTok.Value
		}
		names = append(names, ImportName{Name: nameTok.Value, Alias: alias})
		if _, ok := p.accept(TokenComma); ok {
			continue
		}
		break
	}

	withContext := false
	switch {
	case p.acceptKeyword("with"):
		if err := p.expectKeyword("context"); err != nil {
			return nil, err
		}
		withContext = true
	case p.acceptKeyword("without"):
		if err := p.expectKeyword("context"); err != nil {
			return nil, err
		}
		withContext = false
	}

	if err := p.expectTagEnd(); err != nil {
		return nil, err
	}
	return &FromImport{pos: pos{line}, Template: tmpl, Names: names, WithContext: withContext}, nil
}
