package jinja2

// parseIf parses `{% if cond %}...{% elif cond %}...{% else %}...{% endif %}`.
// Grounded on tagIfParser's condition/wrapper accumulation, adapted to
// the new If/IfBranch node shape (a trailing nil-Cond branch for "else"
// instead of a separate wrapper list).
func parseIf(p *Parser, line int) (Node, error) {
	var branches []IfBranch

	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.expectTagEnd(); err != nil {
		return nil, err
	}
	body, err := p.parseUntil("elif", "else", "endif")
	if err != nil {
		return nil, err
	}
	branches = append(branches, IfBranch{Cond: cond, Body: body})

	for {
		p.advance() // consume '{%' of the upcoming elif/else/endif
		switch {
		case p.acceptKeyword("elif"):
			cond, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			if err := p.expectTagEnd(); err != nil {
				return nil, err
			}
			body, err := p.parseUntil("elif", "else", "endif")
			if err != nil {
				return nil, err
			}
			branches = append(branches, IfBranch{Cond: cond, Body: body})
			continue

		case p.acceptKeyword("else"):
			if err := p.expectTagEnd(); err != nil {
				return nil, err
			}
			body, err := p.parseUntil("endif")
			if err != nil {
				return nil, err
			}
			branches = append(branches, IfBranch{Cond: nil, Body: body})
			p.advance() // '{%' before endif
			if err := p.expectKeyword("endif"); err != nil {
				return nil, err
			}
			if err := p.expectTagEnd(); err != nil {
				return nil, err
			}
			return &If{pos: pos{line}, Branches: branches}, nil

		default:
			if err := p.expectKeyword("endif"); err != nil {
				return nil, err
			}
			if err := p.expectTagEnd(); err != nil {
				return nil, err
			}
			return &If{pos: pos{line}, Branches: branches}, nil
		}
	}
}
