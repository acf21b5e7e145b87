package jinja2

// parseFilterBlock parses `{% filter name(args)|name2 %}body{% endfilter %}`.
// Grounded on tagFilterParser's pipe-separated filter chain scan, adapted
// from Django's ":"-param/"|"-chain syntax to Jinja's call-style filter
// arguments (shared with the expression-level pipe operator).
func parseFilterBlock(p *Parser, line int) (Node, error) {
	var filters []Filter
	for {
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
		filters = append(filters, Filter{pos: pos{nameTok.Line}, Name: nameTok.Value, Args: args, Kwargs: kwargs})
		if _, ok := p.accept(TokenPipe); ok {
			continue
		}
		break
	}
	if err := p.expectTagEnd(); err != nil {
		return nil, err
	}
	body, err := p.parseUntil("endfilter")
	if err != nil {
		return nil, err
	}
	p.advance() // '{%'
	if err := p.expectKeyword("endfilter"); err != nil {
		return nil, err
	}
	if err := p.expectTagEnd(); err != nil {
		return nil, err
	}
	return &FilterBlock{pos: pos{line}, Filters: filters, Body: body}, nil
}
