package jinja2

import (
	"math"
	"sort"
	"strings"
)

// registerBuiltinFilters installs the filter library every Environment
// starts with. Grounded on filters_builtin.go's argument conventions (a
// leading positional "value" with trailing optional params) and escaping
// behavior (filterEscape/filterSafe), but limited to the subset this
// engine's Jinja-compatibility scope actually names -- the Django-specific
// filters (floatformat, urlize, linebreaksbr, yesno, ...) have no Jinja
// equivalent and were dropped rather than ported blind.
func registerBuiltinFilters(env *Environment) {
	env.AddFilter("upper", filterUpper)
	env.AddFilter("lower", filterLower)
	env.AddFilter("default", filterDefault)
	env.AddFilter("length", filterLength)
	env.AddFilter("join", filterJoin)
	env.AddFilter("first", filterFirst)
	env.AddFilter("last", filterLast)
	env.AddFilter("round", filterRound)
	env.AddFilter("abs", filterAbs)
	env.AddFilter("int", filterInt)
	env.AddFilter("float", filterFloat)
	env.AddFilter("string", filterString)
	env.AddFilter("list", filterList)
	env.AddFilter("reverse", filterReverse)
	env.AddFilter("trim", filterTrim)
	env.AddFilter("capitalize", filterCapitalize)
	env.AddFilter("title", filterTitle)
	env.AddFilter("safe", filterSafe)
	env.AddFilter("escape", filterEscape)
	env.AddFilter("e", filterEscape)
	env.AddFilter("sum", filterSum)
	env.AddFilter("min", filterMin)
	env.AddFilter("max", filterMax)
	env.AddFilter("sort", filterSort)
}

func filterUpper(v *Value, args []*Value, kwargs map[string]*Value) (*Value, error) {
	return AsValue(strings.ToUpper(v.String())), nil
}

func filterLower(v *Value, args []*Value, kwargs map[string]*Value) (*Value, error) {
	return AsValue(strings.ToLower(v.String())), nil
}

// filterDefault mirrors Jinja's default(value, default_value="", boolean=false):
// default_value is substituted when value is undefined, or (with
// boolean=true) whenever value is merely falsy.
func filterDefault(v *Value, args []*Value, kwargs map[string]*Value) (*Value, error) {
	def := AsValue("")
	if len(args) > 0 {
		def = args[0]
	}
	boolean := false
	if b, ok := kwargs["boolean"]; ok {
		boolean = b.IsTrue()
	}
	if v.IsUndefined() || (boolean && !v.IsTrue()) {
		return def, nil
	}
	return v, nil
}

func filterLength(v *Value, args []*Value, kwargs map[string]*Value) (*Value, error) {
	return AsValue(int64(v.Len())), nil
}

func filterJoin(v *Value, args []*Value, kwargs map[string]*Value) (*Value, error) {
	sep := ""
	if len(args) > 0 {
		sep = args[0].String()
	}
	items := v.Items()
	parts := make([]string, len(items))
	for i, it := range items {
		parts[i] = it.String()
	}
	return AsValue(strings.Join(parts, sep)), nil
}

func filterFirst(v *Value, args []*Value, kwargs map[string]*Value) (*Value, error) {
	items := v.Items()
	if len(items) == 0 {
		return AsValue(&Undefined{Hint: "sequence is empty"}), nil
	}
	return items[0], nil
}

func filterLast(v *Value, args []*Value, kwargs map[string]*Value) (*Value, error) {
	items := v.Items()
	if len(items) == 0 {
		return AsValue(&Undefined{Hint: "sequence is empty"}), nil
	}
	return items[len(items)-1], nil
}

// filterRound mirrors round(value, precision=0, method='common'); method
// may be "common" (round-half-away-from-zero), "ceil" or "floor".
func filterRound(v *Value, args []*Value, kwargs map[string]*Value) (*Value, error) {
	precision := 0
	if len(args) > 0 {
		precision = int(args[0].Integer())
	}
	method := "common"
	if len(args) > 1 {
		method = args[1].String()
	}
	mult := math.Pow(10, float64(precision))
	f := v.Float() * mult
	switch method {
	case "ceil":
		f = math.Ceil(f)
	case "floor":
		f = math.Floor(f)
	default:
		f = math.Round(f)
	}
	return AsValue(f / mult), nil
}

func filterAbs(v *Value, args []*Value, kwargs map[string]*Value) (*Value, error) {
	if v.IsFloat() {
		return AsValue(math.Abs(v.Float())), nil
	}
	n := v.Integer()
	if n < 0 {
		n = -n
	}
	return AsValue(n), nil
}

func filterInt(v *Value, args []*Value, kwargs map[string]*Value) (*Value, error) {
	return AsValue(v.Integer()), nil
}

func filterFloat(v *Value, args []*Value, kwargs map[string]*Value) (*Value, error) {
	return AsValue(v.Float()), nil
}

func filterString(v *Value, args []*Value, kwargs map[string]*Value) (*Value, error) {
	return AsValue(v.String()), nil
}

func filterList(v *Value, args []*Value, kwargs map[string]*Value) (*Value, error) {
	return AsValue(v.Items()), nil
}

func filterReverse(v *Value, args []*Value, kwargs map[string]*Value) (*Value, error) {
	if v.IsString() {
		r := []rune(v.String())
		for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
			r[i], r[j] = r[j], r[i]
		}
		return AsValue(string(r)), nil
	}
	items := v.Items()
	out := make([]*Value, len(items))
	for i, it := range items {
		out[len(items)-1-i] = it
	}
	return AsValue(out), nil
}

func filterTrim(v *Value, args []*Value, kwargs map[string]*Value) (*Value, error) {
	return AsValue(strings.TrimSpace(v.String())), nil
}

func filterCapitalize(v *Value, args []*Value, kwargs map[string]*Value) (*Value, error) {
	s := strings.ToLower(v.String())
	if s == "" {
		return AsValue(s), nil
	}
	return AsValue(strings.ToUpper(s[:1]) + s[1:]), nil
}

func filterTitle(v *Value, args []*Value, kwargs map[string]*Value) (*Value, error) {
	words := strings.Fields(v.String())
	for i, w := range words {
		lower := strings.ToLower(w)
		words[i] = strings.ToUpper(lower[:1]) + lower[1:]
	}
	return AsValue(strings.Join(words, " ")), nil
}

func filterSafe(v *Value, args []*Value, kwargs map[string]*Value) (*Value, error) {
	return AsValue(Markup(v.String())), nil
}

func filterEscape(v *Value, args []*Value, kwargs map[string]*Value) (*Value, error) {
	if v.IsMarkup() {
		return v, nil
	}
	return AsValue(Markup(escapeHTML(v.String()))), nil
}

// filterSum mirrors sum(value, attribute=None, start=0): attribute, when
// given, is read off each item via GetAttr before accumulating.
func filterSum(v *Value, args []*Value, kwargs map[string]*Value) (*Value, error) {
	var attr string
	if a, ok := kwargs["attribute"]; ok {
		attr = a.String()
	} else if len(args) > 0 {
		attr = args[0].String()
	}
	total := 0.0
	if s, ok := kwargs["start"]; ok {
		total = s.Float()
	}
	for _, it := range v.Items() {
		if attr != "" {
			it = it.GetAttr(attr)
		}
		total += it.Float()
	}
	if total == math.Trunc(total) {
		return AsValue(int64(total)), nil
	}
	return AsValue(total), nil
}

func filterMin(v *Value, args []*Value, kwargs map[string]*Value) (*Value, error) {
	return extremum(v, kwargs, -1)
}

func filterMax(v *Value, args []*Value, kwargs map[string]*Value) (*Value, error) {
	return extremum(v, kwargs, 1)
}

func extremum(v *Value, kwargs map[string]*Value, want int) (*Value, error) {
	items := v.Items()
	if len(items) == 0 {
		return AsValue(&Undefined{Hint: "sequence is empty"}), nil
	}
	var attr string
	if a, ok := kwargs["attribute"]; ok {
		attr = a.String()
	}
	key := func(it *Value) *Value {
		if attr != "" {
			return it.GetAttr(attr)
		}
		return it
	}
	best := items[0]
	for _, it := range items[1:] {
		if cmp, ok := key(it).Compare(key(best)); ok && cmp == want {
			best = it
		}
	}
	return best, nil
}

// filterSort mirrors sort(value, reverse=false, case_sensitive=false,
// attribute=None).
func filterSort(v *Value, args []*Value, kwargs map[string]*Value) (*Value, error) {
	items := append([]*Value(nil), v.Items()...)
	reverse := false
	if r, ok := kwargs["reverse"]; ok {
		reverse = r.IsTrue()
	}
	caseSensitive := false
	if c, ok := kwargs["case_sensitive"]; ok {
		caseSensitive = c.IsTrue()
	}
	var attr string
	if a, ok := kwargs["attribute"]; ok {
		attr = a.String()
	}
	key := func(it *Value) *Value {
		if attr != "" {
			it = it.GetAttr(attr)
		}
		if it.IsString() && !caseSensitive {
			return AsValue(strings.ToLower(it.String()))
		}
		return it
	}
	sort.SliceStable(items, func(i, j int) bool {
		cmp, _ := key(items[i]).Compare(key(items[j]))
		if reverse {
			return cmp > 0
		}
		return cmp < 0
	})
	return AsValue(items), nil
}
