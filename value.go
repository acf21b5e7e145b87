package jinja2

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
)

// Value wraps an arbitrary Go value (map, slice, struct, scalar, or a
// pointer-to-any) behind the dynamic, reflect-driven
// interface the renderer needs to evaluate attribute access, arithmetic,
// comparisons and iteration without knowing the host application's types
// up front.
type Value struct {
	raw any
	rv  reflect.Value
}

// AsValue wraps a Go value. Passing an existing *Value returns it
// unchanged so call sites don't need to special-case already-wrapped
// results.
func AsValue(i any) *Value {
	if v, ok := i.(*Value); ok {
		return v
	}
	return &Value{raw: i, rv: reflect.ValueOf(i)}
}

// Markup is a string already known to be safe for output in the active
// autoescape mode: the escape filter/Markup constructor wraps text in it
// so a later autoescape pass does not double-encode it.
type Markup string

// Undefined is the sentinel produced when a name or attribute can't be
// resolved. It chains through further attribute/item access and
// stringifies to "" so `{{ missing.attr }}` degrades gracefully under the
// default (non-strict) undefined policy; StrictUndefined environments
// convert it to a TemplateContextVariableNotFoundError at first use
// instead of letting it propagate silently (see context.go).
type Undefined struct {
	Name string // the name or attribute path that was missing, for error messages
	Hint string
}

func (u *Undefined) Error() string {
	if u.Hint != "" {
		return u.Hint
	}
	return fmt.Sprintf("%q is undefined", u.Name)
}

func (v *Value) resolved() reflect.Value {
	rv := v.rv
	for rv.IsValid() && rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return reflect.Value{}
		}
		rv = rv.Elem()
	}
	for rv.IsValid() && rv.Kind() == reflect.Interface {
		rv = rv.Elem()
	}
	return rv
}

func (v *Value) IsUndefined() bool {
	_, ok := v.raw.(*Undefined)
	return ok
}

func (v *Value) AsUndefined() *Undefined {
	u, _ := v.raw.(*Undefined)
	return u
}

func (v *Value) IsNil() bool {
	if v.raw == nil {
		return true
	}
	return !v.resolved().IsValid()
}

func (v *Value) IsString() bool {
	if _, ok := v.raw.(Markup); ok {
		return true
	}
	return v.resolved().Kind() == reflect.String
}

func (v *Value) IsMarkup() bool {
	_, ok := v.raw.(Markup)
	return ok
}

func (v *Value) IsBool() bool { return v.resolved().Kind() == reflect.Bool }

func (v *Value) IsInteger() bool {
	switch v.resolved().Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}

func (v *Value) IsFloat() bool {
	k := v.resolved().Kind()
	return k == reflect.Float32 || k == reflect.Float64
}

func (v *Value) IsNumber() bool { return v.IsInteger() || v.IsFloat() }

func (v *Value) IsCallable() bool { return v.resolved().Kind() == reflect.Func }

func (v *Value) IsIterable() bool {
	switch v.resolved().Kind() {
	case reflect.Array, reflect.Slice, reflect.Map, reflect.String:
		return true
	}
	return false
}

// String renders v the way Jinja's str() would: raw text for
// strings/Markup, decimal for numbers, "True"/"False" for bools, and ""
// for nil/Undefined.
func (v *Value) String() string {
	if m, ok := v.raw.(Markup); ok {
		return string(m)
	}
	if v.IsUndefined() {
		return ""
	}
	rv := v.resolved()
	switch rv.Kind() {
	case reflect.Invalid:
		return ""
	case reflect.String:
		return rv.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10)
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 64)
	case reflect.Bool:
		if rv.Bool() {
			return "True"
		}
		return "False"
	case reflect.Slice, reflect.Array:
		parts := make([]string, rv.Len())
		for i := range parts {
			parts[i] = AsValue(rv.Index(i).Interface()).reprString()
		}
		return "[" + joinStrings(parts, ", ") + "]"
	default:
		return fmt.Sprintf("%v", rv.Interface())
	}
}

func (v *Value) reprString() string {
	if v.IsString() {
		return strconv.Quote(v.String())
	}
	return v.String()
}

func joinStrings(ss []string, sep string) string {
	out := ""
	for i, s := range ss {
		if i > 0 {
			out += sep
		}
		out += s
	}
	return out
}

func (v *Value) Integer() int64 {
	rv := v.resolved()
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int64(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return int64(rv.Float())
	case reflect.String:
		i, _ := strconv.ParseInt(rv.String(), 10, 64)
		return i
	}
	return 0
}

func (v *Value) Float() float64 {
	rv := v.resolved()
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	case reflect.String:
		f, _ := strconv.ParseFloat(rv.String(), 64)
		return f
	}
	return 0
}

// IsTrue implements Jinja/Python truthiness: empty containers, zero
// numbers, empty strings, false, nil and Undefined are all falsy.
func (v *Value) IsTrue() bool {
	if v.IsUndefined() || v.IsNil() {
		return false
	}
	rv := v.resolved()
	switch rv.Kind() {
	case reflect.Bool:
		return rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint() != 0
	case reflect.Float32, reflect.Float64:
		return rv.Float() != 0
	case reflect.String, reflect.Array, reflect.Slice, reflect.Map:
		return rv.Len() > 0
	default:
		return rv.IsValid()
	}
}

func (v *Value) Len() int {
	rv := v.resolved()
	switch rv.Kind() {
	case reflect.String, reflect.Array, reflect.Slice, reflect.Map:
		return rv.Len()
	}
	return 0
}

// Interface unwraps v back to a plain Go value.
func (v *Value) Interface() any {
	if v.raw == nil {
		return nil
	}
	return v.raw
}

// Equal compares two values using Python/Jinja equality: numeric values
// compare by numeric value across int/float, everything else by the
// underlying Go equality where comparable.
func (v *Value) Equal(other *Value) bool {
	if v.IsUndefined() || other.IsUndefined() {
		return v.IsUndefined() == other.IsUndefined()
	}
	if v.IsNumber() && other.IsNumber() {
		if v.IsFloat() || other.IsFloat() {
			return v.Float() == other.Float()
		}
		return v.Integer() == other.Integer()
	}
	if v.IsString() && other.IsString() {
		return v.String() == other.String()
	}
	av, bv := v.resolved(), other.resolved()
	if !av.IsValid() || !bv.IsValid() {
		return av.IsValid() == bv.IsValid()
	}
	if av.Type().Comparable() && bv.Type().Comparable() && av.Type() == bv.Type() {
		return av.Interface() == bv.Interface()
	}
	return fmt.Sprintf("%v", av.Interface()) == fmt.Sprintf("%v", bv.Interface())
}

// Compare returns -1/0/1 for ordered comparison (<, <=, >, >=), usable
// for numbers and strings; ok is false for other types, which the
// renderer's comparison code turns into a TemplateRuntimeError.
func (v *Value) Compare(other *Value) (int, bool) {
	if v.IsNumber() && other.IsNumber() {
		a, b := v.Float(), other.Float()
		switch {
		case a < b:
			return -1, true
		case a > b:
			return 1, true
		default:
			return 0, true
		}
	}
	if v.IsString() && other.IsString() {
		a, b := v.String(), other.String()
		switch {
		case a < b:
			return -1, true
		case a > b:
			return 1, true
		default:
			return 0, true
		}
	}
	return 0, false
}

// AttrGetter lets a Go type (e.g. the module namespace bound by
// {% import %}) define its own `.attr` resolution instead of falling
// back to reflect-based struct/map/method lookup.
type AttrGetter interface {
	GetAttr(name string) *Value
}

// GetAttr resolves `.attr` access: an AttrGetter implementation first,
// then struct field (exported Go field name only), map key, or a zero-arg
// method call, mirroring variableResolver.resolveIdentifier's fallback
// order.
func (v *Value) GetAttr(name string) *Value {
	if ag, ok := v.raw.(AttrGetter); ok {
		return ag.GetAttr(name)
	}
	rv := v.resolved()
	if !rv.IsValid() {
		return AsValue(&Undefined{Name: name})
	}
	switch rv.Kind() {
	case reflect.Struct:
		if f := rv.FieldByName(name); f.IsValid() && f.CanInterface() {
			return AsValue(f.Interface())
		}
	case reflect.Map:
		key := reflect.ValueOf(name)
		if rv.Type().Key().Kind() == reflect.String {
			mv := rv.MapIndex(key.Convert(rv.Type().Key()))
			if mv.IsValid() {
				return AsValue(mv.Interface())
			}
		}
	}
	if m, ok := methodByName(v.rv, name); ok {
		return m
	}
	return AsValue(&Undefined{Name: name})
}

func methodByName(rv reflect.Value, name string) (*Value, bool) {
	if !rv.IsValid() {
		return nil, false
	}
	m := rv.MethodByName(name)
	if !m.IsValid() {
		return nil, false
	}
	if m.Type().NumIn() == 0 && m.Type().NumOut() == 1 {
		out := m.Call(nil)
		return AsValue(out[0].Interface()), true
	}
	return AsValue(m.Interface()), true
}

// GetItem resolves `[key]` access: slice/array/string index (negative
// indices count from the end, per Jinja), or map lookup.
func (v *Value) GetItem(key *Value) *Value {
	rv := v.resolved()
	if !rv.IsValid() {
		return AsValue(&Undefined{Name: "[]"})
	}
	switch rv.Kind() {
	case reflect.Array, reflect.Slice, reflect.String:
		idx := int(key.Integer())
		n := rv.Len()
		if idx < 0 {
			idx += n
		}
		if idx < 0 || idx >= n {
			return AsValue(&Undefined{Hint: "index out of range"})
		}
		if rv.Kind() == reflect.String {
			return AsValue(string(rv.String()[idx]))
		}
		return AsValue(rv.Index(idx).Interface())
	case reflect.Map:
		kv := reflect.ValueOf(key.Interface())
		if kv.IsValid() && kv.Type().ConvertibleTo(rv.Type().Key()) {
			mv := rv.MapIndex(kv.Convert(rv.Type().Key()))
			if mv.IsValid() {
				return AsValue(mv.Interface())
			}
		}
		return AsValue(&Undefined{Name: key.String()})
	case reflect.Struct:
		return v.GetAttr(key.String())
	}
	return AsValue(&Undefined{Hint: "value is not subscriptable"})
}

// Contains implements the `in` operator.
func (v *Value) Contains(item *Value) bool {
	rv := v.resolved()
	switch rv.Kind() {
	case reflect.String:
		return containsSubstr(rv.String(), item.String())
	case reflect.Array, reflect.Slice:
		for i := 0; i < rv.Len(); i++ {
			if AsValue(rv.Index(i).Interface()).Equal(item) {
				return true
			}
		}
		return false
	case reflect.Map:
		return !v.GetItem(item).IsUndefined()
	}
	return false
}

func containsSubstr(s, sub string) bool {
	if sub == "" {
		return true
	}
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return true
		}
	}
	return false
}

// Iterate calls fn once per element in a stable order: map keys are
// sorted by their string form so template output is deterministic, which
// Go's native map iteration is not. key is nil when iterating a
// sequence (fn receives only value).
func (v *Value) Iterate(fn func(key, value *Value)) {
	rv := v.resolved()
	switch rv.Kind() {
	case reflect.Map:
		keys := rv.MapKeys()
		sort.Slice(keys, func(i, j int) bool {
			return fmt.Sprintf("%v", keys[i].Interface()) < fmt.Sprintf("%v", keys[j].Interface())
		})
		for _, k := range keys {
			fn(AsValue(k.Interface()), AsValue(rv.MapIndex(k).Interface()))
		}
	case reflect.Array, reflect.Slice:
		for i := 0; i < rv.Len(); i++ {
			fn(nil, AsValue(rv.Index(i).Interface()))
		}
	case reflect.String:
		for _, r := range rv.String() {
			fn(nil, AsValue(string(r)))
		}
	}
}

// Items returns a snapshot slice, for sort/reverse/length filters and
// `for` over explicitly materialized sequences.
func (v *Value) Items() []*Value {
	var out []*Value
	v.Iterate(func(_, val *Value) { out = append(out, val) })
	return out
}
