package jinja2

import (
	"reflect"
	"strings"
)

// registerBuiltinTests installs the `is`-test library every Environment
// starts with. The teacher has no equivalent concept (Django templates
// have no `is` operator), so these are grounded directly on the Value
// predicates already exposed in value.go rather than on any tags_*.go/
// filters_builtin.go precedent.
func registerBuiltinTests(env *Environment) {
	env.AddTest("even", testEven)
	env.AddTest("odd", testOdd)
	env.AddTest("defined", testDefined)
	env.AddTest("undefined", testUndefined)
	env.AddTest("none", testNone)
	env.AddTest("string", testString)
	env.AddTest("number", testNumber)
	env.AddTest("iterable", testIterable)
	env.AddTest("mapping", testMapping)
	env.AddTest("callable", testCallable)
	env.AddTest("sameas", testSameas)
	env.AddTest("divisibleby", testDivisibleby)
	env.AddTest("in", testIn)
	env.AddTest("lower", testLower)
	env.AddTest("upper", testUpper)
}

func testEven(v *Value, args []*Value, kwargs map[string]*Value) (bool, error) {
	return v.Integer()%2 == 0, nil
}

func testOdd(v *Value, args []*Value, kwargs map[string]*Value) (bool, error) {
	return v.Integer()%2 != 0, nil
}

func testDefined(v *Value, args []*Value, kwargs map[string]*Value) (bool, error) {
	return !v.IsUndefined(), nil
}

func testUndefined(v *Value, args []*Value, kwargs map[string]*Value) (bool, error) {
	return v.IsUndefined(), nil
}

func testNone(v *Value, args []*Value, kwargs map[string]*Value) (bool, error) {
	return !v.IsUndefined() && v.IsNil(), nil
}

func testString(v *Value, args []*Value, kwargs map[string]*Value) (bool, error) {
	return v.IsString(), nil
}

func testNumber(v *Value, args []*Value, kwargs map[string]*Value) (bool, error) {
	return v.IsNumber(), nil
}

func testIterable(v *Value, args []*Value, kwargs map[string]*Value) (bool, error) {
	return v.IsIterable(), nil
}

func testMapping(v *Value, args []*Value, kwargs map[string]*Value) (bool, error) {
	return v.resolved().Kind() == reflect.Map, nil
}

func testCallable(v *Value, args []*Value, kwargs map[string]*Value) (bool, error) {
	return v.IsCallable(), nil
}

// testSameas mirrors `is sameas` loosely: Go has no CPython-style object
// identity to hang this off, so two values are "the same" when they carry
// equal underlying data -- this is Equal, not `is`, and callers comparing
// two distinct mutable containers with identical contents will see true
// where CPython would see false.
func testSameas(v *Value, args []*Value, kwargs map[string]*Value) (bool, error) {
	if len(args) == 0 {
		return false, nil
	}
	return v.Equal(args[0]), nil
}

func testDivisibleby(v *Value, args []*Value, kwargs map[string]*Value) (bool, error) {
	if len(args) == 0 {
		return false, nil
	}
	n := args[0].Integer()
	if n == 0 {
		return false, nil
	}
	return v.Integer()%n == 0, nil
}

func testIn(v *Value, args []*Value, kwargs map[string]*Value) (bool, error) {
	if len(args) == 0 {
		return false, nil
	}
	return args[0].Contains(v), nil
}

func testLower(v *Value, args []*Value, kwargs map[string]*Value) (bool, error) {
	s := v.String()
	return s == strings.ToLower(s), nil
}

func testUpper(v *Value, args []*Value, kwargs map[string]*Value) (bool, error) {
	s := v.String()
	return s == strings.ToUpper(s), nil
}
