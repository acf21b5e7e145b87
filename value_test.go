package jinja2

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValueTruthiness(t *testing.T) {
	assert.False(t, AsValue("").IsTrue())
	assert.True(t, AsValue("x").IsTrue())
	assert.False(t, AsValue(0).IsTrue())
	assert.True(t, AsValue(1).IsTrue())
	assert.False(t, AsValue([]int{}).IsTrue())
	assert.True(t, AsValue([]int{1}).IsTrue())
	assert.False(t, AsValue(nil).IsTrue())
}

func TestValueItemsOverSliceAndMap(t *testing.T) {
	items := AsValue([]string{"a", "b", "c"}).Items()
	assert.Len(t, items, 3)
	assert.Equal(t, "b", items[1].String())

	values := AsValue(map[string]int{"b": 2, "a": 1}).Items()
	assert.Len(t, values, 2)
	assert.Equal(t, "1", values[0].String())
}

func TestValueGetAttrOnMap(t *testing.T) {
	m := map[string]any{"name": "ada"}
	v := AsValue(m)
	assert.Equal(t, "ada", v.GetAttr("name").String())
}

func TestValueUndefinedPropagatesEmptyString(t *testing.T) {
	u := AsValue(&Undefined{Name: "missing"})
	assert.Equal(t, "", u.String())
	assert.True(t, u.IsUndefined())
}

func TestValueEqualAcrossNumericTypes(t *testing.T) {
	assert.True(t, AsValue(1).Equal(AsValue(int64(1))))
	assert.True(t, AsValue(1.0).Equal(AsValue(1)))
	assert.False(t, AsValue(1).Equal(AsValue(2)))
}

func TestValueCompareOrdering(t *testing.T) {
	cmp, ok := AsValue(1).Compare(AsValue(2))
	assert.True(t, ok)
	assert.Equal(t, -1, cmp)

	cmp, ok = AsValue("b").Compare(AsValue("a"))
	assert.True(t, ok)
	assert.Equal(t, 1, cmp)
}
