package jinja2

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapLoaderLoadAndList(t *testing.T) {
	l := MapLoader{"a.html": "A", "b.html": "B"}
	src, err := l.Load("a.html")
	require.NoError(t, err)
	assert.Equal(t, "A", src)

	_, err = l.Load("missing.html")
	assert.Error(t, err)

	names, err := l.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"a.html", "b.html"}, names)
}

func TestFileSystemLoaderRejectsTraversal(t *testing.T) {
	fsys := fstest.MapFS{
		"templates/ok.html": &fstest.MapFile{Data: []byte("ok")},
	}
	l := NewFileSystemLoader(fsys)

	src, err := l.Load("templates/ok.html")
	require.NoError(t, err)
	assert.Equal(t, "ok", src)

	_, err = l.Load("../secret")
	assert.Error(t, err)
	_, err = l.Load("../../etc/passwd")
	assert.Error(t, err)
}

func TestChoiceLoaderTriesEachInOrder(t *testing.T) {
	l := ChoiceLoader{
		MapLoader{"a.html": "from-first"},
		MapLoader{"a.html": "from-second", "b.html": "only-second"},
	}
	src, err := l.Load("a.html")
	require.NoError(t, err)
	assert.Equal(t, "from-first", src)

	src, err = l.Load("b.html")
	require.NoError(t, err)
	assert.Equal(t, "only-second", src)

	_, err = l.Load("missing.html")
	assert.Error(t, err)
}
