package jinja2

import (
	"errors"
	"io/fs"
	"path"
	"sort"
	"strings"
)

var errNoLoader = errors.New("no loader configured on this environment")

// Loader resolves a template name to source text for extends/include/
// import. Grounded on template_loader.go's TemplateLoader interface: the
// engine never touches a filesystem directly, only through this seam.
type Loader interface {
	Load(name string) (string, error)
}

// ListLoader is an optional capability: a Loader that can enumerate every
// name it could resolve, backing Environment.ListTemplates.
type ListLoader interface {
	List() ([]string, error)
}

// MapLoader serves templates from an in-memory name->source map. Grounded
// on virtfs.go's in-memory filesystem loader, simplified to the minimal
// shape this engine's Loader interface needs.
type MapLoader map[string]string

func (m MapLoader) Load(name string) (string, error) {
	src, ok := m[name]
	if !ok {
		return "", fs.ErrNotExist
	}
	return src, nil
}

func (m MapLoader) List() ([]string, error) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// FileSystemLoader serves templates from an fs.FS rooted at a template
// directory, e.g. os.DirFS("templates"). Grounded on
// template_loader.go's LocalFilesystemLoader, generalized from raw
// os.* calls to io/fs so callers can also point it at an embed.FS.
type FileSystemLoader struct {
	FS fs.FS
}

func NewFileSystemLoader(fsys fs.FS) *FileSystemLoader {
	return &FileSystemLoader{FS: fsys}
}

func (l *FileSystemLoader) Load(name string) (string, error) {
	clean := path.Clean(name)
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fs.ErrNotExist
	}
	b, err := fs.ReadFile(l.FS, clean)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (l *FileSystemLoader) List() ([]string, error) {
	var names []string
	err := fs.WalkDir(l.FS, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			names = append(names, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

// FuncLoader adapts a plain function to Loader, for host applications
// backed by something other than a filesystem (a database row, a remote
// fetch).
type FuncLoader func(name string) (string, error)

func (f FuncLoader) Load(name string) (string, error) { return f(name) }

// ChoiceLoader tries each Loader in order, returning the first successful
// resolution. Grounded on template_loader.go's support for multiple
// search roots.
type ChoiceLoader []Loader

func (c ChoiceLoader) Load(name string) (string, error) {
	var firstErr error
	for _, l := range c {
		src, err := l.Load(name)
		if err == nil {
			return src, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	if firstErr == nil {
		firstErr = fs.ErrNotExist
	}
	return "", firstErr
}

func (c ChoiceLoader) List() ([]string, error) {
	seen := make(map[string]struct{})
	var names []string
	for _, l := range c {
		lister, ok := l.(ListLoader)
		if !ok {
			continue
		}
		got, err := lister.List()
		if err != nil {
			continue
		}
		for _, n := range got {
			if _, dup := seen[n]; !dup {
				seen[n] = struct{}{}
				names = append(names, n)
			}
		}
	}
	sort.Strings(names)
	return names, nil
}
