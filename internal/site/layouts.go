package site

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"strings"

	"github.com/spf13/afero"
)

const (
	baseLayout   = "base.html"
	singleLayout = "single.html"
	homeLayout   = "home.html"
	partialsDir  = "partials"
)

//go:embed layouts
var defaultLayouts embed.FS

// layouts holds one template set per page layout. Every set is a clone of
// base.html plus the partials, with the page layout's blocks parsed on top,
// so layouts can redefine the same blocks without clobbering each other.
type layouts map[string]*template.Template

func (l layouts) lookup(name string) (*template.Template, bool) {
	t, ok := l[name]
	return t, ok
}

// loadLayouts parses the layouts directory from the project, falling back to
// the built-in layouts when the directory does not exist.
func (b *Builder) loadLayouts() (layouts, error) {
	exists, err := afero.DirExists(b.fs, b.cfg.LayoutsDir)
	if err != nil {
		return nil, fmt.Errorf("stat layouts directory '%s': %w", b.cfg.LayoutsDir, err)
	}
	if !exists {
		b.log.Info("Layouts directory not found, using built-in layouts")
		sub, err := fs.Sub(defaultLayouts, "layouts")
		if err != nil {
			return nil, err
		}
		return parseLayouts(sub)
	}
	return parseLayouts(afero.NewIOFS(subFs(b.fs, b.cfg.LayoutsDir)))
}

func parseLayouts(fsys fs.FS) (layouts, error) {
	var (
		basePath string
		partials []string
		pages    []string
	)
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(strings.ToLower(d.Name()), ".html") {
			return nil
		}
		switch {
		case p == baseLayout:
			basePath = p
		case strings.HasPrefix(p, partialsDir+"/"):
			partials = append(partials, p)
		default:
			pages = append(pages, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to find layout files: %w", err)
	}
	if basePath == "" {
		return nil, fmt.Errorf("%s not found directly in layouts directory", baseLayout)
	}

	base, err := template.ParseFS(fsys, append([]string{basePath}, partials...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s and partials: %w", baseLayout, err)
	}

	out := layouts{baseLayout: base}
	for _, p := range pages {
		set, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("clone base layout for %s: %w", p, err)
		}
		if set, err = set.ParseFS(fsys, p); err != nil {
			return nil, fmt.Errorf("failed to parse layout %s: %w", p, err)
		}
		out[path.Base(p)] = set
	}
	return out, nil
}
