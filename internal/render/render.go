// Package render turns content bodies into HTML.
package render

import (
	"bytes"
	"fmt"
	"html/template"
	texttemplate "text/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// Components maps component names to the functions a body may call, e.g.
// {{ ListOfLinks .links }}.
type Components = texttemplate.FuncMap

// Source is a rendered body together with the front matter it was rendered with.
type Source struct {
	HTML        template.HTML
	FrontMatter map[string]any
}

// Renderer expands component calls in a body and converts the Markdown to
// HTML. It holds no per-call state and is safe for concurrent use.
type Renderer struct {
	md goldmark.Markdown
}

// New returns a Renderer using GitHub flavoured Markdown. Raw HTML is passed
// through so component output survives conversion.
func New() *Renderer {
	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(
				parser.WithAutoHeadingID(),
			),
			goldmark.WithRendererOptions(
				gmhtml.WithHardWraps(),
				gmhtml.WithUnsafe(),
			),
		),
	}
}

// Render executes body as a template with scope as its data and components
// as its functions, then converts the result from Markdown to HTML.
func (r *Renderer) Render(body string, scope map[string]any, components Components) (Source, error) {
	tmpl, err := texttemplate.New("content").Funcs(components).Parse(body)
	if err != nil {
		return Source{}, fmt.Errorf("parse content template: %w", err)
	}

	var expanded bytes.Buffer
	if err := tmpl.Execute(&expanded, scope); err != nil {
		return Source{}, fmt.Errorf("execute content template: %w", err)
	}

	var out bytes.Buffer
	if err := r.md.Convert(expanded.Bytes(), &out); err != nil {
		return Source{}, fmt.Errorf("convert markdown to HTML: %w", err)
	}

	return Source{HTML: template.HTML(out.String()), FrontMatter: scope}, nil
}
