package render

import (
	"html/template"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderMarkdown(t *testing.T) {
	r := New()

	src, err := r.Render("# Hello {{ .title }}\n\nSome *text*.\n", map[string]any{"title": "World"}, nil)
	require.NoError(t, err)

	assert.Contains(t, string(src.HTML), `<h1 id="hello-world">Hello World</h1>`)
	assert.Contains(t, string(src.HTML), `<p>Some <em>text</em>.</p>`)
	assert.Equal(t, "World", src.FrontMatter["title"])
}

func TestRenderComponents(t *testing.T) {
	r := New()
	components := Components{
		"Shout": func(s string) template.HTML {
			return template.HTML("<div class=\"shout\">" + strings.ToUpper(s) + "</div>")
		},
	}

	src, err := r.Render("Intro\n\n{{ Shout .word }}\n\nOutro\n", map[string]any{"word": "hey"}, components)
	require.NoError(t, err)

	assert.Contains(t, string(src.HTML), `<div class="shout">HEY</div>`)
	assert.Contains(t, string(src.HTML), `<p>Outro</p>`)
}

func TestRenderUnknownComponent(t *testing.T) {
	_, err := New().Render("{{ Missing }}", nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse content template")
}
