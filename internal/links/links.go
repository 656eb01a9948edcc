// Package links resolves link lists against loaded content.
package links

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/Bitlatte/mdxsite/internal/content"
)

// Link is a link descriptor as written in front matter. A bare string
// descriptor is parsed as a Link with only URL set.
type Link struct {
	Title       string
	URL         string
	Description string
}

// Resolved is a Link with its display fields filled in.
type Resolved struct {
	Href    string
	Name    string
	Summary string
}

// Parse converts a front matter value into link descriptors. It accepts a
// string, a map, or a list of either; anything else is skipped.
func Parse(v any) []Link {
	switch val := v.(type) {
	case nil:
		return nil
	case []Link:
		return val
	case []string:
		out := make([]Link, 0, len(val))
		for _, s := range val {
			out = append(out, Link{URL: s})
		}
		return out
	case []any:
		var out []Link
		for _, item := range val {
			out = append(out, Parse(item)...)
		}
		return out
	case string:
		return []Link{{URL: val}}
	case Link:
		return []Link{val}
	case map[string]any:
		return []Link{fromFields(func(k string) any { return val[k] })}
	case map[any]any:
		return []Link{fromFields(func(k string) any { return val[k] })}
	default:
		return nil
	}
}

func fromFields(get func(string) any) Link {
	str := func(k string) string {
		if s, ok := get(k).(string); ok {
			return s
		}
		return ""
	}
	return Link{Title: str("title"), URL: str("url"), Description: str("description")}
}

// Resolve fills in each link's display name and summary. The name falls back
// from the explicit title to the target's front matter title, then to the
// href itself; the summary falls back the same way, ending empty.
func Resolve(list []Link, data content.Mapping) []Resolved {
	out := make([]Resolved, 0, len(list))
	for _, link := range list {
		href := link.URL
		rec := data[href]

		name := firstNonEmpty(link.Title, rec.String("title"), href)
		summary := firstNonEmpty(link.Description, rec.String("description"))

		out = append(out, Resolved{Href: href, Name: name, Summary: summary})
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// RenderList renders resolved links as an HTML list.
func RenderList(list []Resolved) template.HTML {
	var b strings.Builder
	b.WriteString("<ul>\n")
	for _, link := range list {
		b.WriteString("<li>")
		b.WriteString(string(Anchor(link)))
		if link.Summary != "" {
			fmt.Fprintf(&b, " <span class=\"description\">%s</span>", template.HTMLEscapeString(link.Summary))
		}
		b.WriteString("</li>\n")
	}
	b.WriteString("</ul>")
	return template.HTML(b.String())
}

// Anchor renders a single resolved link. Hrefs without a scheme are made
// root-relative.
func Anchor(link Resolved) template.HTML {
	href := link.Href
	if !strings.Contains(href, "://") {
		href = "/" + strings.TrimPrefix(href, "/")
	}
	return template.HTML(fmt.Sprintf("<a href=\"%s\">%s</a>",
		template.HTMLEscapeString(href),
		template.HTMLEscapeString(link.Name)))
}

// ListOfLinks binds a link list renderer to data, for use as a page component.
func ListOfLinks(data content.Mapping) func(v any) template.HTML {
	return func(v any) template.HTML {
		return RenderList(Resolve(Parse(v), data))
	}
}

// CustomLink binds a single-link renderer to data. Only the first descriptor in v
// is rendered.
func CustomLink(data content.Mapping) func(v any) template.HTML {
	return func(v any) template.HTML {
		list := Resolve(Parse(v), data)
		if len(list) == 0 {
			return ""
		}
		return Anchor(list[0])
	}
}
