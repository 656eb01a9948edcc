// Package content loads Markdown and MDX files from disk, splits their front
// matter, and binds the result to page data handlers.
package content

import (
	"sort"
	"strings"
)

// Record is one parsed file. Content is the body after front matter removal;
// Data is the decoded front matter and is never nil. Records are shared by
// the cache and must not be mutated.
type Record struct {
	Content string
	Data    map[string]any

	// Matter is the raw text between the delimiters and Delimiter the
	// convention it was written with. OpeningLine and ClosingLine hold the
	// delimiter lines verbatim, line endings included. All are empty without
	// front matter.
	Matter      string
	Delimiter   string
	OpeningLine string
	ClosingLine string
}

// String returns the front matter value under key when it is a string.
func (r Record) String(key string) string {
	s, _ := r.Data[key].(string)
	return s
}

// Mapping is the loaded content keyed by route.
type Mapping map[string]Record

// Routes returns the mapping's keys in sorted order.
func (m Mapping) Routes() []string {
	routes := make([]string, 0, len(m))
	for route := range m {
		routes = append(routes, route)
	}
	sort.Strings(routes)
	return routes
}

// RouteKey strips everything from the first "." of path, so "posts/a.md"
// becomes "posts/a".
func RouteKey(path string) string {
	route, _, _ := strings.Cut(path, ".")
	return route
}
