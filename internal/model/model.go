package model

import (
	"github.com/Bitlatte/mdxsite/internal/content"
	"github.com/Bitlatte/mdxsite/internal/links"
	"github.com/Bitlatte/mdxsite/internal/render"
)

// PathParams identifies one generated post page.
type PathParams struct {
	Slug string
}

// PostProps is everything a post layout needs.
type PostProps struct {
	Route       string
	Title       string
	Source      render.Source
	FrontMatter map[string]any
	AllPosts    content.Mapping
}

// SiteData holds site-wide values shared by every page.
type SiteData struct {
	Title   string
	BaseURL string
	Posts   []links.Resolved
}
