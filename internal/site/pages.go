package site

import (
	"context"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/Bitlatte/mdxsite/internal/content"
	"github.com/Bitlatte/mdxsite/internal/links"
	"github.com/Bitlatte/mdxsite/internal/model"
	"github.com/Bitlatte/mdxsite/internal/render"
)

// ErrRouteNotFound is returned when a page's route has no loaded content.
var ErrRouteNotFound = errors.New("route not found")

var dateFormats = []string{"2006-01-02T15:04:05Z07:00", "2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02"}

// Components returns the components available to post bodies, bound to data.
func Components(data content.Mapping) render.Components {
	return render.Components{
		"ListOfLinks": links.ListOfLinks(data),
		"CustomLink":  links.CustomLink(data),
	}
}

// StaticPaths returns a handler listing one PathParams per post.
func (b *Builder) StaticPaths(l *content.Loader) (content.Handler[struct{}, []model.PathParams], error) {
	return content.WithData(l, func(data content.Mapping) content.Handler[struct{}, []model.PathParams] {
		return func(_ context.Context, _ struct{}) ([]model.PathParams, error) {
			routes := data.Routes()
			paths := make([]model.PathParams, 0, len(routes))
			for _, route := range routes {
				paths = append(paths, model.PathParams{Slug: path.Base(route)})
			}
			return paths, nil
		}
	}, b.cfg.PostsSlug)
}

// StaticProps returns a handler rendering the post named by its params.
func (b *Builder) StaticProps(l *content.Loader) (content.Handler[model.PathParams, *model.PostProps], error) {
	return content.WithData(l, func(allPosts content.Mapping) content.Handler[model.PathParams, *model.PostProps] {
		components := Components(allPosts)

		return func(_ context.Context, params model.PathParams) (*model.PostProps, error) {
			route := path.Join(b.cfg.PostsSlug, params.Slug)
			rec, ok := allPosts[route]
			if !ok {
				return nil, fmt.Errorf("%w: %s", ErrRouteNotFound, route)
			}

			source, err := b.renderer.Render(rec.Content, rec.Data, components)
			if err != nil {
				return nil, fmt.Errorf("render %s: %w", route, err)
			}

			return &model.PostProps{
				Route:       route,
				Title:       pageTitle(rec, params.Slug),
				Source:      source,
				FrontMatter: rec.Data,
				AllPosts:    allPosts,
			}, nil
		}
	}, b.cfg.PostsSlug)
}

// IndexProps returns a handler listing every post, newest first. Posts
// without a usable date sort last, by route.
func (b *Builder) IndexProps(l *content.Loader) (content.Handler[struct{}, []links.Resolved], error) {
	return content.WithData(l, func(data content.Mapping) content.Handler[struct{}, []links.Resolved] {
		return func(_ context.Context, _ struct{}) ([]links.Resolved, error) {
			routes := data.Routes()
			dates := make(map[string]time.Time, len(routes))
			for _, route := range routes {
				dates[route] = postDate(data[route])
			}
			sort.SliceStable(routes, func(i, j int) bool {
				di, dj := dates[routes[i]], dates[routes[j]]
				if di.IsZero() || dj.IsZero() {
					return !di.IsZero() && dj.IsZero()
				}
				return di.After(dj)
			})
			return links.Resolve(links.Parse(routes), data), nil
		}
	}, b.cfg.PostsSlug)
}

func pageTitle(rec content.Record, slug string) string {
	if title := rec.String("title"); title != "" {
		return title
	}
	return TitleFromSlug(slug)
}

// TitleFromSlug turns "hello-world" into "Hello World".
func TitleFromSlug(slug string) string {
	words := strings.NewReplacer("-", " ", "_", " ").Replace(slug)
	return cases.Title(language.English).String(words)
}

func postDate(rec content.Record) time.Time {
	switch v := rec.Data["date"].(type) {
	case time.Time:
		return v
	case string:
		for _, format := range dateFormats {
			if t, err := time.Parse(format, v); err == nil {
				return t
			}
		}
	}
	return time.Time{}
}
