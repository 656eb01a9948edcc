// Package site generates the static site: one page per post plus a home page
// listing them.
package site

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	"github.com/Bitlatte/mdxsite/internal/config"
	"github.com/Bitlatte/mdxsite/internal/content"
	"github.com/Bitlatte/mdxsite/internal/logger"
	"github.com/Bitlatte/mdxsite/internal/model"
	"github.com/Bitlatte/mdxsite/internal/render"
)

// Builder renders the project rooted at its filesystem. The content,
// layouts, static and output directories are resolved against that root.
type Builder struct {
	fs       afero.Fs
	cfg      config.Config
	log      logger.Logger
	renderer *render.Renderer
}

func NewBuilder(fsys afero.Fs, cfg config.Config, log logger.Logger) *Builder {
	if log == nil {
		log = logger.NewNop()
	}
	return &Builder{
		fs:       fsys,
		cfg:      cfg,
		log:      log,
		renderer: render.New(),
	}
}

// NewLoader returns a content loader over the content directory. Each build
// takes a fresh loader so edits between builds are picked up.
func (b *Builder) NewLoader() *content.Loader {
	opts := []content.Option{
		content.WithLogger(b.log.With(logger.String("component", "loader"))),
	}
	if !b.cfg.Cache {
		opts = append(opts, content.WithoutCache())
	}
	return content.NewLoader(subFs(b.fs, b.cfg.ContentDir), opts...)
}

// Build regenerates the output directory and returns the number of pages
// written.
func (b *Builder) Build(ctx context.Context) (int, error) {
	start := time.Now()
	b.log.Info("Starting build",
		logger.String("output_dir", b.cfg.OutputDir),
		logger.String("base_url", b.cfg.BaseURL),
		logger.String("site_title", b.cfg.SiteTitle),
		logger.Bool("cache", b.cfg.Cache))

	tmpls, err := b.loadLayouts()
	if err != nil {
		return 0, err
	}

	loader := b.NewLoader()
	indexProps, err := b.IndexProps(loader)
	if err != nil {
		return 0, err
	}
	staticPaths, err := b.StaticPaths(loader)
	if err != nil {
		return 0, err
	}
	staticProps, err := b.StaticProps(loader)
	if err != nil {
		return 0, err
	}

	if err := b.prepareOutput(); err != nil {
		return 0, err
	}
	if err := b.copyStatic(); err != nil {
		return 0, err
	}

	posts, err := indexProps(ctx, struct{}{})
	if err != nil {
		return 0, err
	}
	site := &model.SiteData{Title: b.cfg.SiteTitle, BaseURL: b.cfg.BaseURL, Posts: posts}

	params, err := staticPaths(ctx, struct{}{})
	if err != nil {
		return 0, err
	}

	written := 0
	for _, p := range params {
		if err := ctx.Err(); err != nil {
			return written, err
		}

		post, err := staticProps(ctx, p)
		if err != nil {
			return written, err
		}

		layout := b.postLayout(tmpls, post)
		out := path.Join(b.cfg.OutputDir, post.Route, "index.html")
		if err := b.writePage(tmpls, layout, out, model.PageData{Site: site, Post: post}); err != nil {
			return written, err
		}
		written++
	}

	if _, ok := tmpls.lookup(homeLayout); !ok {
		return written, fmt.Errorf("homepage layout '%s' not found. Please create it in the layouts directory", homeLayout)
	}
	if err := b.writePage(tmpls, homeLayout, path.Join(b.cfg.OutputDir, "index.html"), model.PageData{Site: site}); err != nil {
		return written, err
	}
	written++

	b.log.Info("Build completed",
		logger.Int("pages", written),
		logger.Duration("duration", time.Since(start)))
	return written, nil
}

// postLayout picks single.html, overridden by a "layout" front matter key,
// falling back to base.html when the chosen layout does not exist.
func (b *Builder) postLayout(tmpls layouts, post *model.PostProps) string {
	name := singleLayout
	if fm, ok := post.FrontMatter["layout"].(string); ok && fm != "" {
		if _, found := tmpls.lookup(fm); found {
			name = fm
		} else {
			b.log.Warn("Front matter layout not found",
				logger.String("layout", fm),
				logger.String("route", post.Route),
				logger.String("fallback", name))
		}
	}
	if _, found := tmpls.lookup(name); !found {
		b.log.Warn("Layout not found, using base layout",
			logger.String("layout", name),
			logger.String("route", post.Route))
		name = baseLayout
	}
	return name
}

func (b *Builder) writePage(tmpls layouts, layout, out string, data model.PageData) error {
	tmpl, ok := tmpls.lookup(layout)
	if !ok {
		return fmt.Errorf("layout '%s' not found", layout)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, baseLayout, data); err != nil {
		return fmt.Errorf("failed to execute template '%s' for '%s': %w", layout, out, err)
	}

	if err := b.fs.MkdirAll(path.Dir(out), os.ModePerm); err != nil {
		return fmt.Errorf("failed to create directory '%s': %w", path.Dir(out), err)
	}
	if err := afero.WriteFile(b.fs, out, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write '%s': %w", out, err)
	}
	b.log.Debug("Generated page", logger.String("path", out), logger.String("layout", layout))
	return nil
}

func (b *Builder) prepareOutput() error {
	if err := b.fs.RemoveAll(b.cfg.OutputDir); err != nil {
		return fmt.Errorf("failed to remove output directory '%s': %w", b.cfg.OutputDir, err)
	}
	if err := b.fs.MkdirAll(b.cfg.OutputDir, os.ModePerm); err != nil {
		return fmt.Errorf("failed to create output directory '%s': %w", b.cfg.OutputDir, err)
	}
	return nil
}

// subFs roots fsys at dir. BasePathFs cannot be rooted at ".", so the
// project root is returned as is.
func subFs(fsys afero.Fs, dir string) afero.Fs {
	if dir == "" || filepath.Clean(dir) == "." {
		return fsys
	}
	return afero.NewBasePathFs(fsys, dir)
}
