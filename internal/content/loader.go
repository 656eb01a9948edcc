package content

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/afero"

	"github.com/Bitlatte/mdxsite/internal/cache"
	"github.com/Bitlatte/mdxsite/internal/logger"
)

// Loader resolves specifiers to Markdown files and reads them into Records,
// memoizing both steps. A Loader assumes the files it reads do not change
// while it is in use; build a new one to pick up edits.
type Loader struct {
	fs      afero.Fs
	paths   cache.Cache[[]string]
	records cache.Cache[Record]
	log     logger.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithPathCache sets the cache for specifier to path list lookups.
func WithPathCache(c cache.Cache[[]string]) Option {
	return func(l *Loader) { l.paths = c }
}

// WithRecordCache sets the cache for path to Record lookups.
func WithRecordCache(c cache.Cache[Record]) Option {
	return func(l *Loader) { l.records = c }
}

// WithoutCache disables memoization; every call goes to the filesystem.
func WithoutCache() Option {
	return func(l *Loader) {
		l.paths = cache.NewNoop[[]string]()
		l.records = cache.NewNoop[Record]()
	}
}

// WithLogger sets the logger.
func WithLogger(log logger.Logger) Option {
	return func(l *Loader) { l.log = log }
}

// NewLoader returns a Loader reading from fsys with fresh memory caches.
func NewLoader(fsys afero.Fs, opts ...Option) *Loader {
	l := &Loader{
		fs:      fsys,
		paths:   cache.NewMemory[[]string](),
		records: cache.NewMemory[Record](),
		log:     logger.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// ResolvePaths lists the .md and .mdx files named by each specifier and
// returns them concatenated in specifier order. A specifier is a directory,
// or a glob pattern when it contains any of "*?[". Paths are not deduplicated.
func (l *Loader) ResolvePaths(specifiers ...string) ([]string, error) {
	var all []string
	for _, spec := range specifiers {
		paths, err := l.resolve(spec)
		if err != nil {
			return nil, err
		}
		all = append(all, paths...)
	}
	return all, nil
}

func (l *Loader) resolve(spec string) ([]string, error) {
	if paths, ok := l.paths.Get(spec); ok {
		l.log.Debug("path cache hit", logger.String("specifier", spec))
		return paths, nil
	}

	var (
		paths []string
		err   error
	)
	if strings.ContainsAny(spec, "*?[") {
		paths, err = l.glob(spec)
	} else {
		paths, err = l.list(spec)
	}
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("specifier %q matched no .md or .mdx files: %w", spec, ErrNotFound)
	}

	l.log.Debug("resolved specifier",
		logger.String("specifier", spec),
		logger.Int("files", len(paths)),
		logger.Strings("paths", paths))
	l.paths.Set(spec, paths)
	return paths, nil
}

func (l *Loader) list(dir string) ([]string, error) {
	entries, err := afero.ReadDir(l.fs, dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read directory %q: %w: %w", dir, ErrNotFound, err)
		}
		return nil, fmt.Errorf("read directory %q: %w", dir, err)
	}

	prefix := strings.TrimSuffix(dir, "/") + "/"
	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || !isContentFile(entry.Name()) {
			continue
		}
		paths = append(paths, prefix+entry.Name())
	}
	return paths, nil
}

func (l *Loader) glob(pattern string) ([]string, error) {
	matches, err := afero.Glob(l.fs, pattern)
	if err != nil {
		return nil, fmt.Errorf("glob %q: %w", pattern, err)
	}

	var paths []string
	for _, match := range matches {
		if isContentFile(match) {
			paths = append(paths, match)
		}
	}
	return paths, nil
}

func isContentFile(name string) bool {
	return strings.HasSuffix(name, ".md") || strings.HasSuffix(name, ".mdx")
}

// LoadRecord reads and splits one file.
func (l *Loader) LoadRecord(path string) (Record, error) {
	if rec, ok := l.records.Get(path); ok {
		l.log.Debug("record cache hit", logger.String("path", path))
		return rec, nil
	}

	source, err := afero.ReadFile(l.fs, path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Record{}, fmt.Errorf("read %q: %w: %w", path, ErrNotFound, err)
		}
		return Record{}, fmt.Errorf("read %q: %w", path, err)
	}

	rec, err := Split(source)
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			pe.Path = path
		}
		return Record{}, err
	}

	l.records.Set(path, rec)
	return rec, nil
}

// Load resolves specifiers and returns every file's Record keyed by its
// route. When two files share a route the later one wins.
func (l *Loader) Load(specifiers ...string) (Mapping, error) {
	paths, err := l.ResolvePaths(specifiers...)
	if err != nil {
		return nil, err
	}

	data := make(Mapping, len(paths))
	for _, path := range paths {
		rec, err := l.LoadRecord(path)
		if err != nil {
			return nil, err
		}
		data[RouteKey(path)] = rec
	}
	return data, nil
}
