package content

import (
	"context"
	"sync"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Bitlatte/mdxsite/internal/cache"
	"github.com/Bitlatte/mdxsite/internal/logger"
)

// countingFs records how many times each path is opened.
type countingFs struct {
	afero.Fs

	mu    sync.Mutex
	opens map[string]int
}

func newCountingFs(fsys afero.Fs) *countingFs {
	return &countingFs{Fs: fsys, opens: map[string]int{}}
}

func (c *countingFs) Open(name string) (afero.File, error) {
	c.mu.Lock()
	c.opens[name]++
	c.mu.Unlock()
	return c.Fs.Open(name)
}

func (c *countingFs) count(name string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.opens[name]
}

func writeFiles(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()
	fsys := afero.NewMemMapFs()
	for name, body := range files {
		require.NoError(t, afero.WriteFile(fsys, name, []byte(body), 0o644))
	}
	return fsys
}

func postsFs(t *testing.T) afero.Fs {
	return writeFiles(t, map[string]string{
		"posts/a.md":  "---\ntitle: A\n---\nPost A body\n",
		"posts/b.mdx": "Post B body with <TestComponent />\n",
	})
}

func TestResolvePaths(t *testing.T) {
	fsys := writeFiles(t, map[string]string{
		"posts/c.md":         "c",
		"posts/a.md":         "a",
		"posts/b.mdx":        "b",
		"posts/notes.txt":    "skip",
		"posts/UPPER.MD":     "skip",
		"posts/nested/d.md":  "skip",
		"pages/about.md":     "about",
		"pages/contact.mdx":  "contact",
		"pages/draft.md.bak": "skip",
	})
	l := NewLoader(fsys)

	paths, err := l.ResolvePaths("posts")
	require.NoError(t, err)
	assert.Equal(t, []string{"posts/a.md", "posts/b.mdx", "posts/c.md"}, paths)

	paths, err = l.ResolvePaths("posts/", "pages")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"posts/a.md", "posts/b.mdx", "posts/c.md",
		"pages/about.md", "pages/contact.mdx",
	}, paths)
}

func TestResolvePathsLogsPaths(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewLoader(postsFs(t), WithLogger(logger.FromZap(zap.New(core))))

	_, err := l.ResolvePaths("posts")
	require.NoError(t, err)
	_, err = l.ResolvePaths("posts")
	require.NoError(t, err)

	resolved := logs.FilterMessage("resolved specifier").All()
	require.Len(t, resolved, 1)
	fields := resolved[0].ContextMap()
	assert.Equal(t, "posts", fields["specifier"])
	assert.Equal(t, []any{"posts/a.md", "posts/b.mdx"}, fields["paths"])
	assert.Equal(t, 1, logs.FilterMessage("path cache hit").Len())
}

func TestResolvePathsGlob(t *testing.T) {
	fsys := writeFiles(t, map[string]string{
		"posts/a.md":  "a",
		"posts/b.mdx": "b",
		"posts/c.txt": "c",
	})
	l := NewLoader(fsys)

	paths, err := l.ResolvePaths("posts/*")
	require.NoError(t, err)
	assert.Equal(t, []string{"posts/a.md", "posts/b.mdx"}, paths)

	paths, err = l.ResolvePaths("posts/*.mdx")
	require.NoError(t, err)
	assert.Equal(t, []string{"posts/b.mdx"}, paths)
}

func TestResolvePathsNotFound(t *testing.T) {
	fsys := writeFiles(t, map[string]string{"empty/readme.txt": "nothing"})
	l := NewLoader(fsys)

	_, err := l.ResolvePaths("missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = l.ResolvePaths("empty")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = l.ResolvePaths("nothing/*.md")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoaderCachesReads(t *testing.T) {
	fsys := newCountingFs(postsFs(t))
	l := NewLoader(fsys)

	for i := 0; i < 3; i++ {
		_, err := l.ResolvePaths("posts")
		require.NoError(t, err)
		_, err = l.LoadRecord("posts/a.md")
		require.NoError(t, err)
	}

	assert.Equal(t, 1, fsys.count("posts"))
	assert.Equal(t, 1, fsys.count("posts/a.md"))
}

func TestLoaderWithoutCache(t *testing.T) {
	fsys := newCountingFs(postsFs(t))
	l := NewLoader(fsys, WithoutCache())

	for i := 0; i < 2; i++ {
		_, err := l.Load("posts")
		require.NoError(t, err)
	}

	assert.Equal(t, 2, fsys.count("posts"))
	assert.Equal(t, 2, fsys.count("posts/a.md"))
	assert.Equal(t, 2, fsys.count("posts/b.mdx"))
}

func TestLoaderInjectedCaches(t *testing.T) {
	paths := cache.NewMemory[[]string]()
	records := cache.NewMemory[Record]()
	l := NewLoader(postsFs(t), WithPathCache(paths), WithRecordCache(records))

	_, err := l.Load("posts")
	require.NoError(t, err)

	assert.Equal(t, 1, paths.Len())
	assert.Equal(t, 2, records.Len())

	cached, ok := paths.Get("posts")
	require.True(t, ok)
	assert.Equal(t, []string{"posts/a.md", "posts/b.mdx"}, cached)
}

func TestLoad(t *testing.T) {
	l := NewLoader(postsFs(t))

	data, err := l.Load("posts")
	require.NoError(t, err)

	assert.Equal(t, []string{"posts/a", "posts/b"}, data.Routes())
	assert.Equal(t, "Post A body\n", data["posts/a"].Content)
	assert.Equal(t, map[string]any{"title": "A"}, data["posts/a"].Data)
	assert.Equal(t, "Post B body with <TestComponent />\n", data["posts/b"].Content)
	assert.Equal(t, map[string]any{}, data["posts/b"].Data)
}

func TestLoadRouteCollisionLastWins(t *testing.T) {
	l := NewLoader(writeFiles(t, map[string]string{
		"posts/a.md":  "---\ntitle: markdown\n---\n",
		"posts/a.mdx": "---\ntitle: mdx\n---\n",
	}))

	data, err := l.Load("posts")
	require.NoError(t, err)
	require.Len(t, data, 1)
	assert.Equal(t, "mdx", data["posts/a"].String("title"))
}

func TestLoadParseError(t *testing.T) {
	l := NewLoader(writeFiles(t, map[string]string{
		"posts/ok.md":     "fine\n",
		"posts/broken.md": "---\ntitle: never closed\n",
	}))

	_, err := l.Load("posts")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrParse)

	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "posts/broken.md", pe.Path)
}

func TestLoadRecordMissingFile(t *testing.T) {
	l := NewLoader(afero.NewMemMapFs())

	_, err := l.LoadRecord("posts/gone.md")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRouteKey(t *testing.T) {
	tests := map[string]string{
		"posts/a.md":       "posts/a",
		"posts/b.mdx":      "posts/b",
		"posts/c.draft.md": "posts/c",
		"posts/no-ext":     "posts/no-ext",
	}
	for in, want := range tests {
		assert.Equal(t, want, RouteKey(in), in)
	}
}

func TestWithData(t *testing.T) {
	fsys := newCountingFs(postsFs(t))
	l := NewLoader(fsys)

	fetches := 0
	handler, err := WithData(l, func(data Mapping) Handler[string, string] {
		fetches++
		return func(_ context.Context, route string) (string, error) {
			return data[route].String("title") + "|" + data[route].Content, nil
		}
	}, "posts")
	require.NoError(t, err)

	got, err := handler(context.Background(), "posts/a")
	require.NoError(t, err)
	assert.Equal(t, "A|Post A body\n", got)

	got, err = handler(context.Background(), "posts/b")
	require.NoError(t, err)
	assert.Equal(t, "|Post B body with <TestComponent />\n", got)

	assert.Equal(t, 2, fetches, "fetch runs on every call")
	assert.Equal(t, 1, fsys.count("posts/a.md"), "content is loaded once")

	// A second binding over the same loader reuses the caches.
	_, err = WithData(l, func(Mapping) Handler[struct{}, int] { return nil }, "posts")
	require.NoError(t, err)
	assert.Equal(t, 1, fsys.count("posts"))
	assert.Equal(t, 1, fsys.count("posts/b.mdx"))
}

func TestWithDataFailsEagerly(t *testing.T) {
	l := NewLoader(afero.NewMemMapFs())

	called := false
	_, err := WithData(l, func(Mapping) Handler[struct{}, struct{}] {
		called = true
		return nil
	}, "posts")

	assert.ErrorIs(t, err, ErrNotFound)
	assert.False(t, called)
}
