package cmd

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bitlatte/mdxsite/internal/content"
	"github.com/Bitlatte/mdxsite/internal/logger"
)

func TestSiteHandler(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "public/index.html", []byte("home"), 0o644))
	require.NoError(t, afero.WriteFile(fsys, "public/posts/a/index.html", []byte("post a"), 0o644))
	require.NoError(t, fsys.MkdirAll("public/empty", 0o755))

	h := siteHandler(fsys, "public")

	tests := []struct {
		path   string
		status int
		body   string
	}{
		{"/", http.StatusOK, "home"},
		{"/posts/a/", http.StatusOK, "post a"},
		{"/empty/", http.StatusNotFound, ""},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

		assert.Equal(t, tt.status, rec.Code, tt.path)
		if tt.body != "" {
			assert.Equal(t, tt.body, rec.Body.String(), tt.path)
			assert.Equal(t, "no-cache, no-store, must-revalidate", rec.Header().Get("Cache-Control"))
		}
	}
}

func TestRebuilderSerializesBuilds(t *testing.T) {
	var (
		mu      sync.Mutex
		running int
		overlap bool
	)
	r := &rebuilder{
		log: logger.NewNop(),
		build: func(context.Context) (int, error) {
			mu.Lock()
			running++
			overlap = overlap || running > 1
			mu.Unlock()

			time.Sleep(5 * time.Millisecond)

			mu.Lock()
			running--
			mu.Unlock()
			return 1, nil
		},
	}

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, r.run(context.Background()))
		}()
	}
	wg.Wait()
	assert.False(t, overlap)
}

func TestRebuilderReturnsBuildError(t *testing.T) {
	boom := errors.New("boom")
	r := &rebuilder{log: logger.NewNop(), build: func(context.Context) (int, error) { return 0, boom }}
	assert.ErrorIs(t, r.run(context.Background()), boom)
}

func TestWithin(t *testing.T) {
	tests := []struct {
		p, dir string
		want   bool
	}{
		{"public", "public", true},
		{"public/posts/a/index.html", "public", true},
		{"./public/index.html", "public", true},
		{"posts/a.md", "public", false},
		{"publications/a.md", "public", false},
		{".", "public", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, within(tt.p, tt.dir), "%s in %s", tt.p, tt.dir)
	}
}

// The output directory sits inside the watched content root, as with the
// default config. Writing the output must not schedule further builds.
func TestWatchIgnoresBuildOutput(t *testing.T) {
	root := t.TempDir()
	out := filepath.Join(root, "public")
	src := filepath.Join(root, "posts", "a.md")
	require.NoError(t, os.MkdirAll(filepath.Dir(src), 0o755))
	require.NoError(t, os.WriteFile(src, []byte("# A\n"), 0o644))

	var builds atomic.Int32
	r := &rebuilder{
		log:    logger.NewNop(),
		ignore: out,
		build: func(context.Context) (int, error) {
			builds.Add(1)
			if err := os.RemoveAll(out); err != nil {
				return 0, err
			}
			page := filepath.Join(out, "posts", "a", "index.html")
			if err := os.MkdirAll(filepath.Dir(page), 0o755); err != nil {
				return 0, err
			}
			return 1, os.WriteFile(page, []byte("a"), 0o644)
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, r.run(ctx))

	watcher, err := fsnotify.NewWatcher()
	require.NoError(t, err)
	defer watcher.Close()
	watchTree(watcher, root, out)
	go r.watch(ctx, watcher)

	require.NoError(t, os.WriteFile(src, []byte("# A edited\n"), 0o644))

	require.Eventually(t, func() bool { return builds.Load() >= 2 }, 5*time.Second, 20*time.Millisecond)
	time.Sleep(4 * debounceDuration)
	assert.Equal(t, int32(2), builds.Load())
}

func TestNewPost(t *testing.T) {
	fsys := afero.NewMemMapFs()
	now := time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC)

	p, err := newPost(fsys, "content", "posts", "hello-world", ".mdx", "", "greetings", now)
	require.NoError(t, err)
	assert.Equal(t, "content/posts/hello-world.mdx", p)

	data, err := content.NewLoader(fsys).Load("content/posts")
	require.NoError(t, err)
	rec := data["content/posts/hello-world"]
	assert.Equal(t, "Hello World", rec.String("title"))
	assert.Equal(t, "greetings", rec.String("description"))
	assert.Equal(t, "2024-05-06", rec.String("date"))
	assert.Equal(t, "Write your post here.\n", rec.Content)

	_, err = newPost(fsys, "content", "posts", "hello-world", ".mdx", "", "", now)
	assert.ErrorContains(t, err, "already exists")
}
