package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/Bitlatte/mdxsite/internal/logger"
	"github.com/Bitlatte/mdxsite/internal/site"
)

const debounceDuration = 500 * time.Millisecond

var serverPort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the site locally and watches for changes",
	Long: `The serve command performs an initial build of your site, then starts a local
web server for the output directory. It watches the content, layouts and static
directories and rebuilds the site when they change.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		b := site.NewBuilder(projectFs, appConfig, log)
		r := &rebuilder{build: b.Build, log: log, ignore: appConfig.OutputDir}

		log.Info("Performing initial build")
		if err := r.run(ctx); err != nil {
			return fmt.Errorf("initial build failed: %w", err)
		}

		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("failed to create file watcher: %w", err)
		}
		defer watcher.Close()

		for _, root := range []string{appConfig.ContentDir, appConfig.LayoutsDir, appConfig.StaticDir} {
			watchTree(watcher, root, appConfig.OutputDir)
		}
		go r.watch(ctx, watcher)

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", serverPort),
			Handler:           siteHandler(projectFs, appConfig.OutputDir),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		log.Info("Serving site",
			logger.String("dir", appConfig.OutputDir),
			logger.String("url", fmt.Sprintf("http://localhost:%d", serverPort)))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start HTTP server: %w", err)
		}
		return nil
	},
}

// rebuilder serializes builds triggered by the initial run and the
// debounced watcher. Events under ignore, the build's own output, never
// trigger a rebuild.
type rebuilder struct {
	mu     sync.Mutex
	build  func(context.Context) (int, error)
	log    logger.Logger
	ignore string
}

func (r *rebuilder) run(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, err := r.build(ctx)
	return err
}

func (r *rebuilder) watch(ctx context.Context, watcher *fsnotify.Watcher) {
	var timer *time.Timer
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			if r.ignore != "" && within(event.Name, r.ignore) {
				continue
			}
			r.log.Info("Change detected", logger.String("path", event.Name), logger.String("op", event.Op.String()))

			// New subdirectories are not watched automatically.
			if event.Has(fsnotify.Create) && isDir(event.Name) {
				if err := watcher.Add(event.Name); err != nil {
					r.log.Warn("Failed to watch new directory", logger.String("path", event.Name), logger.Error(err))
				}
			}

			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounceDuration, func() {
				r.log.Info("Rebuilding site due to changes")
				if err := r.run(ctx); err != nil {
					r.log.Error("Rebuild failed", logger.Error(err))
				}
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			r.log.Warn("Watcher error", logger.Error(err))
		}
	}
}

// watchTree watches root and its subdirectories, leaving out skip.
func watchTree(watcher *fsnotify.Watcher, root, skip string) {
	if !isDir(root) {
		log.Info("Directory not found, not watching", logger.String("dir", root))
		return
	}
	err := filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			log.Warn("Error walking directory", logger.String("path", p), logger.Error(err))
			return nil
		}
		if d.IsDir() {
			if skip != "" && within(p, skip) {
				return filepath.SkipDir
			}
			if err := watcher.Add(p); err != nil {
				log.Warn("Failed to watch directory", logger.String("path", p), logger.Error(err))
			}
		}
		return nil
	})
	if err != nil {
		log.Warn("Error setting up watches", logger.String("dir", root), logger.Error(err))
	}
}

// within reports whether p is dir or lies below it.
func within(p, dir string) bool {
	absP, err := filepath.Abs(p)
	if err != nil {
		return false
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(absDir, absP)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// siteHandler serves dir from fsys without caching and without directory
// listings.
func siteHandler(fsys afero.Fs, dir string) http.Handler {
	files := http.FileServer(afero.NewHttpFs(fsys).Dir(dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") && r.URL.Path != "/" {
			if ok, _ := afero.Exists(fsys, path.Join(dir, r.URL.Path, "index.html")); !ok {
				http.NotFound(w, r)
				return
			}
		}
		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		w.Header().Set("Pragma", "no-cache")
		w.Header().Set("Expires", "0")
		files.ServeHTTP(w, r)
	})
}

func isDir(p string) bool {
	ok, err := afero.DirExists(projectFs, p)
	return err == nil && ok
}

func init() {
	serveCmd.Flags().IntVarP(&serverPort, "port", "p", 1313, "Port to serve the site on")
	rootCmd.AddCommand(serveCmd)
}
