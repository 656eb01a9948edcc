package site

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/Bitlatte/mdxsite/internal/logger"
)

// copyStatic copies the static directory into the output directory. A
// missing static directory is skipped.
func (b *Builder) copyStatic() error {
	exists, err := afero.DirExists(b.fs, b.cfg.StaticDir)
	if err != nil {
		return fmt.Errorf("stat static directory '%s': %w", b.cfg.StaticDir, err)
	}
	if !exists {
		b.log.Debug("Static assets directory not found, skipping copy", logger.String("dir", b.cfg.StaticDir))
		return nil
	}

	copied := 0
	err = afero.Walk(b.fs, b.cfg.StaticDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(b.cfg.StaticDir, path)
		if err != nil {
			return fmt.Errorf("failed to get relative path for %s: %w", path, err)
		}
		dst := filepath.Join(b.cfg.OutputDir, rel)

		if info.IsDir() {
			if err := b.fs.MkdirAll(dst, os.ModePerm); err != nil {
				return fmt.Errorf("failed to create directory %s: %w", dst, err)
			}
			return nil
		}
		if err := b.copyFile(path, dst, info.Mode()); err != nil {
			return fmt.Errorf("failed to copy file from %s to %s: %w", path, dst, err)
		}
		copied++
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to copy static assets: %w", err)
	}

	b.log.Info("Static assets copied", logger.Int("files", copied))
	return nil
}

func (b *Builder) copyFile(src, dst string, mode os.FileMode) error {
	in, err := b.fs.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := b.fs.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, mode.Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
