package cmd

import (
	"fmt"
	"os"
	"path"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/Bitlatte/mdxsite/internal/content"
	"github.com/Bitlatte/mdxsite/internal/logger"
	"github.com/Bitlatte/mdxsite/internal/site"
)

var (
	newTitle       string
	newDescription string
	newMDX         bool
)

var newCmd = &cobra.Command{
	Use:   "new <slug>",
	Short: "Creates a new post with front matter",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ext := ".md"
		if newMDX {
			ext = ".mdx"
		}
		p, err := newPost(projectFs, appConfig.ContentDir, appConfig.PostsSlug, args[0], ext, newTitle, newDescription, time.Now())
		if err != nil {
			return err
		}
		log.Info("Created post", logger.String("path", p))
		return nil
	},
}

func newPost(fsys afero.Fs, contentDir, postsSlug, slug, ext, title, description string, now time.Time) (string, error) {
	p := path.Join(contentDir, postsSlug, slug+ext)
	exists, err := afero.Exists(fsys, p)
	if err != nil {
		return "", err
	}
	if exists {
		return "", fmt.Errorf("post %s already exists", p)
	}

	if title == "" {
		title = site.TitleFromSlug(slug)
	}
	data := map[string]any{
		"title": title,
		"date":  now.Format("2006-01-02"),
	}
	if description != "" {
		data["description"] = description
	}

	doc, err := content.Marshal(data, "Write your post here.\n")
	if err != nil {
		return "", err
	}
	if err := fsys.MkdirAll(path.Dir(p), os.ModePerm); err != nil {
		return "", fmt.Errorf("failed to create directory '%s': %w", path.Dir(p), err)
	}
	if err := afero.WriteFile(fsys, p, doc, 0o644); err != nil {
		return "", fmt.Errorf("failed to write '%s': %w", p, err)
	}
	return p, nil
}

func init() {
	newCmd.Flags().StringVarP(&newTitle, "title", "t", "", "post title (default derived from the slug)")
	newCmd.Flags().StringVarP(&newDescription, "description", "d", "", "post description")
	newCmd.Flags().BoolVar(&newMDX, "mdx", false, "create an .mdx file instead of .md")
	rootCmd.AddCommand(newCmd)
}
