package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Bitlatte/mdxsite/internal/site"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Builds the static site from content, layouts, and static assets",
	Long: `The build command loads every post under '<contentDir>/<postsSlug>/',
splits its front matter, renders it with the ListOfLinks and CustomLink
components, applies layouts from './layouts/' (or the built-in ones), copies
'./static/', and writes the site to the configured output directory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := site.NewBuilder(projectFs, appConfig, log).Build(cmd.Context())
		return err
	},
}

func init() {
	rootCmd.AddCommand(buildCmd)
}
