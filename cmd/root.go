package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/Bitlatte/mdxsite/internal/config"
	"github.com/Bitlatte/mdxsite/internal/logger"
)

var (
	cfgFile   string
	appConfig config.Config
	log       logger.Logger = logger.NewNop()
	projectFs afero.Fs      = afero.NewOsFs()
)

var rootCmd = &cobra.Command{
	Use:   "mdxsite",
	Short: "Static site generator for Markdown and MDX posts",
	Long: `mdxsite loads Markdown and MDX files with front matter from your
content directory, renders them with the component functions they reference,
and writes a static HTML site.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initializeConfig()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = log.Sync()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
}

func initializeConfig() error {
	cfg, used, err := config.Load(projectFs, cfgFile)
	if err != nil {
		return err
	}
	appConfig = cfg

	l, err := logger.New(cfg.Log)
	if err != nil {
		return err
	}
	log = l

	if used != "" {
		log.Info("Using config file", logger.String("file", used))
	} else {
		log.Info("No config file found, using defaults and environment")
	}
	return nil
}
