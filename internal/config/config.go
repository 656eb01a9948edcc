package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/Bitlatte/mdxsite/internal/logger"
)

// EnvPrefix prefixes every environment override, e.g. MDXSITE_OUTPUTDIR or
// MDXSITE_LOG_LEVEL.
const EnvPrefix = "MDXSITE"

type Config struct {
	SiteTitle  string `mapstructure:"siteTitle"`
	BaseURL    string `mapstructure:"baseURL"`
	OutputDir  string `mapstructure:"outputDir"`
	ContentDir string `mapstructure:"contentDir"`
	LayoutsDir string `mapstructure:"layoutsDir"`
	StaticDir  string `mapstructure:"staticDir"`
	// PostsSlug is the directory holding the posts, relative to ContentDir.
	// Post routes are PostsSlug joined with each file's slug, so it cannot be
	// a glob pattern.
	PostsSlug string `mapstructure:"postsSlug"`
	// Cache memoizes directory listings and parsed files for one build.
	Cache bool `mapstructure:"cache"`

	Log logger.Config `mapstructure:"log"`
}

var defaults = map[string]any{
	"siteTitle":       "My MDX Site",
	"baseURL":         "",
	"outputDir":       "public",
	"contentDir":      ".",
	"layoutsDir":      "layouts",
	"staticDir":       "static",
	"postsSlug":       "posts",
	"cache":           true,
	"log.level":       "info",
	"log.development": false,
}

// Load reads configuration from cfgFile, or ./config.yaml when cfgFile is
// empty, layering environment overrides on top of defaults. A missing
// ./config.yaml is not an error; a missing explicit file is. The returned
// string names the file used, if any.
func Load(fsys afero.Fs, cfgFile string) (Config, string, error) {
	v := viper.New()
	v.SetFs(fsys)

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	used := ""
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || cfgFile != "" {
			return Config{}, "", fmt.Errorf("read config file: %w", err)
		}
	} else {
		used = v.ConfigFileUsed()
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, "", fmt.Errorf("unable to decode config into struct: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, "", err
	}
	return cfg, used, nil
}

// Validate rejects configurations that would make a build clobber its own
// sources.
func (c Config) Validate() error {
	out := filepath.Clean(c.OutputDir)
	switch {
	case c.OutputDir == "":
		return errors.New("config: outputDir is required")
	case out == "." || out == "/":
		return fmt.Errorf("config: outputDir %q would remove the project directory", c.OutputDir)
	case out == filepath.Clean(c.ContentDir):
		return fmt.Errorf("config: outputDir %q is the content directory", c.OutputDir)
	case strings.TrimSpace(c.PostsSlug) == "":
		return errors.New("config: postsSlug is required")
	case strings.ContainsAny(c.PostsSlug, "*?["):
		return fmt.Errorf("config: postsSlug %q must be a directory, not a glob pattern", c.PostsSlug)
	}
	return nil
}
