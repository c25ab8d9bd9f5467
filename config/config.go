// Package config loads the site configuration file. The file is YAML with
// environment variable expansion, so tokens and deploy-specific URLs can
// stay out of version control.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/sitesmith/sitesmith/errs"
)

// Config is the top-level site configuration.
type Config struct {
	Site        SiteConfig        `yaml:"site"`
	Output      OutputConfig      `yaml:"output"`
	Incremental IncrementalConfig `yaml:"incremental"`
	Content     []SourceConfig    `yaml:"content,omitempty"`
	Watch       WatchConfig       `yaml:"watch"`
}

// SiteConfig carries site-wide metadata surfaced to pages.
type SiteConfig struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description,omitempty"`
	BaseURL     string `yaml:"base_url,omitempty"`
}

// OutputConfig controls where and how build output is written.
type OutputConfig struct {
	Directory string `yaml:"directory"`
	AssetsDir string `yaml:"assets_dir,omitempty"`
	StaticDir string `yaml:"static_dir,omitempty"`
	Clean     *bool  `yaml:"clean,omitempty"` // defaults to true
}

// IncrementalConfig controls the between-build fingerprint cache.
type IncrementalConfig struct {
	Enabled   bool   `yaml:"enabled"`
	CachePath string `yaml:"cache_path,omitempty"`
}

// SourceConfig declares one markdown content source loaded from a file glob.
type SourceConfig struct {
	Name         string `yaml:"name"`
	Glob         string `yaml:"glob"`
	AllowRawHTML bool   `yaml:"allow_raw_html,omitempty"`
}

// WatchConfig configures watch mode.
type WatchConfig struct {
	// Dirs are the directories to watch recursively. Defaults to the
	// current directory.
	Dirs []string `yaml:"dirs,omitempty"`
	// Debounce is how long to coalesce file events before rebuilding.
	Debounce Duration `yaml:"debounce,omitempty"`
	// MetricsAddr, when set, serves Prometheus metrics during watch mode.
	MetricsAddr string `yaml:"metrics_addr,omitempty"`
}

// Duration is a time.Duration that reads from YAML strings like "300ms".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Load reads and validates the configuration file. A .env file next to the
// working directory is loaded first so ${VAR} references in the YAML expand.
func Load(path string) (*Config, error) {
	// Missing .env is the normal case; only real read errors matter.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, errs.Wrap(err, errs.CategoryConfig, "loading .env file")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Wrap(err, errs.CategoryConfig, fmt.Sprintf("reading configuration file %q", path))
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, errs.Wrap(err, errs.CategoryConfig, fmt.Sprintf("parsing configuration file %q", path))
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Site.Title == "" {
		c.Site.Title = "Site"
	}
	if c.Output.Directory == "" {
		c.Output.Directory = "dist"
	}
	if c.Output.AssetsDir == "" {
		c.Output.AssetsDir = "_assets"
	}
	if c.Output.StaticDir == "" {
		c.Output.StaticDir = "static"
	}
	if c.Output.Clean == nil {
		t := true
		c.Output.Clean = &t
	}
	if c.Incremental.CachePath == "" {
		c.Incremental.CachePath = ".sitesmith-cache.db"
	}
	if len(c.Watch.Dirs) == 0 {
		c.Watch.Dirs = []string{"."}
	}
	if c.Watch.Debounce <= 0 {
		c.Watch.Debounce = Duration(300 * time.Millisecond)
	}
}

// Validate rejects configurations that would fail later in confusing ways.
func (c *Config) Validate() error {
	seen := make(map[string]struct{}, len(c.Content))
	for _, src := range c.Content {
		if src.Name == "" {
			return errs.New(errs.CategoryConfig, "content source with an empty name")
		}
		if src.Glob == "" {
			return errs.New(errs.CategoryConfig, fmt.Sprintf("content source %q has no glob", src.Name))
		}
		if _, ok := seen[src.Name]; ok {
			return errs.New(errs.CategoryConfig, fmt.Sprintf("content source %q declared twice", src.Name))
		}
		seen[src.Name] = struct{}{}
	}
	if c.Output.Directory == "." || c.Output.Directory == "/" {
		return errs.New(errs.CategoryConfig, fmt.Sprintf("refusing %q as output directory", c.Output.Directory))
	}
	return nil
}

// Init writes an example configuration file.
func Init(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return errs.New(errs.CategoryConfig,
			fmt.Sprintf("configuration file already exists: %s (use --force to overwrite)", path))
	}

	example := Config{
		Site: SiteConfig{
			Title:       "My Site",
			Description: "A site built with sitesmith",
			BaseURL:     "https://example.com",
		},
		Output: OutputConfig{
			Directory: "dist",
			StaticDir: "static",
		},
		Incremental: IncrementalConfig{Enabled: true},
		Content: []SourceConfig{
			{Name: "articles", Glob: "content/articles/*.md"},
		},
	}

	data, err := yaml.Marshal(&example)
	if err != nil {
		return errs.Wrap(err, errs.CategoryConfig, "encoding example configuration")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errs.Wrap(err, errs.CategoryConfig, fmt.Sprintf("writing %q", path))
	}
	return nil
}
