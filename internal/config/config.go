package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	SourceAPI = "api"
	SourceRSS = "rss"

	FilterSimple = "simple"
	FilterBleve  = "bleve"

	ExtractorPlaceholder = "placeholder"
	ExtractorHTML        = "html"
)

// APIKeyEnvVars are read, in order, for the API key.
var APIKeyEnvVars = []string{"FRONTPAGE_API_KEY", "NYT_API_KEY", "NEXT_PUBLIC_NYT_API_KEY"}

// DotEnvFiles are loaded from the working directory before the config is read.
var DotEnvFiles = []string{".env.local", ".env"}

type Config struct {
	API      APIConfig      `mapstructure:"api"`
	Database DatabaseConfig `mapstructure:"database"`
	UI       UIConfig       `mapstructure:"ui"`
	Content  ContentConfig  `mapstructure:"content"`
	Media    MediaConfig    `mapstructure:"media"`
	Keys     KeyConfig      `mapstructure:"keys"`
	Log      LogConfig      `mapstructure:"log"`
}

type APIConfig struct {
	Key            string        `mapstructure:"key"`
	BaseURL        string        `mapstructure:"base_url"`
	FeedBaseURL    string        `mapstructure:"feed_base_url"`
	Source         string        `mapstructure:"source"`
	HTTPTimeout    time.Duration `mapstructure:"http_timeout"`
	UserAgent      string        `mapstructure:"user_agent"`
	DefaultSection string        `mapstructure:"default_section"`
}

type DatabaseConfig struct {
	Path    string        `mapstructure:"path"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type UIConfig struct {
	DefaultSort  string        `mapstructure:"default_sort"`
	FilterEngine string        `mapstructure:"filter_engine"`
	Article      ArticleConfig `mapstructure:"article"`
}

type ArticleConfig struct {
	MaxAbstractLength int `mapstructure:"max_abstract_length"`
	WordWrapMaxWidth  int `mapstructure:"word_wrap_max_width"`
	WordWrapMinWidth  int `mapstructure:"word_wrap_min_width"`
}

type ContentConfig struct {
	Extractor   string        `mapstructure:"extractor"`
	HTTPTimeout time.Duration `mapstructure:"http_timeout"`
	// AllowPrivateHosts lets the html extractor fetch loopback and private
	// addresses, e.g. a local mirror
	AllowPrivateHosts bool `mapstructure:"allow_private_hosts"`
}

type MediaConfig struct {
	DefaultOpener string   `mapstructure:"default_opener"`
	ImageViewers  []string `mapstructure:"image_viewers"`
}

type KeyConfig struct {
	Modifier string `mapstructure:"modifier"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

func defaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()

	return &Config{
		API: APIConfig{
			BaseURL:        "https://api.nytimes.com/svc/topstories/v2",
			FeedBaseURL:    "https://rss.nytimes.com/services/xml/rss/nyt",
			Source:         SourceAPI,
			HTTPTimeout:    30 * time.Second,
			UserAgent:      "frontpage/1.0 (https://github.com/pders01/frontpage)",
			DefaultSection: "home",
		},
		Database: DatabaseConfig{
			Path:    filepath.Join(homeDir, ".frontpage", "state.db"),
			Timeout: 1 * time.Second,
		},
		UI: UIConfig{
			DefaultSort:  "default",
			FilterEngine: FilterSimple,
			Article: ArticleConfig{
				MaxAbstractLength: 120,
				WordWrapMaxWidth:  120,
				WordWrapMinWidth:  40,
			},
		},
		Content: ContentConfig{
			Extractor:   ExtractorPlaceholder,
			HTTPTimeout: 15 * time.Second,
		},
		Media: MediaConfig{
			DefaultOpener: getDefaultOpener(),
			ImageViewers:  defaultImageViewers(),
		},
		Keys: KeyConfig{
			Modifier: "ctrl",
		},
		Log: LogConfig{
			Level: "off",
			File:  filepath.Join(homeDir, ".frontpage", "frontpage.log"),
		},
	}
}

func getDefaultOpener() string {
	switch runtime.GOOS {
	case "darwin":
		return "open"
	case "linux":
		return "xdg-open"
	case "windows":
		return "start"
	default:
		return "open"
	}
}

func defaultImageViewers() []string {
	switch runtime.GOOS {
	case "darwin":
		return []string{"qlmanage", "open"}
	case "linux":
		return []string{"sxiv", "feh", "eog", "xdg-open"}
	default:
		return []string{}
	}
}

func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("api.key", cfg.API.Key)
	v.SetDefault("api.base_url", cfg.API.BaseURL)
	v.SetDefault("api.feed_base_url", cfg.API.FeedBaseURL)
	v.SetDefault("api.source", cfg.API.Source)
	v.SetDefault("api.http_timeout", cfg.API.HTTPTimeout)
	v.SetDefault("api.user_agent", cfg.API.UserAgent)
	v.SetDefault("api.default_section", cfg.API.DefaultSection)

	v.SetDefault("database.path", cfg.Database.Path)
	v.SetDefault("database.timeout", cfg.Database.Timeout)

	v.SetDefault("ui.default_sort", cfg.UI.DefaultSort)
	v.SetDefault("ui.filter_engine", cfg.UI.FilterEngine)
	v.SetDefault("ui.article.max_abstract_length", cfg.UI.Article.MaxAbstractLength)
	v.SetDefault("ui.article.word_wrap_max_width", cfg.UI.Article.WordWrapMaxWidth)
	v.SetDefault("ui.article.word_wrap_min_width", cfg.UI.Article.WordWrapMinWidth)

	v.SetDefault("content.extractor", cfg.Content.Extractor)
	v.SetDefault("content.http_timeout", cfg.Content.HTTPTimeout)
	v.SetDefault("content.allow_private_hosts", cfg.Content.AllowPrivateHosts)

	v.SetDefault("media.default_opener", cfg.Media.DefaultOpener)
	v.SetDefault("media.image_viewers", cfg.Media.ImageViewers)

	v.SetDefault("keys.modifier", cfg.Keys.Modifier)

	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.file", cfg.Log.File)
}

// Load reads .env files, the TOML config and FRONTPAGE_* environment
// variables, in increasing order of precedence for the latter two. An empty
// configPath searches ~/.config/frontpage and the working directory.
func Load(configPath string) (*Config, error) {
	if err := loadDotEnv(DotEnvFiles...); err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v, defaultConfig())

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		homeDir, _ := os.UserHomeDir()
		configDir := filepath.Join(homeDir, ".config", "frontpage")

		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(configDir)
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("FRONTPAGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv(append([]string{"api.key"}, APIKeyEnvVars...)...); err != nil {
		return nil, fmt.Errorf("binding api key env: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	config.API.Key = strings.TrimSpace(config.API.Key)
	expandPaths(&config)

	return &config, nil
}

// loadDotEnv loads each existing file without overriding variables that are
// already set in the environment.
func loadDotEnv(files ...string) error {
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("loading %s: %w", f, err)
		}
	}
	return nil
}

// expandPath expands ~ to home directory and converts to absolute path
func expandPath(path string) string {
	if path == "" || path == ":memory:" {
		return path
	}

	if len(path) >= 2 && path[:2] == "~/" {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path[2:])
	}

	if !filepath.IsAbs(path) {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
	}

	return path
}

func expandPaths(cfg *Config) {
	cfg.Database.Path = expandPath(cfg.Database.Path)
	cfg.Log.File = expandPath(cfg.Log.File)
}

// Save writes config as TOML. The API key is never written; it belongs in
// the environment or a .env file.
func Save(config *Config, path string) error {
	v := viper.New()

	v.Set("api", map[string]any{
		"base_url":        config.API.BaseURL,
		"feed_base_url":   config.API.FeedBaseURL,
		"source":          config.API.Source,
		"http_timeout":    config.API.HTTPTimeout.String(),
		"user_agent":      config.API.UserAgent,
		"default_section": config.API.DefaultSection,
	})
	v.Set("database", map[string]any{
		"path":    config.Database.Path,
		"timeout": config.Database.Timeout.String(),
	})
	v.Set("ui", map[string]any{
		"default_sort":  config.UI.DefaultSort,
		"filter_engine": config.UI.FilterEngine,
		"article": map[string]any{
			"max_abstract_length": config.UI.Article.MaxAbstractLength,
			"word_wrap_max_width": config.UI.Article.WordWrapMaxWidth,
			"word_wrap_min_width": config.UI.Article.WordWrapMinWidth,
		},
	})
	v.Set("content", map[string]any{
		"extractor":           config.Content.Extractor,
		"http_timeout":        config.Content.HTTPTimeout.String(),
		"allow_private_hosts": config.Content.AllowPrivateHosts,
	})
	v.Set("media", map[string]any{
		"default_opener": config.Media.DefaultOpener,
		"image_viewers":  config.Media.ImageViewers,
	})
	v.Set("keys", map[string]any{"modifier": config.Keys.Modifier})
	v.Set("log", map[string]any{"level": config.Log.Level, "file": config.Log.File})

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	return v.WriteConfigAs(path)
}

func GenerateDefaultConfig(path string) error {
	return Save(defaultConfig(), path)
}
