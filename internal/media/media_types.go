package media

import (
	_ "embed"
	"fmt"
	"net/url"
	"path"
	"runtime"
	"slices"
	"strings"

	"github.com/pders01/frontpage/internal/topstories"
	"github.com/pelletier/go-toml/v2"
)

//go:embed media_types.toml
var mediaTypesTOML []byte

type TypeConfig struct {
	Extensions  []string `toml:"extensions"`
	URLPatterns []string `toml:"url_patterns"`
}

type TypesConfig struct {
	Image     TypeConfig                `toml:"image"`
	Video     TypeConfig                `toml:"video"`
	Platforms map[string]PlatformConfig `toml:"platforms"`
}

type PlatformConfig struct {
	DefaultOpener string `toml:"default_opener"`
}

type TypeDetector struct {
	config *TypesConfig
}

func NewTypeDetector() (*TypeDetector, error) {
	var config TypesConfig
	if err := toml.Unmarshal(mediaTypesTOML, &config); err != nil {
		return nil, fmt.Errorf("parsing media_types.toml: %w", err)
	}
	return &TypeDetector{config: &config}, nil
}

// DetectType classifies a URL by its path extension, then by known hosts
// and paths.
func (d *TypeDetector) DetectType(rawURL string) Type {
	lower := strings.ToLower(strings.TrimSpace(rawURL))

	p := lower
	if u, err := url.Parse(lower); err == nil {
		p = u.Path
	}
	if ext := strings.TrimPrefix(path.Ext(p), "."); ext != "" {
		switch {
		case slices.Contains(d.config.Image.Extensions, ext):
			return TypeImage
		case slices.Contains(d.config.Video.Extensions, ext):
			return TypeVideo
		}
	}

	switch {
	case matchesPattern(lower, d.config.Video.URLPatterns):
		return TypeVideo
	case matchesPattern(lower, d.config.Image.URLPatterns):
		return TypeImage
	}
	return TypeUnknown
}

// DetectMedia trusts the upstream type field before looking at the URL.
func (d *TypeDetector) DetectMedia(m topstories.Media) Type {
	switch strings.ToLower(m.Type) {
	case "image", "photo":
		return TypeImage
	case "video":
		return TypeVideo
	}
	return d.DetectType(m.URL)
}

func (d *TypeDetector) GetDefaultOpener() string {
	if platformConfig, ok := d.config.Platforms[runtime.GOOS]; ok {
		return platformConfig.DefaultOpener
	}
	if fallback, ok := d.config.Platforms["fallback"]; ok {
		return fallback.DefaultOpener
	}
	return "open"
}

func matchesPattern(url string, patterns []string) bool {
	for _, pattern := range patterns {
		if strings.Contains(url, pattern) {
			return true
		}
	}
	return false
}
