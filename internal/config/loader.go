package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"loramgr/internal/common/fsutil"
)

// Well-known folder categories.
const (
	CategoryLoras       = "loras"
	CategoryCheckpoints = "checkpoints"
	CategoryUnet        = "unet"
	CategoryDiffusers   = "diffusers"
)

// PathMapping declares that Link is a symlinked directory pointing at Target.
type PathMapping struct {
	Target string `json:"target" yaml:"target" toml:"target"`
	Link   string `json:"link" yaml:"link" toml:"link"`
}

// Settings is the user-facing settings document.
// Zero values mean "unspecified"; LoadCategories never returns a nil FolderPaths.
type Settings struct {
	FolderPaths       map[string][]string `json:"folder_paths" yaml:"folder_paths" toml:"folder_paths"`
	ExampleImagesPath string              `json:"example_images_path" yaml:"example_images_path" toml:"example_images_path"`
	PathMappings      []PathMapping       `json:"path_mappings" yaml:"path_mappings" toml:"path_mappings"`
	// LinkCategories maps a path prefix to "lora" or "checkpoint" for link-only targets.
	LinkCategories map[string]string `json:"link_categories" yaml:"link_categories" toml:"link_categories"`
	DiscoverLinks  *bool             `json:"discover_links,omitempty" yaml:"discover_links,omitempty" toml:"discover_links,omitempty"`
}

// Paths returns a copy of the ordered path list for a category (nil if absent).
func (s Settings) Paths(category string) []string {
	ps, ok := s.FolderPaths[category]
	if !ok {
		return nil
	}
	return append([]string(nil), ps...)
}

// Categories returns the configured category names, sorted.
func (s Settings) Categories() []string {
	out := make([]string, 0, len(s.FolderPaths))
	for k := range s.FolderPaths {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// LinkDiscoveryEnabled reports whether symlinked directories under the roots
// should be discovered. Defaults to true.
func (s Settings) LinkDiscoveryEnabled() bool {
	return s.DiscoverLinks == nil || *s.DiscoverLinks
}

// unsupportedFormatError signals a settings file with an unknown extension.
type unsupportedFormatError struct{ ext string }

func (e unsupportedFormatError) Error() string { return "unsupported settings extension: " + e.ext }

// IsUnsupportedFormat reports whether err was caused by an unknown file extension.
func IsUnsupportedFormat(err error) bool {
	var ue unsupportedFormatError
	return errors.As(err, &ue)
}

// Load reads a settings file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Settings, error) {
	var s Settings
	if path == "" {
		return s, fmt.Errorf("empty settings path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return s, fmt.Errorf("read settings: %w", err)
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &s); err != nil {
			return s, fmt.Errorf("parse yaml settings: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(b, &s); err != nil {
			return s, fmt.Errorf("parse json settings: %w", err)
		}
	case ".toml":
		if err := toml.Unmarshal(b, &s); err != nil {
			return s, fmt.Errorf("parse toml settings: %w", err)
		}
	default:
		return s, unsupportedFormatError{ext: ext}
	}
	s.expandHome()
	return s, nil
}

// LoadCategories is the fail-soft variant of Load. A missing or malformed
// document yields empty categories and a warning; it never returns an error.
func LoadCategories(path string, log zerolog.Logger) Settings {
	s, err := Load(path)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("settings unavailable, continuing with no model roots")
		return Settings{FolderPaths: map[string][]string{}}
	}
	if s.FolderPaths == nil {
		s.FolderPaths = map[string][]string{}
	}
	log.Debug().Str("path", path).Int("categories", len(s.FolderPaths)).Msg("settings loaded")
	return s
}

func (s *Settings) expandHome() {
	expand := func(p string) string {
		if e, err := fsutil.ExpandHome(p); err == nil {
			return e
		}
		return p
	}
	for k, ps := range s.FolderPaths {
		for i := range ps {
			ps[i] = expand(ps[i])
		}
		s.FolderPaths[k] = ps
	}
	for i := range s.PathMappings {
		s.PathMappings[i].Target = expand(s.PathMappings[i].Target)
		s.PathMappings[i].Link = expand(s.PathMappings[i].Link)
	}
	s.ExampleImagesPath = expand(s.ExampleImagesPath)
}
