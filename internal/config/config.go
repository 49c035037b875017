// Package config loads reel's layered TOML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/llehouerou/reel/internal/catalog"
	"github.com/llehouerou/reel/internal/icons"
	"github.com/llehouerou/reel/internal/playback"
)

const (
	appName        = "reel"
	configFileName = "config.toml"

	// EnvConfig names an explicit config file, below --config in priority.
	EnvConfig = "REEL_CONFIG"
)

// Log formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

type Config struct {
	AssetRoot string         `koanf:"asset_root" toml:"asset_root"` // asset:/// locators resolve here
	Icons     string         `koanf:"icons" toml:"icons"`           // "nerd", "unicode" or "none"
	Catalog   CatalogConfig  `koanf:"catalog" toml:"catalog"`
	Playback  PlaybackConfig `koanf:"playback" toml:"playback"`
	Log       LogConfig      `koanf:"log" toml:"log"`
	State     StateConfig    `koanf:"state" toml:"state"`
}

// CatalogConfig lists the selectable sources. No sources means the
// built-in catalog.
type CatalogConfig struct {
	Playlist *bool          `koanf:"playlist" toml:"playlist"` // offer the aggregate source (default: true)
	Sources  []SourceConfig `koanf:"sources" toml:"sources"`
}

// SourceConfig is one [[catalog.sources]] table.
type SourceConfig struct {
	ID          string `koanf:"id" toml:"id"`
	Locator     string `koanf:"locator" toml:"locator"`
	Title       string `koanf:"title" toml:"title,omitempty"`
	Subtitle    string `koanf:"subtitle" toml:"subtitle,omitempty"`
	Description string `koanf:"description" toml:"description,omitempty"`
}

// PlaybackConfig holds the state a first run starts from.
type PlaybackConfig struct {
	AutoPlay      *bool  `koanf:"auto_play" toml:"auto_play"`           // default: true
	DefaultSource string `koanf:"default_source" toml:"default_source"` // default: first source
	Notify        *bool  `koanf:"notify" toml:"notify"`                 // desktop notifications (default: false)
}

// LogConfig controls the log file.
type LogConfig struct {
	Level  string `koanf:"level" toml:"level"`   // "debug", "info", "warn" or "error"
	Format string `koanf:"format" toml:"format"` // "text" or "json"
	File   string `koanf:"file" toml:"file"`     // empty means reel.log in the xdg state dir
}

// StateConfig controls persistence of the playback state between runs.
type StateConfig struct {
	Persist *bool  `koanf:"persist" toml:"persist"` // default: true
	Path    string `koanf:"path" toml:"path"`       // empty means reel.db in the xdg data dir
}

// Default returns the configuration written by WriteDefault: every default
// spelled out, including the built-in sources.
func Default() *Config {
	return &Config{
		AssetRoot: filepath.Join(xdg.DataHome, appName, "assets"),
		Icons:     string(icons.StyleNone),
		Catalog: CatalogConfig{
			Playlist: lo.ToPtr(true),
			Sources: lo.Map(catalog.DefaultEntries(), func(e catalog.Entry, _ int) SourceConfig {
				return SourceConfig{
					ID:          string(e.ID),
					Locator:     string(e.Locator),
					Title:       e.Title,
					Subtitle:    e.Subtitle,
					Description: e.Description,
				}
			}),
		},
		Playback: PlaybackConfig{AutoPlay: lo.ToPtr(true), Notify: lo.ToPtr(false)},
		Log:      LogConfig{Level: "info", Format: FormatText},
		State:    StateConfig{Persist: lo.ToPtr(true)},
	}
}

// Load reads the xdg config file, then ./config.toml, then explicit (or
// $REEL_CONFIG when explicit is empty). Later files win. A missing
// explicit file is an error; the others are optional.
func Load(explicit string) (*Config, error) {
	if explicit == "" {
		explicit = os.Getenv(EnvConfig)
	}
	paths := getConfigPaths()
	if explicit != "" {
		explicit = expandPath(explicit)
		if _, err := os.Stat(explicit); err != nil {
			return nil, fmt.Errorf("config %s: %w", explicit, err)
		}
		paths = append(paths, explicit)
	}
	return LoadFiles(paths...)
}

// LoadFiles layers the existing files among paths over the defaults.
func LoadFiles(paths ...string) (*Config, error) {
	k := koanf.New(".")

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
		}
	}

	cfg := &Config{
		AssetRoot: filepath.Join(xdg.DataHome, appName, "assets"),
		Icons:     string(icons.StyleNone),
		Log:       LogConfig{Level: "info", Format: FormatText},
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	cfg.AssetRoot = expandPath(cfg.AssetRoot)
	cfg.Log.File = expandPath(cfg.Log.File)
	cfg.State.Path = expandPath(cfg.State.Path)
	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))
	cfg.Log.Format = strings.ToLower(strings.TrimSpace(cfg.Log.Format))
	cfg.Icons = strings.ToLower(strings.TrimSpace(cfg.Icons))

	return cfg, nil
}

// Path returns the file an explicit path, $REEL_CONFIG or the xdg default
// designates, in that order.
func Path(explicit string) string {
	if explicit != "" {
		return expandPath(explicit)
	}
	if env := os.Getenv(EnvConfig); env != "" {
		return expandPath(env)
	}
	return filepath.Join(xdg.ConfigHome, appName, configFileName)
}

func getConfigPaths() []string {
	return []string{
		// 1. $XDG_CONFIG_HOME/reel/config.toml
		filepath.Join(xdg.ConfigHome, appName, configFileName),
		// 2. ./config.toml (pwd)
		configFileName,
	}
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// Validate checks the log settings and that the catalog can be built.
func (c *Config) Validate() error {
	if c.Log.Level != "" {
		if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
			return fmt.Errorf("log.level: %w", err)
		}
	}
	if !icons.Valid(c.Icons) {
		return fmt.Errorf("icons: unknown style %q", c.Icons)
	}
	switch c.Log.Format {
	case "", FormatText, FormatJSON:
	default:
		return fmt.Errorf("log.format: unknown format %q", c.Log.Format)
	}
	cat, err := c.BuildCatalog()
	if err != nil {
		return err
	}
	if c.Playback.DefaultSource != "" && !cat.Has(catalog.SourceID(c.Playback.DefaultSource)) {
		return fmt.Errorf("playback.default_source: %w", &catalog.UnknownSourceError{ID: catalog.SourceID(c.Playback.DefaultSource)})
	}
	return nil
}

// BuildCatalog turns the configured sources into a catalog, falling back
// to the built-in entries when none are configured.
func (c *Config) BuildCatalog() (*catalog.Catalog, error) {
	entries := catalog.DefaultEntries()
	if len(c.Catalog.Sources) > 0 {
		entries = lo.Map(c.Catalog.Sources, func(s SourceConfig, _ int) catalog.Entry {
			return catalog.Entry{
				ID:          catalog.SourceID(s.ID),
				Locator:     catalog.Locator(strings.TrimSpace(s.Locator)),
				Title:       s.Title,
				Subtitle:    s.Subtitle,
				Description: s.Description,
			}
		})
	}
	cat, err := catalog.New(entries, catalog.WithPlaylist(c.PlaylistEnabled()))
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	return cat, nil
}

// InitialState is the state a run without saved state starts from.
func (c *Config) InitialState(cat *catalog.Catalog) playback.PlaybackState {
	src := cat.First()
	if id := catalog.SourceID(c.Playback.DefaultSource); id != "" && cat.Has(id) {
		src = id
	}
	state := playback.NewPlaybackState(src)
	state.AutoPlay = c.AutoPlay()
	return state
}

// PlaylistEnabled returns catalog.playlist with its default applied.
func (c *Config) PlaylistEnabled() bool { return lo.FromPtrOr(c.Catalog.Playlist, true) }

// AutoPlay returns playback.auto_play with its default applied.
func (c *Config) AutoPlay() bool { return lo.FromPtrOr(c.Playback.AutoPlay, true) }

// NotifyEnabled returns playback.notify with its default applied.
func (c *Config) NotifyEnabled() bool { return lo.FromPtrOr(c.Playback.Notify, false) }

// PersistState returns state.persist with its default applied.
func (c *Config) PersistState() bool { return lo.FromPtrOr(c.State.Persist, true) }

// ErrExists is returned by WriteDefault when the file is already there.
var ErrExists = errors.New("config file already exists")
