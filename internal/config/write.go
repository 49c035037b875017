package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

const header = `# reel configuration
# Sources listed under [[catalog.sources]] replace the built-in catalog.
# Locators: asset:///path (relative to asset_root), file:///abs/path, http(s)://host/path

`

// WriteDefault writes Default() to path. An existing file is only replaced
// when force is set.
func WriteDefault(path string, force bool) error {
	return Default().SaveToFile(path, force)
}

// SaveToFile writes the configuration as TOML with a header comment.
func (c *Config) SaveToFile(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s: %w", path, ErrExists)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(header); err != nil {
		return fmt.Errorf("failed to write config header: %w", err)
	}
	if err := toml.NewEncoder(f).Encode(c); err != nil {
		return fmt.Errorf("failed to encode config to TOML: %w", err)
	}
	return f.Close()
}
