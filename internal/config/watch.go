package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/samber/lo"
)

// reloadDelay coalesces the bursts of events editors produce on save.
const reloadDelay = 150 * time.Millisecond

// ErrNothingToWatch is returned by Watch when none of the layered files has
// an existing parent directory.
var ErrNothingToWatch = errors.New("no config directory to watch")

// Files returns the absolute paths Load(explicit) layers, lowest priority
// first. Files that do not exist are included.
func Files(explicit string) ([]string, error) {
	if explicit == "" {
		explicit = os.Getenv(EnvConfig)
	}
	paths := getConfigPaths()
	if explicit != "" {
		paths = append(paths, expandPath(explicit))
	}
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, err
		}
		out = append(out, abs)
	}
	return lo.Uniq(out), nil
}

// Watch reloads the configuration whenever one of the files Load(explicit)
// layers changes, and hands the result to onChange until ctx is done.
// Reloads go through Load(explicit) so the layer priority is the one the
// program started with. Parent directories are watched so that editors
// replacing a file, or a file created after startup, are noticed.
func Watch(ctx context.Context, explicit string, onChange func(*Config, error)) error {
	files, err := Files(explicit)
	if err != nil {
		return err
	}
	watched := make(map[string]struct{}, len(files))
	for _, f := range files {
		watched[f] = struct{}{}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	dirs := lo.Uniq(lo.Map(files, func(f string, _ int) string { return filepath.Dir(f) }))
	added := 0
	for _, dir := range dirs {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			watcher.Close()
			return err
		}
		added++
	}
	if added == 0 {
		watcher.Close()
		return ErrNothingToWatch
	}

	go func() {
		defer watcher.Close()

		var reload <-chan time.Time
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if _, ok := watched[filepath.Clean(event.Name)]; !ok {
					continue
				}
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
					event.Has(fsnotify.Rename) || event.Has(fsnotify.Remove) {
					reload = time.After(reloadDelay)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				onChange(nil, err)
			case <-reload:
				reload = nil
				cfg, err := Load(explicit)
				if err == nil {
					err = cfg.Validate()
				}
				if err != nil {
					onChange(nil, err)
					continue
				}
				onChange(cfg, nil)
			}
		}
	}()
	return nil
}
