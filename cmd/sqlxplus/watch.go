package main

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/syssam/sqlxplus/compiler/gen"
)

// debounce is the quiet period after the last change before regenerating.
const debounce = 200 * time.Millisecond

// watch runs regenerate whenever a Go source file under root changes, until
// ctx is done. Generated files are ignored.
func watch(ctx context.Context, cfg *gen.Config, root string, regenerate func(context.Context) error) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	dirs, err := watchDirs(root)
	if err != nil {
		return err
	}
	for _, d := range dirs {
		if err := w.Add(d); err != nil {
			return err
		}
	}
	cfg.Logger.InfoContext(ctx, "watching for changes", "root", root, "dirs", len(dirs))

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() && !skipDir(info.Name()) {
					if err := w.Add(ev.Name); err != nil {
						cfg.Logger.WarnContext(ctx, "watch directory", "dir", ev.Name, "error", err)
					}
				}
			}
			if !relevant(ev, cfg.Filename) {
				continue
			}
			cfg.Logger.DebugContext(ctx, "change detected", "file", ev.Name, "op", ev.Op.String())
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			fire = timer.C
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			cfg.Logger.ErrorContext(ctx, "watch error", "error", err)
		case <-fire:
			fire = nil
			if err := regenerate(ctx); err != nil {
				cfg.Logger.ErrorContext(ctx, "generation failed", "error", err)
			}
		}
	}
}

// watchDirs returns root and its subdirectories, skipping vendored, hidden
// and testdata directories.
func watchDirs(root string) ([]string, error) {
	var dirs []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && skipDir(d.Name()) {
			return filepath.SkipDir
		}
		dirs = append(dirs, path)
		return nil
	})
	return dirs, err
}

func skipDir(name string) bool {
	switch name {
	case "vendor", "testdata", "node_modules":
		return true
	}
	return strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")
}

// relevant reports whether ev changes a non-test Go source file other than
// the generated one.
func relevant(ev fsnotify.Event, generated string) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return false
	}
	name := filepath.Base(ev.Name)
	return strings.HasSuffix(name, ".go") && !strings.HasSuffix(name, "_test.go") && name != generated
}
