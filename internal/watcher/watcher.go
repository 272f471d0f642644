// Package watcher reports contracts dropped into a directory once they
// have stopped changing.
package watcher

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/clausecheck/internal/logger"
	"github.com/custodia-labs/clausecheck/internal/normalisers"
)

// DefaultDebounce is how long a file must be quiet before it is handled.
const DefaultDebounce = 500 * time.Millisecond

// Handler is called once per settled file, from the Run goroutine.
type Handler func(ctx context.Context, path string)

// Watcher watches one directory, non-recursively.
type Watcher struct {
	dir      string
	debounce time.Duration
	fsw      *fsnotify.Watcher

	// pending maps a path to its last event time.
	pending map[string]time.Time
	// hashes suppresses repeat handling of unchanged content.
	hashes map[string]string
}

// New starts watching dir. A zero debounce uses DefaultDebounce.
func New(dir string, debounce time.Duration) (*Watcher, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("watch %s: not a directory", dir)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	return &Watcher{
		dir:      dir,
		debounce: debounce,
		fsw:      fsw,
		pending:  make(map[string]time.Time),
		hashes:   make(map[string]string),
	}, nil
}

// Accepts reports whether path names a contract the checker can read.
// Hidden files and editor lock files are skipped.
func Accepts(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") || strings.HasPrefix(base, "~$") {
		return false
	}
	return normalisers.MIMETypeForExtension(filepath.Ext(base)) != ""
}

// Run delivers settled files to handle until ctx is cancelled. Files are
// handled one at a time. The watcher is closed on return.
func (w *Watcher) Run(ctx context.Context, handle Handler) error {
	defer w.fsw.Close()

	ticker := time.NewTicker(w.debounce / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.observe(event, time.Now())

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error: %v", err)

		case now := <-ticker.C:
			for _, path := range w.settled(now) {
				if ctx.Err() != nil {
					return nil
				}
				if w.changed(path) {
					handle(ctx, path)
				}
			}
		}
	}
}

func (w *Watcher) observe(event fsnotify.Event, at time.Time) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
			delete(w.pending, event.Name)
			delete(w.hashes, event.Name)
		}
		return
	}
	if !Accepts(event.Name) {
		return
	}
	w.pending[event.Name] = at
	logger.Debug("Change detected: %s (%s)", event.Name, event.Op)
}

// settled removes and returns, sorted, the paths quiet for the debounce.
func (w *Watcher) settled(now time.Time) []string {
	var ready []string
	for path, last := range w.pending {
		if now.Sub(last) >= w.debounce {
			ready = append(ready, path)
			delete(w.pending, path)
		}
	}
	sort.Strings(ready)
	return ready
}

// changed reports whether path is a regular file whose content differs
// from the last handled version.
func (w *Watcher) changed(path string) bool {
	sum, err := hashFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logger.Warn("Skipping %s: %v", path, err)
		}
		return false
	}
	if w.hashes[path] == sum {
		return false
	}
	w.hashes[path] = sum
	return true
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", err
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("not a regular file")
	}

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
