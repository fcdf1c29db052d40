// Package prefs persists small user preferences, currently only the theme.
//
// Preferences live in prayer_time_prefs.json next to the config file and are
// independent of it: a toggle from the TUI never rewrites config.json.
package prefs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// FileName is the preferences file name inside the config directory.
const FileName = "prayer_time_prefs.json"

// DefaultDarkTheme applies when no preference has been stored.
const DefaultDarkTheme = true

// debounce collapses the burst of events an editor save produces.
const debounce = 100 * time.Millisecond

type file struct {
	DarkTheme *bool `json:"is_dark_theme,omitempty"`
}

// Store reads and writes the preferences file.
type Store struct {
	path string
	mu   sync.Mutex
}

// Open returns a Store for the preferences file inside dir.
func Open(dir string) *Store {
	return &Store{path: filepath.Join(dir, FileName)}
}

// Path returns the preferences file path.
func (s *Store) Path() string {
	return s.path
}

// DarkTheme reports the stored theme. A missing or unreadable file yields
// DefaultDarkTheme.
func (s *Store) DarkTheme() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.read()
	if err != nil {
		log.Debug().Err(err).Str("path", s.path).Msg("prefs unreadable, using default theme")
		return DefaultDarkTheme
	}
	if f.DarkTheme == nil {
		return DefaultDarkTheme
	}
	return *f.DarkTheme
}

// SetDarkTheme stores the theme.
func (s *Store) SetDarkTheme(dark bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.read()
	if err != nil {
		f = file{}
	}
	f.DarkTheme = &dark
	return s.write(f)
}

// ToggleDarkTheme flips the stored theme and returns the new value.
func (s *Store) ToggleDarkTheme() (bool, error) {
	dark := !s.DarkTheme()
	if err := s.SetDarkTheme(dark); err != nil {
		return !dark, err
	}
	return dark, nil
}

func (s *Store) read() (file, error) {
	var f file
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return f, nil
	}
	if err != nil {
		return f, err
	}
	if err := json.Unmarshal(data, &f); err != nil {
		return file{}, fmt.Errorf("invalid prefs file %s: %w", s.path, err)
	}
	return f, nil
}

func (s *Store) write(f file) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("cannot create prefs directory: %w", err)
	}
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	// Write then rename so a concurrent watcher never reads half a file.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write prefs: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to write prefs: %w", err)
	}
	return nil
}

// Watch calls onChange with the stored theme every time the preferences file
// changes on disk, until ctx is done. The directory is watched rather than the
// file so that rename-based saves are seen.
func (s *Store) Watch(ctx context.Context, onChange func(dark bool)) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create prefs directory: %w", err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != FileName {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, func() {
				if ctx.Err() != nil {
					return
				}
				onChange(s.DarkTheme())
			})

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn().Err(err).Str("dir", dir).Msg("prefs watcher error")
		}
	}
}
