package prefs

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDarkTheme_DefaultWhenMissing(t *testing.T) {
	s := Open(t.TempDir())
	if !s.DarkTheme() {
		t.Error("DarkTheme() = false, want default true")
	}
}

func TestDarkTheme_DefaultWhenCorrupt(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, FileName), []byte("{oops"), 0o644)

	if !Open(dir).DarkTheme() {
		t.Error("DarkTheme() = false, want default true for corrupt file")
	}
}

func TestSetDarkTheme_Persists(t *testing.T) {
	dir := t.TempDir()
	s := Open(dir)

	if err := s.SetDarkTheme(false); err != nil {
		t.Fatalf("SetDarkTheme() error: %v", err)
	}

	// A fresh store over the same directory sees the value.
	if Open(dir).DarkTheme() {
		t.Error("DarkTheme() = true after SetDarkTheme(false)")
	}

	data, _ := os.ReadFile(filepath.Join(dir, FileName))
	if want := "{\n  \"is_dark_theme\": false\n}\n"; string(data) != want {
		t.Errorf("prefs file = %q, want %q", data, want)
	}
}

func TestSetDarkTheme_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	if err := Open(dir).SetDarkTheme(true); err != nil {
		t.Fatalf("SetDarkTheme() error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, FileName)); err != nil {
		t.Errorf("prefs file not created: %v", err)
	}
}

func TestToggleDarkTheme(t *testing.T) {
	s := Open(t.TempDir())

	got, err := s.ToggleDarkTheme()
	if err != nil {
		t.Fatal(err)
	}
	if got {
		t.Error("first toggle from default should give light theme")
	}

	got, _ = s.ToggleDarkTheme()
	if !got {
		t.Error("second toggle should give dark theme")
	}
}

func TestWatch_ReportsExternalChange(t *testing.T) {
	dir := t.TempDir()
	s := Open(dir)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan bool, 8)
	done := make(chan error, 1)
	go func() {
		done <- s.Watch(ctx, func(dark bool) { changes <- dark })
	}()

	// The watcher may not be registered yet, so keep writing until seen.
	other := Open(dir)
	deadline := time.After(3 * time.Second)
	for seen := false; !seen; {
		if err := other.SetDarkTheme(false); err != nil {
			t.Fatal(err)
		}
		select {
		case dark := <-changes:
			if dark {
				t.Error("onChange(true), want false")
			}
			seen = true
		case <-time.After(250 * time.Millisecond):
		case <-deadline:
			t.Fatal("no change reported")
		}
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch() returned %v, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}

func TestWatch_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	s := Open(dir)

	ctx, cancel := context.WithTimeout(context.Background(), 600*time.Millisecond)
	defer cancel()

	changes := make(chan bool, 8)
	go func() {
		time.Sleep(100 * time.Millisecond)
		os.WriteFile(filepath.Join(dir, "config.json"), []byte("{}"), 0o644)
	}()

	if err := s.Watch(ctx, func(dark bool) { changes <- dark }); err != nil {
		t.Fatal(err)
	}
	select {
	case <-changes:
		t.Error("onChange called for unrelated file")
	default:
	}
}
