package ui

import (
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func writeFiles(t *testing.T, files ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir for %s: %v", name, err)
		}
		if err := os.WriteFile(path, []byte("data"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}

func TestBrowserFileSelectionReturnsMessage(t *testing.T) {
	dir := writeFiles(t, "song.mp3")
	m := NewBrowser(dir)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected selection command")
	}

	msg, ok := cmd().(BrowserSelectedMsg)
	if !ok {
		t.Fatalf("expected BrowserSelectedMsg, got %T", cmd())
	}
	if want := filepath.Join(dir, "song.mp3"); msg.Path != want {
		t.Fatalf("expected %s, got %q", want, msg.Path)
	}
}

func TestBrowserPathEntryResolvesRelativePaths(t *testing.T) {
	dir := writeFiles(t)
	m := NewBrowser(dir)
	m.pathMode = true
	m.input.SetValue("sub/track.flac")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected path selection command")
	}

	msg, ok := cmd().(BrowserSelectedMsg)
	if !ok {
		t.Fatalf("expected BrowserSelectedMsg, got %T", cmd())
	}
	if want := filepath.Join(dir, "sub", "track.flac"); msg.Path != want {
		t.Fatalf("expected %s, got %q", want, msg.Path)
	}
}

func TestBrowserCancelReturnsMessage(t *testing.T) {
	m := NewBrowser(writeFiles(t))

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("expected cancel command")
	}
	if _, ok := cmd().(BrowserCancelledMsg); !ok {
		t.Fatalf("expected BrowserCancelledMsg, got %T", cmd())
	}
}

func TestBrowserListsNestedFilesAndPlaylists(t *testing.T) {
	dir := writeFiles(t, "a.mp3", "album/b.flac", "mix.m3u", "cover.jpg", ".hidden.mp3")
	m := NewBrowser(dir)

	got := map[string]bool{}
	for _, item := range m.list.Items() {
		if f, ok := item.(fileItem); ok {
			got[f.rel] = true
		}
	}
	for _, want := range []string{"a.mp3", filepath.Join("album", "b.flac"), "mix.m3u"} {
		if !got[want] {
			t.Fatalf("expected browser to include %s, got %v", want, got)
		}
	}
	if got["cover.jpg"] || got[".hidden.mp3"] {
		t.Fatalf("unexpected entries: %v", got)
	}
}

func TestBrowserMissingDirectory(t *testing.T) {
	m := NewBrowser(filepath.Join(t.TempDir(), "nope"))
	if m.Err() == nil {
		t.Fatal("expected error for missing directory")
	}
}
