package ui

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/olivier-w/climpd/internal/engine"
	"github.com/olivier-w/climpd/internal/track"
)

type fakeController struct {
	mu       sync.Mutex
	calls    []string
	enqueued []string
	volume   float64
	status   engine.Status
	err      error
}

func (f *fakeController) record(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
	return f.err
}

func (f *fakeController) EnqueueAll(ctx context.Context, paths []string) (int, error) {
	if err := f.record("enqueue"); err != nil {
		return 0, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.enqueued = append(f.enqueued, paths...)
	return len(paths), nil
}

func (f *fakeController) TogglePause() (bool, error) { return false, f.record("toggle") }
func (f *fakeController) Skip() error                { return f.record("skip") }
func (f *fakeController) Stop() error                { return f.record("stop") }

func (f *fakeController) SetVolume(v float64) error {
	if err := f.record("volume"); err != nil {
		return err
	}
	f.mu.Lock()
	f.volume = min(max(v, 0), 1)
	f.mu.Unlock()
	return nil
}

func (f *fakeController) Volume() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.volume
}

func (f *fakeController) Status() engine.Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	st := f.status
	st.Volume = f.volume
	return st
}

func press(t *testing.T, m Model, k tea.KeyMsg) Model {
	t.Helper()
	next, cmd := m.Update(k)
	if cmd != nil {
		if msg := cmd(); msg != nil {
			next, _ = next.Update(msg)
		}
	}
	return next.(Model)
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestKeysDriveController(t *testing.T) {
	ctl := &fakeController{volume: 0.5}
	m := New(ctl, t.TempDir())

	m = press(t, m, tea.KeyMsg{Type: tea.KeySpace})
	m = press(t, m, runes("n"))
	m = press(t, m, runes("x"))
	m = press(t, m, runes("+"))
	_ = press(t, m, runes("-"))

	want := []string{"toggle", "skip", "stop", "volume", "volume"}
	if strings.Join(ctl.calls, ",") != strings.Join(want, ",") {
		t.Fatalf("calls = %v, want %v", ctl.calls, want)
	}
	if ctl.volume < 0.499 || ctl.volume > 0.501 {
		t.Fatalf("expected volume back at 0.5, got %v", ctl.volume)
	}
}

func TestClosedEngineQuits(t *testing.T) {
	ctl := &fakeController{err: engine.ErrClosed}
	m := New(ctl, t.TempDir())

	m = press(t, m, runes("n"))
	if !m.quitting {
		t.Fatal("expected model to quit once the engine is closed")
	}
}

func TestBrowserSelectionEnqueues(t *testing.T) {
	dir := writeFiles(t, "song.mp3")
	ctl := &fakeController{volume: 1}
	m := New(ctl, dir)

	m = press(t, m, runes("a"))
	if m.browser == nil {
		t.Fatal("expected browser to open")
	}

	next, cmd := m.Update(BrowserSelectedMsg{Path: "/music/song.mp3"})
	m = next.(Model)
	if m.browser != nil {
		t.Fatal("expected browser to close on selection")
	}
	if m.adding != 1 {
		t.Fatalf("expected one pending add, got %d", m.adding)
	}

	next, _ = m.Update(cmd())
	m = next.(Model)
	if m.adding != 0 || m.message != "added 1 track" {
		t.Fatalf("unexpected state after add: adding=%d message=%q", m.adding, m.message)
	}
	if len(ctl.enqueued) != 1 || ctl.enqueued[0] != "/music/song.mp3" {
		t.Fatalf("unexpected enqueued paths: %v", ctl.enqueued)
	}
}

func TestTickRefreshesStatusAndSpringsVolume(t *testing.T) {
	ctl := &fakeController{volume: 0}
	m := New(ctl, t.TempDir())

	ctl.volume = 1
	ctl.status = engine.Status{
		State: engine.StatePlaying,
		Playing: &track.Track{
			Path:       "/music/a.mp3",
			Properties: track.Properties{Title: "Song A", Artist: "Band", Duration: 10 * time.Second},
			Position:   4 * time.Second,
			Playing:    true,
		},
		Queue: []track.Track{{Path: "/music/b.mp3"}},
	}

	for i := 0; i < 50; i++ {
		next, _ := m.Update(tickMsg(time.Now()))
		m = next.(Model)
	}
	if m.status.State != engine.StatePlaying {
		t.Fatalf("expected playing status, got %s", m.status.State)
	}
	if m.volPos < 0.95 || m.volPos > 1.05 {
		t.Fatalf("expected gauge to settle near 1, got %v", m.volPos)
	}

	view := m.View()
	for _, want := range []string{"Song A", "Band", "0:04", "-0:06", "up next (1)", "b", "vol 100%"} {
		if !strings.Contains(view, want) {
			t.Fatalf("expected view to contain %q:\n%s", want, view)
		}
	}
}

func TestRenderVolumeGauge(t *testing.T) {
	if got := renderVolumeGauge(0.5, 10); got != "▮▮▮▮▮▯▯▯▯▯" {
		t.Fatalf("unexpected gauge %q", got)
	}
	if got := renderVolumeGauge(2, 4); got != "▮▮▮▮" {
		t.Fatalf("unexpected gauge %q", got)
	}
}
