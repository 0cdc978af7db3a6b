package engine

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
)

var errUndecodable = errors.New("undecodable stream")

// fakeSink records what the worker asks of the output device.
type fakeSink struct {
	mu        sync.Mutex
	loaded    []string
	current   string
	paused    bool
	exhausted bool
	stops     int
	volume    float64
	closed    bool

	failLoad  map[string]bool
	panicLoad map[string]bool
	pauseErrs int // number of upcoming Pause calls that fail
}

func newFakeSink() *fakeSink {
	return &fakeSink{
		failLoad:  map[string]bool{},
		panicLoad: map[string]bool{},
	}
}

func (s *fakeSink) Load(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loaded = append(s.loaded, path)
	if s.panicLoad[filepath.Base(path)] {
		panic("device gone")
	}
	if s.failLoad[filepath.Base(path)] {
		return errUndecodable
	}
	s.current = path
	s.paused = false
	s.exhausted = false
	s.volume = 1 // a fresh voice starts at full volume
	return nil
}

func (s *fakeSink) Pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pauseErrs > 0 {
		s.pauseErrs--
		return errors.New("device reclaimed")
	}
	s.paused = true
	return nil
}

func (s *fakeSink) Resume() {
	s.mu.Lock()
	s.paused = false
	s.mu.Unlock()
}

func (s *fakeSink) Stop() {
	s.mu.Lock()
	s.stops++
	s.current = ""
	s.mu.Unlock()
}

func (s *fakeSink) Exhausted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current != "" && s.exhausted
}

func (s *fakeSink) SetVolume(v float64) {
	s.mu.Lock()
	s.volume = v
	s.mu.Unlock()
}

func (s *fakeSink) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

// finish marks the loaded track as played to its end.
func (s *fakeSink) finish() {
	s.mu.Lock()
	s.exhausted = true
	s.mu.Unlock()
}

func (s *fakeSink) snapshot() (loaded []string, current string, paused bool, volume float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.loaded...), s.current, s.paused, s.volume
}

// fakeClock is a manually advanced clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// touch creates an empty file so admission accepts it.
func touch(t *testing.T, dir, name string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))
	return p
}

const (
	waitFor = 2 * time.Second
	poll    = time.Millisecond
)

func newTestEngine(t *testing.T, sink *fakeSink, clock *fakeClock, opts ...Option) *Engine {
	t.Helper()
	opts = append([]Option{WithTick(time.Millisecond), WithClock(clock.Now)}, opts...)
	e := New(sink, opts...)
	t.Cleanup(e.Close)
	return e
}

func requirePlaying(t *testing.T, e *Engine, path string) {
	t.Helper()
	require.Eventually(t, func() bool {
		p, ok := e.Playing()
		return ok && p.Path == path && p.Playing
	}, waitFor, poll, "expected %s to be playing", path)
}

func requireState(t *testing.T, e *Engine, want State) {
	t.Helper()
	require.Eventually(t, func() bool {
		return e.State() == want
	}, waitFor, poll, "expected state %s", want)
}

func (s *fakeSink) failPauses(n int) {
	s.mu.Lock()
	s.pauseErrs = n
	s.mu.Unlock()
}
