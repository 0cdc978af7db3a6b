// Package engine runs the background playback engine: a single worker
// goroutine that owns the output device, drains a command queue, advances
// through pending tracks and publishes snapshots for concurrent readers.
package engine

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"

	"github.com/olivier-w/climpd/internal/media"
	"github.com/olivier-w/climpd/internal/queue"
	"github.com/olivier-w/climpd/internal/track"
)

// Errors
var (
	ErrClosed           = errors.New("playback engine closed")
	ErrWorkerTerminated = errors.New("playback worker terminated")
)

const (
	// DefaultTick bounds how long the worker waits for a command before it
	// checks for track completion on its own. Lower values shorten track
	// transitions at the cost of idle wakeups.
	DefaultTick            = 10 * time.Millisecond
	DefaultMetadataTimeout = 2 * time.Second
)

// Sink is the audio output device. Only the worker goroutine calls it.
type Sink interface {
	// Load opens path and starts producing audio from it, replacing
	// whatever was loaded before.
	Load(path string) error
	Pause() error
	Resume()
	// Stop discards the remaining audio of the loaded track.
	Stop()
	// Exhausted reports whether the loaded track has played to its end.
	Exhausted() bool
	SetVolume(v float64)
	Close() error
}

// MetadataProvider extracts track properties from a path.
type MetadataProvider interface {
	Extract(ctx context.Context, path string) (track.Properties, error)
}

// MetadataFunc adapts a function to MetadataProvider.
type MetadataFunc func(ctx context.Context, path string) (track.Properties, error)

// Extract calls f.
func (f MetadataFunc) Extract(ctx context.Context, path string) (track.Properties, error) {
	return f(ctx, path)
}

// Status is an aggregate view of the engine.
type Status struct {
	State   State
	Playing *track.Track
	Queue   []track.Track
	Volume  float64
}

type options struct {
	tick        time.Duration
	now         func() time.Time
	meta        MetadataProvider
	metaTimeout time.Duration
	volume      float64
}

// Option configures an Engine.
type Option func(*options)

// WithTick sets the worker's bounded wait.
func WithTick(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.tick = d
		}
	}
}

// WithClock replaces time.Now for elapsed-time accounting.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithMetadata sets the provider consulted on enqueue.
func WithMetadata(p MetadataProvider) Option {
	return func(o *options) { o.meta = p }
}

// WithMetadataTimeout bounds every metadata extraction.
func WithMetadataTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.metaTimeout = d
		}
	}
}

// WithVolume sets the initial volume.
func WithVolume(v float64) Option {
	return func(o *options) { o.volume = clampVolume(v) }
}

// Engine is the caller-facing side of the playback worker. All methods are
// safe for concurrent use.
type Engine struct {
	actions     *actionChannel
	pub         *publisher
	now         func() time.Time
	meta        MetadataProvider
	metaTimeout time.Duration
	done        chan struct{}

	mu     sync.Mutex
	volume float64
}

// New starts a worker that owns sink and returns its Engine.
func New(sink Sink, opts ...Option) *Engine {
	o := options{
		tick:        DefaultTick,
		now:         time.Now,
		metaTimeout: DefaultMetadataTimeout,
		volume:      1,
	}
	for _, opt := range opts {
		opt(&o)
	}

	e := &Engine{
		actions:     newActionChannel(),
		pub:         &publisher{},
		now:         o.now,
		meta:        o.meta,
		metaTimeout: o.metaTimeout,
		done:        make(chan struct{}),
		volume:      o.volume,
	}
	e.pub.store(snapshot{queue: []track.Track{}})

	w := &worker{
		sink:    sink,
		actions: e.actions,
		pub:     e.pub,
		tick:    o.tick,
		now:     o.now,
		pending: queue.New(nil),
		volume:  o.volume,
	}
	go w.run(e.done)

	return e
}

// Playable reports whether path names an existing file in a supported format.
func Playable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	return media.IsSupportedExt(filepath.Ext(path))
}

// Enqueue admits path to the queue. It returns false without touching the
// queue when the path is not playable. Metadata extraction failures leave
// the track with empty properties. The only error is a closed engine.
func (e *Engine) Enqueue(ctx context.Context, path string) (bool, error) {
	if err := e.actions.closed(); err != nil {
		return false, err
	}
	if !Playable(path) {
		zlog.Debug().Str("path", path).Msg("enqueue rejected")
		return false, nil
	}

	t := track.Track{
		ID:         uuid.NewString(),
		Path:       path,
		Properties: e.extract(ctx, path),
	}
	if err := e.actions.send(Enqueue{Track: t}); err != nil {
		return false, err
	}
	return true, nil
}

// EnqueueAll enqueues paths in order, expanding playlist files into their
// playable entries. It returns how many tracks were admitted.
func (e *Engine) EnqueueAll(ctx context.Context, paths []string) (int, error) {
	added := 0
	for _, p := range media.ExpandPaths(paths) {
		if err := ctx.Err(); err != nil {
			return added, err
		}
		ok, err := e.Enqueue(ctx, p)
		if err != nil {
			return added, err
		}
		if ok {
			added++
		}
	}
	return added, nil
}

func (e *Engine) extract(ctx context.Context, path string) track.Properties {
	if e.meta == nil {
		return track.Properties{}
	}

	ctx, cancel := context.WithTimeout(ctx, e.metaTimeout)
	defer cancel()

	type result struct {
		props track.Properties
		err   error
	}
	ch := make(chan result, 1)
	go func() {
		p, err := e.meta.Extract(ctx, path)
		ch <- result{props: p, err: err}
	}()

	select {
	case r := <-ch:
		if r.err != nil {
			zlog.Debug().Err(r.err).Str("path", path).Msg("metadata unavailable")
			return track.Properties{}
		}
		return r.props
	case <-ctx.Done():
		zlog.Warn().Str("path", path).Dur("timeout", e.metaTimeout).Msg("metadata extraction timed out")
		return track.Properties{}
	}
}

// Pause holds the active track.
func (e *Engine) Pause() error { return e.actions.send(Pause{}) }

// Resume continues a paused track.
func (e *Engine) Resume() error { return e.actions.send(Resume{}) }

// Skip drops the active track and moves to the next pending one.
func (e *Engine) Skip() error { return e.actions.send(Skip{}) }

// Stop clears the queue and the active track.
func (e *Engine) Stop() error { return e.actions.send(Stop{}) }

// SetVolume clamps v to [0, 1] and applies it to the output device.
func (e *Engine) SetVolume(v float64) error {
	v = clampVolume(v)
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.actions.send(SetVolume{Volume: v}); err != nil {
		return err
	}
	e.volume = v
	return nil
}

// Volume returns the last accepted volume.
func (e *Engine) Volume() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.volume
}

// TogglePause resumes when nothing is playing or the active track is paused,
// and pauses otherwise. It returns the intended playing flag.
func (e *Engine) TogglePause() (bool, error) {
	t, ok := e.Playing()
	if !ok || !t.Playing {
		return true, e.Resume()
	}
	return false, e.Pause()
}

// Queue returns the pending tracks, excluding the active one.
func (e *Engine) Queue() []track.Track {
	return track.CloneAll(e.pub.load().queue)
}

// QueueLength returns the number of pending tracks.
func (e *Engine) QueueLength() int {
	return len(e.pub.load().queue)
}

// Playing returns the active track with its live position.
func (e *Engine) Playing() (track.Track, bool) {
	s := e.pub.load()
	if s.active == nil {
		return track.Track{}, false
	}
	return e.live(s), true
}

// State returns the current playback state.
func (e *Engine) State() State {
	return e.pub.load().state
}

// Status returns state, active track, queue and volume from one snapshot.
func (e *Engine) Status() Status {
	s := e.pub.load()
	st := Status{
		State:  s.state,
		Queue:  track.CloneAll(s.queue),
		Volume: e.Volume(),
	}
	if s.active != nil {
		t := e.live(s)
		st.Playing = &t
	}
	return st
}

func (e *Engine) live(s snapshot) track.Track {
	t := s.active.Clone()
	t.Position = s.elapsed.at(e.now())
	if d := t.Properties.Duration; d > 0 && t.Position > d {
		t.Position = d
	}
	t.Playing = s.state == StatePlaying
	return t
}

// Err returns why the engine stopped accepting commands, or nil.
func (e *Engine) Err() error {
	return e.actions.closed()
}

// Done is closed once the worker has exited and released the device.
func (e *Engine) Done() <-chan struct{} {
	return e.done
}

// Close stops the worker and waits for it to release the device.
func (e *Engine) Close() {
	e.actions.close(ErrClosed)
	<-e.done
}

func clampVolume(v float64) float64 {
	if v < 0 || v != v {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
