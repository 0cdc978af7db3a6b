package engine

import (
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/olivier-w/climpd/internal/queue"
	"github.com/olivier-w/climpd/internal/track"
)

// worker owns the sink and every piece of playback state. It runs on a
// single goroutine and is the only caller of the sink.
type worker struct {
	sink    Sink
	actions *actionChannel
	pub     *publisher
	tick    time.Duration
	now     func() time.Time

	pending *queue.Queue
	active  *track.Track
	state   State
	clock   elapsed
	volume  float64
}

func (w *worker) run(done chan<- struct{}) {
	defer close(done)
	defer w.shutdown()
	defer func() {
		if r := recover(); r != nil {
			zlog.Error().
				Str("panic", fmt.Sprint(r)).
				Msg("playback worker terminated")
			w.actions.close(errors.Wrapf(ErrWorkerTerminated, "%v", r))
		}
	}()

	w.sink.SetVolume(w.volume)
	w.publish()

	for {
		cmd, res := w.actions.recv(w.tick)
		switch res {
		case recvClosed:
			return
		case recvCommand:
			w.handle(cmd)
		}
		w.advance()
		w.publish()
	}
}

func (w *worker) handle(cmd Command) {
	switch c := cmd.(type) {
	case Enqueue:
		w.pending.Push(c.Track)
		zlog.Debug().Str("path", c.Track.Path).Int("pending", w.pending.Len()).Msg("track enqueued")

	case Pause:
		if w.state != StatePlaying {
			w.noop(cmd)
			return
		}
		w.pause()

	case Resume:
		if w.state != StatePaused {
			w.noop(cmd)
			return
		}
		w.sink.Resume()
		w.clock.resume(w.now())
		w.active.Playing = true
		w.state = StatePlaying

	case Skip:
		if w.active == nil {
			w.noop(cmd)
			return
		}
		zlog.Debug().Str("path", w.active.Path).Msg("track skipped")
		w.sink.Stop()
		w.release()

	case Stop:
		if w.active == nil && w.pending.Len() == 0 {
			w.noop(cmd)
			return
		}
		zlog.Debug().Int("dropped", w.pending.Len()).Msg("playback stopped")
		w.sink.Stop()
		w.pending.Clear()
		w.release()

	case SetVolume:
		w.volume = c.Volume
		w.sink.SetVolume(c.Volume)
	}
}

// pause halts output. A failing device gets one retry; after that the track
// is dropped and the caller has to enqueue it again.
func (w *worker) pause() {
	err := w.sink.Pause()
	if err != nil {
		zlog.Warn().Err(err).Str("path", w.active.Path).Msg("pause failed, retrying")
		err = w.sink.Pause()
	}
	if err != nil {
		zlog.Error().Err(err).Str("path", w.active.Path).Msg("pause failed, dropping track")
		w.sink.Stop()
		w.release()
		return
	}
	w.clock.pause(w.now())
	w.active.Playing = false
	w.state = StatePaused
}

// advance retires an exhausted track and starts the next playable pending
// one. Entries that cannot be opened are dropped in the same pass.
func (w *worker) advance() {
	if w.state == StatePlaying && w.sink.Exhausted() {
		zlog.Debug().Str("path", w.active.Path).Msg("track finished")
		w.release()
	}

	for w.active == nil {
		next, ok := w.pending.Pop()
		if !ok {
			return
		}
		if err := w.sink.Load(next.Path); err != nil {
			zlog.Warn().Err(err).Str("path", next.Path).Msg("skipping unplayable track")
			continue
		}
		w.sink.SetVolume(w.volume)

		next.Position = 0
		next.Playing = true
		w.active = &next
		w.clock = startElapsed(w.now())
		w.state = StatePlaying
		zlog.Info().
			Str("path", next.Path).
			Str("title", next.DisplayTitle()).
			Int("pending", w.pending.Len()).
			Msg("track started")
	}
}

func (w *worker) release() {
	w.active = nil
	w.clock = elapsed{}
	w.state = StateIdle
}

func (w *worker) noop(cmd Command) {
	zlog.Debug().Str("command", commandName(cmd)).Str("state", w.state.String()).Msg("command ignored")
}

func (w *worker) publish() {
	s := snapshot{
		state:   w.state,
		queue:   w.pending.Snapshot(),
		elapsed: w.clock,
	}
	if w.active != nil {
		a := *w.active
		s.active = &a
	}
	w.pub.store(s)
}

func (w *worker) shutdown() {
	w.sink.Stop()
	if err := w.sink.Close(); err != nil {
		zlog.Warn().Err(err).Msg("closing output device")
	}
	w.pending.Clear()
	w.release()
	w.publish()
}
