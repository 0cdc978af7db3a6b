// Package player drives the audio output device: it decodes local files and
// feeds them to a process-wide oto context.
package player

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/ebitengine/oto/v3"
)

// drainReader wraps the PCM stream handed to oto and remembers when the
// source ran dry.
type drainReader struct {
	reader io.Reader
	err    error
	mu     sync.Mutex
}

func (cr *drainReader) Read(p []byte) (int, error) {
	n, err := cr.reader.Read(p)
	if err != nil {
		cr.mu.Lock()
		if cr.err == nil {
			cr.err = err
		}
		cr.mu.Unlock()
	}
	return n, err
}

// Drained reports whether the source returned EOF or failed.
func (cr *drainReader) Drained() bool {
	cr.mu.Lock()
	defer cr.mu.Unlock()
	return cr.err != nil
}

var (
	globalOtoCtx *oto.Context
	otoOnce      sync.Once
	otoInitErr   error
)

func initOto() (*oto.Context, error) {
	otoOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   deviceSampleRate,
			ChannelCount: deviceChannels,
			Format:       oto.FormatSignedInt16LE,
		}
		var ready chan struct{}
		globalOtoCtx, ready, otoInitErr = oto.NewContext(op)
		if otoInitErr == nil {
			<-ready
		}
	})
	return globalOtoCtx, otoInitErr
}

// voice is one loaded track.
type voice struct {
	file    *os.File
	source  *drainReader
	out     *oto.Player
	paused  bool
}

// Device plays one track at a time. It is not safe for concurrent use: the
// playback engine's worker is its only caller.
type Device struct {
	cur    *voice
	volume float64
}

// NewDevice opens the audio output.
func NewDevice() (*Device, error) {
	if _, err := initOto(); err != nil {
		return nil, errors.Wrap(err, "opening audio output")
	}
	return &Device{volume: 1}, nil
}

// Load stops the current track and starts playing path.
func (d *Device) Load(path string) error {
	d.Stop()

	ctx, err := initOto()
	if err != nil {
		return errors.Wrap(err, "opening audio output")
	}

	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "opening track")
	}
	src, err := newDecoder(f)
	if err != nil {
		f.Close()
		return err
	}
	pcm, err := newResampler(src)
	if err != nil {
		f.Close()
		return err
	}

	cr := &drainReader{reader: pcm}
	out := ctx.NewPlayer(cr)
	out.SetVolume(d.volume)
	out.Play()

	d.cur = &voice{file: f, source: cr, out: out}
	return nil
}

// Pause halts output of the current track.
func (d *Device) Pause() error {
	if d.cur == nil {
		return nil
	}
	d.cur.out.Pause()
	if err := d.cur.out.Err(); err != nil {
		return errors.Wrap(err, "pausing output")
	}
	d.cur.paused = true
	return nil
}

// Resume continues a paused track.
func (d *Device) Resume() {
	if d.cur == nil {
		return
	}
	d.cur.out.Play()
	d.cur.paused = false
}

// Stop discards whatever is left of the current track.
func (d *Device) Stop() {
	if d.cur == nil {
		return
	}
	d.cur.out.Pause()
	d.cur.file.Close()
	d.cur = nil
}

// Exhausted reports whether the current track played to its end. A decode
// error mid-track counts as the end.
func (d *Device) Exhausted() bool {
	if d.cur == nil || d.cur.paused {
		return false
	}
	if !d.cur.source.Drained() {
		return false
	}
	return !d.cur.out.IsPlaying() || d.cur.out.BufferedSize() == 0
}

// SetVolume sets volume (clamped to 0.0 - 1.0).
func (d *Device) SetVolume(v float64) {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	d.volume = v
	if d.cur != nil {
		d.cur.out.SetVolume(v)
	}
}

// Close releases the current track. The oto context lives for the process.
func (d *Device) Close() error {
	d.Stop()
	return nil
}

// Probe returns the playing time of the file at path.
func Probe(path string) (time.Duration, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, errors.Wrap(err, "opening track")
	}
	defer f.Close()

	src, err := newDecoder(f)
	if err != nil {
		return 0, err
	}
	if src.Length() < 0 {
		return 0, errors.New("length unknown")
	}
	return bytesToDuration(src.Length(), src.SampleRate(), src.ChannelCount()), nil
}

func bytesToDuration(n int64, sampleRate, channels int) time.Duration {
	frameSize := int64(channels) * 2
	if sampleRate <= 0 || frameSize == 0 {
		return 0
	}
	frames := n / frameSize
	return time.Duration(frames) * time.Second / time.Duration(sampleRate)
}
