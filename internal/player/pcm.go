package player

import (
	"encoding/binary"
	"io"

	"github.com/cockroachdb/errors"
)

const (
	deviceSampleRate = 48000
	deviceChannels   = 2
	deviceFrameSize  = deviceChannels * 2 // 16-bit samples
)

// resampler presents a mono or stereo s16le source as a 48 kHz stereo
// stream, interpolating linearly between source frames.
type resampler struct {
	src      io.Reader
	channels int
	srcRate  int64

	cur, next [deviceChannels]int16
	hasNext   bool
	phase     int64 // position between cur and next, in units of 1/deviceSampleRate
	primed    bool
	done      bool

	in     []byte // undecoded source bytes
	tmp    []byte
	srcErr error
}

func newResampler(src pcmSource) (io.Reader, error) {
	rate := src.SampleRate()
	if rate <= 0 {
		return nil, errors.Newf("unsupported sample rate: %d", rate)
	}
	channels := src.ChannelCount()
	if channels < 1 || channels > deviceChannels {
		return nil, errors.Newf("unsupported channel count: %d", channels)
	}
	if rate == deviceSampleRate && channels == deviceChannels {
		return src, nil
	}
	return &resampler{
		src:      src,
		channels: channels,
		srcRate:  int64(rate),
		tmp:      make([]byte, 4096),
	}, nil
}

func (r *resampler) Read(p []byte) (int, error) {
	if !r.primed {
		var ok bool
		r.cur, ok = r.pullFrame()
		if !ok {
			r.done = true
		}
		r.next, r.hasNext = r.pullFrame()
		r.primed = true
	}

	n := 0
	for n+deviceFrameSize <= len(p) && !r.done {
		for ch := 0; ch < deviceChannels; ch++ {
			s := r.cur[ch]
			if r.hasNext {
				s = interpolate(r.cur[ch], r.next[ch], r.phase)
			}
			binary.LittleEndian.PutUint16(p[n+ch*2:], uint16(s))
		}
		n += deviceFrameSize

		r.phase += r.srcRate
		for r.phase >= deviceSampleRate {
			r.phase -= deviceSampleRate
			if !r.hasNext {
				r.done = true
				break
			}
			r.cur = r.next
			r.next, r.hasNext = r.pullFrame()
		}
	}

	if n == 0 && r.done {
		if r.srcErr != nil && !errors.Is(r.srcErr, io.EOF) {
			return 0, r.srcErr
		}
		return 0, io.EOF
	}
	return n, nil
}

func (r *resampler) pullFrame() ([deviceChannels]int16, bool) {
	frameSize := r.channels * 2
	for len(r.in) < frameSize {
		if r.srcErr != nil {
			return [deviceChannels]int16{}, false
		}
		n, err := r.src.Read(r.tmp)
		r.in = append(r.in, r.tmp[:n]...)
		if err != nil {
			r.srcErr = err
		}
	}

	left := int16(binary.LittleEndian.Uint16(r.in))
	right := left
	if r.channels == 2 {
		right = int16(binary.LittleEndian.Uint16(r.in[2:]))
	}
	r.in = r.in[frameSize:]
	return [deviceChannels]int16{left, right}, true
}

func interpolate(a, b int16, phase int64) int16 {
	if phase == 0 || a == b {
		return a
	}
	diff := int64(b) - int64(a)
	return int16(int64(a) + diff*phase/deviceSampleRate)
}
