package player

import (
	"encoding/binary"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
	"github.com/mewkiz/flac"
)

// ErrUnsupportedFormat is returned for files no decoder handles.
var ErrUnsupportedFormat = errors.New("unsupported format")

// pcmSource is implemented by all format-specific decoders. Read yields
// interleaved signed 16-bit little-endian PCM.
type pcmSource interface {
	io.Reader
	Length() int64 // total PCM bytes, or -1 if unknown
	SampleRate() int
	ChannelCount() int
}

// newDecoder detects format by file extension and returns the appropriate decoder.
func newDecoder(f *os.File) (pcmSource, error) {
	ext := strings.ToLower(filepath.Ext(f.Name()))
	switch ext {
	case ".mp3":
		return newMP3Decoder(f)
	case ".wav":
		return newWAVDecoder(f)
	case ".flac":
		return newFLACDecoder(f)
	case ".ogg":
		return newOGGDecoder(f)
	default:
		return nil, errors.Wrapf(ErrUnsupportedFormat, "%q", ext)
	}
}

func clamp16(sample int) int16 {
	if sample > 32767 {
		return 32767
	} else if sample < -32768 {
		return -32768
	}
	return int16(sample)
}

// --- MP3 decoder ---

// go-mp3 always produces stereo 16-bit PCM.
type mp3Decoder struct {
	*mp3.Decoder
}

func newMP3Decoder(f *os.File) (mp3Decoder, error) {
	dec, err := mp3.NewDecoder(f)
	if err != nil {
		return mp3Decoder{}, errors.Wrap(err, "decoding MP3")
	}
	return mp3Decoder{dec}, nil
}

func (mp3Decoder) ChannelCount() int { return 2 }

// --- WAV decoder ---

type wavDecoder struct {
	dec      *wav.Decoder
	buf      *audio.IntBuffer
	out      []byte
	pending  []byte
	length   int64
	rate     int
	channels int
	bitDepth int
}

func newWAVDecoder(f *os.File) (*wavDecoder, error) {
	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, errors.New("invalid WAV file")
	}
	if err := dec.FwdToPCM(); err != nil {
		return nil, errors.Wrap(err, "reading WAV PCM data")
	}

	channels := int(dec.NumChans)
	bitDepth := int(dec.BitDepth)
	if channels == 0 || bitDepth == 0 || bitDepth%8 != 0 {
		return nil, errors.Newf("unsupported WAV layout: %d channels, %d bit", channels, bitDepth)
	}
	frames := dec.PCMLen() / int64(channels*bitDepth/8)

	return &wavDecoder{
		dec:      dec,
		buf:      &audio.IntBuffer{Data: make([]int, 2048*channels), Format: dec.Format()},
		length:   frames * int64(channels) * 2,
		rate:     int(dec.SampleRate),
		channels: channels,
		bitDepth: bitDepth,
	}, nil
}

func (d *wavDecoder) Read(p []byte) (int, error) {
	if len(d.pending) == 0 {
		n, err := d.dec.PCMBuffer(d.buf)
		if n == 0 {
			if err == nil {
				err = io.EOF
			}
			return 0, err
		}
		if cap(d.out) < n*2 {
			d.out = make([]byte, n*2)
		}
		d.out = d.out[:n*2]
		for i, v := range d.buf.Data[:n] {
			var s int
			switch d.bitDepth {
			case 8:
				// 8-bit WAV is unsigned
				s = (v - 128) << 8
			case 16:
				s = v
			default:
				s = v >> (d.bitDepth - 16)
			}
			binary.LittleEndian.PutUint16(d.out[i*2:], uint16(clamp16(s)))
		}
		d.pending = d.out
	}

	n := copy(p, d.pending)
	d.pending = d.pending[n:]
	return n, nil
}

func (d *wavDecoder) Length() int64     { return d.length }
func (d *wavDecoder) SampleRate() int   { return d.rate }
func (d *wavDecoder) ChannelCount() int { return d.channels }

// --- FLAC decoder ---

type flacDecoder struct {
	stream     *flac.Stream
	pending    []byte
	length     int64
	sampleRate int
	channels   int
	bps        int
}

func newFLACDecoder(f *os.File) (*flacDecoder, error) {
	stream, err := flac.New(f)
	if err != nil {
		return nil, errors.Wrap(err, "decoding FLAC")
	}

	info := stream.Info
	channels := int(info.NChannels)
	return &flacDecoder{
		stream:     stream,
		sampleRate: int(info.SampleRate),
		channels:   channels,
		bps:        int(info.BitsPerSample),
		length:     int64(info.NSamples) * int64(channels) * 2,
	}, nil
}

func (d *flacDecoder) Read(p []byte) (int, error) {
	if len(d.pending) == 0 {
		frame, err := d.stream.ParseNext()
		if err != nil {
			return 0, err
		}

		nSamples := int(frame.Subframes[0].NSamples)
		raw := make([]byte, nSamples*d.channels*2)
		for i := 0; i < nSamples; i++ {
			for ch := 0; ch < d.channels; ch++ {
				sample := int(frame.Subframes[ch].Samples[i])
				switch {
				case d.bps > 16:
					sample >>= (d.bps - 16)
				case d.bps < 16:
					sample <<= (16 - d.bps)
				}
				binary.LittleEndian.PutUint16(raw[(i*d.channels+ch)*2:], uint16(clamp16(sample)))
			}
		}
		d.pending = raw
	}

	n := copy(p, d.pending)
	d.pending = d.pending[n:]
	return n, nil
}

func (d *flacDecoder) Length() int64     { return d.length }
func (d *flacDecoder) SampleRate() int   { return d.sampleRate }
func (d *flacDecoder) ChannelCount() int { return d.channels }

// --- OGG Vorbis decoder ---

type oggDecoder struct {
	reader   *oggvorbis.Reader
	samples  []float32
	pending  []byte
	length   int64
	channels int
}

func newOGGDecoder(f *os.File) (*oggDecoder, error) {
	reader, err := oggvorbis.NewReader(f)
	if err != nil {
		return nil, errors.Wrap(err, "decoding OGG")
	}

	channels := reader.Channels()
	return &oggDecoder{
		reader:   reader,
		channels: channels,
		length:   reader.Length() * int64(channels) * 2,
	}, nil
}

func (d *oggDecoder) Read(p []byte) (int, error) {
	if len(d.pending) > 0 {
		n := copy(p, d.pending)
		d.pending = d.pending[n:]
		return n, nil
	}

	want := len(p) / 2
	if want < d.channels {
		want = d.channels
	}
	if cap(d.samples) < want {
		d.samples = make([]float32, want)
	}
	n, err := d.reader.Read(d.samples[:want])
	if n == 0 {
		if err == nil {
			err = io.EOF
		}
		return 0, err
	}

	raw := make([]byte, n*2)
	for i, s := range d.samples[:n] {
		if s > 1.0 {
			s = 1.0
		} else if s < -1.0 {
			s = -1.0
		}
		binary.LittleEndian.PutUint16(raw[i*2:], uint16(int16(s*32767)))
	}

	written := copy(p, raw)
	d.pending = raw[written:]
	if err == io.EOF && len(d.pending) > 0 {
		err = nil
	}
	return written, err
}

func (d *oggDecoder) Length() int64     { return d.length }
func (d *oggDecoder) SampleRate() int   { return d.reader.SampleRate() }
func (d *oggDecoder) ChannelCount() int { return d.channels }
