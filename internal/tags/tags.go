// Package tags reads track properties (title, artist, year, cover art and
// duration) from local audio files.
package tags

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/bogem/id3v2/v2"
	"github.com/cockroachdb/errors"
	"github.com/dhowden/tag"
	zlog "github.com/rs/zerolog/log"

	"github.com/olivier-w/climpd/internal/player"
	"github.com/olivier-w/climpd/internal/track"
)

// Reader extracts track.Properties. The zero value probes duration with
// player.Probe.
type Reader struct {
	// Probe returns the playing time of a file. Nil means player.Probe.
	Probe func(path string) (time.Duration, error)
}

// NewReader returns a Reader using the default duration probe.
func NewReader() *Reader {
	return &Reader{Probe: player.Probe}
}

// Extract reads tags from path. A file without tags yields its base name as
// the title; a file whose duration cannot be determined yields zero.
func (r *Reader) Extract(ctx context.Context, path string) (track.Properties, error) {
	if err := ctx.Err(); err != nil {
		return track.Properties{}, err
	}

	props, err := readTags(path)
	if err != nil {
		return track.Properties{}, err
	}
	if props.Title == "" {
		props.Title = titleFromPath(path)
	}

	if err := ctx.Err(); err != nil {
		return track.Properties{}, err
	}

	probe := r.Probe
	if probe == nil {
		probe = player.Probe
	}
	d, err := probe(path)
	if err != nil {
		zlog.Debug().Err(err).Str("path", path).Msg("duration unavailable")
	} else {
		props.Duration = d
	}
	return props, nil
}

func readTags(path string) (track.Properties, error) {
	f, err := os.Open(path)
	if err != nil {
		return track.Properties{}, errors.Wrap(err, "opening track")
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err == nil {
		props := track.Properties{
			Title:  strings.TrimSpace(m.Title()),
			Artist: strings.TrimSpace(m.Artist()),
			Year:   m.Year(),
		}
		if pic := m.Picture(); pic != nil && len(pic.Data) > 0 {
			props.Cover = pic.Data
		}
		return props, nil
	}

	if strings.EqualFold(filepath.Ext(path), ".mp3") {
		return readID3v2(path), nil
	}
	return track.Properties{}, nil
}

// readID3v2 covers mp3 files whose frames the generic reader rejects.
func readID3v2(path string) track.Properties {
	t, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return track.Properties{}
	}
	defer t.Close()

	props := track.Properties{
		Title:  strings.TrimSpace(t.Title()),
		Artist: strings.TrimSpace(t.Artist()),
	}
	if y, err := strconv.Atoi(strings.TrimSpace(t.Year())); err == nil {
		props.Year = y
	}
	for _, f := range t.GetFrames(t.CommonID("Attached picture")) {
		if pic, ok := f.(id3v2.PictureFrame); ok && len(pic.Picture) > 0 {
			props.Cover = pic.Picture
			break
		}
	}
	return props
}

func titleFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
