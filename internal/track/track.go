// Package track holds the queued and playing track types shared by the
// engine, the library scanner and the presentation layers.
package track

import (
	"path/filepath"
	"strings"
	"time"
)

// Properties is the optional metadata attached to a track. Zero values mean
// the field is unknown.
type Properties struct {
	Title    string
	Artist   string
	Year     int
	Duration time.Duration
	Cover    []byte
}

// Track is one queued or active unit of playable audio.
type Track struct {
	ID         string
	Path       string
	Properties
	Position   time.Duration // elapsed time inside the track
	Playing    bool          // true while the output device produces sound for it
}

// Clone returns a copy that shares no memory with t.
func (t Track) Clone() Track {
	c := t
	if t.Properties.Cover != nil {
		c.Properties.Cover = append([]byte(nil), t.Properties.Cover...)
	}
	return c
}

// DisplayTitle returns the tagged title, falling back to the file name
// without extension.
func (t Track) DisplayTitle() string {
	if t.Properties.Title != "" {
		return t.Properties.Title
	}
	base := filepath.Base(t.Path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Remaining returns the time left in the track, or 0 when the duration is
// unknown.
func (t Track) Remaining() time.Duration {
	if t.Properties.Duration <= 0 || t.Position >= t.Properties.Duration {
		return 0
	}
	return t.Properties.Duration - t.Position
}

// CloneAll copies a slice of tracks.
func CloneAll(tracks []Track) []Track {
	if len(tracks) == 0 {
		return []Track{}
	}
	out := make([]Track, len(tracks))
	for i := range tracks {
		out[i] = tracks[i].Clone()
	}
	return out
}
