package api

import (
	"github.com/olivier-w/climpd/internal/engine"
	"github.com/olivier-w/climpd/internal/track"
)

type trackView struct {
	ID         string `json:"id"`
	Path       string `json:"path"`
	Title      string `json:"title"`
	Artist     string `json:"artist,omitempty"`
	Year       int    `json:"year,omitempty"`
	DurationMS int64  `json:"duration_ms"`
	PositionMS int64  `json:"position_ms"`
	Playing    bool   `json:"playing"`
	HasCover   bool   `json:"has_cover"`
}

func newTrackView(t track.Track) trackView {
	return trackView{
		ID:         t.ID,
		Path:       t.Path,
		Title:      t.DisplayTitle(),
		Artist:     t.Artist,
		Year:       t.Year,
		DurationMS: t.Duration.Milliseconds(),
		PositionMS: t.Position.Milliseconds(),
		Playing:    t.Playing,
		HasCover:   len(t.Cover) > 0,
	}
}

func trackViews(tracks []track.Track) []trackView {
	out := make([]trackView, 0, len(tracks))
	for _, t := range tracks {
		out = append(out, newTrackView(t))
	}
	return out
}

type statusView struct {
	State   engine.State `json:"state"`
	Playing *trackView   `json:"playing"`
	Queue   []trackView  `json:"queue"`
	Volume  float64      `json:"volume"`
}

func newStatusView(s engine.Status) statusView {
	v := statusView{
		State:  s.State,
		Queue:  trackViews(s.Queue),
		Volume: s.Volume,
	}
	if s.Playing != nil {
		p := newTrackView(*s.Playing)
		v.Playing = &p
	}
	return v
}
