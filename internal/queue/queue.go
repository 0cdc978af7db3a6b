package queue

import "github.com/olivier-w/climpd/internal/track"

// Queue is the ordered list of pending tracks. The active track is never
// part of it. It is only mutated from the engine's worker goroutine.
type Queue struct {
	tracks []track.Track
}

// New creates a Queue holding the given tracks in order.
func New(tracks []track.Track) *Queue {
	q := &Queue{}
	q.tracks = append(q.tracks, tracks...)
	return q
}

// Push appends a track to the tail.
func (q *Queue) Push(t track.Track) {
	q.tracks = append(q.tracks, t)
}

// Pop removes and returns the head. Returns false if the queue is empty.
func (q *Queue) Pop() (track.Track, bool) {
	if len(q.tracks) == 0 {
		return track.Track{}, false
	}
	head := q.tracks[0]
	q.tracks[0] = track.Track{}
	q.tracks = q.tracks[1:]
	if len(q.tracks) == 0 {
		q.tracks = nil
	}
	return head, true
}

// Clear drops every pending track.
func (q *Queue) Clear() {
	q.tracks = nil
}

// Len returns the number of pending tracks.
func (q *Queue) Len() int {
	return len(q.tracks)
}

// Snapshot returns a copy of the pending list, never nil. Properties are
// shared with the queue.
func (q *Queue) Snapshot() []track.Track {
	out := make([]track.Track, len(q.tracks))
	copy(out, q.tracks)
	return out
}
