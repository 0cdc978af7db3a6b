package engine

import (
	"sync"

	"github.com/olivier-w/climpd/internal/track"
)

// snapshot is the worker state exposed to readers. Track properties are
// shared with the worker; they are immutable once attached, and readers
// receive clones.
type snapshot struct {
	state   State
	queue   []track.Track
	active  *track.Track
	elapsed elapsed
}

// publisher holds the latest snapshot. The queue and the now-playing record
// are swapped together under one lock, so a reader never sees the active
// track still listed as pending.
type publisher struct {
	mu   sync.RWMutex
	snap snapshot
}

func (p *publisher) store(s snapshot) {
	p.mu.Lock()
	p.snap = s
	p.mu.Unlock()
}

func (p *publisher) load() snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.snap
}
