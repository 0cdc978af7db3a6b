package engine

import "time"

// elapsed is the timing record of the active track. Position is
// (now - startedAt) - paused, with now frozen at pausedAt while paused.
type elapsed struct {
	startedAt time.Time
	pausedAt  time.Time     // zero while running
	paused    time.Duration // total time spent paused before pausedAt
}

func startElapsed(now time.Time) elapsed {
	return elapsed{startedAt: now}
}

// at returns the position of the track at the given instant.
func (e elapsed) at(now time.Time) time.Duration {
	if e.startedAt.IsZero() {
		return 0
	}
	end := now
	if !e.pausedAt.IsZero() {
		end = e.pausedAt
	}
	d := end.Sub(e.startedAt) - e.paused
	if d < 0 {
		return 0
	}
	return d
}

func (e *elapsed) pause(now time.Time) {
	if e.pausedAt.IsZero() {
		e.pausedAt = now
	}
}

func (e *elapsed) resume(now time.Time) {
	if e.pausedAt.IsZero() {
		return
	}
	if now.After(e.pausedAt) {
		e.paused += now.Sub(e.pausedAt)
	}
	e.pausedAt = time.Time{}
}
