package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestElapsed(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	at := func(d time.Duration) time.Time { return t0.Add(d) }

	e := startElapsed(t0)
	assert.Equal(t, 2*time.Second, e.at(at(2*time.Second)))

	e.pause(at(2 * time.Second))
	assert.Equal(t, 2*time.Second, e.at(at(5*time.Second)), "pauses must not advance position")

	e.pause(at(4 * time.Second)) // second pause keeps the first instant
	e.resume(at(5 * time.Second))
	assert.Equal(t, 2*time.Second, e.at(at(5*time.Second)))
	assert.Equal(t, 4*time.Second, e.at(at(7*time.Second)))

	e.resume(at(9 * time.Second)) // not paused: no effect
	assert.Equal(t, 6*time.Second, e.at(at(9*time.Second)))
}

func TestElapsed_ZeroAndClockSkew(t *testing.T) {
	assert.Equal(t, time.Duration(0), elapsed{}.at(time.Now()))

	t0 := time.Now()
	e := startElapsed(t0)
	assert.Equal(t, time.Duration(0), e.at(t0.Add(-time.Second)))
}
