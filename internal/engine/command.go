package engine

import "github.com/olivier-w/climpd/internal/track"

// Command is an instruction for the playback worker. The set of commands is
// closed: Enqueue, Stop, Pause, Resume, Skip and SetVolume.
type Command interface {
	command()
}

// Enqueue appends an admitted track to the pending queue.
type Enqueue struct {
	Track track.Track
}

// Stop clears the queue and the active track.
type Stop struct{}

// Pause holds the active track.
type Pause struct{}

// Resume continues a paused track.
type Resume struct{}

// Skip discards the active track and moves on to the next pending one.
type Skip struct{}

// SetVolume changes the device volume. Volume is already clamped to [0, 1].
type SetVolume struct {
	Volume float64
}

func (Enqueue) command()   {}
func (Stop) command()      {}
func (Pause) command()     {}
func (Resume) command()    {}
func (Skip) command()      {}
func (SetVolume) command() {}

func commandName(c Command) string {
	switch c.(type) {
	case Enqueue:
		return "enqueue"
	case Stop:
		return "stop"
	case Pause:
		return "pause"
	case Resume:
		return "resume"
	case Skip:
		return "skip"
	case SetVolume:
		return "set_volume"
	default:
		return "unknown"
	}
}
