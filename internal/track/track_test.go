package track

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTrack_DisplayTitle(t *testing.T) {
	tests := []struct {
		name     string
		track    Track
		expected string
	}{
		{
			name:     "tagged title wins",
			track:    Track{Path: "/music/01 intro.mp3", Properties: Properties{Title: "Intro"}},
			expected: "Intro",
		},
		{
			name:     "falls back to file name",
			track:    Track{Path: "/music/01 intro.mp3"},
			expected: "01 intro",
		},
		{
			name:     "no extension",
			track:    Track{Path: "song"},
			expected: "song",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.track.DisplayTitle())
		})
	}
}

func TestTrack_CloneDoesNotShareCover(t *testing.T) {
	orig := Track{Path: "a.mp3", Properties: Properties{Cover: []byte{1, 2, 3}}}
	c := orig.Clone()
	c.Properties.Cover[0] = 9

	assert.Equal(t, byte(1), orig.Properties.Cover[0])
}

func TestTrack_Remaining(t *testing.T) {
	tr := Track{Properties: Properties{Duration: 10 * time.Second}, Position: 4 * time.Second}
	assert.Equal(t, 6*time.Second, tr.Remaining())

	tr.Position = 12 * time.Second
	assert.Equal(t, time.Duration(0), tr.Remaining())

	assert.Equal(t, time.Duration(0), Track{}.Remaining())
}

func TestCloneAll_NilIsEmptySlice(t *testing.T) {
	got := CloneAll(nil)
	assert.NotNil(t, got)
	assert.Len(t, got, 0)
}
