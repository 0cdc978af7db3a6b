package engine

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "playing", StatePlaying.String())
	assert.Equal(t, "paused", StatePaused.String())
	assert.Equal(t, "unknown", State(42).String())
}

func TestStateMarshalsByName(t *testing.T) {
	b, err := json.Marshal(map[string]State{"state": StatePaused})
	require.NoError(t, err)
	assert.JSONEq(t, `{"state":"paused"}`, string(b))
}
