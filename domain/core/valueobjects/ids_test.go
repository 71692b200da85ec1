package valueobjects

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewElementID_Unique(t *testing.T) {
	a, b := NewElementID(), NewElementID()
	assert.False(t, a.IsZero())
	assert.False(t, a.Equals(b))
}

func TestElementIDFrom(t *testing.T) {
	_, err := ElementIDFrom("")
	assert.Error(t, err)

	id, err := ElementIDFrom("V1StGXR8_Z5jdHi6B-myT")
	require.NoError(t, err)
	assert.Equal(t, "V1StGXR8_Z5jdHi6B-myT", id.String())
}

func TestNodeID_JSON(t *testing.T) {
	id, err := NodeIDFrom("node-1")
	require.NoError(t, err)

	data, err := json.Marshal([]NodeID{id})
	require.NoError(t, err)
	assert.Equal(t, `["node-1"]`, string(data))

	var decoded []NodeID
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded, 1)
	assert.True(t, decoded[0].Equals(id))

	var bad NodeID
	assert.Error(t, json.Unmarshal([]byte(`42`), &bad))
}
