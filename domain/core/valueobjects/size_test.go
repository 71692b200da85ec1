package valueobjects

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSize_ClampsToFloor(t *testing.T) {
	tests := []struct {
		name          string
		width, height float64
		wantW, wantH  float64
	}{
		{"default card", 300, 200, 300, 200},
		{"exactly the floor", 50, 50, 50, 50},
		{"width below floor", 10, 200, 50, 200},
		{"height below floor", 300, 49.9, 300, 50},
		{"both negative", -20, -1, 50, 50},
		{"NaN", math.NaN(), 120, 50, 120},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSize(tt.width, tt.height)
			assert.Equal(t, tt.wantW, s.Width())
			assert.Equal(t, tt.wantH, s.Height())
		})
	}
}

func TestSize_Scale(t *testing.T) {
	s := NewSize(300, 200).Scale(0.1, 1.5)
	assert.Equal(t, 50.0, s.Width())
	assert.Equal(t, 300.0, s.Height())
}

func TestSize_AtLeast(t *testing.T) {
	s := NewSize(240, 250).AtLeast(600, 400)
	assert.Equal(t, 600.0, s.Width())
	assert.Equal(t, 400.0, s.Height())

	big := NewSize(900, 700).AtLeast(600, 400)
	assert.True(t, big.Equals(NewSize(900, 700)))
}

func TestSize_JSONClampsOnDecode(t *testing.T) {
	var s Size
	require.NoError(t, json.Unmarshal([]byte(`{"width":5,"height":80}`), &s))
	assert.Equal(t, 50.0, s.Width())
	assert.Equal(t, 80.0, s.Height())

	data, err := json.Marshal(NewSize(300, 200))
	require.NoError(t, err)
	assert.JSONEq(t, `{"width":300,"height":200}`, string(data))
}
