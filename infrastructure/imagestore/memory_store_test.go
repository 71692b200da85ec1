package imagestore

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/varangian-core/magical-board/pkg/errors"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n")

func TestMemoryStore_Store(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(0, nil)

	image, err := s.Store(ctx, "b1", "cat.png", pngHeader)
	require.NoError(t, err)
	assert.Equal(t, "image/png", image.ContentType)
	assert.True(t, strings.HasPrefix(image.DataURL, "data:image/png;base64,"))
	assert.Equal(t, int64(len(pngHeader)), image.Size)

	got, err := s.Get(ctx, image.ID)
	require.NoError(t, err)
	assert.Equal(t, image.DataURL, got.DataURL)

	info, _ := s.Info(ctx)
	assert.Equal(t, int64(len(pngHeader)), info.Used)
	assert.Equal(t, DefaultLimit, info.Limit)
}

func TestMemoryStore_Quota(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(100, nil)

	tests := []struct {
		name    string
		size    int
		wantErr bool
		used    int64
	}{
		{name: "fits", size: 60, used: 60},
		{name: "exactly at limit", size: 40, used: 100},
		{name: "over limit", size: 1, wantErr: true, used: 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Store(ctx, "b1", tt.name, bytes.Repeat([]byte{'a'}, tt.size))
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, pkgerrors.IsResourceExhausted(err))
				assert.Contains(t, err.Error(), ErrStorageLimit)
			} else {
				require.NoError(t, err)
			}
			info, _ := s.Info(ctx)
			assert.Equal(t, tt.used, info.Used)
		})
	}
}

func TestMemoryStore_DeleteAndClear(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(1000, nil)

	a, _ := s.Store(ctx, "b1", "a", []byte("aaaa"))
	_, _ = s.Store(ctx, "b1", "b", []byte("bb"))
	_, _ = s.Store(ctx, "b2", "c", []byte("c"))

	list, _ := s.ListByBoard(ctx, "b1")
	assert.Len(t, list, 2)

	ok, _ := s.Delete(ctx, a.ID)
	assert.True(t, ok)
	ok, _ = s.Delete(ctx, a.ID)
	assert.False(t, ok)

	require.NoError(t, s.ClearBoard(ctx, "b1"))
	list, _ = s.ListByBoard(ctx, "b1")
	assert.Empty(t, list)

	info, _ := s.Info(ctx)
	assert.Equal(t, int64(1), info.Used)

	_, err := s.Get(ctx, a.ID)
	assert.True(t, pkgerrors.IsNotFound(err))
}
