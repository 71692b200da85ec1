// Package imagestore holds uploaded images as data URLs under a byte quota
package imagestore

import (
	"context"
	"encoding/base64"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/varangian-core/magical-board/application/ports"
	pkgerrors "github.com/varangian-core/magical-board/pkg/errors"
)

// DefaultLimit is the default storage quota in bytes
const DefaultLimit int64 = 50 * 1024 * 1024

// ErrStorageLimit is the message reported when an upload would exceed the quota
const ErrStorageLimit = "Storage limit exceeded. Please remove some images."

// MemoryStore is a quota-limited in-memory image store
type MemoryStore struct {
	mu     sync.RWMutex
	images map[string]ports.StoredImage
	used   int64
	limit  int64
	logger *zap.Logger
}

// NewMemoryStore creates an image store. A non-positive limit uses DefaultLimit.
func NewMemoryStore(limit int64, logger *zap.Logger) *MemoryStore {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MemoryStore{
		images: make(map[string]ports.StoredImage),
		limit:  limit,
		logger: logger,
	}
}

// Store saves the image as a data URL. The quota is checked against the
// raw size before anything is stored.
func (s *MemoryStore) Store(ctx context.Context, boardID, name string, data []byte) (*ports.StoredImage, error) {
	if boardID == "" {
		return nil, pkgerrors.NewValidationError("board id is required")
	}
	size := int64(len(data))
	contentType := http.DetectContentType(data)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.used+size > s.limit {
		s.logger.Warn("Image rejected by storage quota",
			zap.String("board_id", boardID),
			zap.String("name", name),
			zap.Int64("size", size),
			zap.Int64("used", s.used),
		)
		return nil, pkgerrors.NewResourceExhaustedError(ErrStorageLimit).
			WithDetails(map[string]interface{}{"used": s.used, "limit": s.limit, "size": size})
	}

	image := ports.StoredImage{
		ID:          uuid.New().String(),
		BoardID:     boardID,
		Name:        name,
		ContentType: contentType,
		Size:        size,
		DataURL:     "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data),
		CreatedAt:   time.Now().UTC(),
	}
	s.images[image.ID] = image
	s.used += size

	out := image
	return &out, nil
}

// Get retrieves an image by id
func (s *MemoryStore) Get(ctx context.Context, id string) (*ports.StoredImage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	image, ok := s.images[id]
	if !ok {
		return nil, pkgerrors.NewNotFoundError("image")
	}
	return &image, nil
}

// ListByBoard returns a board's images in upload order
func (s *MemoryStore) ListByBoard(ctx context.Context, boardID string) ([]ports.StoredImage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]ports.StoredImage, 0)
	for _, image := range s.images {
		if image.BoardID == boardID {
			out = append(out, image)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// Delete removes an image and releases its quota
func (s *MemoryStore) Delete(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteLocked(id), nil
}

// ClearBoard removes every image of a board
func (s *MemoryStore) ClearBoard(ctx context.Context, boardID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, image := range s.images {
		if image.BoardID == boardID {
			s.deleteLocked(id)
		}
	}
	return nil
}

// Info returns the bytes used and the quota
func (s *MemoryStore) Info(ctx context.Context) (ports.StorageInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ports.StorageInfo{Used: s.used, Limit: s.limit}, nil
}

func (s *MemoryStore) deleteLocked(id string) bool {
	image, ok := s.images[id]
	if !ok {
		return false
	}
	s.used -= image.Size
	delete(s.images, id)
	return true
}

var _ ports.ImageStore = (*MemoryStore)(nil)
