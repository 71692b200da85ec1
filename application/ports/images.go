package ports

import (
	"context"
	"time"
)

// StoredImage is an uploaded image held by the image store
type StoredImage struct {
	ID          string    `json:"id"`
	BoardID     string    `json:"boardId"`
	Name        string    `json:"name"`
	ContentType string    `json:"contentType"`
	Size        int64     `json:"size"`
	DataURL     string    `json:"url"`
	CreatedAt   time.Time `json:"createdAt"`
}

// StorageInfo reports image store usage in bytes
type StorageInfo struct {
	Used  int64 `json:"used"`
	Limit int64 `json:"limit"`
}

// ImageStore defines the interface for quota-limited image storage
type ImageStore interface {
	// Store saves an image. An upload that would exceed the quota fails
	// with a resource-exhausted error and nothing is stored.
	Store(ctx context.Context, boardID, name string, data []byte) (*StoredImage, error)

	// Get retrieves an image by id
	Get(ctx context.Context, id string) (*StoredImage, error)

	// ListByBoard returns a board's images in upload order
	ListByBoard(ctx context.Context, boardID string) ([]StoredImage, error)

	// Delete removes an image and reports whether it existed
	Delete(ctx context.Context, id string) (bool, error)

	// ClearBoard removes every image of a board
	ClearBoard(ctx context.Context, boardID string) error

	// Info returns the bytes used and the quota
	Info(ctx context.Context) (StorageInfo, error)
}
