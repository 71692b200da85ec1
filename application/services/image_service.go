package services

import (
	"context"
	"io"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/varangian-core/magical-board/application/canvas"
	"github.com/varangian-core/magical-board/application/ports"
	"github.com/varangian-core/magical-board/application/sessions"
	"github.com/varangian-core/magical-board/domain/core/entities"
	"github.com/varangian-core/magical-board/domain/events"
	pkgerrors "github.com/varangian-core/magical-board/pkg/errors"
)

// maxConcurrentUploads bounds how many files of one request are read at once
const maxConcurrentUploads = 4

// ImageUpload is one file of an upload request
type ImageUpload struct {
	Name string
	Open func() (io.ReadCloser, error)
}

// UploadResult is the outcome for one file. Element is nil when the file
// failed or the board closed before the image could be placed.
type UploadResult struct {
	Name    string
	Image   *ports.StoredImage
	Element *entities.BoardElement
	Err     error
}

// ImageService stores uploaded images and places them on open boards
type ImageService struct {
	images    ports.ImageStore
	sessions  *sessions.Manager
	publisher ports.EventPublisher
	logger    *zap.Logger
}

// NewImageService creates a new image service
func NewImageService(
	images ports.ImageStore,
	sessionManager *sessions.Manager,
	publisher ports.EventPublisher,
	logger *zap.Logger,
) *ImageService {
	return &ImageService{
		images:    images,
		sessions:  sessionManager,
		publisher: publisher,
		logger:    logger,
	}
}

// Upload reads and stores every file concurrently. Each stored file is
// added to the board's session on its own, so the resulting elements are
// in completion order. A file rejected by the quota produces no element
// and does not affect the others.
func (s *ImageService) Upload(ctx context.Context, boardID string, user *entities.User, files []ImageUpload) ([]UploadResult, error) {
	if len(files) == 0 {
		return nil, pkgerrors.NewValidationError("at least one image file is required")
	}
	if _, err := s.sessions.Get(boardID); err != nil {
		return nil, err
	}

	results := make([]UploadResult, len(files))
	g := new(errgroup.Group)
	g.SetLimit(maxConcurrentUploads)

	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			results[i] = s.uploadOne(ctx, boardID, user, file)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (s *ImageService) uploadOne(ctx context.Context, boardID string, user *entities.User, file ImageUpload) UploadResult {
	result := UploadResult{Name: file.Name}

	data, err := readAll(file)
	if err != nil {
		result.Err = pkgerrors.NewValidationError("Failed to read image file").WithCause(err)
		return result
	}

	image, err := s.images.Store(ctx, boardID, file.Name, data)
	if err != nil {
		s.logger.Warn("Image not stored", zap.String("board_id", boardID), zap.String("name", file.Name), zap.Error(err))
		result.Err = err
		return result
	}
	result.Image = image
	publish(ctx, s.publisher, s.logger, events.NewImageStored(boardID, image.ID, image.Name, image.Size, image.CreatedAt))

	session, err := s.sessions.Get(boardID)
	if err != nil {
		s.logger.Info("Dropping image for closed board", zap.String("board_id", boardID), zap.String("image_id", image.ID))
		return result
	}
	err = session.Do(ctx, user, func(c *canvas.Controller) error {
		result.Element = c.ImageLoaded(*image)
		return nil
	})
	if err != nil {
		s.logger.Info("Dropping image for closed board", zap.String("board_id", boardID), zap.String("image_id", image.ID), zap.Error(err))
	}
	return result
}

// Delete removes a stored image. Elements already showing it keep their
// data URL.
func (s *ImageService) Delete(ctx context.Context, imageID string) error {
	deleted, err := s.images.Delete(ctx, imageID)
	if err != nil {
		return err
	}
	if !deleted {
		return pkgerrors.NewNotFoundError("image")
	}
	return nil
}

// ClearBoard removes all of a board's stored images
func (s *ImageService) ClearBoard(ctx context.Context, boardID string) error {
	return s.images.ClearBoard(ctx, boardID)
}

func readAll(file ImageUpload) ([]byte, error) {
	rc, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func publish(ctx context.Context, publisher ports.EventPublisher, logger *zap.Logger, evts ...events.DomainEvent) {
	if publisher == nil {
		return
	}
	if err := publisher.PublishBatch(ctx, evts); err != nil {
		logger.Warn("Failed to publish events", zap.Int("count", len(evts)), zap.Error(err))
	}
}
