package sessions

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/varangian-core/magical-board/application/canvas"
	"github.com/varangian-core/magical-board/application/ports"
	"github.com/varangian-core/magical-board/domain/core/aggregates"
	"github.com/varangian-core/magical-board/domain/core/entities"
	"github.com/varangian-core/magical-board/domain/core/valueobjects"
	"github.com/varangian-core/magical-board/domain/events"
	pkgerrors "github.com/varangian-core/magical-board/pkg/errors"
)

// Session is one open board. All gestures on the board run through Do,
// which serializes them and persists the resulting changes before the
// next gesture starts.
type Session struct {
	mu         sync.Mutex
	boardID    string
	controller *canvas.Controller
	elements   ports.ElementRepository
	publisher  ports.EventPublisher
	logger     *zap.Logger
	openedAt   time.Time
	closed     bool
}

// Snapshot is a point-in-time copy of a session's state
type Snapshot struct {
	BoardID           string
	Elements          []*entities.BoardElement
	Selected          *valueobjects.ElementID
	Editing           *entities.EditingState
	PendingConnection *aggregates.PendingConnection
	OpenedAt          time.Time
}

func newSession(boardID string, controller *canvas.Controller, elements ports.ElementRepository, publisher ports.EventPublisher, logger *zap.Logger) *Session {
	return &Session{
		boardID:    boardID,
		controller: controller,
		elements:   elements,
		publisher:  publisher,
		logger:     logger.With(zap.String("board_id", boardID)),
		openedAt:   time.Now().UTC(),
	}
}

// BoardID returns the id of the board
func (s *Session) BoardID() string {
	return s.boardID
}

// Do runs fn against the board's controller. The current user is set for
// the duration of the call so new elements are attributed to them.
// Changes are flushed to the element repository and event publisher
// before Do returns.
func (s *Session) Do(ctx context.Context, user *entities.User, fn func(c *canvas.Controller) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return pkgerrors.NewConflictError("board session is closed")
	}

	s.controller.State().SetCurrentUser(user)
	err := fn(s.controller)
	s.flush(ctx)
	return err
}

// View runs fn with read access to the controller
func (s *Session) View(fn func(c *canvas.Controller)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return pkgerrors.NewConflictError("board session is closed")
	}
	fn(s.controller)
	return nil
}

// Snapshot copies the session state
func (s *Session) Snapshot() (Snapshot, error) {
	var snap Snapshot
	err := s.View(func(c *canvas.Controller) {
		state := c.State()
		snap = Snapshot{
			BoardID:           s.boardID,
			Elements:          state.Elements(),
			Selected:          state.SelectedElement(),
			Editing:           state.Editing(),
			PendingConnection: state.PendingConnection(),
			OpenedAt:          s.openedAt,
		}
	})
	return snap, err
}

// close flushes outstanding changes and rejects further gestures
func (s *Session) close(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.flush(ctx)
	s.closed = true
}

// flush persists the uncommitted events. Persistence is best-effort:
// failures are logged and the in-memory state stays authoritative.
func (s *Session) flush(ctx context.Context) {
	state := s.controller.State()
	pending := state.GetUncommittedEvents()
	if len(pending) == 0 {
		return
	}

	updated := make(map[string]bool)
	for _, event := range pending {
		switch e := event.(type) {
		case events.ElementAdded:
			el, ok := state.Element(e.ElementID)
			if !ok {
				continue
			}
			record, err := ports.NewElementRecord(s.boardID, el)
			if err == nil {
				err = s.elements.AddElement(ctx, record)
			}
			if err != nil {
				s.logger.Error("Failed to persist added element", zap.String("element_id", e.ElementID.String()), zap.Error(err))
			}
			// The inserted record already carries the latest state.
			updated[e.ElementID.String()] = true

		case events.ElementUpdated:
			id := e.ElementID.String()
			if updated[id] {
				continue
			}
			updated[id] = true
			el, ok := state.Element(e.ElementID)
			if !ok {
				continue
			}
			patch, err := ports.FullPatch(el)
			if err == nil {
				_, err = s.elements.UpdateElement(ctx, id, patch)
			}
			if err != nil {
				s.logger.Error("Failed to persist element update", zap.String("element_id", id), zap.Error(err))
			}

		case events.ElementDeleted:
			if _, err := s.elements.DeleteElement(ctx, e.ElementID.String()); err != nil {
				s.logger.Error("Failed to delete element", zap.String("element_id", e.ElementID.String()), zap.Error(err))
			}
		}
	}

	if s.publisher != nil {
		if err := s.publisher.PublishBatch(ctx, pending); err != nil {
			s.logger.Warn("Failed to publish board events", zap.Int("count", len(pending)), zap.Error(err))
		}
	}
	state.MarkEventsAsCommitted()
}
