// Package sessions owns the lifecycle of open boards. Each open board has
// exactly one state store and controller, reachable through its Session.
package sessions

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/varangian-core/magical-board/application/canvas"
	"github.com/varangian-core/magical-board/application/ports"
	"github.com/varangian-core/magical-board/domain/config"
	"github.com/varangian-core/magical-board/domain/core/aggregates"
	"github.com/varangian-core/magical-board/domain/services"
	pkgerrors "github.com/varangian-core/magical-board/pkg/errors"
)

// Manager opens, tracks and closes board sessions
type Manager struct {
	mu        sync.Mutex
	sessions  map[string]*Session
	boards    ports.BoardRepository
	elements  ports.ElementRepository
	publisher ports.EventPublisher
	layout    *services.TimelineLayoutService
	config    *config.DomainConfig
	logger    *zap.Logger
}

// NewManager creates a session manager
func NewManager(
	boards ports.BoardRepository,
	elements ports.ElementRepository,
	publisher ports.EventPublisher,
	layout *services.TimelineLayoutService,
	cfg *config.DomainConfig,
	logger *zap.Logger,
) *Manager {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	if layout == nil {
		layout = services.NewTimelineLayoutService(cfg)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		sessions:  make(map[string]*Session),
		boards:    boards,
		elements:  elements,
		publisher: publisher,
		layout:    layout,
		config:    cfg,
		logger:    logger,
	}
}

// Open returns the board's session, loading the board and its elements
// when it is not open yet
func (m *Manager) Open(ctx context.Context, boardID string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[boardID]; ok {
		return s, nil
	}

	if _, err := m.boards.GetBoard(ctx, boardID); err != nil {
		return nil, err
	}
	records, err := m.elements.GetBoardElements(ctx, boardID)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to load board elements")
	}
	elements, err := ports.ToElements(records)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to decode board elements")
	}
	state, err := aggregates.RestoreBoardState(boardID, m.config, elements)
	if err != nil {
		return nil, pkgerrors.NewInternalError(err.Error())
	}

	s := newSession(boardID, canvas.NewController(state, m.layout), m.elements, m.publisher, m.logger)
	m.sessions[boardID] = s
	m.logger.Info("Board session opened", zap.String("board_id", boardID), zap.Int("elements", len(elements)))
	return s, nil
}

// Get returns an open session
func (m *Manager) Get(boardID string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[boardID]
	if !ok {
		return nil, pkgerrors.NewNotFoundError("board session")
	}
	return s, nil
}

// IsOpen reports whether the board has a live session
func (m *Manager) IsOpen(boardID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.sessions[boardID]
	return ok
}

// Close flushes and removes a session. Gestures still holding the
// session afterwards get a conflict error.
func (m *Manager) Close(ctx context.Context, boardID string) error {
	m.mu.Lock()
	s, ok := m.sessions[boardID]
	delete(m.sessions, boardID)
	m.mu.Unlock()

	if !ok {
		return pkgerrors.NewNotFoundError("board session")
	}
	s.close(ctx)
	m.logger.Info("Board session closed", zap.String("board_id", boardID))
	return nil
}

// CloseAll closes every open session
func (m *Manager) CloseAll(ctx context.Context) {
	m.mu.Lock()
	open := make([]*Session, 0, len(m.sessions))
	for id, s := range m.sessions {
		open = append(open, s)
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	for _, s := range open {
		s.close(ctx)
	}
	m.logger.Info("All board sessions closed", zap.Int("count", len(open)))
}

// Count returns the number of open sessions
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
