package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/varangian-core/magical-board/domain/core/entities"
	pkgerrors "github.com/varangian-core/magical-board/pkg/errors"
)

// BoardRepository keeps boards and board membership in process memory
type BoardRepository struct {
	mu      sync.RWMutex
	boards  map[string]*entities.Board
	members map[string][]string
}

// NewBoardRepository creates an empty in-memory board repository
func NewBoardRepository() *BoardRepository {
	return &BoardRepository{
		boards:  make(map[string]*entities.Board),
		members: make(map[string][]string),
	}
}

// CreateBoard stores the board and adds its creator as a member
func (r *BoardRepository) CreateBoard(ctx context.Context, board *entities.Board) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.boards[board.ID()]; exists {
		return pkgerrors.NewConflictError("board already exists: " + board.ID())
	}
	r.boards[board.ID()] = cloneBoard(board)
	r.addMember(board.ID(), board.CreatedBy())
	return nil
}

// GetBoard retrieves a board by id
func (r *BoardRepository) GetBoard(ctx context.Context, id string) (*entities.Board, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	board, ok := r.boards[id]
	if !ok {
		return nil, pkgerrors.NewNotFoundError("board")
	}
	return cloneBoard(board), nil
}

// GetBoardsByKingdom lists a kingdom's boards, most recently updated first
func (r *BoardRepository) GetBoardsByKingdom(ctx context.Context, kingdomID string) ([]*entities.Board, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*entities.Board, 0)
	for _, b := range r.boards {
		if b.KingdomID() == kingdomID {
			out = append(out, cloneBoard(b))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UpdatedAt().After(out[j].UpdatedAt())
	})
	return out, nil
}

// UpdateBoard applies a patch, returning nil when the board is missing
func (r *BoardRepository) UpdateBoard(ctx context.Context, id string, patch entities.BoardPatch) (*entities.Board, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	board, ok := r.boards[id]
	if !ok {
		return nil, nil
	}
	updated := cloneBoard(board)
	if err := updated.Apply(patch); err != nil {
		return nil, err
	}
	r.boards[id] = updated
	return cloneBoard(updated), nil
}

// DeleteBoard removes a board and its memberships
func (r *BoardRepository) DeleteBoard(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.boards[id]; !ok {
		return false, nil
	}
	delete(r.boards, id)
	delete(r.members, id)
	return true, nil
}

// AddUserToBoard records membership once per user
func (r *BoardRepository) AddUserToBoard(ctx context.Context, boardID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.boards[boardID]; !ok {
		return pkgerrors.NewNotFoundError("board")
	}
	r.addMember(boardID, userID)
	return nil
}

// GetBoardUsers returns member ids in join order
func (r *BoardRepository) GetBoardUsers(ctx context.Context, boardID string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, len(r.members[boardID]))
	copy(out, r.members[boardID])
	return out, nil
}

func (r *BoardRepository) addMember(boardID, userID string) {
	if userID == "" {
		return
	}
	for _, id := range r.members[boardID] {
		if id == userID {
			return
		}
	}
	r.members[boardID] = append(r.members[boardID], userID)
}

func cloneBoard(b *entities.Board) *entities.Board {
	var desc *string
	if b.Description() != nil {
		d := *b.Description()
		desc = &d
	}
	out, _ := entities.ReconstructBoard(b.ID(), b.Name(), desc, b.KingdomID(), b.CreatedBy(), b.CreatedAt(), b.UpdatedAt())
	return out
}
