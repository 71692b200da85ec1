package memory

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/varangian-core/magical-board/application/ports"
	pkgerrors "github.com/varangian-core/magical-board/pkg/errors"
)

// ElementRepository keeps element records in process memory
type ElementRepository struct {
	mu      sync.RWMutex
	records map[string]ports.ElementRecord
}

// NewElementRepository creates an empty in-memory element repository
func NewElementRepository() *ElementRepository {
	return &ElementRepository{
		records: make(map[string]ports.ElementRecord),
	}
}

// AddElement stores a record
func (r *ElementRepository) AddElement(ctx context.Context, record ports.ElementRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.records[record.ID]; exists {
		return pkgerrors.NewConflictError("element already exists: " + record.ID)
	}
	r.records[record.ID] = copyRecord(record)
	return nil
}

// UpdateElement applies a patch, returning nil when the record is missing
func (r *ElementRepository) UpdateElement(ctx context.Context, id string, patch ports.ElementRecordPatch) (*ports.ElementRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, ok := r.records[id]
	if !ok {
		return nil, nil
	}
	record = copyRecord(record)
	record.Apply(patch)
	r.records[id] = record

	out := copyRecord(record)
	return &out, nil
}

// DeleteElement removes a record
func (r *ElementRepository) DeleteElement(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.records[id]; !ok {
		return false, nil
	}
	delete(r.records, id)
	return true, nil
}

// GetBoardElements returns a board's records ordered by zIndex
func (r *ElementRepository) GetBoardElements(ctx context.Context, boardID string) ([]ports.ElementRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]ports.ElementRecord, 0)
	for _, rec := range r.records {
		if rec.BoardID == boardID {
			out = append(out, copyRecord(rec))
		}
	}
	sortRecords(out)
	return out, nil
}

// DeleteBoardElements removes every record of a board
func (r *ElementRepository) DeleteBoardElements(ctx context.Context, boardID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, rec := range r.records {
		if rec.BoardID == boardID {
			delete(r.records, id)
		}
	}
	return nil
}

// sortRecords orders by zIndex, then creation time, then id, so the
// result is stable across map iteration orders
func sortRecords(records []ports.ElementRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.ZIndex != b.ZIndex {
			return a.ZIndex < b.ZIndex
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}

func copyRecord(r ports.ElementRecord) ports.ElementRecord {
	r.Content = append(json.RawMessage(nil), r.Content...)
	if r.LockedBy != nil {
		lockedBy := *r.LockedBy
		r.LockedBy = &lockedBy
	}
	return r
}
