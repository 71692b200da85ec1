// Package decorators wraps the persistence ports with circuit breaking and
// tracing. Decorators compose: tracing outside, breaker inside.
package decorators

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/varangian-core/magical-board/application/ports"
	"github.com/varangian-core/magical-board/domain/core/entities"
	pkgerrors "github.com/varangian-core/magical-board/pkg/errors"
)

// CircuitBreakerConfig holds configuration for a repository circuit breaker
type CircuitBreakerConfig struct {
	Name        string
	MaxRequests uint32
	Interval    time.Duration
	Timeout     time.Duration
	// trip once at least MinRequests were seen and this share failed
	FailureThreshold float64
	MinRequests      uint32
}

// DefaultCircuitBreakerConfig returns the defaults for a storage backend
func DefaultCircuitBreakerConfig(name string) CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Name:             name,
		MaxRequests:      5,
		Interval:         30 * time.Second,
		Timeout:          60 * time.Second,
		FailureThreshold: 0.8,
		MinRequests:      5,
	}
}

// NewCircuitBreaker builds a breaker that only counts infrastructure
// failures. Not-found, validation and conflict errors are normal answers.
func NewCircuitBreaker(cfg CircuitBreakerConfig, logger *zap.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
		IsSuccessful: func(err error) bool {
			return err == nil ||
				pkgerrors.IsNotFound(err) ||
				pkgerrors.IsValidation(err) ||
				pkgerrors.IsConflict(err)
		},
	})
}

func guard[T any](cb *gobreaker.CircuitBreaker, fn func() (T, error)) (T, error) {
	out, err := cb.Execute(func() (interface{}, error) {
		return fn()
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		var zero T
		return zero, pkgerrors.NewUnavailableError(cb.Name()).WithCause(err)
	}
	if err != nil {
		var zero T
		return zero, err
	}
	if out == nil {
		var zero T
		return zero, nil
	}
	return out.(T), nil
}

func guardErr(cb *gobreaker.CircuitBreaker, fn func() error) error {
	_, err := guard(cb, func() (struct{}, error) { return struct{}{}, fn() })
	return err
}

// BreakerBoardRepository guards a board repository with a circuit breaker
type BreakerBoardRepository struct {
	inner ports.BoardRepository
	cb    *gobreaker.CircuitBreaker
}

// NewBreakerBoardRepository wraps repo
func NewBreakerBoardRepository(repo ports.BoardRepository, cb *gobreaker.CircuitBreaker) *BreakerBoardRepository {
	return &BreakerBoardRepository{inner: repo, cb: cb}
}

func (r *BreakerBoardRepository) CreateBoard(ctx context.Context, board *entities.Board) error {
	return guardErr(r.cb, func() error { return r.inner.CreateBoard(ctx, board) })
}

func (r *BreakerBoardRepository) GetBoard(ctx context.Context, id string) (*entities.Board, error) {
	return guard(r.cb, func() (*entities.Board, error) { return r.inner.GetBoard(ctx, id) })
}

func (r *BreakerBoardRepository) GetBoardsByKingdom(ctx context.Context, kingdomID string) ([]*entities.Board, error) {
	return guard(r.cb, func() ([]*entities.Board, error) { return r.inner.GetBoardsByKingdom(ctx, kingdomID) })
}

func (r *BreakerBoardRepository) UpdateBoard(ctx context.Context, id string, patch entities.BoardPatch) (*entities.Board, error) {
	return guard(r.cb, func() (*entities.Board, error) { return r.inner.UpdateBoard(ctx, id, patch) })
}

func (r *BreakerBoardRepository) DeleteBoard(ctx context.Context, id string) (bool, error) {
	return guard(r.cb, func() (bool, error) { return r.inner.DeleteBoard(ctx, id) })
}

func (r *BreakerBoardRepository) AddUserToBoard(ctx context.Context, boardID, userID string) error {
	return guardErr(r.cb, func() error { return r.inner.AddUserToBoard(ctx, boardID, userID) })
}

func (r *BreakerBoardRepository) GetBoardUsers(ctx context.Context, boardID string) ([]string, error) {
	return guard(r.cb, func() ([]string, error) { return r.inner.GetBoardUsers(ctx, boardID) })
}

// BreakerElementRepository guards an element repository with a circuit breaker
type BreakerElementRepository struct {
	inner ports.ElementRepository
	cb    *gobreaker.CircuitBreaker
}

// NewBreakerElementRepository wraps repo
func NewBreakerElementRepository(repo ports.ElementRepository, cb *gobreaker.CircuitBreaker) *BreakerElementRepository {
	return &BreakerElementRepository{inner: repo, cb: cb}
}

func (r *BreakerElementRepository) AddElement(ctx context.Context, record ports.ElementRecord) error {
	return guardErr(r.cb, func() error { return r.inner.AddElement(ctx, record) })
}

func (r *BreakerElementRepository) UpdateElement(ctx context.Context, id string, patch ports.ElementRecordPatch) (*ports.ElementRecord, error) {
	return guard(r.cb, func() (*ports.ElementRecord, error) { return r.inner.UpdateElement(ctx, id, patch) })
}

func (r *BreakerElementRepository) DeleteElement(ctx context.Context, id string) (bool, error) {
	return guard(r.cb, func() (bool, error) { return r.inner.DeleteElement(ctx, id) })
}

func (r *BreakerElementRepository) GetBoardElements(ctx context.Context, boardID string) ([]ports.ElementRecord, error) {
	return guard(r.cb, func() ([]ports.ElementRecord, error) { return r.inner.GetBoardElements(ctx, boardID) })
}

func (r *BreakerElementRepository) DeleteBoardElements(ctx context.Context, boardID string) error {
	return guardErr(r.cb, func() error { return r.inner.DeleteBoardElements(ctx, boardID) })
}

// BreakerUserRepository guards a user repository with a circuit breaker
type BreakerUserRepository struct {
	inner ports.UserRepository
	cb    *gobreaker.CircuitBreaker
}

// NewBreakerUserRepository wraps repo
func NewBreakerUserRepository(repo ports.UserRepository, cb *gobreaker.CircuitBreaker) *BreakerUserRepository {
	return &BreakerUserRepository{inner: repo, cb: cb}
}

func (r *BreakerUserRepository) CreateUser(ctx context.Context, user *entities.User) error {
	return guardErr(r.cb, func() error { return r.inner.CreateUser(ctx, user) })
}

func (r *BreakerUserRepository) GetUser(ctx context.Context, id string) (*entities.User, error) {
	return guard(r.cb, func() (*entities.User, error) { return r.inner.GetUser(ctx, id) })
}

func (r *BreakerUserRepository) GetAllUsers(ctx context.Context) ([]*entities.User, error) {
	return guard(r.cb, func() ([]*entities.User, error) { return r.inner.GetAllUsers(ctx) })
}

func (r *BreakerUserRepository) UpdateLastActive(ctx context.Context, id string) error {
	return guardErr(r.cb, func() error { return r.inner.UpdateLastActive(ctx, id) })
}

func (r *BreakerUserRepository) DeleteUser(ctx context.Context, id string) (bool, error) {
	return guard(r.cb, func() (bool, error) { return r.inner.DeleteUser(ctx, id) })
}

var (
	_ ports.BoardRepository   = (*BreakerBoardRepository)(nil)
	_ ports.ElementRepository = (*BreakerElementRepository)(nil)
	_ ports.UserRepository    = (*BreakerUserRepository)(nil)
)
