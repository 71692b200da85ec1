package decorators

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"

	"github.com/varangian-core/magical-board/domain/core/entities"
	"github.com/varangian-core/magical-board/infrastructure/persistence/memory"
	pkgerrors "github.com/varangian-core/magical-board/pkg/errors"
)

type flakyUsers struct {
	*memory.UserRepository
	calls int
}

func (f *flakyUsers) GetAllUsers(context.Context) ([]*entities.User, error) {
	f.calls++
	return nil, pkgerrors.NewDatabaseError("list users", errors.New("connection reset"))
}

func testBreakerConfig() CircuitBreakerConfig {
	cfg := DefaultCircuitBreakerConfig("users")
	cfg.MinRequests = 3
	cfg.Timeout = time.Minute
	return cfg
}

func TestBreaker_TripsOnInfrastructureFailures(t *testing.T) {
	ctx := context.Background()
	inner := &flakyUsers{UserRepository: memory.NewUserRepository()}
	repo := NewBreakerUserRepository(inner, NewCircuitBreaker(testBreakerConfig(), zap.NewNop()))

	for i := 0; i < 3; i++ {
		_, err := repo.GetAllUsers(ctx)
		require.Error(t, err)
		assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeDatabase))
	}

	_, err := repo.GetAllUsers(ctx)
	assert.True(t, pkgerrors.IsUnavailable(err))
	assert.Equal(t, 3, inner.calls)

	// every method shares the open breaker
	_, err = repo.GetUser(ctx, "u1")
	assert.True(t, pkgerrors.IsUnavailable(err))
}

func TestBreaker_IgnoresDomainErrors(t *testing.T) {
	ctx := context.Background()
	repo := NewBreakerBoardRepository(memory.NewBoardRepository(), NewCircuitBreaker(testBreakerConfig(), zap.NewNop()))

	for i := 0; i < 10; i++ {
		_, err := repo.GetBoard(ctx, "missing")
		assert.True(t, pkgerrors.IsNotFound(err))
	}

	board, err := entities.NewBoard("b1", "Plans", "moon-kingdom", "u1", nil)
	require.NoError(t, err)
	require.NoError(t, repo.CreateBoard(ctx, board))

	got, err := repo.GetBoard(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, "Plans", got.Name())

	updated, err := repo.UpdateBoard(ctx, "missing", entities.BoardPatch{})
	require.NoError(t, err)
	assert.Nil(t, updated)
}

func TestTracing_RecordsSpans(t *testing.T) {
	ctx := context.Background()
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	tracer := provider.Tracer("test")

	boards := TraceBoardRepository(memory.NewBoardRepository(), tracer)
	board, err := entities.NewBoard("b1", "Plans", "moon-kingdom", "u1", nil)
	require.NoError(t, err)
	require.NoError(t, boards.CreateBoard(ctx, board))
	_, err = boards.GetBoard(ctx, "missing")
	require.Error(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "repository.CreateBoard", spans[0].Name())
	assert.Equal(t, codes.Unset, spans[0].Status().Code)
	assert.Equal(t, "repository.GetBoard", spans[1].Name())
	assert.Equal(t, codes.Error, spans[1].Status().Code)
}
