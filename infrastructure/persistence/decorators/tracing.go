package decorators

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/varangian-core/magical-board/application/ports"
	"github.com/varangian-core/magical-board/domain/core/entities"
)

func startSpan(ctx context.Context, tracer trace.Tracer, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tracer.Start(ctx, "repository."+name, trace.WithAttributes(attrs...))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// TracedBoardRepository records a span per board repository call
type TracedBoardRepository struct {
	inner  ports.BoardRepository
	tracer trace.Tracer
}

// TraceBoardRepository wraps a board repository with tracing
func TraceBoardRepository(repo ports.BoardRepository, tracer trace.Tracer) *TracedBoardRepository {
	return &TracedBoardRepository{inner: repo, tracer: tracer}
}

func (r *TracedBoardRepository) CreateBoard(ctx context.Context, board *entities.Board) (err error) {
	ctx, span := startSpan(ctx, r.tracer, "CreateBoard",
		attribute.String("board.id", board.ID()),
		attribute.String("kingdom.id", board.KingdomID()),
	)
	defer func() { endSpan(span, err) }()
	return r.inner.CreateBoard(ctx, board)
}

func (r *TracedBoardRepository) GetBoard(ctx context.Context, id string) (_ *entities.Board, err error) {
	ctx, span := startSpan(ctx, r.tracer, "GetBoard", attribute.String("board.id", id))
	defer func() { endSpan(span, err) }()
	return r.inner.GetBoard(ctx, id)
}

func (r *TracedBoardRepository) GetBoardsByKingdom(ctx context.Context, kingdomID string) (boards []*entities.Board, err error) {
	ctx, span := startSpan(ctx, r.tracer, "GetBoardsByKingdom", attribute.String("kingdom.id", kingdomID))
	defer func() {
		span.SetAttributes(attribute.Int("result.count", len(boards)))
		endSpan(span, err)
	}()
	return r.inner.GetBoardsByKingdom(ctx, kingdomID)
}

func (r *TracedBoardRepository) UpdateBoard(ctx context.Context, id string, patch entities.BoardPatch) (_ *entities.Board, err error) {
	ctx, span := startSpan(ctx, r.tracer, "UpdateBoard", attribute.String("board.id", id))
	defer func() { endSpan(span, err) }()
	return r.inner.UpdateBoard(ctx, id, patch)
}

func (r *TracedBoardRepository) DeleteBoard(ctx context.Context, id string) (_ bool, err error) {
	ctx, span := startSpan(ctx, r.tracer, "DeleteBoard", attribute.String("board.id", id))
	defer func() { endSpan(span, err) }()
	return r.inner.DeleteBoard(ctx, id)
}

func (r *TracedBoardRepository) AddUserToBoard(ctx context.Context, boardID, userID string) (err error) {
	ctx, span := startSpan(ctx, r.tracer, "AddUserToBoard",
		attribute.String("board.id", boardID),
		attribute.String("user.id", userID),
	)
	defer func() { endSpan(span, err) }()
	return r.inner.AddUserToBoard(ctx, boardID, userID)
}

func (r *TracedBoardRepository) GetBoardUsers(ctx context.Context, boardID string) (_ []string, err error) {
	ctx, span := startSpan(ctx, r.tracer, "GetBoardUsers", attribute.String("board.id", boardID))
	defer func() { endSpan(span, err) }()
	return r.inner.GetBoardUsers(ctx, boardID)
}

// TracedElementRepository records a span per element repository call
type TracedElementRepository struct {
	inner  ports.ElementRepository
	tracer trace.Tracer
}

// TraceElementRepository wraps an element repository with tracing
func TraceElementRepository(repo ports.ElementRepository, tracer trace.Tracer) *TracedElementRepository {
	return &TracedElementRepository{inner: repo, tracer: tracer}
}

func (r *TracedElementRepository) AddElement(ctx context.Context, record ports.ElementRecord) (err error) {
	ctx, span := startSpan(ctx, r.tracer, "AddElement",
		attribute.String("board.id", record.BoardID),
		attribute.String("element.id", record.ID),
		attribute.String("element.type", record.Type),
	)
	defer func() { endSpan(span, err) }()
	return r.inner.AddElement(ctx, record)
}

func (r *TracedElementRepository) UpdateElement(ctx context.Context, id string, patch ports.ElementRecordPatch) (_ *ports.ElementRecord, err error) {
	ctx, span := startSpan(ctx, r.tracer, "UpdateElement", attribute.String("element.id", id))
	defer func() { endSpan(span, err) }()
	return r.inner.UpdateElement(ctx, id, patch)
}

func (r *TracedElementRepository) DeleteElement(ctx context.Context, id string) (_ bool, err error) {
	ctx, span := startSpan(ctx, r.tracer, "DeleteElement", attribute.String("element.id", id))
	defer func() { endSpan(span, err) }()
	return r.inner.DeleteElement(ctx, id)
}

func (r *TracedElementRepository) GetBoardElements(ctx context.Context, boardID string) (records []ports.ElementRecord, err error) {
	ctx, span := startSpan(ctx, r.tracer, "GetBoardElements", attribute.String("board.id", boardID))
	defer func() {
		span.SetAttributes(attribute.Int("result.count", len(records)))
		endSpan(span, err)
	}()
	return r.inner.GetBoardElements(ctx, boardID)
}

func (r *TracedElementRepository) DeleteBoardElements(ctx context.Context, boardID string) (err error) {
	ctx, span := startSpan(ctx, r.tracer, "DeleteBoardElements", attribute.String("board.id", boardID))
	defer func() { endSpan(span, err) }()
	return r.inner.DeleteBoardElements(ctx, boardID)
}

// TracedUserRepository records a span per user repository call
type TracedUserRepository struct {
	inner  ports.UserRepository
	tracer trace.Tracer
}

// TraceUserRepository wraps a user repository with tracing
func TraceUserRepository(repo ports.UserRepository, tracer trace.Tracer) *TracedUserRepository {
	return &TracedUserRepository{inner: repo, tracer: tracer}
}

func (r *TracedUserRepository) CreateUser(ctx context.Context, user *entities.User) (err error) {
	ctx, span := startSpan(ctx, r.tracer, "CreateUser", attribute.String("user.id", user.ID()))
	defer func() { endSpan(span, err) }()
	return r.inner.CreateUser(ctx, user)
}

func (r *TracedUserRepository) GetUser(ctx context.Context, id string) (_ *entities.User, err error) {
	ctx, span := startSpan(ctx, r.tracer, "GetUser", attribute.String("user.id", id))
	defer func() { endSpan(span, err) }()
	return r.inner.GetUser(ctx, id)
}

func (r *TracedUserRepository) GetAllUsers(ctx context.Context) (users []*entities.User, err error) {
	ctx, span := startSpan(ctx, r.tracer, "GetAllUsers")
	defer func() {
		span.SetAttributes(attribute.Int("result.count", len(users)))
		endSpan(span, err)
	}()
	return r.inner.GetAllUsers(ctx)
}

func (r *TracedUserRepository) UpdateLastActive(ctx context.Context, id string) (err error) {
	ctx, span := startSpan(ctx, r.tracer, "UpdateLastActive", attribute.String("user.id", id))
	defer func() { endSpan(span, err) }()
	return r.inner.UpdateLastActive(ctx, id)
}

func (r *TracedUserRepository) DeleteUser(ctx context.Context, id string) (_ bool, err error) {
	ctx, span := startSpan(ctx, r.tracer, "DeleteUser", attribute.String("user.id", id))
	defer func() { endSpan(span, err) }()
	return r.inner.DeleteUser(ctx, id)
}

var (
	_ ports.BoardRepository   = (*TracedBoardRepository)(nil)
	_ ports.ElementRepository = (*TracedElementRepository)(nil)
	_ ports.UserRepository    = (*TracedUserRepository)(nil)
)
