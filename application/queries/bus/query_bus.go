package bus

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"time"

	pkgerrors "github.com/varangian-core/magical-board/pkg/errors"
)

// Query represents a read-only query
type Query interface {
	Validate() error
}

// QueryHandler handles a specific query type
type QueryHandler interface {
	Handle(ctx context.Context, query Query) (interface{}, error)
}

// QueryHandlerFunc is an adapter to allow functions to be used as handlers
type QueryHandlerFunc func(ctx context.Context, query Query) (interface{}, error)

// Handle implements QueryHandler
func (f QueryHandlerFunc) Handle(ctx context.Context, query Query) (interface{}, error) {
	return f(ctx, query)
}

// QueryBus dispatches queries to their handlers
type QueryBus struct {
	handlers map[reflect.Type]QueryHandler
	metrics  MetricsRecorder
	mu       sync.RWMutex
}

// NewQueryBus creates a new query bus. metrics may be nil.
func NewQueryBus(metrics MetricsRecorder) *QueryBus {
	return &QueryBus{
		handlers: make(map[reflect.Type]QueryHandler),
		metrics:  metrics,
	}
}

// Register registers a handler for a query type
func (b *QueryBus) Register(queryType Query, handler QueryHandler) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	t := reflect.TypeOf(queryType)
	if _, exists := b.handlers[t]; exists {
		return fmt.Errorf("handler already registered for query type %s", t.Name())
	}

	if b.metrics != nil {
		handler = NewMetricsMiddleware(b.metrics).Wrap(handler)
	}
	b.handlers[t] = handler
	return nil
}

// Ask dispatches a query to its handler and returns the result
func (b *QueryBus) Ask(ctx context.Context, query Query) (interface{}, error) {
	if err := query.Validate(); err != nil {
		if pkgerrors.IsAppError(err) {
			return nil, err
		}
		return nil, pkgerrors.NewValidationError(err.Error())
	}

	b.mu.RLock()
	handler, exists := b.handlers[reflect.TypeOf(query)]
	b.mu.RUnlock()

	if !exists {
		return nil, pkgerrors.NewInternalError(fmt.Sprintf("no handler registered for query type %T", query))
	}

	result, err := handler.Handle(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query handler failed: %w", err)
	}
	return result, nil
}

// MetricsRecorder receives one observation per executed query
type MetricsRecorder interface {
	RecordQuery(name string, duration time.Duration, err error)
}

// MetricsMiddleware adds metrics to query handlers
type MetricsMiddleware struct {
	metrics MetricsRecorder
}

// NewMetricsMiddleware creates a new metrics middleware
func NewMetricsMiddleware(metrics MetricsRecorder) *MetricsMiddleware {
	return &MetricsMiddleware{metrics: metrics}
}

// Wrap wraps a query handler with metrics
func (m *MetricsMiddleware) Wrap(next QueryHandler) QueryHandler {
	return QueryHandlerFunc(func(ctx context.Context, query Query) (interface{}, error) {
		start := time.Now()
		result, err := next.Handle(ctx, query)
		m.metrics.RecordQuery(reflect.TypeOf(query).Name(), time.Since(start), err)
		return result, err
	})
}
