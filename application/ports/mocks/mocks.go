// Package mocks provides testify mocks for the application ports
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/varangian-core/magical-board/application/ports"
	"github.com/varangian-core/magical-board/domain/events"
)

// MockEventPublisher is a mock implementation of ports.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, event events.DomainEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventPublisher) PublishBatch(ctx context.Context, evts []events.DomainEvent) error {
	args := m.Called(ctx, evts)
	return args.Error(0)
}

// MockImageStore is a mock implementation of ports.ImageStore
type MockImageStore struct {
	mock.Mock
}

func (m *MockImageStore) Store(ctx context.Context, boardID, name string, data []byte) (*ports.StoredImage, error) {
	args := m.Called(ctx, boardID, name, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.StoredImage), args.Error(1)
}

func (m *MockImageStore) Get(ctx context.Context, id string) (*ports.StoredImage, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.StoredImage), args.Error(1)
}

func (m *MockImageStore) ListByBoard(ctx context.Context, boardID string) ([]ports.StoredImage, error) {
	args := m.Called(ctx, boardID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ports.StoredImage), args.Error(1)
}

func (m *MockImageStore) Delete(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockImageStore) ClearBoard(ctx context.Context, boardID string) error {
	args := m.Called(ctx, boardID)
	return args.Error(0)
}

func (m *MockImageStore) Info(ctx context.Context) (ports.StorageInfo, error) {
	args := m.Called(ctx)
	return args.Get(0).(ports.StorageInfo), args.Error(1)
}

var (
	_ ports.EventPublisher = (*MockEventPublisher)(nil)
	_ ports.ImageStore     = (*MockImageStore)(nil)
)
