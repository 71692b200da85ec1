package messaging

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/varangian-core/magical-board/application/ports/mocks"
	"github.com/varangian-core/magical-board/domain/events"
)

func TestLogPublisher(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	p := NewLogPublisher(zap.New(core))

	evts := []events.DomainEvent{
		events.NewBoardCreated("b1", "moon-kingdom", "u1", "Plans", time.Now()),
		events.NewBoardDeleted("b1", time.Now()),
	}
	require.NoError(t, p.PublishBatch(context.Background(), evts))

	entries := logs.FilterMessage("Domain event").All()
	require.Len(t, entries, 2)
	assert.Equal(t, events.TypeBoardCreated, entries[0].ContextMap()["eventType"])
	assert.Equal(t, "b1", entries[1].ContextMap()["aggregateID"])
}

func TestFanoutPublisher(t *testing.T) {
	evts := []events.DomainEvent{events.NewBoardDeleted("b1", time.Now())}

	tests := []struct {
		name       string
		primaryErr error
		observeErr error
		wantErr    bool
	}{
		{"all succeed", nil, nil, false},
		{"observer failure is swallowed", nil, errors.New("observer down"), false},
		{"primary failure is returned", errors.New("bus down"), nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			primary := new(mocks.MockEventPublisher)
			observerPub := new(mocks.MockEventPublisher)
			primary.On("PublishBatch", mock.Anything, evts).Return(tt.primaryErr)
			observerPub.On("PublishBatch", mock.Anything, evts).Return(tt.observeErr)

			p := NewFanoutPublisher(primary, zap.NewNop(), observerPub)
			err := p.Publish(context.Background(), evts[0])
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			primary.AssertExpectations(t)
			observerPub.AssertExpectations(t)
		})
	}
}
