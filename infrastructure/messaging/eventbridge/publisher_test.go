package eventbridge

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/varangian-core/magical-board/domain/events"
	pkgerrors "github.com/varangian-core/magical-board/pkg/errors"
)

type mockPutEvents struct {
	mock.Mock
}

func (m *mockPutEvents) PutEvents(ctx context.Context, in *eventbridge.PutEventsInput, _ ...func(*eventbridge.Options)) (*eventbridge.PutEventsOutput, error) {
	args := m.Called(ctx, in)
	if out := args.Get(0); out != nil {
		return out.(*eventbridge.PutEventsOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

func boardEvents(n int) []events.DomainEvent {
	out := make([]events.DomainEvent, n)
	for i := range out {
		out[i] = events.NewBoardDeleted("b1", time.Now())
	}
	return out
}

func TestPublisher_BatchesOfTen(t *testing.T) {
	client := &mockPutEvents{}
	var sizes []int
	client.On("PutEvents", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			sizes = append(sizes, len(args.Get(1).(*eventbridge.PutEventsInput).Entries))
		}).
		Return(&eventbridge.PutEventsOutput{}, nil)

	p := NewPublisher(client, "board-bus", "", zap.NewNop())
	require.NoError(t, p.PublishBatch(context.Background(), boardEvents(23)))
	assert.Equal(t, []int{10, 10, 3}, sizes)
}

func TestPublisher_EntryShape(t *testing.T) {
	client := &mockPutEvents{}
	client.On("PutEvents", mock.Anything, mock.MatchedBy(func(in *eventbridge.PutEventsInput) bool {
		e := in.Entries[0]
		var detail map[string]interface{}
		if err := json.Unmarshal([]byte(aws.ToString(e.Detail)), &detail); err != nil {
			return false
		}
		return aws.ToString(e.EventBusName) == "board-bus" &&
			aws.ToString(e.Source) == DefaultSource &&
			aws.ToString(e.DetailType) == events.TypeBoardDeleted &&
			detail["aggregate_id"] == "b1"
	})).Return(&eventbridge.PutEventsOutput{}, nil)

	p := NewPublisher(client, "board-bus", "", zap.NewNop())
	require.NoError(t, p.Publish(context.Background(), boardEvents(1)[0]))
	client.AssertExpectations(t)
}

func TestPublisher_Failures(t *testing.T) {
	tests := []struct {
		name string
		out  *eventbridge.PutEventsOutput
		err  error
	}{
		{"transport error", nil, errors.New("throttled")},
		{"failed entries", &eventbridge.PutEventsOutput{
			FailedEntryCount: 1,
			Entries:          []types.PutEventsResultEntry{{ErrorCode: aws.String("InternalFailure")}},
		}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &mockPutEvents{}
			client.On("PutEvents", mock.Anything, mock.Anything).Return(tt.out, tt.err)

			p := NewPublisher(client, "board-bus", "", zap.NewNop())
			err := p.PublishBatch(context.Background(), boardEvents(1))
			require.Error(t, err)
			assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeExternal))
		})
	}
}

func TestPublisher_EmptyBatch(t *testing.T) {
	client := &mockPutEvents{}
	p := NewPublisher(client, "board-bus", "", zap.NewNop())
	require.NoError(t, p.PublishBatch(context.Background(), nil))
	client.AssertNotCalled(t, "PutEvents", mock.Anything, mock.Anything)
}
