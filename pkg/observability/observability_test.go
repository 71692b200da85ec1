package observability

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/varangian-core/magical-board/domain/events"
)

func TestCollector(t *testing.T) {
	c := NewCollector("board")

	c.RecordCommand("CreateBoardCommand", 10*time.Millisecond, nil)
	c.RecordCommand("CreateBoardCommand", 5*time.Millisecond, errors.New("boom"))
	c.RecordQuery("GetBoardQuery", time.Millisecond, nil)
	c.RecordHTTP("GET", "/api/v1/boards/{boardID}", 200, time.Millisecond)
	require.NoError(t, c.PublishBatch(context.Background(), []events.DomainEvent{
		events.NewBoardDeleted("b1", time.Now()),
		events.NewBoardDeleted("b2", time.Now()),
	}))

	assert.Equal(t, 1.0, testutil.ToFloat64(c.Commands.WithLabelValues("CreateBoardCommand", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Commands.WithLabelValues("CreateBoardCommand", "failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Queries.WithLabelValues("GetBoardQuery", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.HTTPRequests.WithLabelValues("GET", "/api/v1/boards/{boardID}", "200")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.DomainEvents.WithLabelValues(events.TypeBoardDeleted)))

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	assert.Contains(t, string(body), "board_commands_total")
}

func TestCollector_IndependentRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		NewCollector("board")
		NewCollector("board")
	})
}

type mockCloudWatch struct {
	mock.Mock
}

func (m *mockCloudWatch) PutMetricData(ctx context.Context, in *cloudwatch.PutMetricDataInput, _ ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error) {
	args := m.Called(ctx, in)
	return &cloudwatch.PutMetricDataOutput{}, args.Error(0)
}

func TestCloudWatchMetrics(t *testing.T) {
	client := &mockCloudWatch{}
	client.On("PutMetricData", mock.Anything, mock.MatchedBy(func(in *cloudwatch.PutMetricDataInput) bool {
		if aws.ToString(in.Namespace) != "MagicalBoard/test" || len(in.MetricData) != 2 {
			return false
		}
		d := in.MetricData[0]
		return aws.ToString(d.MetricName) == "CommandExecution" &&
			aws.ToString(d.Dimensions[0].Value) == "CreateUserCommand" &&
			aws.ToString(d.Dimensions[1].Value) == "failure"
	})).Return(nil).Once()
	client.On("PutMetricData", mock.Anything, mock.Anything).Return(errors.New("throttled")).Once()

	m := NewCloudWatchMetrics("MagicalBoard/test", client, zap.NewNop())
	m.RecordCommand("CreateUserCommand", 3*time.Millisecond, errors.New("bad"))
	// a failing send is only logged
	m.RecordQuery("ListUsersQuery", time.Millisecond, nil)

	client.AssertExpectations(t)
}

type countingRecorder struct{ commands, queries int }

func (r *countingRecorder) RecordCommand(string, time.Duration, error) { r.commands++ }
func (r *countingRecorder) RecordQuery(string, time.Duration, error)   { r.queries++ }

func TestMultiRecorder(t *testing.T) {
	a, b := &countingRecorder{}, &countingRecorder{}
	m := MultiRecorder{a, b}
	m.RecordCommand("x", 0, nil)
	m.RecordQuery("y", 0, nil)
	m.RecordQuery("y", 0, nil)

	assert.Equal(t, 1, a.commands)
	assert.Equal(t, 2, b.queries)
}

func TestInitTracing_Disabled(t *testing.T) {
	tp, err := InitTracing(context.Background(), TracingConfig{})
	require.NoError(t, err)

	_, span := tp.Tracer().Start(context.Background(), "noop")
	span.End()
	assert.False(t, span.SpanContext().IsValid())
	assert.NoError(t, tp.Shutdown(context.Background()))
}
