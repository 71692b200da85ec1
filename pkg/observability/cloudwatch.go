package observability

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"go.uber.org/zap"
)

const putMetricTimeout = 2 * time.Second

// PutMetricDataAPI is the part of the CloudWatch client the recorder uses
type PutMetricDataAPI interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// CloudWatchMetrics sends command and query timings to CloudWatch
type CloudWatchMetrics struct {
	namespace string
	client    PutMetricDataAPI
	logger    *zap.Logger
}

// NewCloudWatchMetrics creates a new CloudWatch recorder
func NewCloudWatchMetrics(namespace string, client PutMetricDataAPI, logger *zap.Logger) *CloudWatchMetrics {
	return &CloudWatchMetrics{namespace: namespace, client: client, logger: logger}
}

// RecordCommand records metrics for command execution
func (m *CloudWatchMetrics) RecordCommand(name string, duration time.Duration, err error) {
	m.put("Command", "CommandName", name, duration, err)
}

// RecordQuery records metrics for query execution
func (m *CloudWatchMetrics) RecordQuery(name string, duration time.Duration, err error) {
	m.put("Query", "QueryName", name, duration, err)
}

func (m *CloudWatchMetrics) put(kind, dimension, name string, duration time.Duration, err error) {
	if m.client == nil {
		return
	}

	now := time.Now()
	dims := []types.Dimension{
		{Name: aws.String(dimension), Value: aws.String(name)},
		{Name: aws.String("Status"), Value: aws.String(status(err))},
	}
	input := &cloudwatch.PutMetricDataInput{
		Namespace: aws.String(m.namespace),
		MetricData: []types.MetricDatum{
			{
				MetricName: aws.String(kind + "Execution"),
				Dimensions: dims,
				Value:      aws.Float64(float64(duration.Milliseconds())),
				Unit:       types.StandardUnitMilliseconds,
				Timestamp:  aws.Time(now),
			},
			{
				MetricName: aws.String(kind + "Count"),
				Dimensions: dims,
				Value:      aws.Float64(1),
				Unit:       types.StandardUnitCount,
				Timestamp:  aws.Time(now),
			},
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), putMetricTimeout)
	defer cancel()
	if _, perr := m.client.PutMetricData(ctx, input); perr != nil {
		m.logger.Warn("Failed to send metrics", zap.String("metric", kind), zap.Error(perr))
	}
}
