// Package dynamodb implements the persistence ports on a single DynamoDB
// table.
//
// Key layout:
//
//	BOARD#<id>    METADATA        board           GSI1: KINGDOM#<k> / UPDATED#<ts>#<id>
//	BOARD#<id>    ELEMENT#<id>    element         GSI2: ELEMENT#<id> / BOARD#<id>
//	BOARD#<id>    MEMBER#<uid>    board member
//	USER#<id>     PROFILE         user            GSI1: USERS / ACTIVE#<ts>#<id>
package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	pkgerrors "github.com/varangian-core/magical-board/pkg/errors"
)

// API is the subset of the DynamoDB client the repositories use
type API interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
	TransactWriteItems(ctx context.Context, params *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
}

var _ API = (*dynamodb.Client)(nil)

// TableConfig names the table and its indexes
type TableConfig struct {
	TableName string
	GSI1Name  string
	GSI2Name  string
}

const (
	entityBoard   = "BOARD"
	entityElement = "ELEMENT"
	entityMember  = "MEMBER"
	entityUser    = "USER"

	metadataSK = "METADATA"
	profileSK  = "PROFILE"
	usersGSI   = "USERS"

	// DynamoDB limits batch writes to 25 items
	batchWriteLimit = 25

	// fixed width so sort keys order lexically
	sortableTime = "2006-01-02T15:04:05.000000000Z07:00"
)

func boardPK(id string) string     { return "BOARD#" + id }
func elementSK(id string) string   { return "ELEMENT#" + id }
func memberSK(uid string) string   { return "MEMBER#" + uid }
func userPK(id string) string      { return "USER#" + id }
func kingdomGSI(k string) string   { return "KINGDOM#" + k }
func elementGSI(id string) string  { return "ELEMENT#" + id }
func timestamp(t time.Time) string { return t.UTC().Format(sortableTime) }

func parseTimestamp(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func itemKey(pk, sk string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: pk},
		"SK": &types.AttributeValueMemberS{Value: sk},
	}
}

// queryAll follows LastEvaluatedKey until the query is exhausted
func queryAll(ctx context.Context, client API, input *dynamodb.QueryInput) ([]map[string]types.AttributeValue, error) {
	var items []map[string]types.AttributeValue
	for {
		out, err := client.Query(ctx, input)
		if err != nil {
			return nil, err
		}
		items = append(items, out.Items...)
		if len(out.LastEvaluatedKey) == 0 {
			return items, nil
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}
}

// batchDelete removes keys in chunks, retrying unprocessed items a few times
func batchDelete(ctx context.Context, client API, table string, keys []map[string]types.AttributeValue) error {
	const maxRetries = 3

	for start := 0; start < len(keys); start += batchWriteLimit {
		end := start + batchWriteLimit
		if end > len(keys) {
			end = len(keys)
		}

		requests := make([]types.WriteRequest, 0, end-start)
		for _, key := range keys[start:end] {
			requests = append(requests, types.WriteRequest{DeleteRequest: &types.DeleteRequest{Key: key}})
		}

		pending := map[string][]types.WriteRequest{table: requests}
		for attempt := 0; len(pending[table]) > 0; attempt++ {
			if attempt == maxRetries {
				return fmt.Errorf("batch delete: %d items unprocessed", len(pending[table]))
			}
			out, err := client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{RequestItems: pending})
			if err != nil {
				return err
			}
			pending = out.UnprocessedItems
			if len(pending[table]) > 0 {
				time.Sleep(time.Duration(attempt+1) * 50 * time.Millisecond)
			}
		}
	}
	return nil
}

func isConditionFailed(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return true
	}
	var tce *types.TransactionCanceledException
	if errors.As(err, &tce) {
		for _, reason := range tce.CancellationReasons {
			if aws.ToString(reason.Code) == "ConditionalCheckFailed" {
				return true
			}
		}
	}
	return false
}

func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if isConditionFailed(err) {
		return pkgerrors.NewConflictError(op + ": item already exists").WithCause(err)
	}
	return pkgerrors.NewDatabaseError(op, err)
}
