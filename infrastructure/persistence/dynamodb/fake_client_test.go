package dynamodb

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// fakeClient is an in-memory table understanding the expressions the
// repositories build: key equality with an optional begins_with, and
// attribute_exists/attribute_not_exists conditions on PK.
type fakeClient struct {
	mu         sync.Mutex
	items      map[string]map[string]types.AttributeValue
	batchCalls int
	// unprocessedOnce makes the next batch write return its first request unprocessed
	unprocessedOnce bool
}

func newFakeClient() *fakeClient {
	return &fakeClient{items: make(map[string]map[string]types.AttributeValue)}
}

func str(item map[string]types.AttributeValue, name string) string {
	if v, ok := item[name].(*types.AttributeValueMemberS); ok {
		return v.Value
	}
	return ""
}

func storageKey(item map[string]types.AttributeValue) string {
	return str(item, "PK") + "|" + str(item, "SK")
}

func checkCondition(cond *string, exists bool) bool {
	c := aws.ToString(cond)
	switch {
	case strings.Contains(c, "attribute_not_exists"):
		return !exists
	case strings.Contains(c, "attribute_exists"):
		return exists
	}
	return true
}

func (f *fakeClient) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return &dynamodb.GetItemOutput{Item: f.items[storageKey(in.Key)]}, nil
}

func (f *fakeClient) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := storageKey(in.Item)
	_, exists := f.items[key]
	if !checkCondition(in.ConditionExpression, exists) {
		return nil, &types.ConditionalCheckFailedException{Message: aws.String("condition failed")}
	}
	f.items[key] = in.Item
	return &dynamodb.PutItemOutput{}, nil
}

var setClause = regexp.MustCompile(`(#\d+) = (:\d+)`)

func (f *fakeClient) UpdateItem(_ context.Context, in *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := storageKey(in.Key)
	item, exists := f.items[key]
	if !checkCondition(in.ConditionExpression, exists) {
		return nil, &types.ConditionalCheckFailedException{Message: aws.String("condition failed")}
	}
	if item == nil {
		item = map[string]types.AttributeValue{"PK": in.Key["PK"], "SK": in.Key["SK"]}
	}
	for _, m := range setClause.FindAllStringSubmatch(aws.ToString(in.UpdateExpression), -1) {
		item[in.ExpressionAttributeNames[m[1]]] = in.ExpressionAttributeValues[m[2]]
	}
	f.items[key] = item
	return &dynamodb.UpdateItemOutput{}, nil
}

func (f *fakeClient) DeleteItem(_ context.Context, in *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := storageKey(in.Key)
	old := f.items[key]
	delete(f.items, key)
	return &dynamodb.DeleteItemOutput{Attributes: old}, nil
}

func (f *fakeClient) Query(_ context.Context, in *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	hashAttr := in.ExpressionAttributeNames["#0"]
	hashValue := str(in.ExpressionAttributeValues, ":0")
	prefix := ""
	if strings.Contains(aws.ToString(in.KeyConditionExpression), "begins_with") {
		prefix = str(in.ExpressionAttributeValues, ":1")
	}

	rangeAttr := "SK"
	switch aws.ToString(in.IndexName) {
	case "GSI1":
		rangeAttr = "GSI1SK"
	case "GSI2":
		rangeAttr = "GSI2SK"
	}

	var out []map[string]types.AttributeValue
	for _, item := range f.items {
		if str(item, hashAttr) != hashValue || !strings.HasPrefix(str(item, rangeAttr), prefix) {
			continue
		}
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return str(out[i], rangeAttr) < str(out[j], rangeAttr) })
	if in.ScanIndexForward != nil && !*in.ScanIndexForward {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	if in.Limit != nil && int(*in.Limit) < len(out) {
		out = out[:*in.Limit]
	}
	return &dynamodb.QueryOutput{Items: out}, nil
}

func (f *fakeClient) BatchWriteItem(_ context.Context, in *dynamodb.BatchWriteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batchCalls++

	unprocessed := map[string][]types.WriteRequest{}
	for table, requests := range in.RequestItems {
		if len(requests) > batchWriteLimit {
			return nil, fmt.Errorf("too many requests: %d", len(requests))
		}
		for i, req := range requests {
			if f.unprocessedOnce && i == 0 {
				f.unprocessedOnce = false
				unprocessed[table] = append(unprocessed[table], req)
				continue
			}
			if req.DeleteRequest != nil {
				delete(f.items, storageKey(req.DeleteRequest.Key))
			}
		}
	}
	return &dynamodb.BatchWriteItemOutput{UnprocessedItems: unprocessed}, nil
}

func (f *fakeClient) TransactWriteItems(_ context.Context, in *dynamodb.TransactWriteItemsInput, _ ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	reasons := make([]types.CancellationReason, len(in.TransactItems))
	failed := false
	for i, ti := range in.TransactItems {
		reasons[i] = types.CancellationReason{Code: aws.String("None")}
		if ti.Put == nil {
			continue
		}
		_, exists := f.items[storageKey(ti.Put.Item)]
		if !checkCondition(ti.Put.ConditionExpression, exists) {
			reasons[i] = types.CancellationReason{Code: aws.String("ConditionalCheckFailed")}
			failed = true
		}
	}
	if failed {
		return nil, &types.TransactionCanceledException{Message: aws.String("cancelled"), CancellationReasons: reasons}
	}
	for _, ti := range in.TransactItems {
		if ti.Put != nil {
			f.items[storageKey(ti.Put.Item)] = ti.Put.Item
		}
	}
	return &dynamodb.TransactWriteItemsOutput{}, nil
}
