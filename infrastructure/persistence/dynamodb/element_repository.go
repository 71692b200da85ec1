package dynamodb

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"github.com/varangian-core/magical-board/application/ports"
	pkgerrors "github.com/varangian-core/magical-board/pkg/errors"
)

type elementItem struct {
	PK         string  `dynamodbav:"PK"`
	SK         string  `dynamodbav:"SK"`
	EntityType string  `dynamodbav:"EntityType"`
	GSI2PK     string  `dynamodbav:"GSI2PK"`
	GSI2SK     string  `dynamodbav:"GSI2SK"`
	ID         string  `dynamodbav:"ID"`
	BoardID    string  `dynamodbav:"BoardID"`
	Type       string  `dynamodbav:"Type"`
	PositionX  float64 `dynamodbav:"PositionX"`
	PositionY  float64 `dynamodbav:"PositionY"`
	Width      float64 `dynamodbav:"Width"`
	Height     float64 `dynamodbav:"Height"`
	Rotation   float64 `dynamodbav:"Rotation"`
	ZIndex     int     `dynamodbav:"ZIndex"`
	Content    string  `dynamodbav:"Content"`
	CreatedBy  string  `dynamodbav:"CreatedBy"`
	LockedBy   *string `dynamodbav:"LockedBy,omitempty"`
	CreatedAt  string  `dynamodbav:"CreatedAt"`
	UpdatedAt  string  `dynamodbav:"UpdatedAt"`
}

func newElementItem(rec ports.ElementRecord) elementItem {
	return elementItem{
		PK:         boardPK(rec.BoardID),
		SK:         elementSK(rec.ID),
		EntityType: entityElement,
		GSI2PK:     elementGSI(rec.ID),
		GSI2SK:     boardPK(rec.BoardID),
		ID:         rec.ID,
		BoardID:    rec.BoardID,
		Type:       rec.Type,
		PositionX:  rec.PositionX,
		PositionY:  rec.PositionY,
		Width:      rec.Width,
		Height:     rec.Height,
		Rotation:   rec.Rotation,
		ZIndex:     rec.ZIndex,
		Content:    string(rec.Content),
		CreatedBy:  rec.CreatedBy,
		LockedBy:   rec.LockedBy,
		CreatedAt:  timestamp(rec.CreatedAt),
		UpdatedAt:  timestamp(rec.UpdatedAt),
	}
}

func (i elementItem) toRecord() ports.ElementRecord {
	return ports.ElementRecord{
		ID:        i.ID,
		BoardID:   i.BoardID,
		Type:      i.Type,
		PositionX: i.PositionX,
		PositionY: i.PositionY,
		Width:     i.Width,
		Height:    i.Height,
		Rotation:  i.Rotation,
		ZIndex:    i.ZIndex,
		Content:   json.RawMessage(i.Content),
		CreatedBy: i.CreatedBy,
		LockedBy:  i.LockedBy,
		CreatedAt: parseTimestamp(i.CreatedAt),
		UpdatedAt: parseTimestamp(i.UpdatedAt),
	}
}

// ElementRepository implements ports.ElementRepository on DynamoDB
type ElementRepository struct {
	client API
	table  TableConfig
	logger *zap.Logger
}

// NewElementRepository creates a new DynamoDB element repository
func NewElementRepository(client API, table TableConfig, logger *zap.Logger) *ElementRepository {
	return &ElementRepository{client: client, table: table, logger: logger}
}

// AddElement stores a new record
func (r *ElementRepository) AddElement(ctx context.Context, record ports.ElementRecord) error {
	av, err := attributevalue.MarshalMap(newElementItem(record))
	if err != nil {
		return pkgerrors.NewInternalError("failed to marshal element").WithCause(err)
	}
	cond, err := expression.NewBuilder().
		WithCondition(expression.Name("PK").AttributeNotExists()).
		Build()
	if err != nil {
		return pkgerrors.NewInternalError("failed to build condition").WithCause(err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                 aws.String(r.table.TableName),
		Item:                      av,
		ConditionExpression:       cond.Condition(),
		ExpressionAttributeNames:  cond.Names(),
		ExpressionAttributeValues: cond.Values(),
	})
	return mapError("add element", err)
}

// findByID resolves an element through the element index
func (r *ElementRepository) findByID(ctx context.Context, id string) (*elementItem, error) {
	keyCond := expression.Key("GSI2PK").Equal(expression.Value(elementGSI(id)))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, pkgerrors.NewInternalError("failed to build query").WithCause(err)
	}

	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.table.TableName),
		IndexName:                 aws.String(r.table.GSI2Name),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		Limit:                     aws.Int32(1),
	})
	if err != nil {
		return nil, mapError("find element", err)
	}
	if len(out.Items) == 0 {
		return nil, nil
	}

	var item elementItem
	if err := attributevalue.UnmarshalMap(out.Items[0], &item); err != nil {
		return nil, pkgerrors.NewDatabaseError("unmarshal element", err)
	}
	return &item, nil
}

// UpdateElement applies a patch, returning nil when the record is missing
func (r *ElementRepository) UpdateElement(ctx context.Context, id string, patch ports.ElementRecordPatch) (*ports.ElementRecord, error) {
	item, err := r.findByID(ctx, id)
	if err != nil || item == nil {
		return nil, err
	}

	record := item.toRecord()
	record.Apply(patch)

	av, err := attributevalue.MarshalMap(newElementItem(record))
	if err != nil {
		return nil, pkgerrors.NewInternalError("failed to marshal element").WithCause(err)
	}
	cond, err := expression.NewBuilder().
		WithCondition(expression.Name("PK").AttributeExists()).
		Build()
	if err != nil {
		return nil, pkgerrors.NewInternalError("failed to build condition").WithCause(err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                 aws.String(r.table.TableName),
		Item:                      av,
		ConditionExpression:       cond.Condition(),
		ExpressionAttributeNames:  cond.Names(),
		ExpressionAttributeValues: cond.Values(),
	})
	if isConditionFailed(err) {
		return nil, nil
	}
	if err != nil {
		return nil, mapError("update element", err)
	}
	return &record, nil
}

// DeleteElement removes a record
func (r *ElementRepository) DeleteElement(ctx context.Context, id string) (bool, error) {
	item, err := r.findByID(ctx, id)
	if err != nil || item == nil {
		return false, err
	}

	out, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:    aws.String(r.table.TableName),
		Key:          itemKey(item.PK, item.SK),
		ReturnValues: types.ReturnValueAllOld,
	})
	if err != nil {
		return false, mapError("delete element", err)
	}
	return len(out.Attributes) > 0, nil
}

// GetBoardElements returns a board's records ordered by zIndex
func (r *ElementRepository) GetBoardElements(ctx context.Context, boardID string) ([]ports.ElementRecord, error) {
	items, err := r.queryBoard(ctx, boardID)
	if err != nil {
		return nil, err
	}

	records := make([]ports.ElementRecord, len(items))
	for i, item := range items {
		records[i] = item.toRecord()
	}
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].ZIndex != records[j].ZIndex {
			return records[i].ZIndex < records[j].ZIndex
		}
		return records[i].CreatedAt.Before(records[j].CreatedAt)
	})
	return records, nil
}

// DeleteBoardElements removes every record of a board
func (r *ElementRepository) DeleteBoardElements(ctx context.Context, boardID string) error {
	items, err := r.queryBoard(ctx, boardID)
	if err != nil {
		return err
	}

	keys := make([]map[string]types.AttributeValue, len(items))
	for i, item := range items {
		keys[i] = itemKey(item.PK, item.SK)
	}
	if err := batchDelete(ctx, r.client, r.table.TableName, keys); err != nil {
		return mapError("delete board elements", err)
	}

	r.logger.Debug("Board elements deleted", zap.String("board_id", boardID), zap.Int("count", len(keys)))
	return nil
}

func (r *ElementRepository) queryBoard(ctx context.Context, boardID string) ([]elementItem, error) {
	keyCond := expression.Key("PK").Equal(expression.Value(boardPK(boardID))).
		And(expression.Key("SK").BeginsWith("ELEMENT#"))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, pkgerrors.NewInternalError("failed to build query").WithCause(err)
	}

	avs, err := queryAll(ctx, r.client, &dynamodb.QueryInput{
		TableName:                 aws.String(r.table.TableName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		return nil, mapError("list elements", err)
	}

	var items []elementItem
	if err := attributevalue.UnmarshalListOfMaps(avs, &items); err != nil {
		return nil, pkgerrors.NewDatabaseError("unmarshal elements", err)
	}
	return items, nil
}
