package dynamodb

import (
	"context"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"github.com/varangian-core/magical-board/domain/core/entities"
	pkgerrors "github.com/varangian-core/magical-board/pkg/errors"
)

type boardItem struct {
	PK          string  `dynamodbav:"PK"`
	SK          string  `dynamodbav:"SK"`
	EntityType  string  `dynamodbav:"EntityType"`
	GSI1PK      string  `dynamodbav:"GSI1PK"`
	GSI1SK      string  `dynamodbav:"GSI1SK"`
	ID          string  `dynamodbav:"ID"`
	Name        string  `dynamodbav:"Name"`
	Description *string `dynamodbav:"Description,omitempty"`
	KingdomID   string  `dynamodbav:"KingdomID"`
	CreatedBy   string  `dynamodbav:"CreatedBy"`
	CreatedAt   string  `dynamodbav:"CreatedAt"`
	UpdatedAt   string  `dynamodbav:"UpdatedAt"`
}

func newBoardItem(b *entities.Board) boardItem {
	updated := timestamp(b.UpdatedAt())
	return boardItem{
		PK:          boardPK(b.ID()),
		SK:          metadataSK,
		EntityType:  entityBoard,
		GSI1PK:      kingdomGSI(b.KingdomID()),
		GSI1SK:      "UPDATED#" + updated + "#" + b.ID(),
		ID:          b.ID(),
		Name:        b.Name(),
		Description: b.Description(),
		KingdomID:   b.KingdomID(),
		CreatedBy:   b.CreatedBy(),
		CreatedAt:   timestamp(b.CreatedAt()),
		UpdatedAt:   updated,
	}
}

func (i boardItem) toEntity() (*entities.Board, error) {
	return entities.ReconstructBoard(i.ID, i.Name, i.Description, i.KingdomID, i.CreatedBy,
		parseTimestamp(i.CreatedAt), parseTimestamp(i.UpdatedAt))
}

type memberItem struct {
	PK         string `dynamodbav:"PK"`
	SK         string `dynamodbav:"SK"`
	EntityType string `dynamodbav:"EntityType"`
	BoardID    string `dynamodbav:"BoardID"`
	UserID     string `dynamodbav:"UserID"`
	JoinedAt   string `dynamodbav:"JoinedAt"`
}

func newMemberItem(boardID, userID string, joined time.Time) memberItem {
	return memberItem{
		PK:         boardPK(boardID),
		SK:         memberSK(userID),
		EntityType: entityMember,
		BoardID:    boardID,
		UserID:     userID,
		JoinedAt:   timestamp(joined),
	}
}

// BoardRepository implements ports.BoardRepository on DynamoDB
type BoardRepository struct {
	client API
	table  TableConfig
	logger *zap.Logger
}

// NewBoardRepository creates a new DynamoDB board repository
func NewBoardRepository(client API, table TableConfig, logger *zap.Logger) *BoardRepository {
	return &BoardRepository{client: client, table: table, logger: logger}
}

// CreateBoard writes the board and its creator's membership in one transaction
func (r *BoardRepository) CreateBoard(ctx context.Context, board *entities.Board) error {
	boardAV, err := attributevalue.MarshalMap(newBoardItem(board))
	if err != nil {
		return pkgerrors.NewInternalError("failed to marshal board").WithCause(err)
	}
	memberAV, err := attributevalue.MarshalMap(newMemberItem(board.ID(), board.CreatedBy(), board.CreatedAt()))
	if err != nil {
		return pkgerrors.NewInternalError("failed to marshal board member").WithCause(err)
	}

	cond, err := expression.NewBuilder().
		WithCondition(expression.Name("PK").AttributeNotExists()).
		Build()
	if err != nil {
		return pkgerrors.NewInternalError("failed to build condition").WithCause(err)
	}

	_, err = r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Put: &types.Put{
				TableName:                 aws.String(r.table.TableName),
				Item:                      boardAV,
				ConditionExpression:       cond.Condition(),
				ExpressionAttributeNames:  cond.Names(),
				ExpressionAttributeValues: cond.Values(),
			}},
			{Put: &types.Put{
				TableName: aws.String(r.table.TableName),
				Item:      memberAV,
			}},
		},
	})
	if err != nil {
		return mapError("create board", err)
	}

	r.logger.Debug("Board written", zap.String("board_id", board.ID()))
	return nil
}

// GetBoard retrieves a board by id
func (r *BoardRepository) GetBoard(ctx context.Context, id string) (*entities.Board, error) {
	item, err := r.getItem(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, pkgerrors.NewNotFoundError("board")
	}
	return item.toEntity()
}

func (r *BoardRepository) getItem(ctx context.Context, id string) (*boardItem, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.table.TableName),
		Key:       itemKey(boardPK(id), metadataSK),
	})
	if err != nil {
		return nil, mapError("get board", err)
	}
	if out.Item == nil {
		return nil, nil
	}

	var item boardItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, pkgerrors.NewDatabaseError("unmarshal board", err)
	}
	return &item, nil
}

// GetBoardsByKingdom queries the kingdom index newest first
func (r *BoardRepository) GetBoardsByKingdom(ctx context.Context, kingdomID string) ([]*entities.Board, error) {
	keyCond := expression.Key("GSI1PK").Equal(expression.Value(kingdomGSI(kingdomID)))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, pkgerrors.NewInternalError("failed to build query").WithCause(err)
	}

	items, err := queryAll(ctx, r.client, &dynamodb.QueryInput{
		TableName:                 aws.String(r.table.TableName),
		IndexName:                 aws.String(r.table.GSI1Name),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ScanIndexForward:          aws.Bool(false),
	})
	if err != nil {
		return nil, mapError("list boards", err)
	}

	boards := make([]*entities.Board, 0, len(items))
	for _, av := range items {
		var item boardItem
		if err := attributevalue.UnmarshalMap(av, &item); err != nil {
			r.logger.Warn("Skipping unreadable board item", zap.Error(err))
			continue
		}
		b, err := item.toEntity()
		if err != nil {
			r.logger.Warn("Skipping invalid board item", zap.String("board_id", item.ID), zap.Error(err))
			continue
		}
		boards = append(boards, b)
	}
	return boards, nil
}

// UpdateBoard applies a patch, returning nil when the board is missing
func (r *BoardRepository) UpdateBoard(ctx context.Context, id string, patch entities.BoardPatch) (*entities.Board, error) {
	item, err := r.getItem(ctx, id)
	if err != nil || item == nil {
		return nil, err
	}

	board, err := item.toEntity()
	if err != nil {
		return nil, err
	}
	if err := board.Apply(patch); err != nil {
		return nil, err
	}

	av, err := attributevalue.MarshalMap(newBoardItem(board))
	if err != nil {
		return nil, pkgerrors.NewInternalError("failed to marshal board").WithCause(err)
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
		// deleted between read and write
		return nil, nil
	}
	if err != nil {
		return nil, mapError("update board", err)
	}
	return board, nil
}

// DeleteBoard removes the board metadata and its memberships
func (r *BoardRepository) DeleteBoard(ctx context.Context, id string) (bool, error) {
	members, err := r.queryMembers(ctx, id)
	if err != nil {
		return false, err
	}
	keys := make([]map[string]types.AttributeValue, 0, len(members))
	for _, m := range members {
		keys = append(keys, itemKey(m.PK, m.SK))
	}
	if err := batchDelete(ctx, r.client, r.table.TableName, keys); err != nil {
		return false, mapError("delete board members", err)
	}

	out, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:    aws.String(r.table.TableName),
		Key:          itemKey(boardPK(id), metadataSK),
		ReturnValues: types.ReturnValueAllOld,
	})
	if err != nil {
		return false, mapError("delete board", err)
	}
	return len(out.Attributes) > 0, nil
}

// AddUserToBoard records membership once per user
func (r *BoardRepository) AddUserToBoard(ctx context.Context, boardID, userID string) error {
	item, err := r.getItem(ctx, boardID)
	if err != nil {
		return err
	}
	if item == nil {
		return pkgerrors.NewNotFoundError("board")
	}

	av, err := attributevalue.MarshalMap(newMemberItem(boardID, userID, time.Now()))
	if err != nil {
		return pkgerrors.NewInternalError("failed to marshal board member").WithCause(err)
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
	if isConditionFailed(err) {
		return nil
	}
	return mapError("add board user", err)
}

// GetBoardUsers returns member ids in join order
func (r *BoardRepository) GetBoardUsers(ctx context.Context, boardID string) ([]string, error) {
	members, err := r.queryMembers(ctx, boardID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(members, func(i, j int) bool { return members[i].JoinedAt < members[j].JoinedAt })

	ids := make([]string, len(members))
	for i, m := range members {
		ids[i] = m.UserID
	}
	return ids, nil
}

func (r *BoardRepository) queryMembers(ctx context.Context, boardID string) ([]memberItem, error) {
	keyCond := expression.Key("PK").Equal(expression.Value(boardPK(boardID))).
		And(expression.Key("SK").BeginsWith("MEMBER#"))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, pkgerrors.NewInternalError("failed to build query").WithCause(err)
	}

	items, err := queryAll(ctx, r.client, &dynamodb.QueryInput{
		TableName:                 aws.String(r.table.TableName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		return nil, mapError("list board users", err)
	}

	var members []memberItem
	if err := attributevalue.UnmarshalListOfMaps(items, &members); err != nil {
		return nil, pkgerrors.NewDatabaseError("unmarshal board users", err)
	}
	return members, nil
}
