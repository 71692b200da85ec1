package dynamodb

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"github.com/varangian-core/magical-board/domain/core/entities"
	"github.com/varangian-core/magical-board/domain/core/valueobjects"
	pkgerrors "github.com/varangian-core/magical-board/pkg/errors"
)

type avatarItem struct {
	ID    string `dynamodbav:"ID"`
	Name  string `dynamodbav:"Name"`
	Emoji string `dynamodbav:"Emoji"`
	Color string `dynamodbav:"Color"`
}

type userItem struct {
	PK         string     `dynamodbav:"PK"`
	SK         string     `dynamodbav:"SK"`
	EntityType string     `dynamodbav:"EntityType"`
	GSI1PK     string     `dynamodbav:"GSI1PK"`
	GSI1SK     string     `dynamodbav:"GSI1SK"`
	ID         string     `dynamodbav:"ID"`
	Name       string     `dynamodbav:"Name"`
	Avatar     avatarItem `dynamodbav:"Avatar"`
	CreatedAt  string     `dynamodbav:"CreatedAt"`
	LastActive string     `dynamodbav:"LastActive"`
}

func activeSK(t time.Time, id string) string { return "ACTIVE#" + timestamp(t) + "#" + id }

func newUserItem(u *entities.User) userItem {
	a := u.Avatar()
	return userItem{
		PK:         userPK(u.ID()),
		SK:         profileSK,
		EntityType: entityUser,
		GSI1PK:     usersGSI,
		GSI1SK:     activeSK(u.LastActive(), u.ID()),
		ID:         u.ID(),
		Name:       u.Name(),
		Avatar:     avatarItem{ID: a.ID, Name: a.Name, Emoji: a.Emoji, Color: a.Color},
		CreatedAt:  timestamp(u.CreatedAt()),
		LastActive: timestamp(u.LastActive()),
	}
}

func (i userItem) toEntity() (*entities.User, error) {
	avatar := valueobjects.Avatar{ID: i.Avatar.ID, Name: i.Avatar.Name, Emoji: i.Avatar.Emoji, Color: i.Avatar.Color}
	return entities.ReconstructUser(i.ID, i.Name, avatar, parseTimestamp(i.CreatedAt), parseTimestamp(i.LastActive))
}

// UserRepository implements ports.UserRepository on DynamoDB
type UserRepository struct {
	client API
	table  TableConfig
	logger *zap.Logger
}

// NewUserRepository creates a new DynamoDB user repository
func NewUserRepository(client API, table TableConfig, logger *zap.Logger) *UserRepository {
	return &UserRepository{client: client, table: table, logger: logger}
}

// CreateUser stores a new user
func (r *UserRepository) CreateUser(ctx context.Context, user *entities.User) error {
	av, err := attributevalue.MarshalMap(newUserItem(user))
	if err != nil {
		return pkgerrors.NewInternalError("failed to marshal user").WithCause(err)
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
	return mapError("create user", err)
}

// GetUser retrieves a user by id
func (r *UserRepository) GetUser(ctx context.Context, id string) (*entities.User, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.table.TableName),
		Key:       itemKey(userPK(id), profileSK),
	})
	if err != nil {
		return nil, mapError("get user", err)
	}
	if out.Item == nil {
		return nil, pkgerrors.NewNotFoundError("user")
	}

	var item userItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, pkgerrors.NewDatabaseError("unmarshal user", err)
	}
	return item.toEntity()
}

// GetAllUsers queries the activity index newest first
func (r *UserRepository) GetAllUsers(ctx context.Context) ([]*entities.User, error) {
	keyCond := expression.Key("GSI1PK").Equal(expression.Value(usersGSI))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, pkgerrors.NewInternalError("failed to build query").WithCause(err)
	}

	avs, err := queryAll(ctx, r.client, &dynamodb.QueryInput{
		TableName:                 aws.String(r.table.TableName),
		IndexName:                 aws.String(r.table.GSI1Name),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ScanIndexForward:          aws.Bool(false),
	})
	if err != nil {
		return nil, mapError("list users", err)
	}

	var items []userItem
	if err := attributevalue.UnmarshalListOfMaps(avs, &items); err != nil {
		return nil, pkgerrors.NewDatabaseError("unmarshal users", err)
	}

	users := make([]*entities.User, 0, len(items))
	for _, item := range items {
		u, err := item.toEntity()
		if err != nil {
			r.logger.Warn("Skipping invalid user item", zap.String("user_id", item.ID), zap.Error(err))
			continue
		}
		users = append(users, u)
	}
	return users, nil
}

// UpdateLastActive stamps the user and moves it in the activity index
func (r *UserRepository) UpdateLastActive(ctx context.Context, id string) error {
	now := time.Now()
	update := expression.Set(expression.Name("LastActive"), expression.Value(timestamp(now))).
		Set(expression.Name("GSI1SK"), expression.Value(activeSK(now, id)))
	expr, err := expression.NewBuilder().
		WithUpdate(update).
		WithCondition(expression.Name("PK").AttributeExists()).
		Build()
	if err != nil {
		return pkgerrors.NewInternalError("failed to build update").WithCause(err)
	}

	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.table.TableName),
		Key:                       itemKey(userPK(id), profileSK),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if isConditionFailed(err) {
		return pkgerrors.NewNotFoundError("user")
	}
	return mapError("update last active", err)
}

// DeleteUser removes a user
func (r *UserRepository) DeleteUser(ctx context.Context, id string) (bool, error) {
	out, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:    aws.String(r.table.TableName),
		Key:          itemKey(userPK(id), profileSK),
		ReturnValues: types.ReturnValueAllOld,
	})
	if err != nil {
		return false, mapError("delete user", err)
	}
	return len(out.Attributes) > 0, nil
}
