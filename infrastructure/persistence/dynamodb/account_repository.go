package dynamodb

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"linkup-backend/application/ports"
	"linkup-backend/domain/core/entities"
	"linkup-backend/domain/core/valueobjects"
	pkgerrors "linkup-backend/pkg/errors"
)

// AccountRepository implements ports.AccountRepository on DynamoDB. Accounts
// live under PK=ACCOUNT#id with the confirmed connection set stored as a
// string set, so one direction of the symmetric relation is always a single
// atomic ADD or DELETE on one item.
type AccountRepository struct {
	client        *dynamodb.Client
	tableName     string
	usernameIndex string
	logger        *zap.Logger
}

// NewAccountRepository creates a new AccountRepository
func NewAccountRepository(client *dynamodb.Client, tableName, usernameIndex string, logger *zap.Logger) ports.AccountRepository {
	return &AccountRepository{
		client:        client,
		tableName:     tableName,
		usernameIndex: usernameIndex,
		logger:        logger,
	}
}

// accountItem represents the DynamoDB item structure for an account
type accountItem struct {
	PK          string   `dynamodbav:"PK"`
	SK          string   `dynamodbav:"SK"`
	GSI1PK      string   `dynamodbav:"GSI1PK,omitempty"` // USERNAME#<username>
	GSI1SK      string   `dynamodbav:"GSI1SK,omitempty"` // Always "METADATA"
	EntityType  string   `dynamodbav:"EntityType"`
	AccountID   string   `dynamodbav:"AccountID"`
	Username    string   `dynamodbav:"Username"`
	Email       string   `dynamodbav:"Email"`
	Name        string   `dynamodbav:"Name"`
	Connections []string `dynamodbav:"Connections,stringset,omitempty"`
	CreatedAt   string   `dynamodbav:"CreatedAt"`
	UpdatedAt   string   `dynamodbav:"UpdatedAt"`
}

// accountCursor is the opaque pagination token for ListAccounts
type accountCursor struct {
	PK string `json:"pk"`
	SK string `json:"sk"`
}

func accountKey(id valueobjects.AccountID) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: fmt.Sprintf("ACCOUNT#%s", id.String())},
		"SK": &types.AttributeValueMemberS{Value: "METADATA"},
	}
}

// Save persists an account's profile fields and connection set
func (r *AccountRepository) Save(ctx context.Context, account *entities.Account) error {
	connections := make([]string, 0, account.ConnectionCount())
	for _, c := range account.Connections() {
		connections = append(connections, c.String())
	}

	item := accountItem{
		PK:          fmt.Sprintf("ACCOUNT#%s", account.ID().String()),
		SK:          "METADATA",
		GSI1PK:      fmt.Sprintf("USERNAME#%s", account.Username()),
		GSI1SK:      "METADATA",
		EntityType:  "ACCOUNT",
		AccountID:   account.ID().String(),
		Username:    account.Username(),
		Email:       account.Email(),
		Name:        account.Name(),
		Connections: connections,
		CreatedAt:   account.CreatedAt().Format(time.RFC3339Nano),
		UpdatedAt:   account.UpdatedAt().Format(time.RFC3339Nano),
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return pkgerrors.NewDatabaseError("marshal account", err)
	}

	if _, err := r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	}); err != nil {
		return pkgerrors.NewDatabaseError("save account", err)
	}

	r.logger.Debug("Account saved",
		zap.String("accountID", account.ID().String()),
		zap.String("username", account.Username()),
	)

	return nil
}

// GetByID retrieves an account by its ID
func (r *AccountRepository) GetByID(ctx context.Context, id valueobjects.AccountID) (*entities.Account, error) {
	result, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       accountKey(id),
	})
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("get account", err)
	}
	if result.Item == nil {
		return nil, pkgerrors.NewNotFoundError("account")
	}

	var item accountItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, pkgerrors.NewDatabaseError("unmarshal account", err)
	}

	return r.reconstruct(item)
}

// GetByUsername retrieves an account via the username GSI
func (r *AccountRepository) GetByUsername(ctx context.Context, username string) (*entities.Account, error) {
	result, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(r.usernameIndex),
		KeyConditionExpression: aws.String("GSI1PK = :pk AND GSI1SK = :sk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: fmt.Sprintf("USERNAME#%s", username)},
			":sk": &types.AttributeValueMemberS{Value: "METADATA"},
		},
		Limit: aws.Int32(1),
	})
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("query account by username", err)
	}
	if len(result.Items) == 0 {
		return nil, pkgerrors.NewNotFoundError("account")
	}

	var item accountItem
	if err := attributevalue.UnmarshalMap(result.Items[0], &item); err != nil {
		return nil, pkgerrors.NewDatabaseError("unmarshal account", err)
	}

	return r.reconstruct(item)
}

// AddConnection adds other to owner's connection set as one atomic set ADD.
// The write is conditional on the account record existing; adding an element
// that is already present is a no-op at the storage level.
func (r *AccountRepository) AddConnection(ctx context.Context, owner, other valueobjects.AccountID) error {
	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 accountKey(owner),
		UpdateExpression:    aws.String("ADD Connections :c SET UpdatedAt = :now"),
		ConditionExpression: aws.String("attribute_exists(PK)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":c":   &types.AttributeValueMemberSS{Value: []string{other.String()}},
			":now": &types.AttributeValueMemberS{Value: time.Now().Format(time.RFC3339Nano)},
		},
	})
	if err != nil {
		var conditionFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionFailed) {
			return pkgerrors.NewNotFoundError("account")
		}
		return pkgerrors.NewDatabaseError("add connection", err)
	}

	return nil
}

// RemoveConnection removes other from owner's connection set
func (r *AccountRepository) RemoveConnection(ctx context.Context, owner, other valueobjects.AccountID) error {
	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 accountKey(owner),
		UpdateExpression:    aws.String("DELETE Connections :c SET UpdatedAt = :now"),
		ConditionExpression: aws.String("attribute_exists(PK)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":c":   &types.AttributeValueMemberSS{Value: []string{other.String()}},
			":now": &types.AttributeValueMemberS{Value: time.Now().Format(time.RFC3339Nano)},
		},
	})
	if err != nil {
		var conditionFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionFailed) {
			return pkgerrors.NewNotFoundError("account")
		}
		return pkgerrors.NewDatabaseError("remove connection", err)
	}

	return nil
}

// ListAccounts pages through all account records via a filtered scan. Used by
// the reconciliation sweep, not by any request path.
func (r *AccountRepository) ListAccounts(ctx context.Context, limit int, cursor string) ([]*entities.Account, string, error) {
	input := &dynamodb.ScanInput{
		TableName:        aws.String(r.tableName),
		FilterExpression: aws.String("EntityType = :entityType"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":entityType": &types.AttributeValueMemberS{Value: "ACCOUNT"},
		},
	}
	if limit > 0 {
		input.Limit = aws.Int32(int32(limit))
	}
	if cursor != "" {
		startKey, err := decodeAccountCursor(cursor)
		if err != nil {
			return nil, "", pkgerrors.NewValidationError("invalid pagination cursor")
		}
		input.ExclusiveStartKey = startKey
	}

	result, err := r.client.Scan(ctx, input)
	if err != nil {
		return nil, "", pkgerrors.NewDatabaseError("scan accounts", err)
	}

	accounts := make([]*entities.Account, 0, len(result.Items))
	for _, raw := range result.Items {
		var item accountItem
		if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
			r.logger.Warn("Failed to unmarshal account item", zap.Error(err))
			continue
		}
		account, err := r.reconstruct(item)
		if err != nil {
			r.logger.Warn("Failed to reconstruct account",
				zap.String("accountID", item.AccountID), zap.Error(err))
			continue
		}
		accounts = append(accounts, account)
	}

	next := ""
	if result.LastEvaluatedKey != nil {
		next, err = encodeAccountCursor(result.LastEvaluatedKey)
		if err != nil {
			return nil, "", pkgerrors.NewDatabaseError("encode pagination cursor", err)
		}
	}

	return accounts, next, nil
}

func (r *AccountRepository) reconstruct(item accountItem) (*entities.Account, error) {
	id, err := valueobjects.NewAccountIDFromString(item.AccountID)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "invalid stored account ID")
	}

	connections := make([]valueobjects.AccountID, 0, len(item.Connections))
	for _, c := range item.Connections {
		connID, err := valueobjects.NewAccountIDFromString(c)
		if err != nil {
			r.logger.Warn("Skipping malformed connection reference",
				zap.String("accountID", item.AccountID),
				zap.String("connection", c),
			)
			continue
		}
		connections = append(connections, connID)
	}

	createdAt := parseStoredTime(item.CreatedAt)
	updatedAt := parseStoredTime(item.UpdatedAt)

	return entities.ReconstructAccount(id, item.Username, item.Email, item.Name, connections, createdAt, updatedAt)
}

func encodeAccountCursor(key map[string]types.AttributeValue) (string, error) {
	cursor := accountCursor{}
	if pk, ok := key["PK"].(*types.AttributeValueMemberS); ok {
		cursor.PK = pk.Value
	}
	if sk, ok := key["SK"].(*types.AttributeValueMemberS); ok {
		cursor.SK = sk.Value
	}
	raw, err := json.Marshal(cursor)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

func decodeAccountCursor(cursor string) (map[string]types.AttributeValue, error) {
	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return nil, err
	}
	var decoded accountCursor
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, err
	}
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: decoded.PK},
		"SK": &types.AttributeValueMemberS{Value: decoded.SK},
	}, nil
}

// parseStoredTime parses a stored RFC3339 timestamp, tolerating records
// written before nanosecond precision was adopted
func parseStoredTime(value string) time.Time {
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t
	}
	return time.Time{}
}
