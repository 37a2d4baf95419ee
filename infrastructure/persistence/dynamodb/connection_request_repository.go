package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"linkup-backend/application/ports"
	"linkup-backend/domain/core/entities"
	"linkup-backend/domain/core/valueobjects"
	pkgerrors "linkup-backend/pkg/errors"
)

// ConnectionRequestRepository implements ports.ConnectionRequestRepository on
// DynamoDB. Requests live under PK=REQUEST#id; three GSIs serve the lookup
// patterns: the unordered pair key for duplicate detection, and recipient and
// sender keys for the pending listings. The pending guard on transitions is a
// conditional write, which is what makes concurrent accepts safe.
type ConnectionRequestRepository struct {
	client         *dynamodb.Client
	tableName      string
	pairIndex      string
	recipientIndex string
	senderIndex    string
	logger         *zap.Logger
}

// NewConnectionRequestRepository creates a new ConnectionRequestRepository
func NewConnectionRequestRepository(
	client *dynamodb.Client,
	tableName, pairIndex, recipientIndex, senderIndex string,
	logger *zap.Logger,
) ports.ConnectionRequestRepository {
	return &ConnectionRequestRepository{
		client:         client,
		tableName:      tableName,
		pairIndex:      pairIndex,
		recipientIndex: recipientIndex,
		senderIndex:    senderIndex,
		logger:         logger,
	}
}

// requestItem represents the DynamoDB item structure for a connection request
type requestItem struct {
	PK          string `dynamodbav:"PK"`
	SK          string `dynamodbav:"SK"`
	GSI2PK      string `dynamodbav:"GSI2PK"` // PAIR#<min>#<max>
	GSI2SK      string `dynamodbav:"GSI2SK"` // REQUEST#<createdAt>
	GSI3PK      string `dynamodbav:"GSI3PK"` // RECIPIENT#<id>
	GSI3SK      string `dynamodbav:"GSI3SK"` // REQUEST#<createdAt>
	GSI4PK      string `dynamodbav:"GSI4PK"` // SENDER#<id>
	GSI4SK      string `dynamodbav:"GSI4SK"` // REQUEST#<createdAt>
	EntityType  string `dynamodbav:"EntityType"`
	RequestID   string `dynamodbav:"RequestID"`
	SenderID    string `dynamodbav:"SenderID"`
	RecipientID string `dynamodbav:"RecipientID"`
	Status      string `dynamodbav:"Status"`
	PairKey     string `dynamodbav:"PairKey"`
	CreatedAt   string `dynamodbav:"CreatedAt"`
	UpdatedAt   string `dynamodbav:"UpdatedAt"`
}

func requestKey(id valueobjects.RequestID) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: fmt.Sprintf("REQUEST#%s", id.String())},
		"SK": &types.AttributeValueMemberS{Value: "METADATA"},
	}
}

// Create persists a new pending request
func (r *ConnectionRequestRepository) Create(ctx context.Context, request *entities.ConnectionRequest) error {
	createdAt := request.CreatedAt().Format(time.RFC3339Nano)
	sortKey := fmt.Sprintf("REQUEST#%s", createdAt)

	item := requestItem{
		PK:          fmt.Sprintf("REQUEST#%s", request.ID().String()),
		SK:          "METADATA",
		GSI2PK:      fmt.Sprintf("PAIR#%s", request.PairKey()),
		GSI2SK:      sortKey,
		GSI3PK:      fmt.Sprintf("RECIPIENT#%s", request.Recipient().String()),
		GSI3SK:      sortKey,
		GSI4PK:      fmt.Sprintf("SENDER#%s", request.Sender().String()),
		GSI4SK:      sortKey,
		EntityType:  "CONNECTION_REQUEST",
		RequestID:   request.ID().String(),
		SenderID:    request.Sender().String(),
		RecipientID: request.Recipient().String(),
		Status:      string(request.Status()),
		PairKey:     request.PairKey(),
		CreatedAt:   createdAt,
		UpdatedAt:   request.UpdatedAt().Format(time.RFC3339Nano),
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return pkgerrors.NewDatabaseError("marshal connection request", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})
	if err != nil {
		var conditionFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionFailed) {
			return pkgerrors.NewConflictError("connection request already exists")
		}
		return pkgerrors.NewDatabaseError("create connection request", err)
	}

	r.logger.Debug("Connection request created",
		zap.String("requestID", request.ID().String()),
		zap.String("pairKey", request.PairKey()),
	)

	return nil
}

// GetByID retrieves a request by its ID
func (r *ConnectionRequestRepository) GetByID(ctx context.Context, id valueobjects.RequestID) (*entities.ConnectionRequest, error) {
	result, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       requestKey(id),
	})
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("get connection request", err)
	}
	if result.Item == nil {
		return nil, pkgerrors.NewNotFoundError("connection request")
	}

	var item requestItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, pkgerrors.NewDatabaseError("unmarshal connection request", err)
	}

	return reconstructRequest(item)
}

// FindPendingBetween finds the pending request between the unordered pair
// {a, b}, regardless of direction. Returns (nil, nil) when no pending request
// exists.
func (r *ConnectionRequestRepository) FindPendingBetween(ctx context.Context, a, b valueobjects.AccountID) (*entities.ConnectionRequest, error) {
	pairKey := fmt.Sprintf("PAIR#%s", entities.PairKey(a, b))

	expr, err := expression.NewBuilder().
		WithKeyCondition(expression.Key("GSI2PK").Equal(expression.Value(pairKey))).
		WithFilter(expression.Name("Status").Equal(expression.Value(string(entities.RequestStatusPending)))).
		Build()
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("build pair query", err)
	}

	result, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(r.pairIndex),
		KeyConditionExpression:    expr.KeyCondition(),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("query pending request by pair", err)
	}
	if len(result.Items) == 0 {
		return nil, nil
	}

	var item requestItem
	if err := attributevalue.UnmarshalMap(result.Items[0], &item); err != nil {
		return nil, pkgerrors.NewDatabaseError("unmarshal connection request", err)
	}

	return reconstructRequest(item)
}

// ListPendingByRecipient returns pending requests addressed to recipient,
// oldest first
func (r *ConnectionRequestRepository) ListPendingByRecipient(ctx context.Context, recipient valueobjects.AccountID) ([]*entities.ConnectionRequest, error) {
	return r.listPending(ctx, r.recipientIndex, "GSI3PK", fmt.Sprintf("RECIPIENT#%s", recipient.String()))
}

// ListPendingBySender returns pending requests sent by sender, oldest first
func (r *ConnectionRequestRepository) ListPendingBySender(ctx context.Context, sender valueobjects.AccountID) ([]*entities.ConnectionRequest, error) {
	return r.listPending(ctx, r.senderIndex, "GSI4PK", fmt.Sprintf("SENDER#%s", sender.String()))
}

func (r *ConnectionRequestRepository) listPending(ctx context.Context, indexName, keyAttr, keyValue string) ([]*entities.ConnectionRequest, error) {
	expr, err := expression.NewBuilder().
		WithKeyCondition(expression.Key(keyAttr).Equal(expression.Value(keyValue))).
		WithFilter(expression.Name("Status").Equal(expression.Value(string(entities.RequestStatusPending)))).
		Build()
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("build pending query", err)
	}

	requests := make([]*entities.ConnectionRequest, 0)
	var startKey map[string]types.AttributeValue

	for {
		result, err := r.client.Query(ctx, &dynamodb.QueryInput{
			TableName:                 aws.String(r.tableName),
			IndexName:                 aws.String(indexName),
			KeyConditionExpression:    expr.KeyCondition(),
			FilterExpression:          expr.Filter(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			ExclusiveStartKey:         startKey,
		})
		if err != nil {
			return nil, pkgerrors.NewDatabaseError("query pending requests", err)
		}

		for _, raw := range result.Items {
			var item requestItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				r.logger.Warn("Failed to unmarshal request item", zap.Error(err))
				continue
			}
			request, err := reconstructRequest(item)
			if err != nil {
				r.logger.Warn("Failed to reconstruct request",
					zap.String("requestID", item.RequestID), zap.Error(err))
				continue
			}
			requests = append(requests, request)
		}

		if result.LastEvaluatedKey == nil {
			break
		}
		startKey = result.LastEvaluatedKey
	}

	return requests, nil
}

// UpdateStatusIfPending transitions the stored request to status as one
// conditional write keyed on the stored status still being pending. Of two
// concurrent transitions exactly one passes the condition; the loser gets
// Conflict.
func (r *ConnectionRequestRepository) UpdateStatusIfPending(ctx context.Context, id valueobjects.RequestID, status entities.RequestStatus) error {
	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 requestKey(id),
		UpdateExpression:    aws.String("SET #status = :status, UpdatedAt = :now"),
		ConditionExpression: aws.String("#status = :pending"),
		ExpressionAttributeNames: map[string]string{
			"#status": "Status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":status":  &types.AttributeValueMemberS{Value: string(status)},
			":pending": &types.AttributeValueMemberS{Value: string(entities.RequestStatusPending)},
			":now":     &types.AttributeValueMemberS{Value: time.Now().Format(time.RFC3339Nano)},
		},
	})
	if err != nil {
		var conditionFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionFailed) {
			return pkgerrors.NewConflictError("request already processed")
		}
		return pkgerrors.NewDatabaseError("update request status", err)
	}

	r.logger.Debug("Connection request transitioned",
		zap.String("requestID", id.String()),
		zap.String("status", string(status)),
	)

	return nil
}

func reconstructRequest(item requestItem) (*entities.ConnectionRequest, error) {
	id, err := valueobjects.NewRequestIDFromString(item.RequestID)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "invalid stored request ID")
	}
	sender, err := valueobjects.NewAccountIDFromString(item.SenderID)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "invalid stored sender ID")
	}
	recipient, err := valueobjects.NewAccountIDFromString(item.RecipientID)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "invalid stored recipient ID")
	}

	return entities.ReconstructConnectionRequest(
		id,
		sender,
		recipient,
		entities.RequestStatus(item.Status),
		parseStoredTime(item.CreatedAt),
		parseStoredTime(item.UpdatedAt),
	)
}
