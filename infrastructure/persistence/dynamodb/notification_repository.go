package dynamodb

import (
	"context"
	"encoding/base64"
	"encoding/json"
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

// NotificationRepository implements ports.NotificationRepository on DynamoDB.
// Notifications live under their recipient's partition with a time-ordered
// sort key, so the newest-first listing is a single reverse query. A GSI on
// the notification ID serves point lookups for mark-read.
type NotificationRepository struct {
	client            *dynamodb.Client
	tableName         string
	notificationIndex string
	logger            *zap.Logger
}

// NewNotificationRepository creates a new NotificationRepository
func NewNotificationRepository(client *dynamodb.Client, tableName, notificationIndex string, logger *zap.Logger) ports.NotificationRepository {
	return &NotificationRepository{
		client:            client,
		tableName:         tableName,
		notificationIndex: notificationIndex,
		logger:            logger,
	}
}

// notificationItem represents the DynamoDB item structure for a notification
type notificationItem struct {
	PK             string `dynamodbav:"PK"`     // ACCOUNT#<recipient>
	SK             string `dynamodbav:"SK"`     // NOTIFICATION#<createdAt>#<id>
	GSI1PK         string `dynamodbav:"GSI1PK"` // NOTIF#<id>
	GSI1SK         string `dynamodbav:"GSI1SK"` // Always "METADATA"
	EntityType     string `dynamodbav:"EntityType"`
	NotificationID string `dynamodbav:"NotificationID"`
	RecipientID    string `dynamodbav:"RecipientID"`
	Type           string `dynamodbav:"Type"`
	RelatedUser    string `dynamodbav:"RelatedUser,omitempty"`
	RelatedPost    string `dynamodbav:"RelatedPost,omitempty"`
	IsRead         bool   `dynamodbav:"IsRead"`
	CreatedAt      string `dynamodbav:"CreatedAt"`
}

// notificationCursor is the opaque pagination token for ListByRecipient
type notificationCursor struct {
	PK string `json:"pk"`
	SK string `json:"sk"`
}

// Append persists one notification record
func (r *NotificationRepository) Append(ctx context.Context, notification *entities.Notification) error {
	createdAt := notification.CreatedAt().Format(time.RFC3339Nano)

	item := notificationItem{
		PK:             fmt.Sprintf("ACCOUNT#%s", notification.Recipient().String()),
		SK:             fmt.Sprintf("NOTIFICATION#%s#%s", createdAt, notification.ID()),
		GSI1PK:         fmt.Sprintf("NOTIF#%s", notification.ID()),
		GSI1SK:         "METADATA",
		EntityType:     "NOTIFICATION",
		NotificationID: notification.ID(),
		RecipientID:    notification.Recipient().String(),
		Type:           string(notification.Type()),
		RelatedUser:    notification.RelatedUser().String(),
		RelatedPost:    notification.RelatedPost(),
		IsRead:         notification.Read(),
		CreatedAt:      createdAt,
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return pkgerrors.NewDatabaseError("marshal notification", err)
	}

	if _, err := r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	}); err != nil {
		return pkgerrors.NewDatabaseError("append notification", err)
	}

	r.logger.Debug("Notification appended",
		zap.String("notificationID", notification.ID()),
		zap.String("recipient", notification.Recipient().String()),
	)

	return nil
}

// GetByID retrieves a notification via the notification ID GSI
func (r *NotificationRepository) GetByID(ctx context.Context, id string) (*entities.Notification, error) {
	item, err := r.getItemByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return reconstructNotification(item)
}

// ListByRecipient returns one page of the recipient's notifications, newest
// first
func (r *NotificationRepository) ListByRecipient(ctx context.Context, recipient valueobjects.AccountID, limit int, cursor string) ([]*entities.Notification, string, error) {
	expr, err := expression.NewBuilder().
		WithKeyCondition(
			expression.Key("PK").Equal(expression.Value(fmt.Sprintf("ACCOUNT#%s", recipient.String()))).
				And(expression.Key("SK").BeginsWith("NOTIFICATION#")),
		).
		Build()
	if err != nil {
		return nil, "", pkgerrors.NewDatabaseError("build notification query", err)
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ScanIndexForward:          aws.Bool(false),
	}
	if limit > 0 {
		input.Limit = aws.Int32(int32(limit))
	}
	if cursor != "" {
		startKey, err := decodeNotificationCursor(cursor)
		if err != nil {
			return nil, "", pkgerrors.NewValidationError("invalid pagination cursor")
		}
		input.ExclusiveStartKey = startKey
	}

	result, err := r.client.Query(ctx, input)
	if err != nil {
		return nil, "", pkgerrors.NewDatabaseError("query notifications", err)
	}

	notifications := make([]*entities.Notification, 0, len(result.Items))
	for _, raw := range result.Items {
		var item notificationItem
		if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
			r.logger.Warn("Failed to unmarshal notification item", zap.Error(err))
			continue
		}
		notification, err := reconstructNotification(item)
		if err != nil {
			r.logger.Warn("Failed to reconstruct notification",
				zap.String("notificationID", item.NotificationID), zap.Error(err))
			continue
		}
		notifications = append(notifications, notification)
	}

	next := ""
	if result.LastEvaluatedKey != nil {
		next, err = encodeNotificationCursor(result.LastEvaluatedKey)
		if err != nil {
			return nil, "", pkgerrors.NewDatabaseError("encode pagination cursor", err)
		}
	}

	return notifications, next, nil
}

// CountUnread counts the recipient's unread notifications, paging through the
// partition with a count-only query
func (r *NotificationRepository) CountUnread(ctx context.Context, recipient valueobjects.AccountID) (int, error) {
	expr, err := expression.NewBuilder().
		WithKeyCondition(
			expression.Key("PK").Equal(expression.Value(fmt.Sprintf("ACCOUNT#%s", recipient.String()))).
				And(expression.Key("SK").BeginsWith("NOTIFICATION#")),
		).
		WithFilter(expression.Name("IsRead").Equal(expression.Value(false))).
		Build()
	if err != nil {
		return 0, pkgerrors.NewDatabaseError("build unread count query", err)
	}

	count := 0
	var startKey map[string]types.AttributeValue

	for {
		result, err := r.client.Query(ctx, &dynamodb.QueryInput{
			TableName:                 aws.String(r.tableName),
			KeyConditionExpression:    expr.KeyCondition(),
			FilterExpression:          expr.Filter(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			Select:                    types.SelectCount,
			ExclusiveStartKey:         startKey,
		})
		if err != nil {
			return 0, pkgerrors.NewDatabaseError("count unread notifications", err)
		}

		count += int(result.Count)

		if result.LastEvaluatedKey == nil {
			break
		}
		startKey = result.LastEvaluatedKey
	}

	return count, nil
}

// MarkRead flips the read flag on one notification
func (r *NotificationRepository) MarkRead(ctx context.Context, id string) error {
	// The primary key embeds the creation time, so resolve it via the ID GSI
	item, err := r.getItemByID(ctx, id)
	if err != nil {
		return err
	}

	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: item.PK},
			"SK": &types.AttributeValueMemberS{Value: item.SK},
		},
		UpdateExpression: aws.String("SET IsRead = :read"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":read": &types.AttributeValueMemberBOOL{Value: true},
		},
	})
	if err != nil {
		return pkgerrors.NewDatabaseError("mark notification read", err)
	}

	return nil
}

func (r *NotificationRepository) getItemByID(ctx context.Context, id string) (notificationItem, error) {
	result, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(r.notificationIndex),
		KeyConditionExpression: aws.String("GSI1PK = :pk AND GSI1SK = :sk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: fmt.Sprintf("NOTIF#%s", id)},
			":sk": &types.AttributeValueMemberS{Value: "METADATA"},
		},
		Limit: aws.Int32(1),
	})
	if err != nil {
		return notificationItem{}, pkgerrors.NewDatabaseError("query notification by ID", err)
	}
	if len(result.Items) == 0 {
		return notificationItem{}, pkgerrors.NewNotFoundError("notification")
	}

	var item notificationItem
	if err := attributevalue.UnmarshalMap(result.Items[0], &item); err != nil {
		return notificationItem{}, pkgerrors.NewDatabaseError("unmarshal notification", err)
	}
	return item, nil
}

func reconstructNotification(item notificationItem) (*entities.Notification, error) {
	recipient, err := valueobjects.NewAccountIDFromString(item.RecipientID)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "invalid stored recipient ID")
	}

	var relatedUser valueobjects.AccountID
	if item.RelatedUser != "" {
		relatedUser, err = valueobjects.NewAccountIDFromString(item.RelatedUser)
		if err != nil {
			return nil, pkgerrors.Wrap(err, "invalid stored related user ID")
		}
	}

	return entities.ReconstructNotification(
		item.NotificationID,
		recipient,
		entities.NotificationType(item.Type),
		relatedUser,
		item.RelatedPost,
		item.IsRead,
		parseStoredTime(item.CreatedAt),
	)
}

func encodeNotificationCursor(key map[string]types.AttributeValue) (string, error) {
	cursor := notificationCursor{}
	if v, ok := key["PK"].(*types.AttributeValueMemberS); ok {
		cursor.PK = v.Value
	}
	if v, ok := key["SK"].(*types.AttributeValueMemberS); ok {
		cursor.SK = v.Value
	}
	raw, err := json.Marshal(cursor)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

func decodeNotificationCursor(cursor string) (map[string]types.AttributeValue, error) {
	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return nil, err
	}
	var decoded notificationCursor
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, err
	}
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: decoded.PK},
		"SK": &types.AttributeValueMemberS{Value: decoded.SK},
	}, nil
}
