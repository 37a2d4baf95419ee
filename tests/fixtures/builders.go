package fixtures

import (
	"fmt"
	"testing"
	"time"

	"linkup-backend/domain/core/entities"
	"linkup-backend/domain/core/valueobjects"
)

// AccountBuilder builds test accounts with sensible defaults
type AccountBuilder struct {
	id          valueobjects.AccountID
	username    string
	email       string
	name        string
	connections []valueobjects.AccountID
	createdAt   time.Time
}

// NewAccountBuilder creates a builder with default profile fields
func NewAccountBuilder() *AccountBuilder {
	id := valueobjects.NewAccountID()
	return &AccountBuilder{
		id:        id,
		username:  fmt.Sprintf("user-%.8s", id.String()),
		email:     fmt.Sprintf("%.8s@example.com", id.String()),
		name:      "Test User",
		createdAt: time.Now(),
	}
}

func (b *AccountBuilder) WithID(id valueobjects.AccountID) *AccountBuilder {
	b.id = id
	return b
}

func (b *AccountBuilder) WithUsername(username string) *AccountBuilder {
	b.username = username
	return b
}

func (b *AccountBuilder) WithEmail(email string) *AccountBuilder {
	b.email = email
	return b
}

func (b *AccountBuilder) WithName(name string) *AccountBuilder {
	b.name = name
	return b
}

func (b *AccountBuilder) ConnectedTo(others ...valueobjects.AccountID) *AccountBuilder {
	b.connections = append(b.connections, others...)
	return b
}

// Build constructs the account, returning any validation error
func (b *AccountBuilder) Build() (*entities.Account, error) {
	return entities.ReconstructAccount(b.id, b.username, b.email, b.name, b.connections, b.createdAt, b.createdAt)
}

// MustBuild constructs the account and fails the test on error
func (b *AccountBuilder) MustBuild(t *testing.T) *entities.Account {
	t.Helper()
	account, err := b.Build()
	if err != nil {
		t.Fatalf("failed to build account fixture: %v", err)
	}
	return account
}

// RequestBuilder builds test connection requests
type RequestBuilder struct {
	id        valueobjects.RequestID
	sender    valueobjects.AccountID
	recipient valueobjects.AccountID
	status    entities.RequestStatus
	createdAt time.Time
}

// NewRequestBuilder creates a builder for a pending request between two fresh
// accounts
func NewRequestBuilder() *RequestBuilder {
	return &RequestBuilder{
		id:        valueobjects.NewRequestID(),
		sender:    valueobjects.NewAccountID(),
		recipient: valueobjects.NewAccountID(),
		status:    entities.RequestStatusPending,
		createdAt: time.Now(),
	}
}

func (b *RequestBuilder) WithID(id valueobjects.RequestID) *RequestBuilder {
	b.id = id
	return b
}

func (b *RequestBuilder) From(sender valueobjects.AccountID) *RequestBuilder {
	b.sender = sender
	return b
}

func (b *RequestBuilder) To(recipient valueobjects.AccountID) *RequestBuilder {
	b.recipient = recipient
	return b
}

func (b *RequestBuilder) WithStatus(status entities.RequestStatus) *RequestBuilder {
	b.status = status
	return b
}

func (b *RequestBuilder) Accepted() *RequestBuilder {
	b.status = entities.RequestStatusAccepted
	return b
}

func (b *RequestBuilder) Rejected() *RequestBuilder {
	b.status = entities.RequestStatusRejected
	return b
}

// Build constructs the request, returning any validation error
func (b *RequestBuilder) Build() (*entities.ConnectionRequest, error) {
	return entities.ReconstructConnectionRequest(b.id, b.sender, b.recipient, b.status, b.createdAt, b.createdAt)
}

// MustBuild constructs the request and fails the test on error
func (b *RequestBuilder) MustBuild(t *testing.T) *entities.ConnectionRequest {
	t.Helper()
	request, err := b.Build()
	if err != nil {
		t.Fatalf("failed to build request fixture: %v", err)
	}
	return request
}

// NotificationBuilder builds test notifications
type NotificationBuilder struct {
	id          string
	recipient   valueobjects.AccountID
	notifType   entities.NotificationType
	relatedUser valueobjects.AccountID
	relatedPost string
	read        bool
	createdAt   time.Time
}

// NewNotificationBuilder creates a builder for an unread connectionAccepted
// notification
func NewNotificationBuilder() *NotificationBuilder {
	return &NotificationBuilder{
		id:          valueobjects.NewAccountID().String(),
		recipient:   valueobjects.NewAccountID(),
		notifType:   entities.NotificationTypeConnectionAccepted,
		relatedUser: valueobjects.NewAccountID(),
		createdAt:   time.Now(),
	}
}

func (b *NotificationBuilder) WithID(id string) *NotificationBuilder {
	b.id = id
	return b
}

func (b *NotificationBuilder) For(recipient valueobjects.AccountID) *NotificationBuilder {
	b.recipient = recipient
	return b
}

func (b *NotificationBuilder) OfType(notifType entities.NotificationType) *NotificationBuilder {
	b.notifType = notifType
	return b
}

func (b *NotificationBuilder) About(relatedUser valueobjects.AccountID) *NotificationBuilder {
	b.relatedUser = relatedUser
	return b
}

func (b *NotificationBuilder) WithRelatedPost(postID string) *NotificationBuilder {
	b.relatedPost = postID
	return b
}

func (b *NotificationBuilder) AlreadyRead() *NotificationBuilder {
	b.read = true
	return b
}

func (b *NotificationBuilder) CreatedAt(at time.Time) *NotificationBuilder {
	b.createdAt = at
	return b
}

// Build constructs the notification, returning any validation error
func (b *NotificationBuilder) Build() (*entities.Notification, error) {
	return entities.ReconstructNotification(b.id, b.recipient, b.notifType, b.relatedUser, b.relatedPost, b.read, b.createdAt)
}

// MustBuild constructs the notification and fails the test on error
func (b *NotificationBuilder) MustBuild(t *testing.T) *entities.Notification {
	t.Helper()
	notification, err := b.Build()
	if err != nil {
		t.Fatalf("failed to build notification fixture: %v", err)
	}
	return notification
}
