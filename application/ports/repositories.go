package ports

import (
	"context"

	"linkup-backend/domain/core/entities"
	"linkup-backend/domain/core/valueobjects"
	"linkup-backend/domain/events"
)

// AccountRepository is the account directory port. The engine never owns
// account storage; it only drives the connection-set mutations through this
// interface. AddConnection and RemoveConnection touch exactly one direction of
// the symmetric relation and must be atomic per account record.
type AccountRepository interface {
	// Save persists an account (create or update of profile fields)
	Save(ctx context.Context, account *entities.Account) error

	// GetByID retrieves an account by its ID
	GetByID(ctx context.Context, id valueobjects.AccountID) (*entities.Account, error)

	// GetByUsername retrieves an account by its unique username
	GetByUsername(ctx context.Context, username string) (*entities.Account, error)

	// AddConnection adds other to owner's connection set
	AddConnection(ctx context.Context, owner, other valueobjects.AccountID) error

	// RemoveConnection removes other from owner's connection set
	RemoveConnection(ctx context.Context, owner, other valueobjects.AccountID) error

	// ListAccounts pages through every account; cursor is opaque and empty on
	// the first call, the returned cursor is empty when the scan is done
	ListAccounts(ctx context.Context, limit int, cursor string) ([]*entities.Account, string, error)
}

// ConnectionRequestRepository is the connection request store port.
type ConnectionRequestRepository interface {
	// Create persists a new pending request
	Create(ctx context.Context, request *entities.ConnectionRequest) error

	// GetByID retrieves a request by its ID; NotFound when absent
	GetByID(ctx context.Context, id valueobjects.RequestID) (*entities.ConnectionRequest, error)

	// FindPendingBetween finds the pending request between the unordered pair
	// {a, b} in either direction; returns (nil, nil) when none exists
	FindPendingBetween(ctx context.Context, a, b valueobjects.AccountID) (*entities.ConnectionRequest, error)

	// ListPendingByRecipient returns pending requests addressed to recipient
	ListPendingByRecipient(ctx context.Context, recipient valueobjects.AccountID) ([]*entities.ConnectionRequest, error)

	// ListPendingBySender returns pending requests sent by sender
	ListPendingBySender(ctx context.Context, sender valueobjects.AccountID) ([]*entities.ConnectionRequest, error)

	// UpdateStatusIfPending transitions the stored request to status only if
	// it is still pending, as one atomic conditional write. Returns Conflict
	// when the stored request is no longer pending, so of two concurrent
	// accepts exactly one can win.
	UpdateStatusIfPending(ctx context.Context, id valueobjects.RequestID, status entities.RequestStatus) error
}

// NotificationRepository is the notification sink port: a durable append-only
// per-recipient log, plus the read-side the recipient uses to consume it.
type NotificationRepository interface {
	// Append persists one notification record
	Append(ctx context.Context, notification *entities.Notification) error

	// GetByID retrieves a notification by its ID; NotFound when absent
	GetByID(ctx context.Context, id string) (*entities.Notification, error)

	// ListByRecipient returns one page of the recipient's notifications,
	// newest first; cursor semantics match AccountRepository.ListAccounts
	ListByRecipient(ctx context.Context, recipient valueobjects.AccountID, limit int, cursor string) ([]*entities.Notification, string, error)

	// CountUnread returns the number of unread notifications for recipient
	CountUnread(ctx context.Context, recipient valueobjects.AccountID) (int, error)

	// MarkRead flips the read flag on one notification
	MarkRead(ctx context.Context, id string) error
}

// Mailer is the outbound email port. Delivery is best effort: callers treat
// errors as log-only and never let them affect a committed transition.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	// Publish sends a single event
	Publish(ctx context.Context, event events.DomainEvent) error

	// PublishBatch sends multiple events
	PublishBatch(ctx context.Context, events []events.DomainEvent) error
}

// Cache defines the interface for caching
type Cache interface {
	// Get retrieves a value from cache
	Get(ctx context.Context, key string) (interface{}, bool)

	// Set stores a value in cache with TTL in seconds
	Set(ctx context.Context, key string, value interface{}, ttl int) error

	// Delete removes a value from cache
	Delete(ctx context.Context, key string) error

	// Clear removes all values from cache
	Clear(ctx context.Context) error
}
