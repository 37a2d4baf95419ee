package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"linkup-backend/domain/core/entities"
	"linkup-backend/domain/core/valueobjects"
	"linkup-backend/domain/events"
)

// MockAccountRepository is a testify mock for ports.AccountRepository
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) Save(ctx context.Context, account *entities.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id valueobjects.AccountID) (*entities.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Account), args.Error(1)
}

func (m *MockAccountRepository) GetByUsername(ctx context.Context, username string) (*entities.Account, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Account), args.Error(1)
}

func (m *MockAccountRepository) AddConnection(ctx context.Context, owner, other valueobjects.AccountID) error {
	args := m.Called(ctx, owner, other)
	return args.Error(0)
}

func (m *MockAccountRepository) RemoveConnection(ctx context.Context, owner, other valueobjects.AccountID) error {
	args := m.Called(ctx, owner, other)
	return args.Error(0)
}

func (m *MockAccountRepository) ListAccounts(ctx context.Context, limit int, cursor string) ([]*entities.Account, string, error) {
	args := m.Called(ctx, limit, cursor)
	if args.Get(0) == nil {
		return nil, args.String(1), args.Error(2)
	}
	return args.Get(0).([]*entities.Account), args.String(1), args.Error(2)
}

// MockConnectionRequestRepository is a testify mock for ports.ConnectionRequestRepository
type MockConnectionRequestRepository struct {
	mock.Mock
}

func (m *MockConnectionRequestRepository) Create(ctx context.Context, request *entities.ConnectionRequest) error {
	args := m.Called(ctx, request)
	return args.Error(0)
}

func (m *MockConnectionRequestRepository) GetByID(ctx context.Context, id valueobjects.RequestID) (*entities.ConnectionRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.ConnectionRequest), args.Error(1)
}

func (m *MockConnectionRequestRepository) FindPendingBetween(ctx context.Context, a, b valueobjects.AccountID) (*entities.ConnectionRequest, error) {
	args := m.Called(ctx, a, b)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.ConnectionRequest), args.Error(1)
}

func (m *MockConnectionRequestRepository) ListPendingByRecipient(ctx context.Context, recipient valueobjects.AccountID) ([]*entities.ConnectionRequest, error) {
	args := m.Called(ctx, recipient)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.ConnectionRequest), args.Error(1)
}

func (m *MockConnectionRequestRepository) ListPendingBySender(ctx context.Context, sender valueobjects.AccountID) ([]*entities.ConnectionRequest, error) {
	args := m.Called(ctx, sender)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.ConnectionRequest), args.Error(1)
}

func (m *MockConnectionRequestRepository) UpdateStatusIfPending(ctx context.Context, id valueobjects.RequestID, status entities.RequestStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

// MockNotificationRepository is a testify mock for ports.NotificationRepository
type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) Append(ctx context.Context, notification *entities.Notification) error {
	args := m.Called(ctx, notification)
	return args.Error(0)
}

func (m *MockNotificationRepository) GetByID(ctx context.Context, id string) (*entities.Notification, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Notification), args.Error(1)
}

func (m *MockNotificationRepository) ListByRecipient(ctx context.Context, recipient valueobjects.AccountID, limit int, cursor string) ([]*entities.Notification, string, error) {
	args := m.Called(ctx, recipient, limit, cursor)
	if args.Get(0) == nil {
		return nil, args.String(1), args.Error(2)
	}
	return args.Get(0).([]*entities.Notification), args.String(1), args.Error(2)
}

func (m *MockNotificationRepository) CountUnread(ctx context.Context, recipient valueobjects.AccountID) (int, error) {
	args := m.Called(ctx, recipient)
	return args.Int(0), args.Error(1)
}

func (m *MockNotificationRepository) MarkRead(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockMailer is a testify mock for ports.Mailer
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(ctx context.Context, to, subject, body string) error {
	args := m.Called(ctx, to, subject, body)
	return args.Error(0)
}

// MockEventPublisher is a testify mock for ports.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, event events.DomainEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventPublisher) PublishBatch(ctx context.Context, batch []events.DomainEvent) error {
	args := m.Called(ctx, batch)
	return args.Error(0)
}

// MockCache is a testify mock for ports.Cache
type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, key string) (interface{}, bool) {
	args := m.Called(ctx, key)
	return args.Get(0), args.Bool(1)
}

func (m *MockCache) Set(ctx context.Context, key string, value interface{}, ttl int) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockCache) Clear(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
