package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"linkup-backend/domain/core/entities"
	"linkup-backend/domain/core/valueobjects"
	pkgerrors "linkup-backend/pkg/errors"
	"linkup-backend/tests/fixtures"
	"linkup-backend/tests/mocks"
)

type connectionHarness struct {
	service       *ConnectionService
	accounts      *mocks.InMemoryAccountStore
	requests      *mocks.InMemoryRequestStore
	notifications *mocks.InMemoryNotificationStore
	mailer        *mocks.CapturingMailer
	publisher     *mocks.CapturingPublisher
}

func newConnectionHarness(t *testing.T) *connectionHarness {
	t.Helper()

	accounts := mocks.NewInMemoryAccountStore()
	requests := mocks.NewInMemoryRequestStore()
	notifications := mocks.NewInMemoryNotificationStore()
	mailer := mocks.NewCapturingMailer()
	publisher := mocks.NewCapturingPublisher()
	logger := zap.NewNop()

	notificationService := NewNotificationService(notifications, newTestCache(), logger)
	service := NewConnectionService(accounts, requests, notificationService, mailer, publisher, logger)

	return &connectionHarness{
		service:       service,
		accounts:      accounts,
		requests:      requests,
		notifications: notifications,
		mailer:        mailer,
		publisher:     publisher,
	}
}

func (h *connectionHarness) seedAccount(t *testing.T, b *fixtures.AccountBuilder) *entities.Account {
	t.Helper()
	account := b.MustBuild(t)
	require.NoError(t, h.accounts.Save(context.Background(), account))
	return account
}

// testCache is a minimal Cache for service tests
type testCache struct {
	mu    sync.Mutex
	items map[string]interface{}
}

func newTestCache() *testCache {
	return &testCache{items: make(map[string]interface{})}
}

func (c *testCache) Get(ctx context.Context, key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.items[key]
	return v, ok
}

func (c *testCache) Set(ctx context.Context, key string, value interface{}, ttl int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = value
	return nil
}

func (c *testCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
	return nil
}

func (c *testCache) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]interface{})
	return nil
}

func TestSend_CreatesPendingRequest(t *testing.T) {
	// Arrange
	h := newConnectionHarness(t)
	ctx := context.Background()
	alice := h.seedAccount(t, fixtures.NewAccountBuilder().WithUsername("alice"))
	bob := h.seedAccount(t, fixtures.NewAccountBuilder().WithUsername("bob"))

	// Act
	request, err := h.service.Send(ctx, alice.ID(), bob.ID())

	// Assert
	require.NoError(t, err)
	assert.True(t, request.Sender().Equals(alice.ID()))
	assert.True(t, request.Recipient().Equals(bob.ID()))
	assert.Equal(t, entities.RequestStatusPending, request.Status())

	stored, err := h.requests.FindPendingBetween(ctx, alice.ID(), bob.ID())
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.True(t, stored.ID().Equals(request.ID()))

	// No notification on send; recipients poll their incoming list
	count, err := h.notifications.CountUnread(ctx, bob.ID())
	require.NoError(t, err)
	assert.Zero(t, count)

	published := h.publisher.Published()
	require.Len(t, published, 1)
	assert.Equal(t, "connection.requested", published[0].GetEventType())
}

func TestSend_ToSelfReturnsValidationError(t *testing.T) {
	h := newConnectionHarness(t)
	alice := h.seedAccount(t, fixtures.NewAccountBuilder().WithUsername("alice"))

	request, err := h.service.Send(context.Background(), alice.ID(), alice.ID())

	assert.Nil(t, request)
	assert.True(t, pkgerrors.IsValidation(err))
}

func TestSend_WhenAlreadyConnectedReturnsConflict(t *testing.T) {
	h := newConnectionHarness(t)
	bobID := valueobjects.NewAccountID()
	alice := h.seedAccount(t, fixtures.NewAccountBuilder().WithUsername("alice").ConnectedTo(bobID))
	h.seedAccount(t, fixtures.NewAccountBuilder().WithID(bobID).WithUsername("bob").ConnectedTo(alice.ID()))

	request, err := h.service.Send(context.Background(), alice.ID(), bobID)

	assert.Nil(t, request)
	assert.True(t, pkgerrors.IsConflict(err))
}

func TestSend_DuplicatePendingIsConflictInBothDirections(t *testing.T) {
	h := newConnectionHarness(t)
	ctx := context.Background()
	alice := h.seedAccount(t, fixtures.NewAccountBuilder().WithUsername("alice"))
	bob := h.seedAccount(t, fixtures.NewAccountBuilder().WithUsername("bob"))

	_, err := h.service.Send(ctx, alice.ID(), bob.ID())
	require.NoError(t, err)

	// Same direction
	_, err = h.service.Send(ctx, alice.ID(), bob.ID())
	assert.True(t, pkgerrors.IsConflict(err))

	// Reverse direction collides with the same pending pair
	_, err = h.service.Send(ctx, bob.ID(), alice.ID())
	assert.True(t, pkgerrors.IsConflict(err))
}

func TestSend_UnknownTargetReturnsNotFound(t *testing.T) {
	h := newConnectionHarness(t)
	alice := h.seedAccount(t, fixtures.NewAccountBuilder().WithUsername("alice"))

	request, err := h.service.Send(context.Background(), alice.ID(), valueobjects.NewAccountID())

	assert.Nil(t, request)
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestSend_AfterRejectionCreatesFreshRequest(t *testing.T) {
	h := newConnectionHarness(t)
	ctx := context.Background()
	alice := h.seedAccount(t, fixtures.NewAccountBuilder().WithUsername("alice"))
	bob := h.seedAccount(t, fixtures.NewAccountBuilder().WithUsername("bob"))

	first, err := h.service.Send(ctx, alice.ID(), bob.ID())
	require.NoError(t, err)
	require.NoError(t, h.service.Reject(ctx, bob.ID(), first.ID()))

	// A decided request no longer blocks the pair
	second, err := h.service.Send(ctx, alice.ID(), bob.ID())

	require.NoError(t, err)
	assert.False(t, second.ID().Equals(first.ID()))
	assert.Equal(t, entities.RequestStatusPending, second.Status())
}

func TestAccept_EstablishesSymmetricConnectionAndNotifiesSender(t *testing.T) {
	// Arrange
	h := newConnectionHarness(t)
	ctx := context.Background()
	alice := h.seedAccount(t, fixtures.NewAccountBuilder().WithUsername("alice").WithName("Alice").WithEmail("alice@example.com"))
	bob := h.seedAccount(t, fixtures.NewAccountBuilder().WithUsername("bob").WithName("Bob"))

	request, err := h.service.Send(ctx, alice.ID(), bob.ID())
	require.NoError(t, err)

	// Act
	err = h.service.Accept(ctx, bob.ID(), request.ID())

	// Assert
	require.NoError(t, err)

	stored, err := h.requests.GetByID(ctx, request.ID())
	require.NoError(t, err)
	assert.Equal(t, entities.RequestStatusAccepted, stored.Status())

	// Both sides of the edge
	aliceNow, err := h.accounts.GetByID(ctx, alice.ID())
	require.NoError(t, err)
	bobNow, err := h.accounts.GetByID(ctx, bob.ID())
	require.NoError(t, err)
	assert.True(t, aliceNow.IsConnectedTo(bob.ID()))
	assert.True(t, bobNow.IsConnectedTo(alice.ID()))

	// The sender gets the notification, about the accepter
	list, _, err := h.notifications.ListByRecipient(ctx, alice.ID(), 10, "")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, entities.NotificationTypeConnectionAccepted, list[0].Type())
	assert.True(t, list[0].RelatedUser().Equals(bob.ID()))
	assert.False(t, list[0].Read())

	// The acceptance email is dispatched off the request path
	require.Eventually(t, func() bool {
		return len(h.mailer.Sent()) == 1
	}, 2*time.Second, 10*time.Millisecond)
	sent := h.mailer.Sent()[0]
	assert.Equal(t, "alice@example.com", sent.To)
	assert.Contains(t, sent.Subject, "Bob")
}

func TestAccept_ByNonRecipientIsForbidden(t *testing.T) {
	h := newConnectionHarness(t)
	ctx := context.Background()
	alice := h.seedAccount(t, fixtures.NewAccountBuilder().WithUsername("alice"))
	bob := h.seedAccount(t, fixtures.NewAccountBuilder().WithUsername("bob"))
	mallory := h.seedAccount(t, fixtures.NewAccountBuilder().WithUsername("mallory"))

	request, err := h.service.Send(ctx, alice.ID(), bob.ID())
	require.NoError(t, err)

	// Neither the sender nor a third party may decide the request
	assert.True(t, pkgerrors.IsForbidden(h.service.Accept(ctx, alice.ID(), request.ID())))
	assert.True(t, pkgerrors.IsForbidden(h.service.Accept(ctx, mallory.ID(), request.ID())))

	stored, err := h.requests.GetByID(ctx, request.ID())
	require.NoError(t, err)
	assert.Equal(t, entities.RequestStatusPending, stored.Status())
}

func TestAccept_AfterRejectReturnsConflict(t *testing.T) {
	h := newConnectionHarness(t)
	ctx := context.Background()
	alice := h.seedAccount(t, fixtures.NewAccountBuilder().WithUsername("alice"))
	bob := h.seedAccount(t, fixtures.NewAccountBuilder().WithUsername("bob"))

	request, err := h.service.Send(ctx, alice.ID(), bob.ID())
	require.NoError(t, err)
	require.NoError(t, h.service.Reject(ctx, bob.ID(), request.ID()))

	err = h.service.Accept(ctx, bob.ID(), request.ID())

	assert.True(t, pkgerrors.IsConflict(err))

	bobNow, err := h.accounts.GetByID(ctx, bob.ID())
	require.NoError(t, err)
	assert.False(t, bobNow.IsConnectedTo(alice.ID()))
}

func TestAccept_UnknownRequestReturnsNotFound(t *testing.T) {
	h := newConnectionHarness(t)
	bob := h.seedAccount(t, fixtures.NewAccountBuilder().WithUsername("bob"))

	err := h.service.Accept(context.Background(), bob.ID(), valueobjects.NewRequestID())

	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestAccept_ConcurrentAcceptsExactlyOneWins(t *testing.T) {
	h := newConnectionHarness(t)
	ctx := context.Background()
	alice := h.seedAccount(t, fixtures.NewAccountBuilder().WithUsername("alice"))
	bob := h.seedAccount(t, fixtures.NewAccountBuilder().WithUsername("bob"))

	request, err := h.service.Send(ctx, alice.ID(), bob.ID())
	require.NoError(t, err)

	const attempts = 8
	results := make(chan error, attempts)
	var start sync.WaitGroup
	start.Add(1)

	for i := 0; i < attempts; i++ {
		go func() {
			start.Wait()
			results <- h.service.Accept(ctx, bob.ID(), request.ID())
		}()
	}
	start.Done()

	successes := 0
	conflicts := 0
	for i := 0; i < attempts; i++ {
		err := <-results
		switch {
		case err == nil:
			successes++
		case pkgerrors.IsConflict(err):
			conflicts++
		default:
			t.Fatalf("unexpected error from concurrent accept: %v", err)
		}
	}

	assert.Equal(t, 1, successes)
	assert.Equal(t, attempts-1, conflicts)

	// Side effects ran exactly once
	list, _, err := h.notifications.ListByRecipient(ctx, alice.ID(), 20, "")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestAccept_FirstConnectionWriteFailureAborts(t *testing.T) {
	h := newConnectionHarness(t)
	ctx := context.Background()
	alice := h.seedAccount(t, fixtures.NewAccountBuilder().WithUsername("alice"))
	bob := h.seedAccount(t, fixtures.NewAccountBuilder().WithUsername("bob"))

	request, err := h.service.Send(ctx, alice.ID(), bob.ID())
	require.NoError(t, err)

	// Sender-side write is the first of the pair
	h.accounts.FailAddConnectionFor = alice.ID().String()

	err = h.service.Accept(ctx, bob.ID(), request.ID())

	require.Error(t, err)

	// No notification when no edge was written
	count, cerr := h.notifications.CountUnread(ctx, alice.ID())
	require.NoError(t, cerr)
	assert.Zero(t, count)
}

func TestAccept_SecondConnectionWriteFailureStillSucceeds(t *testing.T) {
	h := newConnectionHarness(t)
	ctx := context.Background()
	alice := h.seedAccount(t, fixtures.NewAccountBuilder().WithUsername("alice"))
	bob := h.seedAccount(t, fixtures.NewAccountBuilder().WithUsername("bob"))

	request, err := h.service.Send(ctx, alice.ID(), bob.ID())
	require.NoError(t, err)

	// Recipient-side write is the second of the pair; its failure is absorbed
	h.accounts.FailAddConnectionFor = bob.ID().String()

	err = h.service.Accept(ctx, bob.ID(), request.ID())

	require.NoError(t, err)

	aliceNow, err := h.accounts.GetByID(ctx, alice.ID())
	require.NoError(t, err)
	bobNow, err := h.accounts.GetByID(ctx, bob.ID())
	require.NoError(t, err)
	assert.True(t, aliceNow.IsConnectedTo(bob.ID()))
	assert.False(t, bobNow.IsConnectedTo(alice.ID()))

	// The notification still lands
	count, err := h.notifications.CountUnread(ctx, alice.ID())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestAccept_MailerFailureDoesNotSurface(t *testing.T) {
	h := newConnectionHarness(t)
	ctx := context.Background()
	alice := h.seedAccount(t, fixtures.NewAccountBuilder().WithUsername("alice"))
	bob := h.seedAccount(t, fixtures.NewAccountBuilder().WithUsername("bob"))
	h.mailer.Err = context.DeadlineExceeded

	request, err := h.service.Send(ctx, alice.ID(), bob.ID())
	require.NoError(t, err)

	err = h.service.Accept(ctx, bob.ID(), request.ID())

	require.NoError(t, err)
}

func TestReject_LeavesAccountsUntouched(t *testing.T) {
	h := newConnectionHarness(t)
	ctx := context.Background()
	alice := h.seedAccount(t, fixtures.NewAccountBuilder().WithUsername("alice"))
	bob := h.seedAccount(t, fixtures.NewAccountBuilder().WithUsername("bob"))

	request, err := h.service.Send(ctx, alice.ID(), bob.ID())
	require.NoError(t, err)

	err = h.service.Reject(ctx, bob.ID(), request.ID())

	require.NoError(t, err)

	stored, err := h.requests.GetByID(ctx, request.ID())
	require.NoError(t, err)
	assert.Equal(t, entities.RequestStatusRejected, stored.Status())

	aliceNow, err := h.accounts.GetByID(ctx, alice.ID())
	require.NoError(t, err)
	assert.False(t, aliceNow.IsConnectedTo(bob.ID()))

	// Rejection is silent for the sender
	count, err := h.notifications.CountUnread(ctx, alice.ID())
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Empty(t, h.mailer.Sent())
}

func TestReject_ByNonRecipientIsForbidden(t *testing.T) {
	h := newConnectionHarness(t)
	ctx := context.Background()
	alice := h.seedAccount(t, fixtures.NewAccountBuilder().WithUsername("alice"))
	bob := h.seedAccount(t, fixtures.NewAccountBuilder().WithUsername("bob"))

	request, err := h.service.Send(ctx, alice.ID(), bob.ID())
	require.NoError(t, err)

	err = h.service.Reject(ctx, alice.ID(), request.ID())

	assert.True(t, pkgerrors.IsForbidden(err))
}

func TestStatus_Precedence(t *testing.T) {
	h := newConnectionHarness(t)
	ctx := context.Background()
	alice := h.seedAccount(t, fixtures.NewAccountBuilder().WithUsername("alice"))
	bob := h.seedAccount(t, fixtures.NewAccountBuilder().WithUsername("bob"))
	carol := h.seedAccount(t, fixtures.NewAccountBuilder().WithUsername("carol"))
	dave := h.seedAccount(t, fixtures.NewAccountBuilder().WithUsername("dave"))

	// alice -> bob pending, carol -> alice pending
	_, err := h.service.Send(ctx, alice.ID(), bob.ID())
	require.NoError(t, err)
	incoming, err := h.service.Send(ctx, carol.ID(), alice.ID())
	require.NoError(t, err)

	tests := []struct {
		name          string
		target        valueobjects.AccountID
		wantStatus    ConnectionStatus
		wantRequestID string
	}{
		{"outgoing pending", bob.ID(), ConnectionStatusPending, ""},
		{"incoming pending carries request id", carol.ID(), ConnectionStatusReceived, incoming.ID().String()},
		{"no relation", dave.ID(), ConnectionStatusNotConnected, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := h.service.Status(ctx, alice.ID(), tt.target)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, result.Status)
			assert.Equal(t, tt.wantRequestID, result.RequestID)
		})
	}

	// Connection wins over everything else
	require.NoError(t, h.service.Accept(ctx, alice.ID(), incoming.ID()))
	result, err := h.service.Status(ctx, alice.ID(), carol.ID())
	require.NoError(t, err)
	assert.Equal(t, ConnectionStatusConnected, result.Status)
	assert.Empty(t, result.RequestID)
}

func TestRemove_DissolvesBothDirections(t *testing.T) {
	h := newConnectionHarness(t)
	ctx := context.Background()
	alice := h.seedAccount(t, fixtures.NewAccountBuilder().WithUsername("alice"))
	bob := h.seedAccount(t, fixtures.NewAccountBuilder().WithUsername("bob"))

	request, err := h.service.Send(ctx, alice.ID(), bob.ID())
	require.NoError(t, err)
	require.NoError(t, h.service.Accept(ctx, bob.ID(), request.ID()))

	err = h.service.Remove(ctx, alice.ID(), bob.ID())

	require.NoError(t, err)

	aliceNow, err := h.accounts.GetByID(ctx, alice.ID())
	require.NoError(t, err)
	bobNow, err := h.accounts.GetByID(ctx, bob.ID())
	require.NoError(t, err)
	assert.False(t, aliceNow.IsConnectedTo(bob.ID()))
	assert.False(t, bobNow.IsConnectedTo(alice.ID()))
}

func TestRemove_NotConnectedReturnsNotFound(t *testing.T) {
	h := newConnectionHarness(t)
	alice := h.seedAccount(t, fixtures.NewAccountBuilder().WithUsername("alice"))
	bob := h.seedAccount(t, fixtures.NewAccountBuilder().WithUsername("bob"))

	err := h.service.Remove(context.Background(), alice.ID(), bob.ID())

	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestListConnections_SkipsDanglingReferences(t *testing.T) {
	h := newConnectionHarness(t)
	ctx := context.Background()
	deletedID := valueobjects.NewAccountID()
	bob := h.seedAccount(t, fixtures.NewAccountBuilder().WithUsername("bob"))
	alice := h.seedAccount(t, fixtures.NewAccountBuilder().WithUsername("alice").ConnectedTo(bob.ID(), deletedID))

	list, err := h.service.ListConnections(ctx, alice.ID())

	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "bob", list[0].Username())
}

func TestListIncomingAndOutgoing(t *testing.T) {
	h := newConnectionHarness(t)
	ctx := context.Background()
	alice := h.seedAccount(t, fixtures.NewAccountBuilder().WithUsername("alice"))
	bob := h.seedAccount(t, fixtures.NewAccountBuilder().WithUsername("bob"))
	carol := h.seedAccount(t, fixtures.NewAccountBuilder().WithUsername("carol"))

	sent, err := h.service.Send(ctx, alice.ID(), bob.ID())
	require.NoError(t, err)
	received, err := h.service.Send(ctx, carol.ID(), alice.ID())
	require.NoError(t, err)

	outgoing, err := h.service.ListOutgoing(ctx, alice.ID())
	require.NoError(t, err)
	require.Len(t, outgoing, 1)
	assert.True(t, outgoing[0].ID().Equals(sent.ID()))

	incoming, err := h.service.ListIncoming(ctx, alice.ID())
	require.NoError(t, err)
	require.Len(t, incoming, 1)
	assert.True(t, incoming[0].ID().Equals(received.ID()))

	// Decided requests drop out of both listings
	require.NoError(t, h.service.Accept(ctx, alice.ID(), received.ID()))
	incoming, err = h.service.ListIncoming(ctx, alice.ID())
	require.NoError(t, err)
	assert.Empty(t, incoming)
}
