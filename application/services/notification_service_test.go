package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"linkup-backend/domain/core/entities"
	"linkup-backend/domain/core/valueobjects"
	pkgerrors "linkup-backend/pkg/errors"
	"linkup-backend/tests/fixtures"
	"linkup-backend/tests/mocks"
)

func TestNotify_AppendsUnreadRecord(t *testing.T) {
	// Arrange
	store := mocks.NewInMemoryNotificationStore()
	service := NewNotificationService(store, newTestCache(), zap.NewNop())
	ctx := context.Background()
	recipient := valueobjects.NewAccountID()
	related := valueobjects.NewAccountID()

	// Act
	notification, err := service.Notify(ctx, recipient, entities.NotificationTypeConnectionAccepted, related, "")

	// Assert
	require.NoError(t, err)
	assert.NotEmpty(t, notification.ID())
	assert.False(t, notification.Read())

	count, err := store.CountUnread(ctx, recipient)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestNotify_InvalidatesCachedUnreadCount(t *testing.T) {
	store := mocks.NewInMemoryNotificationStore()
	cache := newTestCache()
	service := NewNotificationService(store, cache, zap.NewNop())
	ctx := context.Background()
	recipient := valueobjects.NewAccountID()

	// Prime the cache with a stale count
	count, err := service.UnreadCount(ctx, recipient)
	require.NoError(t, err)
	assert.Zero(t, count)

	_, err = service.Notify(ctx, recipient, entities.NotificationTypeConnectionAccepted, valueobjects.NewAccountID(), "")
	require.NoError(t, err)

	count, err = service.UnreadCount(ctx, recipient)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestNotify_RejectsUnknownType(t *testing.T) {
	store := mocks.NewInMemoryNotificationStore()
	service := NewNotificationService(store, newTestCache(), zap.NewNop())

	_, err := service.Notify(context.Background(), valueobjects.NewAccountID(), entities.NotificationType("poke"), valueobjects.NewAccountID(), "")

	assert.True(t, pkgerrors.IsValidation(err))
}

func TestUnreadCount_ServedFromCacheOnRepeat(t *testing.T) {
	repo := new(mocks.MockNotificationRepository)
	service := NewNotificationService(repo, newTestCache(), zap.NewNop())
	ctx := context.Background()
	recipient := valueobjects.NewAccountID()

	// Store is consulted once; the second read hits the cache
	repo.On("CountUnread", ctx, recipient).Return(3, nil).Once()

	first, err := service.UnreadCount(ctx, recipient)
	require.NoError(t, err)
	second, err := service.UnreadCount(ctx, recipient)
	require.NoError(t, err)

	assert.Equal(t, 3, first)
	assert.Equal(t, 3, second)
	repo.AssertExpectations(t)
}

func TestUnreadCount_StoreErrorPropagates(t *testing.T) {
	repo := new(mocks.MockNotificationRepository)
	service := NewNotificationService(repo, newTestCache(), zap.NewNop())
	recipient := valueobjects.NewAccountID()

	repo.On("CountUnread", mock.Anything, recipient).
		Return(0, pkgerrors.NewDatabaseError("count unread", context.DeadlineExceeded))

	_, err := service.UnreadCount(context.Background(), recipient)

	require.Error(t, err)
}

func TestMarkRead_ByRecipient(t *testing.T) {
	store := mocks.NewInMemoryNotificationStore()
	service := NewNotificationService(store, newTestCache(), zap.NewNop())
	ctx := context.Background()
	recipient := valueobjects.NewAccountID()
	notification := fixtures.NewNotificationBuilder().For(recipient).MustBuild(t)
	require.NoError(t, store.Append(ctx, notification))

	err := service.MarkRead(ctx, recipient, notification.ID())

	require.NoError(t, err)
	count, err := store.CountUnread(ctx, recipient)
	require.NoError(t, err)
	assert.Zero(t, count)

	// Marking again is a no-op
	assert.NoError(t, service.MarkRead(ctx, recipient, notification.ID()))
}

func TestMarkRead_ByNonRecipientIsForbidden(t *testing.T) {
	store := mocks.NewInMemoryNotificationStore()
	service := NewNotificationService(store, newTestCache(), zap.NewNop())
	ctx := context.Background()
	recipient := valueobjects.NewAccountID()
	notification := fixtures.NewNotificationBuilder().For(recipient).MustBuild(t)
	require.NoError(t, store.Append(ctx, notification))

	err := service.MarkRead(ctx, valueobjects.NewAccountID(), notification.ID())

	assert.True(t, pkgerrors.IsForbidden(err))

	count, cerr := store.CountUnread(ctx, recipient)
	require.NoError(t, cerr)
	assert.Equal(t, 1, count)
}

func TestMarkRead_UnknownNotificationReturnsNotFound(t *testing.T) {
	store := mocks.NewInMemoryNotificationStore()
	service := NewNotificationService(store, newTestCache(), zap.NewNop())

	err := service.MarkRead(context.Background(), valueobjects.NewAccountID(), "missing")

	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestList_NewestFirstWithPaging(t *testing.T) {
	store := mocks.NewInMemoryNotificationStore()
	service := NewNotificationService(store, newTestCache(), zap.NewNop())
	ctx := context.Background()
	recipient := valueobjects.NewAccountID()

	base := time.Now()
	for i := 0; i < 3; i++ {
		notification := fixtures.NewNotificationBuilder().
			For(recipient).
			CreatedAt(base.Add(time.Duration(i) * time.Second)).
			MustBuild(t)
		require.NoError(t, store.Append(ctx, notification))
	}

	page1, cursor, err := service.List(ctx, recipient, 2, "")
	require.NoError(t, err)
	require.Len(t, page1, 2)
	require.NotEmpty(t, cursor)
	assert.True(t, page1[0].CreatedAt().After(page1[1].CreatedAt()))

	page2, cursor, err := service.List(ctx, recipient, 2, cursor)
	require.NoError(t, err)
	require.Len(t, page2, 1)
	assert.Empty(t, cursor)
	assert.True(t, page1[1].CreatedAt().After(page2[0].CreatedAt()))
}
