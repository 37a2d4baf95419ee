package entities_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linkup-backend/domain/core/entities"
	"linkup-backend/domain/core/valueobjects"
	pkgerrors "linkup-backend/pkg/errors"
	"linkup-backend/tests/fixtures"
)

func TestNewNotification(t *testing.T) {
	recipient := valueobjects.NewAccountID()
	related := valueobjects.NewAccountID()

	notification, err := entities.NewNotification(recipient, entities.NotificationTypeConnectionAccepted, related, "")

	require.NoError(t, err)
	assert.NotEmpty(t, notification.ID())
	assert.True(t, notification.Recipient().Equals(recipient))
	assert.True(t, notification.RelatedUser().Equals(related))
	assert.False(t, notification.Read())
}

func TestNewNotification_RejectsUnknownType(t *testing.T) {
	_, err := entities.NewNotification(valueobjects.NewAccountID(), entities.NotificationType("wave"), valueobjects.NewAccountID(), "")

	assert.True(t, pkgerrors.IsValidation(err))
}

func TestNewNotification_RequiresRecipient(t *testing.T) {
	_, err := entities.NewNotification(valueobjects.AccountID{}, entities.NotificationTypeConnectionAccepted, valueobjects.NewAccountID(), "")

	assert.True(t, pkgerrors.IsValidation(err))
}

func TestNotification_MarkReadByRecipient(t *testing.T) {
	notification := fixtures.NewNotificationBuilder().MustBuild(t)

	require.NoError(t, notification.MarkRead(notification.Recipient()))
	assert.True(t, notification.Read())

	// Idempotent
	require.NoError(t, notification.MarkRead(notification.Recipient()))
	assert.True(t, notification.Read())
}

func TestNotification_MarkReadByOtherForbidden(t *testing.T) {
	notification := fixtures.NewNotificationBuilder().MustBuild(t)

	err := notification.MarkRead(valueobjects.NewAccountID())

	assert.True(t, pkgerrors.IsForbidden(err))
	assert.False(t, notification.Read())
}
