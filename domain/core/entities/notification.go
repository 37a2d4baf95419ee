package entities

import (
	"time"

	"github.com/google/uuid"

	"linkup-backend/domain/core/valueobjects"
	pkgerrors "linkup-backend/pkg/errors"
)

// NotificationType identifies what a notification is about
type NotificationType string

const (
	NotificationTypeConnectionAccepted NotificationType = "connectionAccepted"
	NotificationTypeComment            NotificationType = "comment"
	NotificationTypeLike               NotificationType = "like"
)

// Notification is one entry in a recipient's append-only notification log.
// Records are created by side-effecting operations and later marked read by
// their recipient; nothing else mutates them.
type Notification struct {
	id          string
	recipient   valueobjects.AccountID
	notifType   NotificationType
	relatedUser valueobjects.AccountID
	relatedPost string
	read        bool
	createdAt   time.Time
}

// NewNotification creates an unread notification for recipient
func NewNotification(
	recipient valueobjects.AccountID,
	notifType NotificationType,
	relatedUser valueobjects.AccountID,
	relatedPost string,
) (*Notification, error) {
	if recipient.IsZero() {
		return nil, pkgerrors.NewValidationError("notification recipient is required")
	}
	switch notifType {
	case NotificationTypeConnectionAccepted, NotificationTypeComment, NotificationTypeLike:
	default:
		return nil, pkgerrors.NewValidationError("unknown notification type")
	}

	return &Notification{
		id:          uuid.New().String(),
		recipient:   recipient,
		notifType:   notifType,
		relatedUser: relatedUser,
		relatedPost: relatedPost,
		read:        false,
		createdAt:   time.Now(),
	}, nil
}

// ReconstructNotification rebuilds a notification from repository data
func ReconstructNotification(
	id string,
	recipient valueobjects.AccountID,
	notifType NotificationType,
	relatedUser valueobjects.AccountID,
	relatedPost string,
	read bool,
	createdAt time.Time,
) (*Notification, error) {
	if id == "" {
		return nil, pkgerrors.NewValidationError("notification ID cannot be empty")
	}
	if recipient.IsZero() {
		return nil, pkgerrors.NewValidationError("notification recipient is required")
	}

	return &Notification{
		id:          id,
		recipient:   recipient,
		notifType:   notifType,
		relatedUser: relatedUser,
		relatedPost: relatedPost,
		read:        read,
		createdAt:   createdAt,
	}, nil
}

// ID returns the notification's unique identifier
func (n *Notification) ID() string {
	return n.id
}

// Recipient returns the account the notification belongs to
func (n *Notification) Recipient() valueobjects.AccountID {
	return n.recipient
}

// Type returns the notification type
func (n *Notification) Type() NotificationType {
	return n.notifType
}

// RelatedUser returns the account the notification is about
func (n *Notification) RelatedUser() valueobjects.AccountID {
	return n.relatedUser
}

// RelatedPost returns the related post id, if any
func (n *Notification) RelatedPost() string {
	return n.relatedPost
}

// Read reports whether the recipient has seen the notification
func (n *Notification) Read() bool {
	return n.read
}

// CreatedAt returns the notification's creation time
func (n *Notification) CreatedAt() time.Time {
	return n.createdAt
}

// MarkRead marks the notification as read. Only the recipient may do this;
// marking an already-read notification is a no-op.
func (n *Notification) MarkRead(actor valueobjects.AccountID) error {
	if !actor.Equals(n.recipient) {
		return pkgerrors.NewForbiddenError("only the recipient can mark a notification read")
	}

	n.read = true
	return nil
}
