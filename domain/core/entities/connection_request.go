package entities

import (
	"time"

	"linkup-backend/domain/core/valueobjects"
	pkgerrors "linkup-backend/pkg/errors"
)

// RequestStatus represents the lifecycle state of a connection request
type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "pending"
	RequestStatusAccepted RequestStatus = "accepted"
	RequestStatusRejected RequestStatus = "rejected"
)

// ConnectionRequest is a directional proposal from sender to recipient.
// Status moves pending -> accepted or pending -> rejected exactly once;
// accepted and rejected are terminal. Only the recipient may decide it.
type ConnectionRequest struct {
	id        valueobjects.RequestID
	sender    valueobjects.AccountID
	recipient valueobjects.AccountID
	status    RequestStatus
	createdAt time.Time
	updatedAt time.Time
}

// NewConnectionRequest creates a new pending request from sender to recipient
func NewConnectionRequest(sender, recipient valueobjects.AccountID) (*ConnectionRequest, error) {
	if sender.IsZero() || recipient.IsZero() {
		return nil, pkgerrors.NewValidationError("sender and recipient are required")
	}
	if sender.Equals(recipient) {
		return nil, pkgerrors.NewValidationError("cannot send a connection request to yourself")
	}

	now := time.Now()
	return &ConnectionRequest{
		id:        valueobjects.NewRequestID(),
		sender:    sender,
		recipient: recipient,
		status:    RequestStatusPending,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// ReconstructConnectionRequest rebuilds a request from repository data
func ReconstructConnectionRequest(
	id valueobjects.RequestID,
	sender, recipient valueobjects.AccountID,
	status RequestStatus,
	createdAt, updatedAt time.Time,
) (*ConnectionRequest, error) {
	if id.IsZero() {
		return nil, pkgerrors.NewValidationError("request ID cannot be empty")
	}
	if sender.IsZero() || recipient.IsZero() {
		return nil, pkgerrors.NewValidationError("sender and recipient are required")
	}
	if sender.Equals(recipient) {
		return nil, pkgerrors.NewValidationError("sender and recipient must differ")
	}
	switch status {
	case RequestStatusPending, RequestStatusAccepted, RequestStatusRejected:
	default:
		return nil, pkgerrors.NewValidationError("unknown request status")
	}

	return &ConnectionRequest{
		id:        id,
		sender:    sender,
		recipient: recipient,
		status:    status,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}, nil
}

// ID returns the request's unique identifier
func (r *ConnectionRequest) ID() valueobjects.RequestID {
	return r.id
}

// Sender returns the account that sent the request
func (r *ConnectionRequest) Sender() valueobjects.AccountID {
	return r.sender
}

// Recipient returns the account the request is addressed to
func (r *ConnectionRequest) Recipient() valueobjects.AccountID {
	return r.recipient
}

// Status returns the request's current lifecycle state
func (r *ConnectionRequest) Status() RequestStatus {
	return r.status
}

// CreatedAt returns the request's creation time
func (r *ConnectionRequest) CreatedAt() time.Time {
	return r.createdAt
}

// UpdatedAt returns the request's last transition time
func (r *ConnectionRequest) UpdatedAt() time.Time {
	return r.updatedAt
}

// IsPending reports whether the request is still undecided
func (r *ConnectionRequest) IsPending() bool {
	return r.status == RequestStatusPending
}

// Involves reports whether the request is between the unordered pair {a, b}
func (r *ConnectionRequest) Involves(a, b valueobjects.AccountID) bool {
	return (r.sender.Equals(a) && r.recipient.Equals(b)) ||
		(r.sender.Equals(b) && r.recipient.Equals(a))
}

// Accept transitions the request to accepted. Only the recipient may accept,
// and only while the request is pending. Note the in-memory guard here is not
// sufficient under concurrency: the repository enforces the same pending
// guard with a conditional write against the stored state.
func (r *ConnectionRequest) Accept(actor valueobjects.AccountID) error {
	if !actor.Equals(r.recipient) {
		return pkgerrors.NewForbiddenError("only the recipient can accept a connection request")
	}
	if r.status != RequestStatusPending {
		return pkgerrors.NewConflictError("request already processed")
	}

	r.status = RequestStatusAccepted
	r.updatedAt = time.Now()
	return nil
}

// Reject transitions the request to rejected under the same guards as Accept
func (r *ConnectionRequest) Reject(actor valueobjects.AccountID) error {
	if !actor.Equals(r.recipient) {
		return pkgerrors.NewForbiddenError("only the recipient can reject a connection request")
	}
	if r.status != RequestStatusPending {
		return pkgerrors.NewConflictError("request already processed")
	}

	r.status = RequestStatusRejected
	r.updatedAt = time.Now()
	return nil
}

// PairKey returns the canonical key for the unordered pair {sender, recipient}.
// Both directions of a request map to the same key, which is what the store
// indexes to find a pending request regardless of who sent it.
func (r *ConnectionRequest) PairKey() string {
	return PairKey(r.sender, r.recipient)
}

// PairKey builds the canonical unordered pair key for two account ids
func PairKey(a, b valueobjects.AccountID) string {
	if a.String() < b.String() {
		return a.String() + "#" + b.String()
	}
	return b.String() + "#" + a.String()
}
