package events

import (
	"time"

	"linkup-backend/domain/core/valueobjects"
)

// ConnectionRequestSent is raised when a new pending request is created
type ConnectionRequestSent struct {
	BaseEvent
	RequestID valueobjects.RequestID `json:"request_id"`
	Sender    valueobjects.AccountID `json:"sender"`
	Recipient valueobjects.AccountID `json:"recipient"`
}

// NewConnectionRequestSent creates a ConnectionRequestSent event
func NewConnectionRequestSent(requestID valueobjects.RequestID, sender, recipient valueobjects.AccountID, timestamp time.Time) ConnectionRequestSent {
	return ConnectionRequestSent{
		BaseEvent: BaseEvent{
			AggregateID: requestID.String(),
			EventType:   "connection.requested",
			Timestamp:   timestamp,
			Version:     1,
		},
		RequestID: requestID,
		Sender:    sender,
		Recipient: recipient,
	}
}

// ConnectionAccepted is raised when a pending request is accepted and the
// symmetric connection between sender and recipient is established
type ConnectionAccepted struct {
	BaseEvent
	RequestID valueobjects.RequestID `json:"request_id"`
	Sender    valueobjects.AccountID `json:"sender"`
	Recipient valueobjects.AccountID `json:"recipient"`
}

// NewConnectionAccepted creates a ConnectionAccepted event
func NewConnectionAccepted(requestID valueobjects.RequestID, sender, recipient valueobjects.AccountID, timestamp time.Time) ConnectionAccepted {
	return ConnectionAccepted{
		BaseEvent: BaseEvent{
			AggregateID: requestID.String(),
			EventType:   "connection.accepted",
			Timestamp:   timestamp,
			Version:     1,
		},
		RequestID: requestID,
		Sender:    sender,
		Recipient: recipient,
	}
}

// ConnectionRejected is raised when a pending request is rejected
type ConnectionRejected struct {
	BaseEvent
	RequestID valueobjects.RequestID `json:"request_id"`
	Sender    valueobjects.AccountID `json:"sender"`
	Recipient valueobjects.AccountID `json:"recipient"`
}

// NewConnectionRejected creates a ConnectionRejected event
func NewConnectionRejected(requestID valueobjects.RequestID, sender, recipient valueobjects.AccountID, timestamp time.Time) ConnectionRejected {
	return ConnectionRejected{
		BaseEvent: BaseEvent{
			AggregateID: requestID.String(),
			EventType:   "connection.rejected",
			Timestamp:   timestamp,
			Version:     1,
		},
		RequestID: requestID,
		Sender:    sender,
		Recipient: recipient,
	}
}

// ConnectionRemoved is raised when a confirmed connection is dissolved
type ConnectionRemoved struct {
	BaseEvent
	Actor  valueobjects.AccountID `json:"actor"`
	Target valueobjects.AccountID `json:"target"`
}

// NewConnectionRemoved creates a ConnectionRemoved event
func NewConnectionRemoved(actor, target valueobjects.AccountID, timestamp time.Time) ConnectionRemoved {
	return ConnectionRemoved{
		BaseEvent: BaseEvent{
			AggregateID: actor.String(),
			EventType:   "connection.removed",
			Timestamp:   timestamp,
			Version:     1,
		},
		Actor:  actor,
		Target: target,
	}
}
