package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"linkup-backend/application/ports"
	"linkup-backend/domain/core/entities"
	"linkup-backend/domain/core/valueobjects"
	"linkup-backend/domain/events"
	pkgerrors "linkup-backend/pkg/errors"
)

// ConnectionStatus classifies the relation between two accounts as seen by
// one of them
type ConnectionStatus string

const (
	ConnectionStatusConnected    ConnectionStatus = "connected"
	ConnectionStatusPending      ConnectionStatus = "pending"
	ConnectionStatusReceived     ConnectionStatus = "received"
	ConnectionStatusNotConnected ConnectionStatus = "not_connected"
)

// StatusResult is the outcome of a status query. RequestID is set only for
// "received" so the caller can accept or reject the incoming request.
type StatusResult struct {
	Status    ConnectionStatus `json:"status"`
	RequestID string           `json:"requestId,omitempty"`
}

// ConnectionService is the connection lifecycle engine. It owns the rules for
// moving an account pair through none -> pending -> accepted|rejected,
// including authorization, idempotency against the freshest stored state, and
// the notification/email fan-out on accept.
type ConnectionService struct {
	accountRepo   ports.AccountRepository
	requestRepo   ports.ConnectionRequestRepository
	notifications *NotificationService
	mailer        ports.Mailer
	publisher     ports.EventPublisher
	logger        *zap.Logger
}

// NewConnectionService creates a new connection lifecycle service
func NewConnectionService(
	accountRepo ports.AccountRepository,
	requestRepo ports.ConnectionRequestRepository,
	notifications *NotificationService,
	mailer ports.Mailer,
	publisher ports.EventPublisher,
	logger *zap.Logger,
) *ConnectionService {
	return &ConnectionService{
		accountRepo:   accountRepo,
		requestRepo:   requestRepo,
		notifications: notifications,
		mailer:        mailer,
		publisher:     publisher,
		logger:        logger,
	}
}

// Send creates a pending connection request from actor to target.
// Preconditions are checked in order, first failure wins: self-targeting,
// already connected, pending request already exists in either direction.
// No notification is raised on send; recipients discover pending requests
// through the incoming-request listing.
func (s *ConnectionService) Send(ctx context.Context, actorID, targetID valueobjects.AccountID) (*entities.ConnectionRequest, error) {
	if actorID.Equals(targetID) {
		return nil, pkgerrors.NewValidationError("cannot send a connection request to yourself")
	}

	actor, err := s.accountRepo.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if actor.IsConnectedTo(targetID) {
		return nil, pkgerrors.NewConflictError("already connected")
	}

	existing, err := s.requestRepo.FindPendingBetween(ctx, actorID, targetID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, pkgerrors.NewConflictError("connection request already exists")
	}

	if _, err := s.accountRepo.GetByID(ctx, targetID); err != nil {
		return nil, err
	}

	request, err := entities.NewConnectionRequest(actorID, targetID)
	if err != nil {
		return nil, err
	}

	if err := s.requestRepo.Create(ctx, request); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.NewConnectionRequestSent(request.ID(), actorID, targetID, request.CreatedAt()))

	s.logger.Info("Connection request sent",
		zap.String("requestID", request.ID().String()),
		zap.String("sender", actorID.String()),
		zap.String("recipient", targetID.String()),
	)

	return request, nil
}

// Accept transitions a pending request to accepted, establishes the symmetric
// connection on both account records, and appends a connectionAccepted
// notification to the original sender's log. The acceptance email is
// dispatched after the transition commits, off the caller's path; its
// failures are logged and never surfaced.
func (s *ConnectionService) Accept(ctx context.Context, actorID valueobjects.AccountID, requestID valueobjects.RequestID) error {
	request, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return err
	}

	// Authorization and state guard on the loaded copy
	if err := request.Accept(actorID); err != nil {
		return err
	}

	// The guard that actually decides the race: a conditional write keyed on
	// status == pending against the stored record. Of two concurrent accepts
	// exactly one passes; the loser sees Conflict.
	if err := s.requestRepo.UpdateStatusIfPending(ctx, requestID, entities.RequestStatusAccepted); err != nil {
		return err
	}

	senderID := request.Sender()
	recipientID := request.Recipient()

	// Symmetric connection: two writes on two account records. The first
	// failure aborts with Internal (nothing was connected yet); a failure of
	// the second leaves a transiently asymmetric pair, which is logged and
	// left to the reconciliation job rather than rolling back the committed
	// transition.
	if err := s.accountRepo.AddConnection(ctx, senderID, recipientID); err != nil {
		return pkgerrors.Wrap(err, "accept: connect sender")
	}
	if err := s.accountRepo.AddConnection(ctx, recipientID, senderID); err != nil {
		s.logger.Error("Asymmetric connection left behind, reconciliation will repair",
			zap.String("requestID", requestID.String()),
			zap.String("connected", senderID.String()),
			zap.String("missing", recipientID.String()),
			zap.Error(err),
		)
	}

	// The durable, authoritative signal: persistence failures here propagate
	if _, err := s.notifications.Notify(ctx, senderID, entities.NotificationTypeConnectionAccepted, recipientID, ""); err != nil {
		return pkgerrors.Wrap(err, "accept: notify sender")
	}

	s.publishEvent(ctx, events.NewConnectionAccepted(requestID, senderID, recipientID, time.Now()))

	s.logger.Info("Connection request accepted",
		zap.String("requestID", requestID.String()),
		zap.String("sender", senderID.String()),
		zap.String("recipient", recipientID.String()),
	)

	// Best-effort echo, decoupled from the response
	go s.sendAcceptanceEmail(context.WithoutCancel(ctx), senderID, recipientID)

	return nil
}

// Reject transitions a pending request to rejected. No notification, no
// account mutation.
func (s *ConnectionService) Reject(ctx context.Context, actorID valueobjects.AccountID, requestID valueobjects.RequestID) error {
	request, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return err
	}

	if err := request.Reject(actorID); err != nil {
		return err
	}

	if err := s.requestRepo.UpdateStatusIfPending(ctx, requestID, entities.RequestStatusRejected); err != nil {
		return err
	}

	s.publishEvent(ctx, events.NewConnectionRejected(requestID, request.Sender(), request.Recipient(), time.Now()))

	s.logger.Info("Connection request rejected",
		zap.String("requestID", requestID.String()),
		zap.String("recipient", actorID.String()),
	)

	return nil
}

// Status classifies the relation between actor and target. Precedence:
// confirmed connection, then pending request (outgoing or incoming), then
// nothing. A rejected or accepted request never surfaces here.
func (s *ConnectionService) Status(ctx context.Context, actorID, targetID valueobjects.AccountID) (StatusResult, error) {
	actor, err := s.accountRepo.GetByID(ctx, actorID)
	if err != nil {
		return StatusResult{}, err
	}
	if actor.IsConnectedTo(targetID) {
		return StatusResult{Status: ConnectionStatusConnected}, nil
	}

	pending, err := s.requestRepo.FindPendingBetween(ctx, actorID, targetID)
	if err != nil {
		return StatusResult{}, err
	}
	if pending != nil {
		if pending.Sender().Equals(actorID) {
			return StatusResult{Status: ConnectionStatusPending}, nil
		}
		return StatusResult{
			Status:    ConnectionStatusReceived,
			RequestID: pending.ID().String(),
		}, nil
	}

	return StatusResult{Status: ConnectionStatusNotConnected}, nil
}

// Remove dissolves a confirmed connection in both directions
func (s *ConnectionService) Remove(ctx context.Context, actorID, targetID valueobjects.AccountID) error {
	actor, err := s.accountRepo.GetByID(ctx, actorID)
	if err != nil {
		return err
	}
	if !actor.IsConnectedTo(targetID) {
		return pkgerrors.NewNotFoundError("connection")
	}

	if err := s.accountRepo.RemoveConnection(ctx, actorID, targetID); err != nil {
		return pkgerrors.Wrap(err, "remove: disconnect actor")
	}
	if err := s.accountRepo.RemoveConnection(ctx, targetID, actorID); err != nil {
		s.logger.Error("Asymmetric removal left behind, reconciliation will repair",
			zap.String("removed", actorID.String()),
			zap.String("remaining", targetID.String()),
			zap.Error(err),
		)
	}

	s.publishEvent(ctx, events.NewConnectionRemoved(actorID, targetID, time.Now()))

	return nil
}

// ListConnections returns the actor's confirmed connections as account records
func (s *ConnectionService) ListConnections(ctx context.Context, actorID valueobjects.AccountID) ([]*entities.Account, error) {
	actor, err := s.accountRepo.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}

	connections := actor.Connections()
	out := make([]*entities.Account, 0, len(connections))
	for _, id := range connections {
		account, err := s.accountRepo.GetByID(ctx, id)
		if err != nil {
			if pkgerrors.IsNotFound(err) {
				s.logger.Warn("Connection set references missing account",
					zap.String("owner", actorID.String()),
					zap.String("missing", id.String()),
				)
				continue
			}
			return nil, err
		}
		out = append(out, account)
	}

	return out, nil
}

// ListIncoming returns pending requests addressed to the actor
func (s *ConnectionService) ListIncoming(ctx context.Context, actorID valueobjects.AccountID) ([]*entities.ConnectionRequest, error) {
	return s.requestRepo.ListPendingByRecipient(ctx, actorID)
}

// ListOutgoing returns pending requests the actor has sent
func (s *ConnectionService) ListOutgoing(ctx context.Context, actorID valueobjects.AccountID) ([]*entities.ConnectionRequest, error) {
	return s.requestRepo.ListPendingBySender(ctx, actorID)
}

// sendAcceptanceEmail delivers the best-effort acceptance email to the
// original sender. Runs detached from the request; every failure path ends in
// a log line and nothing else.
func (s *ConnectionService) sendAcceptanceEmail(ctx context.Context, senderID, recipientID valueobjects.AccountID) {
	if s.mailer == nil {
		return
	}

	sender, err := s.accountRepo.GetByID(ctx, senderID)
	if err != nil {
		s.logger.Warn("Acceptance email skipped, sender lookup failed",
			zap.String("sender", senderID.String()), zap.Error(err))
		return
	}
	recipient, err := s.accountRepo.GetByID(ctx, recipientID)
	if err != nil {
		s.logger.Warn("Acceptance email skipped, recipient lookup failed",
			zap.String("recipient", recipientID.String()), zap.Error(err))
		return
	}

	subject := fmt.Sprintf("%s accepted your connection request", recipient.Name())
	body := fmt.Sprintf(
		"Hi %s,\n\n%s (@%s) accepted your connection request. You are now connected.\n",
		sender.Name(), recipient.Name(), recipient.Username(),
	)

	if err := s.mailer.Send(ctx, sender.Email(), subject, body); err != nil {
		s.logger.Warn("Acceptance email failed",
			zap.String("to", sender.Email()),
			zap.Error(err),
		)
	}
}

// publishEvent publishes a domain event, logging failures instead of
// propagating them; the stored records are the source of truth
func (s *ConnectionService) publishEvent(ctx context.Context, event events.DomainEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish domain event",
			zap.String("eventType", event.GetEventType()),
			zap.String("aggregateID", event.GetAggregateID()),
			zap.Error(err),
		)
	}
}
