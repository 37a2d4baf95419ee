package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"linkup-backend/application/services"
	"linkup-backend/domain/core/entities"
	"linkup-backend/domain/core/valueobjects"
	"linkup-backend/pkg/auth"
	"linkup-backend/pkg/common"
	pkgerrors "linkup-backend/pkg/errors"
)

// ConnectionHandler handles connection lifecycle HTTP requests
type ConnectionHandler struct {
	connections  *services.ConnectionService
	errorHandler *pkgerrors.ErrorHandler
	logger       *zap.Logger
}

// NewConnectionHandler creates a new connection handler
func NewConnectionHandler(connections *services.ConnectionService, errorHandler *pkgerrors.ErrorHandler, logger *zap.Logger) *ConnectionHandler {
	return &ConnectionHandler{
		connections:  connections,
		errorHandler: errorHandler,
		logger:       logger,
	}
}

// RequestResponse is the wire form of a connection request
type RequestResponse struct {
	ID        string `json:"id"`
	Sender    string `json:"sender"`
	Recipient string `json:"recipient"`
	Status    string `json:"status"`
	CreatedAt string `json:"createdAt"`
}

// AccountSummary is the wire form of an account in listings
type AccountSummary struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

func toRequestResponse(request *entities.ConnectionRequest) RequestResponse {
	return RequestResponse{
		ID:        request.ID().String(),
		Sender:    request.Sender().String(),
		Recipient: request.Recipient().String(),
		Status:    string(request.Status()),
		CreatedAt: request.CreatedAt().Format(time.RFC3339),
	}
}

func toAccountSummary(account *entities.Account) AccountSummary {
	return AccountSummary{
		ID:       account.ID().String(),
		Username: account.Username(),
		Name:     account.Name(),
	}
}

// SendRequest handles POST /connections/request/{targetID}
func (h *ConnectionHandler) SendRequest(w http.ResponseWriter, r *http.Request) {
	actorID, ok := h.actor(w, r)
	if !ok {
		return
	}

	targetID, err := valueobjects.NewAccountIDFromString(chi.URLParam(r, "targetID"))
	if err != nil {
		h.errorHandler.Handle(w, r, pkgerrors.NewValidationError("invalid target account ID"))
		return
	}

	request, err := h.connections.Send(r.Context(), actorID, targetID)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusCreated, toRequestResponse(request))
}

// AcceptRequest handles PUT /connections/requests/{requestID}/accept
func (h *ConnectionHandler) AcceptRequest(w http.ResponseWriter, r *http.Request) {
	h.decideRequest(w, r, h.connections.Accept, "accepted")
}

// RejectRequest handles PUT /connections/requests/{requestID}/reject
func (h *ConnectionHandler) RejectRequest(w http.ResponseWriter, r *http.Request) {
	h.decideRequest(w, r, h.connections.Reject, "rejected")
}

func (h *ConnectionHandler) decideRequest(
	w http.ResponseWriter,
	r *http.Request,
	decide func(ctx context.Context, actorID valueobjects.AccountID, requestID valueobjects.RequestID) error,
	outcome string,
) {
	actorID, ok := h.actor(w, r)
	if !ok {
		return
	}

	requestID, err := valueobjects.NewRequestIDFromString(chi.URLParam(r, "requestID"))
	if err != nil {
		h.errorHandler.Handle(w, r, pkgerrors.NewValidationError("invalid request ID"))
		return
	}

	if err := decide(r.Context(), actorID, requestID); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, map[string]string{
		"id":     requestID.String(),
		"status": outcome,
	})
}

// Status handles GET /connections/status/{targetID}
func (h *ConnectionHandler) Status(w http.ResponseWriter, r *http.Request) {
	actorID, ok := h.actor(w, r)
	if !ok {
		return
	}

	targetID, err := valueobjects.NewAccountIDFromString(chi.URLParam(r, "targetID"))
	if err != nil {
		h.errorHandler.Handle(w, r, pkgerrors.NewValidationError("invalid target account ID"))
		return
	}

	result, err := h.connections.Status(r.Context(), actorID, targetID)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, result)
}

// ListConnections handles GET /connections
func (h *ConnectionHandler) ListConnections(w http.ResponseWriter, r *http.Request) {
	actorID, ok := h.actor(w, r)
	if !ok {
		return
	}

	accounts, err := h.connections.ListConnections(r.Context(), actorID)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	summaries := make([]AccountSummary, 0, len(accounts))
	for _, account := range accounts {
		summaries = append(summaries, toAccountSummary(account))
	}

	common.RespondJSON(w, http.StatusOK, summaries)
}

// ListIncoming handles GET /connections/requests
func (h *ConnectionHandler) ListIncoming(w http.ResponseWriter, r *http.Request) {
	h.listRequests(w, r, h.connections.ListIncoming)
}

// ListOutgoing handles GET /connections/requests/sent
func (h *ConnectionHandler) ListOutgoing(w http.ResponseWriter, r *http.Request) {
	h.listRequests(w, r, h.connections.ListOutgoing)
}

// RemoveConnection handles DELETE /connections/{targetID}
func (h *ConnectionHandler) RemoveConnection(w http.ResponseWriter, r *http.Request) {
	actorID, ok := h.actor(w, r)
	if !ok {
		return
	}

	targetID, err := valueobjects.NewAccountIDFromString(chi.URLParam(r, "targetID"))
	if err != nil {
		h.errorHandler.Handle(w, r, pkgerrors.NewValidationError("invalid target account ID"))
		return
	}

	if err := h.connections.Remove(r.Context(), actorID, targetID); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	common.RespondNoContent(w)
}

func (h *ConnectionHandler) listRequests(
	w http.ResponseWriter,
	r *http.Request,
	list func(ctx context.Context, actorID valueobjects.AccountID) ([]*entities.ConnectionRequest, error),
) {
	actorID, ok := h.actor(w, r)
	if !ok {
		return
	}

	requests, err := list(r.Context(), actorID)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	responses := make([]RequestResponse, 0, len(requests))
	for _, request := range requests {
		responses = append(responses, toRequestResponse(request))
	}

	common.RespondJSON(w, http.StatusOK, responses)
}

func (h *ConnectionHandler) actor(w http.ResponseWriter, r *http.Request) (valueobjects.AccountID, bool) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.errorHandler.Handle(w, r, pkgerrors.NewUnauthorizedError(""))
		return valueobjects.AccountID{}, false
	}

	actorID, err := valueobjects.NewAccountIDFromString(userCtx.UserID)
	if err != nil {
		h.errorHandler.Handle(w, r, pkgerrors.NewUnauthorizedError("invalid account identity"))
		return valueobjects.AccountID{}, false
	}

	return actorID, true
}
