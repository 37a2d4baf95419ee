package handlers

import (
	"encoding/json"
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
	"linkup-backend/pkg/utils"
)

// AccountHandler handles account profile HTTP requests
type AccountHandler struct {
	accounts     *services.AccountService
	errorHandler *pkgerrors.ErrorHandler
	logger       *zap.Logger
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(accounts *services.AccountService, errorHandler *pkgerrors.ErrorHandler, logger *zap.Logger) *AccountHandler {
	return &AccountHandler{
		accounts:     accounts,
		errorHandler: errorHandler,
		logger:       logger,
	}
}

// CreateAccountRequest represents the request body for registering an account
type CreateAccountRequest struct {
	Username string `json:"username" validate:"required,min=3,max=32"`
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required,max=100"`
}

// AccountResponse is the wire form of an account profile
type AccountResponse struct {
	ID              string `json:"id"`
	Username        string `json:"username"`
	Name            string `json:"name"`
	ConnectionCount int    `json:"connectionCount"`
	CreatedAt       string `json:"createdAt"`
}

func toAccountResponse(account *entities.Account) AccountResponse {
	return AccountResponse{
		ID:              account.ID().String(),
		Username:        account.Username(),
		Name:            account.Name(),
		ConnectionCount: account.ConnectionCount(),
		CreatedAt:       account.CreatedAt().Format(time.RFC3339),
	}
}

// CreateAccount handles POST /accounts
func (h *AccountHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.errorHandler.Handle(w, r, pkgerrors.NewValidationError("invalid request body"))
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		h.errorHandler.Handle(w, r, pkgerrors.NewValidationError(err.Error()))
		return
	}

	if existing, err := h.accounts.GetByUsername(r.Context(), req.Username); err == nil && existing != nil {
		h.errorHandler.Handle(w, r, pkgerrors.NewConflictError("username already taken"))
		return
	} else if err != nil && !pkgerrors.IsNotFound(err) {
		h.errorHandler.Handle(w, r, err)
		return
	}

	account, err := entities.NewAccount(req.Username, req.Email, req.Name)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	if err := h.accounts.Save(r.Context(), account); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusCreated, toAccountResponse(account))
}

// GetByUsername handles GET /accounts/{username}
func (h *AccountHandler) GetByUsername(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	if username == "" {
		h.errorHandler.Handle(w, r, pkgerrors.NewValidationError("username is required"))
		return
	}

	account, err := h.accounts.GetByUsername(r.Context(), username)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, toAccountResponse(account))
}

// GetMe handles GET /accounts/me
func (h *AccountHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.errorHandler.Handle(w, r, pkgerrors.NewUnauthorizedError(""))
		return
	}

	actorID, err := valueobjects.NewAccountIDFromString(userCtx.UserID)
	if err != nil {
		h.errorHandler.Handle(w, r, pkgerrors.NewUnauthorizedError("invalid account identity"))
		return
	}

	account, err := h.accounts.GetByID(r.Context(), actorID)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, toAccountResponse(account))
}
