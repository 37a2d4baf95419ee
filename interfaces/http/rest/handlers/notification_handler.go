package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"linkup-backend/application/services"
	"linkup-backend/domain/core/entities"
	"linkup-backend/domain/core/valueobjects"
	"linkup-backend/pkg/auth"
	"linkup-backend/pkg/common"
	pkgerrors "linkup-backend/pkg/errors"
)

// NotificationHandler handles notification HTTP requests
type NotificationHandler struct {
	notifications *services.NotificationService
	errorHandler  *pkgerrors.ErrorHandler
	logger        *zap.Logger
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(notifications *services.NotificationService, errorHandler *pkgerrors.ErrorHandler, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{
		notifications: notifications,
		errorHandler:  errorHandler,
		logger:        logger,
	}
}

// NotificationResponse is the wire form of a notification
type NotificationResponse struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	RelatedUser string `json:"relatedUser,omitempty"`
	RelatedPost string `json:"relatedPost,omitempty"`
	Read        bool   `json:"read"`
	CreatedAt   string `json:"createdAt"`
}

func toNotificationResponse(notification *entities.Notification) NotificationResponse {
	resp := NotificationResponse{
		ID:        notification.ID(),
		Type:      string(notification.Type()),
		Read:      notification.Read(),
		CreatedAt: notification.CreatedAt().Format(time.RFC3339),
	}
	if !notification.RelatedUser().IsZero() {
		resp.RelatedUser = notification.RelatedUser().String()
	}
	if notification.RelatedPost() != "" {
		resp.RelatedPost = notification.RelatedPost()
	}
	return resp
}

// List handles GET /notifications
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	actorID, ok := h.actor(w, r)
	if !ok {
		return
	}

	params := common.ExtractPageParams(r)

	notifications, nextCursor, err := h.notifications.List(r.Context(), actorID, params.Limit, params.Cursor)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	items := make([]NotificationResponse, 0, len(notifications))
	for _, notification := range notifications {
		items = append(items, toNotificationResponse(notification))
	}

	common.RespondJSON(w, http.StatusOK, common.NewPage(items, nextCursor))
}

// UnreadCount handles GET /notifications/unread-count
func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	actorID, ok := h.actor(w, r)
	if !ok {
		return
	}

	count, err := h.notifications.UnreadCount(r.Context(), actorID)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, map[string]int{"unread": count})
}

// MarkRead handles PUT /notifications/{notificationID}/read
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	actorID, ok := h.actor(w, r)
	if !ok {
		return
	}

	notificationID := chi.URLParam(r, "notificationID")
	if _, err := uuid.Parse(notificationID); err != nil {
		h.errorHandler.Handle(w, r, pkgerrors.NewValidationError("invalid notification ID"))
		return
	}

	if err := h.notifications.MarkRead(r.Context(), actorID, notificationID); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"id":   notificationID,
		"read": true,
	})
}

func (h *NotificationHandler) actor(w http.ResponseWriter, r *http.Request) (valueobjects.AccountID, bool) {
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
