package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"linkup-backend/application/services"
	"linkup-backend/domain/core/entities"
	"linkup-backend/domain/core/valueobjects"
	"linkup-backend/pkg/auth"
	pkgerrors "linkup-backend/pkg/errors"
	"linkup-backend/tests/fixtures"
	"linkup-backend/tests/mocks"
)

// testUserHeader carries the acting account for handler tests; the test
// router's auth middleware turns it into a user context the way the real
// middleware does after token validation
const testUserHeader = "X-Test-User"

type handlerHarness struct {
	router   http.Handler
	accounts *mocks.InMemoryAccountStore
	requests *mocks.InMemoryRequestStore
}

type handlerCache struct {
	mu    sync.Mutex
	items map[string]interface{}
}

func (c *handlerCache) Get(ctx context.Context, key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.items[key]
	return v, ok
}

func (c *handlerCache) Set(ctx context.Context, key string, value interface{}, ttl int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = value
	return nil
}

func (c *handlerCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
	return nil
}

func (c *handlerCache) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]interface{})
	return nil
}

func newHandlerHarness(t *testing.T) *handlerHarness {
	t.Helper()

	logger := zap.NewNop()
	accounts := mocks.NewInMemoryAccountStore()
	requests := mocks.NewInMemoryRequestStore()
	notifications := mocks.NewInMemoryNotificationStore()
	cache := &handlerCache{items: make(map[string]interface{})}

	notificationService := services.NewNotificationService(notifications, cache, logger)
	connectionService := services.NewConnectionService(
		accounts, requests, notificationService,
		mocks.NewCapturingMailer(), mocks.NewCapturingPublisher(), logger,
	)

	handler := NewConnectionHandler(connectionService, pkgerrors.NewErrorHandler(logger, false), logger)

	router := chi.NewRouter()
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if userID := r.Header.Get(testUserHeader); userID != "" {
				ctx := auth.SetUserInContext(r.Context(), &auth.UserContext{UserID: userID})
				r = r.WithContext(ctx)
			}
			next.ServeHTTP(w, r)
		})
	})
	router.Route("/connections", func(r chi.Router) {
		r.Get("/", handler.ListConnections)
		r.Post("/request/{targetID}", handler.SendRequest)
		r.Get("/status/{targetID}", handler.Status)
		r.Delete("/{targetID}", handler.RemoveConnection)
		r.Route("/requests", func(r chi.Router) {
			r.Get("/", handler.ListIncoming)
			r.Get("/sent", handler.ListOutgoing)
			r.Put("/{requestID}/accept", handler.AcceptRequest)
			r.Put("/{requestID}/reject", handler.RejectRequest)
		})
	})

	return &handlerHarness{
		router:   router,
		accounts: accounts,
		requests: requests,
	}
}

func (h *handlerHarness) seedAccount(t *testing.T, username string) *entities.Account {
	t.Helper()
	account := fixtures.NewAccountBuilder().WithUsername(username).MustBuild(t)
	require.NoError(t, h.accounts.Save(context.Background(), account))
	return account
}

func (h *handlerHarness) do(t *testing.T, method, path string, actor valueobjects.AccountID) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if !actor.IsZero() {
		req.Header.Set(testUserHeader, actor.String())
	}
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	var envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.True(t, envelope.Success)
	require.NoError(t, json.Unmarshal(envelope.Data, out))
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) pkgerrors.ErrorResponse {
	t.Helper()
	var response pkgerrors.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.True(t, response.Error)
	return response
}

func TestSendRequest_Created(t *testing.T) {
	// Arrange
	h := newHandlerHarness(t)
	alice := h.seedAccount(t, "alice")
	bob := h.seedAccount(t, "bob")

	// Act
	rec := h.do(t, http.MethodPost, "/connections/request/"+bob.ID().String(), alice.ID())

	// Assert
	require.Equal(t, http.StatusCreated, rec.Code)

	var body RequestResponse
	decodeData(t, rec, &body)
	assert.Equal(t, alice.ID().String(), body.Sender)
	assert.Equal(t, bob.ID().String(), body.Recipient)
	assert.Equal(t, "pending", body.Status)
	assert.NotEmpty(t, body.ID)
}

func TestSendRequest_WithoutAuthIsUnauthorized(t *testing.T) {
	h := newHandlerHarness(t)
	bob := h.seedAccount(t, "bob")

	rec := h.do(t, http.MethodPost, "/connections/request/"+bob.ID().String(), valueobjects.AccountID{})

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	response := decodeError(t, rec)
	assert.Equal(t, string(pkgerrors.ErrorTypeUnauthorized), response.Type)
}

func TestSendRequest_InvalidTargetIsBadRequest(t *testing.T) {
	h := newHandlerHarness(t)
	alice := h.seedAccount(t, "alice")

	rec := h.do(t, http.MethodPost, "/connections/request/not-a-uuid", alice.ID())

	require.Equal(t, http.StatusBadRequest, rec.Code)
	response := decodeError(t, rec)
	assert.Equal(t, string(pkgerrors.ErrorTypeValidation), response.Type)
}

func TestSendRequest_ToSelfIsBadRequest(t *testing.T) {
	h := newHandlerHarness(t)
	alice := h.seedAccount(t, "alice")

	rec := h.do(t, http.MethodPost, "/connections/request/"+alice.ID().String(), alice.ID())

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSendRequest_DuplicateIsConflict(t *testing.T) {
	h := newHandlerHarness(t)
	alice := h.seedAccount(t, "alice")
	bob := h.seedAccount(t, "bob")

	first := h.do(t, http.MethodPost, "/connections/request/"+bob.ID().String(), alice.ID())
	require.Equal(t, http.StatusCreated, first.Code)

	second := h.do(t, http.MethodPost, "/connections/request/"+bob.ID().String(), alice.ID())

	require.Equal(t, http.StatusConflict, second.Code)
	response := decodeError(t, second)
	assert.Equal(t, string(pkgerrors.ErrorTypeConflict), response.Type)
	assert.Equal(t, "connection request already exists", response.Message)
}

func TestAcceptRequest_FullFlow(t *testing.T) {
	h := newHandlerHarness(t)
	alice := h.seedAccount(t, "alice")
	bob := h.seedAccount(t, "bob")

	sendRec := h.do(t, http.MethodPost, "/connections/request/"+bob.ID().String(), alice.ID())
	require.Equal(t, http.StatusCreated, sendRec.Code)
	var sent RequestResponse
	decodeData(t, sendRec, &sent)

	// Recipient accepts
	rec := h.do(t, http.MethodPut, "/connections/requests/"+sent.ID+"/accept", bob.ID())

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	decodeData(t, rec, &body)
	assert.Equal(t, sent.ID, body["id"])
	assert.Equal(t, "accepted", body["status"])

	// Both accounts now list each other
	statusRec := h.do(t, http.MethodGet, "/connections/status/"+bob.ID().String(), alice.ID())
	require.Equal(t, http.StatusOK, statusRec.Code)
	var status services.StatusResult
	decodeData(t, statusRec, &status)
	assert.Equal(t, services.ConnectionStatusConnected, status.Status)
}

func TestAcceptRequest_BySenderIsForbidden(t *testing.T) {
	h := newHandlerHarness(t)
	alice := h.seedAccount(t, "alice")
	bob := h.seedAccount(t, "bob")

	sendRec := h.do(t, http.MethodPost, "/connections/request/"+bob.ID().String(), alice.ID())
	var sent RequestResponse
	decodeData(t, sendRec, &sent)

	rec := h.do(t, http.MethodPut, "/connections/requests/"+sent.ID+"/accept", alice.ID())

	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAcceptRequest_AlreadyDecidedIsConflict(t *testing.T) {
	h := newHandlerHarness(t)
	alice := h.seedAccount(t, "alice")
	bob := h.seedAccount(t, "bob")

	sendRec := h.do(t, http.MethodPost, "/connections/request/"+bob.ID().String(), alice.ID())
	var sent RequestResponse
	decodeData(t, sendRec, &sent)

	reject := h.do(t, http.MethodPut, "/connections/requests/"+sent.ID+"/reject", bob.ID())
	require.Equal(t, http.StatusOK, reject.Code)

	rec := h.do(t, http.MethodPut, "/connections/requests/"+sent.ID+"/accept", bob.ID())

	require.Equal(t, http.StatusConflict, rec.Code)
	response := decodeError(t, rec)
	assert.Equal(t, "request already processed", response.Message)
}

func TestAcceptRequest_UnknownIsNotFound(t *testing.T) {
	h := newHandlerHarness(t)
	bob := h.seedAccount(t, "bob")

	rec := h.do(t, http.MethodPut, "/connections/requests/"+valueobjects.NewRequestID().String()+"/accept", bob.ID())

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStatus_ReceivedCarriesRequestID(t *testing.T) {
	h := newHandlerHarness(t)
	alice := h.seedAccount(t, "alice")
	bob := h.seedAccount(t, "bob")

	sendRec := h.do(t, http.MethodPost, "/connections/request/"+bob.ID().String(), alice.ID())
	var sent RequestResponse
	decodeData(t, sendRec, &sent)

	rec := h.do(t, http.MethodGet, "/connections/status/"+alice.ID().String(), bob.ID())

	require.Equal(t, http.StatusOK, rec.Code)
	var status services.StatusResult
	decodeData(t, rec, &status)
	assert.Equal(t, services.ConnectionStatusReceived, status.Status)
	assert.Equal(t, sent.ID, status.RequestID)
}

func TestListIncomingAndOutgoingEndpoints(t *testing.T) {
	h := newHandlerHarness(t)
	alice := h.seedAccount(t, "alice")
	bob := h.seedAccount(t, "bob")

	sendRec := h.do(t, http.MethodPost, "/connections/request/"+bob.ID().String(), alice.ID())
	require.Equal(t, http.StatusCreated, sendRec.Code)

	incoming := h.do(t, http.MethodGet, "/connections/requests/", bob.ID())
	require.Equal(t, http.StatusOK, incoming.Code)
	var incomingBody []RequestResponse
	decodeData(t, incoming, &incomingBody)
	require.Len(t, incomingBody, 1)
	assert.Equal(t, alice.ID().String(), incomingBody[0].Sender)

	outgoing := h.do(t, http.MethodGet, "/connections/requests/sent", alice.ID())
	require.Equal(t, http.StatusOK, outgoing.Code)
	var outgoingBody []RequestResponse
	decodeData(t, outgoing, &outgoingBody)
	require.Len(t, outgoingBody, 1)
	assert.Equal(t, bob.ID().String(), outgoingBody[0].Recipient)
}

func TestRemoveConnection_NoContent(t *testing.T) {
	h := newHandlerHarness(t)
	alice := h.seedAccount(t, "alice")
	bob := h.seedAccount(t, "bob")

	sendRec := h.do(t, http.MethodPost, "/connections/request/"+bob.ID().String(), alice.ID())
	var sent RequestResponse
	decodeData(t, sendRec, &sent)
	accept := h.do(t, http.MethodPut, "/connections/requests/"+sent.ID+"/accept", bob.ID())
	require.Equal(t, http.StatusOK, accept.Code)

	rec := h.do(t, http.MethodDelete, "/connections/"+bob.ID().String(), alice.ID())

	require.Equal(t, http.StatusNoContent, rec.Code)

	statusRec := h.do(t, http.MethodGet, "/connections/status/"+bob.ID().String(), alice.ID())
	var status services.StatusResult
	decodeData(t, statusRec, &status)
	assert.Equal(t, services.ConnectionStatusNotConnected, status.Status)
}

func TestRemoveConnection_NotConnectedIsNotFound(t *testing.T) {
	h := newHandlerHarness(t)
	alice := h.seedAccount(t, "alice")
	bob := h.seedAccount(t, "bob")

	rec := h.do(t, http.MethodDelete, "/connections/"+bob.ID().String(), alice.ID())

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListConnections_ReturnsSummaries(t *testing.T) {
	h := newHandlerHarness(t)
	alice := h.seedAccount(t, "alice")
	bob := h.seedAccount(t, "bob")

	sendRec := h.do(t, http.MethodPost, "/connections/request/"+bob.ID().String(), alice.ID())
	var sent RequestResponse
	decodeData(t, sendRec, &sent)
	accept := h.do(t, http.MethodPut, "/connections/requests/"+sent.ID+"/accept", bob.ID())
	require.Equal(t, http.StatusOK, accept.Code)

	rec := h.do(t, http.MethodGet, "/connections/", alice.ID())

	require.Equal(t, http.StatusOK, rec.Code)
	var body []AccountSummary
	decodeData(t, rec, &body)
	require.Len(t, body, 1)
	assert.Equal(t, "bob", body[0].Username)
	assert.Equal(t, bob.ID().String(), body[0].ID)
}
