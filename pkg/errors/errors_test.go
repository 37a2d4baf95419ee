package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructorsMapToHTTPStatus(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		wantType   ErrorType
		wantStatus int
	}{
		{"validation", NewValidationError("bad input"), ErrorTypeValidation, http.StatusBadRequest},
		{"not found", NewNotFoundError("account"), ErrorTypeNotFound, http.StatusNotFound},
		{"conflict", NewConflictError("already connected"), ErrorTypeConflict, http.StatusConflict},
		{"unauthorized", NewUnauthorizedError(""), ErrorTypeUnauthorized, http.StatusUnauthorized},
		{"forbidden", NewForbiddenError(""), ErrorTypeForbidden, http.StatusForbidden},
		{"internal", NewInternalError("boom"), ErrorTypeInternal, http.StatusInternalServerError},
		{"rate limit", NewRateLimitError(100, "minute"), ErrorTypeRateLimit, http.StatusTooManyRequests},
		{"database", NewDatabaseError("put item", errors.New("throttled")), ErrorTypeDatabase, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantType, tt.err.Type)
			assert.Equal(t, tt.wantStatus, tt.err.HTTPStatus)
			assert.NotEmpty(t, tt.err.StackTrace)
		})
	}
}

func TestNotFoundMessageNamesResource(t *testing.T) {
	err := NewNotFoundError("connection request")

	assert.Equal(t, "connection request not found", err.Message)
}

func TestTypePredicates(t *testing.T) {
	assert.True(t, IsNotFound(NewNotFoundError("account")))
	assert.True(t, IsConflict(NewConflictError("dup")))
	assert.True(t, IsValidation(NewValidationError("bad")))
	assert.True(t, IsForbidden(NewForbiddenError("")))
	assert.True(t, IsInternal(NewInternalError("boom")))

	assert.False(t, IsNotFound(NewConflictError("dup")))
	assert.False(t, IsNotFound(errors.New("plain")))
	assert.False(t, IsNotFound(nil))
}

func TestPredicatesSeeThroughWrapping(t *testing.T) {
	inner := NewConflictError("request already processed")

	wrapped := fmt.Errorf("accept: %w", inner)

	assert.True(t, IsConflict(wrapped))
	require.NotNil(t, GetAppError(wrapped))
	assert.Equal(t, ErrorTypeConflict, GetAppError(wrapped).Type)
}

func TestWrap_PreservesAppErrorType(t *testing.T) {
	inner := NewNotFoundError("account")

	wrapped := Wrap(inner, "accept: connect sender")

	assert.True(t, IsNotFound(wrapped))
	assert.Contains(t, wrapped.Error(), "accept: connect sender")
	assert.Contains(t, wrapped.Error(), "account not found")
}

func TestWrap_PlainErrorBecomesInternal(t *testing.T) {
	inner := errors.New("connection reset")

	wrapped := Wrap(inner, "publish event")

	assert.True(t, IsInternal(wrapped))
	assert.True(t, errors.Is(wrapped, inner))
}

func TestWrap_NilIsNil(t *testing.T) {
	assert.NoError(t, Wrap(nil, "anything"))
}

func TestErrorStringIncludesCause(t *testing.T) {
	cause := errors.New("throttled")
	err := NewDatabaseError("update item", cause)

	assert.Contains(t, err.Error(), "DATABASE")
	assert.Contains(t, err.Error(), "throttled")
	assert.True(t, errors.Is(err, cause))
}

func TestWithCodeAndDetails(t *testing.T) {
	err := NewValidationError("bad input").
		WithCode("INVALID_USERNAME").
		WithDetails(map[string]interface{}{"field": "username"})

	assert.Equal(t, "INVALID_USERNAME", err.Code)
	assert.Equal(t, "username", err.Details["field"])
}
