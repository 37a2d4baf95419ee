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

func TestNewConnectionRequest(t *testing.T) {
	sender := valueobjects.NewAccountID()
	recipient := valueobjects.NewAccountID()

	request, err := entities.NewConnectionRequest(sender, recipient)

	require.NoError(t, err)
	assert.False(t, request.ID().IsZero())
	assert.True(t, request.Sender().Equals(sender))
	assert.True(t, request.Recipient().Equals(recipient))
	assert.Equal(t, entities.RequestStatusPending, request.Status())
	assert.True(t, request.IsPending())
}

func TestNewConnectionRequest_SelfTargetRejected(t *testing.T) {
	id := valueobjects.NewAccountID()

	_, err := entities.NewConnectionRequest(id, id)

	assert.True(t, pkgerrors.IsValidation(err))
}

func TestNewConnectionRequest_ZeroPartiesRejected(t *testing.T) {
	_, err := entities.NewConnectionRequest(valueobjects.AccountID{}, valueobjects.NewAccountID())
	assert.True(t, pkgerrors.IsValidation(err))

	_, err = entities.NewConnectionRequest(valueobjects.NewAccountID(), valueobjects.AccountID{})
	assert.True(t, pkgerrors.IsValidation(err))
}

func TestConnectionRequest_AcceptByRecipient(t *testing.T) {
	request := fixtures.NewRequestBuilder().MustBuild(t)

	err := request.Accept(request.Recipient())

	require.NoError(t, err)
	assert.Equal(t, entities.RequestStatusAccepted, request.Status())
	assert.False(t, request.IsPending())
}

func TestConnectionRequest_AcceptBySenderForbidden(t *testing.T) {
	request := fixtures.NewRequestBuilder().MustBuild(t)

	err := request.Accept(request.Sender())

	assert.True(t, pkgerrors.IsForbidden(err))
	assert.Equal(t, entities.RequestStatusPending, request.Status())
}

func TestConnectionRequest_TerminalStatesCannotTransition(t *testing.T) {
	tests := []struct {
		name    string
		builder *fixtures.RequestBuilder
	}{
		{"accepted", fixtures.NewRequestBuilder().Accepted()},
		{"rejected", fixtures.NewRequestBuilder().Rejected()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := tt.builder.MustBuild(t)

			assert.True(t, pkgerrors.IsConflict(request.Accept(request.Recipient())))
			assert.True(t, pkgerrors.IsConflict(request.Reject(request.Recipient())))
		})
	}
}

func TestConnectionRequest_RejectByRecipient(t *testing.T) {
	request := fixtures.NewRequestBuilder().MustBuild(t)

	err := request.Reject(request.Recipient())

	require.NoError(t, err)
	assert.Equal(t, entities.RequestStatusRejected, request.Status())
}

func TestConnectionRequest_Involves(t *testing.T) {
	request := fixtures.NewRequestBuilder().MustBuild(t)
	stranger := valueobjects.NewAccountID()

	assert.True(t, request.Involves(request.Sender(), request.Recipient()))
	assert.True(t, request.Involves(request.Recipient(), request.Sender()))
	assert.False(t, request.Involves(request.Sender(), stranger))
}

func TestPairKey_OrderIndependent(t *testing.T) {
	a := valueobjects.NewAccountID()
	b := valueobjects.NewAccountID()

	assert.Equal(t, entities.PairKey(a, b), entities.PairKey(b, a))
	assert.NotEqual(t, entities.PairKey(a, b), entities.PairKey(a, valueobjects.NewAccountID()))
}

func TestReconstructConnectionRequest_RejectsUnknownStatus(t *testing.T) {
	_, err := fixtures.NewRequestBuilder().WithStatus(entities.RequestStatus("ghosted")).Build()

	assert.True(t, pkgerrors.IsValidation(err))
}
