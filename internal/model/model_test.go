package model_test

import (
	"multisig-vault/internal/model"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentityValid(t *testing.T) {
	valid := []model.Identity{
		"ST2CY5V39NHDPWSXMW9QDT3HC3GD6Q6XX4CFRK9AG",
		"02a1633cafcc01ebfb6d78e39f687a1f0995c62fc95f51ead10a02ee0be551b5dc",
		"alice.vault",
		"a",
	}
	for _, id := range valid {
		assert.True(t, id.Valid(), id)
	}

	invalid := []model.Identity{"", " ST1", "-leading", "with space", "tab\t", model.Identity(make([]byte, 129))}
	for _, id := range invalid {
		assert.False(t, id.Valid(), id)
	}
}

func TestProposalValidate(t *testing.T) {
	proposal := model.Proposal{Recipient: "ST2CY5V39NHDPWSXMW9QDT3HC3GD6Q6XX4CFRK9AG", Amount: 1000}
	assert.NoError(t, proposal.Validate())

	proposal.Amount = 0
	assert.True(t, errors.Is(proposal.Validate(), model.ErrInvalidAmount))

	proposal.Amount = 1
	proposal.Recipient = ""
	assert.True(t, errors.Is(proposal.Validate(), model.ErrInvalidRecipient))
}

func TestQuorum(t *testing.T) {
	q, err := model.ParseQuorum("2")
	require.NoError(t, err)
	assert.Equal(t, model.FixedQuorum(2), q)
	assert.Equal(t, 2, q.Required(10))
	assert.Equal(t, "2", q.String())

	q, err = model.ParseQuorum(" Majority ")
	require.NoError(t, err)
	assert.True(t, q.Majority)
	assert.Equal(t, 1, q.Required(0))
	assert.Equal(t, 2, q.Required(3))
	assert.Equal(t, 3, q.Required(4))

	_, err = model.ParseQuorum("0")
	assert.True(t, errors.Is(err, model.ErrInvalidQuorum))
	_, err = model.ParseQuorum("two")
	assert.True(t, errors.Is(err, model.ErrInvalidQuorum))
}

func TestCodeOf(t *testing.T) {
	err := errors.Wrapf(model.ErrProposalNotFound, "proposal %d", 7)
	code, ok := model.CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, model.CodeProposalNotFound, code)
	assert.Equal(t, "proposal 7: proposal not found", err.Error())

	_, ok = model.CodeOf(errors.New("plain"))
	assert.False(t, ok)

	assert.True(t, model.IsAuthorizationErr(model.ErrUnauthorized))
	assert.False(t, model.IsAuthorizationErr(model.ErrQuorumNotMet))
}

func TestWithCause(t *testing.T) {
	err := errors.Wrap(model.WithCause(model.ErrTransferFailed, model.ErrInsufficientFunds), "execute proposal 1")

	assert.True(t, errors.Is(err, model.ErrTransferFailed))
	assert.True(t, errors.Is(err, model.ErrInsufficientFunds))
	code, ok := model.CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, model.CodeTransferFailed, code)
	assert.Equal(t, "execute proposal 1: transfer failed: insufficient funds", err.Error())
}

func TestErrorByCode(t *testing.T) {
	e, ok := model.ErrorByCode(model.CodeQuorumNotMet)
	require.True(t, ok)
	assert.Same(t, model.ErrQuorumNotMet, e)

	_, ok = model.ErrorByCode(99)
	assert.False(t, ok)
}
