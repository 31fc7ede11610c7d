package proposals_test

import (
	"context"
	"multisig-vault/internal/blockchain/multisigfamily"
	"multisig-vault/internal/model"
	"multisig-vault/internal/proposals"
	"multisig-vault/internal/state"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	proposer  = model.Identity("ST1PQHQKV0RJXZFY1DGX8MNSNYVE3VGZJSRTPGZGM")
	recipient = model.Identity("ST2CY5V39NHDPWSXMW9QDT3HC3GD6Q6XX4CFRK9AG")
)

type fakeTally map[uint64]int

func (f fakeTally) VerifySignatures(proposalID uint64) (int, error) {
	return f[proposalID], nil
}

type fakeCounter int

func (f fakeCounter) Count() (int, error) {
	return int(f), nil
}

type transfer struct {
	recipient model.Identity
	amount    uint64
}

type fakeExecutor struct {
	err       error
	transfers []transfer
}

func (f *fakeExecutor) Transfer(ctx context.Context, recipient model.Identity, amount uint64) error {
	if f.err != nil {
		return f.err
	}
	f.transfers = append(f.transfers, transfer{recipient, amount})
	return nil
}

func newTestManager(quorum model.Quorum) (proposals.Manager, fakeTally, *fakeExecutor, *state.Memory) {
	st := state.NewMemory()
	tally := fakeTally{}
	executor := &fakeExecutor{}
	m := proposals.NewManager(zap.NewNop(), proposals.NewTable(st), tally, fakeCounter(3), executor, quorum)
	return m, tally, executor, st
}

func TestCreateProposal(t *testing.T) {
	m, _, _, _ := newTestManager(model.FixedQuorum(2))

	id, err := m.CreateProposal(proposer, recipient, 1000)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), id)

	proposal, err := m.GetProposal(1)
	require.NoError(t, err)
	assert.Equal(t, model.Proposal{ID: 1, Proposer: proposer, Recipient: recipient, Amount: 1000}, proposal)

	id, err = m.CreateProposal(recipient, proposer, 5)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), id)
}

func TestCreateProposalInvalid(t *testing.T) {
	m, _, _, st := newTestManager(model.FixedQuorum(2))

	_, err := m.CreateProposal(proposer, recipient, 0)
	assert.True(t, errors.Is(err, model.ErrInvalidAmount))

	_, err = m.CreateProposal(proposer, "bad recipient", 10)
	assert.True(t, errors.Is(err, model.ErrInvalidRecipient))

	// no ID was burnt
	assert.Equal(t, 0, st.Len())
	id, err := m.CreateProposal(proposer, recipient, 10)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), id)
}

func TestGetProposalNotFound(t *testing.T) {
	m, _, _, _ := newTestManager(model.FixedQuorum(2))
	_, err := m.GetProposal(1)
	assert.True(t, errors.Is(err, model.ErrProposalNotFound))
	_, err = m.GetProposal(0)
	assert.True(t, errors.Is(err, model.ErrProposalNotFound))
}

func TestExecute(t *testing.T) {
	m, tally, executor, _ := newTestManager(model.FixedQuorum(2))
	id, err := m.CreateProposal(proposer, recipient, 1000)
	require.NoError(t, err)

	tally[id] = 1
	_, err = m.Execute(context.Background(), proposer, id)
	assert.True(t, errors.Is(err, model.ErrQuorumNotMet))
	assert.Empty(t, executor.transfers)

	tally[id] = 2
	executed, err := m.Execute(context.Background(), proposer, id)
	require.NoError(t, err)
	assert.True(t, executed.Executed)
	assert.Equal(t, []transfer{{recipient, 1000}}, executor.transfers)

	_, err = m.Execute(context.Background(), proposer, id)
	assert.True(t, errors.Is(err, model.ErrAlreadyExecuted))
	assert.Len(t, executor.transfers, 1)

	proposal, err := m.GetProposal(id)
	require.NoError(t, err)
	assert.Equal(t, model.Proposal{ID: id, Proposer: proposer, Recipient: recipient, Amount: 1000, Executed: true}, proposal)
}

func TestExecuteNotFound(t *testing.T) {
	m, _, _, _ := newTestManager(model.FixedQuorum(1))
	_, err := m.Execute(context.Background(), proposer, 3)
	assert.True(t, errors.Is(err, model.ErrProposalNotFound))
}

func TestExecuteTransferFailure(t *testing.T) {
	m, tally, executor, _ := newTestManager(model.FixedQuorum(1))
	id, err := m.CreateProposal(proposer, recipient, 1000)
	require.NoError(t, err)
	tally[id] = 1

	executor.err = model.ErrInsufficientFunds
	_, err = m.Execute(context.Background(), proposer, id)
	assert.True(t, errors.Is(err, model.ErrTransferFailed))
	assert.True(t, errors.Is(err, model.ErrInsufficientFunds))

	proposal, err := m.GetProposal(id)
	require.NoError(t, err)
	assert.False(t, proposal.Executed)

	// retrying after the failure is safe
	executor.err = nil
	_, err = m.Execute(context.Background(), recipient, id)
	require.NoError(t, err)
	assert.Len(t, executor.transfers, 1)
}

func TestMajorityQuorum(t *testing.T) {
	m, tally, _, _ := newTestManager(model.MajorityQuorum())
	required, err := m.Required()
	require.NoError(t, err)
	assert.Equal(t, 2, required)
	assert.True(t, m.Quorum().Majority)

	id, err := m.CreateProposal(proposer, recipient, 1)
	require.NoError(t, err)
	tally[id] = 1
	_, err = m.Execute(context.Background(), proposer, id)
	assert.True(t, errors.Is(err, model.ErrQuorumNotMet))

	tally[id] = 2
	_, err = m.Execute(context.Background(), proposer, id)
	assert.NoError(t, err)
}

func TestTableLastID(t *testing.T) {
	st := state.NewMemory()
	table := proposals.NewTable(st)
	last, err := table.LastID()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), last)

	require.NoError(t, st.Set(multisigfamily.GetProposalAddress(1), []byte{0xff}))
	_, err = table.GetProposal(1)
	assert.Error(t, err)
	assert.False(t, errors.Is(err, model.ErrProposalNotFound))
}
