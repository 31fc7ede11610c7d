package proposals

import (
	"context"
	"multisig-vault/internal/model"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Executor moves value out of the vault. A failed transfer must leave balances
// untouched so that the proposal can be executed again later.
type Executor interface {
	Transfer(ctx context.Context, recipient model.Identity, amount uint64) error
}

type SignatureTally interface {
	VerifySignatures(proposalID uint64) (int, error)
}

type SignerCounter interface {
	Count() (int, error)
}

// Manager owns the proposal records and their lifecycle: Created, then Executed once
type Manager struct {
	table    Table
	tally    SignatureTally
	signers  SignerCounter
	executor Executor
	quorum   model.Quorum
	logger   *zap.Logger
}

func NewManager(logger *zap.Logger, table Table, tally SignatureTally, signers SignerCounter, executor Executor, quorum model.Quorum) Manager {
	return Manager{
		table:    table,
		tally:    tally,
		signers:  signers,
		executor: executor,
		quorum:   quorum,
		logger:   logger,
	}
}

// CreateProposal stores a new unexecuted proposal and returns its ID. Proposing
// is open to anyone and does not count as signing.
func (m Manager) CreateProposal(caller, recipient model.Identity, amount uint64) (uint64, error) {
	proposal := model.Proposal{
		Proposer:  caller,
		Recipient: recipient,
		Amount:    amount,
	}
	if err := proposal.Validate(); err != nil {
		return 0, errors.Wrap(err, "create proposal")
	}

	id, err := m.table.nextID()
	if err != nil {
		return 0, err
	}
	proposal.ID = id

	if err := m.table.save(proposal); err != nil {
		return 0, err
	}

	m.logger.Info("proposal created", zap.Uint64("proposalID", id), zap.String("proposer", caller.String()), zap.String("recipient", recipient.String()), zap.Uint64("amount", amount))
	return id, nil
}

func (m Manager) GetProposal(proposalID uint64) (model.Proposal, error) {
	return m.table.GetProposal(proposalID)
}

// Required returns the number of valid signatures a proposal needs right now
func (m Manager) Required() (int, error) {
	if !m.quorum.Majority {
		return m.quorum.Required(0), nil
	}

	count, err := m.signers.Count()
	if err != nil {
		return 0, err
	}
	return m.quorum.Required(count), nil
}

func (m Manager) Quorum() model.Quorum {
	return m.quorum
}

// Execute transfers the proposal amount once the quorum is met. The proposal
// is marked executed only after the executor reported success.
func (m Manager) Execute(ctx context.Context, caller model.Identity, proposalID uint64) (model.Proposal, error) {
	proposal, err := m.table.GetProposal(proposalID)
	if err != nil {
		return model.Proposal{}, err
	}
	if proposal.Executed {
		return model.Proposal{}, errors.Wrapf(model.ErrAlreadyExecuted, "execute proposal %d", proposalID)
	}

	count, err := m.tally.VerifySignatures(proposalID)
	if err != nil {
		return model.Proposal{}, err
	}
	required, err := m.Required()
	if err != nil {
		return model.Proposal{}, err
	}
	if count < required {
		return model.Proposal{}, errors.Wrapf(model.ErrQuorumNotMet, "execute proposal %d: %d of %d signatures", proposalID, count, required)
	}

	if err := m.executor.Transfer(ctx, proposal.Recipient, proposal.Amount); err != nil {
		m.logger.Warn("transfer failed, proposal stays unexecuted: "+err.Error(), zap.Uint64("proposalID", proposalID))
		return model.Proposal{}, errors.Wrapf(model.WithCause(model.ErrTransferFailed, err), "execute proposal %d", proposalID)
	}

	proposal.Executed = true
	if err := m.table.save(proposal); err != nil {
		return model.Proposal{}, err
	}

	m.logger.Info("proposal executed", zap.Uint64("proposalID", proposalID), zap.String("caller", caller.String()), zap.Int("signatures", count))
	return proposal, nil
}
