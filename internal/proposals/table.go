package proposals

import (
	"multisig-vault/internal/blockchain/multisigfamily"
	"multisig-vault/internal/model"
	"multisig-vault/internal/state"

	"github.com/pkg/errors"
)

// Table is the proposal storage; only the Manager writes to it, everyone else
// gets it as a read-only signatures.ProposalReader
type Table struct {
	state state.State
}

func NewTable(st state.State) Table {
	return Table{state: st}
}

func (t Table) GetProposal(proposalID uint64) (model.Proposal, error) {
	if proposalID == 0 {
		return model.Proposal{}, errors.Wrap(model.ErrProposalNotFound, "proposal 0")
	}

	var proposal model.Proposal
	found, err := state.Load(t.state, multisigfamily.GetProposalAddress(proposalID), &proposal)
	if err != nil {
		return model.Proposal{}, err
	}
	if !found {
		return model.Proposal{}, errors.Wrapf(model.ErrProposalNotFound, "proposal %d", proposalID)
	}

	return proposal, nil
}

// LastID returns the most recently allocated proposal ID, 0 if there is none yet
func (t Table) LastID() (uint64, error) {
	var seq multisigfamily.Sequence
	if _, err := state.Load(t.state, multisigfamily.GetSequenceAddress(), &seq); err != nil {
		return 0, err
	}
	return seq.Last, nil
}

func (t Table) nextID() (uint64, error) {
	last, err := t.LastID()
	if err != nil {
		return 0, err
	}

	next := last + 1
	if err := state.Save(t.state, multisigfamily.GetSequenceAddress(), multisigfamily.Sequence{Last: next}); err != nil {
		return 0, err
	}
	return next, nil
}

func (t Table) save(proposal model.Proposal) error {
	return state.Save(t.state, multisigfamily.GetProposalAddress(proposal.ID), proposal)
}
