package signatures

import (
	"multisig-vault/internal/blockchain/multisigfamily"
	"multisig-vault/internal/model"
	"multisig-vault/internal/state"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// SignerChecker answers whether an identity is currently an authorized signer
type SignerChecker interface {
	IsAuthorizedSigner(signer model.Identity) bool
}

// ProposalReader gives the ledger query access to the proposal records
type ProposalReader interface {
	GetProposal(proposalID uint64) (model.Proposal, error)
}

func contains(data multisigfamily.SignatureData, signer model.Identity) bool {
	for _, s := range data.Signers {
		if s == string(signer) {
			return true
		}
	}
	return false
}

// Ledger owns the signature records of every proposal
type Ledger struct {
	signers   SignerChecker
	proposals ProposalReader
	policy    model.ValidityPolicy
	state     state.State
	logger    *zap.Logger
}

func NewLedger(logger *zap.Logger, st state.State, signers SignerChecker, proposals ProposalReader, policy model.ValidityPolicy) Ledger {
	if !policy.IsValid() {
		policy = model.ValidityLive
	}

	return Ledger{
		signers:   signers,
		proposals: proposals,
		policy:    policy,
		state:     st,
		logger:    logger,
	}
}

func (l Ledger) Policy() model.ValidityPolicy {
	return l.policy
}

// AddSignature records the endorsement of proposalID by caller
func (l Ledger) AddSignature(caller model.Identity, proposalID uint64) error {
	if !l.signers.IsAuthorizedSigner(caller) {
		return errors.Wrapf(model.ErrNotAuthorizedSigner, "sign proposal %d: caller %q", proposalID, caller)
	}

	proposal, err := l.proposals.GetProposal(proposalID)
	if err != nil {
		return err
	}
	if proposal.Executed {
		return errors.Wrapf(model.ErrAlreadyExecuted, "sign proposal %d", proposalID)
	}

	data, err := l.load(proposalID)
	if err != nil {
		return err
	}
	if contains(data, caller) {
		return errors.Wrapf(model.ErrDuplicateSignature, "sign proposal %d: signer %s", proposalID, caller)
	}

	data.Signers = append(data.Signers, string(caller))
	if err := state.Save(l.state, multisigfamily.GetSignaturesAddress(proposalID), data); err != nil {
		return err
	}

	l.logger.Info("signature added", zap.Uint64("proposalID", proposalID), zap.String("signer", caller.String()), zap.Int("signatures", len(data.Signers)))
	return nil
}

// VerifySignatures returns the number of valid signatures of an existing
// proposal; a count below the quorum, zero included, is not an error
func (l Ledger) VerifySignatures(proposalID uint64) (int, error) {
	if _, err := l.proposals.GetProposal(proposalID); err != nil {
		return 0, err
	}

	data, err := l.load(proposalID)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, signer := range data.Signers {
		if l.counts(model.Identity(signer)) {
			count++
		}
	}

	return count, nil
}

func (l Ledger) IsValidSignature(signer model.Identity, proposalID uint64) bool {
	data, err := l.load(proposalID)
	if err != nil {
		l.logger.Error("checking signature failed: "+err.Error(), zap.Uint64("proposalID", proposalID), zap.String("signer", signer.String()))
		return false
	}

	return contains(data, signer) && l.counts(signer)
}

// Signers lists everyone who signed the proposal, valid or not
func (l Ledger) Signers(proposalID uint64) ([]model.Identity, error) {
	if _, err := l.proposals.GetProposal(proposalID); err != nil {
		return nil, err
	}

	data, err := l.load(proposalID)
	if err != nil {
		return nil, err
	}
	return model.Identities(data.Signers), nil
}

// counts applies the validity policy to a recorded signature
func (l Ledger) counts(signer model.Identity) bool {
	if l.policy == model.ValidityAtSigning {
		return true
	}
	return l.signers.IsAuthorizedSigner(signer)
}

func (l Ledger) load(proposalID uint64) (multisigfamily.SignatureData, error) {
	data := multisigfamily.SignatureData{ProposalID: proposalID}
	if _, err := state.Load(l.state, multisigfamily.GetSignaturesAddress(proposalID), &data); err != nil {
		return multisigfamily.SignatureData{}, err
	}
	return data, nil
}
