package app

import (
	"context"
	"multisig-vault/internal/model"
	"multisig-vault/internal/repository/mongodb"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	handlerTimeout = 10 * time.Second
)

// ReadModel is the projection of the proposals kept in the database
type ReadModel interface {
	InsertProposal(ctx context.Context, proposal model.Proposal) error
	AddSignature(ctx context.Context, proposalID uint64, signer model.Identity) error
	MarkExecuted(ctx context.Context, proposalID uint64) error
	GetProposal(ctx context.Context, proposalID uint64) (mongodb.StoredProposal, error)
	ListProposals(ctx context.Context, executed *bool) ([]mongodb.StoredProposal, error)
}

// Chain reads the family state through the validator REST API
type Chain interface {
	GetProposal(ctx context.Context, proposalID uint64) (model.Proposal, error)
	GetSignatures(ctx context.Context, proposalID uint64) ([]model.Identity, error)
	GetSigners(ctx context.Context) ([]model.Identity, error)
	IsAuthorizedSigner(ctx context.Context, signer model.Identity) (bool, error)
	Balance(ctx context.Context, account model.Identity) (uint64, error)
}

type App struct {
	blkchnClient Chain
	logger       *zap.Logger
	db           ReadModel
}

func NewApp(logger *zap.Logger, db ReadModel, blkchnClient Chain) App {
	return App{
		blkchnClient: blkchnClient,
		logger:       logger,
		db:           db,
	}
}

// ProposalView is a proposal together with the signers recorded for it
type ProposalView struct {
	ProposalID uint64           `json:"id"`
	Proposer   model.Identity   `json:"proposer"`
	Recipient  model.Identity   `json:"recipient"`
	Amount     uint64           `json:"amount"`
	Executed   bool             `json:"executed"`
	Signers    []model.Identity `json:"signers"`
}

func viewOf(stored mongodb.StoredProposal) ProposalView {
	signers := model.Identities(stored.Signers)
	return ProposalView{
		ProposalID: stored.ProposalID,
		Proposer:   model.Identity(stored.Proposer),
		Recipient:  model.Identity(stored.Recipient),
		Amount:     stored.Amount,
		Executed:   stored.Executed,
		Signers:    signers,
	}
}

// GetProposal serves the proposal from the read model, a proposal the indexer
// hasn't seen yet is read from the chain
func (a App) GetProposal(ctx context.Context, proposalID uint64) (ProposalView, error) {
	stored, err := a.db.GetProposal(ctx, proposalID)
	if err == nil {
		return viewOf(stored), nil
	}
	if !errors.Is(err, model.ErrProposalNotFound) {
		return ProposalView{}, err
	}

	a.logger.Debug("proposal not indexed, reading the chain state", zap.Uint64("proposalID", proposalID))
	proposal, err := a.blkchnClient.GetProposal(ctx, proposalID)
	if err != nil {
		return ProposalView{}, err
	}
	signers, err := a.blkchnClient.GetSignatures(ctx, proposalID)
	if err != nil {
		return ProposalView{}, err
	}

	return ProposalView{
		ProposalID: proposal.ID,
		Proposer:   proposal.Proposer,
		Recipient:  proposal.Recipient,
		Amount:     proposal.Amount,
		Executed:   proposal.Executed,
		Signers:    signers,
	}, nil
}

// GetAllProposals lists the indexed proposals, executed nil means all of them
func (a App) GetAllProposals(ctx context.Context, executed *bool) ([]ProposalView, error) {
	stored, err := a.db.ListProposals(ctx, executed)
	if err != nil {
		return nil, err
	}

	views := make([]ProposalView, len(stored))
	for i := range stored {
		views[i] = viewOf(stored[i])
	}
	return views, nil
}

func (a App) GetSigners(ctx context.Context) ([]model.Identity, error) {
	return a.blkchnClient.GetSigners(ctx)
}

func (a App) IsAuthorizedSigner(ctx context.Context, signer model.Identity) (bool, error) {
	if !signer.Valid() {
		return false, errors.Wrapf(model.ErrInvalidSigner, "%q", signer)
	}
	return a.blkchnClient.IsAuthorizedSigner(ctx, signer)
}

func (a App) GetBalance(ctx context.Context, account model.Identity) (uint64, error) {
	if !account.Valid() {
		return 0, errors.Wrapf(model.ErrInvalidRecipient, "%q", account)
	}
	return a.blkchnClient.Balance(ctx, account)
}
