package multisig

import (
	"context"
	"multisig-vault/internal/model"
	"multisig-vault/internal/proposals"
	"multisig-vault/internal/registry"
	"multisig-vault/internal/signatures"
	"multisig-vault/internal/state"
	"multisig-vault/internal/treasury"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Engine is one deployed multisig vault. Every operation runs to completion
// under the engine lock against a write overlay that is committed only when the
// operation succeeds.
type Engine struct {
	mu       sync.Mutex
	state    state.State
	executor proposals.Executor
	config   Config
	logger   *zap.Logger
}

type components struct {
	registry registry.Registry
	ledger   signatures.Ledger
	manager  proposals.Manager
	treasury treasury.Treasury
}

// New creates the engine over st. A nil executor pays proposals out of the
// vault kept in the same state.
func New(logger *zap.Logger, st state.State, config Config, executor proposals.Executor) (*Engine, error) {
	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid multisig config")
	}

	return &Engine{
		state:    st,
		executor: executor,
		config:   config,
		logger:   logger,
	}, nil
}

func (e *Engine) Config() Config {
	return e.config
}

func (e *Engine) build(st state.State) components {
	reg := registry.NewRegistry(e.logger.Named("registry"), st, e.config.Owner)
	table := proposals.NewTable(st)
	ledger := signatures.NewLedger(e.logger.Named("signatures"), st, reg, table, e.config.Policy)
	vault := treasury.NewTreasury(e.logger.Named("treasury"), st, e.config.Owner)

	var executor proposals.Executor = vault
	if e.executor != nil {
		executor = e.executor
	}

	return components{
		registry: reg,
		ledger:   ledger,
		manager:  proposals.NewManager(e.logger.Named("proposals"), table, ledger, reg, executor, e.config.Quorum),
		treasury: vault,
	}
}

func (e *Engine) update(op func(c components) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	overlay := state.NewOverlay(e.state)
	if err := op(e.build(overlay)); err != nil {
		return err
	}
	return overlay.Commit()
}

func (e *Engine) view(op func(c components)) {
	e.mu.Lock()
	defer e.mu.Unlock()

	op(e.build(e.state))
}

func (e *Engine) AddSigner(caller, signer model.Identity) error {
	return e.update(func(c components) error {
		return c.registry.AddSigner(caller, signer)
	})
}

func (e *Engine) RemoveSigner(caller, signer model.Identity) error {
	return e.update(func(c components) error {
		return c.registry.RemoveSigner(caller, signer)
	})
}

func (e *Engine) IsAuthorizedSigner(signer model.Identity) (authorized bool) {
	e.view(func(c components) {
		authorized = c.registry.IsAuthorizedSigner(signer)
	})
	return
}

func (e *Engine) Signers() (signers []model.Identity, err error) {
	e.view(func(c components) {
		signers, err = c.registry.Signers()
	})
	return
}

func (e *Engine) CreateProposal(caller, recipient model.Identity, amount uint64) (id uint64, err error) {
	err = e.update(func(c components) error {
		id, err = c.manager.CreateProposal(caller, recipient, amount)
		return err
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (e *Engine) GetProposal(proposalID uint64) (proposal model.Proposal, err error) {
	e.view(func(c components) {
		proposal, err = c.manager.GetProposal(proposalID)
	})
	return
}

func (e *Engine) AddSignature(caller model.Identity, proposalID uint64) error {
	return e.update(func(c components) error {
		return c.ledger.AddSignature(caller, proposalID)
	})
}

func (e *Engine) VerifySignatures(proposalID uint64) (count int, err error) {
	e.view(func(c components) {
		count, err = c.ledger.VerifySignatures(proposalID)
	})
	return
}

func (e *Engine) IsValidSignature(signer model.Identity, proposalID uint64) (valid bool) {
	e.view(func(c components) {
		valid = c.ledger.IsValidSignature(signer, proposalID)
	})
	return
}

func (e *Engine) SignersOf(proposalID uint64) (signers []model.Identity, err error) {
	e.view(func(c components) {
		signers, err = c.ledger.Signers(proposalID)
	})
	return
}

// Required returns how many valid signatures a proposal needs at the moment
func (e *Engine) Required() (required int, err error) {
	e.view(func(c components) {
		required, err = c.manager.Required()
	})
	return
}

func (e *Engine) Execute(ctx context.Context, caller model.Identity, proposalID uint64) (proposal model.Proposal, err error) {
	err = e.update(func(c components) error {
		proposal, err = c.manager.Execute(ctx, caller, proposalID)
		return err
	})
	if err != nil {
		return model.Proposal{}, err
	}
	return proposal, nil
}

func (e *Engine) Deposit(caller model.Identity, amount uint64) error {
	return e.update(func(c components) error {
		return c.treasury.Deposit(caller, amount)
	})
}

func (e *Engine) Balance(acc model.Identity) (balance uint64, err error) {
	e.view(func(c components) {
		balance, err = c.treasury.Balance(acc)
	})
	return
}
