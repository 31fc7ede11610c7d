package treasury

import (
	"context"
	"math"
	"multisig-vault/internal/blockchain/multisigfamily"
	"multisig-vault/internal/model"
	"multisig-vault/internal/state"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// VaultAccount holds the funds that executed proposals pay out
const VaultAccount model.Identity = "vault"

// Treasury keeps account balances in the family state. It stands in for the
// surrounding ledger's transfer primitive.
type Treasury struct {
	owner  model.Identity
	state  state.State
	logger *zap.Logger
}

func NewTreasury(logger *zap.Logger, st state.State, owner model.Identity) Treasury {
	return Treasury{
		owner:  owner,
		state:  st,
		logger: logger,
	}
}

func (t Treasury) Balance(acc model.Identity) (uint64, error) {
	var a multisigfamily.Account
	if _, err := state.Load(t.state, multisigfamily.GetAccountAddress(acc.String()), &a); err != nil {
		return 0, err
	}
	return a.Balance, nil
}

// Deposit funds the vault; only the owner can do it
func (t Treasury) Deposit(caller model.Identity, amount uint64) error {
	if !caller.Valid() || caller != t.owner {
		return errors.Wrapf(model.ErrUnauthorized, "deposit: caller %q is not the owner", caller)
	}
	if amount == 0 {
		return errors.Wrap(model.ErrInvalidAmount, "deposit")
	}

	balance, err := t.Balance(VaultAccount)
	if err != nil {
		return err
	}
	if balance > math.MaxUint64-amount {
		return errors.Wrap(model.ErrInvalidAmount, "deposit: vault balance overflow")
	}

	if err := t.setBalance(VaultAccount, balance+amount); err != nil {
		return err
	}

	t.logger.Info("vault funded", zap.Uint64("amount", amount), zap.Uint64("balance", balance+amount))
	return nil
}

// Transfer moves amount from the vault to recipient, nothing is written when it fails
func (t Treasury) Transfer(ctx context.Context, recipient model.Identity, amount uint64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if recipient == VaultAccount {
		return nil
	}

	vault, err := t.Balance(VaultAccount)
	if err != nil {
		return err
	}
	if vault < amount {
		return errors.Wrapf(model.ErrInsufficientFunds, "vault holds %d, transfer needs %d", vault, amount)
	}

	balance, err := t.Balance(recipient)
	if err != nil {
		return err
	}
	if balance > math.MaxUint64-amount {
		return errors.Wrapf(model.ErrInvalidAmount, "balance of %s would overflow", recipient)
	}

	if err := t.setBalance(VaultAccount, vault-amount); err != nil {
		return err
	}
	if err := t.setBalance(recipient, balance+amount); err != nil {
		return err
	}

	t.logger.Debug("transfer done", zap.String("recipient", recipient.String()), zap.Uint64("amount", amount))
	return nil
}

func (t Treasury) setBalance(acc model.Identity, balance uint64) error {
	return state.Save(t.state, multisigfamily.GetAccountAddress(acc.String()), multisigfamily.Account{Balance: balance})
}
