package registry

import (
	"multisig-vault/internal/blockchain/multisigfamily"
	"multisig-vault/internal/model"
	"multisig-vault/internal/state"
	"sort"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

func index(set multisigfamily.SignerSet, signer model.Identity) (int, bool) {
	i := sort.SearchStrings(set.Signers, string(signer))
	return i, i < len(set.Signers) && set.Signers[i] == string(signer)
}

// Registry owns the set of authorized signers. Only the owner fixed at
// construction may change it.
type Registry struct {
	owner  model.Identity
	state  state.State
	logger *zap.Logger
}

func NewRegistry(logger *zap.Logger, st state.State, owner model.Identity) Registry {
	return Registry{
		owner:  owner,
		state:  st,
		logger: logger,
	}
}

func (r Registry) Owner() model.Identity {
	return r.owner
}

func (r Registry) AddSigner(caller, signer model.Identity) error {
	if err := r.checkOwner(caller); err != nil {
		return errors.Wrap(err, "add signer")
	}
	if !signer.Valid() {
		return errors.Wrapf(model.ErrInvalidSigner, "add signer %q", signer)
	}

	set, err := r.load()
	if err != nil {
		return err
	}

	i, found := index(set, signer)
	if found {
		return errors.Wrapf(model.ErrAlreadySigner, "add signer %s", signer)
	}

	set.Signers = append(set.Signers, "")
	copy(set.Signers[i+1:], set.Signers[i:])
	set.Signers[i] = string(signer)

	if err := state.Save(r.state, multisigfamily.GetSignersAddress(), set); err != nil {
		return err
	}

	r.logger.Info("signer added", zap.String("signer", signer.String()), zap.Int("signers", len(set.Signers)))
	return nil
}

func (r Registry) RemoveSigner(caller, signer model.Identity) error {
	if err := r.checkOwner(caller); err != nil {
		return errors.Wrap(err, "remove signer")
	}

	set, err := r.load()
	if err != nil {
		return err
	}

	i, found := index(set, signer)
	if !found {
		return errors.Wrapf(model.ErrNotSigner, "remove signer %s", signer)
	}

	set.Signers = append(set.Signers[:i], set.Signers[i+1:]...)

	if err := state.Save(r.state, multisigfamily.GetSignersAddress(), set); err != nil {
		return err
	}

	r.logger.Info("signer removed", zap.String("signer", signer.String()), zap.Int("signers", len(set.Signers)))
	return nil
}

// IsAuthorizedSigner never fails; a signer set that can't be read authorizes nobody
func (r Registry) IsAuthorizedSigner(signer model.Identity) bool {
	set, err := r.load()
	if err != nil {
		r.logger.Error("checking signer failed: "+err.Error(), zap.String("signer", signer.String()))
		return false
	}

	_, found := index(set, signer)
	return found
}

func (r Registry) Signers() ([]model.Identity, error) {
	set, err := r.load()
	if err != nil {
		return nil, err
	}
	return model.Identities(set.Signers), nil
}

func (r Registry) Count() (int, error) {
	set, err := r.load()
	if err != nil {
		return 0, err
	}
	return len(set.Signers), nil
}

func (r Registry) checkOwner(caller model.Identity) error {
	if !caller.Valid() || caller != r.owner {
		return errors.Wrapf(model.ErrUnauthorized, "caller %q is not the owner", caller)
	}
	return nil
}

func (r Registry) load() (multisigfamily.SignerSet, error) {
	var set multisigfamily.SignerSet
	if _, err := state.Load(r.state, multisigfamily.GetSignersAddress(), &set); err != nil {
		return multisigfamily.SignerSet{}, err
	}
	return set, nil
}
