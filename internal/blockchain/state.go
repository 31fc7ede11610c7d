package blockchain

import (
	"context"
	"encoding/base64"
	"fmt"
	"multisig-vault/internal/blockchain/multisigfamily"
	"multisig-vault/internal/model"

	"github.com/fxamacker/cbor"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type stateResponse struct {
	Data string `yaml:"data"`
}

// unmarshalStatePayload decodes the cbor record out of a REST API state response
func unmarshalStatePayload(v interface{}, response []byte) error {
	var payload stateResponse
	if err := yaml.Unmarshal(response, &payload); err != nil {
		return errors.Wrap(err, "error reading response")
	}

	data, err := base64.StdEncoding.DecodeString(payload.Data)
	if err != nil {
		return errors.Wrap(err, "failed to decode the state data")
	}

	return cbor.Unmarshal(data, v)
}

// getState reads the record at address, found is false if there is none
func (c Client) getState(ctx context.Context, address string, v interface{}) (found bool, err error) {
	response, err := c.sendRequest(ctx, fmt.Sprintf("%s/%s", stateAPI, address), nil, "")
	if errors.Is(err, errNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if err := unmarshalStatePayload(v, response); err != nil {
		return false, errors.Wrapf(err, "failed to unmarshal the state at %s", address)
	}
	return true, nil
}

func (c Client) GetProposal(ctx context.Context, proposalID uint64) (model.Proposal, error) {
	if proposalID == 0 {
		return model.Proposal{}, model.ErrProposalNotFound
	}

	var proposal model.Proposal
	found, err := c.getState(ctx, multisigfamily.GetProposalAddress(proposalID), &proposal)
	if err != nil {
		return model.Proposal{}, err
	}
	if !found {
		return model.Proposal{}, errors.Wrapf(model.ErrProposalNotFound, "proposal %d", proposalID)
	}
	return proposal, nil
}

// LastProposalID is the most recently allocated proposal ID, 0 if none
func (c Client) LastProposalID(ctx context.Context) (uint64, error) {
	var seq multisigfamily.Sequence
	if _, err := c.getState(ctx, multisigfamily.GetSequenceAddress(), &seq); err != nil {
		return 0, err
	}
	return seq.Last, nil
}

func (c Client) GetSigners(ctx context.Context) ([]model.Identity, error) {
	var set multisigfamily.SignerSet
	if _, err := c.getState(ctx, multisigfamily.GetSignersAddress(), &set); err != nil {
		return nil, err
	}
	return model.Identities(set.Signers), nil
}

func (c Client) IsAuthorizedSigner(ctx context.Context, signer model.Identity) (bool, error) {
	signers, err := c.GetSigners(ctx)
	if err != nil {
		return false, err
	}
	for _, s := range signers {
		if s == signer {
			return true, nil
		}
	}
	return false, nil
}

// GetSignatures lists the recorded signers of the proposal in signing order
func (c Client) GetSignatures(ctx context.Context, proposalID uint64) ([]model.Identity, error) {
	var data multisigfamily.SignatureData
	if _, err := c.getState(ctx, multisigfamily.GetSignaturesAddress(proposalID), &data); err != nil {
		return nil, err
	}
	return model.Identities(data.Signers), nil
}

func (c Client) Balance(ctx context.Context, account model.Identity) (uint64, error) {
	var acc multisigfamily.Account
	if _, err := c.getState(ctx, multisigfamily.GetAccountAddress(account.String()), &acc); err != nil {
		return 0, err
	}
	return acc.Balance, nil
}
