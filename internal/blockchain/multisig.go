package blockchain

import (
	"context"
	"multisig-vault/internal/blockchain/multisigfamily"
	"multisig-vault/internal/blockchain/settingsfamily"
	"multisig-vault/internal/model"
	"multisig-vault/internal/treasury"

	"github.com/hyperledger/sawtooth-sdk-go/signing"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Addresses returns the state the processor reads and writes for the payload;
// the deployment settings are read by every action
func Addresses(payload multisigfamily.Payload) (inputs, outputs []string) {
	inputs = []string{
		settingsfamily.GetAddress(settingsfamily.OwnerSetting),
		settingsfamily.GetAddress(settingsfamily.ThresholdSetting),
		settingsfamily.GetAddress(settingsfamily.PolicySetting),
		multisigfamily.GetSignersAddress(),
	}

	switch payload.Action {
	case multisigfamily.ActionAddSigner, multisigfamily.ActionRemoveSigner:
		outputs = []string{multisigfamily.GetSignersAddress()}
	case multisigfamily.ActionCreateProposal:
		// the ID is allocated by the processor
		outputs = []string{multisigfamily.GetSequenceAddress(), multisigfamily.GetProposalAddress(0)}
	case multisigfamily.ActionAddSignature:
		outputs = []string{
			multisigfamily.GetProposalAddress(payload.ProposalID),
			multisigfamily.GetSignaturesAddress(payload.ProposalID),
		}
	case multisigfamily.ActionExecute:
		outputs = []string{
			multisigfamily.GetProposalAddress(payload.ProposalID),
			multisigfamily.GetSignaturesAddress(payload.ProposalID),
			multisigfamily.GetAccountPrefix(),
		}
	case multisigfamily.ActionDeposit:
		outputs = []string{multisigfamily.GetAccountAddress(treasury.VaultAccount.String())}
	}

	return append(inputs, outputs...), outputs
}

func (c Client) submitAction(ctx context.Context, payload multisigfamily.Payload, signer *signing.Signer) (batchID string, err error) {
	inputs, outputs := Addresses(payload)
	transaction, err := NewTransaction(payload, signer, inputs, outputs)
	if err != nil {
		return "", errors.Wrapf(err, "failed to create a %s transaction", payload.Action)
	}

	c.logger.Debug("submitting", zap.String("action", string(payload.Action)), zap.String("transactionID", transaction.HeaderSignature))
	return c.Submit(ctx, signer, transaction)
}

func (c Client) AddSigner(ctx context.Context, signer model.Identity, owner *signing.Signer) (string, error) {
	return c.submitAction(ctx, multisigfamily.Payload{
		Action: multisigfamily.ActionAddSigner,
		Signer: signer.String(),
	}, owner)
}

func (c Client) RemoveSigner(ctx context.Context, signer model.Identity, owner *signing.Signer) (string, error) {
	return c.submitAction(ctx, multisigfamily.Payload{
		Action: multisigfamily.ActionRemoveSigner,
		Signer: signer.String(),
	}, owner)
}

// CreateProposal submits a proposal; its ID is known from the proposal-created
// event or from LastProposalID once the batch is committed
func (c Client) CreateProposal(ctx context.Context, recipient model.Identity, amount int64, proposer *signing.Signer) (string, error) {
	return c.submitAction(ctx, multisigfamily.Payload{
		Action:    multisigfamily.ActionCreateProposal,
		Recipient: recipient.String(),
		Amount:    amount,
	}, proposer)
}

func (c Client) AddSignature(ctx context.Context, proposalID uint64, signer *signing.Signer) (string, error) {
	return c.submitAction(ctx, multisigfamily.Payload{
		Action:     multisigfamily.ActionAddSignature,
		ProposalID: proposalID,
	}, signer)
}

func (c Client) Execute(ctx context.Context, proposalID uint64, caller *signing.Signer) (string, error) {
	return c.submitAction(ctx, multisigfamily.Payload{
		Action:     multisigfamily.ActionExecute,
		ProposalID: proposalID,
	}, caller)
}

func (c Client) Deposit(ctx context.Context, amount int64, owner *signing.Signer) (string, error) {
	return c.submitAction(ctx, multisigfamily.Payload{
		Action: multisigfamily.ActionDeposit,
		Amount: amount,
	}, owner)
}
