package app

import (
	"context"
	"multisig-vault/internal/blockchain/multisigfamily"
	"multisig-vault/internal/model"

	"github.com/fxamacker/cbor"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// EventHandler consumes the data of one family event
type EventHandler func(data []byte) error

// EventHandlers maps the family event types to the read model updates
func (a App) EventHandlers() map[string]EventHandler {
	return map[string]EventHandler{
		multisigfamily.EventProposalCreated: a.handleProposalCreated,
		multisigfamily.EventSignatureAdded:  a.handleSignatureAdded,
		multisigfamily.EventExecuted:        a.handleExecuted,
		multisigfamily.EventSignerAdded:     a.logEvent(multisigfamily.EventSignerAdded),
		multisigfamily.EventSignerRemoved:   a.logEvent(multisigfamily.EventSignerRemoved),
		multisigfamily.EventDeposit:         a.logEvent(multisigfamily.EventDeposit),
	}
}

func decodeEvent(data []byte) (multisigfamily.EventData, error) {
	var eventData multisigfamily.EventData
	if err := cbor.Unmarshal(data, &eventData); err != nil {
		return multisigfamily.EventData{}, errors.Wrap(err, "failed to decode the event data")
	}
	return eventData, nil
}

func (a App) handleProposalCreated(data []byte) error {
	eventData, err := decodeEvent(data)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	a.logger.Info("proposal created", zap.Uint64("proposalID", eventData.ProposalID), zap.String("recipient", eventData.Recipient))
	return a.db.InsertProposal(ctx, model.Proposal{
		ID:        eventData.ProposalID,
		Proposer:  model.Identity(eventData.Proposer),
		Recipient: model.Identity(eventData.Recipient),
		Amount:    eventData.Amount,
	})
}

func (a App) handleSignatureAdded(data []byte) error {
	eventData, err := decodeEvent(data)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	a.logger.Info("proposal signed", zap.Uint64("proposalID", eventData.ProposalID), zap.String("signer", eventData.Signer), zap.Int("signatures", eventData.Signatures))
	return a.db.AddSignature(ctx, eventData.ProposalID, model.Identity(eventData.Signer))
}

func (a App) handleExecuted(data []byte) error {
	eventData, err := decodeEvent(data)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	a.logger.Info("proposal executed", zap.Uint64("proposalID", eventData.ProposalID), zap.Uint64("amount", eventData.Amount))
	return a.db.MarkExecuted(ctx, eventData.ProposalID)
}

func (a App) logEvent(eventType string) EventHandler {
	return func(data []byte) error {
		eventData, err := decodeEvent(data)
		if err != nil {
			return err
		}
		a.logger.Info(eventType, zap.String("signer", eventData.Signer), zap.Uint64("amount", eventData.Amount))
		return nil
	}
}
