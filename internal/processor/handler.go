package processor

import (
	"context"
	"fmt"
	"multisig-vault/internal/blockchain/multisigfamily"
	"multisig-vault/internal/model"
	"multisig-vault/internal/multisig"
	"multisig-vault/internal/state"
	"strconv"

	"github.com/fxamacker/cbor"
	"github.com/hyperledger/sawtooth-sdk-go/processor"
	"github.com/hyperledger/sawtooth-sdk-go/protobuf/processor_pb2"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// TransactionContext is the part of *processor.Context the handler needs
type TransactionContext interface {
	state.TransactionContext
	AddEvent(eventType string, attributes []processor.Attribute, eventData []byte) error
}

// Handler applies multisig transactions; the caller of every operation is the
// public key that signed the transaction header
type Handler struct {
	logger   *zap.Logger
	defaults multisig.Config
}

func NewHandler(logger *zap.Logger, defaults multisig.Config) *Handler {
	return &Handler{logger: logger, defaults: defaults}
}

func (h *Handler) FamilyName() string {
	return multisigfamily.FamilyName
}

func (h *Handler) FamilyVersions() []string {
	return []string{multisigfamily.FamilyVersion}
}

func (h *Handler) Namespaces() []string {
	return []string{multisigfamily.Namespace()}
}

func (h *Handler) Apply(request *processor_pb2.TpProcessRequest, ctx *processor.Context) error {
	return h.apply(request.GetHeader().GetSignerPublicKey(), request.GetPayload(), ctx)
}

type event struct {
	eventType string
	data      multisigfamily.EventData
}

func (h *Handler) apply(signerPublicKey string, rawPayload []byte, ctx TransactionContext) error {
	var payload multisigfamily.Payload
	if err := cbor.Unmarshal(rawPayload, &payload); err != nil {
		return toProcessorError(errors.Wrapf(model.ErrInvalidPayload, "decode: %v", err))
	}
	if !payload.Action.IsValid() {
		return toProcessorError(errors.Wrapf(model.ErrInvalidPayload, "unknown action %q", payload.Action))
	}

	st := state.NewContext(ctx)
	config, err := h.deploymentConfig(st)
	if err != nil {
		return &processor.InternalError{Msg: "multisig deployment config: " + err.Error()}
	}

	engine, err := multisig.New(h.logger, st, config, nil)
	if err != nil {
		return &processor.InternalError{Msg: err.Error()}
	}

	caller := model.Identity(signerPublicKey)
	logger := h.logger.With(zap.String("action", string(payload.Action)), zap.String("caller", signerPublicKey))
	logger.Debug("applying transaction")

	ev, err := h.dispatch(engine, caller, payload)
	if err != nil {
		logger.Info("transaction rejected: " + err.Error())
		return toProcessorError(err)
	}

	if err := emit(ctx, caller, ev); err != nil {
		return &processor.InternalError{Msg: "failed to add event: " + err.Error()}
	}

	return nil
}

func (h *Handler) dispatch(engine *multisig.Engine, caller model.Identity, payload multisigfamily.Payload) (event, error) {
	switch payload.Action {
	case multisigfamily.ActionAddSigner:
		if err := engine.AddSigner(caller, model.Identity(payload.Signer)); err != nil {
			return event{}, err
		}
		return event{multisigfamily.EventSignerAdded, multisigfamily.EventData{Signer: payload.Signer}}, nil

	case multisigfamily.ActionRemoveSigner:
		if err := engine.RemoveSigner(caller, model.Identity(payload.Signer)); err != nil {
			return event{}, err
		}
		return event{multisigfamily.EventSignerRemoved, multisigfamily.EventData{Signer: payload.Signer}}, nil

	case multisigfamily.ActionCreateProposal:
		if payload.Amount <= 0 {
			return event{}, errors.Wrapf(model.ErrInvalidAmount, "create proposal: amount %d", payload.Amount)
		}
		id, err := engine.CreateProposal(caller, model.Identity(payload.Recipient), uint64(payload.Amount))
		if err != nil {
			return event{}, err
		}
		proposal, err := engine.GetProposal(id)
		if err != nil {
			return event{}, err
		}
		return event{multisigfamily.EventProposalCreated, proposalEventData(proposal)}, nil

	case multisigfamily.ActionAddSignature:
		if err := engine.AddSignature(caller, payload.ProposalID); err != nil {
			return event{}, err
		}
		count, err := engine.VerifySignatures(payload.ProposalID)
		if err != nil {
			return event{}, err
		}
		return event{multisigfamily.EventSignatureAdded, multisigfamily.EventData{
			ProposalID: payload.ProposalID,
			Signer:     caller.String(),
			Signatures: count,
		}}, nil

	case multisigfamily.ActionExecute:
		// the transfer is applied inside the same transaction, nothing blocks
		proposal, err := engine.Execute(context.Background(), caller, payload.ProposalID)
		if err != nil {
			return event{}, err
		}
		return event{multisigfamily.EventExecuted, proposalEventData(proposal)}, nil

	case multisigfamily.ActionDeposit:
		if payload.Amount <= 0 {
			return event{}, errors.Wrapf(model.ErrInvalidAmount, "deposit: amount %d", payload.Amount)
		}
		if err := engine.Deposit(caller, uint64(payload.Amount)); err != nil {
			return event{}, err
		}
		return event{multisigfamily.EventDeposit, multisigfamily.EventData{Amount: uint64(payload.Amount)}}, nil
	}

	return event{}, errors.Wrapf(model.ErrInvalidPayload, "unknown action %q", payload.Action)
}

func proposalEventData(proposal model.Proposal) multisigfamily.EventData {
	return multisigfamily.EventData{
		ProposalID: proposal.ID,
		Proposer:   proposal.Proposer.String(),
		Recipient:  proposal.Recipient.String(),
		Amount:     proposal.Amount,
		Executed:   proposal.Executed,
	}
}

func emit(ctx TransactionContext, caller model.Identity, ev event) error {
	data, err := cbor.Marshal(ev.data, cbor.CanonicalEncOptions())
	if err != nil {
		return err
	}

	attributes := []processor.Attribute{{Key: multisigfamily.AttrCaller, Value: caller.String()}}
	if ev.data.ProposalID != 0 {
		attributes = append(attributes, processor.Attribute{Key: multisigfamily.AttrProposalID, Value: strconv.FormatUint(ev.data.ProposalID, 10)})
	}
	if ev.data.Signer != "" {
		attributes = append(attributes, processor.Attribute{Key: multisigfamily.AttrSigner, Value: ev.data.Signer})
	}

	return ctx.AddEvent(ev.eventType, attributes, data)
}

// toProcessorError rejects the transaction for failures of the core and reports
// anything else as an internal error the validator may retry
func toProcessorError(err error) error {
	if code, ok := model.CodeOf(err); ok {
		return &processor.InvalidTransactionError{Msg: fmt.Sprintf("%d %s", code, err.Error())}
	}
	return &processor.InternalError{Msg: err.Error()}
}
