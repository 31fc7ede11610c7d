package processor

import (
	"fmt"
	"multisig-vault/internal/blockchain/multisigfamily"
	"multisig-vault/internal/blockchain/settingsfamily"
	"multisig-vault/internal/model"
	"multisig-vault/internal/multisig"
	"strings"
	"testing"

	"github.com/fxamacker/cbor"
	"github.com/golang/protobuf/proto"
	"github.com/hyperledger/sawtooth-sdk-go/processor"
	"github.com/hyperledger/sawtooth-sdk-go/protobuf/setting_pb2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	owner     = "02a1633cafcc01ebfb6d78e39f687a1f0995c62fc95f51ead10a02ee0be551b5dc"
	signer1   = "03f3b1e9c5b4d7a1c6e1f0a9b8c7d6e5f4a3b2c1d0e9f8a7b6c5d4e3f2a1b0c9d8"
	signer2   = "02b4c3d2e1f0a9b8c7d6e5f4a3b2c1d0e9f8a7b6c5d4e3f2a1b0c9d8e7f6a5b4c3"
	recipient = "ST2CY5V39NHDPWSXMW9QDT3HC3GD6Q6XX4CFRK9AG"
)

type emitted struct {
	eventType  string
	attributes []processor.Attribute
	data       multisigfamily.EventData
}

type fakeContext struct {
	data   map[string][]byte
	events []emitted
}

func newFakeContext() *fakeContext {
	return &fakeContext{data: make(map[string][]byte)}
}

func (f *fakeContext) GetState(addresses []string) (map[string][]byte, error) {
	out := make(map[string][]byte)
	for _, addr := range addresses {
		out[addr] = f.data[addr]
	}
	return out, nil
}

func (f *fakeContext) SetState(pairs map[string][]byte) ([]string, error) {
	var set []string
	for addr, data := range pairs {
		f.data[addr] = data
		set = append(set, addr)
	}
	return set, nil
}

func (f *fakeContext) DeleteState(addresses []string) ([]string, error) {
	for _, addr := range addresses {
		delete(f.data, addr)
	}
	return addresses, nil
}

func (f *fakeContext) AddEvent(eventType string, attributes []processor.Attribute, eventData []byte) error {
	var data multisigfamily.EventData
	if err := cbor.Unmarshal(eventData, &data); err != nil {
		return err
	}
	f.events = append(f.events, emitted{eventType, attributes, data})
	return nil
}

func (f *fakeContext) lastEvent() emitted {
	return f.events[len(f.events)-1]
}

func newTestHandler() *Handler {
	return NewHandler(zap.NewNop(), multisig.Config{
		Owner:  owner,
		Quorum: model.FixedQuorum(2),
		Policy: model.ValidityLive,
	})
}

func encode(t *testing.T, payload multisigfamily.Payload) []byte {
	data, err := cbor.Marshal(payload, cbor.CanonicalEncOptions())
	require.NoError(t, err)
	return data
}

func requireRejected(t *testing.T, err error, code model.Code) {
	require.Error(t, err)
	invalid, ok := err.(*processor.InvalidTransactionError)
	require.True(t, ok, "expected an invalid transaction, got %v", err)
	assert.True(t, strings.HasPrefix(invalid.Msg, fmt.Sprintf("%d ", code)), invalid.Msg)
}

func TestHandlerFamily(t *testing.T) {
	h := newTestHandler()
	assert.Equal(t, "multisig", h.FamilyName())
	assert.Equal(t, []string{"1.0"}, h.FamilyVersions())
	assert.Equal(t, []string{multisigfamily.Namespace()}, h.Namespaces())
}

func TestApplyFullFlow(t *testing.T) {
	h := newTestHandler()
	ctx := newFakeContext()

	require.NoError(t, h.apply(owner, encode(t, multisigfamily.Payload{Action: multisigfamily.ActionDeposit, Amount: 5000}), ctx))
	require.NoError(t, h.apply(owner, encode(t, multisigfamily.Payload{Action: multisigfamily.ActionAddSigner, Signer: signer1}), ctx))
	assert.Equal(t, multisigfamily.EventSignerAdded, ctx.lastEvent().eventType)
	require.NoError(t, h.apply(owner, encode(t, multisigfamily.Payload{Action: multisigfamily.ActionAddSigner, Signer: signer2}), ctx))

	require.NoError(t, h.apply(recipient, encode(t, multisigfamily.Payload{Action: multisigfamily.ActionCreateProposal, Recipient: recipient, Amount: 1000}), ctx))
	created := ctx.lastEvent()
	assert.Equal(t, multisigfamily.EventProposalCreated, created.eventType)
	assert.Equal(t, uint64(1), created.data.ProposalID)
	assert.Equal(t, recipient, created.data.Proposer)
	assert.Contains(t, created.attributes, processor.Attribute{Key: multisigfamily.AttrProposalID, Value: "1"})

	require.NoError(t, h.apply(signer1, encode(t, multisigfamily.Payload{Action: multisigfamily.ActionAddSignature, ProposalID: 1}), ctx))
	assert.Equal(t, 1, ctx.lastEvent().data.Signatures)

	err := h.apply(signer1, encode(t, multisigfamily.Payload{Action: multisigfamily.ActionExecute, ProposalID: 1}), ctx)
	requireRejected(t, err, model.CodeQuorumNotMet)

	require.NoError(t, h.apply(signer2, encode(t, multisigfamily.Payload{Action: multisigfamily.ActionAddSignature, ProposalID: 1}), ctx))
	require.NoError(t, h.apply(recipient, encode(t, multisigfamily.Payload{Action: multisigfamily.ActionExecute, ProposalID: 1}), ctx))
	executed := ctx.lastEvent()
	assert.Equal(t, multisigfamily.EventExecuted, executed.eventType)
	assert.True(t, executed.data.Executed)
	assert.Equal(t, uint64(1000), executed.data.Amount)

	err = h.apply(recipient, encode(t, multisigfamily.Payload{Action: multisigfamily.ActionExecute, ProposalID: 1}), ctx)
	requireRejected(t, err, model.CodeAlreadyExecuted)
}

func TestApplyRejections(t *testing.T) {
	h := newTestHandler()
	ctx := newFakeContext()

	err := h.apply(owner, []byte{0xff}, ctx)
	requireRejected(t, err, model.CodeInvalidPayload)

	err = h.apply(owner, encode(t, multisigfamily.Payload{Action: "cancel"}), ctx)
	requireRejected(t, err, model.CodeInvalidPayload)

	err = h.apply(recipient, encode(t, multisigfamily.Payload{Action: multisigfamily.ActionAddSigner, Signer: signer1}), ctx)
	requireRejected(t, err, model.CodeUnauthorized)

	err = h.apply(recipient, encode(t, multisigfamily.Payload{Action: multisigfamily.ActionCreateProposal, Recipient: recipient, Amount: -5}), ctx)
	requireRejected(t, err, model.CodeInvalidAmount)

	err = h.apply(recipient, encode(t, multisigfamily.Payload{Action: multisigfamily.ActionCreateProposal, Recipient: "", Amount: 5}), ctx)
	requireRejected(t, err, model.CodeInvalidRecipient)

	err = h.apply(signer1, encode(t, multisigfamily.Payload{Action: multisigfamily.ActionAddSignature, ProposalID: 1}), ctx)
	requireRejected(t, err, model.CodeNotAuthorizedSigner)

	assert.Empty(t, ctx.data)
	assert.Empty(t, ctx.events)
}

func TestApplyTransferFailure(t *testing.T) {
	h := NewHandler(zap.NewNop(), multisig.Config{Owner: owner, Quorum: model.FixedQuorum(1), Policy: model.ValidityLive})
	ctx := newFakeContext()

	require.NoError(t, h.apply(owner, encode(t, multisigfamily.Payload{Action: multisigfamily.ActionAddSigner, Signer: signer1}), ctx))
	require.NoError(t, h.apply(recipient, encode(t, multisigfamily.Payload{Action: multisigfamily.ActionCreateProposal, Recipient: recipient, Amount: 10}), ctx))
	require.NoError(t, h.apply(signer1, encode(t, multisigfamily.Payload{Action: multisigfamily.ActionAddSignature, ProposalID: 1}), ctx))

	err := h.apply(signer1, encode(t, multisigfamily.Payload{Action: multisigfamily.ActionExecute, ProposalID: 1}), ctx)
	requireRejected(t, err, model.CodeTransferFailed)

	require.NoError(t, h.apply(owner, encode(t, multisigfamily.Payload{Action: multisigfamily.ActionDeposit, Amount: 10}), ctx))
	require.NoError(t, h.apply(signer1, encode(t, multisigfamily.Payload{Action: multisigfamily.ActionExecute, ProposalID: 1}), ctx))
}

func storeSetting(t *testing.T, ctx *fakeContext, key, value string) {
	setting := setting_pb2.Setting{Entries: []*setting_pb2.Setting_Entry{{Key: key, Value: value}}}
	data, err := proto.Marshal(&setting)
	require.NoError(t, err)
	ctx.data[settingsfamily.GetAddress(key)] = data
}

func TestOnChainSettingsOverrideDefaults(t *testing.T) {
	h := newTestHandler()
	ctx := newFakeContext()
	storeSetting(t, ctx, settingsfamily.OwnerSetting, signer2)
	storeSetting(t, ctx, settingsfamily.ThresholdSetting, "1")

	err := h.apply(owner, encode(t, multisigfamily.Payload{Action: multisigfamily.ActionAddSigner, Signer: signer1}), ctx)
	requireRejected(t, err, model.CodeUnauthorized)

	require.NoError(t, h.apply(signer2, encode(t, multisigfamily.Payload{Action: multisigfamily.ActionAddSigner, Signer: signer1}), ctx))
	require.NoError(t, h.apply(signer2, encode(t, multisigfamily.Payload{Action: multisigfamily.ActionDeposit, Amount: 10}), ctx))
	require.NoError(t, h.apply(recipient, encode(t, multisigfamily.Payload{Action: multisigfamily.ActionCreateProposal, Recipient: recipient, Amount: 10}), ctx))
	require.NoError(t, h.apply(signer1, encode(t, multisigfamily.Payload{Action: multisigfamily.ActionAddSignature, ProposalID: 1}), ctx))

	// a threshold of 1 lets a single signature through
	require.NoError(t, h.apply(recipient, encode(t, multisigfamily.Payload{Action: multisigfamily.ActionExecute, ProposalID: 1}), ctx))
}

func TestInvalidOnChainSettings(t *testing.T) {
	h := newTestHandler()
	ctx := newFakeContext()
	storeSetting(t, ctx, settingsfamily.ThresholdSetting, "zero")

	err := h.apply(owner, encode(t, multisigfamily.Payload{Action: multisigfamily.ActionAddSigner, Signer: signer1}), ctx)
	_, internal := err.(*processor.InternalError)
	assert.True(t, internal, "%v", err)
}
