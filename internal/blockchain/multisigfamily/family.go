package multisigfamily

type Action string

const (
	ActionAddSigner      Action = "add-signer"
	ActionRemoveSigner   Action = "remove-signer"
	ActionCreateProposal Action = "create-proposal"
	ActionAddSignature   Action = "add-signature"
	ActionExecute        Action = "execute"
	ActionDeposit        Action = "deposit"
)

func (a Action) IsValid() bool {
	switch a {
	case ActionAddSigner, ActionRemoveSigner, ActionCreateProposal,
		ActionAddSignature, ActionExecute, ActionDeposit:
		return true
	}
	return false
}

const (
	FamilyName    string = "multisig"
	FamilyVersion string = "1.0"

	// to hold the set of authorized signers
	signersPrefix = "signers"
	// to hold the proposal records
	proposalPrefix = "proposal"
	// to hold the signers that endorsed a proposal
	signaturesPrefix = "signatures"
	// to hold the last allocated proposal ID
	sequencePrefix = "sequence"
	// to hold account balances, the vault included
	accountPrefix = "account"
)

// event types emitted by the transaction processor
const (
	EventSignerAdded     = FamilyName + "/signer-added"
	EventSignerRemoved   = FamilyName + "/signer-removed"
	EventProposalCreated = FamilyName + "/proposal-created"
	EventSignatureAdded  = FamilyName + "/signature-added"
	EventExecuted        = FamilyName + "/executed"
	EventDeposit         = FamilyName + "/deposit"
)

// event attribute keys
const (
	AttrProposalID = "proposal_id"
	AttrSigner     = "signer"
	AttrCaller     = "caller"
)

// Payload is the cbor body of every multisig transaction
type Payload struct {
	Action     Action `cbor:"action"`
	Signer     string `cbor:"signer,omitempty"`
	Recipient  string `cbor:"recipient,omitempty"`
	Amount     int64  `cbor:"amount,omitempty"`
	ProposalID uint64 `cbor:"proposalID,omitempty"`
}

// EventData is the cbor body of every event the family emits
type EventData struct {
	ProposalID uint64 `cbor:"proposalID,omitempty"`
	Proposer   string `cbor:"proposer,omitempty"`
	Recipient  string `cbor:"recipient,omitempty"`
	Amount     uint64 `cbor:"amount,omitempty"`
	Executed   bool   `cbor:"executed,omitempty"`
	Signer     string `cbor:"signer,omitempty"`
	Signatures int    `cbor:"signatures,omitempty"`
}
