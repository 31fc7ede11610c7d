package multisigfamily

// records kept in the family state, proposals are stored as model.Proposal

type SignerSet struct {
	// sorted, so that the encoding doesn't depend on insertion order
	Signers []string `cbor:"signers"`
}

type SignatureData struct {
	ProposalID uint64 `cbor:"proposalID"`
	// in the order they signed
	Signers []string `cbor:"signers"`
}

type Sequence struct {
	Last uint64 `cbor:"last"`
}

type Account struct {
	Balance uint64 `cbor:"balance"`
}
