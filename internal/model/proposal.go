package model

import (
	"github.com/pkg/errors"
)

// Proposal is a request to transfer Amount from the vault to Recipient. Once
// Executed is set none of its fields change again.
type Proposal struct {
	ID        uint64   `cbor:"id" json:"id"`
	Proposer  Identity `cbor:"proposer" json:"proposer"`
	Recipient Identity `cbor:"recipient" json:"recipient"`
	Amount    uint64   `cbor:"amount" json:"amount"`
	Executed  bool     `cbor:"executed" json:"executed"`
}

func (proposal Proposal) Validate() error {
	if proposal.Amount == 0 {
		return errors.Wrap(ErrInvalidAmount, "amount must be positive")
	}
	if !proposal.Recipient.Valid() {
		return errors.Wrapf(ErrInvalidRecipient, "recipient %q", proposal.Recipient)
	}

	return nil
}
