package mongodb

import (
	"multisig-vault/internal/model"
	"time"
)

// StoredProposal is the read model of a proposal, built from the family events
type StoredProposal struct {
	ProposalID uint64    `bson:"_id" json:"id"`
	Proposer   string    `bson:"proposer" json:"proposer"`
	Recipient  string    `bson:"recipient" json:"recipient"`
	Amount     uint64    `bson:"amount" json:"amount"`
	Executed   bool      `bson:"executed" json:"executed"`
	Signers    []string  `bson:"signers" json:"signers"`
	UpdatedAt  time.Time `bson:"updatedAt" json:"updatedAt"`
}

func (s StoredProposal) Proposal() model.Proposal {
	return model.Proposal{
		ID:        s.ProposalID,
		Proposer:  model.Identity(s.Proposer),
		Recipient: model.Identity(s.Recipient),
		Amount:    s.Amount,
		Executed:  s.Executed,
	}
}
