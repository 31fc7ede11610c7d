package mongodb

import (
	"context"
	"multisig-vault/internal/model"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const (
	proposalsCollection = "proposals"
)

// the updates upsert, so an event handled out of order still lands in the
// document of its proposal

func createdUpdate(proposal model.Proposal, now time.Time) bson.M {
	return bson.M{
		"$set": bson.M{
			"proposer":  proposal.Proposer.String(),
			"recipient": proposal.Recipient.String(),
			"amount":    proposal.Amount,
			"updatedAt": now,
		},
		"$setOnInsert": bson.M{
			"executed": false,
			"signers":  bson.A{},
		},
	}
}

func signatureUpdate(signer model.Identity, now time.Time) bson.M {
	return bson.M{
		"$addToSet": bson.M{"signers": signer.String()},
		"$set":      bson.M{"updatedAt": now},
	}
}

func executedUpdate(now time.Time) bson.M {
	return bson.M{
		"$set": bson.M{"executed": true, "updatedAt": now},
	}
}

// listFilter selects all the proposals when executed is nil
func listFilter(executed *bool) bson.M {
	filter := bson.M{}
	if executed != nil {
		filter["executed"] = *executed
	}
	return filter
}

func (b Repository) upsertProposal(ctx context.Context, proposalID uint64, update bson.M) error {
	coll := b.collection(proposalsCollection)

	_, err := coll.UpdateOne(ctx, bson.M{"_id": proposalID}, update, options.Update().SetUpsert(true))
	if err != nil {
		b.logger.Debug("proposal update failed", zap.Uint64("proposalID", proposalID), zap.Error(err))
		return errors.Wrapf(err, "failed to update proposal %d", proposalID)
	}
	return nil
}

func (b Repository) InsertProposal(ctx context.Context, proposal model.Proposal) error {
	return b.upsertProposal(ctx, proposal.ID, createdUpdate(proposal, time.Now().UTC()))
}

func (b Repository) AddSignature(ctx context.Context, proposalID uint64, signer model.Identity) error {
	return b.upsertProposal(ctx, proposalID, signatureUpdate(signer, time.Now().UTC()))
}

func (b Repository) MarkExecuted(ctx context.Context, proposalID uint64) error {
	return b.upsertProposal(ctx, proposalID, executedUpdate(time.Now().UTC()))
}

func (b Repository) GetProposal(ctx context.Context, proposalID uint64) (StoredProposal, error) {
	coll := b.collection(proposalsCollection)

	var stored StoredProposal
	err := coll.FindOne(ctx, bson.M{"_id": proposalID}).Decode(&stored)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return StoredProposal{}, errors.Wrapf(model.ErrProposalNotFound, "proposal %d", proposalID)
	}
	if err != nil {
		return StoredProposal{}, errors.Wrap(err, "getting proposal from the db failed")
	}

	return stored, nil
}

// ListProposals returns the proposals in ID order, executed filters them by state
func (b Repository) ListProposals(ctx context.Context, executed *bool) ([]StoredProposal, error) {
	coll := b.collection(proposalsCollection)

	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := coll.Find(ctx, listFilter(executed), opts)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find the proposals")
	}

	storedPropos := []StoredProposal{}
	if err := cursor.All(ctx, &storedPropos); err != nil {
		return nil, errors.Wrap(err, "failed to get all proposals from the cursor")
	}

	return storedPropos, nil
}
