// Package ledger persists session influencer lists in MongoDB, one document
// per (user, session).
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/kailas-cloud/creatorscout/internal/domain"
	"github.com/kailas-cloud/creatorscout/internal/domain/profile"
	"github.com/kailas-cloud/creatorscout/internal/repository/record"
)

// collection is the subset of *mongo.Collection the repository uses.
type collection interface {
	FindOne(ctx context.Context, filter any, opts ...*options.FindOneOptions) *mongo.SingleResult
	UpdateOne(ctx context.Context, filter, update any, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
}

type sessionDoc struct {
	ID             string           `bson:"_id"`
	InfluencerData []record.Profile `bson:"influencer_data"`
	UpdatedAt      int64            `bson:"updated_at"`
}

// Repo implements usecase/ledger.Store.
type Repo struct {
	collection collection
	client     *mongo.Client
	now        func() time.Time
}

// Connect opens a client for uri. Extra options carry monitors such as otelmongo.
func Connect(ctx context.Context, uri string, extra ...*options.ClientOptions) (*mongo.Client, error) {
	opts := append([]*options.ClientOptions{options.Client().ApplyURI(uri)}, extra...)
	client, err := mongo.Connect(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	return client, nil
}

// New creates a ledger repository on dbName.collectionName.
func New(client *mongo.Client, dbName, collectionName string) *Repo {
	return &Repo{
		collection: client.Database(dbName).Collection(collectionName),
		client:     client,
		now:        time.Now,
	}
}

// Ping checks the primary is reachable.
func (r *Repo) Ping(ctx context.Context) error {
	if r.client == nil {
		return nil
	}
	return r.client.Ping(ctx, readpref.Primary())
}

// Get returns the entries of docID, domain.ErrNotFound when absent.
func (r *Repo) Get(ctx context.Context, docID string) ([]profile.Profile, error) {
	var doc sessionDoc
	err := r.collection.FindOne(ctx, bson.M{"_id": docID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("session %s: %w", docID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("find session %s: %w", docID, err)
	}
	return record.ToDomainList(doc.InfluencerData), nil
}

// Upsert replaces the entries of docID.
func (r *Repo) Upsert(ctx context.Context, docID string, entries []profile.Profile) error {
	update := bson.M{
		"$set": bson.M{
			"influencer_data": record.FromDomainList(entries),
			"updated_at":      r.now().Unix(),
		},
	}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": docID}, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert session %s: %w", docID, err)
	}
	return nil
}
