// Package mongodb implements MongoDB adapters for the application.
package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"civreply_server/core/port/out"
)

// =============================================================================
// Reply Archive Adapter
// =============================================================================

const collectionReplies = "reply_bodies"

// NewClient creates a new MongoDB client.
func NewClient(url string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	clientOpts := options.Client().
		ApplyURI(url).
		SetMaxPoolSize(50).
		SetMaxConnIdleTime(30 * time.Second)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return client, nil
}

// ReplyArchiveAdapter implements out.ReplyArchive using MongoDB. Full
// HTML bodies are large and append-only, so they live here instead of
// the relational audit table.
type ReplyArchiveAdapter struct {
	collection *mongo.Collection
}

// NewReplyArchiveAdapter creates the adapter.
func NewReplyArchiveAdapter(db *mongo.Database) *ReplyArchiveAdapter {
	return &ReplyArchiveAdapter{
		collection: db.Collection(collectionReplies),
	}
}

// EnsureIndexes creates necessary indexes for the collection.
func (a *ReplyArchiveAdapter) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "message_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "created_at", Value: -1}},
		},
	}

	_, err := a.collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create reply archive indexes: %w", err)
	}
	return nil
}

// Save upserts one archived reply keyed by message ID, so a retried
// message never produces duplicate documents.
func (a *ReplyArchiveAdapter) Save(ctx context.Context, doc *out.ReplyDocument) error {
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}

	filter := bson.M{"message_id": doc.MessageID}
	update := bson.M{"$set": doc}
	opts := options.Update().SetUpsert(true)

	if _, err := a.collection.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to archive reply %s: %w", doc.MessageID, err)
	}
	return nil
}
