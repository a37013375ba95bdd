// Package history appends chat exchanges to a per-user conversation log in
// MongoDB. The collaborator is optional: a nil *Store is a no-op, and append
// failures are logged, never surfaced to the chat caller.
package history

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	databaseName   = "profsage"
	collectionName = "users"
)

// Entry is one recorded chat exchange.
type Entry struct {
	Message string    `bson:"message"`
	Reply   string    `bson:"reply"`
	At      time.Time `bson:"at"`
}

// Store appends conversation entries per user.
type Store struct {
	client *mongo.Client
	users  *mongo.Collection
	logger *slog.Logger
}

// New connects to MongoDB at uri.
func New(ctx context.Context, uri string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("history: connect %s: %w", uri, err)
	}
	return &Store{
		client: client,
		users:  client.Database(databaseName).Collection(collectionName),
		logger: logger,
	}, nil
}

// Close disconnects from MongoDB.
func (s *Store) Close(ctx context.Context) error {
	if s == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}

// Append pushes an entry onto the user's conversation_history array, creating
// the user document on first write. Append-only; no schema beyond the entry.
func (s *Store) Append(ctx context.Context, userID string, entry Entry) error {
	if s == nil {
		return nil
	}
	_, err := s.users.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$push": bson.M{"conversation_history": entry}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("history: append for user %s: %w", userID, err)
	}
	return nil
}

// AppendAsync records the exchange without blocking the caller. Errors are
// logged and dropped.
func (s *Store) AppendAsync(userID string, entry Entry) {
	if s == nil || userID == "" {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.Append(ctx, userID, entry); err != nil {
			s.logger.Warn("history: append dropped", "user", userID, "err", err)
		}
	}()
}
