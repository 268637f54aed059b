package storage

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/btlive/pkg/errors"
)

// Default mongo placement.
const (
	DefaultMongoDatabase   = "btlive"
	DefaultMongoCollection = "ui_state"
)

// MongoStorage keeps one document per key: {_id: key, data, updated_at}.
type MongoStorage struct {
	client *mongo.Client
	coll   *mongo.Collection
}

type mongoEntry struct {
	Key       string    `bson:"_id"`
	Data      []byte    `bson:"data"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// NewMongoStorage connects to uri and uses database.collection.
func NewMongoStorage(ctx context.Context, uri, database, collection string) (*MongoStorage, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "connect mongo")
	}
	return &MongoStorage{
		client: client,
		coll:   client.Database(database).Collection(collection),
	}, nil
}

// Get reads key.
func (s *MongoStorage) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var entry mongoEntry
	err := s.coll.FindOne(ctx, bson.M{"_id": key}).Decode(&entry)
	if err == mongo.ErrNoDocuments {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeStorage, err, "mongo find %s", key)
	}
	return entry.Data, true, nil
}

// Set upserts key.
func (s *MongoStorage) Set(ctx context.Context, key string, value []byte) error {
	entry := mongoEntry{Key: key, Data: value, UpdatedAt: time.Now().UTC()}
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": key}, entry, options.Replace().SetUpsert(true))
	if err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "mongo upsert %s", key)
	}
	return nil
}

// Delete removes key.
func (s *MongoStorage) Delete(ctx context.Context, key string) error {
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": key}); err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "mongo delete %s", key)
	}
	return nil
}

// Close disconnects the client.
func (s *MongoStorage) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

var _ Storage = (*MongoStorage)(nil)
