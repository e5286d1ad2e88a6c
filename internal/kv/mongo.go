package kv

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoEntry struct {
	Key       string    `bson:"_id"`
	Value     string    `bson:"value"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

// MongoStore implements Store with one Mongo document per key.
type MongoStore struct {
	col *mongo.Collection
}

func NewMongoStore(col *mongo.Collection) *MongoStore {
	return &MongoStore{col: col}
}

func (m *MongoStore) Get(ctx context.Context, key string) (string, bool, error) {
	var e mongoEntry
	if err := m.col.FindOne(ctx, bson.M{"_id": key}).Decode(&e); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", false, nil
		}
		return "", false, err
	}
	return e.Value, true, nil
}

// Set upserts the whole value in a single write.
func (m *MongoStore) Set(ctx context.Context, key, value string) error {
	opts := options.Update().SetUpsert(true)
	rec := bson.M{"$set": bson.M{"value": value, "updatedAt": time.Now().UTC()}}
	_, err := m.col.UpdateOne(ctx, bson.M{"_id": key}, rec, opts)
	return err
}
