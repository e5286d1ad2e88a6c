package database

import (
	"context"
	"fmt"
	"time"

	"github.com/gogotex/blogdraft/internal/config"
	"github.com/gogotex/blogdraft/pkg/logger"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// connectAttempts bounds OpenCollection's retries.
const connectAttempts = 5

// ConnectMongo opens a connection and pings it within timeout. Caller should
// call client.Disconnect(ctx).
func ConnectMongo(ctx context.Context, uri string, timeout time.Duration) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	clientOpts := options.Client().ApplyURI(uri).SetAppName("blogdraft")
	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return client, nil
}

// OpenCollection connects with exponential backoff, starting at backoff, to
// ride out startup races, and returns the key-value collection named by cfg.
func OpenCollection(ctx context.Context, cfg config.MongoDBConfig, backoff time.Duration) (*mongo.Client, *mongo.Collection, error) {
	var lastErr error
	for attempt := 1; attempt <= connectAttempts; attempt++ {
		client, err := ConnectMongo(ctx, cfg.URI, cfg.Timeout)
		if err == nil {
			logger.Infof("connected to MongoDB database %s", cfg.Database)
			return client, client.Database(cfg.Database).Collection(cfg.Collection), nil
		}
		lastErr = err
		logger.Warnf("attempt %d/%d: failed to connect to MongoDB: %v", attempt, connectAttempts, err)
		if attempt < connectAttempts {
			select {
			case <-ctx.Done():
				return nil, nil, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}
	}
	return nil, nil, fmt.Errorf("could not connect to MongoDB after %d attempts: %w", connectAttempts, lastErr)
}
