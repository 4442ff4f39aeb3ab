package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Config holds MongoDB connection configuration
type Config struct {
	URI            string
	Database       string
	ConnectTimeout time.Duration
	MaxPoolSize    uint64
	MinPoolSize    uint64

	// Retry configuration
	MaxRetries    int
	RetryInterval time.Duration
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		URI:            "mongodb://localhost:27017",
		Database:       "event_scheduler",
		ConnectTimeout: 10 * time.Second,
		MaxPoolSize:    100,
		MinPoolSize:    10,
		MaxRetries:     3,
		RetryInterval:  2 * time.Second,
	}
}

// MongoDB wraps mongo.Client with database scoping and health checks
type MongoDB struct {
	client *mongo.Client
	db     *mongo.Database
	config *Config
}

// New creates a new MongoDB connection with retry logic
func New(ctx context.Context, cfg *Config) (*MongoDB, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(cfg.ConnectTimeout).
		SetMaxPoolSize(cfg.MaxPoolSize).
		SetMinPoolSize(cfg.MinPoolSize)

	var client *mongo.Client
	var lastErr error

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(cfg.RetryInterval)
		}

		client, lastErr = mongo.Connect(ctx, opts)
		if lastErr != nil {
			continue
		}

		pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
		lastErr = client.Ping(pingCtx, readpref.Primary())
		cancel()
		if lastErr != nil {
			client.Disconnect(ctx)
			continue
		}

		return &MongoDB{
			client: client,
			db:     client.Database(cfg.Database),
			config: cfg,
		}, nil
	}

	return nil, fmt.Errorf("failed to connect to mongodb after %d attempts: %w", cfg.MaxRetries+1, lastErr)
}

// Client returns the underlying mongo.Client
func (m *MongoDB) Client() *mongo.Client {
	return m.client
}

// Database returns the scoped mongo.Database
func (m *MongoDB) Database() *mongo.Database {
	return m.db
}

// Collection returns a collection handle
func (m *MongoDB) Collection(name string) *mongo.Collection {
	return m.db.Collection(name)
}

// Close disconnects the client
func (m *MongoDB) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

// HealthCheck performs a health check on MongoDB
func (m *MongoDB) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := m.client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("mongodb health check failed: %w", err)
	}
	return nil
}
