package database

import (
	"context"
	"fmt"
	"time"

	"nfl-playoff-pickem/logging"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Config describes how to reach MongoDB. URI wins over the host fields when set.
type Config struct {
	URI      string
	Host     string
	Port     string
	Username string
	Password string
	Database string
	Timeout  time.Duration
}

// ConnectionURI builds the mongodb:// URI for the config
func (c Config) ConnectionURI() string {
	if c.URI != "" {
		return c.URI
	}
	if c.Username != "" && c.Password != "" {
		return fmt.Sprintf("mongodb://%s:%s@%s:%s/%s?authSource=%s",
			c.Username, c.Password, c.Host, c.Port, c.Database, c.Database)
	}
	return fmt.Sprintf("mongodb://%s:%s/%s", c.Host, c.Port, c.Database)
}

type MongoDB struct {
	client   *mongo.Client
	database *mongo.Database
}

func NewMongoConnection(ctx context.Context, config Config) (*MongoDB, error) {
	logger := logging.WithPrefix("MongoDB")

	timeout := config.Timeout
	if timeout <= 0 {
		timeout = MediumTimeout
	}
	ctx, cancel := withTimeout(ctx, timeout)
	defer cancel()

	if config.URI == "" && config.Username != "" {
		logger.Infof("Connecting with authentication as user: %s", config.Username)
	} else if config.URI == "" {
		logger.Info("Connecting without authentication")
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(config.ConnectionURI()))
	if err != nil {
		logger.Errorf("Failed to connect: %v", err)
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		logger.Errorf("Failed to ping: %v", err)
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	logger.Infof("Successfully connected, database=%s", config.Database)

	return &MongoDB{
		client:   client,
		database: client.Database(config.Database),
	}, nil
}

func (m *MongoDB) Close() error {
	logger := logging.WithPrefix("MongoDB")
	ctx, cancel := WithShortTimeout(context.Background())
	defer cancel()

	err := m.client.Disconnect(ctx)
	if err != nil {
		logger.Errorf("Error disconnecting: %v", err)
	} else {
		logger.Info("Connection closed successfully")
	}
	return err
}

// Ping checks the connection, used by the health endpoint
func (m *MongoDB) Ping(ctx context.Context) error {
	ctx, cancel := WithShortTimeout(ctx)
	defer cancel()

	if err := m.client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("MongoDB ping failed: %w", err)
	}
	return nil
}

func (m *MongoDB) GetCollection(name string) *mongo.Collection {
	return m.database.Collection(name)
}

// Drop removes the whole database. Test helper.
func (m *MongoDB) Drop(ctx context.Context) error {
	return m.database.Drop(ctx)
}

// NewMongoRepositories wires every Mongo repository against one connection
func NewMongoRepositories(db *MongoDB) *Repositories {
	return &Repositories{
		Games: NewMongoGameRepository(db),
		Picks: NewMongoPickRepository(db),
		Users: NewMongoUserRepository(db),
		Teams: NewMongoTeamRepository(db),
		Stats: NewMongoUserStatRepository(db),
		Audit: NewMongoAuditRepository(db),
	}
}
