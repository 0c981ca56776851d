package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Connection represents a database connection
type Connection struct {
	Client   *mongo.Client
	Database *mongo.Database
	URI      string
	DBName   string
}

// Config represents database configuration
type Config struct {
	URI     string
	DBName  string
	Timeout time.Duration
	MaxPool uint64
	MinPool uint64
}

// DefaultConfig returns default database configuration
func DefaultConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
		MaxPool: 100,
		MinPool: 5,
	}
}

// Connect opens a connection and verifies it with a ping
func Connect(uri, dbName string) (*Connection, error) {
	cfg := DefaultConfig()
	cfg.URI = uri
	cfg.DBName = dbName
	return NewConnection(cfg)
}

// NewConnection creates a new database connection
func NewConnection(cfg *Config) (*Connection, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	clientOptions := options.Client().ApplyURI(cfg.URI)
	clientOptions.SetMaxPoolSize(cfg.MaxPool)
	clientOptions.SetMinPoolSize(cfg.MinPool)
	clientOptions.SetMaxConnIdleTime(30 * time.Second)
	clientOptions.SetServerSelectionTimeout(5 * time.Second)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return &Connection{
		Client:   client,
		Database: client.Database(cfg.DBName),
		URI:      cfg.URI,
		DBName:   cfg.DBName,
	}, nil
}

// Close closes the database connection
func (c *Connection) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return c.Client.Disconnect(ctx)
}

// Ping checks if the database is accessible
func (c *Connection) Ping() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return c.Client.Ping(ctx, readpref.Primary())
}

// GetCollection returns a collection by name
func (c *Connection) GetCollection(name string) *mongo.Collection {
	return c.Database.Collection(name)
}

// EnsureReportIndexes creates the indexes the report pipeline relies on:
// a 2dsphere index on the GeoJSON location (viewport queries must not scan
// the whole collection) and a descending createdAt index for the listing.
func (c *Connection) EnsureReportIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	reports := c.Database.Collection("reports")
	_, err := reports.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "location", Value: "2dsphere"}}},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "category", Value: 1}, {Key: "status", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create report indexes: %w", err)
	}
	return nil
}
