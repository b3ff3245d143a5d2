// IPTrack - per-user IP geolocation collection backend
// Copyright 2026 RaadTech
// SPDX-License-Identifier: MIT

// Package database owns the MongoDB client lifecycle.
//
// One client is opened at startup, injected into the repositories and
// closed on shutdown. Unique indexes backing the global uniqueness
// invariants (admin email, user email, user PID, record IP) are ensured
// during Connect so a lost duplicate race degrades to a duplicate-key
// error instead of silent double storage.
package database

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/raadtech/iptrack/internal/config"
	"github.com/raadtech/iptrack/internal/logging"
)

// Collection names.
const (
	CollectionAdmins = "admins"
	CollectionUsers  = "users"
	CollectionIPData = "ip_data"
)

// Mongo holds the connected client and the selected database.
type Mongo struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect opens the MongoDB connection, verifies it with a ping, selects
// the configured database and ensures the unique indexes.
func Connect(ctx context.Context, cfg config.DatabaseConfig) (*Mongo, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	m := &Mongo{
		client: client,
		db:     client.Database(cfg.Name),
	}

	if err := m.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ensure indexes: %w", err)
	}

	logging.Info().Str("database", cfg.Name).Msg("Connected to MongoDB")
	return m, nil
}

// Close disconnects the client. Call once during shutdown.
func (m *Mongo) Close(ctx context.Context) error {
	if err := m.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to disconnect mongodb: %w", err)
	}
	logging.Info().Msg("MongoDB connection closed")
	return nil
}

// Admins returns the admins collection.
func (m *Mongo) Admins() *mongo.Collection {
	return m.db.Collection(CollectionAdmins)
}

// Users returns the users collection.
func (m *Mongo) Users() *mongo.Collection {
	return m.db.Collection(CollectionUsers)
}

// IPData returns the ip_data collection.
func (m *Mongo) IPData() *mongo.Collection {
	return m.db.Collection(CollectionIPData)
}

func (m *Mongo) ensureIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)

	indexes := []struct {
		coll *mongo.Collection
		keys bson.D
	}{
		{m.Admins(), bson.D{{Key: "email", Value: 1}}},
		{m.Users(), bson.D{{Key: "email", Value: 1}}},
		{m.Users(), bson.D{{Key: "pid", Value: 1}}},
		{m.IPData(), bson.D{{Key: "ip", Value: 1}}},
	}

	for _, idx := range indexes {
		_, err := idx.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys:    idx.keys,
			Options: unique,
		})
		if err != nil {
			return fmt.Errorf("create index on %s: %w", idx.coll.Name(), err)
		}
	}

	// Non-unique lookup index for the pid join and per-pid queries.
	_, err := m.IPData().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "pid", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("create pid index on %s: %w", CollectionIPData, err)
	}

	return nil
}
