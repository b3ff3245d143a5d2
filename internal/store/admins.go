// IPTrack - per-user IP geolocation collection backend
// Copyright 2026 RaadTech
// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/raadtech/iptrack/internal/database"
	"github.com/raadtech/iptrack/internal/models"
)

// Admins is the repository for admin accounts.
type Admins struct {
	coll *mongo.Collection
}

// NewAdmins creates the admin repository over the shared Mongo handle.
func NewAdmins(db *database.Mongo) *Admins {
	return &Admins{coll: db.Admins()}
}

// Create inserts a new admin. The password must already be hashed.
// Returns ErrDuplicateEmail when the email is taken.
func (r *Admins) Create(ctx context.Context, admin *models.Admin) (primitive.ObjectID, error) {
	count, err := r.coll.CountDocuments(ctx, bson.M{"email": admin.Email})
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("check admin email: %w", err)
	}
	if count > 0 {
		return primitive.NilObjectID, ErrDuplicateEmail
	}

	admin.Role = models.RoleAdmin
	admin.IsActive = true
	admin.CreatedAt = time.Now().UTC()
	admin.LastLogin = nil

	res, err := r.coll.InsertOne(ctx, admin)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, ErrDuplicateEmail
		}
		return primitive.NilObjectID, fmt.Errorf("insert admin: %w", err)
	}

	id, _ := res.InsertedID.(primitive.ObjectID)
	return id, nil
}

// FindByEmail returns the admin with the given email, including the
// password hash for credential checks. Returns ErrNotFound when absent.
func (r *Admins) FindByEmail(ctx context.Context, email string) (*models.Admin, error) {
	var admin models.Admin
	err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&admin)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find admin by email: %w", err)
	}
	return &admin, nil
}

// FindByID returns the admin with the given id, with the password hash
// projected out. Returns ErrNotFound when absent.
func (r *Admins) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Admin, error) {
	opts := options.FindOne().SetProjection(bson.M{"password": 0})

	var admin models.Admin
	err := r.coll.FindOne(ctx, bson.M{"_id": id}, opts).Decode(&admin)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find admin by id: %w", err)
	}
	return &admin, nil
}

// UpdateLastLogin stamps the admin's last successful login time.
func (r *Admins) UpdateLastLogin(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"lastLogin": time.Now().UTC()}},
	)
	if err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	return nil
}

// UpdatePassword replaces the stored password hash and stamps updatedAt.
// Returns ErrNotFound when no document matched.
func (r *Admins) UpdatePassword(ctx context.Context, id primitive.ObjectID, hashedPassword string) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{
			"password":  hashedPassword,
			"updatedAt": time.Now().UTC(),
		}},
	)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
