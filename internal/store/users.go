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

// Users is the repository for end users.
type Users struct {
	coll *mongo.Collection
}

// NewUsers creates the user repository over the shared Mongo handle.
func NewUsers(db *database.Mongo) *Users {
	return &Users{coll: db.Users()}
}

// UserUpdate carries the mutable user fields. PID is deliberately
// absent: it is immutable after creation.
type UserUpdate struct {
	Name  string
	Email string
	Phone string
	Shift models.Shift
}

// Create inserts a new user. Email and PID are pre-checked so the
// conflict error identifies which field collided.
func (r *Users) Create(ctx context.Context, user *models.User) (primitive.ObjectID, error) {
	count, err := r.coll.CountDocuments(ctx, bson.M{"email": user.Email})
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("check user email: %w", err)
	}
	if count > 0 {
		return primitive.NilObjectID, ErrDuplicateEmail
	}

	count, err = r.coll.CountDocuments(ctx, bson.M{"pid": user.PID})
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("check user pid: %w", err)
	}
	if count > 0 {
		return primitive.NilObjectID, ErrDuplicatePID
	}

	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	res, err := r.coll.InsertOne(ctx, user)
	if err != nil {
		// A lost race still surfaces as the right conflict via the
		// unique indexes, though without field attribution.
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, ErrDuplicateEmail
		}
		return primitive.NilObjectID, fmt.Errorf("insert user: %w", err)
	}

	id, _ := res.InsertedID.(primitive.ObjectID)
	return id, nil
}

// List returns one page of users sorted by creation time descending.
func (r *Users) List(ctx context.Context, page, limit int) ([]models.User, models.Pagination, error) {
	skip := int64((page - 1) * limit)

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(skip).
		SetLimit(int64(limit))

	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, models.Pagination{}, fmt.Errorf("list users: %w", err)
	}

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, models.Pagination{}, fmt.Errorf("decode users: %w", err)
	}

	total, err := r.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, models.Pagination{}, fmt.Errorf("count users: %w", err)
	}

	return users, models.NewPagination(page, limit, total), nil
}

// FindByID returns the user with the given id, or ErrNotFound.
func (r *Users) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// FindByEmail returns the user with the given email, or ErrNotFound.
func (r *Users) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

// FindByPID returns the user with the given personal ID, or ErrNotFound.
func (r *Users) FindByPID(ctx context.Context, pid string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"pid": pid})
}

func (r *Users) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	err := r.coll.FindOne(ctx, filter).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &user, nil
}

// Update applies the mutable fields to the user and stamps updatedAt.
// Returns ErrNotFound when no document matched and ErrDuplicateEmail
// when the new email belongs to another user.
func (r *Users) Update(ctx context.Context, id primitive.ObjectID, update UserUpdate) error {
	count, err := r.coll.CountDocuments(ctx, bson.M{
		"email": update.Email,
		"_id":   bson.M{"$ne": id},
	})
	if err != nil {
		return fmt.Errorf("check user email: %w", err)
	}
	if count > 0 {
		return ErrDuplicateEmail
	}

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{
			"name":      update.Name,
			"email":     update.Email,
			"phone":     update.Phone,
			"shift":     update.Shift,
			"updatedAt": time.Now().UTC(),
		}},
	)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the user. Hard delete, no tombstone.
// Returns ErrNotFound when no document matched.
func (r *Users) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Stats returns the total user count and per-shift counts sorted by
// shift value ascending.
func (r *Users) Stats(ctx context.Context) (*models.UserStats, error) {
	total, err := r.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$shift"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate shift stats: %w", err)
	}

	shiftStats := []models.ShiftCount{}
	if err := cursor.All(ctx, &shiftStats); err != nil {
		return nil, fmt.Errorf("decode shift stats: %w", err)
	}

	return &models.UserStats{TotalUsers: total, ShiftStats: shiftStats}, nil
}
