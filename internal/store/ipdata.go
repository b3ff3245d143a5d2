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

	"github.com/raadtech/iptrack/internal/database"
	"github.com/raadtech/iptrack/internal/models"
)

// IPRecords is the repository for stored IP geolocation records.
type IPRecords struct {
	coll *mongo.Collection
}

// NewIPRecords creates the IP record repository over the shared Mongo handle.
func NewIPRecords(db *database.Mongo) *IPRecords {
	return &IPRecords{coll: db.IPData()}
}

// Insert stores a new IP record. Returns ErrDuplicateIP when the address
// is already stored, including when a concurrent insert wins the race
// past the caller's pre-check.
func (r *IPRecords) Insert(ctx context.Context, record *models.IPData) (primitive.ObjectID, error) {
	now := time.Now().UTC()
	record.CreatedAt = now
	record.UpdatedAt = now

	res, err := r.coll.InsertOne(ctx, record)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, ErrDuplicateIP
		}
		return primitive.NilObjectID, fmt.Errorf("insert ip record: %w", err)
	}

	id, _ := res.InsertedID.(primitive.ObjectID)
	return id, nil
}

// FindByPID returns one record for the given PID, or ErrNotFound.
func (r *IPRecords) FindByPID(ctx context.Context, pid string) (*models.IPData, error) {
	return r.findOne(ctx, bson.M{"pid": pid})
}

// FindByIP returns the record holding the given address, or ErrNotFound.
func (r *IPRecords) FindByIP(ctx context.Context, ip string) (*models.IPData, error) {
	return r.findOne(ctx, bson.M{"ip": ip})
}

func (r *IPRecords) findOne(ctx context.Context, filter bson.M) (*models.IPData, error) {
	var record models.IPData
	err := r.coll.FindOne(ctx, filter).Decode(&record)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find ip record: %w", err)
	}
	return &record, nil
}

// List returns one page of user-enriched records, optionally filtered by
// record type. Records whose PID matches no user are kept with an empty
// user association.
func (r *IPRecords) List(ctx context.Context, page, limit int, recordType models.RecordType) ([]models.EnrichedIPData, models.Pagination, error) {
	skip := int64((page - 1) * limit)

	data, err := r.aggregate(ctx, listPipeline(recordType, skip, int64(limit)))
	if err != nil {
		return nil, models.Pagination{}, err
	}

	total, err := r.count(ctx, listCountPipeline(recordType))
	if err != nil {
		return nil, models.Pagination{}, err
	}

	return data, models.NewPagination(page, limit, total), nil
}

// ListByShift returns one page of records whose owning user works the
// given shift. Records without an owning user are excluded on this path.
func (r *IPRecords) ListByShift(ctx context.Context, shift models.Shift, page, limit int, recordType models.RecordType) ([]models.EnrichedIPData, models.Pagination, error) {
	skip := int64((page - 1) * limit)

	data, err := r.aggregate(ctx, shiftPipeline(shift, recordType, skip, int64(limit)))
	if err != nil {
		return nil, models.Pagination{}, err
	}

	total, err := r.count(ctx, shiftCountPipeline(shift, recordType))
	if err != nil {
		return nil, models.Pagination{}, err
	}

	return data, models.NewPagination(page, limit, total), nil
}

// Export returns every matching enriched record, sorted by creation time
// descending, with no paging. Left-join semantics as in List.
func (r *IPRecords) Export(ctx context.Context, recordType models.RecordType) ([]models.EnrichedIPData, error) {
	return r.aggregate(ctx, listPipeline(recordType, 0, -1))
}

func (r *IPRecords) aggregate(ctx context.Context, pipeline mongo.Pipeline) ([]models.EnrichedIPData, error) {
	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate ip records: %w", err)
	}

	data := []models.EnrichedIPData{}
	if err := cursor.All(ctx, &data); err != nil {
		return nil, fmt.Errorf("decode ip records: %w", err)
	}
	return data, nil
}

func (r *IPRecords) count(ctx context.Context, pipeline mongo.Pipeline) (int64, error) {
	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("count ip records: %w", err)
	}

	var results []struct {
		Total int64 `bson:"total"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return 0, fmt.Errorf("decode count: %w", err)
	}
	if len(results) == 0 {
		return 0, nil
	}
	return results[0].Total, nil
}

// Stats returns the total record count plus the top 10 countries and
// cities by record count.
func (r *IPRecords) Stats(ctx context.Context) (*models.IPDataStats, error) {
	total, err := r.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("count ip records: %w", err)
	}

	countries, err := r.groupTop(ctx, "country_name")
	if err != nil {
		return nil, err
	}

	cities, err := r.groupTop(ctx, "city")
	if err != nil {
		return nil, err
	}

	return &models.IPDataStats{
		TotalRecords: total,
		TopCountries: countries,
		TopCities:    cities,
	}, nil
}

func (r *IPRecords) groupTop(ctx context.Context, field string) ([]models.ValueCount, error) {
	cursor, err := r.coll.Aggregate(ctx, groupTopPipeline(field, 10))
	if err != nil {
		return nil, fmt.Errorf("aggregate %s stats: %w", field, err)
	}

	stats := []models.ValueCount{}
	if err := cursor.All(ctx, &stats); err != nil {
		return nil, fmt.Errorf("decode %s stats: %w", field, err)
	}
	return stats, nil
}

// DeleteByPID removes one record for the given PID.
// Returns ErrNotFound when nothing matched.
func (r *IPRecords) DeleteByPID(ctx context.Context, pid string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"pid": pid})
	if err != nil {
		return fmt.Errorf("delete ip record: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteAll removes every record and returns how many were deleted.
func (r *IPRecords) DeleteAll(ctx context.Context) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("delete all ip records: %w", err)
	}
	return res.DeletedCount, nil
}
