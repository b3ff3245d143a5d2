// IPTrack - per-user IP geolocation collection backend
// Copyright 2026 RaadTech
// SPDX-License-Identifier: MIT

package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is a registered end user whose IP activity is collected.
// Email and PID are globally unique. PID is immutable after creation.
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name      string             `bson:"name" json:"name"`
	Email     string             `bson:"email" json:"email"`
	Phone     string             `bson:"phone" json:"phone"`
	Shift     Shift              `bson:"shift" json:"shift"`
	PID       string             `bson:"pid" json:"pid"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// UserStats is the aggregate view returned by the users-stats endpoint.
type UserStats struct {
	TotalUsers int64        `json:"totalUsers"`
	ShiftStats []ShiftCount `json:"shiftStats"`
}

// ShiftCount is a per-shift user count, sorted ascending by shift value.
type ShiftCount struct {
	Shift Shift `bson:"_id" json:"shift"`
	Count int64 `bson:"count" json:"count"`
}
