// IPTrack - per-user IP geolocation collection backend
// Copyright 2026 RaadTech
// SPDX-License-Identifier: MIT

// Package store implements the MongoDB repositories for admins, users and
// IP records, including the aggregation pipelines that join IP records to
// their owning users for the admin listings and exports.
package store

import "errors"

// Sentinel errors mapped to HTTP statuses at the route boundary.
var (
	// ErrNotFound means the requested document does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateEmail means the email is already taken.
	ErrDuplicateEmail = errors.New("email already exists")

	// ErrDuplicatePID means the personal ID is already taken.
	ErrDuplicatePID = errors.New("pid already exists")

	// ErrDuplicateIP means the IP address is already stored.
	ErrDuplicateIP = errors.New("ip address already exists")
)
