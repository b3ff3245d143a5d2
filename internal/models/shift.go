// IPTrack - per-user IP geolocation collection backend
// Copyright 2026 RaadTech
// SPDX-License-Identifier: MIT

// Package models defines the persisted entities (User, Admin, IPData) and
// the enums and derived shapes shared by the store and API layers.
package models

// Shift identifies a user's working shift.
type Shift int

// Shift assignments.
const (
	ShiftMorning Shift = 1
	ShiftEvening Shift = 2
	ShiftNight   Shift = 3
)

// Valid reports whether s is one of the three known shifts.
func (s Shift) Valid() bool {
	return s == ShiftMorning || s == ShiftEvening || s == ShiftNight
}

// Label returns the human-readable shift name, or "Unknown" for any
// value outside the enum.
func (s Shift) Label() string {
	switch s {
	case ShiftMorning:
		return "Morning"
	case ShiftEvening:
		return "Evening"
	case ShiftNight:
		return "Night"
	default:
		return "Unknown"
	}
}

// TimeRange returns the clock range covered by the shift, or "Unknown"
// for any value outside the enum.
func (s Shift) TimeRange() string {
	switch s {
	case ShiftMorning:
		return "8:00 AM - 4:00 PM"
	case ShiftEvening:
		return "4:00 PM - 12:00 AM"
	case ShiftNight:
		return "12:00 AM - 8:00 AM"
	default:
		return "Unknown"
	}
}

// RecordType classifies how an IP record was captured.
type RecordType string

// Record types.
const (
	RecordTypeSearch  RecordType = "Search"
	RecordTypeSession RecordType = "Session"
	RecordTypeClick   RecordType = "Click"

	// RecordTypeAll is the sentinel meaning "no record type filter".
	RecordTypeAll RecordType = "All"
)

// Valid reports whether t is a storable record type. The sentinel
// RecordTypeAll is a filter value, not a storable one.
func (t RecordType) Valid() bool {
	return t == RecordTypeSearch || t == RecordTypeSession || t == RecordTypeClick
}

// IsFilter reports whether t narrows a listing. Empty string and
// RecordTypeAll both mean no filtering.
func (t RecordType) IsFilter() bool {
	return t != "" && t != RecordTypeAll
}
