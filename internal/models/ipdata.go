// IPTrack - per-user IP geolocation collection backend
// Copyright 2026 RaadTech
// SPDX-License-Identifier: MIT

package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GeoAttributes is the geolocation attribute set reported for an IP
// address. Fields mirror the ipinfo-style payload submitted by clients;
// most are optional and pointer-typed so absent values persist as null.
type GeoAttributes struct {
	IP                 string   `bson:"ip" json:"ip"`
	Network            *string  `bson:"network" json:"network"`
	Version            *string  `bson:"version" json:"version"`
	City               *string  `bson:"city" json:"city"`
	Region             *string  `bson:"region" json:"region"`
	RegionCode         *string  `bson:"region_code" json:"region_code"`
	Country            *string  `bson:"country" json:"country"`
	CountryName        *string  `bson:"country_name" json:"country_name"`
	CountryCode        *string  `bson:"country_code" json:"country_code"`
	CountryCodeISO3    *string  `bson:"country_code_iso3" json:"country_code_iso3"`
	CountryCapital     *string  `bson:"country_capital" json:"country_capital"`
	CountryTLD         *string  `bson:"country_tld" json:"country_tld"`
	ContinentCode      *string  `bson:"continent_code" json:"continent_code"`
	InEU               *bool    `bson:"in_eu" json:"in_eu"`
	Postal             *string  `bson:"postal" json:"postal"`
	Latitude           *float64 `bson:"latitude" json:"latitude"`
	Longitude          *float64 `bson:"longitude" json:"longitude"`
	Timezone           *string  `bson:"timezone" json:"timezone"`
	UTCOffset          *string  `bson:"utc_offset" json:"utc_offset"`
	CountryCallingCode *string  `bson:"country_calling_code" json:"country_calling_code"`
	Currency           *string  `bson:"currency" json:"currency"`
	CurrencyName       *string  `bson:"currency_name" json:"currency_name"`
	Languages          *string  `bson:"languages" json:"languages"`
	CountryArea        *float64 `bson:"country_area" json:"country_area"`
	CountryPopulation  *int64   `bson:"country_population" json:"country_population"`
	ASN                *string  `bson:"asn" json:"asn"`
	Org                *string  `bson:"org" json:"org"`
}

// IPData is one stored geolocation record, tied to a user by PID.
// The IP address is globally unique across all records. Records are
// immutable after creation apart from deletion.
type IPData struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	PID           string             `bson:"pid" json:"pid"`
	RecordType    RecordType         `bson:"record_type" json:"record_type"`
	GeoAttributes `bson:",inline" json:",inline"`
	CreatedAt     time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time `bson:"updatedAt" json:"updatedAt"`
}

// UserSummary is the nested user object the aggregation layer attaches
// to each listed IP record. ShiftLabel and ShiftTime are derived inside
// the pipeline so exports carry them without post-processing.
type UserSummary struct {
	Name       *string `bson:"name" json:"name"`
	Email      *string `bson:"email" json:"email"`
	Shift      *Shift  `bson:"shift" json:"shift"`
	ShiftLabel string  `bson:"shiftLabel" json:"shiftLabel"`
	ShiftTime  string  `bson:"shiftTime" json:"shiftTime"`
}

// EnrichedIPData is an IP record joined with its owning user.
type EnrichedIPData struct {
	IPData `bson:",inline" json:",inline"`
	User   UserSummary `bson:"user" json:"user"`
}

// IPDataStats is the aggregate view returned by the ip-data-stats endpoint.
type IPDataStats struct {
	TotalRecords int64        `json:"totalRecords"`
	TopCountries []ValueCount `json:"topCountries"`
	TopCities    []ValueCount `json:"topCities"`
}

// ValueCount is a grouped count pair sorted descending by count.
type ValueCount struct {
	Value *string `bson:"_id" json:"value"`
	Count int64   `bson:"count" json:"count"`
}

// Pagination describes one page of a listing.
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

// NewPagination computes page metadata with Pages = ceil(total/limit).
func NewPagination(page, limit int, total int64) Pagination {
	pages := 0
	if limit > 0 {
		pages = int((total + int64(limit) - 1) / int64(limit))
	}
	return Pagination{Page: page, Limit: limit, Total: total, Pages: pages}
}
