// IPTrack - per-user IP geolocation collection backend
// Copyright 2026 RaadTech
// SPDX-License-Identifier: MIT

package models

// APIResponse is the JSON envelope every endpoint returns.
type APIResponse struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message,omitempty"`
	Data       interface{} `json:"data,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`

	// Error is a machine-readable error code, set on failures that
	// clients branch on (e.g. "rate_limit_exceeded", "missing_ip").
	Error string `json:"error,omitempty"`

	// Details carries diagnostic detail outside production mode.
	Details string `json:"details,omitempty"`

	// RetryAfter is a retry hint in seconds for rate-limited upstreams.
	RetryAfter int `json:"retryAfter,omitempty"`
}
