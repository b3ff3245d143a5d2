// IPTrack - per-user IP geolocation collection backend
// Copyright 2026 RaadTech
// SPDX-License-Identifier: MIT

// Package geoip proxies IP geolocation lookups to the ipinfo.io Lite API.
//
// The Lite tier returns a reduced attribute set; fields it does not carry
// (currency, languages, calling code, EU status, UTC offset) come back
// nil so the stored record shape stays uniform with client submissions.
package geoip

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"

	"github.com/raadtech/iptrack/internal/config"
	"github.com/raadtech/iptrack/internal/models"
)

// ErrRateLimited means the upstream returned 429. Callers surface it
// with a retry hint rather than a generic failure.
var ErrRateLimited = errors.New("geo api rate limit exceeded")

// Client looks up geolocation data for an IP address.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

// NewClient builds a Client with the configured token and fixed timeout.
func NewClient(cfg config.GeoIPConfig) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    cfg.BaseURL,
		token:      cfg.Token,
	}
}

// liteResponse is the ipinfo.io Lite payload.
type liteResponse struct {
	IP            string   `json:"ip"`
	City          *string  `json:"city"`
	Region        *string  `json:"region"`
	Country       *string  `json:"country"`
	CountryCode   *string  `json:"country_code"`
	ContinentCode *string  `json:"continent_code"`
	Latitude      *float64 `json:"latitude"`
	Longitude     *float64 `json:"longitude"`
	Timezone      *string  `json:"timezone"`
	Postal        *string  `json:"postal"`
	ASN           *string  `json:"asn"`
	ASName        *string  `json:"as_name"`
}

// Lookup fetches geolocation attributes for ip.
func (c *Client) Lookup(ctx context.Context, ip string) (*models.GeoAttributes, error) {
	endpoint := fmt.Sprintf("%s/%s?token=%s", c.baseURL, url.PathEscape(ip), url.QueryEscape(c.token))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build geo request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch geo data: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, ErrRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch geo data: %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	var body liteResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode geo response: %w", err)
	}

	version := "IPv4"
	return &models.GeoAttributes{
		IP:            body.IP,
		City:          body.City,
		Region:        body.Region,
		CountryName:   body.Country,
		CountryCode:   body.CountryCode,
		ContinentCode: body.ContinentCode,
		Latitude:      body.Latitude,
		Longitude:     body.Longitude,
		Timezone:      body.Timezone,
		Postal:        body.Postal,
		ASN:           body.ASN,
		Org:           body.ASName,
		Version:       &version,
	}, nil
}

// Timeout reports the fixed outbound timeout, for startup logging.
func (c *Client) Timeout() time.Duration {
	return c.httpClient.Timeout
}
