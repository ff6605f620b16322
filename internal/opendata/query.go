// Resonate - Community Media Marketplace
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/resonate

package opendata

import (
	"net/url"
	"regexp"
	"strconv"
)

// MaxPageSize is the provider's cap on $limit. Larger pulls page via Offset.
const MaxPageSize = 50000

var datasetIDPattern = regexp.MustCompile(`^[a-z0-9]{4}-[a-z0-9]{4}$`)

// Query is a SoQL query. Zero fields are omitted from the request.
type Query struct {
	Where  string `json:"where,omitempty"`
	Select string `json:"select,omitempty"`
	Order  string `json:"order,omitempty"`
	Limit  int    `json:"limit,omitempty"`
	Offset int    `json:"offset,omitempty"`
}

// Normalized returns q with Limit clamped to MaxPageSize and negatives zeroed.
func (q Query) Normalized() Query {
	if q.Limit > MaxPageSize {
		q.Limit = MaxPageSize
	}
	if q.Limit < 0 {
		q.Limit = 0
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	return q
}

// Values encodes the query as SoQL URL parameters.
func (q Query) Values() url.Values {
	q = q.Normalized()
	v := url.Values{}
	if q.Where != "" {
		v.Set("$where", q.Where)
	}
	if q.Select != "" {
		v.Set("$select", q.Select)
	}
	if q.Order != "" {
		v.Set("$order", q.Order)
	}
	if q.Limit > 0 {
		v.Set("$limit", strconv.Itoa(q.Limit))
	}
	if q.Offset > 0 {
		v.Set("$offset", strconv.Itoa(q.Offset))
	}
	return v
}

// CacheKey is the dataset id plus the sorted, encoded parameters. Two
// queries that send the same request share a key.
func CacheKey(datasetID string, q Query) string {
	return "opendata:" + datasetID + "?" + q.Values().Encode()
}

// ValidDatasetID reports whether id looks like a four-by-four dataset id.
func ValidDatasetID(id string) bool {
	return datasetIDPattern.MatchString(id)
}
