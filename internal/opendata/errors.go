// Resonate - Community Media Marketplace
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/resonate

package opendata

import (
	"errors"
	"fmt"
)

// ErrSourceUnavailable matches every upstream failure via errors.Is.
// Callers may retry with backoff; the client itself never retries.
var ErrSourceUnavailable = errors.New("open-data source unavailable")

// ErrInvalidDataset is returned for an empty or malformed dataset id.
var ErrInvalidDataset = errors.New("invalid dataset id")

// Failure reasons carried by SourceUnavailableError.
const (
	ReasonHTTP        = "http"
	ReasonStatus      = "status"
	ReasonDecode      = "decode"
	ReasonTimeout     = "timeout"
	ReasonCircuitOpen = "circuit_open"
	ReasonRateLimit   = "rate_limit"
	ReasonCanceled    = "canceled"
)

// SourceUnavailableError describes why an upstream fetch failed.
type SourceUnavailableError struct {
	Dataset    string
	Reason     string
	StatusCode int
	Err        error
}

func (e *SourceUnavailableError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("dataset %s unavailable (%s, HTTP %d): %v", e.Dataset, e.Reason, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("dataset %s unavailable (%s): %v", e.Dataset, e.Reason, e.Err)
}

func (e *SourceUnavailableError) Unwrap() error {
	return e.Err
}

// Is reports true for ErrSourceUnavailable.
func (e *SourceUnavailableError) Is(target error) bool {
	return target == ErrSourceUnavailable
}

func unavailable(dataset, reason string, status int, err error) *SourceUnavailableError {
	return &SourceUnavailableError{Dataset: dataset, Reason: reason, StatusCode: status, Err: err}
}
