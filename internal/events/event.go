// Resonate - Community Media Marketplace
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/resonate

package events

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

// StatsRefreshed reports the outcome of one civic refresh cycle.
type StatsRefreshed struct {
	EventID     string            `json:"event_id"`
	Cycle       string            `json:"cycle"`
	RefreshedAt time.Time         `json:"refreshed_at"`
	Families    map[string]string `json:"families"` // family -> fresh, partial, stale, failed
}

// Changed reports whether any family published new statistics.
func (e StatsRefreshed) Changed() bool {
	for _, status := range e.Families {
		if status == "fresh" || status == "partial" {
			return true
		}
	}
	return false
}

// Marshal encodes ev as JSON.
func Marshal(ev StatsRefreshed) ([]byte, error) {
	data, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return data, nil
}

// Unmarshal decodes a StatsRefreshed payload.
func Unmarshal(data []byte) (StatsRefreshed, error) {
	var ev StatsRefreshed
	if err := json.Unmarshal(data, &ev); err != nil {
		return StatsRefreshed{}, fmt.Errorf("unmarshal event: %w", err)
	}
	return ev, nil
}
