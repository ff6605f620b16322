// Resonate - Community Media Marketplace
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/resonate

package audience

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/goccy/go-json"
)

// ErrNotFound is returned for unknown publisher or campaign ids.
var ErrNotFound = errors.New("not found")

// Store is an in-memory, concurrency-safe view of publisher and campaign
// records. Publishers are stored as given, malformed or not; the matching
// engine decides what to skip.
type Store struct {
	mu         sync.RWMutex
	publishers map[string]Publisher
	campaigns  map[string]Campaign
	revision   uint64
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		publishers: make(map[string]Publisher),
		campaigns:  make(map[string]Campaign),
	}
}

// UpsertPublisher inserts or replaces a publisher by id.
func (s *Store) UpsertPublisher(p Publisher) error {
	if p.ID == "" {
		return errors.New("publisher id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.publishers[p.ID] = p
	s.revision++
	return nil
}

// Publisher returns one publisher.
func (s *Store) Publisher(id string) (Publisher, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.publishers[id]
	if !ok {
		return Publisher{}, fmt.Errorf("publisher %q: %w", id, ErrNotFound)
	}
	return p, nil
}

// Publishers returns every publisher sorted by id.
func (s *Store) Publishers() []Publisher {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Publisher, 0, len(s.publishers))
	for _, p := range s.publishers {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// PublishersByID returns the requested publishers in id order and the ids
// that were not found.
func (s *Store) PublishersByID(ids []string) ([]Publisher, []string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]struct{}, len(ids))
	var found []Publisher
	var missing []string
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if p, ok := s.publishers[id]; ok {
			found = append(found, p)
		} else {
			missing = append(missing, id)
		}
	}
	sort.Slice(found, func(i, j int) bool { return found[i].ID < found[j].ID })
	sort.Strings(missing)
	return found, missing
}

// DeletePublisher removes a publisher. Deleting an unknown id is a no-op.
func (s *Store) DeletePublisher(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.publishers[id]; ok {
		delete(s.publishers, id)
		s.revision++
	}
}

// UpsertCampaign validates and stores a campaign.
func (s *Store) UpsertCampaign(c Campaign) error {
	if err := c.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.campaigns[c.ID] = c
	s.revision++
	return nil
}

// Campaign returns one campaign.
func (s *Store) Campaign(id string) (Campaign, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.campaigns[id]
	if !ok {
		return Campaign{}, fmt.Errorf("campaign %q: %w", id, ErrNotFound)
	}
	return c, nil
}

// Campaigns returns every campaign sorted by id.
func (s *Store) Campaigns() []Campaign {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Campaign, 0, len(s.campaigns))
	for _, c := range s.campaigns {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Counts returns the number of publishers and campaigns.
func (s *Store) Counts() (publishers, campaigns int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.publishers), len(s.campaigns)
}

// Revision increases on every write. Cached match results are keyed on it.
func (s *Store) Revision() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revision
}

// SeedFile is the on-disk layout read by LoadSeedFile.
type SeedFile struct {
	Publishers []Publisher `json:"publishers"`
	Campaigns  []Campaign  `json:"campaigns"`
}

// LoadSeedFile reads a JSON seed file into the store. Campaigns are
// validated; publishers are stored as-is. The whole file is rejected if any
// campaign is invalid.
func (s *Store) LoadSeedFile(path string) (publishers, campaigns int, err error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from operator configuration
	if err != nil {
		return 0, 0, fmt.Errorf("read seed file: %w", err)
	}
	var seed SeedFile
	if err := json.Unmarshal(data, &seed); err != nil {
		return 0, 0, fmt.Errorf("parse seed file %s: %w", path, err)
	}
	for i := range seed.Campaigns {
		if err := seed.Campaigns[i].Validate(); err != nil {
			return 0, 0, fmt.Errorf("seed campaign %d: %w", i, err)
		}
	}
	for i, p := range seed.Publishers {
		if p.ID == "" {
			return 0, 0, fmt.Errorf("seed publisher %d: id is required", i)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range seed.Publishers {
		s.publishers[p.ID] = p
	}
	for _, c := range seed.Campaigns {
		s.campaigns[c.ID] = c
	}
	s.revision++
	return len(seed.Publishers), len(seed.Campaigns), nil
}
