// Resonate - Community Media Marketplace
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/resonate

package opendata

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

// SoQLTimeLayout is the floating timestamp format used in $where clauses.
const SoQLTimeLayout = "2006-01-02T15:04:05"

// Dataset describes how to query one upstream dataset.
type Dataset struct {
	ID        string
	DateField string
	Select    string
}

// Since returns a query for rows whose DateField is at or after t.
func (d Dataset) Since(t time.Time) Query {
	q := Query{Select: d.Select}
	if d.DateField != "" && !t.IsZero() {
		q.Where = fmt.Sprintf("%s >= '%s'", d.DateField, t.UTC().Format(SoQLTimeLayout))
		q.Order = d.DateField + " DESC,:id"
	}
	return q
}

// ServiceRequest is one 311 case.
type ServiceRequest struct {
	ID                   string `json:"service_request_id"`
	RequestedAt          string `json:"requested_datetime"`
	ServiceName          string `json:"service_name"`
	ServiceSubtype       string `json:"service_subtype"`
	AnalysisNeighborhood string `json:"analysis_neighborhood"`
	FindNeighborhood     string `json:"neighborhoods_sffind_boundaries"`
}

// Neighborhood prefers the analysis neighborhood, falling back to the
// finer-grained boundary name.
func (r ServiceRequest) Neighborhood() string {
	if r.AnalysisNeighborhood != "" {
		return r.AnalysisNeighborhood
	}
	return r.FindNeighborhood
}

// PoliceIncident is one police incident report.
type PoliceIncident struct {
	ID                   string `json:"incident_id"`
	IncidentAt           string `json:"incident_datetime"`
	Category             string `json:"incident_category"`
	Subcategory          string `json:"incident_subcategory"`
	Description          string `json:"incident_description"`
	AnalysisNeighborhood string `json:"analysis_neighborhood"`
}

// FireIncident is one fire department incident.
type FireIncident struct {
	IncidentNumber       string `json:"incident_number"`
	IncidentDate         string `json:"incident_date"`
	PrimarySituation     string `json:"primary_situation"`
	NeighborhoodDistrict string `json:"neighborhood_district"`
}

// EvictionNotice is one eviction notice with its just-cause flags.
type EvictionNotice struct {
	ID                 string `json:"eviction_id"`
	FileDate           string `json:"file_date"`
	Neighborhood       string `json:"neighborhood"`
	NonPayment         bool   `json:"non_payment"`
	Breach             bool   `json:"breach"`
	Nuisance           bool   `json:"nuisance"`
	IllegalUse         bool   `json:"illegal_use"`
	OwnerMoveIn        bool   `json:"owner_move_in"`
	Demolition         bool   `json:"demolition"`
	CapitalImprovement bool   `json:"capital_improvement"`
	SubstantialRehab   bool   `json:"substantial_rehab"`
	EllisActWithdrawal bool   `json:"ellis_act_withdrawal"`
	CondoConversion    bool   `json:"condo_conversion"`
	OtherCause         bool   `json:"other_cause"`
}

// Dataset descriptors. IDs come from configuration; these carry the fixed
// schema knowledge.
func ServiceRequestDataset(id string) Dataset {
	return Dataset{
		ID:        id,
		DateField: "requested_datetime",
		Select:    "service_request_id,requested_datetime,service_name,service_subtype,analysis_neighborhood,neighborhoods_sffind_boundaries",
	}
}

func PoliceIncidentDataset(id string) Dataset {
	return Dataset{
		ID:        id,
		DateField: "incident_datetime",
		Select:    "incident_id,incident_datetime,incident_category,incident_subcategory,incident_description,analysis_neighborhood",
	}
}

func FireIncidentDataset(id string) Dataset {
	return Dataset{
		ID:        id,
		DateField: "incident_date",
		Select:    "incident_number,incident_date,primary_situation,neighborhood_district",
	}
}

func EvictionDataset(id string) Dataset {
	return Dataset{ID: id, DateField: "file_date"}
}

// Decode converts raw records to T. Records that fail to decode are skipped
// and counted; one bad row must not sink a refresh.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func Decode[T any](records []json.RawMessage, logger zerolog.Logger) ([]T, int) {
	out := make([]T, 0, len(records))
	skipped := 0
	for i, raw := range records {
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			skipped++
			logger.Debug().Err(err).Int("index", i).Msg("Skipping undecodable record")
			continue
		}
		out = append(out, v)
	}
	if skipped > 0 {
		logger.Warn().Int("skipped", skipped).Int("total", len(records)).Msg("Some records could not be decoded")
	}
	return out, skipped
}

// FetchTyped pulls every row of ds since the given time and decodes it. The
// second return value counts rows that could not be decoded.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func FetchTyped[T any](ctx context.Context, f Fetcher, ds Dataset, since time.Time, maxRecords int, logger zerolog.Logger) ([]T, int, Meta, error) {
	res, err := f.FetchAll(ctx, ds.ID, ds.Since(since), maxRecords)
	if err != nil {
		return nil, 0, Meta{}, err
	}
	typed, skipped := Decode[T](res.Records, logger.With().Str("dataset", ds.ID).Logger())
	return typed, skipped, res.Meta, nil
}
