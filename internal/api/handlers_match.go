// Resonate - Community Media Marketplace
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/resonate

package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/resonate/internal/audience"
	"github.com/tomtom215/resonate/internal/logging"
	"github.com/tomtom215/resonate/internal/matching"
	"github.com/tomtom215/resonate/internal/validation"
)

// MatchCampaign scores publishers for a campaign supplied in the body.
func (h *Handler) MatchCampaign(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req matching.Request
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if !validateRequest(rw, &req) {
		return
	}

	resp, err := h.matcher.Match(r.Context(), req)
	if err != nil {
		h.writeMatchError(rw, r, err)
		return
	}
	rw.Success(resp)
}

// StoredCampaignMatches scores every stored publisher for a stored campaign.
func (h *Handler) StoredCampaignMatches(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	topN, err := getIntParam(r, "top_n", 0)
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}

	id := chi.URLParam(r, "id")
	resp, err := h.matcher.MatchCampaign(r.Context(), id, topN)
	if err != nil {
		if errors.Is(err, audience.ErrNotFound) {
			rw.NotFoundWithDetails("Campaign not found", map[string]string{"campaign_id": sanitizeLogValue(id)})
			return
		}
		h.writeMatchError(rw, r, err)
		return
	}
	rw.Success(resp)
}

func (h *Handler) writeMatchError(rw *ResponseWriter, r *http.Request, err error) {
	var verr *validation.RequestValidationError
	switch {
	case errors.As(err, &verr):
		writeValidationError(rw, verr)
	case errors.Is(err, audience.ErrInvalidCampaign):
		rw.ValidationError(err.Error(), nil)
	case errors.Is(err, matching.ErrInvalidTopN):
		rw.BadRequest(err.Error())
	default:
		logging.Ctx(r.Context()).Error().Err(err).Msg("Match failed")
		rw.InternalError("Match failed")
	}
}
