package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/sahkovertailu/sahkovertailu/pkg/compare"
	"github.com/sahkovertailu/sahkovertailu/pkg/log"
	"github.com/sahkovertailu/sahkovertailu/pkg/pricing"
	"github.com/sahkovertailu/sahkovertailu/pkg/types"
)

type compareRequest struct {
	Usage   *types.EnergyUsage `json:"usage"`
	Profile string             `json:"profile"`
	// Limit keeps only the cheapest contracts when positive.
	Limit int `json:"limit"`
}

type compareResponse struct {
	Usage       types.EnergyUsage    `json:"usage"`
	SpotAverage types.SpotAverages   `json:"spotAverage"`
	Comparisons []compare.Comparison `json:"comparisons"`
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req compareRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Limit < 0 {
		writeJSONError(w, "limit cannot be negative", http.StatusBadRequest)
		return
	}
	u, ok := resolveUsage(w, req.Usage, req.Profile)
	if !ok {
		return
	}

	contracts, err := s.storage.ListContracts(ctx)
	if err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to list contracts", slog.Any("error", err))
		writeJSONError(w, "failed to list contracts", http.StatusInternalServerError)
		return
	}
	avg, err := s.spotAverages(ctx)
	if err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to get spot averages", slog.Any("error", err))
		writeJSONError(w, "failed to get spot averages", http.StatusInternalServerError)
		return
	}

	comparisons, err := s.comparer.Compare(ctx, contracts, u, avg)
	if err != nil {
		if errors.Is(err, pricing.ErrInvalidHeatingProfile) {
			writeJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.Ctx(ctx).ErrorContext(ctx, "failed to compare contracts", slog.Any("error", err))
		writeJSONError(w, "failed to compare contracts", http.StatusInternalServerError)
		return
	}
	if req.Limit > 0 && len(comparisons) > req.Limit {
		comparisons = comparisons[:req.Limit]
	}

	writeJSON(w, compareResponse{
		Usage:       u,
		SpotAverage: avg,
		Comparisons: comparisons,
	})
}
