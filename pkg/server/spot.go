package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/sahkovertailu/sahkovertailu/pkg/log"
	"github.com/sahkovertailu/sahkovertailu/pkg/spot"
	"github.com/sahkovertailu/sahkovertailu/pkg/types"
)

// maxHistoryRange limits how much spot history one request can read.
const maxHistoryRange = 7 * 24 * time.Hour

// spotAverages averages the stored spot prices over the configured window.
func (s *Server) spotAverages(ctx context.Context) (types.SpotAverages, error) {
	area := s.spot.Area()
	end := s.now()
	start := end.Add(-s.spotAverageWindow)
	prices, err := s.storage.GetSpotPriceHistory(ctx, area, start, end)
	if err != nil {
		return types.SpotAverages{}, fmt.Errorf("failed to get spot price history: %w", err)
	}
	avg, err := spot.Averages(area, prices, spot.NightWindow())
	if err != nil {
		return types.SpotAverages{}, err
	}
	if avg.SampleCount == 0 {
		log.Ctx(ctx).WarnContext(ctx, "no stored spot prices to average", slog.Time("start", start))
	}
	return avg, nil
}

func (s *Server) handleSpotAverages(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	avg, err := s.spotAverages(ctx)
	if err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to get spot averages", slog.Any("error", err))
		writeJSONError(w, "failed to get spot averages", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Cache-Control", "public, max-age=300")
	writeJSON(w, avg)
}

func (s *Server) handleSpotHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start, end, err := s.parseTimeRange(r)
	if err != nil {
		writeJSONError(w, "invalid time range: "+err.Error(), http.StatusBadRequest)
		return
	}

	area := s.spot.Area()
	prices, err := s.storage.GetSpotPriceHistory(ctx, area, start, end)
	if err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to get spot prices", slog.String("area", area), slog.Any("error", err))
		writeJSONError(w, "failed to get spot prices", http.StatusInternalServerError)
		return
	}
	if prices == nil {
		prices = []types.SpotPrice{}
	}

	// past days never change, anything newer may still be synced
	today := truncateDay(s.now())
	if end.Before(today) {
		w.Header().Set("Cache-Control", "public, max-age=86400")
	} else {
		w.Header().Set("Cache-Control", "public, max-age=60")
	}
	writeJSON(w, prices)
}

// parseTimeRange reads start and end as RFC3339, defaulting to the last 24
// hours.
func (s *Server) parseTimeRange(r *http.Request) (time.Time, time.Time, error) {
	startStr := r.URL.Query().Get("start")
	endStr := r.URL.Query().Get("end")

	if startStr == "" && endStr == "" {
		end := s.now()
		return end.Add(-24 * time.Hour), end, nil
	}
	if startStr == "" || endStr == "" {
		return time.Time{}, time.Time{}, fmt.Errorf("both start and end are required")
	}

	start, err := time.Parse(time.RFC3339, startStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid start time: %w", err)
	}
	end, err := time.Parse(time.RFC3339, endStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid end time: %w", err)
	}
	if !end.After(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("start time must be before end time")
	}
	if end.Sub(start) > maxHistoryRange {
		return time.Time{}, time.Time{}, fmt.Errorf("time range cannot exceed %s", maxHistoryRange)
	}
	return start, end, nil
}
