package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/sahkovertailu/sahkovertailu/pkg/log"
	"github.com/sahkovertailu/sahkovertailu/pkg/spot"
	"github.com/sahkovertailu/sahkovertailu/pkg/types"
)

// backfillDays is how far back an empty or outdated history is synced.
const backfillDays = 5

type updateResponse struct {
	Area          string    `json:"area"`
	Since         time.Time `json:"since"`
	Until         time.Time `json:"until"`
	Synced        int       `json:"synced"`
	FailedBatches int       `json:"failedBatches"`
}

// handleUpdate syncs spot prices from the providers into storage. It is called
// periodically by a scheduler. Day-ahead prices for tomorrow are fetched too
// once they are published.
func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	area := s.spot.Area()

	now := s.now().In(spot.Location())
	syncStart := truncateDay(now.AddDate(0, 0, -backfillDays))
	until := truncateDay(now).AddDate(0, 0, 2)

	lastTime, lastVersion, err := s.storage.GetLatestSpotPriceTime(ctx, area)
	if err != nil {
		log.Ctx(ctx).WarnContext(ctx, "failed to get latest spot price time", slog.Any("error", err))
	}
	// the last hour is refetched in case it was stored before all of its
	// intervals were published
	if !lastTime.IsZero() && lastVersion >= types.CurrentSpotPriceVersion && lastTime.After(syncStart) {
		syncStart = lastTime.Truncate(time.Hour)
	} else if !lastTime.IsZero() && lastVersion < types.CurrentSpotPriceVersion {
		log.Ctx(ctx).InfoContext(
			ctx,
			"backfilling spot prices due to version mismatch",
			slog.Int("lastVersion", lastVersion),
			slog.Int("currentVersion", types.CurrentSpotPriceVersion),
		)
	}

	log.Ctx(ctx).DebugContext(ctx, "syncing spot prices", slog.Time("since", syncStart), slog.Time("until", until))

	res := updateResponse{
		Area:  area,
		Since: syncStart,
		Until: until,
	}
	for t := syncStart; t.Before(until); t = t.Add(24 * time.Hour) {
		end := t.Add(24 * time.Hour)
		if end.After(until) {
			end = until
		}

		prices, err := s.spot.Fallback(ctx, t, end)
		if err != nil {
			log.Ctx(ctx).ErrorContext(ctx, "failed to get spot prices", slog.Any("error", err), slog.Time("start", t), slog.Time("end", end))
			res.FailedBatches++
			continue
		}
		if len(prices) == 0 {
			// tomorrow is not published until the afternoon
			log.Ctx(ctx).DebugContext(ctx, "no spot prices yet", slog.Time("start", t))
			continue
		}
		if err := s.storage.UpsertSpotPrices(ctx, area, prices, types.CurrentSpotPriceVersion); err != nil {
			log.Ctx(ctx).ErrorContext(ctx, "failed to upsert spot prices", slog.Any("error", err), slog.Time("start", t))
			res.FailedBatches++
			continue
		}
		res.Synced += len(prices)
	}

	log.Ctx(ctx).InfoContext(
		ctx,
		"spot prices synced",
		slog.Int("synced", res.Synced),
		slog.Int("failedBatches", res.FailedBatches),
	)
	if res.Synced == 0 && res.FailedBatches > 0 {
		writeJSONError(w, "failed to sync spot prices", http.StatusBadGateway)
		return
	}
	writeJSON(w, res)
}
