package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/sahkovertailu/sahkovertailu/pkg/compare"
	"github.com/sahkovertailu/sahkovertailu/pkg/log"
	"github.com/sahkovertailu/sahkovertailu/pkg/pricing"
	"github.com/sahkovertailu/sahkovertailu/pkg/storage"
	"github.com/sahkovertailu/sahkovertailu/pkg/types"
	"github.com/sahkovertailu/sahkovertailu/pkg/usage"
)

type calculateRequest struct {
	PriceComponents []types.PriceComponent `json:"priceComponents"`
	PricingModel    types.PricingModel     `json:"pricingModel"`
	Metering        string                 `json:"metering"`

	Usage   *types.EnergyUsage `json:"usage"`
	Profile string             `json:"profile"`

	SpotPriceDay   *float64 `json:"spotPriceDay"`
	SpotPriceNight *float64 `json:"spotPriceNight"`
	// UseSpotAverages fills missing spot prices from the stored averages.
	UseSpotAverages bool `json:"useSpotAverages"`
}

// resolveUsage picks the named profile or the explicit usage. It writes the
// error response and returns false if neither is usable.
func resolveUsage(w http.ResponseWriter, u *types.EnergyUsage, profile string) (types.EnergyUsage, bool) {
	if profile != "" {
		p, err := usage.Profile(profile)
		if err != nil {
			writeJSONError(w, err.Error(), http.StatusBadRequest)
			return types.EnergyUsage{}, false
		}
		return p.Usage, true
	}
	if u == nil {
		writeJSONError(w, "usage or profile is required", http.StatusBadRequest)
		return types.EnergyUsage{}, false
	}
	return *u, true
}

func writePricingError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	if errors.Is(err, pricing.ErrInvalidHeatingProfile) {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	log.Ctx(ctx).ErrorContext(ctx, "failed to calculate pricing", slog.Any("error", err))
	writeJSONError(w, "failed to calculate pricing", http.StatusInternalServerError)
}

func (s *Server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req calculateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	u, ok := resolveUsage(w, req.Usage, req.Profile)
	if !ok {
		return
	}

	spotDay, spotNight := req.SpotPriceDay, req.SpotPriceNight
	if req.UseSpotAverages && (spotDay == nil || spotNight == nil) {
		avg, err := s.spotAverages(ctx)
		if err != nil {
			log.Ctx(ctx).ErrorContext(ctx, "failed to get spot averages", slog.Any("error", err))
			writeJSONError(w, "failed to get spot averages", http.StatusInternalServerError)
			return
		}
		if spotDay == nil {
			spotDay = avg.Day
		}
		if spotNight == nil {
			spotNight = avg.Night
		}
	}

	meta := types.ContractMeta{
		PricingModel: req.PricingModel,
		Metering:     req.Metering,
	}
	res, err := pricing.Calculate(req.PriceComponents, meta, u, spotDay, spotNight)
	if err != nil {
		writePricingError(w, r, err)
		return
	}
	writeJSON(w, res)
}

type contractPricingResponse struct {
	Contract types.Contract              `json:"contract"`
	Profile  string                      `json:"profile"`
	Usage    types.EnergyUsage           `json:"usage"`
	Result   types.ContractPricingResult `json:"result"`
}

func (s *Server) handleContractPricing(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")

	profile := r.URL.Query().Get("profile")
	if profile == "" {
		profile = usage.ProfileApartment
	}
	u, ok := resolveUsage(w, nil, profile)
	if !ok {
		return
	}

	contract, err := s.storage.GetContract(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrContractNotFound) {
			writeJSONError(w, "contract not found", http.StatusNotFound)
			return
		}
		log.Ctx(ctx).ErrorContext(ctx, "failed to get contract", slog.String("contractID", id), slog.Any("error", err))
		writeJSONError(w, "failed to get contract", http.StatusInternalServerError)
		return
	}

	components := compare.LatestComponents(contract.PriceComponents)
	meta := contract.Meta()

	// only spot contracts need the stored averages
	var avg types.SpotAverages
	if pricing.IsSpot(pricing.ExtractRates(components), meta) {
		avg, err = s.spotAverages(ctx)
		if err != nil {
			log.Ctx(ctx).ErrorContext(ctx, "failed to get spot averages", slog.Any("error", err))
			writeJSONError(w, "failed to get spot averages", http.StatusInternalServerError)
			return
		}
	}

	res, err := pricing.Calculate(components, meta, u, avg.Day, avg.Night)
	if err != nil {
		writePricingError(w, r, err)
		return
	}
	writeJSON(w, contractPricingResponse{
		Contract: contract,
		Profile:  profile,
		Usage:    u,
		Result:   res,
	})
}
