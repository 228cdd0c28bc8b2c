package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/sahkovertailu/sahkovertailu/pkg/log"
	"github.com/sahkovertailu/sahkovertailu/pkg/storage"
	"github.com/sahkovertailu/sahkovertailu/pkg/types"
)

func (s *Server) handleListContracts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	contracts, err := s.storage.ListContracts(ctx)
	if err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to list contracts", slog.Any("error", err))
		writeJSONError(w, "failed to list contracts", http.StatusInternalServerError)
		return
	}
	if contracts == nil {
		contracts = []types.Contract{}
	}
	w.Header().Set("Cache-Control", "public, max-age=300")
	writeJSON(w, contracts)
}

func (s *Server) handleGetContract(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")
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
	writeJSON(w, contract)
}

// handleUpsertContract stores a contract from the importer.
func (s *Server) handleUpsertContract(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")

	var contract types.Contract
	if !decodeJSON(w, r, &contract) {
		return
	}
	if contract.ID == "" {
		contract.ID = id
	}
	if contract.ID != id {
		writeJSONError(w, "contract id does not match path", http.StatusBadRequest)
		return
	}
	contract.UpdatedAt = s.now().UTC()

	if err := s.storage.UpsertContract(ctx, contract); err != nil {
		if errors.Is(err, storage.ErrInvalidContract) {
			writeJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.Ctx(ctx).ErrorContext(ctx, "failed to upsert contract", slog.String("contractID", id), slog.Any("error", err))
		writeJSONError(w, "failed to upsert contract", http.StatusInternalServerError)
		return
	}
	log.Ctx(ctx).InfoContext(ctx, "contract upserted", slog.String("contractID", id))
	writeJSON(w, contract)
}
