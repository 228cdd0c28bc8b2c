package server

import (
	"net/http"

	"github.com/sahkovertailu/sahkovertailu/pkg/usage"
)

func (s *Server) handleUsageProfiles(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "public, max-age=86400")
	writeJSON(w, usage.Profiles())
}
