// Package server is the HTTP API for pricing and comparing electricity
// contracts.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/NYTimes/gziphandler"
	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/levenlabs/go-lflag"
	"github.com/sahkovertailu/sahkovertailu/pkg/compare"
	"github.com/sahkovertailu/sahkovertailu/pkg/log"
	"github.com/sahkovertailu/sahkovertailu/pkg/spot"
	"github.com/sahkovertailu/sahkovertailu/pkg/storage"
)

// maxBodyBytes limits JSON request bodies.
const maxBodyBytes = 1 << 20

// Server handles the HTTP API. Pricing is computed on request from stored
// contracts and spot prices; /api/update keeps the spot prices current.
type Server struct {
	spot     *spot.Map
	storage  storage.Database
	comparer *compare.Comparer

	listenAddr string
	httpServer *http.Server
	serverName string

	updateEmail   string
	tokenVerifier tokenVerifier
	bypassAuth    bool

	spotAverageWindow time.Duration
	now               func() time.Time
}

// Configured initializes the Server with dependencies and registers its flags.
func Configured(sp *spot.Map, s storage.Database, c *compare.Comparer) *Server {
	srv := &Server{
		spot:       sp,
		storage:    s,
		comparer:   c,
		serverName: "sahkovertailu",
		now:        time.Now,
	}
	if revision := os.Getenv("K_REVISION"); revision != "" {
		srv.serverName = revision
	}

	// PORT is set when running in cloud run
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	listenAddr := lflag.String("http-listen", ":"+port, "HTTP server listen address")
	updateAudience := lflag.String("update-audience", "", "Audience of the Google ID tokens allowed to call /api/update")
	updateEmail := lflag.String("update-email", "", "Service account email allowed to call /api/update")
	bypassAuth := lflag.Bool("dev-bypass-auth", false, "Allow /api/update and contract imports without a token (local development only)")
	spotAverageWindow := lflag.Duration("spot-average-window", 30*24*time.Hour, "How far back spot prices are averaged for spot contracts")

	lflag.Do(func() {
		srv.listenAddr = *listenAddr
		srv.updateEmail = *updateEmail
		srv.bypassAuth = *bypassAuth
		srv.spotAverageWindow = *spotAverageWindow
		if srv.spotAverageWindow <= 0 {
			panic(fmt.Errorf("spot-average-window must be positive: %s", srv.spotAverageWindow))
		}

		if *updateAudience != "" {
			if srv.updateEmail == "" {
				panic(errors.New("update-email is required with update-audience"))
			}
			provider, err := oidc.NewProvider(context.Background(), "https://accounts.google.com")
			if err != nil {
				log.Ctx(context.Background()).Error("failed to initialize Google OIDC provider", slog.Any("error", err))
				os.Exit(1)
			}
			srv.tokenVerifier = oidcVerifier(provider.Verifier(&oidc.Config{ClientID: *updateAudience}))
		}
	})

	return srv
}

func (s *Server) setupHandler() http.Handler {
	apiMux := http.NewServeMux()
	apiMux.HandleFunc("POST /api/pricing/calculate", s.handleCalculate)
	apiMux.HandleFunc("GET /api/contracts", s.handleListContracts)
	apiMux.HandleFunc("GET /api/contracts/{id}", s.handleGetContract)
	apiMux.HandleFunc("GET /api/contracts/{id}/pricing", s.handleContractPricing)
	apiMux.Handle("PUT /api/contracts/{id}", s.updateAuthMiddleware(http.HandlerFunc(s.handleUpsertContract)))
	apiMux.HandleFunc("POST /api/compare", s.handleCompare)
	apiMux.HandleFunc("GET /api/spot/averages", s.handleSpotAverages)
	apiMux.HandleFunc("GET /api/spot/history", s.handleSpotHistory)
	apiMux.HandleFunc("GET /api/usage/profiles", s.handleUsageProfiles)
	apiMux.Handle("POST /api/update", s.updateAuthMiddleware(http.HandlerFunc(s.handleUpdate)))

	mux := http.NewServeMux()
	mux.Handle("/api/", s.requestLogMiddleware(apiMux))
	mux.HandleFunc("/healthz", s.handleHealthz)
	return s.revisionMiddleware(gziphandler.GzipHandler(s.securityHeadersMiddleware(mux)))
}

// Run starts the HTTP server and blocks until the context is canceled or an
// error occurs, shutting down gracefully on cancel.
func (s *Server) Run(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:         s.listenAddr,
		Handler:      s.setupHandler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  15 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		defer close(errChan)
		log.Ctx(ctx).InfoContext(ctx, "starting server", slog.String("addr", s.listenAddr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Ctx(ctx).InfoContext(ctx, "shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	}
}

func writeJSONError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(struct {
		Error string `json:"error"`
	}{Error: msg}); err != nil {
		slog.Warn("failed to write error response", slog.Any("error", err))
		panic(http.ErrAbortHandler)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		panic(http.ErrAbortHandler)
	}
}

// decodeJSON reads a JSON request body into v. It writes the error response
// and returns false on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		log.Ctx(r.Context()).WarnContext(r.Context(), "invalid request body", slog.Any("error", err))
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("ok")); err != nil {
		panic(http.ErrAbortHandler)
	}
}

func (s *Server) revisionMiddleware(next http.Handler) http.Handler {
	if s.serverName == "" {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Server", s.serverName)
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requestLogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := log.WithAttrs(r.Context(), slog.String("reqPath", r.URL.Path))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
