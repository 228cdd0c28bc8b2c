package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUpdateAuthMiddleware(t *testing.T) {
	verifier := func(ctx context.Context, token string) (tokenClaims, error) {
		switch token {
		case "scheduler":
			return tokenClaims{Email: "scheduler@example.iam.gserviceaccount.com", EmailVerified: true}, nil
		case "unverified":
			return tokenClaims{Email: "scheduler@example.iam.gserviceaccount.com"}, nil
		case "someone":
			return tokenClaims{Email: "someone@example.com", EmailVerified: true}, nil
		default:
			return tokenClaims{}, errors.New("bad signature")
		}
	}

	tests := []struct {
		name       string
		header     string
		noVerifier bool
		bypass     bool
		code       int
	}{
		{name: "scheduler", header: "Bearer scheduler", code: http.StatusOK},
		{name: "missing header", code: http.StatusUnauthorized},
		{name: "not bearer", header: "Basic abc", code: http.StatusForbidden},
		{name: "empty bearer", header: "Bearer ", code: http.StatusForbidden},
		{name: "invalid token", header: "Bearer forged", code: http.StatusForbidden},
		{name: "unverified email", header: "Bearer unverified", code: http.StatusForbidden},
		{name: "wrong email", header: "Bearer someone", code: http.StatusForbidden},
		{name: "not configured", header: "Bearer scheduler", noVerifier: true, code: http.StatusForbidden},
		{name: "bypass", bypass: true, code: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := &Server{
				updateEmail:   "scheduler@example.iam.gserviceaccount.com",
				tokenVerifier: verifier,
				bypassAuth:    tt.bypass,
			}
			if tt.noVerifier {
				srv.tokenVerifier = nil
			}

			var called bool
			h := srv.updateAuthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodPost, "/api/update", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			assert.Equal(t, tt.code, w.Code)
			assert.Equal(t, tt.code == http.StatusOK, called)
		})
	}
}
