package server

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/sahkovertailu/sahkovertailu/pkg/log"
)

// tokenClaims are the ID token claims the API checks.
type tokenClaims struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Subject       string `json:"-"`
}

// tokenVerifier validates a raw Google ID token and returns its claims.
type tokenVerifier func(ctx context.Context, rawIDToken string) (tokenClaims, error)

func oidcVerifier(v *oidc.IDTokenVerifier) tokenVerifier {
	return func(ctx context.Context, rawIDToken string) (tokenClaims, error) {
		idToken, err := v.Verify(ctx, rawIDToken)
		if err != nil {
			return tokenClaims{}, err
		}
		var claims tokenClaims
		if err := idToken.Claims(&claims); err != nil {
			return tokenClaims{}, fmt.Errorf("failed to parse claims: %w", err)
		}
		claims.Subject = idToken.Subject
		return claims, nil
	}
}

// authenticateToken checks the bearer token of a scheduler or importer request
// and returns the caller's email.
func (s *Server) authenticateToken(ctx context.Context, authHeader string) (string, error) {
	if s.tokenVerifier == nil {
		return "", errors.New("token authentication is not configured")
	}
	token, ok := strings.CutPrefix(authHeader, "Bearer ")
	if !ok || token == "" {
		return "", errors.New("invalid auth header")
	}
	claims, err := s.tokenVerifier(ctx, token)
	if err != nil {
		return "", fmt.Errorf("token verification failed: %w", err)
	}
	if !claims.EmailVerified {
		return "", fmt.Errorf("email %q is not verified", claims.Email)
	}
	if subtle.ConstantTimeCompare([]byte(claims.Email), []byte(s.updateEmail)) != 1 {
		return "", fmt.Errorf("email %q is not allowed", claims.Email)
	}
	return claims.Email, nil
}

// updateAuthMiddleware only lets the configured service account through.
func (s *Server) updateAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if s.bypassAuth {
			next.ServeHTTP(w, r)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			log.Ctx(ctx).WarnContext(ctx, "missing authentication")
			writeJSONError(w, "missing authentication", http.StatusUnauthorized)
			return
		}
		email, err := s.authenticateToken(ctx, authHeader)
		if err != nil {
			log.Ctx(ctx).WarnContext(ctx, "update token rejected", slog.Any("error", err))
			writeJSONError(w, "forbidden", http.StatusForbidden)
			return
		}

		ctx = log.WithAttrs(ctx, slog.String("caller", email))
		log.Ctx(ctx).DebugContext(ctx, "authorized")
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
