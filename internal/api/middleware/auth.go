package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/daybrief/daybrief/internal/auth"
)

// AuthMiddleware authenticates API requests with the Google credential
// verifier chain and stores the Identity plus the raw credential in context.
//
// Authentication is the only failure that aborts a request early; everything
// downstream degrades instead.
type AuthMiddleware struct {
	chain *auth.Chain
}

// NewAuthMiddleware creates the auth middleware.
func NewAuthMiddleware(chain *auth.Chain) *AuthMiddleware {
	return &AuthMiddleware{chain: chain}
}

// Handler returns the HTTP middleware that authenticates requests.
func (am *AuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r.Header.Get("Authorization"))
		if token == "" {
			unauthorized(w, "Missing Authorization header")
			return
		}

		identity, err := am.chain.Verify(r.Context(), token)
		if err != nil {
			// ErrDomainNotAllowed deliberately collapses into the same 401.
			log.Debug().Err(err).Str("path", r.URL.Path).Msg("Authentication failed")
			unauthorized(w, "Unauthorized")
			return
		}

		ctx := SetIdentity(r.Context(), identity)
		ctx = SetAccessToken(ctx, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// bearerToken extracts the credential from an "Authorization: Bearer x" header.
func bearerToken(header string) string {
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="daybrief"`)
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
