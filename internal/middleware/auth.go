package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/templui/sfss/internal/ctxkeys"
	"github.com/templui/sfss/internal/model"
)

// TokenVerifier resolves a bearer token to an identity
type TokenVerifier interface {
	VerifyJWT(token string) (*model.Identity, error)
}

const authCookieName = "auth_token"

// AuthMiddleware checks for a JWT in the Authorization header or the auth_token cookie
// and adds the identity to the context if valid
func AuthMiddleware(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				// No token, continue without auth
				next.ServeHTTP(w, r)
				return
			}

			identity, err := verifier.VerifyJWT(token)
			if err != nil {
				// Invalid token, continue unauthenticated; RequireAuth rejects if needed
				next.ServeHTTP(w, r)
				return
			}

			ctx := ctxkeys.WithIdentity(r.Context(), identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}

	cookie, err := r.Cookie(authCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// RequireAuth ensures the request carries a valid identity
func RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ctxkeys.Identity(r.Context()) == nil {
			w.Header().Set("WWW-Authenticate", `Bearer realm="sfss"`)
			writeJSONError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	}
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"message": message,
	})
}
