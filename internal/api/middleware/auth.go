package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	apiContext "upiqr/internal/api/context"
	"upiqr/internal/pkg/errors"
	"upiqr/internal/platform/auth"
)

// AuthMiddleware admits requests carrying a valid merchant bearer token and
// stores its claims in the request context.
type AuthMiddleware struct {
	tokenSvc *auth.TokenService
}

func NewAuthMiddleware(tokenSvc *auth.TokenService) *AuthMiddleware {
	return &AuthMiddleware{tokenSvc: tokenSvc}
}

func (m *AuthMiddleware) Handle(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r.Header.Get("Authorization"))
		if !ok {
			unauthorized(w, "", "Missing or malformed bearer token")
			return
		}

		claims, err := m.tokenSvc.ValidateToken(token)
		if err != nil {
			log.Debug().Err(err).Str("path", r.URL.Path).Msg("rejected merchant token")
			unauthorized(w, "invalid_token", "Invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), apiContext.Claims, claims)
		next(w, r.WithContext(ctx))
	}
}

// bearerToken extracts the token from an Authorization header. The scheme is
// case-insensitive.
func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func unauthorized(w http.ResponseWriter, code, message string) {
	challenge := `Bearer realm="upiqr"`
	if code != "" {
		challenge += `, error="` + code + `"`
	}
	w.Header().Set("WWW-Authenticate", challenge)
	errors.Write(w, errors.New(errors.CodeUnauthorized, message))
}

// RequireScope rejects tokens that carry scopes but not this one.
func RequireScope(scope string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			claims, ok := r.Context().Value(apiContext.Claims).(*auth.Claims)
			if !ok || !claims.HasScope(scope) {
				w.Header().Set("WWW-Authenticate", `Bearer realm="upiqr", error="insufficient_scope", scope="`+scope+`"`)
				errors.Write(w, errors.New(errors.CodeForbidden, "Insufficient permissions").With("scope", scope))
				return
			}
			next(w, r)
		}
	}
}
