package auth

import (
	"net/http"
	"strings"

	"github.com/user/audiostream-go/apperror"
	"github.com/user/audiostream-go/config"
)

// bearerToken extracts the token from an "Authorization: Bearer {token}"
// header. The empty string means no usable token was supplied.
func bearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}

// RequireAuth validates the access token and stores its claims in the request
// context. A missing or invalid token is rejected with the same unauthorized
// response in every case.
func RequireAuth(cfg *config.AuthConfig) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := bearerToken(r)
			if tokenString == "" {
				WriteError(w, r, apperror.NewAuthError("unauthorized", nil))
				return
			}

			claims, err := ValidateToken(tokenString, cfg.JWTSecret, tokenTypeAccess)
			if err != nil {
				WriteError(w, r, apperror.NewAuthError("unauthorized", err))
				return
			}
			if claims.UserID == 0 {
				WriteError(w, r, apperror.NewAuthError("unauthorized", nil))
				return
			}

			next.ServeHTTP(w, r.WithContext(NewContextWithClaims(r.Context(), claims)))
		})
	}
}

// OptionalAuth attaches claims when a valid access token is present and lets
// the request through untouched otherwise. Used by endpoints that accept
// anonymous traffic, like play recording.
func OptionalAuth(cfg *config.AuthConfig) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if tokenString := bearerToken(r); tokenString != "" {
				if claims, err := ValidateToken(tokenString, cfg.JWTSecret, tokenTypeAccess); err == nil && claims.UserID != 0 {
					r = r.WithContext(NewContextWithClaims(r.Context(), claims))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole gates a route on the role embedded in the request's claims.
// "No session" and "role insufficient" deliberately produce the same response,
// so a caller learns nothing about why access was denied. Must be mounted
// after RequireAuth.
func RequireRole(role string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok || claims.Role != role {
				WriteError(w, r, apperror.NewAuthError("unauthorized", nil))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
