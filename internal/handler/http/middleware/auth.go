package middleware

import (
	"net/http"

	"github.com/go-chi/jwtauth/v5"

	"github.com/tajhr/hrpay-backend-go/internal/handler/http/response"
)

// AuthRequired verifies the request carries a valid token of an accepted
// type. Must be mounted after jwtauth.Verifier.
func AuthRequired(ja *jwtauth.JWTAuth) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, claims, err := jwtauth.FromContext(r.Context())
			if err != nil || token == nil {
				response.Unauthorized(w, "Invalid or missing token")
				return
			}

			tokenType, _ := claims["type"].(string)
			if tokenType != "access" && tokenType != "service" {
				response.Unauthorized(w, "Invalid token type")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
