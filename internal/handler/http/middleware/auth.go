package middleware

import (
	"net/http"

	"github.com/cmlabs-hris/hris-core/internal/domain/user"
	"github.com/cmlabs-hris/hris-core/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-core/internal/pkg/i18n"
	"github.com/go-chi/jwtauth/v5"
)

// AuthRequired rejects requests whose token is missing, failed verification or is not an access token.
// It must run after jwtauth.Verifier.
func AuthRequired(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, claims, err := jwtauth.FromContext(r.Context())
		if err != nil || token == nil {
			response.Unauthorized(w, i18n.T(r.Context(), "error.unauthorized"))
			return
		}

		tokenType, ok := claims["type"].(string)
		if !ok || tokenType != "access" {
			response.HandleError(w, r, user.ErrInvalidClaims)
			return
		}

		next.ServeHTTP(w, r)
	})
}
