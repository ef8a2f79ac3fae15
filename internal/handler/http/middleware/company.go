package middleware

import (
	"net/http"

	"github.com/cmlabs-hris/hris-core/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-core/internal/pkg/jwt"
)

// RequireCompany makes sure the token names a company and a known role.
// Every record is scoped by the company, so nothing below can run without one.
func RequireCompany(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := jwt.PrincipalFromContext(r.Context()); err != nil {
			response.HandleError(w, r, err)
			return
		}

		next.ServeHTTP(w, r)
	})
}
