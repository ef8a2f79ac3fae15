package middleware

import (
	"net/http"

	"github.com/cmlabs-hris/hris-core/internal/domain/user"
	"github.com/cmlabs-hris/hris-core/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-core/internal/pkg/jwt"
)

// RequireManager requires manager or owner role
func RequireManager(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, err := jwt.PrincipalFromContext(r.Context())
		if err != nil {
			response.HandleError(w, r, err)
			return
		}

		if !principal.Role.IsManager() {
			response.HandleError(w, r, user.ErrManagerAccessRequired)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RequirePermission checks if user has specific permission
func RequirePermission(permission user.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, err := jwt.PrincipalFromContext(r.Context())
			if err != nil {
				response.HandleError(w, r, err)
				return
			}

			if !principal.Role.HasPermission(permission) {
				response.HandleError(w, r, user.ErrInsufficientPermissions)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
