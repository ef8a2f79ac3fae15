package middleware

import (
	"net/http"

	"github.com/cmlabs-hris/hris-core/internal/pkg/i18n"
)

// Locale picks the response language from Accept-Language and binds it to the request context.
func Locale(t *i18n.Translator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			locale := t.Match(r.Header.Get("Accept-Language"))
			w.Header().Set("Content-Language", locale)
			next.ServeHTTP(w, r.WithContext(i18n.NewContext(r.Context(), t, locale)))
		})
	}
}
