package http

import (
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/hris-core/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-core/internal/pkg/i18n"
)

// decodeJSON reads the request body into dst. An empty body leaves dst untouched.
// It writes the 400 response itself and reports whether the handler may continue.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(w, i18n.T(r.Context(), "error.invalid_request_body"), nil)
		return false
	}
	return true
}

func queryString(r *http.Request, key string) *string {
	if v := r.URL.Query().Get(key); v != "" {
		return &v
	}
	return nil
}

func queryInt(r *http.Request, key string) *int {
	if v := r.URL.Query().Get(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return &n
		}
	}
	return nil
}

// pagination returns page and limit, falling back to 1 and 20 for missing or non-positive values.
func pagination(r *http.Request) (page, limit int) {
	page, limit = 1, 20
	if p := queryInt(r, "page"); p != nil && *p > 0 {
		page = *p
	}
	if l := queryInt(r, "limit"); l != nil && *l > 0 {
		limit = *l
	}
	return page, limit
}

// sourceAddress is the client address the request came from, without the port.
func sourceAddress(r *http.Request) *string {
	addr := r.RemoteAddr
	if host, _, err := net.SplitHostPort(addr); err == nil {
		addr = host
	}
	if addr == "" {
		return nil
	}
	return &addr
}
