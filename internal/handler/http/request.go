package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/cmlabs-edu/eduops-backend/internal/domain/access"
	"github.com/cmlabs-edu/eduops-backend/internal/handler/http/middleware"
	"github.com/cmlabs-edu/eduops-backend/internal/handler/http/response"
)

// callerFrom reads the authenticated caller, writing 401 when it is missing.
func callerFrom(w http.ResponseWriter, r *http.Request) (access.Principal, bool) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return access.Principal{}, false
	}
	return principal, true
}

// decodeJSON decodes the request body into dst. An empty body is accepted
// when optional is true.
func decodeJSON(r *http.Request, dst interface{}, optional bool) error {
	err := json.NewDecoder(r.Body).Decode(dst)
	if optional && errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func queryInt(r *http.Request, key string, fallback int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func queryString(r *http.Request, key string) *string {
	if v := r.URL.Query().Get(key); v != "" {
		return &v
	}
	return nil
}
