package middleware

import (
	"fmt"
	"net/http"

	"github.com/cmlabs-edu/eduops-backend/internal/domain/access"
	"github.com/cmlabs-edu/eduops-backend/internal/handler/http/response"
)

// RequireCapability allows the request when the caller's role defaults or
// explicit grants include the feature.
func RequireCapability(feature access.Feature) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := PrincipalFromContext(r.Context())
			if !ok {
				response.Unauthorized(w, "Unauthorized")
				return
			}

			if !access.HasCapability(principal, feature) {
				response.Forbidden(w, fmt.Sprintf("Insufficient permissions: required '%s', but user role is '%s'", feature, principal.Role))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
