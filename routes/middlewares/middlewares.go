package middlewares

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/oauth"
)

// Editor checks for the 'editor' role in an OAuth token signed with secret.
func Editor(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return chi.Chain(oauth.Authorize(secret, nil), editor).Handler(next)
	}
}

func editor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, _ := r.Context().Value(oauth.ClaimsContext).(map[string]string)

		if !hasRole(claims["roles"], "editor") {
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func hasRole(rolesClaim, want string) bool {
	for _, role := range strings.Split(rolesClaim, ",") {
		if strings.TrimSpace(role) == want {
			return true
		}
	}
	return false
}
