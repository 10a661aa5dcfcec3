package web

import (
	"crypto/subtle"
	"net/http"
	"net/url"
	"strings"
)

// adminTokenParam is the query parameter accepted in place of a bearer token,
// so the examine page can be opened from a browser address bar.
const adminTokenParam = "token"

// requireAdmin rejects requests that do not present the admin token, either
// as "Authorization: Bearer <token>" or as ?token=. An empty token disables
// the check.
func (h *Handler) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	if h.adminToken == "" {
		return next
	}

	want := []byte(h.adminToken)
	return func(w http.ResponseWriter, r *http.Request) {
		got := r.URL.Query().Get(adminTokenParam)
		if bearer, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
			got = bearer
		}

		if subtle.ConstantTimeCompare([]byte(got), want) != 1 {
			h.logger.Warn("admin request rejected", "path", r.URL.Path)
			w.Header().Set("WWW-Authenticate", `Bearer realm="checkoutrelay"`)
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		next(w, r)
	}
}

// keepAdminToken appends the request's ?token= to path, so links and
// redirects between guarded pages stay authorized.
func keepAdminToken(path string, r *http.Request) string {
	token := r.URL.Query().Get(adminTokenParam)
	if token == "" {
		return path
	}
	return path + "?" + url.Values{adminTokenParam: {token}}.Encode()
}
