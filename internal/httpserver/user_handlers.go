package httpserver

import (
	"net/http"
	"path/filepath"

	"conrelay/internal/registry"
)

// handleListOnlineUsers is the REST view of the session registry, excluding
// the caller.
func handleListOnlineUsers(reg *registry.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller := ""
		if user := CurrentUser(r); user != nil {
			caller = user.Username
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"users": reg.ListOnline(caller),
		})
	}
}

func handleIndex(staticDir string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, filepath.Join(staticDir, "index.html"))
	}
}
