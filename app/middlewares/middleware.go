package middlewares

import (
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/brynwhyman/sell-my-stuff/app/utils/sessions"
)

// UploadAuthMiddleware gates the add-item pages behind the shared upload
// password. Unauthenticated visitors get the password form.
func UploadAuthMiddleware(store sessions.SessionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !store.IsUploadAuthenticated(r) {
				http.Redirect(w, r, "/add-item/login", http.StatusFound)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func AdminAuthMiddleware(store sessions.SessionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !store.IsAdminAuthenticated(r) {
				log.Printf("AdminAuthMiddleware: unauthenticated request to %s", r.URL.Path)
				http.Redirect(w, r, "/admin/login?status=error&message="+url.QueryEscape("You must log in to access the admin area."), http.StatusFound)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func MethodOverrideMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			_ = r.ParseForm()
			override := r.Form.Get("_method")
			if override != "" {
				r.Method = strings.ToUpper(override)
			}
		}
		next.ServeHTTP(w, r)
	})
}
