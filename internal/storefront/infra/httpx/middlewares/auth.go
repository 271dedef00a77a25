package middlewares

import "net/http"

func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !SessionFrom(r.Context()).LoggedIn() {
			writeError(w, http.StatusUnauthorized, "unauthorized", "Please login to continue")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := SessionFrom(r.Context())
		if !sess.LoggedIn() {
			writeError(w, http.StatusUnauthorized, "unauthorized", "Please login to continue")
			return
		}
		if !sess.IsAdmin() {
			writeError(w, http.StatusForbidden, "forbidden", "Admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
