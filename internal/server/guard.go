package server

import "net/http"

// protected gates a route on the session lifecycle. While the startup token
// check is still in flight it answers with a placeholder and performs no
// navigation. Once the session has resolved unauthenticated, each request
// gets exactly one redirect to the login entry point. There is no way back
// to the checking state.
func (s *Server) protected(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		st := s.session.Snapshot()
		if st.Loading {
			writeJSON(w, http.StatusOK, map[string]string{"status": "checking"})
			return
		}
		if !st.IsAuthenticated {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next(w, r)
	})
}
