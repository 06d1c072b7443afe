package http

import "net/http"

// handleProfile passes the platform's user record through untouched.
func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	token, err := s.sessionToken(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ctx, cancel := s.metricContext(r)
	defer cancel()

	profile, err := s.facade.Profile(ctx, token)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}
