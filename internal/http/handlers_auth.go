package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
)

type loginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// handleLogin exchanges credentials at the platform's signin endpoint
// and binds the returned token to a fresh session cookie. The password
// is forwarded upstream and never stored.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	clientIP := extractClientIP(r)
	if !s.loginLimiter.allow(clientIP) {
		slog.WarnContext(r.Context(), "Login rate limit exceeded", "client_ip", clientIP)
		writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "too many login attempts, try again later"})
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if strings.TrimSpace(req.Login) == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "login and password are required"})
		return
	}

	token, err := s.authc.Signin(r.Context(), req.Login, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	sessionID, err := s.sessions.Create(r.Context(), token)
	if err != nil {
		writeError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    sessionID,
		Path:     "/",
		MaxAge:   int(s.opts.SessionTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	slog.InfoContext(r.Context(), "User logged in", "login", req.Login)
	w.WriteHeader(http.StatusNoContent)
}

// handleLogout drops the session and expires the cookie. Logging out
// without a session succeeds quietly.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	if c, err := r.Cookie(sessionCookie); err == nil && c.Value != "" {
		if err := s.sessions.Delete(r.Context(), c.Value); err != nil {
			slog.WarnContext(r.Context(), "Failed to delete session", "error", err)
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}
