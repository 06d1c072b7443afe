package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"skillboard/internal/platform"
	"skillboard/internal/platform/auth"
	"skillboard/internal/platform/graphql"
	"skillboard/internal/session"
)

const sessionCookie = "skillboard_session"

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

type errorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

// writeError maps the platform error taxonomy onto HTTP statuses. Auth
// problems ask the user to log in; transport problems surface as a
// generic upstream failure; API errors carry the server's detail.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		transportErr *graphql.TransportError
		apiErr       *graphql.APIError
		signinErr    *auth.SigninError
	)

	switch {
	case graphql.IsAuth(err), errors.Is(err, session.ErrNotFound):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "please login"})
	case errors.As(err, &signinErr):
		status := http.StatusBadGateway
		if signinErr.StatusCode == http.StatusUnauthorized || signinErr.StatusCode == http.StatusForbidden {
			status = http.StatusUnauthorized
		}
		writeJSON(w, status, errorResponse{Error: "login failed", Detail: signinErr.Detail})
	case errors.As(err, &apiErr):
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: "platform reported an error", Detail: apiErr.Error()})
	case errors.As(err, &transportErr):
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: "platform unreachable"})
	case errors.Is(err, platform.ErrNoProfile):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "profile not found"})
	default:
		slog.ErrorContext(r.Context(), "Unhandled error", "error", err, "path", r.URL.Path)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

// sessionToken resolves the caller's platform token from the session
// cookie. A missing cookie or an unknown/expired session reads as an
// auth failure.
func (s *Server) sessionToken(r *http.Request) (string, error) {
	c, err := r.Cookie(sessionCookie)
	if err != nil || strings.TrimSpace(c.Value) == "" {
		return "", &graphql.AuthError{}
	}
	token, err := s.sessions.Token(r.Context(), c.Value)
	if err != nil {
		return "", err
	}
	return token, nil
}

// extractClientIP returns the caller's address, honoring forwarding
// headers only in their absence order: X-Forwarded-For first hop, then
// X-Real-IP, then the socket peer.
func extractClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if first := strings.TrimSpace(strings.Split(xff, ",")[0]); first != "" {
			return first
		}
	}
	if rip := strings.TrimSpace(r.Header.Get("X-Real-IP")); rip != "" {
		return rip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
