// Package http serves the dashboard page and its JSON API. Every API
// read authenticates against the remote platform with the caller's own
// token; the server holds no per-user state beyond the session binding.
package http

import (
	"context"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"
	"time"

	applog "skillboard/internal/log"
	"skillboard/internal/platform"
	appweb "skillboard/web"
)

type (
	// Facade is everything the dashboard needs from the platform.
	Facade interface {
		platform.ProfileReader
		platform.XPReader
		platform.AuditReader
		platform.SkillReader
		platform.SummaryReader
	}

	// AuthClient exchanges credentials for a bearer token.
	AuthClient interface {
		Signin(ctx context.Context, login, password string) (string, error)
	}

	// SessionStore binds session ids to tokens.
	SessionStore interface {
		Create(ctx context.Context, token string) (string, error)
		Token(ctx context.Context, sessionID string) (string, error)
		Delete(ctx context.Context, sessionID string) error
	}
)

// Options tune the server without widening the constructor.
type Options struct {
	SessionTTL      time.Duration
	LoginRateLimit  int
	LoginRateWindow time.Duration
}

func (o *Options) withDefaults() {
	if o.SessionTTL <= 0 {
		o.SessionTTL = 12 * time.Hour
	}
	if o.LoginRateLimit <= 0 {
		o.LoginRateLimit = 5
	}
	if o.LoginRateWindow <= 0 {
		o.LoginRateWindow = time.Minute
	}
}

type Server struct {
	http.Server

	authc    AuthClient
	facade   Facade
	sessions SessionStore
	opts     Options

	loginLimiter *rateLimiter
	metrics      *metrics
	shutdownOnce sync.Once
}

// NewServer configures routes and the embedded page, returning a
// ready-to-run server.
func NewServer(addr string, authc AuthClient, facade Facade, sessions SessionStore, opts Options) *Server {
	opts.withDefaults()
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		authc:        authc,
		facade:       facade,
		sessions:     sessions,
		opts:         opts,
		loginLimiter: newRateLimiter(opts.LoginRateLimit, opts.LoginRateWindow),
		metrics:      newMetrics(),
	}

	// Static assets from the embedded FS.
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "public, max-age=3600, immutable")
			static.ServeHTTP(w, r)
		}))
	} else {
		slog.Warn("Failed to mount embedded static FS", "error", err)
	}

	mux.HandleFunc("/", s.instrument("index", s.handleIndex))
	mux.HandleFunc("/healthz", handleHealth)
	mux.Handle("/metrics", s.metrics.handler())

	mux.HandleFunc("/api/login", s.instrument("login", s.handleLogin))
	mux.HandleFunc("/api/logout", s.instrument("logout", s.handleLogout))

	mux.HandleFunc("/api/profile", s.instrument("profile", s.requireGet(s.handleProfile)))
	mux.HandleFunc("/api/summary", s.instrument("summary", s.requireGet(s.handleSummary)))
	mux.HandleFunc("/api/xp/ratio", s.instrument("xp_ratio", s.requireGet(s.handleXPRatio)))
	mux.HandleFunc("/api/xp/monthly", s.instrument("xp_monthly", s.requireGet(s.handleXPMonthly)))
	mux.HandleFunc("/api/xp/total", s.instrument("xp_total", s.requireGet(s.handleXPTotal)))
	mux.HandleFunc("/api/audits", s.instrument("audits", s.requireGet(s.handleAudits)))
	mux.HandleFunc("/api/skills/top", s.instrument("skills_top", s.requireGet(s.handleTopSkills)))

	return s
}

// instrument adds security headers, request logging, and Prometheus
// counters around a handler.
func (s *Server) instrument(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "no-referrer")

		rw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)

		duration := time.Since(start)
		s.metrics.observe(route, r.Method, rw.status, duration)

		level := slog.LevelInfo
		switch {
		case rw.status >= 500:
			level = slog.LevelError
		case rw.status >= 400:
			level = slog.LevelWarn
		}
		slog.Log(r.Context(), level, "HTTP request completed",
			applog.FieldComponent, applog.ComponentHTTP,
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldRoute, route,
			applog.FieldStatusCode, rw.status,
			applog.FieldDuration, duration.Milliseconds(),
			applog.FieldClientIP, extractClientIP(r))
	}
}

// requireGet rejects everything but GET with a 405.
func (s *Server) requireGet(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", "GET")
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		next(w, r)
	}
}

// handleIndex serves the embedded dashboard page.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	page, err := appweb.StaticFS.ReadFile("static/index.html")
	if err != nil {
		slog.ErrorContext(r.Context(), "Embedded page missing", "error", err)
		http.Error(w, "page not available", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(page)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Shutdown stops the HTTP server and the limiter's cleanup goroutine.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.loginLimiter != nil {
			s.loginLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
