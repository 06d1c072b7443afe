package http

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"skillboard/internal/core"
)

// Upstream fan-out plus aggregation should comfortably finish inside
// this; anything slower is better cut off than queued.
const metricTimeout = 20 * time.Second

func (s *Server) metricContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), metricTimeout)
}

func (s *Server) handleXPRatio(w http.ResponseWriter, r *http.Request) {
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
	ratio, err := s.facade.XPRatio(ctx, token, profile.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ratio)
}

func (s *Server) handleXPMonthly(w http.ResponseWriter, r *http.Request) {
	token, err := s.sessionToken(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ctx, cancel := s.metricContext(r)
	defer cancel()

	monthly, err := s.facade.MonthlyModuleXP(ctx, token)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, monthly)
}

func (s *Server) handleXPTotal(w http.ResponseWriter, r *http.Request) {
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
	total, err := s.facade.TotalXP(ctx, token, profile.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"totalXp": total,
		"display": core.FormatXP(total),
	})
}

func (s *Server) handleAudits(w http.ResponseWriter, r *http.Request) {
	direction := strings.TrimSpace(r.URL.Query().Get("direction"))
	if direction != "done" && direction != "received" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "direction must be 'done' or 'received'"})
		return
	}

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

	var grades []float64
	if direction == "done" {
		grades, err = s.facade.AuditsDone(ctx, token, profile.ID)
	} else {
		grades, err = s.facade.AuditsReceived(ctx, token, profile.ID)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	if grades == nil {
		grades = []float64{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"direction": direction,
		"count":     len(grades),
		"grades":    grades,
	})
}

func (s *Server) handleTopSkills(w http.ResponseWriter, r *http.Request) {
	limit := core.DefaultTopSkills
	if v := strings.TrimSpace(r.URL.Query().Get("limit")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "limit must be a positive integer"})
			return
		}
		limit = n
	}

	token, err := s.sessionToken(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ctx, cancel := s.metricContext(r)
	defer cancel()

	skills, err := s.facade.TopSkills(ctx, token, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if skills == nil {
		skills = []core.SkillTotal{}
	}
	writeJSON(w, http.StatusOK, skills)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	token, err := s.sessionToken(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ctx, cancel := s.metricContext(r)
	defer cancel()

	summary, err := s.facade.Summary(ctx, token)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
