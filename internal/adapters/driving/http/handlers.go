package http

import (
	"encoding/json"
	"net/http"
	"sort"
	"strconv"

	"github.com/custodia-labs/pindoc/internal/core/domain"
)

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// ReadyResponse lists the state of every backend
type ReadyResponse struct {
	Status     string            `json:"status"`
	Checks     map[string]string `json:"checks"`
	QueueDepth int               `json:"queue_depth"`
}

// RunsResponse is the run history of a guild
type RunsResponse struct {
	GuildID string              `json:"guild_id"`
	Runs    []*domain.ReportRun `json:"runs"`
}

// Health endpoints

// handleHealth godoc
// @Summary      Health check
// @Description  Returns the health status of the bot process
// @Tags         Health
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady godoc
// @Summary      Readiness check
// @Description  Pings every backend. Any failure makes the whole service unready.
// @Tags         Health
// @Produce      json
// @Success      200  {object}  ReadyResponse
// @Failure      503  {object}  ReadyResponse
// @Router       /ready [get]
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	resp := ReadyResponse{Status: "ready", Checks: make(map[string]string, len(s.checks))}

	names := make([]string, 0, len(s.checks))
	for name := range s.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := http.StatusOK
	for _, name := range names {
		if err := s.checks[name].Ping(r.Context()); err != nil {
			s.logger.Warn("readiness check failed", "check", name, "error", err)
			resp.Checks[name] = err.Error()
			resp.Status = "unavailable"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[name] = "ok"
	}
	if s.queueDepth != nil {
		resp.QueueDepth = s.queueDepth()
	}

	writeJSON(w, status, resp)
}

// handleVersion godoc
// @Summary      Get bot version
// @Tags         Health
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /version [get]
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": s.version})
}

// Run history

// handleListRuns godoc
// @Summary      List report runs
// @Description  Returns the latest report runs of a guild, newest first
// @Tags         Runs
// @Produce      json
// @Param        guildID  path      string  true   "Guild ID"
// @Param        limit    query     int     false  "Maximum runs (default 20, capped at 100)"
// @Success      200      {object}  RunsResponse
// @Failure      400      {object}  ErrorResponse  "Invalid guild ID or limit"
// @Failure      500      {object}  ErrorResponse  "Run store failure"
// @Router       /api/v1/guilds/{guildID}/runs [get]
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	guildID := r.PathValue("guildID")
	if _, err := strconv.ParseUint(guildID, 10, 64); err != nil {
		writeError(w, http.StatusBadRequest, "guild id must be numeric")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	runs, err := s.reports.RecentRuns(r.Context(), guildID, limit)
	if err != nil {
		s.logger.Error("failed to list runs", "guild_id", guildID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list runs")
		return
	}

	writeJSON(w, http.StatusOK, RunsResponse{GuildID: guildID, Runs: runs})
}

// Helper functions

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}
