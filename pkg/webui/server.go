// Package webui provides the HTTP surface for the weather agent: the query
// endpoint, tool catalog, direct tool shortcuts, health, and metrics.
package webui

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"weatheragent/pkg/agent"
	"weatheragent/pkg/logx"
	"weatheragent/pkg/metrics"
	"weatheragent/pkg/session"
	"weatheragent/pkg/tools"
	"weatheragent/pkg/version"
	"weatheragent/pkg/weather"
)

// Server is the web UI HTTP server. The orchestrator does the actual work;
// handlers here only translate between HTTP and turn semantics.
type Server struct {
	orchestrator *agent.Orchestrator
	registry     *tools.Registry
	weather      *weather.Client
	usage        *metrics.QueryService
	logger       *logx.Logger
	now          func() time.Time
}

// NewServer creates a new web UI server. The usage query service may be nil;
// the usage endpoint then reports unavailability.
func NewServer(orchestrator *agent.Orchestrator, registry *tools.Registry, weatherClient *weather.Client, usage *metrics.QueryService) *Server {
	return &Server{
		orchestrator: orchestrator,
		registry:     registry,
		weather:      weatherClient,
		usage:        usage,
		logger:       logx.NewLogger("webui"),
		now:          time.Now,
	}
}

// RegisterRoutes sets up HTTP routes for the API.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/query", s.handleQuery)
	mux.HandleFunc("/tools", s.handleTools)
	mux.HandleFunc("/coordinates", s.handleCoordinates)
	mux.HandleFunc("/parse-date", s.handleParseDate)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/usage", s.handleUsage)
	mux.Handle("/metrics", promhttp.Handler())
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("Failed to encode response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

// handleQuery implements POST /query - runs one conversational turn.
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var reqBody struct {
		SessionID string `json:"session_id"`
		Text      string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if reqBody.Text == "" {
		s.writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	sessionID := reqBody.SessionID
	if sessionID == "" {
		sessionID = session.NewSessionID()
	}

	answer, err := s.orchestrator.HandleTurn(r.Context(), sessionID, reqBody.Text)
	if err != nil && answer == "" {
		s.logger.Error("Turn failed for session %s: %v", sessionID, err)
		s.writeError(w, http.StatusInternalServerError, "turn failed")
		return
	}

	response := map[string]any{
		"session_id": sessionID,
		"answer":     answer,
	}
	if err != nil {
		// Degraded turns still carry a usable answer for the caller.
		response["degraded"] = true
		if errors.Is(err, agent.ErrToolLoopExceeded) {
			response["reason"] = "tool loop exceeded"
		}
	}
	s.writeJSON(w, http.StatusOK, response)
}

// handleTools implements GET /tools - lists the registered tool catalog.
func (s *Server) handleTools(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"tools": s.registry.Definitions(),
	})
}

// handleCoordinates implements POST /coordinates - a direct geocoding
// shortcut that bypasses the LLM.
func (s *Server) handleCoordinates(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var reqBody struct {
		Place string `json:"place"`
	}
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if reqBody.Place == "" {
		s.writeError(w, http.StatusBadRequest, "place is required")
		return
	}

	coords, err := s.weather.Geocode(r.Context(), reqBody.Place)
	if err != nil {
		if errors.Is(err, weather.ErrLocationNotFound) {
			s.writeError(w, http.StatusNotFound, "location not found")
			return
		}
		s.logger.Error("Geocode failed for %q: %v", reqBody.Place, err)
		s.writeError(w, http.StatusBadGateway, "geocoding unavailable")
		return
	}

	s.writeJSON(w, http.StatusOK, coords)
}

// handleParseDate implements POST /parse-date - resolves a natural-language
// date expression against today.
func (s *Server) handleParseDate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var reqBody struct {
		Expression string `json:"expression"`
	}
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if reqBody.Expression == "" {
		s.writeError(w, http.StatusBadRequest, "expression is required")
		return
	}

	resolved := weather.ResolveRelativeDate(reqBody.Expression, s.now())
	s.writeJSON(w, http.StatusOK, map[string]string{
		"expression": reqBody.Expression,
		"date":       resolved,
	})
}

// handleHealth implements GET /healthz.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": version.Version,
	})
}

// handleUsage implements GET /usage - aggregated turn and call counts from
// Prometheus.
func (s *Server) handleUsage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if s.usage == nil {
		s.writeError(w, http.StatusServiceUnavailable, "usage queries not configured")
		return
	}

	summary, err := s.usage.GetUsageSummary(r.Context())
	if err != nil {
		s.logger.Error("Usage query failed: %v", err)
		s.writeError(w, http.StatusBadGateway, "usage query failed")
		return
	}

	s.writeJSON(w, http.StatusOK, summary)
}
