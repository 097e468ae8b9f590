package chi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/questsearch/internal/domain"
	"github.com/kailas-cloud/questsearch/internal/domain/question"
	"github.com/kailas-cloud/questsearch/internal/domain/search/request"
	healthuc "github.com/kailas-cloud/questsearch/internal/usecase/health"
	searchuc "github.com/kailas-cloud/questsearch/internal/usecase/search"
)

// maxBodyBytes bounds a search request body.
const maxBodyBytes = 1 << 20

// Client-facing error messages.
const (
	msgQueryRequired = "Query parameter is required"
	msgInvalidBody   = "Invalid request body"
	msgSearchFailed  = "Error fetching search results"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// HealthChecker reports component health for the readiness probe.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// Server serves the HTTP JSON search API.
type Server struct {
	search        searchuc.Searcher
	health        HealthChecker
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server. health can be nil, in which case
// the readiness probe always reports ok.
func NewServer(search searchuc.Searcher, health HealthChecker, logger *zap.Logger) *Server {
	s := &Server{
		search: search,
		health: health,
		logger: logger,
	}
	s.errorHandlers = []errorHandler{
		validationHandler,
	}
	return s
}

// searchResponse wraps one result page.
type searchResponse struct {
	Questions []question.Record `json:"questions"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type statusResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Search handles POST /api/search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	// The body is read as loose arguments so paging numbers follow the same
	// rules as the RPC tool.
	var args map[string]any
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.UseNumber()
	if err := dec.Decode(&args); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	params, err := request.ParamsFromArgs(args)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	if strings.TrimSpace(params.Query) == "" {
		writeError(w, http.StatusBadRequest, msgQueryRequired)
		return
	}

	q, err := params.Build()
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	records, err := s.search.Run(r.Context(), q)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	if records == nil {
		records = []question.Record{}
	}

	writeJSON(w, http.StatusOK, searchResponse{Questions: records})
}

// Health handles GET /api/health. It is a liveness probe and never touches
// the index.
func (s *Server) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{Status: string(healthuc.Healthy)})
}

// Ready handles GET /api/ready.
func (s *Server) Ready(w http.ResponseWriter, r *http.Request) {
	if s.health == nil {
		writeJSON(w, http.StatusOK, statusResponse{Status: string(healthuc.Healthy)})
		return
	}

	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if !report.Ready() {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, statusResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// validationHandler exposes the offending parameter; nothing else leaks.
func validationHandler(w http.ResponseWriter, err error) bool {
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		return false
	}
	writeError(w, http.StatusBadRequest, ve.Error())
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	for _, h := range s.errorHandlers {
		if h(w, err) {
			return
		}
	}
	s.logger.Error("search failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, msgSearchFailed)
}
