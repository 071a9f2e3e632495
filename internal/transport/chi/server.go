package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/wayfarer/internal/domain"
	domusage "github.com/kailas-cloud/wayfarer/internal/domain/usage"
	logpkg "github.com/kailas-cloud/wayfarer/internal/logger"
	askuc "github.com/kailas-cloud/wayfarer/internal/usecase/ask"
	healthuc "github.com/kailas-cloud/wayfarer/internal/usecase/health"
	usageuc "github.com/kailas-cloud/wayfarer/internal/usecase/usage"
	"github.com/kailas-cloud/wayfarer/internal/version"
)

// internalErrorDetail is the catch-all client message for unexpected failures.
const internalErrorDetail = "An error occurred while generating an answer. Please try again later."

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server exposes the question answering API over HTTP. Handlers log
// through the request-scoped logger carried in the request context.
type Server struct {
	ask           *askuc.Service
	health        *healthuc.Service
	usage         *usageuc.Service
	defaultTopN   int
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server. defaultTopN is used when a request
// omits top_n.
func NewServer(
	ask *askuc.Service,
	health *healthuc.Service,
	usage *usageuc.Service,
	defaultTopN int,
) *Server {
	s := &Server{
		ask:         ask,
		health:      health,
		usage:       usage,
		defaultTopN: defaultTopN,
	}
	s.errorHandlers = []errorHandler{
		invalidQueryHandler,
		sentinelHandler(domain.ErrQuotaExceeded, http.StatusPaymentRequired),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway),
		sentinelHandler(domain.ErrLLMAuth, http.StatusBadGateway),
		sentinelHandler(domain.ErrLLMUnavailable, http.StatusBadGateway),
		sentinelHandler(domain.ErrLLMResponse, http.StatusBadGateway),
		sentinelHandler(domain.ErrStoreUnavailable, http.StatusServiceUnavailable),
		sentinelHandler(domain.ErrStoreData, http.StatusInternalServerError),
	}
	return s
}

// Register mounts the API routes on the router.
func (s *Server) Register(r chi.Router) {
	r.Get("/", s.Root)
	r.Post("/ask", s.Ask)
	r.Get("/health", s.HealthCheck)
	r.Get("/usage", s.GetUsage)
	r.Get("/metrics", s.Metrics)
}

// askRequest is the POST /ask request body.
type askRequest struct {
	Query string `json:"query"`
	TopN  *int   `json:"top_n"`
}

// askResponse is the POST /ask success body.
type askResponse struct {
	Answer string `json:"answer"`
}

// errorResponse is the error body for every failing endpoint.
type errorResponse struct {
	Detail string `json:"detail"`
}

// rootResponse describes the service.
type rootResponse struct {
	Message   string            `json:"message"`
	Version   string            `json:"version"`
	Status    string            `json:"status"`
	Endpoints map[string]string `json:"endpoints"`
}

// healthResponse is the GET /health body.
type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// usageResponse is the GET /usage body.
type usageResponse struct {
	Period        string       `json:"period"`
	Usage         usageMetrics `json:"usage"`
	Budget        budgetStatus `json:"budget"`
	PeriodStartAt *time.Time   `json:"period_start_at,omitempty"`
	PeriodEndAt   *time.Time   `json:"period_end_at,omitempty"`
}

type usageMetrics struct {
	Tokens           int  `json:"tokens"`
	CostMillidollars *int `json:"cost_millidollars,omitempty"`
}

type budgetStatus struct {
	TokensLimit     int        `json:"tokens_limit"`
	TokensRemaining int        `json:"tokens_remaining"`
	IsExhausted     bool       `json:"is_exhausted"`
	ResetsAt        *time.Time `json:"resets_at,omitempty"`
}

// Root handles GET / with a short service description.
func (s *Server) Root(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, rootResponse{
		Message: "Wayfarer attraction search API",
		Version: version.Version,
		Status:  "running",
		Endpoints: map[string]string{
			"ask":     "/ask (POST)",
			"health":  "/health (GET)",
			"usage":   "/usage (GET)",
			"metrics": "/metrics (GET)",
		},
	})
}

// Ask handles POST /ask.
func (s *Server) Ask(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	topN := s.defaultTopN
	if req.TopN != nil {
		topN = *req.TopN
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	answer, err := s.ask.Ask(ctx, req.Query, topN)
	if err != nil {
		s.handleDomainError(ctx, w, err)
		return
	}

	setUsageHeaders(w, usage)
	writeJSON(w, http.StatusOK, askResponse{Answer: answer})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string)
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// GetUsage handles GET /usage. Unknown period values fall back to month.
func (s *Server) GetUsage(w http.ResponseWriter, r *http.Request) {
	period := domusage.PeriodMonth
	switch r.URL.Query().Get("period") {
	case "day":
		period = domusage.PeriodDay
	case "total":
		period = domusage.PeriodTotal
	}

	report := s.usage.GetReport(r.Context(), period)

	resp := usageResponse{
		Period: string(report.Period()),
		Usage: usageMetrics{
			Tokens: report.Metrics().Tokens(),
		},
		Budget: budgetStatus{
			TokensLimit:     report.Budget().TokensLimit(),
			TokensRemaining: report.Budget().TokensRemaining(),
			IsExhausted:     report.Budget().IsExhausted(),
		},
	}

	if report.Metrics().CostMillidollars() > 0 {
		cost := report.Metrics().CostMillidollars()
		resp.Usage.CostMillidollars = &cost
	}

	if report.PeriodStart() > 0 {
		start := time.UnixMilli(report.PeriodStart()).UTC()
		end := time.UnixMilli(report.PeriodEnd()).UTC()
		resp.PeriodStartAt = &start
		resp.PeriodEndAt = &end
	}

	if report.Budget().ResetsAt() > 0 {
		resetsAt := time.UnixMilli(report.Budget().ResetsAt()).UTC()
		resp.Budget.ResetsAt = &resetsAt
	}

	writeJSON(w, http.StatusOK, resp)
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func setUsageHeaders(w http.ResponseWriter, usage *domain.RequestUsage) {
	if usage == nil {
		return
	}
	if usage.EmbeddingUsed {
		w.Header().Set("X-Embedding-Tokens", strconv.Itoa(usage.EmbeddingTokens))
	}
	if usage.CompletionTokens > 0 {
		w.Header().Set("X-Completion-Tokens", strconv.Itoa(usage.CompletionTokens))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorResponse{Detail: detail})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidQuery,
		domain.ErrQuotaExceeded,
		domain.ErrEmbeddingProviderError,
		domain.ErrLLMAuth,
		domain.ErrLLMUnavailable,
		domain.ErrLLMResponse,
		domain.ErrStoreUnavailable,
		domain.ErrStoreData,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return internalErrorDetail
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, msg)
		return true
	}
}

// invalidQueryHandler surfaces the full validation message. Validation errors
// are built inside the ask usecase and carry no internals.
func invalidQueryHandler(w http.ResponseWriter, err error, _ string) bool {
	if !errors.Is(err, domain.ErrInvalidQuery) {
		return false
	}
	writeError(w, http.StatusBadRequest, err.Error())
	return true
}

func (s *Server) handleDomainError(ctx context.Context, w http.ResponseWriter, err error) {
	log := logpkg.FromContext(ctx)
	log.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, internalErrorDetail)
}
