// Package httpapi exposes the query, sync and billing operations over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/minsukim/notisync/internal/core/domain"
	"github.com/minsukim/notisync/internal/core/ports/driven"
	"github.com/minsukim/notisync/internal/core/ports/driving"
	"github.com/minsukim/notisync/internal/logger"
)

// maxRequestBody is the maximum allowed request body size (1 MB).
const maxRequestBody int64 = 1 << 20

// Server holds the HTTP handlers and dependencies.
type Server struct {
	index   driving.IndexService
	query   driving.QueryService
	billing driving.BillingService
	audit   driven.CostLogger
	mux     *http.ServeMux
}

// New creates the API server. audit may be nil to disable request logging.
func New(index driving.IndexService, query driving.QueryService, billing driving.BillingService, audit driven.CostLogger) *Server {
	s := &Server{index: index, query: query, billing: billing, audit: audit, mux: http.NewServeMux()}
	s.routes()
	return s
}

// Handler returns the root http.Handler with middleware applied.
func (s *Server) Handler() http.Handler {
	return s.auditMiddleware(limitBody(s.mux))
}

// ListenAndServe runs the server on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		httpServer.Shutdown(context.Background()) //nolint:errcheck
	}()

	err := httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /stores", s.handleStores)
	s.mux.HandleFunc("GET /billing", s.handleBilling)
	s.mux.HandleFunc("POST /query", s.handleQuery)
	s.mux.HandleFunc("POST /sync", s.handleSync)
	s.mux.HandleFunc("POST /init", s.handleInit)
}

// ---------------------------------------------------------------------------
// Middleware
// ---------------------------------------------------------------------------

// statusRecorder captures the response status for the audit log.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// auditMiddleware appends one APIRecord per request.
func (s *Server) auditMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.audit == nil {
			next.ServeHTTP(w, r)
			return
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)

		err := s.audit.LogAPI(driven.APIRecord{
			Method:     r.Method,
			Path:       r.URL.Path,
			StatusCode: rec.status,
			Elapsed:    time.Since(start).Seconds(),
			ClientIP:   clientIP(r),
		})
		if err != nil {
			logger.Warn("audit log write failed: %v", err)
		}
	})
}

// limitBody restricts the request body to maxRequestBody bytes.
func limitBody(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// ---------------------------------------------------------------------------
// Handlers
// ---------------------------------------------------------------------------

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStores(w http.ResponseWriter, r *http.Request) {
	stores, err := s.index.Stores(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"stores": stores})
}

func (s *Server) handleBilling(w http.ResponseWriter, r *http.Request) {
	period := domain.BillingPeriod(r.URL.Query().Get("period"))
	if period == "" {
		period = domain.BillingTotal
	}

	summary, err := s.billing.Summary(period)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

type queryRequest struct {
	Label string `json:"label"`
	Query string `json:"query"`
	Model string `json:"model"`
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if !decodeBody(w, r, &req) {
		return
	}

	res, err := s.query.Answer(r.Context(), req.Label, req.Model, req.Query, "api")
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type syncRequest struct {
	Label string `json:"label"`
	Force bool   `json:"force"`
}

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	var req syncRequest
	if !decodeBody(w, r, &req) {
		return
	}

	res, err := s.index.SyncDatabase(r.Context(), req.Label, req.Force)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type initRequest struct {
	Label       string `json:"label"`
	DatabaseURL string `json:"database_url"`
}

func (s *Server) handleInit(w http.ResponseWriter, r *http.Request) {
	var req initRequest
	if !decodeBody(w, r, &req) {
		return
	}

	res, err := s.index.InitDatabase(r.Context(), req.Label, req.DatabaseURL)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ---------------------------------------------------------------------------
// Response helpers
// ---------------------------------------------------------------------------

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeServiceError maps domain errors onto HTTP status codes.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrAmbiguousLabel),
		errors.Is(err, domain.ErrNoDatabases):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrUnknownLabel):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrStoreEmpty):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
