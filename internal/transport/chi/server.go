// Package chi exposes the question answering pipeline over HTTP.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/chanmyae99/sopqa/internal/domain"
	healthuc "github.com/chanmyae99/sopqa/internal/usecase/health"
	"github.com/chanmyae99/sopqa/internal/usecase/retrieval"
)

// Retriever gathers evidence for a question.
type Retriever interface {
	Retrieve(ctx context.Context, question string, textK, imageK int) (retrieval.Evidence, error)
}

// Answerer runs the full answer pipeline.
type Answerer interface {
	Answer(ctx context.Context, question string, textK, imageK int) (domain.Answer, error)
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server holds the HTTP handlers for the question answering API.
type Server struct {
	retriever     Retriever
	answerer      Answerer
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(retriever Retriever, answerer Answerer, health *healthuc.Service, logger *zap.Logger) *Server {
	s := &Server{
		retriever: retriever,
		answerer:  answerer,
		health:    health,
		logger:    logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrBadQuery, http.StatusBadRequest),
		sentinelHandler(domain.ErrEmbeddingProvider, http.StatusBadGateway),
		sentinelHandler(domain.ErrCompletionProvider, http.StatusBadGateway),
	}
	return s
}

// Register mounts the API routes on a router.
func (s *Server) Register(r chi.Router) {
	r.Get("/search", s.Search)
	r.Get("/ask", s.Ask)
	r.Get("/healthz", s.HealthCheck)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)
}

// searchItem is one retrieval hit in the /search response. Vectors never
// leave the service.
type searchItem struct {
	SourceFile string  `json:"source_file"`
	Score      float64 `json:"score"`
	Content    string  `json:"content,omitempty"`
	Caption    string  `json:"caption,omitempty"`
	ImagePath  string  `json:"image_path,omitempty"`
	PageNumber *int    `json:"page_number,omitempty"`
	Section    string  `json:"section,omitempty"`
	Paragraph  *int    `json:"paragraph_number,omitempty"`
	SheetName  string  `json:"sheet_name,omitempty"`
	RowNumber  *int    `json:"row_number,omitempty"`
}

type searchResponse struct {
	Query  string       `json:"query"`
	Texts  []searchItem `json:"text_results"`
	Images []searchItem `json:"image_results"`
}

// Search handles GET /search: evidence retrieval without answer synthesis.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	question := r.URL.Query().Get("q")
	if question == "" {
		writeError(w, http.StatusBadRequest, "query parameter q is required")
		return
	}

	topK, err := parseTopK(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ev, err := s.retriever.Retrieve(r.Context(), question, topK, 0)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	resp := searchResponse{
		Query:  question,
		Texts:  make([]searchItem, 0, len(ev.Texts)),
		Images: make([]searchItem, 0, len(ev.Images)),
	}
	for i := range ev.Texts {
		resp.Texts = append(resp.Texts, toSearchItem(&ev.Texts[i]))
	}
	for i := range ev.Images {
		resp.Images = append(resp.Images, toSearchItem(&ev.Images[i]))
	}

	writeJSON(w, http.StatusOK, resp)
}

// Ask handles GET /ask: the full retrieval and answer pipeline.
func (s *Server) Ask(w http.ResponseWriter, r *http.Request) {
	question := r.URL.Query().Get("q")
	if question == "" {
		writeError(w, http.StatusBadRequest, "query parameter q is required")
		return
	}

	topK, err := parseTopK(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ans, err := s.answerer.Answer(r.Context(), question, topK, 0)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ans)
}

// HealthCheck handles GET /healthz.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

func parseTopK(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("top_k")
	if raw == "" {
		return 0, nil
	}

	k, err := strconv.Atoi(raw)
	if err != nil || k <= 0 {
		return 0, errors.New("top_k must be a positive integer")
	}
	return k, nil
}

func toSearchItem(rec *domain.RetrievedRecord) searchItem {
	ref := rec.Ref()
	return searchItem{
		SourceFile: ref.SourceFile,
		Score:      rec.Score,
		Content:    rec.Content,
		Caption:    ref.Caption,
		ImagePath:  ref.ImagePath,
		PageNumber: ref.PageNumber,
		Section:    ref.Section,
		Paragraph:  ref.Paragraph,
		SheetName:  ref.SheetName,
		RowNumber:  ref.RowNumber,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

// safeDomainMessage returns a sentinel error message for the client without
// exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrBadQuery,
		domain.ErrEmbeddingProvider,
		domain.ErrCompletionProvider,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
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

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal error")
}
