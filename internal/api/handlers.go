// Package api exposes one crawler agent over HTTP as JSON.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/maltedev/manga-crawler-agents/internal/agent"
	"github.com/maltedev/manga-crawler-agents/internal/browser"
	"github.com/maltedev/manga-crawler-agents/internal/models"
	"github.com/maltedev/manga-crawler-agents/internal/parser"
	"github.com/maltedev/manga-crawler-agents/internal/ratelimit"
)

// pinger is implemented by agents that can check the site without a browser.
type pinger interface {
	Ping(ctx context.Context) error
}

// outcomeRecorder is implemented by limiters that adapt to failures.
type outcomeRecorder interface {
	RecordSuccess()
	RecordError()
}

type Handlers struct {
	agent   agent.Agent
	limiter ratelimit.RateLimiter
	logger  *slog.Logger
}

func NewHandlers(a agent.Agent, limiter ratelimit.RateLimiter, logger *slog.Logger) *Handlers {
	if limiter == nil {
		limiter = ratelimit.NewSimpleRateLimiter(0, 0)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{
		agent:   a,
		limiter: limiter,
		logger:  logger.With("component", "api"),
	}
}

// Mount registers the health check and the /api/v1 routes on r.
func (h *Handlers) Mount(r chi.Router) {
	r.Get("/health", h.Health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/manga", h.Search)
		r.Get("/manga/{id}", h.GetManga)
		r.Get("/manga/{id}/chapters", h.GetChapters)
		r.Get("/chapters/pages", h.GetChapterPages)
		r.Get("/favicon", h.GetFavicon)
	})
}

// Health reports liveness without touching the browser. With ?check=site it
// also checks that the target site answers plain HTTP.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	health := map[string]string{
		"status":   "ok",
		"agent":    h.agent.Name(),
		"base_url": h.agent.BaseURL().String(),
	}

	status := http.StatusOK
	if r.URL.Query().Get("check") == "site" {
		if p, ok := h.agent.(pinger); ok {
			if err := p.Ping(r.Context()); err != nil {
				h.logger.Warn("site check failed", "error", err)
				health["status"] = "degraded"
				health["message"] = err.Error()
				status = http.StatusServiceUnavailable
			} else {
				health["site"] = "reachable"
			}
		}
	}

	h.respondJSON(w, status, health)
}

// Search handles GET /api/v1/manga?q=
func (h *Handlers) Search(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		h.respondError(w, http.StatusBadRequest, "q is required")
		return
	}

	paging, err := pagingFromQuery(r.URL.Query())
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if !h.wait(w, r) {
		return
	}

	result, err := h.agent.Search(r.Context(), query, paging)
	h.record(err)
	if err != nil {
		h.logger.Error("search failed", "query", query, "error", err)
		h.respondAgentError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, NewPagedResponse(result, NewMangaResponse))
}

// GetManga handles GET /api/v1/manga/{id}
func (h *Handlers) GetManga(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if !h.wait(w, r) {
		return
	}

	manga, err := h.agent.GetByID(r.Context(), id)
	h.record(err)
	if err != nil {
		h.logger.Error("failed to get manga", "id", id, "error", err)
		h.respondAgentError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, NewMangaResponse(manga))
}

// GetChapters handles GET /api/v1/manga/{id}/chapters
func (h *Handlers) GetChapters(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	paging, err := pagingFromQuery(r.URL.Query())
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if !h.wait(w, r) {
		return
	}

	result, err := h.agent.GetChapters(r.Context(), &models.Manga{ID: id}, paging)
	h.record(err)
	if err != nil {
		h.logger.Error("failed to get chapters", "id", id, "error", err)
		h.respondAgentError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, NewPagedResponse(result, NewChapterResponse))
}

// GetChapterPages handles GET /api/v1/chapters/pages?url=&id=. The chapter id
// defaults to the last segment of the url.
func (h *Handlers) GetChapterPages(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimSpace(r.URL.Query().Get("url"))
	uri, err := url.Parse(raw)
	if raw == "" || err != nil || uri.Scheme == "" || uri.Host == "" {
		h.respondError(w, http.StatusBadRequest, "url must be an absolute chapter url")
		return
	}

	id := strings.TrimSpace(r.URL.Query().Get("id"))
	if id == "" {
		id = parser.LastSegment(raw)
	}

	if !h.wait(w, r) {
		return
	}

	pages, err := h.agent.GetChapterPages(r.Context(), &models.Chapter{ID: id, URI: uri})
	h.record(err)
	if err != nil {
		h.logger.Error("failed to get chapter pages", "url", raw, "error", err)
		h.respondAgentError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, NewPageResponses(pages))
}

// GetFavicon handles GET /api/v1/favicon. It is not rate limited.
func (h *Handlers) GetFavicon(w http.ResponseWriter, r *http.Request) {
	u, err := h.agent.GetFavicon(r.Context())
	if err != nil {
		h.respondAgentError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, FaviconResponse{URL: u.String()})
}

func (h *Handlers) wait(w http.ResponseWriter, r *http.Request) bool {
	if err := h.limiter.Wait(r.Context()); err != nil {
		h.respondError(w, http.StatusServiceUnavailable, "request cancelled while rate limited")
		return false
	}
	return true
}

// record feeds site-side failures back to an adaptive limiter.
func (h *Handlers) record(err error) {
	rec, ok := h.limiter.(outcomeRecorder)
	if !ok {
		return
	}
	switch {
	case err == nil:
		rec.RecordSuccess()
	case errors.Is(err, browser.ErrNavigationTimeout), errors.Is(err, parser.ErrBlocked):
		rec.RecordError()
	}
}

func pagingFromQuery(q url.Values) (models.PaginationOptions, error) {
	var opts models.PaginationOptions
	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return opts, errors.New("page must be a non-negative integer")
		}
		opts.PageIndex = n
	}
	if v := q.Get("page_size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return opts, errors.New("page_size must be a non-negative integer")
		}
		opts.PageSize = n
	}
	return opts, nil
}

// StatusFor maps agent errors onto HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, agent.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, agent.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, browser.ErrNavigationTimeout), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, parser.ErrBlocked):
		return http.StatusBadGateway
	case errors.Is(err, browser.ErrCancelled), errors.Is(err, browser.ErrSessionClosed), errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handlers) respondAgentError(w http.ResponseWriter, err error) {
	h.respondError(w, StatusFor(err), err.Error())
}

func (h *Handlers) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handlers) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, ErrorResponse{Error: message})
}
