package api

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/ai-startup-tracker/tracker/internal/core"
	apperrors "github.com/ai-startup-tracker/tracker/internal/errors"
	"github.com/ai-startup-tracker/tracker/internal/feed"
)

const maxBodyBytes = 1 << 20

type APIHandler struct {
	directory *core.DirectoryService
	feed      *core.FeedService
	tickets   *core.TicketService
}

func NewAPIHandler(d *core.DirectoryService, f *core.FeedService, t *core.TicketService) *APIHandler {
	return &APIHandler{directory: d, feed: f, tickets: t}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

// writeError maps err to its status. Internal causes are logged, never sent.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	tErr, ok := apperrors.As(err)
	if !ok {
		tErr = apperrors.NewInternal("Internal server error", err)
	}
	if tErr.Status >= http.StatusInternalServerError {
		log.Error().Err(tErr.Err).
			Str("request_id", GetRequestID(r.Context())).
			Str("path", r.URL.Path).
			Msg(tErr.Message)
	}
	writeJSON(w, tErr.Status, errorResponse{Error: tErr.Message})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperrors.NewInvalidRequest("Invalid request body")
	}
	return nil
}

func (h *APIHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *APIHandler) ListStartupsHandler(w http.ResponseWriter, r *http.Request) {
	page, err := h.directory.ListStartups(r.Context(), r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *APIHandler) GetStartupHandler(w http.ResponseWriter, r *http.Request) {
	detail, err := h.directory.GetStartup(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (h *APIHandler) ListPeopleHandler(w http.ResponseWriter, r *http.Request) {
	page, err := h.directory.ListPeople(r.Context(), r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *APIHandler) ListProductsHandler(w http.ResponseWriter, r *http.Request) {
	list, err := h.directory.ListProducts(r.Context(), r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *APIHandler) ListVCsHandler(w http.ResponseWriter, r *http.Request) {
	list, err := h.directory.ListVCs(r.Context(), r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *APIHandler) StatsHandler(w http.ResponseWriter, r *http.Request) {
	stats, err := h.directory.Stats(r.Context(), r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// RSSHandler renders into a buffer first so a failure still yields a clean 500.
func (h *APIHandler) RSSHandler(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.feed.Write(r.Context(), &buf, r.URL.Query()); err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", feed.ContentType)
	w.Header().Set("Cache-Control", feed.CacheControl)
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}

func (h *APIHandler) SuggestHandler(w http.ResponseWriter, r *http.Request) {
	var req core.SuggestRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.tickets.Submit(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *APIHandler) VerifyHandler(w http.ResponseWriter, r *http.Request) {
	var req core.VerifyRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.tickets.Verify(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
