package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/phrazzld/lingua-api/internal/api/shared"
	"github.com/phrazzld/lingua-api/internal/domain"
	"github.com/phrazzld/lingua-api/internal/platform/logger"
	"github.com/phrazzld/lingua-api/internal/service"
	"github.com/phrazzld/lingua-api/internal/store"
)

// ContentHandler serves the content source endpoints.
type ContentHandler struct {
	content service.ContentService
	logger  *slog.Logger
}

// NewContentHandler creates a ContentHandler.
func NewContentHandler(content service.ContentService, logger *slog.Logger) *ContentHandler {
	if content == nil {
		panic("content service cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ContentHandler{
		content: content,
		logger:  logger.With(slog.String("component", "content_handler")),
	}
}

// CreateSource handles POST /api/content/sources.
func (h *ContentHandler) CreateSource(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	var req CreateSourceRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	source, err := h.content.CreateSource(r.Context(), userID, service.SourceInput{
		Title:       req.Title,
		ContentType: domain.ContentType(req.ContentType),
		Content:     req.Content,
		Language:    req.Language,
		SourceURL:   req.SourceURL,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create content source")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, source)
}

// ImportContent handles POST /api/content/import. It takes the same payload
// as CreateSource and answers with the stored source and its study guide.
func (h *ContentHandler) ImportContent(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	var req CreateSourceRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	source, err := h.content.ImportContent(r.Context(), userID, service.SourceInput{
		Title:       req.Title,
		ContentType: domain.ContentType(req.ContentType),
		Content:     req.Content,
		Language:    req.Language,
		SourceURL:   req.SourceURL,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to import content")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, source)
}

// ListSources handles GET /api/content/sources.
func (h *ContentHandler) ListSources(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	q := r.URL.Query()
	sources, err := h.content.ListSources(r.Context(), userID, store.ContentFilter{
		Language:    strings.TrimSpace(q.Get("language")),
		ContentType: domain.ContentType(strings.ToLower(strings.TrimSpace(q.Get("content_type")))),
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list content sources")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, SourcesResponse{Sources: sources})
}

// GetSource handles GET /api/content/sources/{id}.
func (h *ContentHandler) GetSource(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, sourceID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	source, err := h.content.GetSource(r.Context(), userID, sourceID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get content source")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, SourceResponse{
		Source: source.ContentSource,
		Words:  source.Words,
	})
}
