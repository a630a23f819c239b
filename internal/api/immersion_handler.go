package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/lingua-api/internal/api/shared"
	"github.com/phrazzld/lingua-api/internal/domain"
	"github.com/phrazzld/lingua-api/internal/platform/logger"
	"github.com/phrazzld/lingua-api/internal/service"
)

// ImmersionHandler serves generated immersion material.
type ImmersionHandler struct {
	immersion service.ImmersionService
	logger    *slog.Logger
}

// NewImmersionHandler creates an ImmersionHandler.
func NewImmersionHandler(immersion service.ImmersionService, logger *slog.Logger) *ImmersionHandler {
	if immersion == nil {
		panic("immersion service cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ImmersionHandler{
		immersion: immersion,
		logger:    logger.With(slog.String("component", "immersion_handler")),
	}
}

// Cultural handles GET /api/immersion/cultural?language=&aspect=&region=.
func (h *ImmersionHandler) Cultural(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	q := CulturalQuery{
		Language: queryValue(r, "language"),
		Aspect:   queryValue(r, "aspect"),
		Region:   queryValue(r, "region"),
	}
	if !validateQuery(w, r, &q) {
		return
	}

	piece, err := h.immersion.Cultural(r.Context(), userID, service.CulturalInput{
		Language: q.Language,
		Aspect:   q.Aspect,
		Region:   q.Region,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to generate cultural content")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, piece)
}

// Reading handles GET /api/immersion/content?language=&type=&topic=&difficulty=.
func (h *ImmersionHandler) Reading(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	q := ReadingQuery{
		Language: queryValue(r, "language"),
		Kind:     queryValue(r, "type"),
		Topic:    queryValue(r, "topic"),
		Level:    queryValue(r, "difficulty"),
	}
	if !validateQuery(w, r, &q) {
		return
	}

	piece, err := h.immersion.Reading(r.Context(), userID, service.ReadingInput{
		Language: q.Language,
		Level:    domain.ProficiencyLevel(q.Level),
		Kind:     q.Kind,
		Topic:    q.Topic,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to generate immersion content")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, piece)
}
