package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/phrazzld/lingua-api/internal/api/shared"
	"github.com/phrazzld/lingua-api/internal/domain"
	"github.com/phrazzld/lingua-api/internal/platform/logger"
	"github.com/phrazzld/lingua-api/internal/service/vocabulary"
	"github.com/phrazzld/lingua-api/internal/store"
)

// maxUploadBytes caps vocabulary import uploads.
const maxUploadBytes = 10 << 20

// VocabularyHandler serves the saved word and flashcard endpoints.
type VocabularyHandler struct {
	vocab  vocabulary.Service
	logger *slog.Logger
}

// NewVocabularyHandler creates a VocabularyHandler.
func NewVocabularyHandler(vocab vocabulary.Service, logger *slog.Logger) *VocabularyHandler {
	if vocab == nil {
		panic("vocabulary service cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &VocabularyHandler{
		vocab:  vocab,
		logger: logger.With(slog.String("component", "vocabulary_handler")),
	}
}

// SaveWord handles POST /api/vocabulary. A new word answers 201, an update
// of an existing one 200.
func (h *VocabularyHandler) SaveWord(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	var req SaveWordRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	word, created, err := h.vocab.SaveWord(r.Context(), userID, vocabulary.SaveWordInput{
		Word:     req.Word,
		Language: req.Language,
		Details:  req.details(),
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to save word")
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	shared.RespondWithJSON(w, r, status, SaveWordResponse{Word: word, Created: created, Updated: !created})
}

// ListWords handles GET /api/vocabulary.
func (h *VocabularyHandler) ListWords(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	q := r.URL.Query()
	filter := store.WordFilter{
		Language: strings.TrimSpace(q.Get("language")),
		WordType: strings.TrimSpace(q.Get("word_type")),
		Search:   strings.TrimSpace(q.Get("search")),
	}
	if raw := q.Get("familiarity"); raw != "" {
		band, err := domain.ParseFamiliarityBand(raw)
		if err != nil {
			HandleAPIError(w, r, domain.NewValidationError("familiarity",
				"must be new, learning or mastered", err), "")
			return
		}
		filter.Familiarity = band
	}

	list, err := h.vocab.ListWords(r.Context(), userID, filter)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list words")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, list)
}

// GetWord handles GET /api/vocabulary/{id}.
func (h *VocabularyHandler) GetWord(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, wordID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	word, err := h.vocab.GetWord(r.Context(), userID, wordID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get word")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, word)
}

// DeleteWord handles DELETE /api/vocabulary/{id}.
func (h *VocabularyHandler) DeleteWord(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, wordID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	if err := h.vocab.DeleteWord(r.Context(), userID, wordID); err != nil {
		HandleAPIError(w, r, err, "Failed to delete word")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Flashcards handles GET /api/vocabulary/flashcards?limit=N.
func (h *VocabularyHandler) Flashcards(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	limit, err := queryLimit(r, 0)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	words, err := h.vocab.DueWords(r.Context(), userID, limit)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get flashcards")
		return
	}

	log.Debug("flashcards selected", slog.Int("count", len(words)))
	shared.RespondWithJSON(w, r, http.StatusOK, FlashcardsResponse{Flashcards: words})
}

// Review handles POST /api/vocabulary/{id}/review.
func (h *VocabularyHandler) Review(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, wordID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	var req ReviewRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	word, err := h.vocab.RecordReview(r.Context(), userID, wordID, *req.KnewAnswer)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to record review")
		return
	}

	log.Debug("review recorded",
		slog.String("word_id", wordID.String()),
		slog.Bool("knew_answer", *req.KnewAnswer),
		slog.Int("familiarity_level", word.FamiliarityLevel))
	shared.RespondWithJSON(w, r, http.StatusOK, reviewToResponse(word))
}

// Translate handles POST /api/vocabulary/translate.
func (h *VocabularyHandler) Translate(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	var req TranslateRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}
	if strings.TrimSpace(req.Language) == "" {
		req.Language = domain.DefaultTargetLanguage
	}

	tr, err := h.vocab.TranslateWord(r.Context(), userID, req.Word, req.Context, req.Language)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to translate word")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, tr)
}

// Import handles POST /api/vocabulary/import, a multipart form with a
// "file" part and an optional "language" default.
func (h *VocabularyHandler) Import(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			shared.RespondWithError(w, r, http.StatusRequestEntityTooLarge, "File is too large")
			return
		}
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid multipart form")
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "File is required")
		return
	}
	defer func() { _ = file.Close() }()

	result, err := h.vocab.ImportWords(r.Context(), userID, vocabulary.Upload{
		Filename: header.Filename,
		Body:     file,
	}, strings.TrimSpace(r.FormValue("language")))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to import words")
		return
	}

	log.Info("vocabulary imported",
		slog.String("filename", header.Filename),
		slog.Int("created", result.Created),
		slog.Int("updated", result.Updated),
		slog.Int("skipped", result.Skipped))
	shared.RespondWithJSON(w, r, http.StatusOK, result)
}
