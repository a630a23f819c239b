package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/lingua-api/internal/api/shared"
	"github.com/phrazzld/lingua-api/internal/domain"
	"github.com/phrazzld/lingua-api/internal/platform/logger"
	"github.com/phrazzld/lingua-api/internal/service"
)

// PracticeHandler serves the journal, lesson, writing and typing endpoints.
type PracticeHandler struct {
	journal service.JournalService
	lessons service.LessonService
	writing service.WritingService
	logger  *slog.Logger
}

// NewPracticeHandler creates a PracticeHandler.
func NewPracticeHandler(
	journal service.JournalService,
	lessons service.LessonService,
	writing service.WritingService,
	logger *slog.Logger,
) *PracticeHandler {
	if journal == nil {
		panic("journal service cannot be nil")
	}
	if lessons == nil {
		panic("lesson service cannot be nil")
	}
	if writing == nil {
		panic("writing service cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PracticeHandler{
		journal: journal,
		lessons: lessons,
		writing: writing,
		logger:  logger.With(slog.String("component", "practice_handler")),
	}
}

// CreateJournalEntry handles POST /api/journal. The entry is stored even
// when feedback generation fails; ai_feedback is then null.
func (h *PracticeHandler) CreateJournalEntry(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	var req JournalRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	entry, err := h.journal.CreateEntry(r.Context(), userID, req.Content, req.Language)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to save journal entry")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, entry)
}

// ListJournalEntries handles GET /api/journal?limit=N.
func (h *PracticeHandler) ListJournalEntries(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	limit, err := listLimit(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	entries, err := h.journal.ListEntries(r.Context(), userID, limit)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list journal entries")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, JournalEntriesResponse{Entries: entries})
}

// GenerateLesson handles POST /api/lessons.
func (h *PracticeHandler) GenerateLesson(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	var req LessonRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	lesson, err := h.lessons.GenerateLesson(r.Context(), userID, service.LessonInput{
		Language:  req.Language,
		Level:     domain.ProficiencyLevel(req.Level),
		Topic:     req.Topic,
		Subject:   req.Subject,
		TaskBased: req.TaskBased,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to generate lesson")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, lesson)
}

// ListLessons handles GET /api/lessons?limit=N.
func (h *PracticeHandler) ListLessons(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	limit, err := listLimit(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	lessons, err := h.lessons.ListLessons(r.Context(), userID, limit)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list lessons")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, LessonsResponse{Lessons: lessons})
}

// GetLesson handles GET /api/lessons/{id}.
func (h *PracticeHandler) GetLesson(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, lessonID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	lesson, err := h.lessons.GetLesson(r.Context(), userID, lessonID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get lesson")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, lesson)
}

// WritingExercise handles POST /api/writing/exercise.
func (h *PracticeHandler) WritingExercise(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	var req WritingExerciseRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	exercise, err := h.writing.Exercise(r.Context(), userID, req.Language, domain.ProficiencyLevel(req.Level), req.Topic)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to generate exercise")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, WritingExerciseResponse{Exercise: exercise})
}

// CheckWriting handles POST /api/writing/check.
func (h *PracticeHandler) CheckWriting(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	var req WritingCheckRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	feedback, err := h.writing.Check(r.Context(), userID, req.Content, req.Language, req.Exercise)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to check writing")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, WritingCheckResponse{Feedback: feedback})
}

// TypingExercise handles GET /api/writing/typing?language=&script_type=&difficulty=.
func (h *PracticeHandler) TypingExercise(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	q := TypingQuery{
		Language: queryValue(r, "language"),
		Script:   queryValue(r, "script_type"),
		Level:    queryValue(r, "difficulty"),
	}
	if !validateQuery(w, r, &q) {
		return
	}

	exercise, err := h.writing.Typing(r.Context(), userID, service.TypingInput{
		Language: q.Language,
		Script:   q.Script,
		Level:    domain.ProficiencyLevel(q.Level),
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to generate typing exercise")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, exercise)
}

// listLimit is queryLimit with the listing default applied.
func listLimit(r *http.Request) (int, error) {
	limit, err := queryLimit(r, maxListLimit)
	if err != nil {
		return 0, err
	}
	if limit == 0 {
		limit = defaultListLimit
	}
	return limit, nil
}
