package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/lingua-api/internal/domain"
	"github.com/phrazzld/lingua-api/internal/generation"
	"github.com/phrazzld/lingua-api/internal/platform/logger"
	"github.com/phrazzld/lingua-api/internal/store"
)

// DefaultTypingScript is the script typing exercises use when none is given.
const DefaultTypingScript = "standard"

// WritingAssistant sets and reviews writing tasks.
type WritingAssistant interface {
	WritingExercise(ctx context.Context, language, level, topic string) (string, error)
	CheckWriting(ctx context.Context, content, language, exercise string) (string, error)
	TypingExercise(ctx context.Context, language, script, level string) (string, error)
}

// WritingService offers writing practice. Nothing it produces is stored.
type WritingService interface {
	// Exercise returns a writing task. Empty language and level fall back to
	// the user's profile; topic is optional.
	Exercise(ctx context.Context, userID uuid.UUID, language string, level domain.ProficiencyLevel, topic string) (string, error)

	// Check reviews a submission, optionally against the exercise it answers.
	Check(ctx context.Context, userID uuid.UUID, content, language, exercise string) (string, error)

	// Typing returns keyboard practice for a script of the language.
	Typing(ctx context.Context, userID uuid.UUID, input TypingInput) (*TypingExercise, error)
}

// TypingInput selects a typing exercise. Empty fields fall back to the
// user's profile and DefaultTypingScript.
type TypingInput struct {
	Language string
	Script   string
	Level    domain.ProficiencyLevel
}

// TypingExercise is a generated typing drill.
type TypingExercise struct {
	Language string `json:"language"`
	Script   string `json:"script_type"`
	Level    string `json:"difficulty"`
	Content  string `json:"content"`
}

type writingService struct {
	users     store.UserStore
	assistant WritingAssistant
	logger    *slog.Logger
}

var _ WritingService = (*writingService)(nil)

// NewWritingService creates a WritingService. assistant may be nil, in which
// case every call reports generation.ErrUnavailable.
func NewWritingService(users store.UserStore, assistant WritingAssistant, logger *slog.Logger) WritingService {
	if users == nil {
		panic("users cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &writingService{
		users:     users,
		assistant: assistant,
		logger:    logger.With(slog.String("component", "writing_service")),
	}
}

func (s *writingService) Exercise(
	ctx context.Context,
	userID uuid.UUID,
	language string,
	level domain.ProficiencyLevel,
	topic string,
) (string, error) {
	if s.assistant == nil {
		return "", generation.ErrUnavailable
	}

	language, level, err := learnerDefaults(ctx, s.users, userID, language, level)
	if err != nil {
		return "", NewServiceError("writing", "exercise", err)
	}

	exercise, err := s.assistant.WritingExercise(ctx, language, string(level), strings.TrimSpace(topic))
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Warn("writing exercise generation failed",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
		return "", err
	}
	return exercise, nil
}

func (s *writingService) Check(
	ctx context.Context,
	userID uuid.UUID,
	content, language, exercise string,
) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", domain.NewValidationError("content", "cannot be empty", domain.ErrEmptyContent)
	}
	if s.assistant == nil {
		return "", generation.ErrUnavailable
	}

	language, _, err := learnerDefaults(ctx, s.users, userID, language, domain.ProficiencyBeginner)
	if err != nil {
		return "", NewServiceError("writing", "check", err)
	}

	feedback, err := s.assistant.CheckWriting(ctx, content, language, strings.TrimSpace(exercise))
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Warn("writing check failed",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
		return "", err
	}
	return feedback, nil
}

func (s *writingService) Typing(ctx context.Context, userID uuid.UUID, input TypingInput) (*TypingExercise, error) {
	if s.assistant == nil {
		return nil, generation.ErrUnavailable
	}

	language, level, err := learnerDefaults(ctx, s.users, userID, input.Language, input.Level)
	if err != nil {
		return nil, NewServiceError("writing", "typing", err)
	}
	script := strings.ToLower(strings.TrimSpace(input.Script))
	if script == "" {
		script = DefaultTypingScript
	}

	content, err := s.assistant.TypingExercise(ctx, language, script, string(level))
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Warn("typing exercise generation failed",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
		return nil, err
	}
	return &TypingExercise{Language: language, Script: script, Level: string(level), Content: content}, nil
}
