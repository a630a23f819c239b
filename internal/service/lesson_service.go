package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/lingua-api/internal/domain"
	"github.com/phrazzld/lingua-api/internal/generation"
	"github.com/phrazzld/lingua-api/internal/platform/logger"
	"github.com/phrazzld/lingua-api/internal/store"
)

// LessonGenerator writes lesson material.
type LessonGenerator interface {
	Lesson(ctx context.Context, req generation.LessonRequest) (string, error)
}

// LessonService generates and stores lessons.
type LessonService interface {
	// GenerateLesson writes a lesson and stores it. Empty language and level
	// fall back to the user's target language and proficiency.
	GenerateLesson(ctx context.Context, userID uuid.UUID, input LessonInput) (*domain.Lesson, error)

	// ListLessons returns up to limit lessons, newest first.
	ListLessons(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.Lesson, error)

	// GetLesson returns one of the user's lessons.
	GetLesson(ctx context.Context, userID, lessonID uuid.UUID) (*domain.Lesson, error)
}

// LessonInput describes the lesson to generate. Subject selects a
// subject-based lesson that teaches Topic within an academic subject.
type LessonInput struct {
	Language  string
	Level     domain.ProficiencyLevel
	Topic     string
	Subject   string
	TaskBased bool
}

type lessonService struct {
	lessons   store.LessonStore
	users     store.UserStore
	generator LessonGenerator
	logger    *slog.Logger
}

var _ LessonService = (*lessonService)(nil)

// NewLessonService creates a LessonService. generator may be nil, in which
// case GenerateLesson reports generation.ErrUnavailable.
func NewLessonService(
	lessons store.LessonStore,
	users store.UserStore,
	generator LessonGenerator,
	logger *slog.Logger,
) LessonService {
	if lessons == nil {
		panic("lessons cannot be nil")
	}
	if users == nil {
		panic("users cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &lessonService{
		lessons:   lessons,
		users:     users,
		generator: generator,
		logger:    logger.With(slog.String("component", "lesson_service")),
	}
}

func (s *lessonService) GenerateLesson(
	ctx context.Context,
	userID uuid.UUID,
	input LessonInput,
) (*domain.Lesson, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	input.Topic = strings.TrimSpace(input.Topic)
	input.Subject = strings.TrimSpace(input.Subject)
	if input.Topic == "" {
		return nil, domain.NewValidationError("topic", "cannot be empty", domain.ErrEmptyTopic)
	}
	if s.generator == nil {
		return nil, generation.ErrUnavailable
	}

	language, level, err := learnerDefaults(ctx, s.users, userID, input.Language, input.Level)
	if err != nil {
		return nil, NewServiceError("lesson", "generate", err)
	}

	content, err := s.generator.Lesson(ctx, generation.LessonRequest{
		Language:  language,
		Level:     string(level),
		Topic:     input.Topic,
		Subject:   input.Subject,
		TaskBased: input.TaskBased,
	})
	if err != nil {
		log.Warn("lesson generation failed",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
		return nil, err
	}

	lesson, err := domain.NewLesson(userID, language, level, input.Topic, content)
	if err != nil {
		return nil, err
	}
	lesson.Description = lessonDescription(input, language)

	if err := s.lessons.Create(ctx, lesson); err != nil {
		log.Error("failed to save lesson",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
		return nil, NewServiceError("lesson", "generate", err)
	}

	log.Info("lesson generated",
		slog.String("user_id", userID.String()),
		slog.String("lesson_id", lesson.ID.String()),
		slog.String("level", string(level)))
	return lesson, nil
}

func lessonDescription(input LessonInput, language string) string {
	switch {
	case input.Subject != "":
		return input.Subject + " taught in " + language
	case input.TaskBased:
		return "Task-based " + language + " lesson"
	default:
		return language + " lesson"
	}
}

func (s *lessonService) ListLessons(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.Lesson, error) {
	lessons, err := s.lessons.ListByUser(ctx, userID, limit)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list lessons",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
		return nil, NewServiceError("lesson", "list", err)
	}
	return lessons, nil
}

func (s *lessonService) GetLesson(ctx context.Context, userID, lessonID uuid.UUID) (*domain.Lesson, error) {
	lesson, err := s.lessons.GetByID(ctx, lessonID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrLessonNotFound
		}
		return nil, NewServiceError("lesson", "get", err)
	}
	if lesson.UserID != userID {
		return nil, ErrLessonNotFound
	}
	return lesson, nil
}

// learnerDefaults fills an empty language and level from the user's profile.
func learnerDefaults(
	ctx context.Context,
	users store.UserStore,
	userID uuid.UUID,
	language string,
	level domain.ProficiencyLevel,
) (string, domain.ProficiencyLevel, error) {
	language = strings.TrimSpace(language)
	if language != "" && level != "" {
		if !level.Valid() {
			return "", "", domain.NewValidationError("level", "must be beginner, intermediate or advanced",
				domain.ErrInvalidProficiency)
		}
		return language, level, nil
	}

	user, err := users.GetByID(ctx, userID)
	if err != nil {
		return "", "", fmt.Errorf("failed to load learner profile: %w", err)
	}
	if language == "" {
		language = user.TargetLanguage
	}
	if level == "" {
		level = user.ProficiencyLevel
	}
	if !level.Valid() {
		return "", "", domain.NewValidationError("level", "must be beginner, intermediate or advanced",
			domain.ErrInvalidProficiency)
	}
	return language, level, nil
}
