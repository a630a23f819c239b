package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/lingua-api/internal/domain"
	"github.com/phrazzld/lingua-api/internal/generation"
	"github.com/phrazzld/lingua-api/internal/platform/logger"
	"github.com/phrazzld/lingua-api/internal/store"
)

// ContentService manages the texts, videos and books a user reads and saves
// words from.
type ContentService interface {
	// CreateSource stores a new content source for the user.
	CreateSource(ctx context.Context, userID uuid.UUID, input SourceInput) (*domain.ContentSource, error)

	// ListSources returns the user's sources, newest first.
	ListSources(ctx context.Context, userID uuid.UUID, filter store.ContentFilter) ([]*domain.ContentSource, error)

	// GetSource returns one of the user's sources with the words saved from it.
	GetSource(ctx context.Context, userID, sourceID uuid.UUID) (*SourceWithWords, error)

	// ImportContent stores an external text together with a generated study
	// guide. Nothing is stored when the guide cannot be generated.
	ImportContent(ctx context.Context, userID uuid.UUID, input SourceInput) (*domain.ContentSource, error)
}

// StudyGuideGenerator extracts study material from a text.
type StudyGuideGenerator interface {
	StudyGuide(ctx context.Context, req generation.StudyGuideRequest) (*domain.StudyGuide, error)
}

// SourceInput holds the fields of a new content source.
type SourceInput struct {
	Title       string
	ContentType domain.ContentType
	Content     string
	Language    string
	SourceURL   string
}

// SourceWithWords is a content source and the vocabulary saved from it.
type SourceWithWords struct {
	*domain.ContentSource
	Words []*domain.SavedWord `json:"words"`
}

type contentService struct {
	sources store.ContentSourceStore
	words   store.WordStore
	guides  StudyGuideGenerator
	logger  *slog.Logger
}

var _ ContentService = (*contentService)(nil)

// NewContentService creates a ContentService. guides may be nil, in which
// case ImportContent reports generation.ErrUnavailable.
func NewContentService(
	sources store.ContentSourceStore,
	words store.WordStore,
	guides StudyGuideGenerator,
	logger *slog.Logger,
) ContentService {
	if sources == nil {
		panic("sources cannot be nil")
	}
	if words == nil {
		panic("words cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &contentService{
		sources: sources,
		words:   words,
		guides:  guides,
		logger:  logger.With(slog.String("component", "content_service")),
	}
}

func (s *contentService) CreateSource(
	ctx context.Context,
	userID uuid.UUID,
	input SourceInput,
) (*domain.ContentSource, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	source, err := newSource(userID, input)
	if err != nil {
		return nil, err
	}

	if err := s.sources.Create(ctx, source); err != nil {
		log.Error("failed to save content source",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
		return nil, NewServiceError("content", "create_source", err)
	}

	log.Debug("content source created",
		slog.String("user_id", userID.String()),
		slog.String("source_id", source.ID.String()))
	return source, nil
}

func (s *contentService) ImportContent(
	ctx context.Context,
	userID uuid.UUID,
	input SourceInput,
) (*domain.ContentSource, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	source, err := newSource(userID, input)
	if err != nil {
		return nil, err
	}
	if s.guides == nil {
		return nil, generation.ErrUnavailable
	}

	guide, err := s.guides.StudyGuide(ctx, generation.StudyGuideRequest{
		Title:       source.Title,
		Language:    source.Language,
		ContentType: string(source.ContentType),
		Content:     source.Content,
		Transcript:  source.ContentType == domain.ContentVideo,
	})
	if err != nil {
		log.Warn("study guide generation failed",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
		return nil, err
	}
	source.StudyGuide = guide

	if err := s.sources.Create(ctx, source); err != nil {
		log.Error("failed to save imported content",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
		return nil, NewServiceError("content", "import_content", err)
	}

	log.Info("content imported",
		slog.String("user_id", userID.String()),
		slog.String("source_id", source.ID.String()),
		slog.Int("vocabulary", len(guide.Vocabulary)),
		slog.Int("questions", len(guide.Questions)))
	return source, nil
}

// newSource builds a ContentSource, defaulting the type to article.
func newSource(userID uuid.UUID, input SourceInput) (*domain.ContentSource, error) {
	if input.ContentType == "" {
		input.ContentType = domain.ContentArticle
	}
	return domain.NewContentSource(
		userID,
		input.Title,
		input.ContentType,
		input.Content,
		input.Language,
		input.SourceURL,
	)
}

func (s *contentService) ListSources(
	ctx context.Context,
	userID uuid.UUID,
	filter store.ContentFilter,
) ([]*domain.ContentSource, error) {
	if filter.ContentType != "" && !filter.ContentType.Valid() {
		return nil, domain.NewValidationError("content_type", "must be one of article, video, book, podcast, other",
			domain.ErrInvalidContentType)
	}

	sources, err := s.sources.List(ctx, userID, filter)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list content sources",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
		return nil, NewServiceError("content", "list_sources", err)
	}
	return sources, nil
}

func (s *contentService) GetSource(ctx context.Context, userID, sourceID uuid.UUID) (*SourceWithWords, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	source, err := s.sources.GetByID(ctx, sourceID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrSourceNotFound
		}
		return nil, NewServiceError("content", "get_source", err)
	}
	if source.UserID != userID {
		log.Warn("content source owned by another user",
			slog.String("user_id", userID.String()),
			slog.String("source_id", sourceID.String()))
		return nil, ErrSourceNotFound
	}

	words, err := s.words.ListBySource(ctx, userID, sourceID)
	if err != nil {
		return nil, NewServiceError("content", "get_source", fmt.Errorf("failed to list words: %w", err))
	}

	return &SourceWithWords{ContentSource: source, Words: words}, nil
}
