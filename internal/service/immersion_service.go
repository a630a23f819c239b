package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/lingua-api/internal/domain"
	"github.com/phrazzld/lingua-api/internal/generation"
	"github.com/phrazzld/lingua-api/internal/platform/logger"
	"github.com/phrazzld/lingua-api/internal/store"
)

// Immersion defaults used when a request leaves the field empty.
const (
	DefaultCulturalAspect = "traditions"
	DefaultReadingKind    = "article"
)

// ReadingKinds lists the forms a generated reading piece can take.
var ReadingKinds = []string{"article", "story", "dialogue", "news"}

// ImmersionWriter writes immersion material.
type ImmersionWriter interface {
	CulturalContent(ctx context.Context, req generation.CulturalRequest) (string, error)
	ImmersionText(ctx context.Context, req generation.ImmersionRequest) (string, error)
}

// ImmersionService generates reading material in the target language.
// Nothing it produces is stored; an interesting piece can be kept with
// ContentService.CreateSource.
type ImmersionService interface {
	// Cultural writes about an aspect of the culture behind the language.
	Cultural(ctx context.Context, userID uuid.UUID, input CulturalInput) (*ImmersionPiece, error)

	// Reading writes a short text pitched at the learner's level.
	Reading(ctx context.Context, userID uuid.UUID, input ReadingInput) (*ImmersionPiece, error)
}

// CulturalInput selects the cultural content to write.
type CulturalInput struct {
	Language string
	Aspect   string
	Region   string
}

// ReadingInput selects the reading piece to write.
type ReadingInput struct {
	Language string
	Level    domain.ProficiencyLevel
	Kind     string
	Topic    string
}

// ImmersionPiece is a generated piece of immersion material.
type ImmersionPiece struct {
	Title       string    `json:"title"`
	Language    string    `json:"language"`
	Level       string    `json:"level,omitempty"`
	Kind        string    `json:"kind"`
	Topic       string    `json:"topic,omitempty"`
	Aspect      string    `json:"cultural_aspect,omitempty"`
	Region      string    `json:"region,omitempty"`
	Content     string    `json:"content"`
	GeneratedAt time.Time `json:"generated_at"`
}

type immersionService struct {
	users  store.UserStore
	writer ImmersionWriter
	logger *slog.Logger
}

var _ ImmersionService = (*immersionService)(nil)

// NewImmersionService creates an ImmersionService. writer may be nil, in
// which case every call reports generation.ErrUnavailable.
func NewImmersionService(users store.UserStore, writer ImmersionWriter, logger *slog.Logger) ImmersionService {
	if users == nil {
		panic("users cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &immersionService{
		users:  users,
		writer: writer,
		logger: logger.With(slog.String("component", "immersion_service")),
	}
}

func (s *immersionService) Cultural(
	ctx context.Context,
	userID uuid.UUID,
	input CulturalInput,
) (*ImmersionPiece, error) {
	if s.writer == nil {
		return nil, generation.ErrUnavailable
	}

	aspect := strings.TrimSpace(input.Aspect)
	if aspect == "" {
		aspect = DefaultCulturalAspect
	}
	region := strings.TrimSpace(input.Region)
	language, _, err := learnerDefaults(ctx, s.users, userID, input.Language, domain.ProficiencyBeginner)
	if err != nil {
		return nil, NewServiceError("immersion", "cultural", err)
	}

	content, err := s.writer.CulturalContent(ctx, generation.CulturalRequest{
		Language: language,
		Aspect:   aspect,
		Region:   region,
	})
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Warn("cultural content generation failed",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
		return nil, err
	}

	return &ImmersionPiece{
		Title:       generation.Title(content, "Cultural Immersion"),
		Language:    language,
		Kind:        "cultural",
		Aspect:      aspect,
		Region:      region,
		Content:     content,
		GeneratedAt: time.Now().UTC(),
	}, nil
}

func (s *immersionService) Reading(
	ctx context.Context,
	userID uuid.UUID,
	input ReadingInput,
) (*ImmersionPiece, error) {
	kind := strings.ToLower(strings.TrimSpace(input.Kind))
	if kind == "" {
		kind = DefaultReadingKind
	}
	if !validReadingKind(kind) {
		return nil, domain.NewValidationError("type", "must be one of "+strings.Join(ReadingKinds, ", "),
			domain.ErrInvalidContentType)
	}
	if s.writer == nil {
		return nil, generation.ErrUnavailable
	}

	language, level, err := learnerDefaults(ctx, s.users, userID, input.Language, input.Level)
	if err != nil {
		return nil, NewServiceError("immersion", "reading", err)
	}
	topic := strings.TrimSpace(input.Topic)

	content, err := s.writer.ImmersionText(ctx, generation.ImmersionRequest{
		Language:    language,
		Level:       string(level),
		ContentType: kind,
		Topic:       topic,
	})
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Warn("immersion text generation failed",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
		return nil, err
	}

	return &ImmersionPiece{
		Title:       generation.Title(content, "Untitled Content"),
		Language:    language,
		Level:       string(level),
		Kind:        kind,
		Topic:       topic,
		Content:     content,
		GeneratedAt: time.Now().UTC(),
	}, nil
}

func validReadingKind(kind string) bool {
	for _, k := range ReadingKinds {
		if k == kind {
			return true
		}
	}
	return false
}
