package vocabulary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/lingua-api/internal/domain"
	"github.com/phrazzld/lingua-api/internal/domain/srs"
	"github.com/phrazzld/lingua-api/internal/generation"
	"github.com/phrazzld/lingua-api/internal/platform/logger"
	"github.com/phrazzld/lingua-api/internal/store"
)

// Verify interface compliance at compile time
var _ Service = (*serviceImpl)(nil)

type serviceImpl struct {
	words      store.WordStore
	scheduler  srs.Service
	translator Translator
	limits     Limits
	now        Clock
	logger     *slog.Logger
}

// Option configures the service.
type Option func(*serviceImpl)

// WithClock replaces the wall clock used for scheduling.
func WithClock(now Clock) Option {
	return func(s *serviceImpl) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLimits sets the flashcard session limits. Non-positive values keep
// the defaults.
func WithLimits(l Limits) Option {
	return func(s *serviceImpl) {
		if l.DefaultDue > 0 {
			s.limits.DefaultDue = l.DefaultDue
		}
		if l.MaxDue > 0 {
			s.limits.MaxDue = l.MaxDue
		}
		if s.limits.MaxDue < s.limits.DefaultDue {
			s.limits.MaxDue = s.limits.DefaultDue
		}
	}
}

// NewService creates a vocabulary Service. translator may be nil, in which
// case TranslateWord reports generation.ErrUnavailable.
func NewService(
	words store.WordStore,
	scheduler srs.Service,
	translator Translator,
	logger *slog.Logger,
	opts ...Option,
) Service {
	if words == nil {
		panic("words cannot be nil")
	}
	if scheduler == nil {
		panic("scheduler cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &serviceImpl{
		words:      words,
		scheduler:  scheduler,
		translator: translator,
		limits:     DefaultLimits,
		now:        func() time.Time { return time.Now().UTC() },
		logger:     logger.With(slog.String("component", "vocabulary_service")),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SaveWord implements Service.SaveWord.
func (s *serviceImpl) SaveWord(
	ctx context.Context,
	userID uuid.UUID,
	input SaveWordInput,
) (*domain.SavedWord, bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	input.Word = strings.TrimSpace(input.Word)
	input.Language = strings.TrimSpace(input.Language)

	saved, created, err := s.upsert(ctx, userID, input)
	if errors.Is(err, store.ErrWordExists) {
		// Lost a race with a concurrent save of the same word; the second
		// attempt finds the row.
		saved, created, err = s.upsert(ctx, userID, input)
	}
	if err != nil {
		if errors.Is(err, ErrInvalidWord) {
			log.Debug("rejected invalid word",
				slog.String("user_id", userID.String()),
				slog.String("error", err.Error()))
			return nil, false, err
		}
		log.Error("failed to save word",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
		return nil, false, NewServiceError("save_word", "failed to save word", err)
	}

	log.Debug("word saved",
		slog.String("user_id", userID.String()),
		slog.String("word_id", saved.ID.String()),
		slog.Bool("created", created))
	return saved, created, nil
}

func (s *serviceImpl) upsert(
	ctx context.Context,
	userID uuid.UUID,
	input SaveWordInput,
) (*domain.SavedWord, bool, error) {
	var (
		saved   *domain.SavedWord
		created bool
	)
	err := s.words.RunInTx(ctx, func(ctx context.Context, tx store.WordStore) error {
		existing, err := tx.FindByWord(ctx, userID, input.Word, input.Language)
		switch {
		case err == nil:
			existing.ApplyDetails(input.Details, s.now())
			if err := existing.Validate(); err != nil {
				return fmt.Errorf("%w: %w", ErrInvalidWord, err)
			}
			if err := tx.UpdateDetails(ctx, existing); err != nil {
				return invalidAsWord(err)
			}
			saved = existing
			return nil

		case errors.Is(err, store.ErrNotFound):
			word, err := domain.NewSavedWord(userID, input.Word, input.Language, input.Details)
			if err != nil {
				return fmt.Errorf("%w: %w", ErrInvalidWord, err)
			}
			if err := tx.Create(ctx, word); err != nil {
				return invalidAsWord(err)
			}
			saved = word
			created = true
			return nil

		default:
			return fmt.Errorf("failed to look up word: %w", err)
		}
	})
	return saved, created, err
}

// GetWord implements Service.GetWord.
func (s *serviceImpl) GetWord(ctx context.Context, userID, wordID uuid.UUID) (*domain.SavedWord, error) {
	word, err := s.owned(ctx, s.words, userID, wordID)
	if err != nil {
		if errors.Is(err, ErrWordNotFound) {
			return nil, err
		}
		return nil, NewServiceError("get_word", "failed to get word", err)
	}
	return word, nil
}

// ListWords implements Service.ListWords.
func (s *serviceImpl) ListWords(ctx context.Context, userID uuid.UUID, filter store.WordFilter) (*WordList, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	filter.Search = strings.TrimSpace(filter.Search)
	words, err := s.words.List(ctx, userID, filter)
	if err != nil {
		log.Error("failed to list words",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
		return nil, NewServiceError("list_words", "failed to list words", err)
	}

	stats, err := s.words.Stats(ctx, userID)
	if err != nil {
		log.Error("failed to count words",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
		return nil, NewServiceError("list_words", "failed to count words", err)
	}

	return &WordList{Words: words, Stats: stats}, nil
}

// DeleteWord implements Service.DeleteWord.
func (s *serviceImpl) DeleteWord(ctx context.Context, userID, wordID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	err := s.words.RunInTx(ctx, func(ctx context.Context, tx store.WordStore) error {
		if _, err := s.owned(ctx, tx, userID, wordID); err != nil {
			return err
		}
		if err := tx.Delete(ctx, wordID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrWordNotFound
			}
			return fmt.Errorf("failed to delete word: %w", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrWordNotFound) {
			return err
		}
		log.Error("failed to delete word",
			slog.String("user_id", userID.String()),
			slog.String("word_id", wordID.String()),
			slog.String("error", err.Error()))
		return NewServiceError("delete_word", "failed to delete word", err)
	}

	log.Debug("word deleted",
		slog.String("user_id", userID.String()),
		slog.String("word_id", wordID.String()))
	return nil
}

// DueWords implements Service.DueWords.
func (s *serviceImpl) DueWords(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.SavedWord, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	limit = s.clampLimit(limit)
	words, err := s.words.ListDue(ctx, userID, s.now(), limit)
	if err != nil {
		log.Error("failed to select due words",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
		return nil, NewServiceError("due_words", "failed to select due words", err)
	}

	log.Debug("selected due words",
		slog.String("user_id", userID.String()),
		slog.Int("count", len(words)),
		slog.Int("limit", limit))
	return words, nil
}

func (s *serviceImpl) clampLimit(limit int) int {
	if limit <= 0 {
		return s.limits.DefaultDue
	}
	return min(limit, s.limits.MaxDue)
}

// RecordReview implements Service.RecordReview.
func (s *serviceImpl) RecordReview(
	ctx context.Context,
	userID, wordID uuid.UUID,
	knewAnswer bool,
) (*domain.SavedWord, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	log.Debug("recording review",
		slog.String("user_id", userID.String()),
		slog.String("word_id", wordID.String()),
		slog.Bool("knew_answer", knewAnswer))

	var updated *domain.SavedWord
	err := s.words.RunInTx(ctx, func(ctx context.Context, tx store.WordStore) error {
		word, err := s.owned(ctx, tx, userID, wordID)
		if err != nil {
			return err
		}

		next, err := s.scheduler.RecordOutcome(word, knewAnswer, s.now())
		if err != nil {
			return fmt.Errorf("failed to calculate next review: %w", err)
		}

		if err := tx.UpdateFamiliarity(ctx, next); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrWordNotFound
			}
			return fmt.Errorf("failed to update familiarity: %w", err)
		}

		updated = next
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrWordNotFound) {
			return nil, err
		}
		log.Error("failed to record review",
			slog.String("user_id", userID.String()),
			slog.String("word_id", wordID.String()),
			slog.String("error", err.Error()))
		return nil, NewServiceError("record_review", "failed to record review", err)
	}

	log.Debug("review recorded",
		slog.String("user_id", userID.String()),
		slog.String("word_id", wordID.String()),
		slog.Int("familiarity_level", updated.FamiliarityLevel),
		slog.Time("next_review_date", *updated.NextReviewDate))
	return updated, nil
}

// TranslateWord implements Service.TranslateWord.
func (s *serviceImpl) TranslateWord(
	ctx context.Context,
	userID uuid.UUID,
	word, wordContext, language string,
) (*generation.Translation, error) {
	if s.translator == nil {
		return nil, generation.ErrUnavailable
	}

	tr, err := s.translator.Translate(ctx, word, wordContext, language)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Warn("translation failed",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
		return nil, err
	}
	return tr, nil
}

// owned loads a word and hides words of other users behind ErrWordNotFound.
func (s *serviceImpl) owned(
	ctx context.Context,
	words store.WordStore,
	userID, wordID uuid.UUID,
) (*domain.SavedWord, error) {
	word, err := words.GetByID(ctx, wordID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrWordNotFound
		}
		return nil, fmt.Errorf("failed to get word: %w", err)
	}
	if word.UserID != userID {
		logger.FromContextOrDefault(ctx, s.logger).Warn("word owned by another user",
			slog.String("user_id", userID.String()),
			slog.String("word_id", wordID.String()))
		return nil, ErrWordNotFound
	}
	return word, nil
}

func invalidAsWord(err error) error {
	if errors.Is(err, store.ErrInvalidEntity) {
		return fmt.Errorf("%w: %w", ErrInvalidWord, err)
	}
	return err
}
