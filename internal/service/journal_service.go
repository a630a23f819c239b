package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/lingua-api/internal/domain"
	"github.com/phrazzld/lingua-api/internal/platform/logger"
	"github.com/phrazzld/lingua-api/internal/store"
)

// FeedbackGenerator reviews journal entries.
type FeedbackGenerator interface {
	JournalFeedback(ctx context.Context, content, language string) (string, error)
}

// JournalService manages a user's journal.
type JournalService interface {
	// CreateEntry stores an entry and asks for feedback on it. When no
	// feedback can be generated the entry is kept without it.
	CreateEntry(ctx context.Context, userID uuid.UUID, content, language string) (*domain.JournalEntry, error)

	// ListEntries returns up to limit entries, newest first. A non-positive
	// limit returns all of them.
	ListEntries(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.JournalEntry, error)
}

type journalService struct {
	entries  store.JournalStore
	feedback FeedbackGenerator
	logger   *slog.Logger
}

var _ JournalService = (*journalService)(nil)

// NewJournalService creates a JournalService. feedback may be nil, in which
// case entries are stored without feedback.
func NewJournalService(entries store.JournalStore, feedback FeedbackGenerator, logger *slog.Logger) JournalService {
	if entries == nil {
		panic("entries cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &journalService{
		entries:  entries,
		feedback: feedback,
		logger:   logger.With(slog.String("component", "journal_service")),
	}
}

func (s *journalService) CreateEntry(
	ctx context.Context,
	userID uuid.UUID,
	content, language string,
) (*domain.JournalEntry, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	entry, err := domain.NewJournalEntry(userID, content, language)
	if err != nil {
		return nil, err
	}
	if err := s.entries.Create(ctx, entry); err != nil {
		log.Error("failed to save journal entry",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
		return nil, NewServiceError("journal", "create_entry", err)
	}

	if s.feedback == nil {
		return entry, nil
	}

	feedback, err := s.feedback.JournalFeedback(ctx, entry.Content, entry.Language)
	if err != nil {
		log.Warn("journal feedback unavailable",
			slog.String("entry_id", entry.ID.String()),
			slog.String("error", err.Error()))
		return entry, nil
	}

	withFeedback := *entry
	withFeedback.SetFeedback(feedback, time.Now())
	if err := s.entries.Update(ctx, &withFeedback); err != nil {
		log.Error("failed to save journal feedback",
			slog.String("entry_id", entry.ID.String()),
			slog.String("error", err.Error()))
		return entry, nil
	}

	return &withFeedback, nil
}

func (s *journalService) ListEntries(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.JournalEntry, error) {
	entries, err := s.entries.ListByUser(ctx, userID, limit)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list journal entries",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
		return nil, NewServiceError("journal", "list_entries", err)
	}
	return entries, nil
}
