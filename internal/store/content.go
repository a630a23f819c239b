package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/lingua-api/internal/domain"
)

// ContentFilter narrows a content source listing. Empty fields do not filter.
type ContentFilter struct {
	Language    string
	ContentType domain.ContentType
}

// ContentSourceStore defines the interface for content source persistence.
type ContentSourceStore interface {
	// Create saves a new content source.
	Create(ctx context.Context, source *domain.ContentSource) error

	// GetByID retrieves a content source.
	// Returns ErrContentSourceNotFound if it does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ContentSource, error)

	// List returns a user's content sources matching filter, newest first.
	List(ctx context.Context, userID uuid.UUID, filter ContentFilter) ([]*domain.ContentSource, error)
}

// JournalStore defines the interface for journal entry persistence.
type JournalStore interface {
	// Create saves a new journal entry.
	Create(ctx context.Context, entry *domain.JournalEntry) error

	// Update persists the entry's feedback and UpdatedAt.
	// Returns ErrJournalEntryNotFound if it does not exist.
	Update(ctx context.Context, entry *domain.JournalEntry) error

	// ListByUser returns up to limit of a user's entries, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.JournalEntry, error)
}

// LessonStore defines the interface for lesson persistence.
type LessonStore interface {
	// Create saves a new lesson.
	Create(ctx context.Context, lesson *domain.Lesson) error

	// GetByID retrieves a lesson.
	// Returns ErrLessonNotFound if it does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Lesson, error)

	// ListByUser returns up to limit of a user's lessons, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.Lesson, error)
}
