package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/lingua-api/internal/domain"
)

// WordFilter narrows a vocabulary listing. Empty fields do not filter.
type WordFilter struct {
	Language    string
	WordType    string
	Familiarity domain.FamiliarityBand
	// Search is a case-insensitive substring match on the word itself.
	Search string
}

// WordStore defines the interface for saved word persistence.
type WordStore interface {
	// Create saves a new word.
	// Returns ErrWordExists if the (user, word, language) triple is taken.
	Create(ctx context.Context, word *domain.SavedWord) error

	// GetByID retrieves a word by its ID.
	// Returns ErrWordNotFound if the word does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.SavedWord, error)

	// FindByWord retrieves a user's word by its text and language.
	// Returns ErrWordNotFound if the user has not saved it.
	FindByWord(ctx context.Context, userID uuid.UUID, word, language string) (*domain.SavedWord, error)

	// UpdateDetails persists the descriptive fields and UpdatedAt.
	// Familiarity fields are never written by this method.
	// Returns ErrWordNotFound if the word does not exist.
	UpdateDetails(ctx context.Context, word *domain.SavedWord) error

	// UpdateFamiliarity persists FamiliarityLevel, LastReviewed,
	// NextReviewDate and UpdatedAt only.
	// Returns ErrWordNotFound if the word does not exist.
	UpdateFamiliarity(ctx context.Context, word *domain.SavedWord) error

	// Delete removes a word.
	// Returns ErrWordNotFound if the word does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// List returns a user's words matching filter, newest first.
	List(ctx context.Context, userID uuid.UUID, filter WordFilter) ([]*domain.SavedWord, error)

	// ListBySource returns a user's words saved from a content source, newest first.
	ListBySource(ctx context.Context, userID, sourceID uuid.UUID) ([]*domain.SavedWord, error)

	// Stats counts all of a user's words per familiarity band.
	Stats(ctx context.Context, userID uuid.UUID) (domain.WordStats, error)

	// ListDue returns up to limit of a user's words that are due at now:
	// next review at or before now, never scheduled, or at level 0.
	// Results are ordered scheduled-first, then by level, then oldest first, then id.
	ListDue(ctx context.Context, userID uuid.UUID, now time.Time, limit int) ([]*domain.SavedWord, error)

	// RunInTx executes fn atomically. The WordStore passed to fn is bound to
	// the transaction; if fn returns an error none of its writes are kept.
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx WordStore) error) error
}
