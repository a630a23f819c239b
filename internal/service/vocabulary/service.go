// Package vocabulary implements the saved-word use cases: building the
// vocabulary list, reviewing flashcards and importing word lists.
package vocabulary

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/lingua-api/internal/domain"
	"github.com/phrazzld/lingua-api/internal/generation"
	"github.com/phrazzld/lingua-api/internal/store"
)

// Service defines the operations on a user's saved words.
type Service interface {
	// SaveWord stores a word for the user. When the user already saved the
	// same word in the same language, the descriptive fields of the existing
	// row are updated and its review schedule is left alone; created reports
	// which of the two happened.
	SaveWord(ctx context.Context, userID uuid.UUID, input SaveWordInput) (word *domain.SavedWord, created bool, err error)

	// GetWord returns one of the user's words. Words owned by someone else
	// are reported as ErrWordNotFound.
	GetWord(ctx context.Context, userID, wordID uuid.UUID) (*domain.SavedWord, error)

	// ListWords returns the user's words matching filter, newest first,
	// together with band counts over the whole vocabulary.
	ListWords(ctx context.Context, userID uuid.UUID, filter store.WordFilter) (*WordList, error)

	// DeleteWord removes one of the user's words.
	DeleteWord(ctx context.Context, userID, wordID uuid.UUID) error

	// DueWords returns the flashcard session: words due at the current
	// time, scheduled words first, then by ascending familiarity and age.
	// A non-positive limit selects the configured default; larger limits are
	// clamped to the configured maximum.
	DueWords(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.SavedWord, error)

	// RecordReview applies one flashcard outcome to a word and persists the
	// new familiarity level and schedule. Nothing is reported as committed
	// when persisting fails.
	RecordReview(ctx context.Context, userID, wordID uuid.UUID, knewAnswer bool) (*domain.SavedWord, error)

	// TranslateWord asks the text generator for a translation of word as it
	// is used in wordContext.
	TranslateWord(ctx context.Context, userID uuid.UUID, word, wordContext, language string) (*generation.Translation, error)

	// ImportWords saves every row of an uploaded .xlsx or .csv word list.
	// Rows without a language column use defaultLanguage.
	ImportWords(ctx context.Context, userID uuid.UUID, upload Upload, defaultLanguage string) (*ImportResult, error)
}

// SaveWordInput is the word and the descriptive fields to store with it.
type SaveWordInput struct {
	Word     string
	Language string
	Details  domain.WordDetails
}

// WordList is a filtered page of words with vocabulary-wide counts.
type WordList struct {
	Words []*domain.SavedWord `json:"words"`
	Stats domain.WordStats    `json:"stats"`
}

// Upload is an uploaded word list. The format is taken from the file
// name's extension.
type Upload struct {
	Filename string
	Body     io.Reader
}

// ImportResult summarizes an import.
type ImportResult struct {
	Processed int              `json:"processed"`
	Created   int              `json:"created"`
	Updated   int              `json:"updated"`
	Skipped   int              `json:"skipped"`
	Errors    []ImportRowError `json:"errors"`
}

// ImportRowError explains why a row was skipped. Row is 1-based and counts
// the header.
type ImportRowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// Translator produces translations for TranslateWord.
type Translator interface {
	Translate(ctx context.Context, word, wordContext, language string) (*generation.Translation, error)
}

// Limits bounds the size of a flashcard session.
type Limits struct {
	DefaultDue int
	MaxDue     int
}

// DefaultLimits are used when no limits are configured.
var DefaultLimits = Limits{DefaultDue: 20, MaxDue: 100}

// Clock returns the current time.
type Clock func() time.Time

// Common errors returned by the vocabulary service.
var (
	// ErrWordNotFound indicates the word does not exist or belongs to another user.
	ErrWordNotFound = errors.New("saved word not found")

	// ErrInvalidWord indicates the word or its details failed validation.
	ErrInvalidWord = errors.New("invalid saved word")

	// ErrUnsupportedFormat indicates an upload that is neither .xlsx nor .csv.
	ErrUnsupportedFormat = errors.New("unsupported import format: use .xlsx or .csv")

	// ErrInvalidImport indicates an upload that could not be read as a word list.
	ErrInvalidImport = errors.New("invalid import file")
)

// ServiceError wraps unexpected failures of the vocabulary service with the
// operation that failed.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "record_review", "save_word")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError returns a ServiceError for operation.
func NewServiceError(operation, message string, err error) *ServiceError {
	return &ServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
