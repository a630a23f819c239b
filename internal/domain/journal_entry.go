package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// JournalEntry is a piece of free writing in the target language, optionally
// annotated with generated feedback.
type JournalEntry struct {
	ID         uuid.UUID `json:"id"`
	UserID     uuid.UUID `json:"user_id"`
	Content    string    `json:"content"`
	Language   string    `json:"language"`
	AIFeedback *string   `json:"ai_feedback"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NewJournalEntry creates a validated entry without feedback.
func NewJournalEntry(userID uuid.UUID, content, language string) (*JournalEntry, error) {
	now := time.Now().UTC()
	e := &JournalEntry{
		ID:        uuid.New(),
		UserID:    userID,
		Content:   content,
		Language:  strings.TrimSpace(language),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

// SetFeedback attaches generated feedback to the entry.
func (e *JournalEntry) SetFeedback(feedback string, now time.Time) {
	e.AIFeedback = &feedback
	e.UpdatedAt = now.UTC()
}

// Validate checks if the JournalEntry has valid data.
func (e *JournalEntry) Validate() error {
	if e.ID == uuid.Nil {
		return NewValidationError("id", "cannot be empty", ErrInvalidID)
	}
	if e.UserID == uuid.Nil {
		return NewValidationError("user_id", "cannot be empty", ErrEmptyUserID)
	}
	if strings.TrimSpace(e.Content) == "" {
		return NewValidationError("content", "cannot be empty", ErrEmptyContent)
	}
	if e.Language == "" {
		return NewValidationError("language", "cannot be empty", ErrEmptyLanguage)
	}
	return nil
}
