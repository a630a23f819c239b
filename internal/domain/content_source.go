package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrEmptyTitle         = errors.New("title cannot be empty")
	ErrInvalidContentType = errors.New("invalid content type")
)

// ContentType classifies immersion material.
type ContentType string

const (
	ContentArticle ContentType = "article"
	ContentVideo   ContentType = "video"
	ContentBook    ContentType = "book"
	ContentPodcast ContentType = "podcast"
	ContentOther   ContentType = "other"
)

// Valid reports whether c is a known content type.
func (c ContentType) Valid() bool {
	switch c {
	case ContentArticle, ContentVideo, ContentBook, ContentPodcast, ContentOther:
		return true
	}
	return false
}

// ContentSource is a piece of immersion material words can be saved from.
type ContentSource struct {
	ID          uuid.UUID   `json:"id"`
	UserID      uuid.UUID   `json:"user_id"`
	Title       string      `json:"title"`
	ContentType ContentType `json:"content_type"`
	Content     string      `json:"content"`
	Language    string      `json:"language"`
	SourceURL   string      `json:"source_url"`
	StudyGuide  *StudyGuide `json:"study_guide"`
	CreatedAt   time.Time   `json:"created_at"`
}

// StudyGuide is the generated vocabulary and comprehension material for a
// content source. Summary is only filled for video transcripts.
type StudyGuide struct {
	Vocabulary []GlossaryEntry `json:"vocabulary"`
	Questions  []string        `json:"questions"`
	Summary    string          `json:"summary,omitempty"`
}

// GlossaryEntry is one word or phrase picked out of a text.
type GlossaryEntry struct {
	Word        string `json:"word"`
	Translation string `json:"translation"`
	Notes       string `json:"notes,omitempty"`
}

// Clone returns a deep copy of g.
func (g *StudyGuide) Clone() *StudyGuide {
	if g == nil {
		return nil
	}
	c := *g
	c.Vocabulary = append([]GlossaryEntry(nil), g.Vocabulary...)
	c.Questions = append([]string(nil), g.Questions...)
	return &c
}

// NewContentSource creates a validated ContentSource.
func NewContentSource(
	userID uuid.UUID,
	title string,
	contentType ContentType,
	content, language, sourceURL string,
) (*ContentSource, error) {
	cs := &ContentSource{
		ID:          uuid.New(),
		UserID:      userID,
		Title:       strings.TrimSpace(title),
		ContentType: ContentType(strings.ToLower(string(contentType))),
		Content:     content,
		Language:    strings.TrimSpace(language),
		SourceURL:   strings.TrimSpace(sourceURL),
		CreatedAt:   time.Now().UTC(),
	}
	if err := cs.Validate(); err != nil {
		return nil, err
	}
	return cs, nil
}

// Validate checks if the ContentSource has valid data.
func (c *ContentSource) Validate() error {
	if c.ID == uuid.Nil {
		return NewValidationError("id", "cannot be empty", ErrInvalidID)
	}
	if c.UserID == uuid.Nil {
		return NewValidationError("user_id", "cannot be empty", ErrEmptyUserID)
	}
	if c.Title == "" {
		return NewValidationError("title", "cannot be empty", ErrEmptyTitle)
	}
	if len(c.Title) > 200 {
		return NewValidationError("title", "must be at most 200 characters", nil)
	}
	if !c.ContentType.Valid() {
		return NewValidationError("content_type", "must be one of article, video, book, podcast, other", ErrInvalidContentType)
	}
	if strings.TrimSpace(c.Content) == "" {
		return NewValidationError("content", "cannot be empty", ErrEmptyContent)
	}
	if c.Language == "" {
		return NewValidationError("language", "cannot be empty", ErrEmptyLanguage)
	}
	return nil
}
