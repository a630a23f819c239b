package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Familiarity bounds for a saved word. Level 0 is a new word and level 5 is mastered.
const (
	MinFamiliarityLevel = 0
	MaxFamiliarityLevel = 5
)

// Field limits mirrored by the relational schema.
const (
	maxWordLength        = 100
	maxLanguageLength    = 50
	maxTranslationLength = 100
	maxWordTypeLength    = 50
	maxPronunciationLen  = 255
)

var (
	ErrEmptyWord     = errors.New("word cannot be empty")
	ErrWordTooLong   = errors.New("word must be at most 100 characters long")
	ErrEmptyLanguage = errors.New("language cannot be empty")
)

// SavedWord is a vocabulary item a user saved for study.
//
// Familiarity fields (FamiliarityLevel, LastReviewed, NextReviewDate) change
// only through the srs package; ApplyDetails never touches them.
type SavedWord struct {
	ID                 uuid.UUID  `json:"id"`
	UserID             uuid.UUID  `json:"user_id"`
	Word               string     `json:"word"`
	Language           string     `json:"language"`
	Context            string     `json:"context"`
	Translation        string     `json:"translation"`
	Notes              string     `json:"notes"`
	WordType           string     `json:"word_type"`
	Tags               []string   `json:"tags"`
	SourceContentID    *uuid.UUID `json:"source_content_id"`
	PronunciationGuide string     `json:"pronunciation_guide"`
	FamiliarityLevel   int        `json:"familiarity_level"`
	LastReviewed       *time.Time `json:"last_reviewed"`
	NextReviewDate     *time.Time `json:"next_review_date"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// WordDetails carries the descriptive fields of a saved word. A nil pointer
// leaves the current value untouched on update; empty Tags and a nil
// SourceContentID are likewise ignored.
type WordDetails struct {
	Context            *string
	Translation        *string
	Notes              *string
	WordType           *string
	PronunciationGuide *string
	Tags               []string
	SourceContentID    *uuid.UUID
}

// NewSavedWord creates a level-0 word that has never been reviewed.
func NewSavedWord(userID uuid.UUID, word, language string, details WordDetails) (*SavedWord, error) {
	now := time.Now().UTC()
	w := &SavedWord{
		ID:        uuid.New(),
		UserID:    userID,
		Word:      strings.TrimSpace(word),
		Language:  strings.TrimSpace(language),
		Tags:      []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	w.ApplyDetails(details, now)

	if err := w.Validate(); err != nil {
		return nil, err
	}

	return w, nil
}

// ApplyDetails overwrites the descriptive fields present in d and bumps UpdatedAt.
func (w *SavedWord) ApplyDetails(d WordDetails, now time.Time) {
	if d.Context != nil {
		w.Context = *d.Context
	}
	if d.Translation != nil {
		w.Translation = *d.Translation
	}
	if d.Notes != nil {
		w.Notes = *d.Notes
	}
	if d.WordType != nil {
		w.WordType = *d.WordType
	}
	if d.PronunciationGuide != nil {
		w.PronunciationGuide = *d.PronunciationGuide
	}
	if len(d.Tags) > 0 {
		w.Tags = append([]string(nil), d.Tags...)
	}
	if d.SourceContentID != nil {
		id := *d.SourceContentID
		w.SourceContentID = &id
	}
	w.UpdatedAt = now.UTC()
}

// Validate checks if the SavedWord has valid data.
func (w *SavedWord) Validate() error {
	if w.ID == uuid.Nil {
		return NewValidationError("id", "cannot be empty", ErrInvalidID)
	}
	if w.UserID == uuid.Nil {
		return NewValidationError("user_id", "cannot be empty", ErrEmptyUserID)
	}
	if w.Word == "" {
		return NewValidationError("word", "cannot be empty", ErrEmptyWord)
	}
	if len(w.Word) > maxWordLength {
		return NewValidationError("word", "too long", ErrWordTooLong)
	}
	if w.Language == "" {
		return NewValidationError("language", "cannot be empty", ErrEmptyLanguage)
	}
	if len(w.Language) > maxLanguageLength {
		return NewValidationError("language", fmt.Sprintf("must be at most %d characters", maxLanguageLength), nil)
	}
	if len(w.Translation) > maxTranslationLength {
		return NewValidationError("translation", fmt.Sprintf("must be at most %d characters", maxTranslationLength), nil)
	}
	if len(w.WordType) > maxWordTypeLength {
		return NewValidationError("word_type", fmt.Sprintf("must be at most %d characters", maxWordTypeLength), nil)
	}
	if len(w.PronunciationGuide) > maxPronunciationLen {
		return NewValidationError("pronunciation_guide", fmt.Sprintf("must be at most %d characters", maxPronunciationLen), nil)
	}
	if w.FamiliarityLevel < MinFamiliarityLevel || w.FamiliarityLevel > MaxFamiliarityLevel {
		return NewValidationError("familiarity_level", "must be between 0 and 5", ErrInvalidFamiliarityLevel)
	}
	return nil
}

// Clone returns a deep copy of the word.
func (w *SavedWord) Clone() *SavedWord {
	c := *w
	if w.Tags != nil {
		c.Tags = append([]string(nil), w.Tags...)
	}
	if w.SourceContentID != nil {
		id := *w.SourceContentID
		c.SourceContentID = &id
	}
	if w.LastReviewed != nil {
		t := *w.LastReviewed
		c.LastReviewed = &t
	}
	if w.NextReviewDate != nil {
		t := *w.NextReviewDate
		c.NextReviewDate = &t
	}
	return &c
}

// FamiliarityBand groups familiarity levels for filtering and stats.
type FamiliarityBand string

const (
	BandNew      FamiliarityBand = "new"
	BandLearning FamiliarityBand = "learning"
	BandMastered FamiliarityBand = "mastered"
)

// ParseFamiliarityBand converts a query value into a band.
func ParseFamiliarityBand(s string) (FamiliarityBand, error) {
	switch b := FamiliarityBand(strings.ToLower(strings.TrimSpace(s))); b {
	case BandNew, BandLearning, BandMastered:
		return b, nil
	}
	return "", fmt.Errorf("%w: unknown familiarity %q", ErrInvalidFormat, s)
}

// BandFor returns the band a familiarity level belongs to.
func BandFor(level int) FamiliarityBand {
	switch {
	case level <= MinFamiliarityLevel:
		return BandNew
	case level >= MaxFamiliarityLevel:
		return BandMastered
	default:
		return BandLearning
	}
}

// Contains reports whether level falls inside the band.
func (b FamiliarityBand) Contains(level int) bool {
	return BandFor(level) == b
}

// WordStats counts a user's words per familiarity band.
type WordStats struct {
	Total    int `json:"total"`
	New      int `json:"new"`
	Learning int `json:"learning"`
	Mastered int `json:"mastered"`
}

// Add counts one more word at the given level.
func (s *WordStats) Add(level int) {
	s.Total++
	switch BandFor(level) {
	case BandNew:
		s.New++
	case BandLearning:
		s.Learning++
	case BandMastered:
		s.Mastered++
	}
}
