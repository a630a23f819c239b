package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrEmptyTopic = errors.New("topic cannot be empty")

// Lesson is a generated lesson persisted for later study.
type Lesson struct {
	ID          uuid.UUID        `json:"id"`
	UserID      uuid.UUID        `json:"user_id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Language    string           `json:"language"`
	Level       ProficiencyLevel `json:"level"`
	Topic       string           `json:"topic"`
	Content     string           `json:"content"`
	CreatedAt   time.Time        `json:"created_at"`
}

// NewLesson creates a validated Lesson. The title defaults to one derived
// from the topic and level.
func NewLesson(userID uuid.UUID, language string, level ProficiencyLevel, topic, content string) (*Lesson, error) {
	topic = strings.TrimSpace(topic)
	l := &Lesson{
		ID:        uuid.New(),
		UserID:    userID,
		Title:     lessonTitle(topic, level),
		Language:  strings.TrimSpace(language),
		Level:     level,
		Topic:     topic,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	if err := l.Validate(); err != nil {
		return nil, err
	}
	return l, nil
}

func lessonTitle(topic string, level ProficiencyLevel) string {
	if topic == "" {
		return ""
	}
	lvl := string(level)
	if lvl != "" {
		lvl = strings.ToUpper(lvl[:1]) + lvl[1:]
	}
	return strings.TrimSpace(topic + " (" + lvl + ")")
}

// Validate checks if the Lesson has valid data.
func (l *Lesson) Validate() error {
	if l.ID == uuid.Nil {
		return NewValidationError("id", "cannot be empty", ErrInvalidID)
	}
	if l.UserID == uuid.Nil {
		return NewValidationError("user_id", "cannot be empty", ErrEmptyUserID)
	}
	if l.Topic == "" {
		return NewValidationError("topic", "cannot be empty", ErrEmptyTopic)
	}
	if l.Language == "" {
		return NewValidationError("language", "cannot be empty", ErrEmptyLanguage)
	}
	if !l.Level.Valid() {
		return NewValidationError("level", "must be beginner, intermediate or advanced", ErrInvalidProficiency)
	}
	if strings.TrimSpace(l.Content) == "" {
		return NewValidationError("content", "cannot be empty", ErrEmptyContent)
	}
	return nil
}
