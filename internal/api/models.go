package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/lingua-api/internal/domain"
)

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Email            string `json:"email"             validate:"required,email"`
	Username         string `json:"username"          validate:"required,max=80"`
	Password         string `json:"password"          validate:"required,min=12,max=72"`
	TargetLanguage   string `json:"target_language"   validate:"omitempty,max=50"`
	ProficiencyLevel string `json:"proficiency_level" validate:"omitempty,oneof=beginner intermediate advanced"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// AuthResponse defines the successful response for authentication endpoints.
type AuthResponse struct {
	UserID uuid.UUID `json:"user_id"`

	// AccessToken authorizes API requests as a bearer token.
	AccessToken string `json:"token"`

	// RefreshToken is exchanged for a new token pair at /auth/refresh.
	RefreshToken string `json:"refresh_token,omitempty"`

	// ExpiresAt is the RFC 3339 time the access token expires.
	ExpiresAt string `json:"expires_at,omitempty"`
}

// RefreshTokenRequest defines the payload for the token refresh endpoint.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RefreshTokenResponse defines the successful response for the token refresh endpoint.
type RefreshTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    string `json:"expires_at"`
}

// UserResponse is the authenticated user's profile.
type UserResponse struct {
	ID               uuid.UUID  `json:"id"`
	Email            string     `json:"email"`
	Username         string     `json:"username"`
	TargetLanguage   string     `json:"target_language"`
	ProficiencyLevel string     `json:"proficiency_level"`
	CreatedAt        time.Time  `json:"created_at"`
	LastLoginAt      *time.Time `json:"last_login_at,omitempty"`
}

// SaveWordRequest is the payload for saving a word. Omitted optional fields
// keep their stored value when the word already exists.
type SaveWordRequest struct {
	Word               string     `json:"word"                validate:"required,max=255"`
	Language           string     `json:"language"            validate:"required,max=50"`
	Context            *string    `json:"context"`
	Translation        *string    `json:"translation"         validate:"omitempty,max=255"`
	Notes              *string    `json:"notes"`
	WordType           *string    `json:"word_type"           validate:"omitempty,max=50"`
	PronunciationGuide *string    `json:"pronunciation_guide" validate:"omitempty,max=255"`
	Tags               []string   `json:"tags"                validate:"omitempty,max=20,dive,max=50"`
	SourceContentID    *uuid.UUID `json:"source_content_id"`
}

// SaveWordResponse reports the stored word and whether it was new.
type SaveWordResponse struct {
	Word    *domain.SavedWord `json:"word"`
	Created bool              `json:"created"`
	Updated bool              `json:"updated"`
}

// ReviewRequest is a flashcard answer. A missing or non-boolean knew_answer
// is rejected before anything is loaded.
type ReviewRequest struct {
	KnewAnswer *bool `json:"knew_answer" validate:"required"`
}

// ReviewResponse is the word's schedule after a review.
type ReviewResponse struct {
	ID               uuid.UUID  `json:"id"`
	FamiliarityLevel int        `json:"familiarity_level"`
	NextReviewDate   *time.Time `json:"next_review_date"`
	LastReviewed     *time.Time `json:"last_reviewed"`
}

// FlashcardsResponse is the ordered list of words due for review.
type FlashcardsResponse struct {
	Flashcards []*domain.SavedWord `json:"flashcards"`
}

// TranslateRequest asks for a translation of a word in context.
type TranslateRequest struct {
	Word     string `json:"word"     validate:"required,max=255"`
	Context  string `json:"context"  validate:"max=2000"`
	Language string `json:"language" validate:"omitempty,max=50"`
}

// CreateSourceRequest is the payload for a new content source.
type CreateSourceRequest struct {
	Title       string `json:"title"        validate:"required,max=255"`
	ContentType string `json:"content_type" validate:"omitempty,oneof=article video book podcast other"`
	Content     string `json:"content"      validate:"required"`
	Language    string `json:"language"     validate:"required,max=50"`
	SourceURL   string `json:"source_url"   validate:"omitempty,url,max=2048"`
}

// SourcesResponse lists content sources.
type SourcesResponse struct {
	Sources []*domain.ContentSource `json:"sources"`
}

// SourceResponse is a content source with the words saved from it.
type SourceResponse struct {
	Source *domain.ContentSource `json:"source"`
	Words  []*domain.SavedWord   `json:"words"`
}

// JournalRequest is a new journal entry.
type JournalRequest struct {
	Content  string `json:"content"  validate:"required,max=20000"`
	Language string `json:"language" validate:"required,max=50"`
}

// JournalEntriesResponse lists journal entries.
type JournalEntriesResponse struct {
	Entries []*domain.JournalEntry `json:"entries"`
}

// LessonRequest asks for a generated lesson. Empty language and level use
// the learner's profile.
type LessonRequest struct {
	Language  string `json:"language"   validate:"omitempty,max=50"`
	Level     string `json:"level"      validate:"omitempty,oneof=beginner intermediate advanced"`
	Topic     string `json:"topic"      validate:"required,max=200"`
	Subject   string `json:"subject"    validate:"omitempty,max=100"`
	TaskBased bool   `json:"task_based"`
}

// LessonsResponse lists lessons.
type LessonsResponse struct {
	Lessons []*domain.Lesson `json:"lessons"`
}

// WritingExerciseRequest asks for a writing task.
type WritingExerciseRequest struct {
	Language string `json:"language" validate:"omitempty,max=50"`
	Level    string `json:"level"    validate:"omitempty,oneof=beginner intermediate advanced"`
	Topic    string `json:"topic"    validate:"max=200"`
}

// WritingExerciseResponse carries a generated writing task.
type WritingExerciseResponse struct {
	Exercise string `json:"exercise"`
}

// WritingCheckRequest submits writing for review.
type WritingCheckRequest struct {
	Content  string `json:"content"  validate:"required,max=20000"`
	Language string `json:"language" validate:"omitempty,max=50"`
	Exercise string `json:"exercise" validate:"max=5000"`
}

// WritingCheckResponse carries feedback on a submission.
type WritingCheckResponse struct {
	Feedback string `json:"feedback"`
}

// TypingQuery holds the query parameters of GET /api/writing/typing.
type TypingQuery struct {
	Language string `validate:"omitempty,max=50"`
	Script   string `validate:"omitempty,max=50"`
	Level    string `validate:"omitempty,oneof=beginner intermediate advanced"`
}

// CulturalQuery holds the query parameters of GET /api/immersion/cultural.
type CulturalQuery struct {
	Language string `validate:"omitempty,max=50"`
	Aspect   string `validate:"omitempty,max=100"`
	Region   string `validate:"omitempty,max=100"`
}

// ReadingQuery holds the query parameters of GET /api/immersion/content.
type ReadingQuery struct {
	Language string `validate:"omitempty,max=50"`
	Kind     string `validate:"omitempty,max=20"`
	Topic    string `validate:"omitempty,max=100"`
	Level    string `validate:"omitempty,oneof=beginner intermediate advanced"`
}

// HealthResponse reports liveness.
type HealthResponse struct {
	Status  string `json:"status"`
	Storage string `json:"storage"`
	AI      bool   `json:"ai_enabled"`
}

func userToResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:               u.ID,
		Email:            u.Email,
		Username:         u.Username,
		TargetLanguage:   u.TargetLanguage,
		ProficiencyLevel: string(u.ProficiencyLevel),
		CreatedAt:        u.CreatedAt,
		LastLoginAt:      u.LastLoginAt,
	}
}

func reviewToResponse(w *domain.SavedWord) ReviewResponse {
	return ReviewResponse{
		ID:               w.ID,
		FamiliarityLevel: w.FamiliarityLevel,
		NextReviewDate:   w.NextReviewDate,
		LastReviewed:     w.LastReviewed,
	}
}

func (r SaveWordRequest) details() domain.WordDetails {
	return domain.WordDetails{
		Context:            r.Context,
		Translation:        r.Translation,
		Notes:              r.Notes,
		WordType:           r.WordType,
		PronunciationGuide: r.PronunciationGuide,
		Tags:               r.Tags,
		SourceContentID:    r.SourceContentID,
	}
}
