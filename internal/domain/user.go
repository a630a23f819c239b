package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Common validation errors
var (
	ErrEmptyUserID         = errors.New("user ID cannot be empty")
	ErrInvalidEmail        = errors.New("invalid email format")
	ErrEmptyEmail          = errors.New("email cannot be empty")
	ErrEmptyUsername       = errors.New("username cannot be empty")
	ErrUsernameTooLong     = errors.New("username must be at most 80 characters long")
	ErrPasswordTooShort    = errors.New("password must be at least 12 characters long")
	ErrPasswordTooLong     = errors.New("password must be at most 72 characters long")
	ErrEmptyPassword       = errors.New("password cannot be empty")
	ErrInvalidProficiency  = errors.New("invalid proficiency level")
	ErrEmptyTargetLanguage = errors.New("target language cannot be empty")
)

// DefaultTargetLanguage is assigned to users who register without choosing one.
const DefaultTargetLanguage = "Spanish"

// ProficiencyLevel is a learner's self-assessed level in the target language.
type ProficiencyLevel string

const (
	ProficiencyBeginner     ProficiencyLevel = "beginner"
	ProficiencyIntermediate ProficiencyLevel = "intermediate"
	ProficiencyAdvanced     ProficiencyLevel = "advanced"
)

// Valid reports whether p is one of the known proficiency levels.
func (p ProficiencyLevel) Valid() bool {
	switch p {
	case ProficiencyBeginner, ProficiencyIntermediate, ProficiencyAdvanced:
		return true
	}
	return false
}

var emailValidator = validator.New()

// User represents a registered learner.
type User struct {
	ID               uuid.UUID        `json:"id"`
	Email            string           `json:"email"`
	Username         string           `json:"username"`
	Password         string           `json:"-"` // Plaintext password, used temporarily during registration
	HashedPassword   string           `json:"-"`
	TargetLanguage   string           `json:"target_language"`
	ProficiencyLevel ProficiencyLevel `json:"proficiency_level"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
	LastLoginAt      *time.Time       `json:"last_login_at,omitempty"`
}

// NewUser creates a new User with the given email, username and password.
// Target language and proficiency fall back to their defaults when empty.
//
// NOTE: the caller is responsible for hashing the password before storing the user.
func NewUser(email, username, password, targetLanguage string, level ProficiencyLevel) (*User, error) {
	if strings.TrimSpace(targetLanguage) == "" {
		targetLanguage = DefaultTargetLanguage
	}
	if level == "" {
		level = ProficiencyBeginner
	}

	now := time.Now().UTC()
	user := &User{
		ID:               uuid.New(),
		Email:            strings.ToLower(strings.TrimSpace(email)),
		Username:         strings.TrimSpace(username),
		Password:         password,
		TargetLanguage:   targetLanguage,
		ProficiencyLevel: level,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// Validate checks if the User has valid data.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return ErrEmptyUserID
	}

	if u.Email == "" {
		return ErrEmptyEmail
	}
	if err := emailValidator.Var(u.Email, "email"); err != nil {
		return ErrInvalidEmail
	}

	if u.Username == "" {
		return ErrEmptyUsername
	}
	if len(u.Username) > 80 {
		return ErrUsernameTooLong
	}

	if u.TargetLanguage == "" {
		return ErrEmptyTargetLanguage
	}
	if !u.ProficiencyLevel.Valid() {
		return ErrInvalidProficiency
	}

	// Plaintext is only present during registration; stored users carry the hash.
	if u.Password != "" {
		if len(u.Password) < 12 {
			return ErrPasswordTooShort
		}
		if len(u.Password) > 72 {
			return ErrPasswordTooLong
		}
		return nil
	}

	if u.HashedPassword == "" {
		return ErrEmptyPassword
	}

	return nil
}
