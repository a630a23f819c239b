package srs

import (
	"errors"
	"time"

	"github.com/phrazzld/lingua-api/internal/domain"
)

// Common errors
var (
	ErrNilWord = errors.New("saved word cannot be nil")
)

// Service defines the interface for scheduler operations.
type Service interface {
	// RecordOutcome computes the word's next familiarity level and review date
	// from a knew/did-not-know outcome. The returned word is a new value.
	RecordOutcome(word *domain.SavedWord, knewAnswer bool, now time.Time) (*domain.SavedWord, error)

	// IntervalFor returns the review interval in days for a familiarity level.
	IntervalFor(level int) int
}

// defaultService is the standard implementation of the Service interface
type defaultService struct {
	params *Params
}

// NewDefaultService creates a new scheduler with default parameters.
func NewDefaultService() Service {
	return &defaultService{
		params: NewDefaultParams(),
	}
}

// NewServiceWithParams creates a new scheduler with custom parameters.
func NewServiceWithParams(params *Params) (Service, error) {
	if params == nil {
		return nil, ErrInvalidParams
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &defaultService{params: params}, nil
}

// RecordOutcome implements the Service interface.
func (s *defaultService) RecordOutcome(
	word *domain.SavedWord,
	knewAnswer bool,
	now time.Time,
) (*domain.SavedWord, error) {
	if word == nil {
		return nil, ErrNilWord
	}
	return applyOutcome(word, knewAnswer, now, s.params), nil
}

// IntervalFor implements the Service interface.
func (s *defaultService) IntervalFor(level int) int {
	return s.params.IntervalFor(level)
}
