package srs

import (
	"errors"
	"fmt"

	"github.com/phrazzld/lingua-api/internal/domain"
)

// ErrInvalidParams is returned when a Params value cannot drive the scheduler.
var ErrInvalidParams = errors.New("invalid srs params")

// DefaultIntervalDays is the review interval table, in days, indexed by
// familiarity level minus one.
var DefaultIntervalDays = []int{1, 3, 7, 14, 30, 90}

// Params defines all configurable parameters for the scheduler.
type Params struct {
	// IntervalDays maps a positive familiarity level to the number of days
	// until the next review.
	IntervalDays []int

	// ResetIntervalDays is used when a word drops back to level 0 and is
	// independent of IntervalDays[0].
	ResetIntervalDays int

	// MaxLevel is the mastered level. Levels are clamped to [0, MaxLevel].
	MaxLevel int
}

// ParamsConfig allows overriding the default parameters. Zero values keep the default.
type ParamsConfig struct {
	IntervalDays      []int
	ResetIntervalDays int
}

// NewDefaultParams creates a new Params instance with default values.
func NewDefaultParams() *Params {
	return &Params{
		IntervalDays:      append([]int(nil), DefaultIntervalDays...),
		ResetIntervalDays: 1,
		MaxLevel:          domain.MaxFamiliarityLevel,
	}
}

// NewParams creates a new Params instance with custom configuration.
func NewParams(config ParamsConfig) (*Params, error) {
	params := NewDefaultParams()

	if len(config.IntervalDays) > 0 {
		params.IntervalDays = append([]int(nil), config.IntervalDays...)
	}
	if config.ResetIntervalDays > 0 {
		params.ResetIntervalDays = config.ResetIntervalDays
	}

	if err := params.Validate(); err != nil {
		return nil, err
	}
	return params, nil
}

// Validate checks that the interval table is usable.
func (p *Params) Validate() error {
	if len(p.IntervalDays) == 0 {
		return fmt.Errorf("%w: interval table is empty", ErrInvalidParams)
	}
	for i, d := range p.IntervalDays {
		if d < 1 {
			return fmt.Errorf("%w: interval %d must be at least one day", ErrInvalidParams, i)
		}
	}
	if p.ResetIntervalDays < 1 {
		return fmt.Errorf("%w: reset interval must be at least one day", ErrInvalidParams)
	}
	if p.MaxLevel < 1 {
		return fmt.Errorf("%w: max level must be positive", ErrInvalidParams)
	}
	return nil
}

// IntervalFor returns the number of days until the next review for a word
// that has just reached level.
//
// Level 0 uses the reset interval. The mastered level always schedules the
// longest interval in the table; intermediate levels index the table by
// level-1, capped at its last entry. The mastered level deliberately skips
// the plain level-1 index: with the default table level 5 schedules 90 days,
// not the 30 that IntervalDays[4] would give.
func (p *Params) IntervalFor(level int) int {
	if level <= 0 {
		return p.ResetIntervalDays
	}
	last := len(p.IntervalDays) - 1
	if level >= p.MaxLevel {
		return p.IntervalDays[last]
	}
	return p.IntervalDays[min(level-1, last)]
}
