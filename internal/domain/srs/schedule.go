package srs

import (
	"cmp"
	"slices"
	"time"

	"github.com/phrazzld/lingua-api/internal/domain"
)

// nextLevel moves the level one step in the direction of the outcome,
// clamped to [0, maxLevel].
func nextLevel(current int, knewAnswer bool, maxLevel int) int {
	if knewAnswer {
		return min(maxLevel, current+1)
	}
	return max(0, current-1)
}

// applyOutcome is the pure scheduling step. It returns a copy of word with
// the familiarity fields recomputed from the outcome and leaves word untouched.
func applyOutcome(word *domain.SavedWord, knewAnswer bool, now time.Time, params *Params) *domain.SavedWord {
	now = now.UTC()
	updated := word.Clone()

	// Out-of-range stored levels are normalized before stepping.
	current := min(max(word.FamiliarityLevel, 0), params.MaxLevel)
	updated.FamiliarityLevel = nextLevel(current, knewAnswer, params.MaxLevel)

	next := now.AddDate(0, 0, params.IntervalFor(updated.FamiliarityLevel))
	reviewed := now
	updated.NextReviewDate = &next
	updated.LastReviewed = &reviewed
	updated.UpdatedAt = now

	return updated
}

// IsDue reports whether a word should be offered for review at now.
// Words that were never scheduled, and words at level 0, are always due.
func IsDue(word *domain.SavedWord, now time.Time) bool {
	if word.NextReviewDate == nil || word.FamiliarityLevel == 0 {
		return true
	}
	return !word.NextReviewDate.After(now)
}

// CompareDue orders due words for a review session: scheduled words before
// never-scheduled ones, then by ascending familiarity level, then oldest
// first, with the id as a final tiebreak.
func CompareDue(a, b *domain.SavedWord) int {
	if c := cmp.Compare(unscheduledRank(a), unscheduledRank(b)); c != 0 {
		return c
	}
	if c := cmp.Compare(a.FamiliarityLevel, b.FamiliarityLevel); c != 0 {
		return c
	}
	if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
		return c
	}
	return cmp.Compare(a.ID.String(), b.ID.String())
}

func unscheduledRank(w *domain.SavedWord) int {
	if w.NextReviewDate == nil {
		return 1
	}
	return 0
}

// SelectDue filters words to those due at now, orders them with CompareDue
// and truncates the result to limit. A non-positive limit returns every due word.
// The input slice is not modified.
func SelectDue(words []*domain.SavedWord, now time.Time, limit int) []*domain.SavedWord {
	due := make([]*domain.SavedWord, 0, len(words))
	for _, w := range words {
		if IsDue(w, now) {
			due = append(due, w)
		}
	}
	slices.SortStableFunc(due, CompareDue)
	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}
	return due
}
