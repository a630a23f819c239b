package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/lingua-api/internal/domain"
	"github.com/phrazzld/lingua-api/internal/domain/srs"
	"github.com/phrazzld/lingua-api/internal/store"
)

// WordStore implements store.WordStore on a DB.
type WordStore struct {
	db *DB
}

var _ store.WordStore = (*WordStore)(nil)

// NewWordStore creates a WordStore backed by db.
func NewWordStore(db *DB) *WordStore {
	if db == nil {
		panic("db cannot be nil")
	}
	return &WordStore{db: db}
}

// Create implements store.WordStore.
func (s *WordStore) Create(ctx context.Context, word *domain.SavedWord) error {
	if err := word.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}
	candidate := word.Clone()

	return s.db.update(func(st *state) error {
		if _, ok := st.words[candidate.ID]; ok {
			return store.ErrDuplicate
		}
		if findWord(st, candidate.UserID, candidate.Word, candidate.Language) != nil {
			return store.ErrWordExists
		}
		st.words[candidate.ID] = candidate
		return nil
	})
}

// GetByID implements store.WordStore.
func (s *WordStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.SavedWord, error) {
	var out *domain.SavedWord
	err := s.db.read(func(st *state) error {
		w, ok := st.words[id]
		if !ok {
			return store.ErrWordNotFound
		}
		out = w.Clone()
		return nil
	})
	return out, err
}

// FindByWord implements store.WordStore.
func (s *WordStore) FindByWord(
	ctx context.Context,
	userID uuid.UUID,
	word, language string,
) (*domain.SavedWord, error) {
	var out *domain.SavedWord
	err := s.db.read(func(st *state) error {
		w := findWord(st, userID, word, language)
		if w == nil {
			return store.ErrWordNotFound
		}
		out = w.Clone()
		return nil
	})
	return out, err
}

// UpdateDetails implements store.WordStore.
func (s *WordStore) UpdateDetails(ctx context.Context, word *domain.SavedWord) error {
	if err := word.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}
	return s.db.update(func(st *state) error {
		existing, ok := st.words[word.ID]
		if !ok {
			return store.ErrWordNotFound
		}
		next := existing.Clone()
		next.Context = word.Context
		next.Translation = word.Translation
		next.Notes = word.Notes
		next.WordType = word.WordType
		next.PronunciationGuide = word.PronunciationGuide
		next.Tags = append([]string(nil), word.Tags...)
		next.SourceContentID = nil
		if word.SourceContentID != nil {
			id := *word.SourceContentID
			next.SourceContentID = &id
		}
		next.UpdatedAt = word.UpdatedAt
		st.words[word.ID] = next
		return nil
	})
}

// UpdateFamiliarity implements store.WordStore.
func (s *WordStore) UpdateFamiliarity(ctx context.Context, word *domain.SavedWord) error {
	if word.FamiliarityLevel < domain.MinFamiliarityLevel || word.FamiliarityLevel > domain.MaxFamiliarityLevel {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, domain.ErrInvalidFamiliarityLevel)
	}
	return s.db.update(func(st *state) error {
		existing, ok := st.words[word.ID]
		if !ok {
			return store.ErrWordNotFound
		}
		src := word.Clone()
		next := existing.Clone()
		next.FamiliarityLevel = src.FamiliarityLevel
		next.LastReviewed = src.LastReviewed
		next.NextReviewDate = src.NextReviewDate
		next.UpdatedAt = src.UpdatedAt
		st.words[word.ID] = next
		return nil
	})
}

// Delete implements store.WordStore.
func (s *WordStore) Delete(ctx context.Context, id uuid.UUID) error {
	return s.db.update(func(st *state) error {
		if _, ok := st.words[id]; !ok {
			return store.ErrWordNotFound
		}
		delete(st.words, id)
		return nil
	})
}

// List implements store.WordStore.
func (s *WordStore) List(
	ctx context.Context,
	userID uuid.UUID,
	filter store.WordFilter,
) ([]*domain.SavedWord, error) {
	search := strings.ToLower(filter.Search)
	return s.collect(userID, func(w *domain.SavedWord) bool {
		if filter.Language != "" && w.Language != filter.Language {
			return false
		}
		if filter.WordType != "" && w.WordType != filter.WordType {
			return false
		}
		if filter.Familiarity != "" && !filter.Familiarity.Contains(w.FamiliarityLevel) {
			return false
		}
		if search != "" && !strings.Contains(strings.ToLower(w.Word), search) {
			return false
		}
		return true
	})
}

// ListBySource implements store.WordStore.
func (s *WordStore) ListBySource(ctx context.Context, userID, sourceID uuid.UUID) ([]*domain.SavedWord, error) {
	return s.collect(userID, func(w *domain.SavedWord) bool {
		return w.SourceContentID != nil && *w.SourceContentID == sourceID
	})
}

// Stats implements store.WordStore.
func (s *WordStore) Stats(ctx context.Context, userID uuid.UUID) (domain.WordStats, error) {
	var stats domain.WordStats
	err := s.db.read(func(st *state) error {
		for _, w := range st.words {
			if w.UserID == userID {
				stats.Add(w.FamiliarityLevel)
			}
		}
		return nil
	})
	return stats, err
}

// ListDue implements store.WordStore using the scheduler's own due predicate
// and ordering.
func (s *WordStore) ListDue(
	ctx context.Context,
	userID uuid.UUID,
	now time.Time,
	limit int,
) ([]*domain.SavedWord, error) {
	var owned []*domain.SavedWord
	err := s.db.read(func(st *state) error {
		for _, w := range st.words {
			if w.UserID == userID {
				owned = append(owned, w)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	due := srs.SelectDue(owned, now, limit)
	out := make([]*domain.SavedWord, len(due))
	for i, w := range due {
		out[i] = w.Clone()
	}
	return out, nil
}

// RunInTx implements store.WordStore. fn sees its own writes; they become
// visible to other callers only when fn returns nil.
func (s *WordStore) RunInTx(ctx context.Context, fn func(ctx context.Context, tx store.WordStore) error) error {
	return s.db.update(func(st *state) error {
		return fn(ctx, &WordStore{db: txView(st)})
	})
}

// collect returns clones of the user's words accepted by keep, newest first.
func (s *WordStore) collect(userID uuid.UUID, keep func(*domain.SavedWord) bool) ([]*domain.SavedWord, error) {
	out := []*domain.SavedWord{}
	err := s.db.read(func(st *state) error {
		for _, w := range st.words {
			if w.UserID == userID && keep(w) {
				out = append(out, w.Clone())
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.SortFunc(out, func(a, b *domain.SavedWord) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID.String(), b.ID.String())
	})
	return out, nil
}

func findWord(st *state, userID uuid.UUID, word, language string) *domain.SavedWord {
	for _, w := range st.words {
		if w.UserID == userID && w.Word == word && w.Language == language {
			return w
		}
	}
	return nil
}
