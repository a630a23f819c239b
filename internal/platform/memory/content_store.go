package memory

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/phrazzld/lingua-api/internal/domain"
	"github.com/phrazzld/lingua-api/internal/store"
)

// ContentSourceStore implements store.ContentSourceStore on a DB.
type ContentSourceStore struct {
	db *DB
}

var _ store.ContentSourceStore = (*ContentSourceStore)(nil)

// NewContentSourceStore creates a ContentSourceStore backed by db.
func NewContentSourceStore(db *DB) *ContentSourceStore {
	if db == nil {
		panic("db cannot be nil")
	}
	return &ContentSourceStore{db: db}
}

// Create implements store.ContentSourceStore.
func (s *ContentSourceStore) Create(ctx context.Context, source *domain.ContentSource) error {
	if err := source.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}
	c := cloneSource(source)
	return s.db.update(func(st *state) error {
		if _, ok := st.sources[c.ID]; ok {
			return store.ErrDuplicate
		}
		st.sources[c.ID] = c
		return nil
	})
}

// GetByID implements store.ContentSourceStore.
func (s *ContentSourceStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.ContentSource, error) {
	var out *domain.ContentSource
	err := s.db.read(func(st *state) error {
		c, ok := st.sources[id]
		if !ok {
			return store.ErrContentSourceNotFound
		}
		out = cloneSource(c)
		return nil
	})
	return out, err
}

// List implements store.ContentSourceStore.
func (s *ContentSourceStore) List(
	ctx context.Context,
	userID uuid.UUID,
	filter store.ContentFilter,
) ([]*domain.ContentSource, error) {
	out := []*domain.ContentSource{}
	err := s.db.read(func(st *state) error {
		for _, c := range st.sources {
			if c.UserID != userID {
				continue
			}
			if filter.Language != "" && c.Language != filter.Language {
				continue
			}
			if filter.ContentType != "" && c.ContentType != filter.ContentType {
				continue
			}
			out = append(out, cloneSource(c))
		}
		return nil
	})
	slices.SortFunc(out, func(a, b *domain.ContentSource) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return out, err
}

// JournalStore implements store.JournalStore on a DB.
type JournalStore struct {
	db *DB
}

var _ store.JournalStore = (*JournalStore)(nil)

// NewJournalStore creates a JournalStore backed by db.
func NewJournalStore(db *DB) *JournalStore {
	if db == nil {
		panic("db cannot be nil")
	}
	return &JournalStore{db: db}
}

// Create implements store.JournalStore.
func (s *JournalStore) Create(ctx context.Context, entry *domain.JournalEntry) error {
	if err := entry.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}
	c := cloneJournalEntry(entry)
	return s.db.update(func(st *state) error {
		if _, ok := st.journal[c.ID]; ok {
			return store.ErrDuplicate
		}
		st.journal[c.ID] = c
		return nil
	})
}

// Update implements store.JournalStore.
func (s *JournalStore) Update(ctx context.Context, entry *domain.JournalEntry) error {
	src := cloneJournalEntry(entry)
	return s.db.update(func(st *state) error {
		existing, ok := st.journal[entry.ID]
		if !ok {
			return store.ErrJournalEntryNotFound
		}
		next := cloneJournalEntry(existing)
		next.AIFeedback = src.AIFeedback
		next.UpdatedAt = src.UpdatedAt
		st.journal[entry.ID] = next
		return nil
	})
}

// ListByUser implements store.JournalStore.
func (s *JournalStore) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.JournalEntry, error) {
	out := []*domain.JournalEntry{}
	err := s.db.read(func(st *state) error {
		for _, e := range st.journal {
			if e.UserID == userID {
				out = append(out, cloneJournalEntry(e))
			}
		}
		return nil
	})
	slices.SortFunc(out, func(a, b *domain.JournalEntry) int { return b.CreatedAt.Compare(a.CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, err
}

// LessonStore implements store.LessonStore on a DB.
type LessonStore struct {
	db *DB
}

var _ store.LessonStore = (*LessonStore)(nil)

// NewLessonStore creates a LessonStore backed by db.
func NewLessonStore(db *DB) *LessonStore {
	if db == nil {
		panic("db cannot be nil")
	}
	return &LessonStore{db: db}
}

// Create implements store.LessonStore.
func (s *LessonStore) Create(ctx context.Context, lesson *domain.Lesson) error {
	if err := lesson.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}
	c := *lesson
	return s.db.update(func(st *state) error {
		if _, ok := st.lessons[c.ID]; ok {
			return store.ErrDuplicate
		}
		st.lessons[c.ID] = &c
		return nil
	})
}

// GetByID implements store.LessonStore.
func (s *LessonStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Lesson, error) {
	var out *domain.Lesson
	err := s.db.read(func(st *state) error {
		l, ok := st.lessons[id]
		if !ok {
			return store.ErrLessonNotFound
		}
		cp := *l
		out = &cp
		return nil
	})
	return out, err
}

// ListByUser implements store.LessonStore.
func (s *LessonStore) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.Lesson, error) {
	out := []*domain.Lesson{}
	err := s.db.read(func(st *state) error {
		for _, l := range st.lessons {
			if l.UserID == userID {
				cp := *l
				out = append(out, &cp)
			}
		}
		return nil
	})
	slices.SortFunc(out, func(a, b *domain.Lesson) int { return b.CreatedAt.Compare(a.CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, err
}
