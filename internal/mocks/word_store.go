package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/lingua-api/internal/domain"
	"github.com/phrazzld/lingua-api/internal/store"
)

// MockWordStore implements store.WordStore for testing. Methods call their Fn
// field when set and otherwise fall through to Base, so a test can fail one
// call against an otherwise working store.
type MockWordStore struct {
	Base store.WordStore

	CreateFn            func(ctx context.Context, word *domain.SavedWord) error
	GetByIDFn           func(ctx context.Context, id uuid.UUID) (*domain.SavedWord, error)
	FindByWordFn        func(ctx context.Context, userID uuid.UUID, word, language string) (*domain.SavedWord, error)
	UpdateDetailsFn     func(ctx context.Context, word *domain.SavedWord) error
	UpdateFamiliarityFn func(ctx context.Context, word *domain.SavedWord) error
	DeleteFn            func(ctx context.Context, id uuid.UUID) error
	ListFn              func(ctx context.Context, userID uuid.UUID, filter store.WordFilter) ([]*domain.SavedWord, error)
	ListBySourceFn      func(ctx context.Context, userID, sourceID uuid.UUID) ([]*domain.SavedWord, error)
	StatsFn             func(ctx context.Context, userID uuid.UUID) (domain.WordStats, error)
	ListDueFn           func(ctx context.Context, userID uuid.UUID, now time.Time, limit int) ([]*domain.SavedWord, error)
	RunInTxFn           func(ctx context.Context, fn func(ctx context.Context, tx store.WordStore) error) error

	// ListDueCalls records the arguments of every ListDue call.
	ListDueCalls []ListDueCall
}

// ListDueCall is one recorded ListDue invocation.
type ListDueCall struct {
	UserID uuid.UUID
	Now    time.Time
	Limit  int
}

var _ store.WordStore = (*MockWordStore)(nil)

// NewMockWordStore creates a mock that falls through to base.
func NewMockWordStore(base store.WordStore) *MockWordStore {
	return &MockWordStore{Base: base}
}

// Create implements store.WordStore.
func (m *MockWordStore) Create(ctx context.Context, word *domain.SavedWord) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, word)
	}
	if m.Base != nil {
		return m.Base.Create(ctx, word)
	}
	return nil
}

// GetByID implements store.WordStore.
func (m *MockWordStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.SavedWord, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	if m.Base != nil {
		return m.Base.GetByID(ctx, id)
	}
	return nil, store.ErrWordNotFound
}

// FindByWord implements store.WordStore.
func (m *MockWordStore) FindByWord(
	ctx context.Context,
	userID uuid.UUID,
	word, language string,
) (*domain.SavedWord, error) {
	if m.FindByWordFn != nil {
		return m.FindByWordFn(ctx, userID, word, language)
	}
	if m.Base != nil {
		return m.Base.FindByWord(ctx, userID, word, language)
	}
	return nil, store.ErrWordNotFound
}

// UpdateDetails implements store.WordStore.
func (m *MockWordStore) UpdateDetails(ctx context.Context, word *domain.SavedWord) error {
	if m.UpdateDetailsFn != nil {
		return m.UpdateDetailsFn(ctx, word)
	}
	if m.Base != nil {
		return m.Base.UpdateDetails(ctx, word)
	}
	return nil
}

// UpdateFamiliarity implements store.WordStore.
func (m *MockWordStore) UpdateFamiliarity(ctx context.Context, word *domain.SavedWord) error {
	if m.UpdateFamiliarityFn != nil {
		return m.UpdateFamiliarityFn(ctx, word)
	}
	if m.Base != nil {
		return m.Base.UpdateFamiliarity(ctx, word)
	}
	return nil
}

// Delete implements store.WordStore.
func (m *MockWordStore) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	if m.Base != nil {
		return m.Base.Delete(ctx, id)
	}
	return nil
}

// List implements store.WordStore.
func (m *MockWordStore) List(
	ctx context.Context,
	userID uuid.UUID,
	filter store.WordFilter,
) ([]*domain.SavedWord, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, userID, filter)
	}
	if m.Base != nil {
		return m.Base.List(ctx, userID, filter)
	}
	return []*domain.SavedWord{}, nil
}

// ListBySource implements store.WordStore.
func (m *MockWordStore) ListBySource(ctx context.Context, userID, sourceID uuid.UUID) ([]*domain.SavedWord, error) {
	if m.ListBySourceFn != nil {
		return m.ListBySourceFn(ctx, userID, sourceID)
	}
	if m.Base != nil {
		return m.Base.ListBySource(ctx, userID, sourceID)
	}
	return []*domain.SavedWord{}, nil
}

// Stats implements store.WordStore.
func (m *MockWordStore) Stats(ctx context.Context, userID uuid.UUID) (domain.WordStats, error) {
	if m.StatsFn != nil {
		return m.StatsFn(ctx, userID)
	}
	if m.Base != nil {
		return m.Base.Stats(ctx, userID)
	}
	return domain.WordStats{}, nil
}

// ListDue implements store.WordStore.
func (m *MockWordStore) ListDue(
	ctx context.Context,
	userID uuid.UUID,
	now time.Time,
	limit int,
) ([]*domain.SavedWord, error) {
	m.ListDueCalls = append(m.ListDueCalls, ListDueCall{UserID: userID, Now: now, Limit: limit})
	if m.ListDueFn != nil {
		return m.ListDueFn(ctx, userID, now, limit)
	}
	if m.Base != nil {
		return m.Base.ListDue(ctx, userID, now, limit)
	}
	return []*domain.SavedWord{}, nil
}

// RunInTx implements store.WordStore. Without RunInTxFn, fn runs against
// the mock itself so the Fn overrides stay in effect inside the transaction.
func (m *MockWordStore) RunInTx(ctx context.Context, fn func(ctx context.Context, tx store.WordStore) error) error {
	if m.RunInTxFn != nil {
		return m.RunInTxFn(ctx, fn)
	}
	return fn(ctx, m)
}
