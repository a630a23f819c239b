package memory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/lingua-api/internal/domain"
	"github.com/phrazzld/lingua-api/internal/store"
)

// UserStore implements store.UserStore on a DB.
type UserStore struct {
	db *DB
}

var _ store.UserStore = (*UserStore)(nil)

// NewUserStore creates a UserStore backed by db.
func NewUserStore(db *DB) *UserStore {
	if db == nil {
		panic("db cannot be nil")
	}
	return &UserStore{db: db}
}

// Create implements store.UserStore.
func (s *UserStore) Create(ctx context.Context, user *domain.User) error {
	if user.HashedPassword == "" {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, domain.ErrEmptyPassword)
	}
	candidate := cloneUser(user)
	if err := candidate.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	return s.db.update(func(st *state) error {
		if _, ok := st.users[user.ID]; ok {
			return store.ErrDuplicate
		}
		if emailTaken(st, candidate.Email, uuid.Nil) {
			return store.ErrEmailExists
		}
		st.users[candidate.ID] = candidate
		return nil
	})
}

// GetByID implements store.UserStore.
func (s *UserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var out *domain.User
	err := s.db.read(func(st *state) error {
		u, ok := st.users[id]
		if !ok {
			return store.ErrUserNotFound
		}
		out = cloneUser(u)
		return nil
	})
	return out, err
}

// GetByEmail implements store.UserStore.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var out *domain.User
	err := s.db.read(func(st *state) error {
		for _, u := range st.users {
			if u.Email == email {
				out = cloneUser(u)
				return nil
			}
		}
		return store.ErrUserNotFound
	})
	return out, err
}

// Update implements store.UserStore.
func (s *UserStore) Update(ctx context.Context, user *domain.User) error {
	candidate := cloneUser(user)
	if err := candidate.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	return s.db.update(func(st *state) error {
		existing, ok := st.users[user.ID]
		if !ok {
			return store.ErrUserNotFound
		}
		if emailTaken(st, candidate.Email, user.ID) {
			return store.ErrEmailExists
		}
		candidate.CreatedAt = existing.CreatedAt
		candidate.UpdatedAt = time.Now().UTC()
		st.users[user.ID] = candidate
		return nil
	})
}

// Delete implements store.UserStore. Everything the user owns goes with them.
func (s *UserStore) Delete(ctx context.Context, id uuid.UUID) error {
	return s.db.update(func(st *state) error {
		if _, ok := st.users[id]; !ok {
			return store.ErrUserNotFound
		}
		delete(st.users, id)
		for k, w := range st.words {
			if w.UserID == id {
				delete(st.words, k)
			}
		}
		for k, c := range st.sources {
			if c.UserID == id {
				delete(st.sources, k)
			}
		}
		for k, e := range st.journal {
			if e.UserID == id {
				delete(st.journal, k)
			}
		}
		for k, l := range st.lessons {
			if l.UserID == id {
				delete(st.lessons, k)
			}
		}
		return nil
	})
}

func emailTaken(st *state, email string, except uuid.UUID) bool {
	for id, u := range st.users {
		if id != except && u.Email == email {
			return true
		}
	}
	return false
}
