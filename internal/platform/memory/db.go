// Package memory implements the store interfaces on in-process maps.
//
// All stores created from one DB share its state. Every write works on a
// copy of the maps and replaces the live state only when it succeeds, so a
// failed write or transaction leaves nothing behind. Entities are cloned on
// the way in and out and never mutated in place.
package memory

import (
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/lingua-api/internal/domain"
	"github.com/phrazzld/lingua-api/internal/store"
)

// Snapshot is the serializable form of a DB.
type Snapshot struct {
	Users          []UserRecord            `json:"users"`
	Words          []*domain.SavedWord     `json:"words"`
	ContentSources []*domain.ContentSource `json:"content_sources"`
	JournalEntries []*domain.JournalEntry  `json:"journal_entries"`
	Lessons        []*domain.Lesson        `json:"lessons"`
}

// UserRecord is a user as written to a snapshot. Unlike domain.User's JSON
// form it carries the password hash.
type UserRecord struct {
	domain.User
	HashedPassword string `json:"hashed_password"`
}

// PersistFunc is called with the full post-write state before a write is
// committed. A non-nil error aborts the write.
type PersistFunc func(Snapshot) error

type state struct {
	users   map[uuid.UUID]*domain.User
	words   map[uuid.UUID]*domain.SavedWord
	sources map[uuid.UUID]*domain.ContentSource
	journal map[uuid.UUID]*domain.JournalEntry
	lessons map[uuid.UUID]*domain.Lesson
}

func newState() *state {
	return &state{
		users:   make(map[uuid.UUID]*domain.User),
		words:   make(map[uuid.UUID]*domain.SavedWord),
		sources: make(map[uuid.UUID]*domain.ContentSource),
		journal: make(map[uuid.UUID]*domain.JournalEntry),
		lessons: make(map[uuid.UUID]*domain.Lesson),
	}
}

// clone copies the maps only. Entity pointers are shared with the original;
// writers store fresh clones instead of mutating them.
func (s *state) clone() *state {
	c := &state{
		users:   make(map[uuid.UUID]*domain.User, len(s.users)),
		words:   make(map[uuid.UUID]*domain.SavedWord, len(s.words)),
		sources: make(map[uuid.UUID]*domain.ContentSource, len(s.sources)),
		journal: make(map[uuid.UUID]*domain.JournalEntry, len(s.journal)),
		lessons: make(map[uuid.UUID]*domain.Lesson, len(s.lessons)),
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.words {
		c.words[k] = v
	}
	for k, v := range s.sources {
		c.sources[k] = v
	}
	for k, v := range s.journal {
		c.journal[k] = v
	}
	for k, v := range s.lessons {
		c.lessons[k] = v
	}
	return c
}

func (s *state) snapshot() Snapshot {
	snap := Snapshot{
		Users:          make([]UserRecord, 0, len(s.users)),
		Words:          make([]*domain.SavedWord, 0, len(s.words)),
		ContentSources: make([]*domain.ContentSource, 0, len(s.sources)),
		JournalEntries: make([]*domain.JournalEntry, 0, len(s.journal)),
		Lessons:        make([]*domain.Lesson, 0, len(s.lessons)),
	}
	for _, v := range s.users {
		u := cloneUser(v)
		snap.Users = append(snap.Users, UserRecord{User: *u, HashedPassword: u.HashedPassword})
	}
	for _, v := range s.words {
		snap.Words = append(snap.Words, v.Clone())
	}
	for _, v := range s.sources {
		snap.ContentSources = append(snap.ContentSources, cloneSource(v))
	}
	for _, v := range s.journal {
		snap.JournalEntries = append(snap.JournalEntries, cloneJournalEntry(v))
	}
	for _, v := range s.lessons {
		c := *v
		snap.Lessons = append(snap.Lessons, &c)
	}

	slices.SortFunc(snap.Users, func(a, b UserRecord) int { return a.CreatedAt.Compare(b.CreatedAt) })
	slices.SortFunc(snap.Words, func(a, b *domain.SavedWord) int { return a.CreatedAt.Compare(b.CreatedAt) })
	slices.SortFunc(snap.ContentSources, func(a, b *domain.ContentSource) int { return a.CreatedAt.Compare(b.CreatedAt) })
	slices.SortFunc(snap.JournalEntries, func(a, b *domain.JournalEntry) int { return a.CreatedAt.Compare(b.CreatedAt) })
	slices.SortFunc(snap.Lessons, func(a, b *domain.Lesson) int { return a.CreatedAt.Compare(b.CreatedAt) })
	return snap
}

// DB is the shared state behind the memory stores.
type DB struct {
	mu      sync.RWMutex
	state   *state
	persist PersistFunc

	// inTx marks a view bound to an in-flight transaction. The outer update
	// already holds the lock and commits the state.
	inTx bool
}

// NewDB returns an empty DB.
func NewDB() *DB {
	return &DB{state: newState()}
}

// NewDBFromSnapshot restores a DB from snap. persist may be nil.
func NewDBFromSnapshot(snap Snapshot, persist PersistFunc) *DB {
	s := newState()
	for _, rec := range snap.Users {
		u := rec.User
		u.HashedPassword = rec.HashedPassword
		s.users[u.ID] = cloneUser(&u)
	}
	for _, w := range snap.Words {
		s.words[w.ID] = w.Clone()
	}
	for _, c := range snap.ContentSources {
		s.sources[c.ID] = cloneSource(c)
	}
	for _, e := range snap.JournalEntries {
		s.journal[e.ID] = cloneJournalEntry(e)
	}
	for _, l := range snap.Lessons {
		cp := *l
		s.lessons[l.ID] = &cp
	}
	return &DB{state: s, persist: persist}
}

// Snapshot returns a deep copy of the committed state.
func (db *DB) Snapshot() Snapshot {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.state.snapshot()
}

func (db *DB) read(fn func(s *state) error) error {
	if db.inTx {
		return fn(db.state)
	}
	db.mu.RLock()
	defer db.mu.RUnlock()
	return fn(db.state)
}

func (db *DB) update(fn func(s *state) error) error {
	if db.inTx {
		return fn(db.state)
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	next := db.state.clone()
	if err := fn(next); err != nil {
		return err
	}
	if db.persist != nil {
		if err := db.persist(next.snapshot()); err != nil {
			return fmt.Errorf("%w: %v", store.ErrStorage, err)
		}
	}
	db.state = next
	return nil
}

// txView returns a DB bound to the state of an in-flight update.
func txView(s *state) *DB {
	return &DB{state: s, inTx: true}
}

func cloneUser(u *domain.User) *domain.User {
	c := *u
	c.Password = ""
	if u.LastLoginAt != nil {
		t := *u.LastLoginAt
		c.LastLoginAt = &t
	}
	return &c
}

func cloneSource(src *domain.ContentSource) *domain.ContentSource {
	c := *src
	c.StudyGuide = src.StudyGuide.Clone()
	return &c
}

func cloneJournalEntry(e *domain.JournalEntry) *domain.JournalEntry {
	c := *e
	if e.AIFeedback != nil {
		f := *e.AIFeedback
		c.AIFeedback = &f
	}
	return &c
}
