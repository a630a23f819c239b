// Package storetest holds behavioural tests shared by every store backend.
// Backends call Run from their own _test.go files with a factory that
// returns fresh, empty stores.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/lingua-api/internal/domain"
	"github.com/phrazzld/lingua-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Stores groups one backend's implementations.
type Stores struct {
	Users   store.UserStore
	Words   store.WordStore
	Sources store.ContentSourceStore
	Journal store.JournalStore
	Lessons store.LessonStore
}

// Factory returns empty stores for a single test.
type Factory func(t *testing.T) Stores

// Run executes the whole suite against the backend produced by newStores.
func Run(t *testing.T, newStores Factory) {
	t.Run("Users", func(t *testing.T) { testUsers(t, newStores(t)) })
	t.Run("WordCRUD", func(t *testing.T) { testWordCRUD(t, newStores(t)) })
	t.Run("WordUpdatesAreSeparate", func(t *testing.T) { testWordUpdatesAreSeparate(t, newStores(t)) })
	t.Run("WordListAndStats", func(t *testing.T) { testWordListAndStats(t, newStores(t)) })
	t.Run("WordListDue", func(t *testing.T) { testWordListDue(t, newStores(t)) })
	t.Run("WordRunInTx", func(t *testing.T) { testWordRunInTx(t, newStores(t)) })
	t.Run("ContentJournalLessons", func(t *testing.T) { testContentJournalLessons(t, newStores(t)) })
	t.Run("UserDeleteCascades", func(t *testing.T) { testUserDeleteCascades(t, newStores(t)) })
}

// ts truncates to the precision every backend preserves.
func ts(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

func mustUser(t *testing.T, s Stores, email string) *domain.User {
	t.Helper()
	u, err := domain.NewUser(email, "learner", "averysecurepassword", "Spanish", domain.ProficiencyBeginner)
	require.NoError(t, err)
	u.Password = ""
	u.HashedPassword = "$2a$10$0123456789012345678901uFakeHashForTestsOnly000000000"
	u.CreatedAt = ts(u.CreatedAt)
	u.UpdatedAt = u.CreatedAt
	require.NoError(t, s.Users.Create(context.Background(), u))
	return u
}

func mustWord(t *testing.T, s Stores, userID uuid.UUID, word string, created time.Time) *domain.SavedWord {
	t.Helper()
	translation := word + "-en"
	w, err := domain.NewSavedWord(userID, word, "Spanish", domain.WordDetails{
		Translation: &translation,
		Tags:        []string{"test"},
	})
	require.NoError(t, err)
	w.CreatedAt = ts(created)
	w.UpdatedAt = w.CreatedAt
	require.NoError(t, s.Words.Create(context.Background(), w))
	return w
}

func testUsers(t *testing.T, s Stores) {
	ctx := context.Background()
	u := mustUser(t, s, "ana@example.com")

	got, err := s.Users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Email, got.Email)
	assert.Equal(t, u.HashedPassword, got.HashedPassword)
	assert.Equal(t, "Spanish", got.TargetLanguage)

	got, err = s.Users.GetByEmail(ctx, "ANA@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	dup, err := domain.NewUser("ana@example.com", "other", "averysecurepassword", "", "")
	require.NoError(t, err)
	dup.Password = ""
	dup.HashedPassword = u.HashedPassword
	assert.ErrorIs(t, s.Users.Create(ctx, dup), store.ErrEmailExists)

	login := ts(time.Now())
	got.LastLoginAt = &login
	got.ProficiencyLevel = domain.ProficiencyAdvanced
	require.NoError(t, s.Users.Update(ctx, got))

	got, err = s.Users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastLoginAt)
	assert.True(t, login.Equal(*got.LastLoginAt))
	assert.Equal(t, domain.ProficiencyAdvanced, got.ProficiencyLevel)

	_, err = s.Users.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, store.ErrUserNotFound)
	_, err = s.Users.GetByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, store.ErrUserNotFound)

	ghost := *got
	ghost.ID = uuid.New()
	assert.ErrorIs(t, s.Users.Update(ctx, &ghost), store.ErrUserNotFound)
}

func testWordCRUD(t *testing.T, s Stores) {
	ctx := context.Background()
	u := mustUser(t, s, "words@example.com")
	w := mustWord(t, s, u.ID, "hola", time.Now())

	got, err := s.Words.GetByID(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, "hola", got.Word)
	assert.Equal(t, "hola-en", got.Translation)
	assert.Equal(t, []string{"test"}, got.Tags)
	assert.Equal(t, 0, got.FamiliarityLevel)
	assert.Nil(t, got.NextReviewDate)
	assert.Nil(t, got.LastReviewed)
	assert.Nil(t, got.SourceContentID)

	found, err := s.Words.FindByWord(ctx, u.ID, "hola", "Spanish")
	require.NoError(t, err)
	assert.Equal(t, w.ID, found.ID)

	_, err = s.Words.FindByWord(ctx, u.ID, "hola", "Portuguese")
	assert.ErrorIs(t, err, store.ErrWordNotFound)

	again, err := domain.NewSavedWord(u.ID, "hola", "Spanish", domain.WordDetails{})
	require.NoError(t, err)
	assert.ErrorIs(t, s.Words.Create(ctx, again), store.ErrWordExists)

	require.NoError(t, s.Words.Delete(ctx, w.ID))
	_, err = s.Words.GetByID(ctx, w.ID)
	assert.ErrorIs(t, err, store.ErrWordNotFound)
	assert.ErrorIs(t, s.Words.Delete(ctx, w.ID), store.ErrWordNotFound)
}

func testWordUpdatesAreSeparate(t *testing.T, s Stores) {
	ctx := context.Background()
	u := mustUser(t, s, "updates@example.com")
	w := mustWord(t, s, u.ID, "casa", time.Now())

	reviewed := ts(time.Now())
	next := reviewed.AddDate(0, 0, 3)

	review := w.Clone()
	review.FamiliarityLevel = 2
	review.LastReviewed = &reviewed
	review.NextReviewDate = &next
	review.Translation = "must not be written"
	review.UpdatedAt = reviewed
	require.NoError(t, s.Words.UpdateFamiliarity(ctx, review))

	got, err := s.Words.GetByID(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.FamiliarityLevel)
	require.NotNil(t, got.NextReviewDate)
	assert.True(t, next.Equal(*got.NextReviewDate))
	assert.Equal(t, "casa-en", got.Translation)

	notes := "a house"
	edit := w.Clone()
	edit.ApplyDetails(domain.WordDetails{Notes: &notes, Tags: []string{"home", "noun"}}, reviewed.Add(time.Second))
	edit.FamiliarityLevel = 5
	edit.NextReviewDate = nil
	require.NoError(t, s.Words.UpdateDetails(ctx, edit))

	got, err = s.Words.GetByID(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, "a house", got.Notes)
	assert.Equal(t, []string{"home", "noun"}, got.Tags)
	assert.Equal(t, 2, got.FamiliarityLevel, "details update keeps familiarity")
	require.NotNil(t, got.NextReviewDate)

	missing := w.Clone()
	missing.ID = uuid.New()
	assert.ErrorIs(t, s.Words.UpdateDetails(ctx, missing), store.ErrWordNotFound)
	assert.ErrorIs(t, s.Words.UpdateFamiliarity(ctx, missing), store.ErrWordNotFound)
}

func setLevel(t *testing.T, s Stores, w *domain.SavedWord, level int, next *time.Time) {
	t.Helper()
	c := w.Clone()
	c.FamiliarityLevel = level
	c.NextReviewDate = next
	if next != nil {
		last := next.AddDate(0, 0, -1)
		c.LastReviewed = &last
	}
	require.NoError(t, s.Words.UpdateFamiliarity(context.Background(), c))
}

func testWordListAndStats(t *testing.T, s Stores) {
	ctx := context.Background()
	u := mustUser(t, s, "list@example.com")
	other := mustUser(t, s, "other@example.com")
	base := time.Now().Add(-time.Hour)

	mustWord(t, s, u.ID, "perro", base)
	gato := mustWord(t, s, u.ID, "gato", base.Add(time.Minute))
	pez := mustWord(t, s, u.ID, "pez", base.Add(2*time.Minute))
	mustWord(t, s, other.ID, "perro", base)

	future := ts(time.Now().AddDate(0, 0, 5))
	setLevel(t, s, gato, 3, &future)
	setLevel(t, s, pez, 5, &future)

	all, err := s.Words.List(ctx, u.ID, store.WordFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"pez", "gato", "perro"}, words(all), "newest first")

	learning, err := s.Words.List(ctx, u.ID, store.WordFilter{Familiarity: domain.BandLearning})
	require.NoError(t, err)
	assert.Equal(t, []string{"gato"}, words(learning))

	searched, err := s.Words.List(ctx, u.ID, store.WordFilter{Search: "ERR"})
	require.NoError(t, err)
	assert.Equal(t, []string{"perro"}, words(searched))

	none, err := s.Words.List(ctx, u.ID, store.WordFilter{Language: "French"})
	require.NoError(t, err)
	assert.Empty(t, none)

	stats, err := s.Words.Stats(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.WordStats{Total: 3, New: 1, Learning: 1, Mastered: 1}, stats)
}

func testWordListDue(t *testing.T, s Stores) {
	ctx := context.Background()
	u := mustUser(t, s, "due@example.com")
	now := ts(time.Now())
	yesterday := now.AddDate(0, 0, -1)
	tomorrow := now.AddDate(0, 0, 1)

	a := mustWord(t, s, u.ID, "A", now.Add(-3*time.Hour))
	b := mustWord(t, s, u.ID, "B", now.Add(-1*time.Hour))
	c := mustWord(t, s, u.ID, "C", now.Add(-2*time.Hour))
	d := mustWord(t, s, u.ID, "D", now.Add(-4*time.Hour))
	e := mustWord(t, s, u.ID, "E", now.Add(-5*time.Hour))

	setLevel(t, s, a, 2, nil)
	setLevel(t, s, b, 1, &yesterday)
	setLevel(t, s, c, 3, &yesterday)
	setLevel(t, s, d, 4, &tomorrow)
	setLevel(t, s, e, 4, &yesterday)

	due, err := s.Words.ListDue(ctx, u.ID, now, 20)
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "C", "E", "A"}, words(due))

	limited, err := s.Words.ListDue(ctx, u.ID, now, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "C"}, words(limited))

	other, err := s.Words.ListDue(ctx, uuid.New(), now, 20)
	require.NoError(t, err)
	assert.Empty(t, other)
}

func testWordRunInTx(t *testing.T, s Stores) {
	ctx := context.Background()
	u := mustUser(t, s, "tx@example.com")
	w := mustWord(t, s, u.ID, "libro", time.Now())

	boom := errors.New("boom")
	err := s.Words.RunInTx(ctx, func(ctx context.Context, tx store.WordStore) error {
		c := w.Clone()
		c.FamiliarityLevel = 4
		if err := tx.UpdateFamiliarity(ctx, c); err != nil {
			return err
		}
		got, err := tx.GetByID(ctx, w.ID)
		if err != nil {
			return err
		}
		if got.FamiliarityLevel != 4 {
			return errors.New("transaction does not see its own write")
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := s.Words.GetByID(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.FamiliarityLevel, "rolled back")

	err = s.Words.RunInTx(ctx, func(ctx context.Context, tx store.WordStore) error {
		c := w.Clone()
		c.FamiliarityLevel = 1
		return tx.UpdateFamiliarity(ctx, c)
	})
	require.NoError(t, err)

	got, err = s.Words.GetByID(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.FamiliarityLevel, "committed")
}

func testContentJournalLessons(t *testing.T, s Stores) {
	ctx := context.Background()
	u := mustUser(t, s, "content@example.com")

	src, err := domain.NewContentSource(u.ID, "Cuento", domain.ContentBook, "Había una vez", "Spanish", "")
	require.NoError(t, err)
	src.CreatedAt = ts(src.CreatedAt)
	require.NoError(t, s.Sources.Create(ctx, src))

	video, err := domain.NewContentSource(u.ID, "Noticias", domain.ContentVideo, "transcript", "Spanish", "https://example.com/v")
	require.NoError(t, err)
	video.CreatedAt = ts(video.CreatedAt.Add(time.Second))
	video.StudyGuide = &domain.StudyGuide{
		Vocabulary: []domain.GlossaryEntry{{Word: "noticias", Translation: "news"}},
		Questions:  []string{"¿De qué trata el video?"},
		Summary:    "A news report.",
	}
	require.NoError(t, s.Sources.Create(ctx, video))

	got, err := s.Sources.GetByID(ctx, src.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cuento", got.Title)
	assert.Nil(t, got.StudyGuide)

	got, err = s.Sources.GetByID(ctx, video.ID)
	require.NoError(t, err)
	require.NotNil(t, got.StudyGuide)
	assert.Equal(t, video.StudyGuide, got.StudyGuide)
	got.StudyGuide.Questions[0] = "changed"
	again, err := s.Sources.GetByID(ctx, video.ID)
	require.NoError(t, err)
	assert.Equal(t, "¿De qué trata el video?", again.StudyGuide.Questions[0], "returned guides are copies")
	_, err = s.Sources.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, store.ErrContentSourceNotFound)

	books, err := s.Sources.List(ctx, u.ID, store.ContentFilter{ContentType: domain.ContentBook})
	require.NoError(t, err)
	require.Len(t, books, 1)
	all, err := s.Sources.List(ctx, u.ID, store.ContentFilter{Language: "Spanish"})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, video.ID, all[0].ID, "newest first")

	srcID := src.ID
	w, err := domain.NewSavedWord(u.ID, "vez", "Spanish", domain.WordDetails{SourceContentID: &srcID})
	require.NoError(t, err)
	require.NoError(t, s.Words.Create(ctx, w))
	fromSource, err := s.Words.ListBySource(ctx, u.ID, src.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"vez"}, words(fromSource))

	entry, err := domain.NewJournalEntry(u.ID, "Hoy aprendí mucho.", "Spanish")
	require.NoError(t, err)
	entry.CreatedAt = ts(entry.CreatedAt)
	entry.UpdatedAt = entry.CreatedAt
	require.NoError(t, s.Journal.Create(ctx, entry))
	entry.SetFeedback("¡Muy bien!", entry.CreatedAt.Add(time.Minute))
	require.NoError(t, s.Journal.Update(ctx, entry))

	entries, err := s.Journal.ListByUser(ctx, u.ID, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.NotNil(t, entries[0].AIFeedback)
	assert.Equal(t, "¡Muy bien!", *entries[0].AIFeedback)

	ghost := *entry
	ghost.ID = uuid.New()
	assert.ErrorIs(t, s.Journal.Update(ctx, &ghost), store.ErrJournalEntryNotFound)

	for i, topic := range []string{"Food", "Travel", "Work"} {
		l, err := domain.NewLesson(u.ID, "Spanish", domain.ProficiencyBeginner, topic, "lesson body")
		require.NoError(t, err)
		l.CreatedAt = ts(l.CreatedAt.Add(time.Duration(i) * time.Second))
		require.NoError(t, s.Lessons.Create(ctx, l))
	}
	lessons, err := s.Lessons.ListByUser(ctx, u.ID, 2)
	require.NoError(t, err)
	require.Len(t, lessons, 2)
	assert.Equal(t, "Work", lessons[0].Topic)

	one, err := s.Lessons.GetByID(ctx, lessons[1].ID)
	require.NoError(t, err)
	assert.Equal(t, "Travel", one.Topic)
	_, err = s.Lessons.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, store.ErrLessonNotFound)
}

func testUserDeleteCascades(t *testing.T, s Stores) {
	ctx := context.Background()
	u := mustUser(t, s, "gone@example.com")
	w := mustWord(t, s, u.ID, "adiós", time.Now())

	require.NoError(t, s.Users.Delete(ctx, u.ID))

	_, err := s.Users.GetByID(ctx, u.ID)
	assert.ErrorIs(t, err, store.ErrUserNotFound)
	_, err = s.Words.GetByID(ctx, w.ID)
	assert.ErrorIs(t, err, store.ErrWordNotFound)
	assert.ErrorIs(t, s.Users.Delete(ctx, u.ID), store.ErrUserNotFound)
}

func words(ws []*domain.SavedWord) []string {
	out := make([]string, 0, len(ws))
	for _, w := range ws {
		out = append(out, w.Word)
	}
	return out
}
