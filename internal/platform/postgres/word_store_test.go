package postgres

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/lingua-api/internal/domain"
	"github.com/phrazzld/lingua-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return db, mock
}

var wordRowColumns = []string{
	"id", "user_id", "word", "language", "context", "translation", "notes", "word_type",
	"tags", "source_content_id", "pronunciation_guide", "familiarity_level",
	"last_reviewed", "next_review_date", "created_at", "updated_at",
}

func wordRow(rows *sqlmock.Rows, id, userID uuid.UUID, word string, level int, next any) *sqlmock.Rows {
	created := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	return rows.AddRow(
		id.String(), userID.String(), word, "Spanish", "", "", "", "",
		[]byte(`["a","b"]`), nil, "", int64(level),
		nil, next, created, created,
	)
}

func testWord(t *testing.T) *domain.SavedWord {
	t.Helper()
	w, err := domain.NewSavedWord(uuid.New(), "hola", "Spanish", domain.WordDetails{})
	require.NoError(t, err)
	return w
}

func TestWordStoreGetByID(t *testing.T) {
	db, mock := newMock(t)
	s := NewWordStore(db)
	id, userID := uuid.New(), uuid.New()
	next := time.Date(2024, 1, 5, 0, 0, 0, 0, time.FixedZone("CET", 3600))

	mock.ExpectQuery(regexp.QuoteMeta("FROM saved_words WHERE id = $1")).
		WithArgs(id).
		WillReturnRows(wordRow(sqlmock.NewRows(wordRowColumns), id, userID, "hola", 2, next))

	w, err := s.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id, w.ID)
	assert.Equal(t, userID, w.UserID)
	assert.Equal(t, []string{"a", "b"}, w.Tags)
	assert.Equal(t, 2, w.FamiliarityLevel)
	assert.Nil(t, w.SourceContentID)
	assert.Nil(t, w.LastReviewed)
	require.NotNil(t, w.NextReviewDate)
	assert.Equal(t, time.UTC, w.NextReviewDate.Location())
	assert.True(t, next.Equal(*w.NextReviewDate))
}

func TestWordStoreGetByIDNotFound(t *testing.T) {
	db, mock := newMock(t)
	s := NewWordStore(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM saved_words WHERE id = $1")).
		WillReturnError(sql.ErrNoRows)

	_, err := s.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, store.ErrWordNotFound)
}

func TestWordStoreCreate(t *testing.T) {
	tests := []struct {
		name     string
		dbErr    error
		expected error
	}{
		{name: "ok"},
		{
			name:     "duplicate_word",
			dbErr:    &pgconn.PgError{Code: uniqueViolationCode, ConstraintName: savedWordUniqueConstraint},
			expected: store.ErrWordExists,
		},
		{
			name:     "unknown_user",
			dbErr:    &pgconn.PgError{Code: foreignKeyViolationCode, ConstraintName: "saved_words_user_id_fkey"},
			expected: store.ErrInvalidEntity,
		},
		{
			name:     "connection_lost",
			dbErr:    errors.New("connection reset by peer"),
			expected: store.ErrStorage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMock(t)
			s := NewWordStore(db)
			w := testWord(t)

			exec := mock.ExpectExec(regexp.QuoteMeta("INSERT INTO saved_words")).
				WithArgs(w.ID, w.UserID, "hola", "Spanish", "", "", "", "", "[]",
					sqlmock.AnyArg(), "", 0, sqlmock.AnyArg(), sqlmock.AnyArg(),
					sqlmock.AnyArg(), sqlmock.AnyArg())
			if tt.dbErr != nil {
				exec.WillReturnError(tt.dbErr)
			} else {
				exec.WillReturnResult(sqlmock.NewResult(0, 1))
			}

			err := s.Create(context.Background(), w)
			if tt.expected == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.expected)
		})
	}
}

func TestWordStoreCreateRejectsInvalidWord(t *testing.T) {
	db, _ := newMock(t)
	s := NewWordStore(db)
	w := testWord(t)
	w.Word = ""

	err := s.Create(context.Background(), w)
	assert.ErrorIs(t, err, store.ErrInvalidEntity)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestWordStoreUpdateFamiliarity(t *testing.T) {
	t.Run("missing_word", func(t *testing.T) {
		db, mock := newMock(t)
		s := NewWordStore(db)
		w := testWord(t)

		mock.ExpectExec(regexp.QuoteMeta("UPDATE saved_words SET")).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, s.UpdateFamiliarity(context.Background(), w), store.ErrWordNotFound)
	})

	t.Run("level_out_of_range", func(t *testing.T) {
		db, _ := newMock(t)
		s := NewWordStore(db)
		w := testWord(t)
		w.FamiliarityLevel = 6

		assert.ErrorIs(t, s.UpdateFamiliarity(context.Background(), w), store.ErrInvalidEntity)
	})

	t.Run("writes_review_fields", func(t *testing.T) {
		db, mock := newMock(t)
		s := NewWordStore(db)
		w := testWord(t)
		now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
		next := now.AddDate(0, 0, 3)
		w.FamiliarityLevel = 2
		w.LastReviewed = &now
		w.NextReviewDate = &next
		w.UpdatedAt = now

		mock.ExpectExec(regexp.QuoteMeta("UPDATE saved_words SET")).
			WithArgs(w.ID, 2, sql.NullTime{Time: now, Valid: true}, sql.NullTime{Time: next, Valid: true}, now).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, s.UpdateFamiliarity(context.Background(), w))
	})
}

func TestWordStoreListDue(t *testing.T) {
	db, mock := newMock(t)
	s := NewWordStore(db)
	userID := uuid.New()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	a, b := uuid.New(), uuid.New()

	rows := sqlmock.NewRows(wordRowColumns)
	wordRow(rows, a, userID, "uno", 1, now.Add(-time.Hour))
	wordRow(rows, b, userID, "dos", 0, nil)

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY (next_review_date IS NULL) ASC, familiarity_level ASC")).
		WithArgs(userID, now, sql.NullInt64{Int64: 20, Valid: true}).
		WillReturnRows(rows)

	due, err := s.ListDue(context.Background(), userID, now, 20)
	require.NoError(t, err)
	require.Len(t, due, 2)
	assert.Equal(t, a, due[0].ID)
	assert.Equal(t, b, due[1].ID)
	assert.Nil(t, due[1].NextReviewDate)
}

func TestWordStoreListFilters(t *testing.T) {
	db, mock := newMock(t)
	s := NewWordStore(db)
	userID := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta(
		`WHERE user_id = $1 AND language = $2 AND familiarity_level BETWEEN $3 AND $4 AND word ILIKE '%' || $5 || '%'`)).
		WithArgs(userID, "Spanish", 1, 4, `50\%`).
		WillReturnRows(sqlmock.NewRows(wordRowColumns))

	words, err := s.List(context.Background(), userID, store.WordFilter{
		Language:    "Spanish",
		Familiarity: domain.BandLearning,
		Search:      "50%",
	})
	require.NoError(t, err)
	assert.Empty(t, words)
	assert.NotNil(t, words)
}

func TestWordStoreStats(t *testing.T) {
	db, mock := newMock(t)
	s := NewWordStore(db)

	mock.ExpectQuery(regexp.QuoteMeta("COUNT(*) FILTER")).
		WillReturnRows(sqlmock.NewRows([]string{"total", "new", "learning", "mastered"}).AddRow(6, 1, 3, 2))

	stats, err := s.Stats(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, domain.WordStats{Total: 6, New: 1, Learning: 3, Mastered: 2}, stats)
}

func TestWordStoreRunInTx(t *testing.T) {
	t.Run("commit", func(t *testing.T) {
		db, mock := newMock(t)
		s := NewWordStore(db)
		w := testWord(t)

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM saved_words")).
			WithArgs(w.ID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := s.RunInTx(context.Background(), func(ctx context.Context, tx store.WordStore) error {
			return tx.Delete(ctx, w.ID)
		})
		assert.NoError(t, err)
	})

	t.Run("rollback_keeps_fn_error", func(t *testing.T) {
		db, mock := newMock(t)
		s := NewWordStore(db)

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM saved_words")).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := s.RunInTx(context.Background(), func(ctx context.Context, tx store.WordStore) error {
			return tx.Delete(ctx, uuid.New())
		})
		assert.ErrorIs(t, err, store.ErrWordNotFound)
		assert.False(t, errors.Is(err, store.ErrStorage))
	})

	t.Run("commit_failure_is_storage", func(t *testing.T) {
		db, mock := newMock(t)
		s := NewWordStore(db)

		mock.ExpectBegin()
		mock.ExpectCommit().WillReturnError(errors.New("connection lost"))

		err := s.RunInTx(context.Background(), func(ctx context.Context, tx store.WordStore) error {
			return nil
		})
		assert.ErrorIs(t, err, store.ErrStorage)
		assert.ErrorIs(t, err, store.ErrTransactionFailed)
	})

	t.Run("nested_joins_outer", func(t *testing.T) {
		db, mock := newMock(t)
		s := NewWordStore(db)

		mock.ExpectBegin()
		mock.ExpectCommit()

		calls := 0
		err := s.RunInTx(context.Background(), func(ctx context.Context, tx store.WordStore) error {
			return tx.RunInTx(ctx, func(ctx context.Context, inner store.WordStore) error {
				calls++
				assert.Same(t, tx, inner)
				return nil
			})
		})
		assert.NoError(t, err)
		assert.Equal(t, 1, calls)
	})
}
