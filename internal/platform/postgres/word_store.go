package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/lingua-api/internal/domain"
	"github.com/phrazzld/lingua-api/internal/platform/logger"
	"github.com/phrazzld/lingua-api/internal/store"
)

const wordColumns = `id, user_id, word, language, context, translation, notes, word_type,
	tags, source_content_id, pronunciation_guide, familiarity_level,
	last_reviewed, next_review_date, created_at, updated_at`

// WordStore implements store.WordStore on PostgreSQL.
type WordStore struct {
	db store.DBTX
}

var _ store.WordStore = (*WordStore)(nil)

// NewWordStore creates a WordStore on db, which may be a *sql.DB or *sql.Tx.
func NewWordStore(db store.DBTX) *WordStore {
	if db == nil {
		panic("db cannot be nil")
	}
	return &WordStore{db: db}
}

// WithTx returns a WordStore bound to tx.
func (s *WordStore) WithTx(tx *sql.Tx) *WordStore {
	return &WordStore{db: tx}
}

// Create implements store.WordStore.
func (s *WordStore) Create(ctx context.Context, word *domain.SavedWord) error {
	if err := word.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}
	tags, err := encodeTags(word.Tags)
	if err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO saved_words (`+wordColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		word.ID,
		word.UserID,
		word.Word,
		word.Language,
		word.Context,
		word.Translation,
		word.Notes,
		word.WordType,
		tags,
		nullUUID(word.SourceContentID),
		word.PronunciationGuide,
		word.FamiliarityLevel,
		nullTime(word.LastReviewed),
		nullTime(word.NextReviewDate),
		word.CreatedAt.UTC(),
		word.UpdatedAt.UTC(),
	)
	if err != nil {
		logger.FromContextOrDefault(ctx, slog.Default()).Error("failed to insert saved word",
			slog.String("word_id", word.ID.String()),
			slog.String("user_id", word.UserID.String()),
			slog.String("error", err.Error()))
		return MapError(err)
	}
	return nil
}

// GetByID implements store.WordStore.
func (s *WordStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.SavedWord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+wordColumns+` FROM saved_words WHERE id = $1`, id)
	w, err := scanWord(row)
	if err != nil {
		return nil, mapNotFound(err, store.ErrWordNotFound)
	}
	return w, nil
}

// FindByWord implements store.WordStore.
func (s *WordStore) FindByWord(
	ctx context.Context,
	userID uuid.UUID,
	word, language string,
) (*domain.SavedWord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+wordColumns+` FROM saved_words
		WHERE user_id = $1 AND word = $2 AND language = $3`,
		userID, word, language)
	w, err := scanWord(row)
	if err != nil {
		return nil, mapNotFound(err, store.ErrWordNotFound)
	}
	return w, nil
}

// UpdateDetails implements store.WordStore.
func (s *WordStore) UpdateDetails(ctx context.Context, word *domain.SavedWord) error {
	if err := word.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}
	tags, err := encodeTags(word.Tags)
	if err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE saved_words SET
			context = $2,
			translation = $3,
			notes = $4,
			word_type = $5,
			tags = $6,
			source_content_id = $7,
			pronunciation_guide = $8,
			updated_at = $9
		WHERE id = $1`,
		word.ID,
		word.Context,
		word.Translation,
		word.Notes,
		word.WordType,
		tags,
		nullUUID(word.SourceContentID),
		word.PronunciationGuide,
		word.UpdatedAt.UTC(),
	)
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrWordNotFound)
}

// UpdateFamiliarity implements store.WordStore.
func (s *WordStore) UpdateFamiliarity(ctx context.Context, word *domain.SavedWord) error {
	if word.FamiliarityLevel < domain.MinFamiliarityLevel || word.FamiliarityLevel > domain.MaxFamiliarityLevel {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, domain.ErrInvalidFamiliarityLevel)
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE saved_words SET
			familiarity_level = $2,
			last_reviewed = $3,
			next_review_date = $4,
			updated_at = $5
		WHERE id = $1`,
		word.ID,
		word.FamiliarityLevel,
		nullTime(word.LastReviewed),
		nullTime(word.NextReviewDate),
		word.UpdatedAt.UTC(),
	)
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrWordNotFound)
}

// Delete implements store.WordStore.
func (s *WordStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM saved_words WHERE id = $1`, id)
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrWordNotFound)
}

// List implements store.WordStore.
func (s *WordStore) List(
	ctx context.Context,
	userID uuid.UUID,
	filter store.WordFilter,
) ([]*domain.SavedWord, error) {
	conds := []string{"user_id = $1"}
	args := []any{userID}
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if filter.Language != "" {
		conds = append(conds, "language = "+arg(filter.Language))
	}
	if filter.WordType != "" {
		conds = append(conds, "word_type = "+arg(filter.WordType))
	}
	switch filter.Familiarity {
	case domain.BandNew:
		conds = append(conds, "familiarity_level <= "+arg(domain.MinFamiliarityLevel))
	case domain.BandMastered:
		conds = append(conds, "familiarity_level >= "+arg(domain.MaxFamiliarityLevel))
	case domain.BandLearning:
		conds = append(conds, fmt.Sprintf("familiarity_level BETWEEN %s AND %s",
			arg(domain.MinFamiliarityLevel+1), arg(domain.MaxFamiliarityLevel-1)))
	}
	if filter.Search != "" {
		conds = append(conds, `word ILIKE '%' || `+arg(escapeLike(filter.Search))+` || '%' ESCAPE '\'`)
	}

	query := `SELECT ` + wordColumns + ` FROM saved_words WHERE ` +
		strings.Join(conds, " AND ") + ` ORDER BY created_at DESC, id ASC`
	return s.query(ctx, query, args...)
}

// ListBySource implements store.WordStore.
func (s *WordStore) ListBySource(ctx context.Context, userID, sourceID uuid.UUID) ([]*domain.SavedWord, error) {
	return s.query(ctx,
		`SELECT `+wordColumns+` FROM saved_words
		WHERE user_id = $1 AND source_content_id = $2
		ORDER BY created_at DESC, id ASC`,
		userID, sourceID)
}

// Stats implements store.WordStore.
func (s *WordStore) Stats(ctx context.Context, userID uuid.UUID) (domain.WordStats, error) {
	var stats domain.WordStats
	err := s.db.QueryRowContext(ctx,
		`SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE familiarity_level <= $2),
			COUNT(*) FILTER (WHERE familiarity_level > $2 AND familiarity_level < $3),
			COUNT(*) FILTER (WHERE familiarity_level >= $3)
		FROM saved_words WHERE user_id = $1`,
		userID, domain.MinFamiliarityLevel, domain.MaxFamiliarityLevel,
	).Scan(&stats.Total, &stats.New, &stats.Learning, &stats.Mastered)
	if err != nil {
		return domain.WordStats{}, MapError(err)
	}
	return stats, nil
}

// ListDue implements store.WordStore. A limit of zero or less returns every
// due word.
func (s *WordStore) ListDue(
	ctx context.Context,
	userID uuid.UUID,
	now time.Time,
	limit int,
) ([]*domain.SavedWord, error) {
	return s.query(ctx,
		`SELECT `+wordColumns+` FROM saved_words
		WHERE user_id = $1
			AND (next_review_date IS NULL OR next_review_date <= $2 OR familiarity_level = 0)
		ORDER BY (next_review_date IS NULL) ASC, familiarity_level ASC, created_at ASC, id ASC
		LIMIT $3`,
		userID, now.UTC(), limitArg(limit))
}

// RunInTx implements store.WordStore. Called on a store that is already bound
// to a transaction, fn joins that transaction.
func (s *WordStore) RunInTx(ctx context.Context, fn func(ctx context.Context, tx store.WordStore) error) error {
	sqlDB, ok := s.db.(*sql.DB)
	if !ok {
		return fn(ctx, s)
	}

	var fnErr error
	err := store.RunInTransaction(ctx, sqlDB, func(ctx context.Context, tx *sql.Tx) error {
		fnErr = fn(ctx, s.WithTx(tx))
		return fnErr
	})
	if err == nil {
		return nil
	}
	if fnErr != nil && errors.Is(err, fnErr) {
		return err
	}
	return fmt.Errorf("%w: %w: %w", store.ErrStorage, store.ErrTransactionFailed, err)
}

func (s *WordStore) query(ctx context.Context, query string, args ...any) ([]*domain.SavedWord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	words := []*domain.SavedWord{}
	for rows.Next() {
		w, err := scanWord(rows)
		if err != nil {
			return nil, MapError(err)
		}
		words = append(words, w)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return words, nil
}

func scanWord(row interface{ Scan(...any) error }) (*domain.SavedWord, error) {
	var (
		w            domain.SavedWord
		tags         []byte
		source       uuid.NullUUID
		lastReviewed sql.NullTime
		nextReview   sql.NullTime
	)
	if err := row.Scan(
		&w.ID,
		&w.UserID,
		&w.Word,
		&w.Language,
		&w.Context,
		&w.Translation,
		&w.Notes,
		&w.WordType,
		&tags,
		&source,
		&w.PronunciationGuide,
		&w.FamiliarityLevel,
		&lastReviewed,
		&nextReview,
		&w.CreatedAt,
		&w.UpdatedAt,
	); err != nil {
		return nil, err
	}

	w.Tags = []string{}
	if len(tags) > 0 {
		if err := json.Unmarshal(tags, &w.Tags); err != nil {
			return nil, fmt.Errorf("decoding tags for word %s: %w", w.ID, err)
		}
		if w.Tags == nil {
			w.Tags = []string{}
		}
	}
	if source.Valid {
		id := source.UUID
		w.SourceContentID = &id
	}
	w.LastReviewed = timePtr(lastReviewed)
	w.NextReviewDate = timePtr(nextReview)
	w.CreatedAt = w.CreatedAt.UTC()
	w.UpdatedAt = w.UpdatedAt.UTC()
	return &w, nil
}

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	return string(b), err
}

func nullUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
