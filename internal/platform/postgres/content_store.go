package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/lingua-api/internal/domain"
	"github.com/phrazzld/lingua-api/internal/store"
)

const (
	sourceColumns  = `id, user_id, title, content_type, content, language, source_url, study_guide, created_at`
	journalColumns = `id, user_id, content, language, ai_feedback, created_at, updated_at`
	lessonColumns  = `id, user_id, title, description, language, level, topic, content, created_at`
)

// ContentSourceStore implements store.ContentSourceStore on PostgreSQL.
type ContentSourceStore struct {
	db store.DBTX
}

var _ store.ContentSourceStore = (*ContentSourceStore)(nil)

// NewContentSourceStore creates a ContentSourceStore on db.
func NewContentSourceStore(db store.DBTX) *ContentSourceStore {
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
	guide, err := encodeStudyGuide(source.StudyGuide)
	if err != nil {
		return fmt.Errorf("encoding study guide: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO content_sources (`+sourceColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		source.ID,
		source.UserID,
		source.Title,
		string(source.ContentType),
		source.Content,
		source.Language,
		source.SourceURL,
		guide,
		source.CreatedAt.UTC(),
	)
	return MapError(err)
}

// GetByID implements store.ContentSourceStore.
func (s *ContentSourceStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.ContentSource, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+sourceColumns+` FROM content_sources WHERE id = $1`, id)
	c, err := scanSource(row)
	if err != nil {
		return nil, mapNotFound(err, store.ErrContentSourceNotFound)
	}
	return c, nil
}

// List implements store.ContentSourceStore.
func (s *ContentSourceStore) List(
	ctx context.Context,
	userID uuid.UUID,
	filter store.ContentFilter,
) ([]*domain.ContentSource, error) {
	conds := []string{"user_id = $1"}
	args := []any{userID}
	if filter.Language != "" {
		args = append(args, filter.Language)
		conds = append(conds, "language = $"+strconv.Itoa(len(args)))
	}
	if filter.ContentType != "" {
		args = append(args, string(filter.ContentType))
		conds = append(conds, "content_type = $"+strconv.Itoa(len(args)))
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+sourceColumns+` FROM content_sources WHERE `+strings.Join(conds, " AND ")+
			` ORDER BY created_at DESC, id ASC`,
		args...)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	out := []*domain.ContentSource{}
	for rows.Next() {
		c, err := scanSource(rows)
		if err != nil {
			return nil, MapError(err)
		}
		out = append(out, c)
	}
	return out, MapError(rows.Err())
}

func scanSource(row interface{ Scan(...any) error }) (*domain.ContentSource, error) {
	var (
		c           domain.ContentSource
		contentType string
		guide       []byte
	)
	if err := row.Scan(&c.ID, &c.UserID, &c.Title, &contentType, &c.Content, &c.Language, &c.SourceURL,
		&guide, &c.CreatedAt); err != nil {
		return nil, err
	}
	c.ContentType = domain.ContentType(contentType)
	c.CreatedAt = c.CreatedAt.UTC()
	if len(guide) > 0 {
		c.StudyGuide = &domain.StudyGuide{}
		if err := json.Unmarshal(guide, c.StudyGuide); err != nil {
			return nil, fmt.Errorf("decoding study guide for source %s: %w", c.ID, err)
		}
	}
	return &c, nil
}

// encodeStudyGuide returns the JSONB value for g, or nil for SQL NULL.
func encodeStudyGuide(g *domain.StudyGuide) (any, error) {
	if g == nil {
		return nil, nil
	}
	b, err := json.Marshal(g)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// JournalStore implements store.JournalStore on PostgreSQL.
type JournalStore struct {
	db store.DBTX
}

var _ store.JournalStore = (*JournalStore)(nil)

// NewJournalStore creates a JournalStore on db.
func NewJournalStore(db store.DBTX) *JournalStore {
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
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO journal_entries (`+journalColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		entry.ID,
		entry.UserID,
		entry.Content,
		entry.Language,
		nullString(entry.AIFeedback),
		entry.CreatedAt.UTC(),
		entry.UpdatedAt.UTC(),
	)
	return MapError(err)
}

// Update implements store.JournalStore.
func (s *JournalStore) Update(ctx context.Context, entry *domain.JournalEntry) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE journal_entries SET ai_feedback = $2, updated_at = $3 WHERE id = $1`,
		entry.ID, nullString(entry.AIFeedback), entry.UpdatedAt.UTC())
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrJournalEntryNotFound)
}

// ListByUser implements store.JournalStore.
func (s *JournalStore) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.JournalEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+journalColumns+` FROM journal_entries WHERE user_id = $1
		ORDER BY created_at DESC, id ASC LIMIT $2`,
		userID, limitArg(limit))
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	out := []*domain.JournalEntry{}
	for rows.Next() {
		var (
			e        domain.JournalEntry
			feedback sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.UserID, &e.Content, &e.Language, &feedback,
			&e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, MapError(err)
		}
		if feedback.Valid {
			f := feedback.String
			e.AIFeedback = &f
		}
		e.CreatedAt = e.CreatedAt.UTC()
		e.UpdatedAt = e.UpdatedAt.UTC()
		out = append(out, &e)
	}
	return out, MapError(rows.Err())
}

// LessonStore implements store.LessonStore on PostgreSQL.
type LessonStore struct {
	db store.DBTX
}

var _ store.LessonStore = (*LessonStore)(nil)

// NewLessonStore creates a LessonStore on db.
func NewLessonStore(db store.DBTX) *LessonStore {
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
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO lessons (`+lessonColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		lesson.ID,
		lesson.UserID,
		lesson.Title,
		lesson.Description,
		lesson.Language,
		string(lesson.Level),
		lesson.Topic,
		lesson.Content,
		lesson.CreatedAt.UTC(),
	)
	return MapError(err)
}

// GetByID implements store.LessonStore.
func (s *LessonStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Lesson, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+lessonColumns+` FROM lessons WHERE id = $1`, id)
	l, err := scanLesson(row)
	if err != nil {
		return nil, mapNotFound(err, store.ErrLessonNotFound)
	}
	return l, nil
}

// ListByUser implements store.LessonStore.
func (s *LessonStore) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.Lesson, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+lessonColumns+` FROM lessons WHERE user_id = $1
		ORDER BY created_at DESC, id ASC LIMIT $2`,
		userID, limitArg(limit))
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	out := []*domain.Lesson{}
	for rows.Next() {
		l, err := scanLesson(rows)
		if err != nil {
			return nil, MapError(err)
		}
		out = append(out, l)
	}
	return out, MapError(rows.Err())
}

func scanLesson(row interface{ Scan(...any) error }) (*domain.Lesson, error) {
	var (
		l     domain.Lesson
		level string
	)
	if err := row.Scan(&l.ID, &l.UserID, &l.Title, &l.Description, &l.Language, &level, &l.Topic,
		&l.Content, &l.CreatedAt); err != nil {
		return nil, err
	}
	l.Level = domain.ProficiencyLevel(level)
	l.CreatedAt = l.CreatedAt.UTC()
	return &l, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// limitArg turns a non-positive limit into NULL, which Postgres reads as LIMIT ALL.
func limitArg(limit int) sql.NullInt64 {
	if limit <= 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(limit), Valid: true}
}
