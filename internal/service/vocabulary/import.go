package vocabulary

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/lingua-api/internal/domain"
	"github.com/phrazzld/lingua-api/internal/platform/logger"
	"github.com/xuri/excelize/v2"
)

// MaxImportRows caps the number of data rows in one upload.
const MaxImportRows = 5000

// Import column names, matched case-insensitively against the header row.
const (
	colWord          = "word"
	colLanguage      = "language"
	colTranslation   = "translation"
	colContext       = "context"
	colNotes         = "notes"
	colWordType      = "word_type"
	colTags          = "tags"
	colPronunciation = "pronunciation_guide"
)

var columnAliases = map[string]string{
	"type":          colWordType,
	"word type":     colWordType,
	"pronunciation": colPronunciation,
	"example":       colContext,
}

// ImportWords implements Service.ImportWords.
func (s *serviceImpl) ImportWords(
	ctx context.Context,
	userID uuid.UUID,
	upload Upload,
	defaultLanguage string,
) (*ImportResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := readRows(upload)
	if err != nil {
		log.Debug("rejected import file",
			slog.String("user_id", userID.String()),
			slog.String("filename", upload.Filename),
			slog.String("error", err.Error()))
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: file is empty", ErrInvalidImport)
	}
	if len(rows)-1 > MaxImportRows {
		return nil, fmt.Errorf("%w: more than %d rows", ErrInvalidImport, MaxImportRows)
	}

	columns := headerIndex(rows[0])
	if _, ok := columns[colWord]; !ok {
		return nil, fmt.Errorf("%w: header row has no %q column", ErrInvalidImport, colWord)
	}

	result := &ImportResult{Errors: []ImportRowError{}}
	for i, row := range rows[1:] {
		rowNum := i + 2
		if blankRow(row) {
			continue
		}
		result.Processed++

		input := rowInput(row, columns, defaultLanguage)
		if input.Word == "" || input.Language == "" {
			result.Skipped++
			result.Errors = append(result.Errors, ImportRowError{
				Row:     rowNum,
				Message: "word and language are required",
			})
			continue
		}

		_, created, err := s.SaveWord(ctx, userID, input)
		switch {
		case err == nil && created:
			result.Created++
		case err == nil:
			result.Updated++
		case errors.Is(err, ErrInvalidWord):
			result.Skipped++
			result.Errors = append(result.Errors, ImportRowError{Row: rowNum, Message: rowMessage(err)})
		default:
			return nil, NewServiceError("import_words", fmt.Sprintf("failed at row %d", rowNum), err)
		}
	}

	log.Info("word list imported",
		slog.String("user_id", userID.String()),
		slog.String("filename", upload.Filename),
		slog.Int("processed", result.Processed),
		slog.Int("created", result.Created),
		slog.Int("updated", result.Updated),
		slog.Int("skipped", result.Skipped))
	return result, nil
}

func readRows(upload Upload) ([][]string, error) {
	if upload.Body == nil {
		return nil, fmt.Errorf("%w: no file", ErrInvalidImport)
	}

	switch strings.ToLower(filepath.Ext(upload.Filename)) {
	case ".xlsx":
		f, err := excelize.OpenReader(upload.Body)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidImport, err)
		}
		defer func() { _ = f.Close() }()

		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("%w: workbook has no sheets", ErrInvalidImport)
		}
		rows, err := f.GetRows(sheets[0])
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidImport, err)
		}
		return rows, nil

	case ".csv":
		r := csv.NewReader(upload.Body)
		r.FieldsPerRecord = -1
		r.LazyQuotes = true
		r.TrimLeadingSpace = true
		rows, err := r.ReadAll()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidImport, err)
		}
		return rows, nil
	}

	return nil, ErrUnsupportedFormat
}

func headerIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if alias, ok := columnAliases[name]; ok {
			name = alias
		}
		if _, seen := idx[name]; !seen && name != "" {
			idx[name] = i
		}
	}
	return idx
}

func rowInput(row []string, columns map[string]int, defaultLanguage string) SaveWordInput {
	cell := func(name string) (string, bool) {
		i, ok := columns[name]
		if !ok || i >= len(row) {
			return "", false
		}
		return strings.TrimSpace(row[i]), true
	}
	optional := func(name string) *string {
		if v, ok := cell(name); ok && v != "" {
			return &v
		}
		return nil
	}

	word, _ := cell(colWord)
	language, _ := cell(colLanguage)
	if language == "" {
		language = strings.TrimSpace(defaultLanguage)
	}

	details := domain.WordDetails{
		Translation:        optional(colTranslation),
		Context:            optional(colContext),
		Notes:              optional(colNotes),
		WordType:           optional(colWordType),
		PronunciationGuide: optional(colPronunciation),
	}
	if tags, ok := cell(colTags); ok {
		details.Tags = splitTags(tags)
	}

	return SaveWordInput{Word: word, Language: language, Details: details}
}

func splitTags(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ';' })
	tags := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			tags = append(tags, f)
		}
	}
	return tags
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func rowMessage(err error) string {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return ve.Field + " " + ve.Message
	}
	return "invalid word"
}
