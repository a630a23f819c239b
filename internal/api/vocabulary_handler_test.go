package api

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/lingua-api/internal/domain"
	"github.com/phrazzld/lingua-api/internal/service/vocabulary"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func saveWord(t *testing.T, h *VocabularyHandler, userID uuid.UUID, body map[string]any) (*httptest.ResponseRecorder, SaveWordResponse) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.SaveWord(rec, jsonRequest(t, http.MethodPost, "/api/vocabulary", body, userID))
	if rec.Code != http.StatusOK && rec.Code != http.StatusCreated {
		return rec, SaveWordResponse{}
	}
	return rec, decodeBody[SaveWordResponse](t, rec)
}

func TestVocabularyHandlerSaveWord(t *testing.T) {
	f := newHandlerFixture(t)
	user := f.register(t, "save@example.com")
	h := NewVocabularyHandler(f.vocab, testLogger())

	rec, created := saveWord(t, h, user.ID, map[string]any{
		"word": "hola", "language": "Spanish", "context": "¡Hola, amigo!", "tags": []string{"greeting"},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, created.Created)
	assert.False(t, created.Updated)
	assert.Equal(t, 0, created.Word.FamiliarityLevel)
	assert.Equal(t, []string{"greeting"}, created.Word.Tags)

	rec, updated := saveWord(t, h, user.ID, map[string]any{
		"word": "hola", "language": "Spanish", "translation": "hello",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, updated.Updated)
	assert.Equal(t, created.Word.ID, updated.Word.ID)
	assert.Equal(t, "hello", updated.Word.Translation)
	assert.Equal(t, "¡Hola, amigo!", updated.Word.Context, "omitted fields keep their stored value")

	rec, _ = saveWord(t, h, user.ID, map[string]any{"language": "Spanish"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = saveWord(t, h, uuid.Nil, map[string]any{"word": "adiós", "language": "Spanish"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestVocabularyHandlerReview(t *testing.T) {
	f := newHandlerFixture(t)
	user := f.register(t, "review@example.com")
	other := f.register(t, "other@example.com")
	h := NewVocabularyHandler(f.vocab, testLogger())

	_, saved := saveWord(t, h, user.ID, map[string]any{"word": "gato", "language": "Spanish"})
	wordID := saved.Word.ID.String()

	review := func(userID uuid.UUID, id string, body any) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		req := withURLParam(jsonRequest(t, http.MethodPost, "/api/vocabulary/"+id+"/review", body, userID), "id", id)
		h.Review(rec, req)
		return rec
	}

	tests := []struct {
		name        string
		userID      uuid.UUID
		id          string
		body        any
		wantStatus  int
		wantMessage string
	}{
		{
			name: "missing knew_answer", userID: user.ID, id: wordID, body: map[string]any{},
			wantStatus: http.StatusBadRequest, wantMessage: "Invalid KnewAnswer: required field",
		},
		{
			name: "knew_answer is not a boolean", userID: user.ID, id: wordID, body: map[string]any{"knew_answer": "yes"},
			wantStatus: http.StatusBadRequest, wantMessage: "Invalid request format",
		},
		{
			name: "malformed id", userID: user.ID, id: "abc", body: map[string]any{"knew_answer": true},
			wantStatus: http.StatusBadRequest, wantMessage: "Invalid id: has invalid format",
		},
		{
			name: "unknown word", userID: user.ID, id: uuid.NewString(), body: map[string]any{"knew_answer": true},
			wantStatus: http.StatusNotFound, wantMessage: "Word not found",
		},
		{
			name: "another user's word", userID: other.ID, id: wordID, body: map[string]any{"knew_answer": true},
			wantStatus: http.StatusNotFound, wantMessage: "Word not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := review(tt.userID, tt.id, tt.body)
			require.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantMessage, decodeError(t, rec).Error)
		})
	}

	t.Run("correct then incorrect", func(t *testing.T) {
		rec := review(user.ID, wordID, map[string]any{"knew_answer": true})
		require.Equal(t, http.StatusOK, rec.Code)
		resp := decodeBody[ReviewResponse](t, rec)
		assert.Equal(t, saved.Word.ID, resp.ID)
		assert.Equal(t, 1, resp.FamiliarityLevel)
		require.NotNil(t, resp.NextReviewDate)
		require.NotNil(t, resp.LastReviewed)
		assert.True(t, resp.NextReviewDate.After(*resp.LastReviewed))

		rec = review(user.ID, wordID, map[string]any{"knew_answer": false})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 0, decodeBody[ReviewResponse](t, rec).FamiliarityLevel)
	})
}

func TestVocabularyHandlerFlashcards(t *testing.T) {
	f := newHandlerFixture(t)
	user := f.register(t, "cards@example.com")
	h := NewVocabularyHandler(f.vocab, testLogger())

	for _, w := range []string{"uno", "dos", "tres"} {
		_, _ = saveWord(t, h, user.ID, map[string]any{"word": w, "language": "Spanish"})
	}

	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantCount  int
	}{
		{name: "default limit", query: "", wantStatus: http.StatusOK, wantCount: 3},
		{name: "explicit limit", query: "?limit=2", wantStatus: http.StatusOK, wantCount: 2},
		{name: "invalid limit", query: "?limit=many", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.Flashcards(rec, jsonRequest(t, http.MethodGet, "/api/vocabulary/flashcards"+tt.query, nil, user.ID))

			require.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Len(t, decodeBody[FlashcardsResponse](t, rec).Flashcards, tt.wantCount)
			}
		})
	}
}

func TestVocabularyHandlerListGetDelete(t *testing.T) {
	f := newHandlerFixture(t)
	user := f.register(t, "list@example.com")
	h := NewVocabularyHandler(f.vocab, testLogger())

	_, casa := saveWord(t, h, user.ID, map[string]any{"word": "casa", "language": "Spanish", "word_type": "noun"})
	_, _ = saveWord(t, h, user.ID, map[string]any{"word": "maison", "language": "French", "word_type": "noun"})

	list := func(query string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		h.ListWords(rec, jsonRequest(t, http.MethodGet, "/api/vocabulary"+query, nil, user.ID))
		return rec
	}

	rec := list("?language=French")
	require.Equal(t, http.StatusOK, rec.Code)
	words := decodeBody[vocabulary.WordList](t, rec)
	require.Len(t, words.Words, 1)
	assert.Equal(t, "maison", words.Words[0].Word)

	rec = list("?familiarity=new")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[vocabulary.WordList](t, rec).Words, 2)

	rec = list("?familiarity=expert")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid familiarity: must be new, learning or mastered", decodeError(t, rec).Error)

	id := casa.Word.ID.String()
	rec = httptest.NewRecorder()
	h.GetWord(rec, withURLParam(jsonRequest(t, http.MethodGet, "/api/vocabulary/"+id, nil, user.ID), "id", id))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "casa", decodeBody[domain.SavedWord](t, rec).Word)

	rec = httptest.NewRecorder()
	h.DeleteWord(rec, withURLParam(jsonRequest(t, http.MethodDelete, "/api/vocabulary/"+id, nil, user.ID), "id", id))
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())

	rec = httptest.NewRecorder()
	h.GetWord(rec, withURLParam(jsonRequest(t, http.MethodGet, "/api/vocabulary/"+id, nil, user.ID), "id", id))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestVocabularyHandlerTranslate(t *testing.T) {
	f := newHandlerFixture(t)
	user := f.register(t, "translate@example.com")
	h := NewVocabularyHandler(f.vocab, testLogger())

	f.generator.GenerateFn = func(_ context.Context, prompt string) (string, error) {
		return "```json\n{\"translation\":\"dog\",\"word_type\":\"noun\",\"notes\":\"masculine\"}\n```", nil
	}

	rec := httptest.NewRecorder()
	h.Translate(rec, jsonRequest(t, http.MethodPost, "/api/vocabulary/translate",
		map[string]string{"word": "perro", "context": "El perro ladra."}, user.ID))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decodeBody[map[string]string](t, rec)
	assert.Equal(t, "dog", resp["translation"])
	assert.Equal(t, "noun", resp["word_type"])
	assert.Contains(t, f.generator.LastPrompt(), "Spanish", "the default language is used")

	f.generator.GenerateFn = func(context.Context, string) (string, error) {
		return "", errors.New("boom")
	}
	rec = httptest.NewRecorder()
	h.Translate(rec, jsonRequest(t, http.MethodPost, "/api/vocabulary/translate",
		map[string]string{"word": "perro"}, user.ID))
	assert.GreaterOrEqual(t, rec.Code, http.StatusInternalServerError)
}

func multipartUpload(t *testing.T, userID uuid.UUID, filename, content, language string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if filename != "" {
		part, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	if language != "" {
		require.NoError(t, mw.WriteField("language", language))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/vocabulary/import", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return withUser(req, userID)
}

func TestVocabularyHandlerImport(t *testing.T) {
	f := newHandlerFixture(t)
	user := f.register(t, "import@example.com")
	h := NewVocabularyHandler(f.vocab, testLogger())

	_, _ = saveWord(t, h, user.ID, map[string]any{"word": "hola", "language": "Spanish"})

	tests := []struct {
		name        string
		filename    string
		content     string
		wantStatus  int
		wantMessage string
		check       func(t *testing.T, result vocabulary.ImportResult)
	}{
		{
			name:       "csv",
			filename:   "words.csv",
			content:    "word,translation\nhola,hello\nadiós,goodbye\n,orphan\n",
			wantStatus: http.StatusOK,
			check: func(t *testing.T, result vocabulary.ImportResult) {
				assert.Equal(t, 1, result.Created)
				assert.Equal(t, 1, result.Updated)
				assert.Equal(t, 1, result.Skipped)
			},
		},
		{
			name:        "unsupported extension",
			filename:    "words.txt",
			content:     "hola",
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Unsupported file format: use .xlsx or .csv",
		},
		{
			name:        "missing file",
			wantStatus:  http.StatusBadRequest,
			wantMessage: "File is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.Import(rec, multipartUpload(t, user.ID, tt.filename, tt.content, "Spanish"))

			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			if tt.wantMessage != "" {
				assert.Equal(t, tt.wantMessage, decodeError(t, rec).Error)
				return
			}
			tt.check(t, decodeBody[vocabulary.ImportResult](t, rec))
		})
	}

	t.Run("not multipart", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.Import(rec, jsonRequest(t, http.MethodPost, "/api/vocabulary/import", map[string]string{}, user.ID))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
