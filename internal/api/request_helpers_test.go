package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/lingua-api/internal/api/shared"
	"github.com/phrazzld/lingua-api/internal/domain"
	"github.com/phrazzld/lingua-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withURLParam attaches a chi route parameter to r.
func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func withUser(r *http.Request, userID uuid.UUID) *http.Request {
	return r.WithContext(shared.WithUserID(r.Context(), userID))
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) shared.ErrorResponse {
	t.Helper()
	var resp shared.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestGetPathUUID(t *testing.T) {
	validID := uuid.New()

	tests := []struct {
		name      string
		value     string
		wantID    uuid.UUID
		wantIsErr error
	}{
		{name: "valid", value: validID.String(), wantID: validID},
		{name: "missing", value: "", wantIsErr: domain.ErrValidation},
		{name: "malformed", value: "not-a-uuid", wantIsErr: domain.ErrInvalidID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := withURLParam(httptest.NewRequest(http.MethodGet, "/", nil), "id", tt.value)

			id, err := getPathUUID(req, "id")
			if tt.wantIsErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantIsErr)
				assert.Equal(t, http.StatusBadRequest, MapErrorToStatusCode(err))
				assert.Equal(t, uuid.Nil, id)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, id)
		})
	}
}

func TestHandleUserIDAndPathUUID(t *testing.T) {
	userID := uuid.New()
	wordID := uuid.New()

	t.Run("success", func(t *testing.T) {
		req := withUser(withURLParam(httptest.NewRequest(http.MethodGet, "/", nil), "id", wordID.String()), userID)
		rec := httptest.NewRecorder()

		gotUser, gotID, ok := handleUserIDAndPathUUID(rec, req, "id", nil)

		require.True(t, ok)
		assert.Equal(t, userID, gotUser)
		assert.Equal(t, wordID, gotID)
		assert.Equal(t, http.StatusOK, rec.Code, "nothing is written on success")
	})

	t.Run("missing user", func(t *testing.T) {
		req := withURLParam(httptest.NewRequest(http.MethodGet, "/", nil), "id", wordID.String())
		rec := httptest.NewRecorder()

		_, _, ok := handleUserIDAndPathUUID(rec, req, "id", nil)

		assert.False(t, ok)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Unauthorized", decodeError(t, rec).Error)
	})

	t.Run("malformed id", func(t *testing.T) {
		req := withUser(withURLParam(httptest.NewRequest(http.MethodGet, "/", nil), "id", "42"), userID)
		rec := httptest.NewRecorder()

		_, _, ok := handleUserIDAndPathUUID(rec, req, "id", nil)

		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Invalid id: has invalid format", decodeError(t, rec).Error)
	})
}

func TestQueryLimit(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		maxLimit int
		want     int
		wantErr  bool
	}{
		{name: "absent", query: "", maxLimit: maxListLimit, want: 0},
		{name: "explicit", query: "limit=10", maxLimit: maxListLimit, want: 10},
		{name: "capped", query: "limit=5000", maxLimit: maxListLimit, want: maxListLimit},
		{name: "uncapped", query: "limit=5000", maxLimit: 0, want: 5000},
		{name: "zero", query: "limit=0", maxLimit: maxListLimit, want: 0},
		{name: "negative", query: "limit=-1", maxLimit: maxListLimit, wantErr: true},
		{name: "not a number", query: "limit=ten", maxLimit: maxListLimit, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/?"+tt.query, nil)

			got, err := queryLimit(req, tt.maxLimit)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestListLimitDefault(t *testing.T) {
	got, err := listLimit(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, defaultListLimit, got)
}

func TestDecodeAndValidate(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantOK      bool
		wantMessage string
	}{
		{name: "valid", body: `{"word":"hola","language":"Spanish"}`, wantOK: true},
		{name: "malformed", body: `{"word":`, wantMessage: "Invalid request format"},
		{name: "empty", body: ``, wantMessage: "Invalid request format"},
		{name: "missing field", body: `{"language":"Spanish"}`, wantMessage: "Invalid Word: required field"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()

			var dst SaveWordRequest
			ok := decodeAndValidate(rec, req, &dst, testLogger())

			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, "hola", dst.Word)
				return
			}
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.wantMessage, decodeError(t, rec).Error)
		})
	}
}

func TestHandleAPIError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		fallback    string
		wantStatus  int
		wantMessage string
	}{
		{
			name:        "fallback replaces internal message",
			err:         errors.New("dial tcp 10.0.0.5:5432: connection refused"),
			fallback:    "Failed to save word",
			wantStatus:  http.StatusInternalServerError,
			wantMessage: "Failed to save word",
		},
		{
			name:        "known errors keep their message",
			err:         store.ErrWordNotFound,
			fallback:    "Failed to get word",
			wantStatus:  http.StatusNotFound,
			wantMessage: "Word not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			HandleAPIError(rec, httptest.NewRequest(http.MethodGet, "/", nil), tt.err, tt.fallback)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantMessage, decodeError(t, rec).Error)
		})
	}
}
