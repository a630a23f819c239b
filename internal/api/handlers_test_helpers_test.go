package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/lingua-api/internal/config"
	"github.com/phrazzld/lingua-api/internal/domain"
	"github.com/phrazzld/lingua-api/internal/domain/srs"
	"github.com/phrazzld/lingua-api/internal/generation"
	"github.com/phrazzld/lingua-api/internal/mocks"
	"github.com/phrazzld/lingua-api/internal/platform/memory"
	"github.com/phrazzld/lingua-api/internal/service"
	"github.com/phrazzld/lingua-api/internal/service/auth"
	"github.com/phrazzld/lingua-api/internal/service/vocabulary"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// handlerFixture wires real services over a fresh memory DB.
type handlerFixture struct {
	db        *memory.DB
	generator *mocks.MockTextGenerator
	jwt       auth.JWTService
	users     *service.UserServiceImpl
	vocab     vocabulary.Service
	content   service.ContentService
	practice  *PracticeHandler
	immersion *ImmersionHandler
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()

	jwtService, err := auth.NewJWTService(config.AuthConfig{
		JWTSecret:                   "handler-test-secret-with-32-characters!",
		TokenLifetimeMinutes:        60,
		RefreshTokenLifetimeMinutes: 1440,
	})
	require.NoError(t, err)

	db := memory.NewDB()
	userStore := memory.NewUserStore(db)
	wordStore := memory.NewWordStore(db)
	gen := &mocks.MockTextGenerator{Text: "generated"}
	assistant := generation.NewAssistant(gen, testLogger())

	f := &handlerFixture{
		db:        db,
		generator: gen,
		jwt:       jwtService,
		users:     service.NewUserService(userStore, auth.NewBcryptHasher(bcrypt.MinCost), testLogger()),
		vocab:     vocabulary.NewService(wordStore, srs.NewDefaultService(), assistant, testLogger()),
		content:   service.NewContentService(memory.NewContentSourceStore(db), wordStore, assistant, testLogger()),
	}
	f.practice = NewPracticeHandler(
		service.NewJournalService(memory.NewJournalStore(db), assistant, testLogger()),
		service.NewLessonService(memory.NewLessonStore(db), userStore, assistant, testLogger()),
		service.NewWritingService(userStore, assistant, testLogger()),
		testLogger(),
	)
	f.immersion = NewImmersionHandler(service.NewImmersionService(userStore, assistant, testLogger()), testLogger())
	return f
}

func (f *handlerFixture) register(t *testing.T, email string) *domain.User {
	t.Helper()
	user, err := f.users.Register(context.Background(), service.RegisterInput{
		Email:    email,
		Username: "learner",
		Password: "correct-horse-battery",
	})
	require.NoError(t, err)
	return user
}

// jsonRequest builds a request with body encoded as JSON, authenticated as
// userID unless it is uuid.Nil.
func jsonRequest(t *testing.T, method, target string, body any, userID uuid.UUID) *http.Request {
	t.Helper()

	var reader io.Reader = http.NoBody
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	if userID != uuid.Nil {
		req = withUser(req, userID)
	}
	return req
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out), rec.Body.String())
	return out
}
