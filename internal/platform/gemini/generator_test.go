package gemini

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/phrazzld/lingua-api/internal/config"
	"github.com/phrazzld/lingua-api/internal/generation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type reply struct {
	resp *genai.GenerateContentResponse
	err  error
}

// fakeModels returns replies in order and repeats the last one.
type fakeModels struct {
	replies []reply
	calls   int
	models  []string
}

func (f *fakeModels) GenerateContent(
	ctx context.Context,
	model string,
	contents []*genai.Content,
	cfg *genai.GenerateContentConfig,
) (*genai.GenerateContentResponse, error) {
	f.models = append(f.models, model)
	r := f.replies[min(f.calls, len(f.replies)-1)]
	f.calls++
	return r.resp, r.err
}

func textResponse(parts ...string) *genai.GenerateContentResponse {
	content := &genai.Content{Role: "model"}
	for _, p := range parts {
		content.Parts = append(content.Parts, &genai.Part{Text: p})
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: content, FinishReason: genai.FinishReasonStop}},
	}
}

func testConfig() config.LLMConfig {
	return config.LLMConfig{
		GeminiAPIKey:      "test-key",
		ModelName:         "gemini-test",
		Temperature:       0.5,
		MaxOutputTokens:   512,
		MaxRetries:        2,
		RetryDelaySeconds: 1,
	}
}

func newTestGenerator(models *fakeModels, cfg config.LLMConfig) (*Generator, *[]time.Duration) {
	g := newGenerator(models, slog.New(slog.NewTextHandler(io.Discard, nil)), cfg)
	var delays []time.Duration
	g.sleep = func(ctx context.Context, d time.Duration) error {
		delays = append(delays, d)
		return ctx.Err()
	}
	return g, &delays
}

func TestGenerateJoinsTextParts(t *testing.T) {
	models := &fakeModels{replies: []reply{{resp: textResponse("Hola ", "mundo")}}}
	g, _ := newTestGenerator(models, testConfig())

	text, err := g.Generate(context.Background(), "say hello")
	require.NoError(t, err)
	assert.Equal(t, "Hola mundo", text)
	assert.Equal(t, []string{"gemini-test"}, models.models)
	require.NotNil(t, g.settings.Temperature)
	assert.InDelta(t, 0.5, *g.settings.Temperature, 0.0001)
}

func TestGenerateRetriesTransientErrors(t *testing.T) {
	models := &fakeModels{replies: []reply{
		{err: genai.APIError{Code: 503, Message: "overloaded"}},
		{err: errors.New("connection reset")},
		{resp: textResponse("ok")},
	}}
	g, delays := newTestGenerator(models, testConfig())

	text, err := g.Generate(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "ok", text)
	assert.Equal(t, 3, models.calls)
	require.Len(t, *delays, 2)
	assert.GreaterOrEqual(t, (*delays)[0], 500*time.Millisecond)
	assert.Less(t, (*delays)[0], time.Second)
	assert.GreaterOrEqual(t, (*delays)[1], time.Second)
	assert.Less(t, (*delays)[1], 2*time.Second)
}

func TestGenerateGivesUpAfterMaxRetries(t *testing.T) {
	models := &fakeModels{replies: []reply{{err: genai.APIError{Code: 429, Message: "slow down"}}}}
	g, delays := newTestGenerator(models, testConfig())

	_, err := g.Generate(context.Background(), "prompt")
	assert.ErrorIs(t, err, generation.ErrTransientFailure)
	assert.Equal(t, 3, models.calls)
	assert.Len(t, *delays, 2)
}

func TestGeneratePermanentFailures(t *testing.T) {
	tests := []struct {
		name     string
		reply    reply
		expected error
	}{
		{
			name:     "bad_request",
			reply:    reply{err: genai.APIError{Code: 400, Message: "bad"}},
			expected: generation.ErrGenerationFailed,
		},
		{
			name: "safety_block",
			reply: reply{resp: &genai.GenerateContentResponse{
				Candidates: []*genai.Candidate{{FinishReason: genai.FinishReasonSafety}},
			}},
			expected: generation.ErrContentBlocked,
		},
		{
			name: "prompt_blocked",
			reply: reply{resp: &genai.GenerateContentResponse{
				PromptFeedback: &genai.GenerateContentResponsePromptFeedback{BlockReason: genai.BlockedReasonSafety},
			}},
			expected: generation.ErrContentBlocked,
		},
		{
			name:     "no_candidates",
			reply:    reply{resp: &genai.GenerateContentResponse{}},
			expected: generation.ErrInvalidResponse,
		},
		{
			name:     "nil_response",
			reply:    reply{},
			expected: generation.ErrInvalidResponse,
		},
		{
			name:     "blank_text",
			reply:    reply{resp: textResponse("  ")},
			expected: generation.ErrInvalidResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			models := &fakeModels{replies: []reply{tt.reply}}
			g, delays := newTestGenerator(models, testConfig())

			_, err := g.Generate(context.Background(), "prompt")
			assert.ErrorIs(t, err, tt.expected)
			assert.Equal(t, 1, models.calls, "permanent errors are not retried")
			assert.Empty(t, *delays)
		})
	}
}

func TestGenerateStopsWhenContextCancelled(t *testing.T) {
	models := &fakeModels{replies: []reply{{err: errors.New("timeout")}}}
	g, _ := newTestGenerator(models, testConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := g.Generate(ctx, "prompt")
	assert.ErrorIs(t, err, generation.ErrTransientFailure)
	assert.Equal(t, 1, models.calls)
}

func TestGenerateRejectsEmptyPrompt(t *testing.T) {
	models := &fakeModels{replies: []reply{{resp: textResponse("x")}}}
	g, _ := newTestGenerator(models, testConfig())

	_, err := g.Generate(context.Background(), " \n")
	assert.ErrorIs(t, err, generation.ErrEmptyInput)
	assert.Equal(t, 0, models.calls)
}

func TestNewWithoutKeyIsDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.GeminiAPIKey = ""

	gen, err := New(context.Background(), slog.New(slog.NewTextHandler(io.Discard, nil)), cfg)
	require.NoError(t, err)
	assert.IsType(t, Disabled{}, gen)

	_, err = gen.Generate(context.Background(), "prompt")
	assert.ErrorIs(t, err, generation.ErrUnavailable)
}

func TestValidateConfig(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name    string
		mutate  func(*config.LLMConfig)
		wantErr bool
	}{
		{name: "valid", mutate: func(*config.LLMConfig) {}},
		{name: "missing_key", mutate: func(c *config.LLMConfig) { c.GeminiAPIKey = "" }, wantErr: true},
		{name: "missing_model", mutate: func(c *config.LLMConfig) { c.ModelName = "" }, wantErr: true},
		{name: "negative_retries_falls_back", mutate: func(c *config.LLMConfig) { c.MaxRetries = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.mutate(&cfg)
			err := validateConfig(context.Background(), logger, cfg)
			if tt.wantErr {
				assert.ErrorIs(t, err, generation.ErrInvalidConfig)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestNewRequiresLogger(t *testing.T) {
	_, err := New(context.Background(), nil, testConfig())
	assert.Error(t, err)
}
