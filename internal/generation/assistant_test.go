package generation_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/phrazzld/lingua-api/internal/domain"
	"github.com/phrazzld/lingua-api/internal/generation"
	"github.com/phrazzld/lingua-api/internal/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		reply    string
		genErr   error
		expected *generation.Translation
		errIs    error
	}{
		{
			name:     "plain_json",
			reply:    `{"translation": "tree", "word_type": "noun", "notes": "masculine"}`,
			expected: &generation.Translation{Translation: "tree", WordType: "noun", Notes: "masculine"},
		},
		{
			name:     "fenced_json",
			reply:    "Here you go:\n```json\n{\"translation\": \"to run\", \"word_type\": \"verb\", \"notes\": \"\"}\n```",
			expected: &generation.Translation{Translation: "to run", WordType: "verb"},
		},
		{
			name:  "not_json",
			reply: "tree, a noun",
			errIs: generation.ErrInvalidResponse,
		},
		{
			name:  "missing_translation",
			reply: `{"word_type": "noun"}`,
			errIs: generation.ErrInvalidResponse,
		},
		{
			name:  "empty_reply",
			reply: "   ",
			errIs: generation.ErrInvalidResponse,
		},
		{
			name:   "provider_blocked",
			genErr: generation.ErrContentBlocked,
			errIs:  generation.ErrContentBlocked,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			gen := &mocks.MockTextGenerator{Text: tt.reply, Err: tt.genErr}
			a := generation.NewAssistant(gen, nil)

			got, err := a.Translate(context.Background(), "árbol", "el árbol es alto", "Spanish")
			if tt.errIs != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.errIs), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
			assert.Contains(t, gen.LastPrompt(), `Word/Phrase: "árbol"`)
			assert.Contains(t, gen.LastPrompt(), `Context: "el árbol es alto"`)
			assert.Contains(t, gen.LastPrompt(), "from Spanish to English")
		})
	}
}

func TestTranslateRejectsEmptyWord(t *testing.T) {
	t.Parallel()

	gen := mocks.NewMockTextGeneratorWithText("{}")
	_, err := generation.NewAssistant(gen, nil).Translate(context.Background(), " ", "", "Spanish")
	assert.ErrorIs(t, err, generation.ErrEmptyInput)
	assert.Equal(t, 0, gen.Calls())
}

func TestPromptsCarryRequestFields(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("journal_feedback", func(t *testing.T) {
		gen := mocks.NewMockTextGeneratorWithText(" Buen trabajo. ")
		out, err := generation.NewAssistant(gen, nil).JournalFeedback(ctx, "Hoy fui al mercado.", "Spanish")
		require.NoError(t, err)
		assert.Equal(t, "Buen trabajo.", out)
		assert.Contains(t, gen.LastPrompt(), "journal entry in Spanish")
		assert.Contains(t, gen.LastPrompt(), "Hoy fui al mercado.")
	})

	t.Run("task_based_lesson", func(t *testing.T) {
		gen := mocks.NewMockTextGeneratorWithText("lesson body")
		_, err := generation.NewAssistant(gen, nil).Lesson(ctx, generation.LessonRequest{
			Language: "French", Level: "beginner", Topic: "food", TaskBased: true,
		})
		require.NoError(t, err)
		assert.Contains(t, gen.LastPrompt(), "task-based, purpose-driven interactive language lesson")
		assert.Contains(t, gen.LastPrompt(), "learning French about food")
		assert.Contains(t, gen.LastPrompt(), "Task Challenge")
	})

	t.Run("plain_lesson", func(t *testing.T) {
		gen := mocks.NewMockTextGeneratorWithText("lesson body")
		_, err := generation.NewAssistant(gen, nil).Lesson(ctx, generation.LessonRequest{
			Language: "French", Level: "advanced", Topic: "politics",
		})
		require.NoError(t, err)
		assert.NotContains(t, gen.LastPrompt(), "task-based")
		assert.NotContains(t, gen.LastPrompt(), "Task Challenge")
	})

	t.Run("lesson_needs_topic", func(t *testing.T) {
		gen := mocks.NewMockTextGeneratorWithText("lesson body")
		_, err := generation.NewAssistant(gen, nil).Lesson(ctx, generation.LessonRequest{Language: "French"})
		assert.ErrorIs(t, err, generation.ErrEmptyInput)
	})

	t.Run("writing_exercise_without_topic", func(t *testing.T) {
		gen := mocks.NewMockTextGeneratorWithText("exercise")
		_, err := generation.NewAssistant(gen, nil).WritingExercise(ctx, "German", "intermediate", "")
		require.NoError(t, err)
		assert.Contains(t, gen.LastPrompt(), "students learning German.")
	})

	t.Run("check_writing_with_exercise", func(t *testing.T) {
		gen := mocks.NewMockTextGeneratorWithText("feedback")
		_, err := generation.NewAssistant(gen, nil).CheckWriting(ctx, "Ich bin müde.", "German", "Describe your day")
		require.NoError(t, err)
		assert.Contains(t, gen.LastPrompt(), "following exercise:\nDescribe your day")
		assert.Contains(t, gen.LastPrompt(), "Ich bin müde.")
	})
}

func TestStudyGuide(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		reply      string
		transcript bool
		expected   *domain.StudyGuide
		errIs      error
	}{
		{
			name: "article",
			reply: "```json\n" + `{"vocabulary": [{"word": " mercado ", "translation": "market"}, {"word": ""}],` +
				` "questions": ["¿Adónde fue?", " "], "summary": "ignored"}` + "\n```",
			expected: &domain.StudyGuide{
				Vocabulary: []domain.GlossaryEntry{{Word: "mercado", Translation: "market"}},
				Questions:  []string{"¿Adónde fue?"},
			},
		},
		{
			name:       "transcript_keeps_summary",
			reply:      `{"vocabulary": [], "questions": ["¿Qué cocinan?"], "summary": "A cooking video."}`,
			transcript: true,
			expected: &domain.StudyGuide{
				Vocabulary: []domain.GlossaryEntry{},
				Questions:  []string{"¿Qué cocinan?"},
				Summary:    "A cooking video.",
			},
		},
		{
			name:  "nothing_useful",
			reply: `{"vocabulary": [], "questions": []}`,
			errIs: generation.ErrInvalidResponse,
		},
		{
			name:  "prose",
			reply: "Here are some words: mercado, playa",
			errIs: generation.ErrInvalidResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			gen := mocks.NewMockTextGeneratorWithText(tt.reply)
			got, err := generation.NewAssistant(gen, nil).StudyGuide(context.Background(), generation.StudyGuideRequest{
				Title:       "Un día",
				Language:    "Spanish",
				ContentType: "article",
				Content:     "Hoy fui al mercado.",
				Transcript:  tt.transcript,
			})
			if tt.errIs != nil {
				assert.ErrorIs(t, err, tt.errIs)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
			assert.Contains(t, gen.LastPrompt(), `in Spanish titled "Un día"`)
			assert.Contains(t, gen.LastPrompt(), "Hoy fui al mercado.")
			if tt.transcript {
				assert.Contains(t, gen.LastPrompt(), "transcript from a video")
				assert.Contains(t, gen.LastPrompt(), "brief summary")
			} else {
				assert.NotContains(t, gen.LastPrompt(), "summary")
			}
		})
	}
}

func TestStudyGuideQuotesOnlyAnExcerpt(t *testing.T) {
	t.Parallel()

	gen := mocks.NewMockTextGeneratorWithText(`{"questions": ["¿Qué?"]}`)
	long := strings.Repeat("palabra ", 1000)
	_, err := generation.NewAssistant(gen, nil).StudyGuide(context.Background(), generation.StudyGuideRequest{
		Title: "Largo", Language: "Spanish", ContentType: "book", Content: long,
	})
	require.NoError(t, err)
	assert.Less(t, len(gen.LastPrompt()), len(long))
	assert.Contains(t, gen.LastPrompt(), "...")

	_, err = generation.NewAssistant(gen, nil).StudyGuide(context.Background(), generation.StudyGuideRequest{Content: "  "})
	assert.ErrorIs(t, err, generation.ErrEmptyInput)
}

func TestImmersionPrompts(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("subject_lesson", func(t *testing.T) {
		gen := mocks.NewMockTextGeneratorWithText("lesson body")
		_, err := generation.NewAssistant(gen, nil).Lesson(ctx, generation.LessonRequest{
			Language: "Spanish", Level: "intermediate", Topic: "fractions", Subject: "mathematics",
		})
		require.NoError(t, err)
		assert.Contains(t, gen.LastPrompt(), "teach mathematics (specifically about fractions)")
		assert.Contains(t, gen.LastPrompt(), "Spanish as the medium of instruction")
	})

	t.Run("cultural_with_region", func(t *testing.T) {
		gen := mocks.NewMockTextGeneratorWithText("Las fallas")
		out, err := generation.NewAssistant(gen, nil).CulturalContent(ctx, generation.CulturalRequest{
			Language: "Spanish", Aspect: "festivals", Region: "Valencia",
		})
		require.NoError(t, err)
		assert.Equal(t, "Las fallas", out)
		assert.Contains(t, gen.LastPrompt(), "about festivals in Valencia for students learning Spanish")
	})

	t.Run("cultural_needs_aspect", func(t *testing.T) {
		gen := mocks.NewMockTextGeneratorWithText("x")
		_, err := generation.NewAssistant(gen, nil).CulturalContent(ctx, generation.CulturalRequest{Language: "Spanish"})
		assert.ErrorIs(t, err, generation.ErrEmptyInput)
		assert.Equal(t, 0, gen.Calls())
	})

	t.Run("immersion_text", func(t *testing.T) {
		gen := mocks.NewMockTextGeneratorWithText("Un día en Madrid")
		_, err := generation.NewAssistant(gen, nil).ImmersionText(ctx, generation.ImmersionRequest{
			Language: "Spanish", Level: "beginner", ContentType: "story", Topic: "travel",
		})
		require.NoError(t, err)
		assert.Contains(t, gen.LastPrompt(), "beginner level story in Spanish about travel")
	})

	t.Run("typing_exercise", func(t *testing.T) {
		gen := mocks.NewMockTextGeneratorWithText("¡Hola! ¿Qué tal?")
		_, err := generation.NewAssistant(gen, nil).TypingExercise(ctx, "Spanish", "standard", "beginner")
		require.NoError(t, err)
		assert.Contains(t, gen.LastPrompt(), "type in Spanish using standard script")
	})
}

func TestTitle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		text, want string
	}{
		{"# Un día en Madrid\n\nMadrid es...", "Un día en Madrid"},
		{"\n\n**Title: Las Fallas**\nTexto", "Las Fallas"},
		{"   \n  ", "fallback"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, generation.Title(tt.text, "fallback"))
	}
}

func TestNewAssistantPanicsOnNilGenerator(t *testing.T) {
	t.Parallel()
	assert.Panics(t, func() { generation.NewAssistant(nil, nil) })
}
