package generation

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"text/template"
	"unicode/utf8"

	"github.com/phrazzld/lingua-api/internal/domain"
	"github.com/phrazzld/lingua-api/internal/platform/logger"
)

//go:embed prompts/*.tmpl
var promptFS embed.FS

var prompts = template.Must(template.ParseFS(promptFS, "prompts/*.tmpl"))

// maxExcerptRunes bounds how much of a text is quoted in a study guide prompt.
const maxExcerptRunes = 2000

// Translation is the structured reply to a translate request.
type Translation struct {
	Translation string `json:"translation"`
	WordType    string `json:"word_type"`
	Notes       string `json:"notes"`
}

// LessonRequest describes the lesson to generate. A non-empty Subject asks
// for a subject-based lesson that teaches Topic within that subject.
type LessonRequest struct {
	Language  string
	Level     string
	Topic     string
	Subject   string
	TaskBased bool
}

// StudyGuideRequest describes a text to extract study material from.
type StudyGuideRequest struct {
	Title       string
	Language    string
	ContentType string
	Content     string
	// Transcript marks video transcripts, which also get a summary.
	Transcript bool
}

// CulturalRequest describes a piece of cultural immersion content.
type CulturalRequest struct {
	Language string
	Aspect   string
	Region   string
}

// ImmersionRequest describes an immersion text to write.
type ImmersionRequest struct {
	Language    string
	Level       string
	ContentType string
	Topic       string
}

// Assistant renders prompts and interprets replies for the learning features.
type Assistant struct {
	gen    TextGenerator
	logger *slog.Logger
}

// NewAssistant creates an Assistant on gen.
func NewAssistant(gen TextGenerator, logger *slog.Logger) *Assistant {
	if gen == nil {
		panic("generator cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Assistant{
		gen:    gen,
		logger: logger.With(slog.String("component", "assistant")),
	}
}

// Translate asks for an English translation, word type and usage notes.
func (a *Assistant) Translate(ctx context.Context, word, wordContext, language string) (*Translation, error) {
	if strings.TrimSpace(word) == "" {
		return nil, fmt.Errorf("%w: word", ErrEmptyInput)
	}

	text, err := a.run(ctx, "translate.tmpl", struct {
		Word, Context, Language string
	}{word, wordContext, language})
	if err != nil {
		return nil, err
	}

	var tr Translation
	if err := json.Unmarshal([]byte(extractJSON(text)), &tr); err != nil {
		a.logger.WarnContext(ctx, "unparseable translation reply",
			slog.Int("reply_length", len(text)),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: translation is not valid JSON: %v", ErrInvalidResponse, err)
	}
	if strings.TrimSpace(tr.Translation) == "" {
		return nil, fmt.Errorf("%w: translation missing", ErrInvalidResponse)
	}
	return &tr, nil
}

// JournalFeedback reviews a journal entry.
func (a *Assistant) JournalFeedback(ctx context.Context, content, language string) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("%w: journal content", ErrEmptyInput)
	}
	return a.run(ctx, "journal_feedback.tmpl", struct {
		Content, Language string
	}{content, language})
}

// Lesson generates lesson material.
func (a *Assistant) Lesson(ctx context.Context, req LessonRequest) (string, error) {
	if strings.TrimSpace(req.Topic) == "" {
		return "", fmt.Errorf("%w: topic", ErrEmptyInput)
	}
	if req.Subject != "" {
		return a.run(ctx, "subject_lesson.tmpl", req)
	}
	return a.run(ctx, "lesson.tmpl", req)
}

// StudyGuide picks key vocabulary and comprehension questions out of a text.
func (a *Assistant) StudyGuide(ctx context.Context, req StudyGuideRequest) (*domain.StudyGuide, error) {
	if strings.TrimSpace(req.Content) == "" {
		return nil, fmt.Errorf("%w: content", ErrEmptyInput)
	}

	text, err := a.run(ctx, "study_guide.tmpl", struct {
		Title, Language, ContentType, Excerpt string
		Transcript                            bool
	}{req.Title, req.Language, req.ContentType, excerpt(req.Content, maxExcerptRunes), req.Transcript})
	if err != nil {
		return nil, err
	}

	var guide domain.StudyGuide
	if err := json.Unmarshal([]byte(extractJSON(text)), &guide); err != nil {
		a.logger.WarnContext(ctx, "unparseable study guide reply",
			slog.Int("reply_length", len(text)),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: study guide is not valid JSON: %v", ErrInvalidResponse, err)
	}
	return cleanStudyGuide(&guide, req.Transcript)
}

// CulturalContent writes about one aspect of the culture behind a language.
func (a *Assistant) CulturalContent(ctx context.Context, req CulturalRequest) (string, error) {
	if strings.TrimSpace(req.Aspect) == "" {
		return "", fmt.Errorf("%w: cultural aspect", ErrEmptyInput)
	}
	return a.run(ctx, "cultural.tmpl", req)
}

// ImmersionText writes a short reading piece in the target language.
func (a *Assistant) ImmersionText(ctx context.Context, req ImmersionRequest) (string, error) {
	return a.run(ctx, "immersion.tmpl", req)
}

// TypingExercise generates keyboard practice for a script.
func (a *Assistant) TypingExercise(ctx context.Context, language, script, level string) (string, error) {
	return a.run(ctx, "typing_exercise.tmpl", struct {
		Language, Script, Level string
	}{language, script, level})
}

// WritingExercise generates a writing task. topic may be empty.
func (a *Assistant) WritingExercise(ctx context.Context, language, level, topic string) (string, error) {
	return a.run(ctx, "writing_exercise.tmpl", struct {
		Language, Level, Topic string
	}{language, level, topic})
}

// CheckWriting reviews a submission, optionally against the exercise it answers.
func (a *Assistant) CheckWriting(ctx context.Context, content, language, exercise string) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("%w: submission", ErrEmptyInput)
	}
	return a.run(ctx, "check_writing.tmpl", struct {
		Content, Language, Exercise string
	}{content, language, exercise})
}

func (a *Assistant) run(ctx context.Context, name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := prompts.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("%w: rendering %s: %v", ErrGenerationFailed, name, err)
	}

	log := logger.FromContextOrDefault(ctx, a.logger)
	log.DebugContext(ctx, "sending prompt",
		slog.String("template", name),
		slog.Int("prompt_length", buf.Len()))

	text, err := a.gen.Generate(ctx, buf.String())
	if err != nil {
		log.WarnContext(ctx, "generation failed",
			slog.String("template", name),
			slog.String("error", err.Error()))
		return "", err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("%w: empty reply", ErrInvalidResponse)
	}
	return text, nil
}

// Title returns the first line of generated text with markdown markers
// removed, or fallback when there is none.
func Title(text, fallback string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.Trim(strings.TrimSpace(line), "#* ")
		line = strings.TrimSpace(strings.TrimPrefix(line, "Title:"))
		if line == "" {
			continue
		}
		if utf8.RuneCountInString(line) > 200 {
			line = string([]rune(line)[:200])
		}
		return line
	}
	return fallback
}

func excerpt(text string, limit int) string {
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) <= limit {
		return text
	}
	return string([]rune(text)[:limit]) + "..."
}

func cleanStudyGuide(g *domain.StudyGuide, transcript bool) (*domain.StudyGuide, error) {
	out := &domain.StudyGuide{Vocabulary: []domain.GlossaryEntry{}, Questions: []string{}}
	for _, e := range g.Vocabulary {
		e.Word = strings.TrimSpace(e.Word)
		if e.Word == "" {
			continue
		}
		e.Translation = strings.TrimSpace(e.Translation)
		e.Notes = strings.TrimSpace(e.Notes)
		out.Vocabulary = append(out.Vocabulary, e)
	}
	for _, q := range g.Questions {
		if q = strings.TrimSpace(q); q != "" {
			out.Questions = append(out.Questions, q)
		}
	}
	if len(out.Vocabulary) == 0 && len(out.Questions) == 0 {
		return nil, fmt.Errorf("%w: study guide has no vocabulary or questions", ErrInvalidResponse)
	}
	if transcript {
		out.Summary = strings.TrimSpace(g.Summary)
	}
	return out, nil
}

// extractJSON strips markdown code fences and any prose around the first
// JSON object in text.
func extractJSON(text string) string {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return text
	}
	return text[start : end+1]
}
