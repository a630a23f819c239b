package generation

import "context"

// TextGenerator turns a prompt into model output. Implementations must be
// safe for concurrent use.
type TextGenerator interface {
	// Generate returns the model's text for prompt. Errors wrap one of the
	// package sentinels so callers can tell blocked, malformed and
	// transient failures apart.
	Generate(ctx context.Context, prompt string) (string, error)
}
