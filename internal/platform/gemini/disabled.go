package gemini

import (
	"context"

	"github.com/phrazzld/lingua-api/internal/generation"
)

// Disabled is the generator used when no API key is configured.
type Disabled struct{}

var _ generation.TextGenerator = Disabled{}

// Generate always fails with generation.ErrUnavailable.
func (Disabled) Generate(context.Context, string) (string, error) {
	return "", generation.ErrUnavailable
}
