package gemini

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/lingua-api/internal/config"
	"github.com/phrazzld/lingua-api/internal/generation"
)

// validateConfig checks the settings a live client needs.
func validateConfig(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig) error {
	if cfg.GeminiAPIKey == "" {
		logger.ErrorContext(ctx, "missing Gemini API key")
		return fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}
	if cfg.ModelName == "" {
		logger.ErrorContext(ctx, "missing Gemini model name")
		return fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}
	if cfg.MaxRetries < 0 {
		logger.WarnContext(ctx, "invalid MaxRetries value",
			slog.Int("value", cfg.MaxRetries),
			slog.String("action", "using default value"))
	}
	if cfg.RetryDelaySeconds < 1 {
		logger.WarnContext(ctx, "invalid RetryDelaySeconds value",
			slog.Int("value", cfg.RetryDelaySeconds),
			slog.String("action", "using default value"))
	}
	return nil
}
