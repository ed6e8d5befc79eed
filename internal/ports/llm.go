package ports

import (
	"context"

	"github.com/lorenzomaiuri-dev/tarots-os/internal/domain"
)

// Interpreter generates a natural-language reading interpretation from a
// prepared chat prompt. The model configuration is a per-call parameter;
// implementations must not cache credentials.
type Interpreter interface {
	Generate(ctx context.Context, messages []domain.ChatMessage, cfg domain.AIModelConfig) (string, error)
}
