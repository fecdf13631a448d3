package driven

import (
	"context"

	"github.com/minsukim/notisync/internal/core/domain"
)

// VisionModel runs a vision-capable generation call over raw image bytes.
type VisionModel interface {
	// Describe sends the instruction prompt plus the image and returns
	// the model's raw text reply and reported token usage. Usage may be
	// zero when the backend does not report it.
	Describe(ctx context.Context, prompt string, image []byte, mimeType string) (string, domain.TokenUsage, error)

	// ModelName returns the vision model identifier, used for pricing.
	ModelName() string
}

// TokenCounter counts billable tokens for the embedding model.
type TokenCounter interface {
	CountTokens(ctx context.Context, text string) (int, error)
}

// ImageAnalyzer downloads and classifies one embedded image. It fails
// closed: network errors, unsupported formats and unparsable replies
// produce an error-class analysis with zero cost, never an error return.
type ImageAnalyzer interface {
	Analyze(ctx context.Context, url, caption string) domain.ImageAnalysis
}

// AnswerModel generates a grounded answer over a store's indexed content.
// Retrieval and ranking happen inside the remote store.
type AnswerModel interface {
	AnswerWithStore(ctx context.Context, storeName, model, query string) (answer, grounding string, usage domain.TokenUsage, err error)
}
