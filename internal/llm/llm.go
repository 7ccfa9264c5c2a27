// Package llm defines the model collaborator interfaces and their OpenAI-backed
// implementations. The indexing and retrieval core treats these as opaque remote
// calls; all of them may fail and callers convert failures to safe fallbacks.
package llm

import "context"

// Embedder produces vector embeddings for text.
type Embedder interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
}

// ImageEmbedder produces vector embeddings for raw image bytes. Embeddings must
// live in the same space as the text embedder so text queries can rank images.
type ImageEmbedder interface {
	EmbedImage(ctx context.Context, data []byte) ([]float32, error)
}

// Captioner produces a short natural-language caption for raw image bytes.
type Captioner interface {
	Caption(ctx context.Context, data []byte) (string, error)
}

// GenOptions are the per-call generation parameters chosen by the query router.
type GenOptions struct {
	Temperature float32
	MaxTokens   int
}

// Generator produces text from an assembled prompt. It is a possibly-unavailable
// remote call; the engine substitutes a placeholder reply on failure.
type Generator interface {
	Generate(ctx context.Context, prompt string, opts GenOptions) (string, error)
}
