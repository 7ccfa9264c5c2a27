package llm

import (
	"context"
	"errors"
	"hash/fnv"
	"math"
)

// MockEmbedder is a deterministic embedder for tests: the same text always gets
// the same unit-length vector, derived from the text hash.
type MockEmbedder struct {
	dimensions int
}

// NewMockEmbedder returns an embedder producing deterministic embeddings of the
// given dimensions.
func NewMockEmbedder(dimensions int) *MockEmbedder {
	if dimensions <= 0 {
		dimensions = 8
	}
	return &MockEmbedder{dimensions: dimensions}
}

// EmbedText returns a deterministic embedding based on the text hash.
func (e *MockEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	h := fnv.New32a()
	h.Write([]byte(text))
	seed := int(h.Sum32() % 10007)
	emb := make([]float32, e.dimensions)
	for i := 0; i < e.dimensions; i++ {
		emb[i] = float32(math.Sin(float64(seed*(i+1)))*0.1 + 0.01)
	}
	l2normalize(emb)
	return emb, nil
}

// Dimensions returns the embedding dimension.
func (e *MockEmbedder) Dimensions() int {
	return e.dimensions
}

// MockImagePipeline is a deterministic captioner and image embedder for tests.
// It captions an image with a fixed prefix over the byte hash and embeds the
// caption with a MockEmbedder, mirroring how the real adapter ties the two
// embedding spaces together.
type MockImagePipeline struct {
	embedder *MockEmbedder
}

// NewMockImagePipeline returns a caption/embed pipeline over deterministic mocks.
func NewMockImagePipeline(dimensions int) *MockImagePipeline {
	return &MockImagePipeline{embedder: NewMockEmbedder(dimensions)}
}

// Caption returns a deterministic caption for the image bytes.
func (m *MockImagePipeline) Caption(ctx context.Context, data []byte) (string, error) {
	h := fnv.New32a()
	h.Write(data)
	return "mock caption " + string(rune('a'+h.Sum32()%26)), nil
}

// EmbedImage embeds the deterministic caption.
func (m *MockImagePipeline) EmbedImage(ctx context.Context, data []byte) ([]float32, error) {
	caption, err := m.Caption(ctx, data)
	if err != nil {
		return nil, err
	}
	return m.embedder.EmbedText(ctx, caption)
}

// MockGenerator is a generator for tests that echoes a canned reply, or fails
// when Err is set.
type MockGenerator struct {
	Reply string
	Err   error
	// LastPrompt and LastOpts record the most recent call for assertions.
	LastPrompt string
	LastOpts   GenOptions
}

// Generate records the call and returns the canned reply or error.
func (g *MockGenerator) Generate(ctx context.Context, prompt string, opts GenOptions) (string, error) {
	g.LastPrompt = prompt
	g.LastOpts = opts
	if g.Err != nil {
		return "", g.Err
	}
	if g.Reply == "" {
		return "mock reply", nil
	}
	return g.Reply, nil
}

// ErrMockUnavailable simulates a collaborator outage.
var ErrMockUnavailable = errors.New("mock collaborator unavailable")

// FailingEmbedder always fails, for exercising fallback paths.
type FailingEmbedder struct{}

// EmbedText always returns ErrMockUnavailable.
func (FailingEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	return nil, ErrMockUnavailable
}

// Dimensions returns 0.
func (FailingEmbedder) Dimensions() int { return 0 }

// FailingCaptioner always fails, for exercising the fallback caption path.
type FailingCaptioner struct{}

// Caption always returns ErrMockUnavailable.
func (FailingCaptioner) Caption(ctx context.Context, data []byte) (string, error) {
	return "", ErrMockUnavailable
}

// FailingImageEmbedder always fails.
type FailingImageEmbedder struct{}

// EmbedImage always returns ErrMockUnavailable.
func (FailingImageEmbedder) EmbedImage(ctx context.Context, data []byte) ([]float32, error) {
	return nil, ErrMockUnavailable
}
