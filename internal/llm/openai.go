package llm

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/hyperjump/kotae/internal/config"
	openai "github.com/sashabaranov/go-openai"
)

const captionPrompt = "Describe this image in one short sentence so it can be found later by a text search."

// OpenAI implements Embedder, ImageEmbedder, Captioner, and Generator against
// the OpenAI API. A single client serves all collaborator roles so the text and
// image embedding spaces stay consistent.
type OpenAI struct {
	client *openai.Client
	cfg    config.OpenAIConfig
	cache  *EmbeddingCache
	dim    int
}

// NewOpenAI creates a client from cfg. The API key is read from the
// OPENAI_API_KEY environment variable.
func NewOpenAI(cfg config.OpenAIConfig) (*OpenAI, error) {
	key := os.Getenv("OPENAI_API_KEY")
	if key == "" {
		return nil, errors.New("OPENAI_API_KEY environment variable not set")
	}

	dim := 1536 // text-embedding-3-small
	if cfg.EmbeddingModel == "text-embedding-3-large" {
		dim = 3072
	}

	return &OpenAI{
		client: openai.NewClient(key),
		cfg:    cfg,
		cache:  NewEmbeddingCache(cfg.CacheSize),
		dim:    dim,
	}, nil
}

// EmbedText returns an L2-normalized embedding for text. Results are cached.
func (o *OpenAI) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, errors.New("cannot embed empty text")
	}
	if emb, ok := o.cache.Get(text); ok {
		return emb, nil
	}

	resp, err := o.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(o.cfg.EmbeddingModel),
		Input: []string{text},
	})
	if err != nil {
		return nil, fmt.Errorf("create embedding: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, errors.New("no embedding data returned")
	}

	raw := resp.Data[0].Embedding
	emb := make([]float32, len(raw))
	for i := range raw {
		emb[i] = float32(raw[i])
	}
	l2normalize(emb)

	o.cache.Set(text, emb)
	return emb, nil
}

// Dimensions returns the embedding dimension for the configured model.
func (o *OpenAI) Dimensions() int {
	return o.dim
}

// Caption returns a one-sentence caption for the image via the vision model.
func (o *OpenAI) Caption(ctx context.Context, data []byte) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     o.cfg.VisionModel,
		MaxTokens: 60,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: captionPrompt},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    dataURL(data),
							Detail: openai.ImageURLDetailLow,
						},
					},
				},
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("caption image: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no caption returned")
	}
	return resp.Choices[0].Message.Content, nil
}

// EmbedImage captions the image and embeds the caption text, so image records
// share the text embedding space and can be ranked against text queries.
// TODO: accept the caption already computed by the ingest pipeline instead of
// captioning the same bytes twice.
func (o *OpenAI) EmbedImage(ctx context.Context, data []byte) ([]float32, error) {
	caption, err := o.Caption(ctx, data)
	if err != nil {
		return nil, err
	}
	return o.EmbedText(ctx, caption)
}

// Generate runs a chat completion for the assembled prompt.
func (o *OpenAI) Generate(ctx context.Context, prompt string, opts GenOptions) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       o.cfg.ChatModel,
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no completion returned")
	}
	return resp.Choices[0].Message.Content, nil
}

func dataURL(data []byte) string {
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(data)
}

// l2normalize scales v to unit length in place. Normalized vectors make inner
// product equal cosine similarity.
func l2normalize(v []float32) {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return
	}
	inv := float32(1.0 / math.Sqrt(sum))
	for i := range v {
		v[i] *= inv
	}
}
