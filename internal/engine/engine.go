// Package engine wires routing, retrieval, and the indexing pipeline into the
// surface the transport layer calls: text queries, received images, and image
// lookups. The design favors availability over correctness signaling; no
// collaborator failure here is fatal.
package engine

import (
	"context"
	"strings"
	"sync"

	"github.com/hyperjump/kotae/internal/indexer"
	"github.com/hyperjump/kotae/internal/llm"
	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/retrieval"
	"github.com/hyperjump/kotae/internal/router"
	"github.com/hyperjump/kotae/internal/store"
	"go.uber.org/zap"
)

// Engine answers queries against the resident text index and the durable image
// index. The text index is an immutable snapshot swapped atomically on rebuild;
// the image index is reloaded from disk per lookup because the append path
// rewrites it outside this process's memory.
type Engine struct {
	router     *router.Router
	generator  llm.Generator
	embedder   llm.Embedder
	pipeline   *indexer.Pipeline
	textStore  *store.TextStore
	imageStore *store.ImageStore

	unavailableReply string
	logger           *zap.Logger // optional; when set, logs query handling

	mu    sync.RWMutex
	index *models.TextIndex
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets a logger for query handling events.
func WithLogger(l *zap.Logger) EngineOption {
	return func(e *Engine) { e.logger = l }
}

// NewEngine creates an engine with the given dependencies. unavailableReply is
// the user-visible placeholder returned when generation fails.
func NewEngine(
	r *router.Router,
	generator llm.Generator,
	embedder llm.Embedder,
	pipeline *indexer.Pipeline,
	textStore *store.TextStore,
	imageStore *store.ImageStore,
	unavailableReply string,
	opts ...EngineOption,
) *Engine {
	e := &Engine{
		router:           r,
		generator:        generator,
		embedder:         embedder,
		pipeline:         pipeline,
		textStore:        textStore,
		imageStore:       imageStore,
		unavailableReply: unavailableReply,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// EnsureTextIndex loads the persisted text index, rebuilding it from the
// knowledge directory when it is absent or empty. Index construction is
// idempotent and triggered by missing durable state, not by user action.
func (e *Engine) EnsureTextIndex(ctx context.Context) error {
	idx, err := e.textStore.Load()
	if err != nil {
		return err
	}
	if idx.Len() == 0 {
		if e.logger != nil {
			e.logger.Info("no persisted text index, building from knowledge directory")
		}
		idx, err = e.pipeline.BuildTextIndex(ctx)
		if err != nil {
			return err
		}
	}
	e.mu.Lock()
	e.index = idx
	e.mu.Unlock()
	return nil
}

// Reindex forces a full rebuild of the text index and swaps it in. Returns the
// chunk count of the new index.
func (e *Engine) Reindex(ctx context.Context) (int, error) {
	idx, err := e.pipeline.BuildTextIndex(ctx)
	if err != nil {
		return 0, err
	}
	e.mu.Lock()
	e.index = idx
	e.mu.Unlock()
	return idx.Len(), nil
}

// TextChunks returns the number of chunks in the resident index.
func (e *Engine) TextChunks() int {
	return e.snapshot().Len()
}

// ImageCount returns the number of records in the durable image index.
func (e *Engine) ImageCount() (int, error) {
	recs, err := e.imageStore.Load()
	if err != nil {
		return 0, err
	}
	return len(recs), nil
}

// HandleTextQuery answers one inbound text query. An empty or whitespace-only
// query short-circuits to an empty reply (no message is sent). Generation
// failure yields the configured placeholder reply rather than an error.
func (e *Engine) HandleTextQuery(ctx context.Context, text string) (string, models.Route, error) {
	if strings.TrimSpace(text) == "" {
		return "", "", nil
	}

	spec, route := e.router.Route(ctx, text, e.snapshot())
	reply, err := e.generator.Generate(ctx, spec.Prompt, llm.GenOptions{
		Temperature: spec.Temperature,
		MaxTokens:   spec.MaxTokens,
	})
	if err != nil {
		if e.logger != nil {
			e.logger.Warn("generation failed, replying with placeholder", zap.Error(err))
		}
		return e.unavailableReply, route, nil
	}
	return reply, route, nil
}

// HandleImageReceived stores and indexes one inbound image.
func (e *Engine) HandleImageReceived(ctx context.Context, data []byte) (models.ImageReceipt, error) {
	return e.pipeline.IngestImage(ctx, data)
}

// HandleImageQuery returns the stored image best matching the query text, or
// nil when the image index is empty or the query cannot be embedded.
func (e *Engine) HandleImageQuery(ctx context.Context, text string) (*models.ImageMatch, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	queryEmb, err := e.embedder.EmbedText(ctx, text)
	if err != nil {
		if e.logger != nil {
			e.logger.Warn("image query embedding failed", zap.Error(err))
		}
		return nil, nil
	}
	recs, err := e.imageStore.Load()
	if err != nil {
		return nil, err
	}
	best := retrieval.BestImage(queryEmb, recs)
	if best == nil {
		return nil, nil
	}
	return &models.ImageMatch{StoredPath: best.File, Caption: best.Caption}, nil
}

// snapshot returns the resident index pointer; never nil.
func (e *Engine) snapshot() *models.TextIndex {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.index == nil {
		return &models.TextIndex{}
	}
	return e.index
}
