// Package router classifies text queries and assembles the generation prompt.
// It builds prompts only; calling the generator is the engine's job.
package router

import (
	"context"
	"strings"

	"github.com/hyperjump/kotae/internal/llm"
	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/retrieval"
	"go.uber.org/zap"
)

// Router routes one query to exactly one of three prompt templates: greeting,
// grounded (retrieved context above the threshold), or ungrounded.
type Router struct {
	embedder     llm.Embedder
	greetings    []string
	topK         int
	simThreshold float64
	logger       *zap.Logger // optional; when set, logs routing decisions
}

// RouterOption configures a Router.
type RouterOption func(*Router)

// WithLogger sets a logger for routing decisions.
func WithLogger(l *zap.Logger) RouterOption {
	return func(r *Router) { r.logger = l }
}

// NewRouter creates a router. greetings are matched as case-insensitive
// prefixes; topK and simThreshold gate the grounded route.
func NewRouter(embedder llm.Embedder, greetings []string, topK int, simThreshold float64, opts ...RouterOption) *Router {
	r := &Router{
		embedder:     embedder,
		greetings:    greetings,
		topK:         topK,
		simThreshold: simThreshold,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Route classifies query against idx and returns the assembled prompt plus the
// route taken. Retrieval only happens on the non-greeting path; when the query
// embedding cannot be computed the ungrounded template is used.
func (r *Router) Route(ctx context.Context, query string, idx *models.TextIndex) (models.PromptSpec, models.Route) {
	if r.isGreeting(query) {
		if r.logger != nil {
			r.logger.Debug("query routed", zap.String("route", string(models.RouteGreeting)))
		}
		return greetingPrompt(query), models.RouteGreeting
	}

	queryEmb, err := r.embedder.EmbedText(ctx, query)
	if err != nil {
		if r.logger != nil {
			r.logger.Warn("query embedding failed, answering without context", zap.Error(err))
		}
		return ungroundedPrompt(query), models.RouteUngrounded
	}

	results := retrieval.TopK(queryEmb, idx, r.topK)
	if len(results) == 0 || results[0].Score < r.simThreshold {
		if r.logger != nil {
			top := 0.0
			if len(results) > 0 {
				top = results[0].Score
			}
			r.logger.Debug("query routed",
				zap.String("route", string(models.RouteUngrounded)),
				zap.Float64("top_score", top),
				zap.Float64("threshold", r.simThreshold))
		}
		return ungroundedPrompt(query), models.RouteUngrounded
	}

	if r.logger != nil {
		r.logger.Debug("query routed",
			zap.String("route", string(models.RouteGrounded)),
			zap.Float64("top_score", results[0].Score),
			zap.Int("chunks", len(results)))
	}
	return groundedPrompt(query, results), models.RouteGrounded
}

// isGreeting reports whether the lower-cased, trimmed query starts with one of
// the configured greeting phrases.
func (r *Router) isGreeting(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	for _, g := range r.greetings {
		if strings.HasPrefix(q, strings.ToLower(g)) {
			return true
		}
	}
	return false
}
