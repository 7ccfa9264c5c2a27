package indexer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hyperjump/kotae/internal/llm"
	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/store"
	"go.uber.org/zap"
)

// knowledgeExtensions are the corpus file types read by the text branch.
var knowledgeExtensions = []string{".txt", ".md"}

// Pipeline orchestrates corpus scan -> chunk -> embed -> store for text, and
// image received -> store asset -> caption/embed -> append for images.
type Pipeline struct {
	embedder        llm.Embedder
	imageEmbedder   llm.ImageEmbedder
	captioner       llm.Captioner
	textStore       *store.TextStore
	imageStore      *store.ImageStore
	knowledgeDir    string
	imagesDir       string
	fallbackCaption string
	logger          *zap.Logger // optional; when set, logs pipeline events
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithLogger sets a logger for pipeline events (files indexed, fallbacks taken).
func WithLogger(l *zap.Logger) PipelineOption {
	return func(p *Pipeline) { p.logger = l }
}

// NewPipeline creates a pipeline with the given collaborators and stores.
// fallbackCaption replaces the caption when the captioning collaborator fails.
func NewPipeline(
	embedder llm.Embedder,
	imageEmbedder llm.ImageEmbedder,
	captioner llm.Captioner,
	textStore *store.TextStore,
	imageStore *store.ImageStore,
	knowledgeDir, imagesDir, fallbackCaption string,
	opts ...PipelineOption,
) *Pipeline {
	p := &Pipeline{
		embedder:        embedder,
		imageEmbedder:   imageEmbedder,
		captioner:       captioner,
		textStore:       textStore,
		imageStore:      imageStore,
		knowledgeDir:    knowledgeDir,
		imagesDir:       imagesDir,
		fallbackCaption: fallbackCaption,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// BuildTextIndex scans the knowledge directory, chunks and embeds every
// .txt/.md file, persists the resulting index, and returns it. Chunk IDs are
// file#index, so rebuilding an unchanged corpus yields identical IDs. A chunk
// whose embedding call fails is kept with a nil embedding; it scores 0 during
// retrieval and never ranks.
func (p *Pipeline) BuildTextIndex(ctx context.Context) (*models.TextIndex, error) {
	entries, err := os.ReadDir(p.knowledgeDir)
	if err != nil {
		if os.IsNotExist(err) {
			if p.logger != nil {
				p.logger.Warn("knowledge directory missing, building empty index",
					zap.String("dir", p.knowledgeDir))
			}
			idx := &models.TextIndex{Docs: []models.Chunk{}}
			if saveErr := p.textStore.Save(idx); saveErr != nil {
				return nil, saveErr
			}
			return idx, nil
		}
		return nil, fmt.Errorf("read knowledge dir: %w", err)
	}

	idx := &models.TextIndex{Docs: []models.Chunk{}}
	for _, entry := range entries {
		if entry.IsDir() || !knowledgeFile(entry.Name()) {
			continue
		}
		path := filepath.Join(p.knowledgeDir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			if p.logger != nil {
				p.logger.Warn("skipping unreadable knowledge file",
					zap.String("path", path), zap.Error(err))
			}
			continue
		}
		for i, text := range SplitChunks(string(data)) {
			emb, err := p.embedder.EmbedText(ctx, text)
			if err != nil {
				if p.logger != nil {
					p.logger.Warn("chunk embedding failed",
						zap.String("file", entry.Name()), zap.Int("chunk", i), zap.Error(err))
				}
				emb = nil
			}
			idx.Docs = append(idx.Docs, models.Chunk{
				ID:        fmt.Sprintf("%s#%d", entry.Name(), i),
				File:      entry.Name(),
				Text:      text,
				Embedding: emb,
			})
		}
		if p.logger != nil {
			p.logger.Debug("knowledge file indexed", zap.String("file", entry.Name()))
		}
	}

	if err := p.textStore.Save(idx); err != nil {
		return nil, err
	}
	if p.logger != nil {
		p.logger.Info("text index built", zap.Int("chunks", idx.Len()))
	}
	return idx, nil
}

// IngestImage stores the raw image bytes as an asset file, captions and embeds
// them, and appends the record to the durable image index. Caption failure
// substitutes the fallback caption and embedding failure leaves the record
// without an embedding; neither is fatal.
func (p *Pipeline) IngestImage(ctx context.Context, data []byte) (models.ImageReceipt, error) {
	if err := os.MkdirAll(p.imagesDir, 0755); err != nil {
		return models.ImageReceipt{}, fmt.Errorf("create images dir: %w", err)
	}
	name := fmt.Sprintf("%d-%s.jpg", time.Now().UnixNano(), uuid.New().String()[:8])
	path := filepath.Join(p.imagesDir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return models.ImageReceipt{}, fmt.Errorf("store image asset: %w", err)
	}

	caption, err := p.captioner.Caption(ctx, data)
	if err != nil || strings.TrimSpace(caption) == "" {
		if p.logger != nil {
			p.logger.Warn("captioning failed, using fallback", zap.Error(err))
		}
		caption = p.fallbackCaption
	}

	emb, err := p.imageEmbedder.EmbedImage(ctx, data)
	if err != nil {
		if p.logger != nil {
			p.logger.Warn("image embedding failed, record kept without embedding", zap.Error(err))
		}
		emb = nil
	}

	rec := models.ImageRecord{File: path, Caption: caption, Embedding: emb}
	if err := p.imageStore.Append(rec); err != nil {
		return models.ImageReceipt{}, err
	}
	if p.logger != nil {
		p.logger.Info("image ingested", zap.String("path", path))
	}
	return models.ImageReceipt{Caption: caption, StoredPath: path}, nil
}

// knowledgeFile reports whether name has a corpus extension (case-insensitive).
func knowledgeFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, allowed := range knowledgeExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}
