package retrieval

import (
	"testing"

	"github.com/hyperjump/kotae/internal/models"
)

func indexOf(embeddings ...[]float32) *models.TextIndex {
	idx := &models.TextIndex{}
	for i, e := range embeddings {
		idx.Docs = append(idx.Docs, models.Chunk{
			ID:        string(rune('a' + i)),
			Text:      "chunk " + string(rune('a'+i)),
			Embedding: e,
		})
	}
	return idx
}

func TestTopK_Ordering(t *testing.T) {
	idx := indexOf(
		[]float32{0, 1},   // orthogonal to query
		[]float32{1, 0},   // exact match
		[]float32{1, 0.5}, // close
	)
	results := TopK([]float32{1, 0}, idx, 3)
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i := 1; i < len(results); i++ {
		if results[i].Score > results[i-1].Score {
			t.Errorf("results not in non-increasing score order at %d: %v > %v",
				i, results[i].Score, results[i-1].Score)
		}
	}
	if results[0].Chunk.ID != "b" {
		t.Errorf("best chunk=%s, want b", results[0].Chunk.ID)
	}
}

func TestTopK_Truncation(t *testing.T) {
	idx := indexOf(
		[]float32{1, 0}, []float32{0, 1}, []float32{1, 1},
		[]float32{-1, 0}, []float32{0.5, 0.5},
	)
	if got := len(TopK([]float32{1, 0}, idx, 3)); got != 3 {
		t.Errorf("k=3 over 5 chunks returned %d", got)
	}
	one := indexOf([]float32{1, 0})
	if got := len(TopK([]float32{1, 0}, one, 3)); got != 1 {
		t.Errorf("k=3 over 1 chunk returned %d", got)
	}
}

func TestTopK_StableTies(t *testing.T) {
	// Both chunks score identically; original order must win.
	idx := indexOf([]float32{1, 0}, []float32{1, 0})
	results := TopK([]float32{1, 0}, idx, 2)
	if results[0].Chunk.ID != "a" || results[1].Chunk.ID != "b" {
		t.Errorf("tie order: got %s,%s want a,b", results[0].Chunk.ID, results[1].Chunk.ID)
	}
}

func TestTopK_Degenerate(t *testing.T) {
	if got := TopK([]float32{1}, nil, 3); got != nil {
		t.Errorf("nil index: got %v", got)
	}
	if got := TopK([]float32{1}, &models.TextIndex{}, 3); got != nil {
		t.Errorf("empty index: got %v", got)
	}
	idx := indexOf([]float32{1, 0})
	if got := TopK([]float32{1, 0}, idx, 0); got != nil {
		t.Errorf("k=0: got %v", got)
	}
}

func TestTopK_MissingEmbeddingScoresZero(t *testing.T) {
	idx := &models.TextIndex{Docs: []models.Chunk{
		{ID: "missing", Text: "no embedding"},
		{ID: "match", Text: "match", Embedding: []float32{1, 0}},
	}}
	results := TopK([]float32{1, 0}, idx, 2)
	if results[0].Chunk.ID != "match" {
		t.Errorf("best=%s, want match", results[0].Chunk.ID)
	}
	if results[1].Score != 0 {
		t.Errorf("chunk without embedding scored %v, want 0", results[1].Score)
	}
}
