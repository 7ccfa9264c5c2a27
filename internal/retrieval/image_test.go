package retrieval

import (
	"math"
	"testing"

	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/vector"
)

func TestBestImage_Empty(t *testing.T) {
	if got := BestImage([]float32{1, 0}, nil); got != nil {
		t.Errorf("empty index should return nil, got %+v", got)
	}
}

func TestBestImage_ExactMatch(t *testing.T) {
	recs := []models.ImageRecord{
		{File: "a.jpg", Caption: "a", Embedding: []float32{1, 0}},
	}
	got := BestImage([]float32{1, 0}, recs)
	if got == nil || got.File != "a.jpg" {
		t.Fatalf("got %+v, want a.jpg", got)
	}
	if s := vector.CosineSimilarity([]float32{1, 0}, got.Embedding); math.Abs(s-1.0) > 1e-6 {
		t.Errorf("score=%v, want 1", s)
	}
}

func TestBestImage_SkipsMissingEmbedding(t *testing.T) {
	recs := []models.ImageRecord{
		{File: "no-emb.jpg"},
		{File: "weak.jpg", Embedding: []float32{0.1, 1}},
	}
	got := BestImage([]float32{1, 0}, recs)
	if got == nil || got.File != "weak.jpg" {
		t.Errorf("got %+v, want weak.jpg", got)
	}
}

func TestBestImage_AllMissingEmbeddings(t *testing.T) {
	recs := []models.ImageRecord{{File: "x.jpg"}, {File: "y.jpg"}}
	if got := BestImage([]float32{1, 0}, recs); got != nil {
		t.Errorf("records without embeddings must never be selected, got %+v", got)
	}
}

func TestBestImage_FirstSeenWinsTies(t *testing.T) {
	recs := []models.ImageRecord{
		{File: "first.jpg", Embedding: []float32{1, 0}},
		{File: "second.jpg", Embedding: []float32{1, 0}},
	}
	got := BestImage([]float32{1, 0}, recs)
	if got == nil || got.File != "first.jpg" {
		t.Errorf("got %+v, want first.jpg", got)
	}
}

func TestBestImage_NoThreshold(t *testing.T) {
	// Even a negative-similarity record is returned when it is the only one.
	recs := []models.ImageRecord{
		{File: "opposite.jpg", Embedding: []float32{-1, 0}},
	}
	got := BestImage([]float32{1, 0}, recs)
	if got == nil || got.File != "opposite.jpg" {
		t.Errorf("got %+v, want opposite.jpg despite negative similarity", got)
	}
}
