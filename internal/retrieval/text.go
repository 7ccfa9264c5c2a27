// Package retrieval ranks stored chunks and image records against query
// embeddings. Both retrievers are pure functions of their inputs.
package retrieval

import (
	"sort"

	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/vector"
)

// TopK scores every chunk in idx against the query embedding and returns the
// k highest by descending cosine similarity. Ties keep original index order
// (stable sort). An index with fewer than k chunks returns all of them.
func TopK(query []float32, idx *models.TextIndex, k int) []models.RetrievalResult {
	if idx == nil || len(idx.Docs) == 0 || k <= 0 {
		return nil
	}
	results := make([]models.RetrievalResult, len(idx.Docs))
	for i, chunk := range idx.Docs {
		results[i] = models.RetrievalResult{
			Chunk: chunk,
			Score: vector.CosineSimilarity(query, chunk.Embedding),
		}
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if k < len(results) {
		results = results[:k]
	}
	return results
}
