package retrieval

import (
	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/vector"
)

// BestImage returns the single highest-scoring image record for the query
// embedding, or nil when no record qualifies. Records without an embedding are
// skipped, comparison is strict (first seen wins exact ties), and no similarity
// threshold applies: the best available match is returned even when similarity
// is low or negative.
func BestImage(query []float32, recs []models.ImageRecord) *models.ImageRecord {
	var best *models.ImageRecord
	bestScore := 0.0
	for i := range recs {
		if len(recs[i].Embedding) == 0 {
			continue
		}
		score := vector.CosineSimilarity(query, recs[i].Embedding)
		if best == nil || score > bestScore {
			best = &recs[i]
			bestScore = score
		}
	}
	return best
}
