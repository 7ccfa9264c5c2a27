// Package models defines the core data structures for chunks, image records,
// and retrieval results.
package models

// Chunk is one retrievable unit of document text. The ID is derived from the
// source file name and the chunk's sequence index within that file, so a rebuild
// over an unchanged corpus produces identical IDs.
type Chunk struct {
	ID        string    `json:"id"`
	File      string    `json:"file"`
	Text      string    `json:"text"`
	Embedding []float32 `json:"embedding"`
}

// TextIndex is the ordered collection of chunks built from the knowledge
// directory. Insertion order is build order. The index is persisted as a single
// JSON object with a "docs" field and is rewritten wholesale on every rebuild.
type TextIndex struct {
	Docs []Chunk `json:"docs"`
}

// Len returns the number of chunks in the index. Safe on a nil index.
func (ti *TextIndex) Len() int {
	if ti == nil {
		return 0
	}
	return len(ti.Docs)
}

// RetrievalResult pairs a chunk with its cosine similarity score against a
// query embedding. Never persisted.
type RetrievalResult struct {
	Chunk Chunk
	Score float64
}
