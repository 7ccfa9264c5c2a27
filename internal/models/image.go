package models

// ImageRecord describes one stored image asset and its caption embedding.
// Records are append-only; asset lifecycle is manual and out of scope.
type ImageRecord struct {
	File      string    `json:"file"`
	Caption   string    `json:"caption"`
	Embedding []float32 `json:"embedding"`
}

// ImageReceipt is returned after an inbound image has been stored and indexed.
type ImageReceipt struct {
	Caption    string `json:"caption"`
	StoredPath string `json:"stored_path"`
}

// ImageMatch is the best stored image for a text query.
type ImageMatch struct {
	StoredPath string `json:"stored_path"`
	Caption    string `json:"caption"`
}
