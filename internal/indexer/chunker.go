// Package indexer builds the text index from the knowledge directory and
// ingests received images into the image index.
package indexer

import (
	"regexp"
	"strings"
)

// chunkBoundary is the contract boundary for knowledge files: chunks are
// separated by blank lines (two or more consecutive newlines).
var chunkBoundary = regexp.MustCompile(`\n{2,}`)

// SplitChunks splits raw document text into retrievable units. Pieces are
// trimmed and empty pieces dropped; there is no size cap and no semantic
// awareness beyond the blank-line rule, which suits Q&A- and bullet-delimited
// knowledge files.
func SplitChunks(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	pieces := chunkBoundary.Split(text, -1)
	chunks := make([]string, 0, len(pieces))
	for _, p := range pieces {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		chunks = append(chunks, p)
	}
	return chunks
}
