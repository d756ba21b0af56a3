// File: internal/docgen/chunk.go
package docgen

import "strings"

// Chunking bounds for large captured markup. Chunks overlap so a structure
// split across a boundary is still seen whole by at least one prompt.
const (
	maxChunkSize = 200 * 1024
	chunkOverlap = 1000
)

// chunkContent splits markup into prompt-sized pieces. Cut points prefer a
// tag boundary so a chunk rarely ends inside an element, but only when the
// boundary is not so early that the chunk degenerates.
func chunkContent(content string) []string {
	if len(content) <= maxChunkSize {
		return []string{content}
	}

	var chunks []string
	start := 0
	for {
		end := start + maxChunkSize
		if end >= len(content) {
			chunks = append(chunks, content[start:])
			return chunks
		}
		if tagEnd := strings.LastIndex(content[:end], ">"); tagEnd > start+maxChunkSize/2 {
			end = tagEnd + 1
		}
		chunks = append(chunks, content[start:end])
		start = end - chunkOverlap
	}
}
