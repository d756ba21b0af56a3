// File: internal/docgen/chunk_test.go
package docgen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkContentSmallInput(t *testing.T) {
	content := "<html><body>small</body></html>"
	chunks := chunkContent(content)
	require.Len(t, chunks, 1)
	assert.Equal(t, content, chunks[0])
}

func TestChunkContentExactLimit(t *testing.T) {
	content := strings.Repeat("x", maxChunkSize)
	chunks := chunkContent(content)
	require.Len(t, chunks, 1)
}

func TestChunkContentSplitsLargeInput(t *testing.T) {
	content := strings.Repeat("<div>block</div>", maxChunkSize/8)
	chunks := chunkContent(content)
	require.Greater(t, len(chunks), 1)

	for i, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk), maxChunkSize, "chunk %d over size", i)
		assert.NotEmpty(t, chunk)
	}

	// Markup input gets cut on a tag boundary.
	for i, chunk := range chunks[:len(chunks)-1] {
		assert.True(t, strings.HasSuffix(chunk, ">"), "chunk %d not cut at a tag boundary", i)
	}
}

func TestChunkContentOverlap(t *testing.T) {
	content := strings.Repeat("<p>abcdefgh</p>", maxChunkSize/8)
	chunks := chunkContent(content)
	require.Greater(t, len(chunks), 1)

	// Consecutive chunks share the overlap window, so content at a cut
	// point is visible to both sides.
	tail := chunks[0][len(chunks[0])-chunkOverlap:]
	assert.True(t, strings.HasPrefix(chunks[1], tail))
}

func TestChunkContentCoversWholeInput(t *testing.T) {
	content := strings.Repeat("<span>y</span>", maxChunkSize/4)
	chunks := chunkContent(content)

	// Stitching chunks back together (dropping each overlap) reproduces the
	// input.
	var rebuilt strings.Builder
	rebuilt.WriteString(chunks[0])
	for _, chunk := range chunks[1:] {
		rebuilt.WriteString(chunk[chunkOverlap:])
	}
	assert.Equal(t, content, rebuilt.String())
}
