package summary

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestChunkEmptyText(t *testing.T) {
	t.Parallel()
	require.Nil(t, Chunk("", 100))
	require.Nil(t, Chunk("   \n\n  ", 100))
}

func TestChunkSingleChunkWhenTextFits(t *testing.T) {
	t.Parallel()
	text := "  A small transcript. Nothing to split here.  "
	chunks := Chunk(text, 1000)
	require.Equal(t, []string{strings.TrimSpace(text)}, chunks)
}

func TestChunkNoBoundariesDegradesToWholeText(t *testing.T) {
	t.Parallel()
	text := "words without any sentence punctuation at all just flowing on"
	chunks := Chunk(text, 1)
	require.Equal(t, []string{text}, chunks)
}

func TestChunkSentenceOverlap(t *testing.T) {
	t.Parallel()
	text := "Sentence one. Sentence two. Sentence three."
	chunks := Chunk(text, 7)

	require.Len(t, chunks, 2)
	require.Equal(t, "Sentence one. Sentence two.", chunks[0])
	// the second chunk restarts at the last full sentence of the first
	require.True(t, strings.HasPrefix(chunks[1], "Sentence two."))
	require.True(t, strings.HasSuffix(chunks[1], "Sentence three."))
}

func TestChunkCoversWholeText(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		maxTokens float64
	}{
		{
			name:      "sentences",
			text:      "Alpha beta gamma. Delta epsilon zeta. Eta theta iota. Kappa lambda mu. Nu xi omicron.",
			maxTokens: 9,
		},
		{
			name:      "paragraphs",
			text:      "First block of text here.\n\nSecond block of text here.\n\nThird block of text here.\n\nFourth block of text here.",
			maxTokens: 8,
		},
		{
			name:      "generous budget",
			text:      "One. Two. Three.",
			maxTokens: 500,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			chunks := Chunk(tt.text, tt.maxTokens)
			require.NotEmpty(t, chunks)
			assertGaplessCoverage(t, tt.text, chunks)
		})
	}
}

// assertGaplessCoverage checks that chunks appear in left-to-right order,
// that consecutive chunks touch or overlap, and that together they span the
// trimmed text, so dropping each chunk's overlap reconstructs the input.
func assertGaplessCoverage(t *testing.T, text string, chunks []string) {
	t.Helper()
	trimmed := strings.TrimSpace(text)
	offset := strings.Index(text, trimmed)

	prevStart := -1
	prevEnd := offset
	for i, chunk := range chunks {
		start := strings.Index(text, chunk)
		require.GreaterOrEqual(t, start, 0, "chunk %d not found verbatim in source", i)
		require.Greater(t, start, prevStart, "chunk %d out of order", i)
		if start > prevEnd {
			require.Empty(t, strings.TrimSpace(text[prevEnd:start]), "gap before chunk %d", i)
		}
		prevStart = start
		prevEnd = start + len(chunk)
	}
	require.Equal(t, offset, strings.Index(text, chunks[0]))
	require.Equal(t, offset+len(trimmed), prevEnd, "chunks do not reach the end of the text")
}
