package summary

import "strings"

// Chunk partitions text into an ordered sequence of segments whose estimated
// token counts respect maxTokens. Consecutive chunks overlap by the last
// complete sentence before each cut so every chunk carries trailing context
// from its predecessor. Empty or whitespace-only text yields nil; text with
// no recognizable boundaries degrades to a single whole-text chunk.
func Chunk(text string, maxTokens float64) []string {
	remaining := text
	var chunks []string
	for strings.TrimSpace(remaining) != "" {
		cut := findSplitPoint(remaining, maxTokens)
		if chunk := strings.TrimSpace(remaining[:cut]); chunk != "" {
			chunks = append(chunks, chunk)
		}
		if cut >= len(remaining) {
			break
		}
		next := cut
		if start := lastSentenceStart(remaining[:cut]); start > 0 {
			next = start
		}
		remaining = remaining[next:]
	}
	return chunks
}

// lastSentenceStart returns the offset where the trailing sentence of chunk
// begins, or -1 when no sentence boundary exists. This is a punctuation
// heuristic: abbreviations can shift the reported start, which is accepted.
// A zero return means the whole chunk is one sentence and no overlap applies.
func lastSentenceStart(chunk string) int {
	locs := sentenceBoundaryRe.FindAllStringIndex(chunk, -1)
	if len(locs) == 0 {
		return -1
	}
	lastEnd := locs[len(locs)-1][1]
	if strings.TrimSpace(chunk[lastEnd:]) != "" {
		// the chunk ends in an unterminated span; restart there
		return lastEnd
	}
	if len(locs) < 2 {
		return 0
	}
	return locs[len(locs)-2][1]
}
