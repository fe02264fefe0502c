package summary

import "regexp"

var (
	paragraphBoundaryRe = regexp.MustCompile(`\n[ \t]*\n`)
	sentenceBoundaryRe  = regexp.MustCompile(`[.!?]\s+`)
)

// textUnit is a paragraph or sentence span inside a larger string.
type textUnit struct {
	start int
	end   int
}

// findSplitPoint locates the character offset at which text should be cut so
// the prefix stays within maxTokens, preferring paragraph boundaries over
// sentence boundaries. When the whole text fits, it returns len(text). The
// cut never lands mid-sentence: a first unit that alone exceeds the budget is
// kept whole and the cut moves past it.
func findSplitPoint(text string, maxTokens float64) int {
	if units := splitParagraphs(text); len(units) > 1 {
		if off, ok := firstOverBudget(text, units, maxTokens); ok {
			return off
		}
		return len(text)
	}
	if units := splitSentences(text); len(units) > 1 {
		if off, ok := firstOverBudget(text, units, maxTokens); ok {
			return off
		}
	}
	return len(text)
}

// firstOverBudget walks units left to right accumulating token estimates and
// reports the start offset of the first unit that would push the running
// total past maxTokens. At least one unit is always consumed.
func firstOverBudget(text string, units []textUnit, maxTokens float64) (int, bool) {
	total := 0.0
	for i, u := range units {
		tokens := EstimateTokens(text[u.start:u.end])
		if total+tokens > maxTokens && i > 0 {
			return u.start, true
		}
		total += tokens
	}
	return 0, false
}

func splitParagraphs(text string) []textUnit {
	locs := paragraphBoundaryRe.FindAllStringIndex(text, -1)
	units := make([]textUnit, 0, len(locs)+1)
	start := 0
	for _, loc := range locs {
		if loc[0] > start {
			units = append(units, textUnit{start: start, end: loc[0]})
		}
		start = loc[1]
	}
	if start < len(text) {
		units = append(units, textUnit{start: start, end: len(text)})
	}
	return units
}

func splitSentences(text string) []textUnit {
	locs := sentenceBoundaryRe.FindAllStringIndex(text, -1)
	units := make([]textUnit, 0, len(locs)+1)
	start := 0
	for _, loc := range locs {
		// keep the terminator with its sentence
		end := loc[0] + 1
		if end > start {
			units = append(units, textUnit{start: start, end: end})
		}
		start = loc[1]
	}
	if start < len(text) {
		units = append(units, textUnit{start: start, end: len(text)})
	}
	return units
}
