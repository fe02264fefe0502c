package summary

import (
	"regexp"
	"strings"
)

var (
	specialCharRe = regexp.MustCompile(`[^A-Za-z0-9\s]`)
	digitRunRe    = regexp.MustCompile(`[0-9]+`)
)

// EstimateTokens approximates the token count of text from lexical features:
// 1.3 per whitespace-delimited word, 0.5 per character outside [A-Za-z0-9\s],
// and 0.5 per maximal digit run. The result is a calibration heuristic, not a
// tokenizer count; it only needs to be internally consistent because every
// budget comparison in this package uses the same formula.
func EstimateTokens(text string) float64 {
	if text == "" {
		return 0
	}
	words := len(strings.Fields(text))
	specials := len(specialCharRe.FindAllStringIndex(text, -1))
	numbers := len(digitRunRe.FindAllStringIndex(text, -1))
	return 1.3*float64(words) + 0.5*float64(specials) + 0.5*float64(numbers)
}
