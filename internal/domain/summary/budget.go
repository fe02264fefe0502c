package summary

import (
	"errors"
	"fmt"
)

// Style identifies one of the supported summary renditions.
type Style string

const (
	StyleConcise   Style = "concise"
	StyleDetailed  Style = "detailed"
	StyleKeyPoints Style = "key_points"
)

// Styles lists every supported style in display order.
func Styles() []Style {
	return []Style{StyleConcise, StyleDetailed, StyleKeyPoints}
}

// Valid reports whether the style is a known member of the enumeration.
func (s Style) Valid() bool {
	switch s {
	case StyleConcise, StyleDetailed, StyleKeyPoints:
		return true
	}
	return false
}

// Instruction returns the generation prompt describing the style's output.
func (s Style) Instruction() string {
	switch s {
	case StyleDetailed:
		return "Write a detailed summary of this transcript covering every major topic, argument, and conclusion."
	case StyleKeyPoints:
		return "Extract the key points from this transcript as a concise bulleted list."
	default:
		return "Summarize this transcript clearly and concisely in a few short paragraphs."
	}
}

// combineInstruction drives the reduce pass over partial summaries.
const combineInstruction = "You are given partial summaries of consecutive sections of one transcript. Combine them into a single coherent summary, preserving their order and avoiding repetition."

// BudgetProfile holds the per-style parameters that bound generation output.
// Fractions scale the estimated input tokens; the min/max pairs are absolute
// clamps applied afterwards.
type BudgetProfile struct {
	ChunkFraction float64
	FinalFraction float64
	ChunkMin      int
	ChunkMax      int
	FinalMin      int
	FinalMax      int
}

// Validate ensures the profile can only produce positive bounded budgets.
func (p BudgetProfile) Validate() error {
	if p.ChunkFraction <= 0 || p.FinalFraction <= 0 {
		return errors.New("budget fractions must be positive")
	}
	if p.ChunkMin <= 0 || p.FinalMin <= 0 {
		return errors.New("budget minimums must be positive")
	}
	if p.ChunkMin > p.ChunkMax {
		return fmt.Errorf("chunk budget min %d exceeds max %d", p.ChunkMin, p.ChunkMax)
	}
	if p.FinalMin > p.FinalMax {
		return fmt.Errorf("final budget min %d exceeds max %d", p.FinalMin, p.FinalMax)
	}
	return nil
}

// DefaultProfiles returns the built-in budget parameters per style.
func DefaultProfiles() map[Style]BudgetProfile {
	return map[Style]BudgetProfile{
		StyleConcise: {
			ChunkFraction: 0.15, FinalFraction: 0.10,
			ChunkMin: 300, ChunkMax: 1000,
			FinalMin: 500, FinalMax: 2000,
		},
		StyleDetailed: {
			ChunkFraction: 0.35, FinalFraction: 0.30,
			ChunkMin: 500, ChunkMax: 2000,
			FinalMin: 1000, FinalMax: 4000,
		},
		StyleKeyPoints: {
			ChunkFraction: 0.25, FinalFraction: 0.20,
			ChunkMin: 400, ChunkMax: 1500,
			FinalMin: 800, FinalMax: 3000,
		},
	}
}

// maxOutputTokens derives the output-token ceiling for one generation call.
// Final passes (the sole call for single-chunk input, or the reduce call) use
// the final_* parameters; map-phase calls use the chunk_* parameters. The
// result is always within [min, max], so zero-length input yields min.
func maxOutputTokens(text string, profile BudgetProfile, finalPass bool) int {
	fraction, min, max := profile.ChunkFraction, profile.ChunkMin, profile.ChunkMax
	if finalPass {
		fraction, min, max = profile.FinalFraction, profile.FinalMin, profile.FinalMax
	}
	tokens := int(EstimateTokens(text) * fraction)
	if tokens < min {
		tokens = min
	}
	if tokens > max {
		tokens = max
	}
	return tokens
}
