package summary

import (
	"fmt"
	"strings"

	apperrors "github.com/mliu/tubebrief/pkg/errors"
)

// Config configures the summarization pipeline. Everything the orchestrator
// needs is carried here explicitly; there is no package-level client or
// mutable default.
type Config struct {
	Model         string
	TitleModel    string
	Temperature   float32
	ChunkTokens   float64
	MaxConcurrent int
	Profiles      map[Style]BudgetProfile
}

// Result maps each successfully summarized style to its generated text.
// Styles whose pipelines failed are absent; their errors are reported
// separately so callers can surface partial results.
type Result map[Style]string

// ParseStyles converts raw style names into Styles, defaulting to every
// supported style when none are given. Unknown names are rejected before any
// pipeline work begins.
func ParseStyles(names []string) ([]Style, error) {
	if len(names) == 0 {
		return Styles(), nil
	}
	out := make([]Style, 0, len(names))
	for _, name := range names {
		style := Style(strings.TrimSpace(name))
		if !style.Valid() {
			return nil, apperrors.Wrap("invalid_config", fmt.Sprintf("unknown summary style %q", name), nil)
		}
		out = append(out, style)
	}
	return out, nil
}
