package metrics

import (
	"github.com/pkoukk/tiktoken-go"
)

// Encoder counts tokens with a real BPE vocabulary. It exists for reporting
// (verbose CLI output, logs) only; budget arithmetic stays on the internal
// heuristic estimator so that all compared values share one scale.
type Encoder struct {
	enc *tiktoken.Tiktoken
}

// NewEncoder loads the encoding for the given model, falling back to the
// cl100k_base vocabulary for unknown model names.
func NewEncoder(model string) (*Encoder, error) {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return nil, err
		}
	}
	return &Encoder{enc: enc}, nil
}

// Count returns the exact token count for text under the loaded vocabulary.
func (e *Encoder) Count(text string) int {
	if e == nil || e.enc == nil || text == "" {
		return 0
	}
	return len(e.enc.Encode(text, nil, nil))
}
