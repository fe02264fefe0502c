package embedder

import (
	"context"
	"hash/fnv"

	"github.com/mliu/tubebrief/internal/domain/transcript"
)

// DeterministicEmbedder avoids network calls by hashing text into a vector.
// It makes search exercisable in tests and offline runs.
type DeterministicEmbedder struct {
	dim int
}

// NewDeterministicEmbedder constructs the embedder.
func NewDeterministicEmbedder(dim int) *DeterministicEmbedder {
	if dim <= 0 {
		dim = 32
	}
	return &DeterministicEmbedder{dim: dim}
}

// Embed converts text into a pseudo-random but stable vector.
func (e *DeterministicEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	vector := make([]float32, e.dim)
	hash := fnv.New64a()
	_, _ = hash.Write([]byte(text))
	seed := hash.Sum64()
	for i := 0; i < e.dim; i++ {
		seed = seed*1099511628211 + 1469598103934665603
		vector[i] = float32(seed%997) / 997.0
	}
	return vector, nil
}

var _ transcript.Embedder = (*DeterministicEmbedder)(nil)
