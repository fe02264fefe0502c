package audiostore

import (
	"context"
	"sync"

	"github.com/mliu/tubebrief/internal/domain/transcript"
	apperrors "github.com/mliu/tubebrief/pkg/errors"
)

// MemoryStore holds blobs in process for tests and local runs.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemoryStore constructs an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string][]byte)}
}

func (s *MemoryStore) Put(_ context.Context, key string, data []byte, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	buf := make([]byte, len(data))
	copy(buf, data)
	s.blobs[key] = buf
	return nil
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.blobs[key]
	if !ok {
		return nil, apperrors.Wrap("not_found", "audio object not found", nil)
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	return buf, nil
}

var _ transcript.AudioStore = (*MemoryStore)(nil)
