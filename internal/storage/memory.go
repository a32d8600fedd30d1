package storage

import (
	"bytes"
	"context"
	"io"
	"sync"
)

// MemoryStore is a BlobStore kept in process memory. It backs tests and
// local runs without MinIO.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string]memoryObject
	baseURL string

	// FailOn makes Store fail for the given paths.
	FailOn func(path string) error
}

type memoryObject struct {
	data        []byte
	contentType string
}

func NewMemoryStore(baseURL string) *MemoryStore {
	return &MemoryStore{
		objects: make(map[string]memoryObject),
		baseURL: baseURL,
	}
}

func (s *MemoryStore) Store(ctx context.Context, path string, r io.Reader, size int64, contentType string) (string, error) {
	if s.FailOn != nil {
		if err := s.FailOn(path); err != nil {
			return "", err
		}
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	s.objects[path] = memoryObject{data: data, contentType: contentType}
	s.mu.Unlock()
	return ObjectURL(s.baseURL, "memory", path), nil
}

func (s *MemoryStore) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	s.mu.RLock()
	obj, ok := s.objects[path]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrObjectNotFound
	}
	return io.NopCloser(bytes.NewReader(obj.data)), nil
}

func (s *MemoryStore) Delete(ctx context.Context, path string) error {
	s.mu.Lock()
	delete(s.objects, path)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Has(path string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.objects[path]
	return ok
}

// Paths lists every stored object path.
func (s *MemoryStore) Paths() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	paths := make([]string, 0, len(s.objects))
	for p := range s.objects {
		paths = append(paths, p)
	}
	return paths
}
