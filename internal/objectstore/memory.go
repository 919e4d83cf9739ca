package objectstore

import (
	"bytes"
	"context"
	"io"
	"sync"
)

type memoryObject struct {
	data        []byte
	contentType string
}

// MemoryStore keeps objects in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string]memoryObject
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string]memoryObject)}
}

func (s *MemoryStore) Put(_ context.Context, bucket, name string, r io.Reader, _ int64, contentType string) error {
	if !ValidBucket(bucket) {
		return ErrInvalidBucket
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[bucket+"/"+name] = memoryObject{data: data, contentType: contentType}
	return nil
}

func (s *MemoryStore) Get(_ context.Context, bucket, name string) (io.ReadCloser, ObjectInfo, error) {
	if !ValidBucket(bucket) {
		return nil, ObjectInfo{}, ErrInvalidBucket
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[bucket+"/"+name]
	if !ok {
		return nil, ObjectInfo{}, ErrNotFound
	}
	info := ObjectInfo{Name: name, Size: int64(len(obj.data)), ContentType: obj.contentType}
	return io.NopCloser(bytes.NewReader(obj.data)), info, nil
}

func (s *MemoryStore) Delete(_ context.Context, bucket, name string) error {
	if !ValidBucket(bucket) {
		return ErrInvalidBucket
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	key := bucket + "/" + name
	if _, ok := s.objects[key]; !ok {
		return ErrNotFound
	}
	delete(s.objects, key)
	return nil
}
