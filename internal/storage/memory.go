package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"
)

// MemoryObject is a stored object held by MemoryStorage.
type MemoryObject struct {
	ContentType string
	Data        []byte
}

// MemoryStorage keeps objects in process memory. It backs tests and local runs
// without an object store configured.
type MemoryStorage struct {
	mu      sync.Mutex
	objects map[string]MemoryObject

	// FailUploads makes every Upload return this error when set.
	FailUploads error
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{objects: make(map[string]MemoryObject)}
}

func (m *MemoryStorage) Upload(_ context.Context, objectKey, contentType string, body io.Reader, _ int64) error {
	if m.FailUploads != nil {
		return m.FailUploads
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, body); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[objectKey] = MemoryObject{ContentType: contentType, Data: buf.Bytes()}
	return nil
}

func (m *MemoryStorage) GeneratePresignedDownloadURL(_ context.Context, objectKey string, expires time.Duration) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[objectKey]; !ok {
		return "", ErrObjectNotFound
	}
	if expires <= 0 {
		expires = DefaultPresignedURLExpiry
	}
	return fmt.Sprintf("memory://%s?expires=%d", objectKey, int(expires.Seconds())), nil
}

func (m *MemoryStorage) DeleteObject(_ context.Context, objectKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[objectKey]; !ok {
		return ErrObjectNotFound
	}
	delete(m.objects, objectKey)
	return nil
}

// Object returns the stored object under objectKey.
func (m *MemoryStorage) Object(objectKey string) (MemoryObject, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	obj, ok := m.objects[objectKey]
	return obj, ok
}

// Len reports how many objects are stored.
func (m *MemoryStorage) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

var _ FileStorage = (*MemoryStorage)(nil)
