package storage

import (
	"context"
	"encoding/json"
	"sync"
)

// RepositoryStub keeps values in memory, encoded as JSON like the database would.
type RepositoryStub struct {
	mu     sync.RWMutex
	values map[string][]byte
	putErr error
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{values: make(map[string][]byte)}
}

func (r *RepositoryStub) Get(_ context.Context, key string, target any) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	raw, ok := r.values[key]
	if !ok {
		return ErrNotFound
	}
	return json.Unmarshal(raw, target)
}

func (r *RepositoryStub) Put(_ context.Context, key string, value any) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.putErr != nil {
		return r.putErr
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	r.values[key] = raw
	return nil
}

func (r *RepositoryStub) Delete(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.values, key)
	return nil
}

func (r *RepositoryStub) Has(key string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.values[key]
	return ok
}

func (r *RepositoryStub) SetPutError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.putErr = err
}

func (r *RepositoryStub) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values = make(map[string][]byte)
	r.putErr = nil
}
