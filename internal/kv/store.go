// Package kv provides the flat key-value store that session state lives in.
// Values are opaque bytes; callers decide the encoding.
package kv

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// Store is a flat key-value store. Apply writes a whole batch atomically.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Apply(ctx context.Context, b Batch) error
	Keys(ctx context.Context, prefix string) ([]string, error)
	Close() error
}

// Batch groups the writes of one logical change.
type Batch struct {
	Set    map[string][]byte
	Remove []string
}

// Put stages a write, cancelling any staged removal of the same key.
func (b *Batch) Put(key string, value []byte) {
	if b.Set == nil {
		b.Set = make(map[string][]byte)
	}
	b.Set[key] = value
	b.Remove = without(b.Remove, key)
}

// Delete stages a removal, cancelling any staged write of the same key.
func (b *Batch) Delete(key string) {
	delete(b.Set, key)
	for _, k := range b.Remove {
		if k == key {
			return
		}
	}
	b.Remove = append(b.Remove, key)
}

func (b Batch) Empty() bool {
	return len(b.Set) == 0 && len(b.Remove) == 0
}

func without(keys []string, key string) []string {
	out := keys[:0]
	for _, k := range keys {
		if k != key {
			out = append(out, k)
		}
	}
	return out
}

// Memory is an in-process Store used by tests and as a scratch backend.
type Memory struct {
	mu   sync.Mutex
	data map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (m *Memory) Apply(_ context.Context, b Batch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range b.Set {
		m.data[k] = append([]byte(nil), v...)
	}
	for _, k := range b.Remove {
		delete(m.data, k)
	}
	return nil
}

func (m *Memory) Keys(_ context.Context, prefix string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var keys []string
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (m *Memory) Close() error { return nil }
