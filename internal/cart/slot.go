package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
)

// DefaultKey is the storage key the cart lives under.
const DefaultKey = "groceryapp-cart"

var (
	// ErrNotFound is returned by KV implementations for a missing key.
	ErrNotFound = errors.New("not found")

	ErrInvalidProduct = errors.New("invalid product")
)

// Slot is a durable home for the item sequence. Load reports false when
// nothing has been saved yet.
type Slot interface {
	Load(ctx context.Context) ([]Item, bool, error)
	Save(ctx context.Context, items []Item) error
}

// KV is a byte-oriented durable key-value store.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// KVSlot stores the item sequence as a JSON array under a single key.
type KVSlot struct {
	kv  KV
	key string
}

func NewKVSlot(kv KV, key string) *KVSlot {
	if key == "" {
		key = DefaultKey
	}
	return &KVSlot{kv: kv, key: key}
}

func (s *KVSlot) Load(ctx context.Context) ([]Item, bool, error) {
	raw, err := s.kv.Get(ctx, s.key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read %s: %w", s.key, err)
	}

	var items []Item
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false, fmt.Errorf("decode %s: %w", s.key, err)
	}
	return items, true, nil
}

func (s *KVSlot) Save(ctx context.Context, items []Item) error {
	if items == nil {
		items = []Item{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode %s: %w", s.key, err)
	}
	if err := s.kv.Put(ctx, s.key, raw); err != nil {
		return fmt.Errorf("write %s: %w", s.key, err)
	}
	return nil
}

// MemoryKV is a process-local KV, used in tests and as a fallback when no
// durable backend is configured.
type MemoryKV struct {
	mu     sync.Mutex
	values map[string][]byte
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{values: map[string][]byte{}}
}

func (m *MemoryKV) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *MemoryKV) Put(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = append([]byte(nil), value...)
	return nil
}

func (m *MemoryKV) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

// MemorySlot is an in-memory Slot backed by MemoryKV.
func MemorySlot() *KVSlot {
	return NewKVSlot(NewMemoryKV(), DefaultKey)
}
