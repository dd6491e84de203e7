package store

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps JSON-serialized documents in process memory. It is used
// by tests and by memory:// connection strings.
type MemoryStore struct {
	mu          sync.RWMutex
	name        string
	collections map[string][]jsonDocument
	unique      map[string][]string            // collection -> unique fields
	taken       map[string]map[string]struct{} // collection + "\x00" + field -> values
	now         func() time.Time
}

func NewMemoryStore(name string) *MemoryStore {
	if name == "" {
		name = "memory"
	}
	return &MemoryStore{
		name:        name,
		collections: make(map[string][]jsonDocument),
		unique:      make(map[string][]string),
		taken:       make(map[string]map[string]struct{}),
		now:         time.Now,
	}
}

func takenKey(collection, field string) string { return collection + "\x00" + field }

func (m *MemoryStore) Insert(ctx context.Context, collection string, record any) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", &Error{Op: "insert", Collection: collection, Err: err}
	}
	id := uuid.NewString()
	doc, err := stampJSON(record, id, m.now())
	if err != nil {
		return "", &Error{Op: "insert", Collection: collection, Err: err}
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return "", &Error{Op: "insert", Collection: collection, Err: err}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	claims := map[string]string{}
	for _, field := range m.unique[collection] {
		v, ok := uniqueValue(doc, field)
		if !ok {
			continue
		}
		if _, dup := m.taken[takenKey(collection, field)][v]; dup {
			return "", &Error{Op: "insert", Collection: collection, Err: ErrDuplicate}
		}
		claims[field] = v
	}
	for field, v := range claims {
		key := takenKey(collection, field)
		if m.taken[key] == nil {
			m.taken[key] = make(map[string]struct{})
		}
		m.taken[key][v] = struct{}{}
	}
	m.collections[collection] = append(m.collections[collection], jsonDocument(b))
	return id, nil
}

func (m *MemoryStore) List(ctx context.Context, collection string) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, &Error{Op: "list", Collection: collection, Err: err}
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	docs := m.collections[collection]
	out := make([]Document, 0, len(docs))
	for _, d := range docs {
		out = append(out, d)
	}
	return out, nil
}

func (m *MemoryStore) EnsureUnique(ctx context.Context, collection, field string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, f := range m.unique[collection] {
		if f == field {
			return nil
		}
	}
	// index documents stored before the constraint existed
	values := make(map[string]struct{})
	for _, d := range m.collections[collection] {
		var doc map[string]any
		if err := d.Decode(&doc); err != nil {
			return &Error{Op: "ensure unique", Collection: collection, Err: err}
		}
		v, ok := uniqueValue(doc, field)
		if !ok {
			continue
		}
		if _, dup := values[v]; dup {
			return &Error{Op: "ensure unique", Collection: collection, Err: ErrDuplicate}
		}
		values[v] = struct{}{}
	}
	m.unique[collection] = append(m.unique[collection], field)
	m.taken[takenKey(collection, field)] = values
	return nil
}

func (m *MemoryStore) Ping(ctx context.Context) error { return nil }

func (m *MemoryStore) Name() string { return m.name }

func (m *MemoryStore) CollectionNames(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.collections))
	for name := range m.collections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (m *MemoryStore) Close(ctx context.Context) error { return nil }
