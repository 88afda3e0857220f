package store

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

type memoryDoc struct {
	data    []byte
	version int64
}

// MemoryStore is an in-memory implementation of the document store with the
// same optimistic transaction semantics as the sqlite-backed one. Used by
// tests and local runs.
type MemoryStore struct {
	mu       sync.RWMutex
	docs     map[string]map[string]memoryDoc
	attempts int
	backoff  time.Duration

	// OnConflict mirrors GormStore.OnConflict; may be nil.
	OnConflict func()
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		docs:     make(map[string]map[string]memoryDoc),
		attempts: defaultTxAttempts,
		backoff:  defaultTxBackoffMS * time.Millisecond,
	}
}

// Verify interface compliance
var _ Store = (*MemoryStore)(nil)

// ConfigureRetries overrides the transaction retry policy
func (s *MemoryStore) ConfigureRetries(attempts int, backoff time.Duration) {
	if attempts > 0 {
		s.attempts = attempts
	}
	if backoff > 0 {
		s.backoff = backoff
	}
}

func (s *MemoryStore) lookup(collection, id string) (memoryDoc, bool) {
	coll, ok := s.docs[collection]
	if !ok {
		return memoryDoc{}, false
	}
	doc, ok := coll[id]
	return doc, ok
}

func (s *MemoryStore) put(collection, id string, data []byte, version int64) {
	coll, ok := s.docs[collection]
	if !ok {
		coll = make(map[string]memoryDoc)
		s.docs[collection] = coll
	}
	coll[id] = memoryDoc{data: data, version: version}
}

func (s *MemoryStore) Get(ctx context.Context, collection, id string, out interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	doc, ok := s.lookup(collection, id)
	s.mu.RUnlock()
	if !ok {
		return ErrNotFound
	}
	return json.Unmarshal(doc.data, out)
}

func (s *MemoryStore) Set(ctx context.Context, collection, id string, doc interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.lookup(collection, id)
	version := int64(1)
	if ok {
		version = existing.version + 1
	}
	s.put(collection, id, data, version)
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, collection, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.lookup(collection, id); !ok {
		return ErrNotFound
	}
	delete(s.docs[collection], id)
	return nil
}

func (s *MemoryStore) List(ctx context.Context, collection string) (map[string][]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string][]byte, len(s.docs[collection]))
	for id, doc := range s.docs[collection] {
		data := make([]byte, len(doc.data))
		copy(data, doc.data)
		out[id] = data
	}
	return out, nil
}

// RunTransaction executes fn against committed state, buffering writes, and
// commits only if every document read is still at its observed version.
// A lost race re-executes fn with fresh reads.
func (s *MemoryStore) RunTransaction(ctx context.Context, fn func(tx Tx) error) error {
	backoff := s.backoff
	for attempt := 0; attempt < s.attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		tx := &memoryTx{
			store: s,
			reads: make(map[docKey]int64),
			data:  make(map[docKey][]byte),
		}
		if err := fn(tx); err != nil {
			return err
		}
		if s.tryCommit(tx) {
			return nil
		}
		if s.OnConflict != nil {
			s.OnConflict()
		}
		time.Sleep(backoff)
		backoff *= 2
	}
	return ErrConflict
}

func (s *MemoryStore) tryCommit(t *memoryTx) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, version := range t.reads {
		current, ok := s.lookup(key.collection, key.id)
		if !ok {
			if version != 0 {
				return false
			}
			continue
		}
		if current.version != version {
			return false
		}
	}
	for key, data := range t.data {
		version, read := t.reads[key]
		if !read {
			// Blind write: stack on top of whatever is committed.
			if current, ok := s.lookup(key.collection, key.id); ok {
				version = current.version
			}
		}
		s.put(key.collection, key.id, data, version+1)
	}
	return true
}

// memoryTx buffers reads and writes for one optimistic attempt
type memoryTx struct {
	store *MemoryStore
	reads map[docKey]int64
	data  map[docKey][]byte
}

func (t *memoryTx) Get(collection, id string, out interface{}) error {
	key := docKey{collection, id}
	if data, ok := t.data[key]; ok {
		return json.Unmarshal(data, out)
	}
	t.store.mu.RLock()
	doc, ok := t.store.lookup(collection, id)
	t.store.mu.RUnlock()
	if !ok {
		t.reads[key] = 0
		return ErrNotFound
	}
	t.reads[key] = doc.version
	return json.Unmarshal(doc.data, out)
}

func (t *memoryTx) Set(collection, id string, doc interface{}) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	t.data[docKey{collection, id}] = data
	return nil
}
