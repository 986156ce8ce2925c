package store

import (
	"context"
	"sync"
	"time"
)

type memoryRecord struct {
	version int64
	updated time.Time
	payload []byte
}

// MemoryStore keeps serialized documents in process memory, so callers never
// share pointers with the stored state.
type MemoryStore struct {
	mu    sync.RWMutex
	rooms map[string]memoryRecord
	now   func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rooms: make(map[string]memoryRecord), now: time.Now}
}

func (m *MemoryStore) Create(ctx context.Context, doc *Document) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validate(doc); err != nil {
		return nil, err
	}
	b, err := encodePayload(doc)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rooms[doc.RoomID]; ok {
		return nil, ErrExists
	}
	rec := memoryRecord{version: 1, updated: m.now().UTC(), payload: b}
	m.rooms[doc.RoomID] = rec
	return decodePayload(doc.RoomID, rec.version, rec.updated, rec.payload)
}

func (m *MemoryStore) Get(ctx context.Context, roomID string) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	rec, ok := m.rooms[roomID]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return decodePayload(roomID, rec.version, rec.updated, rec.payload)
}

func (m *MemoryStore) CompareAndSwap(ctx context.Context, doc *Document) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validate(doc); err != nil {
		return nil, err
	}
	b, err := encodePayload(doc)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.rooms[doc.RoomID]
	if !ok {
		return nil, ErrNotFound
	}
	if cur.version != doc.Version {
		return nil, ErrVersionConflict
	}
	rec := memoryRecord{version: cur.version + 1, updated: m.now().UTC(), payload: b}
	m.rooms[doc.RoomID] = rec
	return decodePayload(doc.RoomID, rec.version, rec.updated, rec.payload)
}

func (m *MemoryStore) Delete(ctx context.Context, roomID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rooms[roomID]; !ok {
		return ErrNotFound
	}
	delete(m.rooms, roomID)
	return nil
}

func (m *MemoryStore) Close() error { return nil }
