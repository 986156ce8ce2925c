package store

import (
	"context"
	"sync"
)

const feedBuffer = 16

// Feed wraps a Store and delivers every successfully written document to the
// subscribers of its room. Delivered documents are shared between
// subscribers and must be treated as read-only.
type Feed struct {
	Store

	mu     sync.Mutex
	nextID int
	subs   map[string]map[int]chan *Document
}

func NewFeed(s Store) *Feed {
	return &Feed{Store: s, subs: make(map[string]map[int]chan *Document)}
}

// Subscribe returns a channel receiving each later snapshot of roomID. A slow
// subscriber skips stale snapshots rather than blocking writers; the newest
// one is always delivered. Concurrent writers may publish out of order, so
// receivers compare Version. The channel is closed when the room is deleted
// or cancel is called.
func (f *Feed) Subscribe(roomID string) (<-chan *Document, func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.nextID
	f.nextID++
	ch := make(chan *Document, feedBuffer)
	if f.subs[roomID] == nil {
		f.subs[roomID] = make(map[int]chan *Document)
	}
	f.subs[roomID][id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			f.mu.Lock()
			defer f.mu.Unlock()
			if c, ok := f.subs[roomID][id]; ok {
				delete(f.subs[roomID], id)
				close(c)
				if len(f.subs[roomID]) == 0 {
					delete(f.subs, roomID)
				}
			}
		})
	}
	return ch, cancel
}

func (f *Feed) Create(ctx context.Context, doc *Document) (*Document, error) {
	saved, err := f.Store.Create(ctx, doc)
	if err == nil {
		f.publish(saved)
	}
	return saved, err
}

func (f *Feed) CompareAndSwap(ctx context.Context, doc *Document) (*Document, error) {
	saved, err := f.Store.CompareAndSwap(ctx, doc)
	if err == nil {
		f.publish(saved)
	}
	return saved, err
}

func (f *Feed) Delete(ctx context.Context, roomID string) error {
	err := f.Store.Delete(ctx, roomID)
	f.mu.Lock()
	for id, ch := range f.subs[roomID] {
		close(ch)
		delete(f.subs[roomID], id)
	}
	delete(f.subs, roomID)
	f.mu.Unlock()
	return err
}

func (f *Feed) publish(doc *Document) {
	snap := doc.Clone()
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ch := range f.subs[doc.RoomID] {
		for {
			select {
			case ch <- snap:
			default:
				// Drop the oldest pending snapshot and retry.
				select {
				case <-ch:
				default:
				}
				continue
			}
			break
		}
	}
}
