// Package store keeps one versioned document per room. Every write is a
// compare-and-swap on the document version, so two writers that read the
// same version cannot both succeed.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"pandemic/internal/engine"
	"pandemic/internal/lobby"
)

var (
	ErrNotFound        = errors.New("room not found")
	ErrExists          = errors.New("room already exists")
	ErrVersionConflict = errors.New("room version conflict")
)

// Document is the persisted state of one room.
type Document struct {
	RoomID    string            `json:"room_id"`
	Version   int64             `json:"version"`
	Lobby     *lobby.Lobby      `json:"lobby"`
	Game      *engine.GameState `json:"game,omitempty"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// Clone returns a deep copy of d.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	c := *d
	c.Lobby = d.Lobby.Clone()
	if d.Game != nil {
		c.Game = d.Game.Clone()
	}
	return &c
}

type Store interface {
	// Create stores doc at version 1. ErrExists if the room id is taken.
	Create(ctx context.Context, doc *Document) (*Document, error)
	// Get returns the latest document or ErrNotFound.
	Get(ctx context.Context, roomID string) (*Document, error)
	// CompareAndSwap replaces the stored document if its version still equals
	// doc.Version and returns the stored copy with the version incremented.
	// ErrVersionConflict if another write got there first.
	CompareAndSwap(ctx context.Context, doc *Document) (*Document, error)
	Delete(ctx context.Context, roomID string) error
	Close() error
}

// payload is the part of a document serialized as one blob. Version and
// room id live in their own columns so the backends can filter on them.
type payload struct {
	Lobby *lobby.Lobby      `json:"lobby"`
	Game  *engine.GameState `json:"game,omitempty"`
}

func encodePayload(d *Document) ([]byte, error) {
	b, err := json.Marshal(payload{Lobby: d.Lobby, Game: d.Game})
	if err != nil {
		return nil, fmt.Errorf("encode room %s: %w", d.RoomID, err)
	}
	return b, nil
}

func decodePayload(roomID string, version int64, updated time.Time, b []byte) (*Document, error) {
	var p payload
	if err := json.Unmarshal(b, &p); err != nil {
		return nil, fmt.Errorf("decode room %s: %w", roomID, err)
	}
	return &Document{
		RoomID:    roomID,
		Version:   version,
		Lobby:     p.Lobby,
		Game:      p.Game,
		UpdatedAt: updated,
	}, nil
}

func validate(d *Document) error {
	if d == nil || d.RoomID == "" {
		return errors.New("room id is required")
	}
	if d.Lobby == nil {
		return fmt.Errorf("room %s has no lobby", d.RoomID)
	}
	return nil
}

// Update reads the room, applies fn and writes the result, retrying up to
// attempts times on version conflicts. fn receives a private copy and may
// return an error to abort without writing.
func Update(ctx context.Context, s Store, roomID string, attempts int, fn func(*Document) error) (*Document, error) {
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for range attempts {
		var doc *Document
		doc, err = s.Get(ctx, roomID)
		if err != nil {
			return nil, err
		}
		if err = fn(doc); err != nil {
			return nil, err
		}
		var saved *Document
		saved, err = s.CompareAndSwap(ctx, doc)
		if err == nil {
			return saved, nil
		}
		if !errors.Is(err, ErrVersionConflict) {
			return nil, err
		}
	}
	return nil, err
}
