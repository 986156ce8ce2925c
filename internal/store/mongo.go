package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.uber.org/zap"
)

const roomsCollection = "rooms"

// roomDoc keeps the game as a JSON string so the engine types need no bson
// tags and unsigned seeds survive the round trip.
type roomDoc struct {
	ID        string    `bson:"_id"`
	Version   int64     `bson:"version"`
	Payload   string    `bson:"payload"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// MongoStore persists room documents in one MongoDB collection.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
	now    func() time.Time
}

// OpenMongo connects to uri and verifies the connection within timeout.
func OpenMongo(uri, database string, timeout time.Duration, l *zap.Logger) (*MongoStore, error) {
	if uri == "" {
		return nil, errors.New("mongodb uri is empty")
	}
	if l == nil {
		l = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 3 * time.Second
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	if err = client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	l.Info("open mongodb success", zap.String("database", database))
	return &MongoStore{
		client: client,
		coll:   client.Database(database).Collection(roomsCollection),
		now:    time.Now,
	}, nil
}

func (m *MongoStore) Close() error {
	if m == nil || m.client == nil {
		return nil
	}
	return m.client.Disconnect(context.Background())
}

func (m *MongoStore) Create(ctx context.Context, doc *Document) (*Document, error) {
	if err := validate(doc); err != nil {
		return nil, err
	}
	b, err := encodePayload(doc)
	if err != nil {
		return nil, err
	}
	rd := roomDoc{ID: doc.RoomID, Version: 1, Payload: string(b), UpdatedAt: m.now().UTC().Truncate(time.Millisecond)}
	if _, err := m.coll.InsertOne(ctx, rd); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrExists
		}
		return nil, fmt.Errorf("create room %s: %w", doc.RoomID, err)
	}
	return decodePayload(rd.ID, rd.Version, rd.UpdatedAt, b)
}

func (m *MongoStore) Get(ctx context.Context, roomID string) (*Document, error) {
	var rd roomDoc
	err := m.coll.FindOne(ctx, bson.M{"_id": roomID}).Decode(&rd)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get room %s: %w", roomID, err)
	}
	return decodePayload(rd.ID, rd.Version, rd.UpdatedAt.UTC(), []byte(rd.Payload))
}

func (m *MongoStore) CompareAndSwap(ctx context.Context, doc *Document) (*Document, error) {
	if err := validate(doc); err != nil {
		return nil, err
	}
	b, err := encodePayload(doc)
	if err != nil {
		return nil, err
	}
	rd := roomDoc{ID: doc.RoomID, Version: doc.Version + 1, Payload: string(b), UpdatedAt: m.now().UTC().Truncate(time.Millisecond)}
	res, err := m.coll.ReplaceOne(ctx, bson.M{"_id": doc.RoomID, "version": doc.Version}, rd)
	if err != nil {
		return nil, fmt.Errorf("update room %s: %w", doc.RoomID, err)
	}
	if res.MatchedCount == 0 {
		n, err := m.coll.CountDocuments(ctx, bson.M{"_id": doc.RoomID})
		if err != nil {
			return nil, fmt.Errorf("check room %s: %w", doc.RoomID, err)
		}
		if n == 0 {
			return nil, ErrNotFound
		}
		return nil, ErrVersionConflict
	}
	return decodePayload(rd.ID, rd.Version, rd.UpdatedAt, b)
}

func (m *MongoStore) Delete(ctx context.Context, roomID string) error {
	res, err := m.coll.DeleteOne(ctx, bson.M{"_id": roomID})
	if err != nil {
		return fmt.Errorf("delete room %s: %w", roomID, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
