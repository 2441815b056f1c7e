package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"mockingbird/internal/domain"
)

const (
	mongoStateColl   = "state"
	mongoHistoryColl = "history"
	mongoCursorID    = "history_cursor"
	mongoMetaColl    = "meta"
)

// MongoStore keeps the design and its undo log in MongoDB. It implements
// both domain.StateStore and domain.HistoryStore.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
	limit  int
}

type mongoStateDoc struct {
	Key       string    `bson:"_id"`
	Value     string    `bson:"value"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

type mongoHistoryDoc struct {
	Seq          int64     `bson:"_id"`
	Label        string    `bson:"label"`
	SnapshotJSON string    `bson:"snapshot"`
	CreatedAt    time.Time `bson:"createdAt"`
}

func (d mongoHistoryDoc) entry() *domain.HistoryEntry {
	return &domain.HistoryEntry{Seq: d.Seq, Label: d.Label, SnapshotJSON: d.SnapshotJSON, CreatedAt: d.CreatedAt}
}

// OpenMongo connects to uri and uses database dbName.
func OpenMongo(ctx context.Context, uri, dbName string, historyLimit int) (*MongoStore, error) {
	if dbName == "" {
		dbName = "mockingbird"
	}
	if historyLimit < 1 {
		historyLimit = DefaultHistoryLimit
	}
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return &MongoStore{client: client, db: client.Database(dbName), limit: historyLimit}, nil
}

func (m *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}

// ── StateStore ──────────────────────────────────────────────

func (m *MongoStore) Get(ctx context.Context, key string) (string, error) {
	var doc mongoStateDoc
	err := m.db.Collection(mongoStateColl).FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", domain.ErrKeyNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get state %s: %w", key, err)
	}
	return doc.Value, nil
}

func (m *MongoStore) SetMany(ctx context.Context, entries map[string]string) error {
	if len(entries) == 0 {
		return nil
	}
	now := time.Now().UTC()
	models := make([]mongo.WriteModel, 0, len(entries))
	for k, v := range entries {
		models = append(models, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": k}).
			SetReplacement(mongoStateDoc{Key: k, Value: v, UpdatedAt: now}).
			SetUpsert(true))
	}
	if _, err := m.db.Collection(mongoStateColl).BulkWrite(ctx, models); err != nil {
		return fmt.Errorf("set state: %w", err)
	}
	return nil
}

func (m *MongoStore) Delete(ctx context.Context, key string) error {
	if _, err := m.db.Collection(mongoStateColl).DeleteOne(ctx, bson.M{"_id": key}); err != nil {
		return fmt.Errorf("delete state %s: %w", key, err)
	}
	return nil
}

func (m *MongoStore) Keys(ctx context.Context) ([]string, error) {
	cursor, err := m.db.Collection(mongoStateColl).Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list state keys: %w", err)
	}
	defer cursor.Close(ctx)

	var keys []string
	for cursor.Next(ctx) {
		var doc mongoStateDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode state key: %w", err)
		}
		keys = append(keys, doc.Key)
	}
	return keys, cursor.Err()
}

// ── HistoryStore ────────────────────────────────────────────

func (m *MongoStore) cursor(ctx context.Context) (int64, error) {
	var doc struct {
		Seq int64 `bson:"seq"`
	}
	err := m.db.Collection(mongoMetaColl).FindOne(ctx, bson.M{"_id": mongoCursorID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read history cursor: %w", err)
	}
	return doc.Seq, nil
}

func (m *MongoStore) setCursor(ctx context.Context, seq int64) error {
	_, err := m.db.Collection(mongoMetaColl).UpdateOne(ctx,
		bson.M{"_id": mongoCursorID},
		bson.M{"$set": bson.M{"seq": seq}},
		options.UpdateOne().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("update history cursor: %w", err)
	}
	return nil
}

func (m *MongoStore) findOne(ctx context.Context, filter bson.M, sort int) (*domain.HistoryEntry, error) {
	var doc mongoHistoryDoc
	err := m.db.Collection(mongoHistoryColl).FindOne(ctx, filter,
		options.FindOne().SetSort(bson.D{{Key: "_id", Value: sort}})).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrNoHistory
	}
	if err != nil {
		return nil, fmt.Errorf("read history entry: %w", err)
	}
	return doc.entry(), nil
}

func (m *MongoStore) Push(ctx context.Context, label, snapshotJSON string) (*domain.HistoryEntry, error) {
	coll := m.db.Collection(mongoHistoryColl)
	cur, err := m.cursor(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := coll.DeleteMany(ctx, bson.M{"_id": bson.M{"$gt": cur}}); err != nil {
		return nil, fmt.Errorf("drop redo branch: %w", err)
	}

	seq := cur + 1
	if last, err := m.findOne(ctx, bson.M{}, -1); err == nil && last.Seq >= seq {
		seq = last.Seq + 1
	}
	doc := mongoHistoryDoc{Seq: seq, Label: label, SnapshotJSON: snapshotJSON, CreatedAt: time.Now().UTC()}
	if _, err := coll.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert history entry: %w", err)
	}
	if err := m.setCursor(ctx, seq); err != nil {
		return nil, err
	}
	if threshold := seq - int64(m.limit); threshold > 0 {
		if _, err := coll.DeleteMany(ctx, bson.M{"_id": bson.M{"$lte": threshold}}); err != nil {
			return nil, fmt.Errorf("prune history: %w", err)
		}
	}
	return doc.entry(), nil
}

func (m *MongoStore) step(ctx context.Context, op string, sort int) (*domain.HistoryEntry, error) {
	cur, err := m.cursor(ctx)
	if err != nil {
		return nil, err
	}
	if cur == 0 {
		return nil, domain.ErrNoHistory
	}
	e, err := m.findOne(ctx, bson.M{"_id": bson.M{op: cur}}, sort)
	if err != nil {
		return nil, err
	}
	if err := m.setCursor(ctx, e.Seq); err != nil {
		return nil, err
	}
	return e, nil
}

func (m *MongoStore) Undo(ctx context.Context) (*domain.HistoryEntry, error) {
	return m.step(ctx, "$lt", -1)
}

func (m *MongoStore) Redo(ctx context.Context) (*domain.HistoryEntry, error) {
	return m.step(ctx, "$gt", 1)
}

func (m *MongoStore) Current(ctx context.Context) (*domain.HistoryEntry, error) {
	cur, err := m.cursor(ctx)
	if err != nil {
		return nil, err
	}
	return m.findOne(ctx, bson.M{"_id": cur}, 1)
}

func (m *MongoStore) List(ctx context.Context) ([]domain.HistoryEntry, error) {
	cursor, err := m.db.Collection(mongoHistoryColl).Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer cursor.Close(ctx)

	var out []domain.HistoryEntry
	for cursor.Next(ctx) {
		var doc mongoHistoryDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode history entry: %w", err)
		}
		out = append(out, *doc.entry())
	}
	return out, cursor.Err()
}

func (m *MongoStore) Reset(ctx context.Context) error {
	if _, err := m.db.Collection(mongoMetaColl).DeleteOne(ctx, bson.M{"_id": mongoCursorID}); err != nil {
		return fmt.Errorf("clear history cursor: %w", err)
	}
	if _, err := m.db.Collection(mongoHistoryColl).DeleteMany(ctx, bson.M{}); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}
