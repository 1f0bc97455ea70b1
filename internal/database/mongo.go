package database

import (
	"context"
	"errors"
	"fmt"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"iter"
	"log/slog"
	"qrlink/entity"
	"qrlink/internal/config"
	"qrlink/lib/sl"
	"time"
)

const (
	CollectionCodes = "qr_codes"
	CollectionScans = "qr_scans"
	FieldScanCount  = "scan_count"
)

// MongoDB is created once at startup and shared by all handlers; the driver client is safe
// for concurrent use. Close it at shutdown.
type MongoDB struct {
	client   *mongo.Client
	database *mongo.Database
	timeout  time.Duration
	log      *slog.Logger
}

func NewMongoClient(ctx context.Context, conf config.MongoConfig, log *slog.Logger) (*MongoDB, error) {
	connectionUri := fmt.Sprintf("mongodb://%s:%s", conf.Host, conf.Port)
	clientOptions := options.Client().ApplyURI(connectionUri)
	if conf.User != "" {
		clientOptions.SetAuth(options.Credential{
			Username:   conf.User,
			Password:   conf.Password,
			AuthSource: conf.Database,
		})
	}
	return Connect(ctx, clientOptions, conf.Database, time.Duration(conf.Timeout)*time.Second, log)
}

// Connect opens the client and pings the server
func Connect(ctx context.Context, clientOptions *options.ClientOptions, database string, timeout time.Duration, log *slog.Logger) (*MongoDB, error) {
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("mongodb connect: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err = client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongodb ping: %w", err)
	}
	m := &MongoDB{
		client:   client,
		database: client.Database(database),
		timeout:  timeout,
		log:      log.With(sl.Module("database.mongo")),
	}
	m.log.Info("mongodb connected", slog.String("database", database))
	return m, nil
}

func (m *MongoDB) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

// call bounds a single store call by the configured timeout unless the caller's deadline is sooner
func (m *MongoDB) call(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, m.timeout)
}

func (m *MongoDB) classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return entity.ErrNotFound
	}
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("mongodb %s: %w", op, entity.ErrDuplicate)
	}
	if errors.Is(err, context.DeadlineExceeded) || mongo.IsTimeout(err) {
		return fmt.Errorf("mongodb %s: %w: %v", op, entity.ErrTimeout, err)
	}
	return fmt.Errorf("mongodb %s: %w", op, err)
}

// Put inserts a document under id; an existing id is never overwritten
func (m *MongoDB) Put(ctx context.Context, collection, id string, doc interface{}) error {
	ctx, cancel := m.call(ctx)
	defer cancel()

	raw, err := bson.Marshal(doc)
	if err != nil {
		return fmt.Errorf("mongodb put: %w", err)
	}
	var fields bson.D
	if err = bson.Unmarshal(raw, &fields); err != nil {
		return fmt.Errorf("mongodb put: %w", err)
	}
	fields = withID(fields, id)

	_, err = m.database.Collection(collection).InsertOne(ctx, fields)
	return m.classify("put", err)
}

func (m *MongoDB) Get(ctx context.Context, collection, id string, out interface{}) error {
	ctx, cancel := m.call(ctx)
	defer cancel()

	filter := bson.D{{"_id", id}}
	err := m.database.Collection(collection).FindOne(ctx, filter).Decode(out)
	return m.classify("get", err)
}

// Merge sets the given fields, leaving the rest of the document untouched
func (m *MongoDB) Merge(ctx context.Context, collection, id string, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return entity.ErrNoData
	}
	ctx, cancel := m.call(ctx)
	defer cancel()

	filter := bson.D{{"_id", id}}
	update := bson.D{{"$set", fields}}
	result, err := m.database.Collection(collection).UpdateOne(ctx, filter, update)
	if err != nil {
		return m.classify("merge", err)
	}
	if result.MatchedCount == 0 {
		return entity.ErrNotFound
	}
	return nil
}

func (m *MongoDB) Delete(ctx context.Context, collection, id string) error {
	ctx, cancel := m.call(ctx)
	defer cancel()

	filter := bson.D{{"_id", id}}
	result, err := m.database.Collection(collection).DeleteOne(ctx, filter)
	if err != nil {
		return m.classify("delete", err)
	}
	if result.DeletedCount == 0 {
		return entity.ErrNotFound
	}
	return nil
}

// Increment applies delta with $inc, concurrent increments on one document are all kept
func (m *MongoDB) Increment(ctx context.Context, collection, id, field string, delta int64) error {
	ctx, cancel := m.call(ctx)
	defer cancel()

	filter := bson.D{{"_id", id}}
	update := bson.D{{"$inc", bson.D{{field, delta}}}}
	result, err := m.database.Collection(collection).UpdateOne(ctx, filter, update)
	if err != nil {
		return m.classify("increment", err)
	}
	if result.MatchedCount == 0 {
		return entity.ErrNotFound
	}
	return nil
}

// Append inserts a log document and returns the store assigned id
func (m *MongoDB) Append(ctx context.Context, collection string, doc interface{}) (string, error) {
	ctx, cancel := m.call(ctx)
	defer cancel()

	result, err := m.database.Collection(collection).InsertOne(ctx, doc)
	if err != nil {
		return "", m.classify("append", err)
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		return oid.Hex(), nil
	}
	return fmt.Sprint(result.InsertedID), nil
}

func (m *MongoDB) InsertQRCode(ctx context.Context, qr *entity.QRCode) error {
	return m.Put(ctx, CollectionCodes, qr.Code, qr)
}

func (m *MongoDB) GetQRCode(ctx context.Context, code string) (*entity.QRCode, error) {
	var qr entity.QRCode
	if err := m.Get(ctx, CollectionCodes, code, &qr); err != nil {
		return nil, err
	}
	return &qr, nil
}

func (m *MongoDB) MergeQRCode(ctx context.Context, code string, fields map[string]interface{}) error {
	return m.Merge(ctx, CollectionCodes, code, fields)
}

func (m *MongoDB) DeleteQRCode(ctx context.Context, code string) error {
	return m.Delete(ctx, CollectionCodes, code)
}

func (m *MongoDB) IncrementScanCount(ctx context.Context, code string, delta int64) error {
	return m.Increment(ctx, CollectionCodes, code, FieldScanCount, delta)
}

func (m *MongoDB) AppendScan(ctx context.Context, event *entity.ScanEvent) (string, error) {
	return m.Append(ctx, CollectionScans, event)
}

// QRCodes iterates the collection lazily through the cursor, bounded by the caller's context only
func (m *MongoDB) QRCodes(ctx context.Context) iter.Seq2[*entity.QRCode, error] {
	return func(yield func(*entity.QRCode, error) bool) {
		opts := options.Find().SetSort(bson.D{{"created_at", 1}})
		cursor, err := m.database.Collection(CollectionCodes).Find(ctx, bson.D{}, opts)
		if err != nil {
			yield(nil, m.classify("list", err))
			return
		}
		defer cursor.Close(context.WithoutCancel(ctx))

		for cursor.Next(ctx) {
			var qr entity.QRCode
			if err = cursor.Decode(&qr); err != nil {
				if !yield(nil, m.classify("decode", err)) {
					return
				}
				continue
			}
			if !yield(&qr, nil) {
				return
			}
		}
		if err = cursor.Err(); err != nil {
			yield(nil, m.classify("list", err))
		}
	}
}

func withID(fields bson.D, id string) bson.D {
	out := bson.D{{"_id", id}}
	for _, e := range fields {
		if e.Key != "_id" {
			out = append(out, e)
		}
	}
	return out
}
