package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	mongooptions "go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hearyou/bracelet-bridge/internal/domain/event"
	"github.com/hearyou/bracelet-bridge/internal/domain/settings"
)

// settingsDocumentID is the _id of the single global settings document.
const settingsDocumentID = "global"

// MongoOptions configures the MongoDB-backed store.
type MongoOptions struct {
	// URI is the deployment connection string.
	URI string
	// Database holds both collections.
	Database string
	// EventsCollection is the event records collection name.
	EventsCollection string
	// SettingsCollection is the settings collection name.
	SettingsCollection string
}

// Mongo implements Store on top of a MongoDB deployment, using change
// streams for the push subscriptions.
type Mongo struct {
	// client is the underlying driver client.
	client *mongo.Client
	// events is the event records collection.
	events *mongo.Collection
	// settings is the settings collection.
	settings *mongo.Collection
}

// NewMongo connects to the deployment described by opts. The driver
// connects lazily, so an unreachable deployment surfaces on first use
// rather than here.
func NewMongo(ctx context.Context, opts *MongoOptions) (*Mongo, error) {
	client, err := mongo.Connect(ctx, mongooptions.Client().ApplyURI(opts.URI))
	if err != nil {
		return nil, fmt.Errorf("connect to store: %w", err)
	}

	db := client.Database(opts.Database)

	return &Mongo{
		client:   client,
		events:   db.Collection(opts.EventsCollection),
		settings: db.Collection(opts.SettingsCollection),
	}, nil
}

// Close disconnects from the deployment.
func (m *Mongo) Close(ctx context.Context) error {
	if err := m.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("disconnect from store: %w", err)
	}

	return nil
}

// GlobalSettings fetches the global settings document.
func (m *Mongo) GlobalSettings(ctx context.Context) (*settings.Document, error) {
	var doc settings.Document

	err := m.settings.FindOne(ctx, bson.M{"_id": settingsDocumentID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		// Never-configured installation.
		return &settings.Document{}, nil
	}

	if err != nil {
		return nil, fmt.Errorf("fetch settings: %w", err)
	}

	return &doc, nil
}

// WatchSettings opens a change stream over mutations of the global
// settings document.
func (m *Mongo) WatchSettings(ctx context.Context) (SettingsSubscription, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.D{{Key: "documentKey._id", Value: settingsDocumentID}}}},
	}

	cs, err := m.settings.Watch(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("watch settings: %w", err)
	}

	return &mongoSettingsSubscription{stream: cs}, nil
}

// WatchEventInserts opens a change stream over insert operations on the
// events collection.
func (m *Mongo) WatchEventInserts(ctx context.Context) (EventSubscription, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.D{{Key: "operationType", Value: "insert"}}}},
	}

	cs, err := m.events.Watch(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("watch events: %w", err)
	}

	return &mongoEventSubscription{stream: cs}, nil
}

// EventsSince queries records created strictly after ts, ascending by
// creation time.
func (m *Mongo) EventsSince(ctx context.Context, ts time.Time) ([]*event.Record, error) {
	filter := bson.M{"createdAt": bson.M{"$gt": ts}}
	findOptions := mongooptions.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})

	cursor, err := m.events.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}

	var records []*event.Record
	if err = cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("decode events: %w", err)
	}

	return records, nil
}

// InsertEvent stores one new event record. The store assigns the
// identifier; a zero creation timestamp is filled with the current UTC time.
func (m *Mongo) InsertEvent(ctx context.Context, rec *event.Record) (*event.Record, error) {
	inserted := rec.Clone()
	if inserted.CreatedAt.IsZero() {
		inserted.CreatedAt = time.Now().UTC()
	}

	result, err := m.events.InsertOne(ctx, inserted)
	if err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		inserted.ID = oid.Hex()
	}

	return inserted, nil
}

// mongoSettingsSubscription adapts a change stream to SettingsSubscription.
type mongoSettingsSubscription struct {
	stream *mongo.ChangeStream
}

func (s *mongoSettingsSubscription) Next(ctx context.Context) bool {
	return s.stream.Next(ctx)
}

func (s *mongoSettingsSubscription) Err() error {
	return s.stream.Err()
}

func (s *mongoSettingsSubscription) Close(ctx context.Context) error {
	return s.stream.Close(ctx)
}

// mongoEventSubscription adapts a change stream to EventSubscription,
// decoding the inserted document out of each change notification.
type mongoEventSubscription struct {
	stream *mongo.ChangeStream
	// current is the record decoded from the latest change.
	current *event.Record
	// decodeErr sticks after a notification fails to decode.
	decodeErr error
}

func (s *mongoEventSubscription) Next(ctx context.Context) bool {
	if !s.stream.Next(ctx) {
		return false
	}

	var change struct {
		FullDocument event.Record `bson:"fullDocument"`
	}

	if err := s.stream.Decode(&change); err != nil {
		s.decodeErr = fmt.Errorf("decode change: %w", err)

		return false
	}

	s.current = &change.FullDocument

	return true
}

func (s *mongoEventSubscription) Record() *event.Record {
	return s.current
}

func (s *mongoEventSubscription) Err() error {
	if s.decodeErr != nil {
		return s.decodeErr
	}

	return s.stream.Err()
}

func (s *mongoEventSubscription) Close(ctx context.Context) error {
	return s.stream.Close(ctx)
}
