// Package mongo stores encrypted exports of a user's analysis history.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Rrens/health-insights/internal/config"
	"github.com/Rrens/health-insights/internal/domain"
	"github.com/Rrens/health-insights/internal/security"
)

// ErrArchiveNotFound is returned when an archive id does not belong to the user
var ErrArchiveNotFound = errors.New("archive not found")

// ArchiveEntry describes one stored export without its payload
type ArchiveEntry struct {
	ID          string    `json:"id"`
	RecordCount int       `json:"record_count"`
	CreatedAt   time.Time `json:"created_at"`
}

type archiveDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	UserID      string             `bson:"user_id"`
	RecordCount int                `bson:"record_count"`
	Payload     []byte             `bson:"payload"`
	CreatedAt   time.Time          `bson:"created_at"`
}

// Archive keeps encrypted analysis history snapshots in a collection
type Archive struct {
	client *mongo.Client
	coll   *mongo.Collection
	enc    *security.Encryptor
}

// NewArchive connects to MongoDB and prepares the archive collection
func NewArchive(ctx context.Context, cfg config.ArchiveConfig, enc *security.Encryptor) (*Archive, error) {
	clientOpts := options.Client().ApplyURI(cfg.MongoURI).SetConnectTimeout(10 * time.Second)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to create mongo client: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	coll := client.Database(cfg.Database).Collection(cfg.Collection)
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
	})
	if err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to create archive index: %w", err)
	}

	return &Archive{client: client, coll: coll, enc: enc}, nil
}

// Close disconnects from MongoDB
func (a *Archive) Close(ctx context.Context) error {
	return a.client.Disconnect(ctx)
}

// Save stores an encrypted snapshot of records and returns its id
func (a *Archive) Save(ctx context.Context, userID uuid.UUID, records []domain.AnalysisRecord) (*ArchiveEntry, error) {
	payload, err := a.enc.EncryptJSON(records)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt archive: %w", err)
	}

	doc := archiveDocument{
		UserID:      userID.String(),
		RecordCount: len(records),
		Payload:     payload,
		CreatedAt:   time.Now().UTC().Truncate(time.Millisecond),
	}

	res, err := a.coll.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to insert archive: %w", domain.ErrStore, err)
	}

	id, _ := res.InsertedID.(primitive.ObjectID)
	return &ArchiveEntry{ID: id.Hex(), RecordCount: doc.RecordCount, CreatedAt: doc.CreatedAt}, nil
}

// List returns the user's archives, newest first
func (a *Archive) List(ctx context.Context, userID uuid.UUID) ([]ArchiveEntry, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetProjection(bson.M{"payload": 0})

	cursor, err := a.coll.Find(ctx, bson.M{"user_id": userID.String()}, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list archives: %w", domain.ErrStore, err)
	}
	defer cursor.Close(ctx)

	entries := []ArchiveEntry{}
	for cursor.Next(ctx) {
		var doc archiveDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("%w: failed to decode archive: %w", domain.ErrStore, err)
		}
		entries = append(entries, ArchiveEntry{ID: doc.ID.Hex(), RecordCount: doc.RecordCount, CreatedAt: doc.CreatedAt})
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("%w: failed to list archives: %w", domain.ErrStore, err)
	}
	return entries, nil
}

// Load decrypts one of the user's archives
func (a *Archive) Load(ctx context.Context, userID uuid.UUID, id string) ([]domain.AnalysisRecord, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrArchiveNotFound
	}

	var doc archiveDocument
	err = a.coll.FindOne(ctx, bson.M{"_id": oid, "user_id": userID.String()}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrArchiveNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to load archive: %w", domain.ErrStore, err)
	}

	var records []domain.AnalysisRecord
	if err := a.enc.DecryptJSON(doc.Payload, &records); err != nil {
		return nil, fmt.Errorf("failed to decrypt archive: %w", err)
	}
	return records, nil
}
