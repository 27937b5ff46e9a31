package mongo

import (
	"context"
	"errors"
	"log"
	"time"

	"detectorbot/relay/internal/domain"
	"detectorbot/relay/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const detectionCollectionName = "detection_history"

// mongoDetectionRepository implements repository.DetectionRepository
type mongoDetectionRepository struct {
	collection *mongo.Collection
}

// NewMongoDetectionRepository creates a new detection history repository backed by MongoDB.
func NewMongoDetectionRepository(db *mongo.Database) repository.DetectionRepository {
	return &mongoDetectionRepository{
		collection: db.Collection(detectionCollectionName),
	}
}

// Create inserts a new detection record into the database.
func (r *mongoDetectionRepository) Create(ctx context.Context, record *domain.DetectionRecord) (primitive.ObjectID, error) {
	// A record must be attributable to someone: an owner, a session, or both.
	if !record.HasOwner() && (record.SessionID == nil || *record.SessionID == "") {
		return primitive.NilObjectID, errors.New("detection record requires an owner or a sessionId")
	}
	if record.StorageKey == "" || record.StorageURL == "" {
		return primitive.NilObjectID, errors.New("detection record requires storageKey and storageUrl")
	}

	record.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	record.CreatedAt = now
	record.UpdatedAt = now
	record.IsAvailable = true

	result, err := r.collection.InsertOne(ctx, record)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}

	return insertedID, nil
}

// GetByID retrieves a detection record by its ID.
func (r *mongoDetectionRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.DetectionRecord, error) {
	var record domain.DetectionRecord
	filter := bson.M{"_id": id}

	err := r.collection.FindOne(ctx, filter).Decode(&record)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

// ListByOwner retrieves all records owned by an authenticated user, newest first.
// The session a record was created under is deliberately not part of the filter.
func (r *mongoDetectionRepository) ListByOwner(ctx context.Context, owner string) ([]domain.DetectionRecord, error) {
	filter := bson.M{"owner": owner}
	return r.list(ctx, filter)
}

// ListBySession retrieves ownerless records for a session handle, newest first.
func (r *mongoDetectionRepository) ListBySession(ctx context.Context, sessionID string) ([]domain.DetectionRecord, error) {
	// owner must be absent: owned records are reachable only via ListByOwner.
	filter := bson.M{
		"owner":     bson.M{"$in": bson.A{nil, ""}},
		"sessionId": sessionID,
	}
	return r.list(ctx, filter)
}

func (r *mongoDetectionRepository) list(ctx context.Context, filter bson.M) ([]domain.DetectionRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	records := make([]domain.DetectionRecord, 0)
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// EnsureDetectionIndexes creates necessary indexes for the detection_history collection.
func EnsureDetectionIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			// History listing for authenticated users
			Keys:    bson.D{{Key: "owner", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index(),
		},
		{
			// History listing for anonymous sessions
			Keys:    bson.D{{Key: "sessionId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index(),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		log.Printf("WARN: Failed to create indexes for %s: %v", detectionCollectionName, err)
	}
}
