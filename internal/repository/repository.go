package repository

import (
	"context"

	"detectorbot/relay/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for repository layer
var (
	ErrNotFound     = RepositoryError("not found")
	ErrInsertFailed = RepositoryError("insert failed")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// DetectionRepository defines the interface for interacting with detection
// history metadata. The ingestion pipeline is the only writer; history access
// control only reads.
type DetectionRepository interface {
	Create(ctx context.Context, record *domain.DetectionRecord) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.DetectionRecord, error)
	// ListByOwner returns every record owned by the given authenticated user,
	// newest first, regardless of which session created it.
	ListByOwner(ctx context.Context, owner string) ([]domain.DetectionRecord, error)
	// ListBySession returns ownerless records for the given session handle,
	// newest first. Records with an owner never appear here.
	ListBySession(ctx context.Context, sessionID string) ([]domain.DetectionRecord, error)
}

// UserRepository defines the interface for interacting with user accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
}
