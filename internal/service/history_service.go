package service

import (
	"context"
	"errors"

	"detectorbot/relay/internal/domain"
	"detectorbot/relay/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ErrUnauthorized = errors.New("principal is not entitled to this record")

// HistoryService decides record visibility for a resolved principal.
// It only ever reads; the ingestion pipeline is the sole writer.
type HistoryService interface {
	// ListFor returns the records visible to a principal, newest first.
	// Authenticated identity is the sole filter when present — session handles
	// are ignored for authenticated callers.
	ListFor(ctx context.Context, principal domain.Principal) ([]domain.DetectionRecord, error)

	// GetOne fetches one record and authorizes the principal against it.
	GetOne(ctx context.Context, recordID string, principal domain.Principal) (*domain.DetectionRecord, error)
}

type historyService struct {
	records repository.DetectionRepository
}

// NewHistoryService creates a new instance of historyService.
func NewHistoryService(records repository.DetectionRepository) HistoryService {
	return &historyService{records: records}
}

func (s *historyService) ListFor(ctx context.Context, principal domain.Principal) ([]domain.DetectionRecord, error) {
	if principal.IsAuthenticated() {
		return s.records.ListByOwner(ctx, principal.UserID)
	}
	if principal.HasSession() {
		return s.records.ListBySession(ctx, principal.SessionHandle)
	}
	return nil, ErrSessionRequired
}

func (s *historyService) GetOne(ctx context.Context, recordID string, principal domain.Principal) (*domain.DetectionRecord, error) {
	id, err := primitive.ObjectIDFromHex(recordID)
	if err != nil {
		// Malformed ids are indistinguishable from absent records to callers.
		return nil, repository.ErrNotFound
	}

	record, err := s.records.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if record.HasOwner() {
		// A session handle can never authorize access to an owned record.
		if !principal.IsAuthenticated() || principal.UserID != *record.Owner {
			return nil, ErrUnauthorized
		}
		return record, nil
	}

	// Ownerless record: only an exact session match authorizes.
	if record.SessionID == nil || !principal.HasSession() || principal.SessionHandle != *record.SessionID {
		return nil, ErrUnauthorized
	}
	return record, nil
}
