package service

import (
	"context"
	"testing"

	"detectorbot/relay/internal/domain"
	"detectorbot/relay/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func strPtr(s string) *string { return &s }

func seedRecord(repo *fakeDetectionRepo, owner, session string) *domain.DetectionRecord {
	record := &domain.DetectionRecord{
		StorageKey: "key",
		StorageURL: "url",
		Category:   domain.CategoryImage,
	}
	if owner != "" {
		record.Owner = strPtr(owner)
	}
	if session != "" {
		record.SessionID = strPtr(session)
	}
	id, _ := repo.Create(context.Background(), record)
	record.ID = id
	return record
}

func TestListForAuthenticatedIgnoresSessions(t *testing.T) {
	repo := newFakeDetectionRepo()
	seedRecord(repo, "U1", "s1") // owned, created in session s1
	seedRecord(repo, "U1", "")   // owned, no session
	seedRecord(repo, "U2", "")   // different owner
	seedRecord(repo, "", "s1")   // anonymous, session s1

	svc := NewHistoryService(repo)

	// Authenticated identity is the sole filter: both owned records come
	// back regardless of session, and the anonymous s1 record does not —
	// even though the caller also carries s1.
	records, err := svc.ListFor(context.Background(), domain.Principal{UserID: "U1", SessionHandle: "s1"})
	require.NoError(t, err)
	assert.Len(t, records, 2)
	for _, r := range records {
		require.NotNil(t, r.Owner)
		assert.Equal(t, "U1", *r.Owner)
	}
}

func TestListForSessionOnly(t *testing.T) {
	repo := newFakeDetectionRepo()
	seedRecord(repo, "", "s1")
	seedRecord(repo, "", "s2")
	seedRecord(repo, "U1", "s1") // owned records never show up in session listings

	svc := NewHistoryService(repo)

	records, err := svc.ListFor(context.Background(), domain.Principal{SessionHandle: "s1"})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Nil(t, records[0].Owner)
}

func TestListForUnresolvedPrincipal(t *testing.T) {
	svc := NewHistoryService(newFakeDetectionRepo())

	_, err := svc.ListFor(context.Background(), domain.Principal{})
	assert.ErrorIs(t, err, ErrSessionRequired)
}

func TestGetOneNotFound(t *testing.T) {
	svc := NewHistoryService(newFakeDetectionRepo())

	_, err := svc.GetOne(context.Background(), primitive.NewObjectID().Hex(), domain.Principal{UserID: "U1"})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestGetOneMalformedID(t *testing.T) {
	svc := NewHistoryService(newFakeDetectionRepo())

	_, err := svc.GetOne(context.Background(), "not-a-hex-id", domain.Principal{UserID: "U1"})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestGetOneOwnedRecord(t *testing.T) {
	repo := newFakeDetectionRepo()
	record := seedRecord(repo, "U1", "s1")
	svc := NewHistoryService(repo)

	got, err := svc.GetOne(context.Background(), record.ID.Hex(), domain.Principal{UserID: "U1"})
	require.NoError(t, err)
	assert.Equal(t, record.ID, got.ID)

	// A different authenticated id is rejected.
	_, err = svc.GetOne(context.Background(), record.ID.Hex(), domain.Principal{UserID: "U2"})
	assert.ErrorIs(t, err, ErrUnauthorized)

	// The correct session handle can never authorize access to an owned record.
	_, err = svc.GetOne(context.Background(), record.ID.Hex(), domain.Principal{SessionHandle: "s1"})
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestGetOneAnonymousRecord(t *testing.T) {
	repo := newFakeDetectionRepo()
	record := seedRecord(repo, "", "s1")
	svc := NewHistoryService(repo)

	got, err := svc.GetOne(context.Background(), record.ID.Hex(), domain.Principal{SessionHandle: "s1"})
	require.NoError(t, err)
	assert.Equal(t, record.ID, got.ID)

	_, err = svc.GetOne(context.Background(), record.ID.Hex(), domain.Principal{SessionHandle: "s2"})
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = svc.GetOne(context.Background(), record.ID.Hex(), domain.Principal{})
	assert.ErrorIs(t, err, ErrUnauthorized)
}
