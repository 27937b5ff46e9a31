package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"detectorbot/relay/internal/domain"
	"detectorbot/relay/internal/repository"
	"detectorbot/relay/internal/storage"
)

// --- Error Definitions ---
var (
	ErrInvalidInput        = errors.New("no file content or resolvable file name provided")
	ErrSessionRequired     = errors.New("a session handle or authenticated identity is required")
	ErrStorageWriteFailed  = errors.New("failed to write file to object storage")
	ErrMetadataWriteFailed = errors.New("failed to store detection record")
)

// IngestInput carries everything the pipeline needs for one file.
type IngestInput struct {
	Content   []byte
	Filename  string // Original filename as supplied by the client, may be ""
	MediaType string // Declared media type from the transport, may be ""
	Principal domain.Principal

	// Optional labels supplied by the caller. This service never computes them.
	DetectionResult *string
	ConfidenceScore *float64
}

// IngestService orchestrates the ingestion pipeline:
// validate, classify, generate key, write bytes, write metadata.
type IngestService interface {
	Ingest(ctx context.Context, in IngestInput) (*domain.DetectionRecord, error)
}

type ingestService struct {
	objects storage.ObjectStorage
	records repository.DetectionRepository
}

// NewIngestService creates a new instance of ingestService.
func NewIngestService(objects storage.ObjectStorage, records repository.DetectionRepository) IngestService {
	return &ingestService{
		objects: objects,
		records: records,
	}
}

// Ingest runs the pipeline. Each stage's failure is terminal for the request —
// no retries, no compensation. The storage write strictly precedes the
// metadata write, so a record in the store always has bytes behind it. The
// reverse does not hold: a metadata failure leaves an orphaned object behind,
// reconciled by an out-of-band process.
func (s *ingestService) Ingest(ctx context.Context, in IngestInput) (*domain.DetectionRecord, error) {
	// 1. Validate input shape.
	if len(in.Content) == 0 {
		ingestFailuresTotal.WithLabelValues("validate").Inc()
		return nil, ErrInvalidInput
	}
	if in.Filename == "" && in.MediaType == "" {
		ingestFailuresTotal.WithLabelValues("validate").Inc()
		return nil, ErrInvalidInput
	}
	// Every record must be attributable; minting a session handle is the
	// caller's job, not the pipeline's.
	if !in.Principal.IsResolved() {
		ingestFailuresTotal.WithLabelValues("validate").Inc()
		return nil, ErrSessionRequired
	}

	// 2. Classify — never fails, defaults to document.
	classification := Classify(in.Filename, in.MediaType)

	// 3. Generate the storage key — never fails.
	key := GenerateStorageKey(in.Principal.UserID, in.Principal.SessionHandle, in.Filename, classification.Extension)

	// 4. Write bytes. A failure here means no record is ever created.
	if err := s.objects.Put(ctx, classification.Partition, key, in.Content, in.MediaType); err != nil {
		ingestFailuresTotal.WithLabelValues("storage").Inc()
		return nil, fmt.Errorf("%w: %v", ErrStorageWriteFailed, err)
	}

	// 5. Write metadata.
	record := &domain.DetectionRecord{
		StorageURL:      s.objects.PublicURL(classification.Partition, key),
		StorageKey:      key,
		Partition:       classification.Partition,
		Category:        classification.Category,
		ByteSize:        int64(len(in.Content)),
		Extension:       recordExtension(classification.Extension),
		DetectionResult: in.DetectionResult,
		ConfidenceScore: in.ConfidenceScore,
	}
	if in.Principal.IsAuthenticated() {
		owner := in.Principal.UserID
		record.Owner = &owner
	}
	if in.Principal.HasSession() {
		session := in.Principal.SessionHandle
		record.SessionID = &session
	}

	id, err := s.records.Create(ctx, record)
	if err != nil {
		ingestFailuresTotal.WithLabelValues("metadata").Inc()
		// The object at (partition, key) is now an orphan. Deliberately no
		// compensating delete: a transient metadata fault must not be masked
		// by a possibly-also-transient delete.
		log.Printf("ERROR: Metadata write failed, orphaned object %s/%s: %v", classification.Partition, key, err)
		return nil, fmt.Errorf("%w: %v", ErrMetadataWriteFailed, err)
	}
	record.ID = id

	ingestedFilesTotal.WithLabelValues(string(record.Category)).Inc()
	ingestedBytesTotal.Add(float64(record.ByteSize))

	return record, nil
}

func recordExtension(ext string) string {
	if ext == "" {
		return "unknown"
	}
	return ext
}
