package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FileCategory is the semantic category assigned to an ingested file.
type FileCategory string

const (
	CategoryImage    FileCategory = "image"
	CategoryVideo    FileCategory = "video"
	CategoryDocument FileCategory = "document"
)

// DetectionRecord stores metadata about one ingested file. The actual bytes
// reside in object storage under (Partition, StorageKey); detection fields are
// labels filled in by an external analysis process, never computed here.
type DetectionRecord struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Owner           *string            `bson:"owner,omitempty" json:"user_id,omitempty"`      // Authenticated user id, nil for anonymous uploads
	SessionID       *string            `bson:"sessionId,omitempty" json:"session_id,omitempty"` // Anonymous handle; may coexist with Owner as provenance
	StorageURL      string             `bson:"storageUrl" json:"file_url"`
	StorageKey      string             `bson:"storageKey" json:"filename"` // The unique key (filename) in the storage partition
	Partition       string             `bson:"partition" json:"bucket"`
	Category        FileCategory       `bson:"category" json:"file_type"`
	ByteSize        int64              `bson:"byteSize" json:"file_size"`
	Extension       string             `bson:"extension" json:"file_extension"` // Lowercase, "unknown" when unresolvable
	DetectionResult *string            `bson:"detectionResult,omitempty" json:"detection_result,omitempty"`
	ConfidenceScore *float64           `bson:"confidenceScore,omitempty" json:"confidence_score,omitempty"`
	IsAvailable     bool               `bson:"isAvailable" json:"is_file_available"`
	DeletedAt       *time.Time         `bson:"deletedAt,omitempty" json:"deleted_at,omitempty"` // Set only by the retention process
	CreatedAt       time.Time          `bson:"createdAt" json:"created_at"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updated_at"`
}

// HasOwner reports whether the record belongs to an authenticated user.
func (r *DetectionRecord) HasOwner() bool {
	return r.Owner != nil && *r.Owner != ""
}
