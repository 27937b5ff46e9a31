package api

import (
	"errors"
	"io"
	"log"
	"net/http"

	"detectorbot/relay/internal/domain"
	"detectorbot/relay/internal/service"

	"github.com/gin-gonic/gin"
)

// UploadHandler exposes the ingestion pipeline to direct HTTP clients.
type UploadHandler struct {
	ingest   service.IngestService
	identity service.IdentityResolver
}

// NewUploadHandler creates a new UploadHandler.
func NewUploadHandler(ingest service.IngestService, identity service.IdentityResolver) *UploadHandler {
	return &UploadHandler{ingest: ingest, identity: identity}
}

// UploadResponse holds the public fields of a created record.
type UploadResponse struct {
	ID        string  `json:"id"`
	FileURL   string  `json:"file_url"`
	Filename  string  `json:"filename"`
	FileType  string  `json:"file_type"`
	Bucket    string  `json:"bucket"`
	Size      int64   `json:"size"`
	UserID    *string `json:"user_id"`
	SessionID *string `json:"session_id"`
	CreatedAt string  `json:"created_at"`
}

// Upload handles POST /api/upload: multipart body with a "file" part plus
// optional session_id/user_id form fields and an optional bearer credential.
func (h *UploadHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		errorResponse(c, http.StatusBadRequest, "invalid_input", "No file provided")
		return
	}
	if fileHeader.Filename == "" {
		errorResponse(c, http.StatusBadRequest, "invalid_input", "No file selected")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		errorResponse(c, http.StatusBadRequest, "invalid_input", "Could not read uploaded file")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		errorResponse(c, http.StatusBadRequest, "invalid_input", "Could not read uploaded file")
		return
	}

	principal := principalFromContext(c, c.PostForm("session_id"))
	if !principal.IsAuthenticated() {
		// Unverified fallback for web clients that track their own user ids.
		principal.UserID = c.PostForm("user_id")
	}
	if !principal.IsResolved() {
		// First-contact anonymous client: mint the ephemeral handle here —
		// the pipeline itself never does.
		principal.SessionHandle = h.identity.EphemeralHandle()
	}

	record, err := h.ingest.Ingest(c.Request.Context(), service.IngestInput{
		Content:   content,
		Filename:  fileHeader.Filename,
		MediaType: fileHeader.Header.Get("Content-Type"),
		Principal: principal,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidInput):
			errorResponse(c, http.StatusBadRequest, "invalid_input", "No file content provided")
		case errors.Is(err, service.ErrSessionRequired):
			errorResponse(c, http.StatusBadRequest, "session_required", "Provide a session_id or authentication token")
		case errors.Is(err, service.ErrStorageWriteFailed):
			errorResponse(c, http.StatusInternalServerError, "storage_write_failed", "Failed to upload file to storage")
		case errors.Is(err, service.ErrMetadataWriteFailed):
			errorResponse(c, http.StatusInternalServerError, "metadata_write_failed", "Failed to store file metadata")
		default:
			log.Printf("ERROR: Upload failed: %v", err)
			errorResponse(c, http.StatusInternalServerError, "internal", "Upload failed")
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": toUploadResponse(record)})
}

func toUploadResponse(record *domain.DetectionRecord) UploadResponse {
	return UploadResponse{
		ID:        record.ID.Hex(),
		FileURL:   record.StorageURL,
		Filename:  record.StorageKey,
		FileType:  string(record.Category),
		Bucket:    record.Partition,
		Size:      record.ByteSize,
		UserID:    record.Owner,
		SessionID: record.SessionID,
		CreatedAt: record.CreatedAt.Format("2006-01-02T15:04:05.000Z07:00"),
	}
}
