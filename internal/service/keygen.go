package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const maxBaseNameLength = 50

// GenerateStorageKey produces a storage key that is unique per ingestion
// attempt: {identifier}_{unix_timestamp}_{8-char-token}_{base_name}.{extension}.
// Uniqueness rests on the timestamp plus the random token — negligible
// collision odds at expected volumes, not a transactional guarantee.
func GenerateStorageKey(userID, sessionID, originalFilename, extension string) string {
	identifier := userID
	if identifier == "" {
		identifier = sessionID
	}
	if identifier == "" {
		identifier = "unknown"
	}

	timestamp := time.Now().Unix()
	token := uuid.NewString()[:8]

	baseName := sanitizeBaseName(originalFilename)

	if extension == "" {
		extension = "bin"
	}

	return fmt.Sprintf("%s_%d_%s_%s.%s", identifier, timestamp, token, baseName, extension)
}

// sanitizeBaseName strips the extension, keeps only alphanumerics, '-' and
// '_', and truncates to a bounded length. Empty input yields "file".
func sanitizeBaseName(filename string) string {
	if filename == "" {
		return "file"
	}

	if idx := strings.LastIndex(filename, "."); idx > 0 {
		filename = filename[:idx]
	}

	var b strings.Builder
	for _, r := range filename {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		}
		if b.Len() >= maxBaseNameLength {
			break
		}
	}

	if b.Len() == 0 {
		return "file"
	}
	return b.String()
}
