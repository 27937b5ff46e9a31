package service

import (
	"strings"

	"detectorbot/relay/internal/domain"
)

// Classification is the result of mapping a file to its semantic category and
// target storage partition.
type Classification struct {
	Category  domain.FileCategory
	Partition string
	// Extension is the lowercase resolved extension, "" when neither the
	// filename nor the media type yielded one.
	Extension string
}

// categorySpec binds one category to its partition, extension set and
// declared-media-type set.
type categorySpec struct {
	category   domain.FileCategory
	partition  string
	extensions []string
	mediaTypes []string
}

const defaultPartition = "text-uploads"

var categorySpecs = []categorySpec{
	{
		category:   domain.CategoryImage,
		partition:  "image-uploads",
		extensions: []string{"jpg", "jpeg", "png", "gif", "webp", "heic"},
		mediaTypes: []string{"image/jpeg", "image/png", "image/gif", "image/webp", "image/heic"},
	},
	{
		category:   domain.CategoryVideo,
		partition:  "video-uploads",
		extensions: []string{"mp4", "mov", "avi", "mkv", "webm"},
		mediaTypes: []string{"video/mp4", "video/quicktime", "video/x-msvideo", "video/x-matroska", "video/webm"},
	},
	{
		category:   domain.CategoryDocument,
		partition:  defaultPartition,
		extensions: []string{"pdf", "doc", "docx", "txt", "csv"},
		mediaTypes: []string{
			"application/pdf",
			"application/msword",
			"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
			"text/plain",
			"text/csv",
		},
	},
}

// mediaTypeExtensions maps declared media types to a canonical extension, used
// when the filename carries none.
var mediaTypeExtensions = map[string]string{
	"image/jpeg":      "jpg",
	"image/png":       "png",
	"image/gif":       "gif",
	"image/webp":      "webp",
	"image/heic":      "heic",
	"video/mp4":       "mp4",
	"video/quicktime": "mov",
	"video/x-msvideo": "avi",
	"video/x-matroska": "mkv",
	"video/webm":      "webm",
	"application/pdf": "pdf",
	"application/msword": "doc",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": "docx",
	"text/plain": "txt",
	"text/csv":   "csv",
}

// Classify maps a file to (category, partition, extension). The filename
// extension wins over the declared media type: the explicit filename signal is
// trusted over a possibly generic transport-level type. When neither source
// resolves, the file lands in the document partition — classification never
// fails.
func Classify(filename, mediaType string) Classification {
	mediaType = normalizeMediaType(mediaType)

	if ext := extensionOf(filename); ext != "" {
		for _, spec := range categorySpecs {
			for _, known := range spec.extensions {
				if ext == known {
					return Classification{Category: spec.category, Partition: spec.partition, Extension: ext}
				}
			}
		}
		// Unknown extension: keep it for the storage key, fall through to the
		// media type for the category.
		if c := classifyByMediaType(mediaType); c != nil {
			c.Extension = ext
			return *c
		}
		return Classification{Category: domain.CategoryDocument, Partition: defaultPartition, Extension: ext}
	}

	if c := classifyByMediaType(mediaType); c != nil {
		return *c
	}

	return Classification{Category: domain.CategoryDocument, Partition: defaultPartition}
}

func classifyByMediaType(mediaType string) *Classification {
	if mediaType == "" {
		return nil
	}
	for _, spec := range categorySpecs {
		for _, known := range spec.mediaTypes {
			if mediaType == known {
				return &Classification{
					Category:  spec.category,
					Partition: spec.partition,
					Extension: mediaTypeExtensions[mediaType],
				}
			}
		}
	}
	return nil
}

// extensionOf returns the lowercase substring after the last dot, or "" when
// the filename has no usable extension.
func extensionOf(filename string) string {
	idx := strings.LastIndex(filename, ".")
	if idx < 0 || idx == len(filename)-1 {
		return ""
	}
	return strings.ToLower(filename[idx+1:])
}

// normalizeMediaType strips parameters such as "; charset=utf-8".
func normalizeMediaType(mediaType string) string {
	if idx := strings.Index(mediaType, ";"); idx >= 0 {
		mediaType = mediaType[:idx]
	}
	return strings.ToLower(strings.TrimSpace(mediaType))
}
