package storage

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"strings"

	"detectorbot/relay/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsCfg "github.com/aws/aws-sdk-go-v2/config" // Alias config to avoid clash
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// s3Storage implements the ObjectStorage interface using an S3-compatible backend.
// Each partition is its own bucket; buckets are expected to exist already.
type s3Storage struct {
	client        *s3.Client
	publicBaseURL string
}

// NewS3Storage creates a new S3 storage service instance.
func NewS3Storage(cfg config.S3Config) (ObjectStorage, error) {
	// Custom resolver for S3-compatible endpoints (like MinIO, Supabase Storage)
	customResolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		if cfg.Endpoint != "" {
			return aws.Endpoint{
				PartitionID:   "aws", // Usually "aws" even for compatible storage
				URL:           cfg.Endpoint,
				SigningRegion: cfg.Region,
			}, nil
		}
		// Fallback to default AWS endpoint resolution if no custom endpoint is set
		return aws.Endpoint{}, &aws.EndpointNotFoundError{}
	})

	awsSDKConfig, err := awsCfg.LoadDefaultConfig(context.TODO(),
		awsCfg.WithRegion(cfg.Region),
		awsCfg.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")),
		awsCfg.WithEndpointResolverWithOptions(customResolver),
	)
	if err != nil {
		log.Printf("ERROR: Failed to load AWS SDK config for S3: %v", err)
		return nil, err
	}

	// Force path-style addressing required by most S3-compatible services
	s3Client := s3.NewFromConfig(awsSDKConfig, func(o *s3.Options) {
		o.UsePathStyle = true
	})

	publicBase := cfg.PublicBaseURL
	if publicBase == "" {
		publicBase = cfg.Endpoint
	}
	publicBase = strings.TrimRight(publicBase, "/")

	log.Printf("S3 Storage Service initialized for endpoint: %s", cfg.Endpoint)

	return &s3Storage{
		client:        s3Client,
		publicBaseURL: publicBase,
	}, nil
}

// Put uploads an object to the partition bucket.
func (s *s3Storage) Put(ctx context.Context, partition, key string, data []byte, contentType string) error {
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(partition),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		log.Printf("ERROR: Failed to put object '%s' into bucket '%s': %v", key, partition, err)
		return err
	}

	return nil
}

// PublicURL builds the path-style public address for an object.
func (s *s3Storage) PublicURL(partition, key string) string {
	return fmt.Sprintf("%s/%s/%s", s.publicBaseURL, partition, key)
}
