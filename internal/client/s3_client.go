package client

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	appConfig "site-tracker-api/internal/config"
	"site-tracker-api/internal/domain"
	"site-tracker-api/internal/metrics"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// PresignExpiry is how long an upload URL stays valid
const PresignExpiry = 5 * time.Minute

// S3ClientInterface defines the interface for S3 operations
type S3ClientInterface interface {
	GenerateFileKey(purpose domain.AttachmentPurpose, ownerID, fileExt string) (string, error)
	GeneratePresignedURL(ctx context.Context, purpose domain.AttachmentPurpose, ownerID, fileName, contentType string) (string, string, error)
	DeleteFile(ctx context.Context, key string) error
	GetFileURL(key string) string
}

// S3Client wraps AWS S3 client and implements S3ClientInterface
type S3Client struct {
	client        *s3.Client
	presignClient *s3.PresignClient
	bucket        string
	region        string
	endpoint      string // set for MinIO in local development
	metrics       *metrics.Metrics
}

// NewS3Client creates a new S3 client
func NewS3Client(cfg *appConfig.S3Config, m *metrics.Metrics) (*S3Client, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("S3 bucket is required")
	}
	if cfg.Region == "" {
		return nil, fmt.Errorf("S3 region is required")
	}

	hasKeys := cfg.AccessKey != "" && cfg.SecretKey != ""
	if cfg.Endpoint != "" && !hasKeys {
		return nil, fmt.Errorf("access key and secret key are required for a custom endpoint")
	}

	// without static keys the SDK default chain applies (IAM role, ~/.aws/credentials)
	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if hasKeys {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Client{
		client:        s3Client,
		presignClient: s3.NewPresignClient(s3Client),
		bucket:        cfg.Bucket,
		region:        cfg.Region,
		endpoint:      cfg.Endpoint,
		metrics:       m,
	}, nil
}

var purposePrefixes = map[domain.AttachmentPurpose]string{
	domain.AttachmentProgressImage: "progress-images",
	domain.AttachmentProgressAudio: "progress-audio",
	domain.AttachmentChatMedia:     "chat",
	domain.AttachmentProfileImage:  "profiles",
}

// GenerateFileKey generates a unique S3 file key
// Format: sites/{prefix}/{ownerID}/{year}/{month}/{uuid}_{timestamp}.ext
func (c *S3Client) GenerateFileKey(purpose domain.AttachmentPurpose, ownerID, fileExt string) (string, error) {
	return buildFileKey(purpose, ownerID, fileExt, time.Now())
}

func buildFileKey(purpose domain.AttachmentPurpose, ownerID, fileExt string, now time.Time) (string, error) {
	prefix, ok := purposePrefixes[purpose]
	if !ok {
		return "", fmt.Errorf("invalid attachment purpose: %s", purpose)
	}
	if ownerID == "" {
		return "", fmt.Errorf("owner id is required")
	}

	return fmt.Sprintf("sites/%s/%s/%s/%s/%s_%d%s",
		prefix, ownerID, now.Format("2006"), now.Format("01"),
		uuid.New().String(), now.Unix(), strings.ToLower(fileExt)), nil
}

// GeneratePresignedURL returns an upload URL and the key it writes to
func (c *S3Client) GeneratePresignedURL(ctx context.Context, purpose domain.AttachmentPurpose, ownerID, fileName, contentType string) (string, string, error) {
	fileKey, err := c.GenerateFileKey(purpose, ownerID, filepath.Ext(fileName))
	if err != nil {
		return "", "", fmt.Errorf("failed to generate file key: %w", err)
	}

	presignedReq, err := c.presignClient.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(fileKey),
		ContentType: aws.String(contentType),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = PresignExpiry
	})
	if err != nil {
		return "", "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}

	return c.externalURL(presignedReq.URL), fileKey, nil
}

// externalURL rewrites the in-cluster MinIO host to the configured public endpoint
func (c *S3Client) externalURL(u string) string {
	if c.endpoint == "" {
		return u
	}
	const internalMinIOHost = "minio:9000"
	externalHost := strings.TrimPrefix(strings.TrimPrefix(c.endpoint, "http://"), "https://")
	externalHost = strings.TrimSuffix(externalHost, "/")
	return strings.Replace(u, internalMinIOHost, externalHost, 1)
}

// DeleteFile deletes a file from S3
func (c *S3Client) DeleteFile(ctx context.Context, key string) error {
	start := time.Now()
	_, err := c.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if c.metrics != nil {
		status := 204
		if err != nil {
			status = 0
		}
		c.metrics.RecordExternalAPICall("s3:DeleteObject", "DELETE", status, time.Since(start), err)
	}
	if err != nil {
		return fmt.Errorf("failed to delete file from S3: %w", err)
	}
	return nil
}

// GetFileURL returns the public URL for a file
func (c *S3Client) GetFileURL(key string) string {
	if c.endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", strings.TrimSuffix(c.endpoint, "/"), c.bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", c.bucket, c.region, key)
}

// KeyFromURL recovers the object key from a URL built by GetFileURL.
// The second return is false for URLs that do not point into this bucket.
func (c *S3Client) KeyFromURL(fileURL string) (string, bool) {
	prefix := c.GetFileURL("")
	if !strings.HasPrefix(fileURL, prefix) {
		return "", false
	}
	return strings.TrimPrefix(fileURL, prefix), true
}
