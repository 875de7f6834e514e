package client

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"site-tracker-api/internal/domain"
)

// MockS3Client implements S3ClientInterface for testing without AWS credentials
type MockS3Client struct {
	Bucket string
	Region string

	GenerateFileKeyFunc      func(purpose domain.AttachmentPurpose, ownerID, fileExt string) (string, error)
	GeneratePresignedURLFunc func(ctx context.Context, purpose domain.AttachmentPurpose, ownerID, fileName, contentType string) (string, string, error)
	DeleteFileFunc           func(ctx context.Context, key string) error

	mu      sync.Mutex
	Deleted []string
}

// NewMockS3Client creates a new mock S3 client for testing
func NewMockS3Client() *MockS3Client {
	return &MockS3Client{
		Bucket: "test-bucket",
		Region: "ap-northeast-2",
	}
}

func (m *MockS3Client) GenerateFileKey(purpose domain.AttachmentPurpose, ownerID, fileExt string) (string, error) {
	if m.GenerateFileKeyFunc != nil {
		return m.GenerateFileKeyFunc(purpose, ownerID, fileExt)
	}
	return buildFileKey(purpose, ownerID, fileExt, time.Now())
}

func (m *MockS3Client) GeneratePresignedURL(ctx context.Context, purpose domain.AttachmentPurpose, ownerID, fileName, contentType string) (string, string, error) {
	if m.GeneratePresignedURLFunc != nil {
		return m.GeneratePresignedURLFunc(ctx, purpose, ownerID, fileName, contentType)
	}
	if err := ctx.Err(); err != nil {
		return "", "", err
	}

	key, err := m.GenerateFileKey(purpose, ownerID, filepath.Ext(fileName))
	if err != nil {
		return "", "", fmt.Errorf("failed to generate file key: %w", err)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s?X-Amz-Signature=mock", m.Bucket, m.Region, key), key, nil
}

func (m *MockS3Client) DeleteFile(ctx context.Context, key string) error {
	if m.DeleteFileFunc != nil {
		return m.DeleteFileFunc(ctx, key)
	}
	m.mu.Lock()
	m.Deleted = append(m.Deleted, key)
	m.mu.Unlock()
	return nil
}

func (m *MockS3Client) GetFileURL(key string) string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", m.Bucket, m.Region, key)
}
