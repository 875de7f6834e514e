package client

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"site-tracker-api/internal/config"
	"site-tracker-api/internal/domain"
)

func newTestS3Client(t *testing.T) *S3Client {
	t.Helper()
	c, err := NewS3Client(&config.S3Config{
		Bucket:    "test-bucket",
		Region:    "ap-northeast-2",
		AccessKey: "test-access-key",
		SecretKey: "test-secret-key",
	}, nil)
	require.NoError(t, err)
	return c
}

func TestGenerateFileKey(t *testing.T) {
	client := newTestS3Client(t)

	tests := []struct {
		name        string
		purpose     domain.AttachmentPurpose
		owner       string
		ext         string
		wantPrefix  string
		errContains string
	}{
		{name: "progress image", purpose: domain.AttachmentProgressImage, owner: "task-1", ext: ".jpg", wantPrefix: "progress-images"},
		{name: "progress audio", purpose: domain.AttachmentProgressAudio, owner: "phase-1", ext: ".m4a", wantPrefix: "progress-audio"},
		{name: "chat media", purpose: domain.AttachmentChatMedia, owner: "phase-1", ext: ".pdf", wantPrefix: "chat"},
		{name: "profile image", purpose: domain.AttachmentProfileImage, owner: "emp-1", ext: ".PNG", wantPrefix: "profiles"},
		{name: "unknown purpose", purpose: "BOARD", owner: "x", ext: ".jpg", errContains: "invalid attachment purpose"},
		{name: "missing owner", purpose: domain.AttachmentChatMedia, owner: "", ext: ".jpg", errContains: "owner id is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, err := client.GenerateFileKey(tt.purpose, tt.owner, tt.ext)
			if tt.errContains != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
				return
			}
			require.NoError(t, err)

			// sites/{prefix}/{owner}/{year}/{month}/{uuid}_{timestamp}.ext
			parts := strings.Split(key, "/")
			require.Len(t, parts, 6)
			assert.Equal(t, "sites", parts[0])
			assert.Equal(t, tt.wantPrefix, parts[1])
			assert.Equal(t, tt.owner, parts[2])
			assert.Equal(t, time.Now().Format("2006"), parts[3])
			assert.Len(t, parts[4], 2)
			assert.True(t, strings.HasSuffix(parts[5], strings.ToLower(tt.ext)))
			assert.Contains(t, parts[5], "_")
		})
	}
}

func TestGenerateFileKey_Uniqueness(t *testing.T) {
	client := newTestS3Client(t)

	keys := make(map[string]bool)
	for i := 0; i < 100; i++ {
		key, err := client.GenerateFileKey(domain.AttachmentProgressImage, "task-1", ".jpg")
		require.NoError(t, err)
		assert.False(t, keys[key], "Generated key should be unique")
		keys[key] = true
	}
}

func TestGeneratePresignedURL(t *testing.T) {
	client := newTestS3Client(t)

	url, key, err := client.GeneratePresignedURL(context.Background(), domain.AttachmentProgressImage, "task-1", "wall.jpg", "image/jpeg")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(key, "sites/progress-images/task-1/"))
	assert.True(t, strings.HasSuffix(key, ".jpg"))
	assert.Contains(t, url, "test-bucket")
	assert.Contains(t, url, "X-Amz-Signature=")
	assert.Contains(t, url, "X-Amz-Expires=300")
}

func TestGeneratePresignedURL_InvalidPurpose(t *testing.T) {
	client := newTestS3Client(t)

	_, _, err := client.GeneratePresignedURL(context.Background(), "OTHER", "task-1", "wall.jpg", "image/jpeg")
	assert.Error(t, err)
}

func TestNewS3Client_ValidationErrors(t *testing.T) {
	tests := []struct {
		name        string
		cfg         *config.S3Config
		errContains string
	}{
		{
			name: "valid configuration",
			cfg:  &config.S3Config{Bucket: "b", Region: "ap-northeast-2", AccessKey: "k", SecretKey: "s"},
		},
		{
			name:        "missing bucket",
			cfg:         &config.S3Config{Region: "ap-northeast-2"},
			errContains: "bucket is required",
		},
		{
			name:        "missing region",
			cfg:         &config.S3Config{Bucket: "b"},
			errContains: "region is required",
		},
		{
			name:        "custom endpoint without keys",
			cfg:         &config.S3Config{Bucket: "b", Region: "us-east-1", Endpoint: "http://localhost:9000"},
			errContains: "access key and secret key",
		},
		{
			name: "custom endpoint (MinIO)",
			cfg:  &config.S3Config{Bucket: "b", Region: "us-east-1", AccessKey: "minioadmin", SecretKey: "minioadmin", Endpoint: "http://localhost:9000"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewS3Client(tt.cfg, nil)
			if tt.errContains != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
				assert.Nil(t, client)
				return
			}
			assert.NoError(t, err)
			assert.NotNil(t, client)
		})
	}
}

func TestGetFileURL(t *testing.T) {
	client := newTestS3Client(t)

	key := "sites/profiles/emp-1/2024/01/uuid_1234567890.jpg"
	url := client.GetFileURL(key)
	assert.Equal(t, "https://test-bucket.s3.ap-northeast-2.amazonaws.com/"+key, url)

	got, ok := client.KeyFromURL(url)
	assert.True(t, ok)
	assert.Equal(t, key, got)

	_, ok = client.KeyFromURL("https://elsewhere.example.com/" + key)
	assert.False(t, ok)
}

func TestGetFileURL_CustomEndpoint(t *testing.T) {
	client, err := NewS3Client(&config.S3Config{
		Bucket: "media", Region: "us-east-1", AccessKey: "a", SecretKey: "b", Endpoint: "http://localhost:9000/",
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:9000/media/k.jpg", client.GetFileURL("k.jpg"))
	assert.Equal(t, "http://localhost:9000/x?sig", client.externalURL("http://minio:9000/x?sig"))
}

func TestMockS3Client(t *testing.T) {
	m := NewMockS3Client()

	url, key, err := m.GeneratePresignedURL(context.Background(), domain.AttachmentChatMedia, "phase-1", "plan.pdf", "application/pdf")
	require.NoError(t, err)
	assert.Contains(t, url, key)

	require.NoError(t, m.DeleteFile(context.Background(), key))
	assert.Equal(t, []string{key}, m.Deleted)
}
