package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"site-tracker-api/internal/client"
	"site-tracker-api/internal/domain"
	"site-tracker-api/internal/dto"
	"site-tracker-api/internal/repository"
	"site-tracker-api/internal/response"
	"site-tracker-api/internal/workflow"
)

// MaxFileSize defines the maximum allowed file size for uploads (50MB).
const MaxFileSize = 50 * 1024 * 1024

// TempAttachmentTTL is how long an unreferenced upload is kept before the cleanup job removes it
const TempAttachmentTTL = time.Hour

var (
	allowedImageTypes = map[string]bool{
		"image/jpeg": true,
		"image/jpg":  true,
		"image/png":  true,
		"image/gif":  true,
		"image/webp": true,
		"image/heic": true,
	}

	allowedAudioTypes = map[string]bool{
		"audio/mpeg":  true,
		"audio/mp4":   true,
		"audio/aac":   true,
		"audio/x-m4a": true,
		"audio/wav":   true,
		"audio/webm":  true,
		"audio/ogg":   true,
		"audio/3gpp":  true,
	}

	allowedDocTypes = map[string]bool{
		"application/pdf":    true,
		"text/plain":         true,
		"application/msword": true,
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
		"application/vnd.ms-excel": true,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": true,
	}
)

// AttachmentService issues presigned upload URLs and tracks the uploads until they are referenced
type AttachmentService interface {
	PresignUpload(ctx context.Context, actor workflow.Actor, req *dto.PresignUploadRequest) (*dto.PresignUploadResponse, error)
	// CleanupExpired removes unreferenced uploads whose retention has passed
	CleanupExpired(ctx context.Context) (deleted int, failed int, err error)
}

type attachmentServiceImpl struct {
	attachmentRepo repository.AttachmentRepository
	s3Client       client.S3ClientInterface
	logger         *zap.Logger
}

func NewAttachmentService(attachmentRepo repository.AttachmentRepository, s3Client client.S3ClientInterface, logger *zap.Logger) AttachmentService {
	return &attachmentServiceImpl{
		attachmentRepo: attachmentRepo,
		s3Client:       s3Client,
		logger:         loggerOrNop(logger),
	}
}

func (s *attachmentServiceImpl) PresignUpload(ctx context.Context, actor workflow.Actor, req *dto.PresignUploadRequest) (*dto.PresignUploadResponse, error) {
	if s.s3Client == nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "File uploads are not configured", "")
	}

	purpose := domain.AttachmentPurpose(strings.ToUpper(strings.TrimSpace(req.Purpose)))
	if !purpose.IsValid() {
		return nil, response.NewValidationError("Invalid upload purpose", req.Purpose)
	}
	if req.FileSize <= 0 {
		return nil, response.NewValidationError("File size must be greater than 0", "")
	}
	if req.FileSize > MaxFileSize {
		return nil, response.NewValidationError("File size exceeds 50MB limit", "")
	}
	contentType := strings.ToLower(strings.TrimSpace(req.ContentType))
	if !contentTypeAllowed(purpose, contentType) {
		return nil, response.NewValidationError("File type is not allowed for "+string(purpose), contentType)
	}

	owner := actor.ID
	if purpose == domain.AttachmentProfileImage {
		if req.ScopeID != nil && *req.ScopeID != actor.ID && !actor.IsAdmin() {
			return nil, response.NewForbiddenError("Only admins can upload another employee's profile image", "")
		}
	}
	if req.ScopeID != nil && *req.ScopeID != uuid.Nil {
		owner = *req.ScopeID
	}

	uploadURL, fileKey, err := s.s3Client.GeneratePresignedURL(ctx, purpose, owner.String(), req.FileName, contentType)
	if err != nil {
		s.logger.Error("Failed to generate presigned URL", zap.String("purpose", string(purpose)), zap.Error(err))
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to generate upload URL", err.Error())
	}

	expiresAt := nowUTC().Add(TempAttachmentTTL)
	attachment := &domain.Attachment{
		Purpose:     purpose,
		ScopeID:     req.ScopeID,
		Status:      domain.AttachmentStatusTemp,
		FileName:    req.FileName,
		FileKey:     fileKey,
		FileURL:     s.s3Client.GetFileURL(fileKey),
		FileSize:    req.FileSize,
		ContentType: contentType,
		UploadedBy:  actor.ID,
		ExpiresAt:   &expiresAt,
	}
	if err := s.attachmentRepo.Create(ctx, attachment); err != nil {
		return nil, response.NewPersistenceError("Failed to create attachment record", err)
	}

	return &dto.PresignUploadResponse{
		AttachmentID: attachment.ID,
		UploadURL:    uploadURL,
		FileKey:      fileKey,
		FileURL:      attachment.FileURL,
		ExpiresIn:    int(client.PresignExpiry.Seconds()),
	}, nil
}

// CleanupExpired deletes each expired upload from S3 first and drops the rows whose file is gone
func (s *attachmentServiceImpl) CleanupExpired(ctx context.Context) (int, int, error) {
	expired, err := s.attachmentRepo.FindExpiredTempAttachments(ctx)
	if err != nil {
		return 0, 0, response.NewPersistenceError("Failed to find expired attachments", err)
	}
	if len(expired) == 0 {
		return 0, 0, nil
	}

	var (
		removed []uuid.UUID
		failed  int
	)
	for _, a := range expired {
		if s.s3Client != nil {
			if err := s.s3Client.DeleteFile(ctx, a.FileKey); err != nil {
				s.logger.Error("Failed to delete file from S3",
					zap.String("attachment_id", a.ID.String()),
					zap.String("file_key", a.FileKey),
					zap.Error(err))
				failed++
				continue
			}
		}
		removed = append(removed, a.ID)
	}

	if err := s.attachmentRepo.DeleteBatch(ctx, removed); err != nil {
		return 0, failed, response.NewPersistenceError("Failed to delete attachment rows", err)
	}
	return len(removed), failed, nil
}

func contentTypeAllowed(purpose domain.AttachmentPurpose, contentType string) bool {
	switch purpose {
	case domain.AttachmentProgressImage, domain.AttachmentProfileImage:
		return allowedImageTypes[contentType]
	case domain.AttachmentProgressAudio:
		return allowedAudioTypes[contentType]
	case domain.AttachmentChatMedia:
		return allowedImageTypes[contentType] || allowedAudioTypes[contentType] || allowedDocTypes[contentType]
	}
	return false
}
