package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"site-tracker-api/internal/domain"
)

// AttachmentRepository defines the interface for attachment data access
type AttachmentRepository interface {
	Create(ctx context.Context, attachment *domain.Attachment) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Attachment, error)
	FindByFileURL(ctx context.Context, fileURL string) (*domain.Attachment, error)
	FindByScope(ctx context.Context, purpose domain.AttachmentPurpose, scopeID uuid.UUID) ([]*domain.Attachment, error)
	FindExpiredTempAttachments(ctx context.Context) ([]*domain.Attachment, error)
	// ConfirmByURLs marks the TEMP uploads behind urls as confirmed for scopeID.
	// URLs that were not issued through a presign are ignored.
	ConfirmByURLs(ctx context.Context, urls []string, scopeID uuid.UUID) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteBatch(ctx context.Context, attachmentIDs []uuid.UUID) error
}

// attachmentRepositoryImpl is the GORM implementation of AttachmentRepository
type attachmentRepositoryImpl struct {
	db *gorm.DB
}

// NewAttachmentRepository creates a new instance of AttachmentRepository
func NewAttachmentRepository(db *gorm.DB) AttachmentRepository {
	return &attachmentRepositoryImpl{db: db}
}

func (r *attachmentRepositoryImpl) Create(ctx context.Context, attachment *domain.Attachment) error {
	return r.db.WithContext(ctx).Create(attachment).Error
}

func (r *attachmentRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*domain.Attachment, error) {
	var attachment domain.Attachment
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&attachment).Error; err != nil {
		return nil, err
	}
	return &attachment, nil
}

func (r *attachmentRepositoryImpl) FindByFileURL(ctx context.Context, fileURL string) (*domain.Attachment, error) {
	var attachment domain.Attachment
	if err := r.db.WithContext(ctx).Where("file_url = ?", fileURL).First(&attachment).Error; err != nil {
		return nil, err
	}
	return &attachment, nil
}

func (r *attachmentRepositoryImpl) FindByScope(ctx context.Context, purpose domain.AttachmentPurpose, scopeID uuid.UUID) ([]*domain.Attachment, error) {
	var attachments []*domain.Attachment
	if err := r.db.WithContext(ctx).
		Where("purpose = ? AND scope_id = ?", purpose, scopeID).
		Order("created_at DESC").
		Find(&attachments).Error; err != nil {
		return nil, err
	}
	return attachments, nil
}

// FindExpiredTempAttachments finds all temporary attachments that have exceeded their expiration time
func (r *attachmentRepositoryImpl) FindExpiredTempAttachments(ctx context.Context) ([]*domain.Attachment, error) {
	var attachments []*domain.Attachment
	if err := r.db.WithContext(ctx).
		Where("status = ? AND expires_at < ?", domain.AttachmentStatusTemp, time.Now().UTC()).
		Find(&attachments).Error; err != nil {
		return nil, err
	}
	return attachments, nil
}

func (r *attachmentRepositoryImpl) ConfirmByURLs(ctx context.Context, urls []string, scopeID uuid.UUID) (int64, error) {
	if len(urls) == 0 {
		return 0, nil
	}

	result := r.db.WithContext(ctx).
		Model(&domain.Attachment{}).
		Where("file_url IN ? AND status = ?", urls, domain.AttachmentStatusTemp).
		Updates(map[string]interface{}{
			"status":     domain.AttachmentStatusConfirmed,
			"scope_id":   scopeID,
			"expires_at": nil,
		})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to confirm attachments: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *attachmentRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Attachment{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteBatch deletes multiple attachments by their IDs
func (r *attachmentRepositoryImpl) DeleteBatch(ctx context.Context, attachmentIDs []uuid.UUID) error {
	if len(attachmentIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Where("id IN ?", attachmentIDs).
		Delete(&domain.Attachment{}).Error
}
