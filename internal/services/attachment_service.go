package services

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"rentalhub/internal/common"
	"rentalhub/internal/models"
	"rentalhub/internal/repositories"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	maxAttachmentSize = 20 << 20
	presignExpiry     = 15 * time.Minute
)

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

type AttachmentService interface {
	Upload(ctx context.Context, rentalID, fileName, contentType string, reader io.Reader, size int64) (*models.Attachment, error)
	List(ctx context.Context, rentalID string) ([]*models.Attachment, error)
}

type attachmentService struct {
	attachmentRepo repositories.AttachmentRepository
	rentalRepo     repositories.RentalRepository
	storage        ObjectStorage
	logger         *zap.Logger
}

func NewAttachmentService(attachmentRepo repositories.AttachmentRepository, rentalRepo repositories.RentalRepository, storage ObjectStorage, logger *zap.Logger) AttachmentService {
	return &attachmentService{
		attachmentRepo: attachmentRepo,
		rentalRepo:     rentalRepo,
		storage:        storage,
		logger:         logger,
	}
}

// Upload stores the file under rentals/<id>/ and records it. If recording
// fails the object is removed again.
func (s *attachmentService) Upload(ctx context.Context, rentalID, fileName, contentType string, reader io.Reader, size int64) (*models.Attachment, error) {
	if size <= 0 {
		return nil, common.ValidationError("file is empty")
	}
	if size > maxAttachmentSize {
		return nil, common.ValidationError("file exceeds %d MB", maxAttachmentSize>>20)
	}
	name := sanitizeFileName(fileName)
	if name == "" {
		return nil, common.ValidationError("file name is required")
	}

	if _, err := s.rentalRepo.GetByID(ctx, rentalID); err != nil {
		return nil, err
	}

	attachment := &models.Attachment{
		ID:          uuid.New(),
		RentalID:    rentalID,
		FileName:    name,
		ContentType: contentType,
		Size:        size,
	}
	attachment.ObjectKey = fmt.Sprintf("rentals/%s/%s-%s", rentalID, attachment.ID, name)

	if err := s.storage.Upload(ctx, attachment.ObjectKey, reader, size, contentType); err != nil {
		return nil, common.PersistenceError("store attachment", err)
	}
	if err := s.attachmentRepo.Create(ctx, attachment); err != nil {
		if delErr := s.storage.Delete(ctx, attachment.ObjectKey); delErr != nil {
			s.logger.Error("orphaned attachment object", zap.String("object_key", attachment.ObjectKey), zap.Error(delErr))
		}
		return nil, err
	}

	s.presign(ctx, attachment)
	s.logger.Info("attachment uploaded",
		zap.String("rental_id", rentalID),
		zap.String("object_key", attachment.ObjectKey),
		zap.Int64("size", size),
	)
	return attachment, nil
}

func (s *attachmentService) List(ctx context.Context, rentalID string) ([]*models.Attachment, error) {
	if _, err := s.rentalRepo.GetByID(ctx, rentalID); err != nil {
		return nil, err
	}
	attachments, err := s.attachmentRepo.ListByRental(ctx, rentalID)
	if err != nil {
		return nil, err
	}
	for _, a := range attachments {
		s.presign(ctx, a)
	}
	return attachments, nil
}

// presign fills URL; a signing failure leaves it empty
func (s *attachmentService) presign(ctx context.Context, a *models.Attachment) {
	url, err := s.storage.PresignedURL(ctx, a.ObjectKey, presignExpiry)
	if err != nil {
		s.logger.Warn("presign failed", zap.String("object_key", a.ObjectKey), zap.Error(err))
		return
	}
	a.URL = url
}

func sanitizeFileName(name string) string {
	name = filepath.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	if name == "." || name == "/" {
		return ""
	}
	name = unsafeFileChars.ReplaceAllString(name, "_")
	if len(name) > 200 {
		name = name[len(name)-200:]
	}
	return name
}
