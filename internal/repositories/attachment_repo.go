package repositories

import (
	"context"

	"rentalhub/internal/common"
	"rentalhub/internal/models"
)

type AttachmentRepository interface {
	Create(ctx context.Context, attachment *models.Attachment) error
	ListByRental(ctx context.Context, rentalID string) ([]*models.Attachment, error)
}

type attachmentRepo struct {
	db Database
}

func NewAttachmentRepo(db Database) AttachmentRepository {
	return &attachmentRepo{db: db}
}

func (r *attachmentRepo) Create(ctx context.Context, a *models.Attachment) error {
	query := `
		INSERT INTO attachments (id, rental_id, file_name, object_key, content_type, size, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING created_at
	`
	err := r.db.QueryRow(ctx, query, a.ID, a.RentalID, a.FileName, a.ObjectKey, a.ContentType, a.Size).Scan(&a.CreatedAt)
	return translate(err, "record attachment", "attachment", a.ID.String())
}

func (r *attachmentRepo) ListByRental(ctx context.Context, rentalID string) ([]*models.Attachment, error) {
	query := `
		SELECT id, rental_id, file_name, object_key, content_type, size, created_at
		FROM attachments
		WHERE rental_id = $1
		ORDER BY created_at
	`
	rows, err := r.db.Query(ctx, query, rentalID)
	if err != nil {
		return nil, common.PersistenceError("list attachments", err)
	}
	defer rows.Close()

	attachments := []*models.Attachment{}
	for rows.Next() {
		a := &models.Attachment{}
		if err := rows.Scan(&a.ID, &a.RentalID, &a.FileName, &a.ObjectKey, &a.ContentType, &a.Size, &a.CreatedAt); err != nil {
			return nil, common.PersistenceError("list attachments", err)
		}
		attachments = append(attachments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, common.PersistenceError("list attachments", err)
	}
	return attachments, nil
}
