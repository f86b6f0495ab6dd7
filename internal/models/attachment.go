package models

import (
	"time"

	"github.com/google/uuid"
)

// Attachment is a file stored in object storage and linked to a rental
type Attachment struct {
	ID          uuid.UUID `json:"id" db:"id"`
	RentalID    string    `json:"rental_id" db:"rental_id"`
	FileName    string    `json:"file_name" db:"file_name"`
	ObjectKey   string    `json:"object_key" db:"object_key"`
	ContentType string    `json:"content_type" db:"content_type"`
	Size        int64     `json:"size" db:"size"`
	URL         string    `json:"url,omitempty"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
