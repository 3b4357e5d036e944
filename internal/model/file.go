package model

import (
	"time"
)

type File struct {
	ID           string    `db:"id" json:"id"`
	UserID       string    `db:"user_id" json:"userId"`
	StoragePath  string    `db:"storage_path" json:"-"`
	OriginalName string    `db:"original_name" json:"originalName"`
	MimeType     string    `db:"mime_type" json:"mimeType"`
	Size         int64     `db:"size" json:"size"`
	UploadedAt   time.Time `db:"uploaded_at" json:"uploadedAt"`
}
