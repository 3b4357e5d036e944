package repository

import (
	"database/sql"
	"errors"

	"github.com/SohomCh/drive/internal/model"
	"github.com/jmoiron/sqlx"
)

// ErrFileNotFound covers both a missing file and a file owned by someone
// else: ByIDAndOwner queries on id and owner together, so callers cannot
// tell the two apart.
var ErrFileNotFound = errors.New("file not found")

type FileRepository interface {
	Create(file *model.File) error
	ByOwner(ownerID string) ([]*model.File, error)
	ByIDAndOwner(id, ownerID string) (*model.File, error)
}

type fileRepository struct {
	db *sqlx.DB
}

func NewFileRepository(db *sqlx.DB) FileRepository {
	return &fileRepository{db: db}
}

func (r *fileRepository) Create(file *model.File) error {
	query := `INSERT INTO files (id, user_id, storage_path, original_name, mime_type, size, uploaded_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.Exec(query,
		file.ID,
		file.UserID,
		file.StoragePath,
		file.OriginalName,
		file.MimeType,
		file.Size,
		file.UploadedAt,
	)

	return err
}

func (r *fileRepository) ByOwner(ownerID string) ([]*model.File, error) {
	var files []*model.File
	query := `SELECT * FROM files WHERE user_id = $1 ORDER BY uploaded_at DESC`

	err := r.db.Select(&files, query, ownerID)
	if err != nil {
		return nil, err
	}

	return files, nil
}

func (r *fileRepository) ByIDAndOwner(id, ownerID string) (*model.File, error) {
	file := &model.File{}
	query := `SELECT * FROM files WHERE id = $1 AND user_id = $2`

	err := r.db.Get(file, query, id, ownerID)
	if err == sql.ErrNoRows {
		return nil, ErrFileNotFound
	}

	return file, err
}
