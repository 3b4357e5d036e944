package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"path"
	"path/filepath"
	"time"

	"github.com/SohomCh/drive/internal/model"
	"github.com/SohomCh/drive/internal/repository"
	"github.com/SohomCh/drive/internal/storage"
	"github.com/google/uuid"
)

// ErrStorage marks failures of the object storage provider
var ErrStorage = errors.New("object storage failure")

type FileService struct {
	fileRepo repository.FileRepository
	storage  storage.Storage
}

func NewFileService(fileRepo repository.FileRepository, storage storage.Storage) *FileService {
	return &FileService{
		fileRepo: fileRepo,
		storage:  storage,
	}
}

// Upload writes the file to object storage and records its metadata.
// Validation (size, type) is the caller's job. The metadata row is created
// only after a successful object write; if the insert fails the object is
// removed again so the two stores cannot drift apart.
func (s *FileService) Upload(ctx context.Context, ownerID string, file multipart.File, header *multipart.FileHeader) (*model.File, error) {
	ext := filepath.Ext(header.Filename)
	storagePath := path.Join("uploads", uuid.New().String()+ext)

	err := s.storage.Upload(ctx, storagePath, file)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	record := &model.File{
		ID:           uuid.New().String(),
		UserID:       ownerID,
		StoragePath:  storagePath,
		OriginalName: header.Filename,
		MimeType:     header.Header.Get("Content-Type"),
		Size:         header.Size,
		UploadedAt:   time.Now().UTC(),
	}

	err = s.fileRepo.Create(record)
	if err != nil {
		delErr := s.storage.Delete(ctx, storagePath)
		if delErr != nil {
			slog.Error("failed to delete object during cleanup", "error", delErr, "path", storagePath)
		}
		return nil, fmt.Errorf("failed to create file record: %w", err)
	}

	return record, nil
}

// ByOwner lists the owner's files, newest first
func (s *FileService) ByOwner(ownerID string) ([]*model.File, error) {
	return s.fileRepo.ByOwner(ownerID)
}

// DownloadURL returns a signed URL for the file, but only for its owner.
// A missing file and a file owned by someone else both come back as
// repository.ErrFileNotFound; no URL is signed in either case.
func (s *FileService) DownloadURL(ctx context.Context, fileID, ownerID string) (string, error) {
	file, err := s.fileRepo.ByIDAndOwner(fileID, ownerID)
	if err != nil {
		return "", err
	}

	url, err := s.storage.SignedDownloadURL(ctx, file.StoragePath)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrStorage, err)
	}

	return url, nil
}
