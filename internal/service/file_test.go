package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"strings"
	"testing"

	"github.com/SohomCh/drive/internal/model"
	"github.com/SohomCh/drive/internal/repository"
)

type fakeFileRepo struct {
	created   []*model.File
	createErr error

	byOwnerOut []*model.File
	byOwnerErr error

	byIDOut *model.File
	byIDErr error
}

func (f *fakeFileRepo) Create(file *model.File) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, file)
	return nil
}

func (f *fakeFileRepo) ByOwner(ownerID string) ([]*model.File, error) {
	return f.byOwnerOut, f.byOwnerErr
}

func (f *fakeFileRepo) ByIDAndOwner(id, ownerID string) (*model.File, error) {
	if f.byIDErr != nil {
		return nil, f.byIDErr
	}
	return f.byIDOut, nil
}

type fakeStorage struct {
	uploaded  map[string][]byte
	uploadErr error

	deleted []string

	signedURL string
	signErr   error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{uploaded: make(map[string][]byte)}
}

func (f *fakeStorage) Upload(_ context.Context, key string, body io.Reader) error {
	if f.uploadErr != nil {
		return f.uploadErr
	}
	b, _ := io.ReadAll(body)
	f.uploaded[key] = b
	return nil
}

func (f *fakeStorage) Delete(_ context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeStorage) SignedDownloadURL(_ context.Context, key string) (string, error) {
	if f.signErr != nil {
		return "", f.signErr
	}
	return f.signedURL, nil
}

func uploadParts(t *testing.T, filename, content string) (multipart.File, *multipart.FileHeader) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("CreateFormFile error: %v", err)
	}
	if _, err := io.WriteString(fw, content); err != nil {
		t.Fatalf("write error: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close error: %v", err)
	}

	form, err := multipart.NewReader(&buf, mw.Boundary()).ReadForm(32 << 20)
	if err != nil {
		t.Fatalf("ReadForm error: %v", err)
	}
	t.Cleanup(func() { _ = form.RemoveAll() })

	header := form.File["file"][0]
	file, err := header.Open()
	if err != nil {
		t.Fatalf("open error: %v", err)
	}
	t.Cleanup(func() { _ = file.Close() })

	return file, header
}

func TestUpload_Success(t *testing.T) {
	t.Parallel()

	repo := &fakeFileRepo{}
	store := newFakeStorage()
	svc := NewFileService(repo, store)

	file, header := uploadParts(t, "report.pdf", "%PDF-1.4 fake")

	record, err := svc.Upload(context.Background(), "owner-1", file, header)
	if err != nil {
		t.Fatalf("Upload error: %v", err)
	}

	if record.UserID != "owner-1" {
		t.Fatalf("unexpected owner: %q", record.UserID)
	}
	if record.OriginalName != "report.pdf" {
		t.Fatalf("unexpected original name: %q", record.OriginalName)
	}
	if !strings.HasPrefix(record.StoragePath, "uploads/") || !strings.HasSuffix(record.StoragePath, ".pdf") {
		t.Fatalf("unexpected storage path: %q", record.StoragePath)
	}

	if len(repo.created) != 1 {
		t.Fatalf("expected 1 record created, got %d", len(repo.created))
	}
	if _, ok := store.uploaded[record.StoragePath]; !ok {
		t.Fatalf("object not written under %q", record.StoragePath)
	}
}

func TestUpload_StorageFailure(t *testing.T) {
	t.Parallel()

	repo := &fakeFileRepo{}
	store := newFakeStorage()
	store.uploadErr = errors.New("connection reset")
	svc := NewFileService(repo, store)

	file, header := uploadParts(t, "photo.png", "png bytes")

	_, err := svc.Upload(context.Background(), "owner-1", file, header)
	if !errors.Is(err, ErrStorage) {
		t.Fatalf("expected ErrStorage, got %v", err)
	}
	if len(repo.created) != 0 {
		t.Fatalf("no record may be created when the object write fails")
	}
}

func TestUpload_RecordFailureCleansUpObject(t *testing.T) {
	t.Parallel()

	repo := &fakeFileRepo{createErr: errors.New("insert failed")}
	store := newFakeStorage()
	svc := NewFileService(repo, store)

	file, header := uploadParts(t, "photo.png", "png bytes")

	_, err := svc.Upload(context.Background(), "owner-1", file, header)
	if err == nil {
		t.Fatalf("expected error when metadata insert fails")
	}
	if len(store.deleted) != 1 {
		t.Fatalf("expected the uploaded object to be deleted, got %v", store.deleted)
	}
}

func TestDownloadURL_Owned(t *testing.T) {
	t.Parallel()

	repo := &fakeFileRepo{byIDOut: &model.File{ID: "f-1", UserID: "owner-1", StoragePath: "uploads/abc.png"}}
	store := newFakeStorage()
	store.signedURL = "https://bucket.example.com/uploads/abc.png?sig=xyz"
	svc := NewFileService(repo, store)

	url, err := svc.DownloadURL(context.Background(), "f-1", "owner-1")
	if err != nil {
		t.Fatalf("DownloadURL error: %v", err)
	}
	if url != store.signedURL {
		t.Fatalf("unexpected url: %q", url)
	}
}

func TestDownloadURL_NotOwned(t *testing.T) {
	t.Parallel()

	repo := &fakeFileRepo{byIDErr: repository.ErrFileNotFound}
	store := newFakeStorage()
	store.signedURL = "https://bucket.example.com/should-not-be-signed"
	svc := NewFileService(repo, store)

	_, err := svc.DownloadURL(context.Background(), "f-1", "someone-else")
	if !errors.Is(err, repository.ErrFileNotFound) {
		t.Fatalf("expected ErrFileNotFound, got %v", err)
	}
}

func TestDownloadURL_SignFailure(t *testing.T) {
	t.Parallel()

	repo := &fakeFileRepo{byIDOut: &model.File{ID: "f-1", UserID: "owner-1", StoragePath: "uploads/abc.png"}}
	store := newFakeStorage()
	store.signErr = errors.New("provider down")
	svc := NewFileService(repo, store)

	_, err := svc.DownloadURL(context.Background(), "f-1", "owner-1")
	if !errors.Is(err, ErrStorage) {
		t.Fatalf("expected ErrStorage, got %v", err)
	}
}
