package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/SohomCh/drive/internal/ctxkeys"
	"github.com/SohomCh/drive/internal/model"
	"github.com/SohomCh/drive/internal/repository"
	"github.com/SohomCh/drive/internal/service"
	"github.com/SohomCh/drive/internal/validation"
)

type FileHandler struct {
	fileService *service.FileService
	constraints validation.UploadConstraints
}

func NewFileHandler(fileService *service.FileService, maxUploadSize int64) *FileHandler {
	constraints := validation.DefaultUploadConstraints
	constraints.MaxSize = maxUploadSize

	return &FileHandler{
		fileService: fileService,
		constraints: constraints,
	}
}

type homePageData struct {
	User  *model.User
	Files []*model.File
}

func (h *FileHandler) HomePage(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	files, err := h.fileService.ByOwner(user.ID)
	if err != nil {
		slog.Error("failed to list files", "error", err, "user_id", user.ID)
		writeError(w, r, http.StatusInternalServerError, "Error retrieving files", err)
		return
	}

	renderPage(w, "home.html", homePageData{User: user, Files: files})
}

func (h *FileHandler) Upload(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	// MaxBytesReader caps the whole body a little above the file limit;
	// the ParseMultipartForm argument is only the in-memory threshold
	// before parts spool to disk.
	r.Body = http.MaxBytesReader(w, r.Body, h.constraints.MaxSize+1<<20)

	err := r.ParseMultipartForm(h.constraints.MaxSize)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "Failed to parse form", err)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "No file uploaded", err)
		return
	}
	defer func() {
		closeErr := file.Close()
		if closeErr != nil {
			slog.Error("failed to close file", "error", closeErr)
		}
	}()

	err = validation.ValidateUpload(header, h.constraints)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error(), nil)
		return
	}

	record, err := h.fileService.Upload(r.Context(), user.ID, file, header)
	if err != nil {
		slog.Error("failed to upload file", "error", err, "user_id", user.ID)
		writeError(w, r, http.StatusInternalServerError, "Error uploading file", err)
		return
	}

	slog.Info("file uploaded", "file_id", record.ID, "user_id", user.ID, "size", record.Size)

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "File uploaded successfully",
		"file":    record,
	})
}

func (h *FileHandler) Download(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	fileID := r.PathValue("fileId")

	url, err := h.fileService.DownloadURL(r.Context(), fileID, user.ID)
	if err != nil {
		// Absent and foreign-owned look the same on purpose
		if errors.Is(err, repository.ErrFileNotFound) {
			writeError(w, r, http.StatusForbidden, "Unauthorized file access", nil)
			return
		}
		slog.Error("failed to sign download URL", "error", err, "file_id", fileID, "user_id", user.ID)
		writeError(w, r, http.StatusInternalServerError, "Error downloading file", err)
		return
	}

	http.Redirect(w, r, url, http.StatusFound)
}
