package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/dsarkar/galleria/internal/media"
	"github.com/dsarkar/galleria/internal/storage"
)

// MediaStore is the storage surface the media endpoints need. Satisfied by
// storage.Store; narrowed so tests can substitute a fake.
type MediaStore interface {
	PresignUpload(ctx context.Context, key string) (string, error)
	PresignDownload(ctx context.Context, key string) (string, error)
	ObjectURL(key string) string
	List(ctx context.Context) ([]storage.ObjectInfo, error)
}

// MediaHandler handles upload credential issuance and catalog listing.
type MediaHandler struct {
	store MediaStore
}

// NewMediaHandler creates a new media handler. A nil store means media
// storage is not configured; endpoints then fail with 500.
func NewMediaHandler(store MediaStore) *MediaHandler {
	return &MediaHandler{store: store}
}

type uploadRequest struct {
	FileName string `json:"fileName"`
	FileType string `json:"fileType"`
}

type uploadResponse struct {
	UploadURL string `json:"uploadUrl"`
	Key       string `json:"key"`
	FileURL   string `json:"fileUrl"`
}

// Upload issues a short-lived write credential for a single destination key.
// The server never touches the file bytes; the caller PUTs them directly to
// the returned URL.
func (h *MediaHandler) Upload(w http.ResponseWriter, r *http.Request) {
	var req uploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	if req.FileName == "" || req.FileType == "" {
		respondError(w, http.StatusBadRequest, "fileName and fileType are required")
		return
	}

	if h.store == nil {
		respondError(w, http.StatusInternalServerError, "media storage not configured")
		return
	}

	key := media.ObjectKey(time.Now(), req.FileName)

	uploadURL, err := h.store.PresignUpload(r.Context(), key)
	if err != nil {
		log.Printf("Failed to presign upload for %s: %v", sanitizeForLog(key), err)
		respondError(w, http.StatusInternalServerError, "could not create upload credential")
		return
	}

	respondJSON(w, http.StatusOK, uploadResponse{
		UploadURL: uploadURL,
		Key:       key,
		FileURL:   h.store.ObjectURL(key),
	})
}

type listResponse struct {
	Media []media.Object `json:"media"`
}

// List returns the full catalog with fresh download URLs. The listing is
// all or nothing: a single presign failure fails the whole request rather
// than returning a silently incomplete gallery.
func (h *MediaHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		respondError(w, http.StatusInternalServerError, "media storage not configured")
		return
	}

	objects, err := h.store.List(r.Context())
	if err != nil {
		log.Printf("Failed to list media: %v", err)
		respondError(w, http.StatusInternalServerError, "could not list media")
		return
	}

	items := make([]media.Object, 0, len(objects))
	for _, obj := range objects {
		url, err := h.store.PresignDownload(r.Context(), obj.Key)
		if err != nil {
			log.Printf("Failed to presign download for %s: %v", sanitizeForLog(obj.Key), err)
			respondError(w, http.StatusInternalServerError, "could not list media")
			return
		}
		items = append(items, media.Object{
			Key:          obj.Key,
			URL:          url,
			Size:         obj.Size,
			LastModified: obj.LastModified,
			Type:         media.Classify(obj.Key),
			FileName:     media.FileName(obj.Key),
		})
	}

	respondJSON(w, http.StatusOK, listResponse{Media: items})
}
