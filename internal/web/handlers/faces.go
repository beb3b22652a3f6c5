package handlers

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"log"
	"net/http"
	"regexp"

	// Registered decoders for probe validation. Browser captures arrive as
	// JPEG or PNG; the rest covers files pasted from disk.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/dsarkar/galleria/internal/faces"
)

// FaceIndexService runs indexing against the face collection. Satisfied by
// faces.Indexer.
type FaceIndexService interface {
	IndexObject(ctx context.Context, key, fileName string) ([]faces.FaceRecord, error)
	IndexAll(ctx context.Context) (*faces.BulkResult, error)
}

// FaceSearchService searches the face collection by probe image. Satisfied
// by faces.Client.
type FaceSearchService interface {
	SearchByImage(ctx context.Context, probe []byte) ([]faces.Match, error)
}

// FacesHandler handles face indexing and face search endpoints.
type FacesHandler struct {
	indexer  FaceIndexService
	searcher FaceSearchService
}

// NewFacesHandler creates a new faces handler. Nil services mean face
// recognition is not configured; endpoints then fail with 500.
func NewFacesHandler(indexer FaceIndexService, searcher FaceSearchService) *FacesHandler {
	return &FacesHandler{indexer: indexer, searcher: searcher}
}

type indexFaceRequest struct {
	S3Key    string `json:"s3Key"`
	FileName string `json:"fileName"`
}

type indexFaceResponse struct {
	Success      bool     `json:"success"`
	FacesIndexed int      `json:"facesIndexed"`
	FaceIDs      []string `json:"faceIds,omitempty"`
	Message      string   `json:"message"`
}

// IndexFace indexes the faces of one stored image into the collection.
// Zero detected faces is a success; the image simply contributes nothing
// to future searches.
func (h *FacesHandler) IndexFace(w http.ResponseWriter, r *http.Request) {
	var req indexFaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	if req.S3Key == "" {
		respondError(w, http.StatusBadRequest, "s3Key is required")
		return
	}

	if h.indexer == nil {
		respondError(w, http.StatusInternalServerError, "face recognition not configured")
		return
	}

	records, err := h.indexer.IndexObject(r.Context(), req.S3Key, req.FileName)
	if err != nil {
		h.respondFaceError(w, req.S3Key, err)
		return
	}

	resp := indexFaceResponse{
		Success:      true,
		FacesIndexed: len(records),
		Message:      fmt.Sprintf("Indexed %d face(s)", len(records)),
	}
	if len(records) == 0 {
		resp.Message = "No faces detected in the image"
	}
	for _, rec := range records {
		resp.FaceIDs = append(resp.FaceIDs, rec.FaceID)
	}
	respondJSON(w, http.StatusOK, resp)
}

type indexAllResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	faces.BulkResult
}

// IndexAll re-indexes every stored image, for catching up after indexing
// was skipped or failed at upload time. Per-image failures are reported in
// the details; only a listing failure fails the whole call.
func (h *FacesHandler) IndexAll(w http.ResponseWriter, r *http.Request) {
	if h.indexer == nil {
		respondError(w, http.StatusInternalServerError, "face recognition not configured")
		return
	}

	result, err := h.indexer.IndexAll(r.Context())
	if err != nil {
		log.Printf("Bulk indexing failed: %v", err)
		respondError(w, http.StatusInternalServerError, "could not index media library")
		return
	}

	respondJSON(w, http.StatusOK, indexAllResponse{
		Success:    true,
		Message:    fmt.Sprintf("Indexed %d of %d images", result.Indexed, result.TotalImages),
		BulkResult: *result,
	})
}

type searchFaceRequest struct {
	ImageData string `json:"imageData"`
}

type searchFaceResponse struct {
	Success bool          `json:"success"`
	Matches []faces.Match `json:"matches"`
	Message string        `json:"message,omitempty"`
}

// dataURLPrefix matches the prefix browser canvas captures put in front of
// the base64 payload.
var dataURLPrefix = regexp.MustCompile(`^data:image/\w+;base64,`)

// SearchFace searches the collection with a probe image supplied as a
// base64 data URL. No matches is a success with an empty list, distinct
// from an invalid probe or an unavailable collection.
func (h *FacesHandler) SearchFace(w http.ResponseWriter, r *http.Request) {
	var req searchFaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	if req.ImageData == "" {
		respondError(w, http.StatusBadRequest, "imageData is required")
		return
	}

	probe, err := decodeProbe(req.ImageData)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid image data provided")
		return
	}

	if h.searcher == nil {
		respondError(w, http.StatusInternalServerError, "face recognition not configured")
		return
	}

	matches, err := h.searcher.SearchByImage(r.Context(), probe)
	if err != nil {
		h.respondFaceError(w, "probe", err)
		return
	}

	resp := searchFaceResponse{
		Success: true,
		Matches: matches,
	}
	if matches == nil {
		resp.Matches = []faces.Match{}
	}
	if len(matches) == 0 {
		resp.Message = "No matching faces found"
	}
	respondJSON(w, http.StatusOK, resp)
}

// decodeProbe strips the data URL prefix, decodes the base64 payload and
// verifies the bytes form a decodable image before they are sent anywhere.
func decodeProbe(imageData string) ([]byte, error) {
	payload := dataURLPrefix.ReplaceAllString(imageData, "")

	probe, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("decoding probe payload: %w", err)
	}

	if _, _, err := image.DecodeConfig(bytes.NewReader(probe)); err != nil {
		return nil, fmt.Errorf("probe is not a valid image: %w", err)
	}
	return probe, nil
}

// respondFaceError maps face service errors to HTTP statuses.
func (h *FacesHandler) respondFaceError(w http.ResponseWriter, subject string, err error) {
	switch {
	case errors.Is(err, faces.ErrInvalidImage):
		respondError(w, http.StatusBadRequest, "Invalid image data provided")
	case errors.Is(err, faces.ErrCollectionNotFound):
		respondError(w, http.StatusNotFound, "Face collection not found")
	default:
		log.Printf("Face service call failed for %s: %v", sanitizeForLog(subject), err)
		respondError(w, http.StatusInternalServerError, "face service request failed")
	}
}
