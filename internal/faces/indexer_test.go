package faces

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/dsarkar/galleria/internal/storage"
)

// fakeSource is an in-memory ObjectSource.
type fakeSource struct {
	objects []storage.ObjectInfo
	listErr error
}

func (f *fakeSource) Bucket() string { return "media" }

func (f *fakeSource) List(ctx context.Context) ([]storage.ObjectInfo, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.objects, nil
}

func TestIndexObject_EmptyFileNameFallsBackToKey(t *testing.T) {
	var gotExternalID string
	client, _ := newFaceServer(t, map[string]http.HandlerFunc{
		"/v1/collections/portfolio-faces/index": func(w http.ResponseWriter, r *http.Request) {
			var req indexRequest
			json.NewDecoder(r.Body).Decode(&req)
			gotExternalID = req.ExternalImageID
			json.NewEncoder(w).Encode(indexResponse{})
		},
	})

	ix := NewIndexer(&fakeSource{}, client)
	if _, err := ix.IndexObject(context.Background(), "uploads/1-cat.png", ""); err != nil {
		t.Fatalf("IndexObject() error = %v", err)
	}
	if gotExternalID != "uploads/1-cat.png" {
		t.Errorf("externalImageId = %q, want the key", gotExternalID)
	}
}

func TestIndexAll_FiltersToIndexableImages(t *testing.T) {
	var indexedKeys []string
	client, _ := newFaceServer(t, map[string]http.HandlerFunc{
		"/v1/collections/portfolio-faces/index": func(w http.ResponseWriter, r *http.Request) {
			var req indexRequest
			json.NewDecoder(r.Body).Decode(&req)
			indexedKeys = append(indexedKeys, req.Object.Key)
			json.NewEncoder(w).Encode(indexResponse{FaceRecords: []FaceRecord{{FaceID: "f"}}})
		},
	})

	now := time.Now()
	source := &fakeSource{objects: []storage.ObjectInfo{
		{Key: "uploads/1-a.jpg", LastModified: now},
		{Key: "uploads/2-clip.mp4", LastModified: now},
		{Key: "uploads/3-b.webp", LastModified: now},
		{Key: "uploads/4-scan.bmp", LastModified: now},
		{Key: "uploads/5-notes.txt", LastModified: now},
	}}

	result, err := NewIndexer(source, client).IndexAll(context.Background())
	if err != nil {
		t.Fatalf("IndexAll() error = %v", err)
	}

	if result.TotalImages != 2 {
		t.Errorf("TotalImages = %d, want 2 (jpg and webp only)", result.TotalImages)
	}
	if len(indexedKeys) != 2 {
		t.Fatalf("expected 2 index calls, got %d", len(indexedKeys))
	}
	if indexedKeys[0] != "uploads/1-a.jpg" || indexedKeys[1] != "uploads/3-b.webp" {
		t.Errorf("indexed keys out of submission order: %v", indexedKeys)
	}
}

func TestIndexAll_PartialFailureContinues(t *testing.T) {
	client, _ := newFaceServer(t, map[string]http.HandlerFunc{
		"/v1/collections/portfolio-faces/index": func(w http.ResponseWriter, r *http.Request) {
			var req indexRequest
			json.NewDecoder(r.Body).Decode(&req)
			if strings.Contains(req.Object.Key, "corrupt") {
				writeServiceError(w, http.StatusBadRequest, "InvalidParameterException", "bad image")
				return
			}
			json.NewEncoder(w).Encode(indexResponse{FaceRecords: []FaceRecord{
				{FaceID: "f1"}, {FaceID: "f2"},
			}})
		},
	})

	source := &fakeSource{objects: []storage.ObjectInfo{
		{Key: "uploads/1-good.jpg"},
		{Key: "uploads/2-corrupt.jpg"},
		{Key: "uploads/3-also-good.png"},
	}}

	result, err := NewIndexer(source, client).IndexAll(context.Background())
	if err != nil {
		t.Fatalf("one bad image must not fail the scan: %v", err)
	}

	if result.TotalImages != 3 {
		t.Errorf("TotalImages = %d, want 3", result.TotalImages)
	}
	if result.Indexed != 2 {
		t.Errorf("Indexed = %d, want 2", result.Indexed)
	}
	if result.TotalFaces != 4 {
		t.Errorf("TotalFaces = %d, want 4", result.TotalFaces)
	}
	if len(result.Details) != result.TotalImages {
		t.Fatalf("details length %d must equal totalImages %d", len(result.Details), result.TotalImages)
	}

	failed := result.Details[1]
	if failed.Success || failed.Error == "" {
		t.Errorf("failed item should carry its own error message: %+v", failed)
	}
	if !result.Details[0].Success || !result.Details[2].Success {
		t.Error("objects around the failure must still succeed")
	}
}

func TestIndexAll_ListingFailureIsFatal(t *testing.T) {
	client, _ := newFaceServer(t, nil)
	source := &fakeSource{listErr: errors.New("storage unreachable")}

	if _, err := NewIndexer(source, client).IndexAll(context.Background()); err == nil {
		t.Error("listing failure must fail the whole scan")
	}
}

func TestIndexAll_EmptyCatalog(t *testing.T) {
	client, _ := newFaceServer(t, nil)

	result, err := NewIndexer(&fakeSource{}, client).IndexAll(context.Background())
	if err != nil {
		t.Fatalf("IndexAll() error = %v", err)
	}
	if result.TotalImages != 0 || result.Indexed != 0 || result.TotalFaces != 0 {
		t.Errorf("empty catalog should produce a zero result: %+v", result)
	}
}
