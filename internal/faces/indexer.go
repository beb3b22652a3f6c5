package faces

import (
	"context"
	"fmt"

	"github.com/dsarkar/galleria/internal/media"
	"github.com/dsarkar/galleria/internal/storage"
)

// ObjectSource is the storage surface the indexer needs: a bucket name for
// stored-object references and a listing of the uploads namespace.
type ObjectSource interface {
	Bucket() string
	List(ctx context.Context) ([]storage.ObjectInfo, error)
}

// Indexer runs face indexing over stored objects.
type Indexer struct {
	store  ObjectSource
	client *Client
}

// NewIndexer creates an indexer over the given store and face client.
func NewIndexer(store ObjectSource, client *Client) *Indexer {
	return &Indexer{store: store, client: client}
}

// IndexObject indexes one stored image, tagging detections with fileName.
// An empty fileName falls back to the key.
func (ix *Indexer) IndexObject(ctx context.Context, key, fileName string) ([]FaceRecord, error) {
	externalID := fileName
	if externalID == "" {
		externalID = key
	}
	obj := StoredObject{Bucket: ix.store.Bucket(), Key: key}
	return ix.client.IndexFaces(ctx, obj, externalID)
}

// ItemResult is the outcome of indexing a single object during a bulk scan.
type ItemResult struct {
	Key        string `json:"key"`
	FileName   string `json:"fileName"`
	Success    bool   `json:"success"`
	FacesFound int    `json:"facesFound"`
	Error      string `json:"error,omitempty"`
}

// BulkResult aggregates a catch-up indexing scan.
type BulkResult struct {
	TotalImages int          `json:"totalImages"`
	Indexed     int          `json:"indexed"`
	TotalFaces  int          `json:"totalFaces"`
	Details     []ItemResult `json:"details"`
}

// IndexAll re-scans every indexable image under the uploads prefix,
// strictly sequentially so the face service's rate limits are never
// threatened. One object's failure is recorded in its item result and the
// scan continues.
//
// Not idempotent: re-running re-indexes already-indexed images, and the
// face service does not deduplicate, so duplicate face records can result.
func (ix *Indexer) IndexAll(ctx context.Context) (*BulkResult, error) {
	objects, err := ix.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing media for bulk indexing: %w", err)
	}

	var images []storage.ObjectInfo
	for _, obj := range objects {
		if media.Indexable(obj.Key) {
			images = append(images, obj)
		}
	}

	result := &BulkResult{
		TotalImages: len(images),
		Details:     make([]ItemResult, 0, len(images)),
	}

	for _, obj := range images {
		fileName := media.FileName(obj.Key)
		item := ItemResult{Key: obj.Key, FileName: fileName}

		records, err := ix.IndexObject(ctx, obj.Key, fileName)
		if err != nil {
			item.Error = err.Error()
		} else {
			item.Success = true
			item.FacesFound = len(records)
			result.Indexed++
			result.TotalFaces += len(records)
		}
		result.Details = append(result.Details, item)
	}

	return result, nil
}
