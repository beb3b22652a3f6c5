// Package faces talks to the external face recognition service. Detected
// faces live in a named collection provisioned out-of-band; this package
// only references them, it does not own them.
package faces

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

const (
	// MaxFacesPerImage caps how many faces one index or search call handles.
	MaxFacesPerImage = 10

	// SearchThreshold is the minimum similarity (percent) for a search match.
	SearchThreshold = 70

	qualityFilter = "AUTO"
)

// Service-semantic error categories, distinguished from transport failures
// so callers can map them to specific user-facing messages.
var (
	// ErrInvalidImage means the service rejected the image bytes or found
	// nothing detectable in them.
	ErrInvalidImage = errors.New("invalid image or no detectable face")

	// ErrCollectionNotFound means the named collection does not exist. The
	// collection must be created before this system can function.
	ErrCollectionNotFound = errors.New("face collection not found")
)

// Client is a client for the face recognition API.
type Client struct {
	baseURL    *url.URL
	apiKey     string
	collection string
}

// NewClient creates a face service client bound to one collection.
func NewClient(rawURL, apiKey, collection string) (*Client, error) {
	if rawURL == "" {
		return nil, errors.New("face service URL is required")
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid face service URL: %w", err)
	}
	return &Client{baseURL: parsed, apiKey: apiKey, collection: collection}, nil
}

// Collection returns the collection this client indexes into.
func (c *Client) Collection() string {
	return c.collection
}

// StoredObject references an image already in the object store. Index calls
// pass a reference instead of bytes so the service reads from storage
// directly.
type StoredObject struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
}

// FaceRecord is one face detected and stored at index time.
type FaceRecord struct {
	FaceID          string  `json:"faceId"`
	ExternalImageID string  `json:"externalImageId"`
	Confidence      float64 `json:"confidence"`
}

// Match is one search hit: a stored face similar to a face in the probe.
type Match struct {
	FaceID          string  `json:"faceId"`
	ExternalImageID string  `json:"externalImageId"`
	Similarity      float64 `json:"similarity"`
	Confidence      float64 `json:"confidence"`
}

type indexRequest struct {
	Object              StoredObject `json:"object"`
	ExternalImageID     string       `json:"externalImageId"`
	MaxFaces            int          `json:"maxFaces"`
	QualityFilter       string       `json:"qualityFilter"`
	DetectionAttributes []string     `json:"detectionAttributes"`
}

type indexResponse struct {
	FaceRecords []FaceRecord `json:"faceRecords"`
}

type searchRequest struct {
	ImageBytes         []byte  `json:"imageBytes"`
	MaxFaces           int     `json:"maxFaces"`
	FaceMatchThreshold float64 `json:"faceMatchThreshold"`
}

type searchResponse struct {
	FaceMatches []Match `json:"faceMatches"`
}

// serviceError is the error envelope the face service returns on non-2xx.
type serviceError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// IndexFaces asks the service to detect and index faces in a stored image,
// tagging each detection with externalImageID. Zero detected faces is a
// successful no-op with an empty record list.
func (c *Client) IndexFaces(ctx context.Context, obj StoredObject, externalImageID string) ([]FaceRecord, error) {
	req := indexRequest{
		Object:              obj,
		ExternalImageID:     externalImageID,
		MaxFaces:            MaxFacesPerImage,
		QualityFilter:       qualityFilter,
		DetectionAttributes: []string{"ALL"},
	}

	var resp indexResponse
	if err := c.post(ctx, "index", req, &resp); err != nil {
		return nil, err
	}
	return resp.FaceRecords, nil
}

// SearchByImage submits probe image bytes directly (no storage round-trip)
// and returns matching stored faces at similarity >= SearchThreshold. Zero
// matches is success with an empty slice, never an error.
func (c *Client) SearchByImage(ctx context.Context, probe []byte) ([]Match, error) {
	req := searchRequest{
		ImageBytes:         probe,
		MaxFaces:           MaxFacesPerImage,
		FaceMatchThreshold: SearchThreshold,
	}

	var resp searchResponse
	if err := c.post(ctx, "search", req, &resp); err != nil {
		return nil, err
	}
	return resp.FaceMatches, nil
}

// post sends a JSON request to a collection endpoint and unmarshals the
// JSON response into result.
func (c *Client) post(ctx context.Context, endpoint string, requestBody, result any) error {
	u := c.baseURL.JoinPath("v1", "collections", c.collection, endpoint).String()

	jsonBody, err := json.Marshal(requestBody)
	if err != nil {
		return fmt.Errorf("could not marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("could not create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("could not send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("could not read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.mapError(resp.StatusCode, body)
	}

	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("could not unmarshal response: %w", err)
	}
	return nil
}

// mapError turns the service's error envelope into a typed error where the
// code identifies a known semantic category.
func (c *Client) mapError(status int, body []byte) error {
	var svcErr serviceError
	if err := json.Unmarshal(body, &svcErr); err != nil || svcErr.Code == "" {
		return fmt.Errorf("face service request failed with status %d: %s", status, string(body))
	}

	switch svcErr.Code {
	case "InvalidParameterException", "InvalidImageFormatException":
		return fmt.Errorf("%w: %s", ErrInvalidImage, svcErr.Message)
	case "ResourceNotFoundException":
		return fmt.Errorf("%w: %s", ErrCollectionNotFound, svcErr.Message)
	default:
		return fmt.Errorf("face service error %s: %s", svcErr.Code, svcErr.Message)
	}
}
