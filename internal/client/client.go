// Package client is a Go client for the galleria HTTP API, used by the CLI
// commands and by anything else that drives the service remotely.
package client

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/dsarkar/galleria/internal/faces"
	"github.com/dsarkar/galleria/internal/media"
)

// Client talks to one galleria server.
type Client struct {
	baseURL *url.URL
}

// New creates a client for the server at rawURL.
func New(rawURL string) (*Client, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}
	return &Client{baseURL: parsed}, nil
}

// UploadCredential is a write credential for a single destination key.
type UploadCredential struct {
	UploadURL string `json:"uploadUrl"`
	Key       string `json:"key"`
	FileURL   string `json:"fileUrl"`
}

// IndexFaceResult reports one image's indexing outcome.
type IndexFaceResult struct {
	Success      bool     `json:"success"`
	FacesIndexed int      `json:"facesIndexed"`
	FaceIDs      []string `json:"faceIds,omitempty"`
	Message      string   `json:"message"`
}

// SearchResult is the response of a search-by-face call.
type SearchResult struct {
	Success bool          `json:"success"`
	Matches []faces.Match `json:"matches"`
	Message string        `json:"message"`
}

type listResponse struct {
	Media []media.Object `json:"media"`
}

// errorResponse is the server's error envelope.
type errorResponse struct {
	Error string `json:"error"`
}

// RequestUpload obtains a write credential for one file.
func (c *Client) RequestUpload(ctx context.Context, fileName, fileType string) (*UploadCredential, error) {
	var cred UploadCredential
	err := c.postJSON(ctx, "api/media/upload", map[string]string{
		"fileName": fileName,
		"fileType": fileType,
	}, &cred)
	if err != nil {
		return nil, err
	}
	return &cred, nil
}

// TransferFile PUTs the file bytes to a presigned upload URL, setting the
// declared content type.
func (c *Client) TransferFile(ctx context.Context, uploadURL, contentType string, body io.Reader, size int64) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, body)
	if err != nil {
		return fmt.Errorf("could not create transfer request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.ContentLength = size

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("could not transfer file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("transfer failed with status %d: %s", resp.StatusCode, readErrorBody(resp.Body))
	}
	return nil
}

// IndexFace indexes one stored image.
func (c *Client) IndexFace(ctx context.Context, key, fileName string) (*IndexFaceResult, error) {
	var result IndexFaceResult
	err := c.postJSON(ctx, "api/media/index-face", map[string]string{
		"s3Key":    key,
		"fileName": fileName,
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// IndexAll runs the server-side catch-up indexing scan.
func (c *Client) IndexAll(ctx context.Context) (*faces.BulkResult, error) {
	var result faces.BulkResult
	if err := c.postJSON(ctx, "api/media/index-all", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListMedia fetches the current catalog listing. URLs in the result expire;
// never cache them beyond this response.
func (c *Client) ListMedia(ctx context.Context) ([]media.Object, error) {
	u := c.baseURL.JoinPath("api", "media", "list").String()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("could not create request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("could not send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("could not read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp.StatusCode, body)
	}

	var list listResponse
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("could not unmarshal listing: %w", err)
	}
	return list.Media, nil
}

// SearchFace submits probe image bytes as a base64 data URL, the wire format
// the search endpoint expects from browser captures.
func (c *Client) SearchFace(ctx context.Context, probe []byte) (*SearchResult, error) {
	imageData := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(probe)

	var result SearchResult
	err := c.postJSON(ctx, "api/media/search-face", map[string]string{
		"imageData": imageData,
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// postJSON sends a JSON POST to an API path and unmarshals the response.
func (c *Client) postJSON(ctx context.Context, apiPath string, requestBody, result any) error {
	u := c.baseURL.JoinPath(apiPath).String()

	var bodyReader io.Reader
	if requestBody != nil {
		jsonBody, err := json.Marshal(requestBody)
		if err != nil {
			return fmt.Errorf("could not marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bodyReader)
	if err != nil {
		return fmt.Errorf("could not create request: %w", err)
	}
	if requestBody != nil {
		req.Header.Set("Content-Type", "application/json")
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
	if resp.StatusCode != http.StatusOK {
		return apiError(resp.StatusCode, body)
	}

	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("could not unmarshal response: %w", err)
	}
	return nil
}

// apiError extracts the server's error message if the body carries one.
func apiError(status int, body []byte) error {
	var envelope errorResponse
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error != "" {
		return fmt.Errorf("request failed with status %d: %s", status, envelope.Error)
	}
	return fmt.Errorf("request failed with status %d: %s", status, string(body))
}

func readErrorBody(r io.Reader) string {
	body, err := io.ReadAll(r)
	if err != nil {
		return "(could not read error body)"
	}
	return string(body)
}
