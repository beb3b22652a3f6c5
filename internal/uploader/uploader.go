// Package uploader drives single-file uploads through the service: request
// a write credential, transfer the bytes, then best-effort face indexing.
// Task state lives in an explicit state machine with pure transitions.
package uploader

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dsarkar/galleria/internal/client"
)

// Status is an upload task's lifecycle state.
type Status string

const (
	StatusPending   Status = "pending"
	StatusUploading Status = "uploading"
	StatusIndexing  Status = "indexing"
	StatusSuccess   Status = "success"
	StatusError     Status = "error"
)

// Progress checkpoints. These are a fixed UX approximation, not a measured
// transfer rate.
const (
	progressStarted     = 10
	progressCredential  = 30
	progressTransferred = 70
	progressIndexing    = 80
	progressDone        = 100
)

// Task is one file queued for upload.
type Task struct {
	ID          string
	FileName    string
	ContentType string
	Size        int64
	Status      Status
	Progress    int
	Key         string // destination key, set once the credential is issued
	Err         string
}

// NewTask creates a pending task. The ID is unique locally by name,
// timestamp and a random suffix.
func NewTask(fileName, contentType string, size int64) Task {
	return Task{
		ID:          fmt.Sprintf("%s-%d-%s", fileName, time.Now().UnixMilli(), uuid.NewString()[:8]),
		FileName:    fileName,
		ContentType: contentType,
		Size:        size,
		Status:      StatusPending,
	}
}

// EventKind identifies a task transition.
type EventKind int

const (
	EventStarted EventKind = iota
	EventCredentialIssued
	EventTransferred
	EventIndexingStarted
	EventCompleted
	EventFailed
)

// Event is one observed step in a task's lifecycle.
type Event struct {
	Kind EventKind
	Key  string // EventCredentialIssued
	Err  string // EventFailed
}

// Apply is the pure transition function from (task, event) to a new task.
// Success and error are terminal: a failed task stays failed until the user
// removes and re-adds it, there are no retries.
func Apply(t Task, e Event) Task {
	if t.Status == StatusSuccess || t.Status == StatusError {
		return t
	}

	switch e.Kind {
	case EventStarted:
		t.Status = StatusUploading
		t.Progress = progressStarted
	case EventCredentialIssued:
		t.Key = e.Key
		t.Progress = progressCredential
	case EventTransferred:
		t.Progress = progressTransferred
	case EventIndexingStarted:
		t.Status = StatusIndexing
		t.Progress = progressIndexing
	case EventCompleted:
		t.Status = StatusSuccess
		t.Progress = progressDone
	case EventFailed:
		t.Status = StatusError
		t.Err = e.Err
	}
	return t
}

// API is the slice of the service client the coordinator needs.
type API interface {
	RequestUpload(ctx context.Context, fileName, fileType string) (*client.UploadCredential, error)
	TransferFile(ctx context.Context, uploadURL, contentType string, body io.Reader, size int64) error
	IndexFace(ctx context.Context, key, fileName string) (*client.IndexFaceResult, error)
}

// Coordinator runs upload tasks against the service. It is stateless; task
// state flows through Apply and the optional observer.
type Coordinator struct {
	api API

	// OnUpdate, if set, observes every task transition.
	OnUpdate func(Task)
}

func NewCoordinator(api API) *Coordinator {
	return &Coordinator{api: api}
}

func (c *Coordinator) apply(t Task, e Event) Task {
	t = Apply(t, e)
	if c.OnUpdate != nil {
		c.OnUpdate(t)
	}
	return t
}

// Upload runs one task to completion or failure. Steps are strictly
// sequential: credential, transfer, then indexing for images. Indexing is
// best-effort: its failure is logged, never propagated, because the file
// is already safely stored.
func (c *Coordinator) Upload(ctx context.Context, task Task, body io.Reader) Task {
	if task.FileName == "" || task.ContentType == "" {
		return c.apply(task, Event{Kind: EventFailed, Err: "file name and type are required"})
	}

	task = c.apply(task, Event{Kind: EventStarted})

	cred, err := c.api.RequestUpload(ctx, task.FileName, task.ContentType)
	if err != nil {
		return c.apply(task, Event{Kind: EventFailed, Err: fmt.Sprintf("failed to get upload URL: %v", err)})
	}
	task = c.apply(task, Event{Kind: EventCredentialIssued, Key: cred.Key})

	if err := c.api.TransferFile(ctx, cred.UploadURL, task.ContentType, body, task.Size); err != nil {
		return c.apply(task, Event{Kind: EventFailed, Err: fmt.Sprintf("upload failed: %v", err)})
	}
	task = c.apply(task, Event{Kind: EventTransferred})

	if strings.HasPrefix(task.ContentType, "image/") {
		task = c.apply(task, Event{Kind: EventIndexingStarted})
		if _, err := c.api.IndexFace(ctx, task.Key, task.FileName); err != nil {
			log.Printf("Warning: face indexing failed for %s: %v", task.Key, err)
		}
	}

	return c.apply(task, Event{Kind: EventCompleted})
}
