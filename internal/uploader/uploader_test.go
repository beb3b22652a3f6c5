package uploader

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/dsarkar/galleria/internal/client"
)

func TestApply_HappyPathCheckpoints(t *testing.T) {
	task := NewTask("cat.png", "image/png", 2048)
	if task.Status != StatusPending || task.Progress != 0 {
		t.Fatalf("new task should be pending at 0%%, got %s/%d", task.Status, task.Progress)
	}

	task = Apply(task, Event{Kind: EventStarted})
	if task.Status != StatusUploading || task.Progress != 10 {
		t.Errorf("after start: %s/%d, want uploading/10", task.Status, task.Progress)
	}

	task = Apply(task, Event{Kind: EventCredentialIssued, Key: "uploads/1-cat.png"})
	if task.Progress != 30 || task.Key != "uploads/1-cat.png" {
		t.Errorf("after credential: %d/%q, want 30/uploads/1-cat.png", task.Progress, task.Key)
	}

	task = Apply(task, Event{Kind: EventTransferred})
	if task.Progress != 70 {
		t.Errorf("after transfer: %d, want 70", task.Progress)
	}

	task = Apply(task, Event{Kind: EventIndexingStarted})
	if task.Status != StatusIndexing || task.Progress != 80 {
		t.Errorf("after indexing start: %s/%d, want indexing/80", task.Status, task.Progress)
	}

	task = Apply(task, Event{Kind: EventCompleted})
	if task.Status != StatusSuccess || task.Progress != 100 {
		t.Errorf("final: %s/%d, want success/100", task.Status, task.Progress)
	}
}

func TestApply_TerminalStatesAreSticky(t *testing.T) {
	failed := Apply(NewTask("a.png", "image/png", 1), Event{Kind: EventFailed, Err: "boom"})
	if failed.Status != StatusError || failed.Err != "boom" {
		t.Fatalf("unexpected failed task: %+v", failed)
	}

	// A failed task is terminal until removed and re-added; no event revives it.
	after := Apply(failed, Event{Kind: EventStarted})
	if after != failed {
		t.Errorf("event on failed task changed it: %+v", after)
	}

	done := Apply(Apply(NewTask("b.png", "image/png", 1), Event{Kind: EventStarted}), Event{Kind: EventCompleted})
	if got := Apply(done, Event{Kind: EventFailed, Err: "late"}); got != done {
		t.Errorf("event on completed task changed it: %+v", got)
	}
}

func TestNewTask_UniqueIDs(t *testing.T) {
	a := NewTask("same.png", "image/png", 1)
	b := NewTask("same.png", "image/png", 1)
	if a.ID == b.ID {
		t.Errorf("two tasks for the same file must get distinct IDs: %q", a.ID)
	}
	if !strings.HasPrefix(a.ID, "same.png-") {
		t.Errorf("task ID should start with the file name: %q", a.ID)
	}
}

// fakeAPI scripts the coordinator's service calls.
type fakeAPI struct {
	credErr     error
	transferErr error
	indexErr    error

	indexCalls    int
	transferCalls int
}

func (f *fakeAPI) RequestUpload(ctx context.Context, fileName, fileType string) (*client.UploadCredential, error) {
	if f.credErr != nil {
		return nil, f.credErr
	}
	return &client.UploadCredential{
		UploadURL: "https://media.s3.example.com/uploads/1-" + fileName,
		Key:       "uploads/1-" + fileName,
		FileURL:   "https://media.s3.example.com/uploads/1-" + fileName,
	}, nil
}

func (f *fakeAPI) TransferFile(ctx context.Context, uploadURL, contentType string, body io.Reader, size int64) error {
	f.transferCalls++
	return f.transferErr
}

func (f *fakeAPI) IndexFace(ctx context.Context, key, fileName string) (*client.IndexFaceResult, error) {
	f.indexCalls++
	if f.indexErr != nil {
		return nil, f.indexErr
	}
	return &client.IndexFaceResult{Success: true, FacesIndexed: 1}, nil
}

func TestUpload_ImageEndsSuccessAndIndexes(t *testing.T) {
	api := &fakeAPI{}
	c := NewCoordinator(api)

	var seen []Task
	c.OnUpdate = func(t Task) { seen = append(seen, t) }

	task := c.Upload(context.Background(), NewTask("cat.png", "image/png", 2048), strings.NewReader("img"))

	if task.Status != StatusSuccess || task.Progress != 100 {
		t.Errorf("final task %s/%d, want success/100", task.Status, task.Progress)
	}
	if api.indexCalls != 1 {
		t.Errorf("image upload must trigger indexing once, got %d", api.indexCalls)
	}

	// The observer must see the full checkpoint sequence.
	wantProgress := []int{10, 30, 70, 80, 100}
	if len(seen) != len(wantProgress) {
		t.Fatalf("observed %d transitions, want %d", len(seen), len(wantProgress))
	}
	for i, want := range wantProgress {
		if seen[i].Progress != want {
			t.Errorf("transition %d progress = %d, want %d", i, seen[i].Progress, want)
		}
	}
}

func TestUpload_VideoSkipsIndexing(t *testing.T) {
	api := &fakeAPI{}
	task := NewCoordinator(api).Upload(context.Background(), NewTask("clip.mp4", "video/mp4", 4096), strings.NewReader("vid"))

	if task.Status != StatusSuccess {
		t.Errorf("video upload should succeed, got %s (%s)", task.Status, task.Err)
	}
	if api.indexCalls != 0 {
		t.Errorf("video upload must not trigger indexing, got %d calls", api.indexCalls)
	}
}

func TestUpload_MissingMetadataRejectedBeforeCredential(t *testing.T) {
	api := &fakeAPI{}
	task := NewCoordinator(api).Upload(context.Background(), Task{FileName: "x.png"}, strings.NewReader(""))

	if task.Status != StatusError {
		t.Errorf("task without content type must fail, got %s", task.Status)
	}
	if api.transferCalls != 0 {
		t.Error("no transfer may happen when metadata is missing")
	}
}

func TestUpload_CredentialFailure(t *testing.T) {
	api := &fakeAPI{credErr: errors.New("storage not configured")}
	task := NewCoordinator(api).Upload(context.Background(), NewTask("a.png", "image/png", 1), strings.NewReader(""))

	if task.Status != StatusError {
		t.Fatalf("expected error status, got %s", task.Status)
	}
	if !strings.Contains(task.Err, "failed to get upload URL") {
		t.Errorf("error should name the failed step: %q", task.Err)
	}
	if api.transferCalls != 0 {
		t.Error("transfer must not run after credential failure")
	}
}

func TestUpload_TransferFailure(t *testing.T) {
	api := &fakeAPI{transferErr: errors.New("503")}
	task := NewCoordinator(api).Upload(context.Background(), NewTask("a.png", "image/png", 1), strings.NewReader(""))

	if task.Status != StatusError {
		t.Fatalf("expected error status, got %s", task.Status)
	}
	if api.indexCalls != 0 {
		t.Error("indexing must not run after transfer failure")
	}
}

func TestUpload_IndexingFailureIsBestEffort(t *testing.T) {
	api := &fakeAPI{indexErr: errors.New("vision service down")}
	task := NewCoordinator(api).Upload(context.Background(), NewTask("cat.png", "image/png", 1), strings.NewReader(""))

	// The file is safely stored; a vision outage never fails the upload.
	if task.Status != StatusSuccess || task.Progress != 100 {
		t.Errorf("indexing failure must not fail the task: %s/%d (%s)", task.Status, task.Progress, task.Err)
	}
}
