// Package upload persists captured receipt photos to object storage and
// yields durable URLs, guarding against out-of-order completions.
package upload

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"perfin/internal/capture"
)

const (
	jpegContentType = "image/jpeg"

	// uploadTimeout bounds one storage write. Uploads run on a background
	// context: callers cannot cancel them, only supersede their result.
	uploadTimeout = 30 * time.Second
)

// ErrUploadFailed wraps any transport or storage failure. Uploads are
// never retried automatically; retry means recapturing.
var ErrUploadFailed = errors.New("receipt upload failed")

// ObjectWriter is the object-storage port. Put returns the durable URL of
// the written object.
type ObjectWriter interface {
	Put(ctx context.Context, key string, body []byte, contentType string) (url string, err error)
}

// Result is the outcome of one upload task, tied to its originating
// capture. Stale results belong to superseded captures and carry no UI
// relevance.
type Result struct {
	CaptureID string
	URL       string
	Err       error
	Stale     bool
}

// Task is one in-flight upload. It starts Pending and resolves exactly
// once; Wait blocks until then.
type Task struct {
	CaptureID string
	Key       string

	done   chan struct{}
	result Result
}

func (t *Task) Done() <-chan struct{} { return t.done }

func (t *Task) Wait() Result {
	<-t.done
	return t.result
}

// Pipeline uploads receipt photos asynchronously. Each task is tracked by
// capture identity; only the most recent capture's result is delivered to
// the caller, so a late completion can never overwrite a newer capture's
// state.
type Pipeline struct {
	mu       sync.Mutex
	writer   ObjectWriter
	onResult func(Result)
	latest   string
	timeout  time.Duration
}

// NewPipeline creates a pipeline delivering non-stale results to
// onResult (which may be nil).
func NewPipeline(writer ObjectWriter, onResult func(Result)) *Pipeline {
	return &Pipeline{writer: writer, onResult: onResult, timeout: uploadTimeout}
}

// Supersede marks captureID as the newest capture before its upload is
// issued. Callers that reset their own state for a new capture call this
// inside the same critical section, so an earlier task finishing in the
// gap before Upload resolves stale instead of being delivered.
func (p *Pipeline) Supersede(captureID string) {
	p.mu.Lock()
	p.latest = captureID
	p.mu.Unlock()
}

// Upload starts a task for the photo and returns it immediately. The new
// capture supersedes any prior task's relevance.
func (p *Pipeline) Upload(photo capture.Photo) *Task {
	task := &Task{
		CaptureID: photo.ID,
		Key:       objectKey(photo),
		done:      make(chan struct{}),
	}

	p.mu.Lock()
	p.latest = photo.ID
	p.mu.Unlock()

	go p.run(task, photo.JPEG)
	return task
}

func (p *Pipeline) run(task *Task, body []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	url, err := p.writer.Put(ctx, task.Key, body, jpegContentType)

	res := Result{CaptureID: task.CaptureID, URL: url}
	if err != nil {
		res.URL = ""
		res.Err = fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	p.mu.Lock()
	res.Stale = p.latest != task.CaptureID
	p.mu.Unlock()

	task.result = res
	close(task.done)

	if res.Stale {
		slog.Warn("Discarding stale upload result",
			"capture_id", task.CaptureID,
			"key", task.Key)
		return
	}
	if p.onResult != nil {
		p.onResult(res)
	}
}

// objectKey derives a collision-free key in the receipts namespace from
// the capture timestamp plus a short slice of the capture id.
func objectKey(photo capture.Photo) string {
	suffix := photo.ID
	if len(suffix) > 8 {
		suffix = suffix[:8]
	}
	return fmt.Sprintf("receipts/receipt-%d-%s.jpg", photo.TakenAt.UnixMilli(), suffix)
}
