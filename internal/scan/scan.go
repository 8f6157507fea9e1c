// Package scan binds the capture controller and the upload pipeline into
// one receipt-scanning flow: acquire camera, take a photo, upload it, and
// keep the resulting URL ready to attach to a transaction draft.
package scan

import (
	"context"
	"log/slog"
	"sync"

	"perfin/internal/capture"
	"perfin/internal/upload"
)

// Status is a snapshot of the scan flow for the user-facing layer.
type Status struct {
	State      string `json:"state"`
	Uploading  bool   `json:"uploading"`
	ReceiptURL string `json:"receiptUrl,omitempty"`
	LastError  string `json:"lastError,omitempty"`
}

// Service owns one capture session and its uploads. All upload results
// are correlated by capture identity; only the newest capture's outcome
// is ever reflected here.
type Service struct {
	controller *capture.Controller
	pipeline   *upload.Pipeline

	mu         sync.Mutex
	closed     bool
	captureID  string
	uploading  bool
	receiptURL string
	lastErr    error
}

func New(camera capture.Camera, writer upload.ObjectWriter) *Service {
	s := &Service{controller: capture.NewController(camera)}
	s.pipeline = upload.NewPipeline(writer, s.handleResult)
	return s
}

// Start acquires the camera, reopening the session if it was closed. A
// reopened session starts fresh; nothing from the previous one survives.
func (s *Service) Start(ctx context.Context) error {
	if err := s.controller.Start(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	s.closed = false
	s.captureID = ""
	s.uploading = false
	s.receiptURL = ""
	s.lastErr = nil
	s.mu.Unlock()
	return nil
}

// Capture takes a photo and begins uploading it in the background. Any
// previous upload's result is superseded. The returned photo carries the
// inline preview; the durable URL arrives via Status once the upload
// resolves.
func (s *Service) Capture(ctx context.Context) (capture.Photo, *upload.Task, error) {
	photo, err := s.controller.Capture(ctx)
	if err != nil {
		return capture.Photo{}, nil, err
	}

	// The new capture supersedes the previous one in the same critical
	// section that resets the state, so an older upload finishing right
	// now can neither be delivered nor land its URL here.
	s.mu.Lock()
	s.captureID = photo.ID
	s.uploading = true
	s.receiptURL = ""
	s.lastErr = nil
	s.pipeline.Supersede(photo.ID)
	s.mu.Unlock()

	task := s.pipeline.Upload(photo)
	return photo, task, nil
}

// Reset discards the captured photo, clears any pending receipt URL and
// reacquires the camera.
func (s *Service) Reset(ctx context.Context) error {
	if err := s.controller.Reset(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	s.captureID = ""
	s.uploading = false
	s.receiptURL = ""
	s.lastErr = nil
	s.mu.Unlock()
	return nil
}

// Close tears the session down and synchronously releases the camera.
// Upload results arriving afterwards are discarded.
func (s *Service) Close() {
	s.controller.Dispose()
	s.mu.Lock()
	s.closed = true
	s.captureID = ""
	s.uploading = false
	s.receiptURL = ""
	s.lastErr = nil
	s.mu.Unlock()
}

// ReceiptURL returns the uploaded receipt URL for the current capture, or
// empty while none has resolved.
func (s *Service) ReceiptURL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.receiptURL
}

// Status reports the session state for user-facing rendering.
func (s *Service) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := Status{
		State:      s.controller.State().String(),
		Uploading:  s.uploading,
		ReceiptURL: s.receiptURL,
	}
	if s.lastErr != nil {
		st.LastError = s.lastErr.Error()
	}
	return st
}

func (s *Service) handleResult(res upload.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		slog.Warn("Dropping upload result for torn-down scan session",
			"capture_id", res.CaptureID)
		return
	}
	if res.CaptureID != s.captureID {
		slog.Warn("Dropping upload result for superseded capture",
			"capture_id", res.CaptureID)
		return
	}

	s.uploading = false
	if res.Err != nil {
		// The session stays Captured; the user may retry by recapturing
		// or reset the scan.
		s.lastErr = res.Err
		slog.Error("Receipt upload failed",
			"capture_id", res.CaptureID,
			"error", res.Err)
		return
	}

	s.receiptURL = res.URL
	slog.Info("Receipt uploaded",
		"capture_id", res.CaptureID,
		"url", res.URL)
}
