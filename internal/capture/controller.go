package capture

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image/jpeg"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// jpegQuality is fixed so every capture encodes consistently.
const jpegQuality = 85

// Controller owns the camera lifecycle for one capture session:
// Idle → Streaming → Captured → (Idle | Streaming). All transitions go
// through Start, Capture, Reset and Dispose; calls are strictly
// sequential per session.
type Controller struct {
	mu     sync.Mutex
	camera Camera
	stream Stream
	photo  *Photo
	state  State
}

func NewController(camera Camera) *Controller {
	return &Controller{camera: camera}
}

// Start opens the camera with a rear-facing hint. Valid only from Idle.
// On failure the session stays Idle; the caller decides whether to retry.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateIdle {
		return fmt.Errorf("%w: state %s", ErrSessionActive, c.state)
	}
	return c.startLocked(ctx)
}

func (c *Controller) startLocked(ctx context.Context) error {
	stream, err := c.camera.Open(ctx, FacingBack)
	if err != nil {
		return fmt.Errorf("open camera: %w", err)
	}
	c.stream = stream
	c.state = StateStreaming
	return nil
}

// Capture reads the current frame, encodes it as JPEG and releases the
// camera stream (capture implies stop). Valid only while Streaming.
func (c *Controller) Capture(ctx context.Context) (Photo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateStreaming {
		return Photo{}, fmt.Errorf("%w: state %s", ErrNotStreaming, c.state)
	}

	frame, err := c.stream.ReadFrame(ctx)
	if err != nil {
		// Stream stays open; the session remains Streaming.
		return Photo{}, fmt.Errorf("read frame: %w", err)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, frame, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return Photo{}, fmt.Errorf("encode frame: %w", err)
	}

	if err := c.stream.Close(); err != nil {
		slog.Warn("Failed to close camera stream after capture", "error", err)
	}
	c.stream = nil

	photo := Photo{
		ID:      uuid.NewString(),
		JPEG:    buf.Bytes(),
		DataURL: "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()),
		TakenAt: time.Now(),
	}
	c.photo = &photo
	c.state = StateCaptured
	return photo, nil
}

// Reset discards the captured photo and reacquires the camera. Valid only
// from Captured; if the camera cannot be reopened the session is Idle and
// the error returns to the caller.
func (c *Controller) Reset(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateCaptured {
		return fmt.Errorf("%w: state %s", ErrNoPhoto, c.state)
	}
	c.photo = nil
	c.state = StateIdle
	return c.startLocked(ctx)
}

// Dispose releases the camera from any state. Owners must call it on
// teardown; skipping it holds the camera reserved indefinitely.
func (c *Controller) Dispose() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stream != nil {
		if err := c.stream.Close(); err != nil {
			slog.Warn("Failed to close camera stream on dispose", "error", err)
		}
		c.stream = nil
	}
	c.photo = nil
	c.state = StateIdle
}

// State returns the current session state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}
