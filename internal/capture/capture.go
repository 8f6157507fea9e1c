// Package capture manages exclusive access to a camera device and the
// acquisition of still receipt photos.
package capture

import (
	"context"
	"errors"
	"image"
	"time"
)

// Facing is a preferred-facing hint passed to the camera. Rear cameras
// photograph receipts better, but the hint is not a hard requirement.
type Facing string

const (
	FacingBack  Facing = "environment"
	FacingFront Facing = "user"
)

var (
	// ErrPermissionDenied means the user or OS denied camera access.
	ErrPermissionDenied = errors.New("camera permission denied")

	// ErrNoDevice means no compatible camera device exists.
	ErrNoDevice = errors.New("no usable camera device")

	// ErrNotStreaming rejects a capture outside the Streaming state.
	ErrNotStreaming = errors.New("no active camera stream")

	// ErrNoPhoto rejects a reset without a captured photo.
	ErrNoPhoto = errors.New("no captured photo")

	// ErrSessionActive rejects a start while a session is already open.
	ErrSessionActive = errors.New("capture session already active")
)

// Stream is an open camera stream delivering live frames. Exactly one
// stream may be open per controller.
type Stream interface {
	ReadFrame(ctx context.Context) (image.Image, error)
	Close() error
}

// Camera is the device port. Implementations map their native failure
// modes onto ErrPermissionDenied and ErrNoDevice.
type Camera interface {
	Open(ctx context.Context, facing Facing) (Stream, error)
}

// State is the capture session state.
type State int

const (
	StateIdle State = iota
	StateStreaming
	StateCaptured
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStreaming:
		return "streaming"
	case StateCaptured:
		return "captured"
	}
	return "unknown"
}

// Photo is one captured still: encoded bytes plus an inline previewable
// representation. ID ties later upload results back to this capture.
type Photo struct {
	ID      string
	JPEG    []byte
	DataURL string
	TakenAt time.Time
}
