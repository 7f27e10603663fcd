package camera

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrPermissionDenied means the device refused access. Callers fall back
	// to uploads.
	ErrPermissionDenied = errors.New("camera permission denied")
	ErrUnavailable      = errors.New("camera unavailable")
	ErrStreamClosed     = errors.New("camera stream closed")
)

type Facing string

const (
	FacingBack  Facing = "back"
	FacingFront Facing = "front"
)

// Flip returns the opposite facing.
func (f Facing) Flip() Facing {
	if f == FacingFront {
		return FacingBack
	}
	return FacingFront
}

// ParseFacing accepts "front" and "back" as well as the media-device names
// "user" and "environment". An empty string means back.
func ParseFacing(s string) (Facing, error) {
	switch s {
	case "", "back", "environment":
		return FacingBack, nil
	case "front", "user":
		return FacingFront, nil
	default:
		return "", fmt.Errorf("unknown camera facing %q", s)
	}
}

type Permission string

const (
	PermissionUnknown Permission = "unknown"
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
)

// Device hands out streams. Callers must Close a stream before opening the
// next one.
type Device interface {
	Open(ctx context.Context, facing Facing) (Stream, error)
}

type Stream interface {
	Facing() Facing
	// Frame grabs a still image, already mirrored for front-facing streams.
	Frame(ctx context.Context) (*Frame, error)
	Close() error
}

type Frame struct {
	MIMEType string
	Data     []byte
}
