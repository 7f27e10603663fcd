package snapshot

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/vbonduro/moveassist/internal/camera"
	"github.com/vbonduro/moveassist/internal/imaging"
)

// maxFrameBytes caps a single still pulled from a camera.
const maxFrameBytes = 20 << 20

// SnapshotCamera serves frames from HTTP snapshot endpoints, one URL per
// facing, as exposed by most IP cameras and phone webcam apps.
type SnapshotCamera struct {
	urls   map[camera.Facing]string
	client *http.Client
	logger *slog.Logger
}

func NewSnapshotCamera(backURL, frontURL string, timeout time.Duration, logger *slog.Logger) *SnapshotCamera {
	return &SnapshotCamera{
		urls: map[camera.Facing]string{
			camera.FacingBack:  backURL,
			camera.FacingFront: frontURL,
		},
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// Open probes the endpoint for the facing. 401 and 403 are reported as
// camera.ErrPermissionDenied.
func (c *SnapshotCamera) Open(ctx context.Context, facing camera.Facing) (camera.Stream, error) {
	url := c.urls[facing]
	if url == "" {
		return nil, fmt.Errorf("%w: no %s camera configured", camera.ErrUnavailable, facing)
	}

	resp, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}
	c.closeBody(resp)

	c.logger.Debug("camera stream opened", "facing", facing)
	return &stream{cam: c, url: url, facing: facing}, nil
}

func (c *SnapshotCamera) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", camera.ErrUnavailable, err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		c.closeBody(resp)
		return nil, camera.ErrPermissionDenied
	case resp.StatusCode != http.StatusOK:
		c.closeBody(resp)
		return nil, fmt.Errorf("%w: camera returned status %d", camera.ErrUnavailable, resp.StatusCode)
	}
	return resp, nil
}

func (c *SnapshotCamera) closeBody(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxFrameBytes))
	if err := resp.Body.Close(); err != nil {
		c.logger.Error("failed to close camera response body", "error", err)
	}
}

type stream struct {
	cam    *SnapshotCamera
	url    string
	facing camera.Facing

	mu     sync.Mutex
	closed bool
}

func (s *stream) Facing() camera.Facing {
	return s.facing
}

func (s *stream) Frame(ctx context.Context) (*camera.Frame, error) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return nil, camera.ErrStreamClosed
	}

	resp, err := s.cam.get(ctx, s.url)
	if err != nil {
		return nil, err
	}
	defer s.cam.closeBody(resp)

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFrameBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read frame: %w", err)
	}
	if len(data) > maxFrameBytes {
		return nil, fmt.Errorf("frame larger than %d bytes", maxFrameBytes)
	}

	mimeType, ok := imaging.DetectMIME(data)
	if !ok {
		return nil, imaging.ErrUnsupportedImage
	}

	if s.facing == camera.FacingFront {
		data, err = imaging.MirrorJPEG(data)
		if err != nil {
			return nil, fmt.Errorf("failed to mirror frame: %w", err)
		}
		mimeType = "image/jpeg"
	}
	return &camera.Frame{MIMEType: mimeType, Data: data}, nil
}

func (s *stream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		s.cam.logger.Debug("camera stream closed", "facing", s.facing)
	}
	return nil
}
