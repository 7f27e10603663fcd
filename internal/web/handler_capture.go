package web

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/vbonduro/moveassist/internal/camera"
	"github.com/vbonduro/moveassist/internal/capture"
	"github.com/vbonduro/moveassist/internal/domain"
)

type captureResponse struct {
	ID       string           `json:"id"`
	Snapshot capture.Snapshot `json:"snapshot"`
	Notices  []capture.Notice `json:"notices"`
}

type submitResponse struct {
	Box     *domain.Box      `json:"box"`
	Notices []capture.Notice `json:"notices"`
}

type cameraRequest struct {
	Facing string `json:"facing"`
}

func (s *Server) handleCreateCapture(w http.ResponseWriter, _ *http.Request) {
	id, flow := s.sessions.Create()
	s.writeCapture(w, http.StatusCreated, id, flow)
}

func (s *Server) handleGetCapture(w http.ResponseWriter, r *http.Request) {
	id, flow, ok := s.loadSession(w, r)
	if !ok {
		return
	}
	s.writeCapture(w, http.StatusOK, id, flow)
}

func (s *Server) handleDeleteCapture(w http.ResponseWriter, r *http.Request) {
	s.sessions.Delete(chi.URLParam(r, "sid"))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCaptureDetails(w http.ResponseWriter, r *http.Request) {
	id, flow, ok := s.loadSession(w, r)
	if !ok {
		return
	}
	var d capture.Details
	if err := decodeJSON(w, r, 64<<10, &d); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.respondCapture(w, r, id, flow, "set details", flow.SetDetails(d))
}

func (s *Server) handleBeginUpload(w http.ResponseWriter, r *http.Request) {
	id, flow, ok := s.loadSession(w, r)
	if !ok {
		return
	}
	s.respondCapture(w, r, id, flow, "begin upload", flow.BeginUpload())
}

// handleCapturePhoto accepts either a multipart form with a "photo" file or
// the raw image as the request body.
func (s *Server) handleCapturePhoto(w http.ResponseWriter, r *http.Request) {
	id, flow, ok := s.loadSession(w, r)
	if !ok {
		return
	}

	data, err := s.readPhoto(w, r)
	if errors.Is(err, capture.ErrPhotoTooLarge) {
		s.writeFailure(w, r, "upload photo", err)
		return
	}
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.respondCapture(w, r, id, flow, "upload photo", flow.Upload(r.Context(), data))
}

func (s *Server) handleRemoveCapturePhoto(w http.ResponseWriter, r *http.Request) {
	id, flow, ok := s.loadSession(w, r)
	if !ok {
		return
	}
	s.respondCapture(w, r, id, flow, "remove photo", flow.RemovePhoto())
}

func (s *Server) handleOpenCamera(w http.ResponseWriter, r *http.Request) {
	id, flow, ok := s.loadSession(w, r)
	if !ok {
		return
	}
	var req cameraRequest
	if err := decodeJSON(w, r, 4<<10, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	facing, err := camera.ParseFacing(req.Facing)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.respondCapture(w, r, id, flow, "open camera", flow.OpenCamera(r.Context(), facing))
}

func (s *Server) handleCloseCamera(w http.ResponseWriter, r *http.Request) {
	id, flow, ok := s.loadSession(w, r)
	if !ok {
		return
	}
	s.respondCapture(w, r, id, flow, "close camera", flow.CloseCamera())
}

func (s *Server) handleFlipCamera(w http.ResponseWriter, r *http.Request) {
	id, flow, ok := s.loadSession(w, r)
	if !ok {
		return
	}
	s.respondCapture(w, r, id, flow, "flip camera", flow.FlipCamera(r.Context()))
}

func (s *Server) handleCameraCapture(w http.ResponseWriter, r *http.Request) {
	id, flow, ok := s.loadSession(w, r)
	if !ok {
		return
	}
	s.respondCapture(w, r, id, flow, "capture photo", flow.Capture(r.Context()))
}

func (s *Server) handleRetag(w http.ResponseWriter, r *http.Request) {
	id, flow, ok := s.loadSession(w, r)
	if !ok {
		return
	}
	s.respondCapture(w, r, id, flow, "retag", flow.Retag(r.Context()))
}

func (s *Server) handleSuggestRoom(w http.ResponseWriter, r *http.Request) {
	id, flow, ok := s.loadSession(w, r)
	if !ok {
		return
	}
	s.respondCapture(w, r, id, flow, "suggest room", flow.SuggestRoom(r.Context()))
}

func (s *Server) handleApplySuggestion(w http.ResponseWriter, r *http.Request) {
	id, flow, ok := s.loadSession(w, r)
	if !ok {
		return
	}
	s.respondCapture(w, r, id, flow, "apply suggestion", flow.ApplySuggestion())
}

func (s *Server) handleSubmitCapture(w http.ResponseWriter, r *http.Request) {
	_, flow, ok := s.loadSession(w, r)
	if !ok {
		return
	}
	box, err := flow.Submit(r.Context())
	if err != nil {
		s.writeFailure(w, r, "submit capture", err)
		return
	}
	s.writeJSON(w, http.StatusCreated, submitResponse{Box: box, Notices: flow.DrainNotices()})
}

func (s *Server) loadSession(w http.ResponseWriter, r *http.Request) (string, *capture.Flow, bool) {
	id := chi.URLParam(r, "sid")
	flow, ok := s.sessions.Get(id)
	if !ok {
		s.writeError(w, http.StatusNotFound, "capture session not found")
		return "", nil, false
	}
	return id, flow, true
}

// respondCapture reports err if set, otherwise the session state.
func (s *Server) respondCapture(w http.ResponseWriter, r *http.Request, id string, flow *capture.Flow, op string, err error) {
	if err != nil {
		s.writeFailure(w, r, op, err)
		return
	}
	s.writeCapture(w, http.StatusOK, id, flow)
}

func (s *Server) writeCapture(w http.ResponseWriter, status int, id string, flow *capture.Flow) {
	s.writeJSON(w, status, captureResponse{
		ID:       id,
		Snapshot: flow.Snapshot(),
		Notices:  flow.DrainNotices(),
	})
}

// readPhoto returns at most maxPhotoBytes+1 bytes so the flow can report an
// oversized photo itself. A multipart body too large to parse yields
// capture.ErrPhotoTooLarge.
func (s *Server) readPhoto(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	limit := s.maxPhotoBytes + 1
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	if !strings.HasPrefix(mediaType, "multipart/") {
		return io.ReadAll(io.LimitReader(r.Body, limit))
	}

	// The form may carry up to 1 MiB of other fields.
	maxBody := limit + 1<<20
	if r.ContentLength > maxBody {
		return nil, fmt.Errorf("%w: request body over %d bytes", capture.ErrPhotoTooLarge, maxBody)
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, fmt.Errorf("%w: request body over %d bytes", capture.ErrPhotoTooLarge, tooLarge.Limit)
		}
		return nil, errBadForm
	}
	file, _, err := r.FormFile("photo")
	if err != nil {
		return nil, errPhotoRequired
	}
	defer closeWithLog(file, "upload file", s.logger)

	return io.ReadAll(io.LimitReader(file, limit))
}

var (
	errBadForm       = errors.New("failed to parse form")
	errPhotoRequired = errors.New("photo file required")
)
