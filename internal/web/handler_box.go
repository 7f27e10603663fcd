package web

import (
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/vbonduro/moveassist/internal/domain"
	"github.com/vbonduro/moveassist/internal/imaging"
	"github.com/vbonduro/moveassist/internal/store"
)

// boxRequest is the JSON body for creating or updating a box. Absent fields
// leave the stored value untouched; "photoDataUrl": "" removes the photo.
type boxRequest struct {
	ID                *string       `json:"id"`
	ManualDescription *string       `json:"manualDescription"`
	AssignedRoom      *string       `json:"assignedRoom"`
	SuggestedRoom     *string       `json:"suggestedRoom"`
	AIGeneratedTags   []string      `json:"aiGeneratedTags"`
	PhotoDataURL      *string       `json:"photoDataUrl"`
	Items             []domain.Item `json:"items"`
}

func (b boxRequest) saveInput() store.SaveInput {
	in := store.SaveInput{
		ManualDescription: b.ManualDescription,
		AssignedRoom:      b.AssignedRoom,
		SuggestedRoom:     b.SuggestedRoom,
		AIGeneratedTags:   b.AIGeneratedTags,
		PhotoDataURL:      b.PhotoDataURL,
		Items:             b.Items,
	}
	if b.ID != nil {
		in.ID = *b.ID
	}
	return in
}

type saveResponse struct {
	Box          *domain.Box `json:"box"`
	PhotoDropped bool        `json:"photoDropped"`
}

// labelResponse carries what the print view shows next to the QR code.
type labelResponse struct {
	ID                string    `json:"id"`
	QRCodeValue       string    `json:"qrCodeValue"`
	AssignedRoom      string    `json:"assignedRoom,omitempty"`
	SuggestedRoom     string    `json:"suggestedRoom,omitempty"`
	ManualDescription string    `json:"manualDescription,omitempty"`
	AIGeneratedTags   []string  `json:"aiGeneratedTags"`
	CreatedAt         time.Time `json:"createdAt"`
}

func (s *Server) handleListRooms(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string][]string{"rooms": domain.Rooms})
}

func (s *Server) handleStorageUsage(w http.ResponseWriter, r *http.Request) {
	usage, err := s.boxes.Usage(r.Context())
	if err != nil {
		s.writeFailure(w, r, "storage usage", err)
		return
	}
	s.writeJSON(w, http.StatusOK, usage)
}

// handleListBoxes lists boxes newest first, filtered by the optional "q"
// query parameter.
func (s *Server) handleListBoxes(w http.ResponseWriter, r *http.Request) {
	boxes, err := s.boxes.List(r.Context())
	if err != nil {
		s.writeFailure(w, r, "list boxes", err)
		return
	}
	if query := strings.TrimSpace(r.URL.Query().Get("q")); query != "" {
		boxes = slices.DeleteFunc(boxes, func(b *domain.Box) bool { return !b.Matches(query) })
	}
	s.writeJSON(w, http.StatusOK, map[string][]*domain.Box{"boxes": boxes})
}

func (s *Server) handleCreateBox(w http.ResponseWriter, r *http.Request) {
	var req boxRequest
	if err := decodeJSON(w, r, s.maxBodyBytes(), &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := s.boxes.Save(r.Context(), req.saveInput())
	if err != nil {
		s.writeFailure(w, r, "save box", err)
		return
	}
	s.writeJSON(w, http.StatusCreated, saveResponse{Box: res.Box, PhotoDropped: res.PhotoDropped})
}

func (s *Server) handleGetBox(w http.ResponseWriter, r *http.Request) {
	box, ok := s.loadBox(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, box)
}

func (s *Server) handleUpdateBox(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.loadBox(w, r); !ok {
		return
	}

	var req boxRequest
	if err := decodeJSON(w, r, s.maxBodyBytes(), &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	id := chi.URLParam(r, "id")
	if req.ID != nil && *req.ID != id {
		s.writeError(w, http.StatusBadRequest, "id in body does not match path")
		return
	}

	in := req.saveInput()
	in.ID = id
	res, err := s.boxes.Save(r.Context(), in)
	if err != nil {
		s.writeFailure(w, r, "save box", err)
		return
	}
	s.writeJSON(w, http.StatusOK, saveResponse{Box: res.Box, PhotoDropped: res.PhotoDropped})
}

func (s *Server) handleDeleteBox(w http.ResponseWriter, r *http.Request) {
	if err := s.boxes.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeFailure(w, r, "delete box", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetBoxPhoto(w http.ResponseWriter, r *http.Request) {
	box, ok := s.loadBox(w, r)
	if !ok {
		return
	}
	if box.PhotoDataURL == "" {
		s.writeError(w, http.StatusNotFound, "box has no photo")
		return
	}

	mimeType, data, err := imaging.DecodeDataURL(box.PhotoDataURL)
	if err != nil {
		s.writeFailure(w, r, "decode photo", err)
		return
	}
	w.Header().Set("Content-Type", mimeType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "private, max-age=3600")
	if _, err := w.Write(data); err != nil {
		s.logger.Error("failed to write photo", "box_id", box.ID, "error", err)
	}
}

func (s *Server) handleGetBoxLabel(w http.ResponseWriter, r *http.Request) {
	box, ok := s.loadBox(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, labelResponse{
		ID:                box.ID,
		QRCodeValue:       box.QRCodeValue,
		AssignedRoom:      box.AssignedRoom,
		SuggestedRoom:     box.SuggestedRoom,
		ManualDescription: box.ManualDescription,
		AIGeneratedTags:   box.AIGeneratedTags,
		CreatedAt:         box.CreatedAt,
	})
}

// loadBox fetches the box named in the path, writing 404 when it is missing.
func (s *Server) loadBox(w http.ResponseWriter, r *http.Request) (*domain.Box, bool) {
	id := chi.URLParam(r, "id")
	box, err := s.boxes.Get(r.Context(), id)
	if err != nil {
		s.writeFailure(w, r, "get box", err)
		return nil, false
	}
	if box == nil {
		s.writeError(w, http.StatusNotFound, "box not found")
		return nil, false
	}
	return box, true
}

// maxBodyBytes allows a base64 photo of the configured size plus the record.
func (s *Server) maxBodyBytes() int64 {
	return s.maxPhotoBytes*4/3 + 64<<10
}
