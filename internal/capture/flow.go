package capture

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/vbonduro/moveassist/internal/ai"
	"github.com/vbonduro/moveassist/internal/camera"
	"github.com/vbonduro/moveassist/internal/domain"
	"github.com/vbonduro/moveassist/internal/imaging"
	"github.com/vbonduro/moveassist/internal/store"
)

// DefaultMaxPhotoBytes is the upload limit used when none is configured.
const DefaultMaxPhotoBytes = 5 << 20

var (
	// ErrBusy is returned by Submit while tagging or room suggestion is running.
	ErrBusy          = errors.New("analysis in progress")
	ErrNoImage       = errors.New("no image")
	ErrNoCamera      = errors.New("camera is not live")
	ErrNoSuggestion  = errors.New("no room suggestion")
	ErrPhotoTooLarge = errors.New("photo too large")
	ErrClosed        = errors.New("capture flow is closed")
)

type State string

const (
	StateIdle           State = "idle"
	StateAwaitingUpload State = "awaiting-upload"
	StateCameraLive     State = "camera-live"
	StateImageReady     State = "image-ready"
	StateTagging        State = "tagging"
	StateRoomSuggesting State = "room-suggesting"
	StateReadyToSubmit  State = "ready-to-submit"
)

type NoticeLevel string

const (
	NoticeInfo    NoticeLevel = "info"
	NoticeWarning NoticeLevel = "warning"
)

// Notice is a transient user-facing message.
type Notice struct {
	Level   NoticeLevel `json:"level"`
	Title   string      `json:"title"`
	Message string      `json:"message"`
}

// Saver persists the assembled box. *store.BoxStore satisfies it.
type Saver interface {
	Save(ctx context.Context, in store.SaveInput) (*store.SaveResult, error)
}

// Details carries the user-entered form fields. Nil fields are left as they are.
type Details struct {
	ID                *string `json:"id,omitempty"`
	ManualDescription *string `json:"manualDescription,omitempty"`
	AssignedRoom      *string `json:"assignedRoom,omitempty"`
}

type Snapshot struct {
	State             State             `json:"state"`
	CameraPermission  camera.Permission `json:"cameraPermission"`
	CameraFacing      camera.Facing     `json:"cameraFacing"`
	ID                string            `json:"id,omitempty"`
	ManualDescription string            `json:"manualDescription,omitempty"`
	AssignedRoom      string            `json:"assignedRoom,omitempty"`
	SuggestedRoom     string            `json:"suggestedRoom,omitempty"`
	AIGeneratedTags   []string          `json:"aiGeneratedTags"`
	PhotoDataURL      string            `json:"photoDataUrl,omitempty"`
	Generation        uint64            `json:"generation"`
}

type Options struct {
	Tagger    ai.Tagger
	Suggester ai.Suggester
	// Camera may be nil, in which case OpenCamera falls back to uploads.
	Camera        camera.Device
	Saver         Saver
	Logger        *slog.Logger
	MaxPhotoBytes int64
}

// Flow drives one box capture: acquire an image, tag it, suggest a room, and
// submit the assembled record. All methods are safe for concurrent use. AI
// calls run without holding the lock; each image acquisition bumps the
// generation and results for an older generation are discarded.
type Flow struct {
	tagger        ai.Tagger
	suggester     ai.Suggester
	device        camera.Device
	saver         Saver
	logger        *slog.Logger
	maxPhotoBytes int64

	mu             sync.Mutex
	stream         camera.Stream
	permission     camera.Permission
	facing         camera.Facing
	awaitingUpload bool
	// cameraSeq changes whenever the stream is released, so an Open that
	// finishes after a release is discarded.
	cameraSeq uint64
	photo     string
	// phase is the analysis state of the current photo.
	phase      State
	generation uint64
	tags       []string
	suggestion string
	id         string
	desc       string
	room       string
	notices    []Notice
	closed     bool
}

// maxPhotoBytes returns the configured upload limit or the default.
func (o Options) maxPhotoBytes() int64 {
	if o.MaxPhotoBytes <= 0 {
		return DefaultMaxPhotoBytes
	}
	return o.MaxPhotoBytes
}

func NewFlow(opts Options) *Flow {
	return &Flow{
		tagger:        opts.Tagger,
		suggester:     opts.Suggester,
		device:        opts.Camera,
		saver:         opts.Saver,
		logger:        opts.Logger,
		maxPhotoBytes: opts.maxPhotoBytes(),
		permission:    camera.PermissionUnknown,
		facing:        camera.FacingBack,
		phase:         StateImageReady,
		tags:          []string{},
	}
}

// BeginUpload switches to the upload path, releasing any camera stream.
func (f *Flow) BeginUpload() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrClosed
	}
	f.releaseStream()
	f.awaitingUpload = true
	return nil
}

// Upload accepts raw image bytes and runs the analysis cycle on them.
func (f *Flow) Upload(ctx context.Context, data []byte) error {
	if err := f.checkSize(len(data)); err != nil {
		f.mu.Lock()
		f.notify(NoticeWarning, "File too large", fmt.Sprintf("Please select an image smaller than %dMB.", f.maxPhotoBytes>>20))
		f.mu.Unlock()
		return err
	}
	mimeType, ok := imaging.DetectMIME(data)
	if !ok {
		return imaging.ErrUnsupportedImage
	}
	return f.acquire(ctx, imaging.EncodeDataURL(mimeType, data))
}

// OpenCamera releases any current stream and acquires one with the given
// facing. Denial and other device failures are not returned: they leave a
// notice and put the flow on the upload path.
func (f *Flow) OpenCamera(ctx context.Context, facing camera.Facing) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrClosed
	}
	f.facing = facing
	f.openStream(ctx)
	return nil
}

// FlipCamera toggles the facing and reacquires the stream when it is live.
func (f *Flow) FlipCamera(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrClosed
	}
	f.facing = f.facing.Flip()
	if f.stream != nil {
		f.openStream(ctx)
	}
	return nil
}

func (f *Flow) CloseCamera() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrClosed
	}
	f.releaseStream()
	f.awaitingUpload = false
	return nil
}

// Capture grabs a frame from the live stream, releases the camera and runs
// the analysis cycle on the frame. Frames over the photo limit are rejected
// and the camera stays live.
func (f *Flow) Capture(ctx context.Context) error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return ErrClosed
	}
	stream := f.stream
	f.mu.Unlock()
	if stream == nil {
		return ErrNoCamera
	}

	frame, err := stream.Frame(ctx)

	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return ErrClosed
	}
	if f.stream != stream {
		f.mu.Unlock()
		return ErrNoCamera
	}
	if err != nil {
		f.notify(NoticeWarning, "Error capturing photo", "Camera not ready.")
		f.mu.Unlock()
		return fmt.Errorf("failed to capture frame: %w", err)
	}
	if err := f.checkSize(len(frame.Data)); err != nil {
		f.notify(NoticeWarning, "Photo too large", fmt.Sprintf("The captured photo exceeds %dMB. Try a lower camera resolution.", f.maxPhotoBytes>>20))
		f.mu.Unlock()
		return err
	}
	f.releaseStream()
	f.mu.Unlock()

	return f.acquire(ctx, imaging.EncodeDataURL(frame.MIMEType, frame.Data))
}

// RemovePhoto clears the image and everything derived from it.
func (f *Flow) RemovePhoto() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrClosed
	}
	f.releaseStream()
	f.awaitingUpload = false
	f.generation++
	f.photo = ""
	f.tags = []string{}
	f.suggestion = ""
	f.phase = StateImageReady
	return nil
}

func (f *Flow) SetDetails(d Details) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrClosed
	}

	room := f.room
	if d.AssignedRoom != nil {
		room = ""
		if strings.TrimSpace(*d.AssignedRoom) != "" {
			canonical, ok := domain.CanonicalRoom(*d.AssignedRoom)
			if !ok {
				return fmt.Errorf("%w: unknown room %q", store.ErrInvalidInput, *d.AssignedRoom)
			}
			room = canonical
		}
	}

	if d.ID != nil {
		f.id = strings.TrimSpace(*d.ID)
	}
	if d.ManualDescription != nil {
		f.desc = *d.ManualDescription
	}
	f.room = room
	return nil
}

// Retag reruns the analysis cycle on the current image.
func (f *Flow) Retag(ctx context.Context) error {
	f.mu.Lock()
	photo := f.photo
	closed := f.closed
	f.mu.Unlock()
	if closed {
		return ErrClosed
	}
	if photo == "" {
		return ErrNoImage
	}
	return f.acquire(ctx, photo)
}

// SuggestRoom reruns only the room suggestion for the current tags or, when
// there are none, the manual description.
func (f *Flow) SuggestRoom(ctx context.Context) error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return ErrClosed
	}
	if f.busy() {
		f.mu.Unlock()
		return ErrBusy
	}
	gen := f.generation
	description := f.description()
	if description == "" {
		f.suggestion = ""
		f.mu.Unlock()
		return nil
	}
	if f.photo != "" {
		f.phase = StateRoomSuggesting
	}
	f.mu.Unlock()

	f.suggest(ctx, gen, description)
	return nil
}

// ApplySuggestion copies the suggested room into the assigned room.
func (f *Flow) ApplySuggestion() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrClosed
	}
	if f.suggestion == "" {
		return ErrNoSuggestion
	}
	room, ok := domain.CanonicalRoom(f.suggestion)
	if !ok {
		return fmt.Errorf("%w: suggested room %q is not in the room list", ErrNoSuggestion, f.suggestion)
	}
	f.room = room
	f.notify(NoticeInfo, "Room Applied", room+" has been set as the assigned room.")
	return nil
}

// Submit saves the assembled record and returns the stored box. A photo that
// did not fit in storage leaves a warning notice.
func (f *Flow) Submit(ctx context.Context) (*domain.Box, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil, ErrClosed
	}
	if f.busy() {
		return nil, ErrBusy
	}

	desc, room, suggestion := f.desc, f.room, f.suggestion
	in := store.SaveInput{
		ID:                f.id,
		ManualDescription: &desc,
		AssignedRoom:      &room,
		SuggestedRoom:     &suggestion,
		AIGeneratedTags:   slices.Clone(f.tags),
		Items:             []domain.Item{},
	}
	// An empty photo clears any photo stored under the same id.
	photo := f.photo
	in.PhotoDataURL = &photo

	existing := f.id != ""
	res, err := f.saver.Save(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("failed to save box: %w", err)
	}

	if res.PhotoDropped {
		f.notify(NoticeWarning, "Storage full", "The box was saved without its photo because storage is full.")
	}
	verb, title := "saved", "Box Added!"
	if existing {
		verb, title = "updated", "Box Updated!"
	}
	f.notify(NoticeInfo, title, fmt.Sprintf("Box #%s has been successfully %s.", shortID(res.Box.ID), verb))

	// Later submits update the same record.
	f.id = res.Box.ID
	return res.Box, nil
}

func (f *Flow) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return Snapshot{
		State:             f.state(),
		CameraPermission:  f.permission,
		CameraFacing:      f.facing,
		ID:                f.id,
		ManualDescription: f.desc,
		AssignedRoom:      f.room,
		SuggestedRoom:     f.suggestion,
		AIGeneratedTags:   slices.Clone(f.tags),
		PhotoDataURL:      f.photo,
		Generation:        f.generation,
	}
}

// DrainNotices returns pending notices and clears them.
func (f *Flow) DrainNotices() []Notice {
	f.mu.Lock()
	defer f.mu.Unlock()
	notices := f.notices
	f.notices = nil
	if notices == nil {
		return []Notice{}
	}
	return notices
}

// Close releases the camera and drops any in-flight analysis.
func (f *Flow) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.releaseStream()
	f.generation++
	f.closed = true
	return nil
}

// acquire installs a new image and runs tagging then room suggestion.
func (f *Flow) acquire(ctx context.Context, dataURL string) error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return ErrClosed
	}
	f.releaseStream()
	f.awaitingUpload = false
	f.generation++
	gen := f.generation
	f.photo = dataURL
	f.tags = []string{}
	f.suggestion = ""
	f.phase = StateTagging
	f.mu.Unlock()

	tags, err := f.tagger.Tag(ctx, dataURL)

	f.mu.Lock()
	if gen != f.generation {
		f.mu.Unlock()
		f.logger.Debug("discarding stale tagging result", "generation", gen)
		return nil
	}
	if err != nil {
		f.logger.Warn("tagging failed", "error", err)
		f.phase = StateImageReady
		f.notify(NoticeWarning, "AI Tagging Failed", "Could not generate tags for the image. Please try again or add manually.")
		f.mu.Unlock()
		return nil
	}
	if tags == nil {
		tags = []string{}
	}
	f.tags = tags
	f.notify(NoticeInfo, "AI Tagging Complete", fmt.Sprintf("%d tags generated.", len(tags)))

	description := f.description()
	if description == "" {
		f.phase = StateReadyToSubmit
		f.mu.Unlock()
		return nil
	}
	f.phase = StateRoomSuggesting
	f.mu.Unlock()

	f.suggest(ctx, gen, description)
	return nil
}

func (f *Flow) suggest(ctx context.Context, gen uint64, description string) {
	room, err := f.suggester.SuggestRoom(ctx, description)

	f.mu.Lock()
	defer f.mu.Unlock()
	if gen != f.generation {
		f.logger.Debug("discarding stale room suggestion", "generation", gen)
		return
	}
	if f.photo != "" {
		f.phase = StateReadyToSubmit
	}
	if err != nil || room == "" {
		f.logger.Warn("room suggestion failed", "error", err)
		f.suggestion = ""
		f.notify(NoticeWarning, "AI Room Suggestion Failed", "Could not suggest a room. Please assign manually.")
		return
	}
	f.suggestion = room
	f.notify(NoticeInfo, "AI Room Suggestion", "Suggested room: "+room+".")
}

// description is the text sent for room suggestion: the comma-joined tags,
// else the manual description. Callers hold f.mu.
func (f *Flow) description() string {
	if len(f.tags) > 0 {
		return strings.Join(f.tags, ", ")
	}
	return strings.TrimSpace(f.desc)
}

// openStream replaces the current stream. Callers hold f.mu; it is released
// while the device opens and held again on return.
func (f *Flow) openStream(ctx context.Context) {
	f.releaseStream()

	if f.device == nil {
		f.awaitingUpload = true
		f.notify(NoticeWarning, "Camera Unavailable", "No camera is configured. Please upload a photo instead.")
		return
	}

	var (
		s   camera.Stream
		err error
	)
	for {
		seq, facing := f.cameraSeq, f.facing
		f.mu.Unlock()
		s, err = f.device.Open(ctx, facing)
		f.mu.Lock()

		if f.closed || seq != f.cameraSeq {
			f.discardStream(s)
			return
		}
		if err != nil || facing == f.facing {
			break
		}
		// Flipped while opening.
		f.discardStream(s)
	}

	switch {
	case errors.Is(err, camera.ErrPermissionDenied):
		f.permission = camera.PermissionDenied
		f.awaitingUpload = true
		f.logger.Warn("camera permission denied", "facing", f.facing)
		f.notify(NoticeWarning, "Camera Access Denied", "Could not access the specified camera. Please check permissions or try another camera type.")
	case err != nil:
		f.awaitingUpload = true
		f.logger.Warn("failed to open camera", "facing", f.facing, "error", err)
		f.notify(NoticeWarning, "Camera Unavailable", "Could not start the camera. Please upload a photo instead.")
	default:
		f.stream = s
		f.permission = camera.PermissionGranted
		f.awaitingUpload = false
	}
}

// releaseStream closes the live stream, if any, and invalidates pending
// opens. Callers hold f.mu.
func (f *Flow) releaseStream() {
	f.cameraSeq++
	f.discardStream(f.stream)
	f.stream = nil
}

func (f *Flow) discardStream(s camera.Stream) {
	if s == nil {
		return
	}
	if err := s.Close(); err != nil {
		f.logger.Error("failed to close camera stream", "error", err)
	}
}

func (f *Flow) checkSize(n int) error {
	if int64(n) > f.maxPhotoBytes {
		return fmt.Errorf("%w: %d bytes, limit %d", ErrPhotoTooLarge, n, f.maxPhotoBytes)
	}
	return nil
}

// busy reports whether analysis of the current photo is still running.
// Callers hold f.mu.
func (f *Flow) busy() bool {
	return f.photo != "" && (f.phase == StateTagging || f.phase == StateRoomSuggesting)
}

// state derives the externally visible state. Callers hold f.mu.
func (f *Flow) state() State {
	switch {
	case f.stream != nil:
		return StateCameraLive
	case f.awaitingUpload:
		return StateAwaitingUpload
	case f.photo == "":
		return StateIdle
	default:
		return f.phase
	}
}

// notify queues a notice. Callers hold f.mu.
func (f *Flow) notify(level NoticeLevel, title, message string) {
	f.notices = append(f.notices, Notice{Level: level, Title: title, Message: message})
}

func shortID(id string) string {
	if len(id) > 6 {
		return id[:6]
	}
	return id
}
