package capture

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/moveassist/internal/camera"
	"github.com/vbonduro/moveassist/internal/imaging"
	"github.com/vbonduro/moveassist/internal/medium/memory"
	"github.com/vbonduro/moveassist/internal/store"
)

var (
	jpegA = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x01}
	jpegB = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x02}
)

type mockTagger struct{ mock.Mock }

func (m *mockTagger) Tag(ctx context.Context, photoDataURL string) ([]string, error) {
	args := m.Called(ctx, photoDataURL)
	tags, _ := args.Get(0).([]string)
	return tags, args.Error(1)
}

type mockSuggester struct{ mock.Mock }

func (m *mockSuggester) SuggestRoom(ctx context.Context, description string) (string, error) {
	args := m.Called(ctx, description)
	return args.String(0), args.Error(1)
}

type fakeDevice struct {
	mu        sync.Mutex
	deny      bool
	frame     []byte
	active    int
	maxActive int
	opened    []camera.Facing
}

func (d *fakeDevice) Open(_ context.Context, facing camera.Facing) (camera.Stream, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.deny {
		return nil, camera.ErrPermissionDenied
	}
	d.active++
	d.maxActive = max(d.maxActive, d.active)
	d.opened = append(d.opened, facing)
	return &fakeStream{dev: d, facing: facing}, nil
}

func (d *fakeDevice) activeStreams() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.active
}

type fakeStream struct {
	dev    *fakeDevice
	facing camera.Facing
	closed bool
}

func (s *fakeStream) Facing() camera.Facing { return s.facing }

func (s *fakeStream) Frame(context.Context) (*camera.Frame, error) {
	s.dev.mu.Lock()
	defer s.dev.mu.Unlock()
	if s.closed {
		return nil, camera.ErrStreamClosed
	}
	return &camera.Frame{MIMEType: "image/jpeg", Data: s.dev.frame}, nil
}

// slowDevice blocks in Open and Frame until release is closed.
type slowDevice struct {
	fakeDevice
	entered chan struct{}
	release chan struct{}
}

func (d *slowDevice) Open(ctx context.Context, facing camera.Facing) (camera.Stream, error) {
	d.entered <- struct{}{}
	<-d.release
	s, err := d.fakeDevice.Open(ctx, facing)
	if err != nil {
		return nil, err
	}
	return &slowStream{Stream: s, dev: d}, nil
}

type slowStream struct {
	camera.Stream
	dev *slowDevice
}

func (s *slowStream) Frame(ctx context.Context) (*camera.Frame, error) {
	s.dev.entered <- struct{}{}
	<-s.dev.release
	return s.Stream.Frame(ctx)
}

func (s *fakeStream) Close() error {
	s.dev.mu.Lock()
	defer s.dev.mu.Unlock()
	if !s.closed {
		s.closed = true
		s.dev.active--
	}
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type testFlow struct {
	*Flow
	tagger    *mockTagger
	suggester *mockSuggester
	store     *store.BoxStore
}

func newTestFlow(t *testing.T, device camera.Device, quota int64) *testFlow {
	t.Helper()
	boxes, err := store.Open(context.Background(), memory.NewMemoryMedium(quota), discardLogger())
	require.NoError(t, err)

	tf := &testFlow{tagger: &mockTagger{}, suggester: &mockSuggester{}, store: boxes}
	opts := Options{
		Tagger:    tf.tagger,
		Suggester: tf.suggester,
		Camera:    device,
		Saver:     boxes,
		Logger:    discardLogger(),
	}
	tf.Flow = NewFlow(opts)
	t.Cleanup(func() {
		_ = tf.Flow.Close()
		_ = boxes.Close()
	})
	return tf
}

func dataURL(b []byte) string {
	return imaging.EncodeDataURL("image/jpeg", b)
}

func TestFlowUploadTagsAndSuggests(t *testing.T) {
	tf := newTestFlow(t, nil, 0)
	ctx := context.Background()

	tf.tagger.On("Tag", mock.Anything, dataURL(jpegA)).Return([]string{"books", "lamp"}, nil)
	tf.suggester.On("SuggestRoom", mock.Anything, "books, lamp").Return("Office", nil)

	require.NoError(t, tf.BeginUpload())
	assert.Equal(t, StateAwaitingUpload, tf.Snapshot().State)

	require.NoError(t, tf.Upload(ctx, jpegA))

	snap := tf.Snapshot()
	assert.Equal(t, StateReadyToSubmit, snap.State)
	assert.Equal(t, []string{"books", "lamp"}, snap.AIGeneratedTags)
	assert.Equal(t, "Office", snap.SuggestedRoom)
	assert.Equal(t, dataURL(jpegA), snap.PhotoDataURL)

	notices := tf.DrainNotices()
	require.Len(t, notices, 2)
	assert.Equal(t, "AI Tagging Complete", notices[0].Title)
	assert.Equal(t, "AI Room Suggestion", notices[1].Title)
	assert.Empty(t, tf.DrainNotices())

	tf.tagger.AssertExpectations(t)
	tf.suggester.AssertExpectations(t)
}

func TestFlowSubmitAssemblesRecord(t *testing.T) {
	tf := newTestFlow(t, nil, 0)
	ctx := context.Background()

	tf.tagger.On("Tag", mock.Anything, mock.Anything).Return([]string{"mugs"}, nil)
	tf.suggester.On("SuggestRoom", mock.Anything, "mugs").Return("kitchen", nil)

	require.NoError(t, tf.Upload(ctx, jpegA))
	require.NoError(t, tf.SetDetails(Details{ManualDescription: strPtr("fragile")}))
	require.NoError(t, tf.ApplySuggestion())

	box, err := tf.Submit(ctx)
	require.NoError(t, err)
	assert.Equal(t, box.ID, box.QRCodeValue)
	assert.Equal(t, "fragile", box.ManualDescription)
	assert.Equal(t, "Kitchen", box.AssignedRoom)
	assert.Equal(t, "kitchen", box.SuggestedRoom)
	assert.Equal(t, []string{"mugs"}, box.AIGeneratedTags)
	assert.Empty(t, box.Items)
	assert.Equal(t, dataURL(jpegA), box.PhotoDataURL)

	stored, err := tf.store.Get(ctx, box.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, dataURL(jpegA), stored.PhotoDataURL)

	// A second submit updates the same record.
	require.NoError(t, tf.SetDetails(Details{ManualDescription: strPtr("very fragile")}))
	again, err := tf.Submit(ctx)
	require.NoError(t, err)
	assert.Equal(t, box.ID, again.ID)

	boxes, err := tf.store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, boxes, 1)
}

func TestFlowSubmitWithoutPhoto(t *testing.T) {
	tf := newTestFlow(t, nil, 0)

	require.NoError(t, tf.SetDetails(Details{ID: strPtr("box-42"), ManualDescription: strPtr("books")}))
	box, err := tf.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "box-42", box.ID)
	assert.Empty(t, box.PhotoDataURL)
	assert.Equal(t, StateIdle, tf.Snapshot().State)
}

func TestFlowTaggingFailureIsNonFatal(t *testing.T) {
	tf := newTestFlow(t, nil, 0)

	tf.tagger.On("Tag", mock.Anything, mock.Anything).Return(nil, errors.New("model offline"))

	require.NoError(t, tf.Upload(context.Background(), jpegA))

	snap := tf.Snapshot()
	assert.Equal(t, StateImageReady, snap.State)
	assert.Empty(t, snap.AIGeneratedTags)
	assert.Empty(t, snap.SuggestedRoom)

	notices := tf.DrainNotices()
	require.Len(t, notices, 1)
	assert.Equal(t, NoticeWarning, notices[0].Level)
	assert.Equal(t, "AI Tagging Failed", notices[0].Title)

	tf.suggester.AssertNotCalled(t, "SuggestRoom", mock.Anything, mock.Anything)

	// The user can still submit manually.
	_, err := tf.Submit(context.Background())
	assert.NoError(t, err)
}

func TestFlowSkipsSuggestionWithoutDescription(t *testing.T) {
	tf := newTestFlow(t, nil, 0)

	tf.tagger.On("Tag", mock.Anything, mock.Anything).Return([]string{}, nil)

	require.NoError(t, tf.Upload(context.Background(), jpegA))

	snap := tf.Snapshot()
	assert.Equal(t, StateReadyToSubmit, snap.State)
	assert.Empty(t, snap.SuggestedRoom)
	tf.suggester.AssertNotCalled(t, "SuggestRoom", mock.Anything, mock.Anything)

	require.NoError(t, tf.SuggestRoom(context.Background()))
	tf.suggester.AssertNotCalled(t, "SuggestRoom", mock.Anything, mock.Anything)
}

func TestFlowFallsBackToManualDescription(t *testing.T) {
	tf := newTestFlow(t, nil, 0)

	require.NoError(t, tf.SetDetails(Details{ManualDescription: strPtr("  garden tools ")}))
	tf.tagger.On("Tag", mock.Anything, mock.Anything).Return([]string{}, nil)
	tf.suggester.On("SuggestRoom", mock.Anything, "garden tools").Return("Garage", nil)

	require.NoError(t, tf.Upload(context.Background(), jpegA))

	assert.Equal(t, "Garage", tf.Snapshot().SuggestedRoom)
	tf.suggester.AssertExpectations(t)
}

func TestFlowSuggestionFailureIsNonFatal(t *testing.T) {
	tf := newTestFlow(t, nil, 0)

	tf.tagger.On("Tag", mock.Anything, mock.Anything).Return([]string{"books"}, nil)
	tf.suggester.On("SuggestRoom", mock.Anything, "books").Return("", errors.New("timeout"))

	require.NoError(t, tf.Upload(context.Background(), jpegA))

	snap := tf.Snapshot()
	assert.Equal(t, StateReadyToSubmit, snap.State)
	assert.Equal(t, []string{"books"}, snap.AIGeneratedTags)
	assert.Empty(t, snap.SuggestedRoom)

	notices := tf.DrainNotices()
	require.Len(t, notices, 2)
	assert.Equal(t, "AI Room Suggestion Failed", notices[1].Title)
}

func TestFlowDiscardsStaleResults(t *testing.T) {
	tf := newTestFlow(t, nil, 0)
	ctx := context.Background()

	started := make(chan struct{})
	release := make(chan struct{})
	tf.tagger.On("Tag", mock.Anything, dataURL(jpegA)).
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return([]string{"old"}, nil)
	tf.tagger.On("Tag", mock.Anything, dataURL(jpegB)).Return([]string{"new"}, nil)
	tf.suggester.On("SuggestRoom", mock.Anything, "new").Return("Office", nil)

	done := make(chan error)
	go func() { done <- tf.Upload(ctx, jpegA) }()
	<-started

	require.NoError(t, tf.Upload(ctx, jpegB))
	close(release)
	require.NoError(t, <-done)

	snap := tf.Snapshot()
	assert.Equal(t, []string{"new"}, snap.AIGeneratedTags)
	assert.Equal(t, "Office", snap.SuggestedRoom)
	assert.Equal(t, dataURL(jpegB), snap.PhotoDataURL)
	assert.Equal(t, StateReadyToSubmit, snap.State)
	tf.suggester.AssertNotCalled(t, "SuggestRoom", mock.Anything, "old")
}

func TestFlowSubmitWhileBusy(t *testing.T) {
	tf := newTestFlow(t, nil, 0)
	ctx := context.Background()

	started := make(chan struct{})
	release := make(chan struct{})
	tf.tagger.On("Tag", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return([]string{}, nil)

	done := make(chan error)
	go func() { done <- tf.Upload(ctx, jpegA) }()
	<-started

	assert.Equal(t, StateTagging, tf.Snapshot().State)
	_, err := tf.Submit(ctx)
	assert.ErrorIs(t, err, ErrBusy)
	assert.ErrorIs(t, tf.SuggestRoom(ctx), ErrBusy)

	close(release)
	require.NoError(t, <-done)

	_, err = tf.Submit(ctx)
	assert.NoError(t, err)
}

func TestFlowUploadValidation(t *testing.T) {
	tf := newTestFlow(t, nil, 0)
	ctx := context.Background()

	err := tf.Upload(ctx, make([]byte, DefaultMaxPhotoBytes+1))
	assert.ErrorIs(t, err, ErrPhotoTooLarge)
	notices := tf.DrainNotices()
	require.Len(t, notices, 1)
	assert.Equal(t, "File too large", notices[0].Title)

	err = tf.Upload(ctx, []byte("%PDF-1.4"))
	assert.ErrorIs(t, err, imaging.ErrUnsupportedImage)

	assert.Equal(t, StateIdle, tf.Snapshot().State)
	tf.tagger.AssertNotCalled(t, "Tag", mock.Anything, mock.Anything)
}

func TestFlowCameraCapture(t *testing.T) {
	device := &fakeDevice{frame: jpegB}
	tf := newTestFlow(t, device, 0)
	ctx := context.Background()

	tf.tagger.On("Tag", mock.Anything, dataURL(jpegB)).Return([]string{"shoes"}, nil)
	tf.suggester.On("SuggestRoom", mock.Anything, "shoes").Return("Master Bedroom", nil)

	require.NoError(t, tf.OpenCamera(ctx, camera.FacingBack))
	snap := tf.Snapshot()
	assert.Equal(t, StateCameraLive, snap.State)
	assert.Equal(t, camera.PermissionGranted, snap.CameraPermission)

	require.NoError(t, tf.FlipCamera(ctx))
	assert.Equal(t, camera.FacingFront, tf.Snapshot().CameraFacing)
	assert.Equal(t, 1, device.activeStreams())

	require.NoError(t, tf.Capture(ctx))
	assert.Equal(t, 0, device.activeStreams())
	assert.Equal(t, 1, device.maxActive)
	assert.Equal(t, []camera.Facing{camera.FacingBack, camera.FacingFront}, device.opened)

	snap = tf.Snapshot()
	assert.Equal(t, StateReadyToSubmit, snap.State)
	assert.Equal(t, "Master Bedroom", snap.SuggestedRoom)
}

func TestFlowFlipWhileClosedOnlyTogglesFacing(t *testing.T) {
	device := &fakeDevice{}
	tf := newTestFlow(t, device, 0)

	require.NoError(t, tf.FlipCamera(context.Background()))
	assert.Equal(t, camera.FacingFront, tf.Snapshot().CameraFacing)
	assert.Empty(t, device.opened)
}

func TestFlowCloseCameraReturnsToImage(t *testing.T) {
	device := &fakeDevice{frame: jpegA}
	tf := newTestFlow(t, device, 0)
	ctx := context.Background()

	tf.tagger.On("Tag", mock.Anything, mock.Anything).Return([]string{}, nil)
	require.NoError(t, tf.Upload(ctx, jpegA))

	require.NoError(t, tf.OpenCamera(ctx, camera.FacingBack))
	assert.Equal(t, StateCameraLive, tf.Snapshot().State)

	require.NoError(t, tf.CloseCamera())
	assert.Equal(t, StateReadyToSubmit, tf.Snapshot().State)
	assert.Equal(t, 0, device.activeStreams())
}

func TestFlowCameraDeniedFallsBackToUpload(t *testing.T) {
	tf := newTestFlow(t, &fakeDevice{deny: true}, 0)

	require.NoError(t, tf.OpenCamera(context.Background(), camera.FacingBack))

	snap := tf.Snapshot()
	assert.Equal(t, StateAwaitingUpload, snap.State)
	assert.Equal(t, camera.PermissionDenied, snap.CameraPermission)

	notices := tf.DrainNotices()
	require.Len(t, notices, 1)
	assert.Equal(t, "Camera Access Denied", notices[0].Title)

	assert.ErrorIs(t, tf.Capture(context.Background()), ErrNoCamera)
}

func TestFlowWithoutCameraFallsBackToUpload(t *testing.T) {
	tf := newTestFlow(t, nil, 0)

	require.NoError(t, tf.OpenCamera(context.Background(), camera.FacingBack))
	assert.Equal(t, StateAwaitingUpload, tf.Snapshot().State)
	assert.Len(t, tf.DrainNotices(), 1)
}

func TestFlowRemovePhoto(t *testing.T) {
	tf := newTestFlow(t, nil, 0)
	ctx := context.Background()

	tf.tagger.On("Tag", mock.Anything, mock.Anything).Return([]string{"books"}, nil)
	tf.suggester.On("SuggestRoom", mock.Anything, mock.Anything).Return("Office", nil)
	require.NoError(t, tf.Upload(ctx, jpegA))

	require.NoError(t, tf.RemovePhoto())

	snap := tf.Snapshot()
	assert.Equal(t, StateIdle, snap.State)
	assert.Empty(t, snap.PhotoDataURL)
	assert.Empty(t, snap.AIGeneratedTags)
	assert.Empty(t, snap.SuggestedRoom)

	assert.ErrorIs(t, tf.Retag(ctx), ErrNoImage)
}

func TestFlowRetag(t *testing.T) {
	tf := newTestFlow(t, nil, 0)
	ctx := context.Background()

	tf.tagger.On("Tag", mock.Anything, mock.Anything).Return([]string{"books"}, nil).Once()
	tf.tagger.On("Tag", mock.Anything, mock.Anything).Return([]string{"books", "vase"}, nil).Once()
	tf.suggester.On("SuggestRoom", mock.Anything, mock.Anything).Return("Office", nil)

	require.NoError(t, tf.Upload(ctx, jpegA))
	gen := tf.Snapshot().Generation

	require.NoError(t, tf.Retag(ctx))
	snap := tf.Snapshot()
	assert.Equal(t, []string{"books", "vase"}, snap.AIGeneratedTags)
	assert.Greater(t, snap.Generation, gen)
	tf.suggester.AssertCalled(t, "SuggestRoom", mock.Anything, "books, vase")
}

func TestFlowDetailsValidation(t *testing.T) {
	tf := newTestFlow(t, nil, 0)

	err := tf.SetDetails(Details{AssignedRoom: strPtr("Dungeon")})
	assert.ErrorIs(t, err, store.ErrInvalidInput)

	require.NoError(t, tf.SetDetails(Details{AssignedRoom: strPtr("bedroom 2")}))
	assert.Equal(t, "Bedroom 2", tf.Snapshot().AssignedRoom)

	require.NoError(t, tf.SetDetails(Details{AssignedRoom: strPtr("")}))
	assert.Empty(t, tf.Snapshot().AssignedRoom)
}

func TestFlowApplySuggestion(t *testing.T) {
	tf := newTestFlow(t, nil, 0)

	assert.ErrorIs(t, tf.ApplySuggestion(), ErrNoSuggestion)

	tf.tagger.On("Tag", mock.Anything, mock.Anything).Return([]string{"gnome"}, nil)
	tf.suggester.On("SuggestRoom", mock.Anything, "gnome").Return("Garden Shed", nil)
	require.NoError(t, tf.Upload(context.Background(), jpegA))

	assert.ErrorIs(t, tf.ApplySuggestion(), ErrNoSuggestion)
	assert.Empty(t, tf.Snapshot().AssignedRoom)
}

func TestFlowResubmitAfterRemovePhotoClearsStoredPhoto(t *testing.T) {
	tf := newTestFlow(t, nil, 0)
	ctx := context.Background()

	tf.tagger.On("Tag", mock.Anything, mock.Anything).Return([]string{"books"}, nil)
	tf.suggester.On("SuggestRoom", mock.Anything, mock.Anything).Return("Office", nil)
	require.NoError(t, tf.Upload(ctx, jpegA))

	box, err := tf.Submit(ctx)
	require.NoError(t, err)
	require.Equal(t, dataURL(jpegA), box.PhotoDataURL)

	require.NoError(t, tf.RemovePhoto())
	_, err = tf.Submit(ctx)
	require.NoError(t, err)

	stored, err := tf.store.Get(ctx, box.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Empty(t, stored.PhotoDataURL)
	assert.Empty(t, stored.AIGeneratedTags)
}

func TestFlowCaptureRejectsOversizedFrame(t *testing.T) {
	big := append([]byte{0xFF, 0xD8, 0xFF, 0xE0}, make([]byte, DefaultMaxPhotoBytes)...)
	device := &fakeDevice{frame: big}
	tf := newTestFlow(t, device, 0)
	ctx := context.Background()

	require.NoError(t, tf.OpenCamera(ctx, camera.FacingBack))
	tf.DrainNotices()

	assert.ErrorIs(t, tf.Capture(ctx), ErrPhotoTooLarge)
	tf.tagger.AssertNotCalled(t, "Tag", mock.Anything, mock.Anything)

	snap := tf.Snapshot()
	assert.Equal(t, StateCameraLive, snap.State)
	assert.Empty(t, snap.PhotoDataURL)

	notices := tf.DrainNotices()
	require.Len(t, notices, 1)
	assert.Equal(t, "Photo too large", notices[0].Title)
}

func TestFlowSlowCameraDoesNotBlockSnapshot(t *testing.T) {
	device := &slowDevice{
		fakeDevice: fakeDevice{frame: jpegB},
		entered:    make(chan struct{}),
		release:    make(chan struct{}),
	}
	tf := newTestFlow(t, device, 0)
	ctx := context.Background()

	tf.tagger.On("Tag", mock.Anything, dataURL(jpegB)).Return([]string{}, nil)

	done := make(chan error, 1)
	go func() { done <- tf.OpenCamera(ctx, camera.FacingBack) }()
	<-device.entered

	assert.Equal(t, StateIdle, tf.Snapshot().State)
	close(device.release)
	require.NoError(t, <-done)
	assert.Equal(t, StateCameraLive, tf.Snapshot().State)

	device.release = make(chan struct{})
	go func() { done <- tf.Capture(ctx) }()
	<-device.entered

	assert.Equal(t, StateCameraLive, tf.Snapshot().State)
	close(device.release)
	require.NoError(t, <-done)
	assert.Equal(t, StateReadyToSubmit, tf.Snapshot().State)
}

func TestFlowCloseDuringCameraOpenDiscardsStream(t *testing.T) {
	device := &slowDevice{
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	tf := newTestFlow(t, device, 0)

	done := make(chan error, 1)
	go func() { done <- tf.OpenCamera(context.Background(), camera.FacingBack) }()
	<-device.entered

	require.NoError(t, tf.Close())
	close(device.release)
	require.NoError(t, <-done)

	assert.Equal(t, 0, device.activeStreams())
	assert.Equal(t, StateIdle, tf.Snapshot().State)
}

func TestFlowPhotoDroppedNotice(t *testing.T) {
	tf := newTestFlow(t, nil, 2000)
	ctx := context.Background()

	big := append([]byte{0xFF, 0xD8, 0xFF, 0xE0}, make([]byte, 4000)...)
	tf.tagger.On("Tag", mock.Anything, mock.Anything).Return([]string{}, nil)
	require.NoError(t, tf.Upload(ctx, big))
	tf.DrainNotices()

	box, err := tf.Submit(ctx)
	require.NoError(t, err)
	assert.Empty(t, box.PhotoDataURL)

	notices := tf.DrainNotices()
	require.Len(t, notices, 2)
	assert.Equal(t, NoticeWarning, notices[0].Level)
	assert.Equal(t, "Storage full", notices[0].Title)
}

func TestFlowClose(t *testing.T) {
	device := &fakeDevice{}
	tf := newTestFlow(t, device, 0)
	ctx := context.Background()

	require.NoError(t, tf.OpenCamera(ctx, camera.FacingBack))
	require.NoError(t, tf.Close())
	assert.Equal(t, 0, device.activeStreams())

	assert.ErrorIs(t, tf.Upload(ctx, jpegA), ErrClosed)
	assert.ErrorIs(t, tf.OpenCamera(ctx, camera.FacingBack), ErrClosed)
	_, err := tf.Submit(ctx)
	assert.ErrorIs(t, err, ErrClosed)
}

func strPtr(s string) *string { return &s }
