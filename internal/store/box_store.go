package store

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/vbonduro/moveassist/internal/domain"
	"github.com/vbonduro/moveassist/internal/imaging"
	"github.com/vbonduro/moveassist/internal/medium"
)

const (
	boxesKey       = "moveassist_boxes"
	photoKeyPrefix = "moveassist_photo_"
	maxIDLen       = 64
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrClosed       = errors.New("box store is closed")
)

// SaveInput is a partial box record. Nil pointers and nil slices mean "not
// supplied" and leave the stored value untouched on update.
type SaveInput struct {
	ID                string
	ManualDescription *string
	AssignedRoom      *string
	SuggestedRoom     *string
	AIGeneratedTags   []string
	Items             []domain.Item
	// PhotoDataURL replaces the photo when non-empty and removes it when it
	// points at "".
	PhotoDataURL *string
}

type SaveResult struct {
	Box *domain.Box
	// PhotoDropped is set when the record was saved but its photo did not fit.
	PhotoDropped bool
}

// BoxStore keeps the box metadata collection under one medium key and each
// box photo under its own key.
type BoxStore struct {
	mu     sync.Mutex
	medium medium.Medium
	logger *slog.Logger
	now    func() time.Time
	closed bool
}

// Open constructs the store and upgrades any records written by older
// versions before returning.
func Open(ctx context.Context, m medium.Medium, logger *slog.Logger) (*BoxStore, error) {
	s := &BoxStore{
		medium: m,
		logger: logger,
		now:    time.Now,
	}
	if err := s.upgrade(ctx); err != nil {
		return nil, fmt.Errorf("failed to upgrade box records: %w", err)
	}
	return s, nil
}

func (s *BoxStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// List returns every box with its photo attached, newest first.
func (s *BoxStore) List(ctx context.Context) ([]*domain.Box, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}

	coll, err := s.read(ctx)
	if err != nil {
		return nil, err
	}

	boxes := make([]*domain.Box, 0, len(coll.boxes))
	for i := range coll.boxes {
		box := coll.boxes[i]
		photo, err := s.photo(ctx, coll, box.ID)
		if err != nil {
			return nil, err
		}
		box.PhotoDataURL = photo
		boxes = append(boxes, &box)
	}

	slices.SortStableFunc(boxes, func(a, b *domain.Box) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return boxes, nil
}

// Get returns the box with the given id, or nil when there is none.
func (s *BoxStore) Get(ctx context.Context, id string) (*domain.Box, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}

	coll, err := s.read(ctx)
	if err != nil {
		return nil, err
	}

	idx := coll.index(id)
	if idx < 0 {
		return nil, nil
	}

	box := coll.boxes[idx]
	photo, err := s.photo(ctx, coll, id)
	if err != nil {
		return nil, err
	}
	box.PhotoDataURL = photo
	return &box, nil
}

// Save creates or updates a box. Without an id a new one is generated. An id
// that matches no record creates a record under that id.
//
// The metadata collection is written first and a failure there is returned.
// A photo that does not fit is dropped: the record stays saved without a
// photo and the result reports PhotoDropped.
func (s *BoxStore) Save(ctx context.Context, in SaveInput) (*SaveResult, error) {
	if err := normalize(&in); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}

	coll, err := s.read(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	var box domain.Box
	idx := -1
	if in.ID != "" {
		idx = coll.index(in.ID)
	}

	switch {
	case idx >= 0:
		box = coll.boxes[idx]
	case in.ID != "":
		s.logger.Info("creating box under caller-supplied id", "box_id", in.ID)
		box = newBox(in.ID, now)
	default:
		box = newBox(s.newID(coll, now), now)
	}

	applyInput(&box, in)
	box.QRCodeValue = box.ID
	box.Version = domain.CurrentBoxVersion

	if idx >= 0 {
		coll.boxes[idx] = box
	} else {
		coll.boxes = append(coll.boxes, box)
	}

	if err := s.write(ctx, coll); err != nil {
		return nil, err
	}

	result := &SaveResult{Box: &box}
	switch {
	case in.PhotoDataURL == nil:
		photo, err := s.photo(ctx, coll, box.ID)
		if err != nil {
			return nil, err
		}
		box.PhotoDataURL = photo
	case *in.PhotoDataURL == "":
		if err := s.medium.Remove(ctx, photoKey(box.ID)); err != nil {
			return nil, fmt.Errorf("failed to remove photo: %w", err)
		}
	default:
		if err := s.medium.Set(ctx, photoKey(box.ID), *in.PhotoDataURL); err != nil {
			if !errors.Is(err, medium.ErrQuotaExceeded) {
				return nil, fmt.Errorf("failed to save photo: %w", err)
			}
			s.dropPhoto(ctx, box.ID)
			result.PhotoDropped = true
			break
		}
		box.PhotoDataURL = *in.PhotoDataURL
	}

	s.logger.Debug("box saved", "box_id", box.ID, "created", idx < 0, "photo_dropped", result.PhotoDropped)
	return result, nil
}

// Delete removes the box metadata and its photo. Deleting an unknown id is a
// no-op.
func (s *BoxStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	coll, err := s.read(ctx)
	if err != nil {
		return err
	}

	if idx := coll.index(id); idx >= 0 {
		coll.boxes = slices.Delete(coll.boxes, idx, idx+1)
		delete(coll.legacyPhotos, id)
		if err := s.write(ctx, coll); err != nil {
			return err
		}
	}

	if err := s.medium.Remove(ctx, photoKey(id)); err != nil {
		return fmt.Errorf("failed to remove photo: %w", err)
	}
	return nil
}

// Usage reports how much of the medium's budget is in use.
func (s *BoxStore) Usage(ctx context.Context) (medium.Usage, error) {
	return s.medium.Usage(ctx)
}

// dropPhoto clears any earlier photo so the stored record matches what the
// caller is told: saved, without a photo.
func (s *BoxStore) dropPhoto(ctx context.Context, id string) {
	s.logger.Warn("storage quota exceeded, box saved without photo", "box_id", id)
	if err := s.medium.Remove(ctx, photoKey(id)); err != nil {
		s.logger.Error("failed to remove stale photo", "box_id", id, "error", err)
	}
}

type collection struct {
	boxes []domain.Box
	// legacyPhotos holds photos lifted out of records that embedded them.
	legacyPhotos map[string]string
	upgraded     bool
}

func (c *collection) index(id string) int {
	return slices.IndexFunc(c.boxes, func(b domain.Box) bool { return b.ID == id })
}

func (s *BoxStore) read(ctx context.Context) (*collection, error) {
	coll := &collection{legacyPhotos: make(map[string]string)}

	raw, ok, err := s.medium.Get(ctx, boxesKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read box collection: %w", err)
	}
	if !ok || raw == "" {
		return coll, nil
	}

	if err := json.Unmarshal([]byte(raw), &coll.boxes); err != nil {
		return nil, fmt.Errorf("failed to decode box collection: %w", err)
	}

	for i := range coll.boxes {
		photo, changed := upgradeBox(&coll.boxes[i])
		if photo != "" {
			coll.legacyPhotos[coll.boxes[i].ID] = photo
		}
		coll.upgraded = coll.upgraded || changed
	}
	return coll, nil
}

// write persists the metadata collection. Photos lifted out of legacy
// records are moved to their own keys first so rewriting the collection
// cannot lose them.
func (s *BoxStore) write(ctx context.Context, coll *collection) error {
	s.liftLegacyPhotos(ctx, coll)

	meta := make([]domain.Box, len(coll.boxes))
	for i, b := range coll.boxes {
		b.PhotoDataURL = ""
		meta[i] = b
	}

	data, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("failed to encode box collection: %w", err)
	}

	if err := s.medium.Set(ctx, boxesKey, string(data)); err != nil {
		if errors.Is(err, medium.ErrQuotaExceeded) {
			s.logger.Error("storage quota exceeded while saving box metadata", "boxes", len(meta))
		}
		return fmt.Errorf("failed to write box collection: %w", err)
	}
	return nil
}

func (s *BoxStore) liftLegacyPhotos(ctx context.Context, coll *collection) {
	for id, photo := range coll.legacyPhotos {
		_, exists, err := s.medium.Get(ctx, photoKey(id))
		if err != nil {
			s.logger.Error("failed to check photo during upgrade", "box_id", id, "error", err)
			continue
		}
		if exists {
			continue
		}
		if err := s.medium.Set(ctx, photoKey(id), photo); err != nil {
			s.logger.Warn("failed to move embedded photo, dropping it", "box_id", id, "error", err)
		}
	}
	clear(coll.legacyPhotos)
}

// upgrade rewrites the collection once when it contains records from an older
// schema version.
func (s *BoxStore) upgrade(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	coll, err := s.read(ctx)
	if err != nil {
		return err
	}
	if !coll.upgraded {
		return nil
	}

	s.logger.Info("upgrading box records", "boxes", len(coll.boxes), "embedded_photos", len(coll.legacyPhotos))
	return s.write(ctx, coll)
}

func (s *BoxStore) photo(ctx context.Context, coll *collection, id string) (string, error) {
	photo, ok, err := s.medium.Get(ctx, photoKey(id))
	if err != nil {
		return "", fmt.Errorf("failed to read photo: %w", err)
	}
	if !ok {
		return coll.legacyPhotos[id], nil
	}
	return photo, nil
}

// upgradeBox brings a decoded record to the current schema. It returns any
// photo the record embedded and whether anything changed.
func upgradeBox(b *domain.Box) (string, bool) {
	changed := b.Version < domain.CurrentBoxVersion || b.PhotoDataURL != "" || b.QRCodeValue != b.ID
	photo := b.PhotoDataURL
	b.PhotoDataURL = ""
	if b.Items == nil {
		b.Items = []domain.Item{}
	}
	if b.AIGeneratedTags == nil {
		b.AIGeneratedTags = []string{}
	}
	b.QRCodeValue = b.ID
	b.Version = domain.CurrentBoxVersion
	return photo, changed
}

func newBox(id string, now time.Time) domain.Box {
	return domain.Box{
		ID:              id,
		QRCodeValue:     id,
		CreatedAt:       now,
		AIGeneratedTags: []string{},
		Items:           []domain.Item{},
		Version:         domain.CurrentBoxVersion,
	}
}

func applyInput(b *domain.Box, in SaveInput) {
	if in.ManualDescription != nil {
		b.ManualDescription = *in.ManualDescription
	}
	if in.AssignedRoom != nil {
		b.AssignedRoom = *in.AssignedRoom
	}
	if in.SuggestedRoom != nil {
		b.SuggestedRoom = *in.SuggestedRoom
	}
	if in.AIGeneratedTags != nil {
		b.AIGeneratedTags = slices.Clone(in.AIGeneratedTags)
	}
	if in.Items != nil {
		b.Items = slices.Clone(in.Items)
	}
}

// normalize trims and validates caller-supplied fields in place.
func normalize(in *SaveInput) error {
	in.ID = strings.TrimSpace(in.ID)
	if in.ID != "" {
		if err := validateID(in.ID); err != nil {
			return err
		}
	}

	if in.AssignedRoom != nil && strings.TrimSpace(*in.AssignedRoom) != "" {
		room, ok := domain.CanonicalRoom(*in.AssignedRoom)
		if !ok {
			return fmt.Errorf("%w: unknown room %q", ErrInvalidInput, *in.AssignedRoom)
		}
		in.AssignedRoom = &room
	} else if in.AssignedRoom != nil {
		empty := ""
		in.AssignedRoom = &empty
	}

	if in.SuggestedRoom != nil {
		trimmed := strings.TrimSpace(*in.SuggestedRoom)
		in.SuggestedRoom = &trimmed
	}

	if in.PhotoDataURL != nil && *in.PhotoDataURL != "" {
		if _, err := imaging.ValidateDataURL(*in.PhotoDataURL); err != nil {
			return fmt.Errorf("%w: photo: %v", ErrInvalidInput, err)
		}
	}
	return nil
}

func validateID(id string) error {
	if len(id) > maxIDLen {
		return fmt.Errorf("%w: id longer than %d bytes", ErrInvalidInput, maxIDLen)
	}
	for _, r := range id {
		if unicode.IsSpace(r) || unicode.IsControl(r) || strings.ContainsRune(`/\?#%`, r) {
			return fmt.Errorf("%w: id contains %q", ErrInvalidInput, r)
		}
	}
	return nil
}

// newID returns base36 milliseconds followed by random characters, retrying
// on the unlikely collision with an existing record.
func (s *BoxStore) newID(coll *collection, now time.Time) string {
	for {
		id := GenerateID(now)
		if coll.index(id) < 0 {
			return id
		}
	}
}

// GenerateID returns a fresh box id for the given instant.
func GenerateID(now time.Time) string {
	return strconv.FormatInt(now.UnixMilli(), 36) + strings.ToLower(rand.Text()[:8])
}

func photoKey(id string) string {
	return photoKeyPrefix + id
}
