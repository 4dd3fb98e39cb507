package studio

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"
	"sync"
	"time"

	"photostudio/internal/camera"
	"photostudio/internal/domain"
	"photostudio/internal/editor"
	"photostudio/internal/infra"
)

// Session owns one user's editing state and the camera controller bound to
// it. Every transition is atomic with respect to the state record.
type Session struct {
	ID string

	mu       sync.Mutex
	state    State
	camera   *camera.Controller
	relay    *camera.Relay
	editor   editor.Editor
	logger   infra.Logger
	lastSeen time.Time
}

func newSession(id string, ed editor.Editor, logger infra.Logger) *Session {
	relay := camera.NewRelay()
	return &Session{
		ID:       id,
		camera:   camera.NewController(relay),
		relay:    relay,
		editor:   ed,
		logger:   logger.With().Str("session_id", id).Logger(),
		lastSeen: time.Now(),
	}
}

// Snapshot returns a copy of the current state for rendering.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		SessionID:  s.ID,
		Original:   imageView(s.state.Original),
		Edited:     imageView(s.state.Edited),
		Prompt:     s.state.Prompt,
		Loading:    s.state.Loading,
		Error:      s.state.Err,
		CameraOpen: s.state.CameraOpen,
	}
}

// SelectImage installs a freshly encoded original. Any previously displayed
// edited result and error are cleared; the camera state is untouched.
func (s *Session) SelectImage(img domain.EncodedImage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Original = &img
	s.state.Edited = nil
	s.state.Err = ""
}

// RecordError surfaces a failure without touching the rest of the state, so
// a bad file selection never clears a previously loaded image.
func (s *Session) RecordError(err error) {
	if err == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Err = err.Error()
}

// OpenCamera acquires the device stream. An existing original image stays in
// place; on acquisition failure the camera-open flag is cleared and the error
// surfaced. A previously reported device failure is cleared first, so the
// user can grant permission and retry.
func (s *Session) OpenCamera(ctx context.Context) error {
	s.relay.Reset()
	if err := s.camera.Open(ctx); err != nil {
		s.mu.Lock()
		s.state.CameraOpen = false
		s.state.Err = err.Error()
		s.mu.Unlock()
		s.logger.Warn().Err(err).Msg("studio: camera acquisition failed")
		return err
	}
	s.mu.Lock()
	s.state.CameraOpen = true
	s.state.Err = ""
	s.mu.Unlock()
	return nil
}

// PushFrame feeds a live preview frame into the camera relay.
func (s *Session) PushFrame(frame image.Image) error {
	return s.relay.Push(frame)
}

// ReportCameraFailure propagates a device failure raised outside the server,
// e.g. a browser permission denial, and closes the camera state.
func (s *Session) ReportCameraFailure(reason string) {
	if strings.TrimSpace(reason) == "" {
		reason = "device unavailable"
	}
	err := fmt.Errorf("%w: %s", domain.ErrCameraAccess, reason)
	s.relay.Fail(err)
	s.camera.Cancel()
	s.mu.Lock()
	s.state.CameraOpen = false
	s.state.Err = err.Error()
	s.mu.Unlock()
}

// SnapPhoto captures a still frame: the capture becomes the new original,
// edited result and error are cleared, and the camera closes. On failure the
// error is surfaced and the camera stays open for a retry.
func (s *Session) SnapPhoto(ctx context.Context) (domain.EncodedImage, error) {
	img, err := s.camera.Capture(ctx)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.state.Err = err.Error()
		return domain.EncodedImage{}, err
	}
	s.state.Original = &img
	s.state.Edited = nil
	s.state.Err = ""
	s.state.CameraOpen = false
	return img, nil
}

// CancelCamera closes the camera and releases the stream without producing
// an image.
func (s *Session) CancelCamera() {
	s.camera.Cancel()
	s.mu.Lock()
	s.state.CameraOpen = false
	s.mu.Unlock()
}

// SubmitEdit runs one remote edit. Guards reject a missing original, an empty
// prompt, and an edit already in flight; on acceptance the loading flag is
// set, error and previous result cleared, and the remote call made without
// holding the state lock. The loading flag is cleared however the call ends.
func (s *Session) SubmitEdit(ctx context.Context, prompt, requestID string) (domain.EncodedImage, error) {
	prompt = strings.TrimSpace(prompt)

	s.mu.Lock()
	if s.state.Loading {
		s.mu.Unlock()
		return domain.EncodedImage{}, domain.ErrEditInFlight
	}
	if s.state.Original == nil || s.state.Original.IsZero() {
		s.state.Err = domain.ErrMissingImage.Error()
		s.mu.Unlock()
		return domain.EncodedImage{}, domain.ErrMissingImage
	}
	if prompt == "" {
		s.state.Err = domain.ErrEmptyPrompt.Error()
		s.mu.Unlock()
		return domain.EncodedImage{}, domain.ErrEmptyPrompt
	}
	source := *s.state.Original
	s.state.Prompt = prompt
	s.state.Loading = true
	s.state.Err = ""
	s.state.Edited = nil
	s.mu.Unlock()

	started := time.Now()
	result, err := s.editor.Edit(ctx, editor.Request{
		Image:        source,
		Instructions: prompt,
		RequestID:    requestID,
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Loading = false
	if err != nil {
		s.state.Err = fmt.Sprintf("An error occurred: %s", reason(err))
		s.logger.Warn().Err(err).Dur("elapsed", time.Since(started)).Msg("studio: edit failed")
		return domain.EncodedImage{}, err
	}
	s.state.Edited = &result
	s.logger.Info().Dur("elapsed", time.Since(started)).Str("mime", result.MimeType).Msg("studio: edit succeeded")
	return result, nil
}

// Image returns the original or edited payload for download.
func (s *Session) Image(which string) (domain.EncodedImage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var img *domain.EncodedImage
	switch which {
	case "original":
		img = s.state.Original
	case "edited":
		img = s.state.Edited
	default:
		return domain.EncodedImage{}, fmt.Errorf("unknown image %q", which)
	}
	if img == nil || img.IsZero() {
		return domain.EncodedImage{}, domain.ErrMissingImage
	}
	return *img, nil
}

// Images returns every payload currently held, originals first.
func (s *Session) Images() []domain.EncodedImage {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.EncodedImage
	if s.state.Original != nil && !s.state.Original.IsZero() {
		out = append(out, *s.state.Original)
	}
	if s.state.Edited != nil && !s.state.Edited.IsZero() {
		out = append(out, *s.state.Edited)
	}
	return out
}

// Close releases any held camera stream. Safe to call repeatedly.
func (s *Session) Close() {
	s.camera.Close()
	s.mu.Lock()
	s.state.CameraOpen = false
	s.mu.Unlock()
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) expired(now time.Time, ttl time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastSeen) > ttl
}

func reason(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, domain.ErrNoImageReturned) {
		return domain.ErrNoImageReturned.Error()
	}
	return err.Error()
}
