package studio

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"photostudio/internal/domain"
	"photostudio/internal/editor"
)

type fakeEditor struct {
	mu     sync.Mutex
	calls  int
	result domain.EncodedImage
	err    error
	block  chan struct{}
}

func (f *fakeEditor) Edit(ctx context.Context, req editor.Request) (domain.EncodedImage, error) {
	f.mu.Lock()
	f.calls++
	block := f.block
	f.mu.Unlock()
	if block != nil {
		<-block
	}
	if f.err != nil {
		return domain.EncodedImage{}, f.err
	}
	return f.result, nil
}

func (f *fakeEditor) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func editedResult() domain.EncodedImage {
	return domain.EncodedImage{
		Data:        base64.StdEncoding.EncodeToString([]byte("edited")),
		MimeType:    "image/png",
		DisplayName: "photo-edited.png",
	}
}

func original() domain.EncodedImage {
	return domain.EncodedImage{
		Data:        base64.StdEncoding.EncodeToString([]byte("original")),
		MimeType:    "image/png",
		DisplayName: "photo.png",
	}
}

func testSession(ed editor.Editor) *Session {
	return newSession("test-session", ed, zerolog.Nop())
}

func previewFrame() image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, 10, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 255, A: 255})
		}
	}
	return img
}

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}

func TestSelectImageClearsEditedResultAndError(t *testing.T) {
	ed := &fakeEditor{result: editedResult()}
	s := testSession(ed)
	s.SelectImage(original())

	if _, err := s.SubmitEdit(context.Background(), "add a hat", "req-1"); err != nil {
		t.Fatalf("SubmitEdit returned error: %v", err)
	}
	if snap := s.Snapshot(); snap.Edited == nil {
		t.Fatal("edited result should be set after a successful edit")
	}

	s.SelectImage(original())
	snap := s.Snapshot()
	if snap.Edited != nil {
		t.Fatal("selecting a new image must clear the edited result")
	}
	if snap.Error != "" {
		t.Fatalf("selecting a new image must clear the error, got %q", snap.Error)
	}
	if snap.Original == nil {
		t.Fatal("original missing after select")
	}
}

func TestRecordErrorKeepsOriginal(t *testing.T) {
	s := testSession(&fakeEditor{})
	s.SelectImage(original())
	s.RecordError(fmt.Errorf("%w: %q is not an image", domain.ErrUnsupportedFile, "text/plain"))

	snap := s.Snapshot()
	if snap.Original == nil {
		t.Fatal("a failed selection must not clear the previous original")
	}
	if !strings.Contains(snap.Error, "not an image") {
		t.Fatalf("error not surfaced: %q", snap.Error)
	}
}

func TestSubmitEditWithoutImageDoesNotInvokeRemote(t *testing.T) {
	ed := &fakeEditor{result: editedResult()}
	s := testSession(ed)

	_, err := s.SubmitEdit(context.Background(), "add a hat", "req-1")
	if !errors.Is(err, domain.ErrMissingImage) {
		t.Fatalf("expected ErrMissingImage, got %v", err)
	}
	if ed.callCount() != 0 {
		t.Fatal("remote edit must not be invoked without a source image")
	}
	if s.Snapshot().Error == "" {
		t.Fatal("guard failure must set the error")
	}
}

func TestSubmitEditRejectsEmptyPrompt(t *testing.T) {
	ed := &fakeEditor{result: editedResult()}
	s := testSession(ed)
	s.SelectImage(original())

	_, err := s.SubmitEdit(context.Background(), "   ", "req-1")
	if !errors.Is(err, domain.ErrEmptyPrompt) {
		t.Fatalf("expected ErrEmptyPrompt, got %v", err)
	}
	if ed.callCount() != 0 {
		t.Fatal("remote edit must not be invoked with an empty prompt")
	}
}

func TestSubmitEditLoadingLifecycleAndInFlightGate(t *testing.T) {
	ed := &fakeEditor{result: editedResult(), block: make(chan struct{})}
	s := testSession(ed)
	s.SelectImage(original())

	done := make(chan error, 1)
	go func() {
		_, err := s.SubmitEdit(context.Background(), "add a hat", "req-1")
		done <- err
	}()

	waitFor(t, func() bool { return s.Snapshot().Loading }, "loading flag never set")

	if _, err := s.SubmitEdit(context.Background(), "another edit", "req-2"); !errors.Is(err, domain.ErrEditInFlight) {
		t.Fatalf("expected ErrEditInFlight for overlapping submit, got %v", err)
	}

	close(ed.block)
	if err := <-done; err != nil {
		t.Fatalf("SubmitEdit returned error: %v", err)
	}

	snap := s.Snapshot()
	if snap.Loading {
		t.Fatal("loading must clear once the call settles")
	}
	if snap.Edited == nil || !strings.HasPrefix(snap.Edited.DataURL, "data:image/png;base64,") {
		t.Fatalf("edited result missing or not displayable: %+v", snap.Edited)
	}
	if ed.callCount() != 1 {
		t.Fatalf("remote call count mismatch: %d", ed.callCount())
	}
}

func TestSubmitEditFailureFormatsMessageAndClearsLoading(t *testing.T) {
	ed := &fakeEditor{err: errors.New("boom")}
	s := testSession(ed)
	s.SelectImage(original())

	_, err := s.SubmitEdit(context.Background(), "add a hat", "req-1")
	if err == nil {
		t.Fatal("expected error")
	}
	snap := s.Snapshot()
	if snap.Loading {
		t.Fatal("loading must clear on failure")
	}
	if snap.Error != "An error occurred: boom" {
		t.Fatalf("error message mismatch: %q", snap.Error)
	}
	if snap.Edited != nil {
		t.Fatal("edited result must stay cleared on failure")
	}
}

func TestSubmitEditNoResultSuggestsPromptRevision(t *testing.T) {
	ed := &fakeEditor{err: domain.ErrNoImageReturned}
	s := testSession(ed)
	s.SelectImage(original())

	if _, err := s.SubmitEdit(context.Background(), "???", "req-1"); !errors.Is(err, domain.ErrNoImageReturned) {
		t.Fatalf("expected ErrNoImageReturned, got %v", err)
	}
	if msg := s.Snapshot().Error; !strings.Contains(msg, "rephrasing") {
		t.Fatalf("no-result message should suggest revising the prompt: %q", msg)
	}
}

func TestCameraFlowCaptureBecomesOriginal(t *testing.T) {
	s := testSession(&fakeEditor{})
	s.SelectImage(original())

	if err := s.OpenCamera(context.Background()); err != nil {
		t.Fatalf("OpenCamera returned error: %v", err)
	}
	snap := s.Snapshot()
	if !snap.CameraOpen {
		t.Fatal("camera should be open")
	}
	if snap.Original == nil {
		t.Fatal("opening the camera must not clear the existing original")
	}

	if err := s.PushFrame(previewFrame()); err != nil {
		t.Fatalf("PushFrame returned error: %v", err)
	}
	img, err := s.SnapPhoto(context.Background())
	if err != nil {
		t.Fatalf("SnapPhoto returned error: %v", err)
	}
	if img.MimeType != "image/jpeg" {
		t.Fatalf("capture mime mismatch: %q", img.MimeType)
	}

	snap = s.Snapshot()
	if snap.CameraOpen {
		t.Fatal("capture must close the camera")
	}
	if snap.Original == nil || snap.Original.MimeType != "image/jpeg" {
		t.Fatalf("capture did not become the original: %+v", snap.Original)
	}
	if snap.Edited != nil || snap.Error != "" {
		t.Fatal("capture must clear edited result and error")
	}

	// The stream is released: pushing another frame must fail until reopened.
	if err := s.PushFrame(previewFrame()); !errors.Is(err, domain.ErrCameraClosed) {
		t.Fatalf("expected ErrCameraClosed after capture, got %v", err)
	}
}

func TestCancelCameraReleasesStreamWithoutImage(t *testing.T) {
	s := testSession(&fakeEditor{})
	if err := s.OpenCamera(context.Background()); err != nil {
		t.Fatalf("OpenCamera returned error: %v", err)
	}
	s.CancelCamera()
	snap := s.Snapshot()
	if snap.CameraOpen {
		t.Fatal("cancel must close the camera")
	}
	if snap.Original != nil {
		t.Fatal("cancel must not produce an image")
	}
	if err := s.PushFrame(previewFrame()); !errors.Is(err, domain.ErrCameraClosed) {
		t.Fatalf("expected ErrCameraClosed after cancel, got %v", err)
	}
}

func TestReportCameraFailureClosesAndSurfacesError(t *testing.T) {
	s := testSession(&fakeEditor{})
	s.ReportCameraFailure("NotAllowedError")

	snap := s.Snapshot()
	if snap.CameraOpen {
		t.Fatal("camera must be closed after a reported failure")
	}
	if !strings.Contains(snap.Error, "NotAllowedError") {
		t.Fatalf("failure reason lost: %q", snap.Error)
	}
}

func TestOpenCameraRetryAfterReportedFailure(t *testing.T) {
	s := testSession(&fakeEditor{})
	s.ReportCameraFailure("NotAllowedError")

	// The user grants permission and tries again: the stale failure must not
	// keep the camera bricked.
	if err := s.OpenCamera(context.Background()); err != nil {
		t.Fatalf("reopen after reported failure must succeed: %v", err)
	}
	snap := s.Snapshot()
	if !snap.CameraOpen {
		t.Fatal("camera should be open after retry")
	}
	if snap.Error != "" {
		t.Fatalf("retry must clear the error, got %q", snap.Error)
	}

	if err := s.PushFrame(previewFrame()); err != nil {
		t.Fatalf("PushFrame returned error: %v", err)
	}
	if _, err := s.SnapPhoto(context.Background()); err != nil {
		t.Fatalf("SnapPhoto returned error: %v", err)
	}
}

func TestImageLookupForDownload(t *testing.T) {
	ed := &fakeEditor{result: editedResult()}
	s := testSession(ed)

	if _, err := s.Image("original"); !errors.Is(err, domain.ErrMissingImage) {
		t.Fatalf("expected ErrMissingImage, got %v", err)
	}

	s.SelectImage(original())
	if _, err := s.SubmitEdit(context.Background(), "add a hat", "req-1"); err != nil {
		t.Fatalf("SubmitEdit returned error: %v", err)
	}

	img, err := s.Image("edited")
	if err != nil {
		t.Fatalf("Image returned error: %v", err)
	}
	if img.DisplayName != "photo-edited.png" {
		t.Fatalf("unexpected download payload: %+v", img)
	}
	if _, err := s.Image("sideways"); err == nil {
		t.Fatal("expected error for unknown image name")
	}
	if got := len(s.Images()); got != 2 {
		t.Fatalf("Images length mismatch: %d", got)
	}
}
