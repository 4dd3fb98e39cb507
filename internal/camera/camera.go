package camera

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"sync"
	"time"

	"github.com/disintegration/imaging"

	"photostudio/internal/domain"
	"photostudio/internal/encode"
)

// Stream is an acquired video source. It is exclusively held: the owner must
// call Close exactly once when leaving the OPEN state.
type Stream interface {
	// Frame returns the most recent frame available on the stream.
	Frame(ctx context.Context) (image.Image, error)
	// Bounds reports the stream's native resolution.
	Bounds() image.Rectangle
	Close() error
}

// Device acquires a Stream. Acquisition may fail when the underlying camera
// is unavailable or permission is denied.
type Device interface {
	Open(ctx context.Context) (Stream, error)
}

const captureQuality = 90

// Controller is a two-state machine (closed, open) over a Device. While open
// it holds the device stream; every transition out of open releases it.
type Controller struct {
	mu     sync.Mutex
	device Device
	stream Stream
	now    func() time.Time
}

func NewController(device Device) *Controller {
	return &Controller{device: device, now: time.Now}
}

// IsOpen reports whether a stream is currently held.
func (c *Controller) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stream != nil
}

// Open transitions closed -> open by acquiring the device stream. Opening an
// already open controller is a no-op so a stream is never acquired twice.
func (c *Controller) Open(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stream != nil {
		return nil
	}
	stream, err := c.device.Open(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrCameraAccess, err)
	}
	c.stream = stream
	return nil
}

// Capture grabs the current frame, renders it onto an offscreen canvas at the
// stream's native resolution, serializes it as baseline JPEG and releases the
// stream. The display name is synthesized from the capture timestamp. A frame
// failure keeps the controller open so the user can retry or cancel.
func (c *Controller) Capture(ctx context.Context) (domain.EncodedImage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stream == nil {
		return domain.EncodedImage{}, domain.ErrCameraClosed
	}

	frame, err := c.stream.Frame(ctx)
	if err != nil {
		return domain.EncodedImage{}, fmt.Errorf("%w: %v", domain.ErrCameraAccess, err)
	}

	bounds := c.stream.Bounds()
	if bounds.Empty() {
		bounds = frame.Bounds()
	}
	canvas := imaging.New(bounds.Dx(), bounds.Dy(), color.NRGBA{A: 255})
	canvas = imaging.Paste(canvas, frame, image.Point{})

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, canvas, imaging.JPEG, imaging.JPEGQuality(captureQuality)); err != nil {
		return domain.EncodedImage{}, fmt.Errorf("%w: encode frame: %v", domain.ErrCameraAccess, err)
	}

	name := fmt.Sprintf("capture-%s.jpg", c.now().Format("20060102-150405"))
	img, err := encode.FromBytes(name, "image/jpeg", buf.Bytes())
	if err != nil {
		return domain.EncodedImage{}, err
	}

	c.releaseLocked()
	return img, nil
}

// Cancel transitions open -> closed without producing an image. Calling it on
// a closed controller is a no-op.
func (c *Controller) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.releaseLocked()
}

// Close releases the stream on teardown. Alias of Cancel so session shutdown
// can never leave the device reserved.
func (c *Controller) Close() {
	c.Cancel()
}

func (c *Controller) releaseLocked() {
	if c.stream == nil {
		return
	}
	_ = c.stream.Close()
	c.stream = nil
}
