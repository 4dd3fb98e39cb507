package camera

import (
	"context"
	"fmt"
	"image"
	"sync"

	"photostudio/internal/domain"
)

// Relay is a Device whose frames are pushed in from the outside, typically by
// a browser streaming preview frames over HTTP. It hands out at most one
// stream at a time; pushes are rejected while no stream is held.
type Relay struct {
	mu     sync.Mutex
	frame  image.Image
	open   bool
	broken error
}

func NewRelay() *Relay {
	return &Relay{}
}

// Fail marks the relay as unavailable; subsequent Open calls return the given
// error. Used to propagate a browser-side permission denial to the controller.
func (r *Relay) Fail(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.broken = err
}

// Reset clears a previously reported failure so the relay can be acquired
// again once the browser regains device access.
func (r *Relay) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.broken = nil
}

// Open acquires the relay as a stream.
func (r *Relay) Open(ctx context.Context) (Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.broken != nil {
		return nil, r.broken
	}
	if r.open {
		return nil, fmt.Errorf("relay stream already acquired")
	}
	r.open = true
	return &relayStream{relay: r}, nil
}

// Push stores the latest preview frame. Only valid while a stream is held.
func (r *Relay) Push(frame image.Image) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.open {
		return domain.ErrCameraClosed
	}
	r.frame = frame
	return nil
}

type relayStream struct {
	relay *Relay
}

func (s *relayStream) Frame(ctx context.Context) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.relay.mu.Lock()
	defer s.relay.mu.Unlock()
	if !s.relay.open {
		return nil, domain.ErrCameraClosed
	}
	if s.relay.frame == nil {
		return nil, fmt.Errorf("no preview frame received yet")
	}
	return s.relay.frame, nil
}

func (s *relayStream) Bounds() image.Rectangle {
	s.relay.mu.Lock()
	defer s.relay.mu.Unlock()
	if s.relay.frame == nil {
		return image.Rectangle{}
	}
	return s.relay.frame.Bounds()
}

func (s *relayStream) Close() error {
	s.relay.mu.Lock()
	defer s.relay.mu.Unlock()
	s.relay.open = false
	s.relay.frame = nil
	return nil
}
