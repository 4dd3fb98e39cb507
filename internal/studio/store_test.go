package studio

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"photostudio/internal/domain"
)

func TestStoreCreateAndGet(t *testing.T) {
	st := NewStore(&fakeEditor{}, time.Minute, zerolog.Nop())
	s := st.Create()

	got, err := st.Get(s.ID)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got != s {
		t.Fatal("Get returned a different session")
	}
	if _, err := st.Get("nope"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestStoreEvictsExpiredSessionsAndClosesCamera(t *testing.T) {
	now := time.Now()
	st := NewStore(&fakeEditor{}, time.Minute, zerolog.Nop())
	st.now = func() time.Time { return now }

	s := st.Create()
	if err := s.OpenCamera(context.Background()); err != nil {
		t.Fatalf("OpenCamera returned error: %v", err)
	}

	now = now.Add(2 * time.Minute)
	st.evictExpired()

	if st.Len() != 0 {
		t.Fatalf("expected store to be empty, got %d", st.Len())
	}
	if _, err := st.Get(s.ID); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
	if s.Snapshot().CameraOpen {
		t.Fatal("eviction must release the camera")
	}
}

func TestStoreGetRefreshesIdleDeadline(t *testing.T) {
	now := time.Now()
	st := NewStore(&fakeEditor{}, time.Minute, zerolog.Nop())
	st.now = func() time.Time { return now }

	s := st.Create()

	now = now.Add(45 * time.Second)
	if _, err := st.Get(s.ID); err != nil {
		t.Fatalf("Get returned error: %v", err)
	}

	now = now.Add(45 * time.Second)
	st.evictExpired()
	if st.Len() != 1 {
		t.Fatal("a recently touched session must survive eviction")
	}
}

func TestStoreStopJanitorClosesSessions(t *testing.T) {
	st := NewStore(&fakeEditor{}, time.Minute, zerolog.Nop())
	if err := st.StartJanitor(); err != nil {
		t.Fatalf("StartJanitor returned error: %v", err)
	}
	s := st.Create()
	if err := s.OpenCamera(context.Background()); err != nil {
		t.Fatalf("OpenCamera returned error: %v", err)
	}

	st.StopJanitor()
	if st.Len() != 0 {
		t.Fatalf("expected store drained, got %d", st.Len())
	}
	if s.Snapshot().CameraOpen {
		t.Fatal("shutdown must release camera streams")
	}
}
