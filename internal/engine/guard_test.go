package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/fekuna/omnipos-production-service/internal/apperror"
	"github.com/fekuna/omnipos-production-service/pkg/logger"
)

type stubLocker struct {
	mu       sync.Mutex
	held     map[string]string
	acquired int
	released int
}

func newStubLocker() *stubLocker {
	return &stubLocker{held: map[string]string{}}
}

func (s *stubLocker) AcquireLock(_ context.Context, key, value string, _ time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.held[key]; ok {
		return false, nil
	}
	s.held[key] = value
	s.acquired++
	return true, nil
}

func (s *stubLocker) ReleaseLock(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.held[key] == value {
		delete(s.held, key)
		s.released++
	}
	return nil
}

func TestGuardRunsWithoutLocker(t *testing.T) {
	g := NewGuard(nil, 0, logger.NewNop())
	ran := false
	if err := g.Do(context.Background(), "consolidate", func(context.Context) error {
		ran = true
		return nil
	}); err != nil {
		t.Fatalf("do: %v", err)
	}
	if !ran {
		t.Fatalf("expected operation to run")
	}
}

func TestGuardReleasesLockAndPropagatesError(t *testing.T) {
	locker := newStubLocker()
	g := NewGuard(locker, time.Second, logger.NewNop())
	boom := errors.New("boom")
	err := g.Do(context.Background(), "generate", func(context.Context) error { return boom })
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if locker.acquired != 1 || locker.released != 1 {
		t.Fatalf("expected one acquire and one release, got %d/%d", locker.acquired, locker.released)
	}
}

func TestGuardReportsBusyLockAsConflict(t *testing.T) {
	locker := newStubLocker()
	locker.held[lockKey] = "other-process"
	g := NewGuard(locker, time.Second, logger.NewNop())
	ran := false
	err := g.Do(context.Background(), "reset", func(context.Context) error {
		ran = true
		return nil
	})
	if !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if ran {
		t.Fatalf("operation must not run while another process holds the lock")
	}
}
