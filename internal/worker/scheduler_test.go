package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	testhelpers "github.com/polkiloo/shoutout/internal/test"
)

func TestSchedulerRunsExpirySweep(t *testing.T) {
	facade := &testhelpers.MaintenanceFacadeStub{}
	s, err := NewScheduler(facade, 20*time.Millisecond, discardLogger())
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for facade.Expires() < 2 {
		select {
		case <-deadline:
			t.Fatalf("expected repeated expiry sweeps, got %d", facade.Expires())
		case <-time.After(10 * time.Millisecond):
		}
	}

	if err := s.Stop(); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if facade.Purges() != 0 {
		t.Fatalf("daily purge must not run on start, ran %d times", facade.Purges())
	}
}

func TestSchedulerSurvivesSweepErrors(t *testing.T) {
	facade := &testhelpers.MaintenanceFacadeStub{ExpireErr: errors.New("db down")}
	s, err := NewScheduler(facade, 20*time.Millisecond, discardLogger())
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer func() { _ = s.Stop() }()

	deadline := time.After(2 * time.Second)
	for facade.Expires() < 2 {
		select {
		case <-deadline:
			t.Fatalf("expected sweeps to continue after errors, got %d", facade.Expires())
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestNewSchedulerDefaultsInterval(t *testing.T) {
	s, err := NewScheduler(&testhelpers.MaintenanceFacadeStub{}, 0, discardLogger())
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}
	if s.sweepInterval != time.Minute {
		t.Fatalf("expected 1m default, got %s", s.sweepInterval)
	}
	_ = s.Stop()
}
