package domain_test

import (
	"testing"
	"time"

	domain "voidline/peer/domain"
)

func TestSessionCloseOnce(t *testing.T) {
	s := domain.NewSession("peer")
	if !s.Close() {
		t.Fatal("first Close returned false")
	}
	if s.Close() {
		t.Error("second Close returned true")
	}
	if !s.IsClosed() {
		t.Error("IsClosed = false after Close")
	}
}

func TestSessionIsIdle(t *testing.T) {
	s := domain.NewSession("peer")

	if idle, reason := s.IsIdle(0); idle || reason != domain.IdleDisabled {
		t.Errorf("timeout 0: idle=%v reason=%v", idle, reason)
	}
	if idle, _ := s.IsIdle(time.Hour); idle {
		t.Error("fresh session reported idle")
	}

	time.Sleep(20 * time.Millisecond)
	s.TouchRead()
	idle, reason := s.IsIdle(10 * time.Millisecond)
	if !idle {
		t.Fatal("expected idle by pong")
	}
	if reason.Has(domain.IdleRead) || !reason.Has(domain.IdlePong) {
		t.Errorf("reason = %v, want pong", reason)
	}
	if reason.String() != "pong" {
		t.Errorf("reason.String() = %q", reason.String())
	}

	s.TouchPong()
	if idle, _ := s.IsIdle(10 * time.Millisecond); idle {
		t.Error("idle after read and pong")
	}
}

func TestIdleReasonString(t *testing.T) {
	tests := []struct {
		r    domain.IdleReason
		want string
	}{
		{domain.IdleNone, "none"},
		{domain.IdleDisabled, "disabled"},
		{domain.IdleRead, "read"},
		{domain.IdleRead | domain.IdlePong, "read|pong"},
	}
	for _, tt := range tests {
		if got := tt.r.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
