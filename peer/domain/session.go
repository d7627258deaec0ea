package domain

import (
	"strings"
	"sync/atomic"
	"time"
)

// Session はリンク1本の論理的な活動状態を表す構造体です。
type Session struct {
	remote PeerAddress

	// activity
	lastRead atomic.Int64
	lastPong atomic.Int64

	// lifecycle
	closed atomic.Bool
}

func NewSession(remote PeerAddress) *Session {
	s := &Session{remote: remote}
	now := time.Now().UnixNano()
	s.lastRead.Store(now)
	s.lastPong.Store(now)
	return s
}

func (s *Session) Remote() PeerAddress {
	return s.remote
}

func (s *Session) TouchRead() {
	s.lastRead.Store(time.Now().UnixNano())
}

func (s *Session) TouchPong() {
	s.lastPong.Store(time.Now().UnixNano())
}

// Close は初回のみ true を返します。
func (s *Session) Close() bool {
	return s.closed.CompareAndSwap(false, true)
}

func (s *Session) IsClosed() bool {
	return s.closed.Load()
}

// IdleReason はリンクが無通信と判定された理由のビット集合です。
type IdleReason uint8

const (
	IdleNone     IdleReason = 0
	IdleRead     IdleReason = 1 << 0
	IdlePong     IdleReason = 1 << 1
	IdleDisabled IdleReason = 1 << 7 // timeout<=0 のとき
)

func (r IdleReason) Has(x IdleReason) bool { return r&x != 0 }

func (r IdleReason) String() string {
	switch r {
	case IdleNone:
		return "none"
	case IdleDisabled:
		return "disabled"
	}
	parts := make([]string, 0, 2)
	if r.Has(IdleRead) {
		parts = append(parts, "read")
	}
	if r.Has(IdlePong) {
		parts = append(parts, "pong")
	}
	return strings.Join(parts, "|")
}

// IsIdle は読み込みもしくはpongが timeout を超えて途絶えているかを返します。
func (s *Session) IsIdle(timeout time.Duration) (bool, IdleReason) {
	if timeout <= 0 {
		return false, IdleDisabled
	}
	var reason IdleReason
	if isIdleSince(s.lastRead.Load(), timeout) {
		reason |= IdleRead
	}
	if isIdleSince(s.lastPong.Load(), timeout) {
		reason |= IdlePong
	}
	return reason != IdleNone, reason
}

func isIdleSince(lastNano int64, timeout time.Duration) bool {
	return time.Since(time.Unix(0, lastNano)) > timeout
}
