package domain

import (
	"context"
	"log/slog"
	"time"
)

// HeartbeatService は定期的にpingメッセージを送信する死活監視サービスです。
type HeartbeatService struct {
	pingInterval time.Duration
	remote       PeerAddress
	writeCh      chan<- []byte
}

// NewHeartbeatService は新しいHeartbeatServiceを生成します。
func NewHeartbeatService(pingInterval time.Duration, remote PeerAddress, writeCh chan<- []byte) *HeartbeatService {
	return &HeartbeatService{
		pingInterval: pingInterval,
		remote:       remote,
		writeCh:      writeCh,
	}
}

// Run はpingInterval間隔でpingメッセージをwriteChに送信します。
// ctxがキャンセルされると終了します。
func (h *HeartbeatService) Run(ctx context.Context) {
	ticker := time.NewTicker(h.pingInterval)
	defer ticker.Stop()

	ping := EncodeControlMessage(ControlSubTypePing)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			select {
			case h.writeCh <- ping:
				slog.DebugContext(ctx, "heartbeat: ping sent", "peer", h.remote)
			default:
				slog.WarnContext(ctx, "heartbeat: writeCh full, ping dropped", "peer", h.remote)
			}
		}
	}
}
