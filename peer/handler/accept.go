package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/coder/websocket"

	adapterwebsocket "voidline/peer/adapter/websocket"
	"voidline/peer/domain"
)

// Acceptor は受け付けた接続でリンクを張るメッシュです。
type Acceptor interface {
	Accept(ctx context.Context, transport domain.Transport) error
}

type AcceptHandler struct {
	mesh Acceptor
}

func NewAcceptHandler(mesh Acceptor) *AcceptHandler {
	return &AcceptHandler{mesh: mesh}
}

func (h *AcceptHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // 開発用: Origin チェックをスキップ
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to accept", "err", err)
		return
	}

	slog.DebugContext(ctx, "accepted new connection", "remote", r.RemoteAddr)
	if err := h.mesh.Accept(ctx, adapterwebsocket.NewTransportFrom(conn)); err != nil {
		slog.WarnContext(ctx, "link closed", "remote", r.RemoteAddr, "err", err)
	}
}
