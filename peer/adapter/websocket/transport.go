package adapterwebsocket

import (
	"context"
	"net/http"

	"github.com/coder/websocket"

	"voidline/peer/domain"
)

// 1メッセージの上限。player-state は60FPSで届くが数十バイトしかない。
const readLimit = 64 << 10

type wsTransport struct {
	conn *websocket.Conn
}

func NewTransportFrom(conn *websocket.Conn) domain.Transport {
	conn.SetReadLimit(readLimit)
	return &wsTransport{conn: conn}
}

func (t *wsTransport) Read(ctx context.Context) ([]byte, error) {
	_, data, err := t.conn.Read(ctx)
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (t *wsTransport) Write(ctx context.Context, data []byte) error {
	return t.conn.Write(ctx, websocket.MessageBinary, data)
}

func (t *wsTransport) Close(code int32, reason string) error {
	return t.conn.Close(websocket.StatusCode(code), reason)
}

// Dialer は websocket で他ピアの /ws へ接続する domain.Dialer です。
type Dialer struct {
	HTTPClient *http.Client
}

var _ domain.Dialer = (*Dialer)(nil)

func (d *Dialer) Dial(ctx context.Context, url string) (domain.Transport, error) {
	conn, _, err := websocket.Dial(ctx, url, &websocket.DialOptions{HTTPClient: d.HTTPClient})
	if err != nil {
		return nil, err
	}
	return NewTransportFrom(conn), nil
}
