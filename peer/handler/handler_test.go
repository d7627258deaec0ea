package handler_test

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"

	"voidline/peer/domain"
	"voidline/peer/handler"
)

type fakeMesh struct {
	accepted chan domain.Transport
	done     chan struct{}
}

func (f *fakeMesh) Accept(ctx context.Context, transport domain.Transport) error {
	f.accepted <- transport
	select {
	case <-f.done:
	case <-ctx.Done():
	}
	return transport.Close(1000, "")
}

func (f *fakeMesh) Address() domain.PeerAddress { return "self" }
func (f *fakeMesh) Peers() []domain.PeerAddress { return []domain.PeerAddress{"a", "b"} }

func TestHealthHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	handler.NewHealthHandler(&fakeMesh{}).ServeHTTP(rec, httptest.NewRequest("GET", "/healthz", nil))

	if rec.Code != 200 {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body struct {
		Address string   `json:"address"`
		Peers   []string `json:"peers"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Address != "self" || len(body.Peers) != 2 {
		t.Errorf("body = %+v", body)
	}
}

func TestAcceptHandler_HandsTransportToMesh(t *testing.T) {
	mesh := &fakeMesh{accepted: make(chan domain.Transport, 1), done: make(chan struct{})}
	srv := httptest.NewServer(handler.NewAcceptHandler(mesh))
	defer srv.Close()
	defer close(mesh.done)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.CloseNow()

	var transport domain.Transport
	select {
	case transport = <-mesh.accepted:
	case <-ctx.Done():
		t.Fatal("mesh.Accept was not called")
	}

	msg := domain.EncodeControlMessage(domain.ControlSubTypePing)
	if err := conn.Write(ctx, websocket.MessageBinary, msg); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := transport.Read(ctx)
	if err != nil {
		t.Fatalf("transport read: %v", err)
	}
	if string(got) != string(msg) {
		t.Errorf("read %v, want %v", got, msg)
	}
}
