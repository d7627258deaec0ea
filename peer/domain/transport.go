package domain

import (
	"context"
)

//go:generate go tool mockgen -destination=./mocks/transport_mock.go -package=mocks . Transport,Dialer

// Transport はリンク（物理接続）が依存するI/O境界です。
type Transport interface {
	Read(ctx context.Context) (data []byte, err error)
	Write(ctx context.Context, data []byte) error
	Close(code int32, reason string) error
}

// Dialer は指定URLのピアへ接続を張ります。
type Dialer interface {
	Dial(ctx context.Context, url string) (Transport, error)
}
