package domain

import "context"

//go:generate go tool mockgen -destination=./mocks/network_mock.go -package=mocks . Network

// Network はシミュレーションから見たピア間通信の境界です。
type Network interface {
	// Send は全ピアへメッセージをブロードキャストします。配送保証はありません。
	Send(ctx context.Context, data []byte) error
	// Address は自ピアのアドレスを返します。
	Address() PeerAddress
}

// InboundKind は受信イベントの種別
type InboundKind uint8

const (
	InboundMessage InboundKind = iota
	InboundPeerLeft
)

// Inbound はピアから届いたイベントです。tickの先頭でまとめて処理されます。
type Inbound struct {
	Kind InboundKind
	From PeerAddress
	Data []byte
}
