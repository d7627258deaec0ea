package domain

import "github.com/google/uuid"

// PeerAddress はピアを識別する不透明なアドレスです。比較のみを前提とします。
type PeerAddress string

func NewPeerAddress() PeerAddress {
	return PeerAddress(uuid.NewString())
}

func (a PeerAddress) String() string {
	return string(a)
}

func (a PeerAddress) IsEmpty() bool {
	return a == ""
}
