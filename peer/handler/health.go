package handler

import (
	"encoding/json"
	"net/http"

	"voidline/peer/domain"
)

// PeerLister はリンク中のピアを返します。
type PeerLister interface {
	Address() domain.PeerAddress
	Peers() []domain.PeerAddress
}

type healthResponse struct {
	Address domain.PeerAddress   `json:"address"`
	Peers   []domain.PeerAddress `json:"peers"`
}

// NewHealthHandler は自ピアのアドレスとリンク中のピアを返します。
func NewHealthHandler(mesh PeerLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(healthResponse{Address: mesh.Address(), Peers: mesh.Peers()})
	}
}
