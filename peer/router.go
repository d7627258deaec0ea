package peer

import (
	"net/http"

	"voidline/peer/domain"
	"voidline/peer/handler"
)

func Route(mesh *domain.Mesh) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/ws", handler.NewAcceptHandler(mesh))
	mux.Handle("/healthz", handler.NewHealthHandler(mesh))
	return mux
}
