package socket

import (
	"log"
	"net/http"

	"github.com/AdBoard-Booking/neon-insta-screen/internal/infrastructure/ws"
)

type Handler struct {
	registry *ws.Registry
}

func NewHandler(registry *ws.Registry) *Handler {
	return &Handler{registry: registry}
}

// ConnectHandler upgrades the request and hands the connection to the
// registry. The new client is a member of the default room before either
// pump starts, so no event published after the handshake can miss it.
func (h *Handler) ConnectHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := h.registry.Upgrade(w, r)
	if err != nil {
		log.Printf("websocket upgrade failed: %v", err)
		return
	}

	client := h.registry.NewClient(conn)
	h.registry.AddClient(client)

	go client.WritePump()
	go client.ReadPump(h.registry)
}
