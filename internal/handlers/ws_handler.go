package handlers

import (
	"context"
	"log"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gorilla/websocket"

	"hirehub/backend/internal/realtime"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WSHandler attaches authenticated participants to interview rooms.
type WSHandler struct {
	roomServer   *realtime.RoomServer
	tokenService realtime.TokenService
}

func NewWSHandler(roomServer *realtime.RoomServer, tokenService realtime.TokenService) *WSHandler {
	return &WSHandler{
		roomServer:   roomServer,
		tokenService: tokenService,
	}
}

// HandleJoin upgrades the connection and joins the caller to the room named
// in the path. The access token must carry a grant for that room.
func (h *WSHandler) HandleJoin(c *fiber.Ctx) error {
	room := c.Params("room")
	token := c.Query("token")
	if token == "" {
		return fiber.NewError(fiber.StatusUnauthorized, "access token is required")
	}

	identity, err := h.tokenService.Validate(token, room)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid access token")
	}

	return adaptor.HTTPHandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("⚠️ WS upgrade failed for room %s: %v", room, err)
			return
		}

		client := realtime.NewClient(h.roomServer, conn, room, identity)
		h.roomServer.Join(context.Background(), client)
		go client.WritePump()
		go client.ReadPump()
	})(c)
}
