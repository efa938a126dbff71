package notification

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"roombooking/internal/pkg/jwt"
	"roombooking/internal/pkg/response"
)

// TokenValidator is satisfied by *jwt.Service.
type TokenValidator interface {
	ValidateToken(tokenStr string) (*jwt.Claims, error)
}

type WSHandler struct {
	hub      *Hub
	tokens   TokenValidator
	upgrader websocket.Upgrader
}

// NewWSHandler accepts connections from allowedOrigins; an empty list
// accepts any origin.
func NewWSHandler(hub *Hub, tokens TokenValidator, allowedOrigins []string) *WSHandler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[strings.TrimRight(o, "/")] = true
	}
	return &WSHandler{
		hub:    hub,
		tokens: tokens,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || len(allowed) == 0 || allowed[origin]
			},
		},
	}
}

func (h *WSHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/ws/rooms", h.HandleWebSocket)
}

// HandleWebSocket subscribes the caller to room events.
//
// Endpoint: GET /ws/rooms?token=JWT&room_id=1,2
//
// Browsers cannot set headers on the upgrade request, so the token travels
// in the query string. Without room_id the client receives every room.
func (h *WSHandler) HandleWebSocket(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, http.StatusUnauthorized, "AUTH_HEADER_MISSING", "Token is required. Use ?token=YOUR_JWT_TOKEN")
		return
	}
	if _, err := h.tokens.ValidateToken(token); err != nil {
		response.Error(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired token")
		return
	}

	rooms, ok := parseRooms(c.Query("room_id"))
	if !ok {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "room_id must be a comma-separated list of IDs")
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.hub.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	h.hub.serve(&client{conn: conn, rooms: rooms, send: make(chan Event, clientQueueLen)})
}

func parseRooms(raw string) (map[int64]bool, bool) {
	if strings.TrimSpace(raw) == "" {
		return nil, true
	}
	rooms := make(map[int64]bool)
	for _, part := range strings.Split(raw, ",") {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil || id <= 0 {
			return nil, false
		}
		rooms[id] = true
	}
	return rooms, true
}
