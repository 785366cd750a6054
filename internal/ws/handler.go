package ws

import (
	"context"
	"net/http"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Identity is the authenticated owner of a socket.
type Identity struct {
	UserID uuid.UUID
	Name   string
}

type AuthFunc func(ctx context.Context, token string) (Identity, error)

type Handler struct {
	hub       *Hub
	auth      AuthFunc
	onMessage MessageFunc
	limiter   *UserLimiter
	baseCtx   context.Context
	logger    *logrus.Logger
}

// NewHandler serves the chat socket. baseCtx bounds the lifetime of every
// connection's message handling.
func NewHandler(baseCtx context.Context, hub *Hub, auth AuthFunc, onMessage MessageFunc, logger *logrus.Logger) *Handler {
	if baseCtx == nil {
		baseCtx = context.Background()
	}
	return &Handler{
		hub:       hub,
		auth:      auth,
		onMessage: onMessage,
		limiter:   NewUserLimiter(chatMessagesPerSecond, chatBurst),
		baseCtx:   baseCtx,
		logger:    logger,
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// HandleChatWS authenticates the token query parameter before upgrading, so
// rejected clients get a plain 401.
func (h *Handler) HandleChatWS(c fiber.Ctx) error {
	if h == nil || h.hub == nil || h.auth == nil {
		return fiber.ErrServiceUnavailable
	}

	id, err := h.auth(c.Context(), c.Query("token"))
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
	}

	fiberHandler := adaptor.HTTPHandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			if h.logger != nil {
				h.logger.Warnf("[WS] upgrade error user_id=%s err=%v", id.UserID, err)
			}
			return
		}

		client := NewClient(h.hub, conn, id.UserID, id.Name, h.limiter, h.onMessage)
		h.hub.Register(client)
		go client.WritePump()
		go client.ReadPump(h.baseCtx)
	})

	return fiberHandler(c)
}
