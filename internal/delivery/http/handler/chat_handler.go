package handler

import (
	"time"

	"mockraft/internal/delivery/http/dto"
	"mockraft/internal/delivery/http/middleware"
	"mockraft/internal/pkg/response"
	"mockraft/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type ChatHandler struct {
	uc usecase.ChatUsecase
}

func NewChatHandler(uc usecase.ChatUsecase) *ChatHandler {
	return &ChatHandler{uc: uc}
}

func (h *ChatHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/messages", h.History)
	r.Post("/token", h.Token)
}

// History pages backwards through the channel: pass the created_at of the
// oldest message seen as before.
func (h *ChatHandler) History(c fiber.Ctx) error {
	limit, err := queryInt(c, "limit", 50)
	if err != nil {
		return err
	}

	var before *time.Time
	if raw := c.Query("before"); raw != "" {
		t, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return middleware.NewAppError(fiber.StatusBadRequest, "Invalid before", nil, err)
		}
		before = &t
	}

	items, err := h.uc.History(c.Context(), before, limit)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewChatMessageList(items))
}

func (h *ChatHandler) Token(c fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	tok, err := h.uc.IssueToken(c.Context(), userID)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.ChatTokenResponse{
		Token:     tok.Token,
		Channel:   tok.Channel,
		ExpiresAt: tok.ExpiresAt,
	})
}
