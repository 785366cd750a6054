package handler

import (
	"mockraft/internal/delivery/http/dto"
	"mockraft/internal/domain/leaderboard"
	"mockraft/internal/pkg/response"
	"mockraft/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type LeaderboardHandler struct {
	uc usecase.LeaderboardUsecase
}

func NewLeaderboardHandler(uc usecase.LeaderboardUsecase) *LeaderboardHandler {
	return &LeaderboardHandler{uc: uc}
}

func (h *LeaderboardHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/", h.Top)
	r.Get("/me", h.Me)
}

func (h *LeaderboardHandler) Top(c fiber.Ctx) error {
	limit, err := queryInt(c, "limit", leaderboard.DefaultLimit)
	if err != nil {
		return err
	}
	limit = leaderboard.ClampLimit(limit)

	entries, err := h.uc.Top(c.Context(), limit)
	if err != nil {
		return mapUsecaseError(err)
	}
	if entries == nil {
		entries = []leaderboard.Entry{}
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.LeaderboardResponse{Entries: entries, Limit: limit})
}

func (h *LeaderboardHandler) Me(c fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	e, err := h.uc.MyRank(c.Context(), userID)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, e)
}
