package handler

import (
	"strconv"
	"strings"

	"mockraft/internal/delivery/http/middleware"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

func currentUser(c fiber.Ctx) (uuid.UUID, error) {
	id, ok := middleware.UserID(c)
	if !ok {
		return uuid.Nil, middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}
	return id, nil
}

func uuidParam(c fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(c.Params(name)))
	if err != nil || id == uuid.Nil {
		return uuid.Nil, middleware.NewAppError(fiber.StatusBadRequest, "Invalid "+name, nil, err)
	}
	return id, nil
}

func intParam(c fiber.Ctx, name string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(c.Params(name)))
	if err != nil || n < 0 {
		return 0, middleware.NewAppError(fiber.StatusBadRequest, "Invalid "+name, nil, err)
	}
	return n, nil
}

func queryInt(c fiber.Ctx, name string, def int) (int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, middleware.NewAppError(fiber.StatusBadRequest, "Invalid "+name, nil, err)
	}
	return n, nil
}

func queryBool(c fiber.Ctx, name string) (bool, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, middleware.NewAppError(fiber.StatusBadRequest, "Invalid "+name, nil, err)
	}
	return b, nil
}

type bookmarkRequest struct {
	Bookmarked *bool `json:"bookmarked"`
}

func bindBookmark(c fiber.Ctx) (bool, error) {
	var req bookmarkRequest
	if err := c.Bind().Body(&req); err != nil {
		return false, middleware.NewAppError(fiber.StatusBadRequest, "Invalid request payload", nil, err)
	}
	if req.Bookmarked == nil {
		return false, middleware.NewAppError(fiber.StatusBadRequest, "bookmarked is required", nil, nil)
	}
	return *req.Bookmarked, nil
}
