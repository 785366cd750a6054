package handler

import (
	"mockraft/internal/delivery/http/dto"
	"mockraft/internal/delivery/http/middleware"
	"mockraft/internal/pkg/response"
	"mockraft/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type PaymentHandler struct {
	uc usecase.PaymentUsecase
}

type createOrderRequest struct {
	Plan string `json:"plan"`
}

type verifyPaymentRequest struct {
	OrderID   string `json:"order_id"`
	PaymentID string `json:"payment_id"`
	Signature string `json:"signature"`
}

func NewPaymentHandler(uc usecase.PaymentUsecase) *PaymentHandler {
	return &PaymentHandler{uc: uc}
}

func (h *PaymentHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/plans", h.Plans)
	r.Get("/", h.List)
	r.Post("/orders", h.CreateOrder)
	r.Post("/verify", h.Verify)
}

func (h *PaymentHandler) Plans(c fiber.Ctx) error {
	plans := h.uc.Plans()
	res := make([]dto.PlanResponse, 0, len(plans))
	for _, p := range plans {
		res = append(res, dto.NewPlanResponse(p))
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, res)
}

func (h *PaymentHandler) CreateOrder(c fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	var req createOrderRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid request payload", nil, err)
	}

	res, err := h.uc.CreateOrder(c.Context(), userID, req.Plan)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusCreated, response.MessageOK, dto.OrderResponse{
		Payment: dto.NewPaymentResponse(res.Payment),
		Plan:    dto.NewPlanResponse(res.Plan),
		KeyID:   res.KeyID,
	})
}

func (h *PaymentHandler) Verify(c fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	var req verifyPaymentRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid request payload", nil, err)
	}

	p, err := h.uc.Verify(c.Context(), userID, usecase.VerifyPaymentInput{
		OrderID:   req.OrderID,
		PaymentID: req.PaymentID,
		Signature: req.Signature,
	})
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewPaymentResponse(p))
}

func (h *PaymentHandler) List(c fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	items, err := h.uc.List(c.Context(), userID)
	if err != nil {
		return mapUsecaseError(err)
	}
	res := make([]dto.PaymentResponse, 0, len(items))
	for _, p := range items {
		res = append(res, dto.NewPaymentResponse(p))
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, res)
}
