package handler

import (
	"errors"

	"mockraft/internal/delivery/http/middleware"
	"mockraft/internal/domain/aptitude"
	"mockraft/internal/domain/interview"
	"mockraft/internal/domain/payment"
	"mockraft/internal/pkg/response"
	"mockraft/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

// mapUsecaseError turns usecase and domain errors into AppErrors. Validation
// messages are passed through; everything else gets a fixed message.
func mapUsecaseError(err error) error {
	if err == nil {
		return nil
	}

	var verr *usecase.ValidationError
	if errors.As(err, &verr) {
		return middleware.NewAppError(fiber.StatusBadRequest, verr.Message, nil, err)
	}

	switch {
	case errors.Is(err, usecase.ErrInvalidInput),
		errors.Is(err, aptitude.ErrInvalidOption):
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid request payload", nil, err)

	case errors.Is(err, usecase.ErrUnauthorized):
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, err)

	case errors.Is(err, interview.ErrPlanLimitReached):
		return middleware.NewAppError(fiber.StatusForbidden, "Free plan interview limit reached", nil, err)

	case errors.Is(err, interview.ErrNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "Interview not found", nil, err)
	case errors.Is(err, interview.ErrQuestionNotFound),
		errors.Is(err, aptitude.ErrQuestionNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "Question not found", nil, err)
	case errors.Is(err, aptitude.ErrNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "Aptitude test not found", nil, err)
	case errors.Is(err, payment.ErrNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "Payment not found", nil, err)
	case errors.Is(err, usecase.ErrNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, response.MessageNotFound, nil, err)

	case errors.Is(err, interview.ErrAlreadyAnalyzed):
		return middleware.NewAppError(fiber.StatusConflict, "Answer already analyzed", nil, err)
	case errors.Is(err, interview.ErrAlreadyCompleted):
		return middleware.NewAppError(fiber.StatusConflict, "Interview already completed", nil, err)
	case errors.Is(err, interview.ErrNotAnswered):
		return middleware.NewAppError(fiber.StatusConflict, "Question not answered yet", nil, err)
	case errors.Is(err, aptitude.ErrAlreadyAnswered):
		return middleware.NewAppError(fiber.StatusConflict, "Question already answered", nil, err)
	case errors.Is(err, aptitude.ErrAlreadyCompleted):
		return middleware.NewAppError(fiber.StatusConflict, "Aptitude test already completed", nil, err)
	case errors.Is(err, payment.ErrNotPending):
		return middleware.NewAppError(fiber.StatusConflict, "Payment is not pending", nil, err)
	case errors.Is(err, usecase.ErrAlreadyPaid):
		return middleware.NewAppError(fiber.StatusConflict, "Account is already on the paid plan", nil, err)
	case errors.Is(err, usecase.ErrConflict):
		return middleware.NewAppError(fiber.StatusConflict, response.MessageConflict, nil, err)

	case errors.Is(err, interview.ErrAnalysisIncomplete):
		return middleware.NewAppError(fiber.StatusUnprocessableEntity, "Every answer must be analyzed first", nil, err)
	case errors.Is(err, aptitude.ErrInsufficientBank):
		return middleware.NewAppError(fiber.StatusUnprocessableEntity, "Not enough questions in the bank", nil, err)

	case errors.Is(err, usecase.ErrBusy):
		return middleware.NewAppError(fiber.StatusTooManyRequests, "Request already in progress", nil, err)

	case errors.Is(err, usecase.ErrUpstream):
		return middleware.NewAppError(fiber.StatusBadGateway, "Upstream service unavailable", nil, err)
	case errors.Is(err, usecase.ErrNotConfigured):
		return middleware.NewAppError(fiber.StatusServiceUnavailable, "Feature not configured", nil, err)

	default:
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
}
