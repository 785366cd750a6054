package handler

import (
	"mockraft/internal/delivery/http/dto"
	"mockraft/internal/delivery/http/middleware"
	"mockraft/internal/pkg/response"
	"mockraft/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

// SessionHandler drives the question-by-question interview flow.
type SessionHandler struct {
	uc usecase.SessionUsecase
}

type submitAnswerRequest struct {
	Answer string `json:"answer"`
}

func NewSessionHandler(uc usecase.SessionUsecase) *SessionHandler {
	return &SessionHandler{uc: uc}
}

func (h *SessionHandler) RegisterRoutes(r fiber.Router, limit fiber.Handler) {
	if r == nil {
		return
	}
	if limit == nil {
		limit = passThrough
	}

	r.Get("/:id/session", h.GetSession)
	r.Put("/:id/questions/:position/answer", h.SubmitAnswer)
	r.Post("/:id/questions/:position/analyze", limit, h.AnalyzeAnswer)
	r.Post("/:id/analyze", limit, h.AnalyzeAll)
	r.Post("/:id/complete", h.Complete)
}

func (h *SessionHandler) GetSession(c fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	v, err := h.uc.GetSession(c.Context(), userID, id)
	if err != nil {
		return mapUsecaseError(err)
	}

	res := dto.SessionResponse{
		InterviewID:  v.InterviewID,
		CurrentIndex: v.CurrentIndex,
		Total:        v.Total,
		IsCompleted:  v.IsCompleted,
		States:       make([]string, 0, len(v.States)),
	}
	if v.Current != nil {
		q := dto.NewQuestionResponse(*v.Current, v.IsCompleted)
		res.Current = &q
	}
	for _, s := range v.States {
		res.States = append(res.States, string(s))
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, res)
}

func (h *SessionHandler) SubmitAnswer(c fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	pos, err := intParam(c, "position")
	if err != nil {
		return err
	}

	var req submitAnswerRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid request payload", nil, err)
	}

	res, err := h.uc.SubmitAnswer(c.Context(), userID, id, pos, req.Answer)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.AnswerResponse{
		Position:     res.Position,
		CurrentIndex: res.CurrentIndex,
	})
}

func (h *SessionHandler) AnalyzeAnswer(c fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	pos, err := intParam(c, "position")
	if err != nil {
		return err
	}

	a, err := h.uc.AnalyzeAnswer(c.Context(), userID, id, pos)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, a)
}

func (h *SessionHandler) AnalyzeAll(c fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	outcomes, err := h.uc.AnalyzeAll(c.Context(), userID, id)
	if err != nil {
		return mapUsecaseError(err)
	}

	res := make([]dto.AnalysisOutcomeResponse, 0, len(outcomes))
	for _, o := range outcomes {
		item := dto.AnalysisOutcomeResponse{Position: o.Position, Analysis: o.Analysis}
		if o.Err != nil {
			item.Error = outcomeMessage(o.Err)
		}
		res = append(res, item)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, res)
}

func (h *SessionHandler) Complete(c fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	res, err := h.uc.Complete(c.Context(), userID, id)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.CompletionResponse{
		OverallScore: res.OverallScore,
		PointsEarned: res.PointsEarned,
		CompletedAt:  res.CompletedAt,
	})
}

// outcomeMessage reuses the client-facing message of the error mapping so a
// batch item never leaks internal detail.
func outcomeMessage(err error) string {
	mapped := mapUsecaseError(err)
	if appErr, ok := mapped.(*middleware.AppError); ok {
		if appErr.StatusCode == fiber.StatusInternalServerError {
			return response.MessageInternalServerError
		}
		return appErr.Message
	}
	return response.MessageError
}
