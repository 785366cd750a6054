package handler

import (
	"strings"

	"mockraft/internal/delivery/http/dto"
	"mockraft/internal/delivery/http/middleware"
	"mockraft/internal/domain/aptitude"
	"mockraft/internal/domain/listing"
	"mockraft/internal/pkg/response"
	"mockraft/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type AptitudeHandler struct {
	uc usecase.AptitudeUsecase
}

type createTestRequest struct {
	Title    string             `json:"title"`
	Sections []aptitude.Section `json:"sections"`
}

type answerQuestionRequest struct {
	SelectedIndex *int `json:"selected_index"`
}

func NewAptitudeHandler(uc usecase.AptitudeUsecase) *AptitudeHandler {
	return &AptitudeHandler{uc: uc}
}

func (h *AptitudeHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/catalog", h.Catalog)
	r.Get("/tests", h.List)
	r.Post("/tests", h.Create)
	r.Get("/tests/:id", h.Get)
	r.Delete("/tests/:id", h.Delete)
	r.Put("/tests/:id/bookmark", h.SetBookmark)
	r.Post("/tests/:id/questions/:questionId/answer", h.Answer)
	r.Post("/tests/:id/complete", h.Complete)
}

func (h *AptitudeHandler) Catalog(c fiber.Ctx) error {
	cats, err := h.uc.Catalog(c.Context())
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewCatalogResponse(cats))
}

func (h *AptitudeHandler) Create(c fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	var req createTestRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid request payload", nil, err)
	}

	v, err := h.uc.CreateTest(c.Context(), userID, usecase.CreateTestInput{Title: req.Title, Sections: req.Sections})
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusCreated, response.MessageOK, newTestResponse(v))
}

func (h *AptitudeHandler) List(c fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	status, ok := listing.ParseStatus(c.Query("status"))
	if !ok {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid status", nil, nil)
	}
	bookmarked, err := queryBool(c, "bookmarked")
	if err != nil {
		return err
	}
	category := strings.TrimSpace(c.Query("category"))
	if strings.EqualFold(category, "all") {
		category = ""
	}

	items, err := h.uc.List(c.Context(), userID, aptitude.Filter{
		Search:         c.Query("search"),
		Category:       category,
		Status:         status,
		BookmarkedOnly: bookmarked,
		Sort:           listing.ParseSortOrder(c.Query("sort")),
	})
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewTestSummaryList(items))
}

func (h *AptitudeHandler) Get(c fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	v, err := h.uc.Get(c.Context(), userID, id)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, newTestResponse(v))
}

func (h *AptitudeHandler) Delete(c fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.uc.Delete(c.Context(), userID, id); err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, nil)
}

func (h *AptitudeHandler) SetBookmark(c fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	bookmarked, err := bindBookmark(c)
	if err != nil {
		return err
	}

	if err := h.uc.SetBookmark(c.Context(), userID, id, bookmarked); err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, fiber.Map{"id": id, "bookmarked": bookmarked})
}

func (h *AptitudeHandler) Answer(c fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	questionID := strings.TrimSpace(c.Params("questionId"))
	if questionID == "" {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid questionId", nil, nil)
	}

	var req answerQuestionRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid request payload", nil, err)
	}
	if req.SelectedIndex == nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "selected_index is required", nil, nil)
	}

	res, err := h.uc.AnswerQuestion(c.Context(), userID, id, questionID, *req.SelectedIndex)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.AptitudeAnswerResponse{
		QuestionID:   res.QuestionID,
		IsCorrect:    res.IsCorrect,
		CorrectIndex: res.CorrectIndex,
		Explanation:  res.Explanation,
		PointsEarned: res.PointsEarned,
	})
}

func (h *AptitudeHandler) Complete(c fiber.Ctx) error {
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
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.TestCompletionResponse{
		Score:        res.Score,
		Total:        res.Total,
		PointsEarned: res.PointsEarned,
		CompletedAt:  res.CompletedAt,
	})
}

func newTestResponse(v usecase.TestView) dto.TestResponse {
	res := dto.TestResponse{
		TestSummaryResponse: dto.NewTestSummaryResponse(v.Test),
		Questions:           make([]dto.TestQuestionResponse, 0, len(v.Questions)),
	}
	for _, q := range v.Questions {
		res.Questions = append(res.Questions, dto.TestQuestionResponse{
			ID:            q.ID,
			Category:      q.Category,
			Subtopic:      q.Subtopic,
			Question:      q.Question,
			Options:       q.Options,
			SelectedIndex: q.SelectedIndex,
			IsCorrect:     q.IsCorrect,
			CorrectIndex:  q.CorrectIndex,
			Explanation:   q.Explanation,
		})
	}
	return res
}
