package handler

import (
	"strings"

	"mockraft/internal/delivery/http/dto"
	"mockraft/internal/delivery/http/middleware"
	"mockraft/internal/domain/interview"
	"mockraft/internal/domain/listing"
	"mockraft/internal/pkg/response"
	"mockraft/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type InterviewHandler struct {
	uc usecase.InterviewUsecase
}

type createInterviewRequest struct {
	JobRole         string   `json:"job_role"`
	JobDescription  string   `json:"job_description"`
	Language        string   `json:"language"`
	TechStack       []string `json:"tech_stack"`
	ExperienceLevel string   `json:"experience_level"`
	Notifications   bool     `json:"notifications"`
	QuestionCount   int      `json:"question_count"`
}

type importJobPostingRequest struct {
	URL string `json:"url"`
}

func NewInterviewHandler(uc usecase.InterviewUsecase) *InterviewHandler {
	return &InterviewHandler{uc: uc}
}

// RegisterRoutes mounts the interview CRUD endpoints. Creation and job page
// import sit behind limit, which throttles the AI-backed and scraping calls.
func (h *InterviewHandler) RegisterRoutes(r fiber.Router, limit fiber.Handler) {
	if r == nil {
		return
	}
	if limit == nil {
		limit = passThrough
	}

	r.Get("/", h.List)
	r.Post("/", limit, h.Create)
	r.Post("/import", limit, h.ImportJobPosting)
	r.Get("/:id", h.Get)
	r.Delete("/:id", h.Delete)
	r.Put("/:id/bookmark", h.SetBookmark)
}

func (h *InterviewHandler) Create(c fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	var req createInterviewRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid request payload", nil, err)
	}

	m, err := h.uc.Create(c.Context(), userID, usecase.CreateInterviewInput{
		JobRole:         req.JobRole,
		JobDescription:  req.JobDescription,
		Language:        req.Language,
		TechStack:       req.TechStack,
		ExperienceLevel: req.ExperienceLevel,
		Notifications:   req.Notifications,
		QuestionCount:   req.QuestionCount,
	})
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusCreated, response.MessageOK, dto.NewInterviewResponse(m))
}

func (h *InterviewHandler) List(c fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	f, err := parseInterviewFilter(c)
	if err != nil {
		return err
	}

	items, err := h.uc.List(c.Context(), userID, f)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewInterviewSummaryList(items))
}

func (h *InterviewHandler) Get(c fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	m, err := h.uc.Get(c.Context(), userID, id)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewInterviewResponse(m))
}

func (h *InterviewHandler) Delete(c fiber.Ctx) error {
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

func (h *InterviewHandler) SetBookmark(c fiber.Ctx) error {
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

func (h *InterviewHandler) ImportJobPosting(c fiber.Ctx) error {
	var req importJobPostingRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid request payload", nil, err)
	}
	if strings.TrimSpace(req.URL) == "" {
		return middleware.NewAppError(fiber.StatusBadRequest, "url is required", nil, nil)
	}

	p, err := h.uc.ImportJobPosting(c.Context(), req.URL)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.JobPostingResponse{
		Title:       p.Title,
		Description: p.Description,
		URL:         p.URL,
	})
}

func parseInterviewFilter(c fiber.Ctx) (interview.Filter, error) {
	f := interview.Filter{
		Search:   c.Query("search"),
		Language: strings.TrimSpace(c.Query("language")),
		Sort:     listing.ParseSortOrder(c.Query("sort")),
	}

	if raw := strings.TrimSpace(c.Query("experience_level")); raw != "" && !strings.EqualFold(raw, "all") {
		lvl, ok := interview.ParseExperienceLevel(raw)
		if !ok {
			return interview.Filter{}, middleware.NewAppError(fiber.StatusBadRequest, "Invalid experience_level", nil, nil)
		}
		f.ExperienceLevel = lvl
	}

	status, ok := listing.ParseStatus(c.Query("status"))
	if !ok {
		return interview.Filter{}, middleware.NewAppError(fiber.StatusBadRequest, "Invalid status", nil, nil)
	}
	f.Status = status

	bookmarked, err := queryBool(c, "bookmarked")
	if err != nil {
		return interview.Filter{}, err
	}
	f.BookmarkedOnly = bookmarked

	return f, nil
}

func passThrough(c fiber.Ctx) error {
	return c.Next()
}
